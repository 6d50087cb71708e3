package sqlparse

import "strings"

// parseExpr parses a full expression with standard SQL precedence.
func (p *parser) parseExpr() (Expr, *ParseError) {
	return p.parseOr()
}

func (p *parser) parseOr() (Expr, *ParseError) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.matchKeyword("OR") {
		op := p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: "OR", OpTok: op, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Expr, *ParseError) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.matchKeyword("AND") {
		op := p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: "AND", OpTok: op, Right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (Expr, *ParseError) {
	if p.matchKeyword("NOT") && !p.matchKeywords("NOT", "EXISTS") {
		op := p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: "NOT", OpTok: op, Operand: operand}, nil
	}
	return p.parseComparison()
}

// parseComparison handles comparison operators plus the predicate forms
// IS NULL, IN, BETWEEN, and LIKE.
func (p *parser) parseComparison() (Expr, *ParseError) {
	left, err := p.parseConcat()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.current()
		switch {
		case tok.Kind == KindSymbol && isComparisonOp(tok.Text):
			p.advance()
			right, err := p.parseConcat()
			if err != nil {
				return nil, err
			}
			left = &BinaryExpr{Left: left, Op: tok.Text, OpTok: tok, Right: right}

		case p.matchKeyword("IS"):
			p.advance()
			not := p.acceptKeyword("NOT")
			if !p.matchKeyword("NULL") {
				return nil, p.errorf(p.current(), "expected NULL after IS, got %s", describeToken(p.current()))
			}
			nullTok := p.advance()
			left = &IsNullExpr{Operand: left, Not: not, last: nullTok}

		case p.matchKeyword("IN"):
			expr, err := p.parseInTail(left, false)
			if err != nil {
				return nil, err
			}
			left = expr

		case p.matchKeyword("BETWEEN"):
			expr, err := p.parseBetweenTail(left, false)
			if err != nil {
				return nil, err
			}
			left = expr

		case p.matchKeyword("LIKE"), p.matchKeyword("ILIKE"):
			op := p.advance()
			right, err := p.parseConcat()
			if err != nil {
				return nil, err
			}
			left = &BinaryExpr{Left: left, Op: op.Text, OpTok: op, Right: right}

		case p.matchKeywords("NOT", "IN"):
			p.advance()
			expr, err := p.parseInTail(left, true)
			if err != nil {
				return nil, err
			}
			left = expr

		case p.matchKeywords("NOT", "BETWEEN"):
			p.advance()
			expr, err := p.parseBetweenTail(left, true)
			if err != nil {
				return nil, err
			}
			left = expr

		case p.matchKeywords("NOT", "LIKE"), p.matchKeywords("NOT", "ILIKE"):
			p.advance()
			op := p.advance()
			right, err := p.parseConcat()
			if err != nil {
				return nil, err
			}
			left = &BinaryExpr{Left: left, Op: "NOT " + op.Text, OpTok: op, Right: right}

		default:
			return left, nil
		}
	}
}

func isComparisonOp(text string) bool {
	switch text {
	case "=", "<>", "!=", "<", "<=", ">", ">=":
		return true
	}
	return false
}

func (p *parser) parseInTail(operand Expr, not bool) (Expr, *ParseError) {
	if err := p.expectKeyword("IN"); err != nil {
		return nil, err
	}
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	in := &InExpr{Operand: operand, Not: not}
	if p.matchKeyword("SELECT") || p.matchKeyword("WITH") {
		sel, err := p.parseSelectStmt()
		if err != nil {
			return nil, err
		}
		in.Select = sel
	} else {
		for {
			item, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			in.List = append(in.List, item)
			if !p.acceptSymbol(",") {
				break
			}
		}
	}
	rparen := p.current()
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	in.last = rparen
	return in, nil
}

func (p *parser) parseBetweenTail(operand Expr, not bool) (Expr, *ParseError) {
	if err := p.expectKeyword("BETWEEN"); err != nil {
		return nil, err
	}
	low, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("AND"); err != nil {
		return nil, err
	}
	high, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	return &BetweenExpr{Operand: operand, Not: not, Low: low, High: high}, nil
}

func (p *parser) parseConcat() (Expr, *ParseError) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.matchSymbol("||") {
		op := p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: "||", OpTok: op, Right: right}
	}
	return left, nil
}

func (p *parser) parseAdditive() (Expr, *ParseError) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.matchSymbol("+") || p.matchSymbol("-") {
		op := p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: op.Text, OpTok: op, Right: right}
	}
	return left, nil
}

func (p *parser) parseMultiplicative() (Expr, *ParseError) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.matchSymbol("*") || p.matchSymbol("/") || p.matchSymbol("%") {
		op := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: op.Text, OpTok: op, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (Expr, *ParseError) {
	if p.matchSymbol("-") || p.matchSymbol("+") {
		op := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: op.Text, OpTok: op, Operand: operand}, nil
	}
	return p.parseCastSuffix()
}

// parseCastSuffix parses primary expressions followed by any number of
// :: type annotations.
func (p *parser) parseCastSuffix() (Expr, *ParseError) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.matchSymbol("::") {
		p.advance()
		typ, terr := p.parseTypeName()
		if terr != nil {
			return nil, terr
		}
		expr = &CastExpr{Operand: expr, Type: typ, first: expr.Pos(), last: p.previous()}
	}
	return expr, nil
}

func (p *parser) parsePrimary() (Expr, *ParseError) {
	tok := p.current()
	switch tok.Kind {
	case KindNumber:
		p.advance()
		return &NumberLit{Tok: tok}, nil

	case KindString:
		p.advance()
		return &StringLit{Tok: tok, Value: stringValue(tok.Text)}, nil

	case KindParam:
		p.advance()
		return &ParamExpr{Tok: tok}, nil

	case KindSymbol:
		switch tok.Text {
		case "*":
			p.advance()
			return &StarExpr{Tok: tok}, nil
		case "(":
			return p.parseParenthesized()
		}

	case KindKeyword:
		switch tok.Text {
		case "TRUE", "FALSE":
			p.advance()
			return &BoolLit{Tok: tok, Value: tok.Text == "TRUE"}, nil
		case "NULL":
			p.advance()
			return &NullLit{Tok: tok}, nil
		case "CASE":
			return p.parseCase()
		case "CAST":
			return p.parseCast()
		case "EXISTS":
			return p.parseExists(false)
		case "NOT":
			if p.matchKeywords("NOT", "EXISTS") {
				p.advance()
				return p.parseExists(true)
			}
		case "CURRENT_DATE", "CURRENT_TIME", "CURRENT_TIMESTAMP":
			p.advance()
			name := ObjectName{Parts: []Ident{{Name: strings.ToLower(tok.Text), Tok: tok}}}
			return &FuncCall{Name: name, first: tok, last: tok}, nil
		}

	case KindIdentifier:
		return p.parseColumnOrCall()
	}
	return nil, p.errorf(tok, "expected expression, got %s", describeToken(tok))
}

func (p *parser) parseParenthesized() (Expr, *ParseError) {
	open := p.current()
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	if p.matchKeyword("SELECT") || p.matchKeyword("WITH") {
		sel, err := p.parseSelectStmt()
		if err != nil {
			return nil, err
		}
		rparen := p.current()
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
		return &SubqueryExpr{Select: sel, first: open, last: rparen}, nil
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *parser) parseCase() (Expr, *ParseError) {
	first := p.current()
	if err := p.expectKeyword("CASE"); err != nil {
		return nil, err
	}
	expr := &CaseExpr{first: first}
	if !p.matchKeyword("WHEN") {
		operand, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		expr.Operand = operand
	}
	for p.acceptKeyword("WHEN") {
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if kerr := p.expectKeyword("THEN"); kerr != nil {
			return nil, kerr
		}
		result, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		expr.Whens = append(expr.Whens, When{Cond: cond, Result: result})
	}
	if len(expr.Whens) == 0 {
		return nil, p.errorf(p.current(), "CASE requires at least one WHEN arm")
	}
	if p.acceptKeyword("ELSE") {
		els, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		expr.Else = els
	}
	end := p.current()
	if err := p.expectKeyword("END"); err != nil {
		return nil, err
	}
	expr.last = end
	return expr, nil
}

func (p *parser) parseCast() (Expr, *ParseError) {
	first := p.current()
	if err := p.expectKeyword("CAST"); err != nil {
		return nil, err
	}
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	operand, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if kerr := p.expectKeyword("AS"); kerr != nil {
		return nil, kerr
	}
	typ, terr := p.parseTypeName()
	if terr != nil {
		return nil, terr
	}
	rparen := p.current()
	if serr := p.expectSymbol(")"); serr != nil {
		return nil, serr
	}
	return &CastExpr{Operand: operand, Type: typ, first: first, last: rparen}, nil
}

func (p *parser) parseExists(not bool) (Expr, *ParseError) {
	first := p.current()
	if err := p.expectKeyword("EXISTS"); err != nil {
		return nil, err
	}
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	sel, serr := p.parseSelectStmt()
	if serr != nil {
		return nil, serr
	}
	rparen := p.current()
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	return &ExistsExpr{Not: not, Select: sel, first: first, last: rparen}, nil
}

// parseColumnOrCall parses a dotted reference that is either a column,
// a qualified star, or a function call.
func (p *parser) parseColumnOrCall() (Expr, *ParseError) {
	first := p.current()
	name, err := p.parseObjectName()
	if err != nil {
		return nil, err
	}

	// qualified star: t.* or schema.t.*
	if p.matchSymbol(".") {
		if next := p.peekAfterDot(); next.Kind == KindSymbol && next.Text == "*" {
			p.advance() // '.'
			star := p.advance()
			parts := name.Parts
			return &ColumnRef{Qualifier: parts, Star: true, StarTok: star}, nil
		}
	}

	if p.matchSymbol("(") {
		return p.parseCallTail(name, first)
	}

	parts := name.Parts
	ref := &ColumnRef{Name: parts[len(parts)-1]}
	if len(parts) > 1 {
		ref.Qualifier = parts[:len(parts)-1]
	}
	return ref, nil
}

func (p *parser) parseCallTail(name ObjectName, first Token) (Expr, *ParseError) {
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	call := &FuncCall{Name: name, first: first}
	if p.acceptKeyword("DISTINCT") {
		call.Distinct = true
	}
	switch {
	case p.matchSymbol("*"):
		call.Star = true
		p.advance()
	case !p.matchSymbol(")"):
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
			if !p.acceptSymbol(",") {
				break
			}
		}
	}
	rparen := p.current()
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	call.last = rparen
	return call, nil
}

// stringValue strips the quoting from a scanned string literal.
func stringValue(raw string) string {
	if strings.HasPrefix(raw, "'") && strings.HasSuffix(raw, "'") && len(raw) >= 2 {
		return strings.ReplaceAll(raw[1:len(raw)-1], "''", "'")
	}
	if strings.HasPrefix(raw, "$") {
		// dollar-quoted: $tag$body$tag$
		if i := strings.Index(raw[1:], "$"); i >= 0 {
			delim := raw[:i+2]
			body := strings.TrimPrefix(raw, delim)
			return strings.TrimSuffix(body, delim)
		}
	}
	return raw
}
