package sqlparse

import (
	"fmt"

	"github.com/electwix/sqlguard/internal/diag"
)

// ParseError describes a syntax error anchored at a token.
type ParseError struct {
	Token   Token
	Message string
}

// Error returns the printable representation of the parse error.
func (e *ParseError) Error() string {
	if e.Token.Line > 0 {
		return fmt.Sprintf("%d:%d: %s", e.Token.Line, e.Token.Column, e.Message)
	}
	return e.Message
}

// Span returns a diagnostic span anchored at the offending token.
func (e *ParseError) Span() *diag.Span {
	return e.Token.Span()
}

// ParsedStatement is one statement of a script, or the error that kept
// it from parsing.
type ParsedStatement struct {
	Stmt Statement
	Err  *ParseError
	// First is the first token of the statement's source segment.
	First Token
	// Last is the last token of the statement's source segment.
	Last Token
}

// Script is a parsed SQL source with its comment trivia.
type Script struct {
	Statements []ParsedStatement
	Comments   []Comment
}

// ParseScript scans and parses a SQL source. Individual statements that
// fail to parse are reported in place without stopping the rest of the
// script. The returned error is non-nil only when the source cannot be
// tokenized at all.
func ParseScript(src string) (*Script, error) {
	tokens, comments, err := Scan(src)
	if err != nil {
		return &Script{Comments: comments}, err
	}

	script := &Script{Comments: comments}
	for _, segment := range splitStatements(tokens) {
		parsed := ParsedStatement{
			First: segment[0],
			Last:  segment[len(segment)-1],
		}
		p := &parser{tokens: segment}
		stmt, perr := p.parseStatement()
		if perr == nil && !p.atEOF() {
			perr = p.errorf(p.current(), "unexpected %s after end of statement", describeToken(p.current()))
		}
		if perr != nil {
			parsed.Err = perr
		} else {
			parsed.Stmt = stmt
		}
		script.Statements = append(script.Statements, parsed)
	}
	return script, nil
}

// ParseStatement parses a single SQL statement.
func ParseStatement(src string) (Statement, error) {
	script, err := ParseScript(src)
	if err != nil {
		return nil, err
	}
	if len(script.Statements) == 0 {
		return nil, &ParseError{Message: "empty statement"}
	}
	first := script.Statements[0]
	if first.Err != nil {
		return nil, first.Err
	}
	return first.Stmt, nil
}

// splitStatements cuts the token stream at top-level semicolons. The
// scanner never emits a ';' from inside a string or comment, so no
// nesting depth is needed.
func splitStatements(tokens []Token) [][]Token {
	var segments [][]Token
	var current []Token
	for _, tok := range tokens {
		if tok.Kind == KindEOF {
			break
		}
		if tok.Kind == KindSymbol && tok.Text == ";" {
			if len(current) > 0 {
				segments = append(segments, current)
				current = nil
			}
			continue
		}
		current = append(current, tok)
	}
	if len(current) > 0 {
		segments = append(segments, current)
	}
	return segments
}

// parser holds the state for a single statement.
type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Kind: KindEOF, Offset: p.endOffset(), Line: p.endLine()}
	}
	return p.tokens[p.pos]
}

func (p *parser) endOffset() int {
	if len(p.tokens) == 0 {
		return 0
	}
	last := p.tokens[len(p.tokens)-1]
	return last.Offset + last.Width()
}

func (p *parser) endLine() int {
	if len(p.tokens) == 0 {
		return 1
	}
	return p.tokens[len(p.tokens)-1].Line
}

func (p *parser) previous() Token {
	if p.pos == 0 {
		return Token{}
	}
	return p.tokens[p.pos-1]
}

func (p *parser) advance() Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *parser) atEOF() bool {
	return p.pos >= len(p.tokens)
}

func (p *parser) matchKeyword(text string) bool {
	tok := p.current()
	return tok.Kind == KindKeyword && tok.Text == text
}

// matchKeywords reports whether the next tokens are the given keyword
// sequence without consuming anything.
func (p *parser) matchKeywords(texts ...string) bool {
	for i, text := range texts {
		idx := p.pos + i
		if idx >= len(p.tokens) {
			return false
		}
		tok := p.tokens[idx]
		if tok.Kind != KindKeyword || tok.Text != text {
			return false
		}
	}
	return true
}

func (p *parser) acceptKeyword(text string) bool {
	if p.matchKeyword(text) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expectKeyword(text string) *ParseError {
	if !p.matchKeyword(text) {
		return p.errorf(p.current(), "expected %s, got %s", text, describeToken(p.current()))
	}
	p.advance()
	return nil
}

func (p *parser) matchSymbol(text string) bool {
	tok := p.current()
	return tok.Kind == KindSymbol && tok.Text == text
}

func (p *parser) acceptSymbol(text string) bool {
	if p.matchSymbol(text) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expectSymbol(text string) *ParseError {
	if !p.matchSymbol(text) {
		return p.errorf(p.current(), "expected %q, got %s", text, describeToken(p.current()))
	}
	p.advance()
	return nil
}

func (p *parser) errorf(tok Token, format string, args ...any) *ParseError {
	return &ParseError{Token: tok, Message: fmt.Sprintf(format, args...)}
}

func describeToken(tok Token) string {
	switch tok.Kind {
	case KindEOF:
		return "end of statement"
	case KindString:
		return "string literal"
	default:
		return fmt.Sprintf("%q", tok.Text)
	}
}

// parseIdent consumes an identifier. Keywords are accepted when
// allowKeyword is set, since many schemas use reserved-ish names.
func (p *parser) parseIdent(allowKeyword bool) (Ident, *ParseError) {
	tok := p.current()
	if tok.Kind == KindIdentifier || (allowKeyword && tok.Kind == KindKeyword) {
		p.advance()
		return Ident{Name: NormalizeIdentifier(tok.Text), Tok: tok}, nil
	}
	return Ident{}, p.errorf(tok, "expected identifier, got %s", describeToken(tok))
}

// parseObjectName consumes a dotted name such as schema.table.
func (p *parser) parseObjectName() (ObjectName, *ParseError) {
	first, err := p.parseIdent(false)
	if err != nil {
		return ObjectName{}, err
	}
	name := ObjectName{Parts: []Ident{first}}
	for p.matchSymbol(".") {
		if next := p.peekAfterDot(); next.Kind == KindSymbol && next.Text == "*" {
			break
		}
		p.advance()
		part, err := p.parseIdent(true)
		if err != nil {
			return ObjectName{}, err
		}
		name.Parts = append(name.Parts, part)
	}
	return name, nil
}

func (p *parser) peekAfterDot() Token {
	if p.pos+1 >= len(p.tokens) {
		return Token{Kind: KindEOF}
	}
	return p.tokens[p.pos+1]
}

// parseStatement dispatches on the leading keyword.
func (p *parser) parseStatement() (Statement, *ParseError) {
	tok := p.current()
	if tok.Kind != KindKeyword {
		return nil, p.errorf(tok, "expected a SQL statement, got %s", describeToken(tok))
	}
	switch tok.Text {
	case "SELECT", "WITH":
		return p.parseSelectStmt()
	case "INSERT":
		return p.parseInsert()
	case "UPDATE":
		return p.parseUpdate()
	case "DELETE":
		return p.parseDelete()
	case "CREATE":
		return p.parseCreate()
	case "ALTER":
		return p.parseAlterTable()
	default:
		return nil, p.errorf(tok, "unsupported statement starting with %s", tok.Text)
	}
}

// parseSelectStmt parses a full SELECT including CTEs, set operations,
// and trailing ORDER BY / LIMIT / OFFSET.
func (p *parser) parseSelectStmt() (*SelectStmt, *ParseError) {
	first := p.current()

	var with *WithClause
	if p.matchKeyword("WITH") {
		clause, err := p.parseWithClause()
		if err != nil {
			return nil, err
		}
		with = clause
	}

	stmt, err := p.parseSelectCore()
	if err != nil {
		return nil, err
	}
	stmt.With = with
	stmt.first = first

	for {
		var op SetOp
		switch {
		case p.matchKeyword("UNION"):
			op = SetOpUnion
		case p.matchKeyword("INTERSECT"):
			op = SetOpIntersect
		case p.matchKeyword("EXCEPT"):
			op = SetOpExcept
		default:
			op = ""
		}
		if op == "" {
			break
		}
		p.advance()
		all := p.acceptKeyword("ALL")
		p.acceptKeyword("DISTINCT")
		arm, err := p.parseSelectCore()
		if err != nil {
			return nil, err
		}
		stmt.Compound = append(stmt.Compound, CompoundSelect{Op: op, All: all, Select: arm})
	}

	if p.acceptKeyword("ORDER") {
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		for {
			item, err := p.parseOrderItem()
			if err != nil {
				return nil, err
			}
			stmt.OrderBy = append(stmt.OrderBy, item)
			if !p.acceptSymbol(",") {
				break
			}
		}
	}
	if p.acceptKeyword("LIMIT") {
		if !p.acceptKeyword("ALL") {
			limit, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			stmt.Limit = limit
		}
	}
	if p.acceptKeyword("OFFSET") {
		offset, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Offset = offset
	}

	stmt.last = p.previous()
	return stmt, nil
}

func (p *parser) parseWithClause() (*WithClause, *ParseError) {
	if err := p.expectKeyword("WITH"); err != nil {
		return nil, err
	}
	clause := &WithClause{Recursive: p.acceptKeyword("RECURSIVE")}
	for {
		cte, err := p.parseCTE()
		if err != nil {
			return nil, err
		}
		clause.CTEs = append(clause.CTEs, cte)
		if !p.acceptSymbol(",") {
			break
		}
	}
	return clause, nil
}

func (p *parser) parseCTE() (*CTE, *ParseError) {
	name, err := p.parseIdent(false)
	if err != nil {
		return nil, err
	}
	cte := &CTE{Name: name}
	if p.acceptSymbol("(") {
		for {
			col, err := p.parseIdent(true)
			if err != nil {
				return nil, err
			}
			cte.Columns = append(cte.Columns, col)
			if !p.acceptSymbol(",") {
				break
			}
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
	}
	if err := p.expectKeyword("AS"); err != nil {
		return nil, err
	}
	p.acceptKeyword("MATERIALIZED")
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	sel, serr := p.parseSelectStmt()
	if serr != nil {
		return nil, serr
	}
	cte.Select = sel
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	return cte, nil
}

// parseSelectCore parses one SELECT arm without set operations or the
// trailing ORDER BY / LIMIT clauses.
func (p *parser) parseSelectCore() (*SelectStmt, *ParseError) {
	first := p.current()
	if err := p.expectKeyword("SELECT"); err != nil {
		return nil, err
	}
	stmt := &SelectStmt{first: first}
	if p.acceptKeyword("DISTINCT") {
		stmt.Distinct = true
	} else {
		p.acceptKeyword("ALL")
	}

	for {
		item, err := p.parseSelectItem()
		if err != nil {
			return nil, err
		}
		stmt.Items = append(stmt.Items, item)
		if !p.acceptSymbol(",") {
			break
		}
	}

	if p.acceptKeyword("FROM") {
		for {
			expr, err := p.parseTableExpr()
			if err != nil {
				return nil, err
			}
			stmt.From = append(stmt.From, expr)
			if !p.acceptSymbol(",") {
				break
			}
		}
	}

	if p.acceptKeyword("WHERE") {
		where, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}
	if p.acceptKeyword("GROUP") {
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		for {
			expr, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			stmt.GroupBy = append(stmt.GroupBy, expr)
			if !p.acceptSymbol(",") {
				break
			}
		}
	}
	if p.acceptKeyword("HAVING") {
		having, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Having = having
	}

	stmt.last = p.previous()
	return stmt, nil
}

func (p *parser) parseSelectItem() (SelectItem, *ParseError) {
	expr, err := p.parseExpr()
	if err != nil {
		return SelectItem{}, err
	}
	item := SelectItem{Expr: expr}
	if p.acceptKeyword("AS") {
		alias, err := p.parseIdent(true)
		if err != nil {
			return SelectItem{}, err
		}
		item.Alias = alias.Name
		item.AliasTok = alias.Tok
	} else if p.current().Kind == KindIdentifier {
		alias, err := p.parseIdent(false)
		if err != nil {
			return SelectItem{}, err
		}
		item.Alias = alias.Name
		item.AliasTok = alias.Tok
	}
	return item, nil
}

func (p *parser) parseOrderItem() (OrderItem, *ParseError) {
	expr, err := p.parseExpr()
	if err != nil {
		return OrderItem{}, err
	}
	item := OrderItem{Expr: expr}
	if p.acceptKeyword("DESC") {
		item.Desc = true
	} else {
		p.acceptKeyword("ASC")
	}
	if p.acceptKeyword("NULLS") {
		if !p.acceptKeyword("FIRST") && !p.acceptKeyword("LAST") {
			return OrderItem{}, p.errorf(p.current(), "expected FIRST or LAST after NULLS")
		}
	}
	return item, nil
}

// parseTableExpr parses a single FROM item including any joins chained
// onto it.
func (p *parser) parseTableExpr() (TableExpr, *ParseError) {
	left, err := p.parseTableItem()
	if err != nil {
		return nil, err
	}
	for {
		join, ok, err := p.parseJoinTail(left)
		if err != nil {
			return nil, err
		}
		if !ok {
			return left, nil
		}
		left = join
	}
}

func (p *parser) parseJoinTail(left TableExpr) (TableExpr, bool, *ParseError) {
	natural := false
	kind := JoinKind("")
	switch {
	case p.matchKeyword("NATURAL"):
		p.advance()
		natural = true
		kind = p.parseJoinKind()
	case p.matchKeyword("JOIN"), p.matchKeyword("INNER"), p.matchKeyword("LEFT"),
		p.matchKeyword("RIGHT"), p.matchKeyword("FULL"), p.matchKeyword("CROSS"):
		kind = p.parseJoinKind()
	default:
		return nil, false, nil
	}
	if kind == "" {
		return nil, false, p.errorf(p.current(), "expected JOIN, got %s", describeToken(p.current()))
	}

	right, err := p.parseTableItem()
	if err != nil {
		return nil, false, err
	}
	join := &Join{Left: left, Right: right, Kind: kind, Natural: natural}

	switch {
	case p.acceptKeyword("ON"):
		on, err := p.parseExpr()
		if err != nil {
			return nil, false, err
		}
		join.On = on
	case p.acceptKeyword("USING"):
		if err := p.expectSymbol("("); err != nil {
			return nil, false, err
		}
		for {
			col, err := p.parseIdent(true)
			if err != nil {
				return nil, false, err
			}
			join.Using = append(join.Using, col)
			if !p.acceptSymbol(",") {
				break
			}
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, false, err
		}
	}
	return join, true, nil
}

// parseJoinKind consumes join keywords and returns the flavor, or empty
// when the next tokens are not a join.
func (p *parser) parseJoinKind() JoinKind {
	switch {
	case p.acceptKeyword("JOIN"):
		return JoinInner
	case p.acceptKeyword("INNER"):
		if p.acceptKeyword("JOIN") {
			return JoinInner
		}
	case p.acceptKeyword("LEFT"):
		p.acceptKeyword("OUTER")
		if p.acceptKeyword("JOIN") {
			return JoinLeft
		}
	case p.acceptKeyword("RIGHT"):
		p.acceptKeyword("OUTER")
		if p.acceptKeyword("JOIN") {
			return JoinRight
		}
	case p.acceptKeyword("FULL"):
		p.acceptKeyword("OUTER")
		if p.acceptKeyword("JOIN") {
			return JoinFull
		}
	case p.acceptKeyword("CROSS"):
		if p.acceptKeyword("JOIN") {
			return JoinCross
		}
	}
	return ""
}

func (p *parser) parseTableItem() (TableExpr, *ParseError) {
	if p.matchKeyword("LATERAL") || (p.matchSymbol("(") && p.subqueryFollows()) {
		return p.parseDerivedTable()
	}
	if p.acceptSymbol("(") {
		inner, err := p.parseTableExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
		return inner, nil
	}

	name, err := p.parseObjectName()
	if err != nil {
		return nil, err
	}
	if p.matchSymbol("(") {
		return p.parseFunctionSource(name)
	}
	ref := &TableRef{Name: name}
	if alias, tok, ok := p.tryParseAlias(); ok {
		ref.Alias = alias
		ref.AliasTok = tok
	}
	return ref, nil
}

// parseFunctionSource parses the argument list and alias of a
// set-returning function in FROM. The opening parenthesis has been
// matched but not consumed.
func (p *parser) parseFunctionSource(name ObjectName) (TableExpr, *ParseError) {
	p.advance()
	fn := &FunctionSource{Name: name}
	if !p.matchSymbol(")") {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			fn.Args = append(fn.Args, arg)
			if !p.acceptSymbol(",") {
				break
			}
		}
	}
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}

	if alias, tok, ok := p.tryParseAlias(); ok {
		fn.Alias = alias
		fn.AliasTok = tok
		if p.matchSymbol("(") {
			cols, err := p.parseParenIdentList()
			if err != nil {
				return nil, err
			}
			fn.Columns = cols
		}
	}
	return fn, nil
}

// subqueryFollows reports whether the '(' at the current position opens
// a subquery rather than a parenthesized join.
func (p *parser) subqueryFollows() bool {
	if p.pos+1 >= len(p.tokens) {
		return false
	}
	next := p.tokens[p.pos+1]
	return next.Kind == KindKeyword && (next.Text == "SELECT" || next.Text == "WITH")
}

func (p *parser) parseDerivedTable() (TableExpr, *ParseError) {
	dt := &DerivedTable{Lateral: p.acceptKeyword("LATERAL")}
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	sel, serr := p.parseSelectStmt()
	if serr != nil {
		return nil, serr
	}
	dt.Select = sel
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}

	alias, tok, ok := p.tryParseAlias()
	if !ok {
		return nil, p.errorf(p.current(), "derived table requires an alias")
	}
	dt.Alias = alias
	dt.AliasTok = tok
	if p.acceptSymbol("(") {
		for {
			col, err := p.parseIdent(true)
			if err != nil {
				return nil, err
			}
			dt.Columns = append(dt.Columns, col)
			if !p.acceptSymbol(",") {
				break
			}
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
	}
	return dt, nil
}

// tryParseAlias consumes an optional [AS] alias.
func (p *parser) tryParseAlias() (string, Token, bool) {
	if p.acceptKeyword("AS") {
		alias, err := p.parseIdent(true)
		if err != nil {
			return "", Token{}, false
		}
		return alias.Name, alias.Tok, true
	}
	if p.current().Kind == KindIdentifier {
		alias, _ := p.parseIdent(false)
		return alias.Name, alias.Tok, true
	}
	return "", Token{}, false
}

func (p *parser) parseInsert() (*InsertStmt, *ParseError) {
	first := p.current()
	if err := p.expectKeyword("INSERT"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("INTO"); err != nil {
		return nil, err
	}
	name, err := p.parseObjectName()
	if err != nil {
		return nil, err
	}
	stmt := &InsertStmt{Table: name, first: first}

	if p.matchSymbol("(") && !p.subqueryFollows() {
		p.advance()
		for {
			col, cerr := p.parseIdent(true)
			if cerr != nil {
				return nil, cerr
			}
			stmt.Columns = append(stmt.Columns, col)
			if !p.acceptSymbol(",") {
				break
			}
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
	}

	switch {
	case p.acceptKeyword("VALUES"):
		for {
			open := p.current()
			if err := p.expectSymbol("("); err != nil {
				return nil, err
			}
			var row []Expr
			if !p.matchSymbol(")") {
				for {
					expr, eerr := p.parseExpr()
					if eerr != nil {
						return nil, eerr
					}
					row = append(row, expr)
					if !p.acceptSymbol(",") {
						break
					}
				}
			}
			if err := p.expectSymbol(")"); err != nil {
				return nil, err
			}
			stmt.Rows = append(stmt.Rows, row)
			stmt.RowTokens = append(stmt.RowTokens, open)
			if !p.acceptSymbol(",") {
				break
			}
		}
	case p.matchKeyword("SELECT"), p.matchKeyword("WITH"):
		sel, serr := p.parseSelectStmt()
		if serr != nil {
			return nil, serr
		}
		stmt.Select = sel
	case p.matchKeywords("DEFAULT", "VALUES"):
		p.advance()
		p.advance()
	default:
		return nil, p.errorf(p.current(), "expected VALUES or SELECT, got %s", describeToken(p.current()))
	}

	p.skipReturning()
	stmt.last = p.previous()
	return stmt, nil
}

func (p *parser) parseUpdate() (*UpdateStmt, *ParseError) {
	first := p.current()
	if err := p.expectKeyword("UPDATE"); err != nil {
		return nil, err
	}
	p.acceptKeyword("ONLY")
	name, err := p.parseObjectName()
	if err != nil {
		return nil, err
	}
	stmt := &UpdateStmt{Table: name, first: first}
	if alias, _, ok := p.tryParseAlias(); ok {
		stmt.Alias = alias
	}

	if kerr := p.expectKeyword("SET"); kerr != nil {
		return nil, kerr
	}
	for {
		col, cerr := p.parseIdent(true)
		if cerr != nil {
			return nil, cerr
		}
		if serr := p.expectSymbol("="); serr != nil {
			return nil, serr
		}
		var value Expr
		if p.acceptKeyword("DEFAULT") {
			value = &NullLit{Tok: p.previous()}
		} else {
			value, cerr = p.parseExpr()
			if cerr != nil {
				return nil, cerr
			}
		}
		stmt.Set = append(stmt.Set, Assignment{Column: col, Value: value})
		if !p.acceptSymbol(",") {
			break
		}
	}

	if p.acceptKeyword("FROM") {
		for {
			expr, ferr := p.parseTableExpr()
			if ferr != nil {
				return nil, ferr
			}
			stmt.From = append(stmt.From, expr)
			if !p.acceptSymbol(",") {
				break
			}
		}
	}
	if p.acceptKeyword("WHERE") {
		where, werr := p.parseExpr()
		if werr != nil {
			return nil, werr
		}
		stmt.Where = where
	}

	p.skipReturning()
	stmt.last = p.previous()
	return stmt, nil
}

func (p *parser) parseDelete() (*DeleteStmt, *ParseError) {
	first := p.current()
	if err := p.expectKeyword("DELETE"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	p.acceptKeyword("ONLY")
	name, err := p.parseObjectName()
	if err != nil {
		return nil, err
	}
	stmt := &DeleteStmt{Table: name, first: first}
	if alias, _, ok := p.tryParseAlias(); ok {
		stmt.Alias = alias
	}
	if p.acceptKeyword("USING") {
		for {
			expr, uerr := p.parseTableExpr()
			if uerr != nil {
				return nil, uerr
			}
			stmt.Using = append(stmt.Using, expr)
			if !p.acceptSymbol(",") {
				break
			}
		}
	}
	if p.acceptKeyword("WHERE") {
		where, werr := p.parseExpr()
		if werr != nil {
			return nil, werr
		}
		stmt.Where = where
	}
	p.skipReturning()
	stmt.last = p.previous()
	return stmt, nil
}

// skipReturning consumes a trailing RETURNING clause without analyzing it.
func (p *parser) skipReturning() {
	if !p.acceptKeyword("RETURNING") {
		return
	}
	for !p.atEOF() {
		p.advance()
	}
}
