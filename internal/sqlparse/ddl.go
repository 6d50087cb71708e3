package sqlparse

import (
	"strconv"
	"strings"
)

// parseCreate dispatches CREATE TABLE / VIEW / TYPE. Other CREATE
// targets are rejected so schema loading can skip them.
func (p *parser) parseCreate() (Statement, *ParseError) {
	first := p.current()
	if err := p.expectKeyword("CREATE"); err != nil {
		return nil, err
	}
	orReplace := false
	if p.acceptKeyword("OR") {
		if err := p.expectKeyword("REPLACE"); err != nil {
			return nil, err
		}
		orReplace = true
	}
	if !p.acceptKeyword("TEMP") {
		p.acceptKeyword("TEMPORARY")
	}

	tok := p.current()
	switch {
	case p.acceptKeyword("TABLE"):
		return p.parseCreateTable(first)
	case p.acceptKeyword("VIEW"):
		return p.parseCreateView(first, orReplace)
	case p.acceptKeyword("MATERIALIZED"):
		if err := p.expectKeyword("VIEW"); err != nil {
			return nil, err
		}
		return p.parseCreateView(first, orReplace)
	case p.acceptKeyword("TYPE"):
		return p.parseCreateType(first)
	default:
		return nil, p.errorf(tok, "unsupported CREATE target %s", describeToken(tok))
	}
}

func (p *parser) parseCreateTable(first Token) (*CreateTableStmt, *ParseError) {
	stmt := &CreateTableStmt{first: first}
	if p.matchKeywords("IF", "NOT", "EXISTS") {
		p.advance()
		p.advance()
		p.advance()
		stmt.IfNotExists = true
	}
	name, err := p.parseObjectName()
	if err != nil {
		return nil, err
	}
	stmt.Name = name

	if serr := p.expectSymbol("("); serr != nil {
		return nil, serr
	}
	for {
		if constraint, ok, cerr := p.tryParseTableConstraint(); ok {
			if cerr != nil {
				return nil, cerr
			}
			stmt.Constraints = append(stmt.Constraints, *constraint)
		} else {
			col, derr := p.parseColumnDef()
			if derr != nil {
				return nil, derr
			}
			stmt.Columns = append(stmt.Columns, col)
		}
		if !p.acceptSymbol(",") {
			break
		}
	}
	if serr := p.expectSymbol(")"); serr != nil {
		return nil, serr
	}

	// storage parameters and the like are irrelevant to checking
	p.skipToEnd()
	stmt.last = p.previous()
	return stmt, nil
}

// tryParseTableConstraint detects a table-level constraint at the
// current position. It returns ok=false without consuming anything when
// the entry is a column definition instead.
func (p *parser) tryParseTableConstraint() (*TableConstraint, bool, *ParseError) {
	named := false
	if p.matchKeyword("CONSTRAINT") {
		named = true
	} else if !p.matchKeywords("PRIMARY", "KEY") && !p.matchKeywords("FOREIGN", "KEY") &&
		!p.matchKeyword("CHECK") && !(p.matchKeyword("UNIQUE") && p.peekIsSymbol(1, "(")) {
		return nil, false, nil
	}

	var name string
	if named {
		p.advance() // CONSTRAINT
		id, err := p.parseIdent(true)
		if err != nil {
			return nil, true, err
		}
		name = id.Name
	}
	constraint, ok, err := p.parseConstraintBody()
	if err != nil {
		return nil, ok, err
	}
	constraint.Name = name
	return constraint, ok, nil
}

func (p *parser) peekIsSymbol(n int, text string) bool {
	idx := p.pos + n
	if idx >= len(p.tokens) {
		return false
	}
	tok := p.tokens[idx]
	return tok.Kind == KindSymbol && tok.Text == text
}

func (p *parser) parseParenIdentList() ([]Ident, *ParseError) {
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	var idents []Ident
	for {
		id, err := p.parseIdent(true)
		if err != nil {
			return nil, err
		}
		idents = append(idents, id)
		if !p.acceptSymbol(",") {
			break
		}
	}
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	return idents, nil
}

// skipParenGroup consumes a balanced parenthesized group.
func (p *parser) skipParenGroup() *ParseError {
	if err := p.expectSymbol("("); err != nil {
		return err
	}
	depth := 1
	for depth > 0 {
		if p.atEOF() {
			return p.errorf(p.current(), "unterminated parenthesized group")
		}
		tok := p.advance()
		if tok.Kind == KindSymbol {
			switch tok.Text {
			case "(":
				depth++
			case ")":
				depth--
			}
		}
	}
	return nil
}

// captureParenGroup consumes a balanced parenthesized group and returns
// the enclosed source text with single spaces between tokens.
func (p *parser) captureParenGroup() (string, *ParseError) {
	if err := p.expectSymbol("("); err != nil {
		return "", err
	}
	depth := 1
	var parts []string
	for {
		if p.atEOF() {
			return "", p.errorf(p.current(), "unterminated parenthesized group")
		}
		tok := p.advance()
		if tok.Kind == KindSymbol {
			switch tok.Text {
			case "(":
				depth++
			case ")":
				depth--
				if depth == 0 {
					return strings.Join(parts, " "), nil
				}
			}
		}
		parts = append(parts, tok.Text)
	}
}

// parseReferencesTarget parses the table and optional column list after
// a REFERENCES keyword, plus any trailing referential actions.
func (p *parser) parseReferencesTarget() (ObjectName, []Ident, *ParseError) {
	name, err := p.parseObjectName()
	if err != nil {
		return ObjectName{}, nil, err
	}
	var cols []Ident
	if p.matchSymbol("(") {
		cols, err = p.parseParenIdentList()
		if err != nil {
			return ObjectName{}, nil, err
		}
	}
	p.skipReferentialActions()
	return name, cols, nil
}

// skipReferentialActions consumes ON DELETE / ON UPDATE actions
// following a foreign key.
func (p *parser) skipReferentialActions() {
	for p.matchKeyword("ON") {
		p.advance()
		if !p.acceptKeyword("DELETE") && !p.acceptKeyword("UPDATE") {
			return
		}
		switch {
		case p.acceptKeyword("CASCADE"), p.acceptKeyword("RESTRICT"):
		case p.acceptKeyword("SET"):
			if !p.acceptKeyword("NULL") && !p.acceptKeyword("DEFAULT") {
				return
			}
		case p.matchKeywords("NOT", "NULL"):
			p.advance()
			p.advance()
		default:
			return
		}
	}
}

func (p *parser) parseColumnDef() (ColumnDef, *ParseError) {
	name, err := p.parseIdent(false)
	if err != nil {
		return ColumnDef{}, err
	}
	typ, terr := p.parseTypeName()
	if terr != nil {
		return ColumnDef{}, terr
	}
	col := ColumnDef{Name: name, Type: typ}

	for {
		switch {
		case p.matchKeywords("NOT", "NULL"):
			p.advance()
			p.advance()
			col.Constraint.NotNull = true
		case p.acceptKeyword("NULL"):
			col.Constraint.Null = true
		case p.matchKeywords("PRIMARY", "KEY"):
			p.advance()
			p.advance()
			col.Constraint.PrimaryKey = true
		case p.acceptKeyword("UNIQUE"):
			col.Constraint.Unique = true
		case p.acceptKeyword("DEFAULT"):
			expr, derr := p.parseDefaultExpr()
			if derr != nil {
				return ColumnDef{}, derr
			}
			col.Constraint.Default = expr
		case p.acceptKeyword("REFERENCES"):
			refTable, refCols, rerr := p.parseReferencesTarget()
			if rerr != nil {
				return ColumnDef{}, rerr
			}
			col.Constraint.References = &ColumnReference{Table: refTable, Columns: refCols}
		case p.acceptKeyword("CHECK"):
			if serr := p.skipParenGroup(); serr != nil {
				return ColumnDef{}, serr
			}
		case p.acceptKeyword("GENERATED"):
			identity, gerr := p.parseIdentityTail()
			if gerr != nil {
				return ColumnDef{}, gerr
			}
			col.Constraint.Identity = identity
		case p.acceptKeyword("CONSTRAINT"):
			if _, cerr := p.parseIdent(true); cerr != nil {
				return ColumnDef{}, cerr
			}
		default:
			return col, nil
		}
	}
}

// parseDefaultExpr parses a DEFAULT clause value. The expression
// grammar handles literals, function calls, and casts.
func (p *parser) parseDefaultExpr() (Expr, *ParseError) {
	return p.parseConcat()
}

// parseIdentityTail parses ALWAYS AS IDENTITY or BY DEFAULT AS IDENTITY.
func (p *parser) parseIdentityTail() (string, *ParseError) {
	var kind string
	switch {
	case p.acceptKeyword("ALWAYS"):
		kind = "ALWAYS"
	case p.acceptKeyword("BY"):
		if err := p.expectKeyword("DEFAULT"); err != nil {
			return "", err
		}
		kind = "BY DEFAULT"
	default:
		return "", p.errorf(p.current(), "expected ALWAYS or BY DEFAULT after GENERATED")
	}
	if err := p.expectKeyword("AS"); err != nil {
		return "", err
	}
	if err := p.expectKeyword("IDENTITY"); err != nil {
		return "", err
	}
	if p.matchSymbol("(") {
		if err := p.skipParenGroup(); err != nil {
			return "", err
		}
	}
	return kind, nil
}

// parseTypeName parses a column or cast type, including multi-word
// names, length/precision arguments, and [] array suffixes.
func (p *parser) parseTypeName() (TypeName, *ParseError) {
	tok := p.current()
	if tok.Kind != KindIdentifier && tok.Kind != KindKeyword {
		return TypeName{}, p.errorf(tok, "expected type name, got %s", describeToken(tok))
	}
	p.advance()
	name := strings.ToLower(NormalizeIdentifier(tok.Text))

	switch name {
	case "double":
		if p.acceptIdentWord("precision") {
			name = "double precision"
		}
	case "character":
		if p.acceptIdentWord("varying") {
			name = "character varying"
		}
	}

	typ := TypeName{Name: name, Tok: tok}

	if p.matchSymbol("(") {
		p.advance()
		for {
			numTok := p.current()
			if numTok.Kind != KindNumber {
				return TypeName{}, p.errorf(numTok, "expected numeric type argument, got %s", describeToken(numTok))
			}
			p.advance()
			n, convErr := strconv.Atoi(numTok.Text)
			if convErr != nil {
				return TypeName{}, p.errorf(numTok, "invalid type argument %q", numTok.Text)
			}
			typ.Args = append(typ.Args, n)
			if !p.acceptSymbol(",") {
				break
			}
		}
		if err := p.expectSymbol(")"); err != nil {
			return TypeName{}, err
		}
	}

	// time/timestamp WITH/WITHOUT TIME ZONE
	if name == "time" || name == "timestamp" {
		if p.acceptKeyword("WITH") {
			if err := p.expectTimeZone(); err != nil {
				return TypeName{}, err
			}
			typ.Name = name + " with time zone"
		} else if p.acceptIdentWord("without") {
			if err := p.expectTimeZone(); err != nil {
				return TypeName{}, err
			}
		}
	}

	if p.matchSymbol("[") && p.peekIsSymbol(1, "]") {
		p.advance()
		p.advance()
		typ.Array = true
	}
	return typ, nil
}

func (p *parser) expectTimeZone() *ParseError {
	if !p.acceptIdentWord("time") {
		return p.errorf(p.current(), "expected TIME ZONE")
	}
	if !p.acceptKeyword("ZONE") {
		return p.errorf(p.current(), "expected ZONE after TIME")
	}
	return nil
}

// acceptIdentWord consumes an identifier (or keyword) matching the word
// case-insensitively.
func (p *parser) acceptIdentWord(word string) bool {
	tok := p.current()
	if tok.Kind != KindIdentifier && tok.Kind != KindKeyword {
		return false
	}
	if !strings.EqualFold(tok.Text, word) {
		return false
	}
	p.advance()
	return true
}

func (p *parser) parseCreateView(first Token, orReplace bool) (*CreateViewStmt, *ParseError) {
	stmt := &CreateViewStmt{first: first, OrReplace: orReplace}
	if p.matchKeywords("IF", "NOT", "EXISTS") {
		p.advance()
		p.advance()
		p.advance()
	}
	name, err := p.parseObjectName()
	if err != nil {
		return nil, err
	}
	stmt.Name = name

	if p.matchSymbol("(") {
		cols, cerr := p.parseParenIdentList()
		if cerr != nil {
			return nil, cerr
		}
		stmt.Columns = cols
	}

	if kerr := p.expectKeyword("AS"); kerr != nil {
		return nil, kerr
	}
	sel, serr := p.parseSelectStmt()
	if serr != nil {
		return nil, serr
	}
	stmt.Select = sel
	p.skipToEnd()
	stmt.last = p.previous()
	return stmt, nil
}

func (p *parser) parseCreateType(first Token) (*CreateTypeStmt, *ParseError) {
	name, err := p.parseObjectName()
	if err != nil {
		return nil, err
	}
	stmt := &CreateTypeStmt{Name: name, first: first}

	if kerr := p.expectKeyword("AS"); kerr != nil {
		return nil, kerr
	}
	if kerr := p.expectKeyword("ENUM"); kerr != nil {
		return nil, kerr
	}
	if serr := p.expectSymbol("("); serr != nil {
		return nil, serr
	}
	if !p.matchSymbol(")") {
		for {
			tok := p.current()
			if tok.Kind != KindString {
				return nil, p.errorf(tok, "expected enum value string, got %s", describeToken(tok))
			}
			p.advance()
			stmt.Values = append(stmt.Values, stringValue(tok.Text))
			if !p.acceptSymbol(",") {
				break
			}
		}
	}
	if serr := p.expectSymbol(")"); serr != nil {
		return nil, serr
	}
	stmt.last = p.previous()
	return stmt, nil
}

func (p *parser) parseAlterTable() (*AlterTableStmt, *ParseError) {
	first := p.current()
	if err := p.expectKeyword("ALTER"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("TABLE"); err != nil {
		return nil, err
	}
	if p.matchKeywords("IF", "EXISTS") {
		p.advance()
		p.advance()
	}
	p.acceptKeyword("ONLY")
	name, err := p.parseObjectName()
	if err != nil {
		return nil, err
	}
	stmt := &AlterTableStmt{Table: name, first: first}

	switch {
	case p.acceptKeyword("ADD"):
		if p.acceptKeyword("CONSTRAINT") {
			stmt.Action = AlterAddConstraint
			cname, cerr := p.parseIdent(true)
			if cerr != nil {
				return nil, cerr
			}
			constraint, _, cerr := p.parseConstraintBody()
			if cerr != nil {
				return nil, cerr
			}
			constraint.Name = cname.Name
			stmt.Constraint = constraint
		} else {
			p.acceptKeyword("COLUMN")
			if p.matchKeywords("IF", "NOT", "EXISTS") {
				p.advance()
				p.advance()
				p.advance()
			}
			col, cerr := p.parseColumnDef()
			if cerr != nil {
				return nil, cerr
			}
			stmt.Action = AlterAddColumn
			stmt.Column = &col
		}
	case p.acceptKeyword("DROP"):
		p.acceptKeyword("COLUMN")
		if p.matchKeywords("IF", "EXISTS") {
			p.advance()
			p.advance()
		}
		colName, cerr := p.parseIdent(true)
		if cerr != nil {
			return nil, cerr
		}
		stmt.Action = AlterDropColumn
		stmt.ColumnName = colName
		if !p.acceptKeyword("CASCADE") {
			p.acceptKeyword("RESTRICT")
		}
	case p.acceptKeyword("RENAME"):
		if p.acceptKeyword("TO") {
			newName, rerr := p.parseIdent(true)
			if rerr != nil {
				return nil, rerr
			}
			stmt.Action = AlterRenameTable
			stmt.NewName = newName
		} else {
			p.acceptKeyword("COLUMN")
			colName, rerr := p.parseIdent(true)
			if rerr != nil {
				return nil, rerr
			}
			if kerr := p.expectKeyword("TO"); kerr != nil {
				return nil, kerr
			}
			newName, rerr := p.parseIdent(true)
			if rerr != nil {
				return nil, rerr
			}
			stmt.Action = AlterRenameColumn
			stmt.ColumnName = colName
			stmt.NewName = newName
		}
	default:
		return nil, p.errorf(p.current(), "unsupported ALTER TABLE action %s", describeToken(p.current()))
	}

	stmt.last = p.previous()
	return stmt, nil
}

// parseConstraintBody parses a table constraint after any CONSTRAINT
// name prefix has been consumed.
func (p *parser) parseConstraintBody() (*TableConstraint, bool, *ParseError) {
	constraint := &TableConstraint{}
	switch {
	case p.matchKeywords("PRIMARY", "KEY"):
		p.advance()
		p.advance()
		constraint.Kind = "PRIMARY KEY"
		cols, err := p.parseParenIdentList()
		if err != nil {
			return nil, true, err
		}
		constraint.Columns = cols
	case p.acceptKeyword("UNIQUE"):
		constraint.Kind = "UNIQUE"
		cols, err := p.parseParenIdentList()
		if err != nil {
			return nil, true, err
		}
		constraint.Columns = cols
	case p.matchKeywords("FOREIGN", "KEY"):
		p.advance()
		p.advance()
		constraint.Kind = "FOREIGN KEY"
		cols, err := p.parseParenIdentList()
		if err != nil {
			return nil, true, err
		}
		constraint.Columns = cols
		if kerr := p.expectKeyword("REFERENCES"); kerr != nil {
			return nil, true, kerr
		}
		refTable, refCols, rerr := p.parseReferencesTarget()
		if rerr != nil {
			return nil, true, rerr
		}
		constraint.RefTable = refTable
		constraint.RefColumns = refCols
	case p.acceptKeyword("CHECK"):
		constraint.Kind = "CHECK"
		expr, err := p.captureParenGroup()
		if err != nil {
			return nil, true, err
		}
		constraint.CheckExpr = expr
	default:
		return nil, true, p.errorf(p.current(), "expected constraint body, got %s", describeToken(p.current()))
	}
	return constraint, true, nil
}

// skipToEnd consumes the remainder of the statement segment.
func (p *parser) skipToEnd() {
	for !p.atEOF() {
		p.advance()
	}
}
