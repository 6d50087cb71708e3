package sqlparse

import (
	"strconv"
	"strings"

	"github.com/electwix/sqlguard/internal/diag"
)

// Statement is implemented by every top-level SQL statement node.
type Statement interface {
	stmtNode()
	// Span covers the whole statement.
	Span() *diag.Span
}

// Expr is implemented by every expression node.
type Expr interface {
	exprNode()
	// Pos returns the first token of the expression.
	Pos() Token
	// End returns the last token of the expression.
	End() Token
}

// ExprSpan returns a diagnostic span covering the expression.
func ExprSpan(e Expr) *diag.Span {
	if e == nil {
		return nil
	}
	return SpanBetween(e.Pos(), e.End())
}

// Ident is a possibly quoted identifier. Name holds the unquoted form.
type Ident struct {
	Name string
	Tok  Token
}

// ObjectName is a dotted object reference such as schema.table.
type ObjectName struct {
	Parts []Ident
}

// Schema returns the schema part, or empty when unqualified.
func (n ObjectName) Schema() string {
	if len(n.Parts) < 2 {
		return ""
	}
	return n.Parts[len(n.Parts)-2].Name
}

// Name returns the final name segment.
func (n ObjectName) Name() string {
	if len(n.Parts) == 0 {
		return ""
	}
	return n.Parts[len(n.Parts)-1].Name
}

// String returns the dotted form.
func (n ObjectName) String() string {
	parts := make([]string, len(n.Parts))
	for i, p := range n.Parts {
		parts[i] = p.Name
	}
	return strings.Join(parts, ".")
}

// LastToken returns the token of the final name segment.
func (n ObjectName) LastToken() Token {
	if len(n.Parts) == 0 {
		return Token{}
	}
	return n.Parts[len(n.Parts)-1].Tok
}

// FirstToken returns the token of the first name segment.
func (n ObjectName) FirstToken() Token {
	if len(n.Parts) == 0 {
		return Token{}
	}
	return n.Parts[0].Tok
}

// TypeName is a parsed type reference from DDL or CAST.
type TypeName struct {
	Name  string
	Args  []int
	Array bool
	Tok   Token
}

// WithClause is a WITH [RECURSIVE] prefix.
type WithClause struct {
	Recursive bool
	CTEs      []*CTE
}

// CTE is a single common table expression.
type CTE struct {
	Name    Ident
	Columns []Ident
	Select  *SelectStmt
}

// SelectItem is one projection entry.
type SelectItem struct {
	Expr  Expr
	Alias string
	// AliasTok is zero when no alias was written.
	AliasTok Token
}

// OrderItem is one ORDER BY entry.
type OrderItem struct {
	Expr Expr
	Desc bool
}

// SetOp names a compound query operator.
type SetOp string

// Compound query operators.
const (
	SetOpUnion     SetOp = "UNION"
	SetOpIntersect SetOp = "INTERSECT"
	SetOpExcept    SetOp = "EXCEPT"
)

// CompoundSelect is a trailing set-operation arm of a SELECT.
type CompoundSelect struct {
	Op     SetOp
	All    bool
	Select *SelectStmt
}

// SelectStmt is a SELECT statement, possibly with CTEs and set operations.
type SelectStmt struct {
	With     *WithClause
	Distinct bool
	Items    []SelectItem
	From     []TableExpr
	Where    Expr
	GroupBy  []Expr
	Having   Expr
	OrderBy  []OrderItem
	Limit    Expr
	Offset   Expr
	Compound []CompoundSelect

	first Token
	last  Token
}

func (*SelectStmt) stmtNode() {}

// Span covers the whole statement.
func (s *SelectStmt) Span() *diag.Span { return SpanBetween(s.first, s.last) }

// OutputNames returns the projection's output column names. Aliases win,
// bare columns use their name, qualified columns their last segment, and
// anything else becomes "?column?" with a 1-based position suffix for
// duplicates of the placeholder.
func (s *SelectStmt) OutputNames() []string {
	names := make([]string, 0, len(s.Items))
	for i, item := range s.Items {
		switch {
		case item.Alias != "":
			names = append(names, item.Alias)
		default:
			if ref, ok := item.Expr.(*ColumnRef); ok && !ref.Star {
				names = append(names, ref.Name.Name)
				continue
			}
			if fc, ok := item.Expr.(*FuncCall); ok {
				names = append(names, strings.ToLower(fc.Name.Name()))
				continue
			}
			names = append(names, placeholderColumn(i))
		}
	}
	return names
}

func placeholderColumn(i int) string {
	return "?column?" + strconv.Itoa(i+1)
}

// TableExpr is implemented by FROM clause items.
type TableExpr interface {
	tableExprNode()
}

// TableRef is a named table, view, or CTE reference in FROM.
type TableRef struct {
	Name  ObjectName
	Alias string
	// AliasTok is zero when no alias was written.
	AliasTok Token
}

func (*TableRef) tableExprNode() {}

// DerivedTable is a parenthesized subquery in FROM.
type DerivedTable struct {
	Lateral bool
	Select  *SelectStmt
	Alias   string
	Columns []Ident
	// AliasTok is zero when no alias was written.
	AliasTok Token
}

func (*DerivedTable) tableExprNode() {}

// FunctionSource is a set-returning function call in FROM, such as
// generate_series(1, 10) g(n). Columns holds the alias column list
// when one is written; without it the output shape is unknown.
type FunctionSource struct {
	Name    ObjectName
	Args    []Expr
	Alias   string
	Columns []Ident
	// AliasTok is zero when no alias was written.
	AliasTok Token
}

func (*FunctionSource) tableExprNode() {}

// JoinKind names the join flavor.
type JoinKind string

// Join flavors.
const (
	JoinInner JoinKind = "INNER"
	JoinLeft  JoinKind = "LEFT"
	JoinRight JoinKind = "RIGHT"
	JoinFull  JoinKind = "FULL"
	JoinCross JoinKind = "CROSS"
)

// Join combines two table expressions.
type Join struct {
	Left    TableExpr
	Right   TableExpr
	Kind    JoinKind
	Natural bool
	On      Expr
	Using   []Ident
}

func (*Join) tableExprNode() {}

// Assignment is one SET entry in UPDATE.
type Assignment struct {
	Column Ident
	Value  Expr
}

// InsertStmt is an INSERT statement.
type InsertStmt struct {
	Table   ObjectName
	Columns []Ident
	Rows    [][]Expr
	Select  *SelectStmt
	// RowTokens holds the opening parenthesis of each VALUES row for spans.
	RowTokens []Token

	first Token
	last  Token
}

func (*InsertStmt) stmtNode() {}

// Span covers the whole statement.
func (s *InsertStmt) Span() *diag.Span { return SpanBetween(s.first, s.last) }

// UpdateStmt is an UPDATE statement.
type UpdateStmt struct {
	Table ObjectName
	Alias string
	Set   []Assignment
	From  []TableExpr
	Where Expr

	first Token
	last  Token
}

func (*UpdateStmt) stmtNode() {}

// Span covers the whole statement.
func (s *UpdateStmt) Span() *diag.Span { return SpanBetween(s.first, s.last) }

// DeleteStmt is a DELETE statement. Using holds the extra tables of a
// PostgreSQL-style USING clause.
type DeleteStmt struct {
	Table ObjectName
	Alias string
	Using []TableExpr
	Where Expr

	first Token
	last  Token
}

func (*DeleteStmt) stmtNode() {}

// Span covers the whole statement.
func (s *DeleteStmt) Span() *diag.Span { return SpanBetween(s.first, s.last) }

// ColumnReference is a column-level REFERENCES clause.
type ColumnReference struct {
	Table   ObjectName
	Columns []Ident
}

// ColumnConstraint flags parsed from a column definition.
type ColumnConstraint struct {
	NotNull    bool
	Null       bool
	PrimaryKey bool
	Unique     bool
	Default    Expr
	References *ColumnReference
	// Identity is "ALWAYS", "BY DEFAULT", or empty.
	Identity string
}

// ColumnDef is one column in CREATE TABLE.
type ColumnDef struct {
	Name       Ident
	Type       TypeName
	Constraint ColumnConstraint
}

// TableConstraint is a table-level constraint in CREATE TABLE or
// ALTER TABLE ADD CONSTRAINT.
type TableConstraint struct {
	// Name is the CONSTRAINT name, or empty for anonymous constraints.
	Name string
	// Kind is "PRIMARY KEY", "UNIQUE", "FOREIGN KEY", or "CHECK".
	Kind    string
	Columns []Ident
	// RefTable and RefColumns carry the REFERENCES target of a
	// foreign key.
	RefTable   ObjectName
	RefColumns []Ident
	// CheckExpr is the raw source text of a CHECK expression.
	CheckExpr string
}

// CreateTableStmt is a CREATE TABLE statement.
type CreateTableStmt struct {
	Name        ObjectName
	IfNotExists bool
	Columns     []ColumnDef
	Constraints []TableConstraint

	first Token
	last  Token
}

func (*CreateTableStmt) stmtNode() {}

// Span covers the whole statement.
func (s *CreateTableStmt) Span() *diag.Span { return SpanBetween(s.first, s.last) }

// CreateViewStmt is a CREATE VIEW statement.
type CreateViewStmt struct {
	Name      ObjectName
	OrReplace bool
	Columns   []Ident
	Select    *SelectStmt

	first Token
	last  Token
}

func (*CreateViewStmt) stmtNode() {}

// Span covers the whole statement.
func (s *CreateViewStmt) Span() *diag.Span { return SpanBetween(s.first, s.last) }

// CreateTypeStmt is a CREATE TYPE ... AS ENUM statement.
type CreateTypeStmt struct {
	Name   ObjectName
	Values []string

	first Token
	last  Token
}

func (*CreateTypeStmt) stmtNode() {}

// Span covers the whole statement.
func (s *CreateTypeStmt) Span() *diag.Span { return SpanBetween(s.first, s.last) }

// AlterAction names an ALTER TABLE action.
type AlterAction int

// ALTER TABLE actions.
const (
	AlterAddColumn AlterAction = iota
	AlterDropColumn
	AlterRenameColumn
	AlterRenameTable
	AlterAddConstraint
)

// AlterTableStmt is an ALTER TABLE statement.
type AlterTableStmt struct {
	Table      ObjectName
	Action     AlterAction
	Column     *ColumnDef
	ColumnName Ident
	NewName    Ident
	Constraint *TableConstraint

	first Token
	last  Token
}

func (*AlterTableStmt) stmtNode() {}

// Span covers the whole statement.
func (s *AlterTableStmt) Span() *diag.Span { return SpanBetween(s.first, s.last) }

// ColumnRef is a possibly qualified column reference. Star marks t.*.
type ColumnRef struct {
	Qualifier []Ident
	Name      Ident
	Star      bool
	StarTok   Token
}

func (*ColumnRef) exprNode() {}

// Pos returns the first token of the expression.
func (e *ColumnRef) Pos() Token {
	if len(e.Qualifier) > 0 {
		return e.Qualifier[0].Tok
	}
	if e.Star {
		return e.StarTok
	}
	return e.Name.Tok
}

// End returns the last token of the expression.
func (e *ColumnRef) End() Token {
	if e.Star {
		return e.StarTok
	}
	return e.Name.Tok
}

// QualifierName returns the dotted qualifier, or empty when unqualified.
func (e *ColumnRef) QualifierName() string {
	parts := make([]string, len(e.Qualifier))
	for i, q := range e.Qualifier {
		parts[i] = q.Name
	}
	return strings.Join(parts, ".")
}

// StarExpr is a bare * projection.
type StarExpr struct {
	Tok Token
}

func (*StarExpr) exprNode() {}

// Pos returns the star token.
func (e *StarExpr) Pos() Token { return e.Tok }

// End returns the star token.
func (e *StarExpr) End() Token { return e.Tok }

// NumberLit is a numeric literal.
type NumberLit struct {
	Tok Token
}

func (*NumberLit) exprNode() {}

// Pos returns the literal token.
func (e *NumberLit) Pos() Token { return e.Tok }

// End returns the literal token.
func (e *NumberLit) End() Token { return e.Tok }

// Value returns the literal text.
func (e *NumberLit) Value() string { return e.Tok.Text }

// StringLit is a string literal. Value holds the unquoted content.
type StringLit struct {
	Tok   Token
	Value string
}

func (*StringLit) exprNode() {}

// Pos returns the literal token.
func (e *StringLit) Pos() Token { return e.Tok }

// End returns the literal token.
func (e *StringLit) End() Token { return e.Tok }

// BoolLit is TRUE or FALSE.
type BoolLit struct {
	Tok   Token
	Value bool
}

func (*BoolLit) exprNode() {}

// Pos returns the literal token.
func (e *BoolLit) Pos() Token { return e.Tok }

// End returns the literal token.
func (e *BoolLit) End() Token { return e.Tok }

// NullLit is the NULL literal.
type NullLit struct {
	Tok Token
}

func (*NullLit) exprNode() {}

// Pos returns the literal token.
func (e *NullLit) Pos() Token { return e.Tok }

// End returns the literal token.
func (e *NullLit) End() Token { return e.Tok }

// ParamExpr is a query parameter ($1, ?, :name).
type ParamExpr struct {
	Tok Token
}

func (*ParamExpr) exprNode() {}

// Pos returns the parameter token.
func (e *ParamExpr) Pos() Token { return e.Tok }

// End returns the parameter token.
func (e *ParamExpr) End() Token { return e.Tok }

// UnaryExpr is a prefix operator application.
type UnaryExpr struct {
	Op      string
	OpTok   Token
	Operand Expr
}

func (*UnaryExpr) exprNode() {}

// Pos returns the operator token.
func (e *UnaryExpr) Pos() Token { return e.OpTok }

// End returns the operand's last token.
func (e *UnaryExpr) End() Token { return e.Operand.End() }

// BinaryExpr is an infix operator application. Op is uppercase for word
// operators (AND, OR, LIKE) and the literal symbol otherwise.
type BinaryExpr struct {
	Left  Expr
	Op    string
	OpTok Token
	Right Expr
}

func (*BinaryExpr) exprNode() {}

// Pos returns the left operand's first token.
func (e *BinaryExpr) Pos() Token { return e.Left.Pos() }

// End returns the right operand's last token.
func (e *BinaryExpr) End() Token { return e.Right.End() }

// IsComparison reports whether the operator compares its operands.
func (e *BinaryExpr) IsComparison() bool {
	switch e.Op {
	case "=", "<>", "!=", "<", "<=", ">", ">=":
		return true
	}
	return false
}

// IsArithmetic reports whether the operator is numeric arithmetic.
func (e *BinaryExpr) IsArithmetic() bool {
	switch e.Op {
	case "+", "-", "*", "/", "%":
		return true
	}
	return false
}

// IsLogical reports whether the operator is AND or OR.
func (e *BinaryExpr) IsLogical() bool {
	return e.Op == "AND" || e.Op == "OR"
}

// FuncCall is a function invocation.
type FuncCall struct {
	Name     ObjectName
	Distinct bool
	Star     bool
	Args     []Expr
	first    Token
	last     Token
}

func (*FuncCall) exprNode() {}

// Pos returns the function name's first token.
func (e *FuncCall) Pos() Token { return e.first }

// End returns the closing parenthesis.
func (e *FuncCall) End() Token { return e.last }

// CastExpr is CAST(expr AS type) or expr::type.
type CastExpr struct {
	Operand Expr
	Type    TypeName
	first   Token
	last    Token
}

func (*CastExpr) exprNode() {}

// Pos returns the first token of the cast.
func (e *CastExpr) Pos() Token { return e.first }

// End returns the last token of the cast.
func (e *CastExpr) End() Token { return e.last }

// When is one WHEN/THEN arm of a CASE expression.
type When struct {
	Cond   Expr
	Result Expr
}

// CaseExpr is a CASE expression.
type CaseExpr struct {
	Operand Expr
	Whens   []When
	Else    Expr
	first   Token
	last    Token
}

func (*CaseExpr) exprNode() {}

// Pos returns the CASE token.
func (e *CaseExpr) Pos() Token { return e.first }

// End returns the END token.
func (e *CaseExpr) End() Token { return e.last }

// InExpr is expr [NOT] IN (list | subquery).
type InExpr struct {
	Operand Expr
	Not     bool
	List    []Expr
	Select  *SelectStmt
	last    Token
}

func (*InExpr) exprNode() {}

// Pos returns the operand's first token.
func (e *InExpr) Pos() Token { return e.Operand.Pos() }

// End returns the closing parenthesis.
func (e *InExpr) End() Token { return e.last }

// BetweenExpr is expr [NOT] BETWEEN low AND high.
type BetweenExpr struct {
	Operand Expr
	Not     bool
	Low     Expr
	High    Expr
}

func (*BetweenExpr) exprNode() {}

// Pos returns the operand's first token.
func (e *BetweenExpr) Pos() Token { return e.Operand.Pos() }

// End returns the high bound's last token.
func (e *BetweenExpr) End() Token { return e.High.End() }

// IsNullExpr is expr IS [NOT] NULL.
type IsNullExpr struct {
	Operand Expr
	Not     bool
	last    Token
}

func (*IsNullExpr) exprNode() {}

// Pos returns the operand's first token.
func (e *IsNullExpr) Pos() Token { return e.Operand.Pos() }

// End returns the NULL token.
func (e *IsNullExpr) End() Token { return e.last }

// SubqueryExpr is a parenthesized scalar subquery.
type SubqueryExpr struct {
	Select *SelectStmt
	first  Token
	last   Token
}

func (*SubqueryExpr) exprNode() {}

// Pos returns the opening parenthesis.
func (e *SubqueryExpr) Pos() Token { return e.first }

// End returns the closing parenthesis.
func (e *SubqueryExpr) End() Token { return e.last }

// ExistsExpr is [NOT] EXISTS (subquery).
type ExistsExpr struct {
	Not    bool
	Select *SelectStmt
	first  Token
	last   Token
}

func (*ExistsExpr) exprNode() {}

// Pos returns the EXISTS (or NOT) token.
func (e *ExistsExpr) Pos() Token { return e.first }

// End returns the closing parenthesis.
func (e *ExistsExpr) End() Token { return e.last }
