package analyzer

import (
	"github.com/electwix/sqlguard/internal/catalog"
	"github.com/electwix/sqlguard/internal/diag"
	"github.com/electwix/sqlguard/internal/sqlparse"
	"github.com/electwix/sqlguard/internal/sqltype"
)

// TypeResolver infers best-effort expression types and flags
// comparisons and arithmetic that cannot work without an explicit
// cast. It reuses the scope built by a NameResolver so table lookups
// are not re-derived from the AST.
type TypeResolver struct {
	catalog *catalog.Catalog
	scope   *scope
	diags   []diag.Diagnostic
}

// NewTypeResolver creates a type checker bound to a catalog.
func NewTypeResolver(cat *catalog.Catalog) *TypeResolver {
	return &TypeResolver{catalog: cat, scope: &scope{}}
}

// InheritScope adopts the table scope a NameResolver built for the
// same statement.
func (t *TypeResolver) InheritScope(r *NameResolver) {
	if r.result != nil {
		t.scope = r.result
	}
}

// Diagnostics returns everything collected so far.
func (t *TypeResolver) Diagnostics() []diag.Diagnostic {
	return t.diags
}

// Check walks one statement. Only SELECT bodies and UPDATE/DELETE WHERE
// clauses are checked; INSERT and UPDATE value expressions are not
// validated against column types.
func (t *TypeResolver) Check(stmt sqlparse.Statement) {
	switch s := stmt.(type) {
	case *sqlparse.SelectStmt:
		t.checkSelect(s)
	case *sqlparse.UpdateStmt:
		if s.Where != nil {
			t.checkExpr(s.Where)
		}
	case *sqlparse.DeleteStmt:
		if s.Where != nil {
			t.checkExpr(s.Where)
		}
	}
}

func (t *TypeResolver) checkSelect(sel *sqlparse.SelectStmt) {
	for _, item := range sel.From {
		t.checkFromItem(item)
	}
	for _, item := range sel.Items {
		if _, ok := item.Expr.(*sqlparse.StarExpr); ok {
			continue
		}
		t.checkExpr(item.Expr)
	}
	if sel.Where != nil {
		t.checkExpr(sel.Where)
	}
	if sel.Having != nil {
		t.checkExpr(sel.Having)
	}
}

// checkFromItem descends join trees and applies the JOIN ON rule to
// each ON condition.
func (t *TypeResolver) checkFromItem(item sqlparse.TableExpr) {
	join, ok := item.(*sqlparse.Join)
	if !ok {
		return
	}
	t.checkFromItem(join.Left)
	t.checkFromItem(join.Right)
	if join.On != nil {
		t.checkJoinOn(join.On)
	}
}

// checkJoinOn flags incompatible top-level comparisons in an ON clause
// as JoinTypeMismatch rather than the generic TypeMismatch. Logical and
// other binary operators recurse; leaves stop the walk.
func (t *TypeResolver) checkJoinOn(expr sqlparse.Expr) {
	bin, ok := expr.(*sqlparse.BinaryExpr)
	if !ok {
		return
	}
	if bin.IsComparison() {
		left, leftKnown := t.inferType(bin.Left)
		right, rightKnown := t.inferType(bin.Right)
		if leftKnown && rightKnown && !sqltype.Comparable(left, right) {
			t.diags = append(t.diags, diag.New(diag.KindJoinTypeMismatch).
				Messagef("JOIN condition type mismatch: %s vs %s", left, right).
				Span(sqlparse.ExprSpan(bin.Left)).
				Help("JOIN condition should compare compatible types. Consider using explicit CAST.").
				Build())
		}
	}
	t.checkJoinOn(bin.Left)
	t.checkJoinOn(bin.Right)
}

// checkExpr recursively applies the binary operator rules.
func (t *TypeResolver) checkExpr(expr sqlparse.Expr) {
	switch e := expr.(type) {
	case *sqlparse.BinaryExpr:
		t.checkBinary(e)
		t.checkExpr(e.Left)
		t.checkExpr(e.Right)
	case *sqlparse.UnaryExpr:
		t.checkExpr(e.Operand)
	case *sqlparse.CastExpr:
		t.checkExpr(e.Operand)
	case *sqlparse.InExpr:
		t.checkExpr(e.Operand)
		for _, item := range e.List {
			t.checkExpr(item)
		}
	case *sqlparse.BetweenExpr:
		t.checkExpr(e.Operand)
		t.checkExpr(e.Low)
		t.checkExpr(e.High)
	case *sqlparse.CaseExpr:
		if e.Operand != nil {
			t.checkExpr(e.Operand)
		}
		for _, when := range e.Whens {
			t.checkExpr(when.Cond)
			t.checkExpr(when.Result)
		}
		if e.Else != nil {
			t.checkExpr(e.Else)
		}
	case *sqlparse.IsNullExpr:
		t.checkExpr(e.Operand)
	}
	// subqueries are resolved by NameResolver and not type-checked
}

// checkBinary flags a comparison only when neither direction admits an
// implicit cast, and arithmetic when a known operand is not numeric.
// Concatenation (||) is never flagged.
func (t *TypeResolver) checkBinary(bin *sqlparse.BinaryExpr) {
	left, leftKnown := t.inferType(bin.Left)
	right, rightKnown := t.inferType(bin.Right)
	if !leftKnown || !rightKnown {
		return
	}

	switch {
	case bin.IsComparison():
		if !sqltype.Comparable(left, right) {
			t.diags = append(t.diags, diag.New(diag.KindTypeMismatch).
				Messagef("Type mismatch: cannot compare %s with %s", left, right).
				Span(sqlparse.ExprSpan(bin.Left)).
				Help("Types are not implicitly compatible. Consider using explicit CAST.").
				Build())
		}
	case bin.IsArithmetic():
		if !left.IsNumeric() {
			t.diags = append(t.diags, diag.New(diag.KindTypeMismatch).
				Messagef("Arithmetic operation requires numeric types, but got %s", left).
				Span(sqlparse.ExprSpan(bin.Left)).
				Build())
		}
		if !right.IsNumeric() {
			t.diags = append(t.diags, diag.New(diag.KindTypeMismatch).
				Messagef("Arithmetic operation requires numeric types, but got %s", right).
				Span(sqlparse.ExprSpan(bin.Right)).
				Build())
		}
	}
}

// inferType infers an expression's type. The second result is false
// when the type cannot be determined; unknown types are never flagged.
// Bare number literals always infer as integer, including ones with a
// decimal point.
func (t *TypeResolver) inferType(expr sqlparse.Expr) (sqltype.Type, bool) {
	switch e := expr.(type) {
	case *sqlparse.NumberLit:
		return sqltype.Integer, true
	case *sqlparse.StringLit:
		return sqltype.Text, true
	case *sqlparse.BoolLit:
		return sqltype.Boolean, true
	case *sqlparse.ColumnRef:
		if e.Star {
			return sqltype.Unknown, false
		}
		return t.inferColumnType(e)
	}
	return sqltype.Unknown, false
}

// inferColumnType looks a column reference up in the inherited scope.
// Views, CTEs, and derived tables yield unknown; so does an unqualified
// name found in more than one table.
func (t *TypeResolver) inferColumnType(ref *sqlparse.ColumnRef) (sqltype.Type, bool) {
	if len(ref.Qualifier) > 0 {
		q := ref.Qualifier[len(ref.Qualifier)-1]
		b, ok := t.scope.lookup(q.Name)
		if !ok || b.kind != bindTable {
			return sqltype.Unknown, false
		}
		if col, ok := b.table.Column(ref.Name.Name); ok {
			return col.Type, true
		}
		return sqltype.Unknown, false
	}

	var found sqltype.Type
	var known bool
	for _, b := range t.scope.bindings {
		if b.kind != bindTable {
			if b.hasColumn(ref.Name.Name) || b.opaque {
				return sqltype.Unknown, false
			}
			continue
		}
		col, ok := b.table.Column(ref.Name.Name)
		if !ok {
			continue
		}
		if known {
			return sqltype.Unknown, false
		}
		found, known = col.Type, true
	}
	return found, known
}
