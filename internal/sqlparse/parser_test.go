package sqlparse

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustParse(t *testing.T, sql string) Statement {
	t.Helper()
	stmt, err := ParseStatement(sql)
	if err != nil {
		t.Fatalf("ParseStatement(%q) failed: %v", sql, err)
	}
	return stmt
}

func TestParseSimpleSelect(t *testing.T) {
	stmt := mustParse(t, "SELECT id, name FROM users WHERE active = true")
	sel, ok := stmt.(*SelectStmt)
	if !ok {
		t.Fatalf("got %T, want *SelectStmt", stmt)
	}
	if len(sel.Items) != 2 {
		t.Fatalf("projection count = %d, want 2", len(sel.Items))
	}
	ref, ok := sel.Items[0].Expr.(*ColumnRef)
	if !ok || ref.Name.Name != "id" {
		t.Errorf("first item = %#v, want column ref id", sel.Items[0].Expr)
	}
	if len(sel.From) != 1 {
		t.Fatalf("from count = %d, want 1", len(sel.From))
	}
	tr, ok := sel.From[0].(*TableRef)
	if !ok || tr.Name.Name() != "users" {
		t.Errorf("from = %#v, want table ref users", sel.From[0])
	}
	cmpExpr, ok := sel.Where.(*BinaryExpr)
	if !ok || cmpExpr.Op != "=" {
		t.Fatalf("where = %#v, want = comparison", sel.Where)
	}
	if _, ok := cmpExpr.Right.(*BoolLit); !ok {
		t.Errorf("right operand = %#v, want bool literal", cmpExpr.Right)
	}
}

func TestParseAliases(t *testing.T) {
	stmt := mustParse(t, "SELECT u.id AS user_id, count(*) total FROM users u")
	sel := stmt.(*SelectStmt)
	if sel.Items[0].Alias != "user_id" {
		t.Errorf("alias = %q, want user_id", sel.Items[0].Alias)
	}
	if sel.Items[1].Alias != "total" {
		t.Errorf("bare alias = %q, want total", sel.Items[1].Alias)
	}
	call, ok := sel.Items[1].Expr.(*FuncCall)
	if !ok || !call.Star {
		t.Errorf("expr = %#v, want count(*)", sel.Items[1].Expr)
	}
	tr := sel.From[0].(*TableRef)
	if tr.Alias != "u" {
		t.Errorf("table alias = %q, want u", tr.Alias)
	}
}

func TestParseQualifiedStar(t *testing.T) {
	stmt := mustParse(t, "SELECT u.* FROM users u")
	sel := stmt.(*SelectStmt)
	ref, ok := sel.Items[0].Expr.(*ColumnRef)
	if !ok || !ref.Star || ref.QualifierName() != "u" {
		t.Fatalf("expr = %#v, want u.*", sel.Items[0].Expr)
	}
}

func TestParseJoins(t *testing.T) {
	stmt := mustParse(t, `
		SELECT o.id
		FROM orders o
		JOIN users u ON o.user_id = u.id
		LEFT OUTER JOIN payments p ON p.order_id = o.id
		CROSS JOIN regions`)
	sel := stmt.(*SelectStmt)
	if len(sel.From) != 1 {
		t.Fatalf("from count = %d, want 1 join tree", len(sel.From))
	}
	cross, ok := sel.From[0].(*Join)
	if !ok || cross.Kind != JoinCross {
		t.Fatalf("outermost join = %#v, want CROSS", sel.From[0])
	}
	left, ok := cross.Left.(*Join)
	if !ok || left.Kind != JoinLeft {
		t.Fatalf("middle join kind = %v, want LEFT", left.Kind)
	}
	inner, ok := left.Left.(*Join)
	if !ok || inner.Kind != JoinInner || inner.On == nil {
		t.Fatalf("innermost join = %#v, want INNER with ON", left.Left)
	}
}

func TestParseDerivedTableAndLateral(t *testing.T) {
	stmt := mustParse(t, `
		SELECT t.n
		FROM (SELECT count(*) AS n FROM users) t,
		LATERAL (SELECT id FROM orders WHERE orders.user_id = t.n) o`)
	sel := stmt.(*SelectStmt)
	if len(sel.From) != 2 {
		t.Fatalf("from count = %d, want 2", len(sel.From))
	}
	dt, ok := sel.From[0].(*DerivedTable)
	if !ok || dt.Alias != "t" || dt.Lateral {
		t.Fatalf("first item = %#v, want non-lateral derived table t", sel.From[0])
	}
	lat, ok := sel.From[1].(*DerivedTable)
	if !ok || !lat.Lateral || lat.Alias != "o" {
		t.Fatalf("second item = %#v, want lateral derived table o", sel.From[1])
	}
}

func TestParseFunctionSource(t *testing.T) {
	stmt := mustParse(t, "SELECT g.n FROM generate_series(1, 10) g(n)")
	sel := stmt.(*SelectStmt)
	fn, ok := sel.From[0].(*FunctionSource)
	if !ok {
		t.Fatalf("from = %#v, want function source", sel.From[0])
	}
	if fn.Name.Name() != "generate_series" || len(fn.Args) != 2 {
		t.Fatalf("fn = %#v, want generate_series with 2 args", fn)
	}
	if fn.Alias != "g" || len(fn.Columns) != 1 || fn.Columns[0].Name != "n" {
		t.Errorf("alias = %q, columns = %#v, want g(n)", fn.Alias, fn.Columns)
	}

	stmt = mustParse(t, "SELECT * FROM unnest(tags) AS tag")
	sel = stmt.(*SelectStmt)
	fn = sel.From[0].(*FunctionSource)
	if fn.Alias != "tag" || len(fn.Columns) != 0 {
		t.Errorf("fn = %#v, want bare alias tag", fn)
	}
}

func TestParseCTE(t *testing.T) {
	stmt := mustParse(t, `
		WITH RECURSIVE nums(n) AS (
			SELECT 1
			UNION ALL
			SELECT n + 1 FROM nums WHERE n < 10
		)
		SELECT n FROM nums`)
	sel := stmt.(*SelectStmt)
	if sel.With == nil || !sel.With.Recursive {
		t.Fatal("expected recursive WITH clause")
	}
	cte := sel.With.CTEs[0]
	if cte.Name.Name != "nums" || len(cte.Columns) != 1 || cte.Columns[0].Name != "n" {
		t.Fatalf("cte = %#v, want nums(n)", cte)
	}
	if len(cte.Select.Compound) != 1 || cte.Select.Compound[0].Op != SetOpUnion || !cte.Select.Compound[0].All {
		t.Fatalf("cte body should be UNION ALL, got %#v", cte.Select.Compound)
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	stmt := mustParse(t, "SELECT 1 WHERE a + b * c = d AND NOT e OR f")
	sel := stmt.(*SelectStmt)

	or, ok := sel.Where.(*BinaryExpr)
	if !ok || or.Op != "OR" {
		t.Fatalf("top = %#v, want OR", sel.Where)
	}
	and, ok := or.Left.(*BinaryExpr)
	if !ok || and.Op != "AND" {
		t.Fatalf("or.Left = %#v, want AND", or.Left)
	}
	eq, ok := and.Left.(*BinaryExpr)
	if !ok || eq.Op != "=" {
		t.Fatalf("and.Left = %#v, want =", and.Left)
	}
	add, ok := eq.Left.(*BinaryExpr)
	if !ok || add.Op != "+" {
		t.Fatalf("eq.Left = %#v, want +", eq.Left)
	}
	mul, ok := add.Right.(*BinaryExpr)
	if !ok || mul.Op != "*" {
		t.Fatalf("add.Right = %#v, want *", add.Right)
	}
}

func TestParseCastForms(t *testing.T) {
	stmt := mustParse(t, "SELECT CAST(total AS bigint), created_at::timestamp with time zone FROM orders")
	sel := stmt.(*SelectStmt)

	c1, ok := sel.Items[0].Expr.(*CastExpr)
	if !ok || c1.Type.Name != "bigint" {
		t.Fatalf("first = %#v, want CAST AS bigint", sel.Items[0].Expr)
	}
	c2, ok := sel.Items[1].Expr.(*CastExpr)
	if !ok || c2.Type.Name != "timestamp with time zone" {
		t.Fatalf("second = %#v, want ::timestamptz", sel.Items[1].Expr)
	}
}

func TestParsePredicates(t *testing.T) {
	stmt := mustParse(t, `
		SELECT 1 FROM t
		WHERE a IS NOT NULL
		  AND b IN (1, 2, 3)
		  AND c NOT BETWEEN 1 AND 10
		  AND d LIKE 'x%'
		  AND EXISTS (SELECT 1 FROM u)`)
	sel := stmt.(*SelectStmt)
	// walk down the AND spine collecting leaves
	var leaves []Expr
	var walk func(e Expr)
	walk = func(e Expr) {
		if b, ok := e.(*BinaryExpr); ok && b.Op == "AND" {
			walk(b.Left)
			walk(b.Right)
			return
		}
		leaves = append(leaves, e)
	}
	walk(sel.Where)
	if len(leaves) != 5 {
		t.Fatalf("leaf count = %d, want 5", len(leaves))
	}
	if n, ok := leaves[0].(*IsNullExpr); !ok || !n.Not {
		t.Errorf("leaf 0 = %#v, want IS NOT NULL", leaves[0])
	}
	if in, ok := leaves[1].(*InExpr); !ok || len(in.List) != 3 {
		t.Errorf("leaf 1 = %#v, want IN list of 3", leaves[1])
	}
	if btw, ok := leaves[2].(*BetweenExpr); !ok || !btw.Not {
		t.Errorf("leaf 2 = %#v, want NOT BETWEEN", leaves[2])
	}
	if like, ok := leaves[3].(*BinaryExpr); !ok || like.Op != "LIKE" {
		t.Errorf("leaf 3 = %#v, want LIKE", leaves[3])
	}
	if _, ok := leaves[4].(*ExistsExpr); !ok {
		t.Errorf("leaf 4 = %#v, want EXISTS", leaves[4])
	}
}

func TestParseInsert(t *testing.T) {
	stmt := mustParse(t, "INSERT INTO users (name, email) VALUES ('a', 'b'), ('c', 'd')")
	ins := stmt.(*InsertStmt)
	if ins.Table.Name() != "users" {
		t.Errorf("table = %q, want users", ins.Table.Name())
	}
	if len(ins.Columns) != 2 || ins.Columns[1].Name != "email" {
		t.Errorf("columns = %#v, want (name, email)", ins.Columns)
	}
	if len(ins.Rows) != 2 || len(ins.Rows[0]) != 2 {
		t.Errorf("rows = %d x %d, want 2 x 2", len(ins.Rows), len(ins.Rows[0]))
	}
}

func TestParseInsertSelect(t *testing.T) {
	stmt := mustParse(t, "INSERT INTO archive SELECT * FROM users WHERE active = false")
	ins := stmt.(*InsertStmt)
	if ins.Select == nil {
		t.Fatal("expected INSERT ... SELECT")
	}
}

func TestParseUpdateDelete(t *testing.T) {
	stmt := mustParse(t, "UPDATE users SET name = 'x', active = false WHERE id = 1")
	upd := stmt.(*UpdateStmt)
	if len(upd.Set) != 2 || upd.Set[0].Column.Name != "name" {
		t.Fatalf("set = %#v", upd.Set)
	}
	if upd.Where == nil {
		t.Error("expected WHERE clause")
	}

	stmt = mustParse(t, "DELETE FROM users WHERE id = 1")
	del := stmt.(*DeleteStmt)
	if del.Table.Name() != "users" || del.Where == nil {
		t.Fatalf("delete = %#v", del)
	}
}

func TestParseCreateTable(t *testing.T) {
	stmt := mustParse(t, `
		CREATE TABLE users (
			id bigserial PRIMARY KEY,
			email varchar(255) NOT NULL UNIQUE,
			balance numeric(10, 2) DEFAULT 0,
			created_at timestamp with time zone DEFAULT now(),
			tags text[],
			seq integer GENERATED ALWAYS AS IDENTITY,
			org_id integer REFERENCES orgs (id) ON DELETE CASCADE,
			PRIMARY KEY (id)
		)`)
	ct := stmt.(*CreateTableStmt)
	if ct.Name.Name() != "users" {
		t.Fatalf("name = %q", ct.Name.Name())
	}
	if len(ct.Columns) != 7 {
		t.Fatalf("column count = %d, want 7", len(ct.Columns))
	}
	wantTypes := []string{"bigserial", "varchar", "numeric", "timestamp with time zone", "text", "integer", "integer"}
	for i, want := range wantTypes {
		if got := ct.Columns[i].Type.Name; got != want {
			t.Errorf("column %d type = %q, want %q", i, got, want)
		}
	}
	if !ct.Columns[0].Constraint.PrimaryKey {
		t.Error("id should be primary key")
	}
	if !ct.Columns[1].Constraint.NotNull || !ct.Columns[1].Constraint.Unique {
		t.Error("email should be NOT NULL UNIQUE")
	}
	if diff := cmp.Diff([]int{10, 2}, ct.Columns[2].Type.Args); diff != "" {
		t.Errorf("numeric args mismatch (-want +got):\n%s", diff)
	}
	if ct.Columns[2].Constraint.Default == nil {
		t.Error("balance should carry a default")
	}
	if !ct.Columns[4].Type.Array {
		t.Error("tags should be an array type")
	}
	if ct.Columns[5].Constraint.Identity != "ALWAYS" {
		t.Errorf("seq identity = %q, want ALWAYS", ct.Columns[5].Constraint.Identity)
	}
	if len(ct.Constraints) != 1 || ct.Constraints[0].Kind != "PRIMARY KEY" {
		t.Fatalf("constraints = %#v", ct.Constraints)
	}
}

func TestParseConstraintClauses(t *testing.T) {
	stmt := mustParse(t, `CREATE TABLE orders (
		id bigint,
		user_id bigint REFERENCES users (id),
		CONSTRAINT orders_user_fk FOREIGN KEY (user_id) REFERENCES public.users (id) ON DELETE CASCADE,
		CHECK (total > 0)
	)`)
	ct := stmt.(*CreateTableStmt)

	ref := ct.Columns[1].Constraint.References
	if ref == nil || ref.Table.Name() != "users" || len(ref.Columns) != 1 {
		t.Fatalf("column references = %#v", ref)
	}

	if len(ct.Constraints) != 2 {
		t.Fatalf("constraints = %#v", ct.Constraints)
	}
	fk := ct.Constraints[0]
	if fk.Name != "orders_user_fk" || fk.Kind != "FOREIGN KEY" {
		t.Errorf("foreign key = %#v", fk)
	}
	if fk.RefTable.Schema() != "public" || fk.RefTable.Name() != "users" {
		t.Errorf("foreign key target = %#v", fk.RefTable)
	}
	if len(fk.RefColumns) != 1 || fk.RefColumns[0].Name != "id" {
		t.Errorf("foreign key columns = %#v", fk.RefColumns)
	}
	check := ct.Constraints[1]
	if check.Kind != "CHECK" || check.CheckExpr != "total > 0" {
		t.Errorf("check = %#v", check)
	}
}

func TestParseCreateViewAndType(t *testing.T) {
	stmt := mustParse(t, "CREATE VIEW active_users AS SELECT id, name FROM users WHERE active = true")
	cv := stmt.(*CreateViewStmt)
	if cv.Name.Name() != "active_users" || cv.Select == nil {
		t.Fatalf("view = %#v", cv)
	}

	stmt = mustParse(t, "CREATE TYPE mood AS ENUM ('sad', 'ok', 'happy')")
	ctype := stmt.(*CreateTypeStmt)
	if diff := cmp.Diff([]string{"sad", "ok", "happy"}, ctype.Values); diff != "" {
		t.Errorf("enum values mismatch (-want +got):\n%s", diff)
	}
}

func TestParseAlterTable(t *testing.T) {
	cases := []struct {
		sql    string
		action AlterAction
	}{
		{"ALTER TABLE users ADD COLUMN phone varchar(20)", AlterAddColumn},
		{"ALTER TABLE users DROP COLUMN phone", AlterDropColumn},
		{"ALTER TABLE users RENAME COLUMN phone TO mobile", AlterRenameColumn},
		{"ALTER TABLE users RENAME TO accounts", AlterRenameTable},
		{"ALTER TABLE users ADD CONSTRAINT uq UNIQUE (email)", AlterAddConstraint},
	}
	for _, tc := range cases {
		stmt := mustParse(t, tc.sql)
		alter := stmt.(*AlterTableStmt)
		if alter.Action != tc.action {
			t.Errorf("%q action = %v, want %v", tc.sql, alter.Action, tc.action)
		}
	}
}

func TestParseScriptContinuesPastErrors(t *testing.T) {
	script, err := ParseScript(`
		SELECT id FROM users;
		GRANT ALL ON users TO admin;
		SELECT name FROM users;`)
	if err != nil {
		t.Fatalf("ParseScript failed: %v", err)
	}
	if len(script.Statements) != 3 {
		t.Fatalf("statement count = %d, want 3", len(script.Statements))
	}
	if script.Statements[0].Err != nil || script.Statements[2].Err != nil {
		t.Error("valid statements should parse")
	}
	if script.Statements[1].Err == nil {
		t.Error("GRANT should fail to parse")
	}
}

func TestParseScriptCommentsAndStrings(t *testing.T) {
	script, err := ParseScript(`
		-- leading comment with a ; inside
		SELECT ';' AS semi FROM t;
		/* block; comment */
		SELECT $$body; with semi$$ FROM t`)
	if err != nil {
		t.Fatalf("ParseScript failed: %v", err)
	}
	if len(script.Statements) != 2 {
		t.Fatalf("statement count = %d, want 2 (semicolons in strings must not split)", len(script.Statements))
	}
	if len(script.Comments) != 2 {
		t.Fatalf("comment count = %d, want 2", len(script.Comments))
	}
	if !strings.Contains(script.Comments[0].Text, "leading comment") {
		t.Errorf("comment text = %q", script.Comments[0].Text)
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := ParseStatement("SELECT FROM users WHERE")
	if err == nil {
		t.Fatal("expected parse error")
	}
	var perr *ParseError
	ok := false
	if perr, ok = err.(*ParseError); !ok {
		t.Fatalf("error type = %T, want *ParseError", err)
	}
	if perr.Token.Line != 1 {
		t.Errorf("error line = %d, want 1", perr.Token.Line)
	}
}

func TestSpanPositions(t *testing.T) {
	stmt := mustParse(t, "SELECT name\nFROM users")
	sel := stmt.(*SelectStmt)
	ref := sel.Items[0].Expr.(*ColumnRef)
	span := ExprSpan(ref)
	if span.Line != 1 || span.Column != 8 {
		t.Errorf("name span = %d:%d, want 1:8", span.Line, span.Column)
	}
	tr := sel.From[0].(*TableRef)
	tok := tr.Name.LastToken()
	if tok.Line != 2 || tok.Column != 6 {
		t.Errorf("users token = %d:%d, want 2:6", tok.Line, tok.Column)
	}
}

func TestOutputNames(t *testing.T) {
	stmt := mustParse(t, "SELECT id, u.name, email AS contact, count(*), 1 + 1 FROM users u")
	sel := stmt.(*SelectStmt)
	want := []string{"id", "name", "contact", "count", "?column?5"}
	if diff := cmp.Diff(want, sel.OutputNames()); diff != "" {
		t.Errorf("OutputNames mismatch (-want +got):\n%s", diff)
	}
}
