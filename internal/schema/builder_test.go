package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/electwix/sqlguard/internal/catalog"
	"github.com/electwix/sqlguard/internal/dialect"
	"github.com/electwix/sqlguard/internal/sqltype"
)

func postgres(t *testing.T) dialect.Dialect {
	t.Helper()
	d, err := dialect.Lookup("postgresql")
	if err != nil {
		t.Fatalf("lookup dialect: %v", err)
	}
	return d
}

func buildOne(t *testing.T, src string) (*catalog.Catalog, *Builder) {
	t.Helper()
	b := New(postgres(t), nil)
	b.AddSource("schema.sql", src)
	cat, _ := b.Build()
	return cat, b
}

func TestBuildCreateTable(t *testing.T) {
	cat, b := buildOne(t, `
		CREATE TABLE users (
			id bigint GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			email varchar(255) NOT NULL UNIQUE,
			name text,
			balance numeric(10, 2) DEFAULT 0,
			created_at timestamp with time zone DEFAULT now(),
			tags text[]
		);
	`)
	_, diags := b.Build()
	if diags.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.All())
	}

	table, ok := cat.Table(catalog.QualifiedName{Name: "users"})
	if !ok {
		t.Fatal("table users not found")
	}

	id, _ := table.Column("id")
	if !id.PrimaryKey || id.Nullable || id.Identity != catalog.IdentityAlways {
		t.Errorf("id column = %+v, want identity primary key NOT NULL", id)
	}
	email, _ := table.Column("email")
	if email.Nullable || email.Type.String() != "varchar(255)" {
		t.Errorf("email column = %+v", email)
	}
	name, _ := table.Column("name")
	if !name.Nullable {
		t.Error("name should be nullable")
	}
	balance, _ := table.Column("balance")
	if balance.Default == nil || balance.Default.Kind != catalog.DefaultLiteral || balance.Default.Text != "0" {
		t.Errorf("balance default = %+v", balance.Default)
	}
	created, _ := table.Column("created_at")
	if created.Default == nil || created.Default.Kind != catalog.DefaultCurrentTimestamp {
		t.Errorf("created_at default = %+v", created.Default)
	}
	if !created.Type.WithTimeZone {
		t.Error("created_at should carry a time zone")
	}
	tags, _ := table.Column("tags")
	if tags.Type.Kind != sqltype.KindArray || tags.Type.Elem.Kind != sqltype.KindText {
		t.Errorf("tags type = %v", tags.Type)
	}
}

func TestBuildTablePrimaryKeyConstraint(t *testing.T) {
	cat, _ := buildOne(t, `
		CREATE TABLE memberships (
			user_id bigint,
			org_id bigint,
			role text,
			PRIMARY KEY (user_id, org_id)
		);
	`)
	table, _ := cat.Table(catalog.QualifiedName{Name: "memberships"})
	for _, name := range []string{"user_id", "org_id"} {
		col, _ := table.Column(name)
		if !col.PrimaryKey || col.Nullable {
			t.Errorf("%s = %+v, want primary key NOT NULL", name, col)
		}
	}
	role, _ := table.Column("role")
	if role.PrimaryKey {
		t.Error("role should not be part of the primary key")
	}
}

func TestBuildTableConstraints(t *testing.T) {
	cat, b := buildOne(t, `
		CREATE TABLE orders (
			id bigint PRIMARY KEY,
			user_id bigint REFERENCES users (id),
			number text UNIQUE,
			total numeric(10, 2),
			CONSTRAINT orders_total_positive CHECK (total > 0),
			CONSTRAINT orders_number_user_uq UNIQUE (number, user_id),
			FOREIGN KEY (user_id) REFERENCES public.users (id) ON DELETE CASCADE
		);
	`)
	_, diags := b.Build()
	if diags.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.All())
	}
	table, ok := cat.Table(catalog.QualifiedName{Name: "orders"})
	if !ok {
		t.Fatal("table orders not found")
	}

	if table.PrimaryKey == nil || !cmp.Equal([]string{"id"}, table.PrimaryKey.Columns) {
		t.Errorf("primary key = %+v, want columns [id]", table.PrimaryKey)
	}

	if len(table.ForeignKeys) != 2 {
		t.Fatalf("foreign keys = %+v, want 2", table.ForeignKeys)
	}
	colFK := table.ForeignKeys[0]
	if !cmp.Equal([]string{"user_id"}, colFK.Columns) || colFK.RefTable.Name != "users" {
		t.Errorf("column-level foreign key = %+v", colFK)
	}
	tblFK := table.ForeignKeys[1]
	if tblFK.RefTable.Schema != "public" || !cmp.Equal([]string{"id"}, tblFK.RefColumns) {
		t.Errorf("table-level foreign key = %+v", tblFK)
	}

	if len(table.Uniques) != 2 {
		t.Fatalf("uniques = %+v, want 2", table.Uniques)
	}
	if !cmp.Equal([]string{"number"}, table.Uniques[0].Columns) {
		t.Errorf("column unique = %+v", table.Uniques[0])
	}
	named := table.Uniques[1]
	if named.Name != "orders_number_user_uq" || !cmp.Equal([]string{"number", "user_id"}, named.Columns) {
		t.Errorf("named unique = %+v", named)
	}

	if len(table.Checks) != 1 {
		t.Fatalf("checks = %+v, want 1", table.Checks)
	}
	check := table.Checks[0]
	if check.Name != "orders_total_positive" || check.Expr != "total > 0" {
		t.Errorf("check = %+v", check)
	}
}

func TestBuildAlterAddConstraint(t *testing.T) {
	cat, _ := buildOne(t, `
		CREATE TABLE events (id bigint, user_id bigint, kind text);
		ALTER TABLE events ADD CONSTRAINT events_pk PRIMARY KEY (id);
		ALTER TABLE events ADD CONSTRAINT events_user_fk FOREIGN KEY (user_id) REFERENCES users (id);
		ALTER TABLE events ADD CONSTRAINT events_kind_uq UNIQUE (kind);
		ALTER TABLE events ADD CONSTRAINT events_kind_ck CHECK (kind <> '');
	`)
	table, _ := cat.Table(catalog.QualifiedName{Name: "events"})

	if table.PrimaryKey == nil || table.PrimaryKey.Name != "events_pk" {
		t.Fatalf("primary key = %+v, want events_pk", table.PrimaryKey)
	}
	id, _ := table.Column("id")
	if !id.PrimaryKey || id.Nullable {
		t.Errorf("id = %+v, want primary key NOT NULL", id)
	}
	if len(table.ForeignKeys) != 1 || table.ForeignKeys[0].Name != "events_user_fk" {
		t.Errorf("foreign keys = %+v", table.ForeignKeys)
	}
	if len(table.Uniques) != 1 || table.Uniques[0].Name != "events_kind_uq" {
		t.Errorf("uniques = %+v", table.Uniques)
	}
	if len(table.Checks) != 1 || table.Checks[0].Name != "events_kind_ck" {
		t.Errorf("checks = %+v", table.Checks)
	}
}

func TestBuildPrimaryKeyUnknownColumn(t *testing.T) {
	_, b := buildOne(t, `CREATE TABLE t (id bigint, PRIMARY KEY (missing));`)
	_, diags := b.Build()
	if diags.Len() != 1 {
		t.Fatalf("diagnostics = %v, want one warning", diags.All())
	}
	warn := diags.All()[0]
	if warn.Kind.Code() != "E0002" {
		t.Errorf("code = %s, want E0002", warn.Kind.Code())
	}
}

func TestBuildNumericDefaultPrecision(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		warnings int
	}{
		{"fits", `CREATE TABLE t (v numeric(5, 2) DEFAULT 1.25);`, 0},
		{"scale overflow", `CREATE TABLE t (v numeric(5, 2) DEFAULT 0.123);`, 1},
		{"precision overflow", `CREATE TABLE t (v numeric(5, 2) DEFAULT 12345.00);`, 1},
		{"unconstrained", `CREATE TABLE t (v numeric DEFAULT 12345.678);`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, b := buildOne(t, tt.src)
			_, diags := b.Build()
			if len(diags.Warnings()) != tt.warnings {
				t.Errorf("warnings = %v, want %d", diags.Warnings(), tt.warnings)
			}
		})
	}
}

func TestBuildViewColumns(t *testing.T) {
	cat, _ := buildOne(t, `
		CREATE TABLE users (id bigint, email text, name text);
		CREATE VIEW active_users (uid, mail) AS SELECT id, email FROM users;
		CREATE VIEW user_summary AS
			SELECT id, name AS display_name, count(*), 1 + 1 FROM users GROUP BY id, name;
		CREATE VIEW everything AS SELECT * FROM users;
		CREATE VIEW everything_again AS SELECT e.* FROM everything e;
	`)

	tests := []struct {
		view string
		want []string
	}{
		{"active_users", []string{"uid", "mail"}},
		{"user_summary", []string{"id", "display_name", "?column?3", "?column?4"}},
		{"everything", []string{"id", "email", "name"}},
		{"everything_again", []string{"id", "email", "name"}},
	}
	for _, tt := range tests {
		view, ok := cat.View(catalog.QualifiedName{Name: tt.view})
		if !ok {
			t.Fatalf("view %s not found", tt.view)
		}
		if diff := cmp.Diff(tt.want, view.Columns); diff != "" {
			t.Errorf("%s columns mismatch (-want +got):\n%s", tt.view, diff)
		}
	}
}

func TestBuildEnumType(t *testing.T) {
	cat, _ := buildOne(t, `CREATE TYPE mood AS ENUM ('happy', 'sad', 'neutral');`)
	enum, ok := cat.Enum("mood")
	if !ok {
		t.Fatal("enum mood not found")
	}
	if diff := cmp.Diff([]string{"happy", "sad", "neutral"}, enum.Values); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildAlterTable(t *testing.T) {
	cat, _ := buildOne(t, `
		CREATE TABLE accounts (id bigint, email text);
		ALTER TABLE accounts ADD COLUMN status text NOT NULL DEFAULT 'open';
		ALTER TABLE accounts RENAME COLUMN email TO contact;
		ALTER TABLE accounts DROP COLUMN id;
		ALTER TABLE accounts RENAME TO customer_accounts;
	`)

	if _, ok := cat.Table(catalog.QualifiedName{Name: "accounts"}); ok {
		t.Fatal("accounts should have been renamed")
	}
	table, ok := cat.Table(catalog.QualifiedName{Name: "customer_accounts"})
	if !ok {
		t.Fatal("customer_accounts not found")
	}
	if diff := cmp.Diff([]string{"contact", "status"}, table.ColumnNames()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	status, _ := table.Column("status")
	if status.Nullable || status.Default == nil || status.Default.Text != "open" {
		t.Errorf("status = %+v", status)
	}
}

func TestBuildAlterUnknownTable(t *testing.T) {
	_, b := buildOne(t, `ALTER TABLE ghosts ADD COLUMN id bigint;`)
	_, diags := b.Build()
	if diags.Len() != 1 {
		t.Fatalf("diagnostics = %v, want one warning", diags.All())
	}
	warn := diags.All()[0]
	if warn.Kind.Code() != "E0001" || !warn.IsWarning() {
		t.Errorf("got %s severity %v, want warning E0001", warn.Kind.Code(), warn.Severity)
	}
}

func TestBuildSkipsUnparseableStatements(t *testing.T) {
	cat, b := buildOne(t, `
		CREATE TABLE good (id bigint);
		GRANT ALL ON good TO admin;
		CREATE INDEX idx_good ON good (id);
		CREATE TABLE also_good (id bigint);
	`)
	_, diags := b.Build()
	if diags.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.All())
	}
	for _, name := range []string{"good", "also_good"} {
		if _, ok := cat.Table(catalog.QualifiedName{Name: name}); !ok {
			t.Errorf("table %s not found", name)
		}
	}
}

func TestBuildSchemaQualifiedNames(t *testing.T) {
	cat, _ := buildOne(t, `CREATE TABLE audit.events (id bigint);`)
	if _, ok := cat.Table(catalog.QualifiedName{Schema: "audit", Name: "events"}); !ok {
		t.Fatal("audit.events not found")
	}
	if _, ok := cat.Table(catalog.QualifiedName{Name: "events"}); ok {
		t.Fatal("events should not resolve in the default schema")
	}
}
