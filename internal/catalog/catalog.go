// Package catalog holds the schema metadata sqlguard validates queries
// against: schemas, tables, columns, views, and enum types.
package catalog

import (
	"slices"
	"strings"

	"github.com/electwix/sqlguard/internal/sqltype"
)

// QualifiedName is a schema-qualified object name. An empty Schema means
// the catalog's default schema.
type QualifiedName struct {
	Schema string
	Name   string
}

// ParseQualifiedName splits "schema.name" into its parts. A bare name
// yields an empty schema.
func ParseQualifiedName(s string) QualifiedName {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return QualifiedName{Schema: s[:i], Name: s[i+1:]}
	}
	return QualifiedName{Name: s}
}

// String returns "schema.name", or just the name when unqualified.
func (q QualifiedName) String() string {
	if q.Schema == "" {
		return q.Name
	}
	return q.Schema + "." + q.Name
}

// IdentityKind describes a generated identity column.
type IdentityKind int

const (
	// IdentityNone marks an ordinary column.
	IdentityNone IdentityKind = iota
	// IdentityAlways marks GENERATED ALWAYS AS IDENTITY.
	IdentityAlways
	// IdentityByDefault marks GENERATED BY DEFAULT AS IDENTITY.
	IdentityByDefault
)

// DefaultKind classifies a column DEFAULT clause.
type DefaultKind int

const (
	// DefaultNone means no DEFAULT clause.
	DefaultNone DefaultKind = iota
	// DefaultNull is an explicit DEFAULT NULL.
	DefaultNull
	// DefaultLiteral is a literal default; Text holds its raw form.
	DefaultLiteral
	// DefaultCurrentTimestamp covers now() and CURRENT_TIMESTAMP.
	DefaultCurrentTimestamp
	// DefaultSequence covers nextval(...) defaults.
	DefaultSequence
	// DefaultExpression is any other default expression.
	DefaultExpression
)

// Default records a column's DEFAULT clause.
type Default struct {
	Kind DefaultKind
	Text string
}

// Column is a table column definition.
type Column struct {
	Name       string
	Type       sqltype.Type
	Nullable   bool
	Default    *Default
	PrimaryKey bool
	Identity   IdentityKind
}

// PrimaryKey is a table's primary key constraint.
type PrimaryKey struct {
	Name    string
	Columns []string
}

// ForeignKey ties columns to columns of a referenced table.
type ForeignKey struct {
	Name       string
	Columns    []string
	RefTable   QualifiedName
	RefColumns []string
}

// UniqueConstraint is a single- or multi-column UNIQUE constraint.
type UniqueConstraint struct {
	Name    string
	Columns []string
}

// CheckConstraint keeps the raw expression text of a CHECK clause.
type CheckConstraint struct {
	Name string
	Expr string
}

// Table is a table definition. Column order is declaration order.
type Table struct {
	Name        string
	Columns     []Column
	PrimaryKey  *PrimaryKey
	ForeignKeys []ForeignKey
	Uniques     []UniqueConstraint
	Checks      []CheckConstraint
}

// Column returns the named column, matching case-insensitively.
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if strings.EqualFold(t.Columns[i].Name, name) {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// ColumnNames returns the column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// AddColumn appends a column, forcing NOT NULL for primary keys.
func (t *Table) AddColumn(col Column) {
	if col.PrimaryKey || col.Identity != IdentityNone {
		col.Nullable = false
	}
	t.Columns = append(t.Columns, col)
}

// MarkPrimaryKey marks the named column as primary key and non-nullable.
func (t *Table) MarkPrimaryKey(name string) bool {
	col, ok := t.Column(name)
	if !ok {
		return false
	}
	col.PrimaryKey = true
	col.Nullable = false
	return true
}

// View is a view definition. Column types are not tracked; only the
// output column names are known.
type View struct {
	Name    string
	Columns []string
}

// EnumType is a user-defined enum.
type EnumType struct {
	Name   string
	Values []string
}

// Schema groups tables and views under one namespace.
type Schema struct {
	Name   string
	Tables map[string]*Table
	Views  map[string]*View
}

// NewSchema creates an empty schema.
func NewSchema(name string) *Schema {
	return &Schema{
		Name:   name,
		Tables: make(map[string]*Table),
		Views:  make(map[string]*View),
	}
}

// TableNames returns the schema's table names sorted.
func (s *Schema) TableNames() []string {
	names := make([]string, 0, len(s.Tables))
	for name := range s.Tables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ViewNames returns the schema's view names sorted.
func (s *Schema) ViewNames() []string {
	names := make([]string, 0, len(s.Views))
	for name := range s.Views {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Catalog is the complete set of known database objects.
type Catalog struct {
	Schemas       map[string]*Schema
	DefaultSchema string
	Enums         map[string]*EnumType
}

// New creates a catalog with the given default schema pre-created.
func New(defaultSchema string) *Catalog {
	c := &Catalog{
		Schemas:       make(map[string]*Schema),
		DefaultSchema: defaultSchema,
		Enums:         make(map[string]*EnumType),
	}
	c.Schemas[canonical(defaultSchema)] = NewSchema(defaultSchema)
	return c
}

// canonical folds schema and enum names. Table and view keys stay
// exact: an unquoted USERS does not resolve a table declared as users.
func canonical(name string) string {
	return strings.ToLower(name)
}

// resolveSchema maps an empty schema name to the default schema.
func (c *Catalog) resolveSchema(name string) string {
	if name == "" {
		return c.DefaultSchema
	}
	return name
}

// EnsureSchema returns the named schema, creating it if needed.
func (c *Catalog) EnsureSchema(name string) *Schema {
	name = c.resolveSchema(name)
	key := canonical(name)
	if s, ok := c.Schemas[key]; ok {
		return s
	}
	s := NewSchema(name)
	c.Schemas[key] = s
	return s
}

// SchemaByName returns the named schema if it exists.
func (c *Catalog) SchemaByName(name string) (*Schema, bool) {
	s, ok := c.Schemas[canonical(c.resolveSchema(name))]
	return s, ok
}

// AddTable inserts a table under the qualified name's schema.
func (c *Catalog) AddTable(name QualifiedName, table *Table) {
	s := c.EnsureSchema(name.Schema)
	s.Tables[name.Name] = table
}

// AddView inserts a view under the qualified name's schema.
func (c *Catalog) AddView(name QualifiedName, view *View) {
	s := c.EnsureSchema(name.Schema)
	s.Views[name.Name] = view
}

// AddEnum registers a user-defined enum type.
func (c *Catalog) AddEnum(enum *EnumType) {
	c.Enums[canonical(enum.Name)] = enum
}

// Enum returns the named enum type if registered.
func (c *Catalog) Enum(name string) (*EnumType, bool) {
	e, ok := c.Enums[canonical(name)]
	return e, ok
}

// Table resolves a possibly unqualified table name. The name itself
// matches exactly.
func (c *Catalog) Table(name QualifiedName) (*Table, bool) {
	s, ok := c.SchemaByName(name.Schema)
	if !ok {
		return nil, false
	}
	t, ok := s.Tables[name.Name]
	return t, ok
}

// View resolves a possibly unqualified view name. The name itself
// matches exactly.
func (c *Catalog) View(name QualifiedName) (*View, bool) {
	s, ok := c.SchemaByName(name.Schema)
	if !ok {
		return nil, false
	}
	v, ok := s.Views[name.Name]
	return v, ok
}

// RenameTable renames a table in place. It reports whether the source
// table existed.
func (c *Catalog) RenameTable(from QualifiedName, to string) bool {
	s, ok := c.SchemaByName(from.Schema)
	if !ok {
		return false
	}
	t, ok := s.Tables[from.Name]
	if !ok {
		return false
	}
	delete(s.Tables, from.Name)
	t.Name = to
	s.Tables[to] = t
	return true
}

// DropTable removes a table. It reports whether the table existed.
func (c *Catalog) DropTable(name QualifiedName) bool {
	s, ok := c.SchemaByName(name.Schema)
	if !ok {
		return false
	}
	if _, ok := s.Tables[name.Name]; !ok {
		return false
	}
	delete(s.Tables, name.Name)
	return true
}

// SchemaNames returns the catalog's schema names sorted.
func (c *Catalog) SchemaNames() []string {
	names := make([]string, 0, len(c.Schemas))
	for _, s := range c.Schemas {
		names = append(names, s.Name)
	}
	slices.Sort(names)
	return names
}

// EnumNames returns the registered enum names sorted.
func (c *Catalog) EnumNames() []string {
	names := make([]string, 0, len(c.Enums))
	for _, e := range c.Enums {
		names = append(names, e.Name)
	}
	slices.Sort(names)
	return names
}
