// Package schema builds a catalog from DDL sources.
//
// Loading is tolerant: statements that fail to parse are skipped so a
// production schema dump with vendor-specific syntax still yields a
// usable catalog for the statements that are understood.
package schema

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/electwix/sqlguard/internal/catalog"
	"github.com/electwix/sqlguard/internal/diag"
	"github.com/electwix/sqlguard/internal/dialect"
	"github.com/electwix/sqlguard/internal/logging"
	"github.com/electwix/sqlguard/internal/sqlparse"
	"github.com/electwix/sqlguard/internal/sqltype"
)

// Builder accumulates DDL sources into a catalog.
type Builder struct {
	dialect dialect.Dialect
	catalog *catalog.Catalog
	diags   *diag.Collection
	logger  logging.Logger
}

// New creates a builder for the given dialect.
func New(d dialect.Dialect, logger logging.Logger) *Builder {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Builder{
		dialect: d,
		catalog: catalog.New(d.DefaultSchema),
		diags:   diag.NewCollection(),
		logger:  logger,
	}
}

// AddSource parses one DDL source and applies its statements to the
// catalog. Unparseable statements are skipped; a source that cannot be
// tokenized at all produces a single parse error diagnostic.
func (b *Builder) AddSource(path, src string) {
	script, err := sqlparse.ParseScript(src)
	if err != nil {
		span := diag.NewSpan(0, min(len(src), 50), 1, 1)
		if serr, ok := err.(*sqlparse.ScanError); ok {
			span = diag.NewSpan(serr.Offset, 1, serr.Line, serr.Column)
		}
		b.diags.Add(diag.New(diag.KindParseError).
			Messagef("failed to read schema: %v", err).
			Span(span).
			Path(path).
			Build())
		return
	}

	for _, parsed := range script.Statements {
		if parsed.Err != nil {
			b.logger.Debug("skipping schema statement",
				"path", path, "line", parsed.First.Line, "reason", parsed.Err.Message)
			continue
		}
		b.apply(path, parsed.Stmt)
	}
}

// Build returns the accumulated catalog and diagnostics.
func (b *Builder) Build() (*catalog.Catalog, *diag.Collection) {
	return b.catalog, b.diags
}

func (b *Builder) apply(path string, stmt sqlparse.Statement) {
	switch s := stmt.(type) {
	case *sqlparse.CreateTableStmt:
		b.applyCreateTable(path, s)
	case *sqlparse.CreateViewStmt:
		b.applyCreateView(s)
	case *sqlparse.CreateTypeStmt:
		b.catalog.AddEnum(&catalog.EnumType{Name: s.Name.Name(), Values: s.Values})
	case *sqlparse.AlterTableStmt:
		b.applyAlterTable(path, s)
	default:
		// queries inside schema files are ignored
		b.logger.Debug("ignoring non-DDL statement in schema", "path", path)
	}
}

func (b *Builder) applyCreateTable(path string, stmt *sqlparse.CreateTableStmt) {
	table := &catalog.Table{Name: stmt.Name.Name()}
	var pkCols []string
	for _, def := range stmt.Columns {
		col := catalog.Column{
			Name:     def.Name.Name,
			Type:     typeFromAST(def.Type),
			Nullable: !def.Constraint.NotNull,
		}
		if def.Constraint.PrimaryKey {
			col.PrimaryKey = true
			pkCols = append(pkCols, col.Name)
		}
		if def.Constraint.Unique {
			table.Uniques = append(table.Uniques, catalog.UniqueConstraint{Columns: []string{col.Name}})
		}
		if ref := def.Constraint.References; ref != nil {
			table.ForeignKeys = append(table.ForeignKeys, catalog.ForeignKey{
				Columns:    []string{col.Name},
				RefTable:   qualified(ref.Table),
				RefColumns: identNames(ref.Columns),
			})
		}
		switch def.Constraint.Identity {
		case "ALWAYS":
			col.Identity = catalog.IdentityAlways
		case "BY DEFAULT":
			col.Identity = catalog.IdentityByDefault
		}
		if def.Constraint.Default != nil {
			col.Default = defaultFromExpr(def.Constraint.Default)
			b.checkNumericDefault(path, &def, col)
		}
		table.AddColumn(col)
	}
	if len(pkCols) > 0 {
		table.PrimaryKey = &catalog.PrimaryKey{Columns: pkCols}
	}

	for _, constraint := range stmt.Constraints {
		b.applyTableConstraint(path, table, &constraint)
	}

	b.catalog.AddTable(qualified(stmt.Name), table)
}

// applyTableConstraint records one table-level constraint. Primary keys
// also mark their columns NOT NULL; unknown primary key columns warn.
func (b *Builder) applyTableConstraint(path string, table *catalog.Table, constraint *sqlparse.TableConstraint) {
	switch constraint.Kind {
	case "PRIMARY KEY":
		pk := &catalog.PrimaryKey{Name: constraint.Name}
		for _, colName := range constraint.Columns {
			if !table.MarkPrimaryKey(colName.Name) {
				b.diags.Add(diag.New(diag.KindColumnNotFound).
					Warning().
					Messagef("primary key references unknown column '%s' on table '%s'", colName.Name, table.Name).
					Span(colName.Tok.Span()).
					Path(path).
					Build())
				continue
			}
			pk.Columns = append(pk.Columns, colName.Name)
		}
		table.PrimaryKey = pk
	case "UNIQUE":
		table.Uniques = append(table.Uniques, catalog.UniqueConstraint{
			Name:    constraint.Name,
			Columns: identNames(constraint.Columns),
		})
	case "FOREIGN KEY":
		table.ForeignKeys = append(table.ForeignKeys, catalog.ForeignKey{
			Name:       constraint.Name,
			Columns:    identNames(constraint.Columns),
			RefTable:   qualified(constraint.RefTable),
			RefColumns: identNames(constraint.RefColumns),
		})
	case "CHECK":
		table.Checks = append(table.Checks, catalog.CheckConstraint{
			Name: constraint.Name,
			Expr: constraint.CheckExpr,
		})
	}
}

// checkNumericDefault warns when a plain numeric DEFAULT cannot fit the
// declared numeric(p,s) precision.
func (b *Builder) checkNumericDefault(path string, def *sqlparse.ColumnDef, col catalog.Column) {
	if col.Type.Kind != sqltype.KindNumeric || col.Type.Precision == 0 {
		return
	}
	lit, ok := def.Constraint.Default.(*sqlparse.NumberLit)
	if !ok {
		return
	}
	value, err := decimal.NewFromString(lit.Value())
	if err != nil {
		return
	}
	scale := int(-value.Exponent())
	if scale < 0 {
		scale = 0
	}
	digits := len(strings.TrimLeft(value.Coefficient().String(), "-"))
	intDigits := digits - scale
	if intDigits < 0 {
		intDigits = 0
	}
	if scale > col.Type.Scale || intDigits > col.Type.Precision-col.Type.Scale {
		b.diags.Add(diag.New(diag.KindTypeMismatch).
			Warning().
			Messagef("default value %s does not fit column type %s", value.String(), col.Type).
			Span(lit.Tok.Span()).
			Path(path).
			Build())
	}
}

func (b *Builder) applyCreateView(stmt *sqlparse.CreateViewStmt) {
	view := &catalog.View{Name: stmt.Name.Name()}
	if len(stmt.Columns) > 0 {
		for _, col := range stmt.Columns {
			view.Columns = append(view.Columns, col.Name)
		}
	} else {
		view.Columns = b.inferViewColumns(stmt.Select)
	}
	b.catalog.AddView(qualified(stmt.Name), view)
}

// inferViewColumns names a view's output columns from its projection.
// Wildcards expand through the catalog, including views of views.
func (b *Builder) inferViewColumns(sel *sqlparse.SelectStmt) []string {
	var names []string
	for _, item := range sel.Items {
		switch expr := item.Expr.(type) {
		case *sqlparse.StarExpr:
			names = append(names, b.expandStar(sel, "")...)
			continue
		case *sqlparse.ColumnRef:
			if expr.Star {
				names = append(names, b.expandStar(sel, expr.QualifierName())...)
				continue
			}
		}
		switch {
		case item.Alias != "":
			names = append(names, item.Alias)
		default:
			if ref, ok := item.Expr.(*sqlparse.ColumnRef); ok {
				names = append(names, ref.Name.Name)
				continue
			}
			names = append(names, "?column?"+strconv.Itoa(len(names)+1))
		}
	}
	return names
}

// expandStar resolves * or qualifier.* against the FROM clause using the
// catalog built so far.
func (b *Builder) expandStar(sel *sqlparse.SelectStmt, qualifier string) []string {
	var names []string
	for _, item := range sel.From {
		ref, ok := item.(*sqlparse.TableRef)
		if !ok {
			continue
		}
		if qualifier != "" {
			label := ref.Alias
			if label == "" {
				label = ref.Name.Name()
			}
			if !strings.EqualFold(label, qualifier) {
				continue
			}
		}
		names = append(names, b.objectColumns(ref.Name)...)
	}
	return names
}

// objectColumns returns the column names of a table or view.
func (b *Builder) objectColumns(name sqlparse.ObjectName) []string {
	qn := catalog.QualifiedName{Schema: name.Schema(), Name: name.Name()}
	if table, ok := b.catalog.Table(qn); ok {
		return table.ColumnNames()
	}
	if view, ok := b.catalog.View(qn); ok {
		return append([]string(nil), view.Columns...)
	}
	return nil
}

func (b *Builder) applyAlterTable(path string, stmt *sqlparse.AlterTableStmt) {
	qn := qualified(stmt.Table)
	table, ok := b.catalog.Table(qn)
	if !ok {
		b.diags.Add(diag.New(diag.KindTableNotFound).
			Warning().
			Messagef("ALTER TABLE target '%s' not found", stmt.Table.String()).
			Span(stmt.Table.LastToken().Span()).
			Path(path).
			Build())
		return
	}

	switch stmt.Action {
	case sqlparse.AlterAddColumn:
		def := stmt.Column
		col := catalog.Column{
			Name:     def.Name.Name,
			Type:     typeFromAST(def.Type),
			Nullable: !def.Constraint.NotNull,
		}
		if def.Constraint.PrimaryKey {
			col.PrimaryKey = true
		}
		if def.Constraint.Default != nil {
			col.Default = defaultFromExpr(def.Constraint.Default)
		}
		table.AddColumn(col)
	case sqlparse.AlterDropColumn:
		dropColumn(table, stmt.ColumnName.Name)
	case sqlparse.AlterRenameColumn:
		if col, ok := table.Column(stmt.ColumnName.Name); ok {
			col.Name = stmt.NewName.Name
		} else {
			b.diags.Add(diag.New(diag.KindColumnNotFound).
				Warning().
				Messagef("column '%s' not found on table '%s'", stmt.ColumnName.Name, table.Name).
				Span(stmt.ColumnName.Tok.Span()).
				Path(path).
				Build())
		}
	case sqlparse.AlterRenameTable:
		b.catalog.RenameTable(qn, stmt.NewName.Name)
	case sqlparse.AlterAddConstraint:
		if stmt.Constraint != nil {
			b.applyTableConstraint(path, table, stmt.Constraint)
		}
	}
}

func identNames(idents []sqlparse.Ident) []string {
	names := make([]string, len(idents))
	for i, id := range idents {
		names[i] = id.Name
	}
	return names
}

func dropColumn(table *catalog.Table, name string) {
	for i := range table.Columns {
		if strings.EqualFold(table.Columns[i].Name, name) {
			table.Columns = append(table.Columns[:i], table.Columns[i+1:]...)
			return
		}
	}
}

func qualified(name sqlparse.ObjectName) catalog.QualifiedName {
	return catalog.QualifiedName{Schema: name.Schema(), Name: name.Name()}
}

// typeFromAST converts a parsed type name to a catalog type.
func typeFromAST(t sqlparse.TypeName) sqltype.Type {
	base := sqltype.FromName(t.Name, t.Args...)
	if t.Array {
		return sqltype.Array(base)
	}
	return base
}

// defaultFromExpr classifies a DEFAULT clause expression.
func defaultFromExpr(expr sqlparse.Expr) *catalog.Default {
	switch e := expr.(type) {
	case *sqlparse.NullLit:
		return &catalog.Default{Kind: catalog.DefaultNull}
	case *sqlparse.NumberLit:
		return &catalog.Default{Kind: catalog.DefaultLiteral, Text: e.Value()}
	case *sqlparse.StringLit:
		return &catalog.Default{Kind: catalog.DefaultLiteral, Text: e.Value}
	case *sqlparse.BoolLit:
		return &catalog.Default{Kind: catalog.DefaultLiteral, Text: e.Tok.Text}
	case *sqlparse.FuncCall:
		switch strings.ToLower(e.Name.Name()) {
		case "now", "current_timestamp", "current_date", "current_time":
			return &catalog.Default{Kind: catalog.DefaultCurrentTimestamp}
		case "nextval":
			return &catalog.Default{Kind: catalog.DefaultSequence}
		}
		return &catalog.Default{Kind: catalog.DefaultExpression}
	case *sqlparse.CastExpr:
		return defaultFromExpr(e.Operand)
	default:
		return &catalog.Default{Kind: catalog.DefaultExpression}
	}
}
