// Package introspect builds a catalog from a live PostgreSQL database
// instead of DDL files. Only system catalogs are read; no checked SQL
// is ever sent to the server.
package introspect

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/electwix/sqlguard/internal/catalog"
	"github.com/electwix/sqlguard/internal/sqltype"
)

const columnQuery = `
SELECT c.table_schema, c.table_name, t.table_type, c.column_name,
       c.data_type, c.udt_name, c.is_nullable, c.column_default,
       c.character_maximum_length, c.numeric_precision, c.numeric_scale
FROM information_schema.columns c
JOIN information_schema.tables t
  ON t.table_schema = c.table_schema AND t.table_name = c.table_name
WHERE c.table_schema NOT IN ('pg_catalog', 'information_schema')
ORDER BY c.table_schema, c.table_name, c.ordinal_position`

const primaryKeyQuery = `
SELECT tc.table_schema, tc.table_name, kcu.column_name
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
  ON kcu.constraint_name = tc.constraint_name
 AND kcu.table_schema = tc.table_schema
WHERE tc.constraint_type = 'PRIMARY KEY'
  AND tc.table_schema NOT IN ('pg_catalog', 'information_schema')`

const enumQuery = `
SELECT t.typname, e.enumlabel
FROM pg_type t
JOIN pg_enum e ON e.enumtypid = t.oid
ORDER BY t.typname, e.enumsortorder`

// Pull connects with the given pgx connection string and reads
// information_schema and pg_enum into a catalog equivalent to one
// built from DDL files.
func Pull(ctx context.Context, connString string) (*catalog.Catalog, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(ctx)

	cat := catalog.New("public")
	if err := pullColumns(ctx, conn, cat); err != nil {
		return nil, err
	}
	if err := pullPrimaryKeys(ctx, conn, cat); err != nil {
		return nil, err
	}
	if err := pullEnums(ctx, conn, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

func pullColumns(ctx context.Context, conn *pgx.Conn, cat *catalog.Catalog) error {
	rows, err := conn.Query(ctx, columnQuery)
	if err != nil {
		return fmt.Errorf("read columns: %w", err)
	}
	defer rows.Close()

	type objectKey struct{ schema, name string }
	tables := map[objectKey]*catalog.Table{}
	views := map[objectKey]*catalog.View{}

	for rows.Next() {
		var (
			schema, table, tableType, column string
			dataType, udtName, nullable      string
			columnDefault                    *string
			charLen, precision, scale        *int
		)
		if err := rows.Scan(&schema, &table, &tableType, &column, &dataType, &udtName,
			&nullable, &columnDefault, &charLen, &precision, &scale); err != nil {
			return fmt.Errorf("scan column row: %w", err)
		}

		key := objectKey{schema, table}
		name := catalog.QualifiedName{Schema: schema, Name: table}

		if tableType == "VIEW" {
			view, ok := views[key]
			if !ok {
				view = &catalog.View{Name: table}
				views[key] = view
				cat.AddView(name, view)
			}
			view.Columns = append(view.Columns, column)
			continue
		}

		tbl, ok := tables[key]
		if !ok {
			tbl = &catalog.Table{Name: table}
			tables[key] = tbl
			cat.AddTable(name, tbl)
		}
		tbl.AddColumn(catalog.Column{
			Name:     column,
			Type:     columnType(dataType, udtName, charLen, precision, scale),
			Nullable: strings.EqualFold(nullable, "YES"),
			Default:  classifyDefault(columnDefault),
		})
	}
	return rows.Err()
}

func pullPrimaryKeys(ctx context.Context, conn *pgx.Conn, cat *catalog.Catalog) error {
	rows, err := conn.Query(ctx, primaryKeyQuery)
	if err != nil {
		return fmt.Errorf("read primary keys: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var schema, table, column string
		if err := rows.Scan(&schema, &table, &column); err != nil {
			return fmt.Errorf("scan primary key row: %w", err)
		}
		if tbl, ok := cat.Table(catalog.QualifiedName{Schema: schema, Name: table}); ok {
			tbl.MarkPrimaryKey(column)
		}
	}
	return rows.Err()
}

func pullEnums(ctx context.Context, conn *pgx.Conn, cat *catalog.Catalog) error {
	rows, err := conn.Query(ctx, enumQuery)
	if err != nil {
		return fmt.Errorf("read enums: %w", err)
	}
	defer rows.Close()

	enums := map[string]*catalog.EnumType{}
	for rows.Next() {
		var typeName, label string
		if err := rows.Scan(&typeName, &label); err != nil {
			return fmt.Errorf("scan enum row: %w", err)
		}
		enum, ok := enums[typeName]
		if !ok {
			enum = &catalog.EnumType{Name: typeName}
			enums[typeName] = enum
			cat.AddEnum(enum)
		}
		enum.Values = append(enum.Values, label)
	}
	return rows.Err()
}

// columnType maps an information_schema column description onto a
// type. information_schema reports "USER-DEFINED" and "ARRAY" as data
// types; the udt_name carries the real name in those cases.
func columnType(dataType, udtName string, charLen, precision, scale *int) sqltype.Type {
	switch dataType {
	case "ARRAY":
		// udt_name is the element type prefixed with an underscore.
		elem := strings.TrimPrefix(udtName, "_")
		return sqltype.Array(sqltype.FromName(elem))
	case "USER-DEFINED":
		return sqltype.FromName(udtName)
	case "character varying", "character":
		if charLen != nil {
			return sqltype.FromName(dataType, *charLen)
		}
	case "numeric":
		if precision != nil && scale != nil {
			return sqltype.FromName(dataType, *precision, *scale)
		}
	}
	return sqltype.FromName(dataType)
}

// classifyDefault mirrors the classification the DDL builder applies
// to DEFAULT clauses, so both catalog sources agree.
func classifyDefault(raw *string) *catalog.Default {
	if raw == nil {
		return nil
	}
	text := strings.TrimSpace(*raw)
	lower := strings.ToLower(text)
	switch {
	case lower == "null":
		return &catalog.Default{Kind: catalog.DefaultNull, Text: text}
	case strings.HasPrefix(lower, "nextval("):
		return &catalog.Default{Kind: catalog.DefaultSequence, Text: text}
	case strings.HasPrefix(lower, "now()"),
		strings.HasPrefix(lower, "current_timestamp"),
		strings.HasPrefix(lower, "current_date"),
		strings.HasPrefix(lower, "current_time"):
		return &catalog.Default{Kind: catalog.DefaultCurrentTimestamp, Text: text}
	default:
		return &catalog.Default{Kind: catalog.DefaultExpression, Text: text}
	}
}
