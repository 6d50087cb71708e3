package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/electwix/sqlguard/internal/catalog"
	"github.com/electwix/sqlguard/internal/output"
)

func runSchema(ctx context.Context, opts *Options, args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(stderr, "sqlguard schema: unexpected arguments: %s\n", strings.Join(args, " "))
		return ExitUsage
	}

	cat, schemaReports, err := loadCatalog(ctx, opts, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "sqlguard schema: %v\n", err)
		return ExitUsage
	}

	if len(schemaReports) > 0 {
		renderOpts := output.Options{Format: output.FormatHuman, Color: output.ColorEnabled(stderr, opts.NoColor)}
		if err := output.NewRenderer(renderOpts).Render(stderr, schemaReports); err != nil {
			fmt.Fprintf(stderr, "sqlguard schema: %v\n", err)
			return ExitUsage
		}
	}

	printCatalog(stdout, cat)

	for _, rep := range schemaReports {
		for _, d := range rep.Diagnostics {
			if d.IsError() {
				return ExitErrors
			}
		}
	}
	return ExitClean
}

func printCatalog(w io.Writer, cat *catalog.Catalog) {
	for _, schemaName := range cat.SchemaNames() {
		sc, ok := cat.SchemaByName(schemaName)
		if !ok {
			continue
		}
		for _, tableName := range sc.TableNames() {
			table := sc.Tables[tableName]
			fmt.Fprintf(w, "table %s.%s\n", schemaName, table.Name)
			for _, col := range table.Columns {
				fmt.Fprintf(w, "  %s %s%s\n", col.Name, col.Type, columnMarkers(col))
			}
		}
		for _, viewName := range sc.ViewNames() {
			view := sc.Views[viewName]
			fmt.Fprintf(w, "view %s.%s (%s)\n", schemaName, view.Name, strings.Join(view.Columns, ", "))
		}
	}
	for _, enumName := range cat.EnumNames() {
		if enum, ok := cat.Enum(enumName); ok {
			fmt.Fprintf(w, "enum %s (%s)\n", enum.Name, strings.Join(enum.Values, ", "))
		}
	}
}

func columnMarkers(col catalog.Column) string {
	var markers []string
	if col.PrimaryKey {
		markers = append(markers, "primary key")
	} else if !col.Nullable {
		markers = append(markers, "not null")
	}
	if col.Identity != catalog.IdentityNone {
		markers = append(markers, "identity")
	}
	if len(markers) == 0 {
		return ""
	}
	return " [" + strings.Join(markers, ", ") + "]"
}
