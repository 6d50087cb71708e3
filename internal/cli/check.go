package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/electwix/sqlguard/internal/analyzer"
	"github.com/electwix/sqlguard/internal/catalog"
	"github.com/electwix/sqlguard/internal/diag"
	"github.com/electwix/sqlguard/internal/dialect"
	"github.com/electwix/sqlguard/internal/fileset"
	"github.com/electwix/sqlguard/internal/introspect"
	"github.com/electwix/sqlguard/internal/logging"
	"github.com/electwix/sqlguard/internal/output"
	"github.com/electwix/sqlguard/internal/schema"
	"github.com/electwix/sqlguard/internal/suppress"
)

// errNoSchemaSource is returned when neither --schema, --schema-dir,
// nor --from-db was provided.
var errNoSchemaSource = errors.New("no schema source: use --schema, --schema-dir, or --from-db")

func runCheck(ctx context.Context, opts *Options, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "sqlguard check: no query files given")
		return ExitUsage
	}

	renderOpts, err := opts.renderOptions(stdout)
	if err != nil {
		fmt.Fprintf(stderr, "sqlguard check: %v\n", err)
		return ExitUsage
	}

	cat, schemaReports, err := loadCatalog(ctx, opts, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "sqlguard check: %v\n", err)
		return ExitUsage
	}

	files, err := resolveSQLArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "sqlguard check: %v\n", err)
		return ExitUsage
	}

	an := analyzer.New(cat)
	reports := make([]output.Report, 0, len(files)+len(schemaReports))
	reports = append(reports, schemaReports...)
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stderr, "sqlguard check: %v\n", err)
			return ExitUsage
		}
		src := string(data)

		col := an.AnalyzeFile(path, src)
		diags := col.Without(opts.Disable...).All()
		if regions, err := suppress.ScanScript(src); err == nil {
			diags = suppress.Filter(diags, regions)
		}
		reports = append(reports, output.Report{File: path, Source: src, Diagnostics: diags})
	}

	if err := output.NewRenderer(renderOpts).Render(stdout, reports); err != nil {
		fmt.Fprintf(stderr, "sqlguard check: %v\n", err)
		return ExitUsage
	}

	for _, rep := range reports {
		for _, d := range rep.Diagnostics {
			if d.IsError() {
				return ExitErrors
			}
		}
	}
	return ExitClean
}

// loadCatalog builds the catalog from the configured source. DDL
// builds also return per-file reports carrying the schema warnings.
func loadCatalog(ctx context.Context, opts *Options, stderr io.Writer) (*catalog.Catalog, []output.Report, error) {
	if opts.FromDB != "" {
		cat, err := introspect.Pull(ctx, opts.FromDB)
		return cat, nil, err
	}

	name := opts.Dialect
	if name == "" {
		name = "postgres"
	}
	d, err := dialect.Lookup(name)
	if err != nil {
		return nil, nil, err
	}

	files, err := schemaFiles(opts)
	if err != nil {
		return nil, nil, err
	}

	logger := logging.NewSlogAdapter(logging.New(logging.Options{
		Verbose: opts.Verbose,
		Writer:  stderr,
	}))
	builder := schema.New(d, logger)

	sources := make(map[string]string, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, err
		}
		sources[path] = string(data)
		builder.AddSource(path, sources[path])
	}

	cat, diags := builder.Build()
	return cat, groupSchemaReports(files, sources, diags.Without(opts.Disable...).All()), nil
}

func schemaFiles(opts *Options) ([]string, error) {
	var files []string
	if len(opts.Schemas) > 0 {
		matched, err := resolvePaths(opts.Schemas)
		if err != nil {
			return nil, err
		}
		files = append(files, matched...)
	}
	if opts.SchemaDir != "" {
		resolver, err := fileset.NewOSResolver(opts.SchemaDir)
		if err != nil {
			return nil, err
		}
		matched, err := resolver.ResolveDir(".")
		if err != nil {
			return nil, err
		}
		files = append(files, matched...)
	}
	if len(files) == 0 {
		return nil, errNoSchemaSource
	}
	return files, nil
}

// groupSchemaReports groups schema diagnostics by source file.
func groupSchemaReports(files []string, sources map[string]string, diags []diag.Diagnostic) []output.Report {
	byPath := map[string][]diag.Diagnostic{}
	for _, d := range diags {
		byPath[d.Path] = append(byPath[d.Path], d)
	}
	var reports []output.Report
	for _, path := range files {
		if ds := byPath[path]; len(ds) > 0 {
			reports = append(reports, output.Report{File: path, Source: sources[path], Diagnostics: ds})
		}
	}
	return reports
}

func resolveSQLArgs(args []string) ([]string, error) {
	return resolvePaths(args)
}

// resolvePaths accepts a mix of plain file paths and glob patterns.
// Paths that stat as regular files pass through, so absolute arguments
// work; everything else goes through glob resolution relative to the
// working directory.
func resolvePaths(patterns []string) ([]string, error) {
	var files, globs []string
	for _, pattern := range patterns {
		if info, err := os.Stat(pattern); err == nil && !info.IsDir() {
			files = append(files, pattern)
			continue
		}
		globs = append(globs, pattern)
	}
	if len(globs) > 0 {
		resolver, err := fileset.NewOSResolver(".")
		if err != nil {
			return nil, err
		}
		matched, err := resolver.Resolve(globs)
		if err != nil {
			return nil, err
		}
		files = append(files, matched...)
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}
