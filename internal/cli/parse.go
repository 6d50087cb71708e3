package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/electwix/sqlguard/internal/diag"
	"github.com/electwix/sqlguard/internal/output"
	"github.com/electwix/sqlguard/internal/sqlparse"
)

func runParse(_ context.Context, opts *Options, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "sqlguard parse: no files given")
		return ExitUsage
	}

	renderOpts, err := opts.renderOptions(stdout)
	if err != nil {
		fmt.Fprintf(stderr, "sqlguard parse: %v\n", err)
		return ExitUsage
	}

	files, err := resolveSQLArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "sqlguard parse: %v\n", err)
		return ExitUsage
	}

	reports := make([]output.Report, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stderr, "sqlguard parse: %v\n", err)
			return ExitUsage
		}
		src := string(data)
		reports = append(reports, output.Report{
			File:        path,
			Source:      src,
			Diagnostics: parseDiagnostics(path, src),
		})
	}

	if err := output.NewRenderer(renderOpts).Render(stdout, reports); err != nil {
		fmt.Fprintf(stderr, "sqlguard parse: %v\n", err)
		return ExitUsage
	}

	for _, rep := range reports {
		if len(rep.Diagnostics) > 0 {
			return ExitErrors
		}
	}
	return ExitClean
}

func parseDiagnostics(path, src string) []diag.Diagnostic {
	script, err := sqlparse.ParseScript(src)
	if err != nil {
		d := diag.New(diag.KindParseError).
			Messagef("Parse error: %v", err).
			Span(diag.NewSpan(0, min(len(src), 50), 1, 1)).
			Path(path).
			Build()
		return []diag.Diagnostic{d}
	}

	var diags []diag.Diagnostic
	for _, parsed := range script.Statements {
		if parsed.Err == nil {
			continue
		}
		diags = append(diags, diag.New(diag.KindParseError).
			Messagef("Parse error: %s", parsed.Err.Message).
			Span(parsed.Err.Span()).
			Path(path).
			Build())
	}
	return diags
}
