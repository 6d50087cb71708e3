// Package suppress implements inline diagnostic suppression through
// comment directives:
//
//	-- sqlguard:disable=E0001,E0003
//
// A directive inside a statement, or on the line directly above it,
// disables the listed codes for that whole statement.
package suppress

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/electwix/sqlguard/internal/diag"
	"github.com/electwix/sqlguard/internal/sqlparse"
)

type directive struct {
	Codes []string `parser:"'sqlguard' ':' 'disable' '=' @Code (',' @Code)*"`
}

var directiveLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t]+`},
	{Name: "Code", Pattern: `[Ee][0-9]{4}`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
	{Name: "Symbol", Pattern: `[:=,]`},
})

var directiveParser = participle.MustBuild[directive](
	participle.Lexer(directiveLexer),
	participle.Elide("Whitespace"),
)

// parseDirective parses a comment body. The second result is false when
// the comment is not a suppression directive at all.
func parseDirective(text string) ([]string, bool) {
	if !strings.HasPrefix(strings.TrimSpace(text), "sqlguard:") {
		return nil, false
	}
	d, err := directiveParser.ParseString("", strings.TrimSpace(text))
	if err != nil {
		return nil, false
	}
	codes := make([]string, len(d.Codes))
	for i, code := range d.Codes {
		codes[i] = strings.ToUpper(code)
	}
	return codes, true
}

// Region is a suppression of specific codes over a line range.
type Region struct {
	Codes     []string
	StartLine int
	EndLine   int
}

func (r Region) covers(d diag.Diagnostic) bool {
	if d.Span == nil || d.Span.Line < r.StartLine || d.Span.Line > r.EndLine {
		return false
	}
	for _, code := range r.Codes {
		if strings.EqualFold(code, d.Kind.Code()) {
			return true
		}
	}
	return false
}

// ScanScript extracts suppression regions from a SQL source. Each
// directive is attached to the statement that contains it or starts on
// the following line; directives pointing at nothing are dropped.
func ScanScript(src string) ([]Region, error) {
	script, err := sqlparse.ParseScript(src)
	if err != nil {
		return nil, fmt.Errorf("scanning suppression directives: %w", err)
	}

	var regions []Region
	for _, comment := range script.Comments {
		codes, ok := parseDirective(comment.Text)
		if !ok {
			continue
		}
		for _, stmt := range script.Statements {
			first, last := stmt.First.Line, stmt.Last.Line
			if (comment.Line >= first && comment.Line <= last) || first == comment.Line+1 {
				regions = append(regions, Region{Codes: codes, StartLine: first, EndLine: last})
				break
			}
		}
	}
	return regions, nil
}

// Filter removes diagnostics covered by a suppression region.
func Filter(diags []diag.Diagnostic, regions []Region) []diag.Diagnostic {
	if len(regions) == 0 {
		return diags
	}
	kept := make([]diag.Diagnostic, 0, len(diags))
	for _, d := range diags {
		suppressed := false
		for _, region := range regions {
			if region.covers(d) {
				suppressed = true
				break
			}
		}
		if !suppressed {
			kept = append(kept, d)
		}
	}
	return kept
}
