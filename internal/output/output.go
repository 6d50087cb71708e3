// Package output renders analysis results for terminals and machine
// consumers. Three formats are supported: a human format with source
// snippets, a JSON format with one object per checked file, and SARIF
// 2.1.0 for code-scanning integrations.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/electwix/sqlguard/internal/diag"
)

// Format selects a rendering style.
type Format string

const (
	FormatHuman Format = "human"
	FormatJSON  Format = "json"
	FormatSARIF Format = "sarif"
)

// ParseFormat validates a format name from config or a flag.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatHuman, FormatJSON, FormatSARIF:
		return Format(s), nil
	case "":
		return FormatHuman, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want human, json, or sarif)", s)
	}
}

// Report is the analysis result for one checked file. Source is the
// file's content and is used for snippet rendering in the human format.
type Report struct {
	File        string
	Source      string
	Diagnostics []diag.Diagnostic
}

// Options configures a Renderer.
type Options struct {
	Format Format
	// Color enables ANSI escapes in the human format.
	Color bool
	// MaxErrors caps the number of rendered diagnostics across all
	// reports. Zero means no limit.
	MaxErrors int
}

// Renderer writes reports in a configured format.
type Renderer struct {
	opts Options
}

// NewRenderer returns a renderer for the given options.
func NewRenderer(opts Options) *Renderer {
	if opts.Format == "" {
		opts.Format = FormatHuman
	}
	return &Renderer{opts: opts}
}

// Render writes all reports to w. The diagnostic cap is applied across
// the whole run, not per file.
func (r *Renderer) Render(w io.Writer, reports []Report) error {
	reports, truncated := capReports(reports, r.opts.MaxErrors)
	switch r.opts.Format {
	case FormatJSON:
		return renderJSON(w, reports)
	case FormatSARIF:
		return renderSARIF(w, reports)
	default:
		return renderHuman(w, reports, truncated, r.opts.Color)
	}
}

// capReports trims diagnostics past the limit and reports how many were
// dropped.
func capReports(reports []Report, limit int) ([]Report, int) {
	if limit <= 0 {
		return reports, 0
	}
	total := 0
	for _, rep := range reports {
		total += len(rep.Diagnostics)
	}
	if total <= limit {
		return reports, 0
	}

	capped := make([]Report, 0, len(reports))
	remaining := limit
	for _, rep := range reports {
		if remaining <= 0 {
			rep.Diagnostics = nil
		} else if len(rep.Diagnostics) > remaining {
			rep.Diagnostics = rep.Diagnostics[:remaining]
		}
		remaining -= len(rep.Diagnostics)
		capped = append(capped, rep)
	}
	return capped, total - limit
}

// ColorEnabled decides whether the human format should emit ANSI
// escapes: never when disabled by flag or the NO_COLOR convention,
// otherwise only when w is a terminal.
func ColorEnabled(w io.Writer, noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
