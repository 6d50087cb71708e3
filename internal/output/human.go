package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/electwix/sqlguard/internal/diag"
)

// ANSI color codes.
const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
)

type humanWriter struct {
	w     io.Writer
	color bool
	err   error
}

func renderHuman(w io.Writer, reports []Report, truncated int, color bool) error {
	hw := &humanWriter{w: w, color: color}
	for _, rep := range reports {
		lines := strings.Split(rep.Source, "\n")
		for _, d := range rep.Diagnostics {
			hw.diagnostic(rep.File, lines, d)
		}
	}
	if truncated > 0 {
		hw.printf("... %d more diagnostic(s) not shown (raise --max-errors)\n", truncated)
	}
	return hw.err
}

func (hw *humanWriter) diagnostic(path string, lines []string, d diag.Diagnostic) {
	line, column := 0, 0
	if d.Span != nil {
		line, column = d.Span.Line, d.Span.Column
	}
	if path == "" {
		path = "<input>"
	}

	location := hw.paint(fmt.Sprintf("%s:%d:%d", path, line, column), colorCyan)
	severity := hw.paint(d.Severity.String(), hw.severityColor(d.Severity))
	code := hw.paint(fmt.Sprintf("[%s]", d.Kind.Code()), colorMagenta)
	hw.printf("%s: %s%s: %s\n", location, severity, code, d.Message)

	if d.Span != nil && line >= 1 && line <= len(lines) {
		hw.snippet(lines[line-1], line, column, d.Span.Length)
	}
	if d.Help != "" {
		hw.printf("  %s %s\n", hw.paint("help:", colorGreen), d.Help)
	}
}

// snippet prints the offending source line with a caret underline.
func (hw *humanWriter) snippet(src string, line, column, width int) {
	gutter := fmt.Sprintf("%4d", line)
	hw.printf("%s | %s\n", hw.paint(gutter, colorBlue), src)

	if column < 1 {
		column = 1
	}
	if width < 1 {
		width = 1
	}
	if column-1 > len(src) {
		return
	}
	if rest := len(src) - (column - 1); width > rest && rest > 0 {
		width = rest
	}
	pad := strings.Repeat(" ", column-1)
	carets := hw.paint(strings.Repeat("^", width), colorRed)
	hw.printf("%s | %s%s\n", hw.paint("    ", colorBlue), pad, carets)
}

func (hw *humanWriter) severityColor(s diag.Severity) string {
	switch s {
	case diag.SeverityError:
		return colorRed
	case diag.SeverityWarning:
		return colorYellow
	default:
		return colorBlue
	}
}

func (hw *humanWriter) paint(s, color string) string {
	if !hw.color {
		return s
	}
	return color + s + colorReset
}

func (hw *humanWriter) printf(format string, args ...any) {
	if hw.err != nil {
		return
	}
	_, hw.err = fmt.Fprintf(hw.w, format, args...)
}
