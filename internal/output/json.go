package output

import (
	"encoding/json"
	"io"

	"github.com/electwix/sqlguard/internal/diag"
)

type jsonReport struct {
	File        string           `json:"file"`
	Diagnostics []jsonDiagnostic `json:"diagnostics"`
}

type jsonDiagnostic struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Help     string `json:"help,omitempty"`
}

func renderJSON(w io.Writer, reports []Report) error {
	out := make([]jsonReport, 0, len(reports))
	for _, rep := range reports {
		jr := jsonReport{File: rep.File, Diagnostics: make([]jsonDiagnostic, 0, len(rep.Diagnostics))}
		for _, d := range rep.Diagnostics {
			jr.Diagnostics = append(jr.Diagnostics, jsonDiagnosticFrom(d))
		}
		out = append(out, jr)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func jsonDiagnosticFrom(d diag.Diagnostic) jsonDiagnostic {
	jd := jsonDiagnostic{
		Code:     d.Kind.Code(),
		Name:     d.Kind.Name(),
		Severity: d.Severity.String(),
		Message:  d.Message,
		Help:     d.Help,
	}
	if d.Span != nil {
		jd.Line = d.Span.Line
		jd.Column = d.Span.Column
	}
	return jd
}
