package output

import (
	"encoding/json"
	"io"

	"github.com/google/uuid"

	"github.com/electwix/sqlguard/internal/diag"
)

// Minimal SARIF 2.1.0 document shape, enough for code-scanning uploads.
type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool              sarifTool              `json:"tool"`
	AutomationDetails sarifAutomationDetails `json:"automationDetails"`
	Results           []sarifResult          `json:"results"`
}

type sarifAutomationDetails struct {
	GUID string `json:"guid"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name  string      `json:"name"`
	Rules []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn"`
}

func renderSARIF(w io.Writer, reports []Report) error {
	rules := make([]sarifRule, 0, len(diag.Kinds()))
	for _, k := range diag.Kinds() {
		rules = append(rules, sarifRule{
			ID:               k.Code(),
			Name:             k.Name(),
			ShortDescription: sarifMessage{Text: diag.Description(k)},
		})
	}

	var results []sarifResult
	for _, rep := range reports {
		for _, d := range rep.Diagnostics {
			results = append(results, sarifResultFrom(rep.File, d))
		}
	}

	log := sarifLog{
		Schema:  "https://json.schemastore.org/sarif-2.1.0.json",
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool:              sarifTool{Driver: sarifDriver{Name: "sqlguard", Rules: rules}},
			AutomationDetails: sarifAutomationDetails{GUID: uuid.NewString()},
			Results:           results,
		}},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(log)
}

func sarifResultFrom(file string, d diag.Diagnostic) sarifResult {
	res := sarifResult{
		RuleID:  d.Kind.Code(),
		Level:   sarifLevel(d.Severity),
		Message: sarifMessage{Text: d.Message},
	}
	if d.Span != nil {
		res.Locations = []sarifLocation{{
			PhysicalLocation: sarifPhysicalLocation{
				ArtifactLocation: sarifArtifactLocation{URI: file},
				Region:           sarifRegion{StartLine: d.Span.Line, StartColumn: d.Span.Column},
			},
		}}
	}
	return res
}

func sarifLevel(s diag.Severity) string {
	switch s {
	case diag.SeverityError:
		return "error"
	case diag.SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}
