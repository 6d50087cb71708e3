package suppress

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/electwix/sqlguard/internal/diag"
)

func TestParseDirective(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  []string
		match bool
	}{
		{"single code", "sqlguard:disable=E0001", []string{"E0001"}, true},
		{"multiple codes", "sqlguard:disable=E0001,E0003", []string{"E0001", "E0003"}, true},
		{"spaces around codes", "sqlguard:disable = E0002 , E0006", []string{"E0002", "E0006"}, true},
		{"lowercase code", "sqlguard:disable=e1000", []string{"E1000"}, true},
		{"leading space", "  sqlguard:disable=E0005", []string{"E0005"}, true},
		{"ordinary comment", "fetch the newest orders first", nil, false},
		{"wrong prefix", "sqlfix:disable=E0001", nil, false},
		{"missing codes", "sqlguard:disable=", nil, false},
		{"unknown verb", "sqlguard:ignore=E0001", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseDirective(tt.text)
			if ok != tt.match {
				t.Fatalf("parseDirective(%q) matched = %v, want %v", tt.text, ok, tt.match)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("codes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScanScriptPrecedingLine(t *testing.T) {
	src := "-- sqlguard:disable=E0001\nSELECT *\nFROM missing;"
	regions, err := ScanScript(src)
	if err != nil {
		t.Fatalf("ScanScript: %v", err)
	}
	want := []Region{{Codes: []string{"E0001"}, StartLine: 2, EndLine: 3}}
	if diff := cmp.Diff(want, regions); diff != "" {
		t.Errorf("regions mismatch (-want +got):\n%s", diff)
	}
}

func TestScanScriptSameLine(t *testing.T) {
	src := "SELECT id FROM missing; -- sqlguard:disable=E0001\nSELECT id FROM also_missing;"
	regions, err := ScanScript(src)
	if err != nil {
		t.Fatalf("ScanScript: %v", err)
	}
	if len(regions) != 1 {
		t.Fatalf("got %d regions, want 1", len(regions))
	}
	if regions[0].StartLine != 1 || regions[0].EndLine != 1 {
		t.Errorf("region covers lines %d-%d, want 1-1", regions[0].StartLine, regions[0].EndLine)
	}
}

func TestScanScriptInsideStatement(t *testing.T) {
	src := "SELECT id -- sqlguard:disable=E0002\nFROM users\nWHERE missing = 1;"
	regions, err := ScanScript(src)
	if err != nil {
		t.Fatalf("ScanScript: %v", err)
	}
	want := []Region{{Codes: []string{"E0002"}, StartLine: 1, EndLine: 3}}
	if diff := cmp.Diff(want, regions); diff != "" {
		t.Errorf("regions mismatch (-want +got):\n%s", diff)
	}
}

func TestScanScriptDanglingDirective(t *testing.T) {
	src := "-- sqlguard:disable=E0001\n\n\nSELECT 1;"
	regions, err := ScanScript(src)
	if err != nil {
		t.Fatalf("ScanScript: %v", err)
	}
	if len(regions) != 0 {
		t.Errorf("got %d regions for dangling directive, want 0", len(regions))
	}
}

func TestFilter(t *testing.T) {
	diags := []diag.Diagnostic{
		{Kind: diag.KindTableNotFound, Message: "Table 'missing' not found", Span: diag.NewSpan(20, 7, 2, 6)},
		{Kind: diag.KindColumnNotFound, Message: "Column 'nope' not found", Span: diag.NewSpan(40, 4, 2, 20)},
		{Kind: diag.KindTableNotFound, Message: "Table 'other' not found", Span: diag.NewSpan(80, 5, 5, 6)},
	}
	regions := []Region{{Codes: []string{"E0001"}, StartLine: 1, EndLine: 3}}

	got := Filter(diags, regions)
	if len(got) != 2 {
		t.Fatalf("got %d diagnostics after filter, want 2", len(got))
	}
	if got[0].Kind != diag.KindColumnNotFound {
		t.Errorf("first surviving diagnostic is %s, want column-not-found", got[0].Kind.Name())
	}
	if got[1].Span.Line != 5 {
		t.Errorf("second surviving diagnostic on line %d, want 5 (outside region)", got[1].Span.Line)
	}
}

func TestFilterNilSpanKept(t *testing.T) {
	diags := []diag.Diagnostic{{Kind: diag.KindParseError, Message: "Parse error: boom"}}
	regions := []Region{{Codes: []string{"E1000"}, StartLine: 1, EndLine: 10}}
	if got := Filter(diags, regions); len(got) != 1 {
		t.Errorf("diagnostic without span was filtered, want kept")
	}
}

func TestFilterNoRegions(t *testing.T) {
	diags := []diag.Diagnostic{{Kind: diag.KindTableNotFound, Span: diag.NewSpan(0, 1, 1, 1)}}
	if got := Filter(diags, nil); len(got) != 1 {
		t.Errorf("Filter with no regions dropped diagnostics")
	}
}
