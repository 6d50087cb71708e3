package analyzer

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/tools/txtar"

	"github.com/electwix/sqlguard/internal/dialect"
	"github.com/electwix/sqlguard/internal/logging"
	"github.com/electwix/sqlguard/internal/schema"
)

// TestCorpus runs the txtar fixtures under testdata. Each archive has
// a schema.sql, a query.sql, and an expect section listing one
// diagnostic per line as "CODE line message"; an empty expect section
// means the queries are clean.
func TestCorpus(t *testing.T) {
	archives, err := filepath.Glob(filepath.Join("testdata", "*.txtar"))
	if err != nil {
		t.Fatal(err)
	}
	if len(archives) == 0 {
		t.Fatal("no corpus archives found under testdata")
	}

	for _, path := range archives {
		t.Run(strings.TrimSuffix(filepath.Base(path), ".txtar"), func(t *testing.T) {
			ar, err := txtar.ParseFile(path)
			if err != nil {
				t.Fatalf("parse archive: %v", err)
			}

			var schemaSrc, querySrc, expect string
			for _, f := range ar.Files {
				switch f.Name {
				case "schema.sql":
					schemaSrc = string(f.Data)
				case "query.sql":
					querySrc = string(f.Data)
				case "expect":
					expect = string(f.Data)
				default:
					t.Fatalf("unexpected archive section %q", f.Name)
				}
			}

			d, err := dialect.Lookup("postgres")
			if err != nil {
				t.Fatal(err)
			}
			builder := schema.New(d, logging.NewNopLogger())
			builder.AddSource("schema.sql", schemaSrc)
			cat, schemaDiags := builder.Build()
			if schemaDiags.Len() != 0 {
				t.Fatalf("schema diagnostics: %v", schemaDiags.All())
			}

			col := New(cat).Analyze(querySrc)
			got := []string{}
			for _, diagnostic := range col.All() {
				line := 0
				if diagnostic.Span != nil {
					line = diagnostic.Span.Line
				}
				got = append(got, fmt.Sprintf("%s %d %s", diagnostic.Kind.Code(), line, diagnostic.Message))
			}

			want := []string{}
			for _, line := range strings.Split(expect, "\n") {
				if trimmed := strings.TrimSpace(line); trimmed != "" {
					want = append(want, trimmed)
				}
			}

			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
