package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "sqlguard.toml", `
schemas = ["schema/*.sql"]
dialect = "postgres"
format = "json"
max_errors = 25
disable = ["E0003"]
verbose = true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := File{
		Schemas:   []string{"schema/*.sql"},
		Dialect:   "postgres",
		Format:    "json",
		MaxErrors: 25,
		Disable:   []string{"E0003"},
		Verbose:   true,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "sqlguard.yaml", `
schema_dir: db/schema
format: sarif
disable: [e0001, E1000]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SchemaDir != "db/schema" || cfg.Format != "sarif" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if len(cfg.Disable) != 2 {
		t.Errorf("disable list = %v, want 2 entries", cfg.Disable)
	}
}

func TestLoadUnknownKey(t *testing.T) {
	path := writeFile(t, t.TempDir(), "sqlguard.toml", `
dialect = "postgres"
shcemas = ["schema.sql"]
`)
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "unknown configuration keys: shcemas") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantIn  string
	}{
		{"bad dialect", `dialect = "oracle"`, "oracle"},
		{"bad format", `format = "xml"`, "unknown output format"},
		{"negative max_errors", `max_errors = -1`, "max_errors"},
		{"bad code", `disable = ["banana"]`, "invalid diagnostic code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "sqlguard.toml", tt.content)
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantIn) {
				t.Fatalf("expected error containing %q, got %v", tt.wantIn, err)
			}
		})
	}
}

func TestDiscoverWalksAncestors(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "sqlguard.toml", `dialect = "postgres"`)

	nested := filepath.Join(root, "queries", "reports")
	if err := os.MkdirAll(nested, 0o750); err != nil {
		t.Fatal(err)
	}

	path, err := Discover(nested)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if filepath.Base(path) != "sqlguard.toml" || filepath.Dir(path) != root {
		t.Errorf("Discover = %q, want file at %q", path, root)
	}
}

func TestDiscoverPrefersTOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sqlguard.yaml", `dialect: postgres`)
	writeFile(t, dir, "sqlguard.toml", `dialect = "postgres"`)

	path, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if filepath.Base(path) != "sqlguard.toml" {
		t.Errorf("Discover = %q, want the TOML file", path)
	}
}

func TestDiscoverNotFound(t *testing.T) {
	_, err := Discover(t.TempDir())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
