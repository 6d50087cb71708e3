// Package config loads the sqlguard configuration file. A project can
// keep shared settings in sqlguard.toml or sqlguard.yaml at the repo
// root; CLI flags override anything set here.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"

	"github.com/electwix/sqlguard/internal/dialect"
	"github.com/electwix/sqlguard/internal/output"
)

// ErrNotFound indicates that no configuration file was discovered.
var ErrNotFound = errors.New("config: no sqlguard.toml or sqlguard.yaml found")

// Candidate file names, checked in order in each directory.
var fileNames = []string{"sqlguard.toml", "sqlguard.yaml", "sqlguard.yml"}

// File mirrors the configuration schema. Zero values mean "not set",
// so flag overrides can distinguish configured fields.
type File struct {
	Schemas   []string `toml:"schemas" yaml:"schemas"`
	SchemaDir string   `toml:"schema_dir" yaml:"schema_dir"`
	Dialect   string   `toml:"dialect" yaml:"dialect"`
	Format    string   `toml:"format" yaml:"format"`
	MaxErrors int      `toml:"max_errors" yaml:"max_errors"`
	Disable   []string `toml:"disable" yaml:"disable"`
	Verbose   bool     `toml:"verbose" yaml:"verbose"`
}

// Discover walks from dir toward the filesystem root and returns the
// first configuration file found, or ErrNotFound.
func Discover(dir string) (string, error) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", dir, err)
	}
	for {
		for _, name := range fileNames {
			candidate := filepath.Join(current, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", ErrNotFound
		}
		current = parent
	}
}

// Load reads and validates a configuration file. The decoder is picked
// by extension; unknown keys are an error in both formats.
func Load(path string) (File, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return File{}, fmt.Errorf("read %s: %w", path, err)
	}

	var cfg File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return File{}, fmt.Errorf("%s: unsupported config extension %q", path, filepath.Ext(path))
	}
	if err != nil {
		return File{}, fmt.Errorf("%s: %w", path, err)
	}

	if unknown := unknownKeys(data, filepath.Ext(path)); len(unknown) > 0 {
		slices.Sort(unknown)
		return File{}, fmt.Errorf("%s: unknown configuration keys: %s", path, strings.Join(unknown, ", "))
	}
	if err := cfg.validate(path); err != nil {
		return File{}, err
	}
	return cfg, nil
}

func (f File) validate(path string) error {
	if f.Dialect != "" {
		if _, err := dialect.Lookup(f.Dialect); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	if _, err := output.ParseFormat(f.Format); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if f.MaxErrors < 0 {
		return fmt.Errorf("%s: max_errors must not be negative", path)
	}
	for _, code := range f.Disable {
		if !validCode(code) {
			return fmt.Errorf("%s: invalid diagnostic code %q in disable list", path, code)
		}
	}
	return nil
}

// validCode checks the E-number shape without requiring the code to be
// assigned, so disabling future codes stays forward compatible.
func validCode(code string) bool {
	if len(code) != 5 || (code[0] != 'E' && code[0] != 'e') {
		return false
	}
	for _, c := range code[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func unknownKeys(data []byte, ext string) []string {
	var raw map[string]any
	var err error
	if strings.EqualFold(ext, ".toml") {
		err = toml.Unmarshal(data, &raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil
	}

	known := map[string]struct{}{
		"schemas":    {},
		"schema_dir": {},
		"dialect":    {},
		"format":     {},
		"max_errors": {},
		"disable":    {},
		"verbose":    {},
	}
	var unknown []string
	for key := range raw {
		if _, ok := known[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	return unknown
}
