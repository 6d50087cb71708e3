// Package cli implements the sqlguard command line: subcommand
// dispatch, flag parsing, config merging, and the exit code contract.
// Exit 0 means clean, 1 means diagnostics with errors, 2 means a
// usage or configuration problem.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/electwix/sqlguard/internal/config"
	"github.com/electwix/sqlguard/internal/output"
)

// Exit codes.
const (
	ExitClean  = 0
	ExitErrors = 1
	ExitUsage  = 2
)

// Command is one sqlguard subcommand.
type Command struct {
	Name    string
	Summary string
	Run     func(ctx context.Context, opts *Options, args []string, stdout, stderr io.Writer) int
}

func commands() map[string]Command {
	return map[string]Command{
		"check": {
			Name:    "check",
			Summary: "analyze SQL query files against the schema",
			Run:     runCheck,
		},
		"schema": {
			Name:    "schema",
			Summary: "load the schema and print the catalog summary",
			Run:     runSchema,
		},
		"parse": {
			Name:    "parse",
			Summary: "parse SQL files and report syntax errors only",
			Run:     runParse,
		},
	}
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// Options holds the flag values shared by every subcommand.
type Options struct {
	Schemas    stringList
	SchemaDir  string
	FromDB     string
	Dialect    string
	Format     string
	MaxErrors  int
	Disable    stringList
	ConfigPath string
	Verbose    bool
	NoColor    bool

	set map[string]bool
}

// flagSet registers the shared flags on a fresh FlagSet.
func (o *Options) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Var(&o.Schemas, "schema", "Schema DDL file or glob (repeatable)")
	fs.StringVar(&o.SchemaDir, "schema-dir", "", "Directory of schema DDL files, searched recursively")
	fs.StringVar(&o.FromDB, "from-db", "", "PostgreSQL connection string to introspect instead of DDL files")
	fs.StringVar(&o.Dialect, "dialect", "", "SQL dialect (default postgres)")
	fs.StringVar(&o.Format, "format", "", "Output format: human, json, or sarif")
	fs.IntVar(&o.MaxErrors, "max-errors", 0, "Stop printing after this many diagnostics (0 = unlimited)")
	fs.Var(&o.Disable, "disable", "Diagnostic code to suppress globally (repeatable)")
	fs.StringVar(&o.ConfigPath, "config", "", "Path to sqlguard.toml or sqlguard.yaml")
	fs.BoolVar(&o.Verbose, "verbose", false, "Enable debug logging")
	fs.BoolVar(&o.Verbose, "v", false, "Enable debug logging")
	fs.BoolVar(&o.NoColor, "no-color", false, "Disable ANSI color in human output")
	return fs
}

// parse runs the flag set and records which flags were set explicitly,
// so config values only fill the gaps.
func (o *Options) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	o.set = map[string]bool{}
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	return nil
}

// applyConfig loads the config file (explicit path, or discovery from
// the working directory) and fills options the flags left unset.
func (o *Options) applyConfig() error {
	path := o.ConfigPath
	if path == "" {
		found, err := config.Discover(".")
		if errors.Is(err, config.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		path = found
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if len(o.Schemas) == 0 {
		o.Schemas = cfg.Schemas
	}
	if !o.set["schema-dir"] && cfg.SchemaDir != "" {
		o.SchemaDir = cfg.SchemaDir
	}
	if !o.set["dialect"] && cfg.Dialect != "" {
		o.Dialect = cfg.Dialect
	}
	if !o.set["format"] && cfg.Format != "" {
		o.Format = cfg.Format
	}
	if !o.set["max-errors"] && cfg.MaxErrors != 0 {
		o.MaxErrors = cfg.MaxErrors
	}
	if len(o.Disable) == 0 {
		o.Disable = cfg.Disable
	}
	if !o.set["verbose"] && !o.set["v"] {
		o.Verbose = cfg.Verbose
	}
	return nil
}

// renderOptions builds the output options from the merged flags.
func (o *Options) renderOptions(stdout io.Writer) (output.Options, error) {
	format, err := output.ParseFormat(o.Format)
	if err != nil {
		return output.Options{}, err
	}
	color := false
	if format == output.FormatHuman {
		color = output.ColorEnabled(stdout, o.NoColor)
	}
	return output.Options{Format: format, Color: color, MaxErrors: o.MaxErrors}, nil
}

// Run dispatches to a subcommand and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return ExitUsage
	}
	name := args[0]
	if name == "-h" || name == "--help" || name == "help" {
		printUsage(stdout)
		return ExitClean
	}

	cmd, ok := commands()[name]
	if !ok {
		fmt.Fprintf(stderr, "sqlguard: unknown command %q\n\n", name)
		printUsage(stderr)
		return ExitUsage
	}

	opts := &Options{}
	fs := opts.flagSet("sqlguard " + name)
	if err := opts.parse(fs, args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stdout, usageOf(fs))
			return ExitClean
		}
		fmt.Fprintf(stderr, "sqlguard %s: %v\n\n%s", name, err, usageOf(fs))
		return ExitUsage
	}
	if err := opts.applyConfig(); err != nil {
		fmt.Fprintf(stderr, "sqlguard %s: %v\n", name, err)
		return ExitUsage
	}

	return cmd.Run(ctx, opts, fs.Args(), stdout, stderr)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: sqlguard <command> [flags] [files...]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, name := range []string{"check", "schema", "parse"} {
		cmd := commands()[name]
		fmt.Fprintf(w, "  %-8s %s\n", cmd.Name, cmd.Summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'sqlguard <command> -h' for command flags.")
}

func usageOf(fs *flag.FlagSet) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Usage of %s:\n", fs.Name())
	out := fs.Output()
	fs.SetOutput(&buf)
	fs.PrintDefaults()
	fs.SetOutput(out)
	return buf.String()
}
