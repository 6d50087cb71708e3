// Package diag provides the diagnostic model for sqlguard.
// It captures diagnostic kinds with stable codes, source spans,
// severity levels, and optional help text.
package diag

import (
	"fmt"
	"sort"
	"strings"
)

// Severity indicates the seriousness of a diagnostic.
type Severity int

const (
	// SeverityInfo indicates an informational message.
	SeverityInfo Severity = iota
	// SeverityWarning indicates a potential issue that does not fail a check.
	SeverityWarning
	// SeverityError indicates an issue that fails a check.
	SeverityError
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// SeverityFromString parses a severity level from a string.
func SeverityFromString(s string) Severity {
	switch strings.ToLower(s) {
	case "info":
		return SeverityInfo
	case "warning", "warn":
		return SeverityWarning
	case "error", "err":
		return SeverityError
	default:
		return SeverityWarning
	}
}

// Kind identifies a class of diagnostic with a stable code and machine name.
type Kind int

const (
	// KindTableNotFound reports a reference to an unknown table or view.
	KindTableNotFound Kind = iota
	// KindColumnNotFound reports a reference to an unknown column.
	KindColumnNotFound
	// KindTypeMismatch reports incompatible operand types in an expression.
	KindTypeMismatch
	// KindPotentialNullViolation is reserved for NOT NULL violation
	// detection; no current check emits it.
	KindPotentialNullViolation
	// KindColumnCountMismatch reports an INSERT arity mismatch.
	KindColumnCountMismatch
	// KindAmbiguousColumn reports an unqualified column visible in several tables.
	KindAmbiguousColumn
	// KindJoinTypeMismatch reports incompatible types in a JOIN condition.
	KindJoinTypeMismatch
	// KindParseError reports SQL that could not be parsed.
	KindParseError
)

// Code returns the stable diagnostic code, e.g. "E0001".
func (k Kind) Code() string {
	switch k {
	case KindTableNotFound:
		return "E0001"
	case KindColumnNotFound:
		return "E0002"
	case KindTypeMismatch:
		return "E0003"
	case KindPotentialNullViolation:
		return "E0004"
	case KindColumnCountMismatch:
		return "E0005"
	case KindAmbiguousColumn:
		return "E0006"
	case KindJoinTypeMismatch:
		return "E0007"
	case KindParseError:
		return "E1000"
	default:
		return "E9999"
	}
}

// Name returns the machine-readable rule name, e.g. "table-not-found".
func (k Kind) Name() string {
	switch k {
	case KindTableNotFound:
		return "table-not-found"
	case KindColumnNotFound:
		return "column-not-found"
	case KindTypeMismatch:
		return "type-mismatch"
	case KindPotentialNullViolation:
		return "potential-null-violation"
	case KindColumnCountMismatch:
		return "column-count-mismatch"
	case KindAmbiguousColumn:
		return "ambiguous-column"
	case KindJoinTypeMismatch:
		return "join-type-mismatch"
	case KindParseError:
		return "parse-error"
	default:
		return "unknown"
	}
}

// Kinds returns every diagnostic kind in code order.
func Kinds() []Kind {
	return []Kind{
		KindTableNotFound,
		KindColumnNotFound,
		KindTypeMismatch,
		KindPotentialNullViolation,
		KindColumnCountMismatch,
		KindAmbiguousColumn,
		KindJoinTypeMismatch,
		KindParseError,
	}
}

// Description returns a short human-readable description for a kind.
func Description(k Kind) string {
	switch k {
	case KindTableNotFound:
		return "Reference to unknown table or view"
	case KindColumnNotFound:
		return "Reference to unknown column"
	case KindTypeMismatch:
		return "Type mismatch in expression"
	case KindPotentialNullViolation:
		return "Potential NOT NULL violation"
	case KindColumnCountMismatch:
		return "Column count mismatch"
	case KindAmbiguousColumn:
		return "Ambiguous column reference"
	case KindJoinTypeMismatch:
		return "Type mismatch in join condition"
	case KindParseError:
		return "SQL could not be parsed"
	default:
		return "Unknown diagnostic"
	}
}

// Span is a half-open byte range in a source file with 1-indexed
// line and column of its start.
type Span struct {
	Offset int
	Length int
	Line   int
	Column int
}

// NewSpan constructs a span from an offset range and start position.
func NewSpan(offset, length, line, column int) *Span {
	return &Span{Offset: offset, Length: length, Line: line, Column: column}
}

// End returns the byte offset one past the span.
func (s *Span) End() int {
	return s.Offset + s.Length
}

// Diagnostic is a single finding against a SQL source.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Message  string
	Span     *Span
	Help     string
	Path     string
}

// IsError reports whether the diagnostic is error severity.
func (d Diagnostic) IsError() bool { return d.Severity == SeverityError }

// IsWarning reports whether the diagnostic is warning severity.
func (d Diagnostic) IsWarning() bool { return d.Severity == SeverityWarning }

// String returns the single-line representation used by logs and errors.
func (d Diagnostic) String() string {
	var b strings.Builder
	if d.Path != "" && d.Span != nil {
		fmt.Fprintf(&b, "%s:%d:%d: ", d.Path, d.Span.Line, d.Span.Column)
	} else if d.Span != nil {
		fmt.Fprintf(&b, "%d:%d: ", d.Span.Line, d.Span.Column)
	}
	fmt.Fprintf(&b, "%s[%s]: %s", d.Severity, d.Kind.Code(), d.Message)
	return b.String()
}

// Error implements the error interface.
func (d Diagnostic) Error() string { return d.String() }

// Builder provides a fluent API for constructing diagnostics.
type Builder struct {
	diag Diagnostic
}

// New creates a builder for the given kind at error severity.
func New(kind Kind) *Builder {
	return &Builder{diag: Diagnostic{Kind: kind, Severity: SeverityError}}
}

// Severity overrides the diagnostic severity.
func (b *Builder) Severity(s Severity) *Builder {
	b.diag.Severity = s
	return b
}

// Warning sets warning severity.
func (b *Builder) Warning() *Builder {
	b.diag.Severity = SeverityWarning
	return b
}

// Messagef sets the formatted message.
func (b *Builder) Messagef(format string, args ...any) *Builder {
	b.diag.Message = fmt.Sprintf(format, args...)
	return b
}

// Message sets the message.
func (b *Builder) Message(msg string) *Builder {
	b.diag.Message = msg
	return b
}

// Span attaches a source span.
func (b *Builder) Span(span *Span) *Builder {
	b.diag.Span = span
	return b
}

// Help attaches help text.
func (b *Builder) Help(help string) *Builder {
	b.diag.Help = help
	return b
}

// Helpf attaches formatted help text.
func (b *Builder) Helpf(format string, args ...any) *Builder {
	b.diag.Help = fmt.Sprintf(format, args...)
	return b
}

// Path attaches the source file path.
func (b *Builder) Path(path string) *Builder {
	b.diag.Path = path
	return b
}

// Build returns the constructed diagnostic.
func (b *Builder) Build() Diagnostic {
	return b.diag
}

// Collection holds an ordered set of diagnostics.
type Collection struct {
	diagnostics []Diagnostic
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{diagnostics: make([]Diagnostic, 0)}
}

// Add appends a diagnostic.
func (c *Collection) Add(d Diagnostic) {
	c.diagnostics = append(c.diagnostics, d)
}

// AddAll appends every diagnostic from another collection.
func (c *Collection) AddAll(other *Collection) {
	if other == nil {
		return
	}
	c.diagnostics = append(c.diagnostics, other.diagnostics...)
}

// HasErrors reports whether the collection contains error diagnostics.
func (c *Collection) HasErrors() bool {
	for _, d := range c.diagnostics {
		if d.IsError() {
			return true
		}
	}
	return false
}

// Errors returns all error-level diagnostics.
func (c *Collection) Errors() []Diagnostic {
	return c.Filter(Diagnostic.IsError)
}

// Warnings returns all warning-level diagnostics.
func (c *Collection) Warnings() []Diagnostic {
	return c.Filter(Diagnostic.IsWarning)
}

// All returns a copy of every diagnostic.
func (c *Collection) All() []Diagnostic {
	return append([]Diagnostic(nil), c.diagnostics...)
}

// Len returns the number of diagnostics.
func (c *Collection) Len() int { return len(c.diagnostics) }

// Filter returns diagnostics matching the predicate.
func (c *Collection) Filter(predicate func(Diagnostic) bool) []Diagnostic {
	var result []Diagnostic
	for _, d := range c.diagnostics {
		if predicate(d) {
			result = append(result, d)
		}
	}
	return result
}

// Without returns a new collection with every diagnostic whose code is
// in the disabled list removed. Codes are matched case-insensitively.
func (c *Collection) Without(codes ...string) *Collection {
	if len(codes) == 0 {
		return c
	}
	disabled := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		disabled[strings.ToUpper(strings.TrimSpace(code))] = struct{}{}
	}
	out := NewCollection()
	for _, d := range c.diagnostics {
		if _, ok := disabled[d.Kind.Code()]; ok {
			continue
		}
		out.Add(d)
	}
	return out
}

// SortBySpan orders diagnostics by path, then span position.
// Diagnostics without spans sort before positioned ones in the same file.
func (c *Collection) SortBySpan() {
	sort.SliceStable(c.diagnostics, func(i, j int) bool {
		a, b := c.diagnostics[i], c.diagnostics[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		switch {
		case a.Span == nil && b.Span == nil:
			return false
		case a.Span == nil:
			return true
		case b.Span == nil:
			return false
		}
		if a.Span.Line != b.Span.Line {
			return a.Span.Line < b.Span.Line
		}
		return a.Span.Column < b.Span.Column
	})
}

// Summary provides a quick overview of diagnostics.
type Summary struct {
	Total    int
	Errors   int
	Warnings int
	Infos    int
}

// Summary returns counts by severity.
func (c *Collection) Summary() Summary {
	s := Summary{Total: len(c.diagnostics)}
	for _, d := range c.diagnostics {
		switch d.Severity {
		case SeverityError:
			s.Errors++
		case SeverityWarning:
			s.Warnings++
		case SeverityInfo:
			s.Infos++
		}
	}
	return s
}
