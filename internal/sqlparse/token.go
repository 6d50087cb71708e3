package sqlparse

import (
	"strconv"
	"strings"

	"github.com/electwix/sqlguard/internal/diag"
)

// Kind represents the classification of a scanned token.
type Kind int

const (
	// KindInvalid represents an unrecognized or placeholder token.
	KindInvalid Kind = iota
	// KindIdentifier represents bare or quoted identifiers.
	KindIdentifier
	// KindKeyword represents SQL keywords normalized to uppercase.
	KindKeyword
	// KindNumber represents numeric literals.
	KindNumber
	// KindString represents string literals, including dollar-quoted bodies.
	KindString
	// KindSymbol represents punctuation or operator symbols.
	KindSymbol
	// KindParam represents query parameters ($1, ?, :name).
	KindParam
	// KindEOF marks the logical end of the input.
	KindEOF
)

// String returns the printable kind name.
func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "Invalid"
	case KindIdentifier:
		return "Identifier"
	case KindKeyword:
		return "Keyword"
	case KindNumber:
		return "Number"
	case KindString:
		return "String"
	case KindSymbol:
		return "Symbol"
	case KindParam:
		return "Param"
	case KindEOF:
		return "EOF"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Token is a unit emitted by the scanner with positional metadata.
// Text keeps the raw source form; keywords are normalized to uppercase.
type Token struct {
	Kind   Kind
	Text   string
	Offset int
	Line   int
	Column int
}

// Width returns the token's byte width in the source.
func (t Token) Width() int {
	return len(t.Text)
}

// Span returns a diagnostic span covering the token.
func (t Token) Span() *diag.Span {
	width := t.Width()
	if width == 0 {
		width = 1
	}
	return diag.NewSpan(t.Offset, width, t.Line, t.Column)
}

// SpanBetween returns a diagnostic span covering both tokens, inclusive.
func SpanBetween(start, end Token) *diag.Span {
	length := end.Offset + end.Width() - start.Offset
	if length <= 0 {
		length = start.Width()
	}
	return diag.NewSpan(start.Offset, length, start.Line, start.Column)
}

// Comment is comment trivia preserved for directive scanning.
type Comment struct {
	// Text is the comment body without the -- or /* */ markers.
	Text   string
	Line   int
	Offset int
}

// IsKeyword reports whether the provided string matches a known keyword.
func IsKeyword(s string) bool {
	if s == "" {
		return false
	}
	_, ok := keywords[strings.ToUpper(s)]
	return ok
}

// NormalizeIdentifier removes optional quoting from identifiers while
// unescaping doubled quote characters.
func NormalizeIdentifier(text string) string {
	if len(text) < 2 {
		return text
	}
	switch text[0] {
	case '"':
		if text[len(text)-1] != '"' {
			return text
		}
		return strings.ReplaceAll(text[1:len(text)-1], `""`, `"`)
	case '`':
		if text[len(text)-1] != '`' {
			return text
		}
		return strings.ReplaceAll(text[1:len(text)-1], "``", "`")
	default:
		return text
	}
}

var keywords = map[string]struct{}{
	"ADD": {}, "ALL": {}, "ALTER": {}, "ALWAYS": {}, "AND": {}, "ANY": {},
	"AS": {}, "ASC": {}, "BETWEEN": {}, "BY": {}, "CASCADE": {}, "CASE": {},
	"CAST": {}, "CHECK": {}, "COLUMN": {}, "CONSTRAINT": {}, "CREATE": {},
	"CROSS": {}, "CURRENT_DATE": {}, "CURRENT_TIME": {}, "CURRENT_TIMESTAMP": {},
	"DEFAULT": {}, "DELETE": {}, "DESC": {}, "DISTINCT": {}, "DROP": {},
	"ELSE": {}, "END": {}, "ENUM": {}, "EXCEPT": {}, "EXISTS": {}, "FALSE": {},
	"FETCH": {}, "FIRST": {}, "FOREIGN": {}, "FROM": {}, "FULL": {},
	"GENERATED": {}, "GROUP": {}, "HAVING": {}, "IDENTITY": {}, "IF": {},
	"ILIKE": {}, "IN": {}, "INNER": {}, "INSERT": {}, "INTERSECT": {},
	"INTO": {}, "IS": {}, "JOIN": {}, "KEY": {}, "LAST": {}, "LATERAL": {},
	"LEFT": {}, "LIKE": {}, "LIMIT": {}, "MATERIALIZED": {}, "NATURAL": {},
	"NOT": {}, "NULL": {}, "NULLS": {}, "OFFSET": {}, "ON": {}, "ONLY": {},
	"OR": {}, "ORDER": {}, "OUTER": {}, "PRIMARY": {}, "RECURSIVE": {},
	"REFERENCES": {}, "RENAME": {}, "REPLACE": {}, "RESTRICT": {},
	"RETURNING": {}, "RIGHT": {}, "SELECT": {}, "SET": {}, "SOME": {},
	"TABLE": {}, "TEMP": {}, "TEMPORARY": {}, "THEN": {}, "TO": {}, "TRUE": {},
	"TYPE": {}, "UNION": {}, "UNIQUE": {}, "UPDATE": {}, "USING": {},
	"VALUES": {}, "VIEW": {}, "WHEN": {}, "WHERE": {}, "WITH": {}, "ZONE": {},
}
