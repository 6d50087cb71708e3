// Package sqltype models the SQL column types sqlguard understands and
// the cast relationships between them.
package sqltype

import (
	"fmt"
	"strings"
)

// Kind enumerates the supported SQL type families.
type Kind int

const (
	// KindUnknown is the inference fallback; it never fails a check.
	KindUnknown Kind = iota
	// KindTinyInt is a 1-byte integer (MySQL TINYINT).
	KindTinyInt
	// KindSmallInt is a 2-byte integer.
	KindSmallInt
	// KindMediumInt is a 3-byte integer (MySQL MEDIUMINT).
	KindMediumInt
	// KindInteger is a 4-byte integer.
	KindInteger
	// KindBigInt is an 8-byte integer.
	KindBigInt
	// KindNumeric is an exact decimal with optional precision and scale.
	KindNumeric
	// KindReal is a 4-byte float.
	KindReal
	// KindDoublePrecision is an 8-byte float.
	KindDoublePrecision
	// KindChar is a fixed-width character type.
	KindChar
	// KindVarchar is a bounded character type.
	KindVarchar
	// KindText is an unbounded character type.
	KindText
	// KindBytea is raw bytes.
	KindBytea
	// KindDate is a calendar date.
	KindDate
	// KindTime is a time of day, optionally with a time zone.
	KindTime
	// KindTimestamp is a date and time, optionally with a time zone.
	KindTimestamp
	// KindInterval is a duration.
	KindInterval
	// KindBoolean is a truth value.
	KindBoolean
	// KindUUID is a universally unique identifier.
	KindUUID
	// KindJSON is textual JSON.
	KindJSON
	// KindJSONB is decomposed binary JSON.
	KindJSONB
	// KindArray is an array of an element type.
	KindArray
	// KindCustom is a user-defined type, typically an enum.
	KindCustom
)

// Type is a SQL column type. The zero value is Unknown.
type Type struct {
	Kind Kind

	// Precision and Scale apply to numeric; Precision also carries the
	// fractional-second precision of time and timestamp. Zero means
	// unspecified.
	Precision int
	Scale     int

	// Length applies to char and varchar. Zero means unspecified.
	Length int

	// WithTimeZone applies to time and timestamp.
	WithTimeZone bool

	// Elem is the element type of an array.
	Elem *Type

	// Name is the declared name of a custom type.
	Name string
}

// Constructors for the common parameterless types.
var (
	Unknown         = Type{Kind: KindUnknown}
	TinyInt         = Type{Kind: KindTinyInt}
	SmallInt        = Type{Kind: KindSmallInt}
	MediumInt       = Type{Kind: KindMediumInt}
	Integer         = Type{Kind: KindInteger}
	BigInt          = Type{Kind: KindBigInt}
	Real            = Type{Kind: KindReal}
	DoublePrecision = Type{Kind: KindDoublePrecision}
	Text            = Type{Kind: KindText}
	Bytea           = Type{Kind: KindBytea}
	Date            = Type{Kind: KindDate}
	Interval        = Type{Kind: KindInterval}
	Boolean         = Type{Kind: KindBoolean}
	UUID            = Type{Kind: KindUUID}
	JSON            = Type{Kind: KindJSON}
	JSONB           = Type{Kind: KindJSONB}
)

// Numeric returns an exact decimal type. Zero precision means unspecified.
func Numeric(precision, scale int) Type {
	return Type{Kind: KindNumeric, Precision: precision, Scale: scale}
}

// Char returns a fixed-width character type.
func Char(length int) Type {
	return Type{Kind: KindChar, Length: length}
}

// Varchar returns a bounded character type.
func Varchar(length int) Type {
	return Type{Kind: KindVarchar, Length: length}
}

// Time returns a time-of-day type.
func Time(precision int, withTZ bool) Type {
	return Type{Kind: KindTime, Precision: precision, WithTimeZone: withTZ}
}

// Timestamp returns a date-and-time type.
func Timestamp(precision int, withTZ bool) Type {
	return Type{Kind: KindTimestamp, Precision: precision, WithTimeZone: withTZ}
}

// Array returns an array of elem.
func Array(elem Type) Type {
	e := elem
	return Type{Kind: KindArray, Elem: &e}
}

// Custom returns a user-defined type reference.
func Custom(name string) Type {
	return Type{Kind: KindCustom, Name: name}
}

// IsUnknown reports whether the type is the inference fallback.
func (t Type) IsUnknown() bool { return t.Kind == KindUnknown }

// IsNumeric reports whether the type participates in arithmetic.
func (t Type) IsNumeric() bool {
	switch t.Kind {
	case KindTinyInt, KindSmallInt, KindMediumInt, KindInteger, KindBigInt,
		KindNumeric, KindReal, KindDoublePrecision:
		return true
	}
	return false
}

// IsInteger reports whether the type is a member of the integer chain.
func (t Type) IsInteger() bool {
	switch t.Kind {
	case KindTinyInt, KindSmallInt, KindMediumInt, KindInteger, KindBigInt:
		return true
	}
	return false
}

// IsTextual reports whether the type holds character data.
func (t Type) IsTextual() bool {
	switch t.Kind {
	case KindChar, KindVarchar, KindText:
		return true
	}
	return false
}

// String returns the canonical display name, e.g. "integer",
// "numeric(10,2)", "timestamp with time zone", "text[]".
func (t Type) String() string {
	switch t.Kind {
	case KindUnknown:
		return "unknown"
	case KindTinyInt:
		return "tinyint"
	case KindSmallInt:
		return "smallint"
	case KindMediumInt:
		return "mediumint"
	case KindInteger:
		return "integer"
	case KindBigInt:
		return "bigint"
	case KindNumeric:
		if t.Precision > 0 {
			return fmt.Sprintf("numeric(%d,%d)", t.Precision, t.Scale)
		}
		return "numeric"
	case KindReal:
		return "real"
	case KindDoublePrecision:
		return "double precision"
	case KindChar:
		if t.Length > 0 {
			return fmt.Sprintf("char(%d)", t.Length)
		}
		return "char"
	case KindVarchar:
		if t.Length > 0 {
			return fmt.Sprintf("varchar(%d)", t.Length)
		}
		return "varchar"
	case KindText:
		return "text"
	case KindBytea:
		return "bytea"
	case KindDate:
		return "date"
	case KindTime:
		if t.WithTimeZone {
			return "time with time zone"
		}
		return "time"
	case KindTimestamp:
		if t.WithTimeZone {
			return "timestamp with time zone"
		}
		return "timestamp"
	case KindInterval:
		return "interval"
	case KindBoolean:
		return "boolean"
	case KindUUID:
		return "uuid"
	case KindJSON:
		return "json"
	case KindJSONB:
		return "jsonb"
	case KindArray:
		if t.Elem != nil {
			return t.Elem.String() + "[]"
		}
		return "unknown[]"
	case KindCustom:
		return t.Name
	default:
		return "unknown"
	}
}

// FromName maps a raw DDL type name and its optional numeric arguments to
// a Type. Unrecognized names become a custom type so enum references
// survive. Matching is case-insensitive and tolerant of the multi-word
// aliases ("double precision", "character varying", "timestamp with
// time zone").
func FromName(name string, args ...int) Type {
	arg := func(i int) int {
		if i < len(args) {
			return args[i]
		}
		return 0
	}
	normalized := strings.ToLower(strings.Join(strings.Fields(name), " "))
	switch normalized {
	case "tinyint":
		return TinyInt
	case "smallint", "int2", "smallserial", "serial2":
		return SmallInt
	case "mediumint":
		return MediumInt
	case "int", "integer", "int4", "serial", "serial4":
		return Integer
	case "bigint", "int8", "bigserial", "serial8":
		return BigInt
	case "numeric", "decimal", "dec":
		return Numeric(arg(0), arg(1))
	case "real", "float4":
		return Real
	case "double precision", "double", "float", "float8":
		return DoublePrecision
	case "char", "character", "bpchar":
		return Char(arg(0))
	case "varchar", "character varying", "nvarchar":
		return Varchar(arg(0))
	case "text", "clob", "tinytext", "mediumtext", "longtext":
		return Text
	case "bytea", "blob", "binary", "varbinary", "tinyblob", "mediumblob", "longblob":
		return Bytea
	case "date":
		return Date
	case "time", "time without time zone":
		return Time(arg(0), false)
	case "time with time zone", "timetz":
		return Time(arg(0), true)
	case "timestamp", "timestamp without time zone", "datetime":
		return Timestamp(arg(0), false)
	case "timestamp with time zone", "timestamptz":
		return Timestamp(arg(0), true)
	case "interval":
		return Interval
	case "bool", "boolean":
		return Boolean
	case "uuid":
		return UUID
	case "json":
		return JSON
	case "jsonb":
		return JSONB
	case "":
		return Unknown
	default:
		return Custom(normalized)
	}
}
