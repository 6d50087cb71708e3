package sqltype

// Compat classifies how a value of one type can become another.
type Compat int

const (
	// Exact means the types are identical.
	Exact Compat = iota
	// ImplicitCast means the engine widens the value automatically.
	ImplicitCast
	// ExplicitCast means the conversion needs a CAST expression.
	ExplicitCast
)

// String returns the string representation of the compatibility level.
func (c Compat) String() string {
	switch c {
	case Exact:
		return "exact"
	case ImplicitCast:
		return "implicit"
	case ExplicitCast:
		return "explicit"
	default:
		return "unknown"
	}
}

// integer chain rank, used for widening direction checks.
func integerRank(k Kind) int {
	switch k {
	case KindTinyInt:
		return 1
	case KindSmallInt:
		return 2
	case KindMediumInt:
		return 3
	case KindInteger:
		return 4
	case KindBigInt:
		return 5
	default:
		return 0
	}
}

// Compatibility reports how a value of type from converts to type to.
// Unknown converts implicitly in either direction so missing inference
// never produces a finding.
func Compatibility(from, to Type) Compat {
	if from == to {
		return Exact
	}
	if from.IsUnknown() || to.IsUnknown() {
		return ImplicitCast
	}

	// Same family with different parameters widens implicitly,
	// e.g. varchar(10) -> varchar(255), numeric(6,2) -> numeric(10,4).
	if from.Kind == to.Kind && from.Kind != KindArray && from.Kind != KindCustom {
		return ImplicitCast
	}

	switch {
	case from.IsInteger() && to.IsInteger():
		if integerRank(from.Kind) < integerRank(to.Kind) {
			return ImplicitCast
		}
		return ExplicitCast
	case from.IsInteger() && (to.Kind == KindReal || to.Kind == KindDoublePrecision || to.Kind == KindNumeric):
		return ImplicitCast
	case from.Kind == KindReal && to.Kind == KindDoublePrecision:
		return ImplicitCast
	case from.Kind == KindNumeric && (to.Kind == KindReal || to.Kind == KindDoublePrecision):
		return ImplicitCast
	case from.Kind == KindChar && (to.Kind == KindVarchar || to.Kind == KindText):
		return ImplicitCast
	case from.Kind == KindVarchar && to.Kind == KindText:
		return ImplicitCast
	case from.Kind == KindJSON && to.Kind == KindJSONB:
		return ImplicitCast
	case from.Kind == KindArray && to.Kind == KindArray:
		if from.Elem != nil && to.Elem != nil {
			return Compatibility(*from.Elem, *to.Elem)
		}
		return ImplicitCast
	case from.Kind == KindCustom && to.Kind == KindCustom && from.Name == to.Name:
		return Exact
	}
	return ExplicitCast
}

// Comparable reports whether two types can appear on the sides of a
// comparison operator. A pair is comparable when either conversion
// direction is better than an explicit cast.
func Comparable(left, right Type) bool {
	return Compatibility(left, right) != ExplicitCast ||
		Compatibility(right, left) != ExplicitCast
}
