package sqltype

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFromName(t *testing.T) {
	cases := []struct {
		name string
		args []int
		want Type
	}{
		{name: "integer", want: Integer},
		{name: "INT4", want: Integer},
		{name: "serial", want: Integer},
		{name: "bigserial", want: BigInt},
		{name: "smallserial", want: SmallInt},
		{name: "mediumint", want: MediumInt},
		{name: "numeric", args: []int{10, 2}, want: Numeric(10, 2)},
		{name: "decimal", want: Numeric(0, 0)},
		{name: "double precision", want: DoublePrecision},
		{name: "float8", want: DoublePrecision},
		{name: "character varying", args: []int{255}, want: Varchar(255)},
		{name: "varchar", args: []int{40}, want: Varchar(40)},
		{name: "char", args: []int{2}, want: Char(2)},
		{name: "timestamptz", want: Timestamp(0, true)},
		{name: "timestamp with time zone", want: Timestamp(0, true)},
		{name: "timestamp", want: Timestamp(0, false)},
		{name: "timetz", want: Time(0, true)},
		{name: "bool", want: Boolean},
		{name: "uuid", want: UUID},
		{name: "jsonb", want: JSONB},
		{name: "order_status", want: Custom("order_status")},
	}

	for _, tc := range cases {
		got := FromName(tc.name, tc.args...)
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("FromName(%q, %v) mismatch (-want +got):\n%s", tc.name, tc.args, diff)
		}
	}
}

func TestString(t *testing.T) {
	cases := []struct {
		typ  Type
		want string
	}{
		{Integer, "integer"},
		{MediumInt, "mediumint"},
		{DoublePrecision, "double precision"},
		{Numeric(10, 2), "numeric(10,2)"},
		{Numeric(0, 0), "numeric"},
		{Varchar(255), "varchar(255)"},
		{Varchar(0), "varchar"},
		{Timestamp(0, true), "timestamp with time zone"},
		{Time(0, false), "time"},
		{Array(Text), "text[]"},
		{Array(Integer), "integer[]"},
		{Custom("mood"), "mood"},
		{Unknown, "unknown"},
	}

	for _, tc := range cases {
		if got := tc.typ.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestCompatibility(t *testing.T) {
	cases := []struct {
		name     string
		from, to Type
		want     Compat
	}{
		{"identical", Integer, Integer, Exact},
		{"int widens to bigint", Integer, BigInt, ImplicitCast},
		{"bigint narrows to int", BigInt, Integer, ExplicitCast},
		{"smallint widens to mediumint", SmallInt, MediumInt, ImplicitCast},
		{"mediumint widens to int", MediumInt, Integer, ImplicitCast},
		{"int narrows to mediumint", Integer, MediumInt, ExplicitCast},
		{"smallint widens to real", SmallInt, Real, ImplicitCast},
		{"int widens to numeric", Integer, Numeric(10, 2), ImplicitCast},
		{"real widens to double", Real, DoublePrecision, ImplicitCast},
		{"numeric to double", Numeric(10, 2), DoublePrecision, ImplicitCast},
		{"char widens to text", Char(2), Text, ImplicitCast},
		{"varchar widens to text", Varchar(40), Text, ImplicitCast},
		{"text narrows to varchar", Text, Varchar(40), ExplicitCast},
		{"varchar lengths differ", Varchar(10), Varchar(255), ImplicitCast},
		{"json to jsonb", JSON, JSONB, ImplicitCast},
		{"jsonb to json", JSONB, JSON, ExplicitCast},
		{"unknown anywhere", Unknown, Boolean, ImplicitCast},
		{"text vs integer", Text, Integer, ExplicitCast},
		{"uuid vs text", UUID, Text, ExplicitCast},
		{"array element rules", Array(Integer), Array(BigInt), ImplicitCast},
		{"array same element", Array(Text), Array(Text), Exact},
		{"same enum", Custom("mood"), Custom("mood"), Exact},
		{"different enums", Custom("mood"), Custom("status"), ExplicitCast},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Compatibility(tc.from, tc.to); got != tc.want {
				t.Errorf("Compatibility(%s, %s) = %s, want %s", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestComparable(t *testing.T) {
	if !Comparable(Integer, BigInt) {
		t.Error("integer and bigint should be comparable")
	}
	if !Comparable(BigInt, Integer) {
		t.Error("comparability must hold in both operand orders")
	}
	if Comparable(Text, Integer) {
		t.Error("text and integer should not be comparable")
	}
	if !Comparable(Unknown, Integer) {
		t.Error("unknown compares with everything")
	}
}
