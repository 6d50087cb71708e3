package introspect

import (
	"testing"

	"github.com/electwix/sqlguard/internal/catalog"
	"github.com/electwix/sqlguard/internal/sqltype"
)

func intPtr(v int) *int { return &v }

func strPtr(s string) *string { return &s }

func TestColumnType(t *testing.T) {
	tests := []struct {
		name     string
		dataType string
		udtName  string
		charLen  *int
		prec     *int
		scale    *int
		want     sqltype.Type
	}{
		{"integer", "integer", "int4", nil, nil, nil, sqltype.Integer},
		{"varchar with length", "character varying", "varchar", intPtr(255), nil, nil, sqltype.Varchar(255)},
		{"varchar unbounded", "character varying", "varchar", nil, nil, nil, sqltype.Varchar(0)},
		{"numeric", "numeric", "numeric", nil, intPtr(10), intPtr(2), sqltype.Numeric(10, 2)},
		{"timestamptz", "timestamp with time zone", "timestamptz", nil, nil, nil, sqltype.Timestamp(0, true)},
		{"text array", "ARRAY", "_text", nil, nil, nil, sqltype.Array(sqltype.Text)},
		{"enum", "USER-DEFINED", "order_status", nil, nil, nil, sqltype.Custom("order_status")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := columnType(tt.dataType, tt.udtName, tt.charLen, tt.prec, tt.scale)
			if got.String() != tt.want.String() {
				t.Errorf("columnType(%q, %q) = %s, want %s", tt.dataType, tt.udtName, got, tt.want)
			}
		})
	}
}

func TestClassifyDefault(t *testing.T) {
	tests := []struct {
		name string
		raw  *string
		want catalog.DefaultKind
	}{
		{"no default", nil, catalog.DefaultNone},
		{"null", strPtr("NULL"), catalog.DefaultNull},
		{"sequence", strPtr("nextval('users_id_seq'::regclass)"), catalog.DefaultSequence},
		{"now", strPtr("now()"), catalog.DefaultCurrentTimestamp},
		{"current timestamp", strPtr("CURRENT_TIMESTAMP"), catalog.DefaultCurrentTimestamp},
		{"expression", strPtr("lower(email)"), catalog.DefaultExpression},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyDefault(tt.raw)
			if tt.want == catalog.DefaultNone {
				if got != nil {
					t.Fatalf("classifyDefault(nil) = %+v, want nil", got)
				}
				return
			}
			if got == nil || got.Kind != tt.want {
				t.Errorf("classifyDefault(%v) = %+v, want kind %v", *tt.raw, got, tt.want)
			}
		})
	}
}
