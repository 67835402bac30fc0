package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "integer", in: "12", want: "12"},
		{name: "fraction", in: "0.25", want: "0.25"},
		{name: "rounded", in: "1.23456", want: "1.2346"},
		{name: "padded", in: "  7.5 ", want: "7.5"},
		{name: "negative", in: "-3", want: "-3"},
		{name: "empty", in: "", wantErr: true},
		{name: "exponent", in: "1e3", wantErr: true},
		{name: "garbage", in: "ten", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseQuantity(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %s", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseQuantity(%q): %v", tt.in, err)
			}
			if got.String() != tt.want {
				t.Errorf("ParseQuantity(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestMustQuantity_Panics(t *testing.T) {
	assert.Panics(t, func() { MustQuantity("nope") })
	require.Equal(t, "2.5", MustQuantity("2.50").String())
}
