// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// Tests for observed route value normalization.

package selection

import "testing"

func TestStringValues(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string passes through", "Home", "Home"},
		{"nil becomes empty", nil, ""},
		{"bool", true, "true"},
		{"int", 42, "42"},
		{"json integer as float64", float64(1), "1"},
		{"negative json integer", float64(-7), "-7"},
		{"fractional float", 1.5, "1.5"},
		{"int64", int64(9000000000), "9000000000"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := StringValues(map[string]any{"k": tc.in})
			if got["k"] != tc.want {
				t.Errorf("StringValues(%v) = %q, want %q", tc.in, got["k"], tc.want)
			}
		})
	}
}

func TestStringValues_KeysPreserved(t *testing.T) {
	got := StringValues(map[string]any{"Controller": "Home", "id": float64(2)})
	if len(got) != 2 || got["Controller"] != "Home" || got["id"] != "2" {
		t.Errorf("StringValues = %v", got)
	}
}
