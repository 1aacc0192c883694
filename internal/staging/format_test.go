package staging

import (
	"sort"
	"testing"

	"pgregory.net/rapid"
)

func TestSplitHeaderOrdering(t *testing.T) {
	header := map[string]any{
		"exptime":  30.0, // lowercase still matches the allow-list
		"OBJECT":   "TrES-1b",
		"SIMPLE":   true,
		"ZWOBIAS":  8,
		"COMMENT":  "calibrated",
		"NAXIS":    2,
		"BSCALE":   1.0,
	}

	primary, optional := SplitHeader(header)

	gotPrimary := make([]string, len(primary))
	for i, e := range primary {
		gotPrimary[i] = e.Key
	}
	// Canonical allow-list order, not map order.
	wantPrimary := []string{"SIMPLE", "NAXIS", "OBJECT", "exptime"}
	if len(gotPrimary) != len(wantPrimary) {
		t.Fatalf("primary keys: want %v, got %v", wantPrimary, gotPrimary)
	}
	for i := range wantPrimary {
		if gotPrimary[i] != wantPrimary[i] {
			t.Fatalf("primary keys: want %v, got %v", wantPrimary, gotPrimary)
		}
	}

	gotOptional := make([]string, len(optional))
	for i, e := range optional {
		gotOptional[i] = e.Key
	}
	if !sort.StringsAreSorted(gotOptional) {
		t.Errorf("optional keys not alphabetical: %v", gotOptional)
	}
	if len(gotOptional) != 3 {
		t.Errorf("optional keys: want 3, got %v", gotOptional)
	}
}

// Every header key lands in exactly one of the two buckets.
func TestSplitHeaderPartition(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		keys := rapid.SliceOfNDistinct(
			rapid.StringMatching(`[A-Za-z][A-Za-z0-9-]{0,7}`),
			0, 20, func(s string) string { return s },
		).Draw(t, "keys")

		header := make(map[string]any, len(keys))
		for i, k := range keys {
			header[k] = i
		}

		primary, optional := SplitHeader(header)
		if len(primary)+len(optional) != len(header) {
			t.Fatalf("partition lost keys: %d + %d != %d", len(primary), len(optional), len(header))
		}
		seen := make(map[string]bool)
		for _, e := range append(primary, optional...) {
			if seen[e.Key] {
				t.Fatalf("key %q appeared twice", e.Key)
			}
			seen[e.Key] = true
			if _, ok := header[e.Key]; !ok {
				t.Fatalf("key %q not in the input header", e.Key)
			}
		}
	})
}

func TestFormatHeaderValue(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, "—"},
		{"empty string", "", "—"},
		{"string", "TrES-1b", "TrES-1b"},
		{"bool", true, "true"},
		{"float", 30.5, "30.5"},
		{"int", 16, "16"},
		{"array", []any{1.0, 2.0}, "[1,2]"},
		{"object", map[string]any{"a": 1.0}, `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatHeaderValue(tt.value); got != tt.want {
				t.Errorf("FormatHeaderValue(%v): want %q, got %q", tt.value, tt.want, got)
			}
		})
	}
}

func TestFormatSizeKB(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 KB"},
		{1024, "1 KB"},
		{1536, "2 KB"}, // rounds, not truncates
		{145408, "142 KB"},
	}
	for _, tt := range tests {
		if got := FormatSizeKB(tt.bytes); got != tt.want {
			t.Errorf("FormatSizeKB(%d): want %q, got %q", tt.bytes, tt.want, got)
		}
	}
}
