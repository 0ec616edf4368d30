package shallow

import (
	"reflect"
	"testing"
)

func TestCopy_Map(t *testing.T) {
	src := map[string]any{"a": 1, "nested": map[string]any{"b": 2}}

	got, ok := Copy(src).(map[string]any)
	if !ok {
		t.Fatalf("expected map[string]any, got %T", got)
	}
	if !reflect.DeepEqual(got, src) {
		t.Errorf("expected equal contents, got %v", got)
	}

	// Top-level mutation of the source must not leak into the copy.
	src["a"] = 99
	if got["a"] != 1 {
		t.Errorf("expected top-level isolation, got %v", got["a"])
	}

	// One level deep only: nested structure is shared.
	src["nested"].(map[string]any)["b"] = 99
	if got["nested"].(map[string]any)["b"] != 99 {
		t.Error("expected nested structure to be shared")
	}
}

func TestCopy_Slice(t *testing.T) {
	src := []int{1, 2, 3}

	got, ok := Copy(src).([]int)
	if !ok {
		t.Fatalf("expected []int, got %T", got)
	}

	src[0] = 99
	if got[0] != 1 {
		t.Errorf("expected top-level isolation, got %v", got[0])
	}
}

func TestCopy_Passthrough(t *testing.T) {
	type payload struct{ N int }

	cases := []struct {
		name string
		in   any
	}{
		{"nil", nil},
		{"string", "hello"},
		{"int", 42},
		{"bool", true},
		{"pointer", &payload{N: 1}},
		{"nil map", map[string]any(nil)},
		{"nil slice", []int(nil)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Copy(tc.in)
			if !reflect.DeepEqual(got, tc.in) {
				t.Errorf("expected %v to pass through unchanged, got %v", tc.in, got)
			}
		})
	}
}

func TestCopy_PointerIdentityPreserved(t *testing.T) {
	type payload struct{ N int }
	p := &payload{N: 1}

	if got := Copy(p); got != any(p) {
		t.Error("expected pointer values to keep their identity")
	}
}
