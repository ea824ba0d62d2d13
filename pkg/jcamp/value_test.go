package jcamp

import (
	"reflect"
	"testing"
)

// TestConvertString checks the scalar conversion rules: angle brackets
// strip, decimal and exponential tokens become floats, bare integers become
// ints, anything else stays a string.
func TestConvertString(t *testing.T) {
	cases := []struct {
		in   string
		want any
	}{
		{"", nil},
		{"   ", nil},
		{"<>", nil},
		{"<Bruker:RARE>", "Bruker:RARE"},
		{"1.5", 1.5},
		{"-0.25", -0.25},
		{"4.2e-3", 0.0042},
		{"1E+2", 100.0},
		{"-12", -12},
		{"0", 0},
		{"RARE", "RARE"},
		{"1.2.3", "1.2.3"},
	}
	for _, c := range cases {
		if got := convertString(c.in); !reflect.DeepEqual(got, c.want) {
			t.Errorf("convertString(%q) = %v (%T), want %v (%T)", c.in, got, got, c.want, c.want)
		}
	}
}

// TestRunLengthExpansion verifies that @N*(V) decodes identically to the
// literal repeated sequence, alone and inside a surrounding array.
func TestRunLengthExpansion(t *testing.T) {
	compact := decodeBlock("@3*(0.5)", nil)
	literal := decodeBlock("0.5 0.5 0.5", nil)
	if !reflect.DeepEqual(compact, literal) {
		t.Errorf("Run-length decode %v differs from literal %v", compact, literal)
	}

	mixed := decodeBlock("1.5 @2*(0.5) 2.5", nil)
	want := decodeBlock("1.5 0.5 0.5 2.5", nil)
	if !reflect.DeepEqual(mixed, want) {
		t.Errorf("Embedded run-length decode %v differs from literal %v", mixed, want)
	}
}

// TestShapeRoundTrip reshapes a flat numeric payload under a declared shape
// and checks that flattening in the same column-major order reproduces the
// original token sequence.
func TestShapeRoundTrip(t *testing.T) {
	p, err := NewParameters([]string{
		"##TITLE=x",
		"##$Arr=( 2, 3 )",
		"1 2 3 4 5 6",
	}, "test", 0, 0)
	if err != nil {
		t.Fatalf("NewParameters failed: %v", err)
	}

	arr, ok := p.Get("Arr").([]any)
	if !ok {
		t.Fatalf("Expected nested array, got %T", p.Get("Arr"))
	}
	if len(arr) != 2 {
		t.Fatalf("Expected leading dimension 2, got %d", len(arr))
	}
	for _, row := range arr {
		if len(row.([]any)) != 3 {
			t.Fatalf("Expected trailing dimension 3, got %d", len(row.([]any)))
		}
	}

	// Column-major flatten: first index varies fastest.
	var flat []any
	for j := 0; j < 3; j++ {
		for i := 0; i < 2; i++ {
			flat = append(flat, arr[i].([]any)[j])
		}
	}
	want := []any{1, 2, 3, 4, 5, 6}
	if !reflect.DeepEqual(flat, want) {
		t.Errorf("Column-major flatten = %v, want %v", flat, want)
	}
}

// TestShapeSkippedForStrings verifies that payloads holding strings or
// nulls are never reshaped.
func TestShapeSkippedForStrings(t *testing.T) {
	p, err := NewParameters([]string{
		"##TITLE=x",
		"##$Units=( 2 )",
		"<mm> <mm>",
	}, "test", 0, 0)
	if err != nil {
		t.Fatalf("NewParameters failed: %v", err)
	}
	want := []any{"mm", "mm"}
	if got := p.Get("Units"); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected string list %v, got %v", want, got)
	}
}

// TestBisStrings covers the vendor tagged-string array: a single element
// collapses to a bare scalar, multiple elements form a list, and a matching
// declared shape splits each element on commas.
func TestBisStrings(t *testing.T) {
	if got := decodeBlock("<$Bis,1,0,0#7#>", nil); got != 7 {
		t.Errorf("Single BIS element should collapse to a scalar, got %v (%T)", got, got)
	}

	got := decodeBlock("<$Bis#a#> <$Bis#b#>", nil)
	want := []any{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected BIS list %v, got %v", want, got)
	}

	split := decodeBlock("<$Bis#1,2#> <$Bis#3,4#>", []int{2, 2})
	wantSplit := []any{[]any{1, 2}, []any{3, 4}}
	if !reflect.DeepEqual(split, wantSplit) {
		t.Errorf("Expected shape-matched BIS split %v, got %v", wantSplit, split)
	}
}

// TestComplexArray checks the nested-parenthesis decode: innermost groups
// collect under level_1, the stripped remainder under deeper levels.
func TestComplexArray(t *testing.T) {
	got, ok := decodeBlock("((1, 2) (3, 4))", nil).(map[string][]any)
	if !ok {
		t.Fatalf("Expected a complex array map")
	}
	wantLevel1 := []any{[]any{1, 2}, []any{3, 4}}
	if !reflect.DeepEqual(got["level_1"], wantLevel1) {
		t.Errorf("level_1 = %v, want %v", got["level_1"], wantLevel1)
	}
	if len(got["level_2"]) != 1 {
		t.Errorf("Expected one level_2 group, got %v", got["level_2"])
	}
}

// TestGroupDecoding covers flat parenthesized groups with and without
// comma-separated rows.
func TestGroupDecoding(t *testing.T) {
	flat := decodeBlock("(1) (2) (3)", nil)
	if !reflect.DeepEqual(flat, []any{1, 2, 3}) {
		t.Errorf("Expected flat group list [1 2 3], got %v", flat)
	}

	nested := decodeBlock("(1, 2) (3, 4)", nil)
	want := []any{[]any{1, 2}, []any{3, 4}}
	if !reflect.DeepEqual(nested, want) {
		t.Errorf("Expected row list %v, got %v", want, nested)
	}
}

// TestDelimiterFallback covers blocks without parentheses: comma split,
// whitespace split, or the raw string when no delimiter exists.
func TestDelimiterFallback(t *testing.T) {
	commas := decodeBlock("1, 2, 3", nil)
	if !reflect.DeepEqual(commas, []any{1, 2, 3}) {
		t.Errorf("Comma split = %v", commas)
	}

	spaces := decodeBlock("1 2 3", nil)
	if !reflect.DeepEqual(spaces, []any{1, 2, 3}) {
		t.Errorf("Whitespace split = %v", spaces)
	}

	if got := decodeBlock("9", nil); got != "9" {
		t.Errorf("Single token should stay an unconverted string, got %v (%T)", got, got)
	}
}

// TestAngleStringBlocks covers whole-block angle-bracket strings: one
// unwraps to a plain string, several form a list even when the contents
// hold spaces.
func TestAngleStringBlocks(t *testing.T) {
	if got := decodeBlock("<Parameter List>", nil); got != "Parameter List" {
		t.Errorf("Expected unwrapped string, got %v", got)
	}
	got := decodeBlock("<one two> <three>", nil)
	want := []any{"one two", "three"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected string list %v, got %v", want, got)
	}
}

// TestMalformedBestEffort verifies the permissive policy: unbalanced
// brackets decode to something rather than failing.
func TestMalformedBestEffort(t *testing.T) {
	if _, err := NewParameters([]string{
		"##TITLE=x",
		"##$Broken=( 3 )",
		"(1, 2 3",
	}, "test", 0, 0); err != nil {
		t.Errorf("Malformed payload should not fail construction: %v", err)
	}
}
