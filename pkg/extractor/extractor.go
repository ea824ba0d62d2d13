// Package extractor derives cohesive info blocks from parsed ParaVision
// parameter tables. Each extractor reads named keys from the acqp, method
// and visu_pars tables, computes its block eagerly, and records non-fatal
// issues in the block's Warns list. Missing optional inputs degrade to
// defaults with a warning; structurally unsupported geometry fails with
// ErrUnsupported, because guessing spatial semantics is worse than stopping.
package extractor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"brkraw/pkg/jcamp"
)

// ErrUnsupported reports metadata this implementation refuses to interpret:
// unexpected orientation cardinality, unknown subject pose or type codes,
// dimensionality outside 2-D/3-D, unrecognized element type codes.
var ErrUnsupported = errors.New("extractor: unsupported configuration")

// Pars bundles the parameter tables one scan exposes. Any table may be nil;
// extractors warn and substitute defaults for the fields they cannot read.
type Pars struct {
	Acqp     *jcamp.Parameters
	Method   *jcamp.Parameters
	VisuPars *jcamp.Parameters
}

// warn appends to the block's warning list and surfaces the message as a
// non-fatal notice.
func warn(warns *[]string, name, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	*warns = append(*warns, msg)
	log.WithField("extractor", name).Warn(msg)
}

// Schema selects the slice-pack and orientation decode strategy once per
// scan, instead of re-testing the version number in every function.
type Schema int

const (
	// SchemaLegacy covers visu version 1 (ParaVision 5 and earlier).
	SchemaLegacy Schema = iota

	// SchemaModern covers visu versions 3, 4 and 5 (ParaVision 6 to 360).
	SchemaModern
)

// schemaOf resolves the visu schema version. Versions outside {1,3,4,5} are
// untested; they decode with the modern strategy under a warning.
func schemaOf(visu *jcamp.Parameters, warns *[]string, name string) Schema {
	version := 1
	if visu != nil {
		if v, ok := toInt(visu.Get("VisuVersion")); ok {
			version = v
		}
	}
	switch version {
	case 1:
		return SchemaLegacy
	case 3, 4, 5:
		return SchemaModern
	}
	warn(warns, name, "untested visu version %d, decoding as modern schema", version)
	return SchemaModern
}

// Coercion helpers. The grammar leaves single-token payload blocks as raw
// strings, so numeric readers accept numeric-looking strings too.

func toInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(x)); err == nil {
			return n, true
		}
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case float64:
		return x, true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func toString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// toFloats flattens a value into a float slice: scalars become one-element
// slices, nested lists flatten depth-first. Non-numeric elements are
// skipped.
func toFloats(v any) []float64 {
	var out []float64
	var visit func(any)
	visit = func(e any) {
		switch x := e.(type) {
		case []any:
			for _, sub := range x {
				visit(sub)
			}
		default:
			if f, ok := toFloat(x); ok {
				out = append(out, f)
			}
		}
	}
	visit(v)
	return out
}

func toInts(v any) []int {
	fs := toFloats(v)
	out := make([]int, len(fs))
	for i, f := range fs {
		out[i] = int(f)
	}
	return out
}

// toStrings flattens a value into its string elements.
func toStrings(v any) []string {
	var out []string
	var visit func(any)
	visit = func(e any) {
		switch x := e.(type) {
		case []any:
			for _, sub := range x {
				visit(sub)
			}
		case string:
			out = append(out, x)
		}
	}
	visit(v)
	return out
}

// rows returns the top-level list elements of a nested array value, or nil.
func rows(v any) [][]any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([][]any, 0, len(list))
	for _, e := range list {
		if row, ok := e.([]any); ok {
			out = append(out, row)
		} else {
			out = append(out, []any{e})
		}
	}
	return out
}

// uniformFloats reports whether every element equals the first.
func uniformFloats(fs []float64) bool {
	for _, f := range fs[1:] {
		if f != fs[0] {
			return false
		}
	}
	return true
}

func get(p *jcamp.Parameters, key string) any {
	if p == nil {
		return nil
	}
	return p.Get(key)
}
