package jcamp

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Decoded values are plain Go values:
//
//	nil                      empty value
//	int, float64, string     scalars
//	[]any                    flat or nested arrays
//	map[string][]any         complex arrays, keyed level_1, level_2, ...
//
// Numeric arrays with a declared shape are reshaped into nested []any with
// column-major element ordering; downstream volume handling depends on that
// ordering convention.

var (
	floatPattern = regexp.MustCompile(`^-?\d+\.\d+$`)
	expPattern   = regexp.MustCompile(`^-?\d*\.?\d+[eE][-+]?\d+$`)
	intPattern   = regexp.MustCompile(`^-?\d+$`)

	bisPattern    = regexp.MustCompile(`<\$Bis[^#>]*#([^#>]*)#[^>]*>`)
	repeatPattern = regexp.MustCompile(`@(\d+)\*\(([^()]*)\)`)
	groupPattern  = regexp.MustCompile(`\(([^()]*)\)`)
	nestedPattern = regexp.MustCompile(`^\(\s*\(`)
	stringPattern = regexp.MustCompile(`<([^<>]*)>`)
)

// convertString converts one scalar token. Angle-bracket wrapping is
// stripped first; after that an empty token is nil, a decimal or exponential
// token is a float64, a bare integer token is an int and anything else stays
// a string.
func convertString(s string) any {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">") {
		s = s[1 : len(s)-1]
	}
	switch {
	case s == "":
		return nil
	case floatPattern.MatchString(s) || expPattern.MatchString(s):
		v, _ := strconv.ParseFloat(s, 64)
		return v
	case intPattern.MatchString(s):
		v, _ := strconv.Atoi(s)
		return v
	}
	return s
}

// parseShape interprets a record's inline value as a shape annotation: a
// parenthesized comma-separated list of sizes, e.g. "(3, 4)". A bare -1 or
// anything else yields nil, meaning no declared shape.
func parseShape(raw string) []int {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "(") || !strings.HasSuffix(raw, ")") {
		return nil
	}
	var shape []int
	for _, tok := range strings.Split(raw[1:len(raw)-1], ",") {
		switch v := convertString(tok).(type) {
		case int:
			shape = append(shape, v)
		case float64:
			shape = append(shape, int(v))
		default:
			return nil
		}
	}
	return shape
}

// decodeBlock converts a concatenated payload block into a value, applying
// the declared shape when the result is a flat numeric list. Malformed text
// never fails; the closest decodable interpretation wins.
func decodeBlock(block string, shape []int) any {
	if bis := bisPattern.FindAllStringSubmatch(block, -1); bis != nil {
		return decodeBis(bis, shape)
	}
	data := decodeData(block)
	return applyShape(data, shape)
}

// decodeData runs the sub-grammar dispatch in priority order: run-length
// normalization, complex arrays, plain strings, then general array or
// scalar splitting. BIS string arrays are handled before this point.
func decodeData(block string) any {
	// @N*(V) means V repeated N times; expand before any array handling.
	block = repeatPattern.ReplaceAllStringFunc(block, func(tok string) string {
		m := repeatPattern.FindStringSubmatch(tok)
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			return m[2]
		}
		reps := make([]string, n)
		for i := range reps {
			reps[i] = m[2]
		}
		return strings.Join(reps, " ")
	})

	if nestedPattern.MatchString(strings.TrimSpace(block)) {
		return decodeComplex(block)
	}

	trimmed := strings.TrimSpace(block)
	if strings.HasPrefix(trimmed, "<") && strings.HasSuffix(trimmed, ">") {
		if ss := stringPattern.FindAllStringSubmatch(trimmed, -1); ss != nil {
			if len(ss) == 1 {
				return ss[0][1]
			}
			out := make([]any, len(ss))
			for i, s := range ss {
				out[i] = s[1]
			}
			return out
		}
	}

	if groups := groupPattern.FindAllStringSubmatch(block, -1); groups != nil {
		return decodeGroups(groups)
	}

	switch {
	case strings.Contains(block, ","):
		return convertEach(strings.Split(block, ","))
	case strings.ContainsAny(block, " \t"):
		return convertEach(strings.Fields(block))
	}
	return block
}

// decodeBis decodes vendor <$Bis...#> tagged string arrays. A single element
// collapses to a bare scalar. BIS elements are themselves comma-joined
// sub-lists: when the declared shape names as many rows as there are
// elements, each element splits on commas into one row.
func decodeBis(matches [][]string, shape []int) any {
	if len(matches) == 1 {
		return convertString(matches[0][1])
	}
	out := make([]any, len(matches))
	if len(shape) > 0 && shape[0] == len(matches) {
		for i, m := range matches {
			out[i] = convertEach(strings.Split(m[1], ","))
		}
		return out
	}
	for i, m := range matches {
		out[i] = convertString(m[1])
	}
	return out
}

// decodeComplex decodes a nested-parenthesis structure. Innermost groups are
// decoded and stripped level by level; each level's groups are collected
// under level_1, level_2, ... in the order encountered.
func decodeComplex(block string) map[string][]any {
	out := make(map[string][]any)
	level := 0
	for groupPattern.MatchString(block) {
		level++
		key := fmt.Sprintf("level_%d", level)
		for _, g := range groupPattern.FindAllStringSubmatch(block, -1) {
			var items []any
			for _, tok := range strings.Split(g[1], ",") {
				if v := convertString(tok); v != nil {
					items = append(items, v)
				}
			}
			out[key] = append(out[key], items)
		}
		block = groupPattern.ReplaceAllString(block, "")
	}
	return out
}

// decodeGroups decodes a block of flat parenthesized groups. Each group is
// one row: if any row carries commas every row splits into a sub-list,
// otherwise each group converts to one element of a flat list.
func decodeGroups(groups [][]string) any {
	withComma := false
	for _, g := range groups {
		if strings.Contains(g[1], ",") {
			withComma = true
			break
		}
	}
	out := make([]any, len(groups))
	for i, g := range groups {
		if withComma {
			out[i] = convertEach(strings.Split(g[1], ","))
		} else {
			out[i] = convertString(g[1])
		}
	}
	return out
}

func convertEach(tokens []string) []any {
	out := make([]any, len(tokens))
	for i, tok := range tokens {
		out[i] = convertString(tok)
	}
	return out
}

// applyShape reshapes a flat all-numeric list into a rectangular nested
// array matching the declared shape, using column-major element ordering.
// Lists holding strings or nils, shape mismatches, and non-list values pass
// through untouched.
func applyShape(data any, shape []int) any {
	list, ok := data.([]any)
	if !ok || len(shape) == 0 {
		return data
	}

	n := 1
	for _, s := range shape {
		if s < 1 {
			return data
		}
		n *= s
	}
	if n != len(list) || !allNumeric(list) {
		return data
	}
	return reshape(list, shape)
}

// reshape builds the nested array recursively. Column-major order: the first
// index varies fastest, so fixing the leading index i selects every
// shape[0]-th element starting at i.
func reshape(flat []any, shape []int) []any {
	if len(shape) == 1 {
		return flat
	}
	stride := shape[0]
	out := make([]any, stride)
	for i := 0; i < stride; i++ {
		sub := make([]any, 0, len(flat)/stride)
		for j := i; j < len(flat); j += stride {
			sub = append(sub, flat[j])
		}
		out[i] = reshape(sub, shape[1:])
	}
	return out
}

func allNumeric(list []any) bool {
	for _, e := range list {
		switch e.(type) {
		case int, float64:
		default:
			return false
		}
	}
	return len(list) > 0
}

