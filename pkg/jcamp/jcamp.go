// Package jcamp parses the JCAMP-DX-like parameter files written by Bruker
// ParaVision scanners (acqp, method, visu_pars, reco, subject). The format is
// line oriented: a record line looks like ##KEY=VALUE or ##$KEY=VALUE, and
// any lines up to the next record are the record's payload. Payloads encode
// scalars, flat and nested arrays, run-length compressed repeats, tagged
// string arrays and "complex" nested-parenthesis structures.
//
// The decoder is deliberately permissive: legacy ParaVision releases emit
// slightly different shapes of the same grammar, so malformed array text is
// decoded best-effort rather than rejected.
package jcamp

import (
	"errors"
	"regexp"
	"strings"
)

// Kind distinguishes the two record classes of the grammar.
type Kind int

const (
	// Header records use the ##KEY=VALUE form and carry file-level
	// bookkeeping such as TITLE or JCAMPDX.
	Header Kind = iota

	// Parameter records use the ##$KEY=VALUE form and carry the actual
	// acquisition and reconstruction parameters.
	Parameter
)

var (
	// ErrDecode reports an internal inconsistency in the decoder. It should
	// be unreachable for input produced by the record scanner.
	ErrDecode = errors.New("jcamp: decode fault")

	// ErrNotFound reports a missing key on the checked accessor.
	ErrNotFound = errors.New("jcamp: parameter not found")
)

var (
	recordPattern  = regexp.MustCompile(`^##(.*)=(.*)$`)
	commentPattern = regexp.MustCompile(`^\$\$.*`)
)

// Record is one matched record line. Raw holds the inline value text exactly
// as it appeared after the '='; the multi-line payload (if any) is resolved
// later from the line addresses.
type Record struct {
	Kind Kind
	Key  string
	Raw  string
	Line int
}

// File is the raw scan result of one parameter file: the matched records in
// source order plus the full line list for payload and diagnostic access.
type File struct {
	Records []Record
	Lines   []string
}

// Scan splits the given lines into header and parameter records. Lines that
// match neither the record nor the comment pattern are payload continuation
// lines and are left in place; Payload resolves them per record.
func Scan(lines []string) *File {
	f := &File{Lines: lines}
	for i, line := range lines {
		m := recordPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		key, value := m[1], m[2]
		rec := Record{Kind: Header, Key: key, Raw: value, Line: i}
		if strings.HasPrefix(key, "$") {
			rec.Kind = Parameter
			rec.Key = key[1:]
		}
		f.Records = append(f.Records, rec)
	}
	return f
}

// Payload returns the concatenated continuation lines of the i-th record:
// every line strictly between the record and the next one, stripped, with
// $$ comment lines excluded, joined by single spaces. An empty string means
// the record's inline value is the whole payload.
func (f *File) Payload(i int) string {
	start := f.Records[i].Line + 1
	end := len(f.Lines)
	if i+1 < len(f.Records) {
		end = f.Records[i+1].Line
	}
	var parts []string
	for _, line := range f.Lines[start:end] {
		if commentPattern.MatchString(line) {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " ")
}
