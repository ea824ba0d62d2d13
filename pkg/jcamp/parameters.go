package jcamp

import "fmt"

// Parameters is the decoded view of one parameter file: an ordered header
// mapping, an ordered parameter mapping with fully decoded values, and the
// raw line list for diagnostics. It is immutable once constructed.
//
// Well-formed files never repeat a key; if one does, the last occurrence
// wins by map insertion. That is observed behavior, not a guarantee.
type Parameters struct {
	// Name identifies the file role: acqp, method, visu_pars, reco, subject.
	Name string

	// ScanID and RecoID label diagnostics only; zero means unknown.
	ScanID int
	RecoID int

	headers    map[string]string
	headerKeys []string
	params     map[string]any
	paramKeys  []string
	lines      []string
}

// NewParameters scans and decodes the given file content. Name and the
// identifiers are carried for diagnostics. Construction never fails on
// malformed payload text; an ErrDecode return indicates a record kind the
// scanner cannot produce.
func NewParameters(lines []string, name string, scanID, recoID int) (*Parameters, error) {
	p := &Parameters{
		Name:    name,
		ScanID:  scanID,
		RecoID:  recoID,
		headers: make(map[string]string),
		params:  make(map[string]any),
		lines:   lines,
	}
	f := Scan(lines)
	for i, rec := range f.Records {
		switch rec.Kind {
		case Header:
			if _, seen := p.headers[rec.Key]; !seen {
				p.headerKeys = append(p.headerKeys, rec.Key)
			}
			p.headers[rec.Key] = rec.Raw
		case Parameter:
			var value any
			if payload := f.Payload(i); payload != "" {
				value = decodeBlock(payload, parseShape(rec.Raw))
			} else {
				value = convertString(rec.Raw)
			}
			if _, seen := p.params[rec.Key]; !seen {
				p.paramKeys = append(p.paramKeys, rec.Key)
			}
			p.params[rec.Key] = value
		default:
			return nil, fmt.Errorf("%w: record %q has kind %d", ErrDecode, rec.Key, rec.Kind)
		}
	}
	return p, nil
}

// Get returns the decoded value for key, or nil when the key is absent.
// Callers that distinguish "absent" from "present but empty" use MustGet.
func (p *Parameters) Get(key string) any {
	return p.params[key]
}

// MustGet returns the decoded value for key or ErrNotFound. It is meant for
// call sites that have already established the key should exist.
func (p *Parameters) MustGet(key string) (any, error) {
	v, ok := p.params[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q in %s", ErrNotFound, key, p.Name)
	}
	return v, nil
}

// Header returns the raw header value for key, or the empty string.
func (p *Parameters) Header(key string) string {
	return p.headers[key]
}

// Keys returns the parameter keys in source order.
func (p *Parameters) Keys() []string {
	out := make([]string, len(p.paramKeys))
	copy(out, p.paramKeys)
	return out
}

// HeaderKeys returns the header keys in source order.
func (p *Parameters) HeaderKeys() []string {
	out := make([]string, len(p.headerKeys))
	copy(out, p.headerKeys)
	return out
}

// Values returns the decoded parameter values in source order.
func (p *Parameters) Values() []any {
	out := make([]any, len(p.paramKeys))
	for i, k := range p.paramKeys {
		out[i] = p.params[k]
	}
	return out
}

// IsParameter reports whether the source was a real parameter file: at
// least one header record was seen. Arbitrary text or binary files opened
// through the same generic accessor yield no header records.
func (p *Parameters) IsParameter() bool {
	return len(p.headerKeys) > 0
}

// Lines returns the raw source lines for diagnostics.
func (p *Parameters) Lines() []string {
	return p.lines
}
