package fairshare

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Entry name that supplies the shares of group members without an entry of their own.
const defaultEntryName = "default"

type shareEntry struct {
	Name   string
	Shares uint32
}

// shareSpec is a parsed share specification of the form label[[name shares] [name shares] ...].
type shareSpec struct {
	Label   string
	Entries []shareEntry
}

// sharesOf returns the shares configured for name, falling back to the default entry.
func (s *shareSpec) sharesOf(name string) (uint32, bool) {
	var dflt *shareEntry
	for i, e := range s.Entries {
		if e.Name == name {
			return e.Shares, true
		}
		if e.Name == defaultEntryName {
			dflt = &s.Entries[i]
		}
	}
	if dflt != nil {
		return dflt.Shares, true
	}
	return 0, false
}

// parseShareSpec parses label[[name shares] [name shares] ...].
// Brackets, commas, and whitespace all delimit tokens once the brackets have been checked for balance.
func parseShareSpec(spec string) (*shareSpec, error) {
	open := strings.IndexByte(spec, '[')
	if open < 0 {
		return nil, errors.WithStack(&ErrMalformedSpec{Spec: spec, Message: "missing opening bracket"})
	}
	depth := 0
	for _, c := range spec[open:] {
		switch c {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				return nil, errors.WithStack(&ErrMalformedSpec{Spec: spec, Message: "unbalanced brackets"})
			}
		}
	}
	if depth != 0 {
		return nil, errors.WithStack(&ErrMalformedSpec{Spec: spec, Message: "unbalanced brackets"})
	}
	label := strings.TrimSpace(spec[:open])
	if strings.ContainsAny(label, "],") {
		return nil, errors.WithStack(&ErrMalformedSpec{Spec: spec, Message: "unexpected text before opening bracket"})
	}

	fields := strings.FieldsFunc(spec[open:], func(r rune) bool {
		return r == '[' || r == ']' || r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields)%2 != 0 {
		return nil, errors.WithStack(&ErrMalformedSpec{
			Spec:    spec,
			Message: "expected alternating names and shares",
		})
	}
	rv := &shareSpec{Label: label}
	seen := make(map[string]bool, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		name := fields[i]
		shares, err := strconv.ParseUint(fields[i+1], 10, 32)
		if err != nil {
			return nil, errors.WithStack(&ErrMalformedSpec{
				Spec:    spec,
				Message: "shares of " + strconv.Quote(name) + " must be a non-negative integer, got " + strconv.Quote(fields[i+1]),
			})
		}
		if seen[name] {
			return nil, errors.WithStack(&ErrMalformedSpec{
				Spec:    spec,
				Message: strconv.Quote(name) + " is given more than once",
			})
		}
		seen[name] = true
		rv.Entries = append(rv.Entries, shareEntry{Name: name, Shares: uint32(shares)})
	}
	return rv, nil
}
