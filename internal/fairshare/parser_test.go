package fairshare

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShareSpec(t *testing.T) {
	tests := map[string]struct {
		spec     string
		label    string
		expected []shareEntry
	}{
		"simple": {
			spec:     "x[[alice 1][bob 3]]",
			label:    "x",
			expected: []shareEntry{{"alice", 1}, {"bob", 3}},
		},
		"commas and whitespace": {
			spec:     " users [ [alice, 1] ,\t[bob,3]\n]",
			label:    "users",
			expected: []shareEntry{{"alice", 1}, {"bob", 3}},
		},
		"no label": {
			spec:     "[[g 2][carol 1]]",
			expected: []shareEntry{{"g", 2}, {"carol", 1}},
		},
		"flat pairs": {
			spec:     "[alice 1 bob 0]",
			expected: []shareEntry{{"alice", 1}, {"bob", 0}},
		},
		"empty": {
			spec:  "x[]",
			label: "x",
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			spec, err := parseShareSpec(tc.spec)
			require.NoError(t, err)
			assert.Equal(t, tc.label, spec.Label)
			assert.Equal(t, tc.expected, spec.Entries)
		})
	}
}

func TestParseShareSpec_Malformed(t *testing.T) {
	tests := map[string]string{
		"missing opening bracket": "alice 1 bob 2",
		"unclosed bracket":        "x[[alice 1]",
		"closed too early":        "x[[alice 1]]]",
		"close before open":       "x]][[alice 1]]",
		"non-numeric shares":      "x[[alice one]]",
		"negative shares":         "x[[alice -1]]",
		"shares overflow":         "x[[alice 4294967296]]",
		"missing shares":          "x[[alice][bob 1]]",
		"duplicate name":          "x[[alice 1][alice 2]]",
		"empty":                   "",
	}
	for name, spec := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parseShareSpec(spec)
			var e *ErrMalformedSpec
			require.True(t, errors.As(err, &e), "expected ErrMalformedSpec, got %v", err)
			assert.Equal(t, spec, e.Spec)
		})
	}
}

func TestShareSpec_SharesOf(t *testing.T) {
	spec, err := parseShareSpec("[[alice 1][default 4][bob 2]]")
	require.NoError(t, err)

	shares, ok := spec.sharesOf("bob")
	assert.True(t, ok)
	assert.Equal(t, uint32(2), shares)

	shares, ok = spec.sharesOf("zed")
	assert.True(t, ok)
	assert.Equal(t, uint32(4), shares)

	spec, err = parseShareSpec("[[alice 1]]")
	require.NoError(t, err)
	_, ok = spec.sharesOf("zed")
	assert.False(t, ok)
}
