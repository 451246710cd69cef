package fairshare

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v2"
)

// Counter holds the externally maintained job counts of one entity.
type Counter struct {
	Running uint32 `yaml:"running"`
	Pending uint32 `yaml:"pending"`
	Ran     uint32 `yaml:"ran"`
}

// Counters maps entity names or "parent/leaf" paths to their job counts.
type Counters map[string]Counter

// LoadCounters reads counters from a yaml file of the form
//
//	/alice: {running: 1, pending: 4, ran: 100}
//	physics/bob: {running: 0, pending: 2}
func LoadCounters(path string) (Counters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return ParseCounters(data)
}

func ParseCounters(data []byte) (Counters, error) {
	counters := Counters{}
	if err := yaml.UnmarshalStrict(data, &counters); err != nil {
		return nil, errors.Wrap(err, "invalid counters")
	}
	return counters, nil
}

// Apply replaces the counters of every account in t with those in c. Accounts without an entry are zeroed.
// Plain names are applied before "parent/leaf" paths, so a path takes precedence over the name it shares a leaf with.
// Returns the keys that matched no account, sorted.
func (c Counters) Apply(t *ShareTree) []string {
	t.ResetCounters()
	keys := maps.Keys(c)
	slices.SortFunc(keys, func(a, b string) bool {
		aPath, bPath := strings.Contains(a, "/"), strings.Contains(b, "/")
		if aPath != bPath {
			return bPath
		}
		return a < b
	})
	var unknown []string
	for _, key := range keys {
		counter := c[key]
		if err := t.SetCounters(key, counter.Running, counter.Pending, counter.Ran); err != nil {
			unknown = append(unknown, key)
		}
	}
	slices.Sort(unknown)
	return unknown
}
