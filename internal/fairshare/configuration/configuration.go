package configuration

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/armadaproject/fairshare/internal/common/logging"
)

type Configuration struct {
	// Share spec of the root, e.g. "cluster[[physics 5][chem 3][alice 2]]"
	UserShares string `validate:"required"`
	// Groups expanded beneath the root. Groups not reachable from UserShares are ignored.
	Groups []GroupConfig `validate:"dive"`
	// Slots handed out per cycle. Overridden by the --slots flag.
	TotalSlots uint32
	// How often serve runs a cycle
	CyclePeriod time.Duration `validate:"required"`
	// Optional YAML file of per-entity running/pending/ran counters, re-read every cycle.
	CountersFile string
	// Maximum number of parsed share specs cached by the tree builder
	SpecCacheSize int `validate:"gte=0"`
	Metrics       MetricsConfig
	Logging       logging.Config
}

type MetricsConfig struct {
	// Port on which /metrics and /health are served. Zero disables the server.
	Port uint16
}

type GroupConfig struct {
	Name string `validate:"required"`
	// Either a space-separated string or a list.
	Members Members
	// Member shares. May be left empty for a group without members.
	Shares string
}

// Members lists the member names of a group in declaration order.
type Members []string

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	var result *multierror.Error
	seen := make(map[string]bool, len(c.Groups))
	for i, g := range c.Groups {
		if seen[g.Name] {
			result = multierror.Append(result, errors.Errorf("groups[%d]: group %s is defined more than once", i, g.Name))
		}
		seen[g.Name] = true
		if len(g.Members) > 0 && !strings.Contains(g.Shares, "[") {
			result = multierror.Append(result, errors.Errorf("groups[%d]: share spec %q of group %s has no entries", i, g.Shares, g.Name))
		}
	}
	if !strings.Contains(c.UserShares, "[") {
		result = multierror.Append(result, errors.Errorf("userShares: share spec %q has no entries", c.UserShares))
	}
	return result.ErrorOrNil()
}
