package fairshare

import (
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"k8s.io/utils/clock"

	"github.com/armadaproject/fairshare/internal/common"
	"github.com/armadaproject/fairshare/internal/common/app"
	"github.com/armadaproject/fairshare/internal/common/fscontext"
	"github.com/armadaproject/fairshare/internal/common/health"
	"github.com/armadaproject/fairshare/internal/common/logging"
	"github.com/armadaproject/fairshare/internal/common/serve"
	"github.com/armadaproject/fairshare/internal/fairshare/configuration"
)

// Number of cycle periods without a completed cycle after which the service reports itself unhealthy.
const missedCyclesBeforeUnhealthy = 3

// Run sets up the fairshare service and runs it until a SIGTERM is received.
func Run(config configuration.Configuration) error {
	service, err := NewService(config, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	return service.Run(app.CreateContextWithShutdown())
}

// GroupRecords returns the groups of config in the form consumed by the tree builder.
func GroupRecords(config configuration.Configuration) []GroupRecord {
	records := make([]GroupRecord, len(config.Groups))
	for i, g := range config.Groups {
		records[i] = GroupRecord{
			Name:      g.Name,
			Members:   strings.Join(g.Members, " "),
			ShareSpec: g.Shares,
		}
	}
	return records
}

// BuildTreeFromConfig builds the share tree described by config.
func (b *TreeBuilder) BuildTreeFromConfig(config configuration.Configuration) (*ShareTree, error) {
	return b.Build(config.UserShares, GroupRecords(config))
}

// Service runs a cycle every cycle period and serves metrics and health over http.
type Service struct {
	config    configuration.Configuration
	engine    *Engine
	registry  *prometheus.Registry
	heartbeat *health.HeartbeatChecker
	clock     clock.WithTicker
	// Called after every cycle. Used in tests.
	onCycleCompleted func(*CycleResult)
}

// NewService builds the share tree of config. Metrics are registered with registry.
func NewService(config configuration.Configuration, registry *prometheus.Registry) (*Service, error) {
	metrics := NewMetrics(registry)
	builder, err := NewTreeBuilder(config.SpecCacheSize)
	if err != nil {
		return nil, err
	}
	tree, err := builder.BuildTreeFromConfig(config)
	if err != nil {
		metrics.ReportBuildError()
		return nil, errors.WithMessage(err, "error building share tree")
	}
	return &Service{
		config:    config,
		engine:    NewEngine(tree, metrics),
		registry:  registry,
		heartbeat: health.NewHeartbeatChecker(missedCyclesBeforeUnhealthy * config.CyclePeriod),
		clock:     clock.RealClock{},
	}, nil
}

// Run runs a cycle immediately and then every cycle period until ctx is cancelled.
func (s *Service) Run(ctx *fscontext.Context) error {
	g, ctx := fscontext.ErrGroup(ctx)

	if s.config.Metrics.Port != 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", common.MetricsHandler(s.registry))
		health.SetupHttpMux(mux, s.heartbeat)
		server := common.NewHttpServer(s.config.Metrics.Port, mux)
		g.Go(func() error { return serve.ListenAndServe(ctx, server) })
	}

	g.Go(func() error {
		ticker := s.clock.NewTicker(s.config.CyclePeriod)
		defer ticker.Stop()
		s.RunCycle(ctx)
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C():
				s.RunCycle(ctx)
			}
		}
	})
	return g.Wait()
}

// RunCycle runs a single cycle with the configured number of slots. Counters are re-read from the counters file,
// if one is configured; if that fails, the counters of the previous cycle are kept.
func (s *Service) RunCycle(ctx *fscontext.Context) *CycleResult {
	var counters Counters
	if s.config.CountersFile != "" {
		var err error
		counters, err = LoadCounters(s.config.CountersFile)
		if err != nil {
			logging.WithStacktrace(ctx, err).Errorf("failed to read counters from %s", s.config.CountersFile)
			counters = nil
		}
	}
	result := s.engine.RunCycle(ctx, s.config.TotalSlots, counters)
	s.heartbeat.Beat()
	if s.onCycleCompleted != nil {
		s.onCycleCompleted(result)
	}
	return result
}

// Engine returns the engine of the service.
func (s *Service) Engine() *Engine {
	return s.engine
}

// Health reports an error if no cycle completed recently.
func (s *Service) Health() error {
	return s.heartbeat.Check()
}

