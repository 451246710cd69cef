package fairshare

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/armadaproject/fairshare/internal/common/fscontext"
)

// CycleResult is the outcome of one scheduling cycle.
type CycleResult struct {
	CycleId     uuid.UUID
	TotalSlots  uint32
	FreeSlots   uint32
	Allocations []Allocation
	// Counter keys that matched no entity.
	UnknownCounters []string
	Duration        time.Duration
}

// Engine runs scheduling cycles over a share tree. Cycles are serialized, and the tree may be swapped between them.
type Engine struct {
	tree          *ShareTree
	metrics       *Metrics
	redistributor Redistributor
	mu            sync.Mutex
}

// NewEngine returns an engine running cycles over tree. metrics may be nil.
func NewEngine(tree *ShareTree, metrics *Metrics) *Engine {
	return &Engine{
		tree:    tree,
		metrics: metrics,
	}
}

// WithRedistributor sets the redistributor handed the free slots of every cycle that has some.
func (e *Engine) WithRedistributor(r Redistributor) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.redistributor = r
	return e
}

// Reload replaces the share tree, e.g., after the share configuration changed.
func (e *Engine) Reload(tree *ShareTree) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tree = tree
}

// Tree returns the current share tree. It must not be modified while a cycle may be running.
func (e *Engine) Tree() *ShareTree {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree
}

// RunCycle distributes totalSlots over the tree and harvests the leaves.
// If counters is non-nil it replaces the job counters of the tree before distributing.
func (e *Engine) RunCycle(ctx *fscontext.Context, totalSlots uint32, counters Counters) *CycleResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	result := &CycleResult{
		CycleId:    uuid.New(),
		TotalSlots: totalSlots,
	}
	ctx = fscontext.WithLogField(ctx, "cycleId", result.CycleId)

	if counters != nil {
		result.UnknownCounters = counters.Apply(e.tree)
		if len(result.UnknownCounters) > 0 {
			ctx.Log.Warnf("ignoring counters for unknown entities %v", result.UnknownCounters)
		}
	}

	Distribute(e.tree, totalSlots)
	result.FreeSlots = Harvest(e.tree)
	result.Allocations = e.tree.Allocations()

	if result.FreeSlots > 0 && e.redistributor != nil {
		e.redistributor.Redistribute(ctx, e.tree, result.FreeSlots)
		result.Allocations = e.tree.Allocations()
	}
	result.Duration = time.Since(start)

	if ctx.Log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		for _, s := range e.tree.Leaves() {
			ctx.Log.Debug(s.String())
		}
	}
	fscontext.WithLogFields(ctx, logrus.Fields{
		"totalSlots": totalSlots,
		"freeSlots":  result.FreeSlots,
		"leaves":     len(result.Allocations),
		"duration":   result.Duration,
	}).Log.Info("cycle complete")

	if e.metrics != nil {
		e.metrics.ReportCycle(result)
	}
	return result
}
