package fairshare

import (
	"github.com/armadaproject/fairshare/internal/common/fscontext"
	"github.com/armadaproject/fairshare/internal/fairshare/tree"
)

// Redistributor hands out slots that Harvest found no use for.
//
// No policy for doing so is defined yet: RankByHistory computes the order in which under-served branches would be
// topped up, but how many slots each of them should receive is left to implementations of this interface.
type Redistributor interface {
	Redistribute(ctx *fscontext.Context, t *ShareTree, freeSlots uint32)
}

// ComputeRankMetric apportions siblingRan completed jobs to s the way Distribute apportions slots, and sets
// RankMetric to how far s ran above (positive) or below (negative) that fair portion.
// Returns the portion, which the caller deducts from available before ranking the next sibling.
func ComputeRankMetric(s *ShareAccount, siblingRan, available uint64) uint64 {
	use := s.apportion(siblingRan, available)
	s.RankMetric = int64(s.NumRan) - int64(use)
	return use
}

// RankByHistory computes RankMetric for every account and re-orders every sibling set by ascending RankMetric, so
// that entities which historically ran less than their share come first.
// The order persists into subsequent calls to Distribute; use SortTree with ByShares to restore share priority.
func RankByHistory(t *ShareTree) {
	queue := []tree.NodeId{t.nodes.Root()}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]

		var sum uint64
		for n := t.nodes.FirstChild(parent); n != tree.NoNode; n = t.nodes.NextSibling(n) {
			sum += uint64(t.nodes.Data(n).NumRan)
			if !t.nodes.IsLeaf(n) {
				queue = append(queue, n)
			}
		}
		available := sum
		for n := t.nodes.FirstChild(parent); n != tree.NoNode; n = t.nodes.NextSibling(n) {
			available -= ComputeRankMetric(t.nodes.Data(n), sum, available)
		}
		SortSiblings(t, parent, ByRankMetric)
	}
}
