package fairshare

import (
	"golang.org/x/exp/slices"

	"github.com/armadaproject/fairshare/internal/fairshare/tree"
)

// LessFunc orders share accounts. Siblings are allocated slots in ascending order.
type LessFunc func(a, b *ShareAccount) bool

// ByShares orders accounts by ascending configured shares.
func ByShares(a, b *ShareAccount) bool {
	return a.Shares < b.Shares
}

// ByRankMetric orders accounts by ascending historical usage relative to their fair share.
func ByRankMetric(a, b *ShareAccount) bool {
	return a.RankMetric < b.RankMetric
}

// SortSiblings re-orders the children of n according to less. The sort is stable.
func SortSiblings(t *ShareTree, n tree.NodeId, less LessFunc) {
	children := t.nodes.Children(n)
	if len(children) < 2 {
		return
	}
	slices.SortStableFunc(children, func(a, b tree.NodeId) bool {
		return less(t.nodes.Data(a), t.nodes.Data(b))
	})
	if err := t.nodes.SetChildren(n, children); err != nil {
		// children are exactly the current children of n, so this can only fail on a broken tree.
		panic(err)
	}
}

// SortTree applies SortSiblings to every sibling set in the tree.
func SortTree(t *ShareTree, less LessFunc) {
	for n := t.nodes.Root(); n != tree.NoNode; n = t.nodes.NextPreorder(n) {
		SortSiblings(t, n, less)
	}
}
