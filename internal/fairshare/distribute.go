package fairshare

import (
	"fmt"

	"github.com/armadaproject/fairshare/internal/fairshare/tree"
)

// A branch still to be processed, together with the slots its children share.
type branch struct {
	node   tree.NodeId
	budget uint64
}

// Distribute apportions totalSlots over the tree, setting DesiredServed on every account and rebuilding the leaf
// collection.
//
// Each sibling set is processed left to right, i.e., in priority order. A node is entitled to
// ceil(NormalizedShare * budget) slots, where budget is the allocation of its parent, capped at what its preceding
// siblings have left over. Branches are processed breadth-first, after their whole sibling set has been allocated.
// Sent is reset on every account.
func Distribute(t *ShareTree, totalSlots uint32) {
	t.leaves = t.leaves[:0]

	root := t.nodes.Root()
	rootAccount := t.nodes.Data(root)
	rootAccount.DesiredServed = totalSlots
	rootAccount.Sent = 0

	queue := []branch{{node: root, budget: uint64(totalSlots)}}
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]

		available := b.budget
		for n := t.nodes.FirstChild(b.node); n != tree.NoNode; n = t.nodes.NextSibling(n) {
			s := t.nodes.Data(n)
			s.Sent = 0
			dsrv := s.apportion(b.budget, available)
			if dsrv > available {
				panic(fmt.Sprintf("allocated %d slots to %s but only %d are available", dsrv, s.Name, available))
			}
			available -= dsrv
			s.DesiredServed = uint32(dsrv)

			if t.nodes.IsLeaf(n) {
				t.leaves = append(t.leaves, n)
			} else {
				queue = append(queue, branch{node: n, budget: dsrv})
			}
		}
	}
}
