package fairshare

import (
	"github.com/pkg/errors"

	"github.com/armadaproject/fairshare/internal/fairshare/tree"
)

// ShareTree is the hierarchy of share accounts that slots are distributed over.
// The root account represents the whole pool. Leaves are terminal user accounts.
//
// ShareTree is not threadsafe; callers must not run cycles on the same tree concurrently.
type ShareTree struct {
	nodes *tree.Tree[*ShareAccount]
	// Leaves in allocation order. Rebuilt by every call to Distribute.
	leaves []tree.NodeId
	index  *NameIndex
}

// Allocation is the per-leaf outcome of a cycle handed to job dispatch.
type Allocation struct {
	// EntityPath is the leaf's "parent/leaf" key. It is only unique within a cycle if no group is expanded in
	// more than one branch; otherwise several allocations carry the same path and consumers keyed on it, such as
	// the per-entity gauges, keep the one that comes last in allocation order.
	EntityPath    string
	DesiredServed uint32
	Sent          uint32
}

func newShareTree() *ShareTree {
	return &ShareTree{
		nodes: tree.New(newShareAccount(RootName, 1)),
	}
}

// Root returns the account at the root of the tree.
func (t *ShareTree) Root() *ShareAccount {
	return t.nodes.Data(t.nodes.Root())
}

// Nodes gives access to the underlying tree structure.
func (t *ShareTree) Nodes() *tree.Tree[*ShareAccount] {
	return t.nodes
}

// Account returns the account carried by node n.
func (t *ShareTree) Account(n tree.NodeId) *ShareAccount {
	return t.nodes.Data(n)
}

// Children returns the accounts of the children of the account indexed under key, left to right.
func (t *ShareTree) Children(key string) []*ShareAccount {
	id, ok := t.lookupId(key)
	if !ok {
		return nil
	}
	return t.accounts(t.nodes.Children(id))
}

// Lookup returns the account indexed under key, which is either an entity name or the "parent/leaf" path of a leaf.
// If several entities share the name, the one created first is returned.
func (t *ShareTree) Lookup(key string) (*ShareAccount, bool) {
	id, ok := t.lookupId(key)
	if !ok {
		return nil, false
	}
	return t.nodes.Data(id), true
}

// LookupAll returns all accounts indexed under key.
func (t *ShareTree) LookupAll(key string) []*ShareAccount {
	if key == RootName {
		return []*ShareAccount{t.Root()}
	}
	if t.index == nil {
		return nil
	}
	ids, err := t.index.Get(key)
	if err != nil {
		// The schema is static so lookups on it cannot fail.
		panic(err)
	}
	return t.accounts(ids)
}

func (t *ShareTree) lookupId(key string) (tree.NodeId, bool) {
	if key == RootName {
		return t.nodes.Root(), true
	}
	if t.index == nil {
		return tree.NoNode, false
	}
	ids, err := t.index.Get(key)
	if err != nil {
		panic(err)
	}
	if len(ids) == 0 {
		return tree.NoNode, false
	}
	return ids[0], true
}

// Leaves returns the leaves collected by the last call to Distribute, in allocation order.
func (t *ShareTree) Leaves() []*ShareAccount {
	return t.accounts(t.leaves)
}

// Allocations returns the outcome of the last cycle for every leaf, in allocation order.
func (t *ShareTree) Allocations() []Allocation {
	rv := make([]Allocation, len(t.leaves))
	for i, n := range t.leaves {
		s := t.nodes.Data(n)
		rv[i] = Allocation{
			EntityPath:    s.Path,
			DesiredServed: s.DesiredServed,
			Sent:          s.Sent,
		}
	}
	return rv
}

// SetCounters sets the externally maintained job counters of every account indexed under key.
func (t *ShareTree) SetCounters(key string, running, pending, ran uint32) error {
	accounts := t.LookupAll(key)
	if len(accounts) == 0 {
		return errors.Errorf("no share account found for %q", key)
	}
	for _, s := range accounts {
		s.NumRunning = running
		s.NumPending = pending
		s.NumRan = ran
	}
	return nil
}

// ResetCounters zeroes the job counters of every account in the tree.
func (t *ShareTree) ResetCounters() {
	for n := t.nodes.Root(); n != tree.NoNode; n = t.nodes.NextPreorder(n) {
		s := t.nodes.Data(n)
		s.NumRunning = 0
		s.NumPending = 0
		s.NumRan = 0
	}
}

// Size returns the number of accounts in the tree, root included.
func (t *ShareTree) Size() int {
	size := 0
	for n := t.nodes.Root(); n != tree.NoNode; n = t.nodes.NextPreorder(n) {
		size++
	}
	return size
}

// buildIndex indexes every node by name and every leaf additionally by "parent/leaf".
// The root has an empty path for this purpose, so leaves directly below it are keyed "/leaf".
func (t *ShareTree) buildIndex() error {
	index, err := NewNameIndex()
	if err != nil {
		return err
	}
	root := t.nodes.Root()
	for n := t.nodes.NextPreorder(root); n != tree.NoNode; n = t.nodes.NextPreorder(n) {
		s := t.nodes.Data(n)
		keys := []string{s.Name}
		if t.nodes.IsLeaf(n) {
			parentPath := ""
			if p := t.nodes.Parent(n); p != root {
				parentPath = t.nodes.Data(p).Name
			}
			s.Path = parentPath + "/" + s.Name
			keys = append(keys, s.Path)
		}
		if err := index.Insert(n, keys...); err != nil {
			return err
		}
	}
	t.index = index
	return nil
}

func (t *ShareTree) accounts(ids []tree.NodeId) []*ShareAccount {
	rv := make([]*ShareAccount, len(ids))
	for i, id := range ids {
		rv[i] = t.nodes.Data(id)
	}
	return rv
}
