package fairshare

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/armadaproject/fairshare/internal/fairshare/tree"
)

// cluster
// ├── ops (1)
// ├── alice (2)
// ├── chem (3)
// │   ├── gina (1)
// │   ├── hank (1)
// │   └── frank (7)
// └── physics (5)
//     ├── bob (1)
//     ├── carol (2)
//     └── theory (3)
//         ├── dave (1)
//         └── erin (1)
const testUserShares = "cluster[[physics 5][chem 3][ops 1][alice 2]]"

var testGroups = []GroupRecord{
	{Name: "physics", Members: "bob carol theory", ShareSpec: "[[bob 1][carol 2][theory 3]]"},
	{Name: "theory", Members: "dave erin", ShareSpec: "[[dave 1][erin 1]]"},
	{Name: "chem", Members: "frank gina hank", ShareSpec: "[[frank 7][default 1]]"},
	{Name: "unused", Members: "nobody", ShareSpec: "[[nobody 1]]"},
}

func testTree(t *testing.T) *ShareTree {
	st, err := BuildTree(testUserShares, testGroups)
	require.NoError(t, err)
	return st
}

func names(accounts []*ShareAccount) []string {
	rv := make([]string, len(accounts))
	for i, a := range accounts {
		rv[i] = a.Name
	}
	return rv
}

func paths(accounts []*ShareAccount) []string {
	rv := make([]string, len(accounts))
	for i, a := range accounts {
		rv[i] = a.Path
	}
	return rv
}

// forEachParent calls f with every node that has children, together with its children.
func forEachParent(st *ShareTree, f func(parent *ShareAccount, children []*ShareAccount)) {
	nodes := st.Nodes()
	for n := nodes.Root(); n != tree.NoNode; n = nodes.NextPreorder(n) {
		if nodes.IsLeaf(n) {
			continue
		}
		f(nodes.Data(n), st.accounts(nodes.Children(n)))
	}
}
