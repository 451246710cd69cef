package fairshare

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTree_Structure(t *testing.T) {
	st := testTree(t)

	assert.Equal(t, RootName, st.Root().Name)
	assert.Equal(t, uint32(1), st.Root().Shares)
	assert.Equal(t, []string{"ops", "alice", "chem", "physics"}, names(st.Children(RootName)))
	assert.Equal(t, []string{"bob", "carol", "theory"}, names(st.Children("physics")))
	assert.Equal(t, []string{"dave", "erin"}, names(st.Children("theory")))
	// gina and hank take the default shares and keep member list order.
	assert.Equal(t, []string{"gina", "hank", "frank"}, names(st.Children("chem")))
	assert.Equal(t, 13, st.Size())
}

func TestBuildTree_NormalizedShares(t *testing.T) {
	st := testTree(t)

	physics, ok := st.Lookup("physics")
	require.True(t, ok)
	assert.InDelta(t, 5.0/11.0, physics.NormalizedShare, 1e-12)
	frank, ok := st.Lookup("frank")
	require.True(t, ok)
	assert.InDelta(t, 7.0/9.0, frank.NormalizedShare, 1e-12)

	forEachParent(st, func(parent *ShareAccount, children []*ShareAccount) {
		sum := 0.0
		for _, c := range children {
			sum += c.NormalizedShare
			assert.GreaterOrEqual(t, c.NormalizedShare, 0.0)
			assert.LessOrEqual(t, c.NormalizedShare, 1.0)
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "children of %s", parent.Name)
	})
}

func TestBuildTree_SiblingsSortedByShares(t *testing.T) {
	st, err := BuildTree("x[[c 2][a 1][b 2][d 0]]", nil)
	require.NoError(t, err)
	// Stable: c precedes b as in the share specification.
	assert.Equal(t, []string{"d", "a", "c", "b"}, names(st.Children(RootName)))

	forEachParent(testTree(t), func(parent *ShareAccount, children []*ShareAccount) {
		for i := 1; i < len(children); i++ {
			assert.LessOrEqual(t, children[i-1].Shares, children[i].Shares)
		}
	})
}

func TestBuildTree_NestedGroup(t *testing.T) {
	st, err := BuildTree("[[g 2][carol 1]]", []GroupRecord{
		{Name: "g", Members: "alice bob", ShareSpec: "[[alice 1][bob 1]]"},
	})
	require.NoError(t, err)

	g, ok := st.Lookup("g")
	require.True(t, ok)
	carol, ok := st.Lookup("carol")
	require.True(t, ok)
	assert.InDelta(t, 2.0/3.0, g.NormalizedShare, 1e-12)
	assert.InDelta(t, 1.0/3.0, carol.NormalizedShare, 1e-12)
	for _, member := range st.Children("g") {
		assert.InDelta(t, 0.5, member.NormalizedShare, 1e-12)
	}
}

func TestBuildTree_NameIndex(t *testing.T) {
	st, err := BuildTree("x[[g1 1][g2 1][alice 1]]", []GroupRecord{
		{Name: "g1", Members: "alice bob", ShareSpec: "[[alice 1][bob 1]]"},
		{Name: "g2", Members: "alice", ShareSpec: "[alice 1]"},
	})
	require.NoError(t, err)

	assert.Len(t, st.LookupAll("alice"), 3)
	assert.Len(t, st.LookupAll("g1"), 1)
	assert.Empty(t, st.LookupAll("nobody"))

	a, ok := st.Lookup("g1/alice")
	require.True(t, ok)
	assert.Equal(t, "g1/alice", a.Path)
	a, ok = st.Lookup("/alice")
	require.True(t, ok)
	assert.Equal(t, "/alice", a.Path)

	// Groups are indexed by name only.
	_, ok = st.Lookup("/g1")
	assert.False(t, ok)

	root, ok := st.Lookup(RootName)
	require.True(t, ok)
	assert.Same(t, st.Root(), root)
}

func TestBuildTree_EmptyGroupIsLeaf(t *testing.T) {
	st, err := BuildTree("x[[g 1][alice 1]]", []GroupRecord{{Name: "g", Members: "", ShareSpec: "[]"}})
	require.NoError(t, err)
	Distribute(st, 2)
	assert.Equal(t, []string{"/g", "/alice"}, paths(st.Leaves()))
}

func TestBuildTree_EmptyGroupWithoutSharesSpec(t *testing.T) {
	st, err := BuildTree("x[[g 1][alice 1]]", []GroupRecord{{Name: "g"}})
	require.NoError(t, err)
	Distribute(st, 2)
	assert.Equal(t, []string{"/g", "/alice"}, paths(st.Leaves()))
}

func TestBuildTree_EmptySpec(t *testing.T) {
	st, err := BuildTree("x[]", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Size())
	Distribute(st, 10)
	assert.Empty(t, st.Leaves())
	assert.Equal(t, uint32(0), Harvest(st))
}

func TestBuildTree_CyclicGroupReference(t *testing.T) {
	tests := map[string]struct {
		userShares string
		groups     []GroupRecord
		cycle      []string
	}{
		"mutual": {
			userShares: "x[[groupA 1]]",
			groups: []GroupRecord{
				{Name: "groupA", Members: "groupB", ShareSpec: "[[groupB 1]]"},
				{Name: "groupB", Members: "groupA", ShareSpec: "[[groupA 1]]"},
			},
			cycle: []string{"groupA", "groupB", "groupA"},
		},
		"self": {
			userShares: "x[[g 1][alice 1]]",
			groups: []GroupRecord{
				{Name: "g", Members: "bob g", ShareSpec: "[[bob 1][g 1]]"},
			},
			cycle: []string{"g", "g"},
		},
		"transitive below the root": {
			userShares: "x[[top 1]]",
			groups: []GroupRecord{
				{Name: "top", Members: "a", ShareSpec: "[[a 1]]"},
				{Name: "a", Members: "b", ShareSpec: "[[b 1]]"},
				{Name: "b", Members: "c", ShareSpec: "[[c 1]]"},
				{Name: "c", Members: "a", ShareSpec: "[[a 1]]"},
			},
			cycle: []string{"a", "b", "c", "a"},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			st, err := BuildTree(tc.userShares, tc.groups)
			assert.Nil(t, st)
			var e *ErrCyclicGroupReference
			require.True(t, errors.As(err, &e), "expected ErrCyclicGroupReference, got %v", err)
			assert.Equal(t, tc.cycle, e.Cycle)
		})
	}
}

func TestBuildTree_SameGroupInTwoBranchesIsNotACycle(t *testing.T) {
	st, err := BuildTree("x[[g1 1][g2 1]]", []GroupRecord{
		{Name: "g1", Members: "shared", ShareSpec: "[[shared 1]]"},
		{Name: "g2", Members: "shared", ShareSpec: "[[shared 1]]"},
		{Name: "shared", Members: "alice", ShareSpec: "[[alice 1]]"},
	})
	require.NoError(t, err)
	assert.Len(t, st.LookupAll("shared"), 2)
	assert.Len(t, st.LookupAll("shared/alice"), 2)
}

func TestBuildTree_ZeroShareSum(t *testing.T) {
	_, err := BuildTree("x[[a 0][b 0]]", nil)
	var e *ErrZeroShareSum
	require.True(t, errors.As(err, &e))
	assert.Equal(t, RootName, e.Parent)

	_, err = BuildTree("x[[g 1]]", []GroupRecord{{Name: "g", Members: "a b", ShareSpec: "[[a 0][b 0]]"}})
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "g", e.Parent)
}

func TestBuildTree_Malformed(t *testing.T) {
	tests := map[string]struct {
		userShares string
		groups     []GroupRecord
		group      string
	}{
		"user shares": {
			userShares: "x[[alice 1]",
		},
		"group shares": {
			userShares: "x[[g 1]]",
			groups:     []GroupRecord{{Name: "g", Members: "a", ShareSpec: "[[a x]]"}},
			group:      "g",
		},
		"member without shares": {
			userShares: "x[[g 1]]",
			groups:     []GroupRecord{{Name: "g", Members: "a b", ShareSpec: "[[a 1]]"}},
			group:      "g",
		},
		"member listed twice": {
			userShares: "x[[g 1]]",
			groups:     []GroupRecord{{Name: "g", Members: "a a", ShareSpec: "[[a 1]]"}},
			group:      "g",
		},
		"group defined twice": {
			userShares: "x[[g 1]]",
			groups: []GroupRecord{
				{Name: "g", Members: "a", ShareSpec: "[[a 1]]"},
				{Name: "g", Members: "b", ShareSpec: "[[b 1]]"},
			},
			group: "g",
		},
		"unnamed group": {
			userShares: "x[[g 1]]",
			groups:     []GroupRecord{{Members: "a", ShareSpec: "[[a 1]]"}},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			st, err := BuildTree(tc.userShares, tc.groups)
			assert.Nil(t, st)
			var e *ErrMalformedSpec
			require.True(t, errors.As(err, &e), "expected ErrMalformedSpec, got %v", err)
			assert.Equal(t, tc.group, e.Group)
		})
	}
}

func TestTreeBuilder_ReusesParsedSpecs(t *testing.T) {
	b, err := NewTreeBuilder(16)
	require.NoError(t, err)

	first, err := b.Build(testUserShares, testGroups)
	require.NoError(t, err)
	assert.Equal(t, 4, b.specCache.Len())

	second, err := b.Build(testUserShares, testGroups)
	require.NoError(t, err)
	assert.Equal(t, 4, b.specCache.Len())

	// Trees built from cached specs do not share accounts.
	Distribute(first, 10)
	Distribute(second, 20)
	assert.Equal(t, paths(first.Leaves()), paths(second.Leaves()))
	assert.NotEqual(t, first.Allocations(), second.Allocations())
}
