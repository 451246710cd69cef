package fairshare

import (
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"github.com/armadaproject/fairshare/internal/fairshare/tree"
)

const DefaultSpecCacheSize = 1024

// GroupRecord describes the membership of a group.
type GroupRecord struct {
	// Name of the group, matched against entity names in share specifications.
	Name string
	// Space-separated member names.
	Members string
	// Shares of the members, in the same bracketed form as the user shares.
	ShareSpec string
}

// TreeBuilder builds share trees from share specifications and group records.
// Parsed specifications are cached across builds, since a configuration reload usually leaves most of them unchanged.
type TreeBuilder struct {
	specCache *lru.Cache
}

func NewTreeBuilder(specCacheSize int) (*TreeBuilder, error) {
	if specCacheSize <= 0 {
		specCacheSize = DefaultSpecCacheSize
	}
	specCache, err := lru.New(specCacheSize)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &TreeBuilder{specCache: specCache}, nil
}

// BuildTree builds a share tree using a TreeBuilder with the default cache size.
func BuildTree(userShares string, groups []GroupRecord) (*ShareTree, error) {
	b, err := NewTreeBuilder(DefaultSpecCacheSize)
	if err != nil {
		return nil, err
	}
	return b.Build(userShares, groups)
}

// A node whose name may still have to be expanded into the members of a group.
type pendingNode struct {
	id tree.NodeId
	// Groups expanded on the path from the root to this node.
	ancestors []string
}

// Build returns the share tree described by userShares. Every entity whose name matches a group is expanded into the
// members of that group, recursively; all other entities are user leaves.
// Sibling sets are ordered by ascending shares, ties keeping the order of the share specification.
// No tree is returned if any part of the input is invalid.
func (b *TreeBuilder) Build(userShares string, groups []GroupRecord) (*ShareTree, error) {
	groupsByName := make(map[string]*GroupRecord, len(groups))
	for i, g := range groups {
		if g.Name == "" {
			return nil, errors.WithStack(&ErrMalformedSpec{Spec: g.ShareSpec, Message: "group has no name"})
		}
		if _, ok := groupsByName[g.Name]; ok {
			return nil, errors.WithStack(&ErrMalformedSpec{
				Spec:    g.ShareSpec,
				Group:   g.Name,
				Message: "group is defined more than once",
			})
		}
		groupsByName[g.Name] = &groups[i]
	}

	spec, err := b.parse(userShares)
	if err != nil {
		return nil, err
	}
	accounts := make([]*ShareAccount, len(spec.Entries))
	for i, e := range spec.Entries {
		accounts[i] = newShareAccount(e.Name, e.Shares)
	}

	t := newShareTree()
	pending, err := t.insertSiblings(t.nodes.Root(), accounts, nil)
	if err != nil {
		return nil, err
	}

	for len(pending) > 0 {
		p := pending[0]
		pending = pending[1:]

		name := t.nodes.Data(p.id).Name
		g, ok := groupsByName[name]
		if !ok {
			continue
		}
		if slices.Contains(p.ancestors, name) {
			cycle := append(slices.Clone(p.ancestors[slices.Index(p.ancestors, name):]), name)
			return nil, errors.WithStack(&ErrCyclicGroupReference{Cycle: cycle})
		}
		members, err := b.groupMembers(g)
		if err != nil {
			return nil, err
		}
		ancestors := append(slices.Clone(p.ancestors), name)
		more, err := t.insertSiblings(p.id, members, ancestors)
		if err != nil {
			return nil, err
		}
		pending = append(pending, more...)
	}

	SortTree(t, ByShares)
	if err := t.buildIndex(); err != nil {
		return nil, err
	}
	return t, nil
}

// insertSiblings normalizes the shares of accounts and inserts them below parent, preserving their order.
func (t *ShareTree) insertSiblings(parent tree.NodeId, accounts []*ShareAccount, ancestors []string) ([]pendingNode, error) {
	if !normalize(accounts) {
		return nil, errors.WithStack(&ErrZeroShareSum{Parent: t.nodes.Data(parent).Name})
	}
	pending := make([]pendingNode, len(accounts))
	// Insertion is leftmost, so insert back to front.
	for i := len(accounts) - 1; i >= 0; i-- {
		id, err := t.nodes.Insert(parent, accounts[i])
		if err != nil {
			return nil, err
		}
		pending[i] = pendingNode{id: id, ancestors: ancestors}
	}
	return pending, nil
}

// groupMembers returns an account for each member of g, taking shares from the group's own share specification.
func (b *TreeBuilder) groupMembers(g *GroupRecord) ([]*ShareAccount, error) {
	names := strings.Fields(g.Members)
	if len(names) == 0 {
		// A group without members stays a leaf, whatever its shares spec says.
		return nil, nil
	}
	spec, err := b.parse(g.ShareSpec)
	if err != nil {
		var e *ErrMalformedSpec
		if errors.As(err, &e) {
			e.Group = g.Name
		}
		return nil, err
	}
	accounts := make([]*ShareAccount, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			return nil, errors.WithStack(&ErrMalformedSpec{
				Spec:    g.Members,
				Group:   g.Name,
				Message: strconv.Quote(name) + " is listed more than once",
			})
		}
		seen[name] = true
		shares, ok := spec.sharesOf(name)
		if !ok {
			return nil, errors.WithStack(&ErrMalformedSpec{
				Spec:    g.ShareSpec,
				Group:   g.Name,
				Message: "no shares given for member " + strconv.Quote(name),
			})
		}
		accounts = append(accounts, newShareAccount(name, shares))
	}
	return accounts, nil
}

func (b *TreeBuilder) parse(spec string) (*shareSpec, error) {
	if cached, ok := b.specCache.Get(spec); ok {
		return cached.(*shareSpec), nil
	}
	parsed, err := parseShareSpec(spec)
	if err != nil {
		return nil, err
	}
	b.specCache.Add(spec, parsed)
	return parsed, nil
}
