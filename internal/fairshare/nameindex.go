package fairshare

import (
	"github.com/hashicorp/go-memdb"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"github.com/armadaproject/fairshare/internal/fairshare/tree"
)

const (
	namesTable = "names"
	idIndex    = "id"  // unique index over (key, node)
	keyIndex   = "key" // index for looking up nodes by name or composite path
)

type nameEntry struct {
	Key  string
	Node int
}

// NameIndex maps entity names, and "parent/leaf" composite keys of leaves, to node ids.
// Names are only unique among siblings, so a key may map to several nodes.
// NameIndex is implemented on top of https://github.com/hashicorp/go-memdb.
type NameIndex struct {
	db *memdb.MemDB
}

func NewNameIndex() (*NameIndex, error) {
	db, err := memdb.NewMemDB(nameIndexSchema())
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &NameIndex{db: db}, nil
}

// Insert indexes node under each of keys.
func (idx *NameIndex) Insert(node tree.NodeId, keys ...string) error {
	txn := idx.db.Txn(true)
	defer txn.Abort()
	for _, key := range keys {
		if err := txn.Insert(namesTable, &nameEntry{Key: key, Node: int(node)}); err != nil {
			return errors.WithStack(err)
		}
	}
	txn.Commit()
	return nil
}

// Get returns the ids of all nodes indexed under key in ascending order.
func (idx *NameIndex) Get(key string) ([]tree.NodeId, error) {
	txn := idx.db.Txn(false)
	it, err := txn.Get(namesTable, keyIndex, key)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	var rv []tree.NodeId
	for obj := it.Next(); obj != nil; obj = it.Next() {
		rv = append(rv, tree.NodeId(obj.(*nameEntry).Node))
	}
	slices.Sort(rv)
	return rv, nil
}

// Len returns the number of indexed keys.
func (idx *NameIndex) Len() (int, error) {
	txn := idx.db.Txn(false)
	it, err := txn.Get(namesTable, idIndex)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	n := 0
	for obj := it.Next(); obj != nil; obj = it.Next() {
		n++
	}
	return n, nil
}

func nameIndexSchema() *memdb.DBSchema {
	indexes := make(map[string]*memdb.IndexSchema)
	indexes[idIndex] = &memdb.IndexSchema{
		Name:   idIndex,
		Unique: true,
		Indexer: &memdb.CompoundIndex{
			Indexes: []memdb.Indexer{
				&memdb.StringFieldIndex{Field: "Key"},
				&memdb.IntFieldIndex{Field: "Node"},
			},
		},
	}
	indexes[keyIndex] = &memdb.IndexSchema{
		Name:    keyIndex,
		Unique:  false,
		Indexer: &memdb.StringFieldIndex{Field: "Key"},
	}
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			namesTable: {
				Name:    namesTable,
				Indexes: indexes,
			},
		},
	}
}
