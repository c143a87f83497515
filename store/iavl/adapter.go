package iavl

import (
	"github.com/tendermint/iavl"
	dbm "github.com/tendermint/tendermint/libs/db"

	"github.com/iov-one/unichan/errors"
	"github.com/iov-one/unichan/store"
)

// cacheSize is the number of iavl nodes kept in memory
const cacheSize = 10000

// CommitStore manages a iavl committed state
type CommitStore struct {
	tree *iavl.MutableTree
	db   dbm.DB
}

var _ store.CommitKVStore = CommitStore{}

// NewCommitStore creates a new store with disk backing
// under dir/name.db
func NewCommitStore(dir, name string) (CommitStore, error) {
	db, err := dbm.NewGoLevelDB(name, dir)
	if err != nil {
		return CommitStore{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return newCommitStore(db), nil
}

// MockCommitStore creates a new in-memory store for testing
func MockCommitStore() CommitStore {
	return newCommitStore(dbm.NewMemDB())
}

func newCommitStore(db dbm.DB) CommitStore {
	return CommitStore{
		tree: iavl.NewMutableTree(db, cacheSize),
		db:   db,
	}
}

// Get returns the value at last committed state
// returns nil iff key doesn't exist.
func (s CommitStore) Get(key []byte) ([]byte, error) {
	version := s.tree.Version()
	_, val := s.tree.GetVersioned(key, version)
	return val, nil
}

// Commit the next version to disk, and returns info
func (s CommitStore) Commit() (store.CommitID, error) {
	hash, version, err := s.tree.SaveVersion()
	if err != nil {
		return store.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return store.CommitID{
		Version: version,
		Hash:    hash,
	}, nil
}

// LoadLatestVersion loads the latest persisted version.
// If there was a crash during the last commit, it is guaranteed
// to return a stable state, even if older.
func (s CommitStore) LoadLatestVersion() error {
	if _, err := s.tree.Load(); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// LatestVersion returns info on the latest version saved to disk
func (s CommitStore) LatestVersion() (store.CommitID, error) {
	return store.CommitID{
		Version: s.tree.Version(),
		Hash:    s.tree.Hash(),
	}, nil
}

// Close releases the underlying database
func (s CommitStore) Close() {
	s.db.Close()
}

// CacheWrap gives us a savepoint to perform actions.
// Writing the cache moves the changes into the working tree,
// they are persisted with the next Commit.
func (s CommitStore) CacheWrap() store.KVCacheWrap {
	return s.Adapter().CacheWrap()
}

// Adapter returns a wrapper around the working tree.
// Changes made through it become durable on Commit.
func (s CommitStore) Adapter() store.CacheableKVStore {
	return adapter{tree: s.tree}
}

// adapter converts the working tree into a KVStore interface
type adapter struct {
	tree *iavl.MutableTree
}

var _ store.CacheableKVStore = adapter{}

// Get returns nil iff key doesn't exist.
func (a adapter) Get(key []byte) ([]byte, error) {
	_, val := a.tree.Get(key)
	return val, nil
}

// Has checks if a key exists.
func (a adapter) Has(key []byte) (bool, error) {
	return a.tree.Has(key), nil
}

// Set adds a new value
func (a adapter) Set(key, value []byte) error {
	// iavl refuses nil values
	if value == nil {
		value = []byte{}
	}
	a.tree.Set(key, value)
	return nil
}

// Delete removes from the tree
func (a adapter) Delete(key []byte) error {
	a.tree.Remove(key)
	return nil
}

// NewBatch returns a batch that can write multiple ops
func (a adapter) NewBatch() store.Batch {
	return store.NewNonAtomicBatch(a)
}

// CacheWrap wraps us with a btree
func (a adapter) CacheWrap() store.KVCacheWrap {
	return store.NewBTreeCacheWrap(a, a.NewBatch(), nil)
}

// Iterator over a domain of keys in ascending order. End is exclusive.
func (a adapter) Iterator(start, end []byte) (store.Iterator, error) {
	return a.collect(start, end, true), nil
}

// ReverseIterator over a domain of keys in descending order. End is exclusive.
func (a adapter) ReverseIterator(start, end []byte) (store.Iterator, error) {
	return a.collect(start, end, false), nil
}

func (a adapter) collect(start, end []byte, ascending bool) store.Iterator {
	var res []store.Model
	add := func(key []byte, value []byte) bool {
		res = append(res, store.Model{Key: key, Value: value})
		return false
	}
	a.tree.IterateRange(start, end, ascending, add)
	return store.NewSliceIterator(res)
}
