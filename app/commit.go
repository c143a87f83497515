package app

import (
	"time"

	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/errors"
	"github.com/iov-one/unichan/orm"
)

// CommitStore handles loading from a CommitKVStore, maintaining different
// cache wraps for Deliver and Check, and returning useful state info.
type CommitStore struct {
	committed unichan.CommitKVStore
	deliver   unichan.KVCacheWrap
	check     unichan.KVCacheWrap
}

// NewCommitStore loads the latest version of the store and sets up the
// deliver and check caches.
func NewCommitStore(store unichan.CommitKVStore) (*CommitStore, error) {
	if err := store.LoadLatestVersion(); err != nil {
		return nil, errors.Wrap(err, "load latest version")
	}
	return &CommitStore{
		committed: store,
		deliver:   store.CacheWrap(),
		check:     store.CacheWrap(),
	}, nil
}

// CommitInfo returns the current height and hash
func (cs *CommitStore) CommitInfo() (unichan.CommitID, error) {
	return cs.committed.LatestVersion()
}

// Commit will flush deliver to the underlying store and commit it. It then
// regenerates new deliver/check caches.
func (cs *CommitStore) Commit() (unichan.CommitID, error) {
	// flush deliver to store and discard check
	if err := cs.deliver.Write(); err != nil {
		return unichan.CommitID{}, errors.Wrap(err, "write deliver cache")
	}
	cs.check.Discard()

	res, err := cs.committed.Commit()
	if err != nil {
		return res, err
	}

	cs.deliver = cs.committed.CacheWrap()
	cs.check = cs.committed.CacheWrap()
	return res, nil
}

// CheckStore returns a store implementation that must be used during the
// checking phase.
func (cs *CommitStore) CheckStore() unichan.CacheableKVStore {
	return cs.check
}

// DeliverStore returns a store implementation that must be used during the
// delivery phase.
func (cs *CommitStore) DeliverStore() unichan.CacheableKVStore {
	return cs.deliver
}

// QueryStore returns a read only view of the last committed state.
func (cs *CommitStore) QueryStore() unichan.ReadOnlyKVStore {
	return cs.committed.CacheWrap()
}

//------- storing chainID ---------

// _uc: is a prefix for internal data
const (
	chainIDKey   = "_uc:chainID"
	blockTimeKey = "_uc:blockTime"
)

// loadChainID returns the chain id stored if any
func loadChainID(kv unichan.ReadOnlyKVStore) (string, error) {
	v, err := kv.Get([]byte(chainIDKey))
	if err != nil {
		return "", errors.Wrap(err, "load chain id")
	}
	return string(v), nil
}

// saveChainID stores a chain id in the kv store.
// Returns error if already set, or invalid name
func saveChainID(kv unichan.KVStore, chainID string) error {
	if !unichan.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}
	k := []byte(chainIDKey)
	exists, err := kv.Has(k)
	if err != nil {
		return errors.Wrap(err, "load chain id")
	}
	if exists {
		return errors.Wrap(errors.ErrUnauthorized, "can't modify chain id after genesis init")
	}
	if err := kv.Set(k, []byte(chainID)); err != nil {
		return errors.Wrap(err, "save chain id")
	}
	return nil
}

//------- storing the last block time ---------

// loadBlockTime returns the most recent block time committed, or the zero
// time for a fresh store.
func loadBlockTime(kv unichan.ReadOnlyKVStore) (time.Time, error) {
	raw, err := kv.Get([]byte(blockTimeKey))
	if err != nil {
		return time.Time{}, errors.Wrap(err, "load block time")
	}
	if raw == nil {
		return time.Time{}, nil
	}
	secs, err := orm.DecodeSequence(raw)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "block time")
	}
	return time.Unix(secs, 0).UTC(), nil
}

// saveBlockTime stores t with seconds precision, rounded down.
func saveBlockTime(kv unichan.KVStore, t time.Time) error {
	if err := kv.Set([]byte(blockTimeKey), orm.EncodeSequence(t.Unix())); err != nil {
		return errors.Wrap(err, "save block time")
	}
	return nil
}
