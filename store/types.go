package store

import "github.com/iov-one/unichan"

// Move references for all storage types into this package
// for shorter names everywhere

type (
	ReadOnlyKVStore  = unichan.ReadOnlyKVStore
	SetDeleter       = unichan.SetDeleter
	KVStore          = unichan.KVStore
	Batch            = unichan.Batch
	Iterator         = unichan.Iterator
	CacheableKVStore = unichan.CacheableKVStore
	KVCacheWrap      = unichan.KVCacheWrap
	CommitKVStore    = unichan.CommitKVStore
	CommitID         = unichan.CommitID
	Model            = unichan.Model
)
