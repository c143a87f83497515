/*
Package orm provides an easy to use db wrapper

Break state space into prefixed sections called Buckets.
* Each bucket contains only one type of object.
* Objects are addressed by a primary key, which may be composite.
* Sequences hand out ordered keys for append-only logs.
* Easy queries for one and iteration over a prefix.
*/
package orm

import (
	"fmt"
	"regexp"

	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/errors"
)

const (
	// SeqID is a constant to use to get a default ID sequence
	SeqID = "id"
)

var (
	isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString
)

// Bucket is a generic holder that stores data under a prefix
// and hands out sequences.
//
// This is a generic building block that should generally
// be embedded in a type-safe wrapper to ensure all data
// is the same type.
type Bucket struct {
	name   string
	prefix []byte
	proto  Cloneable
}

var _ unichan.QueryHandler = Bucket{}

// NewBucket creates a bucket to store data
func NewBucket(name string, proto Cloneable) Bucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("Illegal bucket: %s", name))
	}

	return Bucket{
		name:   name,
		prefix: append([]byte(name), ':'),
		proto:  proto,
	}
}

// Name returns the name of the bucket, also its key prefix
func (b Bucket) Name() string {
	return b.name
}

// Register registers this Bucket for queries.
// You can define a name here for queries, which is
// different than the bucket name used to prefix the data
func (b Bucket) Register(name string, r unichan.QueryRouter) {
	if name == "" {
		name = b.name
	}
	r.Register("/"+name, b)
}

// Query handles queries from the QueryRouter
func (b Bucket) Query(db unichan.ReadOnlyKVStore, mod string, data []byte) ([]unichan.Model, error) {
	switch mod {
	case unichan.KeyQueryMod:
		key := b.DBKey(data)
		value, err := db.Get(key)
		if err != nil {
			return nil, err
		}
		// return nothing on miss
		if value == nil {
			return nil, nil
		}
		res := []unichan.Model{{Key: key, Value: value}}
		return res, nil
	case unichan.PrefixQueryMod:
		return queryPrefix(db, b.DBKey(data))
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown mod: %s", mod)
	}
}

// DBKey is the full key we store in the db, including prefix
// We copy into a new array rather than use append, as we don't
// want consecutive calls to overwrite the same byte array.
func (b Bucket) DBKey(key []byte) []byte {
	l := len(b.prefix)
	out := make([]byte, l+len(key))
	copy(out, b.prefix)
	copy(out[l:], key)
	return out
}

// Get one element, nil if it does not exist
func (b Bucket) Get(db unichan.ReadOnlyKVStore, key []byte) (Object, error) {
	bz, err := db.Get(b.DBKey(key))
	if err != nil {
		return nil, err
	}
	if bz == nil {
		return nil, nil
	}
	return b.Parse(key, bz)
}

// Has returns true if an element is stored under this key
func (b Bucket) Has(db unichan.ReadOnlyKVStore, key []byte) (bool, error) {
	return db.Has(b.DBKey(key))
}

// Parse takes a key and value data (unichan.Model) and
// reconstructs the data this Bucket would return.
//
// Used internally as part of Get.
// It is exposed mainly as a test helper, but can work for
// any code that wants to parse
func (b Bucket) Parse(key, value []byte) (Object, error) {
	obj := b.proto.Clone()
	if err := obj.Value().Unmarshal(value); err != nil {
		return nil, errors.Wrapf(errors.ErrState, "cannot unmarshal %T: %s", obj.Value(), err)
	}
	obj.SetKey(key)
	return obj, nil
}

// Save will write a model, it must be of the same type as proto
func (b Bucket) Save(db unichan.KVStore, model Object) error {
	if err := model.Validate(); err != nil {
		return err
	}
	bz, err := model.Value().Marshal()
	if err != nil {
		return err
	}
	// a nil value reads back as a missing key
	if bz == nil {
		bz = []byte{}
	}
	return db.Set(b.DBKey(model.Key()), bz)
}

// Delete will remove the value at a key
func (b Bucket) Delete(db unichan.KVStore, key []byte) error {
	return db.Delete(b.DBKey(key))
}

// All returns every object in the bucket ordered by key
func (b Bucket) All(db unichan.ReadOnlyKVStore) ([]Object, error) {
	models, err := queryPrefix(db, b.prefix)
	if err != nil {
		return nil, err
	}
	objs := make([]Object, 0, len(models))
	for _, m := range models {
		obj, err := b.Parse(m.Key[len(b.prefix):], m.Value)
		if err != nil {
			return nil, err
		}
		objs = append(objs, obj)
	}
	return objs, nil
}

// Sequence returns a Sequence by name
func (b Bucket) Sequence(name string) Sequence {
	return NewSequence(b.name, name)
}
