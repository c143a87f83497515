package orm

import (
	"encoding/binary"

	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/errors"
)

// Sequence is a persisted counter handing out 8 byte keys. Each key is
// greater than the previous one, both as a number and by bytes.Compare, so
// values stored under them iterate in the order they were added.
type Sequence struct {
	id []byte
}

// NewSequence returns a sequence counter stored under
//    _s.<bucket>:<name>
func NewSequence(bucket, name string) Sequence {
	return Sequence{id: []byte("_s." + bucket + ":" + name)}
}

// NextVal increments the sequence and returns the new value as a key.
func (s Sequence) NextVal(db unichan.KVStore) ([]byte, error) {
	raw, err := db.Get(s.id)
	if err != nil {
		return nil, err
	}
	val, err := DecodeSequence(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "sequence %s", s.id)
	}
	key := EncodeSequence(val + 1)
	if err := db.Set(s.id, key); err != nil {
		return nil, err
	}
	return key, nil
}

// EncodeSequence returns the 8 byte big endian form of val.
func EncodeSequence(val int64) []byte {
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, uint64(val))
	return raw
}

// DecodeSequence reads a value written by EncodeSequence. Nil decodes as
// zero, anything but 8 bytes is an error.
func DecodeSequence(raw []byte) (int64, error) {
	if raw == nil {
		return 0, nil
	}
	if len(raw) != 8 {
		return 0, errors.Wrapf(errors.ErrInput, "sequence of %d bytes, want 8", len(raw))
	}
	return int64(binary.BigEndian.Uint64(raw)), nil
}
