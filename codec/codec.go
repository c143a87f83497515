/*
Package codec serializes models using protocol buffers.

Every persisted model declares a plain Go struct with protobuf field tags
mirroring its .proto message and delegates its Marshal and Unmarshal
methods to this package:

	message Channel {
	  bytes balance = 1;
	  int64 closing_deadline = 2;
	}

Integers wider than 64 bits are stored as their big endian bytes.
*/
package codec

import (
	"math/big"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/unichan/errors"
)

// Marshal serializes a protobuf message.
func Marshal(msg proto.Message) ([]byte, error) {
	raw, err := proto.Marshal(msg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrModel, err.Error())
	}
	return raw, nil
}

// Unmarshal loads a protobuf message from its serialized form.
func Unmarshal(raw []byte, msg proto.Message) error {
	if err := proto.Unmarshal(raw, msg); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return nil
}

// BigIntBytes returns the big endian bytes of a non negative integer. Zero
// and nil are both represented by an empty slice, so the field is omitted.
func BigIntBytes(v *big.Int) ([]byte, error) {
	if v == nil || v.Sign() == 0 {
		return nil, nil
	}
	if v.Sign() < 0 {
		return nil, errors.Wrap(errors.ErrAmount, "negative integer")
	}
	return v.Bytes(), nil
}

// BytesBigInt is the reverse of BigIntBytes.
func BytesBigInt(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}
