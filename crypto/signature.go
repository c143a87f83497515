package crypto

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/iov-one/unichan/errors"
)

// SignatureLength is the length of a serialized signature (r || s || v).
const SignatureLength = 65

// Signature is a recoverable secp256k1 ECDSA signature split into its
// components. V is the recovery id, either in the 0/1 form or in the 27/28
// form that Ethereum wallets produce.
type Signature struct {
	R [32]byte
	S [32]byte
	V byte
}

// SignatureFromBytes splits a 65 bytes long r || s || v signature.
func SignatureFromBytes(raw []byte) (Signature, error) {
	var sig Signature
	if len(raw) != SignatureLength {
		return sig, errors.Wrapf(errors.ErrInput, "signature must be %d bytes, got %d", SignatureLength, len(raw))
	}
	copy(sig.R[:], raw[:32])
	copy(sig.S[:], raw[32:64])
	sig.V = raw[64]
	return sig, nil
}

// Bytes returns the r || s || v representation.
func (s Signature) Bytes() []byte {
	raw := make([]byte, SignatureLength)
	copy(raw[:32], s.R[:])
	copy(raw[32:64], s.S[:])
	raw[64] = s.V
	return raw
}

// IsZero returns true if no part of the signature is set.
func (s Signature) IsZero() bool {
	return s == Signature{}
}

// String returns the 0x prefixed hex representation.
func (s Signature) String() string {
	return hexutil.Encode(s.Bytes())
}

// MarshalJSON encodes the signature as a 0x prefixed hex string.
func (s Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(hexutil.Bytes(s.Bytes()))
}

// UnmarshalJSON decodes a 0x prefixed hex string.
func (s *Signature) UnmarshalJSON(raw []byte) error {
	var b hexutil.Bytes
	if err := b.UnmarshalJSON(raw); err != nil {
		return errors.Wrapf(errors.ErrInput, "malformed signature: %s", err)
	}
	sig, err := SignatureFromBytes(b)
	if err != nil {
		return err
	}
	*s = sig
	return nil
}

// ParseSignature decodes a 0x prefixed hex encoded r || s || v signature.
func ParseSignature(enc string) (Signature, error) {
	raw, err := hexutil.Decode(enc)
	if err != nil {
		return Signature{}, errors.Wrapf(errors.ErrInput, "malformed signature: %s", err)
	}
	return SignatureFromBytes(raw)
}

// recoveryID normalizes V into the 0/1 form.
func (s Signature) recoveryID() (byte, error) {
	v := s.V
	if v >= 27 {
		v -= 27
	}
	if v > 1 {
		return 0, errors.Wrapf(errors.ErrInput, "invalid recovery id %d", s.V)
	}
	return v, nil
}
