package chantest

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/crypto"
	"github.com/tendermint/tendermint/libs/log"
)

// NewKey returns a freshly generated secp256k1 key.
func NewKey(t testing.TB) *crypto.PrivateKey {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("cannot generate key: %s", err)
	}
	return key
}

// RandomAddr returns the address of a freshly generated key.
func RandomAddr(t testing.TB) common.Address {
	t.Helper()
	return NewKey(t).Address()
}

// ParseAddress takes an address in a human readable format and returns its
// binary representation.
func ParseAddress(t testing.TB, encodedAddress string) common.Address {
	t.Helper()

	addr, err := unichan.ParseAddress(encodedAddress)
	if err != nil {
		t.Fatalf("cannot parse %q address: %s", encodedAddress, err)
	}
	return addr
}

// Context returns a context with the block time of the clock and a test
// logger. Pass a nil clock for a context without block time.
func Context(t testing.TB, clock *Clock) unichan.Context {
	t.Helper()
	ctx := unichan.WithLogger(context.Background(), log.TestingLogger())
	ctx = unichan.WithChainID(ctx, "test-chain")
	if clock != nil {
		ctx = unichan.WithBlockTime(ctx, clock.Now())
	}
	return ctx
}
