package cash

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/chantest"
	"github.com/iov-one/unichan/errors"
	"github.com/iov-one/unichan/store"
)

func balance(t *testing.T, kv unichan.ReadOnlyKVStore, addr common.Address) int64 {
	t.Helper()
	amount, err := NewController(NewBucket()).Balance(kv, addr)
	require.NoError(t, err)
	return amount.Int64()
}

func TestIssueCoins(t *testing.T) {
	kv := store.MemStore()
	addr := chantest.RandomAddr(t)
	addr2 := chantest.RandomAddr(t)

	controller := NewController(NewBucket())

	w, err := NewBucket().Get(kv, addr)
	require.NoError(t, err)
	assert.Nil(t, w)

	// issue positive
	require.NoError(t, controller.IssueCoins(kv, addr, big.NewInt(500)))
	assert.Equal(t, int64(500), balance(t, kv, addr))
	assert.Equal(t, int64(0), balance(t, kv, addr2))

	// issue negative
	require.NoError(t, controller.IssueCoins(kv, addr, big.NewInt(-400)))
	assert.Equal(t, int64(100), balance(t, kv, addr))

	// set to zero is fine
	require.NoError(t, controller.IssueCoins(kv, addr, big.NewInt(-100)))
	w, err = NewBucket().Get(kv, addr)
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.True(t, w.IsEmpty())

	// below zero is rejected
	err = controller.IssueCoins(kv, addr, big.NewInt(-1))
	assert.True(t, errors.ErrInsufficientAmount.Is(err), "%+v", err)

	// overflow is rejected
	require.NoError(t, controller.IssueCoins(kv, addr2, math.MaxBig256))
	err = controller.IssueCoins(kv, addr2, big.NewInt(1))
	assert.True(t, errors.ErrOverflow.Is(err), "%+v", err)
}

func TestMoveCoins(t *testing.T) {
	src := chantest.RandomAddr(t)
	dst := chantest.RandomAddr(t)
	full := chantest.RandomAddr(t)

	cases := map[string]struct {
		from, to common.Address
		amount   *big.Int
		wantErr  *errors.Error
		wantSrc  int64
		wantDst  int64
	}{
		"move part of the funds": {
			from: src, to: dst, amount: big.NewInt(30),
			wantSrc: 70, wantDst: 30,
		},
		"move all funds": {
			from: src, to: dst, amount: big.NewInt(100),
			wantSrc: 0, wantDst: 0 + 100,
		},
		"insufficient funds": {
			from: src, to: dst, amount: big.NewInt(101),
			wantErr: errors.ErrInsufficientAmount,
			wantSrc: 100,
		},
		"zero amount": {
			from: src, to: dst, amount: big.NewInt(0),
			wantErr: errors.ErrAmount,
			wantSrc: 100,
		},
		"negative amount": {
			from: src, to: dst, amount: big.NewInt(-5),
			wantErr: errors.ErrAmount,
			wantSrc: 100,
		},
		"unknown sender": {
			from: dst, to: src, amount: big.NewInt(1),
			wantErr: errors.ErrEmpty,
			wantSrc: 100,
		},
		"recipient overflow leaves sender untouched": {
			from: src, to: full, amount: big.NewInt(1),
			wantErr: errors.ErrOverflow,
			wantSrc: 100,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			kv := store.MemStore()
			controller := NewController(NewBucket())
			require.NoError(t, controller.IssueCoins(kv, src, big.NewInt(100)))
			require.NoError(t, controller.IssueCoins(kv, full, math.MaxBig256))

			err := controller.MoveCoins(kv, tc.from, tc.to, tc.amount)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			assert.Equal(t, tc.wantSrc, balance(t, kv, src))
			assert.Equal(t, tc.wantDst, balance(t, kv, dst))
		})
	}
}

func TestWalletQuery(t *testing.T) {
	kv := store.MemStore()
	addr := chantest.RandomAddr(t)
	require.NoError(t, NewController(NewBucket()).IssueCoins(kv, addr, big.NewInt(42)))

	qr := unichan.NewQueryRouter()
	RegisterQuery(qr)
	res, err := qr.Handler("/wallets").Query(kv, unichan.KeyQueryMod, addr.Bytes())
	require.NoError(t, err)
	require.Len(t, res, 1)

	obj, err := NewBucket().Parse(addr.Bytes(), res[0].Value)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(42), obj.(*Wallet).Amount())
	assert.Equal(t, addr, obj.(*Wallet).Address())
}
