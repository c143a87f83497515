package paychan

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/chantest"
	"github.com/iov-one/unichan/crypto"
	"github.com/iov-one/unichan/errors"
	"github.com/iov-one/unichan/gconf"
	"github.com/iov-one/unichan/store"
	"github.com/iov-one/unichan/x/cash"
)

// ledger bundles everything a ledger test needs.
type ledger struct {
	ctrl  *Controller
	db    unichan.CacheableKVStore
	clock *chantest.Clock
	owner common.Address
	payer *crypto.PrivateKey
	mover *failingMover
}

// newLedger returns a ledger with a 30 seconds dispute window and a payer
// holding 1000 in its wallet.
func newLedger(t testing.TB) *ledger {
	t.Helper()

	db := store.MemStore()
	owner := chantest.RandomAddr(t)
	conf := Configuration{Owner: owner, DisputeWindow: 30}
	if err := gconf.Save(db, confPkg, &conf); err != nil {
		t.Fatalf("cannot save configuration: %s", err)
	}

	payer := chantest.NewKey(t)
	mover := &failingMover{CoinMover: cash.NewController(cash.NewBucket())}
	if err := cash.NewController(cash.NewBucket()).IssueCoins(db, payer.Address(), big.NewInt(1000)); err != nil {
		t.Fatalf("cannot issue coins: %s", err)
	}

	return &ledger{
		ctrl:  NewController(mover),
		db:    db,
		clock: chantest.NewClock(),
		owner: owner,
		payer: payer,
		mover: mover,
	}
}

func (l *ledger) ctx(t testing.TB) unichan.Context {
	return chantest.Context(t, l.clock)
}

func (l *ledger) balance(t testing.TB, addr common.Address) int64 {
	t.Helper()
	amount, err := l.mover.Balance(l.db, addr)
	if err != nil {
		t.Fatalf("cannot read balance: %s", err)
	}
	return amount.Int64()
}

func (l *ledger) channel(t testing.TB, payer common.Address) *Channel {
	t.Helper()
	ch, err := l.ctrl.Channel(l.db, payer)
	if err != nil {
		t.Fatalf("cannot read channel: %s", err)
	}
	return ch
}

func (l *ledger) events(t testing.TB) []*Event {
	t.Helper()
	events, err := l.ctrl.Events(l.db)
	if err != nil {
		t.Fatalf("cannot read events: %s", err)
	}
	return events
}

func (l *ledger) voucher(t testing.TB, key *crypto.PrivateKey, updatedBalance int64) Voucher {
	t.Helper()
	v, err := NewVoucher(key, big.NewInt(updatedBalance))
	if err != nil {
		t.Fatalf("cannot sign voucher: %s", err)
	}
	return v
}

// failingMover delegates to the cash controller unless FailTo matches the
// destination of a move.
type failingMover struct {
	cash.CoinMover
	FailTo *common.Address
}

func (m *failingMover) MoveCoins(db unichan.KVStore, src, dest common.Address, amount *big.Int) error {
	if m.FailTo != nil && *m.FailTo == dest {
		return errors.Wrap(errors.ErrDatabase, "transfer rejected")
	}
	return m.CoinMover.MoveCoins(db, src, dest, amount)
}
