package app

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/x/cash"
	"github.com/iov-one/unichan/x/paychan"
	"github.com/iov-one/unichan/x/utils"
	"github.com/tendermint/tendermint/libs/log"
)

// Ledger is the payment channel application: wallets, channels and the
// event log behind the default decorator stack.
type Ledger struct {
	*Application
	ctrl  *paychan.Controller
	coins cash.Controller
}

// NewLedger wires the payment channel application on top of store.
func NewLedger(store unichan.CommitKVStore, clock Clock, logger log.Logger) (*Ledger, error) {
	coins := cash.NewController(cash.NewBucket())
	ctrl := paychan.NewController(coins)

	router := NewRouter()
	paychan.RegisterRoutes(router, ctrl)

	queries := unichan.NewQueryRouter()
	queries.RegisterAll(cash.RegisterQuery, paychan.RegisterQuery)

	handler := ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		utils.NewPathTagger(),
		utils.NewSavepoint().OnDeliver(),
	).WithHandler(router)

	inits := ChainInitializers(
		cash.Initializer{},
		paychan.Initializer{},
	)

	a, err := NewApplication("unichan", store, handler, inits, queries, clock)
	if err != nil {
		return nil, err
	}
	return &Ledger{
		Application: a.WithLogger(logger),
		ctrl:        ctrl,
		coins:       coins,
	}, nil
}

// TimeLeft returns how long the channel of payer stays disputed, measured
// at the current time of the clock.
func (l *Ledger) TimeLeft(payer common.Address) (time.Duration, error) {
	var left time.Duration
	err := l.Read(func(ctx unichan.Context, db unichan.ReadOnlyKVStore) error {
		var err error
		left, err = l.ctrl.TimeLeft(ctx, db, payer)
		return err
	})
	return left, err
}

// Channel returns the current state of the payer's channel.
func (l *Ledger) Channel(payer common.Address) (*paychan.Channel, error) {
	var ch *paychan.Channel
	err := l.Read(func(_ unichan.Context, db unichan.ReadOnlyKVStore) error {
		var err error
		ch, err = l.ctrl.Channel(db, payer)
		return err
	})
	return ch, err
}

// Balance returns the wallet balance of addr.
func (l *Ledger) Balance(addr common.Address) (*big.Int, error) {
	var amount *big.Int
	err := l.Read(func(_ unichan.Context, db unichan.ReadOnlyKVStore) error {
		var err error
		amount, err = l.coins.Balance(db, addr)
		return err
	})
	return amount, err
}

// Events returns the whole event log, oldest first.
func (l *Ledger) Events() ([]*paychan.Event, error) {
	var events []*paychan.Event
	err := l.Read(func(_ unichan.Context, db unichan.ReadOnlyKVStore) error {
		var err error
		events, err = l.ctrl.Events(db)
		return err
	})
	return events, err
}
