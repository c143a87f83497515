package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// Clock provides the time used as block time for every operation.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the time of the host.
type SystemClock struct{}

var _ Clock = SystemClock{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Application executes transactions one at a time against a commit store.
//
// Every state touching call holds the same lock, so handlers never run
// concurrently. The block time of each call is read from the clock. The
// application refuses to run with a clock that moves backwards.
type Application struct {
	mu sync.Mutex

	// name is used in the logs
	name   string
	logger log.Logger

	store       *CommitStore
	handler     unichan.Handler
	initializer unichan.Initializer
	queryRouter unichan.QueryRouter
	clock       Clock

	// chainID is loaded from db in initialization
	// saved once in InitChain
	chainID string

	// last is the most recent block time handed to a handler. It is
	// persisted on commit, so the guard holds across restarts.
	last time.Time
}

// NewApplication loads the latest state of the store and returns an
// application ready to process transactions. InitChain must be called once
// in the lifetime of the store, before any transaction.
func NewApplication(
	name string,
	store unichan.CommitKVStore,
	handler unichan.Handler,
	initializer unichan.Initializer,
	queryRouter unichan.QueryRouter,
	clock Clock,
) (*Application, error) {
	cs, err := NewCommitStore(store)
	if err != nil {
		return nil, err
	}
	chainID, err := loadChainID(cs.DeliverStore())
	if err != nil {
		return nil, err
	}
	last, err := loadBlockTime(cs.DeliverStore())
	if err != nil {
		return nil, err
	}
	return &Application{
		name:        name,
		logger:      log.NewNopLogger(),
		store:       cs,
		handler:     handler,
		initializer: initializer,
		queryRouter: queryRouter,
		clock:       clock,
		chainID:     chainID,
		last:        last,
	}, nil
}

// WithLogger sets the logger on the Application and returns it,
// to make it easy to chain in initialization
func (a *Application) WithLogger(logger log.Logger) *Application {
	a.logger = logger
	return a
}

// Logger returns the application base logger
func (a *Application) Logger() log.Logger {
	return a.logger
}

// ChainID returns the chain id stored at genesis, or an empty string if
// the chain was not initialized yet.
func (a *Application) ChainID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.chainID
}

// InitChain stores the chain id and passes the genesis app state to the
// initializer. It can be called only once in the lifetime of the store.
func (a *Application) InitChain(gen Genesis) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.chainID != "" {
		return errors.Wrapf(errors.ErrState, "app state previously loaded for chain %s", a.chainID)
	}
	if len(gen.AppState) == 0 {
		return errors.Wrap(errors.ErrEmpty, "app_state not set in genesis")
	}

	db := a.store.DeliverStore().CacheWrap()
	if err := saveChainID(db, gen.ChainID); err != nil {
		db.Discard()
		return err
	}
	if err := a.initializer.FromGenesis(gen.AppState, db); err != nil {
		db.Discard()
		return errors.Wrap(err, "genesis")
	}
	if err := db.Write(); err != nil {
		return errors.Wrap(err, "write genesis")
	}
	a.chainID = gen.ChainID
	a.logger.Info("chain initialized", "app", a.name, "chain_id", gen.ChainID)
	return nil
}

// Deliver runs the transaction against the deliver store.
func (a *Application) Deliver(tx unichan.Tx) (*unichan.DeliverResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	ctx, err := a.blockContext("deliver", tx)
	if err != nil {
		return nil, err
	}
	return a.handler.Deliver(ctx, a.store.DeliverStore(), tx)
}

// Check validates the transaction against the check store. Handlers must
// not change the state on Check.
func (a *Application) Check(tx unichan.Tx) (*unichan.CheckResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	ctx, err := a.blockContext("check", tx)
	if err != nil {
		return nil, err
	}
	return a.handler.Check(ctx, a.store.CheckStore(), tx)
}

// Read runs fn with a block context on the deliver store, under the
// application lock. Use it for read only operations that depend on the
// current time, such as the remaining dispute window of a channel.
func (a *Application) Read(fn func(ctx unichan.Context, db unichan.ReadOnlyKVStore) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	ctx, err := a.blockContext("read", nil)
	if err != nil {
		return err
	}
	return fn(ctx, a.store.DeliverStore())
}

/*
Query gets data from the last committed state.

Path may be "/<bucket>". It may be followed by "?prefix" to make a prefix
query, otherwise data is the exact key.
*/
func (a *Application) Query(path string, data []byte) ([]unichan.Model, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	path, mod := splitPath(path)
	qh := a.queryRouter.Handler(path)
	if qh == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "unexpected query path: %v", path)
	}
	return qh.Query(a.store.QueryStore(), mod, data)
}

// splitPath splits out the real path along with the query
// modifier (everything after the ?)
func splitPath(path string) (string, string) {
	var mod string
	chunks := strings.SplitN(path, "?", 2)
	if len(chunks) == 2 {
		path = chunks[0]
		mod = chunks[1]
	}
	return path, mod
}

// Commit writes the delivered changes and the latest block time to the
// store.
func (a *Application) Commit() (unichan.CommitID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.last.IsZero() {
		if err := saveBlockTime(a.store.DeliverStore(), a.last); err != nil {
			return unichan.CommitID{}, err
		}
	}
	commitID, err := a.store.Commit()
	if err != nil {
		return commitID, err
	}
	a.logger.Debug("commit synced",
		"height", commitID.Version,
		"hash", fmt.Sprintf("%X", commitID.Hash),
	)
	return commitID, nil
}

// blockContext returns the context of a single call. The caller must hold
// the lock.
func (a *Application) blockContext(call string, tx unichan.Tx) (unichan.Context, error) {
	if a.chainID == "" {
		return nil, errors.Wrap(errors.ErrState, "chain not initialized")
	}
	now := a.clock.Now()
	if now.IsZero() {
		return nil, errors.Wrap(errors.ErrState, "clock returned zero time")
	}
	if now.Before(a.last) {
		return nil, errors.Wrapf(errors.ErrState, "clock moved backwards from %s to %s", a.last, now)
	}
	a.last = now

	ctx := unichan.WithLogger(context.Background(), a.logger)
	ctx = unichan.WithChainID(ctx, a.chainID)
	ctx = unichan.WithBlockTime(ctx, now)
	if tx != nil {
		ctx = unichan.WithCaller(ctx, tx.GetCaller())
		ctx = unichan.WithLogInfo(ctx, "call", call, "path", unichan.GetPath(tx))
	} else {
		ctx = unichan.WithLogInfo(ctx, "call", call)
	}
	return ctx, nil
}
