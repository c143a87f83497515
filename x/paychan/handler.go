package paychan

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/errors"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	fundChannelCost      int64 = 300
	withdrawEarningsCost int64 = 50
	challengeChannelCost int64 = 10
	defundChannelCost    int64 = 100
)

// RegisterQuery registers the channel and event buckets as "/paychans"
// and "/pcevents".
func RegisterQuery(qr unichan.QueryRouter) {
	NewChannelBucket().Register("paychans", qr)
	NewEventBucket().Register("pcevents", qr)
}

// RegisterRoutes registers a handler for every ledger message.
func RegisterRoutes(r unichan.Registry, ctrl *Controller) {
	r.Handle(&FundMsg{}, &fundHandler{ctrl: ctrl})
	r.Handle(&WithdrawMsg{}, &withdrawHandler{ctrl: ctrl})
	r.Handle(&ChallengeMsg{}, &challengeHandler{ctrl: ctrl})
	r.Handle(&DefundMsg{}, &defundHandler{ctrl: ctrl})
}

type fundHandler struct {
	ctrl *Controller
}

var _ unichan.Handler = (*fundHandler)(nil)

func (h *fundHandler) Check(ctx unichan.Context, db unichan.KVStore, tx unichan.Tx) (*unichan.CheckResult, error) {
	var msg FundMsg
	if err := unichan.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	caller, err := authenticated(tx)
	if err != nil {
		return nil, err
	}
	err = dryRun(ctx, db, func(ctx unichan.Context, db unichan.KVStore) error {
		_, err := h.ctrl.FundChannel(ctx, db, caller, msg.Amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &unichan.CheckResult{GasAllocated: fundChannelCost}, nil
}

func (h *fundHandler) Deliver(ctx unichan.Context, db unichan.KVStore, tx unichan.Tx) (*unichan.DeliverResult, error) {
	var msg FundMsg
	if err := unichan.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	caller, err := authenticated(tx)
	if err != nil {
		return nil, err
	}
	event, err := h.ctrl.FundChannel(ctx, db, caller, msg.Amount)
	if err != nil {
		return nil, err
	}
	return &unichan.DeliverResult{Data: EscrowAccount(event.Account).Bytes(), Tags: event.Tags()}, nil
}

type withdrawHandler struct {
	ctrl *Controller
}

var _ unichan.Handler = (*withdrawHandler)(nil)

func (h *withdrawHandler) Check(ctx unichan.Context, db unichan.KVStore, tx unichan.Tx) (*unichan.CheckResult, error) {
	var msg WithdrawMsg
	if err := unichan.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	err := dryRun(ctx, db, func(ctx unichan.Context, db unichan.KVStore) error {
		_, err := h.ctrl.WithdrawEarnings(ctx, db, msg.Voucher)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &unichan.CheckResult{GasAllocated: withdrawEarningsCost}, nil
}

func (h *withdrawHandler) Deliver(ctx unichan.Context, db unichan.KVStore, tx unichan.Tx) (*unichan.DeliverResult, error) {
	var msg WithdrawMsg
	if err := unichan.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	event, err := h.ctrl.WithdrawEarnings(ctx, db, msg.Voucher)
	if err != nil {
		return nil, err
	}
	return &unichan.DeliverResult{Data: []byte(event.Amount.String()), Tags: event.Tags()}, nil
}

type challengeHandler struct {
	ctrl *Controller
}

var _ unichan.Handler = (*challengeHandler)(nil)

func (h *challengeHandler) Check(ctx unichan.Context, db unichan.KVStore, tx unichan.Tx) (*unichan.CheckResult, error) {
	var msg ChallengeMsg
	if err := unichan.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	caller, err := authenticated(tx)
	if err != nil {
		return nil, err
	}
	err = dryRun(ctx, db, func(ctx unichan.Context, db unichan.KVStore) error {
		_, err := h.ctrl.ChallengeChannel(ctx, db, caller)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &unichan.CheckResult{GasAllocated: challengeChannelCost}, nil
}

func (h *challengeHandler) Deliver(ctx unichan.Context, db unichan.KVStore, tx unichan.Tx) (*unichan.DeliverResult, error) {
	var msg ChallengeMsg
	if err := unichan.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	caller, err := authenticated(tx)
	if err != nil {
		return nil, err
	}
	event, err := h.ctrl.ChallengeChannel(ctx, db, caller)
	if err != nil {
		return nil, err
	}
	return &unichan.DeliverResult{Tags: event.Tags()}, nil
}

type defundHandler struct {
	ctrl *Controller
}

var _ unichan.Handler = (*defundHandler)(nil)

func (h *defundHandler) Check(ctx unichan.Context, db unichan.KVStore, tx unichan.Tx) (*unichan.CheckResult, error) {
	var msg DefundMsg
	if err := unichan.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	caller, err := authenticated(tx)
	if err != nil {
		return nil, err
	}
	err = dryRun(ctx, db, func(ctx unichan.Context, db unichan.KVStore) error {
		_, err := h.ctrl.DefundChannel(ctx, db, caller)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &unichan.CheckResult{GasAllocated: defundChannelCost}, nil
}

func (h *defundHandler) Deliver(ctx unichan.Context, db unichan.KVStore, tx unichan.Tx) (*unichan.DeliverResult, error) {
	var msg DefundMsg
	if err := unichan.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	caller, err := authenticated(tx)
	if err != nil {
		return nil, err
	}
	event, err := h.ctrl.DefundChannel(ctx, db, caller)
	if err != nil {
		return nil, err
	}
	return &unichan.DeliverResult{Tags: event.Tags()}, nil
}

// authenticated returns the caller of the transaction. Channel owners
// must be known.
func authenticated(tx unichan.Tx) (common.Address, error) {
	caller := tx.GetCaller()
	if caller == (common.Address{}) {
		return common.Address{}, errors.Wrap(errors.ErrUnauthorized, "missing caller")
	}
	return caller, nil
}

// dryRun executes fn on a cache wrap that is always discarded. Check uses
// it to validate a message against the current state without changing it.
// Nothing fn logs is written, since none of its changes happen.
func dryRun(ctx unichan.Context, db unichan.KVStore, fn func(unichan.Context, unichan.KVStore) error) error {
	cacheable, ok := db.(unichan.CacheableKVStore)
	if !ok {
		return errors.Wrapf(errors.ErrDatabase, "%T does not support cache wrap", db)
	}
	cache := cacheable.CacheWrap()
	defer cache.Discard()
	return fn(unichan.WithLogger(ctx, log.NewNopLogger()), cache)
}
