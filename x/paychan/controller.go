package paychan

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/errors"
	"github.com/iov-one/unichan/x/cash"
)

// Controller is the channel ledger. It exclusively owns the channel state
// and the event log; nothing else writes to them.
//
// Every state changing method runs on a cache wrap of the given store and
// writes it through only on success, so a failure never leaves a partial
// effect behind. The store must implement unichan.CacheableKVStore.
type Controller struct {
	channels ChannelBucket
	events   EventBucket
	mover    cash.CoinMover
}

// NewController returns a ledger moving funds with mover.
func NewController(mover cash.CoinMover) *Controller {
	return &Controller{
		channels: NewChannelBucket(),
		events:   NewEventBucket(),
		mover:    mover,
	}
}

// FundChannel opens the channel of the caller with the deposited value,
// taken from the caller's wallet.
func (c *Controller) FundChannel(ctx unichan.Context, db unichan.KVStore, caller common.Address, deposit *big.Int) (*Event, error) {
	if deposit == nil || deposit.Sign() <= 0 {
		return nil, errors.Wrap(errors.ErrAmount, "deposit must be positive")
	}
	now, err := blockNow(ctx)
	if err != nil {
		return nil, err
	}

	var event *Event
	err = atomically(db, func(db unichan.KVStore) error {
		ch, err := c.channels.GetChannel(db, caller)
		if err != nil {
			return err
		}
		if ch.IsOpen() {
			return errors.Wrapf(ErrChannelAlreadyExists, "payer %s", caller.Hex())
		}
		if err := c.mover.MoveCoins(db, caller, EscrowAccount(caller), deposit); err != nil {
			return errors.Wrap(err, "deposit")
		}

		// A channel drained by a voucher may carry a stale deadline.
		ch.Balance = new(big.Int).Set(deposit)
		ch.ClosingDeadline = 0
		if err := c.channels.SaveChannel(db, caller, ch); err != nil {
			return err
		}
		event = &Event{Kind: EventOpened, Account: caller, Amount: new(big.Int).Set(deposit), Time: now}
		_, err = c.events.Append(db, event)
		return err
	})
	if err != nil {
		return nil, err
	}

	unichan.GetLogger(ctx).Info("channel opened", "payer", caller.Hex(), "amount", deposit.String())
	return event, nil
}

// TimeLeft returns how long the channel of the payer stays disputed. It is
// zero if the channel is not disputed or the deadline already passed.
// The error is only set if the state cannot be read.
func (c *Controller) TimeLeft(ctx unichan.Context, db unichan.ReadOnlyKVStore, payer common.Address) (time.Duration, error) {
	ch, err := c.channels.GetChannel(db, payer)
	if err != nil {
		return 0, err
	}
	if ch.ClosingDeadline.IsZero() {
		return 0, nil
	}
	now, err := blockNow(ctx)
	if err != nil {
		return 0, err
	}
	if unichan.IsExpired(ctx, ch.ClosingDeadline) {
		return 0, nil
	}
	return ch.ClosingDeadline.Sub(now), nil
}

// WithdrawEarnings settles a voucher. The payer is the identity recovered
// from the voucher signature, anyone may submit it. The difference between
// the channel balance and the voucher balance is paid to the owner.
func (c *Controller) WithdrawEarnings(ctx unichan.Context, db unichan.KVStore, voucher Voucher) (*Event, error) {
	now, err := blockNow(ctx)
	if err != nil {
		return nil, err
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}

	payer, err := voucher.Signer()
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidChannel, "cannot recover voucher signer: %s", err)
	}

	var event *Event
	err = atomically(db, func(db unichan.KVStore) error {
		ch, err := c.channels.GetChannel(db, payer)
		if err != nil {
			return err
		}
		if !ch.IsOpen() {
			return errors.Wrapf(ErrInvalidChannel, "no open channel for %s", payer.Hex())
		}
		if ch.Balance.Cmp(voucher.UpdatedBalance) <= 0 {
			return errors.Wrapf(ErrInvalidChannel, "voucher balance %s not below channel balance %s", voucher.UpdatedBalance, ch.Balance)
		}

		payment := new(big.Int).Sub(ch.Balance, voucher.UpdatedBalance)
		ch.Balance = new(big.Int).Set(voucher.UpdatedBalance)
		if err := c.channels.SaveChannel(db, payer, ch); err != nil {
			return err
		}
		if err := c.mover.MoveCoins(db, EscrowAccount(payer), conf.Owner, payment); err != nil {
			return errors.Wrap(ErrTransferFailed, err.Error())
		}
		event = &Event{Kind: EventWithdrawn, Account: payer, Amount: payment, Time: now}
		_, err = c.events.Append(db, event)
		return err
	})
	if err != nil {
		return nil, err
	}

	unichan.GetLogger(ctx).Info("earnings withdrawn",
		"payer", payer.Hex(), "amount", event.Amount.String(), "owner", conf.Owner.Hex())
	return event, nil
}

// ChallengeChannel sets the closing deadline of the caller's channel to one
// dispute window from now. Repeated calls restart the window.
func (c *Controller) ChallengeChannel(ctx unichan.Context, db unichan.KVStore, caller common.Address) (*Event, error) {
	now, err := blockNow(ctx)
	if err != nil {
		return nil, err
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}

	var event *Event
	err = atomically(db, func(db unichan.KVStore) error {
		ch, err := c.channels.GetChannel(db, caller)
		if err != nil {
			return err
		}
		if !ch.IsOpen() {
			return errors.Wrapf(ErrInvalidChannel, "no open channel for %s", caller.Hex())
		}
		ch.ClosingDeadline = now.Add(conf.Window())
		if err := c.channels.SaveChannel(db, caller, ch); err != nil {
			return err
		}
		event = &Event{Kind: EventChallenged, Account: caller, Time: now}
		_, err = c.events.Append(db, event)
		return err
	})
	if err != nil {
		return nil, err
	}

	unichan.GetLogger(ctx).Info("channel challenged", "payer", caller.Hex(), "window", conf.Window())
	return event, nil
}

// DefundChannel returns the whole remaining balance to the caller, once the
// dispute window of the channel passed.
func (c *Controller) DefundChannel(ctx unichan.Context, db unichan.KVStore, caller common.Address) (*Event, error) {
	now, err := blockNow(ctx)
	if err != nil {
		return nil, err
	}

	var (
		event  *Event
		amount *big.Int
	)
	err = atomically(db, func(db unichan.KVStore) error {
		ch, err := c.channels.GetChannel(db, caller)
		if err != nil {
			return err
		}
		if !ch.IsOpen() {
			return errors.Wrapf(ErrInvalidChannel, "no open channel for %s", caller.Hex())
		}
		if ch.ClosingDeadline.IsZero() {
			return errors.Wrap(ErrInvalidChannel, "channel not challenged")
		}
		if !unichan.IsExpired(ctx, ch.ClosingDeadline) {
			return errors.Wrapf(ErrInvalidChannel, "dispute window open until %s", ch.ClosingDeadline)
		}

		amount = ch.Balance
		ch.Balance = new(big.Int)
		if err := c.channels.SaveChannel(db, caller, ch); err != nil {
			return err
		}
		if err := c.mover.MoveCoins(db, EscrowAccount(caller), caller, amount); err != nil {
			return errors.Wrap(ErrTransferFailed, err.Error())
		}
		event = &Event{Kind: EventClosed, Account: caller, Amount: new(big.Int).Set(amount), Time: now}
		_, err = c.events.Append(db, event)
		return err
	})
	if err != nil {
		return nil, err
	}

	unichan.GetLogger(ctx).Info("channel closed", "payer", caller.Hex(), "amount", amount.String())
	return event, nil
}

// Channel returns the state of the payer's channel.
func (c *Controller) Channel(db unichan.ReadOnlyKVStore, payer common.Address) (*Channel, error) {
	return c.channels.GetChannel(db, payer)
}

// Events returns the audit log, oldest first.
func (c *Controller) Events(db unichan.ReadOnlyKVStore) ([]*Event, error) {
	return c.events.Events(db)
}

// EscrowAccount returns the account holding the funds locked in the
// payer's channel. It is derived from the payer address, so no key
// controls it.
func EscrowAccount(payer common.Address) common.Address {
	return common.BytesToAddress(ethcrypto.Keccak256([]byte("paychan/escrow"), payer.Bytes()))
}

// atomically runs fn on a cache wrap of db and writes the changes only if
// fn succeeds.
func atomically(db unichan.KVStore, fn func(unichan.KVStore) error) error {
	cacheable, ok := db.(unichan.CacheableKVStore)
	if !ok {
		return errors.Wrapf(errors.ErrDatabase, "%T does not support cache wrap", db)
	}
	cache := cacheable.CacheWrap()
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

func blockNow(ctx unichan.Context) (unichan.UnixTime, error) {
	t, ok := unichan.BlockTime(ctx)
	if !ok {
		return 0, errors.Wrap(errors.ErrState, "block time not present in context")
	}
	return unichan.AsUnixTime(t), nil
}
