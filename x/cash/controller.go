package cash

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/errors"
)

// CoinMover is the value transfer primitive used by other extensions.
type CoinMover interface {
	// MoveCoins moves the given amount from src to dest.
	// Either both wallets are updated or neither is.
	MoveCoins(db unichan.KVStore, src, dest common.Address, amount *big.Int) error
	// Balance returns the amount held by the address, zero if unknown.
	Balance(db unichan.ReadOnlyKVStore, addr common.Address) (*big.Int, error)
}

// Controller is the functionality needed by cash.Handler and the genesis
// initializer.
type Controller interface {
	CoinMover
	IssueCoins(db unichan.KVStore, dest common.Address, amount *big.Int) error
}

// BaseController is a simple implementation of Controller
type BaseController struct {
	bucket Bucket
}

var _ Controller = BaseController{}

// NewController returns a controller operating on the given bucket.
func NewController(bucket Bucket) BaseController {
	return BaseController{bucket: bucket}
}

// MoveCoins moves the given amount from src to dest.
// If src doesn't exist, or doesn't have sufficient
// coins, it fails.
func (c BaseController) MoveCoins(db unichan.KVStore, src, dest common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return errors.Wrap(errors.ErrAmount, "non-positive amount")
	}

	sender, err := c.bucket.Get(db, src)
	if err != nil {
		return errors.Wrap(err, "cannot load sender")
	}
	if sender == nil {
		return errors.Wrapf(errors.ErrEmpty, "empty account %s", src.Hex())
	}
	if err := sender.Subtract(amount); err != nil {
		return err
	}

	// moving to self is a balance check only
	if src == dest {
		return nil
	}

	recipient, err := c.bucket.GetOrCreate(db, dest)
	if err != nil {
		return errors.Wrap(err, "cannot load recipient")
	}
	if err := recipient.Add(amount); err != nil {
		return err
	}

	// both wallets are validated by now, save them
	if err := c.bucket.Save(db, sender); err != nil {
		return errors.Wrap(err, "cannot save sender")
	}
	if err := c.bucket.Save(db, recipient); err != nil {
		return errors.Wrap(err, "cannot save recipient")
	}
	return nil
}

// IssueCoins attempts to add the given amount of coins to
// the destination address. Fails if it overflows the wallet.
//
// Note the amount may also be negative:
// "the lord giveth and the lord taketh away"
func (c BaseController) IssueCoins(db unichan.KVStore, dest common.Address, amount *big.Int) error {
	if amount == nil {
		return errors.Wrap(errors.ErrAmount, "missing amount")
	}
	recipient, err := c.bucket.GetOrCreate(db, dest)
	if err != nil {
		return err
	}
	if err := recipient.Add(amount); err != nil {
		return err
	}
	return c.bucket.Save(db, recipient)
}

// Balance returns the amount held by the address, zero if unknown.
func (c BaseController) Balance(db unichan.ReadOnlyKVStore, addr common.Address) (*big.Int, error) {
	w, err := c.bucket.Get(db, addr)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return new(big.Int), nil
	}
	return w.Amount(), nil
}
