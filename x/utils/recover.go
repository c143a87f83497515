package utils

import (
	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/errors"
)

// Recovery is a decorator that turns a panic raised while processing a
// transaction into an ErrPanic error, logged together with the message path.
// Put it first in the chain so that it wraps every other decorator.
type Recovery struct{}

var _ unichan.Decorator = Recovery{}

// NewRecovery creates a Recovery decorator
func NewRecovery() Recovery {
	return Recovery{}
}

// Check turns panics into normal errors
func (r Recovery) Check(ctx unichan.Context, store unichan.KVStore, tx unichan.Tx, next unichan.Checker) (_ *unichan.CheckResult, err error) {
	defer logPanic(ctx, tx, &err)
	defer errors.Recover(&err)
	return next.Check(ctx, store, tx)
}

// Deliver turns panics into normal errors
func (r Recovery) Deliver(ctx unichan.Context, store unichan.KVStore, tx unichan.Tx, next unichan.Deliverer) (_ *unichan.DeliverResult, err error) {
	defer logPanic(ctx, tx, &err)
	defer errors.Recover(&err)
	return next.Deliver(ctx, store, tx)
}

// logPanic writes an error entry if err holds a recovered panic.
func logPanic(ctx unichan.Context, tx unichan.Tx, err *error) {
	if !errors.ErrPanic.Is(*err) {
		return
	}
	path := "(missing)"
	if tx != nil {
		path = unichan.GetPath(tx)
	}
	unichan.GetLogger(ctx).Error("handler panicked", "path", path, "err", *err)
}
