package app

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/errors"
)

// Tx is a transaction carrying a single message, submitted by an
// authenticated caller. Authentication happens before the transaction
// reaches the application.
type Tx struct {
	Msg    unichan.Msg
	Caller common.Address
}

var _ unichan.Tx = (*Tx)(nil)

// NewTx returns a transaction of caller.
func NewTx(caller common.Address, msg unichan.Msg) *Tx {
	return &Tx{Msg: msg, Caller: caller}
}

// GetMsg returns the message of the transaction.
func (tx *Tx) GetMsg() (unichan.Msg, error) {
	if tx.Msg == nil {
		return nil, errors.Wrap(errors.ErrMsg, "empty transaction")
	}
	return tx.Msg, nil
}

// GetCaller returns the identity that submitted the transaction.
func (tx *Tx) GetCaller() common.Address {
	return tx.Caller
}
