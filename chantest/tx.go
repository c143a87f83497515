package chantest

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/unichan"
)

// Tx represents a ledger transaction.
// Transaction represents a single message that is to be processed within this
// transaction, submitted by Caller.
type Tx struct {
	// Msg is the message that is to be processed by this transaction.
	Msg unichan.Msg
	// Caller is the authenticated identity that submitted the transaction.
	Caller common.Address
	// Err if set is returned by any method call.
	Err error
}

var _ unichan.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (unichan.Msg, error) {
	return tx.Msg, tx.Err
}

func (tx *Tx) GetCaller() common.Address {
	return tx.Caller
}

// Msg represents a ledger message.
type Msg struct {
	// Path returned by the path method, consumed by the router.
	RoutePath string
	// Err if set is returned by the Validate method.
	Err error
}

var _ unichan.Msg = (*Msg)(nil)

func (m *Msg) Path() string {
	return m.RoutePath
}

func (m *Msg) Validate() error {
	return m.Err
}
