package unichan

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/unichan/errors"
)

// Msg is message for the ledger to take an action
// (Make a state transition). It is just the request, and
// must be validated by the Handlers. All authentication
// information is in the wrapping Tx.
type Msg interface {
	// Path returns the message path.
	// This is used by the Router to locate the proper Handler.
	// Msg should be created alongside the Handler that corresponds to them.
	//
	// Must be alphanumeric [0-9A-Za-z_\-/]+
	Path() string

	// Validate performs a sanity checks on this message. It returns an
	// error if at least one of the rules is not satisfied.
	Validate() error
}

// Tx represent the data sent from the user to the ledger.
// It includes the actual message, along with the identity of the
// account that submitted it.
type Tx interface {
	// GetMsg returns the action we wish to communicate
	GetMsg() (Msg, error)

	// GetCaller returns the authenticated identity that submitted this
	// transaction.
	GetCaller() common.Address
}

// GetPath returns the path of the message, or (missing) if no message
func GetPath(tx Tx) string {
	msg, err := tx.GetMsg()
	if err == nil && msg != nil {
		return msg.Path()
	}
	return "(missing)"
}

// LoadMsg extracts the message represented by given transaction into given
// destination. Before returning message validation method is called.
//
// Destination must be a pointer to the same type as the transaction message
// is.
func LoadMsg(tx Tx, destination interface{}) error {
	msg, err := tx.GetMsg()
	if err != nil {
		return errors.Wrap(err, "cannot get message")
	}
	if msg == nil {
		return errors.Wrap(errors.ErrMsg, "nil message")
	}
	if err := assignMsg(msg, destination); err != nil {
		return err
	}
	if err := msg.Validate(); err != nil {
		return errors.Wrap(err, "invalid message")
	}
	return nil
}

// Marshaller is anything that can be represented in binary
//
// Marshal may validate the data before serializing it and
// unless you previously validated the struct,
// errors should be expected.
type Marshaller interface {
	Marshal() ([]byte, error)
}

// Persistent supports Marshal and Unmarshal
//
// This is separated from Marshal, as this almost always requires
// a pointer, and functions that only need to marshal bytes can
// use the Marshaller interface to access non-pointers.
type Persistent interface {
	Marshaller
	Unmarshal([]byte) error
}
