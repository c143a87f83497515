package paychan

import "github.com/iov-one/unichan/errors"

// paychan takes 1021-1029
var (
	// ErrChannelAlreadyExists is returned when funding an open channel.
	ErrChannelAlreadyExists = errors.Register(1021, "channel already exists")
	// ErrInvalidChannel is returned when an operation requires an open
	// channel, a valid voucher signer or a passed deadline and the
	// requirement is not met.
	ErrInvalidChannel = errors.Register(1022, "invalid channel")
	// ErrTransferFailed is returned when moving funds failed. All
	// changes made by the operation are discarded.
	ErrTransferFailed = errors.Register(1023, "transfer failed")
)
