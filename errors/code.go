package errors

import (
	"errors"
	"fmt"
)

const (
	// SuccessCode is used to signal that the processing was successful
	// and no error is returned.
	SuccessCode = 0

	// All unclassified errors that do not provide a code are clubbed
	// under an internal error code and a generic message instead of
	// detailed error string.
	internalCode uint32 = 1
	internalLog         = "internal error"
)

type coder interface {
	Code() uint32
}

// Code returns the code of the registered error kind that given error
// wraps. Errors that do not wrap a registered kind are internal and
// return code 1.
func Code(err error) uint32 {
	if isNilErr(err) {
		return SuccessCode
	}

	for {
		if c, ok := err.(coder); ok {
			return c.Code()
		}

		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return internalCode
		}
	}
}

// Info returns the code and the message of an error as it should be exposed
// to a client. Messages of internal errors are hidden unless debug is set.
func Info(err error, debug bool) (uint32, string) {
	if isNilErr(err) {
		return SuccessCode, ""
	}

	// Only non-internal errors information can be exposed. Any error that
	// does not explicitly expose its state by providing an error code must
	// be silenced.
	if code := Code(err); code != internalCode {
		if debug {
			return code, fmt.Sprintf("%+v", err)
		}
		return code, err.Error()
	}

	if debug {
		return internalCode, fmt.Sprintf("%+v", err)
	}
	return internalCode, internalLog
}

// Redact replace all errors that do not wrap a registered error kind with a
// generic internal error instance. This function is supposed to hide
// implementation details errors and leave only those that this module
// originates.
//
// This is a no-operation function when running in debug mode.
func Redact(err error, debug bool) error {
	if debug {
		return err
	}
	if ErrPanic.Is(err) {
		return errors.New(internalLog)
	}
	if Code(err) == internalCode {
		return errors.New(internalLog)
	}
	return err
}
