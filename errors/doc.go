/*
Package errors implements the error kinds used across unichan.

The idea is to reuse as many errors from this package as possible and define
custom package errors when absolutely necessary. Extensions register their own
kinds with Register(code, description), for example the paychan extension
declares ErrChannelAlreadyExists, ErrInvalidChannel and ErrTransferFailed.

Every kind carries a numeric code, which allows a client to distinguish types
of errors and act accordingly. Test for a kind with Is, never by comparing
messages:

	if paychan.ErrInvalidChannel.Is(err) { ... }

There is also support for stacktraces. Create errors using ErrXyz.New("...")
or errors.Wrap(err, "...") at the point of creation to ensure we attach a
stacktrace. If you wrap multiple times, only the first wrap records it.

Once you have an error, you can use `fmt.Printf/Sprintf` to get more context
	%s is just the error message
	%+v is the full stack trace
*/
package errors
