/*
We pass context through context.Context between app, middleware, and
handlers. To do so, a few common keys are defined here to store info such
as the block time, chain id and the caller of the current operation. Each
extension may add its own keys to enrich the context with specific data.

There should exist two functions for every XYZ of type T
that we want to support in Context:

  WithXYZ(Context, T) Context
  GetXYZ(Context) (val T, ok bool)

WithXYZ may panic if the value was previously set to avoid lower-level
modules overwriting the value (eg. block time, chain id).
*/

package unichan

import (
	"context"
	"regexp"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/tendermint/tendermint/libs/log"
)

type contextKey int // local to the unichan module

const (
	contextKeyBlockTime contextKey = iota
	contextKeyChainID
	contextKeyLogger
	contextKeyCaller
)

var (
	// DefaultLogger is used for all context that have not
	// set anything themselves
	DefaultLogger = log.NewNopLogger()

	// IsValidChainID is the RegExp to ensure valid chain IDs
	IsValidChainID = regexp.MustCompile(`^[a-zA-Z0-9_\-]{6,20}$`).MatchString
)

// Context is just an alias for the standard implementation.
// We use functions to extend it to our domain
type Context = context.Context

// WithBlockTime sets the block time for the context. Block time is always
// represented in UTC.
func WithBlockTime(ctx Context, t time.Time) Context {
	if _, ok := ctx.Value(contextKeyBlockTime).(time.Time); ok {
		panic("block time already set")
	}
	return context.WithValue(ctx, contextKeyBlockTime, t.UTC())
}

// BlockTime returns current block wall clock time as declared in the context.
// An error is returned if a block time is not present in the context or if
// the zero time value is found.
func BlockTime(ctx Context) (time.Time, bool) {
	val, ok := ctx.Value(contextKeyBlockTime).(time.Time)
	if !ok || val.IsZero() {
		return time.Time{}, false
	}
	return val, true
}

// IsExpired returns true if given time is in the past as compared to the "now"
// as declared for the block. Expiration is inclusive, meaning that if current
// time is equal to the expiration time than this function returns true.
//
// This function panics if the block time is not provided in the context. This
// must never happen. The panic is here to prevent from broken setup to be
// processing data incorrectly.
func IsExpired(ctx Context, t UnixTime) bool {
	return t <= Now(ctx)
}

// Now returns the block time as declared in the context, with seconds
// precision. It panics if the block time is missing.
func Now(ctx Context) UnixTime {
	blockNow, ok := BlockTime(ctx)
	if !ok {
		panic("block time is not present")
	}
	return AsUnixTime(blockNow)
}

// WithChainID sets the chain id for the Context.
// panics if called with chain id already set
func WithChainID(ctx Context, chainID string) Context {
	if ctx.Value(contextKeyChainID) != nil {
		panic("Chain ID already set in Context")
	}
	if !IsValidChainID(chainID) {
		panic("Invalid chain ID")
	}
	return context.WithValue(ctx, contextKeyChainID, chainID)
}

// GetChainID returns the chain id of the ledger processing the current
// operation.
func GetChainID(ctx Context) (string, bool) {
	val, ok := ctx.Value(contextKeyChainID).(string)
	return val, ok
}

// WithLogger sets the logger for this Context
func WithLogger(ctx Context, logger log.Logger) Context {
	return context.WithValue(ctx, contextKeyLogger, logger)
}

// WithLogInfo accepts keyvalue pairs, and returns another
// context like this, after passing all the keyvals to the
// Logger
func WithLogInfo(ctx Context, keyvals ...interface{}) Context {
	logger := GetLogger(ctx).With(keyvals...)
	return WithLogger(ctx, logger)
}

// GetLogger returns the currently set logger, or
// DefaultLogger if none was set
func GetLogger(ctx Context) log.Logger {
	val, ok := ctx.Value(contextKeyLogger).(log.Logger)
	if !ok {
		return DefaultLogger
	}
	return val
}

// WithCaller sets the identity that invoked the current operation. The
// caller must be authenticated by the environment before it is stored in the
// context.
func WithCaller(ctx Context, caller common.Address) Context {
	if _, ok := ctx.Value(contextKeyCaller).(common.Address); ok {
		panic("caller already set")
	}
	return context.WithValue(ctx, contextKeyCaller, caller)
}

// GetCaller returns the identity that invoked the current operation.
func GetCaller(ctx Context) (common.Address, bool) {
	val, ok := ctx.Value(contextKeyCaller).(common.Address)
	return val, ok
}
