package utils

import (
	"time"

	"github.com/iov-one/unichan"
)

// Logging is a decorator to log messages as they pass through
type Logging struct{}

var _ unichan.Decorator = Logging{}

// NewLogging creates a Logging decorator
func NewLogging() Logging {
	return Logging{}
}

// Check logs error -> error, success -> debug
func (r Logging) Check(ctx unichan.Context, store unichan.KVStore, tx unichan.Tx, next unichan.Checker) (*unichan.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, store, tx)
	var resLog string
	if err == nil {
		resLog = res.Log
	}
	logDuration(ctx, start, unichan.GetPath(tx), resLog, err, true)
	return res, err
}

// Deliver logs error -> error, success -> info
func (r Logging) Deliver(ctx unichan.Context, store unichan.KVStore, tx unichan.Tx, next unichan.Deliverer) (*unichan.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, store, tx)
	var resLog string
	if err == nil {
		resLog = res.Log
	}
	logDuration(ctx, start, unichan.GetPath(tx), resLog, err, false)
	return res, err
}

// logDuration writes information about the time and result to the logger
func logDuration(ctx unichan.Context, start time.Time, path, msg string, err error, lowPrio bool) {
	delta := time.Since(start)
	logger := unichan.GetLogger(ctx).With("path", path, "duration", delta/time.Microsecond)
	if chainID, ok := unichan.GetChainID(ctx); ok {
		logger = logger.With("chain_id", chainID)
	}

	if err != nil {
		logger = logger.With("err", err)
	}

	// Although message can be empty, we still want to emit a log entry
	// because it contains other relevant information beside the message.

	if err != nil {
		logger.Error(msg)
	} else {
		if lowPrio {
			logger.Debug(msg)
		} else {
			logger.Info(msg)
		}
	}
}
