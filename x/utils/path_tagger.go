package utils

import (
	"github.com/iov-one/unichan"
)

// PathTagger will inspect the message being executed and add a tag
// `path = msg.Path()` to a successful delivery, so clients have a standard
// way to search for a given message type.
type PathTagger struct{}

var _ unichan.Decorator = PathTagger{}

// PathKey is used by PathTagger as the Key in the Tag it appends
const PathKey = "path"

// NewPathTagger creates a PathTagger decorator
func NewPathTagger() PathTagger {
	return PathTagger{}
}

// Check just passes the request along
func (PathTagger) Check(ctx unichan.Context, db unichan.KVStore, tx unichan.Tx, next unichan.Checker) (*unichan.CheckResult, error) {
	return next.Check(ctx, db, tx)
}

// Deliver appends a tag on the result if there is a success.
func (PathTagger) Deliver(ctx unichan.Context, db unichan.KVStore, tx unichan.Tx, next unichan.Deliverer) (*unichan.DeliverResult, error) {
	// if we error in reporting, let's do so early before dispatching
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}

	res, err := next.Deliver(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	res.Tags = append(res.Tags, unichan.Tag{Key: PathKey, Value: msg.Path()})
	return res, nil
}
