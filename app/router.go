package app

import (
	"fmt"
	"regexp"

	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/errors"
)

// isPath is the RegExp to ensure the routes make sense
var isPath = regexp.MustCompile(`^[a-zA-Z0-9_/]+$`).MatchString

// Router allows us to register many handlers with different paths and
// dispatch a transaction to the handler of its message path.
type Router struct {
	routes map[string]unichan.Handler
}

var _ unichan.Registry = (*Router)(nil)
var _ unichan.Handler = (*Router)(nil)

// NewRouter returns a new empty router instance.
func NewRouter() *Router {
	return &Router{
		routes: make(map[string]unichan.Handler),
	}
}

// Handle adds a new Handler for the given message path. Registering a
// path twice or an invalid path panics.
func (r *Router) Handle(msg unichan.Msg, h unichan.Handler) {
	path := msg.Path()
	if !isPath(path) {
		panic(fmt.Sprintf("invalid path: %q", path))
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("re-registering route: %s", path))
	}
	r.routes[path] = h
}

// handler returns the registered Handler for this path. If no path is
// found, returns a noSuchPath Handler.
func (r *Router) handler(path string) unichan.Handler {
	if h, ok := r.routes[path]; ok {
		return h
	}
	return noSuchPathHandler{path: path}
}

// Check dispatches to the proper handler based on path
func (r *Router) Check(ctx unichan.Context, store unichan.KVStore, tx unichan.Tx) (*unichan.CheckResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	return r.handler(msg.Path()).Check(ctx, store, tx)
}

// Deliver dispatches to the proper handler based on path
func (r *Router) Deliver(ctx unichan.Context, store unichan.KVStore, tx unichan.Tx) (*unichan.DeliverResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	return r.handler(msg.Path()).Deliver(ctx, store, tx)
}

type noSuchPathHandler struct {
	path string
}

var _ unichan.Handler = noSuchPathHandler{}

func (h noSuchPathHandler) Check(unichan.Context, unichan.KVStore, unichan.Tx) (*unichan.CheckResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", h.path)
}

func (h noSuchPathHandler) Deliver(unichan.Context, unichan.KVStore, unichan.Tx) (*unichan.DeliverResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", h.path)
}
