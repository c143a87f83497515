package chantest

import "github.com/iov-one/unichan"

// Handler is a mock implementation of the unichan.Handler interface.
//
// It returns configured results and counts calls. When Key is set,
// Deliver writes Key/Value to the store before returning, which allows
// tests to verify that changes are committed or rolled back.
type Handler struct {
	checkCall   int
	CheckResult unichan.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult unichan.DeliverResult
	DeliverErr    error

	Key   []byte
	Value []byte
	// Panic if set is raised by both methods.
	Panic interface{}
}

var _ unichan.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx unichan.Context, db unichan.KVStore, tx unichan.Tx) (*unichan.CheckResult, error) {
	h.checkCall++
	if h.Panic != nil {
		panic(h.Panic)
	}
	res := h.CheckResult
	return &res, h.CheckErr
}

func (h *Handler) Deliver(ctx unichan.Context, db unichan.KVStore, tx unichan.Tx) (*unichan.DeliverResult, error) {
	h.deliverCall++
	if h.Panic != nil {
		panic(h.Panic)
	}
	if h.Key != nil {
		if err := db.Set(h.Key, h.Value); err != nil {
			return nil, err
		}
	}
	res := h.DeliverResult
	return &res, h.DeliverErr
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}
