// Package infra provides shared infrastructure for the wikitext service:
// a digest-keyed render cache and request deduplication.
package infra

import (
	"context"
	"sync"
)

// RequestDeduplicator coalesces identical in-flight work. When several
// callers ask for the same key at once, fn runs once and every waiter
// receives its result.
type RequestDeduplicator[V any] struct {
	mu       sync.Mutex
	inflight map[string]*inflightRequest[V]
}

// inflightRequest tracks work in progress and its waiters
type inflightRequest[V any] struct {
	done    chan struct{}
	result  V
	err     error
	waiters int
}

// NewRequestDeduplicator creates an empty deduplicator.
func NewRequestDeduplicator[V any]() *RequestDeduplicator[V] {
	return &RequestDeduplicator[V]{
		inflight: make(map[string]*inflightRequest[V]),
	}
}

// Do runs fn unless work for key is already in flight, in which case it waits
// for that result. It reports whether the result was shared. A waiter whose
// ctx ends first returns ctx.Err(); the running fn is not interrupted.
func (d *RequestDeduplicator[V]) Do(ctx context.Context, key string, fn func() (V, error)) (V, bool, error) {
	d.mu.Lock()
	if req, ok := d.inflight[key]; ok {
		req.waiters++
		d.mu.Unlock()

		select {
		case <-req.done:
			return req.result, true, req.err
		case <-ctx.Done():
			var zero V
			return zero, false, ctx.Err()
		}
	}

	req := &inflightRequest[V]{done: make(chan struct{}), waiters: 1}
	d.inflight[key] = req
	d.mu.Unlock()

	defer func() {
		close(req.done)
		d.mu.Lock()
		delete(d.inflight, key)
		d.mu.Unlock()
	}()

	req.result, req.err = fn()
	return req.result, false, req.err
}

// InFlight returns the number of distinct keys currently running.
func (d *RequestDeduplicator[V]) InFlight() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.inflight)
}
