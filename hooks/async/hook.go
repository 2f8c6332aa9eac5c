// Package asynchook decouples hook sinks from the cache's hot paths.
// Events are handed to worker goroutines through a bounded queue; when the
// queue is full the event is dropped rather than blocking an eviction.
//
// usage:
//
//	raw := myMetricsHooks{}
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cc, _ := connshare.New(connshare.Options[Config, *Client]{
//	    ...
//	    Hooks: hooks, // or `raw` if the sink is already non-blocking
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/connshare"
)

type Hooks struct {
	inner connshare.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ connshare.Hooks = (*Hooks)(nil)

func New(inner connshare.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) ClientCreated(key any) {
	h.try(func() { h.inner.ClientCreated(key) })
}

func (h *Hooks) CreateFailed(key any, err error) {
	h.try(func() { h.inner.CreateFailed(key, err) })
}

func (h *Hooks) Evicted(key any) {
	h.try(func() { h.inner.Evicted(key) })
}

func (h *Hooks) ClientClosed(key any, reason connshare.CloseReason) {
	h.try(func() { h.inner.ClientClosed(key, reason) })
}

func (h *Hooks) CloseFailed(key any, reason connshare.CloseReason, err error) {
	h.try(func() { h.inner.CloseFailed(key, reason, err) })
}
