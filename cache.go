package connshare

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"
	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultCapacity = 100

// removal is a client on its way out of the cache, waiting for the cleanup
// goroutine to close it.
type removal[K comparable, C any] struct {
	key    K
	client C
	reason CloseReason
}

// creation is one in-flight Create shared by every caller of the same key.
// done is closed after client/err are set.
type creation[C any] struct {
	done   chan struct{}
	client C
	err    error
}

type cache[K comparable, C any] struct {
	capacity  int
	create    CreateFunc[K, C]
	closeFn   CloseFunc[C]
	normalize func(K) K
	clone     func(K) K
	log       Logger
	hooks     Hooks

	// mu guards inflight and every mutating entries op, so the eviction
	// callback can trust pendingReason. Create/Close never run under it.
	mu            sync.Mutex
	inflight      map[K]*creation[C]
	entries       *lru.Cache[K, C]
	pendingReason CloseReason

	// removal queue drained by the cleanup goroutine. Unbounded so a slow
	// close can never back-pressure an eviction.
	qmu   sync.Mutex
	queue []removal[K, C]
	wake  chan struct{}
	stop  chan struct{}

	closed    atomic.Bool
	closeOnce sync.Once
	wg        sync.WaitGroup

	errMu       sync.Mutex
	shutdownErr *multierror.Error
}

func newCache[K comparable, C any](opts Options[K, C]) (*cache[K, C], error) {
	if opts.Create == nil {
		return nil, fmt.Errorf("connshare: Create is required")
	}
	if opts.Close == nil {
		return nil, fmt.Errorf("connshare: Close is required")
	}
	if opts.Capacity < 0 {
		return nil, fmt.Errorf("connshare: negative capacity %d", opts.Capacity)
	}

	c := &cache[K, C]{
		capacity:      coalesce(opts.Capacity, defaultCapacity),
		create:        opts.Create,
		closeFn:       opts.Close,
		normalize:     opts.Normalize,
		clone:         opts.Clone,
		inflight:      make(map[K]*creation[C]),
		pendingReason: ReasonEvicted,
		wake:          make(chan struct{}, 1),
		stop:          make(chan struct{}),
	}

	// defaults
	if c.normalize == nil {
		c.normalize = identity[K]
	}
	if c.clone == nil {
		c.clone = identity[K]
	}
	if opts.Logger != nil {
		c.log = opts.Logger
	} else {
		c.log = NopLogger{}
	}
	if opts.Hooks != nil {
		c.hooks = opts.Hooks
	} else {
		c.hooks = NopHooks{}
	}

	entries, err := lru.NewWithEvict[K, C](c.capacity, c.onRemove)
	if err != nil {
		return nil, fmt.Errorf("connshare: build lru: %w", err)
	}
	c.entries = entries

	c.wg.Add(1)
	go c.cleanupLoop()
	return c, nil
}

// onRemove runs synchronously inside Add/Remove/Purge while mu is held.
// It must not block: the client goes onto the removal queue.
func (c *cache[K, C]) onRemove(key K, client C) {
	reason := c.pendingReason
	if reason == ReasonEvicted {
		c.log.Debug("evicting lru client", Fields{"config": key})
		c.hooks.Evicted(key)
	}
	c.enqueue(removal[K, C]{key: key, client: client, reason: reason})
}

func (c *cache[K, C]) GetOrCreate(ctx context.Context, cfg K) (C, error) {
	var zero C
	if c.closed.Load() {
		return zero, ErrCacheClosed
	}
	k := c.normalize(cfg)

	if client, ok := c.entries.Get(k); ok {
		return client, nil
	}

	c.mu.Lock()
	if cr, ok := c.inflight[k]; ok {
		c.mu.Unlock()
		select {
		case <-cr.done:
			return cr.client, cr.err
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
	// A previous leader may have finished between the miss and the lock.
	if client, ok := c.entries.Get(k); ok {
		c.mu.Unlock()
		return client, nil
	}
	cr := &creation[C]{done: make(chan struct{})}
	c.inflight[k] = cr
	c.mu.Unlock()

	// Leader path. Create runs outside every lock so other keys proceed.
	// Construction gets a clone: it may mutate the config, while the cached
	// key must stay the normalized pre-mutation value.
	client, err := c.create(ctx, c.clone(k))
	if err != nil {
		cr.err = &CreateError{Key: k, Err: err}
		c.log.Error("client creation failed", Fields{"config": k, "err": err})
		c.hooks.CreateFailed(k, err)
	} else {
		c.mu.Lock()
		if c.closed.Load() {
			c.mu.Unlock()
			// cache shut down mid-creation; the client never entered the
			// mapping, release it here
			c.closeClient(removal[K, C]{key: k, client: client, reason: ReasonShutdown})
			cr.err = ErrCacheClosed
		} else {
			c.pendingReason = ReasonEvicted
			c.entries.Add(k, client)
			c.mu.Unlock()
			cr.client = client
			c.log.Debug("created new client", Fields{"config": k})
			c.hooks.ClientCreated(k)
		}
	}

	c.mu.Lock()
	delete(c.inflight, k)
	c.mu.Unlock()
	close(cr.done)

	return cr.client, cr.err
}

func (c *cache[K, C]) Invalidate(cfg K) bool {
	if c.closed.Load() {
		return false
	}
	k := c.normalize(cfg)

	c.mu.Lock()
	c.pendingReason = ReasonInvalidated
	present := c.entries.Remove(k)
	c.pendingReason = ReasonEvicted
	c.mu.Unlock()

	if present {
		c.log.Debug("invalidated client", Fields{"config": k})
	}
	return present
}

func (c *cache[K, C]) InvalidateAll() {
	if c.closed.Load() {
		return
	}
	c.mu.Lock()
	n := c.entries.Len()
	c.pendingReason = ReasonInvalidateAll
	c.entries.Purge()
	c.pendingReason = ReasonEvicted
	c.mu.Unlock()

	c.log.Info("invalidated all clients", Fields{"count": n})
}

func (c *cache[K, C]) Snapshot() map[K]C {
	keys := c.entries.Keys()
	out := make(map[K]C, len(keys))
	for _, k := range keys {
		if client, ok := c.entries.Peek(k); ok {
			out[k] = client
		}
	}
	return out
}

func (c *cache[K, C]) Len() int { return c.entries.Len() }

func (c *cache[K, C]) Capacity() int { return c.capacity }

func (c *cache[K, C]) Close(ctx context.Context) error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)

		c.mu.Lock()
		c.pendingReason = ReasonShutdown
		c.entries.Purge()
		c.mu.Unlock()

		close(c.stop)

		done := make(chan struct{})
		go func() {
			c.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			c.errMu.Lock()
			err = c.shutdownErr.ErrorOrNil()
			c.errMu.Unlock()
		case <-ctx.Done():
			// cleanup keeps draining in the background
			err = ctx.Err()
		}
	})
	return err
}

func (c *cache[K, C]) enqueue(rm removal[K, C]) {
	c.qmu.Lock()
	c.queue = append(c.queue, rm)
	c.qmu.Unlock()
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *cache[K, C]) dequeue() (removal[K, C], bool) {
	c.qmu.Lock()
	defer c.qmu.Unlock()
	if len(c.queue) == 0 {
		var zero removal[K, C]
		return zero, false
	}
	rm := c.queue[0]
	c.queue = c.queue[1:]
	return rm, true
}

// cleanupLoop drains the removal queue. Every client that entered the
// mapping is closed here, one at a time, so a client is never closed twice
// or concurrently.
func (c *cache[K, C]) cleanupLoop() {
	defer c.wg.Done()
	for {
		if rm, ok := c.dequeue(); ok {
			c.closeClient(rm)
			continue
		}
		select {
		case <-c.wake:
		case <-c.stop:
			for {
				rm, ok := c.dequeue()
				if !ok {
					return
				}
				c.closeClient(rm)
			}
		}
	}
}

func (c *cache[K, C]) closeClient(rm removal[K, C]) {
	if err := c.closeFn(rm.client); err != nil {
		cerr := &CloseError{Key: rm.key, Reason: rm.reason, Err: err}
		c.log.Warn("client close failed", Fields{"config": rm.key, "reason": string(rm.reason), "err": err})
		c.hooks.CloseFailed(rm.key, rm.reason, err)
		if rm.reason == ReasonShutdown {
			c.errMu.Lock()
			c.shutdownErr = multierror.Append(c.shutdownErr, cerr)
			c.errMu.Unlock()
		}
		return
	}
	c.log.Debug("closed client", Fields{"config": rm.key, "reason": string(rm.reason)})
	c.hooks.ClientClosed(rm.key, rm.reason)
}
