package connshare

// Hooks are lightweight callbacks for high-signal cache events.
// Implementations MUST be cheap and non-blocking; ClientCreated/CreateFailed
// run on the caller's goroutine, Evicted runs inside the eviction path.
// Wrap with hooks/async if a sink may block.
type Hooks interface {
	// A client was created and inserted for key.
	ClientCreated(key any)

	// The Create collaborator failed; the key stays absent.
	CreateFailed(key any, err error)

	// An entry was removed under capacity pressure (LRU). Its client is
	// queued for closing; ClientClosed/CloseFailed follows.
	Evicted(key any)

	// A client was closed after leaving the cache.
	ClientClosed(key any, reason CloseReason)

	// The Close collaborator failed. Never surfaced to the caller that
	// triggered the removal.
	CloseFailed(key any, reason CloseReason, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) ClientCreated(any)                   {}
func (NopHooks) CreateFailed(any, error)             {}
func (NopHooks) Evicted(any)                         {}
func (NopHooks) ClientClosed(any, CloseReason)       {}
func (NopHooks) CloseFailed(any, CloseReason, error) {}
