// Package connshare shares expensive connection clients among concurrent
// consumers in the same process. Clients are cached by their (normalized)
// configuration: the first caller for a configuration pays the connection
// cost, every later caller with an equal configuration reuses the same
// live client.
//
// Components:
//   - Create / Close: collaborator functions that open and release a client.
//     The client's protocol is opaque to the cache.
//   - Normalize: canonicalizes "disabled/default" config fields (e.g. a nil
//     credential becomes a shared sentinel) so functionally identical
//     configurations collide on one cache entry.
//   - Clone: defensive copy handed to Create, because construction may
//     mutate the configuration. The cached key keeps the pre-clone value.
//
// The cache is bounded: inserting beyond Capacity evicts the
// least-recently-used entry. Evicted and invalidated clients are handed to
// a dedicated cleanup goroutine which calls Close, so close I/O (which may
// block on the network) never stalls unrelated GetOrCreate calls.
//
// Creation is coalesced per key: concurrent GetOrCreate calls for the same
// configuration result in exactly one Create, and every caller receives the
// same client (or the leader's error). Calls for different configurations
// never share a creation lock.
//
// Typical wiring:
//
//	cc, _ := connshare.New(redisconn.Options(32))
//	defer cc.Close(ctx)
//
//	client, err := cc.GetOrCreate(ctx, cfg)
//
// Ownership: clients returned by GetOrCreate belong to the cache. Callers
// must not close them; release happens on eviction, Invalidate, or cache
// shutdown.
package connshare
