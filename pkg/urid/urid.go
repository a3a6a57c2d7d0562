// Package urid provides the bidirectional URI<->integer-ID mapping the
// plugin runtime contract requires: plugins exchange structured messages
// by integer type tag rather than by string comparison.
package urid

import (
	"sync"
	"sync/atomic"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// ID is a stable, dense, monotonically assigned identifier, starting at 1.
type ID = uint32

// Table is a bidirectional URI<->ID mapping. Once issued, an ID never
// changes and never maps to a different URI for the table's lifetime.
//
// The URI->ID direction is backed by a sharded concurrent map, so
// looking up an already-mapped URI takes only a per-shard read lock,
// never a table-wide one. Mapping a previously-unseen URI (legal at run
// time, but rare) is not lock-free: it takes the table-wide insert mutex
// and copies the ID->URI snapshot, so it can block behind a concurrent
// insert and it allocates. The ID->URI direction is that snapshot
// slice, swapped in wholesale on insert; Unmap/Count only ever load the
// current snapshot pointer and the slice it points to never mutates
// once published, so they take no lock.
type Table struct {
	uriToID cmap.ConcurrentMap[string, ID]

	mu      sync.Mutex               // serializes inserts only
	idToURI atomic.Pointer[[]string] // idToURI[id-1] == uri; replaced wholesale on insert
}

// New creates an empty URID table.
func New() *Table {
	t := &Table{uriToID: cmap.New[ID]()}
	empty := make([]string, 0, 64)
	t.idToURI.Store(&empty)
	return t
}

// Map returns the stable ID for uri, assigning a new one (len+1) if uri
// has not been seen before.
func (t *Table) Map(uri string) ID {
	if id, ok := t.uriToID.Get(uri); ok {
		return id
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Re-check under the lock: another goroutine may have inserted it
	// between the optimistic Get above and taking the lock.
	if id, ok := t.uriToID.Get(uri); ok {
		return id
	}

	cur := *t.idToURI.Load()
	next := make([]string, len(cur)+1)
	copy(next, cur)
	next[len(cur)] = uri
	id := ID(len(next))
	t.idToURI.Store(&next)
	t.uriToID.Set(uri, id)
	return id
}

// Unmap returns the URI for id, or "" with ok=false if id was never
// issued by this table. Lock-free: it loads the current snapshot and
// never blocks behind an in-progress insert.
func (t *Table) Unmap(id ID) (uri string, ok bool) {
	idToURI := *t.idToURI.Load()
	if id == 0 || int(id) > len(idToURI) {
		return "", false
	}
	return idToURI[id-1], true
}

// Count returns the number of URIs mapped so far.
func (t *Table) Count() int {
	return len(*t.idToURI.Load())
}
