package logstore

import "sync"

// overlayMap is a per-dictionary-table name->id cache with a staged/committed two-tier
// lookup, so the cache participates in the Handle's transaction lifecycle and never
// diverges from committed database state.
type overlayMap struct {
	mu        sync.Mutex
	committed map[string]int64
	staged    map[string]int64
}

func newOverlayMap() *overlayMap {
	return &overlayMap{
		committed: make(map[string]int64),
		staged:    make(map[string]int64),
	}
}

// tryGet returns the staged id if one was set during the current transaction, otherwise
// the committed id, otherwise (false).
func (o *overlayMap) tryGet(name string) (int64, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if id, ok := o.staged[name]; ok {
		return id, true
	}
	id, ok := o.committed[name]
	return id, ok
}

// stage records a pending insertion, not yet visible as committed.
func (o *overlayMap) stage(name string, id int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.staged[name] = id
}

// commit promotes every staged entry to committed state and clears the staged tier.
func (o *overlayMap) commit() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for name, id := range o.staged {
		o.committed[name] = id
	}
	o.staged = make(map[string]int64)
}

// discard drops staged entries, leaving committed state unchanged.
func (o *overlayMap) discard() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.staged = make(map[string]int64)
}

// clear wipes all state (used by Clear(all)).
func (o *overlayMap) clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.committed = make(map[string]int64)
	o.staged = make(map[string]int64)
}
