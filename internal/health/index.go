package health

// indexEntry is the per-worker projection of a target: identity plus
// the last-observed internal health, kept current by the event
// subscriber in events.go. It is a cache of the shared store, never
// the source of truth.
type indexEntry struct {
	target Target
	state  State
}

// lookupLocked returns the index entry for t via the two-layer
// ip→port→hostname map. Callers must hold e.mu.
func (e *Engine) lookupLocked(t Target) (*indexEntry, bool) {
	byPort, ok := e.index[t.IP]
	if !ok {
		return nil, false
	}
	byHost, ok := byPort[t.Port]
	if !ok {
		return nil, false
	}
	entry, ok := byHost[t.EffectiveHostname()]
	return entry, ok
}

// storeLocked inserts or overwrites the index entry for t. byKey and
// order are a parallel flat index kept in step with the two-layer map,
// so get_target_list-style iteration stays O(n) instead of walking the
// nested maps. Callers must hold e.mu (write lock).
func (e *Engine) storeLocked(t Target, state State) {
	if e.index[t.IP] == nil {
		e.index[t.IP] = make(map[int]map[string]*indexEntry)
	}
	if e.index[t.IP][t.Port] == nil {
		e.index[t.IP][t.Port] = make(map[string]*indexEntry)
	}
	hostname := t.EffectiveHostname()
	entry := &indexEntry{target: t, state: state}

	if _, exists := e.index[t.IP][t.Port][hostname]; !exists {
		e.order = append(e.order, t.Key())
	}
	e.index[t.IP][t.Port][hostname] = entry
	e.byKey[t.Key()] = entry
}

// deleteLocked removes t from the index, pruning empty leaf maps.
// Callers must hold e.mu (write lock).
func (e *Engine) deleteLocked(t Target) bool {
	byPort, ok := e.index[t.IP]
	if !ok {
		return false
	}
	byHost, ok := byPort[t.Port]
	if !ok {
		return false
	}
	hostname := t.EffectiveHostname()
	if _, ok := byHost[hostname]; !ok {
		return false
	}
	delete(byHost, hostname)
	if len(byHost) == 0 {
		delete(byPort, t.Port)
	}
	if len(byPort) == 0 {
		delete(e.index, t.IP)
	}

	key := t.Key()
	delete(e.byKey, key)
	for i, k := range e.order {
		if k == key {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	return true
}

// resetLocked empties the entire index. Callers must hold e.mu (write
// lock).
func (e *Engine) resetLocked() {
	e.index = make(map[string]map[int]map[string]*indexEntry)
	e.byKey = make(map[string]*indexEntry)
	e.order = nil
}

// snapshotLocked returns every indexed entry in insertion order.
// Callers must hold e.mu (read or write lock).
func (e *Engine) snapshotLocked() []*indexEntry {
	entries := make([]*indexEntry, 0, len(e.order))
	for _, key := range e.order {
		if entry, ok := e.byKey[key]; ok {
			entries = append(entries, entry)
		}
	}
	return entries
}
