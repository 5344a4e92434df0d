// Package collision detects xxHash64 collisions among manifest identifiers.
//
// The manifest indexes container entries by the 64-bit hash of their paths
// and base names. A collision there would silently resolve a block id to the
// wrong entry, so the tracker records whether any two distinct identifiers
// ever shared a hash; once that happens, lookups stop trusting the index
// blindly and verify the identifier string.
package collision

// Tracker records identifier-to-hash bindings and flags collisions.
type Tracker struct {
	names    map[uint64]string
	collided bool
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		names: make(map[uint64]string),
	}
}

// Track records the identifier under its hash. Re-tracking the same
// identifier is a no-op; a different identifier under an already-bound hash
// sets the collision flag. Reports whether the binding is collision-free.
func (t *Tracker) Track(id uint64, name string) bool {
	existing, ok := t.names[id]
	if !ok {
		t.names[id] = name
		return true
	}

	if existing != name {
		t.collided = true
		return false
	}

	return true
}

// HasCollision reports whether any two distinct identifiers shared a hash.
func (t *Tracker) HasCollision() bool {
	return t.collided
}

// Count returns the number of distinct hashes tracked.
func (t *Tracker) Count() int {
	return len(t.names)
}

// Reset clears all bindings and the collision flag, retaining map capacity.
func (t *Tracker) Reset() {
	for k := range t.names {
		delete(t.names, k)
	}
	t.collided = false
}
