package pipeline

import (
	"time"
)

const (
	// recentDefaultTTL is the default lifetime of a self-generated event
	// marker. It only needs to outlive notification delivery latency, but
	// since markers are also consumed on match, a generous bound is safe.
	recentDefaultTTL = 30 * time.Second
	// recentDefaultCapacity is the default marker count bound. If conversion
	// bursts exceed it, eviction of the oldest markers is preferred over
	// unbounded growth, because reprocessing an already-composed name is a
	// harmless discard.
	recentDefaultCapacity = 1024
)

// recentKey identifies a renamed entry by its parent directory and composed
// name.
type recentKey struct {
	parent string
	name   string
}

// recentlyConverted records renames performed by the pipeline itself so that
// the resulting notifications can be recognized and discarded. Markers are
// inserted before the rename is issued, so a self-generated event can never
// be observed without its marker present. The set is confined to the
// pipeline's run loop and requires no synchronization.
type recentlyConverted struct {
	// ttl is the marker lifetime.
	ttl time.Duration
	// capacity is the maximum marker count.
	capacity int
	// entries maps markers to their insertion times.
	entries map[recentKey]time.Time
	// order tracks insertion order for capacity eviction.
	order []recentKey
}

// newRecentlyConverted creates an empty marker set.
func newRecentlyConverted(ttl time.Duration, capacity int) *recentlyConverted {
	return &recentlyConverted{
		ttl:      ttl,
		capacity: capacity,
		entries:  make(map[recentKey]time.Time),
	}
}

// add records a marker, evicting the oldest marker if at capacity.
func (r *recentlyConverted) add(parent, name string) {
	key := recentKey{parent, name}
	if _, ok := r.entries[key]; !ok && len(r.order) >= r.capacity {
		delete(r.entries, r.order[0])
		r.order = r.order[1:]
	}
	if _, ok := r.entries[key]; !ok {
		r.order = append(r.order, key)
	}
	r.entries[key] = time.Now()
}

// remove discards a marker, e.g. when the rename it anticipated failed.
func (r *recentlyConverted) remove(parent, name string) {
	key := recentKey{parent, name}
	if _, ok := r.entries[key]; !ok {
		return
	}
	delete(r.entries, key)
	for index, candidate := range r.order {
		if candidate == key {
			r.order = append(r.order[:index], r.order[index+1:]...)
			break
		}
	}
}

// consume checks for an unexpired marker and removes it if present. Each
// marker matches at most one event.
func (r *recentlyConverted) consume(parent, name string) bool {
	key := recentKey{parent, name}
	inserted, ok := r.entries[key]
	if !ok {
		return false
	}
	r.remove(parent, name)
	return time.Since(inserted) <= r.ttl
}
