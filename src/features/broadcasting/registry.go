package broadcasting

import (
	"sync"

	"github.com/contre95/sigwatch/src/features/metrics"
)

// Registry is the ordered collection of live subscribers. Entries may be
// stale between broadcasts; a stale entry is dropped the next time a
// notification to it fails.
type Registry struct {
	mu          sync.Mutex
	subscribers []*Subscriber
	metrics     *metrics.Metrics
}

// NewRegistry creates an empty registry.
func NewRegistry(m *metrics.Metrics) *Registry {
	return &Registry{metrics: m}
}

// Register appends a subscriber.
func (r *Registry) Register(sub *Subscriber) {
	r.mu.Lock()
	r.subscribers = append(r.subscribers, sub)
	live := len(r.subscribers)
	r.mu.Unlock()

	r.metrics.SubscriberRegistered(live)
}

// BroadcastAndCompact notifies every subscriber and keeps only those that
// accepted the notification, in their original order. Registrations racing
// with a broadcast are either fully included or left for the next one.
func (r *Registry) BroadcastAndCompact() (live, dropped int) {
	r.mu.Lock()
	kept := r.subscribers[:0]
	for _, sub := range r.subscribers {
		if sub.Notify() {
			kept = append(kept, sub)
		} else {
			dropped++
		}
	}
	clear(r.subscribers[len(kept):])
	r.subscribers = kept
	live = len(kept)
	r.mu.Unlock()

	r.metrics.SubscribersCompacted(live, dropped)
	return live, dropped
}

// Len returns the number of registered subscribers, stale ones included.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subscribers)
}
