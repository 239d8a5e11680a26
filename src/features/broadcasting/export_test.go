package broadcasting

// Closed reports whether the session behind the subscriber has ended.
func (s *Subscriber) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// snapshot returns a copy of the registered subscribers.
func (r *Registry) snapshot() []*Subscriber {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Subscriber(nil), r.subscribers...)
}
