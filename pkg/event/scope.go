package event

import "sync"

// Scope groups the subscriptions of one job. Close releases all of them
// exactly once and is meant to be deferred right after the scope is opened.
type Scope struct {
	bus  *Bus
	id   string
	mu   sync.Mutex
	subs []*Subscription
	once sync.Once
	done bool
}

// Scope opens a subscription group for the correlation id.
func (b *Bus) Scope(id string) *Scope {
	return &Scope{bus: b, id: id}
}

// ID returns the correlation id the scope filters on.
func (s *Scope) ID() string { return s.id }

// Subscribe registers handler for events named name carrying the scope's id.
// Subscribing on a closed scope returns nil and registers nothing.
func (s *Scope) Subscribe(name string, handler Handler) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return nil
	}
	sub := s.bus.Subscribe(name, s.id, handler)
	s.subs = append(s.subs, sub)
	return sub
}

// Close removes every subscription opened through the scope and returns how
// many were still attached. Later calls return 0.
func (s *Scope) Close() int {
	n := 0
	s.once.Do(func() {
		s.mu.Lock()
		s.done = true
		subs := s.subs
		s.subs = nil
		s.mu.Unlock()

		for _, sub := range subs {
			if sub.Remove() {
				n++
			}
		}
	})
	return n
}
