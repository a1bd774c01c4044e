package state

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Middleware sees every action before it is reduced, inside the dispatch
// critical section. It may replace the action, or return false to drop it.
type Middleware func(action Action) (Action, bool)

// Subscriber observes every action after it has been reduced. Subscribers
// run outside the dispatch critical section, in the order actions were
// applied. A slow subscriber delays only the goroutine delivering
// notifications. Middlewares must not call Dispatch.
type Subscriber func(action Action, next State)

type notification struct {
	action Action
	next   State
	subs   []Subscriber
}

// Store holds the current State and applies actions one at a time, in the
// order Dispatch is called.
type Store struct {
	logger *zap.Logger

	dispatchMu sync.Mutex

	mu          sync.RWMutex
	state       State
	middlewares []Middleware
	subs        map[int]Subscriber
	nextSub     int
	changed     chan struct{}

	notifyMu sync.Mutex
	pending  []notification
	draining bool
}

func NewStore(initial State, logger *zap.Logger) *Store {
	return &Store{
		logger:  logger,
		state:   initial,
		subs:    make(map[int]Subscriber),
		changed: make(chan struct{}),
	}
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Use appends a middleware. Middlewares run in registration order.
func (s *Store) Use(mw Middleware) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()
	s.middlewares = append(s.middlewares, mw)
}

// Dispatch runs action through the middlewares, reduces it into the state
// and notifies subscribers. It reports whether the action was applied.
func (s *Store) Dispatch(action Action) bool {
	s.dispatchMu.Lock()

	for _, mw := range s.middlewares {
		next, ok := mw(action)
		if !ok {
			s.dispatchMu.Unlock()
			s.logger.Debug("Action dropped", zap.String("type", action.Type()))
			return false
		}
		action = next
	}

	s.mu.Lock()
	s.state = Reduce(s.state, action)
	next := s.state
	subs := make([]Subscriber, 0, len(s.subs))
	for i := 0; i < s.nextSub; i++ {
		if sub, ok := s.subs[i]; ok {
			subs = append(subs, sub)
		}
	}
	close(s.changed)
	s.changed = make(chan struct{})
	s.mu.Unlock()

	// Queue before releasing dispatchMu so notifications keep apply order.
	s.notifyMu.Lock()
	s.pending = append(s.pending, notification{action: action, next: next, subs: subs})
	s.notifyMu.Unlock()
	s.dispatchMu.Unlock()

	s.logger.Debug("Action applied", zap.String("type", action.Type()))
	s.drain()
	return true
}

// drain delivers queued notifications unless another caller already is.
func (s *Store) drain() {
	s.notifyMu.Lock()
	if s.draining {
		s.notifyMu.Unlock()
		return
	}
	s.draining = true
	for len(s.pending) > 0 {
		n := s.pending[0]
		s.pending = s.pending[1:]
		s.notifyMu.Unlock()

		for _, sub := range n.subs {
			sub(n.action, n.next)
		}

		s.notifyMu.Lock()
	}
	s.draining = false
	s.notifyMu.Unlock()
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Subscriber) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Await blocks until the state satisfies pred or ctx is done. It always
// returns the latest state it saw.
func (s *Store) Await(ctx context.Context, pred func(State) bool) (State, error) {
	for {
		s.mu.RLock()
		current := s.state
		changed := s.changed
		s.mu.RUnlock()

		if pred(current) {
			return current, nil
		}

		select {
		case <-ctx.Done():
			return current, ctx.Err()
		case <-changed:
		}
	}
}
