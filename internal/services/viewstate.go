package services

import "sync"

// Observable is the read side of a state container: the latest published
// value plus a feed of future values. Only the owning orchestrator writes.
type Observable[T any] interface {
	Current() T
	// Subscribe returns a channel that always holds the most recent value
	// (slow readers skip intermediate ones) and a func that ends the
	// subscription and closes the channel.
	Subscribe() (<-chan T, func())
}

type stateStore[T any] struct {
	mu      sync.Mutex
	current T
	subs    map[uint64]chan T
	nextID  uint64
}

func newStateStore[T any](initial T) *stateStore[T] {
	return &stateStore[T]{current: initial, subs: make(map[uint64]chan T)}
}

func (s *stateStore[T]) Current() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *stateStore[T]) Subscribe() (<-chan T, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan T, 1)
	ch <- s.current
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

func (s *stateStore[T]) set(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishLocked(v)
}

// update applies fn to the current value and publishes the result as one
// step, so concurrent updates cannot lose each other's changes.
func (s *stateStore[T]) update(fn func(T) T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishLocked(fn(s.current))
}

func (s *stateStore[T]) publishLocked(v T) {
	s.current = v
	for _, ch := range s.subs {
		// Only publishLocked sends, under mu, so after dropping the stale
		// value the second send cannot block.
		select {
		case ch <- v:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- v
		}
	}
}
