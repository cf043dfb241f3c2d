package services

import (
	"context"
	"fmt"
	"sync"
)

// WorkingSet tracks keys with an outstanding remote mutation.
type WorkingSet[K comparable] struct {
	mu   sync.Mutex
	keys map[K]struct{}
}

func NewWorkingSet[K comparable]() *WorkingSet[K] {
	return &WorkingSet[K]{keys: make(map[K]struct{})}
}

// TryAdd marks key in flight. It returns false if key already was.
func (w *WorkingSet[K]) TryAdd(key K) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.keys[key]; ok {
		return false
	}
	w.keys[key] = struct{}{}
	return true
}

// Remove clears key and reports whether it was present.
func (w *WorkingSet[K]) Remove(key K) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.keys[key]; !ok {
		return false
	}
	delete(w.keys, key)
	return true
}

func (w *WorkingSet[K]) Contains(key K) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.keys[key]
	return ok
}

func (w *WorkingSet[K]) Snapshot() map[K]bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[K]bool, len(w.keys))
	for k := range w.keys {
		out[k] = true
	}
	return out
}

// OptimisticTransition moves a believed state through a remote mutation.
// On success the target is committed directly, without a re-fetch. On
// failure the state is re-derived through Reconcile and that ground truth is
// committed; a guessed rollback value is never used.
type OptimisticTransition[S any] struct {
	Current   func() S
	Target    func(from S) S
	Remote    func(ctx context.Context, from S) error
	Reconcile func(ctx context.Context) (S, error)
	Commit    func(S)
}

// Run returns the committed state and the remote error, if any. When
// reconciliation also fails nothing is committed and the believed state is
// returned unchanged.
func (t OptimisticTransition[S]) Run(ctx context.Context) (S, error) {
	from := t.Current()
	target := t.Target(from)

	remoteErr := t.Remote(ctx, from)
	if remoteErr == nil {
		t.Commit(target)
		return target, nil
	}

	if t.Reconcile == nil {
		return from, remoteErr
	}
	truth, err := t.Reconcile(ctx)
	if err != nil {
		return from, fmt.Errorf("%w (reconcile failed: %v)", remoteErr, err)
	}
	t.Commit(truth)
	return truth, remoteErr
}
