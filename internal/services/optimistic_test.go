package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

func TestWorkingSet(t *testing.T) {
	ws := NewWorkingSet[int64]()

	if !ws.TryAdd(1) {
		t.Fatal("expected first add to succeed")
	}
	if ws.TryAdd(1) {
		t.Fatal("expected duplicate add to fail")
	}
	if !ws.Contains(1) || ws.Contains(2) {
		t.Fatal("unexpected membership")
	}
	if snap := ws.Snapshot(); !snap[1] || len(snap) != 1 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if !ws.Remove(1) {
		t.Fatal("expected remove to report presence")
	}
	if ws.Remove(1) {
		t.Fatal("expected second remove to report absence")
	}
}

func TestWorkingSet_ConcurrentTryAddAdmitsOne(t *testing.T) {
	ws := NewWorkingSet[string]()
	var admitted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ws.TryAdd("subject") {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()
	if admitted.Load() != 1 {
		t.Fatalf("expected exactly one admission, got %d", admitted.Load())
	}
}

func TestOptimisticTransition_SuccessCommitsTarget(t *testing.T) {
	var committed []string
	reconciled := false
	tr := OptimisticTransition[string]{
		Current: func() string { return "a" },
		Target:  func(from string) string { return from + "b" },
		Remote: func(ctx context.Context, from string) error {
			if from != "a" {
				t.Fatalf("expected remote to see current state, got %q", from)
			}
			return nil
		},
		Reconcile: func(ctx context.Context) (string, error) {
			reconciled = true
			return "", nil
		},
		Commit: func(s string) { committed = append(committed, s) },
	}

	got, err := tr.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ab" || len(committed) != 1 || committed[0] != "ab" {
		t.Fatalf("unexpected commit %q %+v", got, committed)
	}
	if reconciled {
		t.Fatal("expected no reconciliation on success")
	}
}

func TestOptimisticTransition_FailureCommitsReconciledTruth(t *testing.T) {
	var committed []string
	tr := OptimisticTransition[string]{
		Current:   func() string { return "a" },
		Target:    func(string) string { return "b" },
		Remote:    func(context.Context, string) error { return errBoom },
		Reconcile: func(context.Context) (string, error) { return "c", nil },
		Commit:    func(s string) { committed = append(committed, s) },
	}

	got, err := tr.Run(context.Background())
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected remote error, got %v", err)
	}
	if got != "c" || len(committed) != 1 || committed[0] != "c" {
		t.Fatalf("expected reconciled state committed, got %q %+v", got, committed)
	}
}

func TestOptimisticTransition_ReconcileFailureCommitsNothing(t *testing.T) {
	committed := false
	tr := OptimisticTransition[string]{
		Current:   func() string { return "a" },
		Target:    func(string) string { return "b" },
		Remote:    func(context.Context, string) error { return errBoom },
		Reconcile: func(context.Context) (string, error) { return "", errors.New("lists down") },
		Commit:    func(string) { committed = true },
	}

	got, err := tr.Run(context.Background())
	if !errors.Is(err, errBoom) || !strings.Contains(err.Error(), "lists down") {
		t.Fatalf("expected both errors reported, got %v", err)
	}
	if got != "a" || committed {
		t.Fatalf("expected state unchanged, got %q (committed=%v)", got, committed)
	}
}

func TestOptimisticTransition_NoReconcile(t *testing.T) {
	tr := OptimisticTransition[int]{
		Current: func() int { return 1 },
		Target:  func(int) int { return 2 },
		Remote:  func(context.Context, int) error { return errBoom },
		Commit:  func(int) { t.Fatal("unexpected commit") },
	}
	if got, err := tr.Run(context.Background()); got != 1 || !errors.Is(err, errBoom) {
		t.Fatalf("unexpected result %d %v", got, err)
	}
}
