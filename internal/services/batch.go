package services

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// FetchDistinct calls fetch once per distinct key, at most limit at a time,
// and returns the successes and the per-key failures separately. A failed key
// is simply absent from the values map; it never fails the batch.
func FetchDistinct[K comparable, V any](ctx context.Context, keys []K, limit int, fetch func(context.Context, K) (V, error)) (map[K]V, map[K]error) {
	values := make(map[K]V, len(keys))
	failures := make(map[K]error)

	seen := make(map[K]struct{}, len(keys))
	distinct := make([]K, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		distinct = append(distinct, k)
	}
	if len(distinct) == 0 {
		return values, failures
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, key := range distinct {
		key := key
		g.Go(func() error {
			v, err := fetch(ctx, key)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures[key] = err
				return nil
			}
			values[key] = v
			return nil
		})
	}
	_ = g.Wait()

	return values, failures
}
