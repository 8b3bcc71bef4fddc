package app

import (
	"context"
	"fmt"

	"depgraph/internal/data/store"
)

// Persist loads res into st, tagging the load with the run id. With clear the
// store is emptied first.
func (a *App) Persist(ctx context.Context, st store.Store, res *Result, clear bool) (store.LoadStats, error) {
	if st == nil {
		return store.LoadStats{}, nil
	}
	if res == nil || res.Model == nil {
		return store.LoadStats{}, fmt.Errorf("persist: no analysis result")
	}
	return store.Load(ctx, st, res.Model, store.LoadOptions{
		Clear: clear,
		Run: &store.Run{
			ID:         res.RunID,
			Root:       res.Root,
			StartedAt:  res.StartedAt,
			FinishedAt: res.FinishedAt,
			Stats:      res.Model.Stats(),
		},
	})
}
