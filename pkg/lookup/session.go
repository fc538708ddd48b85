package lookup

import (
	"context"
	"encoding/json"

	"cooperativa/entities"
	"cooperativa/pkg/session"
)

// Session keys holding the lists of the form being edited.
const (
	KeyLaborForm   = "lookups_labor"
	KeyHarvestForm = "lookups_harvest"
)

// Remember keeps lk in the request's session under key so later refreshes
// of the same form can reuse it. Degraded lists are not kept.
func Remember(ctx context.Context, key string, lk entities.Lookups) {
	store := session.FromContext(ctx)
	if store == nil {
		return
	}
	if lk.Degraded || lk.Error != "" {
		store.Delete(key)
		return
	}
	raw, err := json.Marshal(lk)
	if err != nil {
		return
	}
	store.Set(key, string(raw))
}

// Recall returns the lists kept under key, calling load (and keeping its
// result) only when nothing usable is there.
func Recall(ctx context.Context, key string, load func(context.Context) (entities.Lookups, error)) (entities.Lookups, error) {
	if store := session.FromContext(ctx); store != nil {
		if raw := store.Get(key); raw != "" {
			var lk entities.Lookups
			if err := json.Unmarshal([]byte(raw), &lk); err == nil {
				return lk, nil
			}
		}
	}
	lk, err := load(ctx)
	Remember(ctx, key, lk)
	return lk, err
}
