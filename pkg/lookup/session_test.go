package lookup

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cooperativa/entities"
	"cooperativa/pkg/session"
)

func TestRecallLoadsOncePerSession(t *testing.T) {
	ctx := session.WithStore(context.Background(), session.NewMemoryStore())
	calls := 0
	load := func(context.Context) (entities.Lookups, error) {
		calls++
		return entities.Lookups{
			Campaigns: []entities.Campaign{{ID: 1, Name: "Campaña 2024"}},
			Inputs:    []entities.Input{{ID: 5, Name: "Urea", Available: entities.NumberOf(40), Unit: "kg"}},
		}, nil
	}

	first, err := Recall(ctx, KeyLaborForm, load)
	require.NoError(t, err)
	second, err := Recall(ctx, KeyLaborForm, load)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
	assert.Equal(t, 40.0, second.Inputs[0].Available.V)
}

func TestDegradedListsAreNotKept(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := session.WithStore(context.Background(), store)
	Remember(ctx, KeyHarvestForm, entities.Lookups{Campaigns: []entities.Campaign{{ID: 1}}})
	require.NotEmpty(t, store.Get(KeyHarvestForm))

	Remember(ctx, KeyHarvestForm, entities.Lookups{Degraded: true})
	assert.Empty(t, store.Get(KeyHarvestForm))

	_, err := Recall(ctx, KeyHarvestForm, func(context.Context) (entities.Lookups, error) {
		return entities.Lookups{Error: "sin conexión"}, errors.New("down")
	})
	assert.Error(t, err)
	assert.Empty(t, store.Get(KeyHarvestForm))
}

func TestRecallWithoutSessionAlwaysLoads(t *testing.T) {
	calls := 0
	load := func(context.Context) (entities.Lookups, error) { calls++; return entities.Lookups{}, nil }
	_, _ = Recall(context.Background(), KeyLaborForm, load)
	_, _ = Recall(context.Background(), KeyLaborForm, load)
	assert.Equal(t, 2, calls)
}
