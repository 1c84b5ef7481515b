package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/carbonledger/internal/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func intPtr(v int) *int { return &v }

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	require.Error(t, err)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening applies migrations at most once.
	store, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

func TestAppendAndQueryEmissions(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	emissions := []storage.Emission{
		{ID: "01HZX0000000000000000000A1", Activity: "air travel", CO2e: 15.0, Scope: storage.ScopeIndirect},
		{ID: "01HZX0000000000000000000A2", Activity: "electricity", CO2e: 3.5, Scope: storage.ScopePurchased, Category: intPtr(4)},
		{ID: "01HZX0000000000000000000A3", Activity: "air travel", CO2e: 7.2, Scope: storage.ScopeIndirect},
	}
	for _, e := range emissions {
		require.NoError(t, store.AppendEmission(ctx, e))
	}

	got, err := store.QueryEmissions(ctx, storage.EmissionFilter{})
	require.NoError(t, err)
	assert.Equal(t, emissions, got)

	scoped, err := store.QueryEmissions(ctx, storage.EmissionFilter{Scope: intPtr(3)})
	require.NoError(t, err)
	require.Len(t, scoped, 2)
	assert.Equal(t, "01HZX0000000000000000000A1", scoped[0].ID)
	assert.Equal(t, "01HZX0000000000000000000A3", scoped[1].ID)

	categorized, err := store.QueryEmissions(ctx, storage.EmissionFilter{Scope: intPtr(2), Category: intPtr(4)})
	require.NoError(t, err)
	require.Len(t, categorized, 1)
	assert.Equal(t, "electricity", categorized[0].Activity)
}

func TestSumEmissions(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	sum, err := store.SumEmissions(ctx)
	require.NoError(t, err)
	assert.Zero(t, sum)

	require.NoError(t, store.AppendEmission(ctx, storage.Emission{ID: "a", Activity: "x", CO2e: 1.25, Scope: storage.ScopeDirect}))
	require.NoError(t, store.AppendEmission(ctx, storage.Emission{ID: "b", Activity: "y", CO2e: 2.75, Scope: storage.ScopeDirect}))

	sum, err = store.SumEmissions(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, sum, 1e-9)
}

func TestInsertFactorUniqueness(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	first := storage.EmissionFactor{
		Activity:         "air travel",
		LookupIdentifier: "short haul, economy",
		Unit:             "miles",
		CO2eFactor:       0.15,
		Scope:            storage.ScopeIndirect,
	}
	require.NoError(t, store.InsertFactor(ctx, first))

	second := first
	second.CO2eFactor = 0.5
	err := store.InsertFactor(ctx, second)
	require.ErrorIs(t, err, storage.ErrDuplicateFactor)

	got, err := store.FindFactor(ctx, "air travel", "short haul, economy")
	require.NoError(t, err)
	assert.Equal(t, first, got)
}

func TestFindFactorNotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.FindFactor(context.Background(), "electricity", "atlantis")
	assert.ErrorIs(t, err, storage.ErrFactorNotFound)
}

func TestFactorCategoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	factor := storage.EmissionFactor{
		Activity:         "purchased goods and services",
		LookupIdentifier: "office supplies",
		Unit:             "usd",
		CO2eFactor:       0.05,
		Scope:            storage.ScopeIndirect,
		Category:         intPtr(1),
	}
	require.NoError(t, store.InsertFactor(ctx, factor))

	got, err := store.FindFactor(ctx, factor.Activity, factor.LookupIdentifier)
	require.NoError(t, err)
	require.NotNil(t, got.Category)
	assert.Equal(t, 1, *got.Category)
}
