package factor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/carbonledger/internal/storage"
	"github.com/rshade/carbonledger/internal/storage/memory"
)

func TestRegisterNormalizesKeys(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry(memory.New())

	err := registry.Register(ctx, storage.EmissionFactor{
		Activity:         "Air Travel",
		LookupIdentifier: "Short Haul, Economy",
		Unit:             "Miles",
		CO2eFactor:       0.15,
		Scope:            storage.ScopeIndirect,
	})
	require.NoError(t, err)

	got, err := registry.Lookup(ctx, "air travel", "short haul, economy")
	require.NoError(t, err)
	assert.Equal(t, "air travel", got.Activity)
	assert.Equal(t, "short haul, economy", got.LookupIdentifier)
	assert.Equal(t, "miles", got.Unit)
	assert.Equal(t, 0.15, got.CO2eFactor)
}

func TestRegisterRejectsDuplicatePair(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry(memory.New())

	original := storage.EmissionFactor{
		Activity:         "electricity",
		LookupIdentifier: "germany",
		Unit:             "kwh",
		CO2eFactor:       0.35,
		Scope:            storage.ScopePurchased,
	}
	require.NoError(t, registry.Register(ctx, original))

	// Same pair in different case is still a duplicate.
	duplicate := original
	duplicate.Activity = "Electricity"
	duplicate.LookupIdentifier = "GERMANY"
	duplicate.CO2eFactor = 0.99
	err := registry.Register(ctx, duplicate)
	require.ErrorIs(t, err, storage.ErrDuplicateFactor)

	// The first registration is retrievable unchanged.
	got, err := registry.Lookup(ctx, "electricity", "germany")
	require.NoError(t, err)
	assert.Equal(t, 0.35, got.CO2eFactor)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry(memory.New())

	tests := []struct {
		name   string
		factor storage.EmissionFactor
	}{
		{
			name: "empty activity",
			factor: storage.EmissionFactor{
				LookupIdentifier: "x",
				Scope:            storage.ScopeDirect,
			},
		},
		{
			name: "empty lookup identifier",
			factor: storage.EmissionFactor{
				Activity: "electricity",
				Scope:    storage.ScopeDirect,
			},
		},
		{
			name: "scope out of range",
			factor: storage.EmissionFactor{
				Activity:         "electricity",
				LookupIdentifier: "france",
				Scope:            storage.Scope(4),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, registry.Register(ctx, tt.factor))
		})
	}
}

func TestLookupNotFound(t *testing.T) {
	registry := NewRegistry(memory.New())

	_, err := registry.Lookup(context.Background(), "air travel", "long haul, first")
	assert.ErrorIs(t, err, storage.ErrFactorNotFound)
}

func TestLookupNoFuzzyMatch(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry(memory.New())

	require.NoError(t, registry.Register(ctx, storage.EmissionFactor{
		Activity:         "air travel",
		LookupIdentifier: "short haul, economy",
		Unit:             "miles",
		CO2eFactor:       0.15,
		Scope:            storage.ScopeIndirect,
	}))

	_, err := registry.Lookup(ctx, "air travel", "short haul")
	assert.ErrorIs(t, err, storage.ErrFactorNotFound)
}
