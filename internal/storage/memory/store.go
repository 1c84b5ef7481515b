// Package memory provides an in-memory implementation of the storage
// contracts, used for tests and ephemeral runs.
package memory

import (
	"context"
	"sync"

	"github.com/rshade/carbonledger/internal/storage"
)

type factorKey struct {
	activity         string
	lookupIdentifier string
}

// Store keeps emissions and factors in process memory. It is safe for
// concurrent use.
type Store struct {
	mu        sync.RWMutex
	emissions []storage.Emission
	factors   map[factorKey]storage.EmissionFactor
}

// New returns an empty store.
func New() *Store {
	return &Store{
		factors: make(map[factorKey]storage.EmissionFactor),
	}
}

// AppendEmission stores one fact in insertion order.
func (s *Store) AppendEmission(ctx context.Context, emission storage.Emission) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emissions = append(s.emissions, emission)
	return nil
}

// QueryEmissions returns matching facts in insertion order.
func (s *Store) QueryEmissions(ctx context.Context, filter storage.EmissionFilter) ([]storage.Emission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]storage.Emission, 0, len(s.emissions))
	for _, e := range s.emissions {
		if filter.Matches(e) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

// SumEmissions returns the ledger-wide co2e sum.
func (s *Store) SumEmissions(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum float64
	for _, e := range s.emissions {
		sum += e.CO2e
	}
	return sum, nil
}

// InsertFactor stores a new factor, rejecting duplicates.
func (s *Store) InsertFactor(ctx context.Context, factor storage.EmissionFactor) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := factorKey{activity: factor.Activity, lookupIdentifier: factor.LookupIdentifier}
	if _, exists := s.factors[key]; exists {
		return storage.ErrDuplicateFactor
	}
	s.factors[key] = factor
	return nil
}

// FindFactor returns the unique factor for the pair.
func (s *Store) FindFactor(ctx context.Context, activity, lookupIdentifier string) (storage.EmissionFactor, error) {
	if err := ctx.Err(); err != nil {
		return storage.EmissionFactor{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	factor, ok := s.factors[factorKey{activity: activity, lookupIdentifier: lookupIdentifier}]
	if !ok {
		return storage.EmissionFactor{}, storage.ErrFactorNotFound
	}
	return factor, nil
}
