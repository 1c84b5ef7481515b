// Package storage defines the persistence contracts for the emission
// ledger and the emission-factor registry backing store.
//
// The ledger is append-only: an Emission is written once and never
// mutated. Factor uniqueness on (activity, lookup identifier) must be
// enforced by the store itself (unique index), not merely checked by
// callers, so that concurrent registrations cannot race past a
// check-then-insert.
package storage

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrDuplicateFactor indicates a factor already exists for the
	// (activity, lookup identifier) pair. The existing entry is left
	// untouched.
	ErrDuplicateFactor = errors.New("emission factor already registered")

	// ErrFactorNotFound indicates no factor matches a resolution key.
	ErrFactorNotFound = errors.New("emission factor not found")

	// ErrPersistence indicates the store rejected a read or write.
	ErrPersistence = errors.New("persistence failure")
)

// Scope classifies an emission per standard carbon-accounting categories.
type Scope int

const (
	// ScopeDirect covers emissions from sources owned by the reporter.
	ScopeDirect Scope = 1

	// ScopePurchased covers emissions from purchased energy.
	ScopePurchased Scope = 2

	// ScopeIndirect covers all other indirect emissions.
	ScopeIndirect Scope = 3
)

// Valid reports whether s is one of the three defined scopes.
func (s Scope) Valid() bool {
	return s >= ScopeDirect && s <= ScopeIndirect
}

// String returns a human-readable representation of the Scope.
func (s Scope) String() string {
	switch s {
	case ScopeDirect:
		return "direct"
	case ScopePurchased:
		return "purchased"
	case ScopeIndirect:
		return "indirect"
	default:
		return fmt.Sprintf("Scope(%d)", int(s))
	}
}

// EmissionFactor is a known conversion rate for one activity and
// lookup-identifier pair. Activity and LookupIdentifier are stored
// lower-cased; the pair is unique across the registry.
type EmissionFactor struct {
	Activity         string
	LookupIdentifier string

	// Unit is the unit the factor expects quantities in.
	Unit string

	// CO2eFactor is kg CO2e per one Unit.
	CO2eFactor float64

	Scope    Scope
	Category *int
}

// Emission is one immutable computed emission fact.
type Emission struct {
	// ID is a ULID assigned when the emission is computed. Ledger
	// ordering is the store's insertion sequence, not the ID.
	ID string

	Activity string
	CO2e     float64
	Scope    Scope
	Category *int
}

// EmissionFilter selects emissions by exact equality on scope and/or
// category. Nil fields match everything; set fields combine with AND.
type EmissionFilter struct {
	Scope    *int
	Category *int
}

// Matches reports whether e satisfies the filter.
func (f EmissionFilter) Matches(e Emission) bool {
	if f.Scope != nil && int(e.Scope) != *f.Scope {
		return false
	}
	if f.Category != nil && (e.Category == nil || *e.Category != *f.Category) {
		return false
	}
	return true
}

// EmissionStore persists emission facts in insertion order.
type EmissionStore interface {
	// AppendEmission durably stores one fact.
	AppendEmission(ctx context.Context, emission Emission) error

	// QueryEmissions returns matching facts in ledger (insertion) order.
	QueryEmissions(ctx context.Context, filter EmissionFilter) ([]Emission, error)

	// SumEmissions returns the ledger-wide sum of co2e, ignoring any
	// filter. An empty ledger sums to zero.
	SumEmissions(ctx context.Context) (float64, error)
}

// FactorStore persists emission factors with store-level uniqueness on
// (activity, lookup identifier).
type FactorStore interface {
	// InsertFactor stores a new factor. Returns ErrDuplicateFactor when
	// the (activity, lookup identifier) pair already exists.
	InsertFactor(ctx context.Context, factor EmissionFactor) error

	// FindFactor returns the unique factor for the pair, or
	// ErrFactorNotFound.
	FindFactor(ctx context.Context, activity, lookupIdentifier string) (EmissionFactor, error)
}
