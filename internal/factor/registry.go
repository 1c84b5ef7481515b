// Package factor resolves emission factors keyed by case-normalized
// (activity, lookup identifier) pairs.
package factor

import (
	"context"
	"fmt"
	"strings"

	"github.com/rshade/carbonledger/internal/storage"
)

// Registry is the single source of truth for emission-factor lookup.
// It normalizes keys and delegates persistence to a FactorStore, which
// enforces pair uniqueness.
type Registry struct {
	store storage.FactorStore
}

// NewRegistry creates a Registry over the given backing store.
func NewRegistry(store storage.FactorStore) *Registry {
	return &Registry{store: store}
}

// Register inserts a new factor. The activity, lookup identifier, and
// unit are lower-cased before storage. Returns
// storage.ErrDuplicateFactor when the pair already exists; the existing
// entry is left untouched.
func (r *Registry) Register(ctx context.Context, f storage.EmissionFactor) error {
	f.Activity = normalizeKey(f.Activity)
	f.LookupIdentifier = normalizeKey(f.LookupIdentifier)
	f.Unit = normalizeKey(f.Unit)

	if f.Activity == "" {
		return fmt.Errorf("factor activity is required")
	}
	if f.LookupIdentifier == "" {
		return fmt.Errorf("factor lookup identifier is required")
	}
	if !f.Scope.Valid() {
		return fmt.Errorf("factor scope must be 1, 2, or 3, got %d", int(f.Scope))
	}

	return r.store.InsertFactor(ctx, f)
}

// Lookup returns the unique factor for the pair using an exact,
// case-normalized match on both fields. No partial or fuzzy matching.
// Returns storage.ErrFactorNotFound when no factor matches.
func (r *Registry) Lookup(ctx context.Context, activity, lookupIdentifier string) (storage.EmissionFactor, error) {
	return r.store.FindFactor(ctx, normalizeKey(activity), normalizeKey(lookupIdentifier))
}

func normalizeKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
