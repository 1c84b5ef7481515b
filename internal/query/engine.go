// Package query filters, sorts, and aggregates the emission ledger.
//
// The pipeline order is fixed: filter, then sort, then group. Filtering
// happens in the store; sorting and grouping are pure transformations
// over the returned facts.
package query

import (
	"context"
	"fmt"
	"sort"

	"github.com/rshade/carbonledger/internal/storage"
)

// SortOrder selects how results are ordered by co2e.
type SortOrder int

const (
	// SortNone preserves the ledger's natural (insertion) order.
	SortNone SortOrder = iota

	// SortAscending orders by co2e, smallest first.
	SortAscending

	// SortDescending orders by co2e, largest first.
	SortDescending
)

// String returns a human-readable representation of the SortOrder.
func (s SortOrder) String() string {
	switch s {
	case SortNone:
		return "none"
	case SortAscending:
		return "ascending"
	case SortDescending:
		return "descending"
	default:
		return fmt.Sprintf("SortOrder(%d)", int(s))
	}
}

// Params selects and shapes one ledger query.
type Params struct {
	// Scope keeps only facts with this scope when set.
	Scope *int

	// Category keeps only facts with this category when set. Both
	// filters combine with AND.
	Category *int

	// Sort orders the filtered facts by co2e, or preserves insertion
	// order when SortNone.
	Sort SortOrder

	// Grouped aggregates the (filtered, sorted) facts by activity.
	Grouped bool
}

// GroupedEmission aggregates the emission facts sharing one activity
// within a single query's filtered result set.
//
// Scope and Category are taken from the last member processed in
// iteration order, not validated across the group; an activity spanning
// multiple scopes or categories silently reports one of them.
type GroupedEmission struct {
	Activity  string
	TotalCO2e float64
	Count     int
	Scope     storage.Scope
	Category  *int
}

// Result holds either flat or grouped emissions, per Params.Grouped.
type Result struct {
	Emissions []storage.Emission
	Groups    []GroupedEmission
	Grouped   bool
}

// Engine reads and transforms the emission ledger.
type Engine struct {
	store storage.EmissionStore
}

// NewEngine creates an Engine over the given ledger store.
func NewEngine(store storage.EmissionStore) *Engine {
	return &Engine{store: store}
}

// Emissions runs the filter → sort → group pipeline.
func (e *Engine) Emissions(ctx context.Context, params Params) (Result, error) {
	facts, err := e.store.QueryEmissions(ctx, storage.EmissionFilter{
		Scope:    params.Scope,
		Category: params.Category,
	})
	if err != nil {
		return Result{}, fmt.Errorf("query ledger: %w", err)
	}

	if params.Sort != SortNone {
		sortEmissions(facts, params.Sort)
	}

	if !params.Grouped {
		return Result{Emissions: facts}, nil
	}

	groups := groupByActivity(facts)
	if params.Sort != SortNone {
		sortGroups(groups, params.Sort)
	}
	return Result{Groups: groups, Grouped: true}, nil
}

// TotalEmissions returns the co2e sum over all persisted facts. It is
// always ledger-wide and never honors the filters of an Emissions
// call; callers needing a filtered total must sum the filtered results
// themselves.
func (e *Engine) TotalEmissions(ctx context.Context) (float64, error) {
	sum, err := e.store.SumEmissions(ctx)
	if err != nil {
		return 0, fmt.Errorf("sum ledger: %w", err)
	}
	return sum, nil
}

func sortEmissions(facts []storage.Emission, order SortOrder) {
	sort.SliceStable(facts, func(i, j int) bool {
		if order == SortDescending {
			return facts[i].CO2e > facts[j].CO2e
		}
		return facts[i].CO2e < facts[j].CO2e
	})
}

// groupByActivity partitions facts by activity, preserving the
// first-occurrence order of each activity in the input.
func groupByActivity(facts []storage.Emission) []GroupedEmission {
	index := make(map[string]int)
	groups := make([]GroupedEmission, 0)

	for _, fact := range facts {
		i, seen := index[fact.Activity]
		if !seen {
			i = len(groups)
			index[fact.Activity] = i
			groups = append(groups, GroupedEmission{Activity: fact.Activity})
		}
		groups[i].Count++
		groups[i].TotalCO2e += fact.CO2e
		groups[i].Scope = fact.Scope
		groups[i].Category = fact.Category
	}

	return groups
}

func sortGroups(groups []GroupedEmission, order SortOrder) {
	sort.SliceStable(groups, func(i, j int) bool {
		if order == SortDescending {
			return groups[i].TotalCO2e > groups[j].TotalCO2e
		}
		return groups[i].TotalCO2e < groups[j].TotalCO2e
	})
}
