package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/carbonledger/internal/query"
	"github.com/rshade/carbonledger/internal/storage"
	"github.com/rshade/carbonledger/internal/storage/memory"
)

func newTestEngine(t *testing.T) *query.Engine {
	t.Helper()

	store := memory.New()
	ctx := context.Background()
	category := 1

	emissions := []storage.Emission{
		{ID: "01TESTULID0000000000000001", Activity: "air travel", CO2e: 15.0, Scope: storage.ScopeIndirect, Category: &category},
		{ID: "01TESTULID0000000000000002", Activity: "electricity", CO2e: 3.5, Scope: storage.ScopePurchased},
	}
	for _, e := range emissions {
		require.NoError(t, store.AppendEmission(ctx, e))
	}

	return query.NewEngine(store)
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	return NewModel(newTestEngine(t), query.Params{})
}

func TestModelViewShowsLedger(t *testing.T) {
	m := newTestModel(t)

	view := m.View()
	assert.Contains(t, view, "Emission ledger")
	assert.Contains(t, view, "air travel")
	assert.Contains(t, view, "electricity")
	assert.Contains(t, view, "ledger total: 18.500")
	assert.Contains(t, view, "sort: none")
}

func TestModelCyclesSortOrder(t *testing.T) {
	m := newTestModel(t)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	m = next.(Model)
	assert.Equal(t, query.SortAscending, m.sort)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	m = next.(Model)
	assert.Equal(t, query.SortDescending, m.sort)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	m = next.(Model)
	assert.Equal(t, query.SortNone, m.sort)
}

func TestModelTogglesGrouping(t *testing.T) {
	m := newTestModel(t)
	assert.Contains(t, m.View(), "CO2e (kg)")

	// Each toggle swaps the column set, so the view must render cleanly
	// both ways with the rows from the other shape gone.
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}})
	m = next.(Model)
	assert.True(t, m.grouped)
	view := m.View()
	assert.Contains(t, view, "grouped: true")
	assert.Contains(t, view, "Total CO2e")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}})
	m = next.(Model)
	assert.False(t, m.grouped)
	assert.Contains(t, m.View(), "CO2e (kg)")
}

func TestModelSeededFromParams(t *testing.T) {
	scope := 2
	m := NewModel(newTestEngine(t), query.Params{
		Scope:   &scope,
		Sort:    query.SortDescending,
		Grouped: true,
	})

	assert.Equal(t, query.SortDescending, m.sort)
	assert.True(t, m.grouped)

	view := m.View()
	assert.Contains(t, view, "sort: descending")
	assert.Contains(t, view, "electricity")
	assert.NotContains(t, view, "air travel")

	// The ledger total stays ledger-wide even with the scope filter.
	assert.Contains(t, view, "ledger total: 18.500")
}

func TestModelQuitKeys(t *testing.T) {
	m := newTestModel(t)

	for _, key := range []string{"q", "esc", "ctrl+c"} {
		msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
		switch key {
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "ctrl+c":
			msg = tea.KeyMsg{Type: tea.KeyCtrlC}
		}
		_, cmd := m.Update(msg)
		require.NotNil(t, cmd, "key %q should quit", key)
	}
}
