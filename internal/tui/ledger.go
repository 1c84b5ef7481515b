// Package tui provides an interactive terminal browser for the
// emission ledger.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/carbonledger/internal/query"
	"github.com/rshade/carbonledger/internal/storage"
)

const tableHeight = 15

//nolint:gochecknoglobals // Styles are immutable render configuration.
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	statusStyle = lipgloss.NewStyle().Faint(true).Padding(0, 1)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Padding(0, 1)
)

// Model is the Bubble Tea model for the ledger browser. It re-queries
// the engine whenever the sort order or grouping changes. The scope
// and category filters are fixed for the session.
type Model struct {
	engine   *query.Engine
	table    table.Model
	scope    *int
	category *int
	sort     query.SortOrder
	grouped  bool
	sum      float64
	err      error
}

// NewModel creates the browser model seeded from params and loads the
// initial view.
func NewModel(engine *query.Engine, params query.Params) Model {
	t := table.New(table.WithFocused(true), table.WithHeight(tableHeight))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true)
	t.SetStyles(styles)

	m := Model{
		engine:   engine,
		table:    t,
		scope:    params.Scope,
		category: params.Category,
		sort:     params.Sort,
		grouped:  params.Grouped,
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "s":
			m.sort = nextSortOrder(m.sort)
			m.refresh()
			return m, nil
		case "g":
			m.grouped = !m.grouped
			m.refresh()
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.table.SetWidth(msg.Width)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("error: %v", m.err)) + "\n"
	}

	title := titleStyle.Render("Emission ledger")
	status := statusStyle.Render(fmt.Sprintf(
		"sort: %s • grouped: %t • ledger total: %.3f kg CO2e • s sort  g group  q quit",
		m.sort, m.grouped, m.sum,
	))
	return title + "\n" + m.table.View() + "\n" + status + "\n"
}

func (m *Model) refresh() {
	ctx := context.Background()

	result, err := m.engine.Emissions(ctx, query.Params{
		Scope:    m.scope,
		Category: m.category,
		Sort:     m.sort,
		Grouped:  m.grouped,
	})
	if err != nil {
		m.err = err
		return
	}
	sum, err := m.engine.TotalEmissions(ctx)
	if err != nil {
		m.err = err
		return
	}

	m.err = nil
	m.sum = sum

	// Clear the rows before swapping columns: the table re-renders on
	// SetColumns, and stale rows with the old cell count index out of
	// range against the new column set.
	m.table.SetRows(nil)
	if m.grouped {
		m.table.SetColumns(groupedColumns())
		m.table.SetRows(groupedRows(result.Groups))
	} else {
		m.table.SetColumns(flatColumns())
		m.table.SetRows(flatRows(result.Emissions))
	}
	m.table.GotoTop()
}

func flatColumns() []table.Column {
	return []table.Column{
		{Title: "Activity", Width: 32},
		{Title: "CO2e (kg)", Width: 14},
		{Title: "Scope", Width: 6},
		{Title: "Category", Width: 9},
	}
}

func groupedColumns() []table.Column {
	return []table.Column{
		{Title: "Activity", Width: 32},
		{Title: "Total CO2e", Width: 14},
		{Title: "Count", Width: 7},
		{Title: "Scope", Width: 6},
		{Title: "Category", Width: 9},
	}
}

func flatRows(emissions []storage.Emission) []table.Row {
	rows := make([]table.Row, 0, len(emissions))
	for _, e := range emissions {
		rows = append(rows, table.Row{
			e.Activity,
			fmt.Sprintf("%.3f", e.CO2e),
			fmt.Sprintf("%d", int(e.Scope)),
			categoryCell(e.Category),
		})
	}
	return rows
}

func groupedRows(groups []query.GroupedEmission) []table.Row {
	rows := make([]table.Row, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, table.Row{
			g.Activity,
			fmt.Sprintf("%.3f", g.TotalCO2e),
			fmt.Sprintf("%d", g.Count),
			fmt.Sprintf("%d", int(g.Scope)),
			categoryCell(g.Category),
		})
	}
	return rows
}

func categoryCell(category *int) string {
	if category == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *category)
}

func nextSortOrder(order query.SortOrder) query.SortOrder {
	switch order {
	case query.SortNone:
		return query.SortAscending
	case query.SortAscending:
		return query.SortDescending
	default:
		return query.SortNone
	}
}

// Run starts the interactive ledger browser seeded from params and
// blocks until the user quits. The sort order and grouping can be
// changed from inside the browser; the filters cannot.
func Run(engine *query.Engine, params query.Params) error {
	p := tea.NewProgram(NewModel(engine, params), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running ledger browser: %w", err)
	}
	return nil
}
