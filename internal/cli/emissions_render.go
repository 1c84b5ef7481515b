package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rshade/carbonledger/internal/query"
	"github.com/rshade/carbonledger/internal/storage"
)

// printer is the locale-aware message printer for number formatting.
//
//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var printer = message.NewPrinter(language.English)

//nolint:gochecknoglobals // Styles are immutable render configuration.
var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	totalStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

// renderEmissions writes the table view for a query result plus the
// ledger-wide total.
func renderEmissions(w io.Writer, result query.Result, sum float64) {
	if result.Grouped {
		renderGroupedTable(w, result.Groups)
	} else {
		renderFlatTable(w, result.Emissions)
	}
	fmt.Fprintln(w, totalStyle.Render(printer.Sprintf("Ledger total: %.3f kg CO2e", sum)))
}

func renderFlatTable(w io.Writer, emissions []storage.Emission) {
	if len(emissions) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No emissions match the query."))
		return
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-32s %14s %6s %9s", "ACTIVITY", "CO2E (KG)", "SCOPE", "CATEGORY")))
	for _, e := range emissions {
		fmt.Fprintf(w, "%-32s %14s %6d %9s\n",
			e.Activity,
			printer.Sprintf("%.3f", e.CO2e),
			int(e.Scope),
			categoryLabel(e.Category),
		)
	}
}

func renderGroupedTable(w io.Writer, groups []query.GroupedEmission) {
	if len(groups) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No emissions match the query."))
		return
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-32s %14s %7s %6s %9s", "ACTIVITY", "TOTAL CO2E", "COUNT", "SCOPE", "CATEGORY")))
	for _, g := range groups {
		fmt.Fprintf(w, "%-32s %14s %7d %6d %9s\n",
			g.Activity,
			printer.Sprintf("%.3f", g.TotalCO2e),
			g.Count,
			int(g.Scope),
			categoryLabel(g.Category),
		)
	}
}

func categoryLabel(category *int) string {
	if category == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *category)
}
