package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/carbonledger/internal/query"
	"github.com/rshade/carbonledger/internal/tui"
)

func newEmissionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emissions",
		Short: "Query the emission ledger",
	}
	cmd.AddCommand(newEmissionsListCmd())
	return cmd
}

// emissionsListParams holds the parameters for the emissions list
// command execution.
type emissionsListParams struct {
	Scope       int
	Category    int
	Sort        string
	Grouped     bool
	Output      string
	Interactive bool
}

func newEmissionsListCmd() *cobra.Command {
	var params emissionsListParams

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List or aggregate emission facts",
		Long: `List emission facts from the ledger.

Facts can be filtered by scope and category, sorted by co2e, and
grouped by activity. The reported total is ledger-wide and does not
honor the filters.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			queryParams, err := buildQueryParams(cmd, params)
			if err != nil {
				return err
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			if params.Interactive {
				if !term.IsTerminal(int(os.Stdout.Fd())) {
					return errors.New("interactive mode requires a terminal")
				}
				return tui.Run(a.engine, queryParams)
			}

			ctx := cmd.Context()
			result, err := a.engine.Emissions(ctx, queryParams)
			if err != nil {
				return err
			}
			sum, err := a.engine.TotalEmissions(ctx)
			if err != nil {
				return err
			}

			switch params.Output {
			case "json":
				return writeEmissionsJSON(cmd, result, sum)
			case "ndjson":
				return writeEmissionsNDJSON(cmd, result)
			case "table":
				renderEmissions(cmd.OutOrStdout(), result, sum)
				return nil
			default:
				return fmt.Errorf("unknown output format %q (expected table, json, or ndjson)", params.Output)
			}
		},
	}

	cmd.Flags().IntVar(&params.Scope, "scope", 0, "filter by scope (1, 2, or 3)")
	cmd.Flags().IntVar(&params.Category, "category", 0, "filter by category")
	cmd.Flags().StringVar(&params.Sort, "sort", "none", "sort by co2e: none, asc, or desc")
	cmd.Flags().BoolVar(&params.Grouped, "grouped", false, "aggregate by activity")
	cmd.Flags().StringVar(&params.Output, "output", "table", "output format: table, json, or ndjson")
	cmd.Flags().BoolVar(&params.Interactive, "interactive", false, "browse the ledger interactively")

	return cmd
}

func buildQueryParams(cmd *cobra.Command, params emissionsListParams) (query.Params, error) {
	qp := query.Params{Grouped: params.Grouped}

	if cmd.Flags().Changed("scope") {
		scope := params.Scope
		qp.Scope = &scope
	}
	if cmd.Flags().Changed("category") {
		category := params.Category
		qp.Category = &category
	}

	switch params.Sort {
	case "none", "":
		qp.Sort = query.SortNone
	case "asc":
		qp.Sort = query.SortAscending
	case "desc":
		qp.Sort = query.SortDescending
	default:
		return query.Params{}, fmt.Errorf("unknown sort order %q (expected none, asc, or desc)", params.Sort)
	}

	return qp, nil
}

type emissionJSON struct {
	Activity string  `json:"activity"`
	CO2e     float64 `json:"co2e"`
	Scope    int     `json:"scope"`
	Category *int    `json:"category"`
}

type groupedEmissionJSON struct {
	Activity  string  `json:"activity"`
	TotalCO2e float64 `json:"total_co2e"`
	Count     int     `json:"count"`
	Scope     int     `json:"scope"`
	Category  *int    `json:"category"`
}

type emissionsListJSON struct {
	Emissions    []any   `json:"emissions"`
	EmissionsSum float64 `json:"emissions_sum"`
}

func writeEmissionsJSON(cmd *cobra.Command, result query.Result, sum float64) error {
	out := emissionsListJSON{Emissions: make([]any, 0), EmissionsSum: sum}

	if result.Grouped {
		for _, g := range result.Groups {
			out.Emissions = append(out.Emissions, groupedEmissionJSON{
				Activity:  g.Activity,
				TotalCO2e: g.TotalCO2e,
				Count:     g.Count,
				Scope:     int(g.Scope),
				Category:  g.Category,
			})
		}
	} else {
		for _, e := range result.Emissions {
			out.Emissions = append(out.Emissions, emissionJSON{
				Activity: e.Activity,
				CO2e:     e.CO2e,
				Scope:    int(e.Scope),
				Category: e.Category,
			})
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// writeEmissionsNDJSON streams one JSON document per line, one line per
// emission or group. No envelope and no sum line, so the output can be
// piped straight into line-oriented tools.
func writeEmissionsNDJSON(cmd *cobra.Command, result query.Result) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())

	if result.Grouped {
		for _, g := range result.Groups {
			if err := encoder.Encode(groupedEmissionJSON{
				Activity:  g.Activity,
				TotalCO2e: g.TotalCO2e,
				Count:     g.Count,
				Scope:     int(g.Scope),
				Category:  g.Category,
			}); err != nil {
				return err
			}
		}
		return nil
	}

	for _, e := range result.Emissions {
		if err := encoder.Encode(emissionJSON{
			Activity: e.Activity,
			CO2e:     e.CO2e,
			Scope:    int(e.Scope),
			Category: e.Category,
		}); err != nil {
			return err
		}
	}
	return nil
}
