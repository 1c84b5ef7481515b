// Package units converts quantities between measurement unit labels
// using a directed conversion table.
//
// Conversions are keyed by the ordered (from, to) pair and are not
// automatically invertible: the reverse pair must be registered
// separately if needed. This keeps the table minimal at the cost of
// asymmetry.
package units

import "strings"

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// ErrUnknownConversion indicates no table entry exists for the
// requested (from, to) unit pair. Comparable with errors.Is().
const ErrUnknownConversion = constError("unknown unit conversion")

// MilesToKilometres is the number of kilometres in one mile.
const MilesToKilometres = 1.60934

// Pair is a directed conversion key. Converting a value recorded in
// From into To multiplies it by the pair's table factor.
type Pair struct {
	From string
	To   string
}

// Table maps directed unit pairs to multiplication factors.
type Table map[Pair]float64

// DefaultTable returns the built-in conversion table.
func DefaultTable() Table {
	return Table{
		{From: "miles", To: "kilometres"}: MilesToKilometres,
	}
}

// Converter converts quantities between unit labels using an injected
// table. Unit labels are matched case-insensitively.
type Converter struct {
	table Table
}

// NewConverter creates a Converter over the given table. A nil table
// behaves as an empty one: only identity conversions succeed.
func NewConverter(table Table) *Converter {
	return &Converter{table: table}
}

// Convert returns value expressed in toUnit.
//
// When fromUnit equals toUnit the value is returned unchanged without
// consulting the table. Otherwise the directed (fromUnit, toUnit) entry
// is applied; a missing entry returns ErrUnknownConversion.
func (c *Converter) Convert(value float64, fromUnit, toUnit string) (float64, error) {
	from := normalizeUnit(fromUnit)
	to := normalizeUnit(toUnit)

	if from == to {
		return value, nil
	}

	factor, ok := c.table[Pair{From: from, To: to}]
	if !ok {
		return 0, ErrUnknownConversion
	}
	return value * factor, nil
}

func normalizeUnit(unit string) string {
	return strings.ToLower(strings.TrimSpace(unit))
}
