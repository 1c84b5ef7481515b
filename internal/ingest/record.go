// Package ingest parses raw activity-usage observations and emission
// factor rows from tabular input.
//
// Each known activity has its own record shape; the closed set of
// shapes is validated here, at the ingestion boundary, before the
// computation pipeline runs.
package ingest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rshade/carbonledger/internal/storage"
)

// Known activity names, lower-cased canonical form.
const (
	ActivityAirTravel      = "air travel"
	ActivityElectricity    = "electricity"
	ActivityPurchasedGoods = "purchased goods and services"
)

var (
	// ErrUnknownActivity indicates a raw record's activity tag has no
	// known schema.
	ErrUnknownActivity = errors.New("unknown activity type")

	// ErrInputSource indicates the raw input sequence itself could not
	// be obtained. This is fatal for the whole batch, unlike per-record
	// parse failures.
	ErrInputSource = errors.New("input source unavailable")
)

// Record is one validated raw activity observation, ready for factor
// resolution.
type Record interface {
	// Activity is the lower-cased canonical activity name.
	Activity() string

	// LookupIdentifier is the lower-cased sub-key selecting the factor
	// row to apply.
	LookupIdentifier() string

	// Quantity is the raw usage amount.
	Quantity() float64

	// Unit is the lower-cased unit the quantity was recorded in.
	Unit() string
}

// AirTravelRecord is a flight distance observation.
type AirTravelRecord struct {
	FlightRange       string
	PassengerClass    string
	DistanceUnits     string
	DistanceTravelled float64
}

// Activity returns the canonical activity name.
func (r AirTravelRecord) Activity() string { return ActivityAirTravel }

// LookupIdentifier combines flight range and passenger class.
func (r AirTravelRecord) LookupIdentifier() string {
	return r.FlightRange + ", " + r.PassengerClass
}

// Quantity returns the distance travelled.
func (r AirTravelRecord) Quantity() float64 { return r.DistanceTravelled }

// Unit returns the distance units.
func (r AirTravelRecord) Unit() string { return r.DistanceUnits }

// ElectricityRecord is an electricity usage observation.
type ElectricityRecord struct {
	Country string
	Units   string
	Usage   float64
}

// Activity returns the canonical activity name.
func (r ElectricityRecord) Activity() string { return ActivityElectricity }

// LookupIdentifier is the country of consumption.
func (r ElectricityRecord) LookupIdentifier() string { return r.Country }

// Quantity returns the electricity usage.
func (r ElectricityRecord) Quantity() float64 { return r.Usage }

// Unit returns the usage units.
func (r ElectricityRecord) Unit() string { return r.Units }

// PurchasedGoodsRecord is a spend observation on goods or services.
type PurchasedGoodsRecord struct {
	SupplierCategory string
	SpendUnits       string
	Spend            float64
}

// Activity returns the canonical activity name.
func (r PurchasedGoodsRecord) Activity() string { return ActivityPurchasedGoods }

// LookupIdentifier is the supplier category.
func (r PurchasedGoodsRecord) LookupIdentifier() string { return r.SupplierCategory }

// Quantity returns the spend amount.
func (r PurchasedGoodsRecord) Quantity() float64 { return r.Spend }

// Unit returns the spend units.
func (r PurchasedGoodsRecord) Unit() string { return r.SpendUnits }

// Row is one tabular input row keyed by lower-cased column name.
type Row map[string]string

// ParseRecord validates one raw row against the schema for its
// activity tag and returns the typed record. Returns
// ErrUnknownActivity for activities outside the known set.
func ParseRecord(row Row) (Record, error) {
	activity := strings.ToLower(strings.TrimSpace(row["activity"]))

	switch activity {
	case ActivityAirTravel:
		distance, err := floatField(row, "distance travelled")
		if err != nil {
			return nil, err
		}
		return AirTravelRecord{
			FlightRange:       lowerField(row, "flight range"),
			PassengerClass:    lowerField(row, "passenger class"),
			DistanceUnits:     lowerField(row, "distance units"),
			DistanceTravelled: distance,
		}, nil

	case ActivityElectricity:
		usage, err := floatField(row, "electricity usage")
		if err != nil {
			return nil, err
		}
		return ElectricityRecord{
			Country: lowerField(row, "country"),
			Units:   lowerField(row, "units"),
			Usage:   usage,
		}, nil

	case ActivityPurchasedGoods:
		spend, err := floatField(row, "spend")
		if err != nil {
			return nil, err
		}
		return PurchasedGoodsRecord{
			SupplierCategory: lowerField(row, "supplier category"),
			SpendUnits:       lowerField(row, "spend units"),
			Spend:            spend,
		}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownActivity, activity)
	}
}

// ParseFactorRow converts one raw factor row into an EmissionFactor.
// Expected columns: activity, lookup identifiers, unit, co2e, scope,
// and an optional category.
func ParseFactorRow(row Row) (storage.EmissionFactor, error) {
	co2e, err := floatField(row, "co2e")
	if err != nil {
		return storage.EmissionFactor{}, err
	}
	scope, err := intField(row, "scope")
	if err != nil {
		return storage.EmissionFactor{}, err
	}

	f := storage.EmissionFactor{
		Activity:         lowerField(row, "activity"),
		LookupIdentifier: lowerField(row, "lookup identifiers"),
		Unit:             lowerField(row, "unit"),
		CO2eFactor:       co2e,
		Scope:            storage.Scope(scope),
	}

	if raw := strings.TrimSpace(row["category"]); raw != "" {
		category, err := strconv.Atoi(raw)
		if err != nil {
			return storage.EmissionFactor{}, fmt.Errorf("column %q: %w", "category", err)
		}
		f.Category = &category
	}

	return f, nil
}

func lowerField(row Row, name string) string {
	return strings.ToLower(strings.TrimSpace(row[name]))
}

func floatField(row Row, name string) (float64, error) {
	raw := strings.TrimSpace(row[name])
	if raw == "" {
		return 0, fmt.Errorf("column %q is required", name)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("column %q: %w", name, err)
	}
	return value, nil
}

func intField(row Row, name string) (int, error) {
	raw := strings.TrimSpace(row[name])
	if raw == "" {
		return 0, fmt.Errorf("column %q is required", name)
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("column %q: %w", name, err)
	}
	return value, nil
}
