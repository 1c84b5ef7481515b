// Package compute implements the emission computation pipeline: it
// turns raw activity records into persisted emission facts by resolving
// factors, converting units, and deriving CO2e values.
package compute

import (
	"context"
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/rshade/carbonledger/internal/factor"
	"github.com/rshade/carbonledger/internal/ingest"
	"github.com/rshade/carbonledger/internal/logging"
	"github.com/rshade/carbonledger/internal/metrics"
	"github.com/rshade/carbonledger/internal/storage"
	"github.com/rshade/carbonledger/internal/units"
)

// Failure reason labels for metrics.
const (
	reasonInvalidRow        = "invalid_row"
	reasonUnknownActivity   = "unknown_activity"
	reasonFactorNotFound    = "factor_not_found"
	reasonUnknownConversion = "unknown_conversion"
	reasonPersistence       = "persistence"
)

// BatchResult summarizes one batch run. Record-level failures are
// non-fatal: failed records are skipped and the rest of the batch still
// commits, so Success=false means "some subset committed", never "no
// records committed".
type BatchResult struct {
	// Processed is the number of records that produced a durable fact.
	Processed int

	// Failed is the number of records skipped due to per-record
	// failures.
	Failed int

	// Success is true only when every record in the batch succeeded.
	Success bool
}

// Computer converts raw activity records into emission facts.
type Computer struct {
	registry  *factor.Registry
	converter *units.Converter
	store     storage.EmissionStore
	metrics   *metrics.Metrics
}

// NewComputer wires the pipeline's collaborators.
func NewComputer(
	registry *factor.Registry,
	converter *units.Converter,
	store storage.EmissionStore,
	m *metrics.Metrics,
) *Computer {
	return &Computer{
		registry:  registry,
		converter: converter,
		store:     store,
		metrics:   m,
	}
}

// Compute derives one emission fact from a validated record without
// persisting it.
//
// The factor is resolved by (activity, lookup identifier); when the
// record's unit differs from the factor's unit the quantity is
// converted first. The resulting fact carries the factor's scope and
// category and a freshly assigned ULID.
func (c *Computer) Compute(ctx context.Context, record ingest.Record) (storage.Emission, error) {
	f, err := c.registry.Lookup(ctx, record.Activity(), record.LookupIdentifier())
	if err != nil {
		return storage.Emission{}, fmt.Errorf("resolve factor for %q/%q: %w",
			record.Activity(), record.LookupIdentifier(), err)
	}

	quantity := record.Quantity()
	if record.Unit() != f.Unit {
		quantity, err = c.converter.Convert(quantity, record.Unit(), f.Unit)
		if err != nil {
			return storage.Emission{}, fmt.Errorf("convert %q to %q: %w", record.Unit(), f.Unit, err)
		}
	}

	return storage.Emission{
		ID:       ulid.Make().String(),
		Activity: record.Activity(),
		CO2e:     quantity * f.CO2eFactor,
		Scope:    f.Scope,
		Category: f.Category,
	}, nil
}

// IngestRows runs the pipeline over an ordered batch of raw rows.
//
// Each row is parsed, computed, and appended to the ledger before the
// next row starts. A failing row is logged, counted, and skipped;
// earlier appends are never rolled back.
func (c *Computer) IngestRows(ctx context.Context, rows []ingest.Row) BatchResult {
	log := logging.FromContext(ctx)
	result := BatchResult{Success: true}

	for i, row := range rows {
		record, err := ingest.ParseRecord(row)
		if err != nil {
			log.Warn().Int("row", i).Err(err).Msg("skipping unparseable record")
			c.metrics.RecordFailed(failureReason(err))
			result.Failed++
			result.Success = false
			continue
		}

		emission, err := c.Compute(ctx, record)
		if err != nil {
			log.Warn().
				Int("row", i).
				Str("activity", record.Activity()).
				Str("lookup_identifier", record.LookupIdentifier()).
				Err(err).
				Msg("skipping uncomputable record")
			c.metrics.RecordFailed(failureReason(err))
			result.Failed++
			result.Success = false
			continue
		}

		if err := c.store.AppendEmission(ctx, emission); err != nil {
			log.Warn().
				Int("row", i).
				Str("activity", emission.Activity).
				Float64("co2e", emission.CO2e).
				Err(err).
				Msg("skipping unpersistable record")
			c.metrics.RecordFailed(reasonPersistence)
			result.Failed++
			result.Success = false
			continue
		}

		c.metrics.RecordIngested(emission.Activity)
		result.Processed++
	}

	return result
}

// RegisterFactorRows registers an ordered batch of raw factor rows with
// the same continue-on-failure policy as record ingestion.
func (c *Computer) RegisterFactorRows(ctx context.Context, rows []ingest.Row) BatchResult {
	log := logging.FromContext(ctx)
	result := BatchResult{Success: true}

	for i, row := range rows {
		f, err := ingest.ParseFactorRow(row)
		if err == nil {
			err = c.registry.Register(ctx, f)
		}
		if err != nil {
			log.Warn().
				Int("row", i).
				Str("activity", f.Activity).
				Str("lookup_identifier", f.LookupIdentifier).
				Err(err).
				Msg("skipping factor row")
			c.metrics.FactorFailed()
			result.Failed++
			result.Success = false
			continue
		}

		c.metrics.FactorRegistered()
		result.Processed++
	}

	return result
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ingest.ErrUnknownActivity):
		return reasonUnknownActivity
	case errors.Is(err, storage.ErrFactorNotFound):
		return reasonFactorNotFound
	case errors.Is(err, units.ErrUnknownConversion):
		return reasonUnknownConversion
	case errors.Is(err, storage.ErrPersistence):
		return reasonPersistence
	default:
		return reasonInvalidRow
	}
}
