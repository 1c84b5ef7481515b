// Package sqlite provides a SQLite-backed implementation of the emission
// ledger and factor store contracts.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/rshade/carbonledger/internal/storage"
	"github.com/rshade/carbonledger/internal/storage/sqlite/migrations"
)

// Store persists emissions and emission factors in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite store at path and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// AppendEmission inserts one emission fact at the end of the ledger.
func (s *Store) AppendEmission(ctx context.Context, emission storage.Emission) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO emissions (id, activity, co2e, scope, category)
		 VALUES (?, ?, ?, ?, ?)`,
		emission.ID,
		emission.Activity,
		emission.CO2e,
		int(emission.Scope),
		categoryValue(emission.Category),
	)
	if err != nil {
		return fmt.Errorf("%w: append emission: %v", storage.ErrPersistence, err)
	}
	return nil
}

// QueryEmissions returns matching facts ordered by insertion sequence.
func (s *Store) QueryEmissions(ctx context.Context, filter storage.EmissionFilter) ([]storage.Emission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	query := `SELECT id, activity, co2e, scope, category FROM emissions`
	var conditions []string
	var args []any
	if filter.Scope != nil {
		conditions = append(conditions, "scope = ?")
		args = append(args, *filter.Scope)
	}
	if filter.Category != nil {
		conditions = append(conditions, "category = ?")
		args = append(args, *filter.Category)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY seq"

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query emissions: %v", storage.ErrPersistence, err)
	}
	defer func() { _ = rows.Close() }()

	emissions := make([]storage.Emission, 0)
	for rows.Next() {
		var emission storage.Emission
		var scope int
		var category sql.NullInt64
		if err := rows.Scan(&emission.ID, &emission.Activity, &emission.CO2e, &scope, &category); err != nil {
			return nil, fmt.Errorf("%w: scan emission: %v", storage.ErrPersistence, err)
		}
		emission.Scope = storage.Scope(scope)
		if category.Valid {
			value := int(category.Int64)
			emission.Category = &value
		}
		emissions = append(emissions, emission)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate emissions: %v", storage.ErrPersistence, err)
	}
	return emissions, nil
}

// SumEmissions returns the ledger-wide co2e sum. An empty ledger sums
// to zero.
func (s *Store) SumEmissions(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	var sum float64
	row := s.sqlDB.QueryRowContext(ctx, `SELECT COALESCE(SUM(co2e), 0) FROM emissions`)
	if err := row.Scan(&sum); err != nil {
		return 0, fmt.Errorf("%w: sum emissions: %v", storage.ErrPersistence, err)
	}
	return sum, nil
}

// InsertFactor stores a new factor. The primary key enforces pair
// uniqueness at the store level so concurrent registrations cannot both
// succeed.
func (s *Store) InsertFactor(ctx context.Context, factor storage.EmissionFactor) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO emission_factors (activity, lookup_identifier, unit, co2e_factor, scope, category)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		factor.Activity,
		factor.LookupIdentifier,
		factor.Unit,
		factor.CO2eFactor,
		int(factor.Scope),
		categoryValue(factor.Category),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrDuplicateFactor
		}
		return fmt.Errorf("%w: insert factor: %v", storage.ErrPersistence, err)
	}
	return nil
}

// FindFactor returns the unique factor for the pair.
func (s *Store) FindFactor(ctx context.Context, activity, lookupIdentifier string) (storage.EmissionFactor, error) {
	if err := ctx.Err(); err != nil {
		return storage.EmissionFactor{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.EmissionFactor{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT activity, lookup_identifier, unit, co2e_factor, scope, category
		   FROM emission_factors
		  WHERE activity = ? AND lookup_identifier = ?`,
		activity,
		lookupIdentifier,
	)

	var factor storage.EmissionFactor
	var scope int
	var category sql.NullInt64
	err := row.Scan(
		&factor.Activity,
		&factor.LookupIdentifier,
		&factor.Unit,
		&factor.CO2eFactor,
		&scope,
		&category,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.EmissionFactor{}, storage.ErrFactorNotFound
		}
		return storage.EmissionFactor{}, fmt.Errorf("%w: find factor: %v", storage.ErrPersistence, err)
	}
	factor.Scope = storage.Scope(scope)
	if category.Valid {
		value := int(category.Int64)
		factor.Category = &value
	}
	return factor, nil
}

func categoryValue(category *int) any {
	if category == nil {
		return nil
	}
	return *category
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
