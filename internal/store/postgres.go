package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/cropshield/parcel-risk-service/internal/domain"
)

// PostgresSource loads sample tables from a parcel_samples table:
//
//	CREATE TABLE parcel_samples (
//	    dataset TEXT NOT NULL,
//	    lon     DOUBLE PRECISION NOT NULL,
//	    lat     DOUBLE PRECISION NOT NULL,
//	    value   DOUBLE PRECISION NOT NULL
//	);
//
// Rows come back in insertion order (ORDER BY ctid), which keeps the
// aggregator's first-occurrence tie-break stable across calls.
type PostgresSource struct {
	db *sql.DB
}

// OpenPostgres opens a connection pool for the given DSN.
func OpenPostgres(dsn string) (*PostgresSource, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	return &PostgresSource{db: db}, nil
}

// AttachDB wraps an existing connection, used by tests.
func AttachDB(db *sql.DB) *PostgresSource { return &PostgresSource{db: db} }

// Close releases the connection pool.
func (s *PostgresSource) Close() error { return s.db.Close() }

// Load reads the full table for a dataset. Query failures and empty result
// sets are domain.ErrDataUnavailable.
func (s *PostgresSource) Load(ctx context.Context, dataset domain.Dataset) ([]domain.Sample, error) {
	if !dataset.Valid() {
		return nil, fmt.Errorf("%w: unknown dataset %q", domain.ErrDataUnavailable, dataset)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT lon, lat, value FROM parcel_samples WHERE dataset = $1 ORDER BY ctid",
		string(dataset))
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %v", domain.ErrDataUnavailable, dataset, err)
	}
	defer rows.Close()

	var samples []domain.Sample
	for rows.Next() {
		var s domain.Sample
		if err := rows.Scan(&s.Lon, &s.Lat, &s.Value); err != nil {
			return nil, fmt.Errorf("%w: scan %s: %v", domain.ErrDataUnavailable, dataset, err)
		}
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrDataUnavailable, dataset, err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: dataset %s has no rows", domain.ErrDataUnavailable, dataset)
	}
	return samples, nil
}
