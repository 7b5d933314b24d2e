package repository

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresInvoiceSequencer keeps the counter in a single row and bumps it with
// an upsert that returns the new value in the same statement.
type PostgresInvoiceSequencer struct {
	DB *sql.DB
}

func NewPostgresInvoiceSequencer(db *sql.DB) *PostgresInvoiceSequencer {
	return &PostgresInvoiceSequencer{DB: db}
}

func (s *PostgresInvoiceSequencer) Next(ctx context.Context) (int64, error) {
	var seq int64
	err := s.DB.QueryRowContext(ctx, `
		INSERT INTO counters(name, seq) VALUES($1, 1)
		ON CONFLICT (name) DO UPDATE SET seq = counters.seq + 1
		RETURNING seq
	`, invoiceCounterID).Scan(&seq)
	if err != nil {
		return 0, err
	}
	return seq, nil
}

func (s *PostgresInvoiceSequencer) Current(ctx context.Context) (int64, error) {
	var seq int64
	err := s.DB.QueryRowContext(ctx,
		`SELECT seq FROM counters WHERE name = $1`, invoiceCounterID).Scan(&seq)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return seq, nil
}
