package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// withPgTx wraps fn in a transaction with rollback on error.
func withPgTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func isPgUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func insertPgLockEvent(ctx context.Context, tx *sql.Tx, entity, ref, action, actor string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO lock_event(id, entity, ref, action, actor, created_at)
		VALUES($1,$2,$3,$4,$5,$6)
	`, uuid.NewString(), entity, ref, action, actor, time.Now().UTC())
	return err
}
