package repository

import (
	"context"

	"github.com/M5Csoftware/m5-server-sub003/models"
)

type LedgerRepository interface {
	// Append stores the entry and applies balanceDelta to the account's
	// running balance in the same transaction (pass 0 for no balance effect).
	Append(ctx context.Context, entry *models.AccountLedger, balanceDelta float64) error
	ForAccount(ctx context.Context, accountCode string) ([]*models.AccountLedger, error)
}
