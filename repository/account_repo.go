package repository

import (
	"context"

	"github.com/M5Csoftware/m5-server-sub003/models"
)

// Balance deltas are applied by the shipment and ledger repositories inside
// their own transactions, so the account repository stays read-plus-create.
type AccountRepository interface {
	Create(ctx context.Context, account *models.CustomerAccount) error
	GetByCode(ctx context.Context, accountCode string) (*models.CustomerAccount, error)
}
