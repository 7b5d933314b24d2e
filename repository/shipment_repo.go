package repository

import (
	"context"

	"github.com/M5Csoftware/m5-server-sub003/models"
)

type ShipmentRepository interface {
	// Create inserts the shipment and applies its total to the owning
	// account's running balance in the same transaction.
	Create(ctx context.Context, shipment *models.Shipment) error
	GetByAWB(ctx context.Context, awbNo string) (*models.Shipment, error)
	Find(ctx context.Context, filters map[string]interface{}) ([]*models.Shipment, error)
	UpdateHold(ctx context.Context, awbNo string, isHold bool, reason string) error
	// CorrectTotalAmount updates the shipment total, applies the signed delta
	// (new - old) to the account balance, and clears any hold, atomically.
	// Returns the shipment as it stood before the correction.
	CorrectTotalAmount(ctx context.Context, awbNo string, newTotal float64) (*models.Shipment, error)
	SetCompleteDataLock(ctx context.Context, awbNo, actor string) error
}
