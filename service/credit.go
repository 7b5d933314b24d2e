package service

import (
	"context"
	"fmt"

	"github.com/M5Csoftware/m5-server-sub003/models"
	"github.com/M5Csoftware/m5-server-sub003/notify"
	"github.com/M5Csoftware/m5-server-sub003/repository"

	"github.com/rs/zerolog"
)

// CreditControl decides whether a shipment may move, based on the customer's
// running balance against their credit limit.
type CreditControl struct {
	Shipments repository.ShipmentRepository
	Accounts  repository.AccountRepository
	Rates     RateEngine
	Notifier  notify.Dispatcher
	Log       zerolog.Logger
}

// EvaluateHold computes the hypothetical outstanding balance (current balance
// plus this shipment's total) and holds the shipment when it would breach the
// credit limit. Pure over its inputs: re-evaluating an unchanged pair yields
// the same answer.
func (c *CreditControl) EvaluateHold(shipment *models.Shipment, account *models.CustomerAccount) (bool, string) {
	hypothetical := account.LeftOverBalance + shipment.TotalAmt
	if hypothetical > account.CreditLimit {
		return true, models.HoldReasonCreditLimit
	}
	return false, ""
}

// RegisterShipment books a shipment: the hold decision is taken against the
// balance as it stands, then the shipment is persisted with its total applied
// to the balance in one transaction.
func (c *CreditControl) RegisterShipment(ctx context.Context, shipment *models.Shipment) error {
	if shipment.AWBNo == "" || shipment.AccountCode == "" {
		return fmt.Errorf("%w: awb number and account code are required", repository.ErrValidation)
	}

	account, err := c.Accounts.GetByCode(ctx, shipment.AccountCode)
	if err != nil {
		return fmt.Errorf("load account %s: %w", shipment.AccountCode, err)
	}

	// Booking without amounts falls back to the rate engine. A quote failure
	// degrades to operator-entered amounts rather than blocking the booking.
	if shipment.TotalAmt == 0 && c.Rates != nil {
		quote, err := c.Rates.Quote(ctx, shipment.Sector, shipment.Service, shipment.ChargeableWeight())
		if err != nil {
			c.Log.Warn().Err(err).Str("awb", shipment.AWBNo).Msg("rate quote failed, booking with entered amounts")
		} else {
			shipment.BasicAmount = quote.BasicAmount
			shipment.FuelAmount = quote.FuelAmount
			shipment.CGSTAmount = quote.CGSTAmount
			shipment.SGSTAmount = quote.SGSTAmount
			shipment.TotalAmt = quote.TotalAmt
		}
	}

	shipment.IsHold, shipment.HoldReason = c.EvaluateHold(shipment, account)

	if err := c.Shipments.Create(ctx, shipment); err != nil {
		return fmt.Errorf("create shipment %s: %w", shipment.AWBNo, err)
	}

	if shipment.IsHold {
		c.Log.Warn().
			Str("awb", shipment.AWBNo).
			Str("account", shipment.AccountCode).
			Float64("total", shipment.TotalAmt).
			Msg("shipment held: credit limit exceeded")
		c.dispatch(ctx, notify.Event{
			Kind:    notify.EventShipmentHeld,
			Ref:     shipment.AWBNo,
			To:      account.Email,
			Subject: "Shipment " + shipment.AWBNo + " on hold",
			Body:    fmt.Sprintf("Shipment %s is on hold: %s.", shipment.AWBNo, shipment.HoldReason),
		})
	}
	return nil
}

// CorrectAmount applies an auto-calculated total to a shipment. The signed
// delta goes into the account balance, and any hold is released
// unconditionally, even when the corrected total still exceeds the limit.
func (c *CreditControl) CorrectAmount(ctx context.Context, awbNo string, newTotal float64) (*models.Shipment, error) {
	if awbNo == "" {
		return nil, fmt.Errorf("%w: awb number is required", repository.ErrValidation)
	}
	if newTotal < 0 {
		return nil, fmt.Errorf("%w: total amount cannot be negative", repository.ErrValidation)
	}

	before, err := c.Shipments.CorrectTotalAmount(ctx, awbNo, newTotal)
	if err != nil {
		return nil, fmt.Errorf("correct amount for %s: %w", awbNo, err)
	}

	if before.IsHold {
		c.Log.Info().
			Str("awb", awbNo).
			Float64("old_total", before.TotalAmt).
			Float64("new_total", newTotal).
			Msg("hold released on amount correction")
	}
	return before, nil
}

// dispatch fires a notification without letting a failure touch the caller.
func (c *CreditControl) dispatch(ctx context.Context, ev notify.Event) {
	if c.Notifier == nil {
		return
	}
	if err := c.Notifier.Send(ctx, ev); err != nil {
		c.Log.Warn().Err(err).Str("kind", ev.Kind).Str("ref", ev.Ref).Msg("notification failed")
	}
}
