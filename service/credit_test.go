package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/M5Csoftware/m5-server-sub003/models"
	"github.com/M5Csoftware/m5-server-sub003/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newCreditFixture(t *testing.T) (*CreditControl, *memStore, *recordingNotifier) {
	t.Helper()
	store := newMemStore()
	notifier := &recordingNotifier{}
	cc := &CreditControl{
		Shipments: &memShipmentRepo{s: store},
		Accounts:  &memAccountRepo{s: store},
		Notifier:  notifier,
		Log:       zerolog.Nop(),
	}
	store.accounts["CUST01"] = &models.CustomerAccount{
		AccountCode:     "CUST01",
		Name:            "Acme Traders",
		CreditLimit:     10000,
		LeftOverBalance: 9500,
	}
	return cc, store, notifier
}

func TestEvaluateHold(t *testing.T) {
	cc, store, _ := newCreditFixture(t)
	account := store.accounts["CUST01"]

	hold, reason := cc.EvaluateHold(&models.Shipment{TotalAmt: 800}, account)
	require.True(t, hold)
	require.Equal(t, models.HoldReasonCreditLimit, reason)

	hold, reason = cc.EvaluateHold(&models.Shipment{TotalAmt: 400}, account)
	require.False(t, hold)
	require.Empty(t, reason)

	// Same inputs, same answer.
	again, _ := cc.EvaluateHold(&models.Shipment{TotalAmt: 800}, account)
	require.True(t, again)
}

func TestRegisterShipmentPlacesHold(t *testing.T) {
	cc, store, notifier := newCreditFixture(t)

	shipment := &models.Shipment{
		AWBNo:       "AWB100",
		AccountCode: "CUST01",
		TotalAmt:    800,
	}
	require.NoError(t, cc.RegisterShipment(context.Background(), shipment))

	stored := store.shipments["AWB100"]
	require.True(t, stored.IsHold)
	require.Equal(t, models.HoldReasonCreditLimit, stored.HoldReason)
	require.InDelta(t, 10300, store.accounts["CUST01"].LeftOverBalance, 0.001)
	require.Contains(t, notifier.kinds(), "shipment.held")
}

func TestRegisterShipmentUnderLimit(t *testing.T) {
	cc, store, notifier := newCreditFixture(t)

	shipment := &models.Shipment{
		AWBNo:       "AWB101",
		AccountCode: "CUST01",
		TotalAmt:    400,
	}
	require.NoError(t, cc.RegisterShipment(context.Background(), shipment))

	stored := store.shipments["AWB101"]
	require.False(t, stored.IsHold)
	require.InDelta(t, 9900, store.accounts["CUST01"].LeftOverBalance, 0.001)
	require.Empty(t, notifier.kinds())
}

func TestRegisterShipmentUnknownAccount(t *testing.T) {
	cc, _, _ := newCreditFixture(t)

	err := cc.RegisterShipment(context.Background(), &models.Shipment{
		AWBNo:       "AWB102",
		AccountCode: "NOPE",
		TotalAmt:    100,
	})
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCorrectAmountReleasesHold(t *testing.T) {
	cc, store, _ := newCreditFixture(t)

	require.NoError(t, cc.RegisterShipment(context.Background(), &models.Shipment{
		AWBNo:       "AWB100",
		AccountCode: "CUST01",
		TotalAmt:    800,
	}))
	require.True(t, store.shipments["AWB100"].IsHold)

	before, err := cc.CorrectAmount(context.Background(), "AWB100", 300)
	require.NoError(t, err)
	require.InDelta(t, 800, before.TotalAmt, 0.001)

	after := store.shipments["AWB100"]
	require.False(t, after.IsHold)
	require.Empty(t, after.HoldReason)
	require.InDelta(t, 300, after.TotalAmt, 0.001)
	// 9500 + 800 - 500 correction delta
	require.InDelta(t, 9800, store.accounts["CUST01"].LeftOverBalance, 0.001)
}

func TestCorrectAmountReleasesEvenAboveLimit(t *testing.T) {
	cc, store, _ := newCreditFixture(t)

	require.NoError(t, cc.RegisterShipment(context.Background(), &models.Shipment{
		AWBNo:       "AWB100",
		AccountCode: "CUST01",
		TotalAmt:    800,
	}))

	// Corrected total still breaches the limit; release happens anyway.
	_, err := cc.CorrectAmount(context.Background(), "AWB100", 700)
	require.NoError(t, err)
	require.False(t, store.shipments["AWB100"].IsHold)
	require.Greater(t, store.accounts["CUST01"].LeftOverBalance, store.accounts["CUST01"].CreditLimit)
}

func TestCorrectAmountRejectsNegative(t *testing.T) {
	cc, _, _ := newCreditFixture(t)

	_, err := cc.CorrectAmount(context.Background(), "AWB100", -5)
	require.ErrorIs(t, err, repository.ErrValidation)
}

func TestInterleavedCorrectionsKeepBalanceMirrored(t *testing.T) {
	cc, store, _ := newCreditFixture(t)
	ctx := context.Background()

	const shipments = 20
	const rounds = 10

	for i := 0; i < shipments; i++ {
		awb := fmt.Sprintf("AWB%03d", i)
		store.shipments[awb] = &models.Shipment{
			AWBNo:       awb,
			AccountCode: "CUST01",
			TotalAmt:    100,
		}
	}
	store.accounts["CUST01"].LeftOverBalance = 9500 + shipments*100

	// Each worker repeatedly re-prices its own shipment while the others do
	// the same; the balance only ever moves by signed deltas.
	var g errgroup.Group
	for i := 0; i < shipments; i++ {
		awb := fmt.Sprintf("AWB%03d", i)
		g.Go(func() error {
			for r := 1; r <= rounds; r++ {
				if _, err := cc.CorrectAmount(ctx, awb, float64(100+r*7)); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var total float64
	for _, sh := range store.shipments {
		total += sh.TotalAmt
	}
	require.InDelta(t, 9500+total, store.accounts["CUST01"].LeftOverBalance, 0.01)
}
