package service

import (
	"context"
	"testing"

	"github.com/M5Csoftware/m5-server-sub003/models"
	"github.com/M5Csoftware/m5-server-sub003/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newLedgerFixture(t *testing.T) (*LedgerService, *memStore) {
	t.Helper()
	store := newMemStore()
	svc := &LedgerService{
		Repo: &memLedgerRepo{s: store},
		Log:  zerolog.Nop(),
	}
	store.accounts["CUST01"] = &models.CustomerAccount{AccountCode: "CUST01", CreditLimit: 50000}
	return svc, store
}

func TestRecordReceiptLowersBalance(t *testing.T) {
	svc, store := newLedgerFixture(t)
	store.accounts["CUST01"].LeftOverBalance = 1000

	err := svc.RecordReceipt(context.Background(), "CUST01", models.ReceiptModeNEFT, 400, "part payment")
	require.NoError(t, err)
	require.InDelta(t, 600, store.accounts["CUST01"].LeftOverBalance, 0.001)

	entries, err := svc.Entries(context.Background(), "CUST01")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.InDelta(t, 400, entries[0].ReceivedAmount, 0.001)
	require.Equal(t, models.ReceiptModeNEFT, entries[0].PaymentType)
}

func TestRecordReceiptValidation(t *testing.T) {
	svc, _ := newLedgerFixture(t)
	ctx := context.Background()

	require.ErrorIs(t, svc.RecordReceipt(ctx, "CUST01", models.ReceiptModeCash, 0, ""), repository.ErrValidation)
	require.ErrorIs(t, svc.RecordReceipt(ctx, "CUST01", "Barter", 100, ""), repository.ErrValidation)
	require.ErrorIs(t, svc.RecordReceipt(ctx, "", models.ReceiptModeCash, 100, ""), repository.ErrValidation)
}

func TestRecordAdjustmentExclusivity(t *testing.T) {
	svc, store := newLedgerFixture(t)
	ctx := context.Background()

	require.ErrorIs(t, svc.RecordAdjustment(ctx, "CUST01", 100, 50, ""), repository.ErrValidation)
	require.ErrorIs(t, svc.RecordAdjustment(ctx, "CUST01", 0, 0, ""), repository.ErrValidation)

	require.NoError(t, svc.RecordAdjustment(ctx, "CUST01", 200, 0, "debit note"))
	require.InDelta(t, 200, store.accounts["CUST01"].LeftOverBalance, 0.001)

	require.NoError(t, svc.RecordAdjustment(ctx, "CUST01", 0, 50, "credit note"))
	require.InDelta(t, 150, store.accounts["CUST01"].LeftOverBalance, 0.001)
}

func TestSummaryRules(t *testing.T) {
	svc, store := newLedgerFixture(t)
	ctx := context.Background()

	// Two sale rows: one Credit, one with no payment type.
	store.ledger = append(store.ledger,
		&models.AccountLedger{AccountCode: "CUST01", PaymentType: models.PaymentCredit, TotalAmt: 500},
		&models.AccountLedger{AccountCode: "CUST01", PaymentType: "", TotalAmt: 300},
		// A receipt row carries its mode and counts toward sales via TotalAmt
		// only if one was recorded on it; here it only carries the payment.
		&models.AccountLedger{AccountCode: "CUST01", PaymentType: models.ReceiptModeCash, ReceivedAmount: 200},
		// Adjustment rows never count toward payments even with a received
		// amount present.
		&models.AccountLedger{AccountCode: "CUST01", DebitAmount: 100, ReceivedAmount: 999},
		&models.AccountLedger{AccountCode: "CUST01", CreditAmount: 50},
	)

	summary, err := svc.Summary(ctx, "CUST01")
	require.NoError(t, err)
	require.InDelta(t, 800, summary.TotalSales, 0.001)
	require.InDelta(t, 200, summary.TotalPayment, 0.001)
	require.InDelta(t, 100, summary.TotalDebit, 0.001)
	require.InDelta(t, 50, summary.TotalCredit, 0.001)
	// (800 + 100) - (200 + 50)
	require.InDelta(t, 650, summary.Outstanding, 0.001)
}

func TestSummaryMatchesMirrorBalance(t *testing.T) {
	store := newMemStore()
	store.accounts["CUST01"] = &models.CustomerAccount{AccountCode: "CUST01", CreditLimit: 50000}

	shipments := &memShipmentRepo{s: store}
	billing := &memBillingRepo{s: store}
	ledgerSvc := &LedgerService{Repo: &memLedgerRepo{s: store}, Log: zerolog.Nop()}
	ctx := context.Background()

	// Book two credit shipments, bill them, then take a part payment.
	for _, sh := range []*models.Shipment{
		{AWBNo: "AWB1", AccountCode: "CUST01", Payment: models.PaymentCredit, TotalAmt: 350.25},
		{AWBNo: "AWB2", AccountCode: "CUST01", Payment: models.PaymentCredit, TotalAmt: 149.75},
	} {
		require.NoError(t, shipments.Create(ctx, sh))
	}
	require.NoError(t, billing.CreateInvoice(ctx, &models.Invoice{
		InvoiceSrNo:   1,
		InvoiceNumber: "BOM/20260831/001",
		AccountCode:   "CUST01",
		Shipments: []models.InvoiceLine{
			{AWBNo: "AWB1", Amount: 350.25},
			{AWBNo: "AWB2", Amount: 149.75},
		},
	}, []string{"AWB1", "AWB2"}))
	require.NoError(t, ledgerSvc.RecordReceipt(ctx, "CUST01", models.ReceiptModeUPI, 100, ""))

	summary, err := ledgerSvc.Summary(ctx, "CUST01")
	require.NoError(t, err)
	require.InDelta(t, store.accounts["CUST01"].LeftOverBalance, summary.Outstanding, 0.01)
}
