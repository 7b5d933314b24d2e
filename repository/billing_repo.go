package repository

import (
	"context"
	"time"

	"github.com/M5Csoftware/m5-server-sub003/models"
)

// InvoiceSequencer issues globally monotonic, gapless invoice serial numbers.
// Implementations use a single atomic increment-and-fetch against one counter
// record; never read-max-then-add-one.
type InvoiceSequencer interface {
	Next(ctx context.Context) (int64, error)
	Current(ctx context.Context) (int64, error)
}

type BillingRepository interface {
	// LockForBilling marks shipments of the account inside [from,to] that are
	// neither billed nor already locked as billing-locked; returns how many
	// were newly locked, so re-running over a locked window reports zero.
	LockForBilling(ctx context.Context, accountCode string, from, to time.Time, actor string) (int64, error)
	// FindBillable returns shipments that are billing-locked, not billed, and
	// not held for credit limit.
	FindBillable(ctx context.Context, accountCode string, from, to time.Time) ([]*models.Shipment, error)
	// CreateInvoice persists the invoice, marks every referenced shipment
	// billed with the invoice number, and appends the sale ledger rows, all
	// in one transaction. A partially applied invoice must be impossible.
	CreateInvoice(ctx context.Context, inv *models.Invoice, awbNos []string) error
	GetInvoice(ctx context.Context, invoiceNumber string) (*models.Invoice, error)
	ListInvoices(ctx context.Context, accountCode string) ([]*models.Invoice, error)
	SetInvoicePDF(ctx context.Context, invoiceSrNo int64, pdfPath string) error
}
