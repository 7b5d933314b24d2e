package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/M5Csoftware/m5-server-sub003/models"
	"github.com/google/uuid"

	"github.com/lib/pq"
)

type PostgresBillingRepo struct {
	DB *sql.DB
}

func NewPostgresBillingRepo(db *sql.DB) *PostgresBillingRepo {
	return &PostgresBillingRepo{DB: db}
}

func (r *PostgresBillingRepo) LockForBilling(ctx context.Context, accountCode string, from, to time.Time, actor string) (int64, error) {
	var count int64
	err := withPgTx(ctx, r.DB, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE shipment SET billing_locked=true, updated_at=$1
			WHERE account_code=$2 AND date >= $3 AND date <= $4
			  AND is_billed=false AND billing_locked=false
		`, time.Now().UTC(), accountCode, from, to)
		if err != nil {
			return err
		}
		count, err = res.RowsAffected()
		if err != nil {
			return err
		}
		if count == 0 {
			return nil
		}
		return insertPgLockEvent(ctx, tx, "account", accountCode, models.LockActionBillingLock, actor)
	})
	return count, err
}

func (r *PostgresBillingRepo) FindBillable(ctx context.Context, accountCode string, from, to time.Time) ([]*models.Shipment, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+shipmentColumns+` FROM shipment
		WHERE account_code=$1 AND date >= $2 AND date <= $3
		  AND billing_locked=true AND is_billed=false
		  AND NOT (is_hold=true AND hold_reason=$4)
	`, accountCode, from, to, models.HoldReasonCreditLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Shipment
	for rows.Next() {
		s, err := scanShipment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresBillingRepo) CreateInvoice(ctx context.Context, inv *models.Invoice, awbNos []string) error {
	if len(awbNos) == 0 {
		return ErrEmptyInvoice
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}

	// Shipment line snapshots and the summary ride as JSONB, the way the
	// branch profile stores its mobile list.
	linesJSON, err := json.Marshal(inv.Shipments)
	if err != nil {
		return err
	}
	summaryJSON, err := json.Marshal(inv.Summary)
	if err != nil {
		return err
	}

	return withPgTx(ctx, r.DB, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO invoice(invoice_sr_no, invoice_number, account_code, branch,
				from_date, to_date, shipments, summary, pdf_path, created_at)
			VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		`, inv.InvoiceSrNo, inv.InvoiceNumber, inv.AccountCode, inv.Branch,
			inv.FromDate, inv.ToDate, linesJSON, summaryJSON, inv.PdfPath, inv.CreatedAt)
		if err != nil {
			if isPgUniqueViolation(err) {
				return ErrDuplicateRecord
			}
			return err
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE shipment SET is_billed=true, invoice_number=$1, updated_at=$2
			WHERE awb_no = ANY($3) AND is_billed=false
		`, inv.InvoiceNumber, time.Now().UTC(), pq.Array(awbNos))
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n != int64(len(awbNos)) {
			return ErrAlreadyBilled
		}

		for _, line := range inv.Shipments {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO account_ledger(id, account_code, awb_no, entry_date,
					payment_type, total_amt, received_amount, debit_amount,
					credit_amount, narration, invoice_number, created_at)
				VALUES($1,$2,$3,$4,$5,$6,0,0,0,'',$7,$8)
			`, uuid.NewString(), inv.AccountCode, line.AWBNo, line.Date,
				models.PaymentCredit, line.Amount, inv.InvoiceNumber, time.Now().UTC()); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PostgresBillingRepo) scanInvoice(row interface{ Scan(...interface{}) error }) (*models.Invoice, error) {
	var inv models.Invoice
	var linesJSON, summaryJSON []byte
	var pdfPath sql.NullString
	err := row.Scan(&inv.InvoiceSrNo, &inv.InvoiceNumber, &inv.AccountCode, &inv.Branch,
		&inv.FromDate, &inv.ToDate, &linesJSON, &summaryJSON, &pdfPath, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	inv.PdfPath = pdfPath.String
	if len(linesJSON) > 0 {
		if err := json.Unmarshal(linesJSON, &inv.Shipments); err != nil {
			return nil, err
		}
	}
	if len(summaryJSON) > 0 {
		if err := json.Unmarshal(summaryJSON, &inv.Summary); err != nil {
			return nil, err
		}
	}
	return &inv, nil
}

const invoiceColumns = `invoice_sr_no, invoice_number, account_code, branch,
	from_date, to_date, shipments, summary, pdf_path, created_at`

func (r *PostgresBillingRepo) GetInvoice(ctx context.Context, invoiceNumber string) (*models.Invoice, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoice WHERE invoice_number = $1`, invoiceNumber)
	inv, err := r.scanInvoice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (r *PostgresBillingRepo) ListInvoices(ctx context.Context, accountCode string) ([]*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoice`
	var args []interface{}
	if accountCode != "" {
		query += ` WHERE account_code = $1`
		args = append(args, accountCode)
	}
	query += ` ORDER BY invoice_sr_no`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Invoice
	for rows.Next() {
		inv, err := r.scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *PostgresBillingRepo) SetInvoicePDF(ctx context.Context, invoiceSrNo int64, pdfPath string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE invoice SET pdf_path=$1 WHERE invoice_sr_no=$2`, pdfPath, invoiceSrNo)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
