package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/M5Csoftware/m5-server-sub003/models"
	"github.com/google/uuid"
)

type PostgresLedgerRepo struct {
	DB *sql.DB
}

func NewPostgresLedgerRepo(db *sql.DB) *PostgresLedgerRepo {
	return &PostgresLedgerRepo{DB: db}
}

func (r *PostgresLedgerRepo) Append(ctx context.Context, entry *models.AccountLedger, balanceDelta float64) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	return withPgTx(ctx, r.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO account_ledger(id, account_code, awb_no, entry_date, payment_type,
				total_amt, received_amount, debit_amount, credit_amount, narration,
				invoice_number, created_at)
			VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		`, entry.ID, entry.AccountCode, entry.AWBNo, entry.EntryDate, entry.PaymentType,
			entry.TotalAmt, entry.ReceivedAmount, entry.DebitAmount, entry.CreditAmount,
			entry.Narration, entry.InvoiceNumber, entry.CreatedAt); err != nil {
			return err
		}
		if balanceDelta != 0 {
			_, err := tx.ExecContext(ctx, `
				UPDATE customer_account
				SET left_over_balance = left_over_balance + $1
				WHERE account_code = $2
			`, balanceDelta, entry.AccountCode)
			return err
		}
		return nil
	})
}

func (r *PostgresLedgerRepo) ForAccount(ctx context.Context, accountCode string) ([]*models.AccountLedger, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, account_code, awb_no, entry_date, payment_type, total_amt,
			received_amount, debit_amount, credit_amount, narration, invoice_number, created_at
		FROM account_ledger WHERE account_code = $1 ORDER BY entry_date
	`, accountCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.AccountLedger
	for rows.Next() {
		var e models.AccountLedger
		var awbNo, paymentType, narration, invoiceNumber sql.NullString
		if err := rows.Scan(&e.ID, &e.AccountCode, &awbNo, &e.EntryDate, &paymentType,
			&e.TotalAmt, &e.ReceivedAmount, &e.DebitAmount, &e.CreditAmount,
			&narration, &invoiceNumber, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.AWBNo = awbNo.String
		e.PaymentType = paymentType.String
		e.Narration = narration.String
		e.InvoiceNumber = invoiceNumber.String
		out = append(out, &e)
	}
	return out, rows.Err()
}
