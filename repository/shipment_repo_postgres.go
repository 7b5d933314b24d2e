package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/M5Csoftware/m5-server-sub003/models"
)

type PostgresShipmentRepo struct {
	DB *sql.DB
}

func NewPostgresShipmentRepo(db *sql.DB) *PostgresShipmentRepo {
	return &PostgresShipmentRepo{DB: db}
}

const shipmentColumns = `awb_no, account_code, date, origin, destination, sector, service, payment,
	pieces, actual_weight, volumetric_weight, basic_amount, discount_amount, misc_amount,
	fuel_amount, cgst_amount, sgst_amount, igst_amount, total_amt, is_hold, hold_reason,
	complete_data_lock, billing_locked, is_billed, invoice_number, run_no, bag_no, club_no,
	manifest_no, created_at, updated_at`

func scanShipment(row interface{ Scan(...interface{}) error }) (*models.Shipment, error) {
	var s models.Shipment
	err := row.Scan(
		&s.AWBNo, &s.AccountCode, &s.Date, &s.Origin, &s.Destination, &s.Sector, &s.Service,
		&s.Payment, &s.Pieces, &s.ActualWeight, &s.VolumetricWeight, &s.BasicAmount,
		&s.DiscountAmount, &s.MiscAmount, &s.FuelAmount, &s.CGSTAmount, &s.SGSTAmount,
		&s.IGSTAmount, &s.TotalAmt, &s.IsHold, &s.HoldReason, &s.CompleteDataLock,
		&s.BillingLocked, &s.IsBilled, &s.InvoiceNumber, &s.RunNo, &s.BagNo, &s.ClubNo,
		&s.ManifestNo, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PostgresShipmentRepo) Create(ctx context.Context, shipment *models.Shipment) error {
	if shipment.CreatedAt.IsZero() {
		shipment.CreatedAt = time.Now().UTC()
	}

	return withPgTx(ctx, r.DB, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO shipment(`+shipmentColumns+`)
			VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,
				$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31)
		`, shipment.AWBNo, shipment.AccountCode, shipment.Date, shipment.Origin,
			shipment.Destination, shipment.Sector, shipment.Service, shipment.Payment,
			shipment.Pieces, shipment.ActualWeight, shipment.VolumetricWeight,
			shipment.BasicAmount, shipment.DiscountAmount, shipment.MiscAmount,
			shipment.FuelAmount, shipment.CGSTAmount, shipment.SGSTAmount,
			shipment.IGSTAmount, shipment.TotalAmt, shipment.IsHold, shipment.HoldReason,
			shipment.CompleteDataLock, shipment.BillingLocked, shipment.IsBilled,
			shipment.InvoiceNumber, shipment.RunNo, shipment.BagNo, shipment.ClubNo,
			shipment.ManifestNo, shipment.CreatedAt, shipment.UpdatedAt)
		if err != nil {
			if isPgUniqueViolation(err) {
				return ErrDuplicateRecord
			}
			return err
		}

		if shipment.TotalAmt != 0 {
			_, err = tx.ExecContext(ctx, `
				UPDATE customer_account
				SET left_over_balance = left_over_balance + $1
				WHERE account_code = $2
			`, shipment.TotalAmt, shipment.AccountCode)
		}
		return err
	})
}

func (r *PostgresShipmentRepo) GetByAWB(ctx context.Context, awbNo string) (*models.Shipment, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+shipmentColumns+` FROM shipment WHERE awb_no = $1`, awbNo)
	s, err := scanShipment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

// Find builds a WHERE clause from the filter map, the way the caller passes
// query params through.
func (r *PostgresShipmentRepo) Find(ctx context.Context, filters map[string]interface{}) ([]*models.Shipment, error) {
	query := `SELECT ` + shipmentColumns + ` FROM shipment`
	var conds []string
	var args []interface{}
	i := 1
	for k, v := range filters {
		conds = append(conds, fmt.Sprintf("%s = $%d", k, i))
		args = append(args, v)
		i++
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
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

func (r *PostgresShipmentRepo) UpdateHold(ctx context.Context, awbNo string, isHold bool, reason string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE shipment SET is_hold=$1, hold_reason=$2, updated_at=$3 WHERE awb_no=$4
	`, isHold, reason, time.Now().UTC(), awbNo)
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

func (r *PostgresShipmentRepo) CorrectTotalAmount(ctx context.Context, awbNo string, newTotal float64) (*models.Shipment, error) {
	var before *models.Shipment
	err := withPgTx(ctx, r.DB, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT `+shipmentColumns+` FROM shipment WHERE awb_no = $1 FOR UPDATE`, awbNo)
		s, err := scanShipment(row)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		if s.CompleteDataLock {
			return ErrShipmentLocked
		}
		before = s

		_, err = tx.ExecContext(ctx, `
			UPDATE shipment
			SET total_amt=$1, is_hold=false, hold_reason='', updated_at=$2
			WHERE awb_no=$3
		`, newTotal, time.Now().UTC(), awbNo)
		if err != nil {
			return err
		}

		delta := newTotal - s.TotalAmt
		if delta != 0 {
			_, err = tx.ExecContext(ctx, `
				UPDATE customer_account
				SET left_over_balance = left_over_balance + $1
				WHERE account_code = $2
			`, delta, s.AccountCode)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return before, nil
}

func (r *PostgresShipmentRepo) SetCompleteDataLock(ctx context.Context, awbNo, actor string) error {
	return withPgTx(ctx, r.DB, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE shipment SET complete_data_lock=true, updated_at=$1 WHERE awb_no=$2
		`, time.Now().UTC(), awbNo)
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
		return insertPgLockEvent(ctx, tx, "shipment", awbNo, models.LockActionDataLock, actor)
	})
}
