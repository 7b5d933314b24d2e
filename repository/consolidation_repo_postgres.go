package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/M5Csoftware/m5-server-sub003/models"
	"github.com/google/uuid"
)

type PostgresConsolidationRepo struct {
	DB *sql.DB
}

func NewPostgresConsolidationRepo(db *sql.DB) *PostgresConsolidationRepo {
	return &PostgresConsolidationRepo{DB: db}
}

// ------------------------ Runs ------------------------

func (r *PostgresConsolidationRepo) CreateRun(ctx context.Context, run *models.Run) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	return withPgTx(ctx, r.DB, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO run(run_no, flight_no, aircraft, origin, destination, departure_date,
				manifest_no, pdf_path, created_at)
			VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9)
		`, run.RunNo, run.FlightNo, run.Aircraft, run.Origin, run.Destination,
			run.DepartureDate, run.ManifestNo, run.PdfPath, run.CreatedAt)
		if err != nil {
			if isPgUniqueViolation(err) {
				return ErrDuplicateRecord
			}
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_process(id, run_no, status, note, created_at)
			VALUES($1,$2,$3,$4,$5)
		`, uuid.NewString(), run.RunNo, models.RunStatusCreated, "", time.Now().UTC())
		return err
	})
}

func (r *PostgresConsolidationRepo) GetRun(ctx context.Context, runNo string) (*models.Run, error) {
	var run models.Run
	err := r.DB.QueryRowContext(ctx, `
		SELECT run_no, flight_no, aircraft, origin, destination, departure_date,
			manifest_no, pdf_created_at, pdf_path, created_at
		FROM run WHERE run_no = $1
	`, runNo).Scan(&run.RunNo, &run.FlightNo, &run.Aircraft, &run.Origin, &run.Destination,
		&run.DepartureDate, &run.ManifestNo, &run.PdfCreatedAt, &run.PdfPath, &run.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}

func (r *PostgresConsolidationRepo) AppendRunProcess(ctx context.Context, proc *models.RunProcess) error {
	if proc.ID == "" {
		proc.ID = uuid.NewString()
	}
	if proc.CreatedAt.IsZero() {
		proc.CreatedAt = time.Now().UTC()
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO run_process(id, run_no, status, note, created_at)
		VALUES($1,$2,$3,$4,$5)
	`, proc.ID, proc.RunNo, proc.Status, proc.Note, proc.CreatedAt)
	return err
}

func (r *PostgresConsolidationRepo) RunProcessHistory(ctx context.Context, runNo string) ([]*models.RunProcess, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, run_no, status, note, created_at
		FROM run_process WHERE run_no = $1 ORDER BY created_at
	`, runNo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.RunProcess
	for rows.Next() {
		var p models.RunProcess
		if err := rows.Scan(&p.ID, &p.RunNo, &p.Status, &p.Note, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r *PostgresConsolidationRepo) BagsForRun(ctx context.Context, runNo string) ([]*models.Bag, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT bag_no, run_no, is_final, finalized_at, finalized_by, created_at
		FROM bag WHERE run_no = $1
	`, runNo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Bag
	for rows.Next() {
		var b models.Bag
		var finalizedBy sql.NullString
		if err := rows.Scan(&b.BagNo, &b.RunNo, &b.IsFinal, &b.FinalizedAt, &finalizedBy, &b.CreatedAt); err != nil {
			return nil, err
		}
		b.FinalizedBy = finalizedBy.String
		out = append(out, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, b := range out {
		if err := r.loadBagRows(ctx, b); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *PostgresConsolidationRepo) SetRunManifest(ctx context.Context, runNo, manifestNo, pdfPath string, at time.Time) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE run SET manifest_no=$1, pdf_path=$2, pdf_created_at=$3 WHERE run_no=$4
	`, manifestNo, pdfPath, at, runNo)
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

// ------------------------ Bags ------------------------

func (r *PostgresConsolidationRepo) loadBagRows(ctx context.Context, b *models.Bag) error {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT awb_no, run_no, weight, added_at, added_by
		FROM bag_row WHERE bag_no = $1 ORDER BY added_at
	`, b.BagNo)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var row models.BagRow
		var addedBy sql.NullString
		if err := rows.Scan(&row.AWBNo, &row.RunNo, &row.Weight, &row.AddedAt, &addedBy); err != nil {
			return err
		}
		row.AddedBy = addedBy.String
		b.Rows = append(b.Rows, row)
	}
	return rows.Err()
}

func (r *PostgresConsolidationRepo) GetBag(ctx context.Context, bagNo string) (*models.Bag, error) {
	var b models.Bag
	var finalizedBy sql.NullString
	err := r.DB.QueryRowContext(ctx, `
		SELECT bag_no, run_no, is_final, finalized_at, finalized_by, created_at
		FROM bag WHERE bag_no = $1
	`, bagNo).Scan(&b.BagNo, &b.RunNo, &b.IsFinal, &b.FinalizedAt, &finalizedBy, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	b.FinalizedBy = finalizedBy.String
	if err := r.loadBagRows(ctx, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PostgresConsolidationRepo) AssignShipment(ctx context.Context, awbNo, bagNo, runNo string, weight float64, actor string) error {
	return withPgTx(ctx, r.DB, func(tx *sql.Tx) error {
		var dataLocked bool
		err := tx.QueryRowContext(ctx,
			`SELECT complete_data_lock FROM shipment WHERE awb_no = $1 FOR UPDATE`, awbNo,
		).Scan(&dataLocked)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		if dataLocked {
			return ErrShipmentLocked
		}

		// Create the bag if new; lock the row so the finalize check holds
		// until commit.
		var isFinal bool
		err = tx.QueryRowContext(ctx,
			`SELECT is_final FROM bag WHERE bag_no = $1 FOR UPDATE`, bagNo,
		).Scan(&isFinal)
		if errors.Is(err, sql.ErrNoRows) {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO bag(bag_no, run_no, is_final, created_at)
				VALUES($1,$2,false,$3)
			`, bagNo, runNo, time.Now().UTC())
		}
		if err != nil {
			return err
		}
		if isFinal {
			return ErrBagFinalized
		}

		// One open-bag row per shipment.
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM bag_row
			WHERE awb_no = $1
			  AND bag_no IN (SELECT bag_no FROM bag WHERE is_final = false)
		`, awbNo); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO bag_row(bag_no, awb_no, run_no, weight, added_at, added_by)
			VALUES($1,$2,$3,$4,$5,$6)
		`, bagNo, awbNo, runNo, weight, time.Now().UTC(), actor); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE shipment SET run_no=$1, bag_no=$2, updated_at=$3 WHERE awb_no=$4
		`, runNo, bagNo, time.Now().UTC(), awbNo)
		return err
	})
}

func (r *PostgresConsolidationRepo) FinalizeBag(ctx context.Context, bagNo, actor string) (*models.Bag, error) {
	err := withPgTx(ctx, r.DB, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE bag SET is_final=true, finalized_at=$1, finalized_by=$2
			WHERE bag_no=$3 AND is_final=false
		`, time.Now().UTC(), actor, bagNo)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			// Idempotent when the bag exists and is already final.
			var exists bool
			if err := tx.QueryRowContext(ctx,
				`SELECT EXISTS(SELECT 1 FROM bag WHERE bag_no = $1)`, bagNo,
			).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return ErrNotFound
			}
			return nil
		}
		return insertPgLockEvent(ctx, tx, "bag", bagNo, models.LockActionFinalizeBag, actor)
	})
	if err != nil {
		return nil, err
	}
	return r.GetBag(ctx, bagNo)
}

// ------------------------ Clubs ------------------------

func (r *PostgresConsolidationRepo) GetClub(ctx context.Context, clubNo string) (*models.Club, error) {
	var c models.Club
	var lockedBy, name sql.NullString
	err := r.DB.QueryRowContext(ctx, `
		SELECT club_no, name, is_locked, locked_at, locked_by, created_at
		FROM club WHERE club_no = $1
	`, clubNo).Scan(&c.ClubNo, &name, &c.IsLocked, &c.LockedAt, &lockedBy, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	c.Name = name.String
	c.LockedBy = lockedBy.String
	return &c, nil
}

func (r *PostgresConsolidationRepo) AttachToClub(ctx context.Context, awbNo, clubNo string) error {
	return withPgTx(ctx, r.DB, func(tx *sql.Tx) error {
		var dataLocked bool
		var existingClub, payment string
		err := tx.QueryRowContext(ctx, `
			SELECT complete_data_lock, club_no, payment FROM shipment
			WHERE awb_no = $1 FOR UPDATE
		`, awbNo).Scan(&dataLocked, &existingClub, &payment)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		switch {
		case dataLocked:
			return ErrShipmentLocked
		case existingClub != "":
			return ErrAlreadyClubbed
		case payment == models.PaymentRTO:
			return ErrNotClubbable
		}

		var isLocked bool
		err = tx.QueryRowContext(ctx,
			`SELECT is_locked FROM club WHERE club_no = $1 FOR UPDATE`, clubNo,
		).Scan(&isLocked)
		if errors.Is(err, sql.ErrNoRows) {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO club(club_no, is_locked, created_at) VALUES($1,false,$2)
			`, clubNo, time.Now().UTC())
		}
		if err != nil {
			return err
		}
		if isLocked {
			return ErrClubLocked
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE shipment SET club_no=$1, updated_at=$2 WHERE awb_no=$3
		`, clubNo, time.Now().UTC(), awbNo)
		return err
	})
}

func (r *PostgresConsolidationRepo) LockClub(ctx context.Context, clubNo, actor string) (*models.Club, error) {
	err := withPgTx(ctx, r.DB, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE club SET is_locked=true, locked_at=$1, locked_by=$2
			WHERE club_no=$3 AND is_locked=false
		`, time.Now().UTC(), actor, clubNo)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			var exists bool
			if err := tx.QueryRowContext(ctx,
				`SELECT EXISTS(SELECT 1 FROM club WHERE club_no = $1)`, clubNo,
			).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return ErrNotFound
			}
			return nil
		}
		return insertPgLockEvent(ctx, tx, "club", clubNo, models.LockActionLockClub, actor)
	})
	if err != nil {
		return nil, err
	}
	return r.GetClub(ctx, clubNo)
}

// ------------------------ Offload ------------------------

func (r *PostgresConsolidationRepo) Offload(ctx context.Context, rec *models.OffloadRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	return withPgTx(ctx, r.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM bag_row
			WHERE awb_no = $1
			  AND bag_no IN (SELECT bag_no FROM bag WHERE is_final = false)
		`, rec.AWBNo); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE shipment SET run_no='', bag_no='', updated_at=$1 WHERE awb_no=$2
		`, time.Now().UTC(), rec.AWBNo); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO offload_record(id, awb_no, run_no, bag_no, reason, actor, created_at)
			VALUES($1,$2,$3,$4,$5,$6,$7)
		`, rec.ID, rec.AWBNo, rec.RunNo, rec.BagNo, rec.Reason, rec.Actor, rec.CreatedAt)
		return err
	})
}

func (r *PostgresConsolidationRepo) OffloadHistory(ctx context.Context, awbNo string) ([]*models.OffloadRecord, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, awb_no, run_no, bag_no, reason, actor, created_at
		FROM offload_record WHERE awb_no = $1 ORDER BY created_at
	`, awbNo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.OffloadRecord
	for rows.Next() {
		var rec models.OffloadRecord
		var bagNo, actor sql.NullString
		if err := rows.Scan(&rec.ID, &rec.AWBNo, &rec.RunNo, &bagNo, &rec.Reason, &actor, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.BagNo = bagNo.String
		rec.Actor = actor.String
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func (r *PostgresConsolidationRepo) LockEvents(ctx context.Context, entity, ref string) ([]*models.LockEvent, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, entity, ref, action, actor, created_at
		FROM lock_event WHERE entity = $1 AND ref = $2 ORDER BY created_at
	`, entity, ref)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.LockEvent
	for rows.Next() {
		var ev models.LockEvent
		var actor sql.NullString
		if err := rows.Scan(&ev.ID, &ev.Entity, &ev.Ref, &ev.Action, &actor, &ev.CreatedAt); err != nil {
			return nil, err
		}
		ev.Actor = actor.String
		out = append(out, &ev)
	}
	return out, rows.Err()
}
