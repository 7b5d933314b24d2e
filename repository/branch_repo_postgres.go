package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/M5Csoftware/m5-server-sub003/models"
)

type PostgresBranchRepo struct {
	DB *sql.DB
}

func NewPostgresBranchRepo(db *sql.DB) *PostgresBranchRepo {
	return &PostgresBranchRepo{DB: db}
}

// SaveBranch inserts or updates the branch profile.
func (r *PostgresBranchRepo) SaveBranch(ctx context.Context, branch *models.BranchProfile) error {
	if branch.CreatedAt.IsZero() {
		branch.CreatedAt = time.Now().UTC()
	}

	// Mobile list rides as JSONB.
	mobileJSON, err := json.Marshal(branch.Mobile)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO branch_profile
			(branch_code, company_name, address, city, state, pincode, gstin, footnote, mobile, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (branch_code) DO UPDATE
		SET company_name=$2, address=$3, city=$4, state=$5, pincode=$6,
			gstin=$7, footnote=$8, mobile=$9
	`, branch.BranchCode, branch.CompanyName, branch.Address, branch.City, branch.State,
		branch.Pincode, branch.GSTIN, branch.Footnote, mobileJSON, branch.CreatedAt)
	return err
}

func (r *PostgresBranchRepo) GetBranch(ctx context.Context, branchCode string) (*models.BranchProfile, error) {
	branch := &models.BranchProfile{}
	var mobileJSON []byte

	err := r.DB.QueryRowContext(ctx, `
		SELECT branch_code, company_name, address, city, state, pincode, gstin, footnote, mobile, created_at
		FROM branch_profile WHERE branch_code = $1
	`, branchCode).Scan(&branch.BranchCode, &branch.CompanyName, &branch.Address, &branch.City,
		&branch.State, &branch.Pincode, &branch.GSTIN, &branch.Footnote, &mobileJSON, &branch.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if len(mobileJSON) > 0 {
		if err := json.Unmarshal(mobileJSON, &branch.Mobile); err != nil {
			return nil, err
		}
	}
	return branch, nil
}
