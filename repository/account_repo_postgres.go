package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/M5Csoftware/m5-server-sub003/models"
)

type PostgresAccountRepo struct {
	DB *sql.DB
}

func NewPostgresAccountRepo(db *sql.DB) *PostgresAccountRepo {
	return &PostgresAccountRepo{DB: db}
}

func (r *PostgresAccountRepo) Create(ctx context.Context, account *models.CustomerAccount) error {
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}
	if account.LeftOverBalance == 0 {
		account.LeftOverBalance = account.OpeningBalance
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO customer_account(account_code, name, branch, email, credit_limit,
			opening_balance, left_over_balance, created_at)
		VALUES($1,$2,$3,$4,$5,$6,$7,$8)
	`, account.AccountCode, account.Name, account.Branch, account.Email,
		account.CreditLimit, account.OpeningBalance, account.LeftOverBalance, account.CreatedAt)
	if err != nil && isPgUniqueViolation(err) {
		return ErrDuplicateRecord
	}
	return err
}

func (r *PostgresAccountRepo) GetByCode(ctx context.Context, accountCode string) (*models.CustomerAccount, error) {
	var a models.CustomerAccount
	var email sql.NullString
	err := r.DB.QueryRowContext(ctx, `
		SELECT account_code, name, branch, email, credit_limit, opening_balance,
			left_over_balance, created_at
		FROM customer_account WHERE account_code = $1
	`, accountCode).Scan(&a.AccountCode, &a.Name, &a.Branch, &email, &a.CreditLimit,
		&a.OpeningBalance, &a.LeftOverBalance, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	a.Email = email.String
	return &a, nil
}
