package service

import (
	"context"
	"fmt"
	"time"

	"github.com/M5Csoftware/m5-server-sub003/models"
	"github.com/M5Csoftware/m5-server-sub003/repository"

	"github.com/rs/zerolog"
)

// LedgerService records receipts and adjustments and derives the account
// statement. The stored mirror balance is only ever moved by deltas; the
// summary recomputes from rows so the two can be reconciled.
type LedgerService struct {
	Repo repository.LedgerRepository
	Log  zerolog.Logger
}

// RecordReceipt books a customer payment. Receipts reduce the outstanding
// balance, so the mirror delta is the negative of the received amount.
func (s *LedgerService) RecordReceipt(ctx context.Context, accountCode, mode string, amount float64, narration string) error {
	if accountCode == "" {
		return fmt.Errorf("%w: account code is required", repository.ErrValidation)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: receipt amount must be positive", repository.ErrValidation)
	}
	switch mode {
	case models.ReceiptModeCash, models.ReceiptModeCheque, models.ReceiptModeNEFT, models.ReceiptModeUPI:
	default:
		return fmt.Errorf("%w: unknown receipt mode %q", repository.ErrValidation, mode)
	}

	entry := &models.AccountLedger{
		AccountCode:    accountCode,
		EntryDate:      time.Now(),
		PaymentType:    mode,
		ReceivedAmount: amount,
		Narration:      narration,
	}
	if err := s.Repo.Append(ctx, entry, -amount); err != nil {
		return fmt.Errorf("record receipt for %s: %w", accountCode, err)
	}

	s.Log.Info().Str("account", accountCode).Str("mode", mode).Float64("amount", amount).Msg("receipt recorded")
	return nil
}

// RecordAdjustment books a manual debit or credit note. Exactly one of the
// two amounts may be set; a debit raises the outstanding balance and a credit
// lowers it.
func (s *LedgerService) RecordAdjustment(ctx context.Context, accountCode string, debit, credit float64, narration string) error {
	if accountCode == "" {
		return fmt.Errorf("%w: account code is required", repository.ErrValidation)
	}
	if (debit > 0) == (credit > 0) {
		return fmt.Errorf("%w: exactly one of debit or credit must be set", repository.ErrValidation)
	}
	if debit < 0 || credit < 0 {
		return fmt.Errorf("%w: adjustment amounts must be positive", repository.ErrValidation)
	}

	entry := &models.AccountLedger{
		AccountCode:  accountCode,
		EntryDate:    time.Now(),
		DebitAmount:  debit,
		CreditAmount: credit,
		Narration:    narration,
	}
	if err := s.Repo.Append(ctx, entry, debit-credit); err != nil {
		return fmt.Errorf("record adjustment for %s: %w", accountCode, err)
	}

	s.Log.Info().Str("account", accountCode).Float64("debit", debit).Float64("credit", credit).Msg("adjustment recorded")
	return nil
}

// Summary recomputes the statement from the ledger rows. Sale rows are those
// carrying the Credit payment type or no type at all; a row counts toward
// payments only when both adjustment amounts are zero.
func (s *LedgerService) Summary(ctx context.Context, accountCode string) (*models.LedgerSummary, error) {
	entries, err := s.Repo.ForAccount(ctx, accountCode)
	if err != nil {
		return nil, fmt.Errorf("load ledger for %s: %w", accountCode, err)
	}

	summary := &models.LedgerSummary{AccountCode: accountCode}
	for _, e := range entries {
		switch e.PaymentType {
		case models.PaymentCredit, "",
			models.ReceiptModeCash, models.ReceiptModeCheque, models.ReceiptModeNEFT, models.ReceiptModeUPI:
			summary.TotalSales += e.TotalAmt
		}
		if e.DebitAmount == 0 && e.CreditAmount == 0 {
			summary.TotalPayment += e.ReceivedAmount
		}
		summary.TotalDebit += e.DebitAmount
		summary.TotalCredit += e.CreditAmount
	}
	summary.Outstanding = (summary.TotalSales + summary.TotalDebit) - (summary.TotalPayment + summary.TotalCredit)
	return summary, nil
}

func (s *LedgerService) Entries(ctx context.Context, accountCode string) ([]*models.AccountLedger, error) {
	return s.Repo.ForAccount(ctx, accountCode)
}
