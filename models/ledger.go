package models

import "time"

// Ledger entry payment types. Sale rows carry PaymentCredit or an empty type;
// receipt rows carry one of the receipt modes below.
const (
	ReceiptModeCash   = "Cash"
	ReceiptModeCheque = "Cheque"
	ReceiptModeNEFT   = "NEFT"
	ReceiptModeUPI    = "UPI"
)

// AccountLedger is one billable event for a customer: a sale, a receipt, or a
// manual debit/credit adjustment. Debit and credit amounts are mutually
// exclusive with received-amount accounting.
type AccountLedger struct {
	ID             string    `json:"id" bson:"_id" db:"id"`
	AccountCode    string    `json:"account_code" bson:"account_code" db:"account_code"`
	AWBNo          string    `json:"awb_no,omitempty" bson:"awb_no,omitempty" db:"awb_no"`
	EntryDate      time.Time `json:"entry_date" bson:"entry_date" db:"entry_date"`
	PaymentType    string    `json:"payment_type,omitempty" bson:"payment_type,omitempty" db:"payment_type"`
	TotalAmt       float64   `json:"total_amt" bson:"total_amt" db:"total_amt"`
	ReceivedAmount float64   `json:"received_amount" bson:"received_amount" db:"received_amount"`
	DebitAmount    float64   `json:"debit_amount" bson:"debit_amount" db:"debit_amount"`
	CreditAmount   float64   `json:"credit_amount" bson:"credit_amount" db:"credit_amount"`
	Narration      string    `json:"narration,omitempty" bson:"narration,omitempty" db:"narration"`
	InvoiceNumber  string    `json:"invoice_number,omitempty" bson:"invoice_number,omitempty" db:"invoice_number"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at" db:"created_at"`
}

type LedgerSummary struct {
	AccountCode  string  `json:"account_code"`
	TotalSales   float64 `json:"total_sales"`
	TotalPayment float64 `json:"total_payment"`
	TotalDebit   float64 `json:"total_debit"`
	TotalCredit  float64 `json:"total_credit"`
	Outstanding  float64 `json:"outstanding"`
}
