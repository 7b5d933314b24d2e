package models

import (
	"fmt"
	"math"
	"time"
)

// InvoiceLine is the snapshot of one billed shipment, frozen at invoice time.
type InvoiceLine struct {
	AWBNo            string    `json:"awb_no" bson:"awb_no" db:"awb_no"`
	Date             time.Time `json:"date" bson:"date" db:"date"`
	Destination      string    `json:"destination" bson:"destination" db:"destination"`
	ChargeableWeight float64   `json:"chargeable_weight" bson:"chargeable_weight" db:"chargeable_weight"`
	Amount           float64   `json:"amount" bson:"amount" db:"amount"`
}

type InvoiceSummary struct {
	BasicAmount    float64 `json:"basic_amount" bson:"basic_amount" db:"basic_amount"`
	DiscountAmount float64 `json:"discount_amount" bson:"discount_amount" db:"discount_amount"`
	MiscAmount     float64 `json:"misc_amount" bson:"misc_amount" db:"misc_amount"`
	FuelAmount     float64 `json:"fuel_amount" bson:"fuel_amount" db:"fuel_amount"`
	CGSTAmount     float64 `json:"cgst_amount" bson:"cgst_amount" db:"cgst_amount"`
	SGSTAmount     float64 `json:"sgst_amount" bson:"sgst_amount" db:"sgst_amount"`
	IGSTAmount     float64 `json:"igst_amount" bson:"igst_amount" db:"igst_amount"`
	RawTotal       float64 `json:"raw_total" bson:"raw_total" db:"raw_total"`
	RoundOff       float64 `json:"round_off" bson:"round_off" db:"round_off"`
	GrandTotal     float64 `json:"grand_total" bson:"grand_total" db:"grand_total"`
}

// ApplyRounding rounds the raw total first and derives the round-off from it,
// to two decimals. Manual ledgers are reconciled against this exact order.
func (s *InvoiceSummary) ApplyRounding() {
	s.GrandTotal = math.Round(s.RawTotal)
	s.RoundOff = math.Round((s.GrandTotal-s.RawTotal)*100) / 100
}

type Invoice struct {
	InvoiceSrNo   int64          `json:"invoice_sr_no" bson:"_id" db:"invoice_sr_no"`
	InvoiceNumber string         `json:"invoice_number" bson:"invoice_number" db:"invoice_number"`
	AccountCode   string         `json:"account_code" bson:"account_code" db:"account_code"`
	Branch        string         `json:"branch" bson:"branch" db:"branch"`
	FromDate      time.Time      `json:"from_date" bson:"from_date" db:"from_date"`
	ToDate        time.Time      `json:"to_date" bson:"to_date" db:"to_date"`
	Shipments     []InvoiceLine  `json:"shipments" bson:"shipments"`
	Summary       InvoiceSummary `json:"summary" bson:"summary"`
	PdfPath       string         `json:"pdf_path,omitempty" bson:"pdf_path,omitempty" db:"pdf_path"`
	CreatedAt     time.Time      `json:"created_at" bson:"created_at" db:"created_at"`
}

// FormatInvoiceNumber builds BRANCH/YYYYMMDD/NNN. The serial is zero-padded to
// three digits and widens naturally past 999.
func FormatInvoiceNumber(branch string, date time.Time, srNo int64) string {
	return fmt.Sprintf("%s/%s/%03d", branch, date.Format("20060102"), srNo)
}
