package models

import "time"

// Payment types carried on a shipment.
const (
	PaymentCredit = "Credit"
	PaymentCash   = "Cash"
	PaymentToPay  = "ToPay"
	PaymentRTO    = "RTO"
)

// HoldReasonCreditLimit is the reason recorded when credit control holds a shipment.
const HoldReasonCreditLimit = "Credit Limit Exceeded"

type Shipment struct {
	AWBNo       string    `json:"awb_no" bson:"_id" db:"awb_no"`
	AccountCode string    `json:"account_code" bson:"account_code" db:"account_code"`
	Date        time.Time `json:"date" bson:"date" db:"date"`
	Origin      string    `json:"origin" bson:"origin" db:"origin"`
	Destination string    `json:"destination" bson:"destination" db:"destination"`
	Sector      string    `json:"sector" bson:"sector" db:"sector"`
	Service     string    `json:"service" bson:"service" db:"service"`
	Payment     string    `json:"payment" bson:"payment" db:"payment"`
	Pieces      int       `json:"pieces" bson:"pieces" db:"pieces"`

	ActualWeight     float64 `json:"actual_weight" bson:"actual_weight" db:"actual_weight"`
	VolumetricWeight float64 `json:"volumetric_weight" bson:"volumetric_weight" db:"volumetric_weight"`

	BasicAmount    float64 `json:"basic_amount" bson:"basic_amount" db:"basic_amount"`
	DiscountAmount float64 `json:"discount_amount" bson:"discount_amount" db:"discount_amount"`
	MiscAmount     float64 `json:"misc_amount" bson:"misc_amount" db:"misc_amount"`
	FuelAmount     float64 `json:"fuel_amount" bson:"fuel_amount" db:"fuel_amount"`
	CGSTAmount     float64 `json:"cgst_amount" bson:"cgst_amount" db:"cgst_amount"`
	SGSTAmount     float64 `json:"sgst_amount" bson:"sgst_amount" db:"sgst_amount"`
	IGSTAmount     float64 `json:"igst_amount" bson:"igst_amount" db:"igst_amount"`
	TotalAmt       float64 `json:"total_amt" bson:"total_amt" db:"total_amt"`

	IsHold     bool   `json:"is_hold" bson:"is_hold" db:"is_hold"`
	HoldReason string `json:"hold_reason,omitempty" bson:"hold_reason,omitempty" db:"hold_reason"`

	CompleteDataLock bool `json:"complete_data_lock" bson:"complete_data_lock" db:"complete_data_lock"`

	BillingLocked bool   `json:"billing_locked" bson:"billing_locked" db:"billing_locked"`
	IsBilled      bool   `json:"is_billed" bson:"is_billed" db:"is_billed"`
	InvoiceNumber string `json:"invoice_number,omitempty" bson:"invoice_number,omitempty" db:"invoice_number"`

	RunNo      string `json:"run_no,omitempty" bson:"run_no,omitempty" db:"run_no"`
	BagNo      string `json:"bag_no,omitempty" bson:"bag_no,omitempty" db:"bag_no"`
	ClubNo     string `json:"club_no,omitempty" bson:"club_no,omitempty" db:"club_no"`
	ManifestNo string `json:"manifest_no,omitempty" bson:"manifest_no,omitempty" db:"manifest_no"`

	CreatedAt time.Time  `json:"created_at" bson:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty" db:"updated_at"`
}

// ChargeableWeight is the billing basis: max of actual and volumetric weight.
// Every bag, run, and report total uses this, never the raw weights.
func (s *Shipment) ChargeableWeight() float64 {
	if s.VolumetricWeight > s.ActualWeight {
		return s.VolumetricWeight
	}
	return s.ActualWeight
}
