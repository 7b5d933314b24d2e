package models

import "time"

type MobileEntry struct {
	Number string `json:"number" bson:"number" db:"number"`
	Label  string `json:"label" bson:"label" db:"label"`
}

// BranchProfile is the issuing branch: the code prefixes every invoice number
// and the company details head every generated PDF.
type BranchProfile struct {
	BranchCode  string        `json:"branch_code" bson:"_id" db:"branch_code"`
	CompanyName string        `json:"company_name" bson:"name" db:"name"`
	Address     string        `json:"address" bson:"address" db:"address"`
	City        string        `json:"city" bson:"city" db:"city"`
	State       string        `json:"state" bson:"state" db:"state"`
	Pincode     string        `json:"pincode" bson:"pincode" db:"pincode"`
	GSTIN       string        `json:"gstin" bson:"gstin" db:"gstin"`
	Footnote    string        `json:"footnote" bson:"footnote" db:"footnote"`
	Mobile      []MobileEntry `json:"mobile" bson:"mobile" db:"mobile"`
	CreatedAt   time.Time     `json:"created_at" bson:"created_at" db:"created_at"`
}
