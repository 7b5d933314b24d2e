package models

import "time"

// BagRow is one scanned shipment inside a bag.
type BagRow struct {
	AWBNo   string    `json:"awb_no" bson:"awb_no" db:"awb_no"`
	RunNo   string    `json:"run_no" bson:"run_no" db:"run_no"`
	Weight  float64   `json:"weight" bson:"weight" db:"weight"`
	AddedAt time.Time `json:"added_at" bson:"added_at" db:"added_at"`
	AddedBy string    `json:"added_by,omitempty" bson:"added_by,omitempty" db:"added_by"`
}

type Bag struct {
	BagNo       string     `json:"bag_no" bson:"_id" db:"bag_no"`
	RunNo       string     `json:"run_no" bson:"run_no" db:"run_no"`
	IsFinal     bool       `json:"is_final" bson:"is_final" db:"is_final"`
	FinalizedAt *time.Time `json:"finalized_at,omitempty" bson:"finalized_at,omitempty" db:"finalized_at"`
	FinalizedBy string     `json:"finalized_by,omitempty" bson:"finalized_by,omitempty" db:"finalized_by"`
	Rows        []BagRow   `json:"rows" bson:"rows"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at" db:"created_at"`
}

// TotalWeight sums row weights; callers record the chargeable weight in rows.
func (b *Bag) TotalWeight() float64 {
	var t float64
	for _, r := range b.Rows {
		t += r.Weight
	}
	return t
}
