package models

import "time"

// OffloadRecord preserves the history of a shipment pulled off a run. The
// shipment itself goes back to unassigned; this record is what remains.
type OffloadRecord struct {
	ID        string    `json:"id" bson:"_id" db:"id"`
	AWBNo     string    `json:"awb_no" bson:"awb_no" db:"awb_no"`
	RunNo     string    `json:"run_no" bson:"run_no" db:"run_no"`
	BagNo     string    `json:"bag_no,omitempty" bson:"bag_no,omitempty" db:"bag_no"`
	Reason    string    `json:"reason" bson:"reason" db:"reason"`
	Actor     string    `json:"actor,omitempty" bson:"actor,omitempty" db:"actor"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" db:"created_at"`
}
