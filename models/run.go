package models

import "time"

// Run statuses recorded in the RunProcess history.
const (
	RunStatusCreated  = "Created"
	RunStatusDeparted = "Departed"
	RunStatusArrived  = "Arrived"
	RunStatusClosed   = "Closed"
)

type Run struct {
	RunNo         string     `json:"run_no" bson:"_id" db:"run_no"`
	FlightNo      string     `json:"flight_no" bson:"flight_no" db:"flight_no"`
	Aircraft      string     `json:"aircraft,omitempty" bson:"aircraft,omitempty" db:"aircraft"`
	Origin        string     `json:"origin" bson:"origin" db:"origin"`
	Destination   string     `json:"destination" bson:"destination" db:"destination"`
	DepartureDate time.Time  `json:"departure_date" bson:"departure_date" db:"departure_date"`
	ManifestNo    string     `json:"manifest_no,omitempty" bson:"manifest_no,omitempty" db:"manifest_no"`
	PdfCreatedAt  *time.Time `json:"pdf_created_at,omitempty" bson:"pdf_created_at,omitempty" db:"pdf_created_at"`
	PdfPath       string     `json:"pdf_path,omitempty" bson:"pdf_path,omitempty" db:"pdf_path"`
	CreatedAt     time.Time  `json:"created_at" bson:"created_at" db:"created_at"`
}

// RunProcess is one append-only status record for a run.
type RunProcess struct {
	ID        string    `json:"id" bson:"_id" db:"id"`
	RunNo     string    `json:"run_no" bson:"run_no" db:"run_no"`
	Status    string    `json:"status" bson:"status" db:"status"`
	Note      string    `json:"note,omitempty" bson:"note,omitempty" db:"note"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" db:"created_at"`
}

// RunSummary aggregates bag-level weights for a run. Bag weights, not raw
// shipment weights, so a manually re-bagged shipment is counted once.
type RunSummary struct {
	RunNo       string  `json:"run_no"`
	Bags        int     `json:"bags"`
	Shipments   int     `json:"shipments"`
	TotalWeight float64 `json:"total_weight"`
}
