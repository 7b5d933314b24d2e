package models

import "time"

// Lock event actions.
const (
	LockActionFinalizeBag = "FinalizeBag"
	LockActionLockClub    = "LockClub"
	LockActionBillingLock = "BillingLock"
	LockActionDataLock    = "CompleteDataLock"
)

// LockEvent records a one-way state transition (who did it, and when).
// Every finalize and lock writes one; the flags themselves carry no history.
type LockEvent struct {
	ID        string    `json:"id" bson:"_id" db:"id"`
	Entity    string    `json:"entity" bson:"entity" db:"entity"`
	Ref       string    `json:"ref" bson:"ref" db:"ref"`
	Action    string    `json:"action" bson:"action" db:"action"`
	Actor     string    `json:"actor,omitempty" bson:"actor,omitempty" db:"actor"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" db:"created_at"`
}
