package models

import "time"

type Club struct {
	ClubNo    string     `json:"club_no" bson:"_id" db:"club_no"`
	Name      string     `json:"name,omitempty" bson:"name,omitempty" db:"name"`
	IsLocked  bool       `json:"is_locked" bson:"is_locked" db:"is_locked"`
	LockedAt  *time.Time `json:"locked_at,omitempty" bson:"locked_at,omitempty" db:"locked_at"`
	LockedBy  string     `json:"locked_by,omitempty" bson:"locked_by,omitempty" db:"locked_by"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at" db:"created_at"`
}
