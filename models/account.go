package models

import "time"

type CustomerAccount struct {
	AccountCode     string    `json:"account_code" bson:"_id" db:"account_code"`
	Name            string    `json:"name" bson:"name" db:"name"`
	Branch          string    `json:"branch" bson:"branch" db:"branch"`
	Email           string    `json:"email,omitempty" bson:"email,omitempty" db:"email"`
	CreditLimit     float64   `json:"credit_limit" bson:"credit_limit" db:"credit_limit"`
	OpeningBalance  float64   `json:"opening_balance" bson:"opening_balance" db:"opening_balance"`
	LeftOverBalance float64   `json:"left_over_balance" bson:"left_over_balance" db:"left_over_balance"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at" db:"created_at"`
}
