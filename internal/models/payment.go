package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentType string

const (
	PaymentExtension      PaymentType = "extension"
	PaymentInterestOnly   PaymentType = "interest_only"
	PaymentFullRedemption PaymentType = "full_redemption"
)

func (t PaymentType) Valid() bool {
	switch t {
	case PaymentExtension, PaymentInterestOnly, PaymentFullRedemption:
		return true
	}
	return false
}

// Payment is an append-only money movement against a transaction.
type Payment struct {
	ID            int64           `json:"id" db:"id"`
	TransactionID int64           `json:"transaction_id" db:"transaction_id"`
	PaymentNumber string          `json:"payment_number" db:"payment_number"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	PaymentType   PaymentType     `json:"payment_type" db:"payment_type"`
	PaymentDate   time.Time       `json:"payment_date" db:"payment_date"`
	UserID        int64           `json:"user_id" db:"user_id"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}
