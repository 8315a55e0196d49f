package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts are rendered as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type TransactionStatus string

const (
	StatusActive    TransactionStatus = "active"
	StatusCompleted TransactionStatus = "completed"
	StatusOverdue   TransactionStatus = "overdue"
	StatusAuctioned TransactionStatus = "auctioned"
)

func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusOverdue, StatusAuctioned:
		return true
	}
	return false
}

// Transaction is one pawn loan. Customer, Items and Payments are only
// populated by read paths that explicitly load them.
type Transaction struct {
	ID                int64             `json:"id" db:"id"`
	TransactionNumber string            `json:"transaction_number" db:"transaction_number"`
	CustomerID        int64             `json:"customer_id" db:"customer_id"`
	UserID            int64             `json:"user_id" db:"user_id"`
	Status            TransactionStatus `json:"status" db:"status"`
	LoanAmount        decimal.Decimal   `json:"loan_amount" db:"loan_amount"`
	InterestRate      decimal.Decimal   `json:"interest_rate" db:"interest_rate"`
	InterestAmount    decimal.Decimal   `json:"interest_amount" db:"interest_amount"`
	StartDate         time.Time         `json:"start_date" db:"start_date"`
	DueDate           time.Time         `json:"due_date" db:"due_date"`
	CompletedAt       *time.Time        `json:"completed_at" db:"completed_at"`
	Notes             *string           `json:"notes" db:"notes"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at" db:"updated_at"`

	Customer *Customer `json:"customer,omitempty"`
	Items    []Item    `json:"items,omitempty"`
	Payments []Payment `json:"payments,omitempty"`
}

// TransactionPatch is a partial update; nil fields are left untouched.
type TransactionPatch struct {
	Status         *TransactionStatus
	InterestAmount *decimal.Decimal
	DueDate        *time.Time
	CompletedAt    *time.Time
	Notes          *string
}

func (p TransactionPatch) Empty() bool {
	return p.Status == nil && p.InterestAmount == nil && p.DueDate == nil && p.CompletedAt == nil && p.Notes == nil
}
