package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is a borrower profile, identified by its national ID (NIK).
type Customer struct {
	ID           int64            `json:"id" db:"id"`
	NIK          string           `json:"nik" db:"nik"`
	Name         string           `json:"name" db:"name"`
	Phone        string           `json:"phone" db:"phone"`
	Address      string           `json:"address" db:"address"`
	PhotoKTPPath *string          `json:"photo_ktp_path" db:"photo_ktp_path"`
	TrustScore   *decimal.Decimal `json:"trust_score" db:"trust_score"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at" db:"updated_at"`

	Transactions []Transaction `json:"transactions,omitempty"`
}

type CustomerPatch struct {
	Name         *string
	Phone        *string
	Address      *string
	PhotoKTPPath *string
	TrustScore   *decimal.Decimal
}

func (p CustomerPatch) Empty() bool {
	return p.Name == nil && p.Phone == nil && p.Address == nil && p.PhotoKTPPath == nil && p.TrustScore == nil
}
