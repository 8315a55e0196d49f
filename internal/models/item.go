package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const DefaultBrand = "-"

// Item is one piece of collateral. It is created with its transaction and
// never updated afterwards.
type Item struct {
	ID             int64           `json:"id" db:"id"`
	TransactionID  int64           `json:"transaction_id" db:"transaction_id"`
	Name           string          `json:"name" db:"name"`
	Category       string          `json:"category" db:"category"`
	Brand          string          `json:"brand" db:"brand"`
	SerialNumber   *string         `json:"serial_number" db:"serial_number"`
	Description    string          `json:"description" db:"description"`
	EstimatedValue decimal.Decimal `json:"estimated_value" db:"estimated_value"`
	PhotoPath      *string         `json:"photo_path" db:"photo_path"`
	Grade          *string         `json:"grade" db:"grade"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// InventoryItem is an item of an active transaction, as listed in the vault.
type InventoryItem struct {
	Item
	TransactionNumber string    `json:"transaction_number"`
	DueDate           time.Time `json:"due_date"`
}
