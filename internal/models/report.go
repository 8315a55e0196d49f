package models

import "github.com/shopspring/decimal"

// Page is one page of a listing, shaped like the dashboard expects it.
type Page[T any] struct {
	Data        []T   `json:"data"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"last_page"`
}

func NewPage[T any](data []T, page, perPage int, total int64) Page[T] {
	if data == nil {
		data = []T{}
	}
	lastPage := 1
	if perPage > 0 && total > 0 {
		lastPage = int((total + int64(perPage) - 1) / int64(perPage))
	}
	return Page[T]{Data: data, CurrentPage: page, PerPage: perPage, Total: total, LastPage: lastPage}
}

type DashboardStats struct {
	ActiveLoansCount   int64           `json:"active_loans_count"`
	ActiveLoansTotal   decimal.Decimal `json:"active_loans_total"`
	OverdueCount       int64           `json:"overdue_count"`
	TotalCustomers     int64           `json:"total_customers"`
	PotentialProfit    decimal.Decimal `json:"potential_profit"`
	RecentCustomers    []Customer      `json:"recent_customers"`
	RecentTransactions []Transaction   `json:"recent_transactions"`
}
