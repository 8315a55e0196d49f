// Package interest quotes the flat interest and due date of a pawn loan.
package interest

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/models"
)

var DefaultRate = decimal.NewFromInt(5)

const DefaultInterestOnlyExtensionDays = 15

type Quote struct {
	InterestAmount decimal.Decimal
	StartDate      time.Time
	DueDate        time.Time
}

type Policy struct {
	Rate decimal.Decimal
	// ExtensionPaymentType is the payment type recorded by Extend.
	ExtensionPaymentType      models.PaymentType
	InterestOnlyExtensionDays int
	Now                       func() time.Time
}

func NewPolicy(rate decimal.Decimal, extensionType models.PaymentType, interestOnlyDays int) *Policy {
	if extensionType == "" {
		extensionType = models.PaymentExtension
	}
	if interestOnlyDays <= 0 {
		interestOnlyDays = DefaultInterestOnlyExtensionDays
	}
	return &Policy{
		Rate:                      rate,
		ExtensionPaymentType:      extensionType,
		InterestOnlyExtensionDays: interestOnlyDays,
		Now:                       time.Now,
	}
}

// Amount is loan * rate / 100, exact.
func Amount(loanAmount, rate decimal.Decimal) decimal.Decimal {
	return loanAmount.Mul(rate).Shift(-2)
}

// AddDays advances t by whole calendar days, keeping the wall clock time.
func AddDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}

// CurrentTime reads the policy clock.
func (p *Policy) CurrentTime() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

// Quote prices a new loan at rate starting now.
func (p *Policy) Quote(loanAmount decimal.Decimal, durationDays int, rate decimal.Decimal) Quote {
	start := p.CurrentTime()
	return Quote{
		InterestAmount: Amount(loanAmount, rate),
		StartDate:      start,
		DueDate:        AddDays(start, durationDays),
	}
}
