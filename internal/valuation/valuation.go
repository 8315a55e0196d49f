// Package valuation turns an item's market price and condition grade into the
// collateral value a loan can be written against.
package valuation

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeE Grade = "E"
)

var ErrUnknownGrade = errors.New("unknown grade")

var percentages = map[Grade]decimal.Decimal{
	GradeA: decimal.RequireFromString("0.90"),
	GradeB: decimal.RequireFromString("0.80"),
	GradeC: decimal.RequireFromString("0.70"),
	GradeD: decimal.RequireFromString("0.50"),
	GradeE: decimal.RequireFromString("0.30"),
}

// DefaultPercentage is the C-tier percentage, used when no grade is given.
var DefaultPercentage = percentages[GradeC]

func ParseGrade(s string) (Grade, error) {
	g := Grade(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := percentages[g]; !ok {
		return "", ErrUnknownGrade
	}
	return g, nil
}

func Percentage(g Grade) (decimal.Decimal, bool) {
	p, ok := percentages[g]
	return p, ok
}

// Estimate returns floor(marketPrice * percentage[grade]).
func Estimate(marketPrice decimal.Decimal, grade Grade) (decimal.Decimal, error) {
	p, ok := percentages[grade]
	if !ok {
		return decimal.Zero, ErrUnknownGrade
	}
	return marketPrice.Mul(p).Floor(), nil
}

// Engine applies a configured percentage when the grade is absent.
type Engine struct {
	DefaultPercentage decimal.Decimal
}

func NewEngine(defaultPercentage decimal.Decimal) Engine {
	return Engine{DefaultPercentage: defaultPercentage}
}

func (e Engine) Estimate(marketPrice decimal.Decimal, grade string) (decimal.Decimal, error) {
	if strings.TrimSpace(grade) == "" {
		return marketPrice.Mul(e.DefaultPercentage).Floor(), nil
	}
	g, err := ParseGrade(grade)
	if err != nil {
		return decimal.Zero, err
	}
	return Estimate(marketPrice, g)
}
