package similarity

import (
	"github.com/shopspring/decimal"
)

// Percent-difference bands. A difference at or under Limit scores Score.
type amountBand struct {
	Limit float64
	Score float64
}

var amountBands = []amountBand{
	{Limit: 1, Score: 0.98},
	{Limit: 5, Score: 0.90},
	{Limit: 10, Score: 0.85},
	{Limit: 15, Score: 0.75},
}

const (
	// PartialPaymentScore is returned when an expense is roughly half the booking
	PartialPaymentScore = 0.70
)

var (
	hundred          = decimal.NewFromInt(100)
	two              = decimal.NewFromInt(2)
	partialRatio     = decimal.RequireFromString("0.5")
	partialTolerance = decimal.RequireFromString("0.05")
)

// AmountMatch describes how two amounts compare
type AmountMatch struct {
	Score          float64
	PercentDiff    float64
	Comparable     bool // both amounts present
	PartialPayment bool
}

// AmountScore compares a booking amount x with an expense amount y using
// fixed percent-difference bands. Absent amounts are not comparable.
func AmountScore(x, y decimal.NullDecimal) AmountMatch {
	if !x.Valid || !y.Valid {
		return AmountMatch{}
	}
	a, b := x.Decimal.Abs(), y.Decimal.Abs()
	m := AmountMatch{Comparable: true}

	if a.Equal(b) {
		m.Score = 1.0
		return m
	}

	mean := a.Add(b).Div(two)
	if !mean.IsPositive() {
		return m
	}
	m.PercentDiff = a.Sub(b).Abs().Div(mean).Mul(hundred).InexactFloat64()

	for _, band := range amountBands {
		if m.PercentDiff <= band.Limit {
			m.Score = band.Score
			return m
		}
	}
	return m
}

// FlightAmountScore is AmountScore plus partial-payment detection: when the
// standard bands fail and the expense is within 0.05 of half the booking
// (a one-way leg or a deposit), it scores PartialPaymentScore.
func FlightAmountScore(booking, expense decimal.NullDecimal) AmountMatch {
	m := AmountScore(booking, expense)
	if !m.Comparable || m.Score > 0 {
		return m
	}

	a := booking.Decimal.Abs()
	if !a.IsPositive() {
		return m
	}
	ratio := expense.Decimal.Abs().Div(a)
	if ratio.Sub(partialRatio).Abs().LessThanOrEqual(partialTolerance) {
		m.Score = PartialPaymentScore
		m.PartialPayment = true
	}
	return m
}
