package similarity

import (
	"math"
	"time"

	"github.com/eshaffer321/travel-reconcile/internal/domain/records"
)

type dateBand struct {
	MaxDays int
	Score   float64
}

var dateBands = []dateBand{
	{MaxDays: 0, Score: 1.0},
	{MaxDays: 1, Score: 0.95},
	{MaxDays: 3, Score: 0.9},
	{MaxDays: 7, Score: 0.8},
	{MaxDays: 14, Score: 0.6},
	{MaxDays: 30, Score: 0.4},
}

// DateMatch describes the closest pair of dates between two records
type DateMatch struct {
	Score      float64
	DaysApart  int
	Comparable bool // at least one valid date on each side
}

// DateScore compares every present booking date with every present expense
// date and scores the closest pair. Absent dates are skipped.
func DateScore(bookingDates, expenseDates []records.Date) DateMatch {
	best := -1
	for _, bd := range bookingDates {
		if !bd.Valid() {
			continue
		}
		for _, ed := range expenseDates {
			if !ed.Valid() {
				continue
			}
			if d := daysBetween(bd.Time, ed.Time); best < 0 || d < best {
				best = d
			}
		}
	}
	if best < 0 {
		return DateMatch{}
	}

	m := DateMatch{DaysApart: best, Comparable: true}
	for _, band := range dateBands {
		if best <= band.MaxDays {
			m.Score = band.Score
			break
		}
	}
	return m
}

// daysBetween returns the absolute number of calendar days between a and b
func daysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(math.Abs(da.Sub(db).Hours()) / 24)
}
