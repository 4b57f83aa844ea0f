package similarity

import (
	"regexp"
	"strings"
)

const (
	// LegMatchThreshold is the similarity a leg needs to count as matched
	LegMatchThreshold = 0.7
	// singleLegFactor discounts a route where only one leg could be compared
	singleLegFactor = 0.8
)

// RouteMatch is the result of comparing two origin/destination pairs
type RouteMatch struct {
	Score              float64
	OriginScore        float64
	DestinationScore   float64
	OriginMatched      bool
	DestinationMatched bool
	Comparable         bool
}

// MatchRoute compares origin and destination legs independently. When both
// legs are comparable the score is their average; a single comparable leg is
// discounted by 0.8.
func MatchRoute(bookingOrigin, bookingDest, expenseOrigin, expenseDest string) RouteMatch {
	var m RouteMatch
	originComparable := Normalize(bookingOrigin) != "" && Normalize(expenseOrigin) != ""
	destComparable := Normalize(bookingDest) != "" && Normalize(expenseDest) != ""

	if originComparable {
		m.OriginScore = Similarity(bookingOrigin, expenseOrigin)
		m.OriginMatched = m.OriginScore > LegMatchThreshold
	}
	if destComparable {
		m.DestinationScore = Similarity(bookingDest, expenseDest)
		m.DestinationMatched = m.DestinationScore > LegMatchThreshold
	}

	switch {
	case originComparable && destComparable:
		m.Comparable = true
		m.Score = (m.OriginScore + m.DestinationScore) / 2
	case originComparable:
		m.Comparable = true
		m.Score = m.OriginScore * singleLegFactor
	case destComparable:
		m.Comparable = true
		m.Score = m.DestinationScore * singleLegFactor
	}
	return m
}

var routePattern = regexp.MustCompile(`\b([A-Z]{3})\s*(?:-|/|>|–|\bto\b)\s*([A-Z]{3})\b`)

// ExtractRoute finds an airport pair such as "SFO-JFK", "SFO/JFK" or
// "SFO to JFK" in free text.
func ExtractRoute(text string) (origin, destination string, ok bool) {
	m := routePattern.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	if strings.EqualFold(m[1], m[2]) {
		return "", "", false
	}
	return m[1], m[2], true
}
