package similarity

import (
	"regexp"
	"slices"
	"strings"
)

// carrierPattern matches a two-letter designator followed by a 3-4 digit
// flight number, e.g. "DL1234" or "UA 545".
var carrierPattern = regexp.MustCompile(`\b([A-Z]{2})\s?(\d{3,4})\b`)

// ExtractCarrierCode returns the airline designator embedded in text.
func ExtractCarrierCode(text string) (string, bool) {
	m := carrierPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ExtractFlightNumber returns the canonical "DL1234" form of the first
// flight number found in text.
func ExtractFlightNumber(text string) (string, bool) {
	m := carrierPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1] + m[2], true
}

// ReferenceInText reports whether ref, or one of its common re-punctuated
// variants, appears in the normalized text.
func ReferenceInText(ref, text string) bool {
	haystack := Normalize(text)
	if haystack == "" {
		return false
	}
	for _, variant := range referenceVariants(ref) {
		if strings.Contains(haystack, variant) {
			return true
		}
	}

	// "ABC 123 XY" in a description still matches reference "ABC123XY"
	compact := strings.ReplaceAll(Normalize(ref), " ", "")
	if len(compact) >= minCompactSearch {
		return strings.Contains(strings.ReplaceAll(haystack, " ", ""), compact)
	}
	return false
}

// referenceVariants returns normalized forms of ref: as-is, compacted, and
// with a space between the letter prefix and the digits. A "#" between them
// is stripped by Normalize, so "DL#1234" is covered by the compacted form.
// References shorter than three characters are too ambiguous to search for.
func referenceVariants(ref string) []string {
	n := Normalize(ref)
	compact := strings.ReplaceAll(n, " ", "")
	if len(compact) < 3 {
		return nil
	}

	variants := []string{n}
	if compact != n {
		variants = append(variants, compact)
	}
	if i := strings.IndexFunc(compact, isDigit); i > 0 {
		// "dl1234" also appears as "dl 1234" or "dl#1234"
		variants = append(variants, compact[:i]+" "+compact[i:])
	}
	return variants
}

// minCompactSearch keeps short references from matching across word boundaries
const minCompactSearch = 5

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// airlineCodes maps airline names (normalized) to IATA designators
var airlineCodes = map[string]string{
	"delta":              "DL",
	"united":             "UA",
	"american airlines":  "AA",
	"southwest":          "WN",
	"jetblue":            "B6",
	"alaska airlines":    "AS",
	"spirit":             "NK",
	"frontier":           "F9",
	"air canada":         "AC",
	"westjet":            "WS",
	"british airways":    "BA",
	"lufthansa":          "LH",
	"air france":         "AF",
	"klm":                "KL",
	"emirates":           "EK",
	"qatar airways":      "QR",
	"qantas":             "QF",
	"singapore airlines": "SQ",
	"cathay pacific":     "CX",
	"ryanair":            "FR",
	"easyjet":            "U2",
	"iberia":             "IB",
	"aeromexico":         "AM",
	"turkish airlines":   "TK",
}

// ambiguousAirlines are one-word airline names that also name hotel chains,
// banks and regions. They only count next to an airline word.
var ambiguousAirlines = map[string]bool{
	"delta":     true,
	"united":    true,
	"frontier":  true,
	"spirit":    true,
	"southwest": true,
}

// airlineTokens mark a merchant or vendor as an airline
var airlineTokens = map[string]bool{
	"air":      true,
	"airline":  true,
	"airlines": true,
	"airways":  true,
	"aviation": true,
	"airfare":  true,
}

// CarrierForAirline maps an airline merchant name such as "Delta Air Lines"
// to its designator. Names match on whole words, so "Delta Hotels" is not
// Delta.
func CarrierForAirline(name string) (string, bool) {
	tokens := strings.Fields(Normalize(name))
	if len(tokens) == 0 {
		return "", false
	}
	// longest key first so "air canada" wins over a shorter overlapping name
	best, bestLen := "", 0
	for key, code := range airlineCodes {
		if !containsAirline(tokens, key) {
			continue
		}
		if len(key) > bestLen || (len(key) == bestLen && code < best) {
			best, bestLen = code, len(key)
		}
	}
	return best, best != ""
}

// containsAirline reports whether key appears in tokens as a run of whole
// words. Ambiguous keys also need an airline word on either side.
func containsAirline(tokens []string, key string) bool {
	keyTokens := strings.Fields(key)
	k := len(keyTokens)
	for i := 0; i+k <= len(tokens); i++ {
		if !slices.Equal(tokens[i:i+k], keyTokens) {
			continue
		}
		if !ambiguousAirlines[key] {
			return true
		}
		if i > 0 && airlineTokens[tokens[i-1]] {
			return true
		}
		if i+k < len(tokens) && airlineTokens[tokens[i+k]] {
			return true
		}
	}
	return false
}

// LooksLikeAirline reports whether a merchant or vendor name refers to an
// airline.
func LooksLikeAirline(name string) bool {
	n := Normalize(name)
	if n == "" {
		return false
	}
	if _, ok := CarrierForAirline(n); ok {
		return true
	}
	for _, tok := range strings.Fields(n) {
		if airlineTokens[tok] {
			return true
		}
	}
	return strings.Contains(n, "airline") || strings.Contains(n, "airways")
}
