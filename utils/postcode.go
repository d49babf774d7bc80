package utils

import (
	"regexp"
	"strings"
)

// UK postcode, outward then inward code. Matches against the normalized
// form (upper case, single separating space).
var postcodePattern = regexp.MustCompile(`^[A-Z]{1,2}[0-9][A-Z0-9]? [0-9][A-Z]{2}$`)

// NormalizePostcode upper-cases the postcode and rewrites it with a single
// space before the three-character inward code, so "sw1a1aa" and "SW1A  1AA"
// both store as "SW1A 1AA".
func NormalizePostcode(postcode string) string {
	compact := strings.ToUpper(strings.ReplaceAll(postcode, " ", ""))
	if len(compact) < 5 {
		return compact
	}
	return compact[:len(compact)-3] + " " + compact[len(compact)-3:]
}

// IsValidPostcode reports whether the postcode normalizes to a well-formed
// UK postcode
func IsValidPostcode(postcode string) bool {
	return postcodePattern.MatchString(NormalizePostcode(postcode))
}
