package canon

import (
	"regexp"
	"strings"
)

var (
	rePunct       = regexp.MustCompile(`[^A-Za-z0-9\s]`)
	reNonAlnum    = regexp.MustCompile(`[^A-Za-z0-9]`)
	listingPrefix = "oh-"
)

// Line joins street and an optional unit the way listings display them.
func Line(street, unit string) string {
	street = strings.TrimSpace(street)
	unit = strings.TrimSpace(unit)
	if unit == "" {
		return street
	}
	return street + " " + unit
}

// FullAddress builds the postal string sent to the geocoder:
// "<street>[ <unit>], <area>, <state> <zip>".
func FullAddress(street, unit, area, state, zip string) string {
	return Line(street, unit) + ", " + strings.TrimSpace(area) + ", " +
		strings.TrimSpace(state) + " " + strings.TrimSpace(zip)
}

// ListingID is stable across sessions for the same street and unit text.
// Area and zip are not part of the key.
func ListingID(street, unit string) string {
	return listingPrefix + reNonAlnum.ReplaceAllString(street, "") + "-" + unit
}

// Canonicalize normalizes a free-text address into a lowercase cache key.
// Unit designators are kept so different apartments geocode independently.
func Canonicalize(address string) string {
	s := strings.ToUpper(strings.TrimSpace(address))
	s = rePunct.ReplaceAllString(s, " ")
	s = abbreviateSuffix(" " + collapseSpaces(s) + " ")
	s = abbreviateStates(s)
	return strings.ToLower(collapseSpaces(s))
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var suffixes = map[string]string{
	" STREET ":    " ST ",
	" ROAD ":      " RD ",
	" AVENUE ":    " AVE ",
	" BOULEVARD ": " BLVD ",
	" DRIVE ":     " DR ",
	" LANE ":      " LN ",
	" COURT ":     " CT ",
	" CIRCLE ":    " CIR ",
	" TERRACE ":   " TER ",
	" PLACE ":     " PL ",
	" PARKWAY ":   " PKWY ",
	" HIGHWAY ":   " HWY ",
	" APARTMENT ": " APT ",
	" SUITE ":     " STE ",
}

func abbreviateSuffix(s string) string {
	out := s
	for k, v := range suffixes {
		out = strings.ReplaceAll(out, k, v)
	}
	return out
}

var states = map[string]string{
	"NEW YORK": "NY", "NEW JERSEY": "NJ", "CONNECTICUT": "CT", "PENNSYLVANIA": "PA", "MASSACHUSETTS": "MA",
}

func abbreviateStates(s string) string {
	out := s
	for k, v := range states {
		out = strings.ReplaceAll(out, " "+k+" ", " "+v+" ")
	}
	return out
}
