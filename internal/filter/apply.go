package filter

import (
	"slices"
	"strconv"
	"strings"

	"github.com/yourorg/openhouse-api/internal/listing"
	"github.com/yourorg/openhouse-api/internal/schedule"
)

// Apply returns the listings that satisfy every criterion of s, in input order.
// The input slice is not modified.
func Apply(listings []listing.Listing, s Spec, cal *schedule.Calendar) []listing.Listing {
	p := compile(s, cal)
	out := make([]listing.Listing, 0, len(listings))
	for _, l := range listings {
		if p.match(l) {
			out = append(out, l)
		}
	}
	return out
}

type predicate struct {
	cal       *schedule.Calendar
	dateRange schedule.Range

	minPrice, maxPrice       float64
	hasMinPrice, hasMaxPrice bool

	bedrooms []string

	minBaths    float64
	hasMinBaths bool
}

func compile(s Spec, cal *schedule.Calendar) predicate {
	p := predicate{cal: cal, dateRange: s.DateRange}
	p.minPrice, p.hasMinPrice = parseThreshold(s.MinPrice)
	p.maxPrice, p.hasMaxPrice = parseThreshold(s.MaxPrice)
	if !s.AnyBedrooms() {
		p.bedrooms = s.Bedrooms
	}
	if s.Bathrooms != "" && s.Bathrooms != Any {
		p.minBaths, p.hasMinBaths = parseThreshold(strings.TrimSuffix(s.Bathrooms, "+"))
	}
	return p
}

func (p predicate) match(l listing.Listing) bool {
	if p.dateRange != "" && p.dateRange != schedule.RangeAll && !p.cal.InRange(l.DisplayDate, p.dateRange) {
		return false
	}
	if p.hasMinPrice && l.Price < p.minPrice {
		return false
	}
	if p.hasMaxPrice && l.Price > p.maxPrice {
		return false
	}
	if p.bedrooms != nil && !matchBedrooms(l.Bedrooms, p.bedrooms) {
		return false
	}
	if p.hasMinBaths && l.Bathrooms < p.minBaths {
		return false
	}
	return true
}

func matchBedrooms(beds float64, selected []string) bool {
	if slices.Contains(selected, "studio") && beds == 0 {
		return true
	}
	if slices.Contains(selected, "4+") && beds >= 4 {
		return true
	}
	return slices.Contains(selected, strconv.FormatFloat(beds, 'f', -1, 64))
}

// parseThreshold reads a non-empty numeric criterion; empty or garbage means unset.
func parseThreshold(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
