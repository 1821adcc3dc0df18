package filter

import (
	"regexp"
	"slices"

	"github.com/yourorg/openhouse-api/internal/schedule"
)

const Any = "any"

var (
	BedroomOptions  = []string{Any, "studio", "1", "2", "3", "4+"}
	BathroomOptions = []string{Any, "1+", "1.5+", "2+", "3+"}

	reNonDigit = regexp.MustCompile(`\D`)
)

// Spec is the user's current filter criteria. Bedrooms is a set kept in
// selection order and is never empty.
type Spec struct {
	MinPrice  string         `json:"minPrice" validate:"omitempty,max=32"`
	MaxPrice  string         `json:"maxPrice" validate:"omitempty,max=32"`
	Bedrooms  []string       `json:"bedrooms" validate:"required,min=1,dive,oneof=any studio 1 2 3 4+"`
	Bathrooms string         `json:"bathrooms" validate:"required,oneof=any 1+ 1.5+ 2+ 3+"`
	DateRange schedule.Range `json:"dateRange" validate:"omitempty,oneof=all today tomorrow week weekend"`
}

func Default() Spec {
	return Spec{
		Bedrooms:  []string{Any},
		Bathrooms: Any,
		DateRange: schedule.RangeAll,
	}
}

// Normalized repairs a spec so its invariants hold: digits-only prices,
// known options only, a non-empty bedroom set where "any" stands alone.
func (s Spec) Normalized() Spec {
	out := Spec{
		MinPrice:  DigitsOnly(s.MinPrice),
		MaxPrice:  DigitsOnly(s.MaxPrice),
		Bathrooms: s.Bathrooms,
		DateRange: s.DateRange,
	}
	for _, b := range s.Bedrooms {
		if b == Any {
			out.Bedrooms = []string{Any}
			break
		}
		if slices.Contains(BedroomOptions, b) && !slices.Contains(out.Bedrooms, b) {
			out.Bedrooms = append(out.Bedrooms, b)
		}
	}
	if len(out.Bedrooms) == 0 {
		out.Bedrooms = []string{Any}
	}
	if !slices.Contains(BathroomOptions, out.Bathrooms) {
		out.Bathrooms = Any
	}
	if !out.DateRange.Valid() {
		out.DateRange = schedule.RangeAll
	}
	return out
}

// AnyBedrooms reports whether the bedroom criterion is inactive.
func (s Spec) AnyBedrooms() bool {
	return len(s.Bedrooms) == 0 || slices.Contains(s.Bedrooms, Any)
}

// ToggleBedroom applies one click on a bedroom option:
// "any" clears everything else; another value replaces a lone "any";
// a selected value is removed (falling back to "any"); otherwise it is added.
func ToggleBedroom(s Spec, value string) Spec {
	out := s
	switch {
	case value == Any:
		out.Bedrooms = []string{Any}
	case s.AnyBedrooms():
		out.Bedrooms = []string{value}
	case slices.Contains(s.Bedrooms, value):
		out.Bedrooms = slices.DeleteFunc(slices.Clone(s.Bedrooms), func(b string) bool { return b == value })
		if len(out.Bedrooms) == 0 {
			out.Bedrooms = []string{Any}
		}
	default:
		out.Bedrooms = append(slices.Clone(s.Bedrooms), value)
	}
	return out
}

// ActiveCount is the number of criteria that currently narrow results.
func ActiveCount(s Spec) int {
	n := 0
	if s.MinPrice != "" {
		n++
	}
	if s.MaxPrice != "" {
		n++
	}
	if !s.AnyBedrooms() {
		n++
	}
	if s.Bathrooms != "" && s.Bathrooms != Any {
		n++
	}
	if s.DateRange != "" && s.DateRange != schedule.RangeAll {
		n++
	}
	return n
}

func DigitsOnly(v string) string {
	return reNonDigit.ReplaceAllString(v, "")
}
