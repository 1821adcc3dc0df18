package listing

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var usd = message.NewPrinter(language.AmericanEnglish)

// FormatPrice renders whole US dollars ("$3,875,000"). Zero means unknown and renders empty.
func FormatPrice(p float64) string {
	if p == 0 || math.IsNaN(p) || math.IsInf(p, 0) {
		return ""
	}
	whole := int64(math.Round(math.Abs(p)))
	s := "$" + usd.Sprintf("%d", whole)
	if p < 0 {
		return "-" + s
	}
	return s
}

// FormatBedrooms is FormatCount with 0 shown as "Studio".
func FormatBedrooms(n float64) string {
	if n == 0 {
		return "Studio"
	}
	return FormatCount(n)
}

// FormatCount drops the decimal for whole numbers and keeps one place otherwise.
func FormatCount(n float64) string {
	r := math.Round(n*10) / 10
	if r == math.Trunc(r) {
		return strconv.FormatFloat(r, 'f', 0, 64)
	}
	return strconv.FormatFloat(r, 'f', 1, 64)
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
