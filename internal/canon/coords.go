package canon

import "math"

// ValidLngLat reports whether lng and lat are finite and inside WGS84 bounds.
func ValidLngLat(lng, lat float64) bool {
	if math.IsNaN(lng) || math.IsNaN(lat) || math.IsInf(lng, 0) || math.IsInf(lat, 0) {
		return false
	}
	return lng >= -180 && lng <= 180 && lat >= -90 && lat <= 90
}
