package listing

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/yourorg/openhouse-api/internal/canon"
)

// Number accepts a JSON string or number and keeps the textual form.
// Postgres numerics come back either way depending on the driver path.
type Number string

func (n *Number) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = Number(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	*n = Number(num.String())
	return nil
}

// Float parses the number; anything unparseable is 0.
func (n Number) Float() float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(n)), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// RawRecord is one upcoming open house as returned by the data source.
type RawRecord struct {
	Street       string   `json:"street"`
	Unit         string   `json:"unit"`
	AreaName     string   `json:"area_name"`
	ZipCode      string   `json:"zip_code"`
	State        string   `json:"state"`
	URL          string   `json:"url"`
	StartET      string   `json:"open_house_start_et"`
	EndET        string   `json:"open_house_end_et"`
	Bathrooms    float64  `json:"bathroom_count"`
	Bedrooms     float64  `json:"total_bedrooms"`
	Price        Number   `json:"price"`
	AvailableAt  string   `json:"available_at"`
	PhotoRef     string   `json:"lead_media_photo"`
	PropertyType string   `json:"property_type,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
}

// CachedCoordinates returns the stored [lng, lat] when both are present and non-zero.
func (r RawRecord) CachedCoordinates() ([2]float64, bool) {
	if r.Latitude == nil || r.Longitude == nil {
		return [2]float64{}, false
	}
	lat, lng := *r.Latitude, *r.Longitude
	if lat == 0 || lng == 0 || !canon.ValidLngLat(lng, lat) {
		return [2]float64{}, false
	}
	return [2]float64{lng, lat}, true
}
