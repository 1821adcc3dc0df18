package mapbox

import (
	"encoding/json"

	"github.com/yourorg/openhouse-api/internal/canon"
)

type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

type Feature struct {
	ID        string    `json:"id"`
	PlaceName string    `json:"place_name"`
	Relevance float64   `json:"relevance"`
	Center    []float64 `json:"center"`
	Geometry  Geometry  `json:"geometry"`
}

// LngLat returns the feature point, preferring geometry over center.
func (f Feature) LngLat() ([2]float64, bool) {
	for _, c := range [][]float64{f.Geometry.Coordinates, f.Center} {
		if len(c) < 2 {
			continue
		}
		if canon.ValidLngLat(c[0], c[1]) {
			return [2]float64{c[0], c[1]}, true
		}
	}
	return [2]float64{}, false
}

func decodeFeatures(raw []byte) ([]Feature, error) {
	var root struct {
		Features []Feature `json:"features"`
	}
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, err
	}
	return root.Features, nil
}
