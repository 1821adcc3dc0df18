package listing

// Listing is the canonical, geocoded, display-ready open house. It is built
// once per normalization pass and never mutated afterwards.
type Listing struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Address     string     `json:"address"`
	FullAddress string     `json:"fullAddress"`
	Coordinates [2]float64 `json:"coordinates"` // [lng, lat]

	DisplayDate      string `json:"openHouseDate"`
	DisplayTimeRange string `json:"openHouseTime"`

	Price            float64 `json:"price"`
	PriceDisplay     string  `json:"priceDisplay"`
	Bedrooms         float64 `json:"bedrooms"`
	Bathrooms        float64 `json:"bathrooms"`
	BedroomsDisplay  string  `json:"bedroomsDisplay"`
	BathroomsDisplay string  `json:"bathroomsDisplay"`

	AvailableAt     string `json:"availableAt"`
	PhotoURL        string `json:"photoUrl"`
	PropertyType    string `json:"propertyType"`
	ExternalWebsite string `json:"externalWebsite"`
}
