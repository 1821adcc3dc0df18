package listing

import (
	"context"
	"strings"
	"time"

	"github.com/yourorg/openhouse-api/internal/canon"
	"github.com/yourorg/openhouse-api/internal/schedule"
)

const defaultPropertyType = "Apartment"

// Geocoder resolves a postal address to [lng, lat]. A false result is an
// ordinary outcome, not an error.
type Geocoder interface {
	Geocode(ctx context.Context, address string) ([2]float64, bool)
}

type Normalizer struct {
	Geocoder Geocoder
	Calendar *schedule.Calendar
	// Zone picks the time zone a listing's timestamps are local to. Nil means
	// the calendar's location.
	Zone func(lng, lat float64) *time.Location
	// OnGeocoded is called after a successful fresh geocode, e.g. to cache
	// the result upstream.
	OnGeocoded func(rec RawRecord, coords [2]float64)
}

// Normalize turns one raw record into a Listing. It reports false when no
// coordinates are available, in which case the record must be dropped.
func (n *Normalizer) Normalize(ctx context.Context, rec RawRecord) (Listing, bool) {
	full := canon.FullAddress(rec.Street, rec.Unit, rec.AreaName, rec.State, rec.ZipCode)

	coords, ok := rec.CachedCoordinates()
	if !ok && n.Geocoder != nil {
		coords, ok = n.Geocoder.Geocode(ctx, full)
		if ok && !canon.ValidLngLat(coords[0], coords[1]) {
			ok = false
		}
		if ok && n.OnGeocoded != nil {
			n.OnGeocoded(rec, coords)
		}
	}
	if !ok {
		return Listing{}, false
	}

	var loc *time.Location
	if n.Zone != nil {
		loc = n.Zone(coords[0], coords[1])
	}
	when := n.Calendar.FormatIn(rec.StartET, rec.EndET, loc)

	price := rec.Price.Float()
	beds := nonNegative(rec.Bedrooms)
	baths := nonNegative(rec.Bathrooms)
	line := canon.Line(rec.Street, rec.Unit)

	propType := strings.TrimSpace(rec.PropertyType)
	if propType == "" {
		propType = defaultPropertyType
	}

	return Listing{
		ID:               canon.ListingID(rec.Street, rec.Unit),
		Name:             line,
		Address:          line,
		FullAddress:      full,
		Coordinates:      coords,
		DisplayDate:      when.Date,
		DisplayTimeRange: when.Time,
		Price:            price,
		PriceDisplay:     FormatPrice(price),
		Bedrooms:         beds,
		Bathrooms:        baths,
		BedroomsDisplay:  FormatBedrooms(beds),
		BathroomsDisplay: FormatCount(baths),
		AvailableAt:      rec.AvailableAt,
		PhotoURL:         PhotoURL(rec.PhotoRef),
		PropertyType:     propType,
		ExternalWebsite:  rec.URL,
	}, true
}
