package listing

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/openhouse-api/internal/schedule"
)

type stubGeocoder struct {
	coords [2]float64
	ok     bool
	calls  []string
}

func (s *stubGeocoder) Geocode(_ context.Context, address string) ([2]float64, bool) {
	s.calls = append(s.calls, address)
	return s.coords, s.ok
}

func testCalendar(t *testing.T) *schedule.Calendar {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	now := time.Date(2025, time.July, 2, 10, 0, 0, 0, loc) // Wednesday
	return &schedule.Calendar{Now: func() time.Time { return now }, Location: loc}
}

func charlesStreet() RawRecord {
	return RawRecord{
		Street:      "53 Charles St",
		AreaName:    "West Village",
		ZipCode:     "10014",
		State:       "NY",
		URL:         "https://streeteasy.com/building/53-charles-street-new_york/townhouse",
		StartET:     "07/05/2025 14:00",
		EndET:       "07/05/2025 16:00",
		Bathrooms:   2.5,
		Bedrooms:    3,
		Price:       "3875000",
		AvailableAt: "2025-08-01",
		PhotoRef:    "334129066df87b2f73c1cace0da30d0f",
	}
}

func TestNormalizeGeocodedRecord(t *testing.T) {
	geo := &stubGeocoder{coords: [2]float64{-74.0084, 40.7397}, ok: true}
	var cached [2]float64
	n := &Normalizer{
		Geocoder:   geo,
		Calendar:   testCalendar(t),
		OnGeocoded: func(_ RawRecord, c [2]float64) { cached = c },
	}

	l, ok := n.Normalize(context.Background(), charlesStreet())
	require.True(t, ok)

	assert.Equal(t, []string{"53 Charles St, West Village, NY 10014"}, geo.calls)
	assert.Equal(t, [2]float64{-74.0084, 40.7397}, l.Coordinates)
	assert.Equal(t, l.Coordinates, cached)
	assert.Equal(t, "oh-53CharlesSt-", l.ID)
	assert.Equal(t, float64(3875000), l.Price)
	assert.Equal(t, "$3,875,000", l.PriceDisplay)
	assert.Equal(t, "3", l.BedroomsDisplay)
	assert.Equal(t, "2.5", l.BathroomsDisplay)
	assert.Equal(t, "Saturday, Jul 5", l.DisplayDate)
	assert.Equal(t, "2:00 PM - 4:00 PM", l.DisplayTimeRange)
	assert.Equal(t, "Apartment", l.PropertyType)
	assert.Equal(t, "https://photos.zillowstatic.com/fp/334129066df87b2f73c1cace0da30d0f-se_large_800_400.webp", l.PhotoURL)
}

func TestNormalizeDropsUngeocodable(t *testing.T) {
	n := &Normalizer{Geocoder: &stubGeocoder{ok: false}, Calendar: testCalendar(t)}
	_, ok := n.Normalize(context.Background(), charlesStreet())
	assert.False(t, ok)

	n = &Normalizer{Calendar: testCalendar(t)}
	_, ok = n.Normalize(context.Background(), charlesStreet())
	assert.False(t, ok)
}

func TestNormalizePrefersCachedCoordinates(t *testing.T) {
	geo := &stubGeocoder{coords: [2]float64{1, 1}, ok: true}
	n := &Normalizer{Geocoder: geo, Calendar: testCalendar(t)}

	rec := charlesStreet()
	lat, lng := 40.7397, -74.0084
	rec.Latitude, rec.Longitude = &lat, &lng

	l, ok := n.Normalize(context.Background(), rec)
	require.True(t, ok)
	assert.Empty(t, geo.calls)
	assert.Equal(t, [2]float64{-74.0084, 40.7397}, l.Coordinates)
}

func TestNormalizeRejectsInvalidGeocode(t *testing.T) {
	n := &Normalizer{Geocoder: &stubGeocoder{coords: [2]float64{-200, 95}, ok: true}, Calendar: testCalendar(t)}
	_, ok := n.Normalize(context.Background(), charlesStreet())
	assert.False(t, ok)
}

func TestNormalizeStudioAndMissingPrice(t *testing.T) {
	rec := charlesStreet()
	rec.Unit = "4B"
	rec.Bedrooms = 0
	rec.Bathrooms = 1
	rec.Price = ""
	lat, lng := 40.73, -73.98
	rec.Latitude, rec.Longitude = &lat, &lng

	n := &Normalizer{Calendar: testCalendar(t)}
	l, ok := n.Normalize(context.Background(), rec)
	require.True(t, ok)
	assert.Equal(t, "oh-53CharlesSt-4B", l.ID)
	assert.Equal(t, "53 Charles St 4B", l.Name)
	assert.Equal(t, "Studio", l.BedroomsDisplay)
	assert.Equal(t, "1", l.BathroomsDisplay)
	assert.Equal(t, float64(0), l.Price)
	assert.Equal(t, "", l.PriceDisplay)
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "$725,000", FormatPrice(725000))
	assert.Equal(t, "$1,000", FormatPrice(999.6))
	assert.Equal(t, "", FormatPrice(0))
	assert.Equal(t, "Studio", FormatBedrooms(0))
	assert.Equal(t, "0", FormatCount(0))
	assert.Equal(t, "2", FormatCount(2))
	assert.Equal(t, "1.5", FormatCount(1.5))
	assert.Equal(t, "2.3", FormatCount(2.25))
}

func TestNumberAcceptsStringOrNumber(t *testing.T) {
	var rec RawRecord
	require.NoError(t, json.Unmarshal([]byte(`{"street":"1 Main St","unit":null,"price":3875000,"total_bedrooms":3}`), &rec))
	assert.Equal(t, float64(3875000), rec.Price.Float())
	assert.Equal(t, "", rec.Unit)

	require.NoError(t, json.Unmarshal([]byte(`{"price":"1250000.50"}`), &rec))
	assert.Equal(t, 1250000.5, rec.Price.Float())

	require.NoError(t, json.Unmarshal([]byte(`{"price":null}`), &rec))
	assert.Equal(t, float64(0), rec.Price.Float())

	assert.Equal(t, float64(0), Number("n/a").Float())
}

func TestSampleRecordsNormalizeWithoutGeocoding(t *testing.T) {
	cal := testCalendar(t)
	geo := &stubGeocoder{}
	n := &Normalizer{Geocoder: geo, Calendar: cal}

	recs := SampleRecords(cal)
	require.Len(t, recs, 5)
	for _, rec := range recs {
		l, ok := n.Normalize(context.Background(), rec)
		require.True(t, ok, rec.Street)
		assert.NotEmpty(t, l.ID)
		assert.True(t, cal.InRange(l.DisplayDate, schedule.RangeWeekend), l.DisplayDate)
	}
	assert.Empty(t, geo.calls)
}

func TestZoneLookup(t *testing.T) {
	z := NewZoneLookup(time.UTC)
	assert.Equal(t, "America/New_York", z.Zone(-74.0084, 40.7397).String())
	assert.Equal(t, "America/Los_Angeles", z.Zone(-122.4194, 37.7749).String())
}
