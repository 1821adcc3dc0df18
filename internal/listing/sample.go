package listing

import (
	"time"

	"github.com/yourorg/openhouse-api/internal/schedule"
)

type sample struct {
	street, unit, area, zip string
	lng, lat                float64
	weekday                 time.Weekday
	startHour, endHour      int
	price                   string
	beds, baths             float64
	available, photo, url   string
	propertyType            string
}

var samples = []sample{
	{"235 E 73rd St", "3A", "Upper East Side", "10021", -73.9667, 40.7794, time.Saturday, 12, 14, "1250000", 2, 2, "2025-05-01",
		"ad59ed2033d6ee4a930bac5637ff8b5e", "https://streeteasy.com/building/235-east-73-street-new_york/3a", "Condo"},
	{"210 E 21st St", "21B", "Gramercy Park", "10010", -73.9814, 40.7348, time.Sunday, 11, 13, "725000", 0, 1, "2025-05-15",
		"57e32473585d45035144cc18e20c145c", "https://streeteasy.com/building/gramercy-park-towers/21b", "Co-op"},
	{"53 Charles St", "", "West Village", "10014", -74.0084, 40.7397, time.Saturday, 14, 16, "3875000", 3, 2.5, "2025-06-01",
		"334129066df87b2f73c1cace0da30d0f", "https://streeteasy.com/building/53-charles-street-new_york/townhouse", "Townhouse"},
	{"300 E 55th St", "15D", "Midtown East", "10022", -73.9707, 40.7608, time.Sunday, 13, 15, "1850000", 2, 2, "2025-05-15",
		"6602125fe0bac23571ada9c448ecf05d", "https://streeteasy.com/building/the-milan/15d", "Condo"},
	{"125 E 84th St", "6A", "Upper East Side", "10028", -73.9445, 40.7769, time.Saturday, 15, 17, "2650000", 3, 2, "2025-06-15",
		"dfbd282cbfed1d60df94c0c19ca0d90d", "https://streeteasy.com/building/125-east-84-street-new_york/6a", "Co-op"},
}

// SampleRecords is the fixed fallback dataset, dated on the coming weekend
// relative to cal so that it always reads as upcoming.
func SampleRecords(cal *schedule.Calendar) []RawRecord {
	today := cal.Today()
	out := make([]RawRecord, 0, len(samples))
	for _, s := range samples {
		offset := (int(s.weekday) - int(today.Weekday()) + 7) % 7
		day := today.AddDate(0, 0, offset)
		lat, lng := s.lat, s.lng
		out = append(out, RawRecord{
			Street:       s.street,
			Unit:         s.unit,
			AreaName:     s.area,
			ZipCode:      s.zip,
			State:        "NY",
			URL:          s.url,
			StartET:      stamp(day, s.startHour),
			EndET:        stamp(day, s.endHour),
			Bathrooms:    s.baths,
			Bedrooms:     s.beds,
			Price:        Number(s.price),
			AvailableAt:  s.available,
			PhotoRef:     s.photo,
			PropertyType: s.propertyType,
			Latitude:     &lat,
			Longitude:    &lng,
		})
	}
	return out
}

func stamp(day time.Time, hour int) string {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location()).Format("01/02/2006 15:04")
}
