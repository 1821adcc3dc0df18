package listing

import (
	"sync"
	"time"

	"github.com/bradfitz/latlong"
)

// ZoneLookup maps coordinates to their IANA zone, falling back to def
// offshore or when the zone database lacks the name.
type ZoneLookup struct {
	def   *time.Location
	cache sync.Map // zone name -> *time.Location
}

func NewZoneLookup(def *time.Location) *ZoneLookup {
	if def == nil {
		def = time.Local
	}
	return &ZoneLookup{def: def}
}

func (z *ZoneLookup) Zone(lng, lat float64) *time.Location {
	name := latlong.LookupZoneName(lat, lng)
	if name == "" {
		return z.def
	}
	if loc, ok := z.cache.Load(name); ok {
		return loc.(*time.Location)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return z.def
	}
	z.cache.Store(name, loc)
	return loc
}
