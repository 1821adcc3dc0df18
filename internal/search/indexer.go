package search

import (
	"sync"
	"time"

	"github.com/yourorg/openhouse-api/internal/filter"
	"github.com/yourorg/openhouse-api/internal/listing"
	"github.com/yourorg/openhouse-api/internal/logger"
	"github.com/yourorg/openhouse-api/internal/schedule"
)

// Batch is one complete normalized result set. Batches are only ever
// replaced whole.
type Batch struct {
	Listings []listing.Listing
	Fallback bool
	// Banner is a user-facing, non-blocking error message; empty when the
	// data source answered.
	Banner   string
	LoadedAt time.Time
}

// Indexer holds the latest batch and answers filter queries against it.
type Indexer struct {
	Calendar *schedule.Calendar

	mu    sync.RWMutex
	batch Batch
	byID  map[string]int
}

func NewIndexer(cal *schedule.Calendar) *Indexer {
	return &Indexer{Calendar: cal, byID: map[string]int{}}
}

func (i *Indexer) Replace(b Batch) {
	byID := make(map[string]int, len(b.Listings))
	for n, l := range b.Listings {
		if _, dup := byID[l.ID]; dup {
			logger.Log.Warnf("duplicate listing id %s in batch", l.ID)
			continue
		}
		byID[l.ID] = n
	}
	i.mu.Lock()
	i.batch, i.byID = b, byID
	i.mu.Unlock()
}

func (i *Indexer) Snapshot() Batch {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.batch
}

func (i *Indexer) Get(id string) (listing.Listing, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	n, ok := i.byID[id]
	if !ok {
		return listing.Listing{}, false
	}
	return i.batch.Listings[n], true
}

func (i *Indexer) Has(id string) bool {
	_, ok := i.Get(id)
	return ok
}

// Visible filters the current batch with s. The batch metadata is returned
// alongside so callers can show the fallback banner.
func (i *Indexer) Visible(s filter.Spec) ([]listing.Listing, Batch) {
	b := i.Snapshot()
	return filter.Apply(b.Listings, s, i.Calendar), b
}
