package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/openhouse-api/internal/filter"
	"github.com/yourorg/openhouse-api/internal/listing"
	"github.com/yourorg/openhouse-api/internal/schedule"
)

func testIndexer(t *testing.T) *Indexer {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	cal := &schedule.Calendar{Location: loc, Now: func() time.Time {
		return time.Date(2025, 7, 2, 10, 0, 0, 0, loc)
	}}
	return NewIndexer(cal)
}

func TestReplaceAndLookup(t *testing.T) {
	idx := testIndexer(t)
	assert.Empty(t, idx.Snapshot().Listings)

	idx.Replace(Batch{Listings: []listing.Listing{
		{ID: "oh-53CharlesSt-", Price: 3875000, Bedrooms: 3, Bathrooms: 2.5, DisplayDate: "Saturday, Jul 5"},
		{ID: "oh-210E21stSt-21B", Price: 725000, Bedrooms: 0, Bathrooms: 1, DisplayDate: "Today"},
	}, Fallback: true, Banner: "data source unavailable"})

	l, ok := idx.Get("oh-210E21stSt-21B")
	require.True(t, ok)
	assert.Equal(t, 725000.0, l.Price)
	assert.False(t, idx.Has("nope"))

	visible, b := idx.Visible(filter.Default())
	assert.Len(t, visible, 2)
	assert.True(t, b.Fallback)

	f := filter.Default()
	f.DateRange = schedule.RangeToday
	visible, _ = idx.Visible(f)
	require.Len(t, visible, 1)
	assert.Equal(t, "oh-210E21stSt-21B", visible[0].ID)

	idx.Replace(Batch{})
	assert.False(t, idx.Has("oh-53CharlesSt-"))
}
