// Package hydrator turns data-source rows into the canonical listing batch.
package hydrator

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yourorg/openhouse-api/internal/events"
	"github.com/yourorg/openhouse-api/internal/listing"
	"github.com/yourorg/openhouse-api/internal/logger"
	"github.com/yourorg/openhouse-api/internal/search"
)

// Banner is shown to users when the data source could not be reached.
const Banner = "Unable to load open houses right now. Showing sample listings."

var ErrNoNormalizer = errors.New("hydrator_missing_normalizer")

// Source yields the raw upcoming open houses.
type Source interface {
	FetchUpcoming(ctx context.Context) ([]listing.RawRecord, error)
}

type Hydrator struct {
	// Source may be nil, in which case the sample set is served.
	Source     Source
	Normalizer *listing.Normalizer
	// Concurrency bounds geocode calls within one batch.
	Concurrency int
	Index       *search.Indexer
	Pub         events.Publisher
}

type Result struct {
	Listings []listing.Listing
	Dropped  int
	Fallback bool
	Err      error
}

// Load fetches and normalizes one full batch. It never fails: a transport
// error or an empty data source yields the normalized sample set, with Err
// set in the former case.
func (h *Hydrator) Load(ctx context.Context) Result {
	if h.Normalizer == nil {
		return Result{Fallback: true, Err: ErrNoNormalizer}
	}
	if h.Source == nil {
		return h.fallback(ctx, nil)
	}

	raw, err := h.Source.FetchUpcoming(ctx)
	if err != nil {
		logger.Log.Errorf("fetch upcoming open houses: %v", err)
		return h.fallback(ctx, err)
	}
	if len(raw) == 0 {
		logger.Log.Warn("data source returned no upcoming open houses")
		return h.fallback(ctx, nil)
	}

	listings, dropped := h.normalize(ctx, raw)
	if len(listings) == 0 {
		logger.Log.Warnf("all %d upcoming open houses were dropped", dropped)
		res := h.fallback(ctx, nil)
		res.Dropped = dropped
		return res
	}
	return Result{Listings: listings, Dropped: dropped}
}

func (h *Hydrator) fallback(ctx context.Context, cause error) Result {
	listings, _ := h.normalize(ctx, listing.SampleRecords(h.Normalizer.Calendar))
	return Result{Listings: listings, Fallback: true, Err: cause}
}

// normalize runs the whole batch and returns only after every record has
// resolved. Input order is preserved.
func (h *Hydrator) normalize(ctx context.Context, raw []listing.RawRecord) ([]listing.Listing, int) {
	limit := h.Concurrency
	if limit <= 0 {
		limit = 8
	}
	out := make([]listing.Listing, len(raw))
	ok := make([]bool, len(raw))

	var g errgroup.Group
	g.SetLimit(limit)
	for i := range raw {
		g.Go(func() error {
			out[i], ok[i] = h.Normalizer.Normalize(ctx, raw[i])
			return nil
		})
	}
	_ = g.Wait()

	listings := make([]listing.Listing, 0, len(raw))
	dropped := 0
	for i, l := range out {
		if !ok[i] {
			dropped++
			logger.Log.Warnf("dropping open house %q: no coordinates", raw[i].Street)
			continue
		}
		listings = append(listings, l)
	}
	return listings, dropped
}

// Refresh loads a batch, swaps it into the index and announces it.
func (h *Hydrator) Refresh(ctx context.Context) Result {
	res := h.Load(ctx)
	b := search.Batch{Listings: res.Listings, Fallback: res.Fallback, LoadedAt: time.Now()}
	if res.Err != nil {
		b.Banner = Banner
	}
	if h.Index != nil {
		h.Index.Replace(b)
	}
	if h.Pub != nil {
		evt := events.ListingsRefreshed{Count: len(res.Listings), Dropped: res.Dropped, Fallback: res.Fallback, At: b.LoadedAt}
		if res.Err != nil {
			evt.Err = res.Err.Error()
		}
		h.Pub.PublishListingsRefreshed(ctx, evt)
	}
	logger.Log.Infof("listings refreshed: count=%d dropped=%d fallback=%t", len(res.Listings), res.Dropped, res.Fallback)
	return res
}
