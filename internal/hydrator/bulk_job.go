package hydrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourorg/openhouse-api/internal/canon"
	"github.com/yourorg/openhouse-api/internal/listing"
	"github.com/yourorg/openhouse-api/internal/logger"
)

// CoordinateStore is the part of the data source the backfill needs.
// MissingCoordinates skips addresses marked as attempted within retryAfter.
type CoordinateStore interface {
	MissingCoordinates(ctx context.Context, limit int, retryAfter time.Duration) ([]listing.RawRecord, error)
	SaveCoordinates(ctx context.Context, street, unit string, coords [2]float64) (int64, error)
	MarkGeocodeAttempted(ctx context.Context, street, unit string) (int64, error)
}

const defaultRetryAfter = 24 * time.Hour

type BulkConfig struct {
	BatchSize            int
	Interval             time.Duration
	PauseBetweenRequests time.Duration
	RequestTimeout       time.Duration
	// RetryAfter is how long an address the geocoder could not resolve stays
	// out of the batch.
	RetryAfter time.Duration
}

// BulkJob geocodes upcoming rows that have no coordinates yet and stores the
// result, so request-time normalization never has to call the geocoder.
type BulkJob struct {
	Store    CoordinateStore
	Geocoder listing.Geocoder
	Logger   logrus.FieldLogger
	Config   BulkConfig
}

func (j *BulkJob) log() logrus.FieldLogger {
	if j.Logger != nil {
		return j.Logger
	}
	return logger.Log
}

func (j *BulkJob) validate() error {
	if j == nil {
		return errors.New("nil bulk job")
	}
	if j.Store == nil {
		return errors.New("hydrator bulk job missing store")
	}
	if j.Geocoder == nil {
		return errors.New("hydrator bulk job missing geocoder")
	}
	return nil
}

func (j *BulkJob) Run(ctx context.Context) error {
	if err := j.validate(); err != nil {
		return err
	}
	interval := j.Config.Interval
	if interval <= 0 {
		_, err := j.RunOnce(ctx)
		return err
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	j.log().Infof("hydrator bulk job starting with interval %s", interval)
	if _, err := j.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
		j.log().Errorf("hydrator bulk job initial run error: %v", err)
	}
	for {
		select {
		case <-ctx.Done():
			j.log().Infof("hydrator bulk job stopping: %v", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			if _, err := j.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				j.log().Errorf("hydrator bulk job iteration error: %v", err)
			}
		}
	}
}

// RunOnce backfills one batch and returns how many addresses were stored.
// Per-address failures are joined. An address with no geocode result is not
// an error; it is marked so later batches move past it.
func (j *BulkJob) RunOnce(ctx context.Context) (int, error) {
	if err := j.validate(); err != nil {
		return 0, err
	}
	batch := j.Config.BatchSize
	if batch <= 0 {
		batch = 100
	}
	timeout := j.Config.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	retryAfter := j.Config.RetryAfter
	if retryAfter <= 0 {
		retryAfter = defaultRetryAfter
	}

	recs, err := j.Store.MissingCoordinates(ctx, batch, retryAfter)
	if err != nil {
		return 0, fmt.Errorf("list missing coordinates: %w", err)
	}
	if len(recs) == 0 {
		j.log().Debug("hydrator bulk job: nothing to backfill")
		return 0, nil
	}

	var joined error
	saved := 0
	for n, rec := range recs {
		if ctx.Err() != nil {
			return saved, ctx.Err()
		}
		if n > 0 && j.Config.PauseBetweenRequests > 0 {
			select {
			case <-ctx.Done():
				return saved, ctx.Err()
			case <-time.After(j.Config.PauseBetweenRequests):
			}
		}

		address := canon.FullAddress(rec.Street, rec.Unit, rec.AreaName, rec.State, rec.ZipCode)
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		coords, ok := j.Geocoder.Geocode(reqCtx, address)
		cancel()
		if !ok {
			j.log().Warnf("hydrator bulk job: no geocode for %q, retrying after %s", address, retryAfter)
			if _, err := j.Store.MarkGeocodeAttempted(ctx, rec.Street, rec.Unit); err != nil {
				joined = errors.Join(joined, fmt.Errorf("mark %q: %w", address, err))
			}
			continue
		}
		if _, err := j.Store.SaveCoordinates(ctx, rec.Street, rec.Unit, coords); err != nil {
			joined = errors.Join(joined, fmt.Errorf("save %q: %w", address, err))
			continue
		}
		saved++
	}
	j.log().Infof("hydrator bulk job stored coordinates for %d of %d address(es)", saved, len(recs))
	return saved, joined
}
