// Package refresh queues geocoded coordinates for write-back to the data
// source so later passes take the cache-first path.
package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/yourorg/openhouse-api/internal/logger"
)

type Job struct {
	Street string
	Unit   string
	Coords [2]float64 // [lng, lat]
}

func (j Job) key() string { return j.Street + "\x00" + j.Unit }

type Refresher struct {
	ch    chan Job
	inFly sync.Map // key -> struct{}
	Do    func(ctx context.Context, j Job) error

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// New starts workerCount workers. A job for an address already queued or in
// flight is dropped, as is any job that finds the queue full.
func New(capacity int, workerCount int, do func(ctx context.Context, j Job) error) *Refresher {
	if capacity <= 0 {
		capacity = 256
	}
	if workerCount <= 0 {
		workerCount = 2
	}
	r := &Refresher{ch: make(chan Job, capacity), Do: do}
	r.wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go r.worker()
	}
	return r
}

// Enqueue reports whether the job was accepted.
func (r *Refresher) Enqueue(j Job) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return false
	}
	if _, exists := r.inFly.LoadOrStore(j.key(), struct{}{}); exists {
		return false
	}
	select {
	case r.ch <- j:
		return true
	default:
		r.inFly.Delete(j.key())
		logger.Log.Warnf("refresh queue full, dropping coordinates for %q", j.Street)
		return false
	}
}

// Close stops accepting jobs and waits for queued ones to finish.
func (r *Refresher) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.ch)
	r.mu.Unlock()
	r.wg.Wait()
}

func (r *Refresher) worker() {
	defer r.wg.Done()
	for j := range r.ch {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		func() {
			defer func() {
				r.inFly.Delete(j.key())
				cancel()
			}()
			if r.Do == nil {
				return
			}
			if err := r.Do(ctx, j); err != nil {
				logger.Log.Warnf("coordinate write-back for %q failed: %v", j.Street, err)
			}
		}()
	}
}
