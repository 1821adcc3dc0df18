// Package state holds the per-client filter and map view settings that
// survive reloads.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/yourorg/openhouse-api/internal/canon"
	"github.com/yourorg/openhouse-api/internal/filter"
	"github.com/yourorg/openhouse-api/internal/logger"
)

const (
	FiltersKey = "openhouse-map-filters"
	ViewKey    = "openhouse-map-view"

	DefaultStyle = "streets-v12"
)

var ErrNotInitialized = errors.New("state_not_initialized")

// ViewState is the map camera plus the base style.
type ViewState struct {
	Center [2]float64 `json:"center"` // [lng, lat]
	Zoom   float64    `json:"zoom"`
	Style  string     `json:"style"`
}

// DefaultView centers on Manhattan.
func DefaultView() ViewState {
	return ViewState{Center: [2]float64{-73.98, 40.73}, Zoom: 12, Style: DefaultStyle}
}

func (v ViewState) valid() bool {
	return canon.ValidLngLat(v.Center[0], v.Center[1]) &&
		!math.IsNaN(v.Zoom) && v.Zoom >= 0 && v.Zoom <= 24 && v.Style != ""
}

// Store holds current filters and view state, loading them once from KV and
// writing through on every change. Reads before Load return ErrNotInitialized.
type Store struct {
	kv        KV
	namespace string

	mu          sync.RWMutex
	initialized bool
	filters     filter.Spec
	view        ViewState
}

func NewStore(kv KV, namespace string) *Store {
	return &Store{kv: kv, namespace: namespace, filters: filter.Default(), view: DefaultView()}
}

func (s *Store) key(k string) string {
	if s.namespace == "" {
		return k
	}
	return s.namespace + ":" + k
}

// Load reads both values from storage. Missing, unreadable or corrupt
// payloads fall back to defaults; Load itself never fails.
func (s *Store) Load(ctx context.Context) {
	f := filter.Default()
	if raw, ok := s.read(ctx, FiltersKey); ok {
		var stored filter.Spec
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			logger.Log.Warnf("discarding corrupt %s for %q: %v", FiltersKey, s.namespace, err)
		} else {
			f = stored.Normalized()
		}
	}

	v := DefaultView()
	if raw, ok := s.read(ctx, ViewKey); ok {
		var stored ViewState
		if err := json.Unmarshal([]byte(raw), &stored); err != nil || !stored.valid() {
			logger.Log.Warnf("discarding corrupt %s for %q", ViewKey, s.namespace)
		} else {
			v = stored
		}
	}

	s.mu.Lock()
	s.filters, s.view, s.initialized = f, v, true
	s.mu.Unlock()
}

func (s *Store) read(ctx context.Context, k string) (string, bool) {
	raw, found, err := s.kv.Get(ctx, s.key(k))
	if err != nil {
		logger.Log.Warnf("state read %s for %q failed: %v", k, s.namespace, err)
		return "", false
	}
	return raw, found && raw != ""
}

func (s *Store) write(ctx context.Context, k string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, s.key(k), string(b)); err != nil {
		return fmt.Errorf("persist %s: %w", k, err)
	}
	return nil
}

func (s *Store) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

func (s *Store) Filters() (filter.Spec, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return filter.Spec{}, ErrNotInitialized
	}
	return s.filters, nil
}

// SetFilters replaces the filters and persists them before returning. The
// in-memory value is kept even if persisting fails.
func (s *Store) SetFilters(ctx context.Context, f filter.Spec) (filter.Spec, error) {
	return s.UpdateFilters(ctx, func(filter.Spec) filter.Spec { return f })
}

// UpdateFilters applies fn to the current filters atomically.
func (s *Store) UpdateFilters(ctx context.Context, fn func(filter.Spec) filter.Spec) (filter.Spec, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return filter.Spec{}, ErrNotInitialized
	}
	next := fn(s.filters).Normalized()
	s.filters = next
	return next, s.write(ctx, FiltersKey, next)
}

func (s *Store) ResetFilters(ctx context.Context) (filter.Spec, error) {
	return s.SetFilters(ctx, filter.Default())
}

func (s *Store) View() (ViewState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return ViewState{}, ErrNotInitialized
	}
	return s.view, nil
}

func (s *Store) SetView(ctx context.Context, v ViewState) (ViewState, error) {
	return s.updateView(ctx, func(ViewState) ViewState { return v })
}

// Pan records a camera move from the live map and keeps the style.
func (s *Store) Pan(ctx context.Context, center [2]float64, zoom float64) (ViewState, error) {
	return s.updateView(ctx, func(cur ViewState) ViewState {
		cur.Center, cur.Zoom = center, zoom
		return cur
	})
}

// SetStyle switches the base style and keeps the camera.
func (s *Store) SetStyle(ctx context.Context, style string) (ViewState, error) {
	return s.updateView(ctx, func(cur ViewState) ViewState {
		cur.Style = style
		return cur
	})
}

func (s *Store) updateView(ctx context.Context, fn func(ViewState) ViewState) (ViewState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return ViewState{}, ErrNotInitialized
	}
	s.view = fn(s.view)
	return s.view, s.write(ctx, ViewKey, s.view)
}
