// Package session pairs each map client with its persisted state and its
// interaction controller.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourorg/openhouse-api/internal/events"
	"github.com/yourorg/openhouse-api/internal/interaction"
	"github.com/yourorg/openhouse-api/internal/logger"
	"github.com/yourorg/openhouse-api/internal/state"
)

// markerKey records in KV that a session id was handed out by Create.
const markerKey = "openhouse-session"

var ErrNotFound = errors.New("session_not_found")

type Session struct {
	ID         string
	State      *state.Store
	Controller *interaction.Controller
}

type entry struct {
	session  *Session
	lastSeen time.Time
}

// Registry keeps active sessions in memory; their filters and view live in KV
// and survive restarts and eviction, interaction state does not. Only ids
// issued by Create are ever rehydrated.
type Registry struct {
	KV    state.KV
	Known func(listingID string) bool
	Pub   events.Publisher
	// IdleTimeout drops sessions not looked up for that long. Zero keeps them.
	IdleTimeout time.Duration
	Now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

func NewRegistry(kv state.KV, known func(string) bool, pub events.Publisher) *Registry {
	return &Registry{KV: kv, Known: known, Pub: pub, Now: time.Now, sessions: map[string]*entry{}}
}

func (r *Registry) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func marker(id string) string { return id + ":" + markerKey }

// Create starts a new session with a fresh id. State is loaded before the
// session is returned.
func (r *Registry) Create(ctx context.Context) *Session {
	id := uuid.NewString()
	if err := r.KV.Set(ctx, marker(id), r.now().UTC().Format(time.RFC3339)); err != nil {
		logger.Log.Warnf("session %s: marker not persisted, it will not survive eviction: %v", id, err)
	}
	s := r.insert(r.load(ctx, id))
	logger.Log.Debugf("session %s created", s.ID)
	return s
}

// Get returns the session for id. A session that is no longer in memory is
// rehydrated from KV if Create issued it; any other id is ErrNotFound.
func (r *Registry) Get(ctx context.Context, id string) (*Session, error) {
	u, err := uuid.Parse(id)
	if err != nil || u.String() != id {
		return nil, ErrNotFound
	}
	if s, ok := r.lookup(id); ok {
		return s, nil
	}
	_, found, err := r.KV.Get(ctx, marker(id))
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return r.insert(r.load(ctx, id)), nil
}

func (r *Registry) lookup(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.now()
	return e.session, true
}

// load runs without the registry lock; KV reads may be slow.
func (r *Registry) load(ctx context.Context, id string) *Session {
	st := state.NewStore(r.KV, id)
	st.Load(ctx)
	ctrl := interaction.New(r.Known)
	ctrl.OnTransition(func(from, to interaction.State) {
		logger.Log.WithFields(logrus.Fields{
			"session":  id,
			"from":     from.Mode,
			"to":       to.Mode,
			"selected": to.SelectedID,
		}).Debug("interaction transition")
	})
	return &Session{ID: id, State: st, Controller: ctrl}
}

// insert keeps the first session stored for an id; a concurrent loser is
// discarded in favor of it.
func (r *Registry) insert(s *Session) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[s.ID]; ok {
		e.lastSeen = r.now()
		return e.session
	}
	r.sessions[s.ID] = &entry{session: s, lastSeen: r.now()}
	return s
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle longer than IdleTimeout and reports how many went.
func (r *Registry) Sweep() int {
	if r.IdleTimeout <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.IdleTimeout)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, e := range r.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// Forget clears selections and hovers pointing at listings that are gone.
func (r *Registry) Forget(present func(string) bool) {
	r.mu.Lock()
	all := make([]*Session, 0, len(r.sessions))
	for _, e := range r.sessions {
		all = append(all, e.session)
	}
	r.mu.Unlock()
	for _, s := range all {
		s.Controller.Forget(present)
	}
}

// Run applies Forget after each refetch and sweeps idle sessions until ctx is
// done.
func (r *Registry) Run(ctx context.Context, present func(string) bool) {
	var refreshed <-chan events.ListingsRefreshed
	if r.Pub != nil {
		refreshed = r.Pub.SubscribeListingsRefreshed()
	}
	var sweep <-chan time.Time
	if r.IdleTimeout > 0 {
		every := r.IdleTimeout / 4
		if every < time.Second {
			every = time.Second
		}
		t := time.NewTicker(every)
		defer t.Stop()
		sweep = t.C
	}
	if refreshed == nil && sweep == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-refreshed:
			r.Forget(present)
		case <-sweep:
			if n := r.Sweep(); n > 0 {
				logger.Log.Debugf("evicted %d idle sessions", n)
			}
		}
	}
}
