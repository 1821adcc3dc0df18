package session

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/openhouse-api/internal/filter"
	"github.com/yourorg/openhouse-api/internal/interaction"
	"github.com/yourorg/openhouse-api/internal/state"
)

func TestCreateLoadsStateBeforeReturning(t *testing.T) {
	r := NewRegistry(state.NewMemoryKV(), nil, nil)
	s := r.Create(context.Background())

	_, err := uuid.Parse(s.ID)
	require.NoError(t, err)
	assert.True(t, s.State.Initialized())
	assert.Equal(t, interaction.Idle, s.Controller.State().Mode)
}

func TestGetRehydratesFromKV(t *testing.T) {
	ctx := context.Background()
	kv := state.NewMemoryKV()
	first := NewRegistry(kv, nil, nil)
	s := first.Create(ctx)
	_, err := s.State.SetFilters(ctx, filter.Spec{MinPrice: "900000", Bedrooms: []string{"2"}, Bathrooms: "2+"})
	require.NoError(t, err)

	restarted := NewRegistry(kv, nil, nil)
	again, err := restarted.Get(ctx, s.ID)
	require.NoError(t, err)
	f, err := again.State.Filters()
	require.NoError(t, err)
	assert.Equal(t, "900000", f.MinPrice)

	same, _ := restarted.Get(ctx, s.ID)
	assert.Same(t, again, same)
}

func TestGetRejectsMalformedID(t *testing.T) {
	r := NewRegistry(state.NewMemoryKV(), nil, nil)
	_, err := r.Get(context.Background(), "../../etc")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, r.Len())
}

func TestGetUnknownIDIsNotFound(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(state.NewMemoryKV(), nil, nil)
	for i := 0; i < 1000; i++ {
		_, err := r.Get(ctx, uuid.NewString())
		require.ErrorIs(t, err, ErrNotFound)
	}
	assert.Zero(t, r.Len())

	s := r.Create(ctx)
	_, err := r.Get(ctx, strings.ToUpper(s.ID))
	assert.ErrorIs(t, err, ErrNotFound, "only the canonical form is accepted")
}

func TestSweepEvictsIdleSessions(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 7, 2, 10, 0, 0, 0, time.UTC)
	r := NewRegistry(state.NewMemoryKV(), nil, nil)
	r.IdleTimeout = 30 * time.Minute
	r.Now = func() time.Time { return now }

	idle := r.Create(ctx)
	_, err := idle.State.SetFilters(ctx, filter.Spec{MaxPrice: "1200000", Bedrooms: []string{"1"}, Bathrooms: filter.Any})
	require.NoError(t, err)
	idle.Controller.ExpandPanel()

	now = now.Add(20 * time.Minute)
	active := r.Create(ctx)
	now = now.Add(20 * time.Minute)

	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, 1, r.Len())
	_, err = r.Get(ctx, active.ID)
	require.NoError(t, err)

	back, err := r.Get(ctx, idle.ID)
	require.NoError(t, err)
	assert.NotSame(t, idle, back)
	f, err := back.State.Filters()
	require.NoError(t, err)
	assert.Equal(t, "1200000", f.MaxPrice)
	assert.Equal(t, interaction.Idle, back.Controller.State().Mode, "interaction state is not persisted")
}

type gatedKV struct {
	*state.MemoryKV
	key     string
	entered chan struct{}
	release chan struct{}
}

func (g *gatedKV) Get(ctx context.Context, key string) (string, bool, error) {
	if key == g.key {
		g.entered <- struct{}{}
		<-g.release
	}
	return g.MemoryKV.Get(ctx, key)
}

func TestSlowLoadDoesNotBlockOtherSessions(t *testing.T) {
	ctx := context.Background()
	mem := state.NewMemoryKV()
	slow := NewRegistry(mem, nil, nil).Create(ctx)

	kv := &gatedKV{
		MemoryKV: mem,
		key:      slow.ID + ":" + state.FiltersKey,
		entered:  make(chan struct{}, 2),
		release:  make(chan struct{}),
	}
	r := NewRegistry(kv, nil, nil)
	fast := r.Create(ctx)

	loaded := make(chan *Session, 2)
	for i := 0; i < 2; i++ {
		go func() {
			s, err := r.Get(ctx, slow.ID)
			assert.NoError(t, err)
			loaded <- s
		}()
	}
	<-kv.entered

	done := make(chan struct{})
	go func() {
		defer close(done)
		s, err := r.Get(ctx, fast.ID)
		assert.NoError(t, err)
		assert.Same(t, fast, s)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Get blocked behind another session's load")
	}

	close(kv.release)
	a, b := <-loaded, <-loaded
	assert.Same(t, a, b, "concurrent loads of one id resolve to one session")
	assert.Equal(t, 2, r.Len())
}

func TestForgetClearsStaleSelections(t *testing.T) {
	r := NewRegistry(state.NewMemoryKV(), nil, nil)
	s := r.Create(context.Background())
	_, _ = s.Controller.SelectListing("oh-gone-")

	r.Forget(func(string) bool { return false })
	assert.Equal(t, interaction.Idle, s.Controller.State().Mode)
}
