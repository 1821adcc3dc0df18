package events

import (
	"context"
	"time"
)

// ListingsRefreshed is published after a full refetch replaced the batch.
type ListingsRefreshed struct {
	Count    int
	Dropped  int
	Fallback bool
	Err      string
	At       time.Time
}

type Publisher interface {
	PublishListingsRefreshed(ctx context.Context, evt ListingsRefreshed)
	SubscribeListingsRefreshed() <-chan ListingsRefreshed
}

type inMemory struct {
	refreshed chan ListingsRefreshed
}

// NewInMemory returns a publisher backed by a buffered channel. Publishing
// never blocks; events are dropped when the buffer is full.
func NewInMemory(buffer int) Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &inMemory{
		refreshed: make(chan ListingsRefreshed, buffer),
	}
}

func (m *inMemory) PublishListingsRefreshed(_ context.Context, evt ListingsRefreshed) {
	select {
	case m.refreshed <- evt:
	default:
	}
}

func (m *inMemory) SubscribeListingsRefreshed() <-chan ListingsRefreshed { return m.refreshed }
