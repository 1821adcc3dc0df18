// Package interaction models which overlay the map shows: a listing's detail
// popup, the expanded listings panel, or neither. The two are mutually
// exclusive, so they are one state machine rather than two flags.
package interaction

import (
	"errors"
	"sync"
)

type Mode string

const (
	Idle            Mode = "idle"
	ListingSelected Mode = "listing_selected"
	PanelExpanded   Mode = "panel_expanded"
)

// Click targets reported by the map surface.
const (
	TargetMap    = "map"
	TargetMarker = "marker"
	TargetPopup  = "popup"
)

var (
	ErrUnknownListing = errors.New("unknown_listing")
	ErrUnknownTarget  = errors.New("unknown_click_target")
)

// State is a snapshot of the controller. SelectedID is set only in
// ListingSelected. HoveredID is transient and independent of Mode.
type State struct {
	Mode       Mode   `json:"mode"`
	SelectedID string `json:"selectedId,omitempty"`
	HoveredID  string `json:"hoveredId,omitempty"`
}

func (s State) PanelExpanded() bool { return s.Mode == PanelExpanded }

// Controller is safe for concurrent use. Observers run after each transition
// that changed Mode or SelectedID, outside the lock.
type Controller struct {
	mu        sync.Mutex
	state     State
	known     func(id string) bool
	observers []func(from, to State)
}

// New returns an Idle controller. known, if set, validates listing ids passed
// to SelectListing and Hover.
func New(known func(id string) bool) *Controller {
	return &Controller{state: State{Mode: Idle}, known: known}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) OnTransition(fn func(from, to State)) {
	c.mu.Lock()
	c.observers = append(c.observers, fn)
	c.mu.Unlock()
}

// SelectListing opens id's detail, collapsing the panel if needed. Selecting
// the already selected listing closes it.
func (c *Controller) SelectListing(id string) (State, error) {
	if c.known != nil && !c.known(id) {
		return c.State(), ErrUnknownListing
	}
	return c.apply(func(s State) State {
		if s.Mode == ListingSelected && s.SelectedID == id {
			return State{Mode: Idle, HoveredID: s.HoveredID}
		}
		return State{Mode: ListingSelected, SelectedID: id, HoveredID: s.HoveredID}
	}), nil
}

func (c *Controller) ExpandPanel() State {
	return c.apply(func(s State) State {
		return State{Mode: PanelExpanded, HoveredID: s.HoveredID}
	})
}

func (c *Controller) CollapsePanel() State {
	return c.apply(func(s State) State {
		if s.Mode != PanelExpanded {
			return s
		}
		return State{Mode: Idle, HoveredID: s.HoveredID}
	})
}

func (c *Controller) TogglePanel() State {
	return c.apply(func(s State) State {
		if s.Mode == PanelExpanded {
			return State{Mode: Idle, HoveredID: s.HoveredID}
		}
		return State{Mode: PanelExpanded, HoveredID: s.HoveredID}
	})
}

// CloseDetail dismisses the detail popup.
func (c *Controller) CloseDetail() State {
	return c.apply(func(s State) State {
		if s.Mode != ListingSelected {
			return s
		}
		return State{Mode: Idle, HoveredID: s.HoveredID}
	})
}

// BackgroundClick handles a click on the map surface. Only clicks on bare map
// deselect; marker and popup clicks are handled by their own targets.
func (c *Controller) BackgroundClick(target string) (State, error) {
	switch target {
	case TargetMap:
		return c.CloseDetail(), nil
	case TargetMarker, TargetPopup:
		return c.State(), nil
	default:
		return c.State(), ErrUnknownTarget
	}
}

func (c *Controller) Hover(id string) (State, error) {
	if c.known != nil && !c.known(id) {
		return c.State(), ErrUnknownListing
	}
	c.mu.Lock()
	c.state.HoveredID = id
	s := c.state
	c.mu.Unlock()
	return s, nil
}

// Unhover clears the hover only if id is still the hovered listing.
func (c *Controller) Unhover(id string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.HoveredID == id {
		c.state.HoveredID = ""
	}
	return c.state
}

// Forget drops references to listings that are no longer present, e.g.
// after a refetch replaced the batch.
func (c *Controller) Forget(present func(id string) bool) State {
	return c.apply(func(s State) State {
		if s.HoveredID != "" && !present(s.HoveredID) {
			s.HoveredID = ""
		}
		if s.Mode == ListingSelected && !present(s.SelectedID) {
			return State{Mode: Idle, HoveredID: s.HoveredID}
		}
		return s
	})
}

func (c *Controller) apply(fn func(State) State) State {
	c.mu.Lock()
	from := c.state
	to := fn(from)
	c.state = to
	observers := c.observers
	c.mu.Unlock()

	if from.Mode != to.Mode || from.SelectedID != to.SelectedID {
		for _, o := range observers {
			o(from, to)
		}
	}
	return to
}
