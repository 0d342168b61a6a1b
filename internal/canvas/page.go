package canvas

import (
	"github.com/google/uuid"

	"sketchbook/internal/domain"
)

// PageState is the drawing state of a page. The only transition is Clean → Dirty.
type PageState int

const (
	Clean PageState = iota
	Dirty
)

func (s PageState) String() string {
	if s == Dirty {
		return "dirty"
	}
	return "clean"
}

// Page is one drawing canvas with its own raster buffer.
type Page struct {
	Key         string // local identity, stable before the page is persisted
	ID          int64  // backend id, 0 until the first successful create
	Orientation domain.Orientation
	Size        Size
	Scale       float64 // display-to-canvas scale, 0 until first sized
	MarginTop   float64
	Data        string // last raster snapshot

	state    PageState
	surface  Surface
	creating bool // a create call is in flight
	stale    bool // drawn on since Data was taken
}

func newPage(o domain.Orientation, size Size, state PageState) *Page {
	return &Page{
		Key:         uuid.New().String(),
		Orientation: o,
		Size:        size,
		state:       state,
	}
}

// State returns the page's drawing state.
func (p *Page) State() PageState { return p.state }

// Clean reports whether nothing has been drawn on the page yet.
func (p *Page) Clean() bool { return p.state == Clean }

// Persisted reports whether the backend has assigned an id.
func (p *Page) Persisted() bool { return p.ID != 0 }

// Surface returns the page's raster buffer, nil until the page is first shown
// or when its size is unusable.
func (p *Page) Surface() Surface { return p.surface }

// markDirty performs the single Clean → Dirty transition and reports whether
// it happened on this call.
func (p *Page) markDirty() bool {
	if p.state == Dirty {
		return false
	}
	p.state = Dirty
	return true
}

// PageInfo is a read-only view of a page for drivers.
type PageInfo struct {
	Index       int                `json:"index"`
	Key         string             `json:"key"`
	ID          int64              `json:"id,omitempty"`
	Orientation domain.Orientation `json:"orientation"`
	Size        Size               `json:"size"`
	Scale       float64            `json:"scale"`
	State       string             `json:"state"`
	Active      bool               `json:"active"`
	HasData     bool               `json:"hasData"`
}

func (p *Page) info(index int, active bool) PageInfo {
	return PageInfo{
		Index:       index,
		Key:         p.Key,
		ID:          p.ID,
		Orientation: p.Orientation,
		Size:        p.Size,
		Scale:       p.Scale,
		State:       p.state.String(),
		Active:      active,
		HasData:     p.Data != "",
	}
}
