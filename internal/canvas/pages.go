package canvas

import (
	"log"

	"sketchbook/internal/domain"
)

// SwitchOptions tunes SwitchTo.
type SwitchOptions struct {
	// SkipSnapshot leaves the current page's Data untouched, for switches
	// where nothing could have changed yet.
	SkipSnapshot bool
}

// PageStore is the ordered list of pages and the index of the active one.
// Pages are only ever appended. It is not safe for concurrent use; Session
// serializes access.
type PageStore struct {
	pages      []*Page
	active     int
	sizes      SizeResolver
	viewport   Viewport
	newSurface SurfaceFactory
}

// NewPageStore creates an empty store. Call Initialize before use. It panics
// without a surface factory.
func NewPageStore(sizes SizeResolver, viewport Viewport, newSurface SurfaceFactory) *PageStore {
	if newSurface == nil {
		panic("canvas: NewPageStore requires a SurfaceFactory")
	}
	return &PageStore{sizes: sizes, viewport: viewport, newSurface: newSurface}
}

// Initialize hydrates the store from persisted records. With no records a
// single clean page is created in the current orientation; otherwise every
// record becomes a dirty page and the last one is shown.
func (s *PageStore) Initialize(records []domain.PageRecord) {
	s.pages = nil
	s.active = 0

	if len(records) == 0 {
		o := DetectOrientation(s.viewport)
		s.pages = append(s.pages, newPage(o, s.sizes.Resolve(o), Clean))
		s.activate(0)
		return
	}

	for _, rec := range records {
		o := rec.Orientation
		if o == "" {
			o = domain.OrientationPortrait
		}
		p := newPage(o, s.sizes.Resolve(o), Dirty)
		p.ID = rec.ID
		p.Data = rec.Data
		s.pages = append(s.pages, p)
	}
	s.activate(len(s.pages) - 1)
}

// SwitchTo makes pages[target] active, appending a new page when target is
// one past the end. It is a no-op (returning false) for out-of-range targets,
// the current page, and for advancing while the last page is still clean.
func (s *PageStore) SwitchTo(target int, opts SwitchOptions) bool {
	if len(s.pages) == 0 {
		return false
	}
	if target < 0 || target > len(s.pages) || target == s.active {
		return false
	}
	if target == len(s.pages) && s.pages[len(s.pages)-1].Clean() {
		return false
	}

	if !opts.SkipSnapshot {
		s.snapshot(s.pages[s.active])
	}

	if target == len(s.pages) {
		o := DetectOrientation(s.viewport)
		s.pages = append(s.pages, newPage(o, s.sizes.Resolve(o), Clean))
	}

	s.activate(target)
	return true
}

// Next advances one page, creating it if needed.
func (s *PageStore) Next() bool { return s.SwitchTo(s.active+1, SwitchOptions{}) }

// Prev goes back one page.
func (s *PageStore) Prev() bool { return s.SwitchTo(s.active-1, SwitchOptions{}) }

// MarkDirty flags the active page as drawn on. It reports whether this call
// performed the transition.
func (s *PageStore) MarkDirty() bool {
	if len(s.pages) == 0 {
		return false
	}
	return s.pages[s.active].markDirty()
}

// Resize recomputes the active page's display scale for the current window.
func (s *PageStore) Resize() {
	if len(s.pages) == 0 {
		return
	}
	s.fit(s.pages[s.active])
}

// SnapshotActive refreshes the active page's Data from its surface.
func (s *PageStore) SnapshotActive() {
	if len(s.pages) == 0 {
		return
	}
	s.snapshot(s.pages[s.active])
}

// SnapshotStale refreshes Data of every page drawn on since its last
// snapshot, including pages that finished a stroke after being switched away from.
func (s *PageStore) SnapshotStale() {
	for _, p := range s.pages {
		if p.stale {
			s.snapshot(p)
		}
	}
}

// Active returns the active page, or nil before Initialize.
func (s *PageStore) Active() *Page {
	if len(s.pages) == 0 {
		return nil
	}
	return s.pages[s.active]
}

// ActiveIndex returns the index of the active page.
func (s *PageStore) ActiveIndex() int { return s.active }

// Len returns the number of pages.
func (s *PageStore) Len() int { return len(s.pages) }

// Page returns pages[i], or nil when out of range.
func (s *PageStore) Page(i int) *Page {
	if i < 0 || i >= len(s.pages) {
		return nil
	}
	return s.pages[i]
}

// ByKey finds a page by its local key.
func (s *PageStore) ByKey(key string) *Page {
	for _, p := range s.pages {
		if p.Key == key {
			return p
		}
	}
	return nil
}

// Pages returns the pages in order. The slice is a copy; the pages are not.
func (s *PageStore) Pages() []*Page {
	return append([]*Page(nil), s.pages...)
}

// Infos returns a read-only view of every page.
func (s *PageStore) Infos() []PageInfo {
	out := make([]PageInfo, len(s.pages))
	for i, p := range s.pages {
		out[i] = p.info(i, i == s.active)
	}
	return out
}

func (s *PageStore) activate(i int) {
	p := s.pages[i]
	s.materialize(p)
	s.fit(p)
	s.active = i
}

// materialize allocates the page's own buffer on first display and paints
// its stored snapshot into it. A page keeps its buffer afterwards, so later
// switches need no restore.
func (s *PageStore) materialize(p *Page) {
	if p.surface != nil {
		return
	}
	if p.Size.IsZero() {
		log.Printf("canvas: page %s has no usable size, not allocating a surface", p.Key)
		return
	}
	w, h := p.Size.Pixels()
	surf := s.newSurface(w, h)
	surf.Reset(w, h)
	surf.SetFillStyle(Background)
	surf.FillRect(0, 0, float64(w), float64(h))
	if p.Data != "" {
		if err := surf.Restore(p.Data); err != nil {
			log.Printf("canvas: restore page %s: %v", p.Key, err)
		}
	}
	p.surface = surf
}

func (s *PageStore) fit(p *Page) {
	w, h := s.viewport.Size()
	scale, margin := FitScale(p.Size, w, h, s.sizes.HeaderHeight)
	if scale <= 0 {
		scale = 1
	}
	p.Scale = scale
	p.MarginTop = margin
}

func (s *PageStore) snapshot(p *Page) {
	if p.surface == nil {
		return
	}
	data, err := p.surface.Snapshot()
	if err != nil {
		log.Printf("canvas: snapshot page %s: %v", p.Key, err)
		return
	}
	p.Data = data
	p.stale = false
}
