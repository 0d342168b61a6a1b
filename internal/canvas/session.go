package canvas

import (
	"context"
	"fmt"
	"log"
	"sync"

	"sketchbook/internal/domain"
)

// SessionConfig wires a Session. NewSurface is required (raster.NewSurface in
// production, NewRecordingSurface in tests). Gateway is optional: without it
// Load starts empty and Save is a no-op. Other zero fields get defaults.
type SessionConfig struct {
	NotebookID string
	Sizes      SizeResolver
	Window     *Window
	NewSurface SurfaceFactory
	Toolbar    *Toolbar
	Gateway    Gateway
	Notifier   Notifier
}

// Session is one open notebook: its pages, the pending input, the render
// loop and the backend. All methods are safe for concurrent use.
type Session struct {
	mu sync.Mutex

	notebookID string
	window     *Window
	pages      *PageStore
	queue      *InputQueue
	render     *RenderLoop
	toolbar    *Toolbar
	gateway    Gateway
	notify     Notifier

	lastFrame FrameStats
	saves     sync.WaitGroup
}

// NewSession builds a session. Call Load before drawing.
func NewSession(cfg SessionConfig) *Session {
	if cfg.Sizes.DevicePixelRatio <= 0 {
		cfg.Sizes.DevicePixelRatio = DefaultDevicePixelRatio
	}
	if cfg.Window == nil {
		cfg.Window = NewWindow(portraitExtent.Width, portraitExtent.Height, true)
	}
	if cfg.Toolbar == nil {
		cfg.Toolbar = NewToolbar(domain.DefaultStrokeStyle)
	}
	if cfg.Notifier == nil {
		cfg.Notifier = nopNotifier{}
	}

	pages := NewPageStore(cfg.Sizes, cfg.Window, cfg.NewSurface)
	queue := NewInputQueue()
	return &Session{
		notebookID: cfg.NotebookID,
		window:     cfg.Window,
		pages:      pages,
		queue:      queue,
		render:     NewRenderLoop(pages, queue, cfg.Toolbar),
		toolbar:    cfg.Toolbar,
		gateway:    cfg.Gateway,
		notify:     cfg.Notifier,
	}
}

// NotebookID returns the notebook this session edits.
func (s *Session) NotebookID() string { return s.notebookID }

// Toolbar returns the shared pen.
func (s *Session) Toolbar() *Toolbar { return s.toolbar }

// Load fetches the notebook's pages and shows the last one. When the backend
// is unreachable the session still starts with a single blank page.
func (s *Session) Load(ctx context.Context) error {
	var records []domain.PageRecord
	var loadErr error
	if s.gateway != nil {
		records, loadErr = s.gateway.ListPages(ctx, s.notebookID)
		if loadErr != nil {
			log.Printf("canvas: load notebook %s: %v", s.notebookID, loadErr)
			records = nil
			loadErr = fmt.Errorf("load pages: %w", loadErr)
		}
	}

	s.mu.Lock()
	s.pages.Initialize(records)
	info := s.activeInfo()
	s.mu.Unlock()

	s.notify.Emit(ctx, EventPageChanged, info)
	return loadErr
}

// ── Input ──────────────────────────────────────────────────

// Pointer records a pointer sample in display coordinates. A down is tagged
// with the page currently shown and the rest of its stroke stays on that page,
// even across a page switch. It reports whether the event was queued.
func (s *Session) Pointer(kind EventKind, x, y float64) bool {
	s.mu.Lock()
	var key string
	if p := s.pages.Active(); p != nil {
		key = p.Key
	}
	s.mu.Unlock()
	return s.queue.Push(kind, x, y, key)
}

// Leave ends any stroke without drawing.
func (s *Session) Leave() { s.queue.Leave() }

// ── Navigation ─────────────────────────────────────────────

// Next shows the following page, appending one when the last page has been drawn on.
func (s *Session) Next(ctx context.Context) bool {
	return s.switchWith(ctx, func() bool { return s.pages.Next() })
}

// Prev shows the preceding page.
func (s *Session) Prev(ctx context.Context) bool {
	return s.switchWith(ctx, func() bool { return s.pages.Prev() })
}

// SwitchTo shows pages[index]; index == len appends a page.
func (s *Session) SwitchTo(ctx context.Context, index int) bool {
	return s.switchWith(ctx, func() bool { return s.pages.SwitchTo(index, SwitchOptions{}) })
}

func (s *Session) switchWith(ctx context.Context, fn func() bool) bool {
	s.mu.Lock()
	changed := fn()
	info := s.activeInfo()
	s.mu.Unlock()

	if changed {
		s.notify.Emit(ctx, EventPageChanged, info)
	}
	return changed
}

// WindowSize returns the viewport pages are fitted to.
func (s *Session) WindowSize() (float64, float64) { return s.window.Size() }

// Resize records a new window size and refits the active page.
func (s *Session) Resize(width, height float64) {
	s.window.Resize(width, height)
	s.mu.Lock()
	s.pages.Resize()
	s.mu.Unlock()
}

// ── Rendering ──────────────────────────────────────────────

// Frame drains pending input onto the pages at time (ms).
func (s *Session) Frame(time float64) FrameStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastFrame = s.render.Frame(time)
	return s.lastFrame
}

// Start chains Frame through sched until ctx is done. It does not block.
func (s *Session) Start(ctx context.Context, sched FrameScheduler) {
	var loop func(float64)
	loop = func(time float64) {
		if ctx.Err() != nil {
			return
		}
		s.Frame(time)
		sched.RequestFrame(loop)
	}
	sched.RequestFrame(loop)
}

// ── Persistence ────────────────────────────────────────────

// Save snapshots the shown page and sends every drawn-on page to the
// backend, one goroutine per page. Each channel yields exactly one result.
// Failures are logged and reported, never retried, and leave the page as is.
func (s *Session) Save(ctx context.Context) []<-chan SaveResult {
	if s.gateway == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pages.SnapshotActive()
	s.pages.SnapshotStale()

	var results []<-chan SaveResult
	for i, p := range s.pages.pages {
		if p.Clean() {
			continue
		}
		if p.creating {
			// its id is not known yet, the next save updates it
			continue
		}
		payload := domain.PagePayload{Data: p.Data, Orientation: p.Orientation}
		ch := make(chan SaveResult, 1)
		results = append(results, ch)

		if !p.Persisted() {
			p.creating = true
		}
		s.saves.Add(1)
		go s.persist(ctx, p, i, p.ID, payload, ch)
	}
	return results
}

func (s *Session) persist(ctx context.Context, p *Page, index int, id int64, payload domain.PagePayload, ch chan<- SaveResult) {
	defer s.saves.Done()

	res := SaveResult{PageKey: p.Key, Index: index, ID: id}
	var err error
	if id == 0 {
		var newID int64
		newID, err = s.gateway.CreatePage(ctx, s.notebookID, payload)
		s.mu.Lock()
		p.creating = false
		if err == nil {
			p.ID = newID
		}
		s.mu.Unlock()
		res.Created = true
		res.ID = newID
	} else {
		err = s.gateway.UpdatePage(ctx, s.notebookID, id, payload)
	}

	if err != nil {
		res.Err = fmt.Errorf("%w: save page %d: %w", ErrPersistence, index, err)
		log.Printf("canvas: %v", res.Err)
		s.notify.Emit(ctx, EventPageSaveFailed, res)
	} else {
		s.notify.Emit(ctx, EventPageSaved, res)
	}
	ch <- res
}

// SaveAndWait saves and blocks until every request has finished.
func (s *Session) SaveAndWait(ctx context.Context) []SaveResult {
	return Wait(s.Save(ctx))
}

// WaitSaves blocks until no save is in flight.
func (s *Session) WaitSaves() { s.saves.Wait() }

// ── Inspection ─────────────────────────────────────────────

// Status is a read-only view of the session for drivers.
type Status struct {
	NotebookID  string             `json:"notebookId"`
	Active      int                `json:"active"`
	Pages       []PageInfo         `json:"pages"`
	FPS         float64            `json:"fps"`
	PointerDown bool               `json:"pointerDown"`
	Queued      int                `json:"queued"`
	Toolbar     domain.StrokeStyle `json:"toolbar"`
	LastFrame   FrameStats         `json:"lastFrame"`
}

// Status reports the current pages and render state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		NotebookID:  s.notebookID,
		Active:      s.pages.ActiveIndex(),
		Pages:       s.pages.Infos(),
		FPS:         s.render.FPS().Average(),
		PointerDown: s.queue.PointerDown(),
		Queued:      s.queue.Len(),
		Toolbar:     s.toolbar.Style(),
		LastFrame:   s.lastFrame,
	}
}

// Pages returns the page list.
func (s *Session) Pages() []PageInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pages.Infos()
}

// PageData returns the raster of pages[index]: a fresh snapshot when the page
// has a buffer, otherwise its stored data.
func (s *Session) PageData(index int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.pages.Page(index)
	if p == nil {
		return "", fmt.Errorf("page %d out of range (0..%d)", index, s.pages.Len()-1)
	}
	if p.surface == nil {
		return p.Data, nil
	}
	data, err := p.surface.Snapshot()
	if err != nil {
		return "", fmt.Errorf("snapshot page %d: %w", index, err)
	}
	return data, nil
}

func (s *Session) activeInfo() PageInfo {
	p := s.pages.Active()
	if p == nil {
		return PageInfo{}
	}
	return p.info(s.pages.ActiveIndex(), true)
}
