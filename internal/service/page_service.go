package service

import (
	"context"
	"errors"
	"fmt"

	"sketchbook/internal/canvas"
	"sketchbook/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// PageService: page records of a notebook
// ─────────────────────────────────────────────────────────────

// ErrNotebookMismatch is returned when updating a page through another notebook.
var ErrNotebookMismatch = errors.New("page belongs to another notebook")

// Events emitted by PageService.
const (
	EventCanvasCreated = "canvas:created"
	EventCanvasUpdated = "canvas:updated"
)

// PageService validates page payloads and stores them. It satisfies
// canvas.Gateway, so a session can persist in-process without the REST layer.
type PageService struct {
	store   domain.CanvasStore
	emitter EventEmitter
}

// NewPageService creates a PageService.
func NewPageService(store domain.CanvasStore, emitter EventEmitter) *PageService {
	if emitter == nil {
		emitter = LogEmitter{}
	}
	return &PageService{store: store, emitter: emitter}
}

// ListPages returns the notebook's pages in creation order.
func (s *PageService) ListPages(_ context.Context, notebookID string) ([]domain.PageRecord, error) {
	pages, err := s.store.ListPages(notebookID)
	if err != nil {
		return nil, fmt.Errorf("list pages of %s: %w", notebookID, err)
	}
	if pages == nil {
		pages = []domain.PageRecord{}
	}
	return pages, nil
}

// GetPage returns one page.
func (s *PageService) GetPage(_ context.Context, id int64) (*domain.PageRecord, error) {
	return s.store.GetPage(id)
}

// CreatePage stores a new page and returns its id.
func (s *PageService) CreatePage(ctx context.Context, notebookID string, page domain.PagePayload) (int64, error) {
	o, err := normalizeOrientation(page.Orientation)
	if err != nil {
		return 0, err
	}
	rec := &domain.PageRecord{NotebookID: notebookID, Orientation: o, Data: page.Data}
	if err := s.store.CreatePage(rec); err != nil {
		return 0, err
	}
	s.emitter.Emit(ctx, EventCanvasCreated, map[string]any{"id": rec.ID, "notebookId": notebookID})
	return rec.ID, nil
}

// UpdatePage replaces a page's raster. An empty notebookID skips the
// ownership check.
func (s *PageService) UpdatePage(ctx context.Context, notebookID string, id int64, page domain.PagePayload) error {
	o, err := normalizeOrientation(page.Orientation)
	if err != nil {
		return err
	}
	rec, err := s.store.GetPage(id)
	if err != nil {
		return err
	}
	if notebookID != "" && rec.NotebookID != notebookID {
		return fmt.Errorf("update page %d: %w", id, ErrNotebookMismatch)
	}
	rec.Orientation = o
	rec.Data = page.Data
	if err := s.store.UpdatePage(rec); err != nil {
		return err
	}
	s.emitter.Emit(ctx, EventCanvasUpdated, map[string]any{"id": id, "notebookId": rec.NotebookID})
	return nil
}

// DeletePage removes a page.
func (s *PageService) DeletePage(_ context.Context, id int64) error {
	return s.store.DeletePage(id)
}

// normalizeOrientation defaults a missing orientation to portrait.
func normalizeOrientation(o domain.Orientation) (domain.Orientation, error) {
	if o == "" {
		return domain.OrientationPortrait, nil
	}
	return domain.ParseOrientation(string(o))
}

var _ canvas.Gateway = (*PageService)(nil)
