package canvas

import (
	"context"
	"errors"

	"sketchbook/internal/domain"
)

// ErrPersistence wraps every failure reported by a Gateway during Save.
var ErrPersistence = errors.New("persistence failed")

// Gateway is the page backend of a notebook.
type Gateway interface {
	ListPages(ctx context.Context, notebookID string) ([]domain.PageRecord, error)
	CreatePage(ctx context.Context, notebookID string, page domain.PagePayload) (int64, error)
	UpdatePage(ctx context.Context, notebookID string, id int64, page domain.PagePayload) error
}

// Notifier receives session events. service.EventEmitter satisfies it.
type Notifier interface {
	Emit(ctx context.Context, event string, data any)
}

// Event names emitted by Session.
const (
	EventPageChanged    = "page:changed"
	EventPageSaved      = "page:saved"
	EventPageSaveFailed = "page:save-failed"
)

// SaveResult is the outcome of saving one page.
type SaveResult struct {
	PageKey string `json:"pageKey"`
	Index   int    `json:"index"`
	ID      int64  `json:"id"`
	Created bool   `json:"created"`
	Err     error  `json:"-"`
}

// Wait collects every pending result.
func Wait(results []<-chan SaveResult) []SaveResult {
	out := make([]SaveResult, 0, len(results))
	for _, ch := range results {
		out = append(out, <-ch)
	}
	return out
}

type nopNotifier struct{}

func (nopNotifier) Emit(context.Context, string, any) {}
