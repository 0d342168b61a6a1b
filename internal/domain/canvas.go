package domain

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Orientation is the shape a page was created for.
type Orientation string

const (
	OrientationPortrait  Orientation = "portrait"
	OrientationLandscape Orientation = "landscape"
)

// ErrInvalidOrientation is returned for anything other than portrait or landscape.
var ErrInvalidOrientation = errors.New("invalid orientation")

// ParseOrientation validates s. An empty string is not valid here; callers that
// accept missing orientations default them first.
func ParseOrientation(s string) (Orientation, error) {
	switch o := Orientation(s); o {
	case OrientationPortrait, OrientationLandscape:
		return o, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidOrientation, s)
	}
}

// PageRecord is a persisted page: its raster snapshot and the orientation it
// was drawn in. ID is assigned by the store on create.
type PageRecord struct {
	ID          int64       `json:"id"`
	NotebookID  string      `json:"notebookId"`
	Orientation Orientation `json:"orientation"`
	Data        string      `json:"data"` // data:image/png;base64,...
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// PagePayload is the body sent on create/update.
type PagePayload struct {
	Data        string      `json:"data"`
	Orientation Orientation `json:"orientation"`
}

// StrokeStyle is the pen currently selected in the toolbar.
type StrokeStyle struct {
	Color     string  `json:"color"`
	LineWidth float64 `json:"lineWidth"`
}

// DefaultStrokeStyle matches the initial toolbar values.
var DefaultStrokeStyle = StrokeStyle{Color: "#000000", LineWidth: 3}

var hexColor = regexp.MustCompile(`^#(?:[0-9A-Fa-f]{3}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{8})$`)

// ValidColor reports whether c is a #rgb, #rrggbb or #rrggbbaa color.
func ValidColor(c string) bool {
	return hexColor.MatchString(c)
}

// Validate rejects a pen the rasterizer cannot stroke.
func (s StrokeStyle) Validate() error {
	if !ValidColor(s.Color) {
		return fmt.Errorf("color must be a hex color, got %q", s.Color)
	}
	if s.LineWidth <= 0 {
		return fmt.Errorf("width must be positive, got %v", s.LineWidth)
	}
	return nil
}

// CanvasStore persists page records grouped by notebook.
type CanvasStore interface {
	ListPages(notebookID string) ([]PageRecord, error)
	GetPage(id int64) (*PageRecord, error)
	CreatePage(p *PageRecord) error
	UpdatePage(p *PageRecord) error
	DeletePage(id int64) error
}
