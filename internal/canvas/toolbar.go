package canvas

import (
	"sync"

	"sketchbook/internal/domain"
)

// Toolbar holds the current pen. It can be changed from any goroutine at any
// time; the render loop reads it before every stroked segment.
type Toolbar struct {
	mu    sync.RWMutex
	style domain.StrokeStyle
}

// NewToolbar starts with style, filling zero fields from the defaults.
func NewToolbar(style domain.StrokeStyle) *Toolbar {
	t := &Toolbar{}
	t.Set(style)
	return t
}

// Style returns the current pen.
func (t *Toolbar) Style() domain.StrokeStyle {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.style
}

// Set replaces the pen. A color that is not hex or a non-positive width falls
// back to the default.
func (t *Toolbar) Set(style domain.StrokeStyle) {
	if !domain.ValidColor(style.Color) {
		style.Color = domain.DefaultStrokeStyle.Color
	}
	if style.LineWidth <= 0 {
		style.LineWidth = domain.DefaultStrokeStyle.LineWidth
	}
	t.mu.Lock()
	t.style = style
	t.mu.Unlock()
}

// SetColor changes only the color.
func (t *Toolbar) SetColor(color string) {
	s := t.Style()
	s.Color = color
	t.Set(s)
}

// SetLineWidth changes only the width.
func (t *Toolbar) SetLineWidth(width float64) {
	s := t.Style()
	s.LineWidth = width
	t.Set(s)
}
