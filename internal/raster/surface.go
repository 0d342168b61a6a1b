// Package raster draws pages into gg pixel buffers and serializes them as
// PNG data URLs.
package raster

import (
	"fmt"
	"image"
	"io"
	"log"
	"sync"

	"github.com/gogpu/gg"

	"sketchbook/internal/canvas"
)

type pathOp struct {
	move bool
	x, y float64
}

// Surface is a canvas.Surface backed by a gg.Context. Path segments are
// buffered until Stroke, which paints only the segments added since the
// previous Stroke and keeps the pen at the last point.
type Surface struct {
	mu sync.Mutex
	dc *gg.Context

	fill   string
	stroke string
	width  float64
	cap    gg.LineCap
	join   gg.LineJoin

	pending []pathOp
	last    pathOp
	hasLast bool
}

// NewSurface satisfies canvas.SurfaceFactory.
func NewSurface(width, height int) canvas.Surface {
	return New(width, height)
}

// New allocates a transparent surface of at least 1×1 pixels.
func New(width, height int) *Surface {
	width, height = max(width, 1), max(height, 1)
	return &Surface{
		dc:     gg.NewContext(width, height),
		fill:   "#000",
		stroke: "#000",
		width:  1,
		cap:    gg.LineCapButt,
		join:   gg.LineJoinMiter,
	}
}

func (s *Surface) Width() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dc.Width()
}

func (s *Surface) Height() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dc.Height()
}

// Reset reallocates to width×height when the size changed and always clears
// the pixels and the path.
func (s *Surface) Reset(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.dc.Resize(max(width, 1), max(height, 1)); err != nil {
		log.Printf("raster: resize: %v", err)
	}
	s.dc.Clear()
	s.dc.ClearPath()
	s.pending = nil
	s.hasLast = false
}

func (s *Surface) SetFillStyle(color string) {
	s.mu.Lock()
	s.fill = color
	s.mu.Unlock()
}

func (s *Surface) FillRect(x, y, w, h float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dc.ClearPath()
	s.dc.DrawRectangle(x, y, w, h)
	s.dc.SetFillBrush(gg.SolidHex(s.fill))
	if err := s.dc.Fill(); err != nil {
		log.Printf("raster: fill rect: %v", err)
	}
}

func (s *Surface) SetStrokeStyle(color string) {
	s.mu.Lock()
	s.stroke = color
	s.mu.Unlock()
}

func (s *Surface) SetLineWidth(width float64) {
	if width <= 0 {
		return
	}
	s.mu.Lock()
	s.width = width
	s.mu.Unlock()
}

func (s *Surface) SetLineCap(c canvas.LineCap) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch c {
	case canvas.LineCapRound:
		s.cap = gg.LineCapRound
	default:
		s.cap = gg.LineCapButt
	}
}

func (s *Surface) SetLineJoin(j canvas.LineJoin) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch j {
	case canvas.LineJoinRound:
		s.join = gg.LineJoinRound
	default:
		s.join = gg.LineJoinMiter
	}
}

func (s *Surface) BeginPath() {
	s.mu.Lock()
	s.pending = nil
	s.hasLast = false
	s.mu.Unlock()
}

func (s *Surface) MoveTo(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	op := pathOp{move: true, x: x, y: y}
	s.pending = append(s.pending, op)
	s.last, s.hasLast = op, true
}

// LineTo without a current point behaves as MoveTo.
func (s *Surface) LineTo(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	op := pathOp{move: !s.hasLast, x: x, y: y}
	s.pending = append(s.pending, op)
	s.last, s.hasLast = op, true
}

func (s *Surface) Stroke() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) < 2 {
		return
	}

	s.dc.ClearPath()
	for i, op := range s.pending {
		if op.move || i == 0 {
			s.dc.MoveTo(op.x, op.y)
		} else {
			s.dc.LineTo(op.x, op.y)
		}
	}
	s.dc.SetStrokeBrush(gg.SolidHex(s.stroke))
	s.dc.SetLineWidth(s.width)
	s.dc.SetLineCap(s.cap)
	s.dc.SetLineJoin(s.join)
	if err := s.dc.Stroke(); err != nil {
		log.Printf("raster: stroke: %v", err)
	}

	// continue the path from where it ended
	s.pending = []pathOp{{move: true, x: s.last.x, y: s.last.y}}
}

// Snapshot encodes the pixels as a PNG data URL.
func (s *Surface) Snapshot() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return EncodeDataURL(s.dc.Image())
}

// Restore paints a snapshot at the origin, rescaled to the surface size when
// the snapshot was taken at a different resolution.
func (s *Surface) Restore(data string) error {
	img, err := DecodeDataURL(data)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	img = Fit(img, s.dc.Width(), s.dc.Height())
	s.dc.DrawImage(gg.ImageBufFromImage(img), 0, 0)
	return nil
}

// Image returns the current pixels.
func (s *Surface) Image() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dc.Image()
}

// EncodePNG writes the pixels as PNG.
func (s *Surface) EncodePNG(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dc.EncodePNG(w)
}

// Close releases the gg context.
func (s *Surface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dc.Close()
}

var _ canvas.Surface = (*Surface)(nil)
