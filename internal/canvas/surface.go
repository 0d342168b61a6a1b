package canvas

import (
	"fmt"
	"sync"
)

// LineCap and LineJoin mirror the 2D context style names.
type LineCap string

type LineJoin string

const (
	LineCapButt  LineCap = "butt"
	LineCapRound LineCap = "round"

	LineJoinMiter LineJoin = "miter"
	LineJoinRound LineJoin = "round"
)

// Background is the fill color of a freshly reset page.
const Background = "#ddd"

// Surface is the 2D drawing context a Page renders into. Stroke only paints
// the segments added since the previous Stroke, so style changes never
// repaint earlier segments.
type Surface interface {
	Width() int
	Height() int

	// Reset reallocates the pixel buffer, clearing it and the current path.
	Reset(width, height int)

	SetFillStyle(color string)
	FillRect(x, y, w, h float64)

	SetStrokeStyle(color string)
	SetLineWidth(width float64)
	SetLineCap(c LineCap)
	SetLineJoin(j LineJoin)

	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	Stroke()

	// Snapshot serializes the current pixels (a data URL).
	Snapshot() (string, error)
	// Restore paints a previously serialized snapshot at the origin.
	Restore(data string) error
}

// SurfaceFactory allocates a surface for a page of the given pixel size.
type SurfaceFactory func(width, height int) Surface

// ── RecordingSurface ───────────────────────────────────────

// Op is one call made against a RecordingSurface.
type Op struct {
	Name string
	X, Y float64
	Arg  string
}

func (o Op) String() string {
	if o.Arg != "" {
		return fmt.Sprintf("%s(%s)", o.Name, o.Arg)
	}
	if o.Name == "moveTo" || o.Name == "lineTo" {
		return fmt.Sprintf("%s(%g,%g)", o.Name, o.X, o.Y)
	}
	return o.Name
}

// RecordingSurface is an in-memory Surface that records every call. Snapshots
// encode the op count so restores are observable. Tests use it in place of
// raster surfaces.
type RecordingSurface struct {
	mu       sync.Mutex
	width    int
	height   int
	Ops      []Op
	Restored []string
}

// NewRecordingSurface satisfies SurfaceFactory.
func NewRecordingSurface(width, height int) Surface {
	return &RecordingSurface{width: width, height: height}
}

func (r *RecordingSurface) record(op Op) {
	r.mu.Lock()
	r.Ops = append(r.Ops, op)
	r.mu.Unlock()
}

// Calls returns a copy of the recorded ops.
func (r *RecordingSurface) Calls() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Op(nil), r.Ops...)
}

// Path returns only the moveTo/lineTo ops, the geometry that was drawn.
func (r *RecordingSurface) Path() []Op {
	var out []Op
	for _, op := range r.Calls() {
		if op.Name == "moveTo" || op.Name == "lineTo" {
			out = append(out, op)
		}
	}
	return out
}

func (r *RecordingSurface) Width() int  { return r.width }
func (r *RecordingSurface) Height() int { return r.height }

func (r *RecordingSurface) Reset(width, height int) {
	r.width, r.height = width, height
	r.record(Op{Name: "reset", Arg: fmt.Sprintf("%dx%d", width, height)})
}

func (r *RecordingSurface) SetFillStyle(color string) { r.record(Op{Name: "fillStyle", Arg: color}) }
func (r *RecordingSurface) FillRect(x, y, w, h float64) {
	r.record(Op{Name: "fillRect", X: x, Y: y, Arg: fmt.Sprintf("%gx%g", w, h)})
}
func (r *RecordingSurface) SetStrokeStyle(color string) { r.record(Op{Name: "strokeStyle", Arg: color}) }
func (r *RecordingSurface) SetLineWidth(width float64) {
	r.record(Op{Name: "lineWidth", Arg: fmt.Sprintf("%g", width)})
}
func (r *RecordingSurface) SetLineCap(c LineCap)    { r.record(Op{Name: "lineCap", Arg: string(c)}) }
func (r *RecordingSurface) SetLineJoin(j LineJoin)  { r.record(Op{Name: "lineJoin", Arg: string(j)}) }
func (r *RecordingSurface) BeginPath()              { r.record(Op{Name: "beginPath"}) }
func (r *RecordingSurface) MoveTo(x, y float64)     { r.record(Op{Name: "moveTo", X: x, Y: y}) }
func (r *RecordingSurface) LineTo(x, y float64)     { r.record(Op{Name: "lineTo", X: x, Y: y}) }
func (r *RecordingSurface) Stroke()                 { r.record(Op{Name: "stroke"}) }

func (r *RecordingSurface) Snapshot() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fmt.Sprintf("recording:%dx%d:%d", r.width, r.height, len(r.Ops)), nil
}

func (r *RecordingSurface) Restore(data string) error {
	r.mu.Lock()
	r.Restored = append(r.Restored, data)
	r.mu.Unlock()
	r.record(Op{Name: "restore", Arg: data})
	return nil
}
