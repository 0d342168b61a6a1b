package canvas

import (
	"log"
	"math"

	"sketchbook/internal/domain"
)

const (
	fpsWeight = 0.03
	fpsSeed   = 60.0

	// tapOffset extends a fresh path so a tap without movement leaves a dot.
	tapOffset = 0.1
)

// FPSMeter keeps an exponentially smoothed frame rate.
type FPSMeter struct {
	average float64
	last    float64
}

// NewFPSMeter starts at 60 fps with the previous frame at t=0.
func NewFPSMeter() *FPSMeter {
	return &FPSMeter{average: fpsSeed}
}

// Update folds the frame at time (ms) into the average and returns it.
// Frames that do not advance the clock are ignored.
func (m *FPSMeter) Update(time float64) float64 {
	dt := time - m.last
	if dt > 0 {
		m.average = 1000/dt*fpsWeight + m.average*(1-fpsWeight)
	}
	m.last = time
	return m.average
}

// Average returns the smoothed frame rate.
func (m *FPSMeter) Average() float64 { return m.average }

// Rounded returns the frame rate as displayed.
func (m *FPSMeter) Rounded() int { return int(math.Round(m.average)) }

// FrameStats summarizes one Frame call.
type FrameStats struct {
	Time    float64 `json:"time"`
	FPS     float64 `json:"fps"`
	Drawn   int     `json:"drawn"`
	Dropped int     `json:"dropped"`
}

// RenderLoop consumes the input queue once per display frame and draws the
// events onto the page they were captured on.
type RenderLoop struct {
	pages   *PageStore
	queue   *InputQueue
	toolbar *Toolbar
	fps     *FPSMeter

	// OnDirty is called when a page receives its first stroke.
	OnDirty func(p *Page)
}

// NewRenderLoop wires a loop over pages and queue.
func NewRenderLoop(pages *PageStore, queue *InputQueue, toolbar *Toolbar) *RenderLoop {
	if toolbar == nil {
		toolbar = NewToolbar(domain.DefaultStrokeStyle)
	}
	return &RenderLoop{pages: pages, queue: queue, toolbar: toolbar, fps: NewFPSMeter()}
}

// FPS exposes the loop's meter.
func (r *RenderLoop) FPS() *FPSMeter { return r.fps }

// Frame runs one display frame at time (ms).
func (r *RenderLoop) Frame(time float64) FrameStats {
	stats := FrameStats{Time: time, FPS: r.fps.Update(time)}

	for _, ev := range r.queue.Drain() {
		page := r.target(ev)
		if page == nil || page.surface == nil {
			stats.Dropped++
			continue
		}
		r.draw(page, ev)
		stats.Drawn++
	}
	return stats
}

func (r *RenderLoop) target(ev TouchEvent) *Page {
	if ev.Page == "" {
		return r.pages.Active()
	}
	p := r.pages.ByKey(ev.Page)
	if p == nil {
		log.Printf("canvas: dropping %s event for unknown page %s", ev.Kind, ev.Page)
	}
	return p
}

func (r *RenderLoop) draw(p *Page, ev TouchEvent) {
	scale := p.Scale
	if scale <= 0 {
		scale = 1
	}
	x := ev.X / scale
	y := ev.Y / scale

	p.stale = true
	if p.markDirty() && r.OnDirty != nil {
		r.OnDirty(p)
	}

	surf := p.surface
	style := r.toolbar.Style()
	surf.SetStrokeStyle(style.Color)
	surf.SetLineWidth(style.LineWidth)

	switch ev.Kind {
	case EventDown:
		surf.BeginPath()
		surf.MoveTo(x, y)
		surf.LineTo(x, y+tapOffset)
		surf.SetLineCap(LineCapRound)
		surf.SetLineJoin(LineJoinRound)
		surf.Stroke()
	case EventMove, EventUp:
		surf.LineTo(x, y)
		surf.Stroke()
	}
}
