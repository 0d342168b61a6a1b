package canvas_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"sketchbook/internal/canvas"
	"sketchbook/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// FPSMeter
// ─────────────────────────────────────────────────────────────

func TestFPSMeter_Formula(t *testing.T) {
	m := canvas.NewFPSMeter()
	got := m.Update(16.6)
	want := 1000/16.6*0.03 + 60*0.97
	if got != want {
		t.Errorf("Update(16.6) = %v, want %v", got, want)
	}
	if m.Rounded() != 60 {
		t.Errorf("Rounded = %d, want 60", m.Rounded())
	}
}

func TestFPSMeter_NonAdvancingFrameIgnored(t *testing.T) {
	m := canvas.NewFPSMeter()
	first := m.Update(10)
	if got := m.Update(10); got != first {
		t.Errorf("zero delta changed average: %v -> %v", first, got)
	}
	if got := m.Update(5); got != first {
		t.Errorf("negative delta changed average: %v -> %v", first, got)
	}
}

// ─────────────────────────────────────────────────────────────
// RenderLoop
// ─────────────────────────────────────────────────────────────

func TestRenderLoop_ScalesToCanvasCoordinates(t *testing.T) {
	s := newStore()
	s.Initialize(nil)
	p := s.Active()
	p.Scale = 2

	q := canvas.NewInputQueue()
	q.Down(10, 10, p.Key)
	q.Move(20, 10)
	q.Up(20, 10)

	loop := canvas.NewRenderLoop(s, q, nil)
	stats := loop.Frame(16)
	if stats.Drawn != 3 || stats.Dropped != 0 {
		t.Errorf("stats = %+v", stats)
	}

	want := []canvas.Op{
		{Name: "moveTo", X: 5, Y: 5},
		{Name: "lineTo", X: 5, Y: 5.1},
		{Name: "lineTo", X: 10, Y: 5},
		{Name: "lineTo", X: 10, Y: 5},
	}
	if diff := cmp.Diff(want, recording(t, p).Path(), cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("path (-want +got):\n%s", diff)
	}
	if p.Clean() {
		t.Error("drawing should mark the page dirty")
	}
}

func TestRenderLoop_DownDrawsRoundDot(t *testing.T) {
	s := newStore()
	s.Initialize(nil)
	p := s.Active()
	p.Scale = 1
	rec := recording(t, p)
	setup := len(rec.Calls())

	q := canvas.NewInputQueue()
	q.Down(3, 4, p.Key)
	canvas.NewRenderLoop(s, q, canvas.NewToolbar(domain.StrokeStyle{Color: "#123456", LineWidth: 5})).Frame(1)

	var got []string
	for _, op := range rec.Calls()[setup:] {
		got = append(got, op.String())
	}
	want := []string{
		"strokeStyle(#123456)", "lineWidth(5)",
		"beginPath", "moveTo(3,4)", "lineTo(3,4.1)",
		"lineCap(round)", "lineJoin(round)", "stroke",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ops (-want +got):\n%s", diff)
	}
}

func TestRenderLoop_StyleChangeAppliesToNextSegment(t *testing.T) {
	s := newStore()
	s.Initialize(nil)
	p := s.Active()
	tb := canvas.NewToolbar(domain.DefaultStrokeStyle)
	q := canvas.NewInputQueue()
	loop := canvas.NewRenderLoop(s, q, tb)

	q.Down(1, 1, p.Key)
	loop.Frame(16)
	tb.SetColor("#f00")
	q.Move(2, 2)
	loop.Frame(32)

	var styles []string
	for _, op := range recording(t, p).Calls() {
		if op.Name == "strokeStyle" {
			styles = append(styles, op.Arg)
		}
	}
	if diff := cmp.Diff([]string{"#000000", "#f00"}, styles); diff != "" {
		t.Errorf("stroke styles (-want +got):\n%s", diff)
	}
}

func TestToolbar_MalformedColorFallsBackToDefault(t *testing.T) {
	tb := canvas.NewToolbar(domain.StrokeStyle{Color: "red", LineWidth: 4})
	want := domain.StrokeStyle{Color: domain.DefaultStrokeStyle.Color, LineWidth: 4}
	if got := tb.Style(); got != want {
		t.Errorf("style = %+v, want %+v", got, want)
	}
}

func TestRenderLoop_DrawsOnCapturingPage(t *testing.T) {
	s := newStore()
	s.Initialize([]domain.PageRecord{
		{ID: 1, Orientation: domain.OrientationPortrait, Data: "a"},
		{ID: 2, Orientation: domain.OrientationPortrait, Data: "b"},
	})
	captured := s.Active()

	q := canvas.NewInputQueue()
	q.Down(10, 10, captured.Key)
	q.Up(10, 10)
	s.Prev()

	canvas.NewRenderLoop(s, q, nil).Frame(16)

	if len(recording(t, captured).Path()) == 0 {
		t.Error("events should land on the page they were captured on")
	}
	if len(recording(t, s.Active()).Path()) != 0 {
		t.Error("the page switched to should not receive earlier strokes")
	}
}

func TestRenderLoop_DropsUnknownAndUnsizedPages(t *testing.T) {
	s := newStore()
	s.Initialize([]domain.PageRecord{{ID: 1, Orientation: "diagonal"}})

	q := canvas.NewInputQueue()
	q.Down(1, 1, "missing")
	q.Up(1, 1)
	q.Down(1, 1, s.Active().Key)

	var dirtied int
	loop := canvas.NewRenderLoop(s, q, nil)
	loop.OnDirty = func(*canvas.Page) { dirtied++ }
	stats := loop.Frame(16)
	if stats.Dropped != 3 || stats.Drawn != 0 {
		t.Errorf("stats = %+v, want 3 dropped", stats)
	}
	if dirtied != 0 {
		t.Errorf("OnDirty called %d times", dirtied)
	}
}

func TestRenderLoop_OnDirtyOncePerPage(t *testing.T) {
	s := newStore()
	s.Initialize(nil)
	p := s.Active()

	q := canvas.NewInputQueue()
	var dirtied []string
	loop := canvas.NewRenderLoop(s, q, nil)
	loop.OnDirty = func(pg *canvas.Page) { dirtied = append(dirtied, pg.Key) }

	q.Down(1, 1, p.Key)
	q.Move(2, 2)
	loop.Frame(16)
	q.Up(3, 3)
	loop.Frame(32)

	if diff := cmp.Diff([]string{p.Key}, dirtied); diff != "" {
		t.Errorf("OnDirty (-want +got):\n%s", diff)
	}
}
