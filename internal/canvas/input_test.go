package canvas_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"sketchbook/internal/canvas"
)

func TestInputQueue_StrokeLifecycle(t *testing.T) {
	q := canvas.NewInputQueue()

	if q.Move(1, 1) || q.Up(1, 1) {
		t.Fatal("move/up without a pointer down should be ignored")
	}
	if !q.Down(1, 2, "p") {
		t.Fatal("first down should be queued")
	}
	if q.Down(3, 4, "p") {
		t.Error("second down while down should be ignored")
	}
	q.Move(5, 6)
	q.Up(7, 8)
	if q.PointerDown() {
		t.Error("pointer should be up after Up")
	}

	want := []canvas.TouchEvent{
		{Kind: canvas.EventDown, X: 1, Y: 2, Page: "p"},
		{Kind: canvas.EventMove, X: 5, Y: 6, Page: "p"},
		{Kind: canvas.EventUp, X: 7, Y: 8, Page: "p"},
	}
	if diff := cmp.Diff(want, q.Drain()); diff != "" {
		t.Errorf("drained (-want +got):\n%s", diff)
	}
	if q.Len() != 0 {
		t.Errorf("Len after drain = %d", q.Len())
	}
}

func TestInputQueue_LeaveClearsWithoutQueueing(t *testing.T) {
	q := canvas.NewInputQueue()
	q.Down(1, 1, "p")
	q.Leave()

	if q.PointerDown() {
		t.Error("pointer should be up after Leave")
	}
	if q.Len() != 1 {
		t.Errorf("Len = %d, want only the down event", q.Len())
	}
	if q.Move(2, 2) {
		t.Error("move after leave should be ignored")
	}
}

func TestInputQueue_Push(t *testing.T) {
	q := canvas.NewInputQueue()
	for _, name := range []string{"down", "move", "up"} {
		kind, err := canvas.ParseEventKind(name)
		if err != nil {
			t.Fatalf("ParseEventKind(%q): %v", name, err)
		}
		if kind.String() != name {
			t.Errorf("String() = %q, want %q", kind, name)
		}
		if !q.Push(kind, 0, 0, "") {
			t.Errorf("Push(%s) should be queued", name)
		}
	}
	if _, err := canvas.ParseEventKind("hover"); err == nil {
		t.Error("expected an error for an unknown event")
	}
}
