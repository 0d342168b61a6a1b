package script_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"sketchbook/internal/canvas"
	"sketchbook/internal/domain"
	"sketchbook/internal/script"
)

type memGateway struct {
	mu     sync.Mutex
	nextID int64
}

func (g *memGateway) ListPages(context.Context, string) ([]domain.PageRecord, error) {
	return nil, nil
}

func (g *memGateway) CreatePage(context.Context, string, domain.PagePayload) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	return g.nextID, nil
}

func (g *memGateway) UpdatePage(context.Context, string, int64, domain.PagePayload) error {
	return nil
}

func newSession(t *testing.T, gw canvas.Gateway) *canvas.Session {
	t.Helper()
	s := canvas.NewSession(canvas.SessionConfig{
		NotebookID: "nb",
		Window:     canvas.NewWindow(603, 796, true),
		NewSurface: canvas.NewRecordingSurface,
		Gateway:    gw,
	})
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

// ─────────────────────────────────────────────────────────────
// Parser
// ─────────────────────────────────────────────────────────────

func TestParse_Commands(t *testing.T) {
	src := `
# warm up
down 10 20; move 15.5 -3
up 1 2 // lift
leave
next
prev
page 0
color #FF0000
width 4.5
resize 965 443
frame
frame 120
save
`
	sc, err := script.ParseString(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var names []string
	for _, c := range sc.Commands {
		names = append(names, c.Name())
	}
	want := []string{"down", "move", "up", "leave", "next", "prev", "page", "color", "width", "resize", "frame", "frame", "save"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("commands (-want +got):\n%s", diff)
	}

	move := sc.Commands[1].Pointer
	if move.X != 15.5 || move.Y != -3 {
		t.Errorf("move = %+v", move)
	}
	if got := *sc.Commands[7].Color; got != "#FF0000" {
		t.Errorf("color = %q", got)
	}
	if sc.Commands[10].Frame.At != nil || *sc.Commands[11].Frame.At != 120 {
		t.Errorf("frame args = %v, %v", sc.Commands[10].Frame.At, sc.Commands[11].Frame.At)
	}
	if sc.Commands[3].Pos.Line != 5 {
		t.Errorf("leave on line %d, want 5", sc.Commands[3].Pos.Line)
	}
}

func TestParse_Errors(t *testing.T) {
	for _, src := range []string{
		"down 10",
		"jump 1 2",
		"page 1.5",
		"color red",
		"resize 10",
	} {
		if _, err := script.ParseString(src); err == nil {
			t.Errorf("ParseString(%q) should fail", src)
		}
	}
}

func TestParse_Empty(t *testing.T) {
	sc, err := script.Parse(strings.NewReader("\n# nothing here\n\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(sc.Commands) != 0 {
		t.Errorf("commands = %d", len(sc.Commands))
	}
}

// ─────────────────────────────────────────────────────────────
// Run
// ─────────────────────────────────────────────────────────────

func TestRun_DrawsAndSaves(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, &memGateway{})

	res, err := script.Run(ctx, s, `
color #336699
width 6
down 10 10
move 20 20
up 30 30
frame 16
next
down 5 5
up 5 5
frame
save
`)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Commands != 11 || res.Queued != 5 || res.Switches != 1 {
		t.Errorf("result = %+v", res)
	}
	if res.Frames != 2 || res.Drawn != 5 {
		t.Errorf("frames = %d, drawn = %d", res.Frames, res.Drawn)
	}
	if len(res.Saves) != 2 || res.Failed != 0 {
		t.Errorf("saves = %+v", res.Saves)
	}

	st := s.Status()
	if st.Toolbar != (domain.StrokeStyle{Color: "#336699", LineWidth: 6}) {
		t.Errorf("toolbar = %+v", st.Toolbar)
	}
	if len(st.Pages) != 2 || st.Active != 1 {
		t.Errorf("pages = %+v, active %d", st.Pages, st.Active)
	}
}

func TestRun_FlushesPendingInput(t *testing.T) {
	s := newSession(t, nil)
	res, err := script.Run(context.Background(), s, "down 1 1\nup 2 2")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Frames != 1 || res.Drawn != 2 || s.Status().Queued != 0 {
		t.Errorf("result = %+v", res)
	}
	if s.Pages()[0].State != "dirty" {
		t.Error("page should be dirty after the closing frame")
	}
}

func TestRun_ClockAdvances(t *testing.T) {
	s := newSession(t, nil)
	res, err := script.Run(context.Background(), s, "frame 100\nframe\nframe")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := 100 + 2*1000.0/60
	if diff := res.Clock - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("clock = %v, want %v", res.Clock, want)
	}
}

func TestRun_IgnoredInput(t *testing.T) {
	s := newSession(t, nil)
	res, err := script.Run(context.Background(), s, "move 1 1\nup 1 1\ndown 1 1\ndown 2 2\nleave\nup 3 3")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Queued != 1 || res.Ignored != 4 {
		t.Errorf("queued = %d, ignored = %d", res.Queued, res.Ignored)
	}
	if s.Status().PointerDown {
		t.Error("leave should release the pointer")
	}
}

func TestRun_Rejects(t *testing.T) {
	tests := map[string]string{
		"zero width":  "down 1 1\nwidth 0",
		"bad resize":  "resize 0 10",
		"parse error": "down",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := script.Run(context.Background(), newSession(t, nil), src); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := script.Run(ctx, newSession(t, nil), "next")
	if err == nil || res.Commands != 0 {
		t.Errorf("res = %+v, err = %v", res, err)
	}
}
