package script

import (
	"context"
	"fmt"

	"sketchbook/internal/canvas"
	"sketchbook/internal/domain"
)

// frameStep is how far an implicit "frame" advances the clock: one 60 Hz frame in ms.
const frameStep = 1000.0 / 60

// Session is what a script drives. *canvas.Session satisfies it.
type Session interface {
	Pointer(kind canvas.EventKind, x, y float64) bool
	Leave()
	Next(ctx context.Context) bool
	Prev(ctx context.Context) bool
	SwitchTo(ctx context.Context, index int) bool
	Resize(width, height float64)
	Frame(time float64) canvas.FrameStats
	SaveAndWait(ctx context.Context) []canvas.SaveResult
	Toolbar() *canvas.Toolbar
	Status() canvas.Status
}

// Result summarizes a run.
type Result struct {
	Commands int                 `json:"commands"`
	Queued   int                 `json:"queued"`
	Ignored  int                 `json:"ignored"`
	Switches int                 `json:"switches"`
	Frames   int                 `json:"frames"`
	Drawn    int                 `json:"drawn"`
	Saves    []canvas.SaveResult `json:"saves,omitempty"`
	Failed   int                 `json:"failed"`
	Clock    float64             `json:"clock"`
}

// Run parses src and executes it against s.
func Run(ctx context.Context, s Session, src string) (Result, error) {
	sc, err := ParseString(src)
	if err != nil {
		return Result{}, err
	}
	return Execute(ctx, s, sc)
}

// Execute runs sc against s. Input still queued when the script ends is
// rendered by one final frame.
func Execute(ctx context.Context, s Session, sc *Script) (Result, error) {
	var res Result
	for _, cmd := range sc.Commands {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := res.apply(ctx, s, cmd); err != nil {
			return res, fmt.Errorf("line %d: %s: %w", cmd.Pos.Line, cmd.Name(), err)
		}
		res.Commands++
	}
	if s.Status().Queued > 0 {
		res.frame(s, res.Clock+frameStep)
	}
	return res, nil
}

func (r *Result) apply(ctx context.Context, s Session, cmd *Command) error {
	switch {
	case cmd.Pointer != nil:
		kind, err := canvas.ParseEventKind(cmd.Pointer.Kind)
		if err != nil {
			return err
		}
		if s.Pointer(kind, cmd.Pointer.X, cmd.Pointer.Y) {
			r.Queued++
		} else {
			r.Ignored++
		}
	case cmd.Leave:
		s.Leave()
	case cmd.Next:
		r.switched(s.Next(ctx))
	case cmd.Prev:
		r.switched(s.Prev(ctx))
	case cmd.Page != nil:
		r.switched(s.SwitchTo(ctx, *cmd.Page))
	case cmd.Color != nil:
		if !domain.ValidColor(*cmd.Color) {
			return fmt.Errorf("invalid color %q", *cmd.Color)
		}
		s.Toolbar().SetColor(*cmd.Color)
	case cmd.Width != nil:
		if *cmd.Width <= 0 {
			return fmt.Errorf("width must be positive, got %v", *cmd.Width)
		}
		s.Toolbar().SetLineWidth(*cmd.Width)
	case cmd.Resize != nil:
		if cmd.Resize.Width <= 0 || cmd.Resize.Height <= 0 {
			return fmt.Errorf("invalid size %vx%v", cmd.Resize.Width, cmd.Resize.Height)
		}
		s.Resize(cmd.Resize.Width, cmd.Resize.Height)
	case cmd.Frame != nil:
		at := r.Clock + frameStep
		if cmd.Frame.At != nil {
			at = *cmd.Frame.At
		}
		r.frame(s, at)
	case cmd.Save:
		for _, sr := range s.SaveAndWait(ctx) {
			if sr.Err != nil {
				r.Failed++
			}
			r.Saves = append(r.Saves, sr)
		}
	default:
		return fmt.Errorf("empty command")
	}
	return nil
}

func (r *Result) frame(s Session, at float64) {
	stats := s.Frame(at)
	r.Clock = at
	r.Frames++
	r.Drawn += stats.Drawn
}

func (r *Result) switched(ok bool) {
	if ok {
		r.Switches++
	}
}
