package canvas_test

import (
	"errors"
	"math"
	"testing"

	"sketchbook/internal/canvas"
	"sketchbook/internal/domain"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// ─────────────────────────────────────────────────────────────
// ResolveSize
// ─────────────────────────────────────────────────────────────

func TestResolveSize_Portrait(t *testing.T) {
	size, err := canvas.ResolveSize(domain.OrientationPortrait, 1.325, 0)
	if err != nil {
		t.Fatalf("ResolveSize: %v", err)
	}
	if !approx(size.Width, 603*1.325) || !approx(size.Height, 796*1.325) {
		t.Errorf("got %+v", size)
	}
	w, h := size.Pixels()
	if w != 798 || h != 1054 {
		t.Errorf("Pixels = %dx%d, want 798x1054", w, h)
	}
}

func TestResolveSize_HeaderRemovedBeforeScaling(t *testing.T) {
	size, err := canvas.ResolveSize(domain.OrientationLandscape, 2, 43)
	if err != nil {
		t.Fatalf("ResolveSize: %v", err)
	}
	if !approx(size.Width, 1930) || !approx(size.Height, 800) {
		t.Errorf("got %+v, want 1930x800", size)
	}
}

func TestResolveSize_PositiveForValidOrientations(t *testing.T) {
	for _, o := range []domain.Orientation{domain.OrientationPortrait, domain.OrientationLandscape} {
		for _, header := range []float64{0, 40, 200, 442} {
			size, err := canvas.ResolveSize(o, canvas.DefaultDevicePixelRatio, header)
			if err != nil {
				t.Fatalf("%s/%g: %v", o, header, err)
			}
			if size.Width <= 0 || size.Height <= 0 {
				t.Errorf("%s/%g: non-positive size %+v", o, header, size)
			}
		}
	}
}

func TestResolveSize_InvalidOrientation(t *testing.T) {
	_, err := canvas.ResolveSize("diagonal", 1, 0)
	if !errors.Is(err, domain.ErrInvalidOrientation) {
		t.Fatalf("expected ErrInvalidOrientation, got %v", err)
	}

	r := canvas.SizeResolver{DevicePixelRatio: 1}
	if size := r.Resolve("diagonal"); !size.IsZero() {
		t.Errorf("Resolve(diagonal) = %+v, want zero size", size)
	}
}

// ─────────────────────────────────────────────────────────────
// DetectOrientation / FitScale
// ─────────────────────────────────────────────────────────────

func TestDetectOrientation(t *testing.T) {
	tests := []struct {
		name string
		win  *canvas.Window
		want domain.Orientation
	}{
		{"fallback wide", canvas.NewWindow(800, 400, false), domain.OrientationLandscape},
		{"fallback tall", canvas.NewWindow(400, 800, false), domain.OrientationPortrait},
		{"fallback square", canvas.NewWindow(500, 500, false), domain.OrientationPortrait},
		{"media query tall", canvas.NewWindow(400, 800, true), domain.OrientationPortrait},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := canvas.DetectOrientation(tt.win); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDetectOrientation_MediaQueryWins(t *testing.T) {
	w := canvas.NewWindow(800, 400, true)
	w.SetPortrait(true)
	if got := canvas.DetectOrientation(w); got != domain.OrientationPortrait {
		t.Errorf("got %s, want portrait from media query", got)
	}
}

func TestFitScale(t *testing.T) {
	// window narrower than the page: horizontal letterbox with a top margin
	scale, margin := canvas.FitScale(canvas.Size{Width: 200, Height: 100}, 100, 250, 50)
	if !approx(scale, 0.5) || !approx(margin, 75) {
		t.Errorf("narrow: scale=%g margin=%g, want 0.5/75", scale, margin)
	}

	// window wider than the page: vertical letterbox, no margin
	scale, margin = canvas.FitScale(canvas.Size{Width: 100, Height: 200}, 1000, 450, 50)
	if !approx(scale, 2) || margin != 0 {
		t.Errorf("wide: scale=%g margin=%g, want 2/0", scale, margin)
	}

	scale, _ = canvas.FitScale(canvas.Size{}, 100, 100, 0)
	if scale != 1 {
		t.Errorf("zero size: scale=%g, want 1", scale)
	}
}
