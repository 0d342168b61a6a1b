package canvas

import (
	"log"
	"sync"

	"sketchbook/internal/domain"
)

// Reference viewport extents in CSS pixels, measured in Chrome on a Nexus 7.
var (
	portraitExtent  = Size{Width: 603, Height: 796}
	landscapeExtent = Size{Width: 965, Height: 443}
)

// DefaultDevicePixelRatio is the device-to-CSS pixel ratio of the reference device.
const DefaultDevicePixelRatio = 1.325

// Size is a page's raster size in device pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// IsZero reports whether the size is unusable for drawing.
func (s Size) IsZero() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Pixels truncates the size to whole pixels, the way a canvas element
// truncates fractional width/height attributes.
func (s Size) Pixels() (int, int) {
	return int(s.Width), int(s.Height)
}

// ResolveSize maps an orientation to the page's pixel size. The header height
// is removed from the vertical extent before scaling by the pixel ratio.
func ResolveSize(o domain.Orientation, devicePixelRatio, headerHeight float64) (Size, error) {
	var ref Size
	switch o {
	case domain.OrientationPortrait:
		ref = portraitExtent
	case domain.OrientationLandscape:
		ref = landscapeExtent
	default:
		return Size{}, domain.ErrInvalidOrientation
	}
	return Size{
		Width:  ref.Width * devicePixelRatio,
		Height: (ref.Height - headerHeight) * devicePixelRatio,
	}, nil
}

// SizeResolver binds ResolveSize to the device configuration.
type SizeResolver struct {
	DevicePixelRatio float64
	HeaderHeight     float64
}

// Resolve never fails: an unknown orientation is logged and yields the zero Size.
func (r SizeResolver) Resolve(o domain.Orientation) Size {
	size, err := ResolveSize(o, r.DevicePixelRatio, r.HeaderHeight)
	if err != nil {
		log.Printf("canvas: resolve size for %q: %v", o, err)
		return Size{}
	}
	return size
}

// Viewport is the window the notebook is shown in.
type Viewport interface {
	// Size returns the inner window size in CSS pixels.
	Size() (width, height float64)
	// MatchPortrait answers the "(orientation: portrait)" media query.
	// supported is false when the host has no media query support.
	MatchPortrait() (matches, supported bool)
}

// DetectOrientation prefers the media query and falls back to comparing
// the window's width and height.
func DetectOrientation(v Viewport) domain.Orientation {
	if matches, ok := v.MatchPortrait(); ok {
		if matches {
			return domain.OrientationPortrait
		}
		return domain.OrientationLandscape
	}
	w, h := v.Size()
	if w > h {
		return domain.OrientationLandscape
	}
	return domain.OrientationPortrait
}

// FitScale computes the display scale for a page letterboxed into the window
// below the header, plus the top margin that centers it vertically.
func FitScale(size Size, windowWidth, windowHeight, headerHeight float64) (scale, marginTop float64) {
	spaceW := windowWidth
	spaceH := windowHeight - headerHeight
	if size.IsZero() || spaceW <= 0 || spaceH <= 0 {
		return 1, 0
	}
	if spaceW/spaceH > size.Width/size.Height {
		// vertical letterboxes, centered horizontally by the host
		scale = spaceH / size.Height
	} else {
		scale = spaceW / size.Width
		marginTop = (spaceH - size.Height*scale) / 2
	}
	return scale, marginTop
}

// Window is a mutable Viewport fed by resize notifications.
type Window struct {
	mu          sync.RWMutex
	width       float64
	height      float64
	mediaQuery  bool
	portraitMQ  bool
	hasPortrait bool
}

// NewWindow creates a window of the given CSS size. With mediaQueries set,
// MatchPortrait reports supported and derives the answer from the size
// unless overridden by SetPortrait.
func NewWindow(width, height float64, mediaQueries bool) *Window {
	return &Window{width: width, height: height, mediaQuery: mediaQueries}
}

// Resize records a new inner window size.
func (w *Window) Resize(width, height float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.width = width
	w.height = height
}

// SetPortrait forces the media query answer, as a rotated device reports it.
func (w *Window) SetPortrait(portrait bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.portraitMQ = portrait
	w.hasPortrait = true
}

func (w *Window) Size() (float64, float64) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.width, w.height
}

func (w *Window) MatchPortrait() (bool, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if !w.mediaQuery {
		return false, false
	}
	if w.hasPortrait {
		return w.portraitMQ, true
	}
	return w.height >= w.width, true
}
