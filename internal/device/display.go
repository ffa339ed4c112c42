package device

import (
	"image"

	"github.com/bnema/inputkit/internal/native"
)

// CaptureOptions select the captured region. Zero Width or Height means the
// display's size at the time of the call.
type CaptureOptions struct {
	X, Y          int
	Width, Height int
}

// Display reads screen geometry and pixels.
type Display struct {
	engine native.Screen
}

// NewDisplay creates a display facade
func NewDisplay(engine native.Screen) *Display {
	return &Display{engine: engine}
}

// Width returns the current screen width.
func (d *Display) Width() int {
	w, _ := d.engine.ScreenSize()
	return w
}

// Height returns the current screen height.
func (d *Display) Height() int {
	_, h := d.engine.ScreenSize()
	return h
}

// PixelAt returns the color at x, y as a hex string.
func (d *Display) PixelAt(x, y int) (string, error) {
	if x < 0 {
		return "", invalid("x", "non-negative coordinate", x)
	}
	if y < 0 {
		return "", invalid("y", "non-negative coordinate", y)
	}
	return d.engine.PixelColor(x, y)
}

// Capture grabs a region of the screen.
func (d *Display) Capture(opts CaptureOptions) (image.Image, error) {
	if opts.Width < 0 {
		return nil, invalid("width", "non-negative size", opts.Width)
	}
	if opts.Height < 0 {
		return nil, invalid("height", "non-negative size", opts.Height)
	}
	if opts.Width == 0 || opts.Height == 0 {
		w, h := d.engine.ScreenSize()
		if opts.Width == 0 {
			opts.Width = w
		}
		if opts.Height == 0 {
			opts.Height = h
		}
	}
	return d.engine.CaptureRegion(opts.X, opts.Y, opts.Width, opts.Height)
}
