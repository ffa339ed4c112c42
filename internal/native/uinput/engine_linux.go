//go:build linux

package uinput

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sync"
	"time"

	"github.com/ThomasT75/uinput"
	"github.com/kbinani/screenshot"
	"golang.org/x/sys/unix"

	"github.com/bnema/inputkit/internal/keys"
	"github.com/bnema/inputkit/internal/logger"
	"github.com/bnema/inputkit/internal/native"
)

// DefaultDevicePath is where the kernel exposes uinput.
const DefaultDevicePath = "/dev/uinput"

const smoothSteps = 20

// Available reports whether the uinput device can be opened for writing.
func Available(path string) error {
	if err := unix.Access(path, unix.W_OK); err != nil {
		return fmt.Errorf("%s is not writable: %w", path, err)
	}
	return nil
}

// Engine injects input through a virtual mouse and keyboard. Relative mice
// cannot report their position, so the engine parks the cursor in the top
// left corner on creation and tracks it from there.
type Engine struct {
	mouse    uinput.Mouse
	keyboard uinput.Keyboard

	mu            sync.Mutex
	closed        bool
	currentX      int
	currentY      int
	pointerDelay  time.Duration
	keyboardDelay time.Duration
}

var _ native.Engine = (*Engine)(nil)

// NewEngine creates the virtual devices at path.
func NewEngine(path string) (*Engine, error) {
	if err := Available(path); err != nil {
		return nil, err
	}

	mouse, err := uinput.CreateMouse(path, []byte("inputkit virtual mouse"))
	if err != nil {
		return nil, fmt.Errorf("failed to create virtual mouse: %w", err)
	}
	keyboard, err := uinput.CreateKeyboard(path, []byte("inputkit virtual keyboard"))
	if err != nil {
		mouse.Close()
		return nil, fmt.Errorf("failed to create virtual keyboard: %w", err)
	}

	e := &Engine{mouse: mouse, keyboard: keyboard}
	w, h := e.ScreenSize()
	if err := mouse.Move(int32(-2*w), int32(-2*h)); err != nil {
		e.Close()
		return nil, fmt.Errorf("failed to park cursor: %w", err)
	}
	logger.Debugf("uinput engine ready on %s (%dx%d)", path, w, h)
	return e, nil
}

// Close destroys the virtual devices.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	return errors.Join(e.mouse.Close(), e.keyboard.Close())
}

func (e *Engine) MoveTo(x, y int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.moveLocked(x, y)
}

func (e *Engine) moveLocked(x, y int) error {
	if e.closed {
		return native.ErrNotSupported
	}
	dx, dy := x-e.currentX, y-e.currentY
	if dx == 0 && dy == 0 {
		return nil
	}
	if err := e.mouse.Move(int32(dx), int32(dy)); err != nil {
		return err
	}
	e.currentX, e.currentY = x, y
	e.pause(e.pointerDelay)
	return nil
}

func (e *Engine) MoveToSmooth(x, y int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.glideLocked(x, y)
}

func (e *Engine) glideLocked(x, y int) error {
	startX, startY := e.currentX, e.currentY
	for i := 1; i <= smoothSteps; i++ {
		t := float64(i) / smoothSteps
		stepX := startX + int(math.Round(float64(x-startX)*t))
		stepY := startY + int(math.Round(float64(y-startY)*t))
		if err := e.moveLocked(stepX, stepY); err != nil {
			return err
		}
		time.Sleep(2 * time.Millisecond)
	}
	return nil
}

func (e *Engine) DragTo(x, y int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.mouse.LeftPress(); err != nil {
		return err
	}
	if err := e.glideLocked(x, y); err != nil {
		return errors.Join(err, e.mouse.LeftRelease())
	}
	return e.mouse.LeftRelease()
}

// ScrollBy scrolls dy notches down and dx notches right.
func (e *Engine) ScrollBy(dx, dy int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if dy != 0 {
		if err := e.mouse.Wheel(false, int32(-dy)); err != nil {
			return err
		}
	}
	if dx != 0 {
		if err := e.mouse.Wheel(true, int32(dx)); err != nil {
			return err
		}
	}
	e.pause(e.pointerDelay)
	return nil
}

func (e *Engine) SetButtonState(button keys.Button, state native.State) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	down := state == native.StateDown
	var err error
	switch button {
	case keys.ButtonLeft:
		if down {
			err = e.mouse.LeftPress()
		} else {
			err = e.mouse.LeftRelease()
		}
	case keys.ButtonRight:
		if down {
			err = e.mouse.RightPress()
		} else {
			err = e.mouse.RightRelease()
		}
	case keys.ButtonMiddle:
		if down {
			err = e.mouse.MiddlePress()
		} else {
			err = e.mouse.MiddleRelease()
		}
	default:
		return fmt.Errorf("%w: button %q", native.ErrNotSupported, button)
	}
	if err != nil {
		return err
	}
	e.pause(e.pointerDelay)
	return nil
}

func (e *Engine) Position() (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentX, e.currentY
}

func (e *Engine) SetPointerDelay(ms int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pointerDelay = time.Duration(ms) * time.Millisecond
}

func (e *Engine) Tap(key string, modifiers []keys.Modifier) error {
	code, ok := KeyCode(key)
	if !ok {
		return fmt.Errorf("%w: key %q", native.ErrNotSupported, key)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.holdLocked(modifiers, true); err != nil {
		return err
	}
	err := e.keyboard.KeyPress(code)
	return errors.Join(err, e.holdLocked(modifiers, false))
}

func (e *Engine) SetKeyState(key string, state native.State, modifiers []keys.Modifier) error {
	code, ok := KeyCode(key)
	if !ok {
		return fmt.Errorf("%w: key %q", native.ErrNotSupported, key)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if state == native.StateDown {
		if err := e.holdLocked(modifiers, true); err != nil {
			return err
		}
		return e.keyboard.KeyDown(code)
	}
	if err := e.keyboard.KeyUp(code); err != nil {
		return err
	}
	return e.holdLocked(modifiers, false)
}

func (e *Engine) holdLocked(modifiers []keys.Modifier, down bool) error {
	for _, m := range modifiers {
		var err error
		if down {
			err = e.keyboard.KeyDown(ModifierCode(m))
		} else {
			err = e.keyboard.KeyUp(ModifierCode(m))
		}
		if err != nil {
			return err
		}
	}
	e.pause(e.keyboardDelay)
	return nil
}

func (e *Engine) TypeText(text string, perCharDelayMs int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, r := range text {
		code, shift, ok := RuneCode(r)
		if !ok {
			return fmt.Errorf("%w: character %q", native.ErrNotSupported, r)
		}
		if shift {
			if err := e.keyboard.KeyDown(KEY_LEFTSHIFT); err != nil {
				return err
			}
		}
		if err := e.keyboard.KeyPress(code); err != nil {
			return err
		}
		if shift {
			if err := e.keyboard.KeyUp(KEY_LEFTSHIFT); err != nil {
				return err
			}
		}
		e.pause(time.Duration(perCharDelayMs) * time.Millisecond)
	}
	return nil
}

func (e *Engine) SetKeyboardDelay(ms int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.keyboardDelay = time.Duration(ms) * time.Millisecond
}

func (e *Engine) ScreenSize() (int, int) {
	if screenshot.NumActiveDisplays() == 0 {
		return 0, 0
	}
	b := screenshot.GetDisplayBounds(0)
	return b.Dx(), b.Dy()
}

func (e *Engine) PixelColor(x, y int) (string, error) {
	img, err := screenshot.CaptureRect(image.Rect(x, y, x+1, y+1))
	if err != nil {
		return "", fmt.Errorf("failed to read pixel at %d,%d: %w", x, y, err)
	}
	r, g, b, _ := img.At(img.Bounds().Min.X, img.Bounds().Min.Y).RGBA()
	return fmt.Sprintf("%02x%02x%02x", r>>8, g>>8, b>>8), nil
}

func (e *Engine) CaptureRegion(x, y, width, height int) (image.Image, error) {
	img, err := screenshot.CaptureRect(image.Rect(x, y, x+width, y+height))
	if err != nil {
		return nil, fmt.Errorf("failed to capture %dx%d at %d,%d: %w", width, height, x, y, err)
	}
	return img, nil
}

func (e *Engine) pause(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}
