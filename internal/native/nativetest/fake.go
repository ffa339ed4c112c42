// Package nativetest provides recording fakes of the native engine and hook.
package nativetest

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/bnema/inputkit/internal/keys"
	"github.com/bnema/inputkit/internal/native"
)

// Call is one recorded native call.
type Call struct {
	Name string
	Args []any
}

func (c Call) String() string {
	return fmt.Sprintf("%s%v", c.Name, c.Args)
}

// Engine records every call and answers queries from its fields.
type Engine struct {
	mu    sync.Mutex
	calls []Call

	X, Y          int
	Width, Height int
	Color         string

	// Errs makes the named call fail.
	Errs map[string]error
}

var _ native.Engine = (*Engine)(nil)

// NewEngine returns a fake with a 1920x1080 screen and the pointer at 0,0
func NewEngine() *Engine {
	return &Engine{Width: 1920, Height: 1080, Color: "ffffff", Errs: make(map[string]error)}
}

// Calls returns a copy of the recorded calls.
func (e *Engine) Calls() []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Call(nil), e.calls...)
}

// CallNames returns the recorded call names in order.
func (e *Engine) CallNames() []string {
	calls := e.Calls()
	names := make([]string, len(calls))
	for i, c := range calls {
		names[i] = c.Name
	}
	return names
}

// Reset forgets recorded calls.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = nil
}

// SetScreen changes the reported screen size.
func (e *Engine) SetScreen(width, height int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Width, e.Height = width, height
}

func (e *Engine) record(name string, args ...any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, Call{Name: name, Args: args})
	return e.Errs[name]
}

func (e *Engine) MoveTo(x, y int) error {
	if err := e.record("MoveTo", x, y); err != nil {
		return err
	}
	e.mu.Lock()
	e.X, e.Y = x, y
	e.mu.Unlock()
	return nil
}

func (e *Engine) MoveToSmooth(x, y int) error {
	if err := e.record("MoveToSmooth", x, y); err != nil {
		return err
	}
	e.mu.Lock()
	e.X, e.Y = x, y
	e.mu.Unlock()
	return nil
}

func (e *Engine) DragTo(x, y int) error {
	if err := e.record("DragTo", x, y); err != nil {
		return err
	}
	e.mu.Lock()
	e.X, e.Y = x, y
	e.mu.Unlock()
	return nil
}

func (e *Engine) ScrollBy(dx, dy int) error {
	return e.record("ScrollBy", dx, dy)
}

func (e *Engine) SetButtonState(button keys.Button, state native.State) error {
	return e.record("SetButtonState", button, state)
}

// Position is a query and is not recorded.
func (e *Engine) Position() (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.X, e.Y
}

func (e *Engine) SetPointerDelay(ms int) {
	_ = e.record("SetPointerDelay", ms)
}

func (e *Engine) Tap(key string, modifiers []keys.Modifier) error {
	return e.record("Tap", key, modifiers)
}

func (e *Engine) SetKeyState(key string, state native.State, modifiers []keys.Modifier) error {
	return e.record("SetKeyState", key, state, modifiers)
}

func (e *Engine) TypeText(text string, perCharDelayMs int) error {
	return e.record("TypeText", text, perCharDelayMs)
}

func (e *Engine) SetKeyboardDelay(ms int) {
	_ = e.record("SetKeyboardDelay", ms)
}

// ScreenSize is a query and is not recorded.
func (e *Engine) ScreenSize() (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Width, e.Height
}

func (e *Engine) PixelColor(x, y int) (string, error) {
	if err := e.record("PixelColor", x, y); err != nil {
		return "", err
	}
	return e.Color, nil
}

func (e *Engine) CaptureRegion(x, y, width, height int) (image.Image, error) {
	if err := e.record("CaptureRegion", x, y, width, height); err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for py := 0; py < height; py++ {
		for px := 0; px < width; px++ {
			img.Set(px, py, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
		}
	}
	return img, nil
}
