// Package robot implements the native engine with robotgo and the raw hook
// with gohook.
package robot

import (
	"fmt"
	"image"
	"sync"

	"github.com/go-vgo/robotgo"

	"github.com/bnema/inputkit/internal/keys"
	"github.com/bnema/inputkit/internal/native"
)

// Engine drives the desktop through robotgo. robotgo keeps its delays in
// package globals, so an Engine guards them with its own lock.
type Engine struct {
	mu sync.Mutex
}

var _ native.Engine = (*Engine)(nil)

// NewEngine returns a robotgo backed engine
func NewEngine() *Engine {
	return &Engine{}
}

func (e *Engine) MoveTo(x, y int) error {
	robotgo.Move(x, y)
	return nil
}

func (e *Engine) MoveToSmooth(x, y int) error {
	if !robotgo.MoveSmooth(x, y) {
		return fmt.Errorf("smooth move to %d,%d did not reach its target", x, y)
	}
	return nil
}

func (e *Engine) DragTo(x, y int) error {
	robotgo.DragSmooth(x, y)
	return nil
}

func (e *Engine) ScrollBy(dx, dy int) error {
	robotgo.Scroll(dx, dy)
	return nil
}

func (e *Engine) SetButtonState(button keys.Button, state native.State) error {
	if err := robotgo.Toggle(buttonName(button), string(state)); err != nil {
		return fmt.Errorf("failed to set %s button %s: %w", button, state, err)
	}
	return nil
}

func (e *Engine) Position() (int, int) {
	return robotgo.Location()
}

func (e *Engine) SetPointerDelay(ms int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	robotgo.MouseSleep = ms
}

func (e *Engine) Tap(key string, modifiers []keys.Modifier) error {
	if err := robotgo.KeyTap(key, modifierArgs(modifiers)...); err != nil {
		return fmt.Errorf("failed to tap %q: %w", key, err)
	}
	return nil
}

func (e *Engine) SetKeyState(key string, state native.State, modifiers []keys.Modifier) error {
	args := append([]interface{}{string(state)}, modifierArgs(modifiers)...)
	if err := robotgo.KeyToggle(key, args...); err != nil {
		return fmt.Errorf("failed to toggle %q %s: %w", key, state, err)
	}
	return nil
}

func (e *Engine) TypeText(text string, perCharDelayMs int) error {
	if perCharDelayMs <= 0 {
		robotgo.TypeStr(text)
		return nil
	}
	for _, r := range text {
		robotgo.TypeStr(string(r))
		robotgo.MilliSleep(perCharDelayMs)
	}
	return nil
}

func (e *Engine) SetKeyboardDelay(ms int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	robotgo.KeySleep = ms
}

func (e *Engine) ScreenSize() (int, int) {
	return robotgo.GetScreenSize()
}

func (e *Engine) PixelColor(x, y int) (string, error) {
	return robotgo.GetPixelColor(x, y), nil
}

func (e *Engine) CaptureRegion(x, y, width, height int) (image.Image, error) {
	img, err := robotgo.CaptureImg(x, y, width, height)
	if err != nil {
		return nil, fmt.Errorf("failed to capture %dx%d at %d,%d: %w", width, height, x, y, err)
	}
	return img, nil
}

func buttonName(b keys.Button) string {
	if b == keys.ButtonMiddle {
		return "center"
	}
	return string(b)
}

func modifierArgs(mods []keys.Modifier) []interface{} {
	args := make([]interface{}, 0, len(mods))
	for _, m := range mods {
		switch m {
		case keys.ModControl:
			args = append(args, "ctrl")
		case keys.ModCommand:
			args = append(args, "cmd")
		default:
			args = append(args, string(m))
		}
	}
	return args
}
