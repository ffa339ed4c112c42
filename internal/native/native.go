// Package native declares the boundary to the platform automation engine and
// the global input hook. Implementations live in the robot and uinput
// subpackages; nativetest provides a recording fake.
package native

import (
	"errors"
	"image"

	"github.com/bnema/inputkit/internal/keys"
)

var (
	// ErrNotSupported is returned when a backend cannot perform an operation
	ErrNotSupported = errors.New("not supported by this backend")
	// ErrHookNotStarted is returned when shortcuts are registered before Start
	ErrHookNotStarted = errors.New("input hook not started")
)

// State is the target state of a button or key.
type State string

const (
	StateDown State = "down"
	StateUp   State = "up"
)

// Pointer synthesizes mouse input.
type Pointer interface {
	MoveTo(x, y int) error
	MoveToSmooth(x, y int) error
	DragTo(x, y int) error
	ScrollBy(dx, dy int) error
	SetButtonState(button keys.Button, state State) error
	Position() (x, y int)
	SetPointerDelay(ms int)
}

// Keyboard synthesizes key input.
type Keyboard interface {
	Tap(key string, modifiers []keys.Modifier) error
	SetKeyState(key string, state State, modifiers []keys.Modifier) error
	// TypeText types text, sleeping perCharDelayMs between characters when positive.
	TypeText(text string, perCharDelayMs int) error
	SetKeyboardDelay(ms int)
}

// Screen reads display geometry and pixels.
type Screen interface {
	ScreenSize() (width, height int)
	// PixelColor returns the color as a six digit lowercase hex string.
	PixelColor(x, y int) (string, error)
	CaptureRegion(x, y, width, height int) (image.Image, error)
}

// Engine is a complete automation backend.
type Engine interface {
	Pointer
	Keyboard
	Screen
}

// Handle identifies a shortcut registration made with a Hook.
type Handle uint64

// Hook is the process wide global input hook.
type Hook interface {
	// Start begins delivering raw events. Calling it again is a no-op.
	Start(propagate bool) error
	// On subscribes handler to one raw event kind for the life of the hook.
	On(kind RawKind, handler func(RawEvent))
	RegisterShortcut(codes []keys.Code, onTrigger func()) (Handle, error)
	UnregisterShortcut(handle Handle) error
	EnableClickPropagation() error
	DisableClickPropagation() error
}
