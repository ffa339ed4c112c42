package device

import (
	"sync"

	"github.com/bnema/inputkit/internal/events"
	"github.com/bnema/inputkit/internal/keys"
	"github.com/bnema/inputkit/internal/native"
	"github.com/bnema/inputkit/internal/shortcut"
)

// TypeOptions control Type.
type TypeOptions struct {
	// Interval is the pause between characters in milliseconds.
	Interval int
}

// Keyboard drives key input, publishes key events and owns the shortcut sub-emitter.
type Keyboard struct {
	mu     sync.Mutex
	engine native.Keyboard
	delay  int

	events    *events.Emitter[events.KeyEvent]
	shortcuts *shortcut.Shortcuts
}

// NewKeyboard creates a keyboard facade whose shortcuts register with hook
func NewKeyboard(engine native.Keyboard, hook native.Hook, n *events.Normalizer) *Keyboard {
	return &Keyboard{
		engine:    engine,
		delay:     DefaultDelay,
		events:    n.Keyboard,
		shortcuts: shortcut.New(hook),
	}
}

// Delay returns the delay applied after each native key action.
func (k *Keyboard) Delay() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.delay
}

// SetDelay changes the delay in milliseconds.
func (k *Keyboard) SetDelay(ms int) error {
	if ms < 0 {
		return invalid("delay", "non-negative milliseconds", ms)
	}
	k.mu.Lock()
	k.delay = ms
	k.mu.Unlock()

	k.engine.SetKeyboardDelay(ms)
	return nil
}

// Press taps key while holding modifier, which may be nil, a keys.Modifier
// or a keys.ModifierList.
func (k *Keyboard) Press(key string, modifier keys.ModifierArg) error {
	mods, err := checkKey(key, modifier)
	if err != nil {
		return err
	}
	return k.engine.Tap(key, mods)
}

// Down holds key down.
func (k *Keyboard) Down(key string, modifier keys.ModifierArg) error {
	mods, err := checkKey(key, modifier)
	if err != nil {
		return err
	}
	return k.engine.SetKeyState(key, native.StateDown, mods)
}

// Up releases key.
func (k *Keyboard) Up(key string, modifier keys.ModifierArg) error {
	mods, err := checkKey(key, modifier)
	if err != nil {
		return err
	}
	return k.engine.SetKeyState(key, native.StateUp, mods)
}

// Type types text.
func (k *Keyboard) Type(text string, opts TypeOptions) error {
	if opts.Interval < 0 {
		return invalid("interval", "non-negative milliseconds", opts.Interval)
	}
	return k.engine.TypeText(text, opts.Interval)
}

// Shortcuts returns the shortcut sub-emitter.
func (k *Keyboard) Shortcuts() *shortcut.Shortcuts {
	return k.shortcuts
}

// OnPress subscribes to typed characters.
func (k *Keyboard) OnPress(fn func(events.KeyEvent)) (events.Subscription, error) {
	return k.events.Subscribe(events.TagPress, fn)
}

// OnDown subscribes to key presses.
func (k *Keyboard) OnDown(fn func(events.KeyEvent)) (events.Subscription, error) {
	return k.events.Subscribe(events.TagDown, fn)
}

// OnUp subscribes to key releases.
func (k *Keyboard) OnUp(fn func(events.KeyEvent)) (events.Subscription, error) {
	return k.events.Subscribe(events.TagUp, fn)
}

// Off removes a key event subscription.
func (k *Keyboard) Off(sub events.Subscription) error {
	return k.events.Unsubscribe(sub)
}

func checkKey(key string, modifier keys.ModifierArg) ([]keys.Modifier, error) {
	if key == "" {
		return nil, invalid("key", "non-empty key name", key)
	}
	mods := keys.Normalize(modifier)
	for _, m := range mods {
		if !m.Valid() {
			return nil, invalid("modifier", `"alt", "command", "control" or "shift"`, string(m))
		}
	}
	return mods, nil
}
