package device

import (
	"fmt"
	"sync"

	"github.com/bnema/inputkit/internal/events"
	"github.com/bnema/inputkit/internal/logger"
	"github.com/bnema/inputkit/internal/native"
)

// Options configure Open.
type Options struct {
	PointerDelay  int
	KeyboardDelay int
	// NoPropagate starts the hook with click propagation disabled.
	NoPropagate bool
}

// DefaultOptions returns the defaults used when nothing is configured.
func DefaultOptions() Options {
	return Options{PointerDelay: DefaultDelay, KeyboardDelay: DefaultDelay}
}

// System bundles the facades around one native engine and one hook.
type System struct {
	Pointer  *Pointer
	Keyboard *Keyboard
	Display  *Display

	hook       native.Hook
	normalizer *events.Normalizer
}

var (
	startMu sync.Mutex
	started = map[native.Hook]*events.Normalizer{}
)

// Open starts hook if it has not been started yet and builds the facades.
// Every System opened on the same hook shares one normalizer, so raw events
// are subscribed to only once.
func Open(engine native.Engine, hook native.Hook, opts Options) (*System, error) {
	if opts.PointerDelay < 0 {
		return nil, invalid("pointer delay", "non-negative milliseconds", opts.PointerDelay)
	}
	if opts.KeyboardDelay < 0 {
		return nil, invalid("keyboard delay", "non-negative milliseconds", opts.KeyboardDelay)
	}

	n, fresh, err := attach(hook, !opts.NoPropagate)
	if err != nil {
		return nil, err
	}

	s := &System{
		Pointer:    NewPointer(engine, hook, n),
		Keyboard:   NewKeyboard(engine, hook, n),
		Display:    NewDisplay(engine),
		hook:       hook,
		normalizer: n,
	}
	if fresh {
		s.Pointer.propagate = !opts.NoPropagate
	} else if err := s.Pointer.SetPropagate(!opts.NoPropagate); err != nil {
		return nil, err
	}

	if err := s.Pointer.SetDelay(opts.PointerDelay); err != nil {
		return nil, err
	}
	if err := s.Keyboard.SetDelay(opts.KeyboardDelay); err != nil {
		return nil, err
	}
	return s, nil
}

// attach reports whether it started the hook itself.
func attach(hook native.Hook, propagate bool) (*events.Normalizer, bool, error) {
	startMu.Lock()
	defer startMu.Unlock()

	if n, ok := started[hook]; ok {
		return n, false, nil
	}
	if err := hook.Start(propagate); err != nil {
		return nil, false, fmt.Errorf("failed to start input hook: %w", err)
	}
	n := events.NewNormalizer()
	n.Attach(hook)
	started[hook] = n
	logger.Debugf("Input hook started (propagate=%v)", propagate)
	return n, true, nil
}

// Events is the generic channel carrying every normalized event, tagged
// "<device>.<tag>" and also under events.AllTag.
func (s *System) Events() *events.Emitter[events.Event] {
	return s.normalizer.Global
}

// Hook returns the native hook the system was opened on.
func (s *System) Hook() native.Hook {
	return s.hook
}

// Close detaches every shortcut registered through this system.
func (s *System) Close() error {
	return s.Keyboard.Shortcuts().DetachAll()
}
