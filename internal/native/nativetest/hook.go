package nativetest

import (
	"sync"

	"github.com/bnema/inputkit/internal/keys"
	"github.com/bnema/inputkit/internal/native"
)

// Hook is an in-memory native.Hook. Emit delivers raw events synchronously.
type Hook struct {
	mu        sync.Mutex
	started   int
	propagate bool
	handlers  map[native.RawKind][]func(native.RawEvent)
	next      native.Handle
	shortcuts map[native.Handle]Registration

	Registers   int
	Unregisters int
	// RegisterErr makes RegisterShortcut fail.
	RegisterErr error
	// UnregisterErr makes UnregisterShortcut fail.
	UnregisterErr error
}

// Registration is a live shortcut registration.
type Registration struct {
	Codes     []keys.Code
	OnTrigger func()
}

var _ native.Hook = (*Hook)(nil)

// NewHook returns a hook that has not been started
func NewHook() *Hook {
	return &Hook{
		handlers:  make(map[native.RawKind][]func(native.RawEvent)),
		shortcuts: make(map[native.Handle]Registration),
	}
}

func (h *Hook) Start(propagate bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started++
	h.propagate = propagate
	return nil
}

// StartCount returns how many times Start was called.
func (h *Hook) StartCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.started
}

// Propagating reports the current click propagation setting.
func (h *Hook) Propagating() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.propagate
}

func (h *Hook) On(kind native.RawKind, handler func(native.RawEvent)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[kind] = append(h.handlers[kind], handler)
}

// HandlerCount returns the number of handlers subscribed to kind.
func (h *Hook) HandlerCount(kind native.RawKind) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handlers[kind])
}

// Emit delivers a raw event to every handler of its kind.
func (h *Hook) Emit(ev native.RawEvent) {
	h.mu.Lock()
	handlers := append(([]func(native.RawEvent))(nil), h.handlers[ev.Kind]...)
	h.mu.Unlock()

	for _, fn := range handlers {
		fn(ev)
	}
}

func (h *Hook) RegisterShortcut(codes []keys.Code, onTrigger func()) (native.Handle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.Registers++
	if h.RegisterErr != nil {
		return 0, h.RegisterErr
	}
	h.next++
	h.shortcuts[h.next] = Registration{Codes: append([]keys.Code(nil), codes...), OnTrigger: onTrigger}
	return h.next, nil
}

func (h *Hook) UnregisterShortcut(handle native.Handle) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.Unregisters++
	if h.UnregisterErr != nil {
		return h.UnregisterErr
	}
	delete(h.shortcuts, handle)
	return nil
}

// Registrations returns a snapshot of live registrations.
func (h *Hook) Registrations() map[native.Handle]Registration {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make(map[native.Handle]Registration, len(h.shortcuts))
	for k, v := range h.shortcuts {
		out[k] = v
	}
	return out
}

// Trigger fires every live registration whose codes equal codes.
// It returns the number of callbacks run.
func (h *Hook) Trigger(codes ...keys.Code) int {
	var fire []func()
	for _, reg := range h.Registrations() {
		if equalCodes(reg.Codes, codes) {
			fire = append(fire, reg.OnTrigger)
		}
	}
	for _, fn := range fire {
		fn()
	}
	return len(fire)
}

func (h *Hook) EnableClickPropagation() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.propagate = true
	return nil
}

func (h *Hook) DisableClickPropagation() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.propagate = false
	return nil
}

func equalCodes(a, b []keys.Code) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
