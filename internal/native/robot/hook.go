package robot

import (
	"sync"

	hook "github.com/robotn/gohook"

	"github.com/bnema/inputkit/internal/keys"
	"github.com/bnema/inputkit/internal/logger"
	"github.com/bnema/inputkit/internal/native"
)

// uiohook modifier mask bits
const (
	maskShiftL = 1 << 0
	maskCtrlL  = 1 << 1
	maskMetaL  = 1 << 2
	maskAltL   = 1 << 3
	maskShiftR = 1 << 4
	maskCtrlR  = 1 << 5
	maskMetaR  = 1 << 6
	maskAltR   = 1 << 7
)

// Hook delivers gohook events as raw events. gohook has no way to remove a
// registered chord, so shortcuts are matched here from key down and up.
type Hook struct {
	mu        sync.Mutex
	handlers  map[native.RawKind][]func(native.RawEvent)
	propagate bool
	running   bool
	done      chan struct{}

	chords *native.ChordTracker
}

var _ native.Hook = (*Hook)(nil)

// NewHook returns a hook that has not been started
func NewHook() *Hook {
	return &Hook{
		handlers: make(map[native.RawKind][]func(native.RawEvent)),
		chords:   native.NewChordTracker(),
	}
}

// Start begins the gohook event loop. Calling it again is a no-op.
func (h *Hook) Start(propagate bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.propagate = propagate
	if h.running {
		return nil
	}

	evChan := hook.Start()
	h.running = true
	h.done = make(chan struct{})
	go h.loop(evChan, h.done)

	logger.Debug("gohook event loop started")
	return nil
}

// Stop ends the event loop and waits for it to drain.
func (h *Hook) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	done := h.done
	h.mu.Unlock()

	hook.End()
	<-done
	logger.Debug("gohook event loop stopped")
}

func (h *Hook) loop(evChan chan hook.Event, done chan struct{}) {
	defer close(done)
	for ev := range evChan {
		h.dispatch(ev)
	}
}

func (h *Hook) dispatch(ev hook.Event) {
	raw, ok := convert(ev)
	if !ok {
		return
	}

	if code, ok := keyCode(ev); ok {
		switch raw.Kind {
		case native.KindKeyDown:
			h.chords.KeyDown(code)
		case native.KindKeyUp:
			h.chords.KeyUp(code)
		}
	}

	h.mu.Lock()
	handlers := append(([]func(native.RawEvent))(nil), h.handlers[raw.Kind]...)
	h.mu.Unlock()

	for _, fn := range handlers {
		fn(raw)
	}
}

func (h *Hook) On(kind native.RawKind, handler func(native.RawEvent)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[kind] = append(h.handlers[kind], handler)
}

func (h *Hook) RegisterShortcut(codes []keys.Code, onTrigger func()) (native.Handle, error) {
	h.mu.Lock()
	running := h.running
	h.mu.Unlock()
	if !running {
		return 0, native.ErrHookNotStarted
	}

	handle := h.chords.Add(codes, onTrigger)
	logger.Debugf("Registered shortcut %s as handle %d", keys.JoinCodes(codes), handle)
	return handle, nil
}

func (h *Hook) UnregisterShortcut(handle native.Handle) error {
	if !h.chords.Remove(handle) {
		logger.Debugf("Shortcut handle %d was not registered", handle)
	}
	return nil
}

// EnableClickPropagation records the setting. gohook observes events
// without consuming them, so clicks always reach other applications.
func (h *Hook) EnableClickPropagation() error {
	h.setPropagate(true)
	return nil
}

// DisableClickPropagation records the setting; see EnableClickPropagation.
func (h *Hook) DisableClickPropagation() error {
	h.setPropagate(false)
	logger.Debug("gohook cannot suppress clicks, propagation stays on")
	return nil
}

func (h *Hook) setPropagate(v bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.propagate = v
}

func convert(ev hook.Event) (native.RawEvent, bool) {
	var kind native.RawKind
	switch ev.Kind {
	case hook.KeyDown:
		kind = native.KindKeyPress
	case hook.KeyHold:
		kind = native.KindKeyDown
	case hook.KeyUp:
		kind = native.KindKeyUp
	case hook.MouseUp:
		kind = native.KindPointerClick
	case hook.MouseHold:
		kind = native.KindPointerDown
	case hook.MouseMove:
		kind = native.KindPointerMove
	case hook.MouseDrag:
		kind = native.KindPointerDrag
	case hook.MouseWheel:
		kind = native.KindPointerWheel
	default:
		return native.RawEvent{}, false
	}

	fields := map[string]any{}
	switch kind {
	case native.KindKeyPress, native.KindKeyDown, native.KindKeyUp:
		// Rawcode is a keysym on X11 and a VK on Windows; report the resolver code instead
		if code, ok := keyCode(ev); ok {
			fields[native.FieldRawcode] = int(code)
		}
		if kind == native.KindKeyPress {
			fields[native.FieldKeychar] = ev.Keychar
		}
		fields[native.FieldShift] = ev.Mask&(maskShiftL|maskShiftR) != 0
		fields[native.FieldCtrl] = ev.Mask&(maskCtrlL|maskCtrlR) != 0
		fields[native.FieldMeta] = ev.Mask&(maskMetaL|maskMetaR) != 0
		fields[native.FieldAlt] = ev.Mask&(maskAltL|maskAltR) != 0
	case native.KindPointerWheel:
		fields[native.FieldAmount] = ev.Amount
		fields[native.FieldClicks] = ev.Clicks
		fields[native.FieldDirection] = ev.Direction
		fields[native.FieldRotation] = ev.Rotation
		fields[native.FieldX] = ev.X
		fields[native.FieldY] = ev.Y
	default:
		fields[native.FieldButton] = ev.Button
		fields[native.FieldClicks] = ev.Clicks
		fields[native.FieldX] = ev.X
		fields[native.FieldY] = ev.Y
	}
	return native.RawEvent{Kind: kind, Fields: fields}, true
}
