package events

import (
	"strings"
	"unicode"

	"github.com/bnema/inputkit/internal/keys"
	"github.com/bnema/inputkit/internal/logger"
	"github.com/bnema/inputkit/internal/native"
)

// Normalizer republishes raw hook events under a fixed schema. Wheel events
// get their own emitter because their payload differs from other pointer events.
type Normalizer struct {
	Pointer  *Emitter[PointerEvent]
	Wheel    *Emitter[WheelEvent]
	Keyboard *Emitter[KeyEvent]
	Global   *Emitter[Event]
}

// NewNormalizer creates the channels without attaching to a hook
func NewNormalizer() *Normalizer {
	return &Normalizer{
		Pointer:  NewEmitter[PointerEvent](),
		Wheel:    NewEmitter[WheelEvent](),
		Keyboard: NewEmitter[KeyEvent](),
		Global:   NewEmitter[Event](),
	}
}

// Attach subscribes to every raw kind of hook. Hook listeners have no
// unregistration path and live as long as the hook.
func (n *Normalizer) Attach(hook native.Hook) {
	for _, kind := range native.RawKinds {
		kind := kind
		hook.On(kind, func(raw native.RawEvent) { n.Handle(kind, raw) })
	}
	logger.Debugf("Normalizer attached to %d raw event kinds", len(native.RawKinds))
}

// Handle normalizes one raw event of the given kind and publishes it.
// Unknown kinds are ignored.
func (n *Normalizer) Handle(kind native.RawKind, raw native.RawEvent) {
	switch kind {
	case native.KindPointerDown:
		n.publishPointer(TagDown, NormalizePointer(raw))
	case native.KindPointerMove:
		n.publishPointer(TagMove, NormalizePointer(raw))
	case native.KindPointerClick:
		n.publishPointer(TagClick, NormalizePointer(raw))
	case native.KindPointerDrag:
		n.publishPointer(TagDrag, NormalizePointer(raw))
	case native.KindPointerWheel:
		ev := NormalizeWheel(raw)
		n.Wheel.Publish(TagWheel, ev)
		n.publishGlobal(Event{Device: DevicePointer, Tag: TagWheel, Wheel: &ev})
	case native.KindKeyPress:
		n.publishKey(TagPress, NormalizeKey(raw, true))
	case native.KindKeyDown:
		n.publishKey(TagDown, NormalizeKey(raw, false))
	case native.KindKeyUp:
		n.publishKey(TagUp, NormalizeKey(raw, false))
	}
}

func (n *Normalizer) publishPointer(tag string, ev PointerEvent) {
	n.Pointer.Publish(tag, ev)
	n.publishGlobal(Event{Device: DevicePointer, Tag: tag, Pointer: &ev})
}

func (n *Normalizer) publishKey(tag string, ev KeyEvent) {
	n.Keyboard.Publish(tag, ev)
	n.publishGlobal(Event{Device: DeviceKeyboard, Tag: tag, Key: &ev})
}

func (n *Normalizer) publishGlobal(ev Event) {
	n.Global.Publish(ev.Channel(), ev)
	n.Global.Publish(AllTag, ev)
}

// NormalizePointer copies button, clicks, x and y. Missing fields stay zero.
func NormalizePointer(raw native.RawEvent) PointerEvent {
	var ev PointerEvent
	ev.Button, _ = raw.Int(native.FieldButton)
	ev.Clicks, _ = raw.Int(native.FieldClicks)
	ev.X, _ = raw.Int(native.FieldX)
	ev.Y, _ = raw.Int(native.FieldY)
	return ev
}

// NormalizeWheel copies amount, clicks, direction, rotation, x and y.
func NormalizeWheel(raw native.RawEvent) WheelEvent {
	var ev WheelEvent
	ev.Amount, _ = raw.Int(native.FieldAmount)
	ev.Clicks, _ = raw.Int(native.FieldClicks)
	ev.Direction, _ = raw.Int(native.FieldDirection)
	ev.Rotation, _ = raw.Int(native.FieldRotation)
	ev.X, _ = raw.Int(native.FieldX)
	ev.Y, _ = raw.Int(native.FieldY)
	return ev
}

// NormalizeKey copies the raw code and modifier flags. The key name comes
// from the typed character for press events and from the code otherwise.
func NormalizeKey(raw native.RawEvent, typed bool) KeyEvent {
	var ev KeyEvent
	ev.Code, _ = raw.Int(native.FieldRawcode)
	ev.Shift, _ = raw.Bool(native.FieldShift)
	ev.Alt, _ = raw.Bool(native.FieldAlt)
	ev.Ctrl, _ = raw.Bool(native.FieldCtrl)
	ev.Meta, _ = raw.Bool(native.FieldMeta)

	if typed {
		if r, ok := raw.Rune(native.FieldKeychar); ok && unicode.IsPrint(r) {
			ev.Key = strings.ToLower(string(r))
			if r == ' ' {
				ev.Key = "space"
			}
			return ev
		}
	}
	if _, ok := raw.Fields[native.FieldRawcode]; ok && ev.Code >= 0 && ev.Code <= 0xffff {
		ev.Key, _ = keys.NameOf(keys.Code(ev.Code))
	}
	return ev
}
