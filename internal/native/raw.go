package native

import "math"

// RawKind names a raw event stream of the hook.
type RawKind string

const (
	KindPointerDown  RawKind = "pointer-down"
	KindPointerMove  RawKind = "pointer-move"
	KindPointerClick RawKind = "pointer-click"
	KindPointerWheel RawKind = "pointer-wheel"
	KindPointerDrag  RawKind = "pointer-drag"
	KindKeyPress     RawKind = "key-press"
	KindKeyDown      RawKind = "key-down"
	KindKeyUp        RawKind = "key-up"
)

// RawKinds lists every kind a hook delivers, pointer kinds first.
var RawKinds = []RawKind{
	KindPointerDown, KindPointerMove, KindPointerClick, KindPointerWheel, KindPointerDrag,
	KindKeyPress, KindKeyDown, KindKeyUp,
}

// Raw field names. Backends fill whichever apply to the event kind.
const (
	FieldButton    = "button"
	FieldClicks    = "clicks"
	FieldX         = "x"
	FieldY         = "y"
	FieldAmount    = "amount"
	FieldDirection = "direction"
	FieldRotation  = "rotation"
	FieldRawcode   = "rawcode"
	FieldKeychar   = "keychar"
	FieldShift     = "shift"
	FieldAlt       = "alt"
	FieldCtrl      = "ctrl"
	FieldMeta      = "meta"
)

// RawEvent is a platform specific payload. Fields vary by kind and may be
// missing; readers must tolerate both.
type RawEvent struct {
	Kind   RawKind
	Fields map[string]any
}

// Int reads a numeric field. Missing or non-numeric fields report false.
func (e RawEvent) Int(name string) (int, bool) {
	v, ok := e.Fields[name]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	}
	return 0, false
}

// Bool reads a boolean field.
func (e RawEvent) Bool(name string) (bool, bool) {
	v, ok := e.Fields[name].(bool)
	return v, ok
}

// Rune reads a character field stored as a rune or a one character string.
func (e RawEvent) Rune(name string) (rune, bool) {
	switch v := e.Fields[name].(type) {
	case rune:
		return v, true
	case string:
		for _, r := range v {
			return r, true
		}
	}
	return 0, false
}

func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}
