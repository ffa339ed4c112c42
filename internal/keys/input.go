package keys

// Button is a pointer button name.
type Button string

const (
	ButtonLeft   Button = "left"
	ButtonRight  Button = "right"
	ButtonMiddle Button = "middle"
)

// Buttons lists the accepted button names.
var Buttons = []Button{ButtonLeft, ButtonRight, ButtonMiddle}

// Valid reports whether b is one of Buttons.
func (b Button) Valid() bool {
	switch b {
	case ButtonLeft, ButtonRight, ButtonMiddle:
		return true
	}
	return false
}

// Modifier is a keyboard modifier accepted by press, down and up.
type Modifier string

const (
	ModAlt     Modifier = "alt"
	ModCommand Modifier = "command"
	ModControl Modifier = "control"
	ModShift   Modifier = "shift"
)

// Modifiers lists the accepted modifier names.
var Modifiers = []Modifier{ModAlt, ModCommand, ModControl, ModShift}

// Valid reports whether m is one of Modifiers.
func (m Modifier) Valid() bool {
	switch m {
	case ModAlt, ModCommand, ModControl, ModShift:
		return true
	}
	return false
}

// ModifierArg is either a single Modifier or a ModifierList.
type ModifierArg interface {
	List() []Modifier
}

// List returns m as a one element list.
func (m Modifier) List() []Modifier {
	return []Modifier{m}
}

// ModifierList is several modifiers held together.
type ModifierList []Modifier

// List returns a copy of the list.
func (l ModifierList) List() []Modifier {
	return append([]Modifier(nil), l...)
}

// Normalize flattens an optional ModifierArg. A nil argument yields nil.
func Normalize(arg ModifierArg) []Modifier {
	if arg == nil {
		return nil
	}
	return arg.List()
}
