package events

// Pointer channel tags
const (
	TagDown  = "down"
	TagMove  = "move"
	TagClick = "click"
	TagWheel = "wheel"
	TagDrag  = "drag"
)

// Keyboard channel tags. TagDown is shared with the pointer channel.
const (
	TagPress = "press"
	TagUp    = "up"
)

// Devices reported on the generic channel
const (
	DevicePointer  = "pointer"
	DeviceKeyboard = "keyboard"
)

// PointerEvent is published on down, move, click and drag.
type PointerEvent struct {
	Button int `json:"button"`
	Clicks int `json:"clicks"`
	X      int `json:"x"`
	Y      int `json:"y"`
}

// WheelEvent is published on wheel.
type WheelEvent struct {
	Amount    int `json:"amount"`
	Clicks    int `json:"clicks"`
	Direction int `json:"direction"`
	Rotation  int `json:"rotation"`
	X         int `json:"x"`
	Y         int `json:"y"`
}

// KeyEvent is published on press, down and up.
type KeyEvent struct {
	Key   string `json:"key"`
	Code  int    `json:"code"`
	Shift bool   `json:"shift"`
	Alt   bool   `json:"alt"`
	Ctrl  bool   `json:"ctrl"`
	Meta  bool   `json:"meta"`
}

// Event is the generic channel payload. Exactly one of Pointer, Wheel and Key is set.
type Event struct {
	Device  string        `json:"device"`
	Tag     string        `json:"tag"`
	Pointer *PointerEvent `json:"pointer,omitempty"`
	Wheel   *WheelEvent   `json:"wheel,omitempty"`
	Key     *KeyEvent     `json:"key,omitempty"`
}

// Channel returns the generic channel tag, e.g. "pointer.move".
func (e Event) Channel() string {
	return GenericTag(e.Device, e.Tag)
}

// Payload returns whichever typed payload is set.
func (e Event) Payload() any {
	switch {
	case e.Pointer != nil:
		return *e.Pointer
	case e.Wheel != nil:
		return *e.Wheel
	case e.Key != nil:
		return *e.Key
	}
	return nil
}

// GenericTag joins a device and a channel tag.
func GenericTag(device, tag string) string {
	return device + "." + tag
}

// AllTag receives every event on the generic channel.
const AllTag = "*"
