package robot

import (
	"strings"

	hook "github.com/robotn/gohook"

	"github.com/bnema/inputkit/internal/keys"
)

// hookNames translates hook.Keycode names that keys.Lookup spells differently.
var hookNames = map[string]string{
	"num_minus":    "numpad -",
	"num_plus":     "numpad +",
	"num_asterisk": "numpad *",
	"num_slash":    "numpad /",
	"num_enter":    "enter",
	"rshift":       "shift",
	"ralt":         "alt",
	"rcmd":         "right command",
}

// uiohookCodes are uiohook virtual key codes hook.Keycode lacks or gets wrong.
// They are applied after the hook table.
var uiohookCodes = map[uint16]string{
	0x000E: "backspace", // hook.Keycode calls it "delete"
	0x0057: "f11",
	0x0058: "f12",
	0x003A: "caps lock",
	0x0045: "num lock",
	0x0046: "scroll lock",
	0x0E45: "pause",
	0x0E52: "insert",
	0x0E53: "delete",
	0x0E47: "home",
	0x0E4F: "end",
	0x0E49: "page up",
	0x0E51: "page down",
	0x0E1D: "control",
	0x0036: "shift",
	0x0E38: "alt",
	0x0E5B: "command",
	0x0E5C: "right command",
	0x0053: "numpad .",
	0x0E35: "numpad /",
	0x0E1C: "enter",
}

// vcCodes maps the hook's virtual key codes (Event.Keycode) to resolver codes.
var vcCodes = buildVCCodes()

func buildVCCodes() map[uint16]keys.Code {
	m := make(map[uint16]keys.Code, len(hook.Keycode)+len(uiohookCodes))
	for name, vc := range hook.Keycode {
		if alias, ok := hookNames[name]; ok {
			name = alias
		} else if strings.HasPrefix(name, "num") && len(name) == 4 {
			name = "numpad " + name[3:]
		}
		if code, ok := keys.Lookup(name); ok {
			m[vc] = code
		}
	}
	for vc, name := range uiohookCodes {
		if code, ok := keys.Lookup(name); ok {
			m[vc] = code
		}
	}
	return m
}

// keyCode returns the resolver code of a key event. Typed events carry no
// virtual code, so their character is looked up instead.
func keyCode(ev hook.Event) (keys.Code, bool) {
	if code, ok := vcCodes[ev.Keycode]; ok && ev.Keycode != 0 {
		return code, true
	}
	if ev.Keychar > 0 && ev.Keychar != hook.CharUndefined {
		switch r := ev.Keychar; r {
		case ' ':
			return keys.Lookup("space")
		default:
			return keys.Lookup(strings.ToLower(string(r)))
		}
	}
	return 0, false
}
