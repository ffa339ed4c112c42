// Package uinput injects input through Linux virtual devices. Screen reads
// go through X11 screenshots since uinput is write only.
package uinput

import (
	"strings"
	"unicode"

	"github.com/bnema/inputkit/internal/keys"
)

// evdev key codes from linux/input-event-codes.h
const (
	KEY_ESC        = 1
	KEY_1          = 2
	KEY_0          = 11
	KEY_MINUS      = 12
	KEY_EQUAL      = 13
	KEY_BACKSPACE  = 14
	KEY_TAB        = 15
	KEY_LEFTBRACE  = 26
	KEY_RIGHTBRACE = 27
	KEY_ENTER      = 28
	KEY_LEFTCTRL   = 29
	KEY_SEMICOLON  = 39
	KEY_APOSTROPHE = 40
	KEY_GRAVE      = 41
	KEY_LEFTSHIFT  = 42
	KEY_BACKSLASH  = 43
	KEY_COMMA      = 51
	KEY_DOT        = 52
	KEY_SLASH      = 53
	KEY_LEFTALT    = 56
	KEY_SPACE      = 57
	KEY_CAPSLOCK   = 58
	KEY_F1         = 59
	KEY_F10        = 68
	KEY_F11        = 87
	KEY_F12        = 88
	KEY_HOME       = 102
	KEY_UP         = 103
	KEY_PAGEUP     = 104
	KEY_LEFT       = 105
	KEY_RIGHT      = 106
	KEY_END        = 107
	KEY_DOWN       = 108
	KEY_PAGEDOWN   = 109
	KEY_INSERT     = 110
	KEY_DELETE     = 111
	KEY_LEFTMETA   = 125
)

// letters in alphabetical order
var letterCodes = [26]int{
	30, 48, 46, 32, 18, 33, 34, 35, 23, 36, 37, 38, 50,
	49, 24, 25, 16, 19, 31, 20, 22, 47, 17, 45, 21, 44,
}

var namedCodes = map[string]int{
	"escape":    KEY_ESC,
	"backspace": KEY_BACKSPACE,
	"tab":       KEY_TAB,
	"enter":     KEY_ENTER,
	"control":   KEY_LEFTCTRL,
	"shift":     KEY_LEFTSHIFT,
	"alt":       KEY_LEFTALT,
	"command":   KEY_LEFTMETA,
	"space":     KEY_SPACE,
	"caps lock": KEY_CAPSLOCK,
	"home":      KEY_HOME,
	"up":        KEY_UP,
	"page up":   KEY_PAGEUP,
	"left":      KEY_LEFT,
	"right":     KEY_RIGHT,
	"end":       KEY_END,
	"down":      KEY_DOWN,
	"page down": KEY_PAGEDOWN,
	"insert":    KEY_INSERT,
	"delete":    KEY_DELETE,
	"f11":       KEY_F11,
	"f12":       KEY_F12,
}

// unshifted and shifted characters on a US layout
var punctuation = map[rune]struct {
	code  int
	shift bool
}{
	'-': {KEY_MINUS, false}, '_': {KEY_MINUS, true},
	'=': {KEY_EQUAL, false}, '+': {KEY_EQUAL, true},
	'[': {KEY_LEFTBRACE, false}, '{': {KEY_LEFTBRACE, true},
	']': {KEY_RIGHTBRACE, false}, '}': {KEY_RIGHTBRACE, true},
	';': {KEY_SEMICOLON, false}, ':': {KEY_SEMICOLON, true},
	'\'': {KEY_APOSTROPHE, false}, '"': {KEY_APOSTROPHE, true},
	'`': {KEY_GRAVE, false}, '~': {KEY_GRAVE, true},
	'\\': {KEY_BACKSLASH, false}, '|': {KEY_BACKSLASH, true},
	',': {KEY_COMMA, false}, '<': {KEY_COMMA, true},
	'.': {KEY_DOT, false}, '>': {KEY_DOT, true},
	'/': {KEY_SLASH, false}, '?': {KEY_SLASH, true},
	'!': {KEY_1, true}, '@': {KEY_1 + 1, true}, '#': {KEY_1 + 2, true},
	'$': {KEY_1 + 3, true}, '%': {KEY_1 + 4, true}, '^': {KEY_1 + 5, true},
	'&': {KEY_1 + 6, true}, '*': {KEY_1 + 7, true}, '(': {KEY_1 + 8, true},
	')': {KEY_0, true},
	' ': {KEY_SPACE, false}, '\n': {KEY_ENTER, false}, '\t': {KEY_TAB, false},
}

// KeyCode returns the evdev code for a key name. Aliases understood by the
// symbol table (ctrl, cmd, esc, ...) are accepted.
func KeyCode(name string) (int, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if code, ok := keys.Lookup(name); ok {
		if canonical, ok := keys.NameOf(code); ok {
			name = canonical
		}
	}

	if len(name) == 1 {
		if code, _, ok := RuneCode(rune(name[0])); ok {
			return code, true
		}
	}
	if code, ok := namedCodes[name]; ok {
		return code, true
	}
	if strings.HasPrefix(name, "f") {
		switch n := name[1:]; len(n) {
		case 1:
			if n[0] >= '1' && n[0] <= '9' {
				return KEY_F1 + int(n[0]-'1'), true
			}
		case 2:
			if n == "10" {
				return KEY_F10, true
			}
		}
	}
	return 0, false
}

// RuneCode returns the evdev code for a typed character and whether shift
// must be held.
func RuneCode(r rune) (code int, shift bool, ok bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return letterCodes[r-'a'], false, true
	case r >= 'A' && r <= 'Z':
		return letterCodes[unicode.ToLower(r)-'a'], true, true
	case r == '0':
		return KEY_0, false, true
	case r >= '1' && r <= '9':
		return KEY_1 + int(r-'1'), false, true
	}
	if p, found := punctuation[r]; found {
		return p.code, p.shift, true
	}
	return 0, false, false
}

// ModifierCode returns the evdev code held for a modifier.
func ModifierCode(m keys.Modifier) int {
	switch m {
	case keys.ModAlt:
		return KEY_LEFTALT
	case keys.ModCommand:
		return KEY_LEFTMETA
	case keys.ModControl:
		return KEY_LEFTCTRL
	default:
		return KEY_LEFTSHIFT
	}
}
