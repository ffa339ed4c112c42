// Package keys translates between human readable key and button names and
// the numeric codes understood by the native input hook.
package keys

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrUnknownSymbol is returned when a key name has no entry in the symbol table
	ErrUnknownSymbol = errors.New("unknown key symbol")
	// ErrInvalidCombination is returned for empty or malformed shortcut combinations
	ErrInvalidCombination = errors.New("invalid key combination")
)

// UnknownSymbolError names the symbol that failed to resolve.
type UnknownSymbolError struct {
	Symbol string
}

func (e *UnknownSymbolError) Error() string {
	return fmt.Sprintf("unknown key symbol %q", e.Symbol)
}

func (e *UnknownSymbolError) Is(target error) bool {
	return target == ErrUnknownSymbol
}

// Code is a native numeric key code.
type Code uint16

// canonical holds one name per code; NameOf always answers with these.
var canonical = []struct {
	name string
	code Code
}{
	{"backspace", 8},
	{"tab", 9},
	{"enter", 13},
	{"shift", 16},
	{"control", 17},
	{"alt", 18},
	{"pause", 19},
	{"caps lock", 20},
	{"escape", 27},
	{"space", 32},
	{"page up", 33},
	{"page down", 34},
	{"end", 35},
	{"home", 36},
	{"left", 37},
	{"up", 38},
	{"right", 39},
	{"down", 40},
	{"insert", 45},
	{"delete", 46},
	{"command", 91},
	{"right command", 93},
	{"numpad *", 106},
	{"numpad +", 107},
	{"numpad -", 109},
	{"numpad .", 110},
	{"numpad /", 111},
	{"num lock", 144},
	{"scroll lock", 145},
	{";", 186},
	{"=", 187},
	{",", 188},
	{"-", 189},
	{".", 190},
	{"/", 191},
	{"`", 192},
	{"[", 219},
	{"\\", 220},
	{"]", 221},
	{"'", 222},
}

var aliases = map[string]Code{
	"ctrl":     17,
	"ctl":      17,
	"option":   18,
	"break":    19,
	"caps":     20,
	"return":   13,
	"esc":      27,
	"spacebar": 32,
	"pgup":     33,
	"pgdn":     34,
	"ins":      45,
	"del":      46,
	"cmd":      91,
	"meta":     91,
	"super":    91,
	"windows":  91,
	"win":      91,
	"⇧":        16,
	"⌃":        17,
	"⌥":        18,
	"⌘":        91,

	// "numpad +" cannot be written inside a combination string
	"numpad plus":  107,
	"numpad minus": 109,
}

var (
	byName = make(map[string]Code)
	byCode = make(map[Code]string)
)

func init() {
	add := func(name string, code Code) {
		byName[name] = code
		byCode[code] = name
	}

	for c := 'a'; c <= 'z'; c++ {
		add(string(c), Code(c-32))
	}
	for d := 0; d <= 9; d++ {
		add(strconv.Itoa(d), Code(48+d))
		add(fmt.Sprintf("numpad %d", d), Code(96+d))
	}
	for f := 1; f <= 12; f++ {
		add(fmt.Sprintf("f%d", f), Code(111+f))
	}
	for _, entry := range canonical {
		add(entry.name, entry.code)
	}
	for name, code := range aliases {
		byName[name] = code
	}
}

// Lookup returns the code registered for name, ignoring case.
func Lookup(name string) (Code, bool) {
	code, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	return code, ok
}

// NameOf returns the canonical name of a code.
func NameOf(code Code) (string, bool) {
	name, ok := byCode[code]
	return name, ok
}

// Token is one element of a combination: either a symbolic name or a raw code.
type Token struct {
	name    string
	code    Code
	numeric bool
}

// Name builds a symbolic token.
func Name(name string) Token {
	return Token{name: name}
}

// Raw builds a token that is already a native code.
func Raw(code Code) Token {
	return Token{code: code, numeric: true}
}

// ParseToken treats integer strings as raw codes and anything else as a name.
func ParseToken(s string) Token {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseUint(s, 10, 16); err == nil {
		return Raw(Code(n))
	}
	return Name(s)
}

// IsRaw reports whether the token carries a raw code.
func (t Token) IsRaw() bool {
	return t.numeric
}

func (t Token) String() string {
	if t.numeric {
		return strconv.Itoa(int(t.code))
	}
	return strings.ToLower(t.name)
}

// Resolve maps a token to its native code. Raw codes pass through unchanged.
func Resolve(t Token) (Code, error) {
	if t.numeric {
		return t.code, nil
	}
	code, ok := Lookup(t.name)
	if !ok {
		return 0, &UnknownSymbolError{Symbol: t.name}
	}
	return code, nil
}
