// Package script compiles JSON action lists and runs them against the
// device facades.
//
// A script is either a JSON array of steps or an object with a "steps"
// array. Every step has an "op" and the fields that op needs:
//
//	[
//	  {"op": "move", "x": 100, "y": 200, "smooth": true},
//	  {"op": "click", "button": "right"},
//	  {"op": "press", "key": "c", "modifier": ["control", "shift"]},
//	  {"op": "type", "text": "hello", "interval": 20},
//	  {"op": "sleep", "ms": 250},
//	  {"op": "capture", "path": "shot.png", "width": 200, "height": 100}
//	]
package script

import (
	"fmt"
	"math"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/bnema/inputkit/internal/device"
	"github.com/bnema/inputkit/internal/keys"
)

// Op names a step type.
type Op string

const (
	OpMove    Op = "move"
	OpDrag    Op = "drag"
	OpScroll  Op = "scroll"
	OpDown    Op = "down"
	OpUp      Op = "up"
	OpClick   Op = "click"
	OpClickAt Op = "clickAt"
	OpPress   Op = "press"
	OpKeyDown Op = "keyDown"
	OpKeyUp   Op = "keyUp"
	OpType    Op = "type"
	OpSleep   Op = "sleep"
	OpPixel   Op = "pixel"
	OpCapture Op = "capture"
)

// Step is one compiled action.
type Step struct {
	Op Op

	X, Y          int
	Width, Height int
	Relative      bool
	Smooth        bool

	Button    keys.Button
	Key       string
	Modifiers keys.ModifierList
	Text      string
	Interval  int
	Millis    int
	Path      string
}

// Script is a validated list of steps.
type Script struct {
	Steps []Step
}

// Parse validates data and compiles every step. Nothing runs when any
// step is invalid.
func Parse(data []byte) (*Script, error) {
	if !gjson.ValidBytes(data) {
		return nil, &device.InvalidArgumentError{Param: "script", Expected: "valid JSON", Got: truncate(string(data))}
	}

	root := gjson.ParseBytes(data)
	list, prefix := root, "steps"
	if root.IsObject() {
		list = root.Get("steps")
	}
	if !list.IsArray() {
		return nil, &device.InvalidArgumentError{Param: prefix, Expected: "array of steps", Got: truncate(list.Raw)}
	}

	var s Script
	for i, raw := range list.Array() {
		step, err := compile(fields{r: raw, at: fmt.Sprintf("%s[%d]", prefix, i)})
		if err != nil {
			return nil, err
		}
		s.Steps = append(s.Steps, step)
	}
	return &s, nil
}

func compile(f fields) (Step, error) {
	if !f.r.IsObject() {
		return Step{}, f.invalid("", "object", f.r.Raw)
	}
	op, err := f.str("op", true)
	if err != nil {
		return Step{}, err
	}
	step := Step{Op: Op(op)}

	switch step.Op {
	case OpMove, OpDrag, OpScroll:
		if step.X, err = f.integer("x", true, false); err != nil {
			return step, err
		}
		if step.Y, err = f.integer("y", true, false); err != nil {
			return step, err
		}
		if step.Relative, err = f.boolean("relative"); err != nil {
			return step, err
		}
		if step.Op == OpMove {
			step.Smooth, err = f.boolean("smooth")
		}
	case OpDown, OpUp, OpClick:
		step.Button, err = f.button()
	case OpClickAt:
		if step.X, err = f.integer("x", true, false); err != nil {
			return step, err
		}
		if step.Y, err = f.integer("y", true, false); err != nil {
			return step, err
		}
		step.Button, err = f.button()
	case OpPress, OpKeyDown, OpKeyUp:
		if step.Key, err = f.str("key", true); err != nil {
			return step, err
		}
		step.Modifiers, err = f.modifiers()
	case OpType:
		if step.Text, err = f.str("text", true); err != nil {
			return step, err
		}
		step.Interval, err = f.integer("interval", false, true)
	case OpSleep:
		step.Millis, err = f.integer("ms", true, true)
	case OpPixel:
		if step.X, err = f.integer("x", true, true); err != nil {
			return step, err
		}
		step.Y, err = f.integer("y", true, true)
	case OpCapture:
		if step.Path, err = f.str("path", true); err != nil {
			return step, err
		}
		if step.X, err = f.integer("x", false, false); err != nil {
			return step, err
		}
		if step.Y, err = f.integer("y", false, false); err != nil {
			return step, err
		}
		if step.Width, err = f.integer("width", false, true); err != nil {
			return step, err
		}
		step.Height, err = f.integer("height", false, true)
	default:
		return step, f.invalid("op", "a known step type", op)
	}
	return step, err
}

type fields struct {
	r  gjson.Result
	at string
}

func (f fields) invalid(name, expected string, got any) error {
	param := f.at
	if name != "" {
		param += "." + name
	}
	return &device.InvalidArgumentError{Param: param, Expected: expected, Got: got}
}

func (f fields) integer(name string, required, nonNegative bool) (int, error) {
	v := f.r.Get(name)
	if !v.Exists() {
		if required {
			return 0, f.invalid(name, "number", "nothing")
		}
		return 0, nil
	}
	if v.Type != gjson.Number || v.Num != math.Trunc(v.Num) || math.Abs(v.Num) > math.MaxInt32 {
		return 0, f.invalid(name, "integer", v.Raw)
	}
	n := int(v.Num)
	if nonNegative && n < 0 {
		return 0, f.invalid(name, "non-negative integer", n)
	}
	return n, nil
}

func (f fields) str(name string, required bool) (string, error) {
	v := f.r.Get(name)
	if !v.Exists() {
		if required {
			return "", f.invalid(name, "string", "nothing")
		}
		return "", nil
	}
	if v.Type != gjson.String {
		return "", f.invalid(name, "string", v.Raw)
	}
	if required && v.Str == "" && name != "text" {
		return "", f.invalid(name, "non-empty string", `""`)
	}
	return v.Str, nil
}

func (f fields) boolean(name string) (bool, error) {
	v := f.r.Get(name)
	if !v.Exists() {
		return false, nil
	}
	if v.Type != gjson.True && v.Type != gjson.False {
		return false, f.invalid(name, "boolean", v.Raw)
	}
	return v.Bool(), nil
}

func (f fields) button() (keys.Button, error) {
	name, err := f.str("button", false)
	if err != nil || name == "" {
		return "", err
	}
	b := keys.Button(name)
	if !b.Valid() {
		return "", f.invalid("button", `"left", "right" or "middle"`, name)
	}
	return b, nil
}

// modifiers accepts a single modifier name or an array of names.
func (f fields) modifiers() (keys.ModifierList, error) {
	v := f.r.Get("modifier")
	if !v.Exists() || v.Type == gjson.Null {
		return nil, nil
	}

	var names []gjson.Result
	switch {
	case v.Type == gjson.String:
		names = []gjson.Result{v}
	case v.IsArray():
		names = v.Array()
	default:
		return nil, f.invalid("modifier", "modifier name or array of names", v.Raw)
	}

	list := make(keys.ModifierList, 0, len(names))
	for i, n := range names {
		m := keys.Modifier(n.Str)
		if n.Type != gjson.String || !m.Valid() {
			name := "modifier"
			if v.IsArray() {
				name = fmt.Sprintf("modifier[%d]", i)
			}
			return nil, f.invalid(name, `"alt", "command", "control" or "shift"`, n.Raw)
		}
		list = append(list, m)
	}
	return list, nil
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 40 {
		return s[:40] + "..."
	}
	return s
}
