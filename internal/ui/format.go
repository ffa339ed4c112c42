package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/bnema/inputkit/internal/events"
	"github.com/bnema/inputkit/internal/journal"
)

const timeLayout = "15:04:05.000"

// Describe returns a plain one-line summary of an event payload
func Describe(ev events.Event) string {
	switch {
	case ev.Pointer != nil:
		p := ev.Pointer
		if ev.Tag == events.TagMove || ev.Tag == events.TagDrag {
			return fmt.Sprintf("x=%d y=%d", p.X, p.Y)
		}
		return fmt.Sprintf("button=%d clicks=%d x=%d y=%d", p.Button, p.Clicks, p.X, p.Y)

	case ev.Wheel != nil:
		w := ev.Wheel
		return fmt.Sprintf("amount=%d rotation=%d direction=%d x=%d y=%d", w.Amount, w.Rotation, w.Direction, w.X, w.Y)

	case ev.Key != nil:
		k := ev.Key
		var b strings.Builder
		for _, m := range []struct {
			on   bool
			name string
		}{{k.Ctrl, "ctrl"}, {k.Alt, "alt"}, {k.Shift, "shift"}, {k.Meta, "meta"}} {
			if m.on {
				b.WriteString(m.name)
				b.WriteString("+")
			}
		}
		key := k.Key
		if key == "" {
			key = "?"
		}
		b.WriteString(key)
		return fmt.Sprintf("%s code=%d", b.String(), k.Code)
	}
	return ""
}

// FormatEvent renders one monitor line
func FormatEvent(at time.Time, ev events.Event) string {
	style := PointerChannelStyle
	if ev.Device == events.DeviceKeyboard {
		style = KeyboardChannelStyle
	}
	return SubtleStyle.Render(at.Format(timeLayout)) + " " +
		style.Render(padRight(ev.Channel(), 16)) +
		TextStyle.Render(Describe(ev))
}

// FormatEntry renders one journal row
func FormatEntry(e journal.Entry) string {
	style := PointerChannelStyle
	if e.Device == events.DeviceKeyboard {
		style = KeyboardChannelStyle
	}
	return SubtleStyle.Render(e.Recorded.Format("2006-01-02 "+timeLayout)) + " " +
		style.Render(padRight(e.Channel(), 16)) +
		TextStyle.Render(e.Payload)
}
