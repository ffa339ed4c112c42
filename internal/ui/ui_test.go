package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bnema/inputkit/internal/events"
	"github.com/bnema/inputkit/internal/journal"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		ev   events.Event
		want string
	}{
		{
			name: "click",
			ev:   events.Event{Device: events.DevicePointer, Tag: events.TagClick, Pointer: &events.PointerEvent{Button: 1, Clicks: 2, X: 3, Y: 4}},
			want: "button=1 clicks=2 x=3 y=4",
		},
		{
			name: "move only shows position",
			ev:   events.Event{Device: events.DevicePointer, Tag: events.TagMove, Pointer: &events.PointerEvent{X: 5, Y: 6}},
			want: "x=5 y=6",
		},
		{
			name: "wheel",
			ev:   events.Event{Device: events.DevicePointer, Tag: events.TagWheel, Wheel: &events.WheelEvent{Amount: 3, Rotation: -1, Direction: 3}},
			want: "amount=3 rotation=-1 direction=3 x=0 y=0",
		},
		{
			name: "key with modifiers",
			ev:   events.Event{Device: events.DeviceKeyboard, Tag: events.TagDown, Key: &events.KeyEvent{Key: "k", Code: 75, Ctrl: true, Shift: true}},
			want: "ctrl+shift+k code=75",
		},
		{
			name: "unnamed key",
			ev:   events.Event{Device: events.DeviceKeyboard, Tag: events.TagUp, Key: &events.KeyEvent{Code: 255}},
			want: "? code=255",
		},
		{
			name: "no payload",
			ev:   events.Event{Device: events.DevicePointer, Tag: events.TagMove},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Describe(tt.ev); got != tt.want {
				t.Errorf("Describe() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatEvent(t *testing.T) {
	at := time.Date(2024, 1, 2, 13, 14, 15, 16_000_000, time.Local)
	ev := events.Event{Device: events.DeviceKeyboard, Tag: events.TagPress, Key: &events.KeyEvent{Key: "a", Code: 65}}

	got := FormatEvent(at, ev)
	for _, want := range []string{"13:14:15.016", "keyboard.press", "a code=65"} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatEvent() = %q, missing %q", got, want)
		}
	}
}

func TestFormatEntry(t *testing.T) {
	e := journal.Entry{
		Recorded: time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local),
		Device:   events.DevicePointer,
		Tag:      events.TagClick,
		Payload:  `{"button":1}`,
	}

	got := FormatEntry(e)
	for _, want := range []string{"2024-01-02 03:04:05.000", "pointer.click", `{"button":1}`} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatEntry() = %q, missing %q", got, want)
		}
	}
}

func TestFormatResult(t *testing.T) {
	if got := FormatResult(true, "done"); !strings.Contains(got, IconSuccess) || !strings.Contains(got, "done") {
		t.Errorf("FormatResult(true) = %q", got)
	}
	if got := FormatResult(false, "failed"); !strings.Contains(got, IconError) || !strings.Contains(got, "failed") {
		t.Errorf("FormatResult(false) = %q", got)
	}
}

func TestMonitorModel(t *testing.T) {
	click := events.Event{Device: events.DevicePointer, Tag: events.TagClick, Pointer: &events.PointerEvent{Button: 1, Clicks: 1}}

	t.Run("renders before sizing", func(t *testing.T) {
		m := NewMonitorModel("inputkit monitor", nil)
		if !strings.Contains(m.View(), "Initializing") {
			t.Error("View should show initializing before the first window size")
		}
	})

	t.Run("records events", func(t *testing.T) {
		m := NewMonitorModel("inputkit monitor", nil)
		m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})
		m.Update(EventMsg{At: time.Now(), Event: click})
		m.Update(EventMsg{At: time.Now(), Event: click})

		if m.total != 2 {
			t.Errorf("total = %d, want 2", m.total)
		}
		if m.counts["pointer.click"] != 2 {
			t.Errorf("pointer.click count = %d, want 2", m.counts["pointer.click"])
		}
		if len(m.lines) != 2 {
			t.Errorf("lines = %d, want 2", len(m.lines))
		}
		view := m.View()
		if !strings.Contains(view, "inputkit monitor") || !strings.Contains(view, "pointer.click:2") {
			t.Errorf("View missing title or counters:\n%s", view)
		}
	})

	t.Run("pause keeps counting", func(t *testing.T) {
		m := NewMonitorModel("monitor", nil)
		m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
		if !m.paused {
			t.Fatal("p should pause")
		}

		m.Update(EventMsg{At: time.Now(), Event: click})
		if m.total != 1 || len(m.lines) != 0 {
			t.Errorf("paused monitor: total=%d lines=%d, want 1 and 0", m.total, len(m.lines))
		}
		if !strings.Contains(m.View(), "paused") {
			t.Error("View should show the paused state")
		}
	})

	t.Run("clear empties the log", func(t *testing.T) {
		m := NewMonitorModel("monitor", nil)
		m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
		m.Update(EventMsg{At: time.Now(), Event: click})
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
		if len(m.lines) != 0 {
			t.Errorf("lines = %d after clear, want 0", len(m.lines))
		}
	})

	t.Run("quits on q", func(t *testing.T) {
		m := NewMonitorModel("monitor", nil)
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
		if cmd == nil {
			t.Fatal("expected a quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("q should return tea.Quit")
		}
	})

	t.Run("stream closed", func(t *testing.T) {
		m := NewMonitorModel("monitor", nil)
		m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
		m.Update(StreamClosedMsg{})
		if !strings.Contains(m.View(), "stream closed") {
			t.Error("View should report the closed stream")
		}
	})
}

func TestStream(t *testing.T) {
	source := events.NewEmitter[events.Event]()
	stream, err := NewStream(source, 1)
	if err != nil {
		t.Fatalf("NewStream() error = %v", err)
	}

	ev := events.Event{Device: events.DeviceKeyboard, Tag: events.TagUp, Key: &events.KeyEvent{Key: "z"}}
	source.Publish(events.AllTag, ev)
	source.Publish(events.AllTag, ev)

	msg, ok := stream.Next()().(EventMsg)
	if !ok {
		t.Fatal("Next() should deliver an EventMsg")
	}
	if msg.Event.Key.Key != "z" {
		t.Errorf("event key = %q, want z", msg.Event.Key.Key)
	}
	if stream.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", stream.Dropped())
	}

	if err := stream.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := stream.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if source.ListenerCount(events.AllTag) != 0 {
		t.Error("Close should unsubscribe")
	}
	if _, ok := stream.Next()().(StreamClosedMsg); !ok {
		t.Error("Next() after Close should report StreamClosedMsg")
	}
}
