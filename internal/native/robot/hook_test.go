package robot

import (
	"testing"

	hook "github.com/robotn/gohook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/inputkit/internal/events"
	"github.com/bnema/inputkit/internal/keys"
	"github.com/bnema/inputkit/internal/native"
)

// X11 delivers keysyms as Rawcode; Keycode is uiohook's virtual code.
var (
	x11ControlL = hook.Event{Keycode: 0x001D, Rawcode: 0xffe3}
	x11ControlR = hook.Event{Keycode: 0x0E1D, Rawcode: 0xffe4}
	x11A        = hook.Event{Keycode: 0x001E, Rawcode: 0x0061}
	x11K        = hook.Event{Keycode: 0x0025, Rawcode: 0x006b}
)

func keyEvent(base hook.Event, kind uint8, mask uint16) hook.Event {
	base.Kind = kind
	base.Mask = mask
	return base
}

func startedHook() *Hook {
	h := NewHook()
	h.running = true
	return h
}

func TestConvertKinds(t *testing.T) {
	tests := []struct {
		name string
		kind uint8
		want native.RawKind
		ok   bool
	}{
		{"typed key", hook.KeyDown, native.KindKeyPress, true},
		{"pressed key", hook.KeyHold, native.KindKeyDown, true},
		{"released key", hook.KeyUp, native.KindKeyUp, true},
		{"clicked button", hook.MouseUp, native.KindPointerClick, true},
		{"pressed button", hook.MouseHold, native.KindPointerDown, true},
		{"move", hook.MouseMove, native.KindPointerMove, true},
		{"drag", hook.MouseDrag, native.KindPointerDrag, true},
		{"wheel", hook.MouseWheel, native.KindPointerWheel, true},
		{"released button", hook.MouseDown, "", false},
		{"hook enabled", hook.HookEnabled, "", false},
		{"fake", hook.FakeEvent, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, ok := convert(hook.Event{Kind: tt.kind})
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, raw.Kind)
		})
	}
}

func TestConvertKeyFields(t *testing.T) {
	t.Run("pressed key reports resolver code", func(t *testing.T) {
		raw, ok := convert(keyEvent(x11A, hook.KeyHold, maskCtrlL))
		require.True(t, ok)

		code, ok := raw.Int(native.FieldRawcode)
		require.True(t, ok)
		assert.Equal(t, 65, code)
		assert.NotContains(t, raw.Fields, native.FieldKeychar)

		ev := events.NormalizeKey(raw, false)
		assert.Equal(t, "a", ev.Key)
		assert.True(t, ev.Ctrl)
		assert.False(t, ev.Shift)
	})

	t.Run("typed key uses the character", func(t *testing.T) {
		typed := hook.Event{Kind: hook.KeyDown, Rawcode: 0x0041, Keychar: 'A', Mask: maskShiftR}
		raw, ok := convert(typed)
		require.True(t, ok)

		code, _ := raw.Int(native.FieldRawcode)
		assert.Equal(t, 65, code)
		r, ok := raw.Rune(native.FieldKeychar)
		require.True(t, ok)
		assert.Equal(t, 'A', r)

		ev := events.NormalizeKey(raw, true)
		assert.Equal(t, "a", ev.Key)
		assert.True(t, ev.Shift)
	})

	t.Run("unknown key has no code", func(t *testing.T) {
		raw, ok := convert(hook.Event{Kind: hook.KeyHold, Keycode: 0xE022, Rawcode: 0xff14})
		require.True(t, ok)
		assert.NotContains(t, raw.Fields, native.FieldRawcode)
		assert.Empty(t, events.NormalizeKey(raw, false).Key)
	})
}

func TestConvertModifierMask(t *testing.T) {
	tests := []struct {
		name                   string
		mask                   uint16
		shift, ctrl, meta, alt bool
	}{
		{"none", 0, false, false, false, false},
		{"left shift", maskShiftL, true, false, false, false},
		{"right shift", maskShiftR, true, false, false, false},
		{"right control", maskCtrlR, false, true, false, false},
		{"left meta", maskMetaL, false, false, true, false},
		{"right alt", maskAltR, false, false, false, true},
		{"all", maskShiftL | maskCtrlR | maskMetaR | maskAltL, true, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, ok := convert(keyEvent(x11K, hook.KeyUp, tt.mask))
			require.True(t, ok)

			ev := events.NormalizeKey(raw, false)
			assert.Equal(t, tt.shift, ev.Shift)
			assert.Equal(t, tt.ctrl, ev.Ctrl)
			assert.Equal(t, tt.meta, ev.Meta)
			assert.Equal(t, tt.alt, ev.Alt)
		})
	}
}

func TestConvertPointerFields(t *testing.T) {
	raw, ok := convert(hook.Event{Kind: hook.MouseHold, Button: 1, Clicks: 2, X: 10, Y: -5, Keycode: 7})
	require.True(t, ok)
	assert.Len(t, raw.Fields, 4)

	ev := events.NormalizePointer(raw)
	assert.Equal(t, events.PointerEvent{Button: 1, Clicks: 2, X: 10, Y: -5}, ev)

	raw, ok = convert(hook.Event{Kind: hook.MouseWheel, Amount: 3, Clicks: 1, Direction: 3, Rotation: -1, X: 4, Y: 6})
	require.True(t, ok)
	assert.NotContains(t, raw.Fields, native.FieldButton)

	wheel := events.NormalizeWheel(raw)
	assert.Equal(t, 3, wheel.Amount)
	assert.Equal(t, -1, wheel.Rotation)
	assert.Equal(t, 3, wheel.Direction)
	assert.Equal(t, 4, wheel.X)
	assert.Equal(t, 6, wheel.Y)
}

func TestVCCodes(t *testing.T) {
	tests := []struct {
		vc   uint16
		name string
	}{
		{0x001E, "a"},
		{0x002C, "z"},
		{0x000B, "0"},
		{0x001D, "control"},
		{0x0E1D, "control"},
		{0x002A, "shift"},
		{0x0036, "shift"},
		{0x0038, "alt"},
		{0x0E38, "alt"},
		{0x0E5B, "command"},
		{0x000E, "backspace"},
		{0x0E53, "delete"},
		{0x0057, "f11"},
		{0x0058, "f12"},
		{0x0045, "num lock"},
		{0x004F, "numpad 1"},
		{0x004E, "numpad +"},
		{0xE048, "up"},
		{0x001C, "enter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want, ok := keys.Lookup(tt.name)
			require.True(t, ok)
			assert.Equal(t, want, vcCodes[tt.vc], "vc 0x%04X", tt.vc)
		})
	}
}

func TestDispatchFiresChord(t *testing.T) {
	combination, err := keys.ParseCombination("ctrl+a")
	require.NoError(t, err)
	codes, err := combination.Resolve()
	require.NoError(t, err)

	t.Run("left control", func(t *testing.T) {
		h := startedHook()
		fired := 0
		_, err := h.RegisterShortcut(codes, func() { fired++ })
		require.NoError(t, err)

		h.dispatch(keyEvent(x11ControlL, hook.KeyHold, maskCtrlL))
		h.dispatch(keyEvent(x11A, hook.KeyHold, maskCtrlL))
		assert.Equal(t, 1, fired)

		// held keys repeat without firing again
		h.dispatch(keyEvent(x11A, hook.KeyHold, maskCtrlL))
		assert.Equal(t, 1, fired)

		h.dispatch(keyEvent(x11A, hook.KeyUp, maskCtrlL))
		h.dispatch(keyEvent(x11A, hook.KeyHold, maskCtrlL))
		assert.Equal(t, 2, fired)
	})

	t.Run("right control", func(t *testing.T) {
		h := startedHook()
		fired := 0
		_, err := h.RegisterShortcut(codes, func() { fired++ })
		require.NoError(t, err)

		h.dispatch(keyEvent(x11ControlR, hook.KeyHold, maskCtrlR))
		h.dispatch(keyEvent(x11A, hook.KeyHold, maskCtrlR))
		assert.Equal(t, 1, fired)
	})

	t.Run("unregistered chord stays silent", func(t *testing.T) {
		h := startedHook()
		fired := 0
		handle, err := h.RegisterShortcut(codes, func() { fired++ })
		require.NoError(t, err)
		require.NoError(t, h.UnregisterShortcut(handle))

		h.dispatch(keyEvent(x11ControlL, hook.KeyHold, maskCtrlL))
		h.dispatch(keyEvent(x11A, hook.KeyHold, maskCtrlL))
		assert.Zero(t, fired)
	})
}

func TestDispatchDeliversToHandlers(t *testing.T) {
	h := startedHook()
	var got []events.KeyEvent
	h.On(native.KindKeyDown, func(raw native.RawEvent) {
		got = append(got, events.NormalizeKey(raw, false))
	})

	h.dispatch(keyEvent(x11K, hook.KeyHold, 0))
	h.dispatch(keyEvent(x11K, hook.KeyUp, 0))
	h.dispatch(hook.Event{Kind: hook.HookEnabled})

	require.Len(t, got, 1)
	assert.Equal(t, "k", got[0].Key)
	assert.Equal(t, 75, got[0].Code)
}

func TestRegisterShortcutBeforeStart(t *testing.T) {
	h := NewHook()
	_, err := h.RegisterShortcut([]keys.Code{17, 65}, func() {})
	assert.ErrorIs(t, err, native.ErrHookNotStarted)
}
