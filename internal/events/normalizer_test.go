package events

import (
	"encoding/json"
	"testing"

	"github.com/bnema/inputkit/internal/native"
	"github.com/bnema/inputkit/internal/native/nativetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func attached(t *testing.T) (*Normalizer, *nativetest.Hook) {
	t.Helper()
	hook := nativetest.NewHook()
	n := NewNormalizer()
	n.Attach(hook)
	return n, hook
}

func TestAttachSubscribesEveryKind(t *testing.T) {
	_, hook := attached(t)
	for _, kind := range native.RawKinds {
		assert.Equal(t, 1, hook.HandlerCount(kind), kind)
	}
}

func TestPointerEventsKeepDocumentedFields(t *testing.T) {
	kinds := map[native.RawKind]string{
		native.KindPointerDown:  TagDown,
		native.KindPointerMove:  TagMove,
		native.KindPointerClick: TagClick,
		native.KindPointerDrag:  TagDrag,
	}

	for kind, tag := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			n, hook := attached(t)
			var got []PointerEvent
			_, err := n.Pointer.Subscribe(tag, func(ev PointerEvent) { got = append(got, ev) })
			require.NoError(t, err)

			hook.Emit(native.RawEvent{Kind: kind, Fields: map[string]any{
				"button":   uint16(2),
				"clicks":   uint16(1),
				"x":        int16(640),
				"y":        int16(480),
				"mask":     uint16(0xff),
				"reserved": "leak",
			}})

			require.Len(t, got, 1)
			assert.Equal(t, PointerEvent{Button: 2, Clicks: 1, X: 640, Y: 480}, got[0])

			// the serialized form carries exactly the documented fields
			data, err := json.Marshal(got[0])
			require.NoError(t, err)
			var fields map[string]any
			require.NoError(t, json.Unmarshal(data, &fields))
			assert.ElementsMatch(t, []string{"button", "clicks", "x", "y"}, mapKeys(fields))
		})
	}
}

func TestWheelEvent(t *testing.T) {
	n, hook := attached(t)
	var got WheelEvent
	_, err := n.Wheel.Subscribe(TagWheel, func(ev WheelEvent) { got = ev })
	require.NoError(t, err)

	hook.Emit(native.RawEvent{Kind: native.KindPointerWheel, Fields: map[string]any{
		"amount": uint16(3), "clicks": uint16(1), "direction": uint8(3),
		"rotation": int32(-1), "x": int16(5), "y": int16(6), "extra": true,
	}})

	assert.Equal(t, WheelEvent{Amount: 3, Clicks: 1, Direction: 3, Rotation: -1, X: 5, Y: 6}, got)
}

func TestKeyEvents(t *testing.T) {
	n, hook := attached(t)
	got := map[string]KeyEvent{}
	for _, tag := range []string{TagPress, TagDown, TagUp} {
		tag := tag
		_, err := n.Keyboard.Subscribe(tag, func(ev KeyEvent) { got[tag] = ev })
		require.NoError(t, err)
	}

	fields := map[string]any{"rawcode": uint16(65), "keychar": 'A', "shift": true, "ctrl": false, "alt": false, "meta": false}
	hook.Emit(native.RawEvent{Kind: native.KindKeyDown, Fields: fields})
	hook.Emit(native.RawEvent{Kind: native.KindKeyPress, Fields: fields})
	hook.Emit(native.RawEvent{Kind: native.KindKeyUp, Fields: fields})

	want := KeyEvent{Key: "a", Code: 65, Shift: true}
	assert.Equal(t, want, got[TagDown])
	assert.Equal(t, want, got[TagPress])
	assert.Equal(t, want, got[TagUp])
}

func TestKeyNameFromCodeIsStable(t *testing.T) {
	raw := native.RawEvent{Kind: native.KindKeyDown, Fields: map[string]any{"rawcode": uint16(17)}}
	first := NormalizeKey(raw, false)
	second := NormalizeKey(raw, false)
	assert.Equal(t, "control", first.Key)
	assert.Equal(t, first, second)
}

func TestMalformedEventsNeverFail(t *testing.T) {
	n, hook := attached(t)
	var pointer []PointerEvent
	var key []KeyEvent
	_, _ = n.Pointer.Subscribe(TagMove, func(ev PointerEvent) { pointer = append(pointer, ev) })
	_, _ = n.Keyboard.Subscribe(TagPress, func(ev KeyEvent) { key = append(key, ev) })

	assert.NotPanics(t, func() {
		hook.Emit(native.RawEvent{Kind: native.KindPointerMove})
		hook.Emit(native.RawEvent{Kind: native.KindPointerMove, Fields: map[string]any{"x": "nope", "y": 3.0}})
		hook.Emit(native.RawEvent{Kind: native.KindKeyPress, Fields: map[string]any{"keychar": 7}})
		n.Handle("unknown", native.RawEvent{})
	})

	require.Len(t, pointer, 2)
	assert.Equal(t, PointerEvent{}, pointer[0])
	assert.Equal(t, PointerEvent{Y: 3}, pointer[1])
	require.Len(t, key, 1)
	assert.Equal(t, KeyEvent{}, key[0])
}

func TestGlobalChannelPreservesOrder(t *testing.T) {
	n, hook := attached(t)
	var channels []string
	_, err := n.Global.Subscribe(AllTag, func(ev Event) { channels = append(channels, ev.Channel()) })
	require.NoError(t, err)
	var wheels int
	_, err = n.Global.Subscribe(GenericTag(DevicePointer, TagWheel), func(ev Event) {
		wheels++
		assert.NotNil(t, ev.Wheel)
		assert.IsType(t, WheelEvent{}, ev.Payload())
	})
	require.NoError(t, err)

	hook.Emit(native.RawEvent{Kind: native.KindPointerDown})
	hook.Emit(native.RawEvent{Kind: native.KindKeyDown})
	hook.Emit(native.RawEvent{Kind: native.KindPointerWheel})
	hook.Emit(native.RawEvent{Kind: native.KindKeyUp})

	assert.Equal(t, []string{"pointer.down", "keyboard.down", "pointer.wheel", "keyboard.up"}, channels)
	assert.Equal(t, 1, wheels)
}

func mapKeys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
