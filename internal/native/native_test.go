package native

import (
	"math"
	"testing"

	"github.com/bnema/inputkit/internal/keys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawEventInt(t *testing.T) {
	ev := RawEvent{Kind: KindPointerMove, Fields: map[string]any{
		"i16":  int16(-4),
		"u16":  uint16(7),
		"f64":  float64(12.9),
		"nan":  math.NaN(),
		"text": "12",
	}}

	tests := []struct {
		field  string
		want   int
		wantOK bool
	}{
		{"i16", -4, true},
		{"u16", 7, true},
		{"f64", 12, true},
		{"nan", 0, false},
		{"text", 0, false},
		{"missing", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got, ok := ev.Int(tt.field)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRawEventNilFields(t *testing.T) {
	var ev RawEvent
	_, ok := ev.Int(FieldX)
	assert.False(t, ok)
	_, ok = ev.Bool(FieldShift)
	assert.False(t, ok)
	_, ok = ev.Rune(FieldKeychar)
	assert.False(t, ok)
}

func TestRawEventRune(t *testing.T) {
	ev := RawEvent{Fields: map[string]any{"r": 'x', "s": "é"}}
	r, ok := ev.Rune("r")
	require.True(t, ok)
	assert.Equal(t, 'x', r)
	r, ok = ev.Rune("s")
	require.True(t, ok)
	assert.Equal(t, 'é', r)
}

func TestChordTrackerFiresOncePerPress(t *testing.T) {
	tracker := NewChordTracker()
	fired := 0
	tracker.Add([]keys.Code{17, 65}, func() { fired++ })

	tracker.KeyDown(65)
	assert.Equal(t, 0, fired, "partial chord must not fire")

	tracker.KeyDown(17)
	assert.Equal(t, 1, fired)

	// key repeat while held
	tracker.KeyDown(65)
	assert.Equal(t, 1, fired)

	tracker.KeyUp(65)
	tracker.KeyDown(65)
	assert.Equal(t, 2, fired)
}

func TestChordTrackerRemove(t *testing.T) {
	tracker := NewChordTracker()
	firedA, firedB := 0, 0
	a := tracker.Add([]keys.Code{17, 65}, func() { firedA++ })
	tracker.Add([]keys.Code{17, 65}, func() { firedB++ })
	require.Equal(t, 2, tracker.Len())

	assert.True(t, tracker.Remove(a))
	assert.False(t, tracker.Remove(a))

	tracker.KeyDown(17)
	tracker.KeyDown(65)
	assert.Equal(t, 0, firedA)
	assert.Equal(t, 1, firedB)
}

func TestChordTrackerCallbackMayMutate(t *testing.T) {
	tracker := NewChordTracker()
	var h Handle
	h = tracker.Add([]keys.Code{16}, func() { tracker.Remove(h) })

	tracker.KeyDown(16)
	assert.Equal(t, 0, tracker.Len())
}
