//go:build linux

package uinput

import (
	"errors"
	"testing"

	"github.com/ThomasT75/uinput"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type move struct{ dx, dy int32 }

// recordingMouse records relative moves; unused methods panic through the nil embed.
type recordingMouse struct {
	uinput.Mouse
	moves   []move
	moveErr error
}

func (m *recordingMouse) Move(x, y int32) error {
	if m.moveErr != nil {
		return m.moveErr
	}
	m.moves = append(m.moves, move{x, y})
	return nil
}

func TestMoveToTracksPositionOnlyOnSuccess(t *testing.T) {
	mouse := &recordingMouse{}
	e := &Engine{mouse: mouse}

	require.NoError(t, e.MoveTo(10, 20))
	x, y := e.Position()
	assert.Equal(t, 10, x)
	assert.Equal(t, 20, y)

	boom := errors.New("write failed")
	mouse.moveErr = boom
	require.ErrorIs(t, e.MoveTo(50, 50), boom)
	x, y = e.Position()
	assert.Equal(t, 10, x)
	assert.Equal(t, 20, y)

	mouse.moveErr = nil
	require.NoError(t, e.MoveTo(50, 50))
	assert.Equal(t, []move{{10, 20}, {40, 30}}, mouse.moves)
}

func TestMoveToSamePositionSendsNothing(t *testing.T) {
	mouse := &recordingMouse{}
	e := &Engine{mouse: mouse}

	require.NoError(t, e.MoveTo(0, 0))
	assert.Empty(t, mouse.moves)
}
