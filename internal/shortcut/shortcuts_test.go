package shortcut

import (
	"errors"
	"testing"

	"github.com/bnema/inputkit/internal/events"
	"github.com/bnema/inputkit/internal/keys"
	"github.com/bnema/inputkit/internal/native/nativetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachRegistersResolvedCodes(t *testing.T) {
	hook := nativetest.NewHook()
	s := New(hook)

	fired := 0
	_, err := s.AttachString("Control+Shift+a", func() { fired++ })
	require.NoError(t, err)

	require.Equal(t, 1, hook.Registers)
	regs := hook.Registrations()
	require.Len(t, regs, 1)
	for _, reg := range regs {
		assert.Equal(t, []keys.Code{17, 16, 65}, reg.Codes)
	}

	assert.Equal(t, 1, hook.Trigger(17, 16, 65))
	assert.Equal(t, 1, fired)
}

func TestDetachWithEqualButDistinctCombination(t *testing.T) {
	hook := nativetest.NewHook()
	s := New(hook)

	sub, err := s.AttachString("control+shift+a", func() {})
	require.NoError(t, err)
	other, err := s.AttachString("control+b", func() {})
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())

	combination, err := keys.CombinationOfNames("control", "shift", "a")
	require.NoError(t, err)
	require.NoError(t, s.Detach(combination, sub.ID))

	assert.Equal(t, 1, hook.Unregisters)
	assert.Equal(t, 1, s.Len())
	assert.Len(t, hook.Registrations(), 1)
	assert.True(t, s.registry.Registered(other))
	assert.False(t, s.registry.Registered(sub))
}

func TestSameCombinationDistinctListeners(t *testing.T) {
	hook := nativetest.NewHook()
	s := New(hook)

	var firstCalls, secondCalls int
	first, err := s.AttachString("alt+f4", func() { firstCalls++ })
	require.NoError(t, err)
	_, err = s.AttachString("alt+f4", func() { secondCalls++ })
	require.NoError(t, err)

	assert.Equal(t, 2, hook.Registers)
	assert.Equal(t, 2, s.Len())

	require.NoError(t, s.DetachString("ALT+F4", first.ID))

	assert.Equal(t, 1, hook.Trigger(18, 115))
	assert.Equal(t, 0, firstCalls)
	assert.Equal(t, 1, secondCalls)
}

func TestDetachUnknownIsNoop(t *testing.T) {
	hook := nativetest.NewHook()
	s := New(hook)

	require.NoError(t, s.DetachString("control+a", 42))
	assert.Equal(t, 0, hook.Unregisters)

	sub, err := s.AttachString("control+a", func() {})
	require.NoError(t, err)

	// right combination, wrong listener
	require.NoError(t, s.DetachString("control+a", sub.ID+1))
	// right listener, different combination
	require.NoError(t, s.DetachString("control+b", sub.ID))
	assert.Equal(t, 0, hook.Unregisters)

	require.NoError(t, s.DetachString("control+a", sub.ID))
	require.NoError(t, s.DetachString("control+a", sub.ID))
	assert.Equal(t, 1, hook.Unregisters)
}

func TestReattachAfterDetachRegistersAgain(t *testing.T) {
	hook := nativetest.NewHook()
	s := New(hook)

	for i := 1; i <= 3; i++ {
		sub, err := s.AttachString("control+a", func() {})
		require.NoError(t, err)
		assert.Equal(t, i, hook.Registers)
		require.NoError(t, s.DetachString("control+a", sub.ID))
		assert.Equal(t, i, hook.Unregisters)
	}
	assert.Equal(t, 0, s.Len())
}

func TestAttachValidation(t *testing.T) {
	hook := nativetest.NewHook()
	s := New(hook)

	_, err := s.AttachString("", func() {})
	assert.ErrorIs(t, err, keys.ErrInvalidCombination)

	_, err = s.AttachString("control+", func() {})
	assert.ErrorIs(t, err, keys.ErrInvalidCombination)

	_, err = s.Attach(keys.Combination{}, func() {})
	assert.ErrorIs(t, err, keys.ErrInvalidCombination)

	_, err = s.AttachString("control+hyper", func() {})
	assert.ErrorIs(t, err, keys.ErrUnknownSymbol)

	assert.Equal(t, 0, hook.Registers)
	assert.Equal(t, 0, s.Len())
}

func TestAttachNativeFailureRollsBack(t *testing.T) {
	hook := nativetest.NewHook()
	boom := errors.New("hook refused")
	hook.RegisterErr = boom
	s := New(hook)

	_, err := s.AttachString("control+a", func() {})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.emitter.ListenerCount("17+65"))
}

func TestDetachNativeFailureKeepsRegistration(t *testing.T) {
	hook := nativetest.NewHook()
	s := New(hook)

	fired := 0
	sub, err := s.AttachString("control+a", func() { fired++ })
	require.NoError(t, err)

	boom := errors.New("hook refused")
	hook.UnregisterErr = boom
	err = s.DetachString("control+a", sub.ID)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, s.Len())
	assert.Len(t, hook.Registrations(), 1)
	assert.Equal(t, 1, hook.Trigger(17, 65))
	assert.Equal(t, 1, fired)

	hook.UnregisterErr = nil
	require.NoError(t, s.DetachString("control+a", sub.ID))
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, hook.Registrations())
	assert.Equal(t, 2, hook.Unregisters)
}

func TestRawCodesAndNamesShareRegistrations(t *testing.T) {
	hook := nativetest.NewHook()
	s := New(hook)

	sub, err := s.AttachString("17+65", func() {})
	require.NoError(t, err)

	combination, err := keys.CombinationOf(keys.Name("ctrl"), keys.Name("a"))
	require.NoError(t, err)
	require.NoError(t, s.Detach(combination, sub.ID))
	assert.Equal(t, 1, hook.Unregisters)
}

func TestDetachAll(t *testing.T) {
	hook := nativetest.NewHook()
	s := New(hook)

	for _, c := range []string{"control+a", "control+b", "control+a"} {
		_, err := s.AttachString(c, func() {})
		require.NoError(t, err)
	}
	require.NoError(t, s.DetachAll())
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 3, hook.Unregisters)
	assert.Empty(t, hook.Registrations())
}

func TestTriggerAfterDetachDoesNotCallListener(t *testing.T) {
	hook := nativetest.NewHook()
	s := New(hook)

	calls := 0
	sub, err := s.AttachString("shift+x", func() { calls++ })
	require.NoError(t, err)

	// keep the callback the hook was given and fire it after detaching
	var trigger func()
	for _, reg := range hook.Registrations() {
		trigger = reg.OnTrigger
	}
	require.NotNil(t, trigger)
	require.NoError(t, s.DetachString("shift+x", sub.ID))

	trigger()
	assert.Equal(t, 0, calls)
	assert.IsType(t, events.Subscription{}, sub)
}
