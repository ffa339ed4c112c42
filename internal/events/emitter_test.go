package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitterPublishOrder(t *testing.T) {
	e := NewEmitter[int]()
	var got []string

	_, err := e.Subscribe("a", func(v int) { got = append(got, "first") })
	require.NoError(t, err)
	_, err = e.Subscribe("a", func(v int) { got = append(got, "second") })
	require.NoError(t, err)
	_, err = e.Subscribe("b", func(v int) { got = append(got, "other") })
	require.NoError(t, err)

	e.Publish("a", 1)
	assert.Equal(t, []string{"first", "second"}, got)
	assert.Equal(t, 2, e.ListenerCount("a"))
	assert.ElementsMatch(t, []string{"a", "b"}, e.Tags())
}

func TestEmitterUnsubscribe(t *testing.T) {
	e := NewEmitter[string]()
	calls := 0
	sub, err := e.Subscribe("x", func(string) { calls++ })
	require.NoError(t, err)

	require.NoError(t, e.Unsubscribe(sub))
	e.Publish("x", "ignored")
	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, e.ListenerCount("x"))

	// second detach is a no-op
	require.NoError(t, e.Unsubscribe(sub))
}

func TestEmitterObservers(t *testing.T) {
	e := NewEmitter[struct{}]()
	var added, removed []Subscription
	e.OnListenerAdded(func(s Subscription) error {
		added = append(added, s)
		return nil
	})
	e.OnListenerRemoved(func(s Subscription) error {
		removed = append(removed, s)
		return nil
	})

	sub, err := e.Subscribe("tag", func(struct{}) {})
	require.NoError(t, err)
	require.NoError(t, e.Unsubscribe(sub))
	require.NoError(t, e.Unsubscribe(sub))

	assert.Equal(t, []Subscription{sub}, added)
	assert.Equal(t, []Subscription{sub}, removed, "removing twice notifies once")
}

func TestUnsubscribeObserverFailureKeepsListener(t *testing.T) {
	e := NewEmitter[int]()
	boom := errors.New("observer failed")
	fail := true
	e.OnListenerRemoved(func(Subscription) error {
		if fail {
			return boom
		}
		return nil
	})

	var got []int
	sub, err := e.Subscribe("tag", func(v int) { got = append(got, v) })
	require.NoError(t, err)

	require.ErrorIs(t, e.Unsubscribe(sub), boom)
	assert.Equal(t, 1, e.ListenerCount("tag"))
	e.Publish("tag", 1)

	fail = false
	require.NoError(t, e.Unsubscribe(sub))
	assert.Equal(t, 0, e.ListenerCount("tag"))
	e.Publish("tag", 2)
	assert.Equal(t, []int{1}, got)
}

func TestEmitterAddedObserverErrorRollsBack(t *testing.T) {
	e := NewEmitter[int]()
	boom := errors.New("boom")
	e.OnListenerAdded(func(Subscription) error { return boom })

	_, err := e.Subscribe("tag", func(int) {})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, e.ListenerCount("tag"))
}

func TestEmitterInvoke(t *testing.T) {
	e := NewEmitter[int]()
	var a, b int
	subA, err := e.Subscribe("tag", func(v int) { a += v })
	require.NoError(t, err)
	_, err = e.Subscribe("tag", func(v int) { b += v })
	require.NoError(t, err)

	assert.True(t, e.Invoke(subA, 3))
	assert.Equal(t, 3, a)
	assert.Equal(t, 0, b)

	require.NoError(t, e.Unsubscribe(subA))
	assert.False(t, e.Invoke(subA, 3))
}

func TestEmitterListenerMayUnsubscribeDuringPublish(t *testing.T) {
	e := NewEmitter[int]()
	var sub Subscription
	calls := 0
	sub, err := e.Subscribe("tag", func(int) {
		calls++
		_ = e.Unsubscribe(sub)
	})
	require.NoError(t, err)

	e.Publish("tag", 0)
	e.Publish("tag", 0)
	assert.Equal(t, 1, calls)
}
