package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/inputkit/internal/events"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "sub", "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveAndEntries(t *testing.T) {
	db := openTestDB(t)
	base := time.UnixMilli(1_700_000_000_000)

	click := events.PointerEvent{Button: 1, Clicks: 1, X: 10, Y: 20}
	key := events.KeyEvent{Key: "a", Code: 65, Shift: true}
	require.NoError(t, db.Save("s1", base, events.Event{Device: events.DevicePointer, Tag: events.TagClick, Pointer: &click}))
	require.NoError(t, db.Save("s1", base.Add(time.Second), events.Event{Device: events.DeviceKeyboard, Tag: events.TagDown, Key: &key}))
	require.NoError(t, db.Save("s2", base.Add(2*time.Second), events.Event{Device: events.DeviceKeyboard, Tag: events.TagUp, Key: &key}))

	all, err := db.Entries(Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "keyboard.up", all[0].Channel())
	assert.Equal(t, "pointer.click", all[2].Channel())
	assert.JSONEq(t, `{"button":1,"clicks":1,"x":10,"y":20}`, all[2].Payload)
	assert.True(t, all[2].Recorded.Equal(base))

	s1, err := db.Entries(Filter{Session: "s1"})
	require.NoError(t, err)
	assert.Len(t, s1, 2)

	kb, err := db.Entries(Filter{Device: events.DeviceKeyboard, Limit: 1})
	require.NoError(t, err)
	require.Len(t, kb, 1)
	assert.Equal(t, "s2", kb[0].Session)

	count, err := db.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestSessionsAndPrune(t *testing.T) {
	db := openTestDB(t)
	base := time.UnixMilli(1_700_000_000_000)
	ev := events.Event{Device: events.DevicePointer, Tag: events.TagMove, Pointer: &events.PointerEvent{}}

	require.NoError(t, db.Save("old", base, ev))
	require.NoError(t, db.Save("new", base.Add(time.Hour), ev))
	require.NoError(t, db.Save("new", base.Add(2*time.Hour), ev))

	sessions, err := db.Sessions()
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "new", sessions[0].ID)
	assert.Equal(t, 2, sessions[0].Count)

	removed, err := db.Prune(base.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestRecorderStoresPublishedEvents(t *testing.T) {
	db := openTestDB(t)
	source := events.NewEmitter[events.Event]()

	rec, err := NewRecorder(db, source)
	require.NoError(t, err)
	_, err = uuid.Parse(rec.Session())
	require.NoError(t, err)

	wheel := events.WheelEvent{Amount: 3, Rotation: -1}
	source.Publish(events.AllTag, events.Event{Device: events.DevicePointer, Tag: events.TagWheel, Wheel: &wheel})
	source.Publish(events.AllTag, events.Event{Device: events.DeviceKeyboard, Tag: events.TagPress, Key: &events.KeyEvent{Key: "x"}})

	require.NoError(t, rec.Close())
	require.NoError(t, rec.Close())
	assert.Equal(t, 0, source.ListenerCount(events.AllTag))

	// events published after Close are ignored
	source.Publish(events.AllTag, events.Event{Device: events.DeviceKeyboard, Tag: events.TagUp, Key: &events.KeyEvent{}})

	entries, err := db.Entries(Filter{Session: rec.Session()})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 0, rec.Dropped())
}
