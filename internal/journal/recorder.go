package journal

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bnema/inputkit/internal/events"
	"github.com/bnema/inputkit/internal/logger"
)

const queueSize = 1024

type queued struct {
	at time.Time
	ev events.Event
}

// Recorder copies events from the generic channel into the journal. Writes
// happen on a separate goroutine so the hook is never blocked on disk.
type Recorder struct {
	db      *DB
	session string
	source  *events.Emitter[events.Event]
	sub     events.Subscription

	queue   chan queued
	done    chan struct{}
	once    sync.Once
	mu      sync.Mutex
	closed  bool
	dropped int
}

// NewRecorder starts recording everything published on source under a new session id
func NewRecorder(db *DB, source *events.Emitter[events.Event]) (*Recorder, error) {
	r := &Recorder{
		db:      db,
		session: uuid.NewString(),
		source:  source,
		queue:   make(chan queued, queueSize),
		done:    make(chan struct{}),
	}

	sub, err := source.Subscribe(events.AllTag, r.enqueue)
	if err != nil {
		return nil, err
	}
	r.sub = sub

	go r.drain()
	logger.Debugf("Journal session %s started", r.session)
	return r, nil
}

// Session returns the session id events are stored under
func (r *Recorder) Session() string {
	return r.session
}

// Dropped returns how many events were discarded because the queue was full
func (r *Recorder) Dropped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

func (r *Recorder) enqueue(ev events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	select {
	case r.queue <- queued{at: time.Now(), ev: ev}:
	default:
		r.dropped++
	}
}

func (r *Recorder) drain() {
	defer close(r.done)
	for q := range r.queue {
		if err := r.db.Save(r.session, q.at, q.ev); err != nil {
			logger.Warnf("Journal write failed: %v", err)
		}
	}
}

// Close stops recording and waits for queued events to be written
func (r *Recorder) Close() error {
	var err error
	r.once.Do(func() {
		err = r.source.Unsubscribe(r.sub)

		r.mu.Lock()
		r.closed = true
		close(r.queue)
		r.mu.Unlock()

		<-r.done
		if r.dropped > 0 {
			logger.Warnf("Journal dropped %d events", r.dropped)
		}
	})
	return err
}
