package native

import (
	"sync"

	"github.com/bnema/inputkit/internal/keys"
)

// ChordTracker matches key state against registered shortcuts. Backends whose
// hook library has no way to unregister a shortcut feed it raw key downs and
// ups instead.
type ChordTracker struct {
	mu      sync.Mutex
	next    Handle
	chords  map[Handle]*chord
	pressed map[keys.Code]bool
}

type chord struct {
	codes     []keys.Code
	onTrigger func()
	fired     bool
}

// NewChordTracker creates an empty tracker
func NewChordTracker() *ChordTracker {
	return &ChordTracker{
		chords:  make(map[Handle]*chord),
		pressed: make(map[keys.Code]bool),
	}
}

// Add registers a chord and returns its handle.
func (t *ChordTracker) Add(codes []keys.Code, onTrigger func()) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.next++
	t.chords[t.next] = &chord{
		codes:     append([]keys.Code(nil), codes...),
		onTrigger: onTrigger,
	}
	return t.next
}

// Remove drops a chord. Unknown handles are ignored.
func (t *ChordTracker) Remove(h Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.chords[h]; !ok {
		return false
	}
	delete(t.chords, h)
	return true
}

// Len returns the number of registered chords.
func (t *ChordTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.chords)
}

// KeyDown records code as held and fires every chord it completes. A chord
// fires once per press; it re-arms when one of its keys is released.
func (t *ChordTracker) KeyDown(code keys.Code) {
	t.mu.Lock()
	t.pressed[code] = true

	var fire []func()
	for _, c := range t.chords {
		if c.fired || !c.contains(code) || !c.held(t.pressed) {
			continue
		}
		c.fired = true
		fire = append(fire, c.onTrigger)
	}
	t.mu.Unlock()

	// Callbacks may register or remove chords.
	for _, fn := range fire {
		fn()
	}
}

// KeyUp records code as released.
func (t *ChordTracker) KeyUp(code keys.Code) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.pressed, code)
	for _, c := range t.chords {
		if c.contains(code) {
			c.fired = false
		}
	}
}

func (c *chord) contains(code keys.Code) bool {
	for _, k := range c.codes {
		if k == code {
			return true
		}
	}
	return false
}

func (c *chord) held(pressed map[keys.Code]bool) bool {
	for _, k := range c.codes {
		if !pressed[k] {
			return false
		}
	}
	return true
}
