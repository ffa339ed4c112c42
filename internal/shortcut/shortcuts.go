package shortcut

import (
	"errors"

	"github.com/bnema/inputkit/internal/events"
	"github.com/bnema/inputkit/internal/keys"
	"github.com/bnema/inputkit/internal/native"
)

// Shortcuts is the keyboard's shortcut sub-emitter. Attaching a listener
// registers the combination with the hook; detaching unregisters it.
type Shortcuts struct {
	emitter  *events.Emitter[struct{}]
	registry *Registry
}

// New creates a shortcut emitter backed by hook
func New(hook native.Hook) *Shortcuts {
	emitter := events.NewEmitter[struct{}]()
	return &Shortcuts{
		emitter:  emitter,
		registry: NewRegistry(hook, emitter),
	}
}

// Attach registers fn for combination. The returned subscription's ID is the
// listener identity to pass to Detach.
func (s *Shortcuts) Attach(combination keys.Combination, fn func()) (events.Subscription, error) {
	tag, err := combination.Canonical()
	if err != nil {
		return events.Subscription{}, err
	}
	return s.emitter.Subscribe(tag, func(struct{}) { fn() })
}

// AttachString parses a "+" joined combination and attaches fn.
func (s *Shortcuts) AttachString(combination string, fn func()) (events.Subscription, error) {
	c, err := keys.ParseCombination(combination)
	if err != nil {
		return events.Subscription{}, err
	}
	return s.Attach(c, fn)
}

// Detach removes the registration of listener for combination. The
// combination may be any value equal to the one used to attach. Detaching a
// pair that is not registered does nothing.
func (s *Shortcuts) Detach(combination keys.Combination, listener events.ListenerID) error {
	tag, err := combination.Canonical()
	if err != nil {
		return err
	}
	return s.emitter.Unsubscribe(events.Subscription{Tag: tag, ID: listener})
}

// DetachString parses combination and detaches listener.
func (s *Shortcuts) DetachString(combination string, listener events.ListenerID) error {
	c, err := keys.ParseCombination(combination)
	if err != nil {
		return err
	}
	return s.Detach(c, listener)
}

// DetachAll removes every registration.
func (s *Shortcuts) DetachAll() error {
	var errs []error
	for _, sub := range s.registry.Subscriptions() {
		if err := s.emitter.Unsubscribe(sub); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of live registrations.
func (s *Shortcuts) Len() int {
	return s.registry.Len()
}
