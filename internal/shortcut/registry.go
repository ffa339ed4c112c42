// Package shortcut keeps native global shortcut registrations in step with
// the listeners attached to a shortcut emitter.
package shortcut

import (
	"fmt"
	"sync"

	"github.com/bnema/inputkit/internal/events"
	"github.com/bnema/inputkit/internal/keys"
	"github.com/bnema/inputkit/internal/logger"
	"github.com/bnema/inputkit/internal/native"
)

// key identifies a registration by value: the canonical code list of the
// combination and the listener it belongs to.
type key struct {
	combination string
	listener    events.ListenerID
}

// Registry maps (combination, listener) pairs to native handles. Emitter tags
// are combination strings; any spelling that resolves to the same codes
// refers to the same registration.
type Registry struct {
	mu      sync.Mutex
	hook    native.Hook
	emitter *events.Emitter[struct{}]
	handles map[key]native.Handle
}

// NewRegistry binds a registry to the attach and detach notifications of emitter
func NewRegistry(hook native.Hook, emitter *events.Emitter[struct{}]) *Registry {
	r := &Registry{
		hook:    hook,
		emitter: emitter,
		handles: make(map[key]native.Handle),
	}
	emitter.OnListenerAdded(r.attached)
	emitter.OnListenerRemoved(r.detached)
	return r
}

// Len returns the number of live registrations.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

// Registered reports whether sub currently owns a native registration.
func (r *Registry) Registered(sub events.Subscription) bool {
	k, err := keyOf(sub)
	if err != nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.handles[k]
	return ok
}

// Subscriptions returns the registered pairs as emitter subscriptions tagged
// with the canonical combination.
func (r *Registry) Subscriptions() []events.Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs := make([]events.Subscription, 0, len(r.handles))
	for k := range r.handles {
		subs = append(subs, events.Subscription{Tag: k.combination, ID: k.listener})
	}
	return subs
}

func (r *Registry) attached(sub events.Subscription) error {
	combination, err := keys.ParseCombination(sub.Tag)
	if err != nil {
		return err
	}
	codes, err := combination.Resolve()
	if err != nil {
		return err
	}
	k := key{combination: keys.JoinCodes(codes), listener: sub.ID}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.handles[k]; ok {
		return nil
	}

	handle, err := r.hook.RegisterShortcut(codes, func() {
		r.emitter.Invoke(sub, struct{}{})
	})
	if err != nil {
		return fmt.Errorf("failed to register shortcut %s: %w", combination, err)
	}
	r.handles[k] = handle

	logger.Debugf("Registered shortcut %s for listener %d (handle %d)", combination, sub.ID, handle)
	return nil
}

func (r *Registry) detached(sub events.Subscription) error {
	k, err := keyOf(sub)
	if err != nil {
		// nothing can have been registered under an unresolvable tag
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	handle, ok := r.handles[k]
	if !ok {
		return nil
	}
	if err := r.hook.UnregisterShortcut(handle); err != nil {
		return fmt.Errorf("failed to unregister shortcut %s: %w", sub.Tag, err)
	}
	delete(r.handles, k)

	logger.Debugf("Unregistered shortcut %s for listener %d (handle %d)", sub.Tag, sub.ID, handle)
	return nil
}

func keyOf(sub events.Subscription) (key, error) {
	combination, err := keys.ParseCombination(sub.Tag)
	if err != nil {
		return key{}, err
	}
	canonical, err := combination.Canonical()
	if err != nil {
		return key{}, err
	}
	return key{combination: canonical, listener: sub.ID}, nil
}
