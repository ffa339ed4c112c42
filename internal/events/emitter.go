// Package events provides typed publish/subscribe channels and the
// normalizer that republishes raw hook events on them.
package events

import (
	"fmt"
	"sync"
)

// ListenerID identifies one subscription on an Emitter.
type ListenerID uint64

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	Tag string
	ID  ListenerID
}

func (s Subscription) String() string {
	return fmt.Sprintf("%s#%d", s.Tag, s.ID)
}

type listener[T any] struct {
	id ListenerID
	fn func(T)
}

// Emitter is a set of named channels carrying payloads of type T. Listeners
// on a tag are invoked synchronously in subscription order.
type Emitter[T any] struct {
	mu        sync.Mutex
	next      ListenerID
	listeners map[string][]listener[T]
	onAdded   []func(Subscription) error
	onRemoved []func(Subscription) error
}

// NewEmitter creates an emitter with no listeners
func NewEmitter[T any]() *Emitter[T] {
	return &Emitter[T]{listeners: make(map[string][]listener[T])}
}

// OnListenerAdded registers an observer run after each Subscribe. If it
// fails, the subscription is rolled back and Subscribe returns the error.
func (e *Emitter[T]) OnListenerAdded(fn func(Subscription) error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onAdded = append(e.onAdded, fn)
}

// OnListenerRemoved registers an observer run after each effective Unsubscribe.
func (e *Emitter[T]) OnListenerRemoved(fn func(Subscription) error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onRemoved = append(e.onRemoved, fn)
}

// Subscribe attaches fn to tag.
func (e *Emitter[T]) Subscribe(tag string, fn func(T)) (Subscription, error) {
	e.mu.Lock()
	e.next++
	sub := Subscription{Tag: tag, ID: e.next}
	e.listeners[tag] = append(e.listeners[tag], listener[T]{id: sub.ID, fn: fn})
	observers := append([]func(Subscription) error(nil), e.onAdded...)
	e.mu.Unlock()

	for _, observe := range observers {
		if err := observe(sub); err != nil {
			e.remove(sub)
			return Subscription{}, err
		}
	}
	return sub, nil
}

// Unsubscribe detaches a subscription. Unknown subscriptions are a no-op and
// do not reach the removal observers.
func (e *Emitter[T]) Unsubscribe(sub Subscription) error {
	l, ok := e.take(sub)
	if !ok {
		return nil
	}

	e.mu.Lock()
	observers := append([]func(Subscription) error(nil), e.onRemoved...)
	e.mu.Unlock()

	for _, observe := range observers {
		if err := observe(sub); err != nil {
			// keep the listener so the caller can retry
			e.mu.Lock()
			e.listeners[sub.Tag] = append(e.listeners[sub.Tag], l)
			e.mu.Unlock()
			return err
		}
	}
	return nil
}

func (e *Emitter[T]) remove(sub Subscription) bool {
	_, ok := e.take(sub)
	return ok
}

func (e *Emitter[T]) take(sub Subscription) (listener[T], bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	list := e.listeners[sub.Tag]
	for i, l := range list {
		if l.id != sub.ID {
			continue
		}
		list = append(list[:i:i], list[i+1:]...)
		if len(list) == 0 {
			delete(e.listeners, sub.Tag)
		} else {
			e.listeners[sub.Tag] = list
		}
		return l, true
	}
	return listener[T]{}, false
}

// Publish delivers payload to every listener of tag.
func (e *Emitter[T]) Publish(tag string, payload T) {
	e.mu.Lock()
	list := append([]listener[T](nil), e.listeners[tag]...)
	e.mu.Unlock()

	for _, l := range list {
		l.fn(payload)
	}
}

// Invoke delivers payload to a single subscription. It reports false when the
// subscription is no longer attached.
func (e *Emitter[T]) Invoke(sub Subscription, payload T) bool {
	e.mu.Lock()
	var fn func(T)
	for _, l := range e.listeners[sub.Tag] {
		if l.id == sub.ID {
			fn = l.fn
			break
		}
	}
	e.mu.Unlock()

	if fn == nil {
		return false
	}
	fn(payload)
	return true
}

// ListenerCount returns the number of listeners on tag.
func (e *Emitter[T]) ListenerCount(tag string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners[tag])
}

// Tags returns the tags that currently have listeners.
func (e *Emitter[T]) Tags() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	tags := make([]string, 0, len(e.listeners))
	for tag := range e.listeners {
		tags = append(tags, tag)
	}
	return tags
}
