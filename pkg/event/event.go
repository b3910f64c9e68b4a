// Copyright 2025 Mediabridge Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package event provides the shared event channel that engines publish
// progress on and a router that delivers each event only to the handlers
// registered for its correlation id.
package event

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/spf13/cast"
)

// Event is a named message tagged with the correlation id of the job it belongs to.
type Event struct {
	Name string         `json:"name"`
	ID   string         `json:"uuid"`
	Data map[string]any `json:"data,omitempty"`
}

// Float returns Data[key] coerced to float64, or 0.
func (e Event) Float(key string) float64 {
	return cast.ToFloat64(e.Data[key])
}

// Int returns Data[key] coerced to int64, or 0.
func (e Event) Int(key string) int64 {
	return cast.ToInt64(e.Data[key])
}

// Handler is a function that handles an event.
type Handler func(ctx context.Context, ev Event)

// EventBus defines the interface for an event system.
type EventBus interface {
	Subscribe(name, id string, handler Handler) *Subscription
	Publish(ctx context.Context, ev Event)
}

// Subscription is a handle to one registered handler.
type Subscription struct {
	bus     *Bus
	seq     uint64
	name    string
	id      string
	once    bool
	handler Handler
	removed atomic.Bool
}

// Remove detaches the handler. It reports true only for the call that
// actually removed it.
func (s *Subscription) Remove() bool {
	if s == nil || !s.removed.CompareAndSwap(false, true) {
		return false
	}
	s.bus.detach(s)
	return true
}

// Active reports whether the subscription is still attached.
func (s *Subscription) Active() bool {
	return s != nil && !s.removed.Load()
}

// Bus routes published events to subscriptions by name and correlation id.
type Bus struct {
	mu     sync.RWMutex
	seq    uint64
	byName map[string][]*Subscription
	byID   map[string]map[uint64]*Subscription
}

// New creates a new event bus.
func New() *Bus {
	return &Bus{
		byName: make(map[string][]*Subscription),
		byID:   make(map[string]map[uint64]*Subscription),
	}
}

// Subscribe registers handler for events named name whose ID equals id.
// An empty id matches every event of that name.
func (b *Bus) Subscribe(name, id string, handler Handler) *Subscription {
	return b.add(name, id, handler, false)
}

// Once registers handler for the next event named name. The subscription is
// removed before the handler runs.
func (b *Bus) Once(name string, handler Handler) *Subscription {
	return b.add(name, "", handler, true)
}

func (b *Bus) add(name, id string, handler Handler, once bool) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	sub := &Subscription{
		bus:     b,
		seq:     b.seq,
		name:    name,
		id:      id,
		once:    once,
		handler: handler,
	}
	b.byName[name] = append(b.byName[name], sub)
	if b.byID[id] == nil {
		b.byID[id] = make(map[uint64]*Subscription)
	}
	b.byID[id][sub.seq] = sub
	return sub
}

// Publish delivers ev synchronously, in subscription order, to every matching
// handler. Events published from one goroutine therefore reach a handler in
// emission order.
func (b *Bus) Publish(ctx context.Context, ev Event) {
	b.mu.RLock()
	subs := append([]*Subscription(nil), b.byName[ev.Name]...)
	b.mu.RUnlock()

	for _, sub := range subs {
		if sub.id != "" && sub.id != ev.ID {
			continue
		}
		if sub.once {
			if !sub.Remove() {
				continue
			}
		} else if !sub.Active() {
			continue
		}
		sub.handler(ctx, ev)
	}
}

// RemoveAll detaches every subscription registered for id and returns how
// many were removed.
func (b *Bus) RemoveAll(id string) int {
	b.mu.RLock()
	subs := make([]*Subscription, 0, len(b.byID[id]))
	for _, sub := range b.byID[id] {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	n := 0
	for _, sub := range subs {
		if sub.Remove() {
			n++
		}
	}
	return n
}

// RemoveAllListeners detaches every subscription for the event name.
func (b *Bus) RemoveAllListeners(name string) int {
	b.mu.RLock()
	subs := append([]*Subscription(nil), b.byName[name]...)
	b.mu.RUnlock()

	n := 0
	for _, sub := range subs {
		if sub.Remove() {
			n++
		}
	}
	return n
}

// Count returns the number of attached subscriptions for id.
func (b *Bus) Count(id string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.byID[id])
}

// Listeners returns the number of attached subscriptions for the event name.
func (b *Bus) Listeners(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.byName[name])
}

func (b *Bus) detach(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.byName[sub.name]
	for i, s := range list {
		if s == sub {
			list = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(b.byName, sub.name)
	} else {
		b.byName[sub.name] = list
	}

	if ids := b.byID[sub.id]; ids != nil {
		delete(ids, sub.seq)
		if len(ids) == 0 {
			delete(b.byID, sub.id)
		}
	}
}
