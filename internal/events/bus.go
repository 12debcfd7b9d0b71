// Package events delivers sync lifecycle notifications to in-process
// listeners such as the metrics collector and the local API.
package events

import (
	"fmt"
	"sync"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/models"
)

// Listener receives every emitted event.
type Listener func(event models.Event)

// Emitter publishes events. The sync services depend on this narrow view of
// [Bus].
type Emitter interface {
	Emit(kind models.EventKind, payload models.EventPayload)
}

type subscription struct {
	id       uint64
	listener Listener
}

// Bus is a synchronous fan-out of [models.Event] values. Emit calls every
// listener registered at the time of the call, in registration order, on
// the emitting goroutine. A panicking listener is logged and skipped; it
// neither stops the remaining listeners nor reaches the emitter.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []subscription

	logger *logger.Logger
}

// NewBus returns an empty Bus.
func NewBus(logger *logger.Logger) *Bus {
	return &Bus{logger: logger}
}

// Subscribe registers listener and returns a function removing it. Calling
// the returned function more than once is harmless.
func (b *Bus) Subscribe(listener Listener) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, listener: listener})

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == id {
			// copy so in-flight Emit snapshots stay intact
			subs := make([]subscription, 0, len(b.subs)-1)
			subs = append(subs, b.subs[:i]...)
			b.subs = append(subs, b.subs[i+1:]...)
			return
		}
	}
}

// Emit implements [Emitter]. A nil payload is replaced with
// [models.EmptyPayload].
func (b *Bus) Emit(kind models.EventKind, payload models.EventPayload) {
	if payload == nil {
		payload = models.EmptyPayload{}
	}
	event := models.Event{Kind: kind, Payload: payload}

	b.mu.RLock()
	subs := b.subs
	b.mu.RUnlock()

	for _, s := range subs {
		b.deliver(s, event)
	}
}

func (b *Bus) deliver(s subscription, event models.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().
				Str("func", "Bus.Emit").
				Str("event", string(event.Kind)).
				Uint64("listener", s.id).
				Str("panic", fmt.Sprint(r)).
				Msg("event listener panicked")
		}
	}()
	s.listener(event)
}

// size returns the number of registered listeners.
func (b *Bus) size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
