package settings

import (
	"sync"
	"time"

	"engunity-backend/internal/shared/telemetry"
)

// EventChanged is emitted after a settings record is saved.
const EventChanged = "settings.changed"

// Event carries a settings change to subscribers.
type Event struct {
	Name     string
	UserID   string
	Settings Settings
	At       time.Time
}

// Emitter is the in-process publish/subscribe hub for settings changes. It
// maps event names to subscriber callbacks and dispatches synchronously on
// the emitting goroutine. A panicking callback is swallowed so one bad
// subscriber cannot break the rest. Created at process start, never torn
// down.
type Emitter struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]func(Event)
}

// NewEmitter constructs an Emitter.
func NewEmitter() *Emitter {
	return &Emitter{subs: make(map[string]map[int]func(Event))}
}

// Subscribe registers a callback for an event name and returns an
// unsubscribe func.
func (e *Emitter) Subscribe(event string, fn func(Event)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.subs[event] == nil {
		e.subs[event] = make(map[int]func(Event))
	}
	id := e.nextID
	e.nextID++
	e.subs[event][id] = fn

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.subs[event], id)
	}
}

// Emit invokes every subscriber of the event synchronously, in registration
// order not guaranteed. Callback panics are logged and swallowed.
func (e *Emitter) Emit(ev Event) {
	e.mu.RLock()
	callbacks := make([]func(Event), 0, len(e.subs[ev.Name]))
	for _, fn := range e.subs[ev.Name] {
		callbacks = append(callbacks, fn)
	}
	e.mu.RUnlock()

	for _, fn := range callbacks {
		invoke(fn, ev)
	}
}

func invoke(fn func(Event), ev Event) {
	defer func() {
		if rec := recover(); rec != nil {
			telemetry.Error("settings.subscriber_panic", map[string]any{
				"event": ev.Name,
				"error": rec,
			})
		}
	}()
	fn(ev)
}
