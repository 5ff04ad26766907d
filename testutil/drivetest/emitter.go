package drivetest

import (
	"sync"

	"github.com/AntonStoeckl/hyperdrive-promise-go/drive"
)

// Emitter is a minimal drive.EventEmitter. Listeners run synchronously in registration order.
type Emitter struct {
	mu        sync.Mutex
	nextID    int
	listeners map[string][]registeredListener
}

type registeredListener struct {
	id       int
	listener drive.Listener
}

// On implements drive.EventEmitter.
func (e *Emitter) On(event string, listener drive.Listener) (unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.listeners == nil {
		e.listeners = make(map[string][]registeredListener)
	}

	e.nextID++
	id := e.nextID
	e.listeners[event] = append(e.listeners[event], registeredListener{id: id, listener: listener})

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()

		kept := e.listeners[event][:0]
		for _, l := range e.listeners[event] {
			if l.id != id {
				kept = append(kept, l)
			}
		}
		e.listeners[event] = kept
	}
}

// Emit implements drive.EventEmitter.
func (e *Emitter) Emit(event string, args ...any) {
	e.mu.Lock()
	listeners := append([]registeredListener(nil), e.listeners[event]...)
	e.mu.Unlock()

	for _, l := range listeners {
		l.listener(args...)
	}
}

// ListenerCount returns the number of listeners registered for event.
func (e *Emitter) ListenerCount(event string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.listeners[event])
}
