package services

import (
	"errors"
	"sync"
)

// ErrOperationInFlight is returned when a second mutation targets the same
// aggregate while one is still outstanding. The request is rejected, not
// queued, so two read-modify-write cycles can never race on one document.
var ErrOperationInFlight = errors.New("another operation on this resource is in progress")

type entityGuard struct {
	mu       sync.Mutex
	inFlight map[string]bool
}

func newEntityGuard() *entityGuard {
	return &entityGuard{inFlight: make(map[string]bool)}
}

func (g *entityGuard) acquire(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inFlight[id] {
		return false
	}
	g.inFlight[id] = true
	return true
}

func (g *entityGuard) release(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inFlight, id)
}
