package app

import (
	"fmt"
	"sync"
	"time"

	"stockforecast/internal/domain"

	"github.com/google/uuid"
)

// SessionRegistry keeps sessions in memory for the life of the process.
type SessionRegistry struct {
	Dependencies SessionDependencies

	mu       sync.RWMutex
	sessions map[uuid.UUID]*PredictionSession
}

func NewSessionRegistry(deps SessionDependencies) *SessionRegistry {
	return &SessionRegistry{
		Dependencies: deps,
		sessions:     map[uuid.UUID]*PredictionSession{},
	}
}

func (r *SessionRegistry) Create() *PredictionSession {
	session := NewPredictionSession(uuid.New(), r.Dependencies)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
	return session
}

func (r *SessionRegistry) Get(id uuid.UUID) (*PredictionSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	return session, nil
}

func (r *SessionRegistry) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	delete(r.sessions, id)
	return nil
}

func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// PruneIdle drops sessions with no state change for longer than maxIdle
// and returns how many were removed.
func (r *SessionRegistry) PruneIdle(maxIdle time.Duration) int {
	cutoff := time.Now().UTC().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()
	pruned := 0
	for id, session := range r.sessions {
		if session.LastActivity().Before(cutoff) {
			delete(r.sessions, id)
			pruned++
		}
	}
	return pruned
}
