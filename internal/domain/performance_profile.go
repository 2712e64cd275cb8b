package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

func NewPeformanceProfile() *PerformanceProfile {
	return &PerformanceProfile{
		StartTime: time.Now(),
	}
}

// PerformanceProfileEvent is one finished pipeline stage.
type PerformanceProfileEvent struct {
	Name      string    `json:"name"`
	ElapsedMs int64     `json:"elapsedMs"`
	Time      time.Time `json:"time"`
}

// PerformanceProfile times the stages of one selection pipeline
// (historical fetch, retrain, predict, assemble). Not thread safe; each
// pipeline run owns its own profile.
type PerformanceProfile struct {
	StartTime time.Time                 `json:"-"`
	Events    []PerformanceProfileEvent `json:"events"`
	TotalMs   int64                     `json:"totalMs"`
}

func (p *PerformanceProfile) End() {
	p.TotalMs = time.Since(p.StartTime).Milliseconds()
}

// Add records a stage that finished now, measured from the previous stage
// or from the start of the profile.
func (p *PerformanceProfile) Add(name string) {
	since := p.StartTime
	if len(p.Events) > 0 {
		since = p.Events[len(p.Events)-1].Time
	}
	now := time.Now()
	p.Events = append(p.Events, PerformanceProfileEvent{
		Name:      name,
		ElapsedMs: now.Sub(since).Milliseconds(),
		Time:      now,
	})
}

func (p PerformanceProfile) Copy() PerformanceProfile {
	events := make([]PerformanceProfileEvent, len(p.Events))
	copy(events, p.Events)
	p.Events = events
	return p
}

func (p PerformanceProfile) ToJsonBytes() ([]byte, error) {
	bytes, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal performance profile: %w", err)
	}
	return bytes, nil
}
