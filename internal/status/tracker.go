// Package status tracks the crawl in progress for the HTTP API.
package status

import (
	"sync"
	"time"

	"go-jobsearch-automation/internal/models"
)

const historySize = 20

// Snapshot is a copy of the tracker state.
type Snapshot struct {
	Busy      bool                `json:"busy"`
	StartedAt time.Time           `json:"started_at,omitempty"`
	Current   *models.RunSummary  `json:"current,omitempty"`
	Cursor    string              `json:"cursor,omitempty"`
	History   []models.RunSummary `json:"history"`
	LastError string              `json:"last_error,omitempty"`
}

// Tracker allows one crawl at a time and records the search runs it performs.
type Tracker struct {
	mu        sync.Mutex
	busy      bool
	startedAt time.Time
	current   *models.RunSummary
	cursor    string
	history   []models.RunSummary
	lastErr   string
	now       func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

// TryStart marks the tracker busy. It reports false when a crawl is already running.
func (t *Tracker) TryStart() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.busy {
		return false
	}
	t.busy = true
	t.startedAt = t.now()
	t.lastErr = ""
	return true
}

// Done ends the crawl started with TryStart.
func (t *Tracker) Done(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.busy = false
	t.current = nil
	t.cursor = ""
	if err != nil {
		t.lastErr = err.Error()
	}
}

func (t *Tracker) RunStarted(s models.RunSummary) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = &s
	t.cursor = ""
}

func (t *Tracker) CursorChanged(cursor string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cursor = cursor
}

func (t *Tracker) RunFinished(s models.RunSummary) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = nil
	t.history = append(t.history, s)
	if len(t.history) > historySize {
		t.history = t.history[len(t.history)-historySize:]
	}
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	snap := Snapshot{
		Busy:      t.busy,
		Cursor:    t.cursor,
		History:   append([]models.RunSummary{}, t.history...),
		LastError: t.lastErr,
	}
	if t.busy {
		snap.StartedAt = t.startedAt
	}
	if t.current != nil {
		cur := *t.current
		snap.Current = &cur
	}
	return snap
}
