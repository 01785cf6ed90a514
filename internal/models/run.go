package models

import "time"

// RunSummary describes one (site, location, keywords) search run.
type RunSummary struct {
	RunID          string         `json:"run_id"`
	Site           string         `json:"site"`
	Keywords       string         `json:"keywords"`
	Location       string         `json:"location"`
	OutputPath     string         `json:"output_path"`
	PagesProcessed []int          `json:"pages_processed"`
	PagesSkipped   []int          `json:"pages_skipped"`
	Records        int            `json:"records"`
	Applications   map[string]int `json:"applications,omitempty"`
	Tags           map[string]int `json:"tags,omitempty"`
	FinalState     string         `json:"final_state"`
	StartedAt      time.Time      `json:"started_at"`
	FinishedAt     time.Time      `json:"finished_at"`
	Err            string         `json:"error,omitempty"`
}

func (s RunSummary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
