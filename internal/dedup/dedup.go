// Package dedup remembers job links across runs so a posting is only
// extracted once per retention window.
package dedup

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"go-jobsearch-automation/internal/models"
)

const (
	cacheFile = "seen_jobs.json"
	// Retention is how long a seen link stays in the cache.
	Retention = 30 * 24 * time.Hour
)

type seenEntry struct {
	URL       string `json:"url"`
	Timestamp int64  `json:"timestamp"`
}

type JobCache struct {
	mu       sync.Mutex
	filePath string
	seen     map[models.JobLink]int64
	now      func() time.Time
	logger   arbor.ILogger
}

// NewJobCache creates or loads the cache stored in cacheDir.
func NewJobCache(cacheDir string, logger arbor.ILogger) *JobCache {
	return newJobCache(cacheDir, logger, time.Now)
}

func newJobCache(cacheDir string, logger arbor.ILogger, now func() time.Time) *JobCache {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		logger.Warn().Err(err).Str("dir", cacheDir).Msg("Failed to create cache directory")
	}
	jc := &JobCache{
		filePath: filepath.Join(cacheDir, cacheFile),
		seen:     make(map[models.JobLink]int64),
		now:      now,
		logger:   logger,
	}
	jc.load()
	return jc
}

func (jc *JobCache) IsSeen(link models.JobLink) bool {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	_, exists := jc.seen[link]
	return exists
}

// Add records links and saves the cache when anything new was added.
func (jc *JobCache) Add(links []models.JobLink) {
	jc.mu.Lock()
	defer jc.mu.Unlock()

	now := jc.now().UnixMilli()
	changed := false
	for _, link := range links {
		if _, exists := jc.seen[link]; !exists {
			jc.seen[link] = now
			changed = true
		}
	}
	if changed {
		jc.save()
	}
}

func (jc *JobCache) Len() int {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	return len(jc.seen)
}

func (jc *JobCache) load() {
	data, err := os.ReadFile(jc.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			jc.logger.Warn().Err(err).Str("path", jc.filePath).Msg("Failed to read seen jobs")
		}
		return
	}

	var entries []seenEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		jc.logger.Warn().Err(err).Str("path", jc.filePath).Msg("Failed to parse seen jobs")
		return
	}

	cutoff := jc.now().Add(-Retention).UnixMilli()
	loaded := 0
	for _, e := range entries {
		if e.Timestamp > cutoff {
			jc.seen[models.JobLink(e.URL)] = e.Timestamp
			loaded++
		}
	}
	jc.logger.Info().Int("loaded", loaded).Int("expired", len(entries)-loaded).Msg("Loaded previously seen jobs")
}

// save must be called with mu held.
func (jc *JobCache) save() {
	entries := make([]seenEntry, 0, len(jc.seen))
	for link, ts := range jc.seen {
		entries = append(entries, seenEntry{URL: string(link), Timestamp: ts})
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		jc.logger.Warn().Err(err).Msg("Failed to marshal seen jobs")
		return
	}
	if err := os.WriteFile(jc.filePath, data, 0644); err != nil {
		jc.logger.Warn().Err(err).Str("path", jc.filePath).Msg("Failed to write seen jobs")
		return
	}
	jc.logger.Debug().Int("count", len(entries)).Msg("Saved seen jobs")
}
