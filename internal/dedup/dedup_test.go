package dedup

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"go-jobsearch-automation/internal/models"
)

func TestJobCache_PersistsAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	a := models.JobLink("https://www.linkedin.com/jobs/view/1/")
	b := models.JobLink("https://www.linkedin.com/jobs/view/2/")

	first := NewJobCache(dir, arbor.NewLogger())
	assert.False(t, first.IsSeen(a))
	first.Add([]models.JobLink{a, b, a})
	assert.True(t, first.IsSeen(a))
	assert.Equal(t, 2, first.Len())

	second := NewJobCache(dir, arbor.NewLogger())
	assert.True(t, second.IsSeen(a))
	assert.True(t, second.IsSeen(b))
}

func TestJobCache_DropsExpiredEntries(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	entries := []seenEntry{
		{URL: "https://old", Timestamp: now.Add(-31 * 24 * time.Hour).UnixMilli()},
		{URL: "https://fresh", Timestamp: now.Add(-29 * 24 * time.Hour).UnixMilli()},
	}
	data, err := json.Marshal(entries)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, cacheFile), data, 0644))

	jc := newJobCache(dir, arbor.NewLogger(), func() time.Time { return now })
	assert.False(t, jc.IsSeen("https://old"))
	assert.True(t, jc.IsSeen("https://fresh"))
}

func TestJobCache_CorruptFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, cacheFile), []byte("{not json"), 0644))

	jc := NewJobCache(dir, arbor.NewLogger())
	assert.Equal(t, 0, jc.Len())
}
