package logging

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobsearch-automation/internal/config"
)

func TestRunLogPath(t *testing.T) {
	at := time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)
	assert.Equal(t, filepath.Join("logs", "20240305H14_indeed.log"), RunLogPath("logs", "indeed", at, "20060102H15"))
}

func TestForSite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	logger := ForSite(config.LoggingConfig{Level: "debug", Dir: dir}, "linkedin", time.Now(), "20060102H15")
	require.NotNil(t, logger)
	assert.DirExists(t, dir)

	require.NotNil(t, ForSite(config.LoggingConfig{}, "linkedin", time.Now(), "20060102H15"))
}

func TestLevelDefault(t *testing.T) {
	assert.Equal(t, "info", level(""))
	assert.Equal(t, "warn", level("warn"))
}
