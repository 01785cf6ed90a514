// Package logging builds the arbor loggers used by the commands.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"

	"go-jobsearch-automation/internal/config"
)

const timeFormat = "15:04:05"

// New returns a console logger at the configured level.
func New(cfg config.LoggingConfig) arbor.ILogger {
	return arbor.NewLogger().WithConsoleWriter(models.WriterConfiguration{
		Type:             models.LogWriterTypeConsole,
		TimeFormat:       timeFormat,
		DisableTimestamp: false,
	}).WithLevelFromString(level(cfg.Level))
}

// ForSite returns a logger that also writes to <dir>/<time>_<site>.log when a
// log directory is configured. Callers tag it with a correlation id per run.
func ForSite(cfg config.LoggingConfig, site string, at time.Time, layout string) arbor.ILogger {
	logger := arbor.NewLogger()
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
			fmt.Printf("Warning: failed to create log directory: %v\n", err)
		} else {
			logger = logger.WithFileWriter(models.WriterConfiguration{
				Type:             models.LogWriterTypeFile,
				FileName:         RunLogPath(cfg.Dir, site, at, layout),
				TimeFormat:       timeFormat,
				MaxSize:          50 * 1024 * 1024,
				MaxBackups:       3,
				OutputType:       models.OutputFormatLogfmt,
				DisableTimestamp: false,
			})
		}
	}
	return logger.WithConsoleWriter(models.WriterConfiguration{
		Type:             models.LogWriterTypeConsole,
		TimeFormat:       timeFormat,
		DisableTimestamp: false,
	}).WithLevelFromString(level(cfg.Level))
}

// RunLogPath is the per-run log file name.
func RunLogPath(dir, site string, at time.Time, layout string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.log", at.Format(layout), site))
}

func level(l string) string {
	if l == "" {
		return "info"
	}
	return l
}
