package browser

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ternarybob/arbor"
)

// ScreenshotDebugger handles debug screenshots
type ScreenshotDebugger struct {
	outputDir string
	session   Session
	logger    arbor.ILogger
}

// NewScreenshotDebugger returns nil when dir is empty; a nil debugger is a no-op.
func NewScreenshotDebugger(dir string, session Session, logger arbor.ILogger) *ScreenshotDebugger {
	if dir == "" {
		return nil
	}
	return &ScreenshotDebugger{outputDir: dir, session: session, logger: logger}
}

func (s *ScreenshotDebugger) CaptureAndLog(ctx context.Context, name, message string) string {
	if s == nil {
		return ""
	}
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	path := filepath.Join(s.outputDir, fmt.Sprintf("%s_%s.png", name, timestamp))

	if err := s.session.Screenshot(ctx, path); err != nil {
		s.logger.Warn().Err(err).Str("name", name).Msg("Failed to capture screenshot")
		return ""
	}
	s.logger.Info().Str("path", path).Msg(message)
	return path
}
