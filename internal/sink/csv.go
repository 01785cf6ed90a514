package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/ternarybob/arbor"

	"go-jobsearch-automation/internal/models"
)

// CSV writes `,Link,Title,Company,Location,Description` rows with a leading
// index that continues across appends, including appends from earlier runs.
type CSV struct {
	mu     sync.Mutex
	path   string
	next   int
	known  bool
	logger arbor.ILogger
}

func NewCSV(path string, logger arbor.ILogger) *CSV {
	return &CSV{path: path, logger: logger}
}

func (s *CSV) Path() string { return s.path }

func (s *CSV) Append(ctx context.Context, records []models.JobRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	fresh := info.Size() == 0
	if !s.known {
		s.next = 0
		if !fresh {
			if s.next, err = countRows(s.path); err != nil {
				return fmt.Errorf("read existing %s: %w", s.path, err)
			}
		}
		s.known = true
	}

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(header()); err != nil {
			return err
		}
	}
	for _, rec := range records {
		row := append([]string{strconv.Itoa(s.next)}, rec.Row()...)
		if err := w.Write(row); err != nil {
			return err
		}
		s.next++
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", s.path, err)
	}

	s.logger.Info().Str("path", s.path).Int("rows", len(records)).Msg("Appended records")
	return nil
}

// countRows returns the number of data rows below the header.
func countRows(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	n := 0
	for {
		_, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
		n++
	}
	return max(n-1, 0), nil
}
