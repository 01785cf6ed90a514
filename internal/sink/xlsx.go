package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/xuri/excelize/v2"

	"go-jobsearch-automation/internal/models"
)

const sheetName = "Jobs"

// XLSX keeps the same columns as CSV on a "Jobs" sheet. The workbook is
// rewritten on every append.
type XLSX struct {
	mu     sync.Mutex
	path   string
	logger arbor.ILogger
}

func NewXLSX(path string, logger arbor.ILogger) *XLSX {
	return &XLSX{path: path, logger: logger}
}

func (s *XLSX) Path() string { return s.path }

func (s *XLSX) Append(ctx context.Context, records []models.JobRecord) error {
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
	f, err := s.open()
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return fmt.Errorf("read %s: %w", s.path, err)
	}
	rowNum := len(rows) + 1
	index := max(len(rows)-1, 0)
	if len(rows) == 0 {
		if err := setRow(f, 1, header()); err != nil {
			return err
		}
		rowNum = 2
	}

	for _, rec := range records {
		cells := append([]string{fmt.Sprint(index)}, rec.Row()...)
		if err := setRow(f, rowNum, cells); err != nil {
			return err
		}
		rowNum++
		index++
	}

	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("save %s: %w", s.path, err)
	}
	s.logger.Info().Str("path", s.path).Int("rows", len(records)).Msg("Appended records")
	return nil
}

func (s *XLSX) open() (*excelize.File, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		f := excelize.NewFile()
		if err := f.SetSheetName("Sheet1", sheetName); err != nil {
			f.Close()
			return nil, err
		}
		return f, nil
	}
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	if index, _ := f.GetSheetIndex(sheetName); index == -1 {
		if _, err := f.NewSheet(sheetName); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func setRow(f *excelize.File, row int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	return f.SetSheetRow(sheetName, cell, &values)
}
