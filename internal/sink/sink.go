// Package sink persists extracted job records page by page. Every Append is
// durable before it returns, so a crash after page k leaves pages 1..k saved.
package sink

import (
	"context"
	"errors"

	"github.com/ternarybob/arbor"

	"go-jobsearch-automation/internal/models"
)

// Sink appends records to a destination, creating it on first write.
type Sink interface {
	Append(ctx context.Context, records []models.JobRecord) error
}

// Tee appends to a primary sink and copies each saved batch to its mirrors.
// Append fails only when the primary does; mirror failures are logged.
type Tee struct {
	primary Sink
	mirrors []Sink
	logger  arbor.ILogger
}

func NewTee(primary Sink, logger arbor.ILogger, mirrors ...Sink) *Tee {
	return &Tee{primary: primary, mirrors: mirrors, logger: logger}
}

func (t *Tee) Append(ctx context.Context, records []models.JobRecord) error {
	if err := t.primary.Append(ctx, records); err != nil {
		return err
	}
	for _, m := range t.mirrors {
		if err := m.Append(ctx, records); err != nil {
			t.logger.Warn().Err(err).Int("records", len(records)).Msg("Mirror sink failed, records kept in primary only")
		}
	}
	return nil
}

// Close closes every sink that holds resources.
func (t *Tee) Close() error {
	var errs []error
	for _, s := range append([]Sink{t.primary}, t.mirrors...) {
		if c, ok := s.(interface{ Close() error }); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}

// indexHeader is the header of the leading positional index column.
const indexHeader = ""

func header() []string {
	return append([]string{indexHeader}, models.Columns...)
}
