package sink

import (
	"context"

	"github.com/ternarybob/arbor"

	"go-jobsearch-automation/internal/models"
)

// JobStore is the part of the database repository the sink writes through.
type JobStore interface {
	SaveJobs(ctx context.Context, jobs []models.StoredJob) error
}

// Postgres upserts records keyed by (source, canonical link), so retried
// pages do not duplicate rows.
type Postgres struct {
	store    JobStore
	source   string
	keywords string
	location string
	logger   arbor.ILogger
}

func NewPostgres(store JobStore, source, keywords, location string, logger arbor.ILogger) *Postgres {
	return &Postgres{store: store, source: source, keywords: keywords, location: location, logger: logger}
}

func (s *Postgres) Append(ctx context.Context, records []models.JobRecord) error {
	if len(records) == 0 {
		return nil
	}
	jobs := make([]models.StoredJob, 0, len(records))
	for _, rec := range records {
		jobs = append(jobs, models.NewStoredJob(s.source, s.keywords, s.location, rec))
	}
	if err := s.store.SaveJobs(ctx, jobs); err != nil {
		return err
	}
	s.logger.Info().Str("source", s.source).Int("rows", len(jobs)).Msg("Upserted records")
	return nil
}
