package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-jobsearch-automation/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	source          TEXT NOT NULL,
	external_id     TEXT NOT NULL,
	title           TEXT NOT NULL DEFAULT '',
	company         TEXT NOT NULL DEFAULT '',
	location        TEXT NOT NULL DEFAULT '',
	url             TEXT NOT NULL,
	description_raw TEXT NOT NULL DEFAULT '',
	search_keywords TEXT NOT NULL DEFAULT '',
	search_location TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (source, external_id)
);
CREATE TABLE IF NOT EXISTS applications (
	id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	source     TEXT NOT NULL,
	link       TEXT NOT NULL,
	status     TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (source, link)
);`

func ConnectDB(ctx context.Context, connString string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = time.Hour

	// Connection poolers in transaction mode do not support prepared statements.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &Repository{db: pool}, nil
}

func (r *Repository) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

// EnsureSchema creates the jobs and applications tables if missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// ServerInfo returns the server version and database size.
func (r *Repository) ServerInfo(ctx context.Context) (version, size string, err error) {
	if err := r.db.QueryRow(ctx, "SELECT version()").Scan(&version); err != nil {
		return "", "", fmt.Errorf("query version: %w", err)
	}
	if err := r.db.QueryRow(ctx, "SELECT pg_size_pretty(pg_database_size(current_database()))").Scan(&size); err != nil {
		return version, "", fmt.Errorf("query size: %w", err)
	}
	return version, size, nil
}

// ---------------- JOB OPERATIONS ----------------

const upsertJob = `
	INSERT INTO jobs (source, external_id, title, company, location, url, description_raw, search_keywords, search_location)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (source, external_id)
	DO UPDATE SET title = EXCLUDED.title, company = EXCLUDED.company, location = EXCLUDED.location,
		description_raw = EXCLUDED.description_raw
	RETURNING id, created_at`

// SaveJobs upserts a batch of jobs (keyed by source + external_id) in one transaction.
func (r *Repository) SaveJobs(ctx context.Context, jobs []models.StoredJob) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for i := range jobs {
		job := &jobs[i]
		err := tx.QueryRow(ctx, upsertJob,
			job.Source, job.ExternalID, job.Title, job.Company, job.Location, job.URL,
			job.DescriptionRaw, job.SearchKeywords, job.SearchLocation,
		).Scan(&job.ID, &job.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to save job %s: %w", job.ExternalID, err)
		}
	}
	return tx.Commit(ctx)
}

// GetJob retrieves a job by source and canonical link.
func (r *Repository) GetJob(ctx context.Context, source string, link models.JobLink) (*models.StoredJob, error) {
	var job models.StoredJob
	query := `SELECT id, source, external_id, title, company, location, url, description_raw, search_keywords, search_location, created_at
		FROM jobs WHERE source = $1 AND external_id = $2`
	err := r.db.QueryRow(ctx, query, source, string(link)).
		Scan(&job.ID, &job.Source, &job.ExternalID, &job.Title, &job.Company, &job.Location, &job.URL,
			&job.DescriptionRaw, &job.SearchKeywords, &job.SearchLocation, &job.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("job not found")
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

// ---------------- APPLICATION OPERATIONS ----------------

// UpsertApplication records the latest Easy Apply outcome for a link.
func (r *Repository) UpsertApplication(ctx context.Context, source string, app models.Application) error {
	query := `
		INSERT INTO applications (source, link, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (source, link)
		DO UPDATE SET status = EXCLUDED.status, updated_at = now()`
	if _, err := r.db.Exec(ctx, query, source, string(app.Link), string(app.Status)); err != nil {
		return fmt.Errorf("failed to upsert application: %w", err)
	}
	return nil
}
