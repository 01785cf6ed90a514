// Package app wires configuration into a ready crawl runner for the commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ternarybob/arbor"

	"go-jobsearch-automation/internal/classify"
	"go-jobsearch-automation/internal/config"
	"go-jobsearch-automation/internal/database"
	"go-jobsearch-automation/internal/dedup"
	"go-jobsearch-automation/internal/runner"
	"go-jobsearch-automation/internal/telegram"
)

// Deps holds the runner and everything that must be released with it.
type Deps struct {
	Runner *runner.Runner

	once    sync.Once
	closers []func() error
	logger  arbor.ILogger
}

// Close releases the browser and database. It is safe to call more than once.
func (d *Deps) Close() {
	d.once.Do(func() {
		var errs []error
		for i := len(d.closers) - 1; i >= 0; i-- {
			errs = append(errs, d.closers[i]())
		}
		if err := errors.Join(errs...); err != nil {
			d.logger.Warn().Err(err).Msg("Shutdown errors")
		}
	})
}

// Wire builds the runner. Optional integrations (database, telegram, dedup)
// are only connected when enabled in cfg.
func Wire(ctx context.Context, cfg *config.Config, logger arbor.ILogger, extra ...runner.Option) (*Deps, error) {
	deps := &Deps{logger: logger}
	var opts []runner.Option

	if cfg.Database.Enabled {
		repo, err := database.ConnectDB(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		deps.closers = append(deps.closers, func() error { repo.Close(); return nil })
		if err := repo.EnsureSchema(ctx); err != nil {
			deps.Close()
			return nil, err
		}
		logger.Info().Msg("Database connected")
		opts = append(opts, runner.WithStore(repo))
	}

	if cfg.Telegram.Enabled {
		bot, err := telegram.NewBot(cfg.Telegram.Token, cfg.Telegram.ChatID, cfg.Telegram.MinInterval, logger)
		if err != nil {
			deps.Close()
			return nil, err
		}
		logger.Info().Msg("Telegram bot initialized")
		opts = append(opts, runner.WithNotifier(bot))
	}

	if cfg.Dedup.Enabled {
		opts = append(opts, runner.WithSeenCache(dedup.NewJobCache(cfg.Dedup.CacheDir, logger)))
	}

	labels := cfg.Labels
	if len(labels) == 0 {
		labels = classify.DefaultLabels
	}
	classifier, err := classify.New(labels)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("labels: %w", err)
	}
	opts = append(opts, runner.WithTagger(classifier))

	sessions, closeBrowser, err := runner.BrowserSessions(ctx, cfg, logger)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("browser: %w", err)
	}
	deps.closers = append(deps.closers, closeBrowser)

	deps.Runner = runner.New(cfg, sessions, logger, append(opts, extra...)...)
	return deps, nil
}
