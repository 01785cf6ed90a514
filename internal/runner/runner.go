// Package runner drives full crawls: every configured site, location and
// keyword combination is searched and paginated in turn, each into its own
// output table.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"go-jobsearch-automation/internal/apply"
	"go-jobsearch-automation/internal/browser"
	"go-jobsearch-automation/internal/config"
	"go-jobsearch-automation/internal/logging"
	"go-jobsearch-automation/internal/models"
	"go-jobsearch-automation/internal/scraper"
	"go-jobsearch-automation/internal/scraper/indeed"
	"go-jobsearch-automation/internal/scraper/linkedin"
	"go-jobsearch-automation/internal/sink"
	"go-jobsearch-automation/internal/site"
	"go-jobsearch-automation/internal/stealth"
)

const searchPollAttempts = 10

// SessionFactory opens a browser session for one site.
type SessionFactory func(ctx context.Context, site string) (browser.Session, error)

// Store is the database the runner writes jobs and applications to.
type Store interface {
	sink.JobStore
	apply.Recorder
}

type Notifier interface {
	SendRunSummary(ctx context.Context, s models.RunSummary) error
}

// Observer receives progress for every search run.
type Observer interface {
	RunStarted(s models.RunSummary)
	CursorChanged(cursor string)
	RunFinished(s models.RunSummary)
}

type Runner struct {
	cfg      *config.Config
	sessions SessionFactory
	store    Store
	notifier Notifier
	seen     scraper.SeenCache
	tagger   scraper.Tagger
	observer Observer
	pauser   stealth.Pauser
	logger   arbor.ILogger
	siteLog  func(site string, at time.Time) arbor.ILogger
	now      func() time.Time
}

type Option func(*Runner)

func WithStore(s Store) Option                 { return func(r *Runner) { r.store = s } }
func WithNotifier(n Notifier) Option           { return func(r *Runner) { r.notifier = n } }
func WithSeenCache(c scraper.SeenCache) Option { return func(r *Runner) { r.seen = c } }
func WithTagger(t scraper.Tagger) Option       { return func(r *Runner) { r.tagger = t } }
func WithObserver(o Observer) Option           { return func(r *Runner) { r.observer = o } }
func WithPauser(p stealth.Pauser) Option       { return func(r *Runner) { r.pauser = p } }

// WithSiteLogger replaces the per-site log file logger.
func WithSiteLogger(fn func(site string, at time.Time) arbor.ILogger) Option {
	return func(r *Runner) { r.siteLog = fn }
}

func New(cfg *config.Config, sessions SessionFactory, logger arbor.ILogger, opts ...Option) *Runner {
	r := &Runner{
		cfg:      cfg,
		sessions: sessions,
		pauser:   stealth.RandomPauser{},
		logger:   logger,
		now:      time.Now,
	}
	r.siteLog = func(name string, at time.Time) arbor.ILogger {
		return logging.ForSite(cfg.Logging, name, at, sink.TimeLayout)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run crawls every configured site. Summaries of finished searches are
// returned even when the crawl stops early. Login failures and context
// cancellation end the crawl; a failed search only skips its combination.
func (r *Runner) Run(ctx context.Context) ([]models.RunSummary, error) {
	var summaries []models.RunSummary
	for _, name := range r.cfg.Sites {
		got, err := r.runSite(ctx, name)
		summaries = append(summaries, got...)
		if err != nil {
			return summaries, err
		}
	}
	return summaries, nil
}

func (r *Runner) runSite(ctx context.Context, name string) ([]models.RunSummary, error) {
	profile, err := site.Lookup(name)
	if err != nil {
		return nil, err
	}
	logger := r.siteLog(profile.Name, r.now())

	session, err := r.sessions(ctx, profile.Name)
	if err != nil {
		return nil, fmt.Errorf("open browser for %s: %w", profile.Name, err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close browser session")
		}
	}()

	searcher, err := r.searcher(profile, logger)
	if err != nil {
		return nil, err
	}
	if err := searcher.Login(ctx, session); err != nil {
		return nil, fmt.Errorf("%s login: %w", profile.Name, err)
	}

	var summaries []models.RunSummary
	for _, location := range orBlank(r.cfg.Locations) {
		for _, keywords := range orBlank(r.cfg.Keywords) {
			q := scraper.Query{Keywords: keywords, Location: location, PostedWithin: r.cfg.PostedFilter()}
			summary, err := r.runQuery(ctx, session, profile, searcher, q, logger)
			summaries = append(summaries, summary)
			if err != nil {
				return summaries, err
			}
		}
	}
	return summaries, nil
}

func (r *Runner) searchOptions() scraper.SearchOptions {
	return scraper.SearchOptions{
		Retries:      r.cfg.Retries.Search,
		Backoff:      r.cfg.Delays.Backoff,
		Poll:         r.cfg.Delays.Search,
		PollAttempts: searchPollAttempts,
	}
}

func (r *Runner) searcher(profile site.Profile, logger arbor.ILogger) (scraper.Searcher, error) {
	switch profile.Name {
	case "linkedin":
		return linkedin.NewLinkedInScraper(profile, r.cfg.Credentials, r.searchOptions(), r.pauser, logger), nil
	case "indeed":
		return indeed.NewIndeedScraper(profile, r.searchOptions(), r.pauser, logger), nil
	}
	return nil, fmt.Errorf("no search flow for site %q", profile.Name)
}

// runQuery searches q and paginates its results into a fresh table. Only
// context errors are returned.
func (r *Runner) runQuery(ctx context.Context, session browser.Session, profile site.Profile, searcher scraper.Searcher, q scraper.Query, siteLogger arbor.ILogger) (models.RunSummary, error) {
	started := r.now()
	summary := models.RunSummary{
		RunID:      uuid.NewString(),
		Site:       profile.Name,
		Keywords:   q.Keywords,
		Location:   q.Location,
		OutputPath: sink.OutputPath(r.cfg.Output.Dir, started, profile.Name, q.Location, q.Keywords, r.cfg.Output.Format),
		StartedAt:  started,
	}
	logger := siteLogger.WithCorrelationId(summary.RunID)
	logger.Info().Str("keywords", q.Keywords).Str("location", q.Location).Str("output", summary.OutputPath).Msg("Starting search run")
	if r.observer != nil {
		r.observer.RunStarted(summary)
	}

	var runErr error
	if err := searcher.Search(ctx, session, q); err != nil {
		if ctx.Err() != nil {
			runErr = ctx.Err()
		}
		summary.Err = err.Error()
		summary.FinalState = scraper.Cursor{State: scraper.Exhausted, Page: 1}.String()
		logger.Error().Err(err).Msg("Search failed, skipping")
	} else {
		result, err := r.paginate(ctx, session, profile, q, summary.OutputPath, logger)
		summary.PagesProcessed = result.PagesProcessed
		summary.PagesSkipped = result.PagesSkipped
		summary.Records = result.Records
		summary.Applications = result.Applications
		summary.Tags = result.Tags
		summary.FinalState = result.FinalState
		if err != nil {
			runErr = err
			summary.Err = err.Error()
		}
	}
	summary.FinishedAt = r.now()

	logger.Info().
		Int("records", summary.Records).
		Str("state", summary.FinalState).
		Str("duration", summary.Duration().String()).
		Msg("Search run finished")
	if r.observer != nil {
		r.observer.RunFinished(summary)
	}
	r.notify(summary, logger)
	return summary, runErr
}

func (r *Runner) paginate(ctx context.Context, session browser.Session, profile site.Profile, q scraper.Query, outputPath string, logger arbor.ILogger) (models.RunSummary, error) {
	cfg := r.cfg
	out := r.sink(profile, q, outputPath, logger)

	explorer := scraper.NewExplorer(session, profile, scraper.ExploreOptions{
		Stride:      cfg.Stride,
		ScrollPause: cfg.Delays.Scroll,
	}, r.pauser, logger)
	extractor := scraper.NewExtractor(session, profile, scraper.ExtractOptions{
		DetailPause: cfg.Delays.Detail,
		Markdown:    cfg.Extract.DescriptionFormat == "markdown",
	}, r.pauser, logger)

	var opts []scraper.WorkerOption
	if r.seen != nil {
		opts = append(opts, scraper.WithSeenCache(r.seen))
	}
	if r.tagger != nil {
		opts = append(opts, scraper.WithTagger(r.tagger))
	}
	if cfg.EasyApply {
		if a, err := r.applier(session, profile, logger); err != nil {
			logger.Warn().Err(err).Msg("Easy Apply disabled")
		} else {
			opts = append(opts, scraper.WithApplier(a))
		}
	}
	worker := scraper.NewPageWorker(explorer, extractor, out, logger, opts...)

	paginator := scraper.NewPaginator(session, profile, worker, scraper.PaginateOptions{
		MaxPages:       cfg.MaxPages,
		PageRetries:    cfg.Retries.Page,
		ControlRetries: cfg.Retries.Control,
		PageTimeout:    cfg.PageTimeout,
		ControlPause:   cfg.Delays.ControlRetry,
		SettlePause:    cfg.Delays.Settle,
		RetryBackoff:   cfg.Delays.Backoff,
	}, r.pauser, logger).
		WithScreenshots(browser.NewScreenshotDebugger(cfg.Browser.ScreenshotsDir, session, logger))
	if r.observer != nil {
		paginator.OnTransition(func(c scraper.Cursor) { r.observer.CursorChanged(c.String()) })
	}

	result, err := paginator.Run(ctx)
	if c, ok := out.(interface{ Close() error }); ok {
		if cerr := c.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("Failed to close sink")
		}
	}
	return result, err
}

func (r *Runner) sink(profile site.Profile, q scraper.Query, outputPath string, logger arbor.ILogger) scraper.Sink {
	var file sink.Sink
	if r.cfg.Output.Format == "xlsx" {
		file = sink.NewXLSX(outputPath, logger)
	} else {
		file = sink.NewCSV(outputPath, logger)
	}
	if r.store == nil {
		return file
	}
	return sink.NewTee(file, logger, sink.NewPostgres(r.store, profile.Name, q.Keywords, q.Location, logger))
}

func (r *Runner) applier(session browser.Session, profile site.Profile, logger arbor.ILogger) (scraper.Applier, error) {
	var opts []apply.Option
	if r.store != nil {
		opts = append(opts, apply.WithRecorder(r.store))
	}
	return apply.New(session, profile, r.cfg.Delays.Detail, r.pauser, logger, opts...)
}

func (r *Runner) notify(summary models.RunSummary, logger arbor.ILogger) {
	if r.notifier == nil {
		return
	}
	// The summary is still sent when the crawl context was cancelled.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := r.notifier.SendRunSummary(ctx, summary); err != nil {
		logger.Warn().Err(err).Msg("Failed to send run summary")
	}
}

func orBlank(values []string) []string {
	if len(values) == 0 {
		return []string{""}
	}
	return values
}

// IsFatal reports whether err should abort the process rather than be
// reported as a finished crawl.
func IsFatal(err error) bool {
	return err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
