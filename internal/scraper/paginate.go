package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"go-jobsearch-automation/internal/browser"
	"go-jobsearch-automation/internal/models"
	"go-jobsearch-automation/internal/site"
	"go-jobsearch-automation/internal/stealth"
)

const (
	DefaultPageRetries    = 5
	DefaultControlRetries = 5
	defaultPageCeiling    = 40
)

var errNoPageControl = errors.New("page control not found")

type PageState int

const (
	AwaitingPage PageState = iota
	Processing
	Exhausted
)

func (s PageState) String() string {
	switch s {
	case AwaitingPage:
		return "awaiting_page"
	case Processing:
		return "processing"
	case Exhausted:
		return "exhausted"
	}
	return fmt.Sprintf("PageState(%d)", int(s))
}

// Cursor is the paginator's position: a state and the page it refers to.
type Cursor struct {
	State PageState
	Page  int
}

func (c Cursor) String() string {
	if c.State == Exhausted {
		return c.State.String()
	}
	return fmt.Sprintf("%s(%d)", c.State, c.Page)
}

// PageResult is what processing one page produced.
type PageResult struct {
	Records      int
	Applications map[models.ApplicationStatus]int
	Tags         map[string]int
}

// PageProcessor explores, extracts and persists the currently shown page.
type PageProcessor interface {
	ProcessPage(ctx context.Context, page int) (PageResult, error)
}

// PageProcessorFunc adapts a function to PageProcessor.
type PageProcessorFunc func(ctx context.Context, page int) (PageResult, error)

func (f PageProcessorFunc) ProcessPage(ctx context.Context, page int) (PageResult, error) {
	return f(ctx, page)
}

type PaginateOptions struct {
	// MaxPages caps the run below the profile's ceiling. Zero uses the ceiling.
	MaxPages       int
	PageRetries    int
	ControlRetries int
	// PageTimeout bounds one processing attempt. Zero means no bound.
	PageTimeout  time.Duration
	ControlPause stealth.Range
	SettlePause  stealth.Range
	RetryBackoff stealth.Range
}

// Paginator walks the result pages: AwaitingPage(n) -> Processing(n) ->
// AwaitingPage(n+1) until a control is missing or the ceiling is reached.
type Paginator struct {
	driver    browser.Driver
	profile   site.Profile
	processor PageProcessor
	opts      PaginateOptions
	pauser    stealth.Pauser
	logger    arbor.ILogger

	shots   *browser.ScreenshotDebugger
	observe func(Cursor)
}

func NewPaginator(driver browser.Driver, profile site.Profile, processor PageProcessor, opts PaginateOptions, pauser stealth.Pauser, logger arbor.ILogger) *Paginator {
	if opts.PageRetries <= 0 {
		opts.PageRetries = DefaultPageRetries
	}
	if opts.ControlRetries <= 0 {
		opts.ControlRetries = DefaultControlRetries
	}
	return &Paginator{
		driver:    driver,
		profile:   profile,
		processor: processor,
		opts:      opts,
		pauser:    pauser,
		logger:    logger,
		observe:   func(Cursor) {},
	}
}

// WithScreenshots captures the page after every failed processing attempt.
func (p *Paginator) WithScreenshots(d *browser.ScreenshotDebugger) *Paginator {
	p.shots = d
	return p
}

// OnTransition registers a callback invoked with every cursor the paginator enters.
func (p *Paginator) OnTransition(fn func(Cursor)) *Paginator {
	if fn != nil {
		p.observe = fn
	}
	return p
}

// Ceiling is the last page number the paginator will process.
func (p *Paginator) Ceiling() int {
	ceiling := p.profile.PageCeiling
	if ceiling <= 0 {
		ceiling = defaultPageCeiling
	}
	if p.opts.MaxPages > 0 && p.opts.MaxPages < ceiling {
		ceiling = p.opts.MaxPages
	}
	return ceiling
}

// Run drives the state machine to Exhausted. Page failures are logged and the
// page skipped; the returned error is non-nil only when ctx ends the run.
func (p *Paginator) Run(ctx context.Context) (models.RunSummary, error) {
	summary := models.RunSummary{
		Site:         p.profile.Name,
		Applications: map[string]int{},
		Tags:         map[string]int{},
	}
	ceiling := p.Ceiling()
	cur := Cursor{State: AwaitingPage, Page: 1}

	for cur.State != Exhausted {
		p.observe(cur)
		if err := ctx.Err(); err != nil {
			return p.finish(summary, Cursor{State: Exhausted, Page: cur.Page}), err
		}

		switch cur.State {
		case AwaitingPage:
			if err := p.openPage(ctx, cur.Page); err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return p.finish(summary, Cursor{State: Exhausted, Page: cur.Page}), ctxErr
				}
				p.logger.Info().Err(err).Int("page", cur.Page).Msg("No more pages")
				cur = Cursor{State: Exhausted, Page: cur.Page}
				continue
			}
			cur.State = Processing

		case Processing:
			res, err := p.process(ctx, cur.Page)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return p.finish(summary, Cursor{State: Exhausted, Page: cur.Page}), ctxErr
				}
				p.logger.Error().Err(err).Int("page", cur.Page).Msg("Page skipped")
				summary.PagesSkipped = append(summary.PagesSkipped, cur.Page)
			} else {
				summary.PagesProcessed = append(summary.PagesProcessed, cur.Page)
				summary.Records += res.Records
				for status, n := range res.Applications {
					summary.Applications[string(status)] += n
				}
				for tag, n := range res.Tags {
					summary.Tags[tag] += n
				}
			}

			if cur.Page+1 > ceiling {
				p.logger.Info().Int("ceiling", ceiling).Msg("Page ceiling reached")
				cur = Cursor{State: Exhausted, Page: cur.Page}
			} else {
				cur = Cursor{State: AwaitingPage, Page: cur.Page + 1}
			}
		}
	}

	p.observe(cur)
	return p.finish(summary, cur), nil
}

func (p *Paginator) finish(summary models.RunSummary, cur Cursor) models.RunSummary {
	summary.FinalState = cur.String()
	p.logger.Info().
		Int("pages_processed", len(summary.PagesProcessed)).
		Int("pages_skipped", len(summary.PagesSkipped)).
		Int("records", summary.Records).
		Msg("Pagination finished")
	return summary
}

// openPage activates the control for page n. Page 1 is already shown after a
// search, so its control is optional.
func (p *Paginator) openPage(ctx context.Context, n int) error {
	selector := p.profile.PageControlSelector(n)

	if n == 1 {
		el, ok, err := browser.FindOptional(ctx, p.driver, selector)
		if err != nil {
			return err
		}
		if !ok {
			p.logger.Info().Msg("No control for page 1, treating results as a single page")
			return nil
		}
		if err := p.driver.Activate(ctx, el); err != nil {
			p.logger.Warn().Err(err).Msg("Could not activate page 1 control, continuing on current page")
			return nil
		}
		return p.settle(ctx)
	}

	for attempt := 1; attempt <= p.opts.ControlRetries; attempt++ {
		el, ok, err := browser.FindOptional(ctx, p.driver, selector)
		if err == nil && ok {
			err = p.driver.Activate(ctx, el)
			if err == nil {
				return p.settle(ctx)
			}
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		p.logger.Info().Err(err).Int("page", n).Int("attempt", attempt).Msg("Unable to locate page control")
		if attempt < p.opts.ControlRetries {
			if err := p.pauser.Pause(ctx, p.opts.ControlPause); err != nil {
				return err
			}
		}
	}
	return fmt.Errorf("page %d: %w after %d attempts", n, errNoPageControl, p.opts.ControlRetries)
}

// settle invalidates handles from the previous render and waits for the new one.
func (p *Paginator) settle(ctx context.Context) error {
	p.driver.Invalidate()
	return p.pauser.Pause(ctx, p.opts.SettlePause)
}

func (p *Paginator) process(ctx context.Context, n int) (PageResult, error) {
	var lastErr error
	for attempt := 1; attempt <= p.opts.PageRetries; attempt++ {
		p.logger.Info().Int("page", n).Int("attempt", attempt).Msg("Processing page")

		res, err := p.attempt(ctx, n)
		if err == nil {
			return res, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return PageResult{}, ctxErr
		}
		lastErr = err
		p.logger.Warn().Err(err).Int("page", n).Int("attempt", attempt).Msg("Page attempt failed")
		p.shots.CaptureAndLog(ctx, fmt.Sprintf("page_%d_attempt_%d", n, attempt), "Captured failed page")

		if attempt < p.opts.PageRetries {
			if err := p.pauser.Pause(ctx, p.opts.RetryBackoff); err != nil {
				return PageResult{}, err
			}
		}
	}
	return PageResult{}, fmt.Errorf("page %d failed after %d attempts: %w", n, p.opts.PageRetries, lastErr)
}

func (p *Paginator) attempt(ctx context.Context, n int) (PageResult, error) {
	if p.opts.PageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.PageTimeout)
		defer cancel()
	}
	return p.processor.ProcessPage(ctx, n)
}
