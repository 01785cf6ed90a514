// Searchers open the first page of results for a query on one job board.

package scraper

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"go-jobsearch-automation/internal/browser"
	"go-jobsearch-automation/internal/site"
	"go-jobsearch-automation/internal/stealth"
)

type Query struct {
	Keywords     string
	Location     string
	PostedWithin string
}

// Searcher defines what every job board flow must implement.
type Searcher interface {
	// Name is the site profile name (linkedin, indeed, ...)
	Name() string
	// Login authenticates the session if the board requires it.
	Login(ctx context.Context, session browser.Session) error
	// Search leaves the session on page 1 of the results for q.
	Search(ctx context.Context, session browser.Session, q Query) error
}

type SearchOptions struct {
	Retries int
	Backoff stealth.Range
	// Poll is the pause between checks for the results list.
	Poll stealth.Range
	// PollAttempts bounds how often the results list is looked for per try.
	PollAttempts int
}

// WaitFor looks for selector up to attempts times, pausing in between.
func WaitFor(ctx context.Context, d browser.Driver, selector string, attempts int, pause stealth.Range, pauser stealth.Pauser) (browser.Element, error) {
	if attempts <= 0 {
		attempts = 1
	}
	for i := 1; i <= attempts; i++ {
		el, ok, err := browser.FindOptional(ctx, d, selector)
		if err != nil {
			return browser.Element{}, err
		}
		if ok {
			return el, nil
		}
		if i < attempts {
			if err := pauser.Pause(ctx, pause); err != nil {
				return browser.Element{}, err
			}
		}
	}
	return browser.Element{}, fmt.Errorf("%q: %w", selector, browser.ErrNotFound)
}

// OpenResults navigates to the profile's search URL for q and waits for the
// results list, retrying the whole navigation with backoff.
func OpenResults(ctx context.Context, d browser.Driver, p site.Profile, q Query, opts SearchOptions, pauser stealth.Pauser, logger arbor.ILogger) error {
	if p.SearchURL == nil {
		return fmt.Errorf("site %s has no search url", p.Name)
	}
	target := p.SearchURL(q.Keywords, q.Location, q.PostedWithin)
	retries := max(opts.Retries, 1)

	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		logger.Info().Str("url", target).Int("attempt", attempt).Msg("Opening job search")
		lastErr = d.Navigate(ctx, target)
		if lastErr == nil {
			_, lastErr = WaitFor(ctx, d, p.ResultsReady, opts.PollAttempts, opts.Poll, pauser)
		}
		if lastErr == nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		logger.Warn().Err(lastErr).Int("attempt", attempt).Msg("Job search not ready")
		if attempt < retries {
			if err := pauser.Pause(ctx, opts.Backoff); err != nil {
				return err
			}
		}
	}
	return fmt.Errorf("search %q in %q failed after %d attempts: %w", q.Keywords, q.Location, retries, lastErr)
}
