package indeed

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"go-jobsearch-automation/internal/browser"
	"go-jobsearch-automation/internal/scraper"
	"go-jobsearch-automation/internal/site"
	"go-jobsearch-automation/internal/stealth"
)

const (
	whatInput  = `input#text-input-what`
	whereInput = `input#text-input-where`
)

// IndeedScraper needs no login. When the search URL does not reach a results
// list the search form on the landing page is used instead.
type IndeedScraper struct {
	profile site.Profile
	opts    scraper.SearchOptions
	pauser  stealth.Pauser
	logger  arbor.ILogger
}

func NewIndeedScraper(profile site.Profile, opts scraper.SearchOptions, pauser stealth.Pauser, logger arbor.ILogger) *IndeedScraper {
	return &IndeedScraper{profile: profile, opts: opts, pauser: pauser, logger: logger}
}

func (s *IndeedScraper) Name() string {
	return s.profile.Name
}

func (s *IndeedScraper) Login(ctx context.Context, session browser.Session) error {
	return nil
}

func (s *IndeedScraper) Search(ctx context.Context, session browser.Session, q scraper.Query) error {
	err := scraper.OpenResults(ctx, session, s.profile, q, s.opts, s.pauser, s.logger)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return err
	}
	s.logger.Warn().Err(err).Msg("URL search failed, falling back to the search form")
	if formErr := s.searchForm(ctx, session, q); formErr != nil {
		return fmt.Errorf("indeed search: %w", formErr)
	}
	return nil
}

func (s *IndeedScraper) searchForm(ctx context.Context, session browser.Session, q scraper.Query) error {
	if err := session.Navigate(ctx, s.profile.Origin); err != nil {
		return err
	}
	for _, field := range []struct{ selector, value string }{
		{whatInput, q.Keywords},
		{whereInput, q.Location},
	} {
		el, err := scraper.WaitFor(ctx, session, field.selector, s.opts.PollAttempts, s.opts.Poll, s.pauser)
		if err != nil {
			return err
		}
		if err := session.Fill(ctx, el, field.value); err != nil {
			return fmt.Errorf("fill %s: %w", field.selector, err)
		}
		if err := s.pauser.Pause(ctx, s.opts.Poll); err != nil {
			return err
		}
		if err := session.Press(ctx, el, "Enter"); err != nil {
			return fmt.Errorf("submit %s: %w", field.selector, err)
		}
		session.Invalidate()
		if err := s.pauser.Pause(ctx, s.opts.Backoff); err != nil {
			return err
		}
	}
	_, err := scraper.WaitFor(ctx, session, s.profile.ResultsReady, s.opts.PollAttempts, s.opts.Poll, s.pauser)
	return err
}
