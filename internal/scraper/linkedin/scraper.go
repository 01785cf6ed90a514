package linkedin

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"go-jobsearch-automation/internal/browser"
	"go-jobsearch-automation/internal/config"
	"go-jobsearch-automation/internal/scraper"
	"go-jobsearch-automation/internal/site"
	"go-jobsearch-automation/internal/stealth"
)

type LinkedInScraper struct {
	profile site.Profile
	creds   config.Credentials
	opts    scraper.SearchOptions
	pauser  stealth.Pauser
	logger  arbor.ILogger
}

func NewLinkedInScraper(profile site.Profile, creds config.Credentials, opts scraper.SearchOptions, pauser stealth.Pauser, logger arbor.ILogger) *LinkedInScraper {
	return &LinkedInScraper{
		profile: profile,
		creds:   creds,
		opts:    opts,
		pauser:  pauser,
		logger:  logger,
	}
}

func (s *LinkedInScraper) Name() string {
	return s.profile.Name
}

// Login reuses cookie sessions: the feed is opened first and the
// credential form is only filled when the global nav is missing.
func (s *LinkedInScraper) Login(ctx context.Context, session browser.Session) error {
	rule := s.profile.Login
	if rule == nil {
		return nil
	}

	//warm up phase
	s.logger.Info().Msg("Navigating to LinkedIn feed for warm-up")
	if err := session.Navigate(ctx, s.profile.Origin+"/feed/"); err != nil {
		return fmt.Errorf("failed to load linkedin feed: %w", err)
	}
	if err := s.pauser.Pause(ctx, s.opts.Poll); err != nil {
		return err
	}
	if _, ok, err := browser.FindOptional(ctx, session, rule.LoggedInSelector); err != nil {
		return err
	} else if ok {
		s.logger.Info().Msg("Session cookies valid, login skipped")
		s.humanize(ctx, session)
		return nil
	}

	if s.creds.Empty() {
		return config.ErrMissingCredentials
	}

	s.logger.Info().Str("url", rule.URL).Msg("Logging in to LinkedIn")
	if err := session.Navigate(ctx, rule.URL); err != nil {
		return fmt.Errorf("failed to load login page: %w", err)
	}

	email, err := scraper.WaitFor(ctx, session, rule.EmailSelector, s.opts.PollAttempts, s.opts.Poll, s.pauser)
	if err != nil {
		return fmt.Errorf("login form: %w", err)
	}
	if err := session.Fill(ctx, email, s.creds.Email); err != nil {
		return fmt.Errorf("fill email: %w", err)
	}
	password, err := scraper.WaitFor(ctx, session, rule.PasswordSelector, s.opts.PollAttempts, s.opts.Poll, s.pauser)
	if err != nil {
		return fmt.Errorf("login form: %w", err)
	}
	if err := session.Fill(ctx, password, s.creds.Password); err != nil {
		return fmt.Errorf("fill password: %w", err)
	}
	if err := session.Press(ctx, password, "Enter"); err != nil {
		return fmt.Errorf("submit login: %w", err)
	}
	session.Invalidate()

	//verify login
	if _, err := scraper.WaitFor(ctx, session, rule.LoggedInSelector, s.opts.PollAttempts, s.opts.Poll, s.pauser); err != nil {
		return fmt.Errorf("login verification failed - global nav not found: %w", err)
	}
	s.logger.Info().Msg("Login confirmed")
	s.humanize(ctx, session)
	return nil
}

func (s *LinkedInScraper) Search(ctx context.Context, session browser.Session, q scraper.Query) error {
	if err := scraper.OpenResults(ctx, session, s.profile, q, s.opts, s.pauser, s.logger); err != nil {
		return err
	}
	s.humanize(ctx, session)
	return nil
}

func (s *LinkedInScraper) humanize(ctx context.Context, session browser.Session) {
	h, ok := session.(browser.Humanizer)
	if !ok {
		return
	}
	if err := h.Humanize(ctx); err != nil {
		s.logger.Debug().Err(err).Msg("Humanize failed")
	}
}
