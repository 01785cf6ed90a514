package runner

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"go-jobsearch-automation/internal/browser"
	"go-jobsearch-automation/internal/config"
)

// BrowserSessions returns a factory for the configured driver. Each site gets
// its own session carrying that site's cookie export. The returned close
// function releases the shared browser.
func BrowserSessions(ctx context.Context, cfg *config.Config, logger arbor.ILogger) (SessionFactory, func() error, error) {
	opts := browser.Options{
		Headless:  cfg.Browser.Headless,
		UserAgent: cfg.Browser.UserAgent,
		Width:     cfg.Browser.Width,
		Height:    cfg.Browser.Height,
	}

	cookies := func(site string) []browser.Cookie {
		path := cfg.CookieFile(site)
		c, err := browser.LoadCookies(path)
		if err != nil {
			logger.Warn().Err(err).Str("site", site).Msg("Could not load cookies, continuing")
			return nil
		}
		if len(c) > 0 {
			logger.Info().Str("site", site).Int("count", len(c)).Msg("Loaded cookies")
		}
		return c
	}

	switch cfg.Browser.Driver {
	case "chromedp":
		factory := func(ctx context.Context, site string) (browser.Session, error) {
			return browser.NewChromeDP(ctx, opts, cookies(site), logger)
		}
		return factory, func() error { return nil }, nil

	case "playwright", "":
		pm, err := browser.NewPlaywright(ctx, opts, logger)
		if err != nil {
			return nil, nil, err
		}
		factory := func(ctx context.Context, site string) (browser.Session, error) {
			return pm.NewSession(cookies(site))
		}
		return factory, pm.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown browser driver %q", cfg.Browser.Driver)
}
