package scraper

import (
	"context"
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"

	"go-jobsearch-automation/internal/browser"
	"go-jobsearch-automation/internal/models"
	"go-jobsearch-automation/internal/site"
	"go-jobsearch-automation/internal/stealth"
)

type ExploreOptions struct {
	// Stride is the number of pops between scroll-and-rescan steps.
	// Zero uses the profile's stride.
	Stride      int
	ScrollPause stealth.Range
}

// Explorer discovers every job link on the loaded results page, including
// those only rendered after scrolling, without navigating away.
type Explorer struct {
	driver  browser.Driver
	profile site.Profile
	stride  int
	pause   stealth.Range
	pauser  stealth.Pauser
	logger  arbor.ILogger
}

func NewExplorer(driver browser.Driver, profile site.Profile, opts ExploreOptions, pauser stealth.Pauser, logger arbor.ILogger) *Explorer {
	stride := opts.Stride
	if stride <= 0 {
		stride = profile.Stride
	}
	if stride <= 0 {
		stride = 1
	}
	return &Explorer{
		driver:  driver,
		profile: profile,
		stride:  stride,
		pause:   opts.ScrollPause,
		pauser:  pauser,
		logger:  logger,
	}
}

type candidate struct {
	link models.JobLink
	el   browser.Element
}

// Explore runs a level-synchronous breadth-first traversal. Each round
// consumes exactly the candidates queued when it started; every stride-th pop
// that adds a new link scrolls to it and re-scans the page for anchors that
// are neither discovered nor queued.
func (e *Explorer) Explore(ctx context.Context) (*Frontier, error) {
	frontier := NewFrontier()

	queue, err := e.scan(ctx)
	if err != nil {
		return frontier, fmt.Errorf("initial scan: %w", err)
	}
	queued := make(map[models.JobLink]int, len(queue))
	for _, c := range queue {
		queued[c.link]++
	}

	rounds, rescans := 0, 0
	for len(queue) > 0 {
		round := queue
		queue = nil
		rounds++

		for i, c := range round {
			if err := ctx.Err(); err != nil {
				return frontier, err
			}
			if queued[c.link]--; queued[c.link] <= 0 {
				delete(queued, c.link)
			}
			if !frontier.Add(c.link, c.el) {
				continue
			}
			if i%e.stride != e.stride-1 {
				continue
			}

			found, err := e.rescan(ctx, c, frontier)
			if err != nil {
				return frontier, err
			}
			rescans++
			for _, f := range found {
				if queued[f.link] > 0 || frontier.Contains(f.link) {
					continue
				}
				queue = append(queue, f)
				queued[f.link]++
			}
		}
	}

	e.logger.Debug().
		Int("links", frontier.Len()).
		Int("rounds", rounds).
		Int("rescans", rescans).
		Msg("Frontier exploration finished")
	return frontier, nil
}

// rescan scrolls c into view, waits for lazy content and scans again. A stale
// element is not scrolled. Links already in the frontier get their handles
// refreshed when the scan returns a newer render.
func (e *Explorer) rescan(ctx context.Context, c candidate, frontier *Frontier) ([]candidate, error) {
	if browser.IsStale(e.driver, c.el) {
		e.logger.Debug().Str("link", string(c.link)).Msg("Stale element, re-scanning without scroll")
	} else if err := e.driver.ScrollIntoView(ctx, c.el); err != nil && !errors.Is(err, browser.ErrStaleElement) {
		return nil, fmt.Errorf("scroll to %s: %w", c.link, err)
	}

	if err := e.pauser.Pause(ctx, e.pause); err != nil {
		return nil, err
	}

	found, err := e.scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("re-scan: %w", err)
	}
	for _, f := range found {
		if old, ok := frontier.Element(f.link); ok && old.Epoch() != f.el.Epoch() {
			frontier.Refresh(f.link, f.el)
		}
	}
	return found, nil
}

// scan returns every rendered anchor that references a job, in page order.
func (e *Explorer) scan(ctx context.Context) ([]candidate, error) {
	return scanJobAnchors(ctx, e.driver, e.profile, e.logger)
}

func scanJobAnchors(ctx context.Context, d browser.Driver, p site.Profile, logger arbor.ILogger) ([]candidate, error) {
	els, err := d.FindAllElements(ctx, p.AnchorSelector)
	if err != nil {
		return nil, err
	}
	out := make([]candidate, 0, len(els))
	for _, el := range els {
		href, err := d.Attribute(ctx, el, "href")
		if errors.Is(err, browser.ErrStaleElement) {
			logger.Debug().Msg("Anchor went stale during scan")
			continue
		}
		if err != nil {
			return nil, err
		}
		if !p.IsJobLink(href) {
			continue
		}
		out = append(out, candidate{link: p.Canonicalize(href), el: el})
	}
	return out, nil
}
