package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"

	"go-jobsearch-automation/internal/browser"
	"go-jobsearch-automation/internal/models"
	"go-jobsearch-automation/internal/site"
	"go-jobsearch-automation/internal/stealth"
)

var errLinkGone = errors.New("job anchor no longer on page")

type ExtractOptions struct {
	DetailPause stealth.Range
	// Markdown renders the description HTML as markdown instead of plain text.
	Markdown bool
}

// Extractor opens each discovered job and reads its fields from the detail pane.
type Extractor struct {
	driver  browser.Driver
	profile site.Profile
	opts    ExtractOptions
	pauser  stealth.Pauser
	logger  arbor.ILogger
	md      *md.Converter
}

func NewExtractor(driver browser.Driver, profile site.Profile, opts ExtractOptions, pauser stealth.Pauser, logger arbor.ILogger) *Extractor {
	x := &Extractor{
		driver:  driver,
		profile: profile,
		opts:    opts,
		pauser:  pauser,
		logger:  logger,
	}
	if opts.Markdown {
		x.md = md.NewConverter(profile.Origin, true, nil)
	}
	return x
}

// Extract returns one record per frontier link in discovery order. Items that
// fail as a whole are logged and left out; missing fields never fail an item.
// Only context cancellation is returned as an error.
func (x *Extractor) Extract(ctx context.Context, frontier *Frontier) ([]models.JobRecord, error) {
	links := frontier.Links()
	records := make([]models.JobRecord, 0, len(links))

	for i, link := range links {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		x.logger.Info().
			Int("item", i+1).
			Int("total", len(links)).
			Str("link", string(link)).
			Msg("Extracting job")

		rec, err := x.extractOne(ctx, frontier, link)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return records, ctxErr
			}
			x.logger.Warn().Err(err).Str("link", string(link)).Msg("Skipping job")
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (x *Extractor) extractOne(ctx context.Context, frontier *Frontier, link models.JobLink) (models.JobRecord, error) {
	el, _ := frontier.Element(link)
	if browser.IsStale(x.driver, el) {
		fresh, err := x.relocate(ctx, link)
		if err != nil {
			return models.JobRecord{}, err
		}
		frontier.Refresh(link, fresh)
		el = fresh
	}

	if err := x.driver.Activate(ctx, el); err != nil {
		return models.JobRecord{}, fmt.Errorf("activate: %w", err)
	}
	if err := x.pauser.Pause(ctx, x.opts.DetailPause); err != nil {
		return models.JobRecord{}, err
	}

	markup, err := x.driver.PageMarkup(ctx)
	if err != nil {
		return models.JobRecord{}, fmt.Errorf("read markup: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return models.JobRecord{}, fmt.Errorf("parse markup: %w", err)
	}

	rec := models.JobRecord{
		Link:        link,
		Title:       x.field(doc, x.profile.Title, false),
		Company:     x.field(doc, x.profile.Company, false),
		Location:    x.field(doc, x.profile.Location, false),
		Description: x.field(doc, x.profile.Description, x.md != nil),
	}
	for _, name := range missingFields(rec) {
		x.logger.Debug().Str("link", string(link)).Str("field", name).Msg("Field not found")
	}
	return rec, nil
}

// missingFields lists the absent header fields in column order.
func missingFields(rec models.JobRecord) []string {
	var missing []string
	for _, f := range []struct {
		name  string
		field models.Field
	}{
		{"title", rec.Title},
		{"company", rec.Company},
		{"location", rec.Location},
	} {
		if !f.field.Present() {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// relocate finds the current anchor for link after the page re-rendered.
func (x *Extractor) relocate(ctx context.Context, link models.JobLink) (browser.Element, error) {
	found, err := scanJobAnchors(ctx, x.driver, x.profile, x.logger)
	if err != nil {
		return browser.Element{}, fmt.Errorf("relocate: %w", err)
	}
	for _, c := range found {
		if c.link == link {
			return c.el, nil
		}
	}
	return browser.Element{}, errLinkGone
}

// field applies a rule's locators in order and keeps the first non-empty hit.
func (x *Extractor) field(doc *goquery.Document, rule site.FieldRule, markdown bool) models.Field {
	for _, loc := range rule.Locators {
		sel := doc.Find(loc.Selector).First()
		if sel.Length() == 0 {
			continue
		}

		var text string
		if markdown && loc.Separator == "" {
			text = x.markdown(sel)
		} else {
			text = collapseSpace(sel.Text())
		}
		if loc.Separator != "" {
			parts := strings.Split(text, loc.Separator)
			if loc.Part >= len(parts) {
				continue
			}
			text = collapseSpace(parts[loc.Part])
		}
		if rule.StripPrefix != "" {
			if rest, ok := strings.CutPrefix(text, rule.StripPrefix); ok && strings.TrimSpace(rest) != "" {
				text = strings.TrimSpace(rest)
			}
		}
		if text != "" {
			return models.Extracted(text)
		}
	}
	if rule.Placeholder != "" {
		return models.Placeholder(rule.Placeholder)
	}
	return models.Absent()
}

func (x *Extractor) markdown(sel *goquery.Selection) string {
	html, err := sel.Html()
	if err != nil {
		return collapseSpace(sel.Text())
	}
	out, err := x.md.ConvertString(html)
	if err != nil {
		x.logger.Debug().Err(err).Msg("Markdown conversion failed, using plain text")
		return collapseSpace(sel.Text())
	}
	return strings.TrimSpace(out)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
