package scraper

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"go-jobsearch-automation/internal/browser"
	"go-jobsearch-automation/internal/models"
)

// Sink persists one page of records before the next page is opened.
type Sink interface {
	Append(ctx context.Context, records []models.JobRecord) error
}

// SeenCache remembers links handled by earlier runs.
type SeenCache interface {
	IsSeen(link models.JobLink) bool
	Add(links []models.JobLink)
}

// Applier submits a simplified application for the job behind el.
type Applier interface {
	Apply(ctx context.Context, el browser.Element) models.ApplicationStatus
}

// Tagger labels a record with topical tags.
type Tagger interface {
	Tags(rec models.JobRecord) []string
}

// PageWorker is the PageProcessor used for real runs:
// explore -> drop seen -> extract -> persist -> apply.
type PageWorker struct {
	explorer  *Explorer
	extractor *Extractor
	sink      Sink
	seen      SeenCache
	applier   Applier
	tagger    Tagger
	logger    arbor.ILogger
}

type WorkerOption func(*PageWorker)

func WithSeenCache(c SeenCache) WorkerOption { return func(w *PageWorker) { w.seen = c } }
func WithApplier(a Applier) WorkerOption     { return func(w *PageWorker) { w.applier = a } }
func WithTagger(t Tagger) WorkerOption       { return func(w *PageWorker) { w.tagger = t } }

func NewPageWorker(explorer *Explorer, extractor *Extractor, sink Sink, logger arbor.ILogger, opts ...WorkerOption) *PageWorker {
	w := &PageWorker{
		explorer:  explorer,
		extractor: extractor,
		sink:      sink,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *PageWorker) ProcessPage(ctx context.Context, page int) (PageResult, error) {
	res := PageResult{
		Applications: map[models.ApplicationStatus]int{},
		Tags:         map[string]int{},
	}

	frontier, err := w.explorer.Explore(ctx)
	if err != nil {
		return res, fmt.Errorf("explore: %w", err)
	}
	discovered := frontier.Len()
	frontier = w.dropSeen(frontier)
	w.logger.Info().
		Int("page", page).
		Int("discovered", discovered).
		Int("new", frontier.Len()).
		Msg("Job links collected")

	records, err := w.extractor.Extract(ctx, frontier)
	if err != nil {
		return res, fmt.Errorf("extract: %w", err)
	}

	if err := w.sink.Append(ctx, records); err != nil {
		return res, fmt.Errorf("persist: %w", err)
	}
	res.Records = len(records)

	links := make([]models.JobLink, 0, len(records))
	for _, rec := range records {
		links = append(links, rec.Link)
		if w.tagger != nil {
			for _, tag := range w.tagger.Tags(rec) {
				res.Tags[tag]++
			}
		}
	}
	if w.seen != nil {
		w.seen.Add(links)
	}

	if w.applier != nil {
		for _, link := range links {
			if ctx.Err() != nil {
				break
			}
			el, _ := frontier.Element(link)
			status := w.applier.Apply(ctx, el)
			res.Applications[status]++
			w.logger.Info().Str("link", string(link)).Str("status", string(status)).Msg("Easy Apply")
		}
	}

	w.logger.Info().Int("page", page).Int("records", res.Records).Msg("Page saved")
	return res, nil
}

func (w *PageWorker) dropSeen(f *Frontier) *Frontier {
	if w.seen == nil {
		return f
	}
	out := NewFrontier()
	for _, link := range f.Links() {
		if w.seen.IsSeen(link) {
			continue
		}
		el, _ := f.Element(link)
		out.Add(link, el)
	}
	return out
}
