package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"go-jobsearch-automation/internal/browser"
	"go-jobsearch-automation/internal/browser/browsertest"
	"go-jobsearch-automation/internal/models"
	"go-jobsearch-automation/internal/stealth"
)

// recordingProcessor remembers which page was shown each time it ran.
type recordingProcessor struct {
	session *browsertest.Session
	pages   []int
	shown   []int
	fail    func(page, attempt int) error
	calls   map[int]int
}

func (p *recordingProcessor) ProcessPage(ctx context.Context, page int) (PageResult, error) {
	if p.calls == nil {
		p.calls = map[int]int{}
	}
	p.calls[page]++
	if p.fail != nil {
		if err := p.fail(page, p.calls[page]); err != nil {
			return PageResult{}, err
		}
	}
	p.pages = append(p.pages, page)
	p.shown = append(p.shown, p.session.CurrentPage())
	return PageResult{
		Records:      2,
		Applications: map[models.ApplicationStatus]int{models.StatusSubmitted: 1},
		Tags:         map[string]int{"remote": 1},
	}, nil
}

func paginate(t *testing.T, s *browsertest.Session, proc PageProcessor, opts PaginateOptions) (models.RunSummary, *stealth.NopPauser) {
	t.Helper()
	pauser := &stealth.NopPauser{}
	p := NewPaginator(s, linkedIn(t), proc, opts, pauser, arbor.NewLogger())
	summary, err := p.Run(context.Background())
	require.NoError(t, err)
	return summary, pauser
}

func TestPaginate_StopsAtCeiling(t *testing.T) {
	s := browsertest.New(nil).WithControls(10)
	proc := &recordingProcessor{session: s}

	summary, _ := paginate(t, s, proc, PaginateOptions{MaxPages: 3})

	assert.Equal(t, []int{1, 2, 3}, proc.pages)
	assert.Equal(t, []int{1, 2, 3}, proc.shown)
	assert.Equal(t, []int{1, 2, 3}, summary.PagesProcessed)
	assert.Empty(t, summary.PagesSkipped)
	assert.Equal(t, 6, summary.Records)
	assert.Equal(t, 3, summary.Applications[string(models.StatusSubmitted)])
	assert.Equal(t, 3, summary.Tags["remote"])
	assert.Equal(t, "exhausted", summary.FinalState)
	assert.Equal(t, []int{1, 2, 3}, s.ControlHits)
}

func TestPaginate_StopsWhenControlMissing(t *testing.T) {
	s := browsertest.New(nil).WithControls(2)
	proc := &recordingProcessor{session: s}

	summary, pauser := paginate(t, s, proc, PaginateOptions{ControlRetries: 4})

	assert.Equal(t, []int{1, 2}, proc.pages)
	assert.Equal(t, []int{1, 2}, summary.PagesProcessed)
	assert.Equal(t, "exhausted", summary.FinalState)
	// two settle pauses, then three pauses between four failed lookups for page 3
	assert.Equal(t, 2+3, pauser.Calls)
}

func TestPaginate_FirstPageWithoutControl(t *testing.T) {
	s := browsertest.New(nil)
	proc := &recordingProcessor{session: s}

	summary, _ := paginate(t, s, proc, PaginateOptions{})

	assert.Equal(t, []int{1}, proc.pages)
	assert.Equal(t, []int{1}, summary.PagesProcessed)
	assert.Empty(t, s.ControlHits)
}

func TestPaginate_Ceiling(t *testing.T) {
	profile := linkedIn(t)
	tests := []struct {
		name     string
		ceiling  int
		maxPages int
		want     int
	}{
		{"profile ceiling", 40, 0, 40},
		{"max pages below ceiling", 40, 3, 3},
		{"max pages above ceiling", 2, 5, 2},
		{"no profile ceiling", 0, 0, defaultPageCeiling},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile.PageCeiling = tt.ceiling
			p := NewPaginator(nil, profile, nil, PaginateOptions{MaxPages: tt.maxPages}, &stealth.NopPauser{}, arbor.NewLogger())
			assert.Equal(t, tt.want, p.Ceiling())
		})
	}
}

func TestPaginate_NeverExceedsProfileCeiling(t *testing.T) {
	s := browsertest.New(nil).WithControls(10)
	proc := &recordingProcessor{session: s}
	profile := linkedIn(t)
	profile.PageCeiling = 2

	p := NewPaginator(s, profile, proc, PaginateOptions{MaxPages: 5}, &stealth.NopPauser{}, arbor.NewLogger())
	summary, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, summary.PagesProcessed)
}

func TestPaginate_RetriesWholePage(t *testing.T) {
	s := browsertest.New(nil).WithControls(3)
	proc := &recordingProcessor{
		session: s,
		fail: func(page, attempt int) error {
			if page == 1 && attempt <= 2 {
				return errors.New("stale element")
			}
			if page == 2 {
				return errors.New("always broken")
			}
			return nil
		},
	}

	summary, _ := paginate(t, s, proc, PaginateOptions{PageRetries: 3})

	assert.Equal(t, 3, proc.calls[1])
	assert.Equal(t, 3, proc.calls[2])
	assert.Equal(t, 1, proc.calls[3])
	assert.Equal(t, []int{1, 3}, summary.PagesProcessed)
	assert.Equal(t, []int{2}, summary.PagesSkipped)
	assert.Equal(t, "exhausted", summary.FinalState)
}

func TestPaginate_PageTimeout(t *testing.T) {
	s := browsertest.New(nil)
	attempts := 0
	proc := PageProcessorFunc(func(ctx context.Context, page int) (PageResult, error) {
		attempts++
		<-ctx.Done()
		return PageResult{}, ctx.Err()
	})

	summary, _ := paginate(t, s, proc, PaginateOptions{PageRetries: 2, PageTimeout: 10 * time.Millisecond})

	assert.Equal(t, 2, attempts)
	assert.Equal(t, []int{1}, summary.PagesSkipped)
}

func TestPaginate_Transitions(t *testing.T) {
	s := browsertest.New(nil).WithControls(5)
	proc := &recordingProcessor{session: s}

	var seen []string
	p := NewPaginator(s, linkedIn(t), proc, PaginateOptions{MaxPages: 2}, &stealth.NopPauser{}, arbor.NewLogger()).
		OnTransition(func(c Cursor) { seen = append(seen, c.String()) })
	_, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"awaiting_page(1)", "processing(1)",
		"awaiting_page(2)", "processing(2)",
		"exhausted",
	}, seen)
}

func TestPaginate_ScreenshotOnFailedAttempt(t *testing.T) {
	s := browsertest.New(nil)
	proc := PageProcessorFunc(func(ctx context.Context, page int) (PageResult, error) {
		return PageResult{}, errors.New("boom")
	})

	p := NewPaginator(s, linkedIn(t), proc, PaginateOptions{PageRetries: 2}, &stealth.NopPauser{}, arbor.NewLogger())
	p.WithScreenshots(browser.NewScreenshotDebugger(t.TempDir(), s, arbor.NewLogger()))
	_, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, s.Screenshots, 2)
}

func TestPaginate_Cancelled(t *testing.T) {
	s := browsertest.New(nil).WithControls(5)
	ctx, cancel := context.WithCancel(context.Background())
	proc := PageProcessorFunc(func(context.Context, int) (PageResult, error) {
		cancel()
		return PageResult{Records: 1}, nil
	})

	p := NewPaginator(s, linkedIn(t), proc, PaginateOptions{}, &stealth.NopPauser{}, arbor.NewLogger())
	summary, err := p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []int{1}, summary.PagesProcessed)
	assert.Equal(t, "exhausted", summary.FinalState)
}
