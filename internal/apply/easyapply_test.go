package apply

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"go-jobsearch-automation/internal/browser"
	"go-jobsearch-automation/internal/browser/browsertest"
	"go-jobsearch-automation/internal/models"
	"go-jobsearch-automation/internal/site"
	"go-jobsearch-automation/internal/stealth"
)

const jobHref = "https://www.linkedin.com/jobs/view/42/?refId=abc"

type memoryRecorder struct {
	apps []models.Application
}

func (m *memoryRecorder) UpsertApplication(ctx context.Context, source string, app models.Application) error {
	m.apps = append(m.apps, app)
	return nil
}

func setup(t *testing.T) (*browsertest.Session, browser.Element, site.ApplyRule, *EasyApply, *memoryRecorder) {
	t.Helper()
	profile, err := site.Lookup("linkedin")
	require.NoError(t, err)

	s := browsertest.New(map[int]*browsertest.Page{1: {Anchors: []string{jobHref}}})
	els, err := s.FindAllElements(context.Background(), s.AnchorSelector)
	require.NoError(t, err)
	require.Len(t, els, 1)

	rec := &memoryRecorder{}
	a, err := New(s, profile, stealth.Range{}, &stealth.NopPauser{}, arbor.NewLogger(), WithRecorder(rec))
	require.NoError(t, err)
	return s, els[0], *profile.Apply, a, rec
}

func TestApply_Submitted(t *testing.T) {
	s, el, rule, a, rec := setup(t)
	s.Present[rule.ApplyButton] = true
	var clicks []string
	s.OnClick = func(selector string) {
		clicks = append(clicks, selector)
		if selector == rule.ApplyButton {
			s.SetPresent(rule.SubmitButton, true)
		}
	}

	assert.Equal(t, models.StatusSubmitted, a.Apply(context.Background(), el))
	assert.Equal(t, []string{rule.ApplyButton, rule.SubmitButton}, clicks)
	assert.Equal(t, []string{jobHref}, s.Activated)
	require.Len(t, rec.apps, 1)
	assert.Equal(t, models.Application{
		Link:   "https://www.linkedin.com/jobs/view/42/",
		Status: models.StatusSubmitted,
	}, rec.apps[0])
}

func TestApply_Discarded(t *testing.T) {
	s, el, rule, a, _ := setup(t)
	s.Present[rule.ApplyButton] = true
	s.Present[rule.DismissButton] = true
	s.Present[rule.ConfirmDiscard] = true
	var clicks []string
	s.OnClick = func(selector string) { clicks = append(clicks, selector) }

	assert.Equal(t, models.StatusDiscarded, a.Apply(context.Background(), el))
	assert.Equal(t, []string{rule.ApplyButton, rule.DismissButton, rule.ConfirmDiscard}, clicks)
}

func TestApply_Unavailable(t *testing.T) {
	_, el, _, a, rec := setup(t)
	assert.Equal(t, models.StatusUnavailable, a.Apply(context.Background(), el))
	require.Len(t, rec.apps, 1)
	assert.Equal(t, models.StatusUnavailable, rec.apps[0].Status)
}

func TestApply_Failed(t *testing.T) {
	t.Run("job does not open", func(t *testing.T) {
		s, el, _, a, _ := setup(t)
		s.FailActivate["https://www.linkedin.com/jobs/view/42/"] = errors.New("detached")
		assert.Equal(t, models.StatusFailed, a.Apply(context.Background(), el))
	})

	t.Run("no dismiss button", func(t *testing.T) {
		s, el, rule, a, _ := setup(t)
		s.Present[rule.ApplyButton] = true
		assert.Equal(t, models.StatusFailed, a.Apply(context.Background(), el))
	})

	t.Run("stale element", func(t *testing.T) {
		s, el, _, a, rec := setup(t)
		s.Invalidate()
		assert.Equal(t, models.StatusFailed, a.Apply(context.Background(), el))
		assert.Empty(t, rec.apps, "link unknown for a stale handle")
	})
}

func TestNew_Unsupported(t *testing.T) {
	profile, err := site.Lookup("indeed")
	require.NoError(t, err)
	_, err = New(browsertest.New(nil), profile, stealth.Range{}, &stealth.NopPauser{}, arbor.NewLogger())
	assert.ErrorIs(t, err, ErrUnsupported)
}
