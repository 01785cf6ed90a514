package indeed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"go-jobsearch-automation/internal/browser/browsertest"
	"go-jobsearch-automation/internal/scraper"
	"go-jobsearch-automation/internal/site"
	"go-jobsearch-automation/internal/stealth"
)

func TestSearch_FallsBackToForm(t *testing.T) {
	profile, err := site.Lookup("indeed")
	require.NoError(t, err)
	in := NewIndeedScraper(profile, scraper.SearchOptions{Retries: 1, PollAttempts: 1}, &stealth.NopPauser{}, arbor.NewLogger())

	session := browsertest.New(nil)
	session.Present[whatInput] = true
	session.Present[whereInput] = true
	session.OnPress = func(selector, key string) {
		if selector == whereInput {
			session.SetPresent(profile.ResultsReady, true)
		}
	}

	q := scraper.Query{Keywords: "Data Scientist", Location: "Austin, TX"}
	require.NoError(t, in.Search(context.Background(), session, q))

	require.Len(t, session.Navigated, 2)
	assert.Contains(t, session.Navigated[0], "q=Data+Scientist")
	assert.Equal(t, profile.Origin, session.Navigated[1])
	assert.Equal(t, "Data Scientist", session.Filled[whatInput])
	assert.Equal(t, "Austin, TX", session.Filled[whereInput])
	assert.NoError(t, in.Login(context.Background(), session))
}
