package scraper

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"go-jobsearch-automation/internal/browser/browsertest"
	"go-jobsearch-automation/internal/models"
	"go-jobsearch-automation/internal/site"
)

const jobBase = "https://www.linkedin.com/jobs/view/"

func linkedIn(t *testing.T) site.Profile {
	t.Helper()
	p, err := site.Lookup("linkedin")
	require.NoError(t, err)
	return p
}

// job returns the href of job id, with an optional tracking suffix.
func job(id int, suffix string) string {
	href := fmt.Sprintf("%s%d/", jobBase, id)
	if suffix != "" {
		href += "?" + suffix
	}
	return href
}

func link(id int) models.JobLink {
	return models.JobLink(job(id, ""))
}

func links(ids ...int) []models.JobLink {
	out := make([]models.JobLink, 0, len(ids))
	for _, id := range ids {
		out = append(out, link(id))
	}
	return out
}

type detailParts struct {
	title, company, location, description string
}

// detail renders a LinkedIn detail pane. Empty parts are left out.
func detail(d detailParts) string {
	out := ""
	if d.title != "" {
		out += `<span class="job-details-jobs-unified-top-card__job-title-link"> ` + d.title + ` </span>`
	}
	if d.company != "" || d.location != "" {
		out += `<div class="job-details-jobs-unified-top-card__primary-description-without-tagline">` +
			d.company + ` · ` + d.location + ` · 2 days ago</div>`
	}
	if d.description != "" {
		out += `<div class="jobs-description-content__text">` + d.description + `</div>`
	}
	return out
}

// resultsSession builds a one-page fake session whose jobs all have details.
func resultsSession(anchors []string, initial, reveal int) *browsertest.Session {
	s := browsertest.New(map[int]*browsertest.Page{
		1: {Anchors: anchors, Initial: initial, Reveal: reveal},
	})
	for _, href := range anchors {
		key, _, _ := strings.Cut(href, "?")
		s.Details[key] = detail(detailParts{
			title:       "Engineer " + key,
			company:     "Acme",
			location:    "Seattle, WA",
			description: "About the job Build things.",
		})
	}
	return s
}
