package site

import (
	"fmt"
	"net/url"
)

// Indeed needs no login. Organic anchors name the posting with jk= and
// sponsored ones with ad=, at any position in the query.
func init() {
	register(Profile{
		Name:   "indeed",
		Origin: "https://www.indeed.com",
		JobLinkPrefixes: []string{
			"https://www.indeed.com/rc/clk",
			"https://www.indeed.com/viewjob",
			"https://www.indeed.com/pagead/clk",
		},
		Delimiters:     "&#",
		Identify:       indeedIdentify,
		AnchorSelector: "a[href]",
		PageControl:    `a[aria-label="%d"], a[data-testid="pagination-page-%[1]d"]`,
		ResultsReady:   "#mosaic-provider-jobcards, .jobsearch-ResultsList",

		Title: FieldRule{Locators: []Locator{
			{Selector: `h2[data-testid="jobsearch-JobInfoHeader-title"]`},
			{Selector: "h2.jobsearch-JobInfoHeader-title"},
		}},
		Company: FieldRule{Locators: []Locator{
			{Selector: `[data-testid="inlineHeader-companyName"]`},
			{Selector: `[data-company-name="true"]`},
		}},
		Location: FieldRule{Locators: []Locator{
			{Selector: `[data-testid="inlineHeader-companyLocation"]`},
			{Selector: `[data-testid="job-location"]`},
		}},
		Description: FieldRule{
			Locators: []Locator{
				{Selector: "#jobDescriptionText"},
			},
			StripPrefix: "Full job description",
			Placeholder: "Job description not found.",
		},

		Stride:      1,
		PageCeiling: 30,

		SearchURL: indeedSearchURL,
	})
}

var indeedPosted = map[string]string{
	"24h":   "1",
	"week":  "7",
	"month": "30",
}

func indeedSearchURL(keywords, location, postedWithin string) string {
	q := url.Values{}
	q.Set("q", keywords)
	q.Set("l", location)
	if days, ok := indeedPosted[postedWithin]; ok {
		q.Set("fromage", days)
	}
	return fmt.Sprintf("https://www.indeed.com/jobs?%s", q.Encode())
}

// indeedIdentify maps rc/clk and viewjob links to viewjob?jk= and sponsored
// pagead/clk links to pagead/clk?ad=.
func indeedIdentify(u *url.URL) string {
	q := u.Query()
	if jk := q.Get("jk"); jk != "" {
		return "https://www.indeed.com/viewjob?jk=" + url.QueryEscape(jk)
	}
	if ad := q.Get("ad"); ad != "" && u.Path == "/pagead/clk" {
		return "https://www.indeed.com/pagead/clk?ad=" + url.QueryEscape(ad)
	}
	return ""
}
