// Package site holds the per-job-board knowledge: URL patterns, selectors and
// the link classifier used to decide which anchors are job postings.
package site

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"go-jobsearch-automation/internal/models"
)

// Locator finds one field on a detail view. When Separator is set the element
// text is split on it and Part is kept.
type Locator struct {
	Selector  string
	Separator string
	Part      int
}

// FieldRule lists the locators tried in order for a field.
type FieldRule struct {
	Locators    []Locator
	StripPrefix string
	// Placeholder is used when every locator misses. Empty means the field is absent.
	Placeholder string
}

type LoginRule struct {
	URL              string
	EmailSelector    string
	PasswordSelector string
	// LoggedInSelector is present on every page once the session is authenticated.
	LoggedInSelector string
}

type ApplyRule struct {
	ApplyButton    string
	SubmitButton   string
	DismissButton  string
	ConfirmDiscard string
}

// Profile describes one job board.
type Profile struct {
	Name   string
	Origin string
	// JobLinkPrefixes are the absolute URL prefixes of job detail pages.
	JobLinkPrefixes []string
	// Delimiters are the characters where the volatile part of a job URL starts.
	Delimiters string
	// Identify rebuilds a job URL from the parameters naming the posting.
	// It returns "" when the URL carries none, and Delimiters apply instead.
	Identify func(u *url.URL) string
	// AnchorSelector matches every anchor that may reference a job.
	AnchorSelector string
	// PageControl is a fmt format taking the 1-based page number.
	PageControl string
	// ResultsReady is waited for after a search before the first page is processed.
	ResultsReady string

	Title       FieldRule
	Company     FieldRule
	Location    FieldRule
	Description FieldRule

	Stride      int
	PageCeiling int

	SearchURL func(keywords, location, postedWithin string) string
	Login     *LoginRule
	Apply     *ApplyRule
}

var registry = map[string]Profile{}

func register(p Profile) {
	registry[p.Name] = p
}

// Lookup returns a copy of the named profile.
func Lookup(name string) (Profile, error) {
	p, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Profile{}, fmt.Errorf("unknown site %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return p, nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Resolve turns a relative href into an absolute URL on the profile's origin.
func (p Profile) Resolve(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return strings.TrimRight(p.Origin, "/") + href
}

// IsJobLink reports whether href references a job detail page.
func (p Profile) IsJobLink(href string) bool {
	abs := p.Resolve(href)
	if abs == "" {
		return false
	}
	for _, prefix := range p.JobLinkPrefixes {
		if strings.HasPrefix(abs, prefix) {
			return true
		}
	}
	return false
}

// Canonicalize reduces href to the posting it names: through Identify when the
// profile has one, otherwise by stripping from the first delimiter onward.
// Canonicalize(Canonicalize(x)) == Canonicalize(x).
func (p Profile) Canonicalize(href string) models.JobLink {
	abs := p.Resolve(href)
	if p.Identify != nil {
		if u, err := url.Parse(abs); err == nil {
			if id := p.Identify(u); id != "" {
				return models.JobLink(id)
			}
		}
	}
	if i := strings.IndexAny(abs, p.Delimiters); i >= 0 {
		abs = abs[:i]
	}
	return models.JobLink(abs)
}

// PageControlSelector returns the selector of the control that opens page n.
func (p Profile) PageControlSelector(n int) string {
	return fmt.Sprintf(p.PageControl, n)
}
