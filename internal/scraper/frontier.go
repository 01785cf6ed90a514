package scraper

import (
	"go-jobsearch-automation/internal/browser"
	"go-jobsearch-automation/internal/models"
)

// Frontier is the insertion-ordered set of job links discovered on one
// results page, each with the element it was last seen as.
type Frontier struct {
	order []models.JobLink
	elems map[models.JobLink]browser.Element
}

func NewFrontier() *Frontier {
	return &Frontier{elems: make(map[models.JobLink]browser.Element)}
}

// Add inserts link unless it is already present and reports whether it did.
func (f *Frontier) Add(link models.JobLink, el browser.Element) bool {
	if _, ok := f.elems[link]; ok {
		return false
	}
	f.order = append(f.order, link)
	f.elems[link] = el
	return true
}

// Refresh replaces the element of a known link, keeping its position.
func (f *Frontier) Refresh(link models.JobLink, el browser.Element) {
	if _, ok := f.elems[link]; ok {
		f.elems[link] = el
	}
}

func (f *Frontier) Contains(link models.JobLink) bool {
	_, ok := f.elems[link]
	return ok
}

func (f *Frontier) Element(link models.JobLink) (browser.Element, bool) {
	el, ok := f.elems[link]
	return el, ok
}

// Links returns the links in discovery order.
func (f *Frontier) Links() []models.JobLink {
	out := make([]models.JobLink, len(f.order))
	copy(out, f.order)
	return out
}

func (f *Frontier) Len() int { return len(f.order) }
