// Package classify attaches topical labels to extracted records by keyword
// matching on their title, company and description.
package classify

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go-jobsearch-automation/internal/models"
	"go-jobsearch-automation/utils"
)

// DefaultLabels is used when the configuration defines none.
var DefaultLabels = map[string][]string{
	"go":          {"golang", "go developer", "go backend", "go engineer"},
	"entry-level": {"fresher", "intern", "junior", "entry level", "graduate", "trainee"},
	"senior":      {"senior", "lead", "manager", "principal", "staff", "architect"},
	"cloud":       {"docker", "kubernetes", "aws", "gcp", "azure", "microservices", "grpc"},
}

type rule struct {
	label string
	re    *regexp.Regexp
}

type Classifier struct {
	rules []rule
}

// New compiles one case-insensitive, diacritic-insensitive pattern per label.
// Multi-word keywords match across any run of spaces or hyphens.
func New(labels map[string][]string) (*Classifier, error) {
	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}
	sort.Strings(names)

	c := &Classifier{}
	for _, name := range names {
		var alts []string
		for _, kw := range labels[name] {
			words := utils.Words(kw)
			if len(words) == 0 {
				continue
			}
			for i, w := range words {
				words[i] = regexp.QuoteMeta(w)
			}
			alts = append(alts, strings.Join(words, `[\s-]+`))
		}
		if len(alts) == 0 {
			return nil, fmt.Errorf("label %q has no keywords", name)
		}
		re, err := regexp.Compile(`(?i)\b(` + strings.Join(alts, "|") + `)\b`)
		if err != nil {
			return nil, fmt.Errorf("label %q: %w", name, err)
		}
		c.rules = append(c.rules, rule{label: name, re: re})
	}
	return c, nil
}

// Tags returns the matching labels in name order.
func (c *Classifier) Tags(rec models.JobRecord) []string {
	text := utils.Fold(rec.Title.Value + " " + rec.Company.Value + " " + rec.Description.Value)
	var tags []string
	for _, r := range c.rules {
		if r.re.MatchString(text) {
			tags = append(tags, r.label)
		}
	}
	return tags
}
