package site

import (
	"fmt"
	"net/url"
)

// LinkedIn is logged-in job search with a two-pane results list.
// The list is virtualized, so anchors appear only after scrolling.
func init() {
	register(Profile{
		Name:            "linkedin",
		Origin:          "https://www.linkedin.com",
		JobLinkPrefixes: []string{"https://www.linkedin.com/jobs/view"},
		Delimiters:      "?#",
		AnchorSelector:  "a[href]",
		PageControl:     `button[aria-label="Page %d"]`,
		ResultsReady:    "li.scaffold-layout__list-item, .job-card-container, .jobs-search-results-list",

		Title: FieldRule{Locators: []Locator{
			{Selector: ".job-details-jobs-unified-top-card__job-title-link"},
			{Selector: ".job-details-jobs-unified-top-card__job-title"},
			{Selector: ".jobs-unified-top-card__job-title"},
		}},
		Company: FieldRule{Locators: []Locator{
			{Selector: ".job-details-jobs-unified-top-card__primary-description-without-tagline", Separator: "·", Part: 0},
			{Selector: ".job-details-jobs-unified-top-card__company-name"},
		}},
		Location: FieldRule{Locators: []Locator{
			{Selector: ".job-details-jobs-unified-top-card__primary-description-without-tagline", Separator: "·", Part: 1},
			{Selector: ".job-details-jobs-unified-top-card__primary-description-container", Separator: "·", Part: 0},
			{Selector: ".job-details-jobs-unified-top-card__bullet"},
		}},
		Description: FieldRule{
			Locators: []Locator{
				{Selector: ".jobs-description-content__text"},
				{Selector: "#job-details"},
			},
			StripPrefix: "About the job",
			Placeholder: "Job description not found.",
		},

		Stride:      3,
		PageCeiling: 40,

		SearchURL: linkedInSearchURL,
		Login: &LoginRule{
			URL:              "https://www.linkedin.com/login",
			EmailSelector:    `input[name="session_key"]`,
			PasswordSelector: `input[name="session_password"]`,
			LoggedInSelector: "#global-nav",
		},
		Apply: &ApplyRule{
			ApplyButton:    `button[data-control-name="jobdetails_topcard_inapply"], button.jobs-apply-button`,
			SubmitButton:   `button[data-control-name="submit_unify"], button[aria-label="Submit application"]`,
			DismissButton:  `button[data-test-modal-close-btn], button[aria-label="Dismiss"]`,
			ConfirmDiscard: `button[data-test-dialog-primary-btn], button[data-control-name="discard_application_confirm_btn"]`,
		},
	})
}

var linkedInPosted = map[string]string{
	"24h":   "r86400",
	"week":  "r604800",
	"month": "r2592000",
}

func linkedInSearchURL(keywords, location, postedWithin string) string {
	q := url.Values{}
	q.Set("keywords", keywords)
	q.Set("location", location)
	if tpr, ok := linkedInPosted[postedWithin]; ok {
		q.Set("f_TPR", tpr)
	}
	return fmt.Sprintf("https://www.linkedin.com/jobs/search/?%s", q.Encode())
}
