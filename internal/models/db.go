package models

import (
	"time"
)

type ApplicationStatus string

const (
	StatusSubmitted   ApplicationStatus = "SUBMITTED"
	StatusDiscarded   ApplicationStatus = "DISCARDED"
	StatusUnavailable ApplicationStatus = "UNAVAILABLE"
	StatusFailed      ApplicationStatus = "FAILED"
)

// StoredJob is a JobRecord as persisted in the jobs table.
type StoredJob struct {
	ID             string    `json:"id"`
	Source         string    `json:"source"`
	ExternalID     string    `json:"external_id"` // canonical link
	Title          string    `json:"title"`
	Company        string    `json:"company"`
	Location       string    `json:"location"`
	URL            string    `json:"url"`
	DescriptionRaw string    `json:"description_raw"`
	SearchKeywords string    `json:"search_keywords"`
	SearchLocation string    `json:"search_location"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewStoredJob converts an extracted record into its database shape.
func NewStoredJob(source, keywords, location string, rec JobRecord) StoredJob {
	return StoredJob{
		Source:         source,
		ExternalID:     string(rec.Link),
		Title:          rec.Title.Value,
		Company:        rec.Company.Value,
		Location:       rec.Location.Value,
		URL:            string(rec.Link),
		DescriptionRaw: rec.Description.Value,
		SearchKeywords: keywords,
		SearchLocation: location,
	}
}

type Application struct {
	Link   JobLink           `json:"link"`
	Status ApplicationStatus `json:"status"`
}
