package models

import "fmt"

// JobListing is a single job posting served by the job service
type JobListing struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Description string `json:"description"` // raw markup, never rendered as-is
	URL         string `json:"url"`
}

// Validate checks the listing carries its identity key
func (j JobListing) Validate() error {
	if j.ID == "" {
		return fmt.Errorf("job listing id is required")
	}
	return nil
}

// ApplicationRequest is the body submitted to record an application against an account
type ApplicationRequest struct {
	ExternalID string `json:"externalId"`
	Title      string `json:"title"`
	Company    string `json:"company"`
	Location   string `json:"location"`
	URL        string `json:"url"`
}

// NewApplicationRequest builds the application record for the given listing
func NewApplicationRequest(job JobListing) ApplicationRequest {
	return ApplicationRequest{
		ExternalID: job.ID,
		Title:      job.Title,
		Company:    job.Company,
		Location:   job.Location,
		URL:        job.URL,
	}
}
