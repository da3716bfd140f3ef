package query

import (
	"strings"

	"github.com/celestiaorg/jobdesk/pkg/models"
)

// JobCriteria narrows job listings. Every non-blank field must match.
type JobCriteria struct {
	// Keyword is matched against the title
	Keyword  string
	Location string
	Company  string
}

// NotificationCriteria narrows notification logs. SearchText matches when any
// of recipient, subject or body contains it.
type NotificationCriteria struct {
	SearchText string
}

// contains reports whether value contains term ignoring case. A blank term matches everything.
func contains(value, term string) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(term))
}

// MatchJob applies JobCriteria to a listing
func MatchJob(job models.JobListing, c JobCriteria) bool {
	return contains(job.Title, c.Keyword) &&
		contains(job.Location, c.Location) &&
		contains(job.Company, c.Company)
}

// MatchNotification applies NotificationCriteria to a log
func MatchNotification(log models.NotificationLog, c NotificationCriteria) bool {
	if strings.TrimSpace(c.SearchText) == "" {
		return true
	}
	return contains(log.RecipientEmail, c.SearchText) ||
		contains(log.Subject, c.SearchText) ||
		contains(log.Body, c.SearchText)
}

// NewJobEngine creates an Engine over job listings
func NewJobEngine(opts ...Option) *Engine[models.JobListing, JobCriteria] {
	return New[models.JobListing, JobCriteria](MatchJob, opts...)
}

// NewNotificationEngine creates an Engine over notification logs
func NewNotificationEngine(opts ...Option) *Engine[models.NotificationLog, NotificationCriteria] {
	return New[models.NotificationLog, NotificationCriteria](MatchNotification, opts...)
}
