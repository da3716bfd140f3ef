package models

import (
	"fmt"
	"strings"
)

// JobType is the kind of engagement a member is looking for
type JobType string

// Job type constants
const (
	// JobTypeFullTime is a permanent full-time position
	JobTypeFullTime JobType = "Full-time"
	// JobTypePartTime is a permanent part-time position
	JobTypePartTime JobType = "Part-time"
	// JobTypeContract is a fixed-term contract
	JobTypeContract JobType = "Contract"
	// JobTypeInternship is an internship
	JobTypeInternship JobType = "Internship"
)

// JobTypes lists every accepted job type in display order
var JobTypes = []JobType{JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship}

func (t JobType) String() string {
	return string(t)
}

// ParseJobType converts a string representation of a job type to JobType.
// Matching is case-insensitive.
func ParseJobType(str string) (JobType, error) {
	for _, t := range JobTypes {
		if strings.EqualFold(string(t), strings.TrimSpace(str)) {
			return t, nil
		}
	}
	return JobTypeFullTime, fmt.Errorf("invalid job type: %s", str)
}

// Preferences holds what a member is looking for
type Preferences struct {
	DesiredRole string   `json:"desiredRole,omitempty"`
	Locations   []string `json:"locations"`
	JobType     JobType  `json:"jobType"`
	MinSalary   float64  `json:"minSalary"`
}

// DefaultPreferences returns the preferences assumed when an account has none
func DefaultPreferences() Preferences {
	return Preferences{
		Locations: []string{},
		JobType:   JobTypeFullTime,
	}
}

// Validate checks the job type is known and the salary floor is non-negative
func (p Preferences) Validate() error {
	if _, err := ParseJobType(string(p.JobType)); err != nil {
		return err
	}
	if p.MinSalary < 0 {
		return fmt.Errorf("min salary cannot be negative: %v", p.MinSalary)
	}
	return nil
}

// ParseLocations splits a comma separated list, trimming entries and dropping empty ones
func ParseLocations(raw string) []string {
	locations := []string{}
	for _, part := range strings.Split(raw, ",") {
		if loc := strings.TrimSpace(part); loc != "" {
			locations = append(locations, loc)
		}
	}
	return locations
}

// AppliedJob is an application recorded against an account. Entries are
// append-only and written server side.
type AppliedJob struct {
	ExternalID string    `json:"externalId"`
	Title      string    `json:"title"`
	Company    string    `json:"company"`
	Location   string    `json:"location"`
	URL        string    `json:"url"`
	AppliedAt  Timestamp `json:"appliedAt"`
}

// Validate checks the entry references the listing it was made against
func (a AppliedJob) Validate() error {
	if a.ExternalID == "" {
		return fmt.Errorf("applied job external id is required")
	}
	return nil
}

// UserAccount is an account held by the account service
type UserAccount struct {
	ID          string       `json:"id"`
	ExternalID  string       `json:"keycloakId"`
	Username    string       `json:"username"`
	Email       string       `json:"email"`
	FirstName   string       `json:"firstName,omitempty"`
	LastName    string       `json:"lastName,omitempty"`
	Roles       []string     `json:"roles"`
	Preferences *Preferences `json:"preferences"`
	AppliedJobs []AppliedJob `json:"appliedJobs"`
}

// Normalize fills in defaults for fields the service may omit
func (u *UserAccount) Normalize() {
	if u.Preferences == nil {
		prefs := DefaultPreferences()
		u.Preferences = &prefs
	}
	if u.Preferences.Locations == nil {
		u.Preferences.Locations = []string{}
	}
	if u.Preferences.JobType == "" {
		u.Preferences.JobType = JobTypeFullTime
	} else if parsed, err := ParseJobType(string(u.Preferences.JobType)); err == nil {
		u.Preferences.JobType = parsed
	}
	if u.Roles == nil {
		u.Roles = []string{}
	}
	if u.AppliedJobs == nil {
		u.AppliedJobs = []AppliedJob{}
	}
}

// Validate checks the account and its applied jobs carry their identity keys.
// Preferences are free-form on the service and are checked only when saved.
func (u UserAccount) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("account id is required")
	}
	for i, job := range u.AppliedJobs {
		if err := job.Validate(); err != nil {
			return fmt.Errorf("account %s applied job %d: %w", u.ID, i, err)
		}
	}
	return nil
}

// DisplayName returns the full name if known, otherwise the username
func (u UserAccount) DisplayName() string {
	name := strings.TrimSpace(strings.Join([]string{u.FirstName, u.LastName}, " "))
	if name == "" {
		return u.Username
	}
	return name
}

// HasRole reports whether the account carries the given role
func (u UserAccount) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
