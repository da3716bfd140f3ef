package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJobType(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    JobType
		wantErr bool
	}{
		{name: "full time", input: "Full-time", want: JobTypeFullTime},
		{name: "case insensitive", input: "part-TIME", want: JobTypePartTime},
		{name: "surrounding spaces", input: "  Contract ", want: JobTypeContract},
		{name: "internship", input: "Internship", want: JobTypeInternship},
		{name: "unknown", input: "Freelance", want: JobTypeFullTime, wantErr: true},
		{name: "empty", input: "", want: JobTypeFullTime, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseJobType(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPreferencesValidate(t *testing.T) {
	prefs := DefaultPreferences()
	require.NoError(t, prefs.Validate())

	prefs.MinSalary = -1
	assert.Error(t, prefs.Validate(), "negative salary should be rejected")

	prefs = DefaultPreferences()
	prefs.JobType = "Gig"
	assert.Error(t, prefs.Validate(), "unknown job type should be rejected")
}

func TestParseLocations(t *testing.T) {
	assert.Equal(t, []string{"Bucharest", "Cluj", "Remote"}, ParseLocations(" Bucharest, Cluj ,,Remote "))
	assert.Equal(t, []string{}, ParseLocations(""))
	assert.Equal(t, []string{}, ParseLocations(" , "))
}

func TestUserAccountDecode(t *testing.T) {
	payload := `{
		"id": "65f0c1",
		"keycloakId": "3b2c-subject",
		"username": "ana",
		"email": "ana@example.com",
		"roles": ["app_user"],
		"preferences": null,
		"appliedJobs": [
			{"externalId": "j-1", "title": "Backend Engineer", "company": "Acme", "location": "Remote", "url": "https://acme.example/j-1", "appliedAt": "2024-05-01T10:20:30.123456"}
		]
	}`

	var account UserAccount
	require.NoError(t, json.Unmarshal([]byte(payload), &account))
	require.NoError(t, account.Validate())

	assert.Equal(t, "3b2c-subject", account.ExternalID)
	assert.Nil(t, account.Preferences)

	account.Normalize()
	require.NotNil(t, account.Preferences)
	assert.Equal(t, JobTypeFullTime, account.Preferences.JobType)
	assert.Equal(t, []string{}, account.Preferences.Locations)

	require.Len(t, account.AppliedJobs, 1)
	applied := account.AppliedJobs[0]
	assert.Equal(t, time.Date(2024, 5, 1, 10, 20, 30, 123456000, time.UTC), applied.AppliedAt.Time)
	assert.Equal(t, "ana", account.DisplayName())
	assert.True(t, account.HasRole("app_user"))
	assert.False(t, account.HasRole("app_admin"))
}

func TestUserAccountValidate(t *testing.T) {
	account := UserAccount{ID: ""}
	assert.Error(t, account.Validate(), "missing id should be rejected")

	account = UserAccount{ID: "1", AppliedJobs: []AppliedJob{{Title: "no external id"}}}
	assert.Error(t, account.Validate(), "applied job without external id should be rejected")

	account = UserAccount{ID: "1", FirstName: "Ana", LastName: "Pop"}
	assert.NoError(t, account.Validate())
	assert.Equal(t, "Ana Pop", account.DisplayName())
}

func TestUserAccountLenientPreferences(t *testing.T) {
	payload := `{"id": "u1", "username": "ana", "preferences": {"jobType": null, "locations": null, "minSalary": null}}`

	var account UserAccount
	require.NoError(t, json.Unmarshal([]byte(payload), &account))
	require.NoError(t, account.Validate(), "null preference fields are allowed")

	account.Normalize()
	assert.Equal(t, DefaultPreferences(), *account.Preferences)

	account = UserAccount{ID: "u2", Preferences: &Preferences{JobType: "part-time"}}
	account.Normalize()
	assert.Equal(t, JobTypePartTime, account.Preferences.JobType, "known job types are canonicalized")

	account = UserAccount{ID: "u3", Preferences: &Preferences{JobType: "Freelance"}}
	require.NoError(t, account.Validate())
	account.Normalize()
	assert.Equal(t, JobType("Freelance"), account.Preferences.JobType, "unknown job types are kept for display")
	assert.Error(t, account.Preferences.Validate(), "but cannot be saved")
}

func TestNewApplicationRequest(t *testing.T) {
	job := JobListing{ID: "j-9", Title: "SRE", Company: "Initech", Location: "Berlin", Description: "<p>x</p>", URL: "https://initech.example/j-9"}
	req := NewApplicationRequest(job)

	assert.Equal(t, ApplicationRequest{
		ExternalID: "j-9",
		Title:      "SRE",
		Company:    "Initech",
		Location:   "Berlin",
		URL:        "https://initech.example/j-9",
	}, req)
}
