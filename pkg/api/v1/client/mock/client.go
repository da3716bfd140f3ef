package mock

import (
	"context"
	"sync"

	"github.com/celestiaorg/jobdesk/pkg/api/v1/client"
	"github.com/celestiaorg/jobdesk/pkg/models"
)

// MockClient implements the Client interface for testing
type MockClient struct {
	// Function fields that can be set to mock behavior
	ListJobsFn          func(ctx context.Context) ([]models.JobListing, error)
	ListUsersFn         func(ctx context.Context) ([]models.UserAccount, error)
	ListNotificationsFn func(ctx context.Context) ([]models.NotificationLog, error)
	GetCurrentUserFn    func(ctx context.Context) (models.UserAccount, error)
	ApplyToJobFn        func(ctx context.Context, accountID string, req models.ApplicationRequest) error
	UpdatePreferencesFn func(ctx context.Context, accountID string, prefs models.Preferences) error
	DeleteUserFn        func(ctx context.Context, accountID string) error

	// mu guards the call tracking, the admin fetch calls in parallel
	mu sync.Mutex

	// Call tracking for verification
	ListJobsCalls []struct {
		Ctx context.Context
	}
	ListUsersCalls []struct {
		Ctx context.Context
	}
	ListNotificationsCalls []struct {
		Ctx context.Context
	}
	GetCurrentUserCalls []struct {
		Ctx context.Context
	}
	ApplyToJobCalls []struct {
		Ctx       context.Context
		AccountID string
		Req       models.ApplicationRequest
	}
	UpdatePreferencesCalls []struct {
		Ctx       context.Context
		AccountID string
		Prefs     models.Preferences
	}
	DeleteUserCalls []struct {
		Ctx       context.Context
		AccountID string
	}
}

// Ensure MockClient implements Client interface
var _ client.Client = (*MockClient)(nil)

// TotalCalls returns the number of calls made through any method
func (m *MockClient) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ListJobsCalls) + len(m.ListUsersCalls) + len(m.ListNotificationsCalls) +
		len(m.GetCurrentUserCalls) + len(m.ApplyToJobCalls) + len(m.UpdatePreferencesCalls) +
		len(m.DeleteUserCalls)
}

// ListJobs mocks the ListJobs method
func (m *MockClient) ListJobs(ctx context.Context) ([]models.JobListing, error) {
	m.mu.Lock()
	m.ListJobsCalls = append(m.ListJobsCalls, struct {
		Ctx context.Context
	}{Ctx: ctx})
	m.mu.Unlock()

	if m.ListJobsFn != nil {
		return m.ListJobsFn(ctx)
	}

	// Default mock implementation
	return []models.JobListing{
		{
			ID:       "job-1",
			Title:    "Backend Engineer",
			Company:  "Acme",
			Location: "Remote",
			URL:      "https://jobs.example.com/1",
		},
	}, nil
}

// ListUsers mocks the ListUsers method
func (m *MockClient) ListUsers(ctx context.Context) ([]models.UserAccount, error) {
	m.mu.Lock()
	m.ListUsersCalls = append(m.ListUsersCalls, struct {
		Ctx context.Context
	}{Ctx: ctx})
	m.mu.Unlock()

	if m.ListUsersFn != nil {
		return m.ListUsersFn(ctx)
	}
	return []models.UserAccount{}, nil
}

// ListNotifications mocks the ListNotifications method
func (m *MockClient) ListNotifications(ctx context.Context) ([]models.NotificationLog, error) {
	m.mu.Lock()
	m.ListNotificationsCalls = append(m.ListNotificationsCalls, struct {
		Ctx context.Context
	}{Ctx: ctx})
	m.mu.Unlock()

	if m.ListNotificationsFn != nil {
		return m.ListNotificationsFn(ctx)
	}
	return []models.NotificationLog{}, nil
}

// GetCurrentUser mocks the GetCurrentUser method
func (m *MockClient) GetCurrentUser(ctx context.Context) (models.UserAccount, error) {
	m.mu.Lock()
	m.GetCurrentUserCalls = append(m.GetCurrentUserCalls, struct {
		Ctx context.Context
	}{Ctx: ctx})
	m.mu.Unlock()

	if m.GetCurrentUserFn != nil {
		return m.GetCurrentUserFn(ctx)
	}

	// Default mock implementation
	account := models.UserAccount{
		ID:       "account-1",
		Username: "ana",
		Email:    "ana@example.com",
	}
	account.Normalize()
	return account, nil
}

// ApplyToJob mocks the ApplyToJob method
func (m *MockClient) ApplyToJob(ctx context.Context, accountID string, req models.ApplicationRequest) error {
	m.mu.Lock()
	m.ApplyToJobCalls = append(m.ApplyToJobCalls, struct {
		Ctx       context.Context
		AccountID string
		Req       models.ApplicationRequest
	}{
		Ctx:       ctx,
		AccountID: accountID,
		Req:       req,
	})
	m.mu.Unlock()

	if m.ApplyToJobFn != nil {
		return m.ApplyToJobFn(ctx, accountID, req)
	}
	return nil
}

// UpdatePreferences mocks the UpdatePreferences method
func (m *MockClient) UpdatePreferences(ctx context.Context, accountID string, prefs models.Preferences) error {
	m.mu.Lock()
	m.UpdatePreferencesCalls = append(m.UpdatePreferencesCalls, struct {
		Ctx       context.Context
		AccountID string
		Prefs     models.Preferences
	}{
		Ctx:       ctx,
		AccountID: accountID,
		Prefs:     prefs,
	})
	m.mu.Unlock()

	if m.UpdatePreferencesFn != nil {
		return m.UpdatePreferencesFn(ctx, accountID, prefs)
	}
	return nil
}

// DeleteUser mocks the DeleteUser method
func (m *MockClient) DeleteUser(ctx context.Context, accountID string) error {
	m.mu.Lock()
	m.DeleteUserCalls = append(m.DeleteUserCalls, struct {
		Ctx       context.Context
		AccountID string
	}{
		Ctx:       ctx,
		AccountID: accountID,
	})
	m.mu.Unlock()

	if m.DeleteUserFn != nil {
		return m.DeleteUserFn(ctx, accountID)
	}
	return nil
}
