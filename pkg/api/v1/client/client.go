// Package client provides the API client for the job and account services
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/celestiaorg/jobdesk/internal/logger"
	"github.com/celestiaorg/jobdesk/pkg/api/v1/routes"
	"github.com/celestiaorg/jobdesk/pkg/models"
)

// RequestIDHeader carries the per-request correlation id
const RequestIDHeader = "X-Request-ID"

// ErrNoCredential is returned when an authenticated call is attempted without a session credential.
// No request is sent in that case.
var ErrNoCredential = errors.New("no session credential available")

// Client is the interface for API client
type Client interface {
	// Job service endpoints
	ListJobs(ctx context.Context) ([]models.JobListing, error)

	// Account service endpoints
	ListUsers(ctx context.Context) ([]models.UserAccount, error)
	ListNotifications(ctx context.Context) ([]models.NotificationLog, error)
	GetCurrentUser(ctx context.Context) (models.UserAccount, error)
	ApplyToJob(ctx context.Context, accountID string, req models.ApplicationRequest) error
	UpdatePreferences(ctx context.Context, accountID string, prefs models.Preferences) error
	DeleteUser(ctx context.Context, accountID string) error
}

var _ Client = &APIClient{}

// CredentialSource supplies the bearer credential for authenticated calls.
// The second return value is false when no credential is held.
type CredentialSource interface {
	Credential() (string, bool)
}

// Options contains configuration options for the API client
type Options struct {
	// JobServiceURL is the base URL of the job service
	JobServiceURL string

	// AccountServiceURL is the base URL of the account service
	AccountServiceURL string

	// Timeout bounds each request. Zero means requests are not bounded unless
	// the context carries a deadline.
	Timeout time.Duration

	// Credentials supplies the bearer credential. Nil means only public calls succeed.
	Credentials CredentialSource
}

// DefaultOptions returns the default client options
func DefaultOptions() *Options {
	return &Options{
		JobServiceURL:     routes.DefaultJobServiceURL,
		AccountServiceURL: routes.DefaultAccountServiceURL,
	}
}

// APIClient implements the Client interface
type APIClient struct {
	jobServiceURL     string
	accountServiceURL string
	timeout           time.Duration
	credentials       CredentialSource
}

// NewClient creates a new API client with the given options
func NewClient(opts *Options) (Client, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	for name, raw := range map[string]string{
		"job service":     opts.JobServiceURL,
		"account service": opts.AccountServiceURL,
	} {
		if err := validateBaseURL(raw); err != nil {
			return nil, fmt.Errorf("invalid %s URL: %w", name, err)
		}
	}

	if opts.Timeout < 0 {
		return nil, fmt.Errorf("timeout cannot be negative: %s", opts.Timeout)
	}

	return &APIClient{
		jobServiceURL:     opts.JobServiceURL,
		accountServiceURL: opts.AccountServiceURL,
		timeout:           opts.Timeout,
		credentials:       opts.Credentials,
	}, nil
}

func validateBaseURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("URL cannot be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return nil
}

// createAgent creates a new Fiber Agent for the given method and URL
func (c *APIClient) createAgent(ctx context.Context, method, fullURL string, body interface{}) (*fiber.Agent, error) {
	var agent *fiber.Agent
	switch method {
	case http.MethodGet:
		agent = fiber.Get(fullURL)
	case http.MethodPost:
		agent = fiber.Post(fullURL)
	case http.MethodPut:
		agent = fiber.Put(fullURL)
	case http.MethodDelete:
		agent = fiber.Delete(fullURL)
	default:
		return nil, fmt.Errorf("unsupported HTTP method: %s", method)
	}

	// Set timeout from context or client default
	if deadline, ok := ctx.Deadline(); ok {
		agent.Timeout(time.Until(deadline))
	} else if c.timeout > 0 {
		agent.Timeout(c.timeout)
	}

	agent.Set("Accept", "application/json")
	agent.Set(RequestIDHeader, uuid.NewString())

	if body != nil {
		agent.JSON(body)
	}

	return agent, nil
}

// authorize attaches the session credential to the agent
func (c *APIClient) authorize(agent *fiber.Agent) error {
	if c.credentials == nil {
		return ErrNoCredential
	}
	token, ok := c.credentials.Credential()
	if !ok || token == "" {
		return ErrNoCredential
	}
	agent.Set(fiber.HeaderAuthorization, "Bearer "+token)
	return nil
}

// doRequest sends the HTTP request and processes the response
func (c *APIClient) doRequest(agent *fiber.Agent, v interface{}) error {
	statusCode, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("error sending request: %w", errs[0])
	}

	// Check for non-success status codes
	if statusCode < 200 || statusCode >= 300 {
		return &fiber.Error{
			Code:    statusCode,
			Message: string(body),
		}
	}

	// Decode the response body if a target is provided
	if v != nil && len(body) > 0 {
		if err := json.Unmarshal(body, v); err != nil {
			return fmt.Errorf("error decoding response: %w", err)
		}
	}

	return nil
}

// executeRequest creates an agent, sends the request, and processes the response.
// Authenticated requests fail with ErrNoCredential before anything is sent when no credential is held.
func (c *APIClient) executeRequest(ctx context.Context, method, baseURL, endpoint string, authenticated bool, body, response interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	agent, err := c.createAgent(ctx, method, baseURL+endpoint, body)
	if err != nil {
		return err
	}

	if authenticated {
		if err := c.authorize(agent); err != nil {
			fiber.ReleaseAgent(agent)
			return err
		}
	}

	return c.doRequest(agent, response)
}

// validator is implemented by every wire record
type validator interface {
	Validate() error
}

// keepValid drops records that fail validation, logging each one
func keepValid[T validator](kind string, records []T) []T {
	valid := make([]T, 0, len(records))
	for i, record := range records {
		if err := record.Validate(); err != nil {
			logger.WarnWithFields("dropping invalid record", map[string]interface{}{
				"kind":  kind,
				"index": i,
				"error": err.Error(),
			})
			continue
		}
		valid = append(valid, record)
	}
	return valid
}

// Job service endpoints

// ListJobs lists the public job postings
func (c *APIClient) ListJobs(ctx context.Context) ([]models.JobListing, error) {
	var jobs []models.JobListing
	if err := c.executeRequest(ctx, http.MethodGet, c.jobServiceURL, routes.ListJobsURL(), false, nil, &jobs); err != nil {
		return nil, err
	}
	return keepValid("job listing", jobs), nil
}

// Account service endpoints

// ListUsers lists every account
func (c *APIClient) ListUsers(ctx context.Context) ([]models.UserAccount, error) {
	var accounts []models.UserAccount
	if err := c.executeRequest(ctx, http.MethodGet, c.accountServiceURL, routes.ListUsersURL(), true, nil, &accounts); err != nil {
		return nil, err
	}
	accounts = keepValid("account", accounts)
	for i := range accounts {
		normalizeAccount(&accounts[i])
	}
	return accounts, nil
}

// ListNotifications lists the notification logs
func (c *APIClient) ListNotifications(ctx context.Context) ([]models.NotificationLog, error) {
	var logs []models.NotificationLog
	if err := c.executeRequest(ctx, http.MethodGet, c.accountServiceURL, routes.ListNotificationsURL(), true, nil, &logs); err != nil {
		return nil, err
	}
	return keepValid("notification log", logs), nil
}

// GetCurrentUser resolves the account of the credential holder
func (c *APIClient) GetCurrentUser(ctx context.Context) (models.UserAccount, error) {
	var account models.UserAccount
	if err := c.executeRequest(ctx, http.MethodGet, c.accountServiceURL, routes.GetCurrentUserURL(), true, nil, &account); err != nil {
		return models.UserAccount{}, err
	}
	if err := account.Validate(); err != nil {
		return models.UserAccount{}, fmt.Errorf("invalid account in response: %w", err)
	}
	normalizeAccount(&account)
	return account, nil
}

// normalizeAccount fills in defaults and logs preferences the service holds but
// the client could not save back unchanged
func normalizeAccount(account *models.UserAccount) {
	account.Normalize()
	if err := account.Preferences.Validate(); err != nil {
		logger.WarnWithFields("account has invalid preferences", map[string]interface{}{
			"account_id": account.ID,
			"error":      err.Error(),
		})
	}
}

// ApplyToJob records an application against the given account
func (c *APIClient) ApplyToJob(ctx context.Context, accountID string, req models.ApplicationRequest) error {
	if accountID == "" {
		return fmt.Errorf("account id is required")
	}
	return c.executeRequest(ctx, http.MethodPost, c.accountServiceURL, routes.ApplyToJobURL(accountID), true, req, nil)
}

// UpdatePreferences replaces the preferences of the given account
func (c *APIClient) UpdatePreferences(ctx context.Context, accountID string, prefs models.Preferences) error {
	if accountID == "" {
		return fmt.Errorf("account id is required")
	}
	if err := prefs.Validate(); err != nil {
		return fmt.Errorf("invalid preferences: %w", err)
	}
	return c.executeRequest(ctx, http.MethodPut, c.accountServiceURL, routes.UpdatePreferencesURL(accountID), true, prefs, nil)
}

// DeleteUser deletes the given account
func (c *APIClient) DeleteUser(ctx context.Context, accountID string) error {
	if accountID == "" {
		return fmt.Errorf("account id is required")
	}
	return c.executeRequest(ctx, http.MethodDelete, c.accountServiceURL, routes.DeleteUserURL(accountID), true, nil, nil)
}
