// Package profile loads the signed-in member's account and saves their preferences.
package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/celestiaorg/jobdesk/internal/logger"
	"github.com/celestiaorg/jobdesk/internal/workflow"
	"github.com/celestiaorg/jobdesk/pkg/models"
)

// ErrNoProfile is returned when preferences are saved before a profile was loaded
var ErrNoProfile = errors.New("profile not loaded")

// API is the part of the API client the profile uses
type API interface {
	GetCurrentUser(ctx context.Context) (models.UserAccount, error)
	UpdatePreferences(ctx context.Context, accountID string, prefs models.Preferences) error
}

// Ticket identifies one fetch. Only the latest ticket may commit.
type Ticket uint64

// Fetched is the outcome of a profile fetch waiting to be committed
type Fetched struct {
	Ticket  Ticket
	Account models.UserAccount
	Err     error
}

// SaveResult is the outcome of a preferences save waiting to be committed
type SaveResult struct {
	AccountID   string
	Preferences models.Preferences
	Err         error
}

// Controller owns the profile state. Begin, Commit and CommitSave must be called
// from the goroutine owning the state.
type Controller struct {
	api     API
	account *models.UserAccount
	loading bool
	ticket  Ticket
	err     error
}

// NewController creates a Controller
func NewController(api API) *Controller {
	return &Controller{api: api}
}

// Begin marks the profile as loading and returns the ticket for a new fetch
func (c *Controller) Begin() Ticket {
	c.ticket++
	c.loading = true
	return c.ticket
}

// Fetch requests the caller's account. It does not touch controller state.
func (c *Controller) Fetch(ctx context.Context, ticket Ticket) Fetched {
	account, err := c.api.GetCurrentUser(ctx)
	if err == nil {
		account.Normalize()
	}
	return Fetched{Ticket: ticket, Account: account, Err: err}
}

// Commit applies a fetch result. Results of superseded fetches are discarded
// and false is returned. A failed fetch keeps the previous profile.
func (c *Controller) Commit(f Fetched) bool {
	if f.Ticket != c.ticket {
		logger.Debugf("Discarding stale profile fetch %d, current is %d", f.Ticket, c.ticket)
		return false
	}

	c.loading = false
	c.err = f.Err
	if f.Err != nil {
		logger.Errorf("Failed to load profile: %v", f.Err)
		return true
	}

	account := f.Account
	c.account = &account
	return true
}

// Load runs a fetch and commits it
func (c *Controller) Load(ctx context.Context) error {
	f := c.Fetch(ctx, c.Begin())
	c.Commit(f)
	return f.Err
}

// Loading reports whether a fetch is outstanding
func (c *Controller) Loading() bool {
	return c.loading
}

// Err returns the failure of the last committed fetch
func (c *Controller) Err() error {
	return c.err
}

// Account returns the loaded account
func (c *Controller) Account() (models.UserAccount, bool) {
	if c.account == nil {
		return models.UserAccount{}, false
	}
	return *c.account, true
}

// Preferences returns the loaded preferences, or the defaults
func (c *Controller) Preferences() models.Preferences {
	if c.account == nil || c.account.Preferences == nil {
		return models.DefaultPreferences()
	}
	return *c.account.Preferences
}

// AccountID returns the id of the loaded account, empty if none is loaded
func (c *Controller) AccountID() string {
	if c.account == nil {
		return ""
	}
	return c.account.ID
}

// Save validates prefs and stores them for accountID. It does not touch controller state.
func (c *Controller) Save(ctx context.Context, accountID string, prefs models.Preferences) SaveResult {
	result := SaveResult{AccountID: accountID, Preferences: prefs}
	if accountID == "" {
		result.Err = ErrNoProfile
		return result
	}
	if err := prefs.Validate(); err != nil {
		result.Err = fmt.Errorf("invalid preferences: %w", err)
		return result
	}
	result.Err = c.api.UpdatePreferences(ctx, accountID, prefs)
	return result
}

// CommitSave applies a save result. The local profile changes only on success.
func (c *Controller) CommitSave(r SaveResult) workflow.Notice {
	fields := map[string]interface{}{
		"account_id": r.AccountID,
	}
	if r.Err != nil {
		fields["error"] = r.Err.Error()
		logger.ErrorWithFields("Failed to save preferences", fields)
		return workflow.PreferencesFailedNotice()
	}

	if c.account != nil && c.account.ID == r.AccountID {
		prefs := r.Preferences
		c.account.Preferences = &prefs
	}
	logger.InfoWithFields("Preferences saved", fields)
	return workflow.PreferencesSavedNotice()
}

// SavePreferences saves prefs for the loaded account and commits the result
func (c *Controller) SavePreferences(ctx context.Context, prefs models.Preferences) (workflow.Notice, error) {
	r := c.Save(ctx, c.AccountID(), prefs)
	return c.CommitSave(r), r.Err
}
