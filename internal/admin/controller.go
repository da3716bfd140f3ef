// Package admin loads and manages the administrator dashboard: every account
// and the notification logs sent by the account service.
package admin

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/celestiaorg/jobdesk/internal/logger"
	"github.com/celestiaorg/jobdesk/internal/query"
	"github.com/celestiaorg/jobdesk/internal/workflow"
	"github.com/celestiaorg/jobdesk/pkg/models"
)

// API is the part of the API client the dashboard uses
type API interface {
	ListUsers(ctx context.Context) ([]models.UserAccount, error)
	ListNotifications(ctx context.Context) ([]models.NotificationLog, error)
	DeleteUser(ctx context.Context, accountID string) error
}

// Confirmer asks the user whether account should really be deleted
type Confirmer func(account models.UserAccount) bool

// Confirmed is a Confirmer for callers that already obtained confirmation
func Confirmed(models.UserAccount) bool { return true }

// Ticket identifies one fetch. Only the latest ticket may commit.
type Ticket uint64

// Fetched is the joint outcome of both dashboard fetches
type Fetched struct {
	Ticket        Ticket
	Accounts      []models.UserAccount
	Notifications []models.NotificationLog
	Err           error
}

// DeleteResult is the outcome of a delete request waiting to be committed
type DeleteResult struct {
	Account   models.UserAccount
	Cancelled bool
	Err       error
}

// Controller owns the dashboard state. Begin, Commit and CommitDelete must be
// called from the goroutine owning the state.
type Controller struct {
	api           API
	accounts      []models.UserAccount
	notifications *query.Engine[models.NotificationLog, query.NotificationCriteria]
	loading       bool
	ticket        Ticket
	err           error
}

// NewController creates a Controller. The options configure the notification query engine.
func NewController(api API, opts ...query.Option) *Controller {
	return &Controller{
		api:           api,
		accounts:      []models.UserAccount{},
		notifications: query.NewNotificationEngine(opts...),
	}
}

// Begin marks the dashboard as loading and returns the ticket for a new fetch
func (c *Controller) Begin() Ticket {
	c.ticket++
	c.loading = true
	return c.ticket
}

// Fetch requests both collections in parallel and waits for both. If either
// fails the result carries no records at all.
func (c *Controller) Fetch(ctx context.Context, ticket Ticket) Fetched {
	var (
		accounts      []models.UserAccount
		notifications []models.NotificationLog
		accountsErr   error
		notifErr      error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		accounts, accountsErr = c.api.ListUsers(gctx)
		return accountsErr
	})
	g.Go(func() error {
		notifications, notifErr = c.api.ListNotifications(gctx)
		return notifErr
	})
	_ = g.Wait()

	// A cancellation caused by the sibling's failure is not a failure of its own
	if accountsErr != nil && notifErr != nil {
		switch {
		case errors.Is(accountsErr, context.Canceled) && ctx.Err() == nil:
			accountsErr = nil
		case errors.Is(notifErr, context.Canceled) && ctx.Err() == nil:
			notifErr = nil
		}
	}

	var err error
	switch {
	case accountsErr != nil && notifErr != nil:
		err = fmt.Errorf("failed to load accounts and notifications: %w", errors.Join(accountsErr, notifErr))
	case accountsErr != nil:
		err = fmt.Errorf("failed to load accounts: %w", accountsErr)
	case notifErr != nil:
		err = fmt.Errorf("failed to load notifications: %w", notifErr)
	default:
		return Fetched{Ticket: ticket, Accounts: accounts, Notifications: notifications}
	}

	logger.ErrorWithFields("Admin dashboard fetch failed", map[string]interface{}{
		"accounts_failed":      accountsErr != nil,
		"notifications_failed": notifErr != nil,
		"error":                err.Error(),
	})
	return Fetched{Ticket: ticket, Err: err}
}

// Commit applies a fetch result. Results of superseded fetches are discarded
// and false is returned.
func (c *Controller) Commit(f Fetched) bool {
	if f.Ticket != c.ticket {
		logger.Debugf("Discarding stale admin fetch %d, current is %d", f.Ticket, c.ticket)
		return false
	}

	c.loading = false
	c.err = f.Err
	if f.Err != nil {
		c.accounts = []models.UserAccount{}
		c.notifications.SetRecords(nil)
		return true
	}

	c.accounts = append([]models.UserAccount{}, f.Accounts...)
	c.notifications.SetRecords(f.Notifications)
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

// Accounts returns the loaded accounts
func (c *Controller) Accounts() []models.UserAccount {
	return c.accounts
}

// Account returns the loaded account with the given id
func (c *Controller) Account(id string) (models.UserAccount, bool) {
	for _, account := range c.accounts {
		if account.ID == id {
			return account, true
		}
	}
	return models.UserAccount{}, false
}

// Notifications returns the query engine holding the notification logs
func (c *Controller) Notifications() *query.Engine[models.NotificationLog, query.NotificationCriteria] {
	return c.notifications
}

// SearchNotifications filters the notification logs by text, going back to the first page
func (c *Controller) SearchNotifications(text string) {
	c.notifications.SetCriteria(query.NotificationCriteria{SearchText: text})
}

// RequestDelete asks confirm and, if granted, deletes account on the server.
// It does not touch controller state.
func (c *Controller) RequestDelete(ctx context.Context, account models.UserAccount, confirm Confirmer) DeleteResult {
	if confirm == nil || !confirm(account) {
		logger.DebugWithFields("Account deletion cancelled", map[string]interface{}{
			"account_id": account.ID,
			"username":   account.Username,
		})
		return DeleteResult{Account: account, Cancelled: true}
	}
	return DeleteResult{Account: account, Err: c.api.DeleteUser(ctx, account.ID)}
}

// CommitDelete applies a delete result. The account leaves the local collection
// only when the server deleted it. A cancelled request yields no notice.
func (c *Controller) CommitDelete(r DeleteResult) workflow.Notice {
	if r.Cancelled {
		return workflow.Notice{}
	}

	fields := map[string]interface{}{
		"account_id": r.Account.ID,
		"username":   r.Account.Username,
	}
	if r.Err != nil {
		fields["error"] = r.Err.Error()
		logger.ErrorWithFields("Failed to delete account", fields)
		return workflow.DeleteFailedNotice()
	}

	kept := make([]models.UserAccount, 0, len(c.accounts))
	for _, account := range c.accounts {
		if account.ID != r.Account.ID {
			kept = append(kept, account)
		}
	}
	c.accounts = kept

	logger.InfoWithFields("Account deleted", fields)
	return workflow.AccountDeletedNotice(r.Account.Username)
}

// DeleteAccount runs RequestDelete and commits it
func (c *Controller) DeleteAccount(ctx context.Context, account models.UserAccount, confirm Confirmer) (workflow.Notice, error) {
	r := c.RequestDelete(ctx, account, confirm)
	return c.CommitDelete(r), r.Err
}
