// Package workflow holds the multi-step user actions and the notices they produce.
package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/celestiaorg/jobdesk/internal/logger"
	"github.com/celestiaorg/jobdesk/internal/session"
	"github.com/celestiaorg/jobdesk/pkg/models"
)

// ErrLoginRequired is returned when an action needs a signed-in session
var ErrLoginRequired = errors.New("sign-in required")

// Outcome is how an apply attempt ended
type Outcome int

const (
	// OutcomeLoginRequested means no session was held and a login was requested instead
	OutcomeLoginRequested Outcome = iota
	// OutcomeApplied means the application was recorded
	OutcomeApplied
	// OutcomeFailed means one of the two calls failed
	OutcomeFailed
)

// String returns the string representation of the outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeLoginRequested:
		return "login_requested"
	case OutcomeApplied:
		return "applied"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ApplyResult is the result of one apply attempt
type ApplyResult struct {
	Outcome Outcome
	Notice  Notice
	// Err holds the underlying failure for logging and the CLI, never for display
	Err error
}

// SessionReader exposes the current session
type SessionReader interface {
	Current() session.Session
}

// AccountAPI is the part of the API client the apply workflow uses
type AccountAPI interface {
	GetCurrentUser(ctx context.Context) (models.UserAccount, error)
	ApplyToJob(ctx context.Context, accountID string, req models.ApplicationRequest) error
}

// Apply submits applications on behalf of the signed-in user
type Apply struct {
	api     AccountAPI
	session SessionReader
}

// NewApply creates an Apply workflow
func NewApply(api AccountAPI, session SessionReader) *Apply {
	return &Apply{api: api, session: session}
}

// Run applies to job. It resolves the caller's account first and only submits
// once that succeeded. Without an authenticated session no request is made.
func (w *Apply) Run(ctx context.Context, job models.JobListing) ApplyResult {
	if !w.session.Current().Authenticated() {
		logger.Debug("Apply requested without a session, requesting login")
		return ApplyResult{Outcome: OutcomeLoginRequested, Err: ErrLoginRequired}
	}

	fields := map[string]interface{}{
		"job_id": job.ID,
		"title":  job.Title,
	}

	account, err := w.api.GetCurrentUser(ctx)
	if err != nil {
		fields["error"] = err.Error()
		logger.ErrorWithFields("Failed to resolve account for application", fields)
		return ApplyResult{
			Outcome: OutcomeFailed,
			Notice:  ApplyFailedNotice(),
			Err:     fmt.Errorf("failed to resolve account: %w", err),
		}
	}

	fields["account_id"] = account.ID
	if err := w.api.ApplyToJob(ctx, account.ID, models.NewApplicationRequest(job)); err != nil {
		fields["error"] = err.Error()
		logger.ErrorWithFields("Failed to submit application", fields)
		return ApplyResult{
			Outcome: OutcomeFailed,
			Notice:  ApplyFailedNotice(),
			Err:     fmt.Errorf("failed to submit application: %w", err),
		}
	}

	logger.InfoWithFields("Application submitted", fields)
	return ApplyResult{Outcome: OutcomeApplied, Notice: AppliedNotice(job.Title)}
}
