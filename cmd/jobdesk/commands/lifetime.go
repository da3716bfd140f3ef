package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/celestiaorg/jobdesk/internal/config"
	"github.com/celestiaorg/jobdesk/internal/dispatch"
	"github.com/celestiaorg/jobdesk/internal/identity"
	"github.com/celestiaorg/jobdesk/internal/session"
	"github.com/celestiaorg/jobdesk/internal/workflow"
	"github.com/celestiaorg/jobdesk/pkg/api/v1/client"
)

// errAdminRequired is returned by admin-only commands for any other view
var errAdminRequired = errors.New("administrator role required")

// lifetime is everything one client lifetime owns: one session, one handshake
// and the API client reading its credential
type lifetime struct {
	session    *session.Service
	client     client.Client
	dispatcher dispatch.Dispatcher
	pendingURL func() string
	logout     func() error
}

// newLifetime builds a lifetime for the given handshake mode. Tests replace it.
var newLifetime = func(c *config.Config, mode string) (*lifetime, error) {
	provider := identity.NewProvider(identity.Config{
		IssuerURL:    c.IssuerURL,
		ClientID:     c.ClientID,
		CallbackAddr: c.CallbackAddr,
		Mode:         mode,
		Timeout:      c.HandshakeTimeout,
	})
	svc := session.NewService(provider)

	apiClient, err := client.NewClient(&client.Options{
		JobServiceURL:     c.JobServiceURL,
		AccountServiceURL: c.AccountServiceURL,
		Timeout:           c.HTTPTimeout,
		Credentials:       svc,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating API client: %w", err)
	}

	return &lifetime{
		session:    svc,
		client:     apiClient,
		dispatcher: dispatch.New(c.AdminRole),
		pendingURL: provider.PendingURL,
		logout:     provider.Logout,
	}, nil
}

// startLifetime builds a lifetime in the configured mode
func startLifetime() (*lifetime, error) {
	return newLifetime(cfg, cfg.HandshakeMode)
}

// signIn runs the handshake and returns the view it dispatches to.
// A failed handshake is an error carrying the provider's diagnostic.
func (l *lifetime) signIn(ctx context.Context) (session.Session, dispatch.View, error) {
	l.session.Initialize(ctx)
	s := l.session.Current()
	if s.Status == session.StatusFailed {
		if payload := identity.Payload(s.Err); payload != s.Err.Error() {
			return s, dispatch.ViewGuest, fmt.Errorf("sign-in failed: %w\n%s", s.Err, payload)
		}
		return s, dispatch.ViewGuest, fmt.Errorf("sign-in failed: %w", s.Err)
	}
	return s, l.dispatcher.Dispatch(s), nil
}

// requireMember signs in and fails unless a credential is held
func (l *lifetime) requireMember(ctx context.Context) (session.Session, error) {
	s, _, err := l.signIn(ctx)
	if err != nil {
		return s, err
	}
	if !s.Authenticated() {
		return s, workflow.ErrLoginRequired
	}
	return s, nil
}

// requireAdmin signs in and fails unless the session dispatches to the admin view
func (l *lifetime) requireAdmin(ctx context.Context) error {
	s, view, err := l.signIn(ctx)
	if err != nil {
		return err
	}
	if !s.Authenticated() {
		return workflow.ErrLoginRequired
	}
	if view != dispatch.ViewAdmin {
		return errAdminRequired
	}
	return nil
}
