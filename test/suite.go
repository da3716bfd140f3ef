package test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/celestiaorg/jobdesk/internal/dispatch"
	"github.com/celestiaorg/jobdesk/internal/session"
	"github.com/celestiaorg/jobdesk/pkg/api/v1/client"
	"github.com/celestiaorg/jobdesk/pkg/models"
)

// tokenLifetime is how long minted access tokens stay valid
const tokenLifetime = time.Hour

// Suite encapsulates all components needed for integration testing.
// It provides a complete test setup with:
//   - In-memory job and account services
//   - Real HTTP servers
//   - Real API clients, one per signed-in lifetime
//   - A fake clock driving timestamps and token expiry
type Suite struct {
	t *testing.T // The testing.T instance for this suite

	// Server components
	JobApp        *fiber.App
	AccountApp    *fiber.App
	JobServer     *httptest.Server
	AccountServer *httptest.Server

	// Upstream holds the data served by both services
	Upstream *Upstream
	Clock    *clockwork.FakeClock

	// Context management
	ctx        context.Context
	cancelFunc context.CancelFunc

	// Cleanup function
	cleanup func()
}

// Lifetime is one client lifetime against the suite's services
type Lifetime struct {
	Session    *session.Service
	Client     client.Client
	Dispatcher dispatch.Dispatcher
	// Token is the credential, empty for a guest
	Token string
}

// staticHandshake completes with a fixed result
type staticHandshake struct {
	result session.Result
}

func (h staticHandshake) Authenticate(context.Context) (session.Result, error) {
	return h.result, nil
}

// SetS sets the suite instance for this suite
func (s *Suite) SetS(_ suite.TestingSuite) {
	// This method is required by suite.TestingSuite but we don't need to do anything here
}

// SetT sets the testing.T instance for this suite
func (s *Suite) SetT(t *testing.T) {
	s.t = t
}

// T returns the testing.T instance for this suite
func (s *Suite) T() *testing.T {
	return s.t
}

// NewSuite creates a new test suite with the given options.
// The suite must be cleaned up after use by calling Cleanup.
func NewSuite(t *testing.T, opts ...Option) *Suite {
	t.Helper()

	// Create suite with default timeout
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTestTimeout)

	s := &Suite{
		t:          t,
		ctx:        ctx,
		cancelFunc: cancel,
		Clock:      clockwork.NewFakeClockAt(time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)),
	}
	s.Upstream = NewUpstream(s.Clock)

	// Initialize cleanup function
	s.cleanup = func() {
		if s.cancelFunc != nil {
			s.cancelFunc()
		}
	}

	for _, opt := range opts {
		opt(s)
	}

	// Setup servers by default
	SetupServer(s)

	return s
}

// Cleanup tears down the test suite, releasing all resources.
// This should be deferred immediately after creating the suite.
// Calling it more than once is safe.
func (s *Suite) Cleanup() {
	if s.cleanup != nil {
		s.cleanup()
		s.cleanup = nil
	}
}

// Context returns the suite's context, which is automatically
// canceled when the suite is cleaned up.
func (s *Suite) Context() context.Context {
	return s.ctx
}

// Require returns a require.Assertions instance for this suite.
// This is a convenience method to avoid passing t around.
func (s *Suite) Require() *require.Assertions {
	return require.New(s.t)
}

// SignIn stores an account for username with roles, unless one exists, and starts a
// lifetime authenticated as it. The account id is "account-<username>".
func (s *Suite) SignIn(username string, roles ...string) *Lifetime {
	s.t.Helper()

	id := "account-" + username
	if _, ok := s.Upstream.Account(id); !ok {
		s.Upstream.AddAccount(models.UserAccount{
			ID:         id,
			ExternalID: "kc-" + username,
			Username:   username,
			Email:      username + "@example.com",
			Roles:      roles,
		}, "")
	}

	claims := session.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "kc-" + username,
			ExpiresAt: jwt.NewNumericDate(s.Clock.Now().Add(tokenLifetime)),
		},
		PreferredUsername: username,
		Email:             username + "@example.com",
		RealmAccess:       session.RealmAccess{Roles: roles},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("suite-secret"))
	s.Require().NoError(err, "Failed to sign token")

	account, _ := s.Upstream.Account(id)
	s.Upstream.AddAccount(account, token)

	return s.start(session.Result{Authenticated: true, Credential: token})
}

// Guest starts a lifetime that browses without a login
func (s *Suite) Guest() *Lifetime {
	s.t.Helper()
	return s.start(session.Result{})
}

func (s *Suite) start(result session.Result) *Lifetime {
	svc := session.NewService(staticHandshake{result: result}, session.WithClock(s.Clock))
	s.Require().True(svc.Initialize(s.ctx), "session should initialize once")

	apiClient, err := client.NewClient(&client.Options{
		JobServiceURL:     s.JobServer.URL,
		AccountServiceURL: s.AccountServer.URL,
		Timeout:           testClientTimeout,
		Credentials:       svc,
	})
	s.Require().NoError(err, "Failed to create API client")

	return &Lifetime{
		Session:    svc,
		Client:     apiClient,
		Dispatcher: dispatch.New(AdminRole),
		Token:      result.Credential,
	}
}
