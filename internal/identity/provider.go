// Package identity performs the OpenID Connect login against the identity provider.
//
// The flow is the authorization code grant with a PKCE S256 challenge: provider
// metadata is discovered, the authorization URL is opened in the browser, a
// loopback server receives the redirect and the code is exchanged for tokens.
package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/browser"
	"golang.org/x/oauth2"

	"github.com/celestiaorg/jobdesk/internal/logger"
	"github.com/celestiaorg/jobdesk/internal/session"
)

// Handshake modes
const (
	// ModeLoginRequired always logs in before the session completes
	ModeLoginRequired = "login-required"
	// ModeAnonymous completes the session without logging in
	ModeAnonymous = "anonymous"
)

// DefaultScopes are requested on login
var DefaultScopes = []string{"openid", "profile", "email"}

// Config configures the Provider
type Config struct {
	IssuerURL    string
	ClientID     string
	CallbackAddr string
	Mode         string
	Scopes       []string
	// Timeout bounds the whole handshake, including the time spent in the browser. Zero means no bound.
	Timeout time.Duration
}

// Opener opens a URL for the user, normally in the system browser
type Opener func(url string) error

// OpenBrowser opens url in the system browser without writing to the terminal
func OpenBrowser(url string) error {
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
	return browser.OpenURL(url)
}

// Option configures a Provider
type Option func(*Provider)

// WithOpener replaces the browser opener
func WithOpener(open Opener) Option {
	return func(p *Provider) {
		p.open = open
	}
}

// WithHTTPClient replaces the client used for discovery
func WithHTTPClient(client *retryablehttp.Client) Option {
	return func(p *Provider) {
		p.http = client
	}
}

// Provider implements session.Handshake against an OpenID Connect provider
type Provider struct {
	cfg  Config
	http *retryablehttp.Client
	open Opener

	mu         sync.RWMutex
	pendingURL string
	endpoints  Endpoints
}

var _ session.Handshake = (*Provider)(nil)

// NewProvider creates a Provider
func NewProvider(cfg Config, opts ...Option) *Provider {
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = DefaultScopes
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeLoginRequired
	}
	p := &Provider{
		cfg:  cfg,
		http: NewDiscoveryClient(),
		open: OpenBrowser,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PendingURL returns the authorization URL while the provider waits for the
// redirect, so it can be shown when no browser could be opened
func (p *Provider) PendingURL() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pendingURL
}

func (p *Provider) setPendingURL(u string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pendingURL = u
}

// Authenticate runs the login. In anonymous mode it returns an unauthenticated
// result without any network traffic.
func (p *Provider) Authenticate(ctx context.Context) (session.Result, error) {
	if p.cfg.Mode == ModeAnonymous {
		return session.Result{Authenticated: false}, nil
	}

	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	endpoints, err := Discover(ctx, p.http, p.cfg.IssuerURL)
	if err != nil {
		var hsErr *HandshakeError
		if errors.As(err, &hsErr) {
			return session.Result{}, err
		}
		return session.Result{}, &HandshakeError{Stage: StageDiscovery, Err: err}
	}
	p.mu.Lock()
	p.endpoints = endpoints
	p.mu.Unlock()

	state, err := generateState()
	if err != nil {
		return session.Result{}, &HandshakeError{Stage: StageAuthorization, Err: err}
	}
	verifier := oauth2.GenerateVerifier()

	srv, err := startCallbackServer(p.cfg.CallbackAddr, state)
	if err != nil {
		return session.Result{}, &HandshakeError{Stage: StageCallback, Err: err}
	}
	defer srv.shutdown()

	host, _, err := net.SplitHostPort(p.cfg.CallbackAddr)
	if err != nil {
		return session.Result{}, &HandshakeError{Stage: StageCallback, Err: err}
	}
	oauthCfg := &oauth2.Config{
		ClientID: p.cfg.ClientID,
		Endpoint: oauth2.Endpoint{
			AuthURL:   endpoints.AuthorizationEndpoint,
			TokenURL:  endpoints.TokenEndpoint,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: "http://" + net.JoinHostPort(host, srv.port()) + CallbackPath,
		Scopes:      p.cfg.Scopes,
	}

	authURL := oauthCfg.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
	p.setPendingURL(authURL)
	defer p.setPendingURL("")

	logger.InfoWithFields("Waiting for login redirect", map[string]interface{}{
		"redirect_uri": oauthCfg.RedirectURL,
	})
	if err := p.open(authURL); err != nil {
		logger.Warnf("Could not open browser (%v), open this URL to sign in: %s", err, authURL)
	}

	var code string
	select {
	case <-ctx.Done():
		return session.Result{}, &HandshakeError{Stage: StageAuthorization, Err: ctx.Err()}
	case result := <-srv.results:
		if result.err != nil {
			return session.Result{}, result.err
		}
		code = result.code
	}

	token, err := oauthCfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		hsErr := &HandshakeError{Stage: StageToken, Err: err}
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			hsErr.Payload = string(retrieveErr.Body)
		}
		return session.Result{}, hsErr
	}

	return session.Result{Authenticated: true, Credential: token.AccessToken}, nil
}

// LogoutURL returns the provider's end-session URL for this client, if the
// provider advertised one during the handshake
func (p *Provider) LogoutURL() (string, bool) {
	p.mu.RLock()
	endpoint := p.endpoints.EndSessionEndpoint
	p.mu.RUnlock()
	if endpoint == "" {
		return "", false
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false
	}
	q := u.Query()
	q.Set("client_id", p.cfg.ClientID)
	u.RawQuery = q.Encode()
	return u.String(), true
}

// Logout opens the end-session URL so the provider forgets the browser login
func (p *Provider) Logout() error {
	target, ok := p.LogoutURL()
	if !ok {
		return fmt.Errorf("identity provider does not advertise an end-session endpoint")
	}
	return p.open(target)
}

func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate OAuth state: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// IsPending reports whether err is a handshake that never received a redirect
func IsPending(err error) bool {
	var hsErr *HandshakeError
	return errors.As(err, &hsErr) && hsErr.Stage == StageAuthorization &&
		(errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled))
}

// Payload extracts the raw provider payload from a handshake failure, or the error text
func Payload(err error) string {
	var hsErr *HandshakeError
	if errors.As(err, &hsErr) && strings.TrimSpace(hsErr.Payload) != "" {
		return hsErr.Payload
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
