// Package session owns the identity provider handshake and the resulting session state.
//
// A Service performs at most one handshake in its lifetime. Everything else in the
// client reads the session through Current, Subscribe or the CredentialSource
// implementation and never mutates it.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jonboulle/clockwork"

	"github.com/celestiaorg/jobdesk/internal/logger"
)

// Session is a snapshot of the session state
type Session struct {
	Status     Status
	Credential string
	Claims     Claims
	// Err is set when Status is StatusFailed
	Err error
}

// Authenticated reports whether a credential is held
func (s Session) Authenticated() bool {
	return s.Status == StatusAuthenticated
}

// Result is what a handshake produces
type Result struct {
	// Authenticated is false when the handshake completed without a login
	Authenticated bool
	// Credential is the bearer token issued on login
	Credential string
}

// Handshake performs the exchange with the identity provider
type Handshake interface {
	Authenticate(ctx context.Context) (Result, error)
}

// Option configures a Service
type Option func(*Service)

// WithClock sets the clock used for expiry checks
func WithClock(clock clockwork.Clock) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// Service runs the handshake once and exposes its outcome
type Service struct {
	handshake Handshake
	clock     clockwork.Clock

	// acquired is set by the first Initialize call and never cleared
	acquired atomic.Bool
	done     chan struct{}

	mu          sync.RWMutex
	state       Session
	subscribers map[int]chan Session
	nextID      int
}

// NewService creates a Service for the given handshake
func NewService(handshake Handshake, opts ...Option) *Service {
	s := &Service{
		handshake:   handshake,
		clock:       clockwork.NewRealClock(),
		done:        make(chan struct{}),
		subscribers: make(map[int]chan Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize runs the handshake and blocks until it reaches a terminal state.
// Only the first call does anything; later calls return false immediately
// without touching the network and the first call's outcome stands.
func (s *Service) Initialize(ctx context.Context) bool {
	if !s.acquired.CompareAndSwap(false, true) {
		logger.Debug("Session handshake already started, ignoring initialize")
		return false
	}

	s.transition(Session{Status: StatusInitializing})
	logger.Info("Starting identity provider handshake")

	next := s.authenticate(ctx)
	s.transition(next)
	close(s.done)

	switch next.Status {
	case StatusAuthenticated:
		logger.InfoWithFields("Session authenticated", map[string]interface{}{
			"subject":  next.Claims.Subject,
			"username": next.Claims.PreferredUsername,
			"roles":    next.Claims.Roles(),
		})
	case StatusUnauthenticated:
		logger.Info("Session continues without login")
	case StatusFailed:
		logger.Errorf("Identity provider handshake failed: %v", next.Err)
	}
	return true
}

func (s *Service) authenticate(ctx context.Context) Session {
	result, err := s.handshake.Authenticate(ctx)
	if err != nil {
		return Session{Status: StatusFailed, Err: err}
	}
	if !result.Authenticated {
		return Session{Status: StatusUnauthenticated}
	}
	if result.Credential == "" {
		return Session{Status: StatusFailed, Err: errors.New("handshake reported a login without a credential")}
	}

	claims, err := ParseClaims(result.Credential)
	if err != nil {
		return Session{Status: StatusFailed, Err: fmt.Errorf("invalid credential: %w", err)}
	}
	return Session{
		Status:     StatusAuthenticated,
		Credential: result.Credential,
		Claims:     claims,
	}
}

// transition replaces the state and publishes it to subscribers.
// Subscribers always hold the latest value only.
func (s *Service) transition(next Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = next
	for id, ch := range s.subscribers {
		publish(ch, next)
		if next.Status.Terminal() {
			close(ch)
			delete(s.subscribers, id)
		}
	}
}

func publish(ch chan Session, value Session) {
	select {
	case <-ch:
	default:
	}
	ch <- value
}

// Current returns the current session snapshot
func (s *Service) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Done is closed once the session reaches a terminal state
func (s *Service) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the session reaches a terminal state or ctx ends
func (s *Service) Wait(ctx context.Context) (Session, error) {
	select {
	case <-s.done:
		return s.Current(), nil
	case <-ctx.Done():
		return s.Current(), ctx.Err()
	}
}

// Subscribe returns a channel carrying the latest session snapshot. The current
// snapshot is delivered immediately. The channel is closed after the terminal
// snapshot or when cancel is called.
func (s *Service) Subscribe() (<-chan Session, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Session, 1)
	ch <- s.state
	if s.state.Status.Terminal() {
		close(ch)
		return ch, func() {}
	}

	id := s.nextID
	s.nextID++
	s.subscribers[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subscribers[id]; ok {
			close(sub)
			delete(s.subscribers, id)
		}
	}
	return ch, cancel
}

// Credential returns the bearer credential when the session is authenticated
func (s *Service) Credential() (string, bool) {
	current := s.Current()
	if !current.Authenticated() {
		return "", false
	}
	return current.Credential, true
}

// Expired reports whether the credential is past its expiry. The credential is
// never refreshed; an expired session needs a fresh login.
func (s *Service) Expired() bool {
	current := s.Current()
	if !current.Authenticated() {
		return false
	}
	expiry, ok := current.Claims.Expiry()
	if !ok {
		return false
	}
	return !s.clock.Now().Before(expiry)
}
