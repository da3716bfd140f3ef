package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHandshake counts calls and optionally blocks until released
type fakeHandshake struct {
	calls   atomic.Int32
	release chan struct{}
	result  Result
	err     error
}

func (f *fakeHandshake) Authenticate(ctx context.Context) (Result, error) {
	f.calls.Add(1)
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}
	return f.result, f.err
}

func signToken(t *testing.T, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func memberClaims(expiry time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "3b2c-subject",
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
		PreferredUsername: "ana",
		Email:             "ana@example.com",
		RealmAccess:       RealmAccess{Roles: []string{"app_user", "offline_access"}},
	}
}

func TestInitializeAuthenticated(t *testing.T) {
	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signToken(t, memberClaims(expiry))
	handshake := &fakeHandshake{result: Result{Authenticated: true, Credential: token}}
	svc := NewService(handshake)

	assert.Equal(t, StatusUninitialized, svc.Current().Status)
	_, ok := svc.Credential()
	assert.False(t, ok, "no credential before the handshake")

	require.True(t, svc.Initialize(context.Background()))

	current := svc.Current()
	assert.Equal(t, StatusAuthenticated, current.Status)
	assert.Equal(t, "ana", current.Claims.PreferredUsername)
	assert.True(t, current.Claims.HasRole("app_user"))
	assert.False(t, current.Claims.HasRole("app_admin"))

	gotExpiry, ok := current.Claims.Expiry()
	require.True(t, ok)
	assert.True(t, expiry.Equal(gotExpiry))

	credential, ok := svc.Credential()
	require.True(t, ok)
	assert.Equal(t, token, credential)

	select {
	case <-svc.Done():
	default:
		t.Fatal("done should be closed after a terminal transition")
	}
}

func TestInitializeOutcomes(t *testing.T) {
	tests := []struct {
		name       string
		handshake  *fakeHandshake
		wantStatus Status
	}{
		{
			name:       "handshake error",
			handshake:  &fakeHandshake{err: errors.New("invalid_client")},
			wantStatus: StatusFailed,
		},
		{
			name:       "no login",
			handshake:  &fakeHandshake{result: Result{Authenticated: false}},
			wantStatus: StatusUnauthenticated,
		},
		{
			name:       "login without credential",
			handshake:  &fakeHandshake{result: Result{Authenticated: true}},
			wantStatus: StatusFailed,
		},
		{
			name:       "malformed credential",
			handshake:  &fakeHandshake{result: Result{Authenticated: true, Credential: "not-a-jwt"}},
			wantStatus: StatusFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.handshake)
			require.True(t, svc.Initialize(context.Background()))

			current := svc.Current()
			assert.Equal(t, tt.wantStatus, current.Status)
			if tt.wantStatus == StatusFailed {
				assert.Error(t, current.Err)
			}
			_, ok := svc.Credential()
			assert.False(t, ok)
		})
	}
}

func TestInitializeOnlyOnce(t *testing.T) {
	handshake := &fakeHandshake{
		release: make(chan struct{}),
		result:  Result{Authenticated: false},
	}
	svc := NewService(handshake)

	var (
		wg      sync.WaitGroup
		started atomic.Int32
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if svc.Initialize(context.Background()) {
				started.Add(1)
			}
		}()
	}

	// The duplicate returns immediately while the first is still blocked in the handshake
	require.Eventually(t, func() bool {
		return svc.Current().Status == StatusInitializing
	}, time.Second, time.Millisecond)
	close(handshake.release)
	wg.Wait()

	assert.Equal(t, int32(1), started.Load())
	assert.Equal(t, int32(1), handshake.calls.Load())
	assert.Equal(t, StatusUnauthenticated, svc.Current().Status)

	// A later mount is also a no-op
	assert.False(t, svc.Initialize(context.Background()))
	assert.Equal(t, int32(1), handshake.calls.Load())
}

func TestSubscribe(t *testing.T) {
	handshake := &fakeHandshake{
		release: make(chan struct{}),
		result:  Result{Authenticated: false},
	}
	svc := NewService(handshake)

	updates, cancel := svc.Subscribe()
	defer cancel()

	first := <-updates
	assert.Equal(t, StatusUninitialized, first.Status)

	go svc.Initialize(context.Background())

	initializing := <-updates
	assert.Equal(t, StatusInitializing, initializing.Status)

	close(handshake.release)

	final := <-updates
	assert.Equal(t, StatusUnauthenticated, final.Status)

	_, open := <-updates
	assert.False(t, open, "channel closes after the terminal snapshot")

	late, lateCancel := svc.Subscribe()
	defer lateCancel()
	snapshot, open := <-late
	assert.True(t, open)
	assert.Equal(t, StatusUnauthenticated, snapshot.Status)
}

func TestSubscribeCancel(t *testing.T) {
	svc := NewService(&fakeHandshake{})
	updates, cancel := svc.Subscribe()
	<-updates

	cancel()
	cancel()

	_, open := <-updates
	assert.False(t, open)
}

func TestWait(t *testing.T) {
	handshake := &fakeHandshake{release: make(chan struct{})}
	svc := NewService(handshake)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := svc.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	go svc.Initialize(context.Background())
	close(handshake.release)

	current, err := svc.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusUnauthenticated, current.Status)
}

func TestExpired(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	token := signToken(t, memberClaims(clock.Now().Add(5*time.Minute)))
	svc := NewService(&fakeHandshake{result: Result{Authenticated: true, Credential: token}}, WithClock(clock))

	assert.False(t, svc.Expired(), "not authenticated yet")
	require.True(t, svc.Initialize(context.Background()))
	assert.False(t, svc.Expired())

	clock.Advance(5 * time.Minute)
	assert.True(t, svc.Expired())

	// The credential is still handed out; the services decide whether to accept it
	_, ok := svc.Credential()
	assert.True(t, ok)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "initializing", StatusInitializing.String())
	assert.Equal(t, "unknown", Status(42).String())
	assert.False(t, StatusInitializing.Terminal())
	assert.True(t, StatusFailed.Terminal())
}
