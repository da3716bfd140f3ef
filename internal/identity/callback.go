package identity

import (
	"encoding/json"
	"errors"
	"net"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"

	"github.com/celestiaorg/jobdesk/internal/logger"
)

// CallbackPath is where the identity provider redirects after login
const CallbackPath = "/callback"

const shutdownTimeout = 2 * time.Second

const (
	signedInPage = "Signed in. You can close this window and return to jobdesk."
	failedPage   = "Sign-in failed. Return to jobdesk for details."
)

// callbackResult is what the redirect delivered
type callbackResult struct {
	code string
	err  error
}

// callbackServer receives exactly one authorization redirect on a loopback listener
type callbackServer struct {
	app      *fiber.App
	listener net.Listener
	results  chan callbackResult
}

// startCallbackServer listens on addr and serves CallbackPath until shutdown.
// Only the first redirect carrying the expected state is delivered.
func startCallbackServer(addr, expectedState string) (*callbackServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	srv := &callbackServer{
		app: fiber.New(fiber.Config{
			DisableStartupMessage: true,
			ReadTimeout:           10 * time.Second,
		}),
		listener: ln,
		results:  make(chan callbackResult, 1),
	}
	srv.app.Use(fiberlogger.New(fiberlogger.Config{
		Output: logger.Writer(),
	}))
	srv.app.Get(CallbackPath, func(c *fiber.Ctx) error {
		return srv.handleCallback(c, expectedState)
	})

	go func() {
		if err := srv.app.Listener(ln); err != nil {
			logger.Debugf("Callback server stopped: %v", err)
		}
	}()
	return srv, nil
}

func (s *callbackServer) handleCallback(c *fiber.Ctx, expectedState string) error {
	if c.Query("state") != expectedState {
		// Stray or forged redirects are rejected without ending the handshake
		logger.Warn("Rejected login redirect with unexpected state")
		return c.Status(fiber.StatusBadRequest).SendString("Invalid OAuth state")
	}

	if errCode := c.Query("error"); errCode != "" {
		payload, _ := json.Marshal(c.Queries())
		s.deliver(callbackResult{err: &HandshakeError{
			Stage:   StageAuthorization,
			Payload: string(payload),
			Err:     errors.New(errCode),
		}})
		return c.Status(fiber.StatusUnauthorized).SendString(failedPage)
	}

	code := c.Query("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).SendString("Missing code parameter")
	}

	s.deliver(callbackResult{code: code})
	return c.SendString(signedInPage)
}

// deliver hands over the first result and drops any later one
func (s *callbackServer) deliver(result callbackResult) {
	select {
	case s.results <- result:
	default:
	}
}

// port returns the port actually listened on
func (s *callbackServer) port() string {
	_, port, _ := net.SplitHostPort(s.listener.Addr().String())
	return port
}

func (s *callbackServer) shutdown() {
	if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Debugf("Callback server shutdown: %v", err)
	}
	// The server may not have started accepting yet
	_ = s.listener.Close()
}
