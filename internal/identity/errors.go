package identity

import "fmt"

// Handshake stages reported in HandshakeError
const (
	StageDiscovery     = "discovery"
	StageCallback      = "callback"
	StageAuthorization = "authorization"
	StageToken         = "token"
)

// HandshakeError describes a failed handshake. Payload carries the raw error
// document returned by the identity provider, if any.
type HandshakeError struct {
	Stage   string
	Payload string
	Err     error
}

func (e *HandshakeError) Error() string {
	if e.Payload != "" {
		return fmt.Sprintf("%s failed: %v: %s", e.Stage, e.Err, e.Payload)
	}
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *HandshakeError) Unwrap() error {
	return e.Err
}
