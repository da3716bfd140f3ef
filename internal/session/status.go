package session

// Status is the stage of the session handshake
type Status int

// Session status constants
const (
	// StatusUninitialized means no handshake has started
	StatusUninitialized Status = iota
	// StatusInitializing means the handshake is in flight
	StatusInitializing
	// StatusAuthenticated means a credential was issued
	StatusAuthenticated
	// StatusUnauthenticated means the handshake completed without a login
	StatusUnauthenticated
	// StatusFailed means the handshake failed
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusInitializing:
		return "initializing"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can happen from s
func (s Status) Terminal() bool {
	return s == StatusAuthenticated || s == StatusUnauthenticated || s == StatusFailed
}
