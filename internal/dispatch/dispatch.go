// Package dispatch selects the view variant for a session
package dispatch

import "github.com/celestiaorg/jobdesk/internal/session"

// DefaultAdminRole is the realm role granting the administrator view
const DefaultAdminRole = "app_admin"

// View is the data path a session is routed to
type View int

// View variants
const (
	// ViewGuest browses public listings without a session
	ViewGuest View = iota
	// ViewMember browses listings and applies as an authenticated user
	ViewMember
	// ViewAdmin manages accounts and reads notification logs
	ViewAdmin
)

func (v View) String() string {
	switch v {
	case ViewMember:
		return "member"
	case ViewAdmin:
		return "admin"
	default:
		return "guest"
	}
}

// Dispatcher maps a session to its view
type Dispatcher struct {
	adminRole string
}

// New creates a Dispatcher treating adminRole as the administrator role.
// An empty role falls back to DefaultAdminRole.
func New(adminRole string) Dispatcher {
	if adminRole == "" {
		adminRole = DefaultAdminRole
	}
	return Dispatcher{adminRole: adminRole}
}

// Dispatch returns the view for s. Anything short of an authenticated session is a guest.
func (d Dispatcher) Dispatch(s session.Session) View {
	if !s.Authenticated() {
		return ViewGuest
	}
	if s.Claims.HasRole(d.adminRole) {
		return ViewAdmin
	}
	return ViewMember
}
