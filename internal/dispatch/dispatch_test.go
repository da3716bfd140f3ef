package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/celestiaorg/jobdesk/internal/session"
)

func sessionWithRoles(status session.Status, roles ...string) session.Session {
	return session.Session{
		Status: status,
		Claims: session.Claims{RealmAccess: session.RealmAccess{Roles: roles}},
	}
}

func TestDispatch(t *testing.T) {
	tests := []struct {
		name      string
		adminRole string
		session   session.Session
		want      View
	}{
		{
			name:    "admin role",
			session: sessionWithRoles(session.StatusAuthenticated, "app_user", "app_admin"),
			want:    ViewAdmin,
		},
		{
			name:    "member",
			session: sessionWithRoles(session.StatusAuthenticated, "app_user"),
			want:    ViewMember,
		},
		{
			name:    "authenticated without roles",
			session: sessionWithRoles(session.StatusAuthenticated),
			want:    ViewMember,
		},
		{
			name:    "unauthenticated",
			session: sessionWithRoles(session.StatusUnauthenticated),
			want:    ViewGuest,
		},
		{
			name:    "claims are ignored without a session",
			session: sessionWithRoles(session.StatusFailed, "app_admin"),
			want:    ViewGuest,
		},
		{
			name:      "custom admin role",
			adminRole: "ops",
			session:   sessionWithRoles(session.StatusAuthenticated, "app_admin"),
			want:      ViewMember,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.adminRole).Dispatch(tt.session))
		})
	}
}

func TestViewString(t *testing.T) {
	assert.Equal(t, "guest", ViewGuest.String())
	assert.Equal(t, "member", ViewMember.String())
	assert.Equal(t, "admin", ViewAdmin.String())
}
