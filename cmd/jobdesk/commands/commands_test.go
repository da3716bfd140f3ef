package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celestiaorg/jobdesk/internal/config"
	"github.com/celestiaorg/jobdesk/internal/constants"
	"github.com/celestiaorg/jobdesk/internal/dispatch"
	"github.com/celestiaorg/jobdesk/internal/session"
	"github.com/celestiaorg/jobdesk/internal/tui"
	"github.com/celestiaorg/jobdesk/internal/workflow"
	"github.com/celestiaorg/jobdesk/pkg/api/v1/client/mock"
	"github.com/celestiaorg/jobdesk/pkg/models"
)

// fakeHandshake signs in with a token carrying roles, or fails with err
type fakeHandshake struct {
	mode  string
	roles []string
	err   error
	calls int
}

func (f *fakeHandshake) Authenticate(context.Context) (session.Result, error) {
	f.calls++
	if f.err != nil {
		return session.Result{}, f.err
	}
	if f.mode == config.ModeAnonymous {
		return session.Result{}, nil
	}
	claims := session.Claims{
		PreferredUsername: "ana",
		RealmAccess:       session.RealmAccess{Roles: f.roles},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		return session.Result{}, err
	}
	return session.Result{Authenticated: true, Credential: token}, nil
}

type testHarness struct {
	client    *mock.MockClient
	roles     []string
	err       error
	modes     []string
	handshake *fakeHandshake
	logouts   int
	in        *bytes.Buffer
	out       *bytes.Buffer
	errOut    *bytes.Buffer
}

// setupTestCommand swaps the lifetime factory for one backed by a mock client
func setupTestCommand(t *testing.T, roles ...string) *testHarness {
	h := &testHarness{
		client: &mock.MockClient{},
		roles:  roles,
		in:     &bytes.Buffer{},
		out:    &bytes.Buffer{},
		errOut: &bytes.Buffer{},
	}

	originalLifetime := newLifetime
	originalRunUI := runUI
	t.Cleanup(func() {
		newLifetime = originalLifetime
		runUI = originalRunUI
	})

	t.Setenv(constants.EnvLogFile, filepath.Join(t.TempDir(), "jobdesk.log"))
	t.Setenv(constants.EnvHandshakeMode, config.ModeLoginRequired)
	t.Setenv(constants.EnvAdminRole, "app_admin")

	newLifetime = func(c *config.Config, mode string) (*lifetime, error) {
		h.modes = append(h.modes, mode)
		h.handshake = &fakeHandshake{mode: mode, roles: h.roles, err: h.err}
		return &lifetime{
			session:    session.NewService(h.handshake),
			client:     h.client,
			dispatcher: dispatch.New(c.AdminRole),
			pendingURL: func() string { return "" },
			logout: func() error {
				h.logouts++
				return nil
			},
		}, nil
	}
	return h
}

func (h *testHarness) run(args ...string) (string, error) {
	cmd := NewRootCmd()
	cmd.SetIn(h.in)
	cmd.SetOut(h.out)
	cmd.SetErr(h.errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return h.out.String(), err
}

func listings(n int) []models.JobListing {
	jobs := make([]models.JobListing, 0, n)
	for i := 1; i <= n; i++ {
		jobs = append(jobs, models.JobListing{
			ID:          fmt.Sprintf("job-%d", i),
			Title:       fmt.Sprintf("Engineer %d", i),
			Company:     "Acme",
			Location:    "Remote",
			Description: "<p>Ship <b>things</b></p>",
		})
	}
	return jobs
}

func TestListJobsCommand(t *testing.T) {
	h := setupTestCommand(t)
	h.client.ListJobsFn = func(context.Context) ([]models.JobListing, error) {
		return listings(25), nil
	}

	output, err := h.run("jobs", "list", "--keyword", "engineer", "--page", "2")
	require.NoError(t, err, "Command execution failed")

	require.Len(t, h.client.ListJobsCalls, 1, "ListJobs should be called once")
	assert.Equal(t, 1, h.handshake.calls, "listing signs in first")
	assert.Contains(t, output, `"page": 2`)
	assert.Contains(t, output, `"totalPages": 2`)
	assert.Contains(t, output, `"total": 25`)
	assert.Contains(t, output, `"id": "job-21"`)
	assert.NotContains(t, output, `"id": "job-20"`)
	assert.Contains(t, output, `"summary": "Ship things"`)
}

func TestListJobsCommandSignInFailure(t *testing.T) {
	h := setupTestCommand(t)
	h.err = errors.New("issuer unreachable")

	_, err := h.run("jobs", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sign-in failed: issuer unreachable")
	assert.Empty(t, h.client.ListJobsCalls)
}

func TestListJobsCommandAsGuest(t *testing.T) {
	h := setupTestCommand(t)
	h.client.ListJobsFn = func(context.Context) ([]models.JobListing, error) {
		return listings(3), nil
	}

	output, err := h.run("jobs", "list", "--guest")
	require.NoError(t, err)

	assert.Equal(t, []string{config.ModeAnonymous}, h.modes)
	require.Len(t, h.client.ListJobsCalls, 1)
	assert.Contains(t, output, `"total": 3`)
}

func TestListJobsCommandMatchesEveryFilter(t *testing.T) {
	h := setupTestCommand(t)
	h.client.ListJobsFn = func(context.Context) ([]models.JobListing, error) {
		return []models.JobListing{
			{ID: "1", Title: "Go Developer", Company: "Acme", Location: "Berlin"},
			{ID: "2", Title: "Go Developer", Company: "Globex", Location: "Berlin"},
			{ID: "3", Title: "Designer", Company: "Acme", Location: "Berlin"},
		}, nil
	}

	output, err := h.run("jobs", "list", "-k", "go", "-l", "BERLIN", "-c", "acme")
	require.NoError(t, err)

	assert.Contains(t, output, `"total": 1`)
	assert.Contains(t, output, `"id": "1"`)
	assert.NotContains(t, output, `"id": "2"`)
	assert.NotContains(t, output, `"id": "3"`)
}

func TestListJobsCommandPageOutOfRange(t *testing.T) {
	h := setupTestCommand(t)

	_, err := h.run("jobs", "list", "--page", "3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 3 out of range (1-1)")
}

func TestListJobsCommandFetchFailure(t *testing.T) {
	h := setupTestCommand(t)
	h.client.ListJobsFn = func(context.Context) ([]models.JobListing, error) {
		return nil, errors.New("connection refused")
	}

	_, err := h.run("jobs", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error fetching jobs")
}

func TestApplyCommand(t *testing.T) {
	h := setupTestCommand(t, "app_user")

	output, err := h.run("jobs", "apply", "--id", "job-1")
	require.NoError(t, err, "Command execution failed")

	require.Len(t, h.client.GetCurrentUserCalls, 1)
	require.Len(t, h.client.ApplyToJobCalls, 1)
	assert.Equal(t, "account-1", h.client.ApplyToJobCalls[0].AccountID)
	assert.Equal(t, "job-1", h.client.ApplyToJobCalls[0].Req.ExternalID)
	assert.Contains(t, output, "Applied to Backend Engineer successfully!")
}

func TestApplyCommandAsGuest(t *testing.T) {
	h := setupTestCommand(t)

	_, err := h.run("jobs", "apply", "--id", "job-1", "--guest")
	require.Error(t, err)
	assert.ErrorIs(t, err, workflow.ErrLoginRequired)
	assert.Equal(t, []string{config.ModeAnonymous}, h.modes)
	assert.Empty(t, h.client.GetCurrentUserCalls)
	assert.Empty(t, h.client.ApplyToJobCalls)
}

func TestApplyCommandUnknownJob(t *testing.T) {
	h := setupTestCommand(t, "app_user")

	_, err := h.run("jobs", "apply", "-i", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "job nope not found")
	assert.Zero(t, h.handshake.calls, "no sign-in for an unknown job")
}

func TestApplyCommandFailure(t *testing.T) {
	h := setupTestCommand(t, "app_user")
	h.client.ApplyToJobFn = func(context.Context, string, models.ApplicationRequest) error {
		return errors.New("service unavailable")
	}

	_, err := h.run("jobs", "apply", "--id", "job-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to apply.")
	assert.Contains(t, err.Error(), "service unavailable")
}

func TestApplyCommandRequiresID(t *testing.T) {
	h := setupTestCommand(t, "app_user")

	_, err := h.run("jobs", "apply")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "id" not set`)
	assert.Zero(t, h.client.TotalCalls())
}

func TestSignInFailure(t *testing.T) {
	h := setupTestCommand(t)
	h.err = errors.New("issuer unreachable")

	_, err := h.run("users", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sign-in failed: issuer unreachable")
	assert.Zero(t, h.client.TotalCalls())
}

func TestAdminCommandsRequireAdmin(t *testing.T) {
	tests := []struct {
		name    string
		roles   []string
		args    []string
		wantErr error
	}{
		{
			name:    "member listing users",
			roles:   []string{"app_user"},
			args:    []string{"users", "list"},
			wantErr: errAdminRequired,
		},
		{
			name:    "member deleting a user",
			roles:   []string{"app_user"},
			args:    []string{"users", "delete", "--id", "account-2", "--yes"},
			wantErr: errAdminRequired,
		},
		{
			name:    "member reading notifications",
			roles:   []string{"app_user"},
			args:    []string{"notifications", "list"},
			wantErr: errAdminRequired,
		},
		{
			name:    "guest listing users",
			args:    []string{"users", "list", "--guest"},
			wantErr: workflow.ErrLoginRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setupTestCommand(t, tt.roles...)

			_, err := h.run(tt.args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, h.client.TotalCalls(), "nothing is fetched")
		})
	}
}

func adminHarness(t *testing.T) *testHarness {
	h := setupTestCommand(t, "app_admin")
	h.client.ListUsersFn = func(context.Context) ([]models.UserAccount, error) {
		return []models.UserAccount{
			{ID: "account-1", Username: "ana", Email: "ana@example.com"},
			{ID: "account-2", Username: "bob", Email: "bob@example.com"},
		}, nil
	}
	h.client.ListNotificationsFn = func(context.Context) ([]models.NotificationLog, error) {
		return []models.NotificationLog{
			{ID: "n-1", RecipientEmail: "ana@example.com", Subject: "Welcome", Body: "Hello"},
			{ID: "n-2", RecipientEmail: "bob@example.com", Subject: "New match", Body: "A job for Ana"},
			{ID: "n-3", RecipientEmail: "cy@example.com", Subject: "Digest", Body: "Weekly"},
		}, nil
	}
	return h
}

func TestListUsersCommand(t *testing.T) {
	h := adminHarness(t)

	output, err := h.run("users", "list")
	require.NoError(t, err, "Command execution failed")

	require.Len(t, h.client.ListUsersCalls, 1)
	require.Len(t, h.client.ListNotificationsCalls, 1)
	assert.Contains(t, output, `"username": "ana"`)
	assert.Contains(t, output, `"username": "bob"`)
}

func TestListUsersCommandFetchFailure(t *testing.T) {
	h := adminHarness(t)
	h.client.ListNotificationsFn = func(context.Context) ([]models.NotificationLog, error) {
		return nil, errors.New("boom")
	}

	output, err := h.run("users", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load notifications")
	assert.Empty(t, output)
}

func TestDeleteUserCommand(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		stdin       string
		deleteErr   error
		wantCalls   int
		wantOutput  string
		wantErrText string
	}{
		{
			name:       "confirmed by flag",
			args:       []string{"--yes"},
			wantCalls:  1,
			wantOutput: "Account bob deleted.",
		},
		{
			name:       "confirmed at the prompt",
			stdin:      "y\n",
			wantCalls:  1,
			wantOutput: "Account bob deleted.",
		},
		{
			name:       "declined at the prompt",
			stdin:      "n\n",
			wantOutput: "Deletion cancelled.",
		},
		{
			name:       "no answer",
			wantOutput: "Deletion cancelled.",
		},
		{
			name:        "server failure",
			args:        []string{"-y"},
			deleteErr:   errors.New("forbidden"),
			wantCalls:   1,
			wantErrText: "Failed to delete account.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := adminHarness(t)
			h.in.WriteString(tt.stdin)
			h.client.DeleteUserFn = func(_ context.Context, id string) error {
				assert.Equal(t, "account-2", id)
				return tt.deleteErr
			}

			output, err := h.run(append([]string{"users", "delete", "--id", "account-2"}, tt.args...)...)
			assert.Len(t, h.client.DeleteUserCalls, tt.wantCalls)
			if tt.wantErrText != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrText)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, output, tt.wantOutput)
		})
	}
}

func TestDeleteUserCommandPrompt(t *testing.T) {
	h := adminHarness(t)
	h.in.WriteString("yes\n")

	_, err := h.run("users", "delete", "--id", "account-2")
	require.NoError(t, err)
	assert.Contains(t, h.errOut.String(), "Delete account bob (bob@example.com)? [y/N]: ")
}

func TestDeleteUserCommandUnknownAccount(t *testing.T) {
	h := adminHarness(t)

	_, err := h.run("users", "delete", "--id", "account-9", "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "account account-9 not found")
	assert.Empty(t, h.client.DeleteUserCalls)
}

func TestListNotificationsCommand(t *testing.T) {
	h := adminHarness(t)

	output, err := h.run("notifications", "list", "--search", "ana")
	require.NoError(t, err, "Command execution failed")

	// recipient of n-1, body of n-2
	assert.Contains(t, output, `"total": 2`)
	assert.Contains(t, output, `"id": "n-1"`)
	assert.Contains(t, output, `"id": "n-2"`)
	assert.NotContains(t, output, `"id": "n-3"`)
}

func TestShowProfileCommand(t *testing.T) {
	h := setupTestCommand(t, "app_user")

	output, err := h.run("profile", "show")
	require.NoError(t, err, "Command execution failed")

	require.Len(t, h.client.GetCurrentUserCalls, 1)
	assert.Contains(t, output, `"id": "account-1"`)
	assert.Contains(t, output, `"jobType": "Full-time"`)
}

func TestShowProfileCommandAsGuest(t *testing.T) {
	h := setupTestCommand(t)

	_, err := h.run("profile", "show", "-g")
	require.Error(t, err)
	assert.ErrorIs(t, err, workflow.ErrLoginRequired)
	assert.Zero(t, h.client.TotalCalls())
}

func TestPreferencesCommand(t *testing.T) {
	h := setupTestCommand(t, "app_user")
	h.client.GetCurrentUserFn = func(context.Context) (models.UserAccount, error) {
		account := models.UserAccount{
			ID:       "account-1",
			Username: "ana",
			Preferences: &models.Preferences{
				DesiredRole: "Platform",
				Locations:   []string{"Lisbon"},
				JobType:     models.JobTypeFullTime,
				MinSalary:   40000,
			},
		}
		account.Normalize()
		return account, nil
	}

	output, err := h.run("profile", "preferences", "--locations", "Berlin, ,Remote", "--job-type", "contract")
	require.NoError(t, err, "Command execution failed")

	require.Len(t, h.client.UpdatePreferencesCalls, 1)
	call := h.client.UpdatePreferencesCalls[0]
	assert.Equal(t, "account-1", call.AccountID)
	assert.Equal(t, models.Preferences{
		DesiredRole: "Platform",
		Locations:   []string{"Berlin", "Remote"},
		JobType:     models.JobTypeContract,
		MinSalary:   40000,
	}, call.Prefs)
	assert.Contains(t, output, "Preferences saved!")
}

func TestPreferencesCommandInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown job type", []string{"--job-type", "gig"}, "invalid job type: gig"},
		{"negative salary", []string{"--min-salary", "-1"}, "Failed to save."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setupTestCommand(t, "app_user")

			_, err := h.run(append([]string{"profile", "preferences"}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Empty(t, h.client.UpdatePreferencesCalls)
		})
	}
}

func TestBrowseLifetimes(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		exits       []tui.Exit
		wantModes   []string
		wantLogouts int
		wantOutput  string
	}{
		{
			name:      "quit",
			exits:     []tui.Exit{tui.ExitQuit},
			wantModes: []string{config.ModeLoginRequired},
		},
		{
			name:      "browse subcommand",
			args:      []string{"browse"},
			exits:     []tui.Exit{tui.ExitQuit},
			wantModes: []string{config.ModeLoginRequired},
		},
		{
			name:      "guest signs in",
			args:      []string{"--guest"},
			exits:     []tui.Exit{tui.ExitLogin, tui.ExitQuit},
			wantModes: []string{config.ModeAnonymous, config.ModeLoginRequired},
		},
		{
			name:      "sign in again after expiry",
			exits:     []tui.Exit{tui.ExitLogin, tui.ExitLogin, tui.ExitQuit},
			wantModes: []string{config.ModeLoginRequired, config.ModeLoginRequired, config.ModeLoginRequired},
		},
		{
			name:        "logout",
			exits:       []tui.Exit{tui.ExitLogout},
			wantModes:   []string{config.ModeLoginRequired},
			wantLogouts: 1,
			wantOutput:  "Signed out.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setupTestCommand(t)
			exits := tt.exits
			runUI = func(_ *cobra.Command, deps tui.Deps) (tui.Exit, error) {
				require.NotEmpty(t, exits, "no lifetime expected")
				assert.NotNil(t, deps.Session)
				assert.Same(t, h.client, deps.Client)
				assert.Equal(t, expiryInterval, deps.ExpiryInterval)
				exit := exits[0]
				exits = exits[1:]
				return exit, nil
			}

			output, err := h.run(tt.args...)
			require.NoError(t, err)
			assert.Empty(t, exits)
			assert.Equal(t, tt.wantModes, h.modes)
			assert.Equal(t, tt.wantLogouts, h.logouts)
			assert.Equal(t, tt.wantOutput, strings.TrimSpace(output))
		})
	}
}

func TestBrowseError(t *testing.T) {
	h := setupTestCommand(t)
	runUI = func(*cobra.Command, tui.Deps) (tui.Exit, error) {
		return tui.ExitQuit, errors.New("no terminal")
	}

	_, err := h.run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error running interface: no terminal")
}

func TestConfigPrecedence(t *testing.T) {
	h := setupTestCommand(t)
	t.Setenv(constants.EnvJobServiceURL, "http://env.example:8082")
	t.Setenv(constants.EnvAccountServiceURL, "http://env.example:8081")

	_, err := h.run("jobs", "list", "--job-service-url", "http://flag.example:9000")
	require.NoError(t, err)

	assert.Equal(t, "http://flag.example:9000", cfg.JobServiceURL, "flag wins over env")
	assert.Equal(t, "http://env.example:8081", cfg.AccountServiceURL, "env applies without a flag")
}

func TestInvalidConfiguration(t *testing.T) {
	h := setupTestCommand(t)

	_, err := h.run("jobs", "list", "--issuer-url", "ftp://issuer")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Zero(t, h.client.TotalCalls())
}
