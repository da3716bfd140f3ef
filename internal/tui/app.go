// Package tui is the interactive terminal client. The root model gates on the
// session and then hands over to the view the session dispatches to.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/celestiaorg/jobdesk/internal/dispatch"
	"github.com/celestiaorg/jobdesk/internal/identity"
	"github.com/celestiaorg/jobdesk/internal/logger"
	"github.com/celestiaorg/jobdesk/internal/session"
	"github.com/celestiaorg/jobdesk/internal/workflow"
	"github.com/celestiaorg/jobdesk/pkg/api/v1/client"
)

// Exit tells the caller how the client lifetime ended
type Exit int

const (
	// ExitQuit means the user quit
	ExitQuit Exit = iota
	// ExitLogin means a fresh lifetime with a mandatory login was requested
	ExitLogin
	// ExitLogout means the user logged out
	ExitLogout
)

// String returns the string representation of the exit
func (e Exit) String() string {
	switch e {
	case ExitQuit:
		return "quit"
	case ExitLogin:
		return "login"
	case ExitLogout:
		return "logout"
	default:
		return "unknown"
	}
}

// SessionSource is the session as the UI sees it
type SessionSource interface {
	Initialize(ctx context.Context) bool
	Wait(ctx context.Context) (session.Session, error)
	Expired() bool
}

// Deps are the collaborators of the UI
type Deps struct {
	Session    SessionSource
	Client     client.Client
	Dispatcher dispatch.Dispatcher
	// PendingURL returns the login URL while the handshake waits for the browser. Optional.
	PendingURL func() string
	// ExpiryInterval is how often the credential expiry is checked. Zero disables the check.
	ExpiryInterval time.Duration
}

type screen int

const (
	screenJobs screen = iota
	screenProfile
	screenAdmin
)

type (
	sessionMsg     struct{ session session.Session }
	expiryCheckMsg struct{}
	appliedMsg     struct{ result workflow.ApplyResult }
)

// Model is the root model
type Model struct {
	ctx  context.Context
	deps Deps

	spinner spinner.Model
	session session.Session
	ready   bool
	view    dispatch.View
	screen  screen

	jobs    *jobsView
	admin   *adminView
	profile *profileView
	apply   *workflow.Apply

	applying bool
	notice   workflow.Notice
	expired  bool

	exit     Exit
	quitting bool
	width    int
	height   int
}

// New creates the root model. ctx bounds the handshake and every request.
func New(ctx context.Context, deps Deps) Model {
	return Model{
		ctx:     ctx,
		deps:    deps,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		width:   120,
		height:  30,
	}
}

// Run starts the UI and blocks until the client lifetime ends
func Run(ctx context.Context, deps Deps, opts ...tea.ProgramOption) (Exit, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	final, err := tea.NewProgram(New(ctx, deps), opts...).Run()
	if err != nil {
		return ExitQuit, fmt.Errorf("terminal UI failed: %w", err)
	}
	return final.(Model).Exit(), nil
}

// Exit returns how the lifetime ended
func (m Model) Exit() Exit {
	return m.exit
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.initSession())
}

// initSession starts the handshake, or joins it if another caller already started it
func (m Model) initSession() tea.Cmd {
	ctx, svc := m.ctx, m.deps.Session
	return func() tea.Msg {
		svc.Initialize(ctx)
		s, err := svc.Wait(ctx)
		if err != nil {
			logger.Debugf("Stopped waiting for session: %v", err)
			return nil
		}
		return sessionMsg{session: s}
	}
}

func (m Model) scheduleExpiryCheck() tea.Cmd {
	if m.deps.ExpiryInterval <= 0 || !m.session.Authenticated() {
		return nil
	}
	return tea.Tick(m.deps.ExpiryInterval, func(time.Time) tea.Msg {
		return expiryCheckMsg{}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if m.ready {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case sessionMsg:
		return m.mount(msg.session)

	case expiryCheckMsg:
		if m.deps.Session.Expired() {
			if !m.expired {
				logger.Warn("Session credential expired, sign in again to continue")
			}
			m.expired = true
			return m, nil
		}
		return m, m.scheduleExpiryCheck()

	case appliedMsg:
		m.applying = false
		if msg.result.Outcome == workflow.OutcomeLoginRequested {
			return m.quit(ExitLogin)
		}
		m.notice = msg.result.Notice
		return m, nil

	case jobsFetchedMsg:
		if m.jobs != nil {
			m.jobs.commit(msg.fetched)
		}
		return m, nil

	case adminFetchedMsg:
		if m.admin != nil {
			m.admin.commit(msg.fetched)
		}
		return m, nil

	case deletedMsg:
		if m.admin != nil {
			m.notice = m.admin.commitDelete(msg.result)
		}
		return m, nil

	case profileFetchedMsg:
		if m.profile != nil {
			m.profile.commit(msg.fetched)
		}
		return m, nil

	case savedMsg:
		if m.profile != nil {
			m.notice = m.profile.commitSave(msg.result)
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

// mount runs once the session is terminal. The view is dispatched exactly once.
func (m Model) mount(s session.Session) (tea.Model, tea.Cmd) {
	if m.ready {
		return m, nil
	}
	m.session = s
	m.ready = true
	if s.Status == session.StatusFailed {
		return m, nil
	}

	m.view = m.deps.Dispatcher.Dispatch(s)
	logger.Infof("Dispatched to %s view", m.view)
	m.apply = workflow.NewApply(m.deps.Client, sessionSnapshot(s))

	var load tea.Cmd
	switch m.view {
	case dispatch.ViewAdmin:
		m.screen = screenAdmin
		m.admin = newAdminView(m.deps.Client)
		load = m.admin.load(m.ctx)
	default:
		m.screen = screenJobs
		m.jobs = newJobsView(m.deps.Client)
		load = m.jobs.load(m.ctx)
	}
	return m, tea.Batch(load, m.scheduleExpiryCheck())
}

// sessionSnapshot serves the session captured at mount; it never changes afterwards
type sessionSnapshot session.Session

func (s sessionSnapshot) Current() session.Session { return session.Session(s) }

func (m Model) quit(exit Exit) (tea.Model, tea.Cmd) {
	m.exit = exit
	m.quitting = true
	logger.Infof("Ending client lifetime: %s", exit)
	return m, tea.Quit
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit(ExitQuit)
	}

	// Notices block everything until dismissed
	if !m.notice.Empty() {
		m.notice = workflow.Notice{}
		return m, nil
	}

	if !m.ready || m.session.Status == session.StatusFailed {
		if key.Matches(msg, keys.Quit) {
			return m.quit(ExitQuit)
		}
		return m, nil
	}

	if m.applying {
		return m, nil
	}

	if !m.inputFocused() {
		switch {
		case key.Matches(msg, keys.Quit):
			return m.quit(ExitQuit)
		case key.Matches(msg, keys.Logout) && m.session.Authenticated():
			return m.quit(ExitLogout)
		case key.Matches(msg, keys.Login) && (m.expired || !m.session.Authenticated()):
			return m.quit(ExitLogin)
		}
	}

	switch m.screen {
	case screenAdmin:
		return m, m.admin.update(m.ctx, msg)
	case screenProfile:
		cmd, back := m.profile.update(m.ctx, msg)
		if back {
			m.screen = screenJobs
		}
		return m, cmd
	default:
		return m.updateJobs(msg)
	}
}

func (m Model) inputFocused() bool {
	switch m.screen {
	case screenAdmin:
		return m.admin != nil && m.admin.inputFocused()
	case screenProfile:
		return m.profile != nil
	default:
		return m.jobs != nil && m.jobs.inputFocused()
	}
}

func (m Model) updateJobs(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action, cmd := m.jobs.update(m.ctx, msg)
	switch action {
	case jobsActionApply:
		job, ok := m.jobs.selected()
		if !ok {
			return m, cmd
		}
		m.applying = true
		apply, ctx := m.apply, m.ctx
		return m, tea.Batch(cmd, func() tea.Msg {
			return appliedMsg{result: apply.Run(ctx, job)}
		})
	case jobsActionProfile:
		if m.view != dispatch.ViewMember {
			return m, cmd
		}
		if m.profile == nil {
			m.profile = newProfileView(m.deps.Client)
		}
		m.screen = screenProfile
		return m, tea.Batch(cmd, m.profile.load(m.ctx))
	}
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch {
	case !m.ready:
		body = m.waitingView()
	case m.session.Status == session.StatusFailed:
		body = m.failureView()
	default:
		body = m.appView()
	}

	if !m.notice.Empty() {
		style := noticeStyle
		if m.notice.Failure {
			style = failureNoticeStyle
		}
		box := style.Render(m.notice.Message + "\n\n" + dimStyle.Render("press any key"))
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return body
}

func (m Model) waitingView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("jobdesk") + "\n\n")
	b.WriteString("  " + m.spinner.View() + " Signing in...\n")
	if m.deps.PendingURL != nil {
		if u := m.deps.PendingURL(); u != "" {
			b.WriteString("\n" + dimStyle.Render("  If no browser opened, visit:") + "\n  " + u + "\n")
		}
	}
	b.WriteString("\n" + helpLine(keys.Quit))
	return b.String()
}

func (m Model) failureView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("jobdesk") + "\n\n")
	b.WriteString(errorStyle.Render("  Sign-in failed") + "\n\n")
	b.WriteString("  " + m.session.Err.Error() + "\n\n")
	b.WriteString(labelStyle.Render("  Identity provider response") + "\n")
	payload := lipgloss.NewStyle().Width(max(20, m.width-4)).Render(identity.Payload(m.session.Err))
	b.WriteString(payloadStyle.Render(payload) + "\n\n")
	b.WriteString(helpLine(keys.Quit))
	return b.String()
}

func (m Model) appView() string {
	var b strings.Builder

	title := titleStyle.Render("jobdesk")
	who := "guest"
	if m.session.Authenticated() {
		who = m.session.Claims.PreferredUsername
	}
	b.WriteString(title + dimStyle.Render(fmt.Sprintf("  %s  [%s]", who, m.view)) + "\n")

	switch {
	case m.expired:
		b.WriteString(bannerStyle.Render("Session expired. Press L to sign in again.") + "\n")
	case !m.session.Authenticated():
		b.WriteString(bannerStyle.Render("You are not signed in. Browsing as guest, press L to sign in.") + "\n")
	}

	switch m.screen {
	case screenAdmin:
		b.WriteString(m.admin.view(m.width))
	case screenProfile:
		b.WriteString(m.profile.view(m.width))
	default:
		b.WriteString(m.jobs.view(m.width, m.height, m.view == dispatch.ViewMember, m.applying))
	}
	return b.String()
}
