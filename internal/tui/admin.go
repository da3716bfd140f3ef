package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/celestiaorg/jobdesk/internal/admin"
	"github.com/celestiaorg/jobdesk/internal/workflow"
	"github.com/celestiaorg/jobdesk/pkg/models"
)

type adminTab int

const (
	tabAccounts adminTab = iota
	tabNotifications
)

type (
	adminFetchedMsg struct{ fetched admin.Fetched }
	deletedMsg      struct{ result admin.DeleteResult }
)

type adminView struct {
	ctrl      *admin.Controller
	tab       adminTab
	cursor    int
	search    textinput.Model
	searching bool
	confirm   *models.UserAccount
	deleting  bool
}

func newAdminView(api admin.API) *adminView {
	return &adminView{
		ctrl:   admin.NewController(api),
		search: newInput("search recipient, subject or body", 100),
	}
}

func (v *adminView) load(ctx context.Context) tea.Cmd {
	ctrl := v.ctrl
	ticket := ctrl.Begin()
	return func() tea.Msg {
		return adminFetchedMsg{fetched: ctrl.Fetch(ctx, ticket)}
	}
}

func (v *adminView) commit(f admin.Fetched) {
	if v.ctrl.Commit(f) {
		v.clampCursor()
	}
}

func (v *adminView) commitDelete(r admin.DeleteResult) workflow.Notice {
	v.deleting = false
	notice := v.ctrl.CommitDelete(r)
	v.clampCursor()
	return notice
}

func (v *adminView) clampCursor() {
	if n := len(v.ctrl.Accounts()); v.cursor >= n {
		v.cursor = max(0, n-1)
	}
}

func (v *adminView) inputFocused() bool {
	return v.searching || v.confirm != nil
}

func (v *adminView) update(ctx context.Context, msg tea.KeyMsg) tea.Cmd {
	if v.deleting {
		return nil
	}
	if v.confirm != nil {
		return v.updateConfirm(ctx, msg)
	}
	if v.searching {
		return v.updateSearch(msg)
	}

	switch {
	case key.Matches(msg, keys.SwitchTab):
		if v.tab == tabAccounts {
			v.tab = tabNotifications
		} else {
			v.tab = tabAccounts
		}
		return nil
	case key.Matches(msg, keys.Reload):
		if !v.ctrl.Loading() {
			return v.load(ctx)
		}
		return nil
	}

	if v.tab == tabNotifications {
		notifications := v.ctrl.Notifications()
		switch {
		case key.Matches(msg, keys.PrevPage):
			notifications.Prev()
		case key.Matches(msg, keys.NextPage):
			notifications.Next()
		case key.Matches(msg, keys.Filter):
			v.searching = true
			v.search.Focus()
		}
		return nil
	}

	accounts := v.ctrl.Accounts()
	switch {
	case key.Matches(msg, keys.Up):
		if v.cursor > 0 {
			v.cursor--
		}
	case key.Matches(msg, keys.Down):
		if v.cursor < len(accounts)-1 {
			v.cursor++
		}
	case key.Matches(msg, keys.Delete):
		if v.cursor < len(accounts) {
			target := accounts[v.cursor]
			v.confirm = &target
		}
	}
	return nil
}

func (v *adminView) updateConfirm(ctx context.Context, msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Confirm):
		target := *v.confirm
		v.confirm = nil
		v.deleting = true
		ctrl := v.ctrl
		return func() tea.Msg {
			return deletedMsg{result: ctrl.RequestDelete(ctx, target, admin.Confirmed)}
		}
	case key.Matches(msg, keys.Deny):
		v.confirm = nil
	}
	return nil
}

func (v *adminView) updateSearch(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, keys.Done) {
		v.search.Blur()
		v.searching = false
		return nil
	}

	var cmd tea.Cmd
	v.search, cmd = v.search.Update(msg)
	if text := v.search.Value(); text != v.ctrl.Notifications().Criteria().SearchText {
		v.ctrl.SearchNotifications(text)
	}
	return cmd
}

func (v *adminView) view(width int) string {
	var b strings.Builder

	tabs := []string{"Accounts", "Notifications"}
	for i, name := range tabs {
		if adminTab(i) == v.tab {
			b.WriteString(activeTabStyle.Render(name))
		} else {
			b.WriteString(inactiveTabStyle.Render(name))
		}
		b.WriteString(" ")
	}
	b.WriteString("\n")

	if v.ctrl.Loading() {
		b.WriteString(dimStyle.Render("  Loading dashboard...") + "\n")
		return b.String()
	}

	if v.tab == tabAccounts {
		b.WriteString(v.accountsView(width))
	} else {
		b.WriteString(v.notificationsView(width))
	}

	switch {
	case v.confirm != nil:
		b.WriteString("\n" + errorStyle.Render(fmt.Sprintf("  Delete account %s (%s)? y/n", v.confirm.Username, v.confirm.Email)) + "\n")
	case v.deleting:
		b.WriteString("\n" + dimStyle.Render("  Deleting...") + "\n")
	case v.searching:
		b.WriteString(helpLine(keys.Done) + "\n")
	case v.tab == tabAccounts:
		b.WriteString(helpLine(keys.Up, keys.Down, keys.Delete, keys.SwitchTab, keys.Reload, keys.Logout, keys.Quit) + "\n")
	default:
		b.WriteString(helpLine(keys.Filter, keys.PrevPage, keys.NextPage, keys.SwitchTab, keys.Reload, keys.Logout, keys.Quit) + "\n")
	}
	return b.String()
}

func (v *adminView) accountsView(width int) string {
	var b strings.Builder
	nameWidth := 20
	emailWidth := max(20, width-nameWidth-30)
	b.WriteString(headerStyle.Render(pad("Username", nameWidth)+" "+pad("Email", emailWidth)+" "+pad("Roles", 20)) + "\n")

	accounts := v.ctrl.Accounts()
	if len(accounts) == 0 {
		b.WriteString(dimStyle.Render("  No accounts.") + "\n")
		return b.String()
	}
	for i, account := range accounts {
		row := pad(account.Username, nameWidth) + " " + pad(account.Email, emailWidth) + " " + pad(strings.Join(account.Roles, ","), 20)
		if i == v.cursor {
			b.WriteString(selectedStyle.Render(row) + "\n")
		} else {
			b.WriteString(normalStyle.Render(row) + "\n")
		}
	}
	return b.String()
}

func (v *adminView) notificationsView(width int) string {
	var b strings.Builder
	notifications := v.ctrl.Notifications()

	b.WriteString(" " + labelStyle.Render("Search:") + " " + v.search.View() + "\n")
	subjectWidth := max(20, width-24-20-6)
	b.WriteString(headerStyle.Render(pad("Recipient", 24)+" "+pad("Subject", subjectWidth)+" "+pad("Sent", 16)) + "\n")

	if notifications.Len() == 0 {
		b.WriteString(dimStyle.Render("  No notifications.") + "\n")
		return b.String()
	}
	for _, n := range notifications.Displayed() {
		b.WriteString(normalStyle.Render(notificationRow(n, subjectWidth)) + "\n")
	}
	if notifications.ShowPagination() {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  Page %d of %d", notifications.CurrentPage(), notifications.TotalPages())) + "\n")
	}
	return b.String()
}

func notificationRow(n models.NotificationLog, subjectWidth int) string {
	sent := ""
	if !n.SentAt.IsZero() {
		sent = n.SentAt.Format("2006-01-02 15:04")
	}
	return pad(n.RecipientEmail, 24) + " " + pad(n.Subject, subjectWidth) + " " + pad(sent, 16)
}
