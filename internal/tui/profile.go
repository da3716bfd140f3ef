package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/celestiaorg/jobdesk/internal/logger"
	"github.com/celestiaorg/jobdesk/internal/profile"
	"github.com/celestiaorg/jobdesk/internal/workflow"
	"github.com/celestiaorg/jobdesk/pkg/models"
)

// preferences form field indices
const (
	fieldDesiredRole = iota
	fieldLocations
	fieldJobType
	fieldMinSalary
	fieldCount
)

type (
	profileFetchedMsg struct{ fetched profile.Fetched }
	savedMsg          struct{ result profile.SaveResult }
)

type profileView struct {
	ctrl        *profile.Controller
	desiredRole textinput.Model
	locations   textinput.Model
	minSalary   textinput.Model
	jobType     int
	focus       int
	saving      bool
}

func newProfileView(api profile.API) *profileView {
	v := &profileView{
		ctrl:        profile.NewController(api),
		desiredRole: newInput("e.g. Backend Engineer", 100),
		locations:   newInput("comma separated, e.g. Berlin, Remote", 300),
		minSalary:   newInput("0", 12),
		focus:       fieldDesiredRole,
	}
	v.fill(models.DefaultPreferences())
	return v
}

func (v *profileView) load(ctx context.Context) tea.Cmd {
	ctrl := v.ctrl
	ticket := ctrl.Begin()
	return func() tea.Msg {
		return profileFetchedMsg{fetched: ctrl.Fetch(ctx, ticket)}
	}
}

func (v *profileView) commit(f profile.Fetched) {
	if v.ctrl.Commit(f) && f.Err == nil {
		v.fill(v.ctrl.Preferences())
	}
}

// fill resets the form to prefs
func (v *profileView) fill(prefs models.Preferences) {
	v.desiredRole.SetValue(prefs.DesiredRole)
	v.locations.SetValue(strings.Join(prefs.Locations, ", "))
	v.minSalary.SetValue(strconv.FormatFloat(prefs.MinSalary, 'f', -1, 64))
	v.desiredRole.CursorEnd()
	v.locations.CursorEnd()
	v.minSalary.CursorEnd()
	v.jobType = 0
	for i, t := range models.JobTypes {
		if t == prefs.JobType {
			v.jobType = i
		}
	}
	v.focusField(v.focus)
}

func (v *profileView) focusField(field int) {
	v.desiredRole.Blur()
	v.locations.Blur()
	v.minSalary.Blur()
	v.focus = field
	switch field {
	case fieldDesiredRole:
		v.desiredRole.Focus()
	case fieldLocations:
		v.locations.Focus()
	case fieldMinSalary:
		v.minSalary.Focus()
	}
}

// preferences reads the form. An unparsable salary is an error.
func (v *profileView) preferences() (models.Preferences, error) {
	salary := 0.0
	if raw := strings.TrimSpace(v.minSalary.Value()); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return models.Preferences{}, fmt.Errorf("invalid min salary %q: %w", raw, err)
		}
		salary = parsed
	}
	return models.Preferences{
		DesiredRole: strings.TrimSpace(v.desiredRole.Value()),
		Locations:   models.ParseLocations(v.locations.Value()),
		JobType:     models.JobTypes[v.jobType],
		MinSalary:   salary,
	}, nil
}

func (v *profileView) commitSave(r profile.SaveResult) workflow.Notice {
	v.saving = false
	return v.ctrl.CommitSave(r)
}

// update handles a key. The second return value asks to leave the profile.
func (v *profileView) update(ctx context.Context, msg tea.KeyMsg) (tea.Cmd, bool) {
	if v.saving {
		return nil, false
	}

	switch {
	case key.Matches(msg, keys.Back):
		return nil, true
	case key.Matches(msg, keys.Save):
		return v.save(ctx), false
	case msg.String() == "tab" || msg.String() == "down":
		v.focusField((v.focus + 1) % fieldCount)
		return nil, false
	case msg.String() == "shift+tab" || msg.String() == "up":
		v.focusField((v.focus + fieldCount - 1) % fieldCount)
		return nil, false
	}

	var cmd tea.Cmd
	switch v.focus {
	case fieldDesiredRole:
		v.desiredRole, cmd = v.desiredRole.Update(msg)
	case fieldLocations:
		v.locations, cmd = v.locations.Update(msg)
	case fieldMinSalary:
		v.minSalary, cmd = v.minSalary.Update(msg)
	case fieldJobType:
		switch msg.String() {
		case "left", "h":
			v.jobType = (v.jobType + len(models.JobTypes) - 1) % len(models.JobTypes)
		case "right", "l", " ":
			v.jobType = (v.jobType + 1) % len(models.JobTypes)
		}
	}
	return cmd, false
}

func (v *profileView) save(ctx context.Context) tea.Cmd {
	accountID := v.ctrl.AccountID()
	prefs, err := v.preferences()
	if err != nil {
		logger.Warnf("Preferences form rejected: %v", err)
		return func() tea.Msg {
			return savedMsg{result: profile.SaveResult{AccountID: accountID, Err: err}}
		}
	}

	v.saving = true
	ctrl := v.ctrl
	return func() tea.Msg {
		return savedMsg{result: ctrl.Save(ctx, accountID, prefs)}
	}
}

func (v *profileView) view(width int) string {
	var b strings.Builder

	account, ok := v.ctrl.Account()
	switch {
	case v.ctrl.Loading() && !ok:
		b.WriteString(dimStyle.Render("  Loading profile...") + "\n")
		return b.String()
	case !ok:
		b.WriteString(errorStyle.Render("  Could not load your profile.") + "\n")
		b.WriteString(helpLine(keys.Back) + "\n")
		return b.String()
	}

	b.WriteString(headerStyle.Render("Account") + "\n")
	b.WriteString(fmt.Sprintf("  %s  %s\n", labelStyle.Render(account.DisplayName()), dimStyle.Render(account.Email)))
	b.WriteString(dimStyle.Render("  username: "+account.Username) + "\n\n")

	b.WriteString(headerStyle.Render(fmt.Sprintf("Applied jobs (%d)", len(account.AppliedJobs))) + "\n")
	if len(account.AppliedJobs) == 0 {
		b.WriteString(dimStyle.Render("  No applications yet.") + "\n")
	}
	titleWidth := max(20, width-24-14-6)
	for _, job := range account.AppliedJobs {
		applied := ""
		if !job.AppliedAt.IsZero() {
			applied = job.AppliedAt.Format("2006-01-02")
		}
		b.WriteString(normalStyle.Render(pad(job.Title, titleWidth)+" "+pad(job.Company, 24)+" "+pad(applied, 10)) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("Preferences") + "\n")
	b.WriteString(v.formRow(fieldDesiredRole, "Desired role", v.desiredRole.View()))
	b.WriteString(v.formRow(fieldLocations, "Locations", v.locations.View()))
	b.WriteString(v.formRow(fieldJobType, "Job type", "‹ "+models.JobTypes[v.jobType].String()+" ›"))
	b.WriteString(v.formRow(fieldMinSalary, "Min salary", v.minSalary.View()))
	b.WriteString("\n")

	if v.saving {
		b.WriteString(dimStyle.Render("  Saving...") + "\n")
	} else {
		b.WriteString(helpLine(keys.NextField, keys.PrevField, keys.Save, keys.Back) + "\n")
	}
	return b.String()
}

func (v *profileView) formRow(field int, label, value string) string {
	marker := "  "
	if v.focus == field {
		marker = "> "
	}
	return marker + labelStyle.Render(pad(label, 14)) + " " + value + "\n"
}
