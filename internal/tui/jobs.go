package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/celestiaorg/jobdesk/internal/listing"
	"github.com/celestiaorg/jobdesk/internal/markup"
	"github.com/celestiaorg/jobdesk/internal/query"
	"github.com/celestiaorg/jobdesk/pkg/models"
)

// filter input indices
const (
	filterKeyword = iota
	filterLocation
	filterCompany
	filterCount
)

const noFocus = -1

type jobsAction int

const (
	jobsActionNone jobsAction = iota
	jobsActionApply
	jobsActionProfile
)

type jobsFetchedMsg struct{ fetched listing.Fetched }

type jobsView struct {
	ctrl    *listing.Controller
	filters [filterCount]textinput.Model
	focus   int
	cursor  int
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

func newJobsView(source listing.JobSource) *jobsView {
	v := &jobsView{focus: noFocus}
	// A page change starts at the top of the new page
	v.ctrl = listing.NewController(source, query.WithPageHook(func(int) {
		v.cursor = 0
	}))

	v.filters[filterKeyword] = newInput("keyword", 100)
	v.filters[filterLocation] = newInput("location", 100)
	v.filters[filterCompany] = newInput("company", 100)
	return v
}

func (v *jobsView) load(ctx context.Context) tea.Cmd {
	ctrl := v.ctrl
	ticket := ctrl.Begin()
	return func() tea.Msg {
		return jobsFetchedMsg{fetched: ctrl.Fetch(ctx, ticket)}
	}
}

func (v *jobsView) commit(f listing.Fetched) {
	if v.ctrl.Commit(f) {
		v.clampCursor()
	}
}

func (v *jobsView) inputFocused() bool {
	return v.focus != noFocus
}

func (v *jobsView) selected() (models.JobListing, bool) {
	displayed := v.ctrl.Engine().Displayed()
	if v.cursor < 0 || v.cursor >= len(displayed) {
		return models.JobListing{}, false
	}
	return displayed[v.cursor], true
}

func (v *jobsView) clampCursor() {
	n := len(v.ctrl.Engine().Displayed())
	if v.cursor >= n {
		v.cursor = max(0, n-1)
	}
}

func (v *jobsView) update(ctx context.Context, msg tea.KeyMsg) (jobsAction, tea.Cmd) {
	if v.inputFocused() {
		return jobsActionNone, v.updateFilters(msg)
	}

	engine := v.ctrl.Engine()
	switch {
	case key.Matches(msg, keys.Up):
		if v.cursor > 0 {
			v.cursor--
		}
	case key.Matches(msg, keys.Down):
		if v.cursor < len(engine.Displayed())-1 {
			v.cursor++
		}
	case key.Matches(msg, keys.PrevPage):
		engine.Prev()
	case key.Matches(msg, keys.NextPage):
		engine.Next()
	case key.Matches(msg, keys.Filter):
		v.focus = filterKeyword
		v.filters[v.focus].Focus()
	case key.Matches(msg, keys.Reload):
		if !v.ctrl.Loading() {
			return jobsActionNone, v.load(ctx)
		}
	case key.Matches(msg, keys.Apply):
		return jobsActionApply, nil
	case key.Matches(msg, keys.Profile):
		return jobsActionProfile, nil
	}
	return jobsActionNone, nil
}

func (v *jobsView) updateFilters(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Done):
		v.filters[v.focus].Blur()
		v.focus = noFocus
		return nil
	case msg.String() == "tab" || msg.String() == "shift+tab":
		step := 1
		if msg.String() == "shift+tab" {
			step = filterCount - 1
		}
		v.filters[v.focus].Blur()
		v.focus = (v.focus + step) % filterCount
		v.filters[v.focus].Focus()
		return nil
	}

	var cmd tea.Cmd
	v.filters[v.focus], cmd = v.filters[v.focus].Update(msg)

	next := query.JobCriteria{
		Keyword:  v.filters[filterKeyword].Value(),
		Location: v.filters[filterLocation].Value(),
		Company:  v.filters[filterCompany].Value(),
	}
	if next != v.ctrl.Engine().Criteria() {
		v.ctrl.Engine().SetCriteria(next)
		v.cursor = 0
	}
	return cmd
}

func (v *jobsView) view(width, height int, member, applying bool) string {
	var b strings.Builder
	engine := v.ctrl.Engine()

	// filter bar
	labels := [filterCount]string{"Keyword", "Location", "Company"}
	parts := make([]string, 0, filterCount)
	for i := range v.filters {
		parts = append(parts, labelStyle.Render(labels[i]+":")+" "+v.filters[i].View())
	}
	b.WriteString(" " + strings.Join(parts, "  ") + "\n")

	listWidth := max(40, width/2)
	detailWidth := max(30, width-listWidth-4)

	var list strings.Builder
	list.WriteString(headerStyle.Render(pad("Title", listWidth-24)+" "+pad("Company", 20)) + "\n")
	switch {
	case v.ctrl.Loading():
		list.WriteString(dimStyle.Render("  Loading jobs...") + "\n")
	case engine.Len() == 0:
		list.WriteString(dimStyle.Render("  No jobs found.") + "\n")
	default:
		for i, job := range engine.Displayed() {
			row := pad(job.Title, listWidth-24) + " " + pad(job.Company, 20)
			if i == v.cursor {
				list.WriteString(selectedStyle.Render(row) + "\n")
			} else {
				list.WriteString(normalStyle.Render(row) + "\n")
			}
		}
	}
	if engine.ShowPagination() {
		list.WriteString(dimStyle.Render(fmt.Sprintf("  Page %d of %d  (%d jobs)", engine.CurrentPage(), engine.TotalPages(), engine.Len())) + "\n")
	}

	detail := ""
	if job, ok := v.selected(); ok {
		detail = detailStyle.Width(detailWidth).Render(jobDetail(job, detailWidth-4, height-8))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list.String(), " ", detail) + "\n")

	switch {
	case applying:
		b.WriteString(dimStyle.Render("  Applying...") + "\n")
	case v.inputFocused():
		b.WriteString(helpLine(keys.NextField, keys.Done) + "\n")
	case member:
		b.WriteString(helpLine(keys.Up, keys.Down, keys.PrevPage, keys.NextPage, keys.Filter, keys.Apply, keys.Profile, keys.Logout, keys.Quit) + "\n")
	default:
		b.WriteString(helpLine(keys.Up, keys.Down, keys.PrevPage, keys.NextPage, keys.Filter, keys.Apply, keys.Quit) + "\n")
	}
	return b.String()
}

// jobDetail renders a posting. The description is reduced to plain text and
// cut to the lines available.
func jobDetail(job models.JobListing, width, lines int) string {
	var b strings.Builder
	b.WriteString(labelStyle.Render(job.Title) + "\n")
	b.WriteString(dimStyle.Render(job.Company+" · "+job.Location) + "\n")
	if job.URL != "" {
		b.WriteString(job.URL + "\n")
	}
	b.WriteString("\n")

	text := lipgloss.NewStyle().Width(max(10, width)).Render(markup.PlainText(job.Description))
	textLines := strings.Split(text, "\n")
	if limit := max(3, lines); len(textLines) > limit {
		textLines = append(textLines[:limit], "...")
	}
	b.WriteString(strings.Join(textLines, "\n"))
	return b.String()
}

func pad(s string, width int) string {
	runes := []rune(s)
	if len(runes) > width {
		if width <= 2 {
			return string(runes[:width])
		}
		return string(runes[:width-2]) + ".."
	}
	return s + strings.Repeat(" ", width-len(runes))
}
