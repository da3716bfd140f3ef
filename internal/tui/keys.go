package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	PrevPage  key.Binding
	NextPage  key.Binding
	Filter    key.Binding
	NextField key.Binding
	PrevField key.Binding
	Done      key.Binding
	Back      key.Binding
	Apply     key.Binding
	Profile   key.Binding
	Reload    key.Binding
	Delete    key.Binding
	Confirm   key.Binding
	Deny      key.Binding
	SwitchTab key.Binding
	Save      key.Binding
	Login     key.Binding
	Logout    key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	PrevPage:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "prev page")),
	NextPage:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "next page")),
	Filter:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
	NextField: key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
	PrevField: key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
	Done:      key.NewBinding(key.WithKeys("enter", "esc"), key.WithHelp("enter", "done")),
	Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Apply:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "apply")),
	Profile:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "profile")),
	Reload:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Confirm:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
	Deny:      key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
	SwitchTab: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch tab")),
	Save:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
	Login:     key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "sign in")),
	Logout:    key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "logout")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// helpLine renders the short help of the given bindings
func helpLine(bindings ...key.Binding) string {
	line := ""
	for i, b := range bindings {
		if i > 0 {
			line += "  "
		}
		h := b.Help()
		line += h.Key + ": " + h.Desc
	}
	return helpStyle.Render("  " + line)
}
