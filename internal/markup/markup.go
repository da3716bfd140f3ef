// Package markup turns the markup served in job descriptions into plain text
package markup

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockElements end a line when they open or close
var blockElements = map[atom.Atom]bool{
	atom.Br:         true,
	atom.P:          true,
	atom.Div:        true,
	atom.Li:         true,
	atom.Ul:         true,
	atom.Ol:         true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Tr:         true,
	atom.Blockquote: true,
	atom.Section:    true,
	atom.Article:    true,
}

// skippedElements have content that is never shown
var skippedElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Iframe:   true,
	atom.Head:     true,
}

// PlainText renders raw markup as text. Tags are dropped, entities are decoded,
// script and style content is removed and whitespace is collapsed. Block level
// elements produce line breaks; list items are prefixed with a bullet.
func PlainText(raw string) string {
	z := html.NewTokenizer(strings.NewReader(raw))

	var (
		lines []string
		line  strings.Builder
		skip  int
	)
	flush := func() {
		if text := strings.Join(strings.Fields(line.String()), " "); text != "" {
			lines = append(lines, text)
		}
		line.Reset()
	}

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or a reader error; either way keep what was read
			flush()
			return strings.Join(lines, "\n")
		case html.TextToken:
			if skip == 0 {
				line.Write(z.Text())
				line.WriteByte(' ')
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if skippedElements[a] {
				if tt == html.StartTagToken {
					skip++
				}
				continue
			}
			if blockElements[a] {
				flush()
			}
			if a == atom.Li {
				line.WriteString("• ")
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if skippedElements[a] {
				if skip > 0 {
					skip--
				}
				continue
			}
			if blockElements[a] {
				flush()
			}
		}
	}
}

// Excerpt returns the first maxRunes runes of the plain text on a single line,
// ending in an ellipsis when truncated
func Excerpt(raw string, maxRunes int) string {
	text := strings.Join(strings.Fields(PlainText(raw)), " ")
	runes := []rune(text)
	if maxRunes <= 0 || len(runes) <= maxRunes {
		return text
	}
	if maxRunes == 1 {
		return "…"
	}
	return strings.TrimSpace(string(runes[:maxRunes-1])) + "…"
}
