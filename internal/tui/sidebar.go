package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"docchat/internal/history"
)

// sidebarModel is the history panel. Its list comes from the document cache,
// which is refreshed each time the panel opens; a failed refresh shows the
// previous list with an inline error rather than an empty panel.
type sidebarModel struct {
	theme Theme
	open  bool
	sel   int
}

func newSidebarModel(theme Theme) sidebarModel {
	return sidebarModel{theme: theme}
}

// handleKey processes navigation while the panel is open. It reports the
// selected document id when the user confirms a choice.
func (s *sidebarModel) handleKey(msg tea.KeyMsg, cache *history.Cache) (int64, bool) {
	docs := cache.Documents()
	switch msg.String() {
	case "up", "k":
		if s.sel > 0 {
			s.sel--
		}
	case "down", "j":
		if s.sel < len(docs)-1 {
			s.sel++
		}
	case "enter":
		if s.sel >= 0 && s.sel < len(docs) {
			return docs[s.sel].ID, true
		}
	case "esc", "ctrl+h":
		s.open = false
	}
	return 0, false
}

func (s *sidebarModel) view(cache *history.Cache, height int) string {
	var b strings.Builder
	b.WriteString(s.theme.Title.Render("History"))
	b.WriteString("\n\n")

	docs := cache.Documents()
	switch {
	case cache.Err() != nil && len(docs) == 0:
		b.WriteString(s.theme.ErrorText.Render("could not load"))
		b.WriteString("\n")
	case len(docs) == 0 && cache.Loaded():
		b.WriteString(s.theme.MutedText.Render("no documents yet"))
		b.WriteString("\n")
	case len(docs) == 0:
		b.WriteString(s.theme.MutedText.Render("loading..."))
		b.WriteString("\n")
	default:
		if cache.Err() != nil {
			b.WriteString(s.theme.ErrorText.Render("refresh failed; showing cached list"))
			b.WriteString("\n")
		}
		for i, doc := range docs {
			title := doc.Title
			if title == "" {
				title = doc.Filename
			}
			line := fmt.Sprintf("%s (#%d)", title, doc.ID)
			if i == s.sel {
				line = s.theme.Title.Render("> " + line)
			} else {
				line = "  " + line
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(s.theme.Footer.Render("enter open • esc close"))
	return s.theme.Sidebar.Height(maxInt(height, 5)).Render(b.String())
}
