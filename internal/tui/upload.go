package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"docchat/internal/upload"
)

// uploadModel is the document submission view. The bar it renders is fed by
// the simulated ticker while the request is outstanding; the real completion
// snaps it to 100%.
type uploadModel struct {
	theme Theme

	path    textinput.Model
	bar     progress.Model
	errText string
}

func newUploadModel(theme Theme) uploadModel {
	path := textinput.New()
	path.Placeholder = "path to document (.pdf, .doc, .docx, .txt, .md)"
	path.CharLimit = 1024
	path.Focus()

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 50

	return uploadModel{theme: theme, path: path, bar: bar}
}

func (u *uploadModel) setWidth(w int) {
	fieldW := w - 10
	if fieldW > 72 {
		fieldW = 72
	}
	if fieldW < 20 {
		fieldW = 20
	}
	u.path.Width = fieldW
	u.bar.Width = fieldW
}

func (u *uploadModel) reset() {
	u.errText = ""
	u.path.Focus()
}

func (u *uploadModel) setPercent(p int) tea.Cmd {
	return u.bar.SetPercent(float64(p) / 100)
}

func (u *uploadModel) update(msg tea.Msg, m *Model) tea.Cmd {
	switch msg := msg.(type) {
	case progress.FrameMsg:
		bar, cmd := u.bar.Update(msg)
		if b, ok := bar.(progress.Model); ok {
			u.bar = b
		}
		return cmd

	case tea.KeyMsg:
		if msg.String() == "enter" {
			path := strings.TrimSpace(u.path.Value())
			if path == "" {
				return nil
			}
			if err := m.uploader.SelectFile(path); err != nil {
				// Bad file types are rejected here; upload is never invoked.
				u.errText = err.Error()
				return nil
			}
			if err := m.uploader.Start(); err != nil {
				u.errText = err.Error()
				return nil
			}
			u.errText = ""
			m.log.Info("upload started", map[string]interface{}{"file": path})
			return tea.Batch(u.setPercent(0), m.uploadCmd(path), m.uploadTickCmd())
		}
	}

	var cmd tea.Cmd
	u.path, cmd = u.path.Update(msg)
	return cmd
}

func (u *uploadModel) view(m *Model) string {
	var b strings.Builder
	b.WriteString(u.theme.Title.Render("docchat • Upload a document"))
	b.WriteString("\n\n")
	b.WriteString(u.path.View())
	b.WriteString("\n\n")

	if u.errText != "" {
		b.WriteString(u.theme.ErrorText.Render(u.errText))
		b.WriteString("\n")
	}

	switch m.uploader.Status() {
	case upload.StatusUploading:
		b.WriteString(u.bar.View())
		b.WriteString("\n")
		b.WriteString(u.theme.MutedText.Render(fmt.Sprintf("uploading %s...", m.uploader.Path())))
		b.WriteString("\n")
	case upload.StatusSucceeded:
		b.WriteString(u.bar.View())
		b.WriteString("\n")
		b.WriteString(u.theme.MutedText.Render("upload complete, opening conversation..."))
		b.WriteString("\n")
	case upload.StatusFailed:
		if err := m.uploader.Err(); err != nil {
			b.WriteString(u.theme.ErrorText.Render("upload failed: " + err.Error()))
			b.WriteString("\n")
			b.WriteString(u.theme.MutedText.Render("press enter to retry"))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(u.theme.Footer.Render("enter upload • ctrl+h history • ctrl+d logout • ctrl+c quit"))
	return u.theme.Pane.Render(b.String())
}
