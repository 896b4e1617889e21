package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"docchat/internal/chat"
)

// chatModel renders the conversation bound to the current document: the
// scrollback, the suggested-prompt chips, and the input line. All mutation
// of the message sequence happens in chat.Conversation; this view only
// mirrors it.
type chatModel struct {
	theme Theme

	input   textarea.Model
	vp      viewport.Model
	spinner spinner.Model
	vpReady bool

	promptIdx int
}

func newChatModel(theme Theme) chatModel {
	ta := textarea.New()
	ta.Placeholder = "Message..."
	ta.CharLimit = 4000
	ta.SetHeight(1)
	ta.ShowLineNumbers = false
	ta.Prompt = "▍ "
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.MutedText

	return chatModel{theme: theme, input: ta, spinner: sp}
}

func (c *chatModel) setSize(w, h int) {
	c.input.SetWidth(maxInt(20, w-6))
	vpH := h - 10
	if vpH < 5 {
		vpH = 5
	}
	if !c.vpReady {
		c.vp = viewport.New(maxInt(20, w-4), vpH)
		c.vpReady = true
	} else {
		c.vp.Width = maxInt(20, w-4)
		c.vp.Height = vpH
	}
}

func (c *chatModel) reset() {
	c.input.Reset()
	c.promptIdx = 0
	if c.vpReady {
		c.vp.SetContent("")
	}
}

func (c *chatModel) update(msg tea.Msg, m *Model) tea.Cmd {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.conv.State() == chat.StateLoading {
			var cmd tea.Cmd
			c.spinner, cmd = c.spinner.Update(msg)
			return cmd
		}
		return nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			text := c.input.Value()
			tempID, err := m.conv.Send(text)
			if err != nil {
				// Blank input and in-flight sends are quiet no-ops; the
				// sending state is already visible in the view.
				return nil
			}
			c.input.Reset()
			c.syncViewport(m.conv)
			return m.askCmd(m.conv.Generation(), tempID, m.conv.DocumentID(), text)

		case "ctrl+p":
			// Cycle a suggested prompt into the input; sending stays manual.
			prompts := m.conv.Prompts()
			if len(prompts) > 0 {
				c.input.SetValue(prompts[c.promptIdx%len(prompts)])
				c.promptIdx++
			}
			return nil

		case "pgup", "pgdown":
			var cmd tea.Cmd
			c.vp, cmd = c.vp.Update(msg)
			return cmd
		}
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return cmd
}

// syncViewport re-renders the scrollback from the conversation and keeps the
// view pinned to the newest message.
func (c *chatModel) syncViewport(conv *chat.Conversation) {
	if !c.vpReady {
		return
	}
	c.vp.SetContent(c.renderMessages(conv))
	c.vp.GotoBottom()
}

func (c *chatModel) renderMessages(conv *chat.Conversation) string {
	var b strings.Builder
	for _, msg := range conv.Messages() {
		switch {
		case msg.Pending:
			b.WriteString(c.theme.RoleBot.Render("Assistant"))
			b.WriteString("\n")
			b.WriteString(c.theme.Pending.Render("thinking..."))
		case msg.Role == chat.RoleUser:
			b.WriteString(c.theme.RoleYou.Render("You"))
			b.WriteString("\n")
			b.WriteString(msg.Content)
		default:
			b.WriteString(c.theme.RoleBot.Render("Assistant"))
			b.WriteString("\n")
			b.WriteString(msg.Content)
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

func (c *chatModel) view(m *Model) string {
	var b strings.Builder
	b.WriteString(c.theme.Title.Render(fmt.Sprintf("docchat • document #%d", m.conv.DocumentID())))
	b.WriteString("\n")

	if m.conv.State() == chat.StateLoading {
		b.WriteString(c.spinner.View())
		b.WriteString(c.theme.MutedText.Render(" loading conversation..."))
		b.WriteString("\n")
		return c.theme.Pane.Render(b.String())
	}

	b.WriteString(c.vp.View())
	b.WriteString("\n")

	// A history failure is inline only; the input below stays usable.
	if err := m.conv.LoadError(); err != nil {
		b.WriteString(c.theme.ErrorText.Render("could not load history: " + err.Error()))
		b.WriteString("\n")
	}
	if err := m.conv.SendError(); err != nil {
		b.WriteString(c.theme.ErrorText.Render("message failed: " + err.Error()))
		b.WriteString("\n")
	}

	if prompts := m.conv.Prompts(); len(prompts) > 0 {
		chips := make([]string, 0, len(prompts))
		for _, p := range prompts {
			chips = append(chips, c.theme.PromptChip.Render(p))
		}
		b.WriteString(strings.Join(chips, " "))
		b.WriteString("\n")
	}

	b.WriteString(c.theme.InputBox.Render(c.input.View()))
	b.WriteString("\n")

	status := "enter send • ctrl+p suggested prompt • ctrl+n new document • ctrl+h history • ctrl+d logout"
	if m.conv.State() == chat.StateSending {
		status = "waiting for answer... • " + status
	}
	b.WriteString(c.theme.Footer.Render(status))
	return b.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
