package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// loginModel is the unauthenticated entry view: email + password fields,
// switchable between login and signup. Errors render inline under the form
// and a failed attempt leaves the form editable for another try.
type loginModel struct {
	theme Theme

	email    textinput.Model
	password textinput.Model
	focus    int

	signup  bool
	busy    bool
	errText string
}

func newLoginModel(theme Theme) loginModel {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 254
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return loginModel{
		theme:    theme,
		email:    email,
		password: password,
	}
}

func (l *loginModel) init() tea.Cmd {
	return textinput.Blink
}

func (l *loginModel) setWidth(w int) {
	fieldW := w - 10
	if fieldW > 48 {
		fieldW = 48
	}
	if fieldW < 16 {
		fieldW = 16
	}
	l.email.Width = fieldW
	l.password.Width = fieldW
}

func (l *loginModel) reset() {
	l.busy = false
	l.errText = ""
	l.password.SetValue("")
}

func (l *loginModel) update(msg tea.Msg, m *Model) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && !l.busy {
		switch keyMsg.String() {
		case "tab", "shift+tab", "up", "down":
			l.focus = (l.focus + 1) % 2
			if l.focus == 0 {
				l.password.Blur()
				return l.email.Focus()
			}
			l.email.Blur()
			return l.password.Focus()

		case "ctrl+s":
			l.signup = !l.signup
			l.errText = ""
			return nil

		case "enter":
			email := strings.TrimSpace(l.email.Value())
			password := l.password.Value()
			if email == "" || password == "" {
				l.errText = "email and password are required"
				return nil
			}
			l.busy = true
			l.errText = ""
			return m.authCmd(l.signup, email, password)
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	l.email, cmd = l.email.Update(msg)
	cmds = append(cmds, cmd)
	l.password, cmd = l.password.Update(msg)
	cmds = append(cmds, cmd)
	return tea.Batch(cmds...)
}

func (l *loginModel) view(m *Model) string {
	var b strings.Builder

	title := "Sign in"
	action := "create an account"
	if l.signup {
		title = "Create account"
		action = "sign in instead"
	}
	b.WriteString(l.theme.Title.Render("docchat • " + title))
	b.WriteString("\n\n")
	b.WriteString(l.email.View())
	b.WriteString("\n")
	b.WriteString(l.password.View())
	b.WriteString("\n")

	if l.busy {
		b.WriteString(l.theme.MutedText.Render("authenticating..."))
		b.WriteString("\n")
	}
	if l.errText != "" {
		b.WriteString(l.theme.ErrorText.Render(l.errText))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(l.theme.Footer.Render("enter submit • tab switch field • ctrl+s " + action + " • ctrl+c quit"))
	return l.theme.Pane.Render(b.String())
}
