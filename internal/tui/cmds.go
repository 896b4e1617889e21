package tui

import (
	"context"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"docchat/internal/api"
)

// Messages produced by asynchronous work. Conversation-scoped results carry
// the generation of the binding that started them so late arrivals for a
// previous document are discarded, never applied.
type (
	credentialLoadedMsg struct{ err error }

	authResultMsg struct {
		signup bool
		err    error
	}

	uploadTickMsg struct{}

	uploadDoneMsg struct {
		docID int64
		err   error
	}

	historyMsg struct {
		docs []api.Document
		err  error
	}

	conversationHistoryMsg struct {
		gen     int
		entries []api.ChatEntry
		err     error
	}

	promptsMsg struct {
		gen     int
		prompts []string
		err     error
	}

	answerMsg struct {
		gen    int
		tempID string
		answer string
		err    error
	}
)

const uploadTickInterval = 250 * time.Millisecond

func (m *Model) reqContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(m.cfg.RequestTimeoutSec)*time.Second)
}

func (m *Model) initGateCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.reqContext()
		defer cancel()
		return credentialLoadedMsg{err: m.gate.Init(ctx)}
	}
}

func (m *Model) authCmd(signup bool, email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.reqContext()
		defer cancel()
		var err error
		if signup {
			err = m.gate.Signup(ctx, email, password)
		} else {
			err = m.gate.Login(ctx, email, password)
		}
		return authResultMsg{signup: signup, err: err}
	}
}

func (m *Model) uploadTickCmd() tea.Cmd {
	return tea.Tick(uploadTickInterval, func(time.Time) tea.Msg {
		return uploadTickMsg{}
	})
}

func (m *Model) uploadCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return uploadDoneMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := m.reqContext()
		defer cancel()
		docID, err := m.client.Upload(ctx, filepath.Base(path), f)
		return uploadDoneMsg{docID: docID, err: err}
	}
}

func (m *Model) historyCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.reqContext()
		defer cancel()
		docs, err := m.client.History(ctx)
		return historyMsg{docs: docs, err: err}
	}
}

func (m *Model) conversationHistoryCmd(gen int, docID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.reqContext()
		defer cancel()
		entries, err := m.client.Chat(ctx, docID)
		return conversationHistoryMsg{gen: gen, entries: entries, err: err}
	}
}

func (m *Model) promptsCmd(gen int, docID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.reqContext()
		defer cancel()
		prompts, err := m.client.SuggestedPrompts(ctx, docID)
		return promptsMsg{gen: gen, prompts: prompts, err: err}
	}
}

func (m *Model) askCmd(gen int, tempID string, docID int64, question string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.reqContext()
		defer cancel()
		answer, err := m.client.Ask(ctx, docID, question)
		return answerMsg{gen: gen, tempID: tempID, answer: answer, err: err}
	}
}
