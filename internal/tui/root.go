// Package tui is the interactive terminal front end: a login view, an upload
// view, and a chat view, with navigation gated on the session state.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docchat/internal/api"
	"docchat/internal/app"
	"docchat/internal/auth"
	"docchat/internal/chat"
	"docchat/internal/history"
	"docchat/internal/upload"
)

type view int

const (
	viewLogin view = iota
	viewUpload
	viewChat
)

type keyMap struct {
	Quit      key.Binding
	Logout    key.Binding
	History   key.Binding
	NewUpload key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Logout:    key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "logout")),
		History:   key.NewBinding(key.WithKeys("ctrl+h"), key.WithHelp("ctrl+h", "history")),
		NewUpload: key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new document")),
	}
}

// Model is the root TUI model. It owns view routing and holds the state
// machines the views render; every asynchronous result flows through Update
// on the single bubbletea loop.
type Model struct {
	cfg    app.Config
	log    *app.Logger
	client *api.Client
	gate   *auth.Gate

	uploader *upload.Manager
	conv     *chat.Conversation
	cache    *history.Cache

	theme Theme
	keys  keyMap

	view  view
	ready bool

	width  int
	height int

	login   loginModel
	upl     uploadModel
	chat    chatModel
	sidebar sidebarModel
}

func New(cfg app.Config, log *app.Logger, client *api.Client, gate *auth.Gate) *Model {
	theme := NewTheme()
	return &Model{
		cfg:      cfg,
		log:      log,
		client:   client,
		gate:     gate,
		uploader: upload.NewManager(cfg.AllowedExtensions),
		conv:     chat.NewConversation(),
		cache:    history.NewCache(),
		theme:    theme,
		keys:     newKeyMap(),
		view:     viewLogin,
		login:    newLoginModel(theme),
		upl:      newUploadModel(theme),
		chat:     newChatModel(theme),
		sidebar:  newSidebarModel(theme),
		width:    100,
		height:   30,
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.login.init(), m.initGateCmd())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.login.setWidth(msg.Width)
		m.upl.setWidth(msg.Width)
		m.chat.setSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Logout):
			if m.gate.IsAuthenticated() {
				m.gate.Logout(context.Background())
				m.log.Info("logged out", nil)
				m.sidebar.open = false
				m.goTo(viewLogin)
			}
			return m, nil

		case key.Matches(msg, m.keys.History):
			if m.view != viewLogin && m.ready {
				m.sidebar.open = !m.sidebar.open
				if m.sidebar.open {
					// Lazy consistency: refreshed on each panel activation.
					return m, m.historyCmd()
				}
			}
			return m, nil

		case key.Matches(msg, m.keys.NewUpload):
			if m.view == viewChat {
				m.goTo(viewUpload)
			}
			return m, nil
		}

		if m.sidebar.open {
			if docID, ok := m.sidebar.handleKey(msg, m.cache); ok {
				m.sidebar.open = false
				return m, m.openConversation(docID)
			}
			return m, nil
		}

	case credentialLoadedMsg:
		m.ready = true
		if m.gate.IsAuthenticated() {
			m.goTo(viewUpload)
		} else {
			m.goTo(viewLogin)
		}
		if msg.err != nil {
			m.log.Error("credential load failed", map[string]interface{}{"error": msg.err.Error()})
			m.login.errText = "could not restore session: " + msg.err.Error()
		}
		return m, nil

	case authResultMsg:
		return m, m.applyAuthResult(msg)

	case uploadTickMsg:
		// The ticker reschedules itself only while the upload is in flight;
		// after completion it stops rather than racing the final state.
		if m.uploader.Tick() {
			return m, tea.Batch(m.upl.setPercent(m.uploader.Progress()), m.uploadTickCmd())
		}
		return m, nil

	case uploadDoneMsg:
		return m, m.applyUploadResult(msg)

	case historyMsg:
		m.cache.Apply(msg.docs, msg.err)
		if msg.err != nil {
			m.log.Error("history refresh failed", map[string]interface{}{"error": msg.err.Error()})
		}
		return m, nil

	case conversationHistoryMsg:
		m.conv.ApplyHistory(msg.gen, msg.entries, msg.err)
		m.chat.syncViewport(m.conv)
		return m, nil

	case promptsMsg:
		m.conv.ApplyPrompts(msg.gen, msg.prompts, msg.err)
		return m, nil

	case answerMsg:
		if msg.err != nil {
			m.conv.Fail(msg.gen, msg.tempID, msg.err)
		} else {
			m.conv.Resolve(msg.gen, msg.tempID, msg.answer)
		}
		m.chat.syncViewport(m.conv)
		return m, nil
	}

	// Protected views must never process input before the one-time
	// credential read completes.
	if !m.ready {
		return m, nil
	}

	switch m.view {
	case viewLogin:
		return m, m.login.update(msg, m)
	case viewUpload:
		return m, m.upl.update(msg, m)
	case viewChat:
		return m, m.chat.update(msg, m)
	}
	return m, nil
}

func (m *Model) View() string {
	// Withhold all rendering decisions until the credential check completes,
	// so protected content never flashes for a logged-out user.
	if !m.ready {
		return m.theme.MutedText.Render("docchat • restoring session...")
	}

	var body string
	switch m.view {
	case viewLogin:
		body = m.login.view(m)
	case viewUpload:
		body = m.upl.view(m)
	case viewChat:
		body = m.chat.view(m)
	}

	if m.sidebar.open && m.view != viewLogin {
		side := m.sidebar.view(m.cache, m.height-2)
		return lipgloss.JoinHorizontal(lipgloss.Top, side, body)
	}
	return body
}

// goTo routes to the requested view, enforcing the session gate: protected
// views are reachable only while authenticated.
func (m *Model) goTo(v view) {
	if v != viewLogin && !m.gate.IsAuthenticated() {
		v = viewLogin
	}
	m.view = v
	switch v {
	case viewLogin:
		m.login.reset()
	case viewUpload:
		m.upl.reset()
	}
}

func (m *Model) applyAuthResult(msg authResultMsg) tea.Cmd {
	m.login.busy = false
	if msg.err != nil {
		m.login.errText = msg.err.Error()
		return nil
	}
	m.log.Info("authenticated", map[string]interface{}{"signup": msg.signup})
	m.goTo(viewUpload)
	return nil
}

func (m *Model) applyUploadResult(msg uploadDoneMsg) tea.Cmd {
	if msg.err != nil {
		m.uploader.Fail(msg.err)
		m.log.Error("upload failed", map[string]interface{}{"error": msg.err.Error()})
		return m.upl.setPercent(0)
	}
	m.uploader.Complete(msg.docID)
	m.log.Info("upload complete", map[string]interface{}{"document_id": msg.docID})
	return tea.Batch(m.upl.setPercent(100), m.openConversation(msg.docID))
}

// openConversation binds the chat view to a document and starts the two
// independent fetches for its history and suggested prompts.
func (m *Model) openConversation(docID int64) tea.Cmd {
	gen := m.conv.Bind(docID)
	m.goTo(viewChat)
	m.chat.reset()
	return tea.Batch(
		m.chat.spinner.Tick,
		m.conversationHistoryCmd(gen, docID),
		m.promptsCmd(gen, docID),
	)
}
