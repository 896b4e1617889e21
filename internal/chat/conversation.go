// Package chat keeps a document's conversation in sync with the server:
// history loading, optimistic dispatch of new questions, and reconciliation
// of the pending placeholder with the real answer (or its removal on
// failure).
package chat

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"docchat/internal/api"
)

// State is the conversation lifecycle: Loading until the history fetch
// resolves, Ready when accepting input, Sending while one exchange is
// outstanding.
type State int

const (
	StateLoading State = iota
	StateReady
	StateSending
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateSending:
		return "sending"
	default:
		return "unknown"
	}
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry in the conversation. Committed messages carry a
// server id; a pending placeholder carries only its local correlation id,
// so the two id spaces can never collide.
type Message struct {
	LocalID   string
	ServerID  int64
	Role      string
	Content   string
	CreatedAt time.Time
	Pending   bool
}

// ErrNotReady rejects a send issued while the conversation is still loading
// or while a previous exchange is outstanding.
var ErrNotReady = errors.New("conversation is not ready for input")

// Conversation owns the message sequence for one bound document. Results of
// fetches started before the latest Bind carry a stale generation and are
// discarded, so a late answer for document A can never land in document B.
type Conversation struct {
	docID int64
	gen   int
	state State

	messages []Message
	prompts  []string

	loadErr    error
	promptsErr error
	sendErr    error
}

func NewConversation() *Conversation {
	return &Conversation{state: StateLoading}
}

// Bind points the conversation at a document and resets it to Loading.
// The returned generation must accompany every asynchronous result produced
// for this binding.
func (c *Conversation) Bind(docID int64) int {
	c.docID = docID
	c.gen++
	c.state = StateLoading
	c.messages = nil
	c.prompts = nil
	c.loadErr = nil
	c.promptsErr = nil
	c.sendErr = nil
	return c.gen
}

func (c *Conversation) DocumentID() int64 { return c.docID }
func (c *Conversation) Generation() int   { return c.gen }
func (c *Conversation) State() State      { return c.state }

// Messages returns the current sequence, oldest first.
func (c *Conversation) Messages() []Message { return c.messages }

// Prompts returns the suggested starter questions, if the fetch succeeded.
func (c *Conversation) Prompts() []string { return c.prompts }

// LoadError reports a failed history fetch. The conversation still reaches
// Ready with an empty history.
func (c *Conversation) LoadError() error { return c.loadErr }

// PromptsError reports a failed suggested-prompt fetch; it never blocks the
// conversation.
func (c *Conversation) PromptsError() error { return c.promptsErr }

// SendError reports the most recent failed exchange; cleared on the next
// send.
func (c *Conversation) SendError() error { return c.sendErr }

// ApplyHistory reconciles the fetched exchanges into the message sequence.
// Each stored exchange expands into a user message (id 2n) followed by the
// assistant answer (id 2n+1), preserving server order. Success or failure,
// a matching-generation result moves the conversation out of Loading.
// Stale results are discarded and reported as not applied.
func (c *Conversation) ApplyHistory(gen int, entries []api.ChatEntry, err error) bool {
	if gen != c.gen {
		return false
	}
	if err != nil {
		c.loadErr = err
		c.messages = nil
	} else {
		c.loadErr = nil
		msgs := make([]Message, 0, len(entries)*2)
		for _, e := range entries {
			msgs = append(msgs,
				Message{ServerID: 2 * e.ID, Role: RoleUser, Content: e.Question, CreatedAt: e.CreatedAt},
				Message{ServerID: 2*e.ID + 1, Role: RoleAssistant, Content: e.Answer, CreatedAt: e.CreatedAt},
			)
		}
		c.messages = msgs
	}
	if c.state == StateLoading {
		c.state = StateReady
	}
	return true
}

// ApplyPrompts records the suggested prompts. Prompt and history fetches are
// independent; neither outcome here changes the conversation state.
func (c *Conversation) ApplyPrompts(gen int, prompts []string, err error) bool {
	if gen != c.gen {
		return false
	}
	if err != nil {
		c.promptsErr = err
		return true
	}
	c.promptsErr = nil
	c.prompts = prompts
	return true
}

// Send appends the user's question plus a pending assistant placeholder and
// moves the conversation to Sending. It returns the placeholder's local id,
// which the caller must hand back to Resolve or Fail together with the
// current generation.
//
// Blank input is rejected before anything is appended, and only one exchange
// may be outstanding at a time, so at most one placeholder ever exists.
func (c *Conversation) Send(text string) (string, error) {
	if c.state != StateReady {
		return "", ErrNotReady
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", &api.ValidationError{Reason: "question is empty"}
	}

	tempID := uuid.NewString()
	now := time.Now()
	c.messages = append(c.messages,
		Message{LocalID: uuid.NewString(), Role: RoleUser, Content: trimmed, CreatedAt: now},
		Message{LocalID: tempID, Role: RoleAssistant, CreatedAt: now, Pending: true},
	)
	c.sendErr = nil
	c.state = StateSending
	return tempID, nil
}

// Resolve replaces the placeholder in place with the real answer and returns
// the conversation to Ready. The reconciled message keeps the position the
// placeholder held; nothing is appended.
func (c *Conversation) Resolve(gen int, tempID, answer string) bool {
	if gen != c.gen {
		return false
	}
	if i := c.indexOfPending(tempID); i >= 0 {
		c.messages[i].Content = answer
		c.messages[i].Pending = false
	}
	c.state = StateReady
	return true
}

// Fail removes the placeholder entirely: the user still sees the question
// they asked, but no fabricated answer. The error is surfaced and the
// conversation returns to Ready for a retry.
func (c *Conversation) Fail(gen int, tempID string, err error) bool {
	if gen != c.gen {
		return false
	}
	if i := c.indexOfPending(tempID); i >= 0 {
		c.messages = append(c.messages[:i], c.messages[i+1:]...)
	}
	c.sendErr = err
	c.state = StateReady
	return true
}

func (c *Conversation) indexOfPending(tempID string) int {
	for i, m := range c.messages {
		if m.Pending && m.LocalID == tempID {
			return i
		}
	}
	return -1
}
