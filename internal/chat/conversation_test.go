package chat

import (
	"errors"
	"testing"
	"time"

	"docchat/internal/api"
)

func readyConversation(t *testing.T) (*Conversation, int) {
	t.Helper()
	c := NewConversation()
	gen := c.Bind(1)
	if !c.ApplyHistory(gen, nil, nil) {
		t.Fatalf("expected history to apply")
	}
	if c.State() != StateReady {
		t.Fatalf("state = %v, want ready", c.State())
	}
	return c, gen
}

func TestBind_StartsLoading(t *testing.T) {
	c := NewConversation()
	gen := c.Bind(7)
	if c.State() != StateLoading {
		t.Fatalf("state = %v, want loading", c.State())
	}
	if gen != c.Generation() || c.DocumentID() != 7 {
		t.Fatalf("unexpected binding: gen=%d doc=%d", gen, c.DocumentID())
	}
}

func TestApplyHistory_ExpandsExchangesInOrder(t *testing.T) {
	c := NewConversation()
	gen := c.Bind(1)

	now := time.Now()
	entries := []api.ChatEntry{
		{ID: 5, Question: "q5", Answer: "a5", CreatedAt: now},
		{ID: 7, Question: "q7", Answer: "a7", CreatedAt: now},
	}
	if !c.ApplyHistory(gen, entries, nil) {
		t.Fatalf("expected history to apply")
	}

	msgs := c.Messages()
	wantIDs := []int64{10, 11, 14, 15}
	wantRoles := []string{RoleUser, RoleAssistant, RoleUser, RoleAssistant}
	if len(msgs) != len(wantIDs) {
		t.Fatalf("len(messages) = %d, want %d", len(msgs), len(wantIDs))
	}
	for i, m := range msgs {
		if m.ServerID != wantIDs[i] || m.Role != wantRoles[i] || m.Pending {
			t.Fatalf("message %d = %+v, want id %d role %s", i, m, wantIDs[i], wantRoles[i])
		}
	}
}

func TestApplyHistory_FailureStillReachesReady(t *testing.T) {
	c := NewConversation()
	gen := c.Bind(1)

	if !c.ApplyHistory(gen, nil, errors.New("boom")) {
		t.Fatalf("expected failed history to apply")
	}
	if c.State() != StateReady {
		t.Fatalf("state = %v, want ready after failed load", c.State())
	}
	if len(c.Messages()) != 0 {
		t.Fatalf("expected empty history, got %d messages", len(c.Messages()))
	}
	if c.LoadError() == nil {
		t.Fatalf("expected load error to be surfaced")
	}
}

func TestApplyPrompts_IndependentOfHistory(t *testing.T) {
	c := NewConversation()
	gen := c.Bind(1)

	// Prompts may land first; the conversation stays loading until history.
	if !c.ApplyPrompts(gen, []string{"Summarize this"}, nil) {
		t.Fatalf("expected prompts to apply")
	}
	if c.State() != StateLoading {
		t.Fatalf("state = %v, want loading until history resolves", c.State())
	}

	// A prompts failure never blocks readiness either.
	if !c.ApplyPrompts(gen, nil, errors.New("prompt fetch failed")) {
		t.Fatalf("expected prompts failure to apply")
	}
	if !c.ApplyHistory(gen, nil, nil) {
		t.Fatalf("expected history to apply")
	}
	if c.State() != StateReady {
		t.Fatalf("state = %v, want ready", c.State())
	}
	if c.PromptsError() == nil {
		t.Fatalf("expected prompts error to be surfaced")
	}
}

func TestSend_AppendsOptimisticPair(t *testing.T) {
	c, _ := readyConversation(t)

	tempID, err := c.Send("Explain clause 3")
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if c.State() != StateSending {
		t.Fatalf("state = %v, want sending", c.State())
	}

	msgs := c.Messages()
	if len(msgs) != 2 {
		t.Fatalf("len(messages) = %d, want 2", len(msgs))
	}
	if msgs[0].Role != RoleUser || msgs[0].Content != "Explain clause 3" || msgs[0].Pending {
		t.Fatalf("user message = %+v", msgs[0])
	}
	if msgs[1].Role != RoleAssistant || !msgs[1].Pending || msgs[1].LocalID != tempID {
		t.Fatalf("placeholder = %+v, want pending with id %s", msgs[1], tempID)
	}
}

func TestSend_RejectsBlankInput(t *testing.T) {
	c, _ := readyConversation(t)

	_, err := c.Send("   \n\t")
	var verr *api.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if len(c.Messages()) != 0 {
		t.Fatalf("blank input must not append messages")
	}
	if c.State() != StateReady {
		t.Fatalf("state = %v, want ready", c.State())
	}
}

func TestSend_RejectsWhileSending(t *testing.T) {
	c, _ := readyConversation(t)

	if _, err := c.Send("first"); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if _, err := c.Send("second"); !errors.Is(err, ErrNotReady) {
		t.Fatalf("err = %v, want ErrNotReady", err)
	}
	if len(c.Messages()) != 2 {
		t.Fatalf("second send must not append, got %d messages", len(c.Messages()))
	}
}

func TestResolve_ReplacesPlaceholderInPlace(t *testing.T) {
	c, gen := readyConversation(t)

	tempID, err := c.Send("Explain clause 3")
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if !c.Resolve(gen, tempID, "Clause 3 states...") {
		t.Fatalf("expected resolve to apply")
	}

	msgs := c.Messages()
	if len(msgs) != 2 {
		t.Fatalf("len(messages) = %d, want 2 (no append on resolve)", len(msgs))
	}
	if msgs[1].Content != "Clause 3 states..." || msgs[1].Pending {
		t.Fatalf("reconciled message = %+v", msgs[1])
	}
	if c.State() != StateReady {
		t.Fatalf("state = %v, want ready", c.State())
	}
}

func TestFail_RemovesPlaceholderKeepsQuestion(t *testing.T) {
	c, gen := readyConversation(t)

	tempID, err := c.Send("x")
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if !c.Fail(gen, tempID, errors.New("ask failed")) {
		t.Fatalf("expected failure to apply")
	}

	msgs := c.Messages()
	if len(msgs) != 1 {
		t.Fatalf("len(messages) = %d, want 1 (user message only)", len(msgs))
	}
	if msgs[0].Role != RoleUser || msgs[0].Content != "x" {
		t.Fatalf("surviving message = %+v", msgs[0])
	}
	if c.State() != StateReady {
		t.Fatalf("state = %v, want ready after failure", c.State())
	}
	if c.SendError() == nil {
		t.Fatalf("expected send error to be surfaced")
	}
}

func TestGrowth_TwoPerSuccessOnePerFailure(t *testing.T) {
	c, gen := readyConversation(t)

	id1, _ := c.Send("one")
	c.Resolve(gen, id1, "answer one")
	id2, _ := c.Send("two")
	c.Fail(gen, id2, errors.New("down"))
	id3, _ := c.Send("three")
	c.Resolve(gen, id3, "answer three")

	if got := len(c.Messages()); got != 5 {
		t.Fatalf("len(messages) = %d, want 5 (2+1+2)", got)
	}
}

func TestStaleResponse_DiscardedAfterRebind(t *testing.T) {
	c, genA := readyConversation(t)

	tempID, err := c.Send("question for A")
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	// View rebinds to another document while the answer is in flight.
	genB := c.Bind(2)
	c.ApplyHistory(genB, nil, nil)

	if c.Resolve(genA, tempID, "late answer for A") {
		t.Fatalf("stale resolve must be discarded")
	}
	if len(c.Messages()) != 0 {
		t.Fatalf("late answer leaked into new conversation: %+v", c.Messages())
	}
	if c.Fail(genA, tempID, errors.New("late failure")) {
		t.Fatalf("stale failure must be discarded")
	}
	if c.SendError() != nil {
		t.Fatalf("stale failure must not surface an error")
	}
}

func TestStaleHistory_DiscardedAfterRebind(t *testing.T) {
	c := NewConversation()
	genA := c.Bind(1)
	genB := c.Bind(2)

	if c.ApplyHistory(genA, []api.ChatEntry{{ID: 1, Question: "q", Answer: "a"}}, nil) {
		t.Fatalf("stale history must be discarded")
	}
	if c.State() != StateLoading {
		t.Fatalf("state = %v, want loading until current fetch resolves", c.State())
	}
	if !c.ApplyHistory(genB, nil, nil) {
		t.Fatalf("current history must apply")
	}
}

func TestOptimisticPair_AppendedAfterHistory(t *testing.T) {
	c := NewConversation()
	gen := c.Bind(1)
	c.ApplyHistory(gen, []api.ChatEntry{{ID: 5, Question: "q5", Answer: "a5"}}, nil)

	tempID, _ := c.Send("new question")
	c.Resolve(gen, tempID, "new answer")

	msgs := c.Messages()
	if len(msgs) != 4 {
		t.Fatalf("len(messages) = %d, want 4", len(msgs))
	}
	if msgs[0].ServerID != 10 || msgs[1].ServerID != 11 {
		t.Fatalf("history reordered: %+v", msgs[:2])
	}
	if msgs[2].Content != "new question" || msgs[3].Content != "new answer" {
		t.Fatalf("optimistic pair not at tail: %+v", msgs[2:])
	}
}
