package history

import (
	"errors"
	"testing"

	"docchat/internal/api"
)

func TestCache_EmptyAndUnloadedBeforeFirstRefresh(t *testing.T) {
	c := NewCache()
	if c.Loaded() {
		t.Fatalf("fresh cache must not report loaded")
	}
	if len(c.Documents()) != 0 || c.Err() != nil {
		t.Fatalf("fresh cache not empty: docs=%v err=%v", c.Documents(), c.Err())
	}
}

func TestCache_SuccessReplacesList(t *testing.T) {
	c := NewCache()
	c.Apply([]api.Document{{ID: 1, Title: "Lease"}}, nil)

	if !c.Loaded() || c.Err() != nil {
		t.Fatalf("loaded=%v err=%v after success", c.Loaded(), c.Err())
	}
	c.Apply([]api.Document{{ID: 1, Title: "Lease"}, {ID: 2, Title: "NDA"}}, nil)
	if len(c.Documents()) != 2 {
		t.Fatalf("len(docs) = %d, want 2", len(c.Documents()))
	}
}

func TestCache_FailureRetainsPreviousList(t *testing.T) {
	c := NewCache()
	c.Apply([]api.Document{{ID: 1, Title: "Lease"}}, nil)

	c.Apply(nil, errors.New("fetch failed"))
	if len(c.Documents()) != 1 || c.Documents()[0].Title != "Lease" {
		t.Fatalf("failed refresh dropped cached list: %v", c.Documents())
	}
	if c.Err() == nil {
		t.Fatalf("expected error state after failed refresh")
	}
	if !c.Loaded() {
		t.Fatalf("a past success must keep the cache loaded")
	}

	// Next success clears the error.
	c.Apply(nil, nil)
	if c.Err() != nil {
		t.Fatalf("success must clear the error, got %v", c.Err())
	}
}

func TestCache_FailureBeforeAnySuccessIsDistinctFromEmpty(t *testing.T) {
	c := NewCache()
	c.Apply(nil, errors.New("fetch failed"))

	if c.Loaded() {
		t.Fatalf("failed first refresh must not mark cache loaded")
	}
	if c.Err() == nil {
		t.Fatalf("expected surfaced error")
	}
}
