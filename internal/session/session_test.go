package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/astrea-space/astrea/backend/pkg/ai"
)

func TestAppendPreservesOrder(t *testing.T) {
	store := NewMemoryStore(10)

	turnCount := 5
	for i := range turnCount {
		store.Append(DefaultSessionID,
			ai.ChatMessage{Role: "user", Message: fmt.Sprintf("question %d", i)},
			ai.ChatMessage{Role: "assistant", Message: fmt.Sprintf("answer %d", i)},
		)
	}

	history := store.Get(DefaultSessionID)
	if len(history) != turnCount*2 {
		t.Fatalf("unexpected history length: got %d, want %d", len(history), turnCount*2)
	}

	for i, msg := range history {
		wantRole := "user"
		if i%2 == 1 {
			wantRole = "assistant"
		}
		if msg.Role != wantRole {
			t.Fatalf("unexpected role at %d: got %q, want %q", i, msg.Role, wantRole)
		}
	}

	if history[0].Message != "question 0" || history[len(history)-1].Message != "answer 4" {
		t.Fatalf("history out of order: first %q, last %q", history[0].Message, history[len(history)-1].Message)
	}
}

func TestGetUnknownSession(t *testing.T) {
	store := NewMemoryStore(10)

	history := store.Get("missing")
	if len(history) != 0 {
		t.Fatalf("unexpected history for unknown session: got %d turns", len(history))
	}
}

func TestGetReturnsCopy(t *testing.T) {
	store := NewMemoryStore(10)
	store.Append("s1", ai.ChatMessage{Role: "user", Message: "original"})

	history := store.Get("s1")
	history[0].Message = "mutated"

	if got := store.Get("s1")[0].Message; got != "original" {
		t.Fatalf("stored history was mutated through Get: got %q", got)
	}
}

func TestEvictionDropsOldestSession(t *testing.T) {
	store := NewMemoryStore(2)

	store.Append("s1", ai.ChatMessage{Role: "user", Message: "one"})
	store.Append("s2", ai.ChatMessage{Role: "user", Message: "two"})

	// Touch s1 so s2 becomes the eviction candidate.
	store.Get("s1")
	store.Append("s3", ai.ChatMessage{Role: "user", Message: "three"})

	if got := store.Get("s2"); len(got) != 0 {
		t.Fatalf("expected s2 to be evicted, got %d turns", len(got))
	}
	if got := store.Get("s1"); len(got) != 1 {
		t.Fatalf("expected s1 to survive, got %d turns", len(got))
	}
	if got := store.Get("s3"); len(got) != 1 {
		t.Fatalf("expected s3 to exist, got %d turns", len(got))
	}
}

func TestConcurrentAppends(t *testing.T) {
	store := NewMemoryStore(100)

	var wg sync.WaitGroup
	perSession := 50
	for s := range 4 {
		sessionID := fmt.Sprintf("session-%d", s)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perSession {
				store.Append(sessionID,
					ai.ChatMessage{Role: "user", Message: fmt.Sprintf("q%d", i)},
					ai.ChatMessage{Role: "assistant", Message: fmt.Sprintf("a%d", i)},
				)
			}
		}()
	}
	wg.Wait()

	for s := range 4 {
		sessionID := fmt.Sprintf("session-%d", s)
		history := store.Get(sessionID)
		if len(history) != perSession*2 {
			t.Fatalf("unexpected history length for %s: got %d, want %d", sessionID, len(history), perSession*2)
		}
	}
}
