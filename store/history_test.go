package store

import (
	"fmt"
	"testing"

	"gembot/models"
)

func TestHistoryOrderAndWindow(t *testing.T) {
	s, _ := newTestStore(t)
	s.CreateUser(1, "alice")

	for i := 1; i <= 5; i++ {
		s.RecordTurn(1, models.RoleUser, fmt.Sprintf("question %d", i))
		s.RecordTurn(1, models.RoleAssistant, fmt.Sprintf("answer %d", i))
	}

	turns, err := s.History(1, 4)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(turns) != 4 {
		t.Fatalf("expected 4 turns, got %d", len(turns))
	}

	// Most recent window, oldest first.
	want := []string{"question 4", "answer 4", "question 5", "answer 5"}
	for i, turn := range turns {
		if turn.Content != want[i] {
			t.Errorf("turn %d: expected %q, got %q", i, want[i], turn.Content)
		}
	}
}

func TestHistoryIsPerUser(t *testing.T) {
	s, _ := newTestStore(t)
	s.CreateUser(1, "alice")
	s.CreateUser(2, "bob")

	s.RecordTurn(1, models.RoleUser, "from alice")
	s.RecordTurn(2, models.RoleUser, "from bob")

	turns, _ := s.History(1, 10)
	if len(turns) != 1 || turns[0].Content != "from alice" {
		t.Errorf("expected only alice's turn, got %+v", turns)
	}
}

func TestClearHistory(t *testing.T) {
	s, _ := newTestStore(t)
	s.CreateUser(1, "alice")

	s.RecordTurn(1, models.RoleUser, "hello")
	s.RecordTurn(1, models.RoleAssistant, "hi there")

	if err := s.ClearHistory(1); err != nil {
		t.Fatalf("clear: %v", err)
	}

	turns, _ := s.History(1, 10)
	if len(turns) != 0 {
		t.Errorf("expected empty history, got %d turns", len(turns))
	}

	count, _ := s.MessageCount(1)
	if count != 0 {
		t.Errorf("expected zero message count, got %d", count)
	}
}

func TestMessageCountOnlyCountsUserTurns(t *testing.T) {
	s, _ := newTestStore(t)
	s.CreateUser(1, "alice")

	s.RecordTurn(1, models.RoleUser, "one")
	s.RecordTurn(1, models.RoleAssistant, "reply")
	s.RecordTurn(1, models.RoleUser, "two")

	count, err := s.MessageCount(1)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2, got %d", count)
	}
}
