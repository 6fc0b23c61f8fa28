// ABOUTME: Tests for conversation trimming and extraction count helpers
package models

import "testing"

func TestRecentTurns(t *testing.T) {
	var history []ConversationTurn
	for i := 0; i < 10; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		history = append(history, ConversationTurn{Role: role, Content: string(rune('a' + i))})
	}

	recent := RecentTurns(history)
	if len(recent) != MaxConversationTurns {
		t.Fatalf("len = %d, want %d", len(recent), MaxConversationTurns)
	}
	if recent[0].Content != "e" || recent[5].Content != "j" {
		t.Errorf("got %q..%q, want e..j", recent[0].Content, recent[5].Content)
	}

	short := history[:3]
	if got := RecentTurns(short); len(got) != 3 {
		t.Errorf("short history len = %d, want 3", len(got))
	}
}

func TestConversationTurn_Label(t *testing.T) {
	if (ConversationTurn{Role: "assistant"}).Label() != "Assistant" {
		t.Error("assistant label")
	}
	if (ConversationTurn{Role: "user"}).Label() != "User" {
		t.Error("user label")
	}
}

func TestExtractionCounts_SetGet(t *testing.T) {
	var c ExtractionCounts
	for i, kind := range AllRecordKinds {
		c.Set(kind, i+1)
	}
	for i, kind := range AllRecordKinds {
		if c.Get(kind) != i+1 {
			t.Errorf("Get(%s) = %d, want %d", kind, c.Get(kind), i+1)
		}
	}
	if c.Total() != 15 {
		t.Errorf("Total() = %d, want 15", c.Total())
	}
}
