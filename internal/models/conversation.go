// ABOUTME: Ask request/response shapes: conversation turns and citations
// ABOUTME: Both are ephemeral and never persisted
package models

import "strings"

// Conversation roles accepted on Ask requests
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// MaxConversationTurns is how many trailing turns the model sees (3 exchanges)
const MaxConversationTurns = 6

// ConversationTurn is one prior message supplied by the caller
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Label returns the transcript label for the turn's role
func (t ConversationTurn) Label() string {
	if strings.EqualFold(t.Role, RoleAssistant) {
		return "Assistant"
	}
	return "User"
}

// RecentTurns returns at most the last MaxConversationTurns entries
func RecentTurns(history []ConversationTurn) []ConversationTurn {
	if len(history) <= MaxConversationTurns {
		return history
	}
	return history[len(history)-MaxConversationTurns:]
}

// Citation ties a marker like [1] in an answer to a retrieved note
type Citation struct {
	ID            string  `json:"id"`
	NoteID        string  `json:"noteId"`
	NoteTitle     string  `json:"noteTitle"`
	Snippet       string  `json:"snippet"`
	CreatedAt     string  `json:"createdAt"`
	TemplateLabel *string `json:"templateLabel"`
}

// TimeFilter selects how far back Ask searches
type TimeFilter string

const (
	FilterWeek        TimeFilter = "week"
	FilterMonth       TimeFilter = "month"
	FilterThreeMonths TimeFilter = "3months"
	FilterAll         TimeFilter = "all"
)
