// ABOUTME: Note is the durable unit of content a user records or writes
// ABOUTME: Holds best-available-text fallback and the smartify eligibility rule
package models

import (
	"strings"
	"time"
)

// UntitledNote is shown wherever a note has no title
const UntitledNote = "Untitled Note"

// Note represents a single voice note or written note
type Note struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	Title            string     `json:"title,omitempty"`
	FormattedContent string     `json:"formatted_content,omitempty"`
	Content          string     `json:"content,omitempty"`
	Transcript       string     `json:"transcript,omitempty"`
	AudioURL         string     `json:"audio_url,omitempty"`
	TemplateType     string     `json:"template_type,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	Embedding        *Vector    `json:"-"`
	SmartifiedAt     *time.Time `json:"smartified_at,omitempty"`
}

// BestText returns formatted content, then raw content, then the raw transcript
func (n *Note) BestText() string {
	for _, s := range []string{n.FormattedContent, n.Content, n.Transcript} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// TranscriptText is the text extraction runs against: the transcript when
// present, otherwise whatever the note's best text is.
func (n *Note) TranscriptText() string {
	if strings.TrimSpace(n.Transcript) != "" {
		return n.Transcript
	}
	return n.BestText()
}

// DisplayTitle returns the title or UntitledNote
func (n *Note) DisplayTitle() string {
	if t := strings.TrimSpace(n.Title); t != "" {
		return t
	}
	return UntitledNote
}

// CanSmartify reports whether extraction may run: never smartified, or edited
// strictly after the last run.
func (n *Note) CanSmartify() bool {
	if n.SmartifiedAt == nil {
		return true
	}
	return n.UpdatedAt.After(*n.SmartifiedAt)
}

var templateLabels = map[string]string{
	"meeting":         "Meeting Notes",
	"investor_update": "Investor Update",
	"progress_log":    "Progress Log",
	"product_idea":    "Product Idea",
	"brain_dump":      "Brain Dump",
	"journal":         "Journal",
	"todo":            "To-Do List",
}

// TemplateLabel returns the human-readable template label, or nil
func (n *Note) TemplateLabel() *string {
	label, ok := templateLabels[n.TemplateType]
	if !ok {
		return nil
	}
	return &label
}
