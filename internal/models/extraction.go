// ABOUTME: Typed records produced by the Smartify extraction jobs
// ABOUTME: Each record is tagged with the recording and user it came from
package models

import "time"

// RecordKind names one of the five extraction record types
type RecordKind string

const (
	KindActionItem     RecordKind = "action_items"
	KindInvestorUpdate RecordKind = "investor_updates"
	KindProgressLog    RecordKind = "progress_logs"
	KindProductIdea    RecordKind = "product_ideas"
	KindBrainDump      RecordKind = "brain_dump"
)

// AllRecordKinds lists the kinds in a stable order
var AllRecordKinds = []RecordKind{
	KindActionItem,
	KindInvestorUpdate,
	KindProgressLog,
	KindProductIdea,
	KindBrainDump,
}

// RecordMeta is shared by every extracted record
type RecordMeta struct {
	ID          string    `json:"id"`
	RecordingID string    `json:"recording_id"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// ActionItem is a task mentioned in a transcript
type ActionItem struct {
	RecordMeta
	Task     string `json:"task"`
	Assignee string `json:"assignee,omitempty"`
	DueDate  string `json:"due_date,omitempty"`
	Priority string `json:"priority,omitempty"`
}

// InvestorUpdate summarises company news suitable for investors
type InvestorUpdate struct {
	RecordMeta
	Summary    string   `json:"summary"`
	Wins       []string `json:"wins,omitempty"`
	Challenges []string `json:"challenges,omitempty"`
	Asks       []string `json:"asks,omitempty"`
	Metrics    []string `json:"metrics,omitempty"`
}

// ProgressLog records progress on a project
type ProgressLog struct {
	RecordMeta
	Project  string   `json:"project"`
	Summary  string   `json:"summary"`
	Status   string   `json:"status,omitempty"`
	Blockers []string `json:"blockers,omitempty"`
}

// ProductIdea is a product or feature idea
type ProductIdea struct {
	RecordMeta
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Problem     string `json:"problem,omitempty"`
	Category    string `json:"category,omitempty"`
}

// BrainDumpItem is a loose thought captured from a brain dump
type BrainDumpItem struct {
	RecordMeta
	Content  string `json:"content"`
	Category string `json:"category,omitempty"`
}

// ExtractionCounts holds stored record counts for one recording
type ExtractionCounts struct {
	ActionItems     int `json:"actionItems"`
	InvestorUpdates int `json:"investorUpdates"`
	ProgressLogs    int `json:"progressLogs"`
	ProductIdeas    int `json:"productIdeas"`
	BrainDump       int `json:"brainDump"`
}

// Set assigns the count for kind
func (c *ExtractionCounts) Set(kind RecordKind, n int) {
	switch kind {
	case KindActionItem:
		c.ActionItems = n
	case KindInvestorUpdate:
		c.InvestorUpdates = n
	case KindProgressLog:
		c.ProgressLogs = n
	case KindProductIdea:
		c.ProductIdeas = n
	case KindBrainDump:
		c.BrainDump = n
	}
}

// Get returns the count for kind
func (c ExtractionCounts) Get(kind RecordKind) int {
	switch kind {
	case KindActionItem:
		return c.ActionItems
	case KindInvestorUpdate:
		return c.InvestorUpdates
	case KindProgressLog:
		return c.ProgressLogs
	case KindProductIdea:
		return c.ProductIdeas
	case KindBrainDump:
		return c.BrainDump
	}
	return 0
}

// Total sums all kinds
func (c ExtractionCounts) Total() int {
	return c.ActionItems + c.InvestorUpdates + c.ProgressLogs + c.ProductIdeas + c.BrainDump
}
