// ABOUTME: The five Smartify extraction jobs: one JSON-mode model call each
// ABOUTME: Every job tags its rows with the recording and user it came from
package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harper/voicenotes/internal/llm"
	"github.com/harper/voicenotes/internal/models"
)

// ExtractionTemperature keeps extraction output consistent between runs
const ExtractionTemperature float32 = 0.2

// Extractor turns a transcript into zero or more stored records of one kind
type Extractor interface {
	Kind() models.RecordKind
	Extract(ctx context.Context, transcript, recordingID, userID string) error
}

// NewExtractors returns the five standard extraction jobs
func NewExtractors(chat ChatCompleter, store ExtractionRepository) []Extractor {
	job := extractionJob{chat: chat}
	return []Extractor{
		&ActionItemExtractor{job: job, store: store},
		&InvestorUpdateExtractor{job: job, store: store},
		&ProgressLogExtractor{job: job, store: store},
		&ProductIdeaExtractor{job: job, store: store},
		&BrainDumpExtractor{job: job, store: store},
	}
}

// extractionJob runs a JSON-mode completion and decodes the reply
type extractionJob struct {
	chat ChatCompleter
}

func (j extractionJob) run(ctx context.Context, systemPrompt, transcript string, out any) error {
	content, err := j.chat.Complete(ctx, llm.CompletionRequest{
		System:      systemPrompt,
		User:        "Transcript:\n\n" + transcript,
		Temperature: ExtractionTemperature,
		JSON:        true,
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(stripCodeFence(content)), out); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}

// stripCodeFence removes a ```json fence some models wrap JSON in
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func meta(recordingID, userID string) models.RecordMeta {
	return models.RecordMeta{RecordingID: recordingID, UserID: userID}
}

// cleanList trims entries and drops blanks
func cleanList(items []string) []string {
	var out []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func oneOf(value string, allowed ...string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, a := range allowed {
		if value == a {
			return value
		}
	}
	return ""
}

// ActionItemExtractor finds tasks and follow-ups
type ActionItemExtractor struct {
	job   extractionJob
	store ExtractionRepository
}

const actionItemPrompt = `You extract action items from a voice note transcript.

An action item is a concrete task someone committed to or was asked to do.
Return ONLY a JSON object of this shape:
{"action_items": [{"task": "...", "assignee": "...", "due_date": "...", "priority": "high|medium|low"}]}

- task is required and starts with a verb.
- assignee, due_date and priority are optional; use "" when not stated. Keep due dates as spoken ("next Friday").
- If there are no action items, return {"action_items": []}.`

// Kind implements Extractor
func (e *ActionItemExtractor) Kind() models.RecordKind { return models.KindActionItem }

// Extract implements Extractor
func (e *ActionItemExtractor) Extract(ctx context.Context, transcript, recordingID, userID string) error {
	var resp struct {
		ActionItems []struct {
			Task     string `json:"task"`
			Assignee string `json:"assignee"`
			DueDate  string `json:"due_date"`
			Priority string `json:"priority"`
		} `json:"action_items"`
	}
	if err := e.job.run(ctx, actionItemPrompt, transcript, &resp); err != nil {
		return err
	}

	var items []models.ActionItem
	for _, a := range resp.ActionItems {
		task := strings.TrimSpace(a.Task)
		if task == "" {
			continue
		}
		items = append(items, models.ActionItem{
			RecordMeta: meta(recordingID, userID),
			Task:       task,
			Assignee:   strings.TrimSpace(a.Assignee),
			DueDate:    strings.TrimSpace(a.DueDate),
			Priority:   oneOf(a.Priority, "high", "medium", "low"),
		})
	}
	return e.store.InsertActionItems(ctx, items)
}

// InvestorUpdateExtractor summarises company news for investors
type InvestorUpdateExtractor struct {
	job   extractionJob
	store ExtractionRepository
}

const investorUpdatePrompt = `You extract investor-update material from a founder's voice note transcript.

Return ONLY a JSON object of this shape:
{"investor_updates": [{"summary": "...", "wins": ["..."], "challenges": ["..."], "asks": ["..."], "metrics": ["..."]}]}

- Only include an update when the transcript discusses company progress, results, fundraising or help needed.
- summary is one or two sentences. Lists hold short phrases; metrics keep numbers as stated.
- If nothing investor-relevant is said, return {"investor_updates": []}.`

// Kind implements Extractor
func (e *InvestorUpdateExtractor) Kind() models.RecordKind { return models.KindInvestorUpdate }

// Extract implements Extractor
func (e *InvestorUpdateExtractor) Extract(ctx context.Context, transcript, recordingID, userID string) error {
	var resp struct {
		InvestorUpdates []struct {
			Summary    string   `json:"summary"`
			Wins       []string `json:"wins"`
			Challenges []string `json:"challenges"`
			Asks       []string `json:"asks"`
			Metrics    []string `json:"metrics"`
		} `json:"investor_updates"`
	}
	if err := e.job.run(ctx, investorUpdatePrompt, transcript, &resp); err != nil {
		return err
	}

	var updates []models.InvestorUpdate
	for _, u := range resp.InvestorUpdates {
		summary := strings.TrimSpace(u.Summary)
		if summary == "" {
			continue
		}
		updates = append(updates, models.InvestorUpdate{
			RecordMeta: meta(recordingID, userID),
			Summary:    summary,
			Wins:       cleanList(u.Wins),
			Challenges: cleanList(u.Challenges),
			Asks:       cleanList(u.Asks),
			Metrics:    cleanList(u.Metrics),
		})
	}
	return e.store.InsertInvestorUpdates(ctx, updates)
}

// ProgressLogExtractor records project progress
type ProgressLogExtractor struct {
	job   extractionJob
	store ExtractionRepository
}

const progressLogPrompt = `You extract project progress from a voice note transcript.

Return ONLY a JSON object of this shape:
{"progress_logs": [{"project": "...", "summary": "...", "status": "on_track|at_risk|blocked|completed", "blockers": ["..."]}]}

- One entry per project discussed. summary says what changed.
- status is optional; use "" when unclear. blockers may be empty.
- If no project progress is discussed, return {"progress_logs": []}.`

// Kind implements Extractor
func (e *ProgressLogExtractor) Kind() models.RecordKind { return models.KindProgressLog }

// Extract implements Extractor
func (e *ProgressLogExtractor) Extract(ctx context.Context, transcript, recordingID, userID string) error {
	var resp struct {
		ProgressLogs []struct {
			Project  string   `json:"project"`
			Summary  string   `json:"summary"`
			Status   string   `json:"status"`
			Blockers []string `json:"blockers"`
		} `json:"progress_logs"`
	}
	if err := e.job.run(ctx, progressLogPrompt, transcript, &resp); err != nil {
		return err
	}

	var logs []models.ProgressLog
	for _, p := range resp.ProgressLogs {
		summary := strings.TrimSpace(p.Summary)
		if summary == "" {
			continue
		}
		logs = append(logs, models.ProgressLog{
			RecordMeta: meta(recordingID, userID),
			Project:    strings.TrimSpace(p.Project),
			Summary:    summary,
			Status:     oneOf(p.Status, "on_track", "at_risk", "blocked", "completed"),
			Blockers:   cleanList(p.Blockers),
		})
	}
	return e.store.InsertProgressLogs(ctx, logs)
}

// ProductIdeaExtractor captures product and feature ideas
type ProductIdeaExtractor struct {
	job   extractionJob
	store ExtractionRepository
}

const productIdeaPrompt = `You extract product and feature ideas from a voice note transcript.

Return ONLY a JSON object of this shape:
{"product_ideas": [{"title": "...", "description": "...", "problem": "...", "category": "feature|product|improvement|other"}]}

- title is a short name. description explains the idea; problem is what it solves.
- If no ideas are mentioned, return {"product_ideas": []}.`

// Kind implements Extractor
func (e *ProductIdeaExtractor) Kind() models.RecordKind { return models.KindProductIdea }

// Extract implements Extractor
func (e *ProductIdeaExtractor) Extract(ctx context.Context, transcript, recordingID, userID string) error {
	var resp struct {
		ProductIdeas []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Problem     string `json:"problem"`
			Category    string `json:"category"`
		} `json:"product_ideas"`
	}
	if err := e.job.run(ctx, productIdeaPrompt, transcript, &resp); err != nil {
		return err
	}

	var ideas []models.ProductIdea
	for _, p := range resp.ProductIdeas {
		title := strings.TrimSpace(p.Title)
		if title == "" {
			continue
		}
		ideas = append(ideas, models.ProductIdea{
			RecordMeta:  meta(recordingID, userID),
			Title:       title,
			Description: strings.TrimSpace(p.Description),
			Problem:     strings.TrimSpace(p.Problem),
			Category:    strings.ToLower(strings.TrimSpace(p.Category)),
		})
	}
	return e.store.InsertProductIdeas(ctx, ideas)
}

// BrainDumpExtractor splits loose thinking into discrete items
type BrainDumpExtractor struct {
	job   extractionJob
	store ExtractionRepository
}

const brainDumpPrompt = `You organise a stream-of-consciousness voice note into discrete thoughts.

Return ONLY a JSON object of this shape:
{"items": [{"content": "...", "category": "idea|worry|reminder|reflection|question|other"}]}

- Each item is one self-contained thought in the speaker's words, lightly cleaned up.
- Skip anything already a clear task, project update or product idea.
- If there is nothing left, return {"items": []}.`

// Kind implements Extractor
func (e *BrainDumpExtractor) Kind() models.RecordKind { return models.KindBrainDump }

// Extract implements Extractor
func (e *BrainDumpExtractor) Extract(ctx context.Context, transcript, recordingID, userID string) error {
	var resp struct {
		Items []struct {
			Content  string `json:"content"`
			Category string `json:"category"`
		} `json:"items"`
	}
	if err := e.job.run(ctx, brainDumpPrompt, transcript, &resp); err != nil {
		return err
	}

	var items []models.BrainDumpItem
	for _, b := range resp.Items {
		content := strings.TrimSpace(b.Content)
		if content == "" {
			continue
		}
		items = append(items, models.BrainDumpItem{
			RecordMeta: meta(recordingID, userID),
			Content:    content,
			Category:   strings.ToLower(strings.TrimSpace(b.Category)),
		})
	}
	return e.store.InsertBrainDumpItems(ctx, items)
}
