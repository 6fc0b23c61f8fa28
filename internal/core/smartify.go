// ABOUTME: SmartifyService runs all extraction jobs over a note's transcript
// ABOUTME: Jobs settle independently; the note is stamped even on partial success
package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harper/voicenotes/internal/llm"
	"github.com/harper/voicenotes/internal/models"
	"github.com/harper/voicenotes/internal/storage"
)

// JobResult is one extraction job's outcome
type JobResult struct {
	Kind models.RecordKind
	Err  error
}

// SmartifyResult reports stored counts for the recording after a run
type SmartifyResult struct {
	RecordingID string
	Extracted   models.ExtractionCounts
	Jobs        []JobResult
}

// Failed lists the kinds whose job returned an error
func (r *SmartifyResult) Failed() []models.RecordKind {
	var failed []models.RecordKind
	for _, job := range r.Jobs {
		if job.Err != nil {
			failed = append(failed, job.Kind)
		}
	}
	return failed
}

// SmartifyService orchestrates extraction for one note at a time
type SmartifyService struct {
	notes       NoteRepository
	recordings  RecordingRepository
	extractions ExtractionRepository
	extractors  []Extractor
	chat        ChatCompleter
	now         func() time.Time
	metrics     Recorder
}

// NewSmartifyService wires the five standard extractors
func NewSmartifyService(notes NoteRepository, recordings RecordingRepository, extractions ExtractionRepository, chat ChatCompleter, metrics Recorder) *SmartifyService {
	return NewSmartifyServiceWithExtractors(notes, recordings, extractions, chat, NewExtractors(chat, extractions), metrics)
}

// NewSmartifyServiceWithExtractors uses a custom extractor set
func NewSmartifyServiceWithExtractors(notes NoteRepository, recordings RecordingRepository, extractions ExtractionRepository, chat ChatCompleter, extractors []Extractor, metrics Recorder) *SmartifyService {
	return &SmartifyService{
		notes:       notes,
		recordings:  recordings,
		extractions: extractions,
		extractors:  extractors,
		chat:        chat,
		now:         time.Now,
		metrics:     recorderOrNop(metrics),
	}
}

// Smartify extracts records from an eligible note and stamps it
func (s *SmartifyService) Smartify(ctx context.Context, userID, noteID string) (*SmartifyResult, error) {
	start := time.Now()
	defer observe(s.metrics, "smartify", start)

	note, transcript, err := s.loadNote(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}
	if !note.CanSmartify() {
		return nil, newError(KindConflict, StageValidating, "Note already smartified", nil)
	}

	recording, err := s.resolveRecording(ctx, note, transcript)
	if err != nil {
		return nil, newError(KindUpstream, StagePersisting, "Failed to resolve recording", err)
	}

	jobs := s.runExtractors(ctx, transcript, recording.ID, userID)

	counts, err := s.extractions.CountExtractions(ctx, recording.ID)
	if err != nil {
		return nil, newError(KindUpstream, StagePersisting, "Failed to count extracted records", err)
	}

	if err := s.notes.MarkSmartified(ctx, note.ID, s.now().UTC()); err != nil {
		return nil, newError(KindUpstream, StagePersisting, "Failed to mark note smartified", err)
	}

	result := &SmartifyResult{RecordingID: recording.ID, Extracted: counts, Jobs: jobs}
	status := "success"
	if len(result.Failed()) > 0 {
		status = "partial"
	}
	s.metrics.RecordOperation("smartify", status)
	log.Printf("[Smartify] note %s: %d records stored, %d/%d jobs failed",
		note.ID, counts.Total(), len(result.Failed()), len(jobs))

	return result, nil
}

// runExtractors runs every extractor concurrently and waits for all of them
func (s *SmartifyService) runExtractors(ctx context.Context, transcript, recordingID, userID string) []JobResult {
	results := make([]JobResult, len(s.extractors))
	var wg sync.WaitGroup

	for i, extractor := range s.extractors {
		wg.Add(1)
		go func(i int, extractor Extractor) {
			defer wg.Done()
			results[i] = s.runExtractor(ctx, extractor, transcript, recordingID, userID)
		}(i, extractor)
	}

	wg.Wait()
	return results
}

func (s *SmartifyService) runExtractor(ctx context.Context, extractor Extractor, transcript, recordingID, userID string) (result JobResult) {
	kind := extractor.Kind()
	operation := "extract_" + string(kind)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			result = JobResult{Kind: kind, Err: fmt.Errorf("extractor panicked: %v", r)}
		}
		observe(s.metrics, operation, start)
		if result.Err != nil {
			log.Printf("[Smartify] %s extraction failed: %v", kind, result.Err)
			s.metrics.RecordError(operation, errorType(result.Err))
		}
	}()

	return JobResult{Kind: kind, Err: extractor.Extract(ctx, transcript, recordingID, userID)}
}

// resolveRecording finds the note's recording by audio URL, then by note,
// and creates one carrying the transcript when neither exists
func (s *SmartifyService) resolveRecording(ctx context.Context, note *models.Note, transcript string) (*models.Recording, error) {
	if note.AudioURL != "" {
		rec, err := s.recordings.FindRecordingByAudioURL(ctx, note.UserID, note.AudioURL)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
	}

	rec, err := s.recordings.FindRecordingByNoteID(ctx, note.UserID, note.ID)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	rec = &models.Recording{
		ID:              uuid.New().String(),
		UserID:          note.UserID,
		NoteID:          note.ID,
		AudioURL:        note.AudioURL,
		RawTranscript:   note.Transcript,
		CleanTranscript: transcript,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.recordings.CreateRecording(ctx, rec); err != nil {
		return nil, err
	}
	log.Printf("[Smartify] created recording %s for note %s", rec.ID, note.ID)
	return rec, nil
}

// loadNote applies the ownership and text preconditions shared by
// Smartify and Preview
func (s *SmartifyService) loadNote(ctx context.Context, userID, noteID string) (*models.Note, string, error) {
	if userID == "" {
		return nil, "", errUnauthorized(StageValidating)
	}
	if strings.TrimSpace(noteID) == "" {
		return nil, "", newError(KindInvalid, StageValidating, "noteId is required", nil)
	}

	note, err := s.notes.GetNote(ctx, userID, noteID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, "", newError(KindNotFound, StageValidating, "Note not found", nil)
	}
	if err != nil {
		return nil, "", newError(KindUpstream, StagePersisting, "Failed to load note", err)
	}

	transcript := strings.TrimSpace(note.TranscriptText())
	if transcript == "" {
		return nil, "", newError(KindInvalid, StageValidating, "Note has no transcript to smartify", nil)
	}
	return note, transcript, nil
}

const previewPrompt = `You estimate what structured records could be extracted from a voice note transcript.

Count, without listing them:
- actionItems: concrete tasks or follow-ups
- investorUpdates: investor-relevant company updates (0 or 1)
- progressLogs: projects whose progress is discussed
- productIdeas: product or feature ideas
- brainDump: other loose thoughts worth keeping

Return ONLY a JSON object: {"actionItems": 0, "investorUpdates": 0, "progressLogs": 0, "productIdeas": 0, "brainDump": 0}`

// Preview estimates extractable counts with one model call. It writes
// nothing, and any model failure yields zero counts.
func (s *SmartifyService) Preview(ctx context.Context, userID, noteID string) (models.ExtractionCounts, error) {
	var counts models.ExtractionCounts

	_, transcript, err := s.loadNote(ctx, userID, noteID)
	if err != nil {
		return counts, err
	}

	content, err := s.chat.Complete(ctx, llm.CompletionRequest{
		System:      previewPrompt,
		User:        "Transcript:\n\n" + transcript,
		Temperature: ExtractionTemperature,
		JSON:        true,
	})
	if err != nil {
		log.Printf("[Smartify] preview failed for note %s: %v", noteID, err)
		s.metrics.RecordOperation("smartify_preview", "degraded")
		return models.ExtractionCounts{}, nil
	}

	if err := json.Unmarshal([]byte(stripCodeFence(content)), &counts); err != nil {
		log.Printf("[Smartify] preview returned invalid JSON for note %s: %v", noteID, err)
		s.metrics.RecordOperation("smartify_preview", "degraded")
		return models.ExtractionCounts{}, nil
	}

	for _, kind := range models.AllRecordKinds {
		if counts.Get(kind) < 0 {
			counts.Set(kind, 0)
		}
	}
	s.metrics.RecordOperation("smartify_preview", "success")
	return counts, nil
}
