// ABOUTME: IndexQueue embeds notes in the background after they are saved
// ABOUTME: Failures are logged only; callers never wait on or see them
package core

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

const (
	defaultIndexWorkers = 2
	defaultIndexBuffer  = 256
	indexJobTimeout     = 2 * time.Minute
)

// IndexJob names one note to (re)embed
type IndexJob struct {
	UserID string
	NoteID string
}

// IndexQueue is a bounded in-process queue drained by worker goroutines
type IndexQueue struct {
	notes    NoteRepository
	embedder *Embedder
	metrics  Recorder

	jobs   chan IndexJob
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

// NewIndexQueue starts workers goroutines. Non-positive sizes use defaults.
func NewIndexQueue(notes NoteRepository, embedder *Embedder, workers, buffer int, metrics Recorder) *IndexQueue {
	if workers <= 0 {
		workers = defaultIndexWorkers
	}
	if buffer <= 0 {
		buffer = defaultIndexBuffer
	}

	q := &IndexQueue{
		notes:    notes,
		embedder: embedder,
		metrics:  recorderOrNop(metrics),
		jobs:     make(chan IndexJob, buffer),
	}

	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

// Enqueue schedules a note for embedding without blocking. It reports
// false when the queue is full or shut down.
func (q *IndexQueue) Enqueue(userID, noteID string) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		log.Printf("[IndexQueue] dropped note %s: queue is shut down", noteID)
		return false
	}

	select {
	case q.jobs <- IndexJob{UserID: userID, NoteID: noteID}:
		return true
	default:
		log.Printf("[IndexQueue] dropped note %s: queue is full", noteID)
		q.metrics.RecordOperation("index_enqueue", "dropped")
		return false
	}
}

// Shutdown stops accepting jobs and waits for queued ones to finish or
// ctx to end
func (q *IndexQueue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *IndexQueue) worker() {
	defer q.wg.Done()
	for job := range q.jobs {
		q.process(job)
	}
}

// process embeds one note; errors stop here
func (q *IndexQueue) process(job IndexJob) {
	ctx, cancel := context.WithTimeout(context.Background(), indexJobTimeout)
	defer cancel()

	start := time.Now()
	defer observe(q.metrics, "index_note", start)

	note, err := q.notes.GetNote(ctx, job.UserID, job.NoteID)
	if err != nil {
		log.Printf("[IndexQueue] note %s: failed to load: %v", job.NoteID, err)
		q.metrics.RecordError("index_note", "load")
		return
	}

	if _, err := q.embedder.IndexNote(ctx, note); err != nil {
		if errors.Is(err, ErrNoEmbeddableText) {
			log.Printf("[IndexQueue] note %s: nothing to embed", job.NoteID)
			return
		}
		log.Printf("[IndexQueue] note %s: %v", job.NoteID, err)
		q.metrics.RecordError("index_note", errorType(err))
		return
	}

	q.metrics.RecordOperation("index_note", "success")
}
