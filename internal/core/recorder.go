// ABOUTME: Minimal metrics interface the core reports through
// ABOUTME: internal/metrics implements it; nopRecorder is the default
package core

import "time"

// Recorder receives operation outcomes and timings
type Recorder interface {
	RecordOperation(operation, status string)
	RecordDuration(operation string, seconds float64)
	RecordError(operation, errorType string)
}

type nopRecorder struct{}

func (nopRecorder) RecordOperation(string, string) {}

func (nopRecorder) RecordDuration(string, float64) {}

func (nopRecorder) RecordError(string, string) {}

func recorderOrNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}

// observe records the time since start under operation
func observe(r Recorder, operation string, start time.Time) {
	r.RecordDuration(operation, time.Since(start).Seconds())
}
