// ABOUTME: Recording links a note to its audio source and transcript pair
// ABOUTME: Every extracted record is keyed by the recording it came from
package models

import "time"

// Recording is the provenance row for a note's audio and transcripts
type Recording struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	NoteID          string    `json:"note_id,omitempty"`
	AudioURL        string    `json:"audio_url,omitempty"`
	RawTranscript   string    `json:"raw_transcript,omitempty"`
	CleanTranscript string    `json:"clean_transcript,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
