// ABOUTME: SQLite database schema for notes, recordings, and extracted records
// ABOUTME: Timestamps are unix milliseconds so range filters compare as integers
package sqlite

// Schema contains all SQL statements for database initialization
const Schema = `
-- Notes (embedding is a little-endian float32 blob, NULL until indexed)
CREATE TABLE IF NOT EXISTS notes (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    formatted_content TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT '',
    transcript TEXT NOT NULL DEFAULT '',
    audio_url TEXT NOT NULL DEFAULT '',
    template_type TEXT NOT NULL DEFAULT '',
    embedding BLOB,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    smartified_at INTEGER
);

-- Recordings (provenance for extraction)
CREATE TABLE IF NOT EXISTS recordings (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    note_id TEXT NOT NULL DEFAULT '',
    audio_url TEXT NOT NULL DEFAULT '',
    raw_transcript TEXT NOT NULL DEFAULT '',
    clean_transcript TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS action_items (
    id TEXT PRIMARY KEY,
    recording_id TEXT NOT NULL REFERENCES recordings(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    task TEXT NOT NULL,
    assignee TEXT NOT NULL DEFAULT '',
    due_date TEXT NOT NULL DEFAULT '',
    priority TEXT NOT NULL DEFAULT '',
    completed INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS investor_updates (
    id TEXT PRIMARY KEY,
    recording_id TEXT NOT NULL REFERENCES recordings(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    summary TEXT NOT NULL,
    wins TEXT NOT NULL DEFAULT '[]',
    challenges TEXT NOT NULL DEFAULT '[]',
    asks TEXT NOT NULL DEFAULT '[]',
    metrics TEXT NOT NULL DEFAULT '[]',
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS progress_logs (
    id TEXT PRIMARY KEY,
    recording_id TEXT NOT NULL REFERENCES recordings(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    project TEXT NOT NULL DEFAULT '',
    summary TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT '',
    blockers TEXT NOT NULL DEFAULT '[]',
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS product_ideas (
    id TEXT PRIMARY KEY,
    recording_id TEXT NOT NULL REFERENCES recordings(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    problem TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS brain_dump_items (
    id TEXT PRIMARY KEY,
    recording_id TEXT NOT NULL REFERENCES recordings(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    content TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);

-- Indexes for efficient querying
CREATE INDEX IF NOT EXISTS idx_notes_user_created ON notes(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_recordings_user_audio ON recordings(user_id, audio_url);
CREATE INDEX IF NOT EXISTS idx_recordings_user_note ON recordings(user_id, note_id);
CREATE INDEX IF NOT EXISTS idx_action_items_recording ON action_items(recording_id);
CREATE INDEX IF NOT EXISTS idx_investor_updates_recording ON investor_updates(recording_id);
CREATE INDEX IF NOT EXISTS idx_progress_logs_recording ON progress_logs(recording_id);
CREATE INDEX IF NOT EXISTS idx_product_ideas_recording ON product_ideas(recording_id);
CREATE INDEX IF NOT EXISTS idx_brain_dump_items_recording ON brain_dump_items(recording_id);
`

// SchemaVersion is the current schema version for migrations
const SchemaVersion = 1

