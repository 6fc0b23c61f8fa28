// ABOUTME: Unified Store that wraps the note, recording, and extraction stores
// ABOUTME: One value satisfies every repository interface the core needs
package sqlite

import "fmt"

// Store manages all persistent voice-note data in SQLite
type Store struct {
	*NoteStore
	*RecordingStore
	*ExtractionStore

	db *DB
}

// NewStore opens (or creates) the database at path
func NewStore(path string) (*Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return newStore(db), nil
}

// NewStoreInMemory creates an in-memory store (for testing)
func NewStoreInMemory() (*Store, error) {
	db, err := OpenInMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	return newStore(db), nil
}

func newStore(db *DB) *Store {
	return &Store{
		NoteStore:       NewNoteStore(db),
		RecordingStore:  NewRecordingStore(db),
		ExtractionStore: NewExtractionStore(db),
		db:              db,
	}
}

// DB returns the underlying database
func (s *Store) DB() *DB {
	return s.db
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
