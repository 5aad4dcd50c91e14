// Package history provides SQLite-backed persistence for completed analysis
// results and their chat transcripts. Only finished sessions land here; an
// in-progress assessment is never written.
package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/speakclear-dev/speakclear/internal/locale"
	"github.com/speakclear-dev/speakclear/internal/report"
)

// Record is one persisted analysis result.
type Record struct {
	ID             string
	Language       locale.Lang
	SpeechRate     float64
	PhonemeRate    float64
	DysarthriaProb float64
	SubmittedAt    time.Time
}

// Message is one persisted chat transcript entry.
type Message struct {
	ID       int64
	ResultID string
	Role     string
	Content  string
	SentAt   time.Time
}

// Store provides SQLite-backed persistence for results and transcripts.
type Store struct {
	db *sql.DB
}

// Open opens the SQLite database at dbPath and creates tables if they don't
// exist.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := createTables(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS results (
		id TEXT PRIMARY KEY,
		language TEXT NOT NULL,
		speech_rate REAL NOT NULL,
		phoneme_rate REAL NOT NULL,
		dysarthria_prob REAL NOT NULL,
		submitted_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		result_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		sent_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (result_id) REFERENCES results(id)
	);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveResult persists a completed analysis. The server issues result ids as
// UUIDs; a malformed id is rejected here rather than stored.
func (s *Store) SaveResult(r *report.Result, lang locale.Lang) (*Record, error) {
	if _, err := uuid.Parse(r.ID); err != nil {
		return nil, fmt.Errorf("invalid result id %q: %w", r.ID, err)
	}
	now := time.Now()

	_, err := s.db.Exec(
		`INSERT INTO results (id, language, speech_rate, phoneme_rate, dysarthria_prob, submitted_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, string(lang), r.SpeechRate, r.PhonemeRate, r.DysarthriaProb, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert result: %w", err)
	}

	return &Record{
		ID:             r.ID,
		Language:       lang,
		SpeechRate:     r.SpeechRate,
		PhonemeRate:    r.PhonemeRate,
		DysarthriaProb: r.DysarthriaProb,
		SubmittedAt:    now,
	}, nil
}

// GetResult retrieves a persisted result by id. Returns nil when absent.
func (s *Store) GetResult(id string) (*Record, error) {
	row := s.db.QueryRow(
		`SELECT id, language, speech_rate, phoneme_rate, dysarthria_prob, submitted_at
		 FROM results WHERE id = ?`,
		id,
	)

	var rec Record
	var lang string
	err := row.Scan(&rec.ID, &lang, &rec.SpeechRate, &rec.PhonemeRate, &rec.DysarthriaProb, &rec.SubmittedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan result: %w", err)
	}
	rec.Language = locale.Lang(lang)

	return &rec, nil
}

// ListResults returns the most recent results, newest first.
func (s *Store) ListResults(limit int) ([]Record, error) {
	rows, err := s.db.Query(
		`SELECT id, language, speech_rate, phoneme_rate, dysarthria_prob, submitted_at
		 FROM results
		 ORDER BY submitted_at DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		var rec Record
		var lang string
		if err := rows.Scan(&rec.ID, &lang, &rec.SpeechRate, &rec.PhonemeRate, &rec.DysarthriaProb, &rec.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		rec.Language = locale.Lang(lang)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return records, nil
}

// AppendMessage adds a chat transcript entry under a result.
func (s *Store) AppendMessage(resultID, role, content string) error {
	_, err := s.db.Exec(
		`INSERT INTO messages (result_id, role, content, sent_at)
		 VALUES (?, ?, ?, ?)`,
		resultID, role, content, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	return nil
}

// GetTranscript retrieves all transcript entries for a result in send order.
func (s *Store) GetTranscript(resultID string) ([]Message, error) {
	rows, err := s.db.Query(
		`SELECT id, result_id, role, content, sent_at
		 FROM messages
		 WHERE result_id = ?
		 ORDER BY id ASC`,
		resultID,
	)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var messages []Message
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.ID, &msg.ResultID, &msg.Role, &msg.Content, &msg.SentAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return messages, nil
}
