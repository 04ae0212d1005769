package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/chatscope-app/chatscope/internal/metrics"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store defines the interface for database operations. Methods accept
// context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// SaveTranscript inserts a transcript and its parsed messages in a
	// single transaction.
	SaveTranscript(ctx context.Context, transcript *Transcript, messages []StoredMessage) error

	// GetTranscript retrieves a transcript by ID.
	GetTranscript(ctx context.Context, id string) (*Transcript, error)

	// LatestTranscript retrieves the most recently uploaded transcript.
	LatestTranscript(ctx context.Context) (*Transcript, error)

	// ListTranscripts retrieves all transcripts, newest first.
	ListTranscripts(ctx context.Context) ([]Transcript, error)

	// MessagesForTranscript retrieves a transcript's messages in original
	// file order.
	MessagesForTranscript(ctx context.Context, transcriptID string) ([]StoredMessage, error)

	// DeleteTranscript removes a transcript and, via cascade, its messages.
	DeleteTranscript(ctx context.Context, id string) error

	// DeleteTranscriptsBefore removes transcripts uploaded before the
	// cutoff and returns the IDs of those deleted.
	DeleteTranscriptsBefore(ctx context.Context, cutoff time.Time) ([]string, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const insertTranscriptQuery = `
    INSERT INTO transcripts (id, filename, original_name, size_bytes, message_count, first_date, last_date, uploaded_at)
    VALUES (:id, :filename, :original_name, :size_bytes, :message_count, :first_date, :last_date, :uploaded_at);
`

const insertMessageQuery = `
    INSERT INTO messages (transcript_id, ts, date, time, hour, weekday, author, text)
    VALUES (:transcript_id, :ts, :date, :time, :hour, :weekday, :author, :text);
`

// SaveTranscript inserts the transcript row and all its messages atomically.
func (s *sqlxStore) SaveTranscript(ctx context.Context, transcript *Transcript, messages []StoredMessage) error {
	if transcript == nil {
		return fmt.Errorf("cannot save nil transcript")
	}
	if transcript.ID == "" {
		return fmt.Errorf("transcript must have an ID")
	}
	if transcript.UploadedAt.IsZero() {
		transcript.UploadedAt = time.Now().UTC()
	}
	transcript.MessageCount = len(messages)

	start := time.Now()
	defer func() { metrics.SQLiteLatency.Observe(time.Since(start).Seconds()) }()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
			}
		}
	}()

	if _, err := tx.NamedExecContext(ctx, insertTranscriptQuery, transcript); err != nil {
		return fmt.Errorf("failed to save transcript %s: %w", transcript.ID, err)
	}

	for i := range messages {
		messages[i].TranscriptID = transcript.ID
	}
	if len(messages) > 0 {
		// Batches keep the bound-parameter count under SQLite's limit.
		const batchSize = 500
		for start := 0; start < len(messages); start += batchSize {
			end := start + batchSize
			if end > len(messages) {
				end = len(messages)
			}
			if _, err := tx.NamedExecContext(ctx, insertMessageQuery, messages[start:end]); err != nil {
				return fmt.Errorf("failed to save messages for transcript %s: %w", transcript.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "Transcript saved",
		"transcript_id", transcript.ID, "messages", len(messages))
	return nil
}

func (s *sqlxStore) GetTranscript(ctx context.Context, id string) (*Transcript, error) {
	if id == "" {
		return nil, fmt.Errorf("transcript ID cannot be empty")
	}

	var t Transcript
	err := s.db.GetContext(ctx, &t, `SELECT * FROM transcripts WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: transcript %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transcript %s: %w", id, err)
	}
	return &t, nil
}

func (s *sqlxStore) LatestTranscript(ctx context.Context) (*Transcript, error) {
	var t Transcript
	err := s.db.GetContext(ctx, &t, `SELECT * FROM transcripts ORDER BY uploaded_at DESC, id DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no transcripts", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest transcript: %w", err)
	}
	return &t, nil
}

func (s *sqlxStore) ListTranscripts(ctx context.Context) ([]Transcript, error) {
	var list []Transcript
	if err := s.db.SelectContext(ctx, &list, `SELECT * FROM transcripts ORDER BY uploaded_at DESC, id DESC`); err != nil {
		return nil, fmt.Errorf("failed to list transcripts: %w", err)
	}
	return list, nil
}

func (s *sqlxStore) MessagesForTranscript(ctx context.Context, transcriptID string) ([]StoredMessage, error) {
	if transcriptID == "" {
		return nil, fmt.Errorf("transcript ID cannot be empty")
	}

	var list []StoredMessage
	err := s.db.SelectContext(ctx, &list,
		`SELECT * FROM messages WHERE transcript_id = ? ORDER BY id ASC`, transcriptID)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages for transcript %s: %w", transcriptID, err)
	}
	return list, nil
}

func (s *sqlxStore) DeleteTranscript(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("transcript ID cannot be empty")
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM transcripts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transcript %s: %w", id, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("%w: transcript %s", ErrNotFound, id)
	}
	return nil
}

func (s *sqlxStore) DeleteTranscriptsBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	var ids []string
	if err := s.db.SelectContext(ctx, &ids,
		`SELECT id FROM transcripts WHERE uploaded_at < ?`, cutoff); err != nil {
		return nil, fmt.Errorf("failed to find expired transcripts: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM transcripts WHERE uploaded_at < ?`, cutoff); err != nil {
		return nil, fmt.Errorf("failed to delete expired transcripts: %w", err)
	}

	s.logger.InfoContext(ctx, "Expired transcripts deleted", "count", len(ids))
	return ids, nil
}

// RunSQLMaintenance reclaims free pages and refreshes planner statistics.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	for _, stmt := range []string{`VACUUM;`, `ANALYZE;`, `PRAGMA optimize;`} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("maintenance statement %q failed: %w", stmt, err)
		}
	}
	s.logger.InfoContext(ctx, "SQL maintenance completed")
	return nil
}
