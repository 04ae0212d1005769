package database

import "time"

// Transcript represents one uploaded chat export file and the summary of what
// was parsed out of it.
type Transcript struct {
	ID           string    `db:"id"`
	Filename     string    `db:"filename"`
	OriginalName string    `db:"original_name"`
	SizeBytes    int64     `db:"size_bytes"`
	MessageCount int       `db:"message_count"`
	FirstDate    string    `db:"first_date"`
	LastDate     string    `db:"last_date"`
	UploadedAt   time.Time `db:"uploaded_at"`
}

// StoredMessage is one parsed chat message persisted for a transcript.
type StoredMessage struct {
	ID           int64     `db:"id"`
	TranscriptID string    `db:"transcript_id"`
	Timestamp    time.Time `db:"ts"`
	Date         string    `db:"date"`
	Time         string    `db:"time"`
	Hour         int       `db:"hour"`
	Weekday      int       `db:"weekday"`
	Author       string    `db:"author"`
	Text         string    `db:"text"`
}
