package database_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/chatscope-app/chatscope/internal/config"
	"github.com/chatscope-app/chatscope/internal/database"
)

func newTestStore(t *testing.T) database.Store {
	t.Helper()

	db, err := database.NewDB(config.DatabaseConfig{
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db) })

	return database.NewStore(db, nil)
}

func testTranscript(id string, uploadedAt time.Time) *database.Transcript {
	return &database.Transcript{
		ID:           id,
		Filename:     id + "_chat.txt",
		OriginalName: "chat.txt",
		SizeBytes:    128,
		FirstDate:    "2024-01-01",
		LastDate:     "2024-01-02",
		UploadedAt:   uploadedAt,
	}
}

func testMessages() []database.StoredMessage {
	ts := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	return []database.StoredMessage{
		{Timestamp: ts, Date: "2024-01-01", Time: "10:00:00", Hour: 10, Weekday: 0, Author: "Alice", Text: "Привет"},
		{Timestamp: ts.Add(5 * time.Minute), Date: "2024-01-01", Time: "10:05:00", Hour: 10, Weekday: 0, Author: "Bob", Text: "Привет!"},
	}
}

func TestSaveAndGetTranscript(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	transcript := testTranscript("t1", time.Now().UTC())
	if err := store.SaveTranscript(ctx, transcript, testMessages()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if transcript.MessageCount != 2 {
		t.Errorf("message count = %d, want 2", transcript.MessageCount)
	}

	got, err := store.GetTranscript(ctx, "t1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.OriginalName != "chat.txt" || got.MessageCount != 2 {
		t.Errorf("got = %+v, want chat.txt with 2 messages", got)
	}

	messages, err := store.MessagesForTranscript(ctx, "t1")
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(messages))
	}
	// File order is preserved.
	if messages[0].Author != "Alice" || messages[1].Author != "Bob" {
		t.Errorf("order = %s, %s, want Alice, Bob", messages[0].Author, messages[1].Author)
	}
}

func TestGetTranscriptNotFound(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.GetTranscript(context.Background(), "missing"); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if _, err := store.LatestTranscript(context.Background()); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("latest on empty db = %v, want ErrNotFound", err)
	}
}

func TestLatestTranscript(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i, id := range []string{"old", "mid", "new"} {
		tr := testTranscript(id, base.Add(time.Duration(i)*time.Hour))
		if err := store.SaveTranscript(ctx, tr, nil); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	latest, err := store.LatestTranscript(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if latest.ID != "new" {
		t.Errorf("latest = %s, want new", latest.ID)
	}

	list, err := store.ListTranscripts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 || list[0].ID != "new" {
		t.Errorf("list = %v, want 3 entries with new first", list)
	}
}

func TestDeleteTranscriptCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveTranscript(ctx, testTranscript("t1", time.Now().UTC()), testMessages()); err != nil {
		t.Fatal(err)
	}
	if err := store.DeleteTranscript(ctx, "t1"); err != nil {
		t.Fatal(err)
	}

	messages, err := store.MessagesForTranscript(ctx, "t1")
	if err != nil {
		t.Fatal(err)
	}
	if len(messages) != 0 {
		t.Errorf("messages after delete = %d, want 0", len(messages))
	}

	if err := store.DeleteTranscript(ctx, "t1"); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("double delete = %v, want ErrNotFound", err)
	}
}

func TestDeleteTranscriptsBefore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	if err := store.SaveTranscript(ctx, testTranscript("stale", now.Add(-48*time.Hour)), nil); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveTranscript(ctx, testTranscript("fresh", now), nil); err != nil {
		t.Fatal(err)
	}

	deleted, err := store.DeleteTranscriptsBefore(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(deleted) != 1 || deleted[0] != "stale" {
		t.Errorf("deleted = %v, want [stale]", deleted)
	}

	if _, err := store.GetTranscript(ctx, "fresh"); err != nil {
		t.Errorf("fresh transcript should survive: %v", err)
	}
}

func TestRunSQLMaintenance(t *testing.T) {
	store := newTestStore(t)

	if err := store.RunSQLMaintenance(context.Background()); err != nil {
		t.Fatalf("maintenance: %v", err)
	}
}
