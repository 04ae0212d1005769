package server_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chatscope-app/chatscope/internal/chat"
	"github.com/chatscope-app/chatscope/internal/config"
	"github.com/chatscope-app/chatscope/internal/database"
	"github.com/chatscope-app/chatscope/internal/server"
)

func newSession() *server.Session {
	return server.NewSession(config.AnalysisConfig{MinWordLength: 2, TopWords: 50, ContextSize: 5})
}

func sessionMessages() []chat.Message {
	return []chat.Message{
		chat.NewMessage(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), "Alice", "Привет"),
		chat.NewMessage(time.Date(2024, 1, 1, 10, 5, 0, 0, time.UTC), "Bob", "Привет!"),
	}
}

func TestSessionEmpty(t *testing.T) {
	t.Parallel()
	s := newSession()

	if _, ok := s.Current(); ok {
		t.Error("Current() reports a transcript on an empty session")
	}
	if _, err := s.Report(); !errors.Is(err, server.ErrNoTranscript) {
		t.Errorf("Report() error = %v, want ErrNoTranscript", err)
	}
	if _, err := s.Analyzer(); !errors.Is(err, server.ErrNoTranscript) {
		t.Errorf("Analyzer() error = %v, want ErrNoTranscript", err)
	}
	if _, err := s.Messages(); !errors.Is(err, server.ErrNoTranscript) {
		t.Errorf("Messages() error = %v, want ErrNoTranscript", err)
	}
}

func TestSessionReportMemoized(t *testing.T) {
	t.Parallel()
	s := newSession()
	s.SetCurrent(&database.Transcript{ID: "t1", OriginalName: "chat.txt"}, sessionMessages())

	first, err := s.Report()
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	second, err := s.Report()
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if first != second {
		t.Error("second Report() call recomputed instead of reusing")
	}

	s.Invalidate()
	third, err := s.Report()
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if third == first {
		t.Error("Invalidate() did not drop the memoized report")
	}
}

func TestSessionSetCurrentReplaces(t *testing.T) {
	t.Parallel()
	s := newSession()
	s.SetCurrent(&database.Transcript{ID: "t1"}, sessionMessages())

	old, err := s.Report()
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	s.SetCurrent(&database.Transcript{ID: "t2"}, sessionMessages()[:1])
	current, ok := s.Current()
	if !ok || current.ID != "t2" {
		t.Fatalf("Current() = %+v, want transcript t2", current)
	}
	fresh, err := s.Report()
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if fresh == old {
		t.Error("SetCurrent() kept the previous transcript's report")
	}
	if fresh.Basic.TotalMessages != 1 {
		t.Errorf("total messages = %d, want 1", fresh.Basic.TotalMessages)
	}
}

func TestSessionRestore(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)

	rec := env.upload(t, "chat.txt", sampleTranscript)
	if rec.Code != 200 {
		t.Fatalf("upload status = %d", rec.Code)
	}

	restored := newSession()
	if err := restored.Restore(context.Background(), env.store); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	current, ok := restored.Current()
	if !ok {
		t.Fatal("Restore() left the session empty")
	}
	if current.OriginalName != "chat.txt" {
		t.Errorf("original name = %q, want chat.txt", current.OriginalName)
	}
	messages, err := restored.Messages()
	if err != nil {
		t.Fatalf("Messages() error = %v", err)
	}
	if len(messages) != 4 {
		t.Errorf("restored messages = %d, want 4", len(messages))
	}
}

func TestSessionRestoreEmptyStore(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)

	s := newSession()
	if err := s.Restore(context.Background(), env.store); err != nil {
		t.Fatalf("Restore() on empty store error = %v", err)
	}
	if _, ok := s.Current(); ok {
		t.Error("Restore() on empty store loaded a transcript")
	}
}
