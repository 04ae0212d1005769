package chat_test

import (
	"strings"
	"testing"
	"time"

	"github.com/chatscope-app/chatscope/internal/chat"
)

func TestParseLines_SingleMessage(t *testing.T) {
	t.Parallel()

	msgs := chat.ParseLines([]string{"[01.01.2024, 10:00:00] Alice: Hello"})

	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}

	m := msgs[0]
	want := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	if !m.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", m.Timestamp, want)
	}
	if m.Date != "2024-01-01" {
		t.Errorf("date = %q, want %q", m.Date, "2024-01-01")
	}
	if m.Time != "10:00:00" {
		t.Errorf("time = %q, want %q", m.Time, "10:00:00")
	}
	if m.Hour != 10 {
		t.Errorf("hour = %d, want 10", m.Hour)
	}
	if m.Weekday != 0 { // 2024-01-01 is a Monday
		t.Errorf("weekday = %d, want 0", m.Weekday)
	}
	if m.Author != "Alice" {
		t.Errorf("author = %q, want %q", m.Author, "Alice")
	}
	if m.Text != "Hello" {
		t.Errorf("text = %q, want %q", m.Text, "Hello")
	}
}

func TestParseLines_ContinuationMerging(t *testing.T) {
	t.Parallel()

	msgs := chat.ParseLines([]string{
		"[01.01.2024, 10:00:00] Alice: first line",
		"second line",
		"third line",
	})

	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if got, want := msgs[0].Text, "first line second line third line"; got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
}

func TestParseLines_InvisibleCharacterTolerance(t *testing.T) {
	t.Parallel()

	plain := chat.ParseLines([]string{"[01.01.2024, 10:00:00] Alice: Hello"})
	prefixed := chat.ParseLines([]string{"‎[01.01.2024, 10:00:00] Alice: Hello"})

	if len(plain) != 1 || len(prefixed) != 1 {
		t.Fatalf("expected 1 message each, got %d and %d", len(plain), len(prefixed))
	}
	if plain[0] != prefixed[0] {
		t.Errorf("prefixed parse = %+v, want %+v", prefixed[0], plain[0])
	}
}

func TestParseLines_MessageCountConservation(t *testing.T) {
	t.Parallel()

	lines := []string{
		"[01.01.2024, 10:00:00] Alice: Hello",
		"[01.01.2024, 10:05:00] Bob: Hi Alice!",
		"[01.01.2024, 10:05:30] Bob: How are you?",
		"[02.01.2024, 09:00:00] Alice: Good morning",
	}

	msgs := chat.ParseLines(lines)
	if len(msgs) != len(lines) {
		t.Errorf("expected %d messages, got %d", len(lines), len(msgs))
	}
}

func TestParseLines_InvalidCalendarDateIsContinuation(t *testing.T) {
	t.Parallel()

	msgs := chat.ParseLines([]string{
		"[01.01.2024, 10:00:00] Alice: Hello",
		"[99.99.2024, 10:05:00] Bob: not a real date",
	})

	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if got, want := msgs[0].Text, "Hello [99.99.2024, 10:05:00] Bob: not a real date"; got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
}

func TestParseLines_LeadingGarbageDiscarded(t *testing.T) {
	t.Parallel()

	msgs := chat.ParseLines([]string{
		"random preamble before any message",
		"[01.01.2024, 10:00:00] Alice: Hello",
	})

	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Text != "Hello" {
		t.Errorf("text = %q, want %q", msgs[0].Text, "Hello")
	}
}

func TestParseLines_BlankLinesSkipped(t *testing.T) {
	t.Parallel()

	msgs := chat.ParseLines([]string{
		"[01.01.2024, 10:00:00] Alice: Hello",
		"",
		"   ",
		"‎",
		"[01.01.2024, 10:05:00] Bob: Hi",
	})

	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Text != "Hello" || msgs[1].Text != "Hi" {
		t.Errorf("texts = %q, %q", msgs[0].Text, msgs[1].Text)
	}
}

func TestParseLines_AuthorAndTextTrimmed(t *testing.T) {
	t.Parallel()

	msgs := chat.ParseLines([]string{"[01.01.2024, 10:00:00]  Alice :   spaced out  "})

	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Author != "Alice" {
		t.Errorf("author = %q, want %q", msgs[0].Author, "Alice")
	}
	if msgs[0].Text != "spaced out" {
		t.Errorf("text = %q, want %q", msgs[0].Text, "spaced out")
	}
}

func TestParseLines_Empty(t *testing.T) {
	t.Parallel()

	if msgs := chat.ParseLines(nil); len(msgs) != 0 {
		t.Errorf("expected no messages, got %d", len(msgs))
	}
}

func TestParseReader(t *testing.T) {
	t.Parallel()

	input := "[01.01.2024, 10:00:00] Alice: Hello\n[01.01.2024, 10:05:00] Bob: Hi\n"
	msgs, err := chat.ParseReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseReader returned error: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[1].Author != "Bob" {
		t.Errorf("author = %q, want %q", msgs[1].Author, "Bob")
	}
}
