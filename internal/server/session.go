package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/chatscope-app/chatscope/internal/analysis"
	"github.com/chatscope-app/chatscope/internal/chat"
	"github.com/chatscope-app/chatscope/internal/config"
	"github.com/chatscope-app/chatscope/internal/database"
	"github.com/chatscope-app/chatscope/internal/metrics"
)

// ErrNoTranscript is returned when an operation needs an active transcript
// and none has been uploaded yet.
var ErrNoTranscript = errors.New("no transcript loaded")

// Session holds the active transcript, its parsed messages and the memoized
// full report. It is safe for concurrent use by the HTTP handlers.
type Session struct {
	mu         sync.RWMutex
	analysis   config.AnalysisConfig
	transcript *database.Transcript
	messages   []chat.Message
	analyzer   *analysis.Analyzer
	report     *analysis.Report
}

// NewSession returns an empty session with the given report tuning.
func NewSession(analysisCfg config.AnalysisConfig) *Session {
	return &Session{analysis: analysisCfg}
}

// SetCurrent replaces the active transcript and drops the memoized report.
func (s *Session) SetCurrent(transcript *database.Transcript, messages []chat.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = transcript
	s.messages = messages
	s.analyzer = analysis.New(messages)
	s.report = nil
}

// Current returns the active transcript, or false when nothing is loaded.
func (s *Session) Current() (*database.Transcript, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transcript, s.transcript != nil
}

// Messages returns the active transcript's parsed messages.
func (s *Session) Messages() ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.transcript == nil {
		return nil, ErrNoTranscript
	}
	return s.messages, nil
}

// Analyzer returns the statistics engine over the active transcript.
func (s *Session) Analyzer() (*analysis.Analyzer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.analyzer == nil {
		return nil, ErrNoTranscript
	}
	return s.analyzer, nil
}

// Report returns the memoized full report, computing it on first use.
func (s *Session) Report() (*analysis.Report, error) {
	s.mu.RLock()
	if s.report != nil {
		defer s.mu.RUnlock()
		return s.report, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.analyzer == nil {
		return nil, ErrNoTranscript
	}
	if s.report == nil {
		start := time.Now()
		s.report = s.analyzer.FullAnalysisWith(s.analysis.MinWordLength, s.analysis.TopWords)
		metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	}
	return s.report, nil
}

// Invalidate drops the memoized report so the next access recomputes it.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report = nil
}

// toChatMessages converts persisted messages back into the parser's form.
func toChatMessages(stored []database.StoredMessage) []chat.Message {
	messages := make([]chat.Message, len(stored))
	for i, m := range stored {
		messages[i] = chat.Message{
			Timestamp: m.Timestamp,
			Date:      m.Date,
			Time:      m.Time,
			Hour:      m.Hour,
			Weekday:   m.Weekday,
			Author:    m.Author,
			Text:      m.Text,
		}
	}
	return messages
}

// Restore seeds the session from the most recent stored transcript, if any.
// Called once at startup so the API survives restarts.
func (s *Session) Restore(ctx context.Context, store database.Store) error {
	latest, err := store.LatestTranscript(ctx)
	if errors.Is(err, database.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	stored, err := store.MessagesForTranscript(ctx, latest.ID)
	if err != nil {
		return err
	}

	s.SetCurrent(latest, toChatMessages(stored))
	return nil
}
