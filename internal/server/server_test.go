package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chatscope-app/chatscope/internal/ai"
	"github.com/chatscope-app/chatscope/internal/config"
	"github.com/chatscope-app/chatscope/internal/database"
	"github.com/chatscope-app/chatscope/internal/server"
)

const sampleTranscript = `[01.01.2024, 10:00:00] Alice: Привет мир
[01.01.2024, 10:05:00] Bob: Привет! Как дела?
[01.01.2024, 11:30:00] Alice: Нормально, работаю
[02.01.2024, 09:15:00] Bob: Доброе утро
`

type testEnv struct {
	router http.Handler
	store  database.Store
}

// stubAI answers every question with a fixed string.
type stubAI struct {
	answer string
	err    error
}

func (s *stubAI) AskQuestion(_ context.Context, _ ai.Question) (string, error) {
	return s.answer, s.err
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Log:    config.LogConfig{Level: "error"},
		Server: config.ServerConfig{Addr: ":0", ReadTimeout: 5 * time.Second, WriteTimeout: 5 * time.Second, ShutdownTimeout: time.Second},
		Database: config.DatabaseConfig{
			Path:         filepath.Join(t.TempDir(), "test.db"),
			MaxOpenConns: 1,
			MaxIdleConns: 1,
		},
		Uploads: config.UploadsConfig{
			Dir:           t.TempDir(),
			MaxSizeBytes:  1 << 20,
			Retention:     24 * time.Hour,
			AllowedSuffix: ".txt",
		},
		Analysis:  config.AnalysisConfig{MinWordLength: 2, TopWords: 50, ContextSize: 5},
		Scheduler: config.SchedulerConfig{UploadPruneInterval: time.Hour, SQLMaintenanceCron: "0 4 * * *"},
	}
}

func newTestEnv(t *testing.T, aiClient ai.Client) *testEnv {
	t.Helper()

	cfg := testConfig(t)
	db, err := database.NewDB(cfg.Database)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db) })
	store := database.NewStore(db, nil)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := server.NewHandler(cfg, store, server.NewSession(cfg.Analysis), aiClient, log)
	return &testEnv{router: server.NewRouter(h, log), store: store}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) upload(t *testing.T, filename, content string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return e.do(t, req)
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestUploadAndAnalysis(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)

	rec := env.upload(t, "chat.txt", sampleTranscript)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload status = %d, body %s", rec.Code, rec.Body.String())
	}

	var up server.UploadResponse
	decodeJSON(t, rec, &up)
	if up.Status != "success" {
		t.Errorf("status = %q, want success", up.Status)
	}
	if up.MessageCount != 4 {
		t.Errorf("message count = %d, want 4", up.MessageCount)
	}
	if up.Filename != "chat.txt" {
		t.Errorf("filename = %q, want chat.txt", up.Filename)
	}
	if up.TranscriptID == "" {
		t.Error("transcript id is empty")
	}

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/analysis", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("analysis status = %d", rec.Code)
	}
	var report struct {
		Basic struct {
			TotalMessages int `json:"total_messages"`
		} `json:"basic"`
	}
	decodeJSON(t, rec, &report)
	if report.Basic.TotalMessages != 4 {
		t.Errorf("total messages = %d, want 4", report.Basic.TotalMessages)
	}
}

func TestUploadPersistsTranscript(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)

	rec := env.upload(t, "chat.txt", sampleTranscript)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload status = %d", rec.Code)
	}
	var up server.UploadResponse
	decodeJSON(t, rec, &up)

	stored, err := env.store.GetTranscript(context.Background(), up.TranscriptID)
	if err != nil {
		t.Fatalf("get transcript: %v", err)
	}
	if stored.MessageCount != 4 {
		t.Errorf("stored message count = %d, want 4", stored.MessageCount)
	}
	if stored.FirstDate != "2024-01-01" || stored.LastDate != "2024-01-02" {
		t.Errorf("date span = %s..%s, want 2024-01-01..2024-01-02", stored.FirstDate, stored.LastDate)
	}
	if !strings.HasSuffix(stored.Filename, "_chat.txt") {
		t.Errorf("stored filename = %q, want uuid prefix and _chat.txt suffix", stored.Filename)
	}
}

func TestUploadRejectsWrongSuffix(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)

	rec := env.upload(t, "chat.csv", "a,b,c")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp map[string]string
	decodeJSON(t, rec, &resp)
	if resp["error"] == "" {
		t.Error("expected error message in response")
	}
}

func TestUploadWithoutFile(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := env.do(t, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCurrentFile(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/current_file", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var empty server.CurrentFileResponse
	decodeJSON(t, rec, &empty)
	if empty.IsLoaded {
		t.Error("is_loaded = true before any upload")
	}
	if empty.Filename != "no file loaded" {
		t.Errorf("filename = %q, want \"no file loaded\"", empty.Filename)
	}

	if rec := env.upload(t, "chat.txt", sampleTranscript); rec.Code != http.StatusOK {
		t.Fatalf("upload status = %d", rec.Code)
	}

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/current_file", nil))
	var loaded server.CurrentFileResponse
	decodeJSON(t, rec, &loaded)
	if !loaded.IsLoaded {
		t.Error("is_loaded = false after upload")
	}
	if loaded.Filename != "chat.txt" {
		t.Errorf("filename = %q, want chat.txt", loaded.Filename)
	}
	if loaded.MessageCount != 4 {
		t.Errorf("message count = %d, want 4", loaded.MessageCount)
	}
}

func TestAnalysisWithoutTranscript(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)

	for _, path := range []string{
		"/api/analysis",
		"/api/refresh",
		"/api/search?word=hello",
		"/api/context?datetime=2024-01-01T10:00:00",
		"/api/day_analysis?date=2024-01-01",
		"/api/messages_by_hour?hour=10",
	} {
		rec := env.do(t, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, rec.Code)
		}
	}
}

func TestSearch(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	if rec := env.upload(t, "chat.txt", sampleTranscript); rec.Code != http.StatusOK {
		t.Fatalf("upload status = %d", rec.Code)
	}

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/search?word="+url.QueryEscape("привет"), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var result struct {
		Word           string `json:"word"`
		UniqueMessages int    `json:"unique_messages"`
	}
	decodeJSON(t, rec, &result)
	if result.Word != "привет" {
		t.Errorf("word = %q, want привет", result.Word)
	}
	if result.UniqueMessages != 2 {
		t.Errorf("unique messages = %d, want 2", result.UniqueMessages)
	}

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/search?word=", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty word status = %d, want 400", rec.Code)
	}
}

func TestContextEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	if rec := env.upload(t, "chat.txt", sampleTranscript); rec.Code != http.StatusOK {
		t.Fatalf("upload status = %d", rec.Code)
	}

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/context?datetime=2024-01-01T10:05:00", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var result struct {
		TargetIndex int `json:"target_index"`
		Total       int `json:"total"`
	}
	decodeJSON(t, rec, &result)
	if result.Total != 4 {
		t.Errorf("total = %d, want 4", result.Total)
	}
	if result.TargetIndex != 1 {
		t.Errorf("target index = %d, want 1", result.TargetIndex)
	}

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/context?datetime=not-a-date", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad datetime status = %d, want 400", rec.Code)
	}

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/context?datetime=2030-01-01T00:00:00", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing datetime status = %d, want 404", rec.Code)
	}

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/context?datetime=2024-01-01T10:05:00&context_size=0", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("zero context_size status = %d, want 400", rec.Code)
	}
}

func TestDayAnalysisEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	if rec := env.upload(t, "chat.txt", sampleTranscript); rec.Code != http.StatusOK {
		t.Fatalf("upload status = %d", rec.Code)
	}

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/day_analysis?date=2024-01-01", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var day struct {
		Date  string `json:"date"`
		Basic struct {
			TotalMessages int `json:"total_messages"`
		} `json:"basic"`
		FirstMessageTime string `json:"first_message_time"`
	}
	decodeJSON(t, rec, &day)
	if day.Date != "2024-01-01" {
		t.Errorf("date = %q, want 2024-01-01", day.Date)
	}
	if day.Basic.TotalMessages != 3 {
		t.Errorf("day messages = %d, want 3", day.Basic.TotalMessages)
	}
	if day.FirstMessageTime != "10:00:00" {
		t.Errorf("first message time = %q, want 10:00:00", day.FirstMessageTime)
	}

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/day_analysis?date=01.01.2024", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad date status = %d, want 400", rec.Code)
	}

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/day_analysis?date=2030-05-05", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("empty day status = %d, want 404", rec.Code)
	}
}

func TestMessagesByHourEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	if rec := env.upload(t, "chat.txt", sampleTranscript); rec.Code != http.StatusOK {
		t.Fatalf("upload status = %d", rec.Code)
	}

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/messages_by_hour?hour=10", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var slice struct {
		Hour          int `json:"hour"`
		TotalMessages int `json:"total_messages"`
	}
	decodeJSON(t, rec, &slice)
	if slice.Hour != 10 || slice.TotalMessages != 2 {
		t.Errorf("hour/total = %d/%d, want 10/2", slice.Hour, slice.TotalMessages)
	}

	for _, q := range []string{"hour=24", "hour=-1", "hour=ten"} {
		rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/messages_by_hour?"+q, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, rec.Code)
		}
	}
}

func TestRefresh(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	if rec := env.upload(t, "chat.txt", sampleTranscript); rec.Code != http.StatusOK {
		t.Fatalf("upload status = %d", rec.Code)
	}

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/refresh", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Status   string          `json:"status"`
		Analysis json.RawMessage `json:"analysis"`
	}
	decodeJSON(t, rec, &resp)
	if resp.Status != "success" {
		t.Errorf("status = %q, want success", resp.Status)
	}
	if len(resp.Analysis) == 0 {
		t.Error("analysis payload is empty")
	}
}

func TestAskAI(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, &stubAI{answer: "в чате четыре сообщения"})
	if rec := env.upload(t, "chat.txt", sampleTranscript); rec.Code != http.StatusOK {
		t.Fatalf("upload status = %d", rec.Code)
	}

	body := strings.NewReader(`{"question": "сколько сообщений в чате?"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/chat/ask", body)
	req.Header.Set("Content-Type", "application/json")

	rec := env.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp server.AskResponse
	decodeJSON(t, rec, &resp)
	if resp.Status != "success" || resp.Answer == "" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestAskAIValidation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, &stubAI{answer: "ответ"})
	if rec := env.upload(t, "chat.txt", sampleTranscript); rec.Code != http.StatusOK {
		t.Fatalf("upload status = %d", rec.Code)
	}

	tests := []struct {
		name string
		body string
		want int
	}{
		{"empty question", `{"question": "  "}`, http.StatusBadRequest},
		{"invalid json", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/chat/ask", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if rec := env.do(t, req); rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestAskAINotConfigured(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/chat/ask", strings.NewReader(`{"question": "привет"}`))
	req.Header.Set("Content-Type", "application/json")
	if rec := env.do(t, req); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var health server.HealthResponse
	decodeJSON(t, rec, &health)
	if health.Status != "healthy" {
		t.Errorf("status = %q, want healthy", health.Status)
	}
	if health.Checks["database"].Status != "pass" {
		t.Errorf("database check = %+v, want pass", health.Checks["database"])
	}
	if health.Checks["transcript"].Status != "fail" {
		t.Errorf("transcript check = %+v, want fail", health.Checks["transcript"])
	}
	if health.Checks["ai"].Status != "fail" {
		t.Errorf("ai check = %+v, want fail", health.Checks["ai"])
	}
}

func TestNotFoundRoute(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/nonexistent", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
