package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/chatscope-app/chatscope/internal/chat"
	"github.com/chatscope-app/chatscope/internal/database"
	"github.com/chatscope-app/chatscope/internal/metrics"
)

// UploadResponse reports the outcome of a transcript upload.
type UploadResponse struct {
	Status       string `json:"status"`
	TranscriptID string `json:"transcript_id"`
	Filename     string `json:"filename"`
	MessageCount int    `json:"message_count"`
	Message      string `json:"message"`
}

// Upload accepts a multipart transcript file, stores it under a
// uuid-prefixed name, parses it, persists the result, and makes it the
// active transcript.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.Uploads.MaxSizeBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.Error(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("file exceeds the %d byte upload limit", h.cfg.Uploads.MaxSizeBytes))
			return
		}
		h.Error(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		h.Error(w, http.StatusBadRequest, "no file provided")
		return
	}

	originalName := sanitizeFilename(header.Filename)
	if !strings.HasSuffix(strings.ToLower(originalName), h.cfg.Uploads.AllowedSuffix) {
		h.Error(w, http.StatusBadRequest,
			fmt.Sprintf("only %s files are accepted", h.cfg.Uploads.AllowedSuffix))
		return
	}

	// An 8-character uuid prefix keeps repeated uploads of the same file
	// from overwriting each other.
	transcriptID := uuid.NewString()
	savedName := transcriptID[:8] + "_" + originalName
	savedPath := filepath.Join(h.cfg.Uploads.Dir, savedName)

	if err := h.saveUploadedFile(savedPath, file); err != nil {
		if errors.Is(err, syscall.ENOSPC) {
			h.Error(w, http.StatusInsufficientStorage, "no space left on device")
			return
		}
		h.log.Error("failed to store upload", "path", savedPath, "error", err)
		h.Error(w, http.StatusInternalServerError, "failed to store uploaded file")
		return
	}

	parseStart := time.Now()
	messages, err := parseTranscriptFile(savedPath)
	if err != nil {
		h.log.Error("failed to parse upload", "path", savedPath, "error", err)
		h.Error(w, http.StatusBadRequest, "failed to parse transcript: "+err.Error())
		return
	}
	metrics.ParseDuration.Observe(time.Since(parseStart).Seconds())
	metrics.MessagesParsed.Add(float64(len(messages)))

	info, err := os.Stat(savedPath)
	if err != nil {
		h.log.Error("failed to stat upload", "path", savedPath, "error", err)
		h.Error(w, http.StatusInternalServerError, "failed to store uploaded file")
		return
	}

	transcript := &database.Transcript{
		ID:           transcriptID,
		Filename:     savedName,
		OriginalName: originalName,
		SizeBytes:    info.Size(),
		UploadedAt:   time.Now().UTC(),
	}
	if len(messages) > 0 {
		transcript.FirstDate = messages[0].Date
		transcript.LastDate = messages[len(messages)-1].Date
	}

	if err := h.store.SaveTranscript(r.Context(), transcript, toStoredMessages(transcriptID, messages)); err != nil {
		h.log.Error("failed to persist transcript", "transcript_id", transcriptID, "error", err)
		h.Error(w, http.StatusInternalServerError, "failed to persist transcript")
		return
	}

	h.session.SetCurrent(transcript, messages)
	metrics.TranscriptsUploaded.Inc()

	h.log.Info("transcript uploaded",
		"transcript_id", transcriptID,
		"filename", originalName,
		"messages", len(messages))

	h.JSON(w, http.StatusOK, UploadResponse{
		Status:       "success",
		TranscriptID: transcriptID,
		Filename:     originalName,
		MessageCount: len(messages),
		Message:      "file uploaded successfully",
	})
}

func (h *Handler) saveUploadedFile(path string, src io.Reader) error {
	if err := os.MkdirAll(h.cfg.Uploads.Dir, 0o750); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		if removeErr := os.Remove(path); removeErr != nil {
			h.log.Warn("failed to remove partial upload", "path", path, "error", removeErr)
		}
		return fmt.Errorf("write upload file: %w", err)
	}
	return nil
}

func parseTranscriptFile(path string) ([]chat.Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()
	return chat.ParseReader(f)
}

func toStoredMessages(transcriptID string, messages []chat.Message) []database.StoredMessage {
	stored := make([]database.StoredMessage, len(messages))
	for i, m := range messages {
		stored[i] = database.StoredMessage{
			TranscriptID: transcriptID,
			Timestamp:    m.Timestamp,
			Date:         m.Date,
			Time:         m.Time,
			Hour:         m.Hour,
			Weekday:      m.Weekday,
			Author:       m.Author,
			Text:         m.Text,
		}
	}
	return stored
}

// sanitizeFilename strips any path components and characters that could
// escape the upload directory.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == 0:
			return -1
		case r < 0x20:
			return -1
		}
		return r
	}, name)
	name = strings.TrimLeft(name, ".")
	if name == "" {
		name = "upload.txt"
	}
	return name
}
