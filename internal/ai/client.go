// Package ai implements the conversational layer over Google's Gemini API.
// It answers free-form questions about an analyzed chat, grounding the model
// in the computed statistics and a sample of the actual messages.
package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/chatscope-app/chatscope/internal/analysis"
	"github.com/chatscope-app/chatscope/internal/chat"
	"github.com/chatscope-app/chatscope/internal/config"
)

// Turn is one exchange in an ongoing conversation with the model.
type Turn struct {
	Role string `json:"role"` // "user" or "model"
	Text string `json:"text"`
}

// Question carries everything the model needs to answer one user question.
type Question struct {
	Text    string
	Report  *analysis.Report
	Sample  []chat.Message
	History []Turn
	Day     *analysis.DayReport
}

// Client defines the interface for AI operations used by the server layer.
type Client interface {
	AskQuestion(ctx context.Context, q Question) (string, error)
}

type sdkClient struct {
	genaiClient   *genai.Client
	log           *slog.Logger
	contentConfig *genai.GenerateContentConfig
	modelName     string
	timeout       time.Duration
	maxRetries    int
	retryDelay    time.Duration
}

// NewClient creates a new Gemini AI client with the provided configuration.
// It initializes the connection to the Gemini API and sets up necessary parameters.
func NewClient(ctx context.Context, cfg config.AIConfig, log *slog.Logger) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	temperature := cfg.Temperature
	baseCfg := &genai.GenerateContentConfig{
		Temperature: &temperature,
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: AnalystSystemInstruction}},
		},
	}

	logger := log.With("component", "ai_client")
	logger.Info("Gemini client initialized successfully", "model", cfg.Model)
	return &sdkClient{
		genaiClient:   gi,
		log:           logger,
		contentConfig: baseCfg,
		modelName:     cfg.Model,
		timeout:       cfg.Timeout,
		maxRetries:    cfg.MaxRetries,
		retryDelay:    2 * time.Second,
	}, nil
}

// AskQuestion sends the question to the model. On the first turn of a
// conversation the full statistics summary and a message sample are sent as
// grounding context; on later turns the caller-supplied history carries the
// context forward.
func (c *sdkClient) AskQuestion(ctx context.Context, q Question) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	c.log.DebugContext(ctx, "Asking question",
		"history_len", len(q.History), "has_day", q.Day != nil)

	var contents []*genai.Content
	if len(q.History) > 0 {
		for _, turn := range q.History {
			role := genai.Role(genai.RoleUser)
			if turn.Role == "model" {
				role = genai.RoleModel
			}
			contents = append(contents, genai.NewContentFromText(turn.Text, role))
		}
	} else {
		var sb strings.Builder
		sb.WriteString("Вот статистика и анализ чата:\n\n")
		sb.WriteString(FormatAnalysisSummary(q.Report))
		if q.Day != nil {
			sb.WriteString(formatDayContext(q.Day))
		}
		if len(q.Sample) > 0 {
			sb.WriteString(formatMessagesSample(q.Sample))
		}
		sb.WriteString("\nТеперь отвечай на вопросы пользователя о его переписке.")
		contents = append(contents, genai.NewContentFromText(sb.String(), genai.RoleUser))
	}
	contents = append(contents, genai.NewContentFromText(q.Text, genai.RoleUser))

	resp, err := c.generateContentWithRetries(ctx, contents)
	if err != nil {
		c.log.ErrorContext(ctx, "Gemini answer generation failed", "error", err)
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}

	return c.extractTextFromResponse(ctx, resp)
}

func (c *sdkClient) generateContentWithRetries(ctx context.Context, contents []*genai.Content) (*genai.GenerateContentResponse, error) {
	var resp *genai.GenerateContentResponse
	var err error

	for i := 0; i <= c.maxRetries; i++ {
		resp, err = c.genaiClient.Models.GenerateContent(ctx, c.modelName, contents, c.contentConfig)
		if err == nil {
			return resp, nil
		}

		c.log.WarnContext(ctx, "Gemini API call failed, checking for retry",
			"attempt", i+1, "max_retries", c.maxRetries, "error", err)

		var apiErr *genai.APIError
		if errors.As(err, &apiErr) && (apiErr.Code == 500 || apiErr.Code == 503) {
			if i < c.maxRetries {
				c.log.InfoContext(ctx, "Retrying Gemini API call due to retriable APIError",
					"delay", c.retryDelay, "code", apiErr.Code)
				time.Sleep(c.retryDelay)
				continue
			}
			return nil, fmt.Errorf("gemini API call failed after %d retries (APIError code %d): %w",
				c.maxRetries, apiErr.Code, err)
		}

		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}
	return nil, err
}

func (c *sdkClient) extractTextFromResponse(ctx context.Context, resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		c.log.WarnContext(ctx, "Gemini candidate has no content",
			"finish_reason", candidate.FinishReason)
		return "", fmt.Errorf("gemini returned empty content (finish reason: %s)", candidate.FinishReason)
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		sb.WriteString(part.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("gemini returned empty text")
	}
	return text, nil
}
