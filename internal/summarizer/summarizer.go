package summarizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/DeafMist/news-briefing/internal/models"
)

// Placeholder texts shown in the digest in place of a summary.
const (
	NoContentSummary = "No content provided to summarize."
	FailedSummary    = "Could not summarize this article."
)

// SystemPrompt instructs the model to produce a single short paragraph.
const SystemPrompt = "You are a newsletter assistant. Summarize the following news article content into one concise paragraph (3-4 sentences)."

const defaultTemperature = 0.3

var (
	// ErrNoContent means there was nothing to summarize; no request was made.
	ErrNoContent = errors.New("no content to summarize")
	// ErrCompletion means the language model call failed or returned nothing usable.
	ErrCompletion = errors.New("completion failed")
)

// OpenAIConfig configures the production completion model.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// NewOpenAIModel builds a langchaingo model backed by the OpenAI chat completions API.
func NewOpenAIModel(cfg OpenAIConfig) (llms.Model, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	opts := []openai.Option{openai.WithToken(cfg.APIKey)}
	if cfg.Model != "" {
		opts = append(opts, openai.WithModel(cfg.Model))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai model: %w", err)
	}
	return model, nil
}

// Service turns article text into a short summary paragraph.
type Service struct {
	model          llms.Model
	requestTimeout time.Duration
	log            *slog.Logger
}

// NewService creates a summarizer around model. A non-positive timeout defaults to 60s.
func NewService(model llms.Model, requestTimeout time.Duration, logger *slog.Logger) *Service {
	if requestTimeout <= 0 {
		requestTimeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{model: model, requestTimeout: requestTimeout, log: logger}
}

// Summarize never fails: on empty input or any model error the Summary carries
// the matching placeholder text and the classified error.
func (s *Service) Summarize(ctx context.Context, text string) models.Summary {
	if strings.TrimSpace(text) == "" {
		return models.Summary{Text: NoContentSummary, Err: ErrNoContent}
	}

	s.log.Info("summarizing article", slog.Int("chars", len(text)))

	summary, err := s.complete(ctx, text)
	if err != nil {
		s.log.Error("summarize article", slog.Any("err", err))
		return models.Summary{Text: FailedSummary, Err: err}
	}

	s.log.Info("summary generated", slog.Int("chars", len(summary)))
	return models.Summary{Text: summary}
}

func (s *Service) complete(ctx context.Context, text string) (string, error) {
	if s.model == nil {
		return "", fmt.Errorf("%w: model is not initialized", ErrCompletion)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, SystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, text),
	}

	resp, err := s.model.GenerateContent(callCtx, messages, llms.WithTemperature(defaultTemperature))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCompletion, err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", fmt.Errorf("%w: no choices returned", ErrCompletion)
	}

	summary := strings.TrimSpace(resp.Choices[0].Content)
	if summary == "" {
		return "", fmt.Errorf("%w: empty completion", ErrCompletion)
	}
	return summary, nil
}
