package advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/krishisakhi/backend/internal/domain"
	"github.com/krishisakhi/backend/internal/featureflags"
	"github.com/krishisakhi/backend/pkg/config"
)

// Generator produces a free-form answer when no rule matches.
type Generator interface {
	Generate(ctx context.Context, question string, lang domain.Language) (string, error)
}

// maxQuestionLength caps what the engine forwards to the model.
const maxQuestionLength = 200

const systemPrompt = "You are Krishi Sakhi, a farming assistant for smallholder farmers in Kerala, India. " +
	"Answer in at most four short numbered points."

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// LLMClient calls an OpenAI-compatible chat completions endpoint
type LLMClient struct {
	httpClient *resty.Client
	model      string
	logger     *slog.Logger
}

// NewLLMClient creates a client for cfg.Endpoint. Requests are not retried;
// the engine's circuit breaker handles a failing endpoint.
func NewLLMClient(cfg config.LLMConfig, logger *slog.Logger) *LLMClient {
	if logger == nil {
		logger = slog.Default()
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.Endpoint, "/")).
		SetTimeout(15*time.Second).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &LLMClient{httpClient: client, model: cfg.Model, logger: logger}
}

// GeneratorFor returns an LLM client when the GENERATIVE_CHAT flag is on and
// an endpoint is configured, and nil otherwise.
func GeneratorFor(cfg config.LLMConfig, flags featureflags.Flags, logger *slog.Logger) Generator {
	if !flags.Enabled(featureflags.GenerativeChat) || !cfg.Configured() {
		return nil
	}
	return NewLLMClient(cfg, logger)
}

// Generate asks the model for an answer in lang.
func (c *LLMClient) Generate(ctx context.Context, question string, lang domain.Language) (string, error) {
	prompt := systemPrompt
	if lang == domain.LanguageMalayalam {
		prompt += " Reply in Malayalam."
	}

	var response chatResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model: c.model,
			Messages: []chatMessage{
				{Role: "system", Content: prompt},
				{Role: "user", Content: question},
			},
			MaxTokens:   256,
			Temperature: 0.7,
		}).
		SetResult(&response).
		SetError(&response).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("failed to call chat model: %w", err)
	}

	if resp.IsError() {
		msg := resp.Status()
		if response.Error != nil {
			msg = response.Error.Message
		}
		c.logger.Warn("chat model returned error",
			slog.Int("status_code", resp.StatusCode()),
			slog.String("message", msg),
		)
		return "", fmt.Errorf("chat model error: %s", msg)
	}

	if len(response.Choices) == 0 {
		return "", errors.New("chat model returned no choices")
	}
	answer := strings.TrimSpace(response.Choices[0].Message.Content)
	if answer == "" {
		return "", errors.New("chat model returned an empty answer")
	}
	return answer, nil
}
