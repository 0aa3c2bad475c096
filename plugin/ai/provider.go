// Package ai provides the LLM-backed intent interpretation for the
// assistant. All provider calls are rate limited and retried with
// exponential backoff; calendar writes never go through this package.
package ai

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// Config holds the LLM provider settings.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	MaxRetries int
	Timeout    time.Duration
}

// Provider wraps an OpenAI-compatible chat completion endpoint.
type Provider struct {
	client  *openai.Client
	config  Config
	limiter *rate.Limiter
	logger  *slog.Logger

	// retryBaseDelay is the first backoff step, doubled per attempt.
	retryBaseDelay time.Duration
}

// NewProvider creates a provider for an OpenAI-compatible endpoint.
func NewProvider(config Config, logger *slog.Logger) *Provider {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		// Burst of 2 smooths the double call a clarification round
		// trip makes; sustained rate stays at one request per second.
		limiter:        rate.NewLimiter(rate.Every(time.Second), 2),
		logger:         logger,
		retryBaseDelay: time.Second,
	}
}

// Chat sends a system prompt plus conversation messages and returns the
// assistant's text completion.
func (p *Provider) Chat(ctx context.Context, system string, messages []openai.ChatCompletionMessage) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", errors.Wrap(err, "rate limiter wait")
	}

	request := openai.ChatCompletionRequest{
		Model:       p.config.Model,
		Temperature: 0.1,
		Messages:    append([]openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleSystem, Content: system}}, messages...),
	}

	var content string
	err := p.doWithRetry(ctx, func(ctx context.Context) error {
		resp, err := p.client.CreateChatCompletion(ctx, request)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return errors.New("empty completion response")
		}
		content = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

// Validate performs a minimal completion to verify credentials and
// connectivity before the assistant starts.
func (p *Provider) Validate(ctx context.Context) error {
	_, err := p.Chat(ctx, "Reply with the single word: ok", []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: "ping"},
	})
	return errors.Wrap(err, "llm validation failed")
}

// doWithRetry runs fn with a per-attempt timeout, retrying transient
// failures with exponential backoff.
func (p *Provider) doWithRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	backoff := p.retryBaseDelay
	if backoff <= 0 {
		backoff = time.Second
	}
	for attempt := 0; attempt < p.config.MaxRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
		err := fn(attemptCtx)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isRetryable(err) || ctx.Err() != nil {
			return err
		}
		p.logger.Warn("llm request failed, retrying",
			slog.Int("attempt", attempt+1),
			slog.Duration("backoff", backoff),
			slog.Any("err", err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return errors.Wrapf(lastErr, "llm request failed after %d attempts", p.config.MaxRetries)
}

func isRetryable(err error) bool {
	if stderrors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *openai.APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}
	// Timeouts and transport errors are worth another attempt.
	return true
}
