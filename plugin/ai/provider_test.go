package ai

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limited", &openai.APIError{HTTPStatusCode: 429}, true},
		{"server error", &openai.APIError{HTTPStatusCode: 500}, true},
		{"bad request", &openai.APIError{HTTPStatusCode: 400}, false},
		{"unauthorized", &openai.APIError{HTTPStatusCode: 401}, false},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"canceled", context.Canceled, false},
		{"transport error", fmt.Errorf("connection reset"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryable(tt.err))
		})
	}
}

func TestDoWithRetry(t *testing.T) {
	p := &Provider{
		config:         Config{MaxRetries: 3, Timeout: time.Second},
		logger:         slog.Default(),
		retryBaseDelay: time.Millisecond,
	}

	t.Run("succeeds after transient failure", func(t *testing.T) {
		calls := 0
		err := p.doWithRetry(context.Background(), func(ctx context.Context) error {
			calls++
			if calls < 2 {
				return &openai.APIError{HTTPStatusCode: 503}
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("stops on non-retryable error", func(t *testing.T) {
		calls := 0
		err := p.doWithRetry(context.Background(), func(ctx context.Context) error {
			calls++
			return &openai.APIError{HTTPStatusCode: 401}
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("respects cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := p.doWithRetry(ctx, func(ctx context.Context) error {
			return &openai.APIError{HTTPStatusCode: 503}
		})
		require.Error(t, err)
	})
}
