package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	commonhttp "indiamart-audit/internal/common/http"
	"indiamart-audit/internal/common/logger"
	"indiamart-audit/internal/common/metrics"
)

var (
	ErrMissingCredentials = errors.New("LLM_CREDENTIALS_MISSING")
	ErrLLMTimeout         = errors.New("LLM_TIMEOUT")
	ErrLLMCallFailed      = errors.New("LLM_CALL_FAILED")
	ErrLLMEmptyReply      = errors.New("LLM_EMPTY_REPLY")
)

// StatusError is returned for non-2xx replies.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	config *Config
	http   *commonhttp.Client
	logger logger.Logger
}

func NewClient(config *Config, log logger.Logger) (*Client, error) {
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, fmt.Errorf("%w: api key is not set", ErrMissingCredentials)
	}
	if strings.TrimSpace(config.BaseURL) == "" {
		return nil, fmt.Errorf("%w: base url is not set", ErrMissingCredentials)
	}
	cfg := *config
	cfg.applyDefaults()

	return &Client{
		config: &cfg,
		http:   commonhttp.NewClient(cfg.Timeout, cfg.MaxIdleConns),
		logger: log.WithFields(map[string]interface{}{
			"component": "llm",
			"model":     cfg.Model,
		}),
	}, nil
}

// Options returns the configured default call options.
func (c *Client) Options() Options {
	return c.config.DefaultOptions()
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Call sends one system/user prompt pair. Transport errors, 429 and 5xx are
// retried with exponential backoff; other non-2xx statuses fail immediately.
func (c *Client) Call(ctx context.Context, systemPrompt, userPrompt string, opts Options) (*Response, error) {
	start := time.Now()
	resp, err := c.call(ctx, systemPrompt, userPrompt, opts)

	status := "success"
	if err != nil {
		status = "error"
		if errors.Is(err, ErrLLMTimeout) {
			status = "timeout"
		}
	}
	metrics.LLMCallDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	return resp, err
}

func (c *Client) call(ctx context.Context, systemPrompt, userPrompt string, opts Options) (*Response, error) {
	reqBody := chatRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
	if opts.JSONMode {
		reqBody.ResponseFormat = map[string]string{"type": "json_object"}
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrLLMCallFailed, err)
	}

	url := strings.TrimRight(c.config.BaseURL, "/") + "/chat/completions"
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.backoff(attempt)):
			case <-ctx.Done():
				return nil, contextError(ctx, lastErr)
			}
		}

		out, retry, err := c.attempt(ctx, url, body)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, contextError(ctx, err)
		}
		if !retry {
			break
		}
		c.logger.Warn("llm call failed, retrying", map[string]interface{}{
			"attempt":    attempt + 1,
			"maxRetries": c.config.MaxRetries,
			"error":      err.Error(),
		})
	}

	var netErr net.Error
	if errors.As(lastErr, &netErr) && netErr.Timeout() {
		return nil, fmt.Errorf("%w: %w", ErrLLMTimeout, lastErr)
	}
	return nil, fmt.Errorf("%w: %w", ErrLLMCallFailed, lastErr)
}

// contextError classifies a call cut short by ctx. Only a passed deadline is
// a timeout; cancellation keeps context.Canceled in the chain.
func contextError(ctx context.Context, cause error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrLLMTimeout, cause)
	}
	return fmt.Errorf("%w: %w", ErrLLMCallFailed, errors.Join(ctx.Err(), cause))
}

// attempt performs one HTTP round trip and reports whether a failure is retryable.
func (c *Client) attempt(ctx context.Context, url string, body []byte) (*Response, bool, error) {
	resp, err := c.http.PostJSON(ctx, url, body, map[string]string{
		"Authorization": "Bearer " + c.config.APIKey,
	})
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, shouldRetry(resp.StatusCode), &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, false, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return nil, false, ErrLLMEmptyReply
	}

	return &Response{
		Content:          parsed.Choices[0].Message.Content,
		Model:            parsed.Model,
		PromptTokens:     parsed.Usage.PromptTokens,
		CompletionTokens: parsed.Usage.CompletionTokens,
	}, false, nil
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.config.InitialBackoff * time.Duration(1<<(attempt-1))
	if d > c.config.MaxBackoff {
		return c.config.MaxBackoff
	}
	return d
}

func shouldRetry(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
