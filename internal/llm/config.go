package llm

import "time"

type Config struct {
	BaseURL        string
	APIKey         string
	Model          string
	Timeout        time.Duration // per attempt
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxTokens      int
	Temperature    float64
	JSONMode       bool
	// MaxIdleConns bounds pooled connections to the endpoint; size it to the
	// number of calls in flight.
	MaxIdleConns   int
}

func (c *Config) applyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 100 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 5 * time.Second
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 800
	}
}

// Options tune a single call.
type Options struct {
	Temperature float64
	MaxTokens   int
	JSONMode    bool
}

// DefaultOptions returns the configured call options.
func (c *Config) DefaultOptions() Options {
	return Options{
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
		JSONMode:    c.JSONMode,
	}
}
