package advisory

import "time"

const (
	DefaultBatchSize   = 20
	DefaultConcurrency = 10
	DefaultCallTimeout = 30 * time.Second
)

type Config struct {
	BatchSize   int
	Concurrency int
	// CallTimeout bounds one record's advisory call, retries included.
	CallTimeout time.Duration
	Temperature float64
	MaxTokens   int
	JSONMode    bool
}

func (c *Config) applyDefaults() {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.Concurrency > c.BatchSize {
		c.Concurrency = c.BatchSize
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = DefaultCallTimeout
	}
}
