package tasks

import "time"

// Config holds the background queue settings. One worker pool drains both
// the batch continuation queue and the media mirror queue.
type Config struct {
	// Workers is the number of concurrent task workers. Keeping this low
	// also throttles Notion API pressure from chained batches. Default: 2
	Workers int

	// MaxRetries is the default maximum attempts for a failed batch or
	// download. Default: 3
	MaxRetries int

	// RetryDelay is the default backoff between attempts. Default: 1m
	RetryDelay time.Duration

	// TaskTimeout bounds one batch or one media download. Default: 5m
	TaskTimeout time.Duration

	// ReleaseAfter is when tasks orphaned by a crashed worker are released
	// back to the queue. Default: 15m
	ReleaseAfter time.Duration

	// CleanupInterval is how often completed tasks are swept. Default: 1h
	CleanupInterval time.Duration

	// RetentionDuration is how long completed tasks stay visible for
	// debugging. Default: 24h
	RetentionDuration time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers:           2,
		MaxRetries:        3,
		RetryDelay:        1 * time.Minute,
		TaskTimeout:       5 * time.Minute,
		ReleaseAfter:      15 * time.Minute,
		CleanupInterval:   1 * time.Hour,
		RetentionDuration: 24 * time.Hour,
	}
}
