// internal/workers/conversation/extract-customer-info/config.go
package extractcustomerinfo

import "time"

type Config struct {
	// WindowSize is how many trailing transcript messages a pass reads.
	WindowSize int
	// DebounceMs is the minimum quiet period after a transcript change
	// before a scheduled pass may run.
	DebounceMs int
	Timeout    time.Duration
}

func LoadConfig() *Config {
	return &Config{
		WindowSize: 10,
		DebounceMs: 1500,
		Timeout:    5 * time.Second,
	}
}

func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}
