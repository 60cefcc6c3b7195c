// internal/workers/recommendation/merge-recommendations/config.go
package mergerecommendations

import "time"

type Config struct {
	// MaxWindow bounds the retained recommendation window. Valid values
	// are 1 to 5; production runs with 2 or 3.
	MaxWindow int
	Timeout   time.Duration
}

func LoadConfig() *Config {
	return &Config{
		MaxWindow: 3,
		Timeout:   5 * time.Second,
	}
}
