// internal/workers/recommendation/fetch-recommendations/config.go
package fetchrecommendations

import "time"

type Config struct {
	AdvisorBaseURL string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:    30 * time.Second,
		MaxRetries: 2,
	}
}
