// internal/workers/infrastructure/build-chat-response/config.go
package buildchatresponse

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 3 * time.Second,
	}
}
