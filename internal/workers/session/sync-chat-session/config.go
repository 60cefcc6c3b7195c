// internal/workers/session/sync-chat-session/config.go
package syncchatsession

import "time"

type Config struct {
	// TTL is refreshed on every write so active sessions never expire
	// mid-conversation.
	TTL     time.Duration
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		TTL:     120 * time.Minute,
		Timeout: 5 * time.Second,
	}
}
