// internal/workers/calculation/calculate-repayment/config.go
package calculaterepayment

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 3 * time.Second,
	}
}
