// internal/workers/recommendation/enrich-product-details/config.go
package enrichproductdetails

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
