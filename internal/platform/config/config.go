package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config captures everything the server needs from the environment so main
// stays lean. Defaults are development values; production overrides them.
type Config struct {
	Addr          string `env:"SHOPGENIE_ADDR" env-default:":8080"`
	JWTSigningKey string `env:"JWT_SIGNING_KEY" env-default:"dev-secret-key-change-in-production"`
	LogLevel      string `env:"LOG_LEVEL" env-default:"info"`

	// AuditQueueSize bounds the fire-and-forget audit inbox. A full queue
	// drops entries rather than blocking the request path.
	AuditQueueSize int `env:"AUDIT_QUEUE_SIZE" env-default:"1024"`

	// WSSendBuffer is the per-connection outbound queue depth. A consumer
	// that falls this far behind starts losing messages.
	WSSendBuffer   int           `env:"WS_SEND_BUFFER" env-default:"32"`
	WSWriteTimeout time.Duration `env:"WS_WRITE_TIMEOUT" env-default:"5s"`

	RateLimitPerSecond float64 `env:"RATE_LIMIT_PER_SECOND" env-default:"50"`
	RateLimitBurst     int     `env:"RATE_LIMIT_BURST" env-default:"100"`
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
