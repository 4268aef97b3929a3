package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,     default=8080"`
	Env      string `env:"ENV,      default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// UpstreamBaseURL is the root of the remote cobros API the gateway
	// authenticates against and proxies to.
	UpstreamBaseURL string `env:"UPSTREAM_BASE_URL, default=http://localhost:3000"`

	// SessionTotal is the full inactivity budget; SessionWarning is the
	// advance warning lead inside that budget.
	SessionTotal   time.Duration `env:"SESSION_TOTAL,   default=30m"`
	SessionWarning time.Duration `env:"SESSION_WARNING, default=2m"`

	// TokenTTL bounds how long cached credentials survive a restart.
	TokenTTL time.Duration `env:"TOKEN_TTL, default=24h"`

	AuditEnabled bool `env:"AUDIT_ENABLED, default=false"`

	Redis RedisConfig
	Mongo MongoConfig
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=cobros_console"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
