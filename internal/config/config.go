package config

import "github.com/caarlos0/env/v11"

// Storage backend names accepted in STORAGE_TYPE
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// Server holds process-level configuration read from the environment
type Server struct {
	Host string `env:"HOST" envDefault:""`
	Port int    `env:"PORT" envDefault:"8080"`

	// StorageType selects the disconnected-record store backend
	StorageType string `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`

	// RulesetPath points at a YAML ruleset; empty uses built-in defaults
	RulesetPath string `env:"RULESET_PATH"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses server configuration from the environment
func Load() (Server, error) {
	var cfg Server
	err := env.Parse(&cfg)
	return cfg, err
}
