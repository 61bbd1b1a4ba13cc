// Package config loads server settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds every runtime setting of the server
type Config struct {
	Host  string `env:"TEN_HOST" envDefault:"localhost"`
	Port  int    `env:"TEN_PORT" envDefault:"8080"`
	Debug bool   `env:"TEN_DEBUG"`

	// DBPath is the SQLite leaderboard file. Empty keeps standings in memory.
	DBPath string `env:"TEN_DB_PATH"`

	InviteLink string `env:"TEN_INVITE_LINK"`

	LeaderboardQueue   int           `env:"TEN_LEADERBOARD_QUEUE" envDefault:"256"`
	LeaderboardTimeout time.Duration `env:"TEN_LEADERBOARD_TIMEOUT" envDefault:"5s"`

	// RandomSeed makes tile spawns reproducible. Zero seeds from crypto/rand.
	RandomSeed uint64 `env:"TEN_RANDOM_SEED"`

	Ngrok Ngrok
}

// Ngrok configures the optional public tunnel
type Ngrok struct {
	Enabled   bool   `env:"NGROK_ENABLED"`
	AuthToken string `env:"NGROK_AUTHTOKEN"`
	Domain    string `env:"NGROK_DOMAIN"`
}

// Load reads the given .env files (".env" when none are named) and then
// parses the environment. Missing files are ignored; variables already set
// in the environment win over file values.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return Parse()
}

// Parse reads the configuration from the environment only
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks ranges that env parsing cannot express
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}
	if c.LeaderboardQueue <= 0 {
		return fmt.Errorf("%w: leaderboard queue must be positive", ErrInvalidConfig)
	}
	if c.LeaderboardTimeout <= 0 {
		return fmt.Errorf("%w: leaderboard timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// Addr is the host:port the HTTP server listens on
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
