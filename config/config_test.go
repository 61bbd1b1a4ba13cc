package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Host != "localhost" || cfg.Port != 8080 {
		t.Errorf("Expected localhost:8080, got %s", cfg.Addr())
	}
	if cfg.DBPath != "" {
		t.Errorf("Expected in-memory leaderboard by default, got %q", cfg.DBPath)
	}
	if cfg.LeaderboardQueue != 256 {
		t.Errorf("Expected queue 256, got %d", cfg.LeaderboardQueue)
	}
	if cfg.LeaderboardTimeout != 5*time.Second {
		t.Errorf("Expected timeout 5s, got %v", cfg.LeaderboardTimeout)
	}
	if cfg.Ngrok.Enabled {
		t.Error("Expected ngrok disabled by default")
	}
}

func TestParseFromEnvironment(t *testing.T) {
	t.Setenv("TEN_HOST", "0.0.0.0")
	t.Setenv("TEN_PORT", "9090")
	t.Setenv("TEN_DB_PATH", "/tmp/ten.db")
	t.Setenv("TEN_DEBUG", "true")
	t.Setenv("TEN_INVITE_LINK", "https://example.com/invite")
	t.Setenv("TEN_LEADERBOARD_QUEUE", "16")
	t.Setenv("TEN_LEADERBOARD_TIMEOUT", "250ms")
	t.Setenv("TEN_RANDOM_SEED", "42")
	t.Setenv("NGROK_ENABLED", "true")
	t.Setenv("NGROK_AUTHTOKEN", "tok")
	t.Setenv("NGROK_DOMAIN", "ten.ngrok.app")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Addr() != "0.0.0.0:9090" {
		t.Errorf("Expected 0.0.0.0:9090, got %s", cfg.Addr())
	}
	if cfg.DBPath != "/tmp/ten.db" || !cfg.Debug || cfg.InviteLink != "https://example.com/invite" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.LeaderboardQueue != 16 || cfg.LeaderboardTimeout != 250*time.Millisecond {
		t.Errorf("unexpected leaderboard settings %d %v", cfg.LeaderboardQueue, cfg.LeaderboardTimeout)
	}
	if cfg.RandomSeed != 42 {
		t.Errorf("Expected seed 42, got %d", cfg.RandomSeed)
	}
	if !cfg.Ngrok.Enabled || cfg.Ngrok.AuthToken != "tok" || cfg.Ngrok.Domain != "ten.ngrok.app" {
		t.Errorf("unexpected ngrok config %+v", cfg.Ngrok)
	}
}

func TestParseRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"Port not a number", "TEN_PORT", "eighty"},
		{"Port out of range", "TEN_PORT", "70000"},
		{"Zero queue", "TEN_LEADERBOARD_QUEUE", "0"},
		{"Bad duration", "TEN_LEADERBOARD_TIMEOUT", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Parse(); err == nil {
				t.Errorf("Expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestValidateWrapsSentinel(t *testing.T) {
	cfg := Config{Port: 8080, LeaderboardQueue: 1}
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	content := "TEN_PORT=7070\nTEN_INVITE_LINK=https://example.com/from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	// values already in the environment take precedence over the file
	t.Setenv("TEN_INVITE_LINK", "https://example.com/from-env")
	// godotenv sets variables directly; register cleanup for the one it adds
	t.Setenv("TEN_PORT", "")
	os.Unsetenv("TEN_PORT")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 7070 {
		t.Errorf("Expected port from file, got %d", cfg.Port)
	}
	if cfg.InviteLink != "https://example.com/from-env" {
		t.Errorf("Expected environment to win, got %s", cfg.InviteLink)
	}
}

func TestLoadMissingFileIsIgnored(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("Expected missing file to be ignored, got %v", err)
	}
}
