package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wricardo/tengame/config"
	"github.com/wricardo/tengame/game/session"
	"github.com/wricardo/tengame/storage/sqlite"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName != "Ten Game Server" {
		t.Errorf("Expected app name 'Ten Game Server', got %s", AppName)
	}
}

func runWithConfig(t *testing.T, args ...string) config.Config {
	t.Helper()
	var cfg config.Config
	cmd := newApp()
	cmd.Action = func(ctx context.Context, c *cli.Command) error {
		var err error
		cfg, err = loadConfig(c)
		return err
	}

	missing := filepath.Join(t.TempDir(), "missing.env")
	argv := append([]string{"ten", "--env-file", missing}, args...)
	if err := cmd.Run(context.Background(), argv); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return cfg
}

func TestFlagDefaults(t *testing.T) {
	cfg := runWithConfig(t)

	if cfg.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Port)
	}
	if cfg.Host != "localhost" {
		t.Errorf("Expected default host localhost, got %s", cfg.Host)
	}
	if cfg.Debug {
		t.Error("Expected debug to be false by default")
	}
	if cfg.Ngrok.Enabled {
		t.Error("Expected ngrok to be disabled by default")
	}
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("TEN_PORT", "7000")
	t.Setenv("TEN_INVITE_LINK", "https://example.com/env")

	cfg := runWithConfig(t, "--port", "9191", "--db", "/tmp/x.db", "--debug", "--ngrok", "--ngrok-domain", "ten.example")

	if cfg.Port != 9191 {
		t.Errorf("Expected flag port 9191, got %d", cfg.Port)
	}
	if cfg.DBPath != "/tmp/x.db" || !cfg.Debug {
		t.Errorf("unexpected config %+v", cfg)
	}
	if !cfg.Ngrok.Enabled || cfg.Ngrok.Domain != "ten.example" {
		t.Errorf("unexpected ngrok config %+v", cfg.Ngrok)
	}
	if cfg.InviteLink != "https://example.com/env" {
		t.Errorf("Expected unset flag to keep env value, got %s", cfg.InviteLink)
	}
}

func TestSourceFactorySeeded(t *testing.T) {
	a := sourceFactory(7)
	b := sourceFactory(7)

	for game := 0; game < 3; game++ {
		sa, sb := a(), b()
		for i := 0; i < 20; i++ {
			if x, y := sa.IntN(1000), sb.IntN(1000); x != y {
				t.Fatalf("game %d draw %d: %d != %d", game, i, x, y)
			}
		}
	}

	if sourceFactory(0)() == nil {
		t.Error("Expected a random source for seed 0")
	}
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Parse()
	if err != nil {
		t.Fatal(err)
	}
	cfg.RandomSeed = 1
	return cfg
}

func TestServicesWithSQLite(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := testConfig(t)
	cfg.DBPath = filepath.Join(t.TempDir(), "ten.db")

	svc, err := newServices(ctx, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("newServices failed: %v", err)
	}
	if _, ok := svc.store.(*sqlite.Store); !ok {
		t.Fatalf("Expected sqlite store, got %T", svc.store)
	}

	key := session.Key{ServerID: "s1", PlayerID: "p1"}
	if _, err := svc.game.StartGame(ctx, key, session.Labels{Player: "Ann"}); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}

	moved := false
	for _, dir := range []string{"left", "right", "up", "down"} {
		res, err := svc.game.Move(ctx, key, dir)
		if err != nil {
			t.Fatalf("Move failed: %v", err)
		}
		if res.Moved {
			moved = true
			break
		}
	}
	if !moved {
		t.Fatal("Expected a move to succeed on a fresh board")
	}

	// closing drains the recorder, so the entry is in the database afterwards
	if err := svc.recorder.Close(ctx); err != nil {
		t.Fatalf("recorder close failed: %v", err)
	}
	entry, err := svc.store.Get(ctx, "s1", "p1")
	if err != nil {
		t.Fatalf("Expected a leaderboard entry, got %v", err)
	}
	if entry.Turns != 2 || entry.PlayerLabel != "Ann" {
		t.Errorf("unexpected entry %+v", entry)
	}

	if err := svc.Close(ctx); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestRouterServesAPIAndMCP(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc, err := newServices(ctx, testConfig(t), zap.NewNop())
	if err != nil {
		t.Fatalf("newServices failed: %v", err)
	}
	defer svc.Close(ctx)

	ts := httptest.NewServer(newRouter(svc, "http://unused", "", zap.NewNop()))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected /health 200, got %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/mcp")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("Expected GET /mcp 405, got %d", resp.StatusCode)
	}

	resp, err = http.Post(ts.URL+"/mcp", "application/json", strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`))
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"jsonrpc":"2.0"`) {
		t.Errorf("unexpected /mcp response %d %s", resp.StatusCode, body)
	}
}

func TestExternalAPIAvailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	if !externalAPIAvailable(ts.URL) {
		t.Error("Expected running server to be detected")
	}
	ts.Close()
	if externalAPIAvailable(ts.URL) {
		t.Error("Expected closed server to be unavailable")
	}
}
