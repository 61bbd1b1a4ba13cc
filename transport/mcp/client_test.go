package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wricardo/tengame/api"
	"github.com/wricardo/tengame/game/engine"
	"github.com/wricardo/tengame/game/leaderboard"
	"github.com/wricardo/tengame/game/render"
	"github.com/wricardo/tengame/game/service"
	"github.com/wricardo/tengame/game/session"
)

// testBackend runs the real REST API over an in-memory registry
func testBackend(t *testing.T) (*httptest.Server, *leaderboard.MemoryStore) {
	t.Helper()
	store := leaderboard.NewMemoryStore()
	registry := session.NewRegistry(session.WithSourceFactory(func() engine.Source {
		return engine.NewSource(42)
	}))
	svc := service.NewGameService(service.Dependencies{
		Sessions:  registry,
		Standings: store,
	})
	ts := httptest.NewServer(api.NewServer(svc, nil, nil))
	t.Cleanup(ts.Close)
	return ts, store
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), name string, args map[string]interface{}) (string, bool) {
	t.Helper()
	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}

	result, err := handler(context.Background(), request)
	if err != nil {
		t.Fatalf("%s failed: %v", name, err)
	}
	if result == nil || len(result.Content) == 0 {
		t.Fatalf("%s returned no content", name)
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("%s: expected text content in result", name)
	}
	return text.Text, result.IsError
}

func ids(extra map[string]interface{}) map[string]interface{} {
	args := map[string]interface{}{"server_id": "s1", "player_id": "p1"}
	for k, v := range extra {
		args[k] = v
	}
	return args
}

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080/"
	client := NewClient(baseURL, WithInviteLink("https://example.com/invite"))

	if client.baseURL != "http://localhost:8080" {
		t.Errorf("Expected trailing slash trimmed, got %s", client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
	if client.inviteLink != "https://example.com/invite" {
		t.Errorf("Expected invite link to be set, got %q", client.inviteLink)
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "game s1/p1: session not found"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.apiCall(context.Background(), "GET", "/x", nil, nil)
	if err == nil {
		t.Fatal("Expected error for 404 response")
	}
	if statusOf(err) != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", statusOf(err))
	}
	if err.Error() != "game s1/p1: session not found" {
		t.Errorf("Expected server message, got %q", err.Error())
	}
}

func TestClient_apiCall_ErrorWithoutBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.apiCall(context.Background(), "GET", "/x", nil, nil)
	if err == nil || err.Error() != "API error: 502" {
		t.Errorf("Expected 'API error: 502', got %v", err)
	}
}

func TestClient_StartGame(t *testing.T) {
	ts, _ := testBackend(t)
	client := NewClient(ts.URL)

	text, isErr := callTool(t, client.handleStartGame, "start_game", ids(map[string]interface{}{"player_name": "Ann"}))
	if isErr {
		t.Fatalf("unexpected error: %s", text)
	}
	if !strings.Contains(text, "**Ann, Welcome to 2048!**") {
		t.Errorf("Expected welcome text, got %s", text)
	}
	if !strings.Contains(text, "Score: **0** | Turn: **1**") {
		t.Errorf("Expected initial status line, got %s", text)
	}

	text, isErr = callTool(t, client.handleStartGame, "start_game", ids(nil))
	if isErr {
		t.Fatalf("second start should not be an error: %s", text)
	}
	if !strings.HasPrefix(text, render.AlreadyInProgress) {
		t.Errorf("Expected %q, got %s", render.AlreadyInProgress, text)
	}
}

func TestClient_StartGame_MissingIdentity(t *testing.T) {
	client := NewClient("http://localhost:0")
	text, isErr := callTool(t, client.handleStartGame, "start_game", map[string]interface{}{"server_id": "s1"})
	if !isErr {
		t.Errorf("Expected an error result, got %s", text)
	}
}

func TestClient_MoveWithoutGame(t *testing.T) {
	ts, _ := testBackend(t)
	client := NewClient(ts.URL)

	text, _ := callTool(t, client.handleMove, "move", ids(map[string]interface{}{"direction": "left"}))
	if text != render.NoGame {
		t.Errorf("Expected %q, got %q", render.NoGame, text)
	}
}

func TestClient_MoveInvalidDirection(t *testing.T) {
	ts, _ := testBackend(t)
	client := NewClient(ts.URL)
	callTool(t, client.handleStartGame, "start_game", ids(nil))

	text, isErr := callTool(t, client.handleMove, "move", ids(map[string]interface{}{"direction": "diagonal"}))
	if !isErr {
		t.Errorf("Expected an error result, got %s", text)
	}
}

func TestClient_MovePlaysUntilSomethingMoves(t *testing.T) {
	ts, _ := testBackend(t)
	client := NewClient(ts.URL)
	callTool(t, client.handleStartGame, "start_game", ids(nil))

	// with two tiles on the board at least one direction always moves
	moved := false
	for _, dir := range []string{"left", "right", "up", "down"} {
		text, isErr := callTool(t, client.handleMove, "move", ids(map[string]interface{}{"direction": dir}))
		if isErr {
			t.Fatalf("move %s failed: %s", dir, text)
		}
		if strings.Contains(text, "Turn: **2**") {
			moved = true
			break
		}
		if !strings.HasPrefix(text, "Nothing moved.") {
			t.Errorf("Expected no-op message, got %s", text)
		}
	}
	if !moved {
		t.Error("Expected one of the four directions to move")
	}
}

func TestClient_MoveOnSomeoneElsesGame(t *testing.T) {
	ts, _ := testBackend(t)
	client := NewClient(ts.URL)
	callTool(t, client.handleStartGame, "start_game", ids(nil))

	text, _ := callTool(t, client.handleMove, "move", ids(map[string]interface{}{
		"direction": "left",
		"game_id":   "another-game",
	}))
	if text != render.NotYourGame {
		t.Errorf("Expected %q, got %q", render.NotYourGame, text)
	}

	var current service.GameInfo
	if err := client.apiCall(context.Background(), "GET", gamePath("s1", "p1"), nil, &current); err != nil {
		t.Fatalf("GET game failed: %v", err)
	}
	if current.Game.Turn != 1 {
		t.Errorf("Expected the rejected move to leave turn 1, got %d", current.Game.Turn)
	}

	text, _ = callTool(t, client.handleMove, "move", ids(map[string]interface{}{
		"direction": "left",
		"game_id":   current.Game.ID,
	}))
	if text == render.NotYourGame {
		t.Error("Expected a move with the right game id to be accepted")
	}
}

func TestClient_GameState(t *testing.T) {
	ts, _ := testBackend(t)
	client := NewClient(ts.URL)

	text, _ := callTool(t, client.handleGameState, "game_state", ids(nil))
	if text != render.NoGame {
		t.Errorf("Expected %q before starting, got %q", render.NoGame, text)
	}

	callTool(t, client.handleStartGame, "start_game", ids(nil))
	text, _ = callTool(t, client.handleGameState, "game_state", ids(nil))
	if !strings.Contains(text, "Game ID: ") {
		t.Errorf("Expected game id in state, got %s", text)
	}
	if strings.Count(text, "\n") < engine.Size {
		t.Errorf("Expected a board of %d rows, got %s", engine.Size, text)
	}
}

func TestClient_ExitGameTwoStep(t *testing.T) {
	ts, _ := testBackend(t)
	client := NewClient(ts.URL)
	callTool(t, client.handleStartGame, "start_game", ids(nil))

	text, _ := callTool(t, client.handleExitGame, "exit_game", ids(nil))
	if text != render.ExitPrompt {
		t.Errorf("Expected %q, got %q", render.ExitPrompt, text)
	}

	// the prompt alone must not end the game
	text, _ = callTool(t, client.handleGameState, "game_state", ids(nil))
	if text == render.NoGame {
		t.Fatal("game was removed without confirmation")
	}

	text, _ = callTool(t, client.handleExitGame, "exit_game", ids(map[string]interface{}{"confirm": true}))
	if text != render.ExitConfirmed {
		t.Errorf("Expected %q, got %q", render.ExitConfirmed, text)
	}

	text, _ = callTool(t, client.handleExitGame, "exit_game", ids(map[string]interface{}{"confirm": true}))
	if text != render.NoGame {
		t.Errorf("Expected %q after exit, got %q", render.NoGame, text)
	}
}

func TestClient_Leaderboard(t *testing.T) {
	ts, store := testBackend(t)
	client := NewClient(ts.URL)

	text, _ := callTool(t, client.handleLeaderboard, "leaderboard", map[string]interface{}{"server_id": "s1"})
	if text != "No scores recorded on s1 yet." {
		t.Errorf("unexpected empty leaderboard text %q", text)
	}

	ctx := context.Background()
	store.Record(ctx, leaderboard.Entry{PlayerID: "p1", ServerID: "s1", PlayerLabel: "Ann", ServerLabel: "Guild", Score: 40, Turns: 20})
	store.Record(ctx, leaderboard.Entry{PlayerID: "p2", ServerID: "s1", PlayerLabel: "Bob", ServerLabel: "Guild", Score: 80, Turns: 30})

	text, _ = callTool(t, client.handleLeaderboard, "leaderboard", map[string]interface{}{"server_id": "s1", "limit": float64(5)})
	if !strings.Contains(text, "**Leaderboard for Guild**") {
		t.Errorf("Expected server label in title, got %s", text)
	}
	bob := strings.Index(text, "1. Bob: **80** in 30 turns")
	ann := strings.Index(text, "2. Ann: **40** in 20 turns")
	if bob < 0 || ann < 0 {
		t.Errorf("Expected Bob then Ann, got %s", text)
	}
}

func TestClient_ListGames(t *testing.T) {
	ts, _ := testBackend(t)
	client := NewClient(ts.URL)
	callTool(t, client.handleStartGame, "start_game", ids(nil))

	text, _ := callTool(t, client.handleListGames, "list_games", map[string]interface{}{})
	if !strings.Contains(text, "Live Games (1)") || !strings.Contains(text, "s1/p1") {
		t.Errorf("unexpected list %s", text)
	}
}

func TestClient_handleGameInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	text, _ := callTool(t, client.handleGameInstructions, "game_instructions", map[string]interface{}{})

	expectedContent := []string{
		"Ten - Instructions",
		"GAME OBJECTIVE:",
		"RULES:",
		"GAME OVER:",
		"MOVEMENT COMMANDS:",
		"LEADERBOARD:",
	}

	for _, content := range expectedContent {
		if !strings.Contains(text, content) {
			t.Errorf("Expected '%s' in instructions, got: %s", content, text)
		}
	}
}

func TestClient_Invite(t *testing.T) {
	text, _ := callTool(t, NewClient("http://localhost:8080").handleInvite, "invite", map[string]interface{}{})
	if text != render.NoInviteLink {
		t.Errorf("Expected fallback invite text, got %q", text)
	}

	client := NewClient("http://localhost:8080", WithInviteLink("https://example.com/add"))
	text, _ = callTool(t, client.handleInvite, "invite", map[string]interface{}{})
	if text != "Click the link to add me to your server!\n<https://example.com/add>" {
		t.Errorf("unexpected invite text %q", text)
	}
}
