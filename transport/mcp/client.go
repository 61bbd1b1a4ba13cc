package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/wricardo/tengame/game/leaderboard"
	"github.com/wricardo/tengame/game/render"
	"github.com/wricardo/tengame/game/service"
)

const (
	serverName    = "Ten"
	serverVersion = "1.0.0"
)

// APIError is a non-2xx response from the REST API
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("API error: %d", e.Status)
}

func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Option configures a Client
type Option func(*Client)

// WithInviteLink sets the link returned by the invite tool
func WithInviteLink(link string) Option {
	return func(c *Client) { c.inviteLink = link }
}

// WithHTTPClient replaces the HTTP client used to reach the REST API
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// Client is a thin MCP server that proxies chat commands to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
	inviteLink string
	logger     *zap.Logger
}

// NewClient creates a new MCP client that calls the REST API at baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Ten - MCP Interface

Ten is 2048 where tiles count up from 0 to 10 instead of doubling. Each
player has at most one game per server, identified by server_id and player_id.

AVAILABLE TOOLS:
- start_game: Start a game (returns the running one if it exists)
- move: Slide the tiles up, down, left or right
- game_state: Show the board, score and turn
- exit_game: Abandon the game (call twice, the second time with confirm=true)
- list_games: List live games
- leaderboard: Best scores on a server
- game_instructions: Rules of the game
- invite: Link to add the bot to another server`),
	)

	c.registerTools()
}

func identityProperties() map[string]interface{} {
	return map[string]interface{}{
		"server_id": map[string]interface{}{
			"type":        "string",
			"description": "Server (guild) the game belongs to",
		},
		"player_id": map[string]interface{}{
			"type":        "string",
			"description": "Player who owns the game",
		},
	}
}

func withProperties(base map[string]interface{}, extra map[string]interface{}) map[string]interface{} {
	for k, v := range extra {
		base[k] = v
	}
	return base
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "start_game",
		Description: "Start a new game of Ten for a player on a server",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: withProperties(identityProperties(), map[string]interface{}{
				"player_name": map[string]interface{}{
					"type":        "string",
					"description": "Display name used in the welcome text (optional)",
				},
				"server_name": map[string]interface{}{
					"type":        "string",
					"description": "Display name of the server for the leaderboard (optional)",
				},
			}),
			Required: []string{"server_id", "player_id"},
		},
	}, c.handleStartGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Slide every tile in a direction",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: withProperties(identityProperties(), map[string]interface{}{
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"up", "down", "left", "right"},
					"description": "Direction to move",
				},
				"game_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the game the command was issued on (optional). Moves are refused when it is not the player's game.",
				},
			}),
			Required: []string{"server_id", "player_id", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Show the current board, score and turn",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: identityProperties(),
			Required:   []string{"server_id", "player_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "exit_game",
		Description: "Abandon the current game. Without confirm=true only the confirmation prompt is returned.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: withProperties(identityProperties(), map[string]interface{}{
				"confirm": map[string]interface{}{
					"type":        "boolean",
					"description": "Set to true to really exit",
				},
			}),
			Required: []string{"server_id", "player_id"},
		},
	}, c.handleExitGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_games",
		Description: "List all live games",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListGames)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "leaderboard",
		Description: "Show the best score of each player on a server",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"server_id": map[string]interface{}{
					"type":        "string",
					"description": "Server to show standings for",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": fmt.Sprintf("Number of entries (default %d)", leaderboard.DefaultLimit),
				},
			},
			Required: []string{"server_id"},
		},
	}, c.handleLeaderboard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules of Ten",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "invite",
		Description: "Get the link to add the bot to a server",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleInvite)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{Status: resp.StatusCode}
		var errResp map[string]interface{}
		if json.Unmarshal(data, &errResp) == nil {
			if msg, ok := errResp["error"].(string); ok {
				apiErr.Message = msg
			}
		}
		// A conflict still carries a useful body
		if resp.StatusCode == http.StatusConflict && result != nil {
			json.Unmarshal(data, result)
		}
		return apiErr
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func gamePath(serverID, playerID string) string {
	return fmt.Sprintf("/api/servers/%s/players/%s/game", url.PathEscape(serverID), url.PathEscape(playerID))
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		args = map[string]interface{}{}
	}
	return args
}

func identity(args map[string]interface{}) (string, string, error) {
	serverID, _ := args["server_id"].(string)
	playerID, _ := args["player_id"].(string)
	if serverID == "" || playerID == "" {
		return "", "", errors.New("server_id and player_id are required")
	}
	return serverID, playerID, nil
}

// Tool handlers

func (c *Client) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	serverID, playerID, err := identity(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	playerName, _ := args["player_name"].(string)
	serverName, _ := args["server_name"].(string)

	body := map[string]string{}
	if playerName != "" {
		body["player_label"] = playerName
	}
	if serverName != "" {
		body["server_label"] = serverName
	}

	var result service.StartResult
	err = c.apiCall(ctx, "POST", gamePath(serverID, playerID), body, &result)
	if err != nil && statusOf(err) != http.StatusConflict {
		return mcp.NewToolResultError(err.Error()), nil
	}

	c.logger.Debug("start_game",
		zap.String("server_id", serverID),
		zap.String("player_id", playerID),
		zap.Bool("created", result.Created))

	return mcp.NewToolResultText(formatStart(&result)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	serverID, playerID, err := identity(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	direction, _ := args["direction"].(string)
	gameID, _ := args["game_id"].(string)

	body := map[string]string{"direction": direction}
	if gameID != "" {
		body["game_id"] = gameID
	}

	var result service.MoveResult
	err = c.apiCall(ctx, "POST", gamePath(serverID, playerID)+"/move", body, &result)
	if err != nil {
		switch statusOf(err) {
		case http.StatusConflict:
			return mcp.NewToolResultText(render.NotYourGame), nil
		case http.StatusNotFound:
			if gameID != "" {
				return mcp.NewToolResultText(render.NotYourGame), nil
			}
			return mcp.NewToolResultText(render.NoGame), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	serverID, playerID, err := identity(arguments(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var info service.GameInfo
	err = c.apiCall(ctx, "GET", gamePath(serverID, playerID), nil, &info)
	if err != nil {
		if statusOf(err) == http.StatusNotFound {
			return mcp.NewToolResultText(render.NoGame), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGame(&info)), nil
}

func (c *Client) handleExitGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	serverID, playerID, err := identity(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	confirm, _ := args["confirm"].(bool)

	if !confirm {
		if err := c.apiCall(ctx, "GET", gamePath(serverID, playerID), nil, nil); err != nil {
			if statusOf(err) == http.StatusNotFound {
				return mcp.NewToolResultText(render.NoGame), nil
			}
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(render.ExitPrompt), nil
	}

	if err := c.apiCall(ctx, "DELETE", gamePath(serverID, playerID), nil, nil); err != nil {
		if statusOf(err) == http.StatusNotFound {
			return mcp.NewToolResultText(render.NoGame), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(render.ExitConfirmed), nil
}

func (c *Client) handleListGames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count int                `json:"count"`
		Games []service.GameInfo `json:"games"`
	}

	err := c.apiCall(ctx, "GET", "/api/games", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Live Games (%d):\n\n", response.Count)
	for _, g := range response.Games {
		s := g.Game
		fmt.Fprintf(&b, "- %s (%s) score %d, turn %d, %s\n", s.Key, s.ID, s.Score, s.Turn, s.State)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleLeaderboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	serverID, _ := args["server_id"].(string)
	if serverID == "" {
		return mcp.NewToolResultError("server_id is required"), nil
	}

	path := fmt.Sprintf("/api/servers/%s/leaderboard", url.PathEscape(serverID))
	if limit, ok := args["limit"].(float64); ok && limit > 0 {
		path += fmt.Sprintf("?limit=%d", int(limit))
	}

	var response struct {
		Entries []leaderboard.Entry `json:"entries"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatLeaderboard(serverID, response.Entries)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Ten - Instructions

GAME OBJECTIVE:
Reach a tile showing 10 (:keycap_ten:).

RULES:
- The board is 4x4 and starts with two tiles.
- A move slides every tile as far as it goes in one direction.
- Two equal tiles that meet merge into one tile, one higher. A tile merges at most once per move.
- Merging two tiles of value v scores 2^(v+2) points.
- After every move that changes the board a new tile appears: 0 nine times out of ten, otherwise 1.
- A move that changes nothing does nothing: no new tile, no new turn.

GAME OVER:
- You win as soon as a 10 appears.
- You lose when the board is full and no two neighbouring tiles are equal.

MOVEMENT COMMANDS:
- move with direction up, down, left or right

LEADERBOARD:
Your latest finished or running score on each server is kept on the leaderboard. Ties on score rank the player with fewer turns first.

Good luck reaching 10!`

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleInvite(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(render.Invite(c.inviteLink)), nil
}

// Formatting helpers

func formatGame(info *service.GameInfo) string {
	if info == nil {
		return render.NoGame
	}
	return fmt.Sprintf("%s\nGame ID: %s", info.Text, info.Game.ID)
}

func formatStart(result *service.StartResult) string {
	if result.Created {
		return formatGame(result.Game)
	}
	if result.Game == nil {
		return render.AlreadyInProgress
	}
	return render.AlreadyInProgress + "\n\n" + formatGame(result.Game)
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	b.WriteString(result.Message)
	b.WriteString("\n\n")
	if result.Game != nil {
		b.WriteString(result.Game.Text)
	}
	return b.String()
}

func formatLeaderboard(serverID string, entries []leaderboard.Entry) string {
	if len(entries) == 0 {
		return fmt.Sprintf("No scores recorded on %s yet.", serverID)
	}

	title := serverID
	if entries[0].ServerLabel != "" {
		title = entries[0].ServerLabel
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Leaderboard for %s**\n", title)
	for i, e := range entries {
		name := e.PlayerLabel
		if name == "" {
			name = e.PlayerID
		}
		fmt.Fprintf(&b, "%d. %s: **%d** in %d turns\n", i+1, name, e.Score, e.Turns)
	}
	return b.String()
}
