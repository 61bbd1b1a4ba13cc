// Package mcp exposes Ten as Model Context Protocol tools, the chat command
// surface of the game.
//
// Client is a thin proxy: every tool call becomes a request against the
// REST API, so the stdio and HTTP transports share one game service.
//
// MCP Tools:
//   - start_game: start a game, or show the one already running
//   - move: slide the tiles; an optional game_id refuses moves on another player's game
//   - game_state: board, score and turn
//   - exit_game: two-step abandon; the first call only asks for confirmation
//   - list_games: live games
//   - leaderboard: standings for a server
//   - game_instructions: rules
//   - invite: link to add the bot to a server
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080", mcp.WithInviteLink(link))
//	server.ServeStdio(client.GetMCPServer())
package mcp
