// Package api provides the HTTP REST API for Ten.
//
// Endpoints:
//
// Games (one per server and player):
//   - POST   /api/servers/{server}/players/{player}/game      - Start a game (201, or 409 with the running game)
//   - GET    /api/servers/{server}/players/{player}/game      - Current snapshot and chat text
//   - POST   /api/servers/{server}/players/{player}/game/move - Move: {"direction": "up|down|left|right", "game_id": optional}
//   - DELETE /api/servers/{server}/players/{player}/game      - Abandon the game
//   - GET    /api/games                                        - List live games
//
// Standings:
//   - GET /api/servers/{server}/leaderboard?limit=N - Best score per player on a server
//
// Other:
//   - GET /ws?server=S&player=P - WebSocket snapshot stream
//   - GET /health               - Liveness
//
// Error Handling:
//
// Errors are returned as JSON: {"error": "message"}. Unknown games map to
// 404, invalid directions and keys to 400, a game_id that is not the
// player's current game to 409, anything else to 500.
package api
