package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/wricardo/tengame/game/engine"
	"github.com/wricardo/tengame/game/leaderboard"
	"github.com/wricardo/tengame/game/render"
	"github.com/wricardo/tengame/game/service"
	"github.com/wricardo/tengame/game/session"
	"github.com/wricardo/tengame/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
	logger  *zap.Logger
}

// NewServer creates a new API server. hub may be nil, in which case /ws is
// not served.
func NewServer(gameService service.GameService, hub *websocket.Hub, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
		logger:  logger,
	}

	s.setupRoutes()
	return s
}

// Router exposes the underlying router so callers can mount extra routes
func (s *Server) Router() *mux.Router {
	return s.router
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Games, one per (server, player)
	const game = "/servers/{server}/players/{player}/game"
	api.HandleFunc(game, s.handleStartGame).Methods("POST")
	api.HandleFunc(game, s.handleGetGame).Methods("GET")
	api.HandleFunc(game, s.handleExitGame).Methods("DELETE")
	api.HandleFunc(game+"/move", s.handleMove).Methods("POST")

	api.HandleFunc("/games", s.handleListGames).Methods("GET")
	api.HandleFunc("/servers/{server}/leaderboard", s.handleLeaderboard).Methods("GET")

	if s.hub != nil {
		s.router.HandleFunc("/ws", s.handleWebSocket)
	}
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service errors onto HTTP statuses. Unexpected
// errors are logged.
func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrInvalidDirection), errors.Is(err, session.ErrInvalidKey):
		status = http.StatusBadRequest
	case errors.Is(err, session.ErrGameMismatch):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	respondError(w, status, err.Error())
}

func keyFromVars(r *http.Request) session.Key {
	vars := mux.Vars(r)
	return session.Key{ServerID: vars["server"], PlayerID: vars["player"]}
}

// Game Handlers

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	key := keyFromVars(r)

	var req struct {
		PlayerLabel string `json:"player_label,omitempty"`
		ServerLabel string `json:"server_label,omitempty"`
	}
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	labels := session.Labels{Player: req.PlayerLabel, Server: req.ServerLabel}
	if labels.Player == "" {
		labels.Player = key.PlayerID
	}
	if labels.Server == "" {
		labels.Server = key.ServerID
	}

	result, err := s.service.StartGame(r.Context(), key, labels)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	if !result.Created {
		respondJSON(w, http.StatusConflict, result)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.GetGame(r.Context(), keyFromVars(r))
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleExitGame(w http.ResponseWriter, r *http.Request) {
	key := keyFromVars(r)

	if err := s.service.ExitGame(r.Context(), key); err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": render.ExitConfirmed,
	})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	key := keyFromVars(r)

	var req struct {
		Direction string `json:"direction"`
		GameID    string `json:"game_id,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.MoveGame(r.Context(), key, req.GameID, req.Direction)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.service.ListGames(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(games),
		"games": games,
	})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	serverID := mux.Vars(r)["server"]

	limit := leaderboard.DefaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	entries, err := s.service.Leaderboard(r.Context(), serverID, limit)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"server":  serverID,
		"limit":   limit,
		"entries": entries,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	key := session.Key{ServerID: query.Get("server"), PlayerID: query.Get("player")}
	if key.ServerID == "" || key.PlayerID == "" {
		http.Error(w, "server and player parameters required", http.StatusBadRequest)
		return
	}

	info, err := s.service.GetGame(r.Context(), key)
	if err != nil {
		http.Error(w, "Invalid game", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, key.String(), &info.Game)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
