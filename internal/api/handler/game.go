package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jfmyers/gamelobby-go/internal/api/request"
	"github.com/jfmyers/gamelobby-go/internal/api/response"
	"github.com/jfmyers/gamelobby-go/internal/broadcast"
	"github.com/jfmyers/gamelobby-go/internal/model"
	"github.com/jfmyers/gamelobby-go/internal/services/claim"
	"github.com/jfmyers/gamelobby-go/internal/services/game"
)

// GameHandler handles game-related endpoints
type GameHandler struct {
	gameService *game.Service
	resolver    *claim.Resolver
	hubs        *broadcast.HubManager
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameService *game.Service, resolver *claim.Resolver, hubs *broadcast.HubManager) *GameHandler {
	return &GameHandler{
		gameService: gameService,
		resolver:    resolver,
		hubs:        hubs,
	}
}

// Create handles POST /api/game/new
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	g, err := h.gameService.CreateGame(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.GameFromModel(g))
}

// Info handles GET /api/game/{gameId}/info
func (h *GameHandler) Info(w http.ResponseWriter, r *http.Request) {
	gameID := model.GameID(mux.Vars(r)["gameId"])

	g, players, err := h.gameService.GetGameInfo(r.Context(), gameID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameInfoFromModel(g, players))
}

// AddPlayer handles POST /api/game/{gameId}/add?userId=
//
// The body is optional; without one the player takes the user's display
// name. Everyone already in the room hears about the new player.
func (h *GameHandler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	gameID := model.GameID(mux.Vars(r)["gameId"])

	userID := model.UserID(r.URL.Query().Get("userId"))
	if userID == "" {
		WriteError(w, NewInvalidRequestError("userId query parameter is required"))
		return
	}

	var req request.AddPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	player, err := h.gameService.AddPlayer(r.Context(), gameID, userID, req.Name)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.hubs.Publish(gameID, model.NewPlayerAddedEvent(player))

	response.JSON(w, http.StatusCreated, response.PlayerFromModel(player))
}

// Claim handles POST /api/game/{gameId}/claim
//
// Resolves which player the session controls. The claim itself is
// recorded when the client binds the player over its websocket, so a
// failed bind never leaves a stale claim behind.
func (h *GameHandler) Claim(w http.ResponseWriter, r *http.Request) {
	gameID := model.GameID(mux.Vars(r)["gameId"])

	var req request.ClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.SessionID == "" {
		WriteError(w, NewInvalidRequestError("sessionId is required"))
		return
	}

	player, err := h.resolver.Resolve(r.Context(), gameID, model.SessionID(req.SessionID))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ClaimResponse{
		Player: response.PlayerFromModel(player),
	})
}

// NamePlayer handles POST /api/game/{gameId}/name
func (h *GameHandler) NamePlayer(w http.ResponseWriter, r *http.Request) {
	gameID := model.GameID(mux.Vars(r)["gameId"])

	var req request.NamePlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.PlayerID == "" || req.Name == "" {
		WriteError(w, NewInvalidRequestError("playerId and name are required"))
		return
	}

	player, err := h.gameService.RenamePlayer(r.Context(), gameID, model.PlayerID(req.PlayerID), req.Name)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.hubs.Publish(gameID, model.NewPlayerRenamedEvent(player.ID, player.Name))

	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}
