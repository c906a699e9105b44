package handler

import (
	"encoding/json"
	"net/http"

	"github.com/jfmyers/gamelobby-go/internal/api/request"
	"github.com/jfmyers/gamelobby-go/internal/api/response"
	"github.com/jfmyers/gamelobby-go/internal/services/game"
)

// UserHandler handles user-related endpoints
type UserHandler struct {
	gameService *game.Service
}

// NewUserHandler creates a new user handler
func NewUserHandler(gameService *game.Service) *UserHandler {
	return &UserHandler{gameService: gameService}
}

// Create handles POST /api/user/new
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.DisplayName == "" {
		WriteError(w, NewInvalidRequestError("displayName is required"))
		return
	}

	user, err := h.gameService.CreateUser(r.Context(), req.DisplayName)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.UserFromModel(user))
}
