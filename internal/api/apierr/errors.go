package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jfmyers/gamelobby-go/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeGameNotFound      = "GAME_NOT_FOUND"
	CodeUserNotFound      = "USER_NOT_FOUND"
	CodePlayerNotFound    = "PLAYER_NOT_FOUND"
	CodeSessionNotBound   = "SESSION_NOT_BOUND"
	CodeNoPlayersForUser  = "NO_PLAYERS_FOR_USER"
	CodeNoAvailablePlayer = "NO_AVAILABLE_PLAYER"
	CodeInternalError     = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors. Claim resolution failures are client errors: the
	// session or its players are in the wrong state, not the server.
	switch {
	case errors.Is(err, model.ErrGameNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not found"}}
	case errors.Is(err, model.ErrUserNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeUserNotFound, "User not found"}}
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrNoUserForSession):
		return &httpError{http.StatusNotFound, APIError{CodeSessionNotBound, "Session is not bound to a user"}}
	case errors.Is(err, model.ErrNoPlayersForUser):
		return &httpError{http.StatusNotFound, APIError{CodeNoPlayersForUser, "User has no players in this game"}}
	case errors.Is(err, model.ErrNoAvailablePlayer):
		return &httpError{http.StatusConflict, APIError{CodeNoAvailablePlayer, "All of the user's players are claimed"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
