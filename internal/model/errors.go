package model

import "errors"

// Common errors used across the application
var (
	// Catalog errors
	ErrGameNotFound   = errors.New("game not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrPlayerNotFound = errors.New("player not found")

	// Claim resolution errors
	ErrNoUserForSession  = errors.New("no user bound to session")
	ErrNoPlayersForUser  = errors.New("user has no players in this game")
	ErrNoAvailablePlayer = errors.New("no unclaimed player available for user")
)
