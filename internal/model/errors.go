package model

import "errors"

// Common errors used across the application
var (
	// Registry errors
	ErrRoomNotFound    = errors.New("room not found")
	ErrSessionNotInRoom = errors.New("session is not in a room")

	// Matchmaking errors
	ErrNoSession     = errors.New("player has no session handle")
	ErrAlreadyQueued = errors.New("session is already in the queue")

	// Auth errors
	ErrAuthenticationFailed = errors.New("twitch authentication failed")
	ErrInvalidStateToken    = errors.New("invalid oauth state token")

	// State store errors
	ErrTokenNotFound = errors.New("token not found")

	// Gateway errors
	ErrSessionNotConnected = errors.New("session is not connected")
)
