package model

import "time"

// RoomID uniquely identifies a game room
type RoomID string

// GameStatus represents the current phase of a match
type GameStatus string

const (
	StatusWaiting   GameStatus = "waiting"   // Room created, countdown to start
	StatusActive    GameStatus = "active"    // Match in progress
	StatusFinished  GameStatus = "finished"  // Match completed normally
	StatusAbandoned GameStatus = "abandoned" // Match ended by disconnect
)

// Terminal reports whether the status is absorbing; no transition ever
// leaves a terminal status.
func (s GameStatus) Terminal() bool {
	return s == StatusFinished || s == StatusAbandoned
}

// Side identifies one of the two competitors in a room. Side A pulls the
// rope toward positive positions, side B toward negative.
type Side string

const (
	SideA Side = "a"
	SideB Side = "b"
)

// Opposite returns the other side
func (s Side) Opposite() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

// PullEvent records one qualifying chat contribution toward a side.
// Events are append-only; the engine prunes them once they age out of the
// engagement window but never mutates them.
type PullEvent struct {
	Timestamp time.Time
	Username  string
	Side      Side
}

// RoomStats holds the derived per-side aggregation. TotalPulls is the only
// field updated on pull registration; the rest are recomputed every tick
// from the windowed pull history.
type RoomStats struct {
	TotalPulls     int     `json:"total_pulls"`
	UniquePullers  int     `json:"unique_pullers"`
	EngagementRate float64 `json:"engagement_rate"`
	PullPower      float64 `json:"pull_power"`
}

// GameSnapshot is a read-only projection of a room for broadcast to clients.
// Computed on demand, never stored.
type GameSnapshot struct {
	RoomID            RoomID     `json:"room_id"`
	RopePosition      float64    `json:"rope_position"`
	PlayerAScore      int        `json:"player1_score"`
	PlayerBScore      int        `json:"player2_score"`
	TimeRemaining     int        `json:"time_remaining"`
	Status            GameStatus `json:"status"`
	PlayerAEngagement float64    `json:"player1_engagement"`
	PlayerBEngagement float64    `json:"player2_engagement"`
	WinnerID          PlayerID   `json:"winner_id,omitempty"`
	Draw              bool       `json:"draw,omitempty"`
}

// QueueEntry is a player waiting for a match. Entries exist only while
// queued; when a pair is promoted into a room the entries are discarded.
type QueueEntry struct {
	Player    Player
	JoinedAt  time.Time
	SessionID SessionID
}
