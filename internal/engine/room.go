package engine

import (
	"math"
	"sync"
	"time"

	"github.com/tugochat/tugochat/internal/dependencies/clock"
	"github.com/tugochat/tugochat/internal/model"
)

// Ruleset holds the physics and timing parameters for a match
type Ruleset struct {
	GameDuration     time.Duration
	EngagementWindow time.Duration
	BaseStrength     float64
	WinThreshold     float64
	Damping          float64
}

// DefaultRuleset returns the standard match parameters
func DefaultRuleset() Ruleset {
	return Ruleset{
		GameDuration:     2 * time.Minute,
		EngagementWindow: 30 * time.Second,
		BaseStrength:     1.0,
		WinThreshold:     100.0,
		Damping:          0.5,
	}
}

// EndReason says why a tick found a terminal condition
type EndReason string

const (
	EndReasonThreshold EndReason = "threshold"
	EndReasonTimeout   EndReason = "timeout"
)

// TickResult reports the outcome of a single physics tick. Tick itself never
// ends the match; the caller decides what to do about a terminal condition.
type TickResult struct {
	Terminal bool
	Reason   EndReason
}

// Room owns the mutable state of one match between two players. All state
// access goes through its mutex, so pull ingestion, tick processing and
// forfeit handling for the same room serialize while different rooms never
// contend with each other.
type Room struct {
	mu sync.Mutex

	id      model.RoomID
	playerA model.Player
	playerB model.Player
	rules   Ruleset
	clock   clock.Clock
	agg     Aggregator

	status       model.GameStatus
	ropePosition float64
	startTime    time.Time
	endTime      time.Time
	winner       model.PlayerID
	draw         bool
	history      []model.PullEvent
	statsA       model.RoomStats
	statsB       model.RoomStats
}

// NewRoom creates a room in the waiting state
func NewRoom(id model.RoomID, playerA, playerB model.Player, rules Ruleset, clk clock.Clock) *Room {
	return &Room{
		id:      id,
		playerA: playerA,
		playerB: playerB,
		rules:   rules,
		clock:   clk,
		agg: Aggregator{
			Window:       rules.EngagementWindow,
			BaseStrength: rules.BaseStrength,
		},
		status: model.StatusWaiting,
	}
}

// ID returns the room's identifier
func (r *Room) ID() model.RoomID {
	return r.id
}

// Player returns the player on the given side
func (r *Room) Player(side model.Side) model.Player {
	if side == model.SideA {
		return r.playerA
	}
	return r.playerB
}

// Sessions returns the session handles of both players, skipping any
// player without a live session
func (r *Room) Sessions() []model.SessionID {
	var sessions []model.SessionID
	for _, p := range []model.Player{r.playerA, r.playerB} {
		if p.SessionID != "" {
			sessions = append(sessions, p.SessionID)
		}
	}
	return sessions
}

// SideOfSession resolves which side a session handle belongs to
func (r *Room) SideOfSession(sessionID model.SessionID) (model.Side, bool) {
	switch sessionID {
	case r.playerA.SessionID:
		return model.SideA, true
	case r.playerB.SessionID:
		return model.SideB, true
	default:
		return "", false
	}
}

// Status returns the room's current status
func (r *Room) Status() model.GameStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Start transitions the room from waiting to active, zeroing the rope and
// resetting both sides' stats. Calling it in any other state is a no-op: a
// start racing a forfeit is expected and must not fail.
func (r *Room) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != model.StatusWaiting {
		return
	}

	r.status = model.StatusActive
	r.startTime = r.clock.Now()
	r.ropePosition = 0
	r.history = nil
	r.statsA = model.RoomStats{}
	r.statsB = model.RoomStats{}
}

// RegisterPull appends a pull event for the given side. Pulls arriving when
// the room is not active are silently dropped; a pull racing the end of a
// match is expected.
func (r *Room) RegisterPull(side model.Side, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != model.StatusActive {
		return
	}

	r.history = append(r.history, model.PullEvent{
		Timestamp: r.clock.Now(),
		Username:  username,
		Side:      side,
	})

	if side == model.SideA {
		r.statsA.TotalPulls++
	} else {
		r.statsB.TotalPulls++
	}
}

// Tick advances the physics by one step: compacts the pull history,
// recomputes both sides' engagement stats, applies the net force with
// damping, clamps the rope to the win threshold and reports whether a
// terminal condition was reached. No-op on non-active rooms.
func (r *Room) Tick() TickResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != model.StatusActive {
		return TickResult{}
	}

	now := r.clock.Now()
	r.compactHistory(now)
	r.recomputeStats(now)

	netForce := r.statsA.PullPower - r.statsB.PullPower
	r.ropePosition += netForce * r.rules.Damping
	r.ropePosition = math.Max(-r.rules.WinThreshold, math.Min(r.rules.WinThreshold, r.ropePosition))

	if math.Abs(r.ropePosition) >= r.rules.WinThreshold {
		return TickResult{Terminal: true, Reason: EndReasonThreshold}
	}
	if now.Sub(r.startTime) >= r.rules.GameDuration {
		return TickResult{Terminal: true, Reason: EndReasonTimeout}
	}
	return TickResult{}
}

// Finish ends an active match, resolving the winner by rope-position sign.
// A rope at exactly zero is a draw: the match finishes with no winner.
// Finishing an already-terminal room (including one abandoned by forfeit)
// is a no-op.
func (r *Room) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status.Terminal() {
		return
	}

	r.status = model.StatusFinished
	r.endTime = r.clock.Now()

	switch {
	case r.ropePosition > 0:
		r.winner = r.playerA.ID
	case r.ropePosition < 0:
		r.winner = r.playerB.ID
	default:
		r.draw = true
	}
}

// Forfeit ends an active match because the given side disconnected. The
// other side wins and the room is marked abandoned. No-op when the room is
// not active.
func (r *Room) Forfeit(disconnecting model.Side) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != model.StatusActive {
		return
	}

	r.winner = r.Player(disconnecting.Opposite()).ID
	r.status = model.StatusAbandoned
	r.endTime = r.clock.Now()
}

// Stats returns the current stats for the given side
func (r *Room) Stats(side model.Side) model.RoomStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	if side == model.SideA {
		return r.statsA
	}
	return r.statsB
}

// RopePosition returns the current rope position
func (r *Room) RopePosition() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ropePosition
}

// Winner returns the winning player's id, or empty if none is set
func (r *Room) Winner() model.PlayerID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.winner
}

// Snapshot builds the read-only projection broadcast to clients
func (r *Room) Snapshot() model.GameSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	timeRemaining := 0
	if r.status == model.StatusActive && !r.startTime.IsZero() {
		elapsed := r.clock.Now().Sub(r.startTime)
		if remaining := r.rules.GameDuration - elapsed; remaining > 0 {
			timeRemaining = int(remaining.Seconds())
		}
	}

	return model.GameSnapshot{
		RoomID:            r.id,
		RopePosition:      r.ropePosition,
		PlayerAScore:      r.statsA.UniquePullers,
		PlayerBScore:      r.statsB.UniquePullers,
		TimeRemaining:     timeRemaining,
		Status:            r.status,
		PlayerAEngagement: r.statsA.EngagementRate,
		PlayerBEngagement: r.statsB.EngagementRate,
		WinnerID:          r.winner,
		Draw:              r.draw,
	}
}

// compactHistory drops events that have aged out of the engagement window.
// Events arrive in timestamp order under the room mutex, so pruning from the
// front is sufficient and window queries stay correct.
func (r *Room) compactHistory(now time.Time) {
	cut := 0
	for cut < len(r.history) && now.Sub(r.history[cut].Timestamp) >= r.agg.Window {
		cut++
	}
	if cut > 0 {
		r.history = append([]model.PullEvent(nil), r.history[cut:]...)
	}
}

// recomputeStats refreshes the derived stats for both sides, preserving the
// cumulative pull counters
func (r *Room) recomputeStats(now time.Time) {
	totalA, totalB := r.statsA.TotalPulls, r.statsB.TotalPulls
	r.statsA = r.agg.SideStats(r.history, model.SideA, r.playerA.ViewerCount, now)
	r.statsB = r.agg.SideStats(r.history, model.SideB, r.playerB.ViewerCount, now)
	r.statsA.TotalPulls = totalA
	r.statsB.TotalPulls = totalB
}
