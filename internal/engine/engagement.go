package engine

import (
	"math"
	"time"

	"github.com/samber/lo"

	"github.com/tugochat/tugochat/internal/model"
)

// Aggregator derives per-side engagement figures from a room's pull history.
// Power scales with the breadth of participation rather than raw pull volume:
// a side's force comes from how many distinct viewers contributed within the
// look-back window, relative to the size of its audience.
type Aggregator struct {
	// Window is the look-back horizon for counting contributors
	Window time.Duration
	// BaseStrength scales the computed pull power
	BaseStrength float64
}

// SideStats computes the windowed stats for one side.
//
// uniquePullers counts distinct contributor usernames within the window,
// engagementRate divides that by the side's viewer count (floored at 1 so an
// offline channel never divides by zero), and pullPower applies logarithmic
// scaling so that zero contributors always yield zero force.
func (a Aggregator) SideStats(history []model.PullEvent, side model.Side, viewerCount int, now time.Time) model.RoomStats {
	recent := lo.Filter(history, func(e model.PullEvent, _ int) bool {
		return e.Side == side && now.Sub(e.Timestamp) < a.Window
	})
	unique := len(lo.UniqBy(recent, func(e model.PullEvent) string {
		return e.Username
	}))

	rate := float64(unique) / float64(max(viewerCount, 1))
	power := rate * a.BaseStrength * math.Log10(float64(unique)+1)

	return model.RoomStats{
		UniquePullers:  unique,
		EngagementRate: rate,
		PullPower:      power,
	}
}
