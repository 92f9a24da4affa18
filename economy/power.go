package economy

import (
	"fmt"
	"strings"
	"time"

	"github.com/calehh/counterflag/types"
)

const (
	MaxPercent = 100.0

	// DefaultRegenPerDay regenerates a fully drained account in five days.
	DefaultRegenPerDay = 20.0

	secondsPerDay = 86400.0
)

func ClampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > MaxPercent {
		return MaxPercent
	}
	return v
}

// PowerModel regenerates voting power linearly with wall-clock time since
// the account's last vote.
type PowerModel struct {
	RegenPerDay float64
}

func NewPowerModel(regenPerDay float64) PowerModel {
	if regenPerDay <= 0 {
		regenPerDay = DefaultRegenPerDay
	}
	return PowerModel{RegenPerDay: regenPerDay}
}

func (m PowerModel) Current(recorded float64, lastVote, now time.Time) float64 {
	elapsed := now.Sub(lastVote).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	return ClampPercent(recorded + elapsed*m.RegenPerDay/secondsPerDay)
}

// LastVoteTime returns the time of the newest vote cast by voter within the
// given history window. events are in chain order, oldest first.
func LastVoteTime(events []types.HistoryEvent, voter string) (time.Time, error) {
	for i := len(events) - 1; i >= 0; i-- {
		ev := &events[i]
		if ev.IsVote() && ev.Voter == voter {
			return ev.Timestamp, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: no vote by %s in the last %d events", types.ErrHistoryUnavailable, voter, len(events))
}

// HistoryFallback decides the voting power to use when the history window
// holds no vote by the agent.
type HistoryFallback string

const (
	FallbackFull     HistoryFallback = "full"
	FallbackRecorded HistoryFallback = "recorded"
	FallbackFail     HistoryFallback = "fail"
)

func ParseHistoryFallback(s string) (HistoryFallback, error) {
	switch f := HistoryFallback(strings.ToLower(strings.TrimSpace(s))); f {
	case FallbackFull, FallbackRecorded, FallbackFail:
		return f, nil
	case "":
		return FallbackFull, nil
	default:
		return "", fmt.Errorf("unknown history fallback %q", s)
	}
}

// Resolve applies the fallback to the account's recorded voting power.
// cause is returned unchanged for FallbackFail.
func (f HistoryFallback) Resolve(recorded float64, cause error) (float64, error) {
	switch f {
	case FallbackRecorded:
		return ClampPercent(recorded), nil
	case FallbackFail:
		return 0, cause
	default:
		return MaxPercent, nil
	}
}
