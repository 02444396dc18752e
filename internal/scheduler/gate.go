package scheduler

import (
	"fmt"
	"time"
)

// minutesPerDay bounds the threshold
const minutesPerDay = 24 * 60

// State is the position of the current day in the daily cycle
type State int

const (
	WaitingForThreshold State = iota
	WaitingForSuccess
	Satisfied
)

func (s State) String() string {
	switch s {
	case WaitingForThreshold:
		return "WAITING_FOR_THRESHOLD"
	case WaitingForSuccess:
		return "WAITING_FOR_SUCCESS"
	case Satisfied:
		return "SATISFIED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// DailyGate guards the once-per-day notification. The date of the last
// delivered notification is the only state; whether today is handled is
// derived from it on every check.
type DailyGate struct {
	lastSatisfied    Date
	thresholdMinutes int
	pollInterval     time.Duration
}

// NewDailyGate creates a gate that opens at thresholdMinutes past midnight
func NewDailyGate(thresholdMinutes int, pollInterval time.Duration) (*DailyGate, error) {
	if thresholdMinutes < 0 || thresholdMinutes >= minutesPerDay {
		return nil, fmt.Errorf("threshold must be between 0 and %d minutes, got %d", minutesPerDay-1, thresholdMinutes)
	}
	if pollInterval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive, got %v", pollInterval)
	}

	return &DailyGate{
		thresholdMinutes: thresholdMinutes,
		pollInterval:     pollInterval,
	}, nil
}

// MinutesOfDay returns the minutes since midnight of t in t's location
func MinutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// LastSatisfied returns the date of the last delivered notification
func (g *DailyGate) LastSatisfied() Date {
	return g.lastSatisfied
}

// ThresholdMinutes returns the time of day the gate opens at
func (g *DailyGate) ThresholdMinutes() int {
	return g.thresholdMinutes
}

// PollInterval returns the time between ticks
func (g *DailyGate) PollInterval() time.Duration {
	return g.pollInterval
}

// Open reports whether a notification attempt is allowed at now
func (g *DailyGate) Open(now time.Time) bool {
	return MinutesOfDay(now) >= g.thresholdMinutes && DateOf(now).After(g.lastSatisfied)
}

// State returns the position of now's date in the daily cycle
func (g *DailyGate) State(now time.Time) State {
	switch {
	case !DateOf(now).After(g.lastSatisfied):
		return Satisfied
	case MinutesOfDay(now) < g.thresholdMinutes:
		return WaitingForThreshold
	default:
		return WaitingForSuccess
	}
}

// Commit records a delivered notification for day. The date never moves
// backwards; Commit reports whether it advanced.
func (g *DailyGate) Commit(day Date) bool {
	if !day.After(g.lastSatisfied) {
		return false
	}
	g.lastSatisfied = day
	return true
}
