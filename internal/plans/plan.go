package plans

import (
	"strings"
	"time"
)

type ExerciseKind string

const (
	KindReps ExerciseKind = "reps"
	KindTime ExerciseKind = "time"
)

// ExerciseDef is the planned target for one exercise within a workout:
// how many sets, and per set either a reps target or a duration.
type ExerciseDef struct {
	Name   string       `json:"name"`
	Sets   int          `json:"sets"`
	Target string       `json:"target,omitempty"`
	Kind   ExerciseKind `json:"type"`
	Notes  string       `json:"notes,omitempty"`
}

type Workout struct {
	Name      string        `json:"name"`
	Exercises []ExerciseDef `json:"exercises"`
}

// Schedule maps canonical lowercase weekday names to workouts.
// Days without an entry are rest days.
type Schedule map[string]Workout

// Plan is a named weekly training schedule. AccountID is nil for the
// file-backed system default plan, which is owner-less and read-only.
type Plan struct {
	ID        int       `json:"id"`
	AccountID *int      `json:"accountId,omitempty"`
	Name      string    `json:"name"`
	Schedule  Schedule  `json:"schedule"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

var validWeekdays = map[string]bool{
	"monday":    true,
	"tuesday":   true,
	"wednesday": true,
	"thursday":  true,
	"friday":    true,
	"saturday":  true,
	"sunday":    true,
}

// WeekdayKey returns the schedule lookup key for the given moment,
// e.g. "monday".
func WeekdayKey(t time.Time) string {
	return strings.ToLower(t.Weekday().String())
}
