package workouts

import (
	"fmt"
	"strings"
	"time"
)

// Set is one performed set. Reps/Weight for rep work, DurationSeconds
// for timed holds; a set can carry both (e.g. weighted planks).
type Set struct {
	Reps            int     `json:"reps,omitempty"`
	Weight          float64 `json:"weight,omitempty"`
	DurationSeconds int     `json:"durationSeconds,omitempty"`
}

type ExerciseLog struct {
	Name  string `json:"name"`
	Sets  []Set  `json:"sets"`
	Notes string `json:"notes,omitempty"`
}

// WorkoutLog is what was actually performed, as opposed to what the
// plan prescribed.
type WorkoutLog struct {
	Name      string        `json:"name"`
	Exercises []ExerciseLog `json:"exercises"`
}

// CompletedWorkout is one logged training session.
type CompletedWorkout struct {
	ID             int        `json:"id"`
	AccountID      int        `json:"-"`
	IdempotencyKey string     `json:"idempotencyKey,omitempty"`
	Date           string     `json:"date"` // YYYY-MM-DD
	Workout        WorkoutLog `json:"workout"`
	CreatedAt      time.Time  `json:"createdAt"`
}

const dateLayout = "2006-01-02"

// Validate checks a completion before it is stored. Empty sets on an
// exercise are allowed (a skipped exercise is still worth recording)
// but the workout as a whole must have a name, a valid date and at
// least one exercise.
func (cw *CompletedWorkout) Validate() error {
	cw.Workout.Name = strings.TrimSpace(cw.Workout.Name)
	if cw.Workout.Name == "" {
		return fmt.Errorf("workout name is required")
	}

	cw.Date = strings.TrimSpace(cw.Date)
	if cw.Date == "" {
		return fmt.Errorf("workout date is required")
	}
	if _, err := time.Parse(dateLayout, cw.Date); err != nil {
		return fmt.Errorf("invalid workout date %q, want YYYY-MM-DD", cw.Date)
	}

	if len(cw.Workout.Exercises) == 0 {
		return fmt.Errorf("workout has no exercises")
	}
	for i, ex := range cw.Workout.Exercises {
		if strings.TrimSpace(ex.Name) == "" {
			return fmt.Errorf("exercise %d has no name", i+1)
		}
	}

	return nil
}
