package plans

import (
	"fmt"
	"strings"
)

// NormalizeAndValidate checks an uploaded plan and canonicalizes its
// schedule keys to lowercase weekday names. It returns the first problem
// found, so the client gets one actionable message at a time.
func NormalizeAndValidate(p *Plan) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("plan name is required")
	}
	if len(p.Schedule) == 0 {
		return fmt.Errorf("plan schedule is empty")
	}

	normalized := make(Schedule, len(p.Schedule))
	for day, workout := range p.Schedule {
		key := strings.ToLower(strings.TrimSpace(day))
		if !validWeekdays[key] {
			return fmt.Errorf("invalid schedule day: %q", day)
		}
		if _, ok := normalized[key]; ok {
			return fmt.Errorf("duplicate schedule day: %q", key)
		}
		if err := validateWorkout(key, workout); err != nil {
			return err
		}
		normalized[key] = workout
	}
	p.Schedule = normalized

	return nil
}

func validateWorkout(day string, w Workout) error {
	if strings.TrimSpace(w.Name) == "" {
		return fmt.Errorf("%s: workout name is required", day)
	}
	if len(w.Exercises) == 0 {
		return fmt.Errorf("%s: workout has no exercises", day)
	}
	for i, ex := range w.Exercises {
		if strings.TrimSpace(ex.Name) == "" {
			return fmt.Errorf("%s: exercise %d has no name", day, i+1)
		}
		if ex.Kind != KindReps && ex.Kind != KindTime {
			return fmt.Errorf("%s: exercise %q has invalid type %q", day, ex.Name, ex.Kind)
		}
		if ex.Sets < 1 {
			return fmt.Errorf("%s: exercise %q needs at least one set", day, ex.Name)
		}
	}
	return nil
}
