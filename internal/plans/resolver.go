package plans

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
)

// Source says where a resolved plan came from.
type Source string

const (
	SourceUser    Source = "user"
	SourceDefault Source = "default"
)

// ResolvedDay is the answer to "what do I train today": the workout for
// the given date from the effective plan, or a rest day marker.
type ResolvedDay struct {
	Date     string   `json:"date"`
	Day      string   `json:"day"`
	Source   Source   `json:"source"`
	PlanName string   `json:"planName"`
	Workout  *Workout `json:"workout,omitempty"`
	RestDay  bool     `json:"restDay"`
}

type activePlanGetter interface {
	GetActive(ctx context.Context, accountID int) (*Plan, error)
}

// Resolver picks the effective plan for an account: their active plan
// when they have one, the system default otherwise.
type Resolver struct {
	repo        activePlanGetter
	defaultPlan *Plan

	// for tests
	Now func() time.Time
}

func NewResolver(repo activePlanGetter, defaultPlan *Plan) *Resolver {
	return &Resolver{
		repo:        repo,
		defaultPlan: defaultPlan,
		Now:         time.Now,
	}
}

// Effective returns the account's plan and its source. A storage failure
// degrades to the default plan instead of erroring, so the read path
// stays usable while the database is down.
func (r *Resolver) Effective(ctx context.Context, accountID int) (*Plan, Source) {
	plan, err := r.repo.GetActive(ctx, accountID)
	if err != nil {
		if !errors.Is(err, ErrPlanNotFound) {
			log.Warnf("get active plan for account %d failed, using default: %s", accountID, err)
		}
		return r.defaultPlan, SourceDefault
	}
	return plan, SourceUser
}

// Today resolves the workout scheduled for the current date.
func (r *Resolver) Today(ctx context.Context, accountID int) ResolvedDay {
	now := r.Now()
	plan, source := r.Effective(ctx, accountID)

	day := WeekdayKey(now)
	resolved := ResolvedDay{
		Date:     now.Format("2006-01-02"),
		Day:      day,
		Source:   source,
		PlanName: plan.Name,
	}

	if workout, ok := plan.Schedule[day]; ok {
		resolved.Workout = &workout
	} else {
		resolved.RestDay = true
	}

	return resolved
}
