package plans

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mlukic/planka/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrPlanNotFound = errors.New("plan not found")

type Repo struct {
	db *pgxpool.Pool

	// one activation at a time per account, so two concurrent uploads
	// cannot both end up active
	activationMutexes sync.Map
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func (r *Repo) accountMutex(accountID int) *sync.Mutex {
	m, _ := r.activationMutexes.LoadOrStore(accountID, &sync.Mutex{})
	return m.(*sync.Mutex)
}

// GetActive returns the account's currently active plan, or
// ErrPlanNotFound if the account never uploaded one.
func (r *Repo) GetActive(ctx context.Context, accountID int) (_ *Plan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "plansRepo.getActive")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var plan Plan
	err = r.db.QueryRow(ctx,
		`SELECT id, account_id, name, schedule, active, created_at
			FROM training_plan
			WHERE account_id = $1 AND active = TRUE`,
		accountID,
	).Scan(&plan.ID, &plan.AccountID, &plan.Name, &plan.Schedule, &plan.Active, &plan.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("query active plan: %w", err)
	}

	return &plan, nil
}

// InsertAsActive stores a new plan for the account and makes it the
// active one, deactivating any previous plan in the same transaction.
func (r *Repo) InsertAsActive(ctx context.Context, plan Plan) (_ *Plan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "plansRepo.insertAsActive")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if plan.AccountID == nil {
		return nil, errors.New("plan account id is required")
	}

	mutex := r.accountMutex(*plan.AccountID)
	mutex.Lock()
	defer mutex.Unlock()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				log.Errorf("insert plan, rollback: %s", rollbackErr)
			}
			return
		}
		err = tx.Commit(ctx)
	}()

	if _, err = tx.Exec(ctx,
		`UPDATE training_plan SET active = FALSE WHERE account_id = $1 AND active = TRUE`,
		*plan.AccountID,
	); err != nil {
		return nil, fmt.Errorf("deactivate previous plan: %w", err)
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO training_plan (account_id, name, schedule, active)
			VALUES ($1, $2, $3, TRUE)
			RETURNING id, created_at`,
		*plan.AccountID, plan.Name, plan.Schedule,
	).Scan(&plan.ID, &plan.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert plan: %w", err)
	}

	plan.Active = true

	return &plan, nil
}
