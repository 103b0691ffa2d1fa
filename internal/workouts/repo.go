package workouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mlukic/planka/internal/telemetry/tracing"
	"github.com/mlukic/planka/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrWorkoutNotFound = errors.New("workout not found")
	ErrNotOwner        = errors.New("workout belongs to another account")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

// Insert stores a completed workout. When the completion carries an
// idempotency key that was already used, the previously stored row is
// returned instead and created is false.
func (r *Repo) Insert(ctx context.Context, cw CompletedWorkout) (_ *CompletedWorkout, created bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workoutsRepo.insert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var idempotencyKey *string
	if cw.IdempotencyKey != "" {
		idempotencyKey = &cw.IdempotencyKey
	}

	err = r.db.QueryRow(ctx,
		`INSERT INTO completed_workout (account_id, idempotency_key, workout_date, workout)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at`,
		cw.AccountID, idempotencyKey, cw.Date, cw.Workout,
	).Scan(&cw.ID, &cw.CreatedAt)
	if err != nil {
		if pkg.IsUniqueViolationError(err) && idempotencyKey != nil {
			existing, getErr := r.getByIdempotencyKey(ctx, cw.AccountID, cw.IdempotencyKey)
			if getErr != nil {
				return nil, false, fmt.Errorf("get deduplicated workout: %w", getErr)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("insert workout: %w", err)
	}

	return &cw, true, nil
}

func (r *Repo) getByIdempotencyKey(ctx context.Context, accountID int, key string) (*CompletedWorkout, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`SELECT id, account_id, COALESCE(idempotency_key, ''), workout_date, workout, created_at
			FROM completed_workout
			WHERE account_id = $1 AND idempotency_key = $2`,
		accountID, key,
	))
}

func (r *Repo) Get(ctx context.Context, id int) (_ *CompletedWorkout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workoutsRepo.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	cw, err := r.scanOne(r.db.QueryRow(ctx,
		`SELECT id, account_id, COALESCE(idempotency_key, ''), workout_date, workout, created_at
			FROM completed_workout
			WHERE id = $1`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return cw, nil
}

// List returns the account's completions, most recent workout date
// first, ties broken by newest entry.
func (r *Repo) List(ctx context.Context, accountID, limit int) (_ []CompletedWorkout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workoutsRepo.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx,
		`SELECT id, account_id, COALESCE(idempotency_key, ''), workout_date, workout, created_at
			FROM completed_workout
			WHERE account_id = $1
			ORDER BY workout_date DESC, id DESC
			LIMIT $2`,
		accountID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	defer rows.Close()

	workouts := make([]CompletedWorkout, 0, limit)
	for rows.Next() {
		cw, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("scan workout row: %w", err)
		}
		workouts = append(workouts, *cw)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return workouts, nil
}

// Delete removes the completion with the given id if it belongs to the
// account. A missing row and a row owned by someone else are distinct
// failures so the handler can respond 404 vs 403.
func (r *Repo) Delete(ctx context.Context, id, accountID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workoutsRepo.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	cw, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if cw.AccountID != accountID {
		return ErrNotOwner
	}

	tag, err := r.db.Exec(ctx,
		`DELETE FROM completed_workout WHERE id = $1 AND account_id = $2`,
		id, accountID,
	)
	if err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// removed between the owner check and the delete
		return ErrWorkoutNotFound
	}

	return nil
}

func (r *Repo) scanOne(row pgx.Row) (*CompletedWorkout, error) {
	var cw CompletedWorkout
	var workoutDate time.Time
	if err := row.Scan(
		&cw.ID, &cw.AccountID, &cw.IdempotencyKey, &workoutDate, &cw.Workout, &cw.CreatedAt,
	); err != nil {
		return nil, err
	}
	cw.Date = workoutDate.Format(dateLayout)
	return &cw, nil
}
