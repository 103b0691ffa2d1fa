package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mlukic/planka/internal/telemetry/tracing"
	"github.com/mlukic/planka/pkg"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrUsernameTaken   = errors.New("username already taken")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Create(ctx context.Context, username, passwordHash string) (_ *Account, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.accounts.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	account := &Account{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO account (username, password_hash, created_at) VALUES ($1, $2, $3) RETURNING id;`,
		account.Username, account.PasswordHash, account.CreatedAt,
	).Scan(&account.ID)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	return account, nil
}

func (r *Repo) GetByUsername(ctx context.Context, username string) (_ *Account, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.accounts.getByUsername")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	account := &Account{}
	err = r.db.
		QueryRow(ctx, `
			SELECT id, username, password_hash, created_at
			FROM account
			WHERE username = $1;`, username).
		Scan(&account.ID, &account.Username, &account.PasswordHash, &account.CreatedAt)
	if err != nil {
		if noRows(err) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *Account, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.accounts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	account := &Account{}
	err = r.db.
		QueryRow(ctx, `
			SELECT id, username, password_hash, created_at
			FROM account
			WHERE id = $1;`, id).
		Scan(&account.ID, &account.Username, &account.PasswordHash, &account.CreatedAt)
	if err != nil {
		if noRows(err) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

func noRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
