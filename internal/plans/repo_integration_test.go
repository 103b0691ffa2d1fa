//go:build integration_test || all_tests

package plans

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlukic/planka/internal/accounts"
	"github.com/mlukic/planka/internal/db"
)

func testRepoSetup(t *testing.T) (*Repo, *pgxpool.Pool, func()) {
	t.Helper()

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		host = "localhost"
	}
	t.Logf("using postgres host: %s", host)

	dbPool, err := db.NewDBPool(timeoutCtx, db.NewDBPoolParams{
		DBHost:         host,
		DBPort:         "5432",
		DBName:         "planka",
		TracingEnabled: false,
	})
	require.NoError(t, err)

	return NewRepo(dbPool), dbPool, func() {
		dbPool.Close()
	}
}

func createTestAccount(t *testing.T, dbPool *pgxpool.Pool) int {
	t.Helper()
	account, err := accounts.NewRepo(dbPool).Create(
		context.Background(), gofakeit.Username(), "test-hash",
	)
	require.NoError(t, err)
	return account.ID
}

func TestRepo_InsertAsActive_ReplacesPrevious(t *testing.T) {
	ctx := context.Background()
	repo, dbPool, shutdown := testRepoSetup(t)
	defer shutdown()

	accountID := createTestAccount(t, dbPool)

	_, err := repo.GetActive(ctx, accountID)
	assert.ErrorIs(t, err, ErrPlanNotFound)

	first := validTestPlan()
	first.Name = "first plan"
	first.AccountID = &accountID
	storedFirst, err := repo.InsertAsActive(ctx, first)
	require.NoError(t, err)
	assert.True(t, storedFirst.Active)

	second := validTestPlan()
	second.Name = "second plan"
	second.AccountID = &accountID
	storedSecond, err := repo.InsertAsActive(ctx, second)
	require.NoError(t, err)
	assert.NotEqual(t, storedFirst.ID, storedSecond.ID)

	active, err := repo.GetActive(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, storedSecond.ID, active.ID)
	assert.Equal(t, "second plan", active.Name)
	require.Contains(t, active.Schedule, "monday")
	assert.Equal(t, "push", active.Schedule["monday"].Name)
}

func TestRepo_GetActive_IsolatedPerAccount(t *testing.T) {
	ctx := context.Background()
	repo, dbPool, shutdown := testRepoSetup(t)
	defer shutdown()

	accountA := createTestAccount(t, dbPool)
	accountB := createTestAccount(t, dbPool)

	plan := validTestPlan()
	plan.AccountID = &accountA
	_, err := repo.InsertAsActive(ctx, plan)
	require.NoError(t, err)

	_, err = repo.GetActive(ctx, accountB)
	assert.ErrorIs(t, err, ErrPlanNotFound)
}
