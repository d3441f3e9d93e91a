package budget

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/hisabi/hisabi/internal/test_utils"
	"github.com/hisabi/hisabi/pkg/period"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var pgContainer *postgres.PostgresContainer
var openDb func() *pgxpool.Pool

func TestMain(m *testing.M) {
	pgContainer, openDb = test_utils.TestWithDB()
	defer func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			log.Errorf("failed to terminate container: %s", err)
		}
	}()
	code := m.Run()
	os.Exit(code)
}

func setupTestRepository(t *testing.T) (context.Context, *RepositoryImpl, int, int) {
	ctx := context.Background()
	db := openDb()
	repository := NewRepository(db)
	t.Cleanup(func() {
		db.Close()
		err := pgContainer.Restore(ctx)
		require.NoError(t, err)
	})
	userId := 1

	var categoryId int
	err := db.QueryRow(ctx,
		`INSERT INTO category (user_id, name, slug) VALUES ($1, 'Groceries', 'groceries') RETURNING id`,
		userId).Scan(&categoryId)
	require.NoError(t, err)

	return ctx, repository, userId, categoryId
}

func march() period.Period {
	return period.Period{Year: 2026, Month: time.March}
}

func TestRepositoryImpl_Insert(t *testing.T) {
	t.Run("should insert and find a budget", func(t *testing.T) {
		// given
		ctx, repo, userId, categoryId := setupTestRepository(t)

		// when
		created, err := repo.Insert(ctx, userId, categoryId, march(), 20000)
		require.NoError(t, err)

		// then
		found, err := repo.Find(ctx, userId, categoryId, march())
		assert.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
		assert.Equal(t, int64(20000), found.AmountPaise)
	})

	t.Run("should land on the update arm when the row already exists", func(t *testing.T) {
		// given
		ctx, repo, userId, categoryId := setupTestRepository(t)
		first, err := repo.Insert(ctx, userId, categoryId, march(), 20000)
		require.NoError(t, err)

		// when
		second, err := repo.Insert(ctx, userId, categoryId, march(), 25000)

		// then
		assert.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		found, err := repo.Find(ctx, userId, categoryId, march())
		require.NoError(t, err)
		assert.Equal(t, int64(25000), found.AmountPaise)
	})
}

func TestRepositoryImpl_UpdateAmount(t *testing.T) {
	t.Run("should update the amount of an existing budget", func(t *testing.T) {
		// given
		ctx, repo, userId, categoryId := setupTestRepository(t)
		created, err := repo.Insert(ctx, userId, categoryId, march(), 20000)
		require.NoError(t, err)

		// when
		updated, err := repo.UpdateAmount(ctx, userId, created.ID, 30000)

		// then
		assert.NoError(t, err)
		assert.True(t, updated)
		found, err := repo.Find(ctx, userId, categoryId, march())
		require.NoError(t, err)
		assert.Equal(t, int64(30000), found.AmountPaise)
	})

	t.Run("should report false for another user's budget", func(t *testing.T) {
		// given
		ctx, repo, userId, categoryId := setupTestRepository(t)
		created, err := repo.Insert(ctx, userId, categoryId, march(), 20000)
		require.NoError(t, err)

		// when
		updated, err := repo.UpdateAmount(ctx, 2, created.ID, 30000)

		// then
		assert.NoError(t, err)
		assert.False(t, updated)
	})
}

func TestRepositoryImpl_FindLatestUpTo(t *testing.T) {
	t.Run("should return the most recent budget at or before the period", func(t *testing.T) {
		// given
		ctx, repo, userId, categoryId := setupTestRepository(t)
		_, err := repo.Insert(ctx, userId, categoryId, period.Period{Year: 2025, Month: time.November}, 15000)
		require.NoError(t, err)
		_, err = repo.Insert(ctx, userId, categoryId, period.Period{Year: 2026, Month: time.January}, 18000)
		require.NoError(t, err)
		_, err = repo.Insert(ctx, userId, categoryId, period.Period{Year: 2026, Month: time.June}, 99900)
		require.NoError(t, err)

		// when
		found, err := repo.FindLatestUpTo(ctx, userId, categoryId, march())

		// then
		assert.NoError(t, err)
		assert.Equal(t, period.Period{Year: 2026, Month: time.January}, found.Period)
		assert.Equal(t, int64(18000), found.AmountPaise)
	})

	t.Run("should return ErrBudgetNotFound when only future budgets exist", func(t *testing.T) {
		// given
		ctx, repo, userId, categoryId := setupTestRepository(t)
		_, err := repo.Insert(ctx, userId, categoryId, period.Period{Year: 2026, Month: time.June}, 99900)
		require.NoError(t, err)

		// when
		_, err = repo.FindLatestUpTo(ctx, userId, categoryId, march())

		// then
		assert.ErrorIs(t, err, ErrBudgetNotFound)
	})
}

func TestRepositoryImpl_FindLatestUpToBulk(t *testing.T) {
	t.Run("should return one row per category", func(t *testing.T) {
		// given
		ctx, repo, userId, categoryId := setupTestRepository(t)
		db := openDb()
		defer db.Close()
		var otherCategoryId int
		err := db.QueryRow(ctx,
			`INSERT INTO category (user_id, name, slug) VALUES ($1, 'Fuel', 'fuel') RETURNING id`,
			userId).Scan(&otherCategoryId)
		require.NoError(t, err)

		_, err = repo.Insert(ctx, userId, categoryId, period.Period{Year: 2026, Month: time.January}, 18000)
		require.NoError(t, err)
		_, err = repo.Insert(ctx, userId, categoryId, march(), 20000)
		require.NoError(t, err)
		_, err = repo.Insert(ctx, userId, otherCategoryId, period.Period{Year: 2025, Month: time.December}, 5000)
		require.NoError(t, err)

		// when
		budgets, err := repo.FindLatestUpToBulk(ctx, userId, []int{categoryId, otherCategoryId}, march())

		// then
		assert.NoError(t, err)
		require.Len(t, budgets, 2)
		byCategory := map[int]Budget{}
		for _, b := range budgets {
			byCategory[b.CategoryID] = b
		}
		assert.Equal(t, march(), byCategory[categoryId].Period)
		assert.Equal(t, int64(20000), byCategory[categoryId].AmountPaise)
		assert.Equal(t, period.Period{Year: 2025, Month: time.December}, byCategory[otherCategoryId].Period)
	})
}

func TestRepositoryImpl_Exists(t *testing.T) {
	t.Run("should report existence only for the owning user", func(t *testing.T) {
		// given
		ctx, repo, userId, categoryId := setupTestRepository(t)
		created, err := repo.Insert(ctx, userId, categoryId, march(), 20000)
		require.NoError(t, err)

		// when / then
		ok, err := repo.Exists(ctx, userId, created.ID)
		assert.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.Exists(ctx, 2, created.ID)
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}
