package allocation

import (
	"context"
	"os"
	"testing"

	"github.com/hisabi/hisabi/internal/test_utils"
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

type repoFixture struct {
	ctx      context.Context
	repo     *RepositoryImpl
	userId   int
	budgetId int
	hdfcId   int
	paytmId  int
}

func setupTestRepository(t *testing.T) repoFixture {
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

	var budgetId int
	err = db.QueryRow(ctx,
		`INSERT INTO budget (user_id, category_id, period, amount_paise) VALUES ($1, $2, '2026-03-01', 20000) RETURNING id`,
		userId, categoryId).Scan(&budgetId)
	require.NoError(t, err)

	var hdfcId, paytmId int
	err = db.QueryRow(ctx, `INSERT INTO payment_source (name) VALUES ('HDFC') RETURNING id`).Scan(&hdfcId)
	require.NoError(t, err)
	err = db.QueryRow(ctx, `INSERT INTO payment_source (name) VALUES ('Paytm') RETURNING id`).Scan(&paytmId)
	require.NoError(t, err)

	return repoFixture{ctx: ctx, repo: repository, userId: userId, budgetId: budgetId, hdfcId: hdfcId, paytmId: paytmId}
}

func TestRepositoryImpl_Upsert(t *testing.T) {
	t.Run("should insert a new allocation", func(t *testing.T) {
		// given
		f := setupTestRepository(t)

		// when
		created, err := f.repo.Upsert(f.ctx, f.userId, f.budgetId, f.hdfcId, 12000)

		// then
		assert.NoError(t, err)
		assert.NotZero(t, created.ID)

		stored, err := f.repo.ListForBudget(f.ctx, f.userId, f.budgetId)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, int64(12000), stored[0].AmountPaise)
	})

	t.Run("should overwrite the amount for an existing pair", func(t *testing.T) {
		// given
		f := setupTestRepository(t)
		first, err := f.repo.Upsert(f.ctx, f.userId, f.budgetId, f.hdfcId, 12000)
		require.NoError(t, err)

		// when
		second, err := f.repo.Upsert(f.ctx, f.userId, f.budgetId, f.hdfcId, 17000)

		// then
		assert.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		stored, err := f.repo.ListForBudget(f.ctx, f.userId, f.budgetId)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, int64(17000), stored[0].AmountPaise)
	})
}

func TestRepositoryImpl_DeleteMissing(t *testing.T) {
	t.Run("should delete allocations whose source is not kept", func(t *testing.T) {
		// given
		f := setupTestRepository(t)
		_, err := f.repo.Upsert(f.ctx, f.userId, f.budgetId, f.hdfcId, 12000)
		require.NoError(t, err)
		_, err = f.repo.Upsert(f.ctx, f.userId, f.budgetId, f.paytmId, 8000)
		require.NoError(t, err)

		// when
		deleted, err := f.repo.DeleteMissing(f.ctx, f.userId, f.budgetId, []int{f.hdfcId})

		// then
		assert.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		stored, err := f.repo.ListForBudget(f.ctx, f.userId, f.budgetId)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, f.hdfcId, stored[0].SourceID)
	})

	t.Run("should delete everything when nothing is kept", func(t *testing.T) {
		// given
		f := setupTestRepository(t)
		_, err := f.repo.Upsert(f.ctx, f.userId, f.budgetId, f.hdfcId, 12000)
		require.NoError(t, err)
		_, err = f.repo.Upsert(f.ctx, f.userId, f.budgetId, f.paytmId, 8000)
		require.NoError(t, err)

		// when
		deleted, err := f.repo.DeleteMissing(f.ctx, f.userId, f.budgetId, nil)

		// then
		assert.NoError(t, err)
		assert.Equal(t, int64(2), deleted)

		stored, err := f.repo.ListForBudget(f.ctx, f.userId, f.budgetId)
		require.NoError(t, err)
		assert.Empty(t, stored)
	})
}

func TestRepositoryImpl_ListForBudget(t *testing.T) {
	t.Run("should include source names ordered case-insensitively", func(t *testing.T) {
		// given
		f := setupTestRepository(t)
		_, err := f.repo.Upsert(f.ctx, f.userId, f.budgetId, f.paytmId, 8000)
		require.NoError(t, err)
		_, err = f.repo.Upsert(f.ctx, f.userId, f.budgetId, f.hdfcId, 12000)
		require.NoError(t, err)

		// when
		stored, err := f.repo.ListForBudget(f.ctx, f.userId, f.budgetId)

		// then
		assert.NoError(t, err)
		require.Len(t, stored, 2)
		assert.Equal(t, "HDFC", stored[0].SourceName)
		assert.Equal(t, "Paytm", stored[1].SourceName)
	})

	t.Run("should not return another user's allocations", func(t *testing.T) {
		// given
		f := setupTestRepository(t)
		_, err := f.repo.Upsert(f.ctx, f.userId, f.budgetId, f.hdfcId, 12000)
		require.NoError(t, err)

		// when
		stored, err := f.repo.ListForBudget(f.ctx, 2, f.budgetId)

		// then
		assert.NoError(t, err)
		assert.Empty(t, stored)
	})
}
