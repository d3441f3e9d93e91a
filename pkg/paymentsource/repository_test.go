package paymentsource

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

func setupTestRepository(t *testing.T) (context.Context, Repository) {
	ctx := context.Background()
	db := openDb()
	repository := NewRepository(db)
	t.Cleanup(func() {
		db.Close()
		err := pgContainer.Restore(ctx)
		require.NoError(t, err)
	})
	return ctx, repository
}

func TestRepositoryImpl_Create(t *testing.T) {
	t.Run("should create a source and find it by name", func(t *testing.T) {
		// given
		ctx, repo := setupTestRepository(t)

		// when
		created, err := repo.Create(ctx, "HDFC")
		require.NoError(t, err)

		// then
		found, err := repo.FindByName(ctx, "HDFC")
		assert.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
		assert.Equal(t, "HDFC", found.Name)
	})

	t.Run("should return the existing row when the name differs only in case", func(t *testing.T) {
		// given
		ctx, repo := setupTestRepository(t)
		first, err := repo.Create(ctx, "HDFC")
		require.NoError(t, err)

		// when
		second, err := repo.Create(ctx, "hdfc")

		// then
		assert.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "HDFC", second.Name)
	})
}

func TestRepositoryImpl_FindByName(t *testing.T) {
	t.Run("should match case-insensitively", func(t *testing.T) {
		// given
		ctx, repo := setupTestRepository(t)
		created, err := repo.Create(ctx, "Paytm Wallet")
		require.NoError(t, err)

		// when
		found, err := repo.FindByName(ctx, "PAYTM WALLET")

		// then
		assert.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
	})

	t.Run("should return ErrSourceNotFound for an unknown name", func(t *testing.T) {
		// given
		ctx, repo := setupTestRepository(t)

		// when
		_, err := repo.FindByName(ctx, "Nowhere Bank")

		// then
		assert.ErrorIs(t, err, ErrSourceNotFound)
	})
}

func TestRepositoryImpl_List(t *testing.T) {
	t.Run("should list sources ordered by name", func(t *testing.T) {
		// given
		ctx, repo := setupTestRepository(t)
		_, err := repo.Create(ctx, "SBI")
		require.NoError(t, err)
		_, err = repo.Create(ctx, "axis")
		require.NoError(t, err)
		_, err = repo.Create(ctx, "HDFC")
		require.NoError(t, err)

		// when
		sources, err := repo.List(ctx)

		// then
		assert.NoError(t, err)
		require.Len(t, sources, 3)
		assert.Equal(t, "axis", sources[0].Name)
		assert.Equal(t, "HDFC", sources[1].Name)
		assert.Equal(t, "SBI", sources[2].Name)
	})
}
