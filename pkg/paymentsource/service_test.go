package paymentsource

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var repoStub = NewStubRepository()

var service Service

func setup(t *testing.T) func() {
	service = NewService(repoStub)
	return func() {
		t.Log("Teardown after test")
		repoStub.Cleanup()
	}
}

func TestServiceImpl_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("should create a source on first use", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		source, err := service.Resolve(ctx, "HDFC")

		// then
		assert.NoError(t, err)
		assert.NotZero(t, source.ID)
		assert.Equal(t, "HDFC", source.Name)
	})

	t.Run("should resolve the same identity regardless of case", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		first, err := service.Resolve(ctx, "HDFC")
		require.NoError(t, err)

		// when
		second, err := service.Resolve(ctx, "hdfc")

		// then
		assert.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "HDFC", second.Name)
	})

	t.Run("should trim surrounding whitespace", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		first, err := service.Resolve(ctx, "SBI")
		require.NoError(t, err)

		// when
		second, err := service.Resolve(ctx, "  SBI  ")

		// then
		assert.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("should reject an empty name", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.Resolve(ctx, "   ")

		// then
		assert.ErrorIs(t, err, ErrEmptyName)
	})
}

func TestServiceImpl_List(t *testing.T) {
	ctx := context.Background()

	t.Run("should list all known sources", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		_, err := service.Resolve(ctx, "HDFC")
		require.NoError(t, err)
		_, err = service.Resolve(ctx, "Paytm")
		require.NoError(t, err)

		// when
		sources, err := service.List(ctx)

		// then
		assert.NoError(t, err)
		assert.Len(t, sources, 2)
	})
}
