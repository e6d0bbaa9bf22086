package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enroll/enroll/internal/model"
)

// runStoreContract exercises the behaviour every Store backend must share.
func runStoreContract(t *testing.T, store Store) {
	t.Helper()

	ctx := context.Background()
	require.NoError(t, store.EnsureIndexes(ctx))

	uniqueEmail := func() string {
		return model.NormalizeEmail(gofakeit.UUID() + "@example.com")
	}

	t.Run("ensure_indexes_is_idempotent", func(t *testing.T) {
		require.NoError(t, store.EnsureIndexes(ctx))
	})

	t.Run("insert_then_find", func(t *testing.T) {
		email := uniqueEmail()

		created, err := store.Insert(ctx, email, "$2a$10$digest")
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, email, created.Email)
		assert.False(t, created.CreatedAt.IsZero())

		found, err := store.FindByEmail(ctx, email)
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
		assert.Equal(t, email, found.Email)
		assert.Equal(t, "$2a$10$digest", found.PasswordHash)
		assert.True(t, created.CreatedAt.Equal(found.CreatedAt),
			"createdAt round trip: inserted %v, found %v", created.CreatedAt, found.CreatedAt)
	})

	t.Run("find_missing", func(t *testing.T) {
		_, err := store.FindByEmail(ctx, uniqueEmail())
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("duplicate_insert", func(t *testing.T) {
		email := uniqueEmail()

		_, err := store.Insert(ctx, email, "first")
		require.NoError(t, err)

		_, err = store.Insert(ctx, email, "second")
		assert.ErrorIs(t, err, ErrDuplicateKey)

		found, err := store.FindByEmail(ctx, email)
		require.NoError(t, err)
		assert.Equal(t, "first", found.PasswordHash)
	})

	t.Run("insert_if_absent", func(t *testing.T) {
		email := uniqueEmail()

		created, err := store.InsertIfAbsent(ctx, email, "first")
		require.NoError(t, err)
		assert.True(t, created)

		created, err = store.InsertIfAbsent(ctx, email, "second")
		require.NoError(t, err)
		assert.False(t, created)

		found, err := store.FindByEmail(ctx, email)
		require.NoError(t, err)
		assert.Equal(t, "first", found.PasswordHash)
	})

	t.Run("concurrent_inserts_single_winner", func(t *testing.T) {
		email := uniqueEmail()
		const workers = 8

		var (
			wg         sync.WaitGroup
			mu         sync.Mutex
			successes  int
			duplicates int
		)

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.Insert(ctx, email, "digest")

				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					successes++
				case errors.Is(err, ErrDuplicateKey):
					duplicates++
				default:
					t.Errorf("unexpected insert error: %v", err)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, successes)
		assert.Equal(t, workers-1, duplicates)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, store.Ping(ctx))
	})
}
