package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enroll/enroll/internal/auth"
	"github.com/enroll/enroll/internal/events"
	"github.com/enroll/enroll/internal/metrics"
	"github.com/enroll/enroll/internal/model"
	"github.com/enroll/enroll/internal/repository"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.UserRegistered
}

func (p *recordingPublisher) PublishAsync(event events.UserRegistered) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

// racingStore makes every caller see "not found" before any insert runs.
type racingStore struct {
	*repository.MemoryStore
	barrier sync.WaitGroup
}

func newRacingStore(callers int) *racingStore {
	s := &racingStore{MemoryStore: repository.NewMemory()}
	s.barrier.Add(callers)
	return s
}

func (s *racingStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.MemoryStore.FindByEmail(ctx, email)
	s.barrier.Done()
	s.barrier.Wait()
	return user, err
}

type failingStore struct {
	findErr   error
	insertErr error
	inserts   int
}

func (s *failingStore) FindByEmail(context.Context, string) (*model.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return nil, repository.ErrUserNotFound
}

func (s *failingStore) Insert(context.Context, string, string) (*model.User, error) {
	s.inserts++
	return nil, s.insertErr
}

type failingHasher struct{}

func (failingHasher) Hash(string) (string, error) {
	return "", errors.New("entropy exhausted")
}

func newTestService(store UserStore, hasher PasswordHasher) (*RegistrationService, *metrics.InMemoryRecorder, *recordingPublisher) {
	recorder := metrics.NewInMemory()
	publisher := &recordingPublisher{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRegistrationService(store, hasher, publisher, recorder, logger), recorder, publisher
}

func TestRegister_Success(t *testing.T) {
	t.Parallel()

	store := repository.NewMemory()
	svc, recorder, publisher := newTestService(store, auth.NewHasher())

	summary, err := svc.Register(context.Background(), "  New.User@Example.COM ", "password1")
	require.NoError(t, err)

	assert.NotEmpty(t, summary.ID)
	assert.Equal(t, "new.user@example.com", summary.Email)
	assert.False(t, summary.CreatedAt.IsZero())

	stored, err := store.FindByEmail(context.Background(), "new.user@example.com")
	require.NoError(t, err)
	assert.Equal(t, summary.ID, stored.ID)
	assert.NotEqual(t, "password1", stored.PasswordHash)
	assert.NotContains(t, stored.PasswordHash, "password1")

	ok, err := auth.VerifyPassword("password1", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	snap := recorder.Snapshot()
	assert.Equal(t, uint64(1), snap.RegistrationsCreated)
	assert.Equal(t, uint64(1), snap.RegistrationDurationCount)
	assert.Equal(t, 1, publisher.count())
}

func TestRegister_DuplicateIgnoresCase(t *testing.T) {
	t.Parallel()

	store := repository.NewMemory()
	svc, recorder, publisher := newTestService(store, auth.NewHasher())
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.com", "password1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "A@B.COM", "different2")
	require.ErrorIs(t, err, ErrEmailAlreadyRegistered)

	assert.Equal(t, 1, store.Len())
	assert.Equal(t, uint64(1), recorder.Snapshot().RegistrationsConflict)
	assert.Equal(t, 1, publisher.count())
}

func TestRegister_DistinctEmailsGetDistinctIDs(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(repository.NewMemory(), auth.NewHasher())
	ctx := context.Background()

	seen := make(map[string]bool)
	for range 3 {
		summary, err := svc.Register(ctx, gofakeit.Email(), "password1")
		require.NoError(t, err)
		assert.False(t, seen[summary.ID], "id %s reused", summary.ID)
		seen[summary.ID] = true
	}
}

func TestRegister_ConcurrentSameEmail(t *testing.T) {
	t.Parallel()

	const callers = 2
	store := newRacingStore(callers)
	svc, recorder, _ := newTestService(store, auth.NewHasher())

	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Register(context.Background(), "race@example.com", "password1")
		}()
	}
	wg.Wait()

	var created, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrEmailAlreadyRegistered):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, created)
	assert.Equal(t, 1, conflicts)
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, uint64(1), recorder.Snapshot().RegistrationsConflict)
}

func TestRegister_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		store       *failingStore
		hasher      PasswordHasher
		wantInserts int
	}{
		{
			name:        "lookup_error",
			store:       &failingStore{findErr: errors.New("connection reset")},
			hasher:      auth.NewHasher(),
			wantInserts: 0,
		},
		{
			name:        "hash_error",
			store:       &failingStore{},
			hasher:      failingHasher{},
			wantInserts: 0,
		},
		{
			name:        "insert_error",
			store:       &failingStore{insertErr: errors.New("disk full")},
			hasher:      auth.NewHasher(),
			wantInserts: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc, recorder, publisher := newTestService(tt.store, tt.hasher)

			summary, err := svc.Register(context.Background(), "x@y.com", "password1")
			require.ErrorIs(t, err, ErrRegistrationFailed)
			assert.Nil(t, summary)
			assert.NotErrorIs(t, err, ErrEmailAlreadyRegistered)

			assert.Equal(t, tt.wantInserts, tt.store.inserts)
			assert.Equal(t, uint64(1), recorder.Snapshot().RegistrationsFailed)
			assert.Zero(t, publisher.count())
		})
	}
}

func TestRegister_FailureDoesNotLeakCauseType(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	svc, _, _ := newTestService(&failingStore{insertErr: cause}, auth.NewHasher())

	_, err := svc.Register(context.Background(), "x@y.com", "password1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, cause)
	assert.True(t, strings.Contains(err.Error(), "boom"))
}

func TestNewRegistrationService_Defaults(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewRegistrationService(repository.NewMemory(), auth.NewHasher(), nil, nil, logger)

	_, err := svc.Register(context.Background(), "d@e.com", "password1")
	require.NoError(t, err)
}
