// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/enroll/enroll/internal/auth"
	"github.com/enroll/enroll/internal/events"
	"github.com/enroll/enroll/internal/metrics"
	"github.com/enroll/enroll/internal/model"
	"github.com/enroll/enroll/internal/repository"
)

// Service errors.
var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrRegistrationFailed     = errors.New("registration failed")
)

// UserStore is the subset of repository.Store the workflow needs.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Insert(ctx context.Context, email, passwordHash string) (*model.User, error)
}

// PasswordHasher produces one-way password digests.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
}

// RegistrationService creates user accounts.
type RegistrationService struct {
	store     UserStore
	hasher    PasswordHasher
	publisher events.Publisher
	metrics   metrics.Recorder
	logger    *slog.Logger
}

// NewRegistrationService creates a new RegistrationService.
// A nil publisher or recorder is replaced by a no-op.
func NewRegistrationService(
	store UserStore,
	hasher PasswordHasher,
	publisher events.Publisher,
	recorder metrics.Recorder,
	logger *slog.Logger,
) *RegistrationService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &RegistrationService{
		store:     store,
		hasher:    hasher,
		publisher: publisher,
		metrics:   recorder,
		logger:    logger.With("component", "service.registration"),
	}
}

// Register creates a user for email and password.
//
// The existence check and the insert are not atomic. When a concurrent
// registration wins the race, the store's unique index rejects the insert
// and the caller still gets ErrEmailAlreadyRegistered.
//
// Any other failure is returned as ErrRegistrationFailed. The cause is
// logged here and wrapped only as text, so callers cannot match on it.
func (s *RegistrationService) Register(ctx context.Context, email, password string) (*model.UserSummary, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveRegistrationDuration(time.Since(start))
	}()

	normalized := model.NormalizeEmail(email)
	log := s.logger.With("email_hash", auth.QuickHash(normalized))

	existing, err := s.store.FindByEmail(ctx, normalized)
	switch {
	case err == nil && existing != nil:
		log.Info("registration rejected: email already registered")
		s.metrics.IncRegistration(metrics.OutcomeConflict)
		return nil, ErrEmailAlreadyRegistered
	case err != nil && !errors.Is(err, repository.ErrUserNotFound):
		return nil, s.fail(log, "failed to look up user", err)
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, s.fail(log, "failed to hash password", err)
	}

	user, err := s.store.Insert(ctx, normalized, digest)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			log.Info("registration rejected: email registered concurrently")
			s.metrics.IncRegistration(metrics.OutcomeConflict)
			return nil, ErrEmailAlreadyRegistered
		}
		return nil, s.fail(log, "failed to create user", err)
	}

	summary := user.Summary()

	log.Info("user registered", "user_id", summary.ID)
	s.metrics.IncRegistration(metrics.OutcomeCreated)
	s.publisher.PublishAsync(events.NewUserRegistered(summary))

	return summary, nil
}

func (s *RegistrationService) fail(log *slog.Logger, msg string, cause error) error {
	log.Error(msg, "error", cause)
	s.metrics.IncRegistration(metrics.OutcomeFailed)
	return fmt.Errorf("%w: %v", ErrRegistrationFailed, cause)
}
