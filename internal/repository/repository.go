// Package repository provides user storage backends.
// Every backend enforces email uniqueness with a storage-level index.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/enroll/enroll/internal/model"
)

// Common errors for user store operations.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateKey  = errors.New("duplicate key")
	ErrUnknownDriver = errors.New("unknown store driver")
)

// Supported store drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Store persists user records keyed by normalized email.
// Callers pass emails already normalized.
type Store interface {
	// FindByEmail returns ErrUserNotFound when no user has the email.
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// Insert assigns ID and CreatedAt. It returns ErrDuplicateKey when
	// the uniqueness index rejects the email.
	Insert(ctx context.Context, email, passwordHash string) (*model.User, error)
	// InsertIfAbsent creates the user unless the email exists and reports
	// whether a record was created. Existing records are left untouched.
	InsertIfAbsent(ctx context.Context, email, passwordHash string) (bool, error)
	// EnsureIndexes creates the schema and the unique email index.
	EnsureIndexes(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
	// Name identifies the backend in health checks and logs.
	Name() string
}

// Options selects and configures a store backend.
type Options struct {
	Driver        string
	MongoURI      string
	MongoDatabase string
	DatabaseURL   string
}

// Open connects to the backend named by opts.Driver.
// Indexes are not created; call EnsureIndexes once at startup.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case DriverMongo, "":
		store, err := NewMongo(ctx, opts.MongoURI, opts.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return store, nil
	case DriverPostgres:
		store, err := NewPostgres(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return store, nil
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}

// creationTime returns the timestamp stored as createdAt.
// Millisecond precision matches what every backend round-trips.
func creationTime() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
