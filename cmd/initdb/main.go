// Command initdb prepares the user store: it creates the unique email index
// and, with -seed, inserts demo accounts that are never overwritten.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/enroll/enroll/internal/auth"
	"github.com/enroll/enroll/internal/config"
	"github.com/enroll/enroll/internal/logging"
	"github.com/enroll/enroll/internal/repository"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "Password123!"

// DemoEmails are the seeded accounts.
var DemoEmails = []string{
	"alice@example.com",
	"bob@example.com",
	"carol@example.com",
}

// SeedStore is the part of repository.Store initdb uses.
type SeedStore interface {
	EnsureIndexes(ctx context.Context) error
	InsertIfAbsent(ctx context.Context, email, passwordHash string) (bool, error)
}

type seedResult struct {
	Email    string `json:"email"`
	Inserted bool   `json:"inserted"`
}

type output struct {
	Driver string       `json:"driver"`
	Seeded []seedResult `json:"seeded,omitempty"`
}

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdout, os.Stderr))
}

// realMain returns the exit code so deferred cleanup runs before exit.
func realMain(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("initdb", flag.ContinueOnError)
	flags.SetOutput(stderr)
	var (
		seed    = flags.Bool("seed", false, "Insert demo users (existing users are left untouched)")
		format  = flags.String("format", "plain", "Output format: plain or json")
		timeout = flags.Duration("timeout", 30*time.Second, "Overall timeout")
	)
	if err := flags.Parse(args); err != nil {
		return 2
	}

	if *format != "plain" && *format != "json" {
		fmt.Fprintln(stderr, "format must be plain or json")
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}

	secret := cfg.MongoURI
	if cfg.StoreDriver == repository.DriverPostgres {
		secret = cfg.DatabaseURL
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	store, err := repository.Open(ctx, cfg.StoreOptions())
	if err != nil {
		fmt.Fprintln(stderr, "connect store:", logging.SanitizeError(err, secret))
		return 1
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			fmt.Fprintln(stderr, "close store:", logging.SanitizeError(err, secret))
		}
	}()

	out := output{Driver: store.Name()}
	out.Seeded, err = run(ctx, store, auth.NewHasher(), *seed)
	if err != nil {
		fmt.Fprintln(stderr, logging.SanitizeError(err, secret))
		return 1
	}

	if err := write(stdout, *format, out); err != nil {
		fmt.Fprintln(stderr, "write output:", err)
		return 1
	}
	return 0
}

// run creates indexes and optionally seeds the demo users.
func run(ctx context.Context, store SeedStore, hasher *auth.Hasher, seed bool) ([]seedResult, error) {
	if err := store.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}
	if !seed {
		return nil, nil
	}

	digest, err := hasher.Hash(DemoPassword)
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}

	results := make([]seedResult, 0, len(DemoEmails))
	for _, email := range DemoEmails {
		inserted, err := store.InsertIfAbsent(ctx, email, digest)
		if err != nil {
			return nil, fmt.Errorf("seed %s: %w", email, err)
		}
		results = append(results, seedResult{Email: email, Inserted: inserted})
	}
	return results, nil
}

func write(w io.Writer, format string, out output) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintf(w, "Indexes ready on %s store\n", out.Driver)
	for _, r := range out.Seeded {
		status := "exists"
		if r.Inserted {
			status = "inserted"
		}
		fmt.Fprintf(w, "  %-20s %s\n", r.Email, status)
	}
	return nil
}
