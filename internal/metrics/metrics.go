// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Registration outcomes.
const (
	OutcomeCreated  = "created"
	OutcomeConflict = "conflict"
	OutcomeInvalid  = "invalid"
	OutcomeFailed   = "failed"
)

// Event publish statuses.
const (
	PublishSuccess = "success"
	PublishDropped = "dropped"
)

// Recorder captures metric events for the application.
type Recorder interface {
	// IncRegistration counts a registration attempt by outcome.
	IncRegistration(outcome string)
	ObserveRegistrationDuration(duration time.Duration)

	// IncEventPublished counts user.registered events by publish status.
	IncEventPublished(status string)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
