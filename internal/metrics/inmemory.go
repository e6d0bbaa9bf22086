package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	RegistrationsCreated      uint64
	RegistrationsConflict     uint64
	RegistrationsInvalid      uint64
	RegistrationsFailed       uint64
	RegistrationDurationCount uint64
	RegistrationDurationNs    int64
	EventsPublished           uint64
	EventsDropped             uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	registrationsCreated      uint64
	registrationsConflict     uint64
	registrationsInvalid      uint64
	registrationsFailed       uint64
	registrationDurationCount uint64
	registrationDurationNs    int64
	eventsPublished           uint64
	eventsDropped             uint64
}

var (
	_ Recorder    = (*InMemoryRecorder)(nil)
	_ Snapshotter = (*InMemoryRecorder)(nil)
)

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		RegistrationsCreated:      atomic.LoadUint64(&m.registrationsCreated),
		RegistrationsConflict:     atomic.LoadUint64(&m.registrationsConflict),
		RegistrationsInvalid:      atomic.LoadUint64(&m.registrationsInvalid),
		RegistrationsFailed:       atomic.LoadUint64(&m.registrationsFailed),
		RegistrationDurationCount: atomic.LoadUint64(&m.registrationDurationCount),
		RegistrationDurationNs:    atomic.LoadInt64(&m.registrationDurationNs),
		EventsPublished:           atomic.LoadUint64(&m.eventsPublished),
		EventsDropped:             atomic.LoadUint64(&m.eventsDropped),
	}
}

// IncRegistration increments the counter for outcome.
// Unknown outcomes are ignored.
func (m *InMemoryRecorder) IncRegistration(outcome string) {
	switch outcome {
	case OutcomeCreated:
		atomic.AddUint64(&m.registrationsCreated, 1)
	case OutcomeConflict:
		atomic.AddUint64(&m.registrationsConflict, 1)
	case OutcomeInvalid:
		atomic.AddUint64(&m.registrationsInvalid, 1)
	case OutcomeFailed:
		atomic.AddUint64(&m.registrationsFailed, 1)
	}
}

// ObserveRegistrationDuration records workflow duration.
func (m *InMemoryRecorder) ObserveRegistrationDuration(duration time.Duration) {
	atomic.AddUint64(&m.registrationDurationCount, 1)
	atomic.AddInt64(&m.registrationDurationNs, duration.Nanoseconds())
}

// IncEventPublished increments the publish counter for status.
func (m *InMemoryRecorder) IncEventPublished(status string) {
	switch status {
	case PublishSuccess:
		atomic.AddUint64(&m.eventsPublished, 1)
	case PublishDropped:
		atomic.AddUint64(&m.eventsDropped, 1)
	}
}
