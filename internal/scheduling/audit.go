package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const auditBufferSize = 1024

// AuditTrail appends (who, what, when) records asynchronously. Appends
// never block the state transition that triggered them: when the buffer
// is full the entry is dropped with a warning.
type AuditTrail struct {
	repo    Repository
	log     *zap.Logger
	entries chan AuditEntry
	done    chan struct{}
	dropped func()
}

// NewAuditTrail starts the persistence worker. onDrop, if non-nil, is
// invoked once per dropped entry (metrics hook).
func NewAuditTrail(repo Repository, log *zap.Logger, onDrop func()) *AuditTrail {
	t := &AuditTrail{
		repo:    repo,
		log:     log,
		entries: make(chan AuditEntry, auditBufferSize),
		done:    make(chan struct{}),
		dropped: onDrop,
	}
	go t.worker()
	return t
}

// Append enqueues an audit record.
func (t *AuditTrail) Append(actorID uuid.UUID, action string, appointmentID uuid.UUID) {
	e := AuditEntry{
		ActorID:       actorID,
		Action:        action,
		AppointmentID: appointmentID,
		CreatedAt:     time.Now(),
	}

	select {
	case t.entries <- e:
	default:
		t.log.Warn("audit buffer full, dropping entry",
			zap.String("action", action),
			zap.String("appointment_id", appointmentID.String()),
		)
		if t.dropped != nil {
			t.dropped()
		}
	}
}

// Shutdown drains the buffer, waiting up to the given timeout.
func (t *AuditTrail) Shutdown(timeout time.Duration) {
	close(t.entries)
	select {
	case <-t.done:
	case <-time.After(timeout):
		t.log.Warn("audit trail shutdown timed out; some entries may be lost")
	}
}

func (t *AuditTrail) worker() {
	defer close(t.done)
	for e := range t.entries {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := t.repo.InsertAuditEntry(ctx, e); err != nil {
			t.log.Error("failed to persist audit entry",
				zap.String("action", e.Action),
				zap.Error(err),
			)
		}
		cancel()
	}
}
