package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository contains all store interactions needed by the services.
//
// Status-changing writes are conditional: they take effect only if the row
// is still in the expected prior state at commit time, so a lost lock can
// never produce a second active appointment for a slot.
type Repository interface {
	// Directory lookups, used for display enrichment only.
	GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetHospitalByID(ctx context.Context, id uuid.UUID) (*Hospital, error)

	// Slots.
	CreateSlot(ctx context.Context, s *Slot) error
	GetSlotByID(ctx context.Context, id uuid.UUID) (*Slot, error)
	DeleteFreeSlot(ctx context.Context, id uuid.UUID) error
	ListAvailableSlots(ctx context.Context, doctorID uuid.UUID, hospitalID *uuid.UUID, from, to time.Time) ([]Slot, error)
	SetSlotOccupied(ctx context.Context, id uuid.UUID, occupied bool) error

	// Appointments.
	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	GetActiveAppointmentForSlot(ctx context.Context, slotID uuid.UUID) (*Appointment, error)
	GetCancelledAppointmentForSlot(ctx context.Context, slotID uuid.UUID) (*Appointment, error)
	CreateScheduledAppointment(ctx context.Context, a *Appointment) error
	RebookCancelledAppointment(ctx context.Context, id, patientID uuid.UUID, notes string) (*Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error)
	CompleteAppointment(ctx context.Context, id uuid.UUID, diagnosis, prescription, notes string) (*Appointment, error)

	// Past-due sweep.
	FindPastDueScheduled(ctx context.Context, before time.Time) ([]Appointment, error)

	// Read-side projections.
	ListAppointmentsByDoctor(ctx context.Context, doctorID uuid.UUID) ([]AppointmentDetail, error)
	ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID) ([]AppointmentDetail, error)
	ListAppointmentsByHospital(ctx context.Context, hospitalID uuid.UUID) ([]AppointmentDetail, error)

	// Audit trail.
	InsertAuditEntry(ctx context.Context, e AuditEntry) error
}
