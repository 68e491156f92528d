package scheduling

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Active reports whether the status claims the slot. At most one active
// appointment may reference a slot at any time.
func (s AppointmentStatus) Active() bool {
	return s == StatusScheduled || s == StatusCompleted
}

// Slot is a bookable (doctor, date, time-of-day) unit.
type Slot struct {
	ID         uuid.UUID
	DoctorID   uuid.UUID
	HospitalID uuid.UUID
	Date       time.Time // calendar date, midnight UTC
	TimeOfDay  TimeOfDay
	Occupied   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Appointment binds one patient to one slot. Appointments are never
// physically deleted; a cancelled one is retained and reused on rebook.
type Appointment struct {
	ID           uuid.UUID
	SlotID       uuid.UUID
	DoctorID     uuid.UUID
	PatientID    uuid.UUID
	HospitalID   uuid.UUID
	Status       AppointmentStatus
	Notes        string
	Diagnosis    string
	Prescription string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Doctor struct {
	ID         uuid.UUID
	HospitalID uuid.UUID
	Name       string
	Specialty  *string
	Email      *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Patient struct {
	ID        uuid.UUID
	Name      string
	Email     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Hospital struct {
	ID        uuid.UUID
	Name      string
	Address   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AppointmentDetail is the read-side projection: an appointment joined
// with display names and its slot's date and time.
type AppointmentDetail struct {
	Appointment
	DoctorName   string
	PatientName  string
	HospitalName string
	Date         time.Time
	TimeOfDay    TimeOfDay
}

// AuditEntry records who did what to an appointment and when.
type AuditEntry struct {
	ID            int64
	ActorID       uuid.UUID
	Action        string
	AppointmentID uuid.UUID
	CreatedAt     time.Time
}
