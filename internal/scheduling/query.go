package scheduling

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// AppointmentQuery serves the read-side views used by dashboards and
// reports. Results are consistent snapshots, not linearized against
// concurrent bookings.
type AppointmentQuery struct {
	repo Repository
}

func NewAppointmentQuery(repo Repository) *AppointmentQuery {
	return &AppointmentQuery{repo: repo}
}

func (q *AppointmentQuery) ByDoctor(ctx context.Context, doctorID uuid.UUID) ([]AppointmentDetail, error) {
	details, err := q.repo.ListAppointmentsByDoctor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("appointments by doctor: %w", err)
	}
	return details, nil
}

func (q *AppointmentQuery) ByPatient(ctx context.Context, patientID uuid.UUID) ([]AppointmentDetail, error) {
	details, err := q.repo.ListAppointmentsByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("appointments by patient: %w", err)
	}
	return details, nil
}

func (q *AppointmentQuery) ByHospital(ctx context.Context, hospitalID uuid.UUID) ([]AppointmentDetail, error) {
	details, err := q.repo.ListAppointmentsByHospital(ctx, hospitalID)
	if err != nil {
		return nil, fmt.Errorf("appointments by hospital: %w", err)
	}
	return details, nil
}

func (q *AppointmentQuery) ByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return q.repo.GetAppointmentByID(ctx, id)
}
