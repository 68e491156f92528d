package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(
		&d.ID,
		&d.HospitalID,
		&d.Name,
		&d.Specialty,
		&d.Email,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, storeErr("scan doctor", err)
	}
	return &d, nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Email,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, storeErr("scan patient", err)
	}
	return &p, nil
}

func scanHospital(row pgx.Row) (*Hospital, error) {
	var h Hospital
	err := row.Scan(
		&h.ID,
		&h.Name,
		&h.Address,
		&h.CreatedAt,
		&h.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrHospitalNotFound
		}
		return nil, storeErr("scan hospital", err)
	}
	return &h, nil
}

func scanSlot(row pgx.Row) (*Slot, error) {
	var s Slot
	var minutes int16

	err := row.Scan(
		&s.ID,
		&s.DoctorID,
		&s.HospitalID,
		&s.Date,
		&minutes,
		&s.Occupied,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, storeErr("scan slot", err)
	}

	s.Date = DateOnly(s.Date)
	s.TimeOfDay = TimeOfDay(minutes)
	return &s, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.ID,
		&a.SlotID,
		&a.DoctorID,
		&a.PatientID,
		&a.HospitalID,
		&a.Status,
		&a.Notes,
		&a.Diagnosis,
		&a.Prescription,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, storeErr("scan appointment", err)
	}
	return &a, nil
}

// isUniqueViolation reports a postgres unique_violation (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isForeignKeyViolation reports a postgres foreign_key_violation (23503).
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// storeErr wraps an infrastructure failure as a retryable fault.
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

const appointmentColumns = `id, slot_id, doctor_id, patient_id, hospital_id, status, notes, diagnosis, prescription, created_at, updated_at`

// Interface methods

func (r *PgRepository) GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, hospital_id, name, specialty, email, created_at, updated_at
		FROM doctors
		WHERE id = $1
	`, id)
	return scanDoctor(row)
}

func (r *PgRepository) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, created_at, updated_at
		FROM patients
		WHERE id = $1
	`, id)
	return scanPatient(row)
}

func (r *PgRepository) GetHospitalByID(ctx context.Context, id uuid.UUID) (*Hospital, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, address, created_at, updated_at
		FROM hospitals
		WHERE id = $1
	`, id)
	return scanHospital(row)
}

func (r *PgRepository) CreateSlot(ctx context.Context, s *Slot) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO slots (id, doctor_id, hospital_id, slot_date, time_of_day, occupied, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, false, now(), now())
	`, s.ID, s.DoctorID, s.HospitalID, s.Date, int16(s.TimeOfDay))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlot
		}
		return storeErr("insert slot", err)
	}
	return nil
}

func (r *PgRepository) GetSlotByID(ctx context.Context, id uuid.UUID) (*Slot, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, doctor_id, hospital_id, slot_date, time_of_day, occupied, created_at, updated_at
		FROM slots
		WHERE id = $1
	`, id)
	return scanSlot(row)
}

// DeleteFreeSlot removes a slot only while it is unoccupied. The occupied
// check rides on the DELETE itself so a concurrent booking cannot slip in
// between a read and the delete. A slot with a retained cancelled
// appointment still backs that history row and cannot be removed either.
func (r *PgRepository) DeleteFreeSlot(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM slots
		WHERE id = $1 AND occupied = false
	`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrSlotOccupied
		}
		return storeErr("delete slot", err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish missing from occupied.
		if _, err := r.GetSlotByID(ctx, id); err != nil {
			return err
		}
		return ErrSlotOccupied
	}
	return nil
}

func (r *PgRepository) ListAvailableSlots(ctx context.Context, doctorID uuid.UUID, hospitalID *uuid.UUID, from, to time.Time) ([]Slot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, doctor_id, hospital_id, slot_date, time_of_day, occupied, created_at, updated_at
		FROM slots
		WHERE doctor_id = $1
		  AND occupied = false
		  AND slot_date BETWEEN $2 AND $3
		  AND ($4::uuid IS NULL OR hospital_id = $4)
		ORDER BY slot_date, time_of_day
	`, doctorID, from, to, hospitalID)
	if err != nil {
		return nil, storeErr("list available slots", err)
	}
	defer rows.Close()

	var result []Slot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list available slots", err)
	}
	return result, nil
}

func (r *PgRepository) SetSlotOccupied(ctx context.Context, id uuid.UUID, occupied bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE slots
		SET occupied = $2,
		    updated_at = now()
		WHERE id = $1
	`, id, occupied)
	if err != nil {
		return storeErr("update slot occupied", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSlotNotFound
	}
	return nil
}

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) GetActiveAppointmentForSlot(ctx context.Context, slotID uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE slot_id = $1 AND status IN ('scheduled', 'completed')
	`, slotID)
	return scanAppointment(row)
}

func (r *PgRepository) GetCancelledAppointmentForSlot(ctx context.Context, slotID uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE slot_id = $1 AND status = 'cancelled'
	`, slotID)
	return scanAppointment(row)
}

// CreateScheduledAppointment inserts a new scheduled appointment. The
// partial unique index on appointments(slot_id) for active statuses makes
// the insert fail if another active appointment claims the slot.
func (r *PgRepository) CreateScheduledAppointment(ctx context.Context, a *Appointment) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (id, slot_id, doctor_id, patient_id, hospital_id, status, notes, diagnosis, prescription, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 'scheduled', $6, '', '', now(), now())
		RETURNING `+appointmentColumns+`
	`, a.ID, a.SlotID, a.DoctorID, a.PatientID, a.HospitalID, a.Notes)

	created, err := scanAppointment(row)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlotAlreadyBooked
		}
		return err
	}
	*a = *created
	return nil
}

// RebookCancelledAppointment reuses a retained cancelled appointment:
// the slot keeps one appointment identity across cancel/rebook cycles.
// The status condition makes the rebook a compare-and-swap.
func (r *PgRepository) RebookCancelledAppointment(ctx context.Context, id, patientID uuid.UUID, notes string) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET patient_id = $2,
		    notes = $3,
		    status = 'scheduled',
		    updated_at = now()
		WHERE id = $1
		  AND status = 'cancelled'
		RETURNING `+appointmentColumns+`
	`, id, patientID, notes)
	return scanAppointment(row)
}

func (r *PgRepository) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING `+appointmentColumns+`
	`, id, to, from)
	return scanAppointment(row)
}

func (r *PgRepository) CompleteAppointment(ctx context.Context, id uuid.UUID, diagnosis, prescription, notes string) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = 'completed',
		    diagnosis = $2,
		    prescription = $3,
		    notes = $4,
		    updated_at = now()
		WHERE id = $1
		  AND status = 'scheduled'
		RETURNING `+appointmentColumns+`
	`, id, diagnosis, prescription, notes)
	return scanAppointment(row)
}

func (r *PgRepository) FindPastDueScheduled(ctx context.Context, before time.Time) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.slot_id, a.doctor_id, a.patient_id, a.hospital_id, a.status, a.notes, a.diagnosis, a.prescription, a.created_at, a.updated_at
		FROM appointments a
		JOIN slots s ON s.id = a.slot_id
		WHERE a.status = 'scheduled'
		  AND s.slot_date < $1
	`, before)
	if err != nil {
		return nil, storeErr("find past due scheduled", err)
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("find past due scheduled", err)
	}
	return result, nil
}

const detailQuery = `
	SELECT a.id, a.slot_id, a.doctor_id, a.patient_id, a.hospital_id, a.status, a.notes, a.diagnosis, a.prescription, a.created_at, a.updated_at,
	       d.name, p.name, h.name, s.slot_date, s.time_of_day
	FROM appointments a
	JOIN slots s ON s.id = a.slot_id
	JOIN doctors d ON d.id = a.doctor_id
	JOIN patients p ON p.id = a.patient_id
	JOIN hospitals h ON h.id = a.hospital_id
`

func (r *PgRepository) listDetails(ctx context.Context, where string, arg any) ([]AppointmentDetail, error) {
	rows, err := r.pool.Query(ctx, detailQuery+where+`
		ORDER BY s.slot_date, s.time_of_day
	`, arg)
	if err != nil {
		return nil, storeErr("list appointment details", err)
	}
	defer rows.Close()

	var result []AppointmentDetail
	for rows.Next() {
		var d AppointmentDetail
		var minutes int16
		err := rows.Scan(
			&d.ID,
			&d.SlotID,
			&d.DoctorID,
			&d.PatientID,
			&d.HospitalID,
			&d.Status,
			&d.Notes,
			&d.Diagnosis,
			&d.Prescription,
			&d.CreatedAt,
			&d.UpdatedAt,
			&d.DoctorName,
			&d.PatientName,
			&d.HospitalName,
			&d.Date,
			&minutes,
		)
		if err != nil {
			return nil, storeErr("scan appointment detail", err)
		}
		d.Date = DateOnly(d.Date)
		d.TimeOfDay = TimeOfDay(minutes)
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list appointment details", err)
	}
	return result, nil
}

func (r *PgRepository) ListAppointmentsByDoctor(ctx context.Context, doctorID uuid.UUID) ([]AppointmentDetail, error) {
	return r.listDetails(ctx, `WHERE a.doctor_id = $1`, doctorID)
}

func (r *PgRepository) ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID) ([]AppointmentDetail, error) {
	return r.listDetails(ctx, `WHERE a.patient_id = $1`, patientID)
}

func (r *PgRepository) ListAppointmentsByHospital(ctx context.Context, hospitalID uuid.UUID) ([]AppointmentDetail, error) {
	return r.listDetails(ctx, `WHERE a.hospital_id = $1`, hospitalID)
}

func (r *PgRepository) InsertAuditEntry(ctx context.Context, e AuditEntry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_log (actor_id, action, appointment_id, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, e.ActorID, e.Action, e.AppointmentID, nullableTime(e.CreatedAt))
	if err != nil {
		return storeErr("insert audit entry", err)
	}
	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
