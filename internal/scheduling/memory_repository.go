package scheduling

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-process store with the same contract as the
// postgres repository. A single mutex stands in for the partial unique
// index: every conditional write re-checks its precondition under the lock.
type MemoryRepository struct {
	mu           sync.Mutex
	doctors      map[uuid.UUID]Doctor
	patients     map[uuid.UUID]Patient
	hospitals    map[uuid.UUID]Hospital
	slots        map[uuid.UUID]Slot
	appointments map[uuid.UUID]Appointment
	audit        []AuditEntry
	nextAuditID  int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		doctors:      make(map[uuid.UUID]Doctor),
		patients:     make(map[uuid.UUID]Patient),
		hospitals:    make(map[uuid.UUID]Hospital),
		slots:        make(map[uuid.UUID]Slot),
		appointments: make(map[uuid.UUID]Appointment),
		nextAuditID:  1,
	}
}

// Seeding helpers for tests and store-less development.

func (r *MemoryRepository) PutDoctor(d Doctor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.doctors[d.ID] = d
}

func (r *MemoryRepository) PutPatient(p Patient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patients[p.ID] = p
}

func (r *MemoryRepository) PutHospital(h Hospital) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hospitals[h.ID] = h
}

// PutSlot stores a slot bypassing creation-time validation. Tests use it
// to stage slots whose dates CreateSlot would reject.
func (r *MemoryRepository) PutSlot(s Slot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[s.ID] = s
}

// PutAppointment stores an appointment in an arbitrary state, bypassing
// the booking engine. Test staging only.
func (r *MemoryRepository) PutAppointment(a Appointment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appointments[a.ID] = a
}

// AuditEntries returns a snapshot of the audit trail.
func (r *MemoryRepository) AuditEntries() []AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]AuditEntry, len(r.audit))
	copy(out, r.audit)
	return out
}

// Interface methods

func (r *MemoryRepository) GetDoctorByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doctors[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	return &d, nil
}

func (r *MemoryRepository) GetPatientByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	return &p, nil
}

func (r *MemoryRepository) GetHospitalByID(_ context.Context, id uuid.UUID) (*Hospital, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.hospitals[id]
	if !ok {
		return nil, ErrHospitalNotFound
	}
	return &h, nil
}

func (r *MemoryRepository) CreateSlot(_ context.Context, s *Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.slots {
		if existing.DoctorID == s.DoctorID && existing.Date.Equal(s.Date) && existing.TimeOfDay == s.TimeOfDay {
			return ErrDuplicateSlot
		}
	}
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	r.slots[s.ID] = *s
	return nil
}

func (r *MemoryRepository) GetSlotByID(_ context.Context, id uuid.UUID) (*Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok {
		return nil, ErrSlotNotFound
	}
	return &s, nil
}

func (r *MemoryRepository) DeleteFreeSlot(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok {
		return ErrSlotNotFound
	}
	if s.Occupied {
		return ErrSlotOccupied
	}
	for _, a := range r.appointments {
		if a.SlotID == id {
			return ErrSlotOccupied
		}
	}
	delete(r.slots, id)
	return nil
}

func (r *MemoryRepository) ListAvailableSlots(_ context.Context, doctorID uuid.UUID, hospitalID *uuid.UUID, from, to time.Time) ([]Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []Slot
	for _, s := range r.slots {
		if s.DoctorID != doctorID || s.Occupied {
			continue
		}
		if hospitalID != nil && s.HospitalID != *hospitalID {
			continue
		}
		if s.Date.Before(from) || s.Date.After(to) {
			continue
		}
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].TimeOfDay < result[j].TimeOfDay
	})
	return result, nil
}

func (r *MemoryRepository) SetSlotOccupied(_ context.Context, id uuid.UUID, occupied bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok {
		return ErrSlotNotFound
	}
	s.Occupied = occupied
	s.UpdatedAt = time.Now()
	r.slots[id] = s
	return nil
}

func (r *MemoryRepository) GetAppointmentByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return &a, nil
}

func (r *MemoryRepository) GetActiveAppointmentForSlot(_ context.Context, slotID uuid.UUID) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeForSlotLocked(slotID)
}

func (r *MemoryRepository) activeForSlotLocked(slotID uuid.UUID) (*Appointment, error) {
	for _, a := range r.appointments {
		if a.SlotID == slotID && a.Status.Active() {
			found := a
			return &found, nil
		}
	}
	return nil, ErrAppointmentNotFound
}

func (r *MemoryRepository) GetCancelledAppointmentForSlot(_ context.Context, slotID uuid.UUID) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.appointments {
		if a.SlotID == slotID && a.Status == StatusCancelled {
			found := a
			return &found, nil
		}
	}
	return nil, ErrAppointmentNotFound
}

func (r *MemoryRepository) CreateScheduledAppointment(_ context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.activeForSlotLocked(a.SlotID); err == nil {
		return ErrSlotAlreadyBooked
	}
	now := time.Now()
	a.Status = StatusScheduled
	a.CreatedAt = now
	a.UpdatedAt = now
	r.appointments[a.ID] = *a
	return nil
}

func (r *MemoryRepository) RebookCancelledAppointment(_ context.Context, id, patientID uuid.UUID, notes string) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok || a.Status != StatusCancelled {
		return nil, ErrAppointmentNotFound
	}
	a.PatientID = patientID
	a.Notes = notes
	a.Status = StatusScheduled
	a.UpdatedAt = time.Now()
	r.appointments[id] = a
	return &a, nil
}

func (r *MemoryRepository) UpdateAppointmentStatus(_ context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok || a.Status != from {
		return nil, ErrAppointmentNotFound
	}
	a.Status = to
	a.UpdatedAt = time.Now()
	r.appointments[id] = a
	return &a, nil
}

func (r *MemoryRepository) CompleteAppointment(_ context.Context, id uuid.UUID, diagnosis, prescription, notes string) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok || a.Status != StatusScheduled {
		return nil, ErrAppointmentNotFound
	}
	a.Status = StatusCompleted
	a.Diagnosis = diagnosis
	a.Prescription = prescription
	a.Notes = notes
	a.UpdatedAt = time.Now()
	r.appointments[id] = a
	return &a, nil
}

func (r *MemoryRepository) FindPastDueScheduled(_ context.Context, before time.Time) ([]Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []Appointment
	for _, a := range r.appointments {
		if a.Status != StatusScheduled {
			continue
		}
		s, ok := r.slots[a.SlotID]
		if !ok {
			continue
		}
		if s.Date.Before(before) {
			result = append(result, a)
		}
	}
	return result, nil
}

func (r *MemoryRepository) listDetails(match func(Appointment) bool) []AppointmentDetail {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []AppointmentDetail
	for _, a := range r.appointments {
		if !match(a) {
			continue
		}
		d := AppointmentDetail{Appointment: a}
		if s, ok := r.slots[a.SlotID]; ok {
			d.Date = s.Date
			d.TimeOfDay = s.TimeOfDay
		}
		if doc, ok := r.doctors[a.DoctorID]; ok {
			d.DoctorName = doc.Name
		}
		if p, ok := r.patients[a.PatientID]; ok {
			d.PatientName = p.Name
		}
		if h, ok := r.hospitals[a.HospitalID]; ok {
			d.HospitalName = h.Name
		}
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].TimeOfDay < result[j].TimeOfDay
	})
	return result
}

func (r *MemoryRepository) ListAppointmentsByDoctor(_ context.Context, doctorID uuid.UUID) ([]AppointmentDetail, error) {
	return r.listDetails(func(a Appointment) bool { return a.DoctorID == doctorID }), nil
}

func (r *MemoryRepository) ListAppointmentsByPatient(_ context.Context, patientID uuid.UUID) ([]AppointmentDetail, error) {
	return r.listDetails(func(a Appointment) bool { return a.PatientID == patientID }), nil
}

func (r *MemoryRepository) ListAppointmentsByHospital(_ context.Context, hospitalID uuid.UUID) ([]AppointmentDetail, error) {
	return r.listDetails(func(a Appointment) bool { return a.HospitalID == hospitalID }), nil
}

func (r *MemoryRepository) InsertAuditEntry(_ context.Context, e AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = r.nextAuditID
	r.nextAuditID++
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	r.audit = append(r.audit, e)
	return nil
}
