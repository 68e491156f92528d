package api

import (
	"github.com/google/uuid"

	"github.com/MuTuOz/HospitalManagementSystem-sub000/internal/scheduling"
)

type CreateSlotRequest struct {
	DoctorID   string `json:"doctor_id"`
	HospitalID string `json:"hospital_id"`
	Date       string `json:"date"` // YYYY-MM-DD
	Time       string `json:"time"` // HH:MM
}

type SlotResponse struct {
	ID         uuid.UUID `json:"id"`
	DoctorID   uuid.UUID `json:"doctor_id"`
	HospitalID uuid.UUID `json:"hospital_id"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	Occupied   bool      `json:"occupied"`
}

func toSlotResponse(s scheduling.Slot) SlotResponse {
	return SlotResponse{
		ID:         s.ID,
		DoctorID:   s.DoctorID,
		HospitalID: s.HospitalID,
		Date:       s.Date.Format("2006-01-02"),
		Time:       s.TimeOfDay.String(),
		Occupied:   s.Occupied,
	}
}

type BookAppointmentRequest struct {
	SlotID     string `json:"slot_id"`
	PatientID  string `json:"patient_id"`
	DoctorID   string `json:"doctor_id"`
	HospitalID string `json:"hospital_id"`
	Notes      string `json:"notes"`
}

type ActorRequest struct {
	ActorID string `json:"actor_id"`
}

type CompleteAppointmentRequest struct {
	ActorID      string `json:"actor_id"`
	Diagnosis    string `json:"diagnosis"`
	Prescription string `json:"prescription"`
	Notes        string `json:"notes"`
	TestResults  string `json:"test_results"`
}

type AppointmentResponse struct {
	ID           uuid.UUID `json:"id"`
	SlotID       uuid.UUID `json:"slot_id"`
	DoctorID     uuid.UUID `json:"doctor_id"`
	PatientID    uuid.UUID `json:"patient_id"`
	HospitalID   uuid.UUID `json:"hospital_id"`
	Status       string    `json:"status"`
	Notes        string    `json:"notes,omitempty"`
	Diagnosis    string    `json:"diagnosis,omitempty"`
	Prescription string    `json:"prescription,omitempty"`
}

func toAppointmentResponse(a *scheduling.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:           a.ID,
		SlotID:       a.SlotID,
		DoctorID:     a.DoctorID,
		PatientID:    a.PatientID,
		HospitalID:   a.HospitalID,
		Status:       string(a.Status),
		Notes:        a.Notes,
		Diagnosis:    a.Diagnosis,
		Prescription: a.Prescription,
	}
}

type AppointmentDetailResponse struct {
	AppointmentResponse
	DoctorName   string `json:"doctor_name"`
	PatientName  string `json:"patient_name"`
	HospitalName string `json:"hospital_name"`
	Date         string `json:"date"`
	Time         string `json:"time"`
}

func toDetailResponse(d scheduling.AppointmentDetail) AppointmentDetailResponse {
	return AppointmentDetailResponse{
		AppointmentResponse: toAppointmentResponse(&d.Appointment),
		DoctorName:          d.DoctorName,
		PatientName:         d.PatientName,
		HospitalName:        d.HospitalName,
		Date:                d.Date.Format("2006-01-02"),
		Time:                d.TimeOfDay.String(),
	}
}

type SweepResponse struct {
	Swept int `json:"swept"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
