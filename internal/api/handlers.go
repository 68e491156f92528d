package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MuTuOz/HospitalManagementSystem-sub000/internal/metrics"
	"github.com/MuTuOz/HospitalManagementSystem-sub000/internal/scheduling"
)

func parseUUID(w http.ResponseWriter, raw, field string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_"+field, fmt.Sprintf("%s must be a valid UUID", field))
		return uuid.Nil, false
	}
	return id, true
}

func createSlotHandler(slots *scheduling.SlotStore, col *metrics.Collector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateSlotRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		doctorID, ok := parseUUID(w, req.DoctorID, "doctor_id")
		if !ok {
			return
		}
		hospitalID, ok := parseUUID(w, req.HospitalID, "hospital_id")
		if !ok {
			return
		}

		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}
		timeOfDay, err := scheduling.ParseTimeOfDay(req.Time)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_time", "time must be HH:MM")
			return
		}

		slotID, err := slots.CreateSlot(r.Context(), doctorID, hospitalID, date, timeOfDay)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if col != nil {
			col.SlotsCreatedTotal.Inc()
		}

		writeJSON(w, http.StatusCreated, SlotResponse{
			ID:         slotID,
			DoctorID:   doctorID,
			HospitalID: hospitalID,
			Date:       scheduling.DateOnly(date).Format("2006-01-02"),
			Time:       timeOfDay.String(),
		})
	}
}

func deleteSlotHandler(slots *scheduling.SlotStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slotID, ok := parseUUID(w, chi.URLParam(r, "id"), "slot_id")
		if !ok {
			return
		}

		if err := slots.DeleteSlot(r.Context(), slotID); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func listSlotsHandler(slots *scheduling.SlotStore, defaultWindow int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, ok := parseUUID(w, r.URL.Query().Get("doctor_id"), "doctor_id")
		if !ok {
			return
		}

		var hospitalID *uuid.UUID
		if raw := r.URL.Query().Get("hospital_id"); raw != "" {
			id, ok := parseUUID(w, raw, "hospital_id")
			if !ok {
				return
			}
			hospitalID = &id
		}

		withinDays := defaultWindow
		if raw := r.URL.Query().Get("within_days"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				writeError(w, http.StatusBadRequest, "invalid_within_days", "within_days must be a positive integer")
				return
			}
			withinDays = n
		}

		available, err := slots.ListAvailable(r.Context(), doctorID, hospitalID, withinDays)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := make([]SlotResponse, 0, len(available))
		for _, s := range available {
			resp = append(resp, toSlotResponse(s))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func bookAppointmentHandler(booking *scheduling.BookingEngine, col *metrics.Collector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BookAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		slotID, ok := parseUUID(w, req.SlotID, "slot_id")
		if !ok {
			return
		}
		patientID, ok := parseUUID(w, req.PatientID, "patient_id")
		if !ok {
			return
		}
		doctorID, ok := parseUUID(w, req.DoctorID, "doctor_id")
		if !ok {
			return
		}
		hospitalID, ok := parseUUID(w, req.HospitalID, "hospital_id")
		if !ok {
			return
		}

		appointmentID, err := booking.Book(r.Context(), patientID, doctorID, slotID, hospitalID, req.Notes)
		if err != nil {
			if col != nil {
				col.BookingsTotal.WithLabelValues("conflict_or_error").Inc()
			}
			writeDomainError(w, err)
			return
		}
		if col != nil {
			col.BookingsTotal.WithLabelValues("success").Inc()
		}

		writeJSON(w, http.StatusCreated, AppointmentResponse{
			ID:         appointmentID,
			SlotID:     slotID,
			DoctorID:   doctorID,
			PatientID:  patientID,
			HospitalID: hospitalID,
			Status:     string(scheduling.StatusScheduled),
			Notes:      req.Notes,
		})
	}
}

func cancelAppointmentHandler(booking *scheduling.BookingEngine, col *metrics.Collector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appointmentID, ok := parseUUID(w, chi.URLParam(r, "id"), "appointment_id")
		if !ok {
			return
		}

		var req ActorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		actorID, ok := parseUUID(w, req.ActorID, "actor_id")
		if !ok {
			return
		}

		if err := booking.Cancel(r.Context(), appointmentID, actorID); err != nil {
			writeDomainError(w, err)
			return
		}
		if col != nil {
			col.CancellationsTotal.Inc()
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func reactivateAppointmentHandler(booking *scheduling.BookingEngine, col *metrics.Collector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appointmentID, ok := parseUUID(w, chi.URLParam(r, "id"), "appointment_id")
		if !ok {
			return
		}

		var req ActorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		actorID, ok := parseUUID(w, req.ActorID, "actor_id")
		if !ok {
			return
		}

		if err := booking.Reactivate(r.Context(), appointmentID, actorID); err != nil {
			writeDomainError(w, err)
			return
		}
		if col != nil {
			col.ReactivationsTotal.Inc()
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func completeAppointmentHandler(completion *scheduling.CompletionWorkflow, col *metrics.Collector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appointmentID, ok := parseUUID(w, chi.URLParam(r, "id"), "appointment_id")
		if !ok {
			return
		}

		var req CompleteAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		err := completion.Complete(r.Context(), appointmentID, req.Diagnosis, req.Prescription, req.Notes, req.TestResults)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if col != nil {
			col.CompletionsTotal.Inc()
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func getAppointmentHandler(query *scheduling.AppointmentQuery) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appointmentID, ok := parseUUID(w, chi.URLParam(r, "id"), "appointment_id")
		if !ok {
			return
		}

		appt, err := query.ByID(r.Context(), appointmentID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

// listAppointmentsHandler serves the read-side views. Exactly one of
// doctor_id, patient_id or hospital_id selects the projection.
func listAppointmentsHandler(query *scheduling.AppointmentQuery) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		var (
			details []scheduling.AppointmentDetail
			err     error
		)
		switch {
		case q.Get("doctor_id") != "":
			id, ok := parseUUID(w, q.Get("doctor_id"), "doctor_id")
			if !ok {
				return
			}
			details, err = query.ByDoctor(r.Context(), id)
		case q.Get("patient_id") != "":
			id, ok := parseUUID(w, q.Get("patient_id"), "patient_id")
			if !ok {
				return
			}
			details, err = query.ByPatient(r.Context(), id)
		case q.Get("hospital_id") != "":
			id, ok := parseUUID(w, q.Get("hospital_id"), "hospital_id")
			if !ok {
				return
			}
			details, err = query.ByHospital(r.Context(), id)
		default:
			writeError(w, http.StatusBadRequest, "missing_filter", "one of doctor_id, patient_id or hospital_id is required")
			return
		}
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := make([]AppointmentDetailResponse, 0, len(details))
		for _, d := range details {
			resp = append(resp, toDetailResponse(d))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func sweepHandler(completion *scheduling.CompletionWorkflow, col *metrics.Collector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		swept, err := completion.SweepPastDue(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if col != nil {
			col.SweptTotal.Add(float64(swept))
		}
		writeJSON(w, http.StatusOK, SweepResponse{Swept: swept})
	}
}
