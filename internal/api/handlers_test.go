package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MuTuOz/HospitalManagementSystem-sub000/internal/notify"
	"github.com/MuTuOz/HospitalManagementSystem-sub000/internal/records"
	redisclient "github.com/MuTuOz/HospitalManagementSystem-sub000/internal/redis"
	"github.com/MuTuOz/HospitalManagementSystem-sub000/internal/scheduling"
)

func newTestServer(t *testing.T) (*httptest.Server, *scheduling.MemoryRepository) {
	t.Helper()

	repo := scheduling.NewMemoryRepository()
	log := zap.NewNop()
	audit := scheduling.NewAuditTrail(repo, log, nil)
	t.Cleanup(func() { audit.Shutdown(time.Second) })

	router := NewRouter(RouterConfig{
		Slots:         scheduling.NewSlotStore(repo, log),
		Booking:       scheduling.NewBookingEngine(repo, redisclient.NewMutexLocker(), notify.NewLogNotifier(log), audit, log),
		Completion:    scheduling.NewCompletionWorkflow(repo, records.NewLogCreator(log), log, nil),
		Query:         scheduling.NewAppointmentQuery(repo),
		Log:           log,
		Env:           "test",
		Version:       "test",
		BookingWindow: 30,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, repo
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, out.Bytes()
}

// nextWeekdayStr returns the first Monday-Friday date at least daysAhead
// days from today, formatted for the API.
func nextWeekdayStr(daysAhead int) string {
	d := scheduling.Today().AddDate(0, 0, daysAhead)
	for scheduling.IsWeekend(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d.Format("2006-01-02")
}

func nextSaturdayStr() string {
	d := scheduling.Today().AddDate(0, 0, 1)
	for d.Weekday() != time.Saturday {
		d = d.AddDate(0, 0, 1)
	}
	return d.Format("2006-01-02")
}

func TestBookingLifecycleOverHTTP(t *testing.T) {
	srv, repo := newTestServer(t)

	hospital := scheduling.Hospital{ID: uuid.New(), Name: "Mercy West"}
	doctor := scheduling.Doctor{ID: uuid.New(), HospitalID: hospital.ID, Name: "Dr. Okafor"}
	patient := scheduling.Patient{ID: uuid.New(), Name: "Liam Duarte"}
	repo.PutHospital(hospital)
	repo.PutDoctor(doctor)
	repo.PutPatient(patient)

	// Create a slot.
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/slots", CreateSlotRequest{
		DoctorID:   doctor.ID.String(),
		HospitalID: hospital.ID.String(),
		Date:       nextWeekdayStr(1),
		Time:       "09:00",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var slot SlotResponse
	require.NoError(t, json.Unmarshal(body, &slot))

	// It shows up as available.
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/slots?doctor_id="+doctor.ID.String(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var available []SlotResponse
	require.NoError(t, json.Unmarshal(body, &available))
	require.Len(t, available, 1)
	assert.Equal(t, slot.ID, available[0].ID)

	// Book it.
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/appointments", BookAppointmentRequest{
		SlotID:     slot.ID.String(),
		PatientID:  patient.ID.String(),
		DoctorID:   doctor.ID.String(),
		HospitalID: hospital.ID.String(),
		Notes:      "persistent cough",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var appt AppointmentResponse
	require.NoError(t, json.Unmarshal(body, &appt))
	assert.Equal(t, "scheduled", appt.Status)

	// A second booking attempt conflicts.
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/appointments", BookAppointmentRequest{
		SlotID:     slot.ID.String(),
		PatientID:  uuid.NewString(),
		DoctorID:   doctor.ID.String(),
		HospitalID: hospital.ID.String(),
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, "slot_already_booked", errResp.Error)

	// The occupied slot is no longer deletable.
	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/slots/%s", srv.URL, slot.ID), nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Cancel, then reactivate.
	actor := ActorRequest{ActorID: patient.ID.String()}
	resp, _ = doJSON(t, http.MethodPost, fmt.Sprintf("%s/appointments/%s/cancel", srv.URL, appt.ID), actor)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, fmt.Sprintf("%s/appointments/%s/reactivate", srv.URL, appt.ID), actor)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Complete with clinical data.
	resp, _ = doJSON(t, http.MethodPost, fmt.Sprintf("%s/appointments/%s/complete", srv.URL, appt.ID), CompleteAppointmentRequest{
		ActorID:      doctor.ID.String(),
		Diagnosis:    "bronchitis",
		Prescription: "amoxicillin",
		Notes:        "follow up in two weeks",
	})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Read-side views carry display enrichment.
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/appointments?patient_id="+patient.ID.String(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var details []AppointmentDetailResponse
	require.NoError(t, json.Unmarshal(body, &details))
	require.Len(t, details, 1)
	assert.Equal(t, "completed", details[0].Status)
	assert.Equal(t, "bronchitis", details[0].Diagnosis)
	assert.Equal(t, "Dr. Okafor", details[0].DoctorName)
	assert.Equal(t, "Liam Duarte", details[0].PatientName)
	assert.Equal(t, "Mercy West", details[0].HospitalName)
	assert.Equal(t, "09:00", details[0].Time)

	// Completed appointments cannot be cancelled.
	resp, body = doJSON(t, http.MethodPost, fmt.Sprintf("%s/appointments/%s/cancel", srv.URL, appt.ID), actor)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, "already_completed", errResp.Error)
}

func TestSlotValidationOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)
	doctorID := uuid.NewString()
	hospitalID := uuid.NewString()

	cases := []struct {
		name       string
		req        CreateSlotRequest
		wantStatus int
		wantError  string
	}{
		{
			name:       "weekend date",
			req:        CreateSlotRequest{DoctorID: doctorID, HospitalID: hospitalID, Date: nextSaturdayStr(), Time: "09:00"},
			wantStatus: http.StatusBadRequest,
			wantError:  "weekend_date",
		},
		{
			name:       "outside operating hours",
			req:        CreateSlotRequest{DoctorID: doctorID, HospitalID: hospitalID, Date: nextWeekdayStr(1), Time: "07:45"},
			wantStatus: http.StatusBadRequest,
			wantError:  "outside_operating_hours",
		},
		{
			name:       "bad doctor id",
			req:        CreateSlotRequest{DoctorID: "not-a-uuid", HospitalID: hospitalID, Date: nextWeekdayStr(1), Time: "09:00"},
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid_doctor_id",
		},
		{
			name:       "bad date",
			req:        CreateSlotRequest{DoctorID: doctorID, HospitalID: hospitalID, Date: "03/10/2025", Time: "09:00"},
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid_date",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := doJSON(t, http.MethodPost, srv.URL+"/slots", tc.req)
			assert.Equal(t, tc.wantStatus, resp.StatusCode)

			var errResp ErrorResponse
			require.NoError(t, json.Unmarshal(body, &errResp))
			assert.Equal(t, tc.wantError, errResp.Error)
		})
	}
}

func TestListAppointmentsRequiresFilter(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/appointments", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, "missing_filter", errResp.Error)
}

func TestSweepEndpoint(t *testing.T) {
	srv, repo := newTestServer(t)

	slot := scheduling.Slot{
		ID:         uuid.New(),
		DoctorID:   uuid.New(),
		HospitalID: uuid.New(),
		Date:       scheduling.Today().AddDate(0, 0, -1),
		TimeOfDay:  9 * 60,
		Occupied:   true,
	}
	repo.PutSlot(slot)
	repo.PutAppointment(scheduling.Appointment{
		ID:         uuid.New(),
		SlotID:     slot.ID,
		DoctorID:   slot.DoctorID,
		PatientID:  uuid.New(),
		HospitalID: slot.HospitalID,
		Status:     scheduling.StatusScheduled,
	})

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/maintenance/sweep", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sweep SweepResponse
	require.NoError(t, json.Unmarshal(body, &sweep))
	assert.Equal(t, 1, sweep.Swept)
}

func TestHealthLiveness(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/health/live", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var live LivenessResponse
	require.NoError(t, json.Unmarshal(body, &live))
	assert.Equal(t, "ok", live.Status)
}
