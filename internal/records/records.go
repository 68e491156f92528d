// Package records talks to the external medical-records collaborator.
// Record creation is a best-effort side effect of appointment completion;
// failures are reported to the caller, who logs and continues.
package records

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateRequest struct {
	PatientID     uuid.UUID `json:"patient_id"`
	DoctorID      uuid.UUID `json:"doctor_id"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	HospitalID    uuid.UUID `json:"hospital_id"`
	TestResults   string    `json:"test_results"`
	Medications   string    `json:"medications"`
	Notes         string    `json:"notes"`
}

type Creator interface {
	CreateRecord(ctx context.Context, req CreateRequest) error
}

// HTTPCreator posts record-creation requests to the records service.
type HTTPCreator struct {
	baseURL string
	client  *http.Client
}

func NewHTTPCreator(baseURL string) *HTTPCreator {
	return &HTTPCreator{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *HTTPCreator) CreateRecord(ctx context.Context, req CreateRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal record request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/records", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build record request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("post record request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("records service returned %d", resp.StatusCode)
	}
	return nil
}

// LogCreator records the request in the log only. Used when no records
// service endpoint is configured.
type LogCreator struct {
	log *zap.Logger
}

func NewLogCreator(log *zap.Logger) *LogCreator {
	return &LogCreator{log: log}
}

func (c *LogCreator) CreateRecord(_ context.Context, req CreateRequest) error {
	c.log.Info("medical record requested",
		zap.String("patient_id", req.PatientID.String()),
		zap.String("appointment_id", req.AppointmentID.String()),
	)
	return nil
}
