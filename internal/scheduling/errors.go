package scheduling

import "errors"

var (
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrPatientNotFound     = errors.New("patient not found")
	ErrHospitalNotFound    = errors.New("hospital not found")
	ErrSlotNotFound        = errors.New("slot not found")
	ErrAppointmentNotFound = errors.New("appointment not found")

	// Slot creation and deletion.
	ErrPastDate              = errors.New("slot date is in the past")
	ErrWeekendDate           = errors.New("slot date falls on a weekend")
	ErrOutsideOperatingHours = errors.New("slot time is outside operating hours")
	ErrDuplicateSlot         = errors.New("slot already exists for this doctor, date and time")
	ErrSlotOccupied          = errors.New("slot is occupied and cannot be deleted")

	// Booking lifecycle.
	ErrSlotAlreadyBooked     = errors.New("slot already has an active appointment")
	ErrSlotBeingBooked       = errors.New("slot is currently being booked, please retry")
	ErrSlotNoLongerAvailable = errors.New("slot has been booked by another patient")
	ErrSlotDateInPast        = errors.New("slot date has already passed")
	ErrAlreadyCompleted      = errors.New("appointment is completed and immutable")
	ErrNotScheduled          = errors.New("appointment is not in scheduled state")

	// ErrStoreUnavailable wraps infrastructure failures; callers should
	// treat it as retryable.
	ErrStoreUnavailable = errors.New("store unavailable")
)
