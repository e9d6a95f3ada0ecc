package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// Valid reports whether s is one of the fixed status values. No
// transition graph is enforced between them.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusScheduled,
		AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

const (
	MinReasonLen = 10
	MaxReasonLen = 500
	MaxNotesLen  = 1000

	// DateLayout and TimeLayout are the wire formats for the calendar
	// date and the time-of-day of an appointment.
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Appointment references a patient and a doctor by id; resolution to
// display fields happens at read time, nothing is embedded.
type Appointment struct {
	Base
	PatientID uuid.UUID         `db:"patient_id" json:"patient_id"`
	DoctorID  uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	Date      time.Time         `db:"date" json:"date"`
	Time      string            `db:"time" json:"time"`
	Reason    string            `db:"reason" json:"reason"`
	Status    AppointmentStatus `db:"status" json:"status"`
	Notes     string            `db:"notes" json:"notes,omitempty"`
}

// StartsAt combines the calendar date and the time-of-day into an
// instant in the given location.
func (a *Appointment) StartsAt(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(TimeLayout, a.Time, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time of day %q: %w", a.Time, err)
	}
	d := a.Date
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}

// AppointmentDetail is an appointment with the referenced doctor and
// patient resolved to display-relevant fields.
type AppointmentDetail struct {
	Appointment
	DoctorName           string `db:"doctor_name" json:"doctor_name"`
	DoctorSurname        string `db:"doctor_surname" json:"doctor_surname"`
	DoctorSpecialization string `db:"doctor_specialization" json:"doctor_specialization"`
	PatientName          string `db:"patient_name" json:"patient_name"`
	PatientSurname       string `db:"patient_surname" json:"patient_surname"`
	PatientEmail         string `db:"patient_email" json:"patient_email"`
}

// BookAppointmentRequest is the patient-facing booking payload. A
// client-supplied status is deliberately not part of the contract;
// bookings always start pending.
type BookAppointmentRequest struct {
	DoctorID  string `json:"doctor_id" binding:"required"`
	PatientID string `json:"patient_id" binding:"required"`
	Date      string `json:"date" binding:"required"`
	Time      string `json:"time" binding:"required"`
	Reason    string `json:"reason" binding:"required"`
	Notes     string `json:"notes"`
}

// UpdateAppointmentRequest is the admin-facing replacement payload.
// All six core fields are required even for partial intent; PUT and
// PATCH are handled identically.
type UpdateAppointmentRequest struct {
	DoctorID  string `json:"doctor_id" binding:"required"`
	PatientID string `json:"patient_id" binding:"required"`
	Date      string `json:"date" binding:"required"`
	Time      string `json:"time" binding:"required"`
	Reason    string `json:"reason" binding:"required"`
	Status    string `json:"status" binding:"required"`
	Notes     string `json:"notes"`
}

// AppointmentScope restricts which appointment records an actor may
// see. The zero scope matches nothing; All matches every record.
type AppointmentScope struct {
	All       bool
	DoctorID  uuid.UUID
	PatientID uuid.UUID
}

// Matches reports whether the appointment is visible under the scope.
func (s AppointmentScope) Matches(a *Appointment) bool {
	if s.All {
		return true
	}
	if s.DoctorID != uuid.Nil {
		return a.DoctorID == s.DoctorID
	}
	if s.PatientID != uuid.Nil {
		return a.PatientID == s.PatientID
	}
	return false
}
