package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medhq/hospital-api/internal/email"
	"github.com/medhq/hospital-api/internal/model"
	"github.com/medhq/hospital-api/internal/repository"
	"github.com/medhq/hospital-api/internal/service/audit"
	apperrors "github.com/medhq/hospital-api/pkg/errors"
	"github.com/medhq/hospital-api/pkg/logger"
)

type Service struct {
	repo        repository.AppointmentRepository
	patientRepo repository.PatientRepository
	doctorRepo  repository.DoctorRepository
	emailSvc    email.Service
	auditor     *audit.Service
	log         *logger.Logger

	// now is injectable so temporal checks are testable.
	now func() time.Time
	loc *time.Location
}

func NewService(
	repo repository.AppointmentRepository,
	patientRepo repository.PatientRepository,
	doctorRepo repository.DoctorRepository,
	emailSvc email.Service,
	auditor *audit.Service,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:        repo,
		patientRepo: patientRepo,
		doctorRepo:  doctorRepo,
		emailSvc:    emailSvc,
		auditor:     auditor,
		log:         log,
		now:         time.Now,
		loc:         time.Local,
	}
}

// WithClock overrides the service clock.
func (s *Service) WithClock(now func() time.Time, loc *time.Location) *Service {
	s.now = now
	s.loc = loc
	return s
}

// ScopeFor derives the record-selection predicate for an actor:
// admins see everything, doctors and patients see their own records.
// Pure, no side effects.
func (s *Service) ScopeFor(actor model.Actor) (model.AppointmentScope, error) {
	switch actor.Role {
	case model.RoleAdmin:
		return model.AppointmentScope{All: true}, nil
	case model.RoleDoctor:
		return model.AppointmentScope{DoctorID: actor.ID}, nil
	case model.RolePatient:
		return model.AppointmentScope{PatientID: actor.ID}, nil
	default:
		return model.AppointmentScope{}, apperrors.Forbidden("unknown role")
	}
}

// List returns the appointments visible to the actor with doctor and
// patient display fields resolved.
func (s *Service) List(ctx context.Context, actor model.Actor) ([]*model.AppointmentDetail, error) {
	scope, err := s.ScopeFor(actor)
	if err != nil {
		return nil, err
	}

	appointments, err := s.repo.List(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// ListForPatient returns one patient's appointments. Admins may read
// any patient's history; a patient only its own.
func (s *Service) ListForPatient(ctx context.Context, actor model.Actor, patientID uuid.UUID) ([]*model.AppointmentDetail, error) {
	if !actor.IsAdmin() && !actor.Is(patientID) {
		return nil, apperrors.Forbidden("cannot view another patient's appointments")
	}

	if _, err := s.patientRepo.Get(ctx, patientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient")
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	appointments, err := s.repo.List(ctx, model.AppointmentScope{PatientID: patientID})
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// Get returns a single appointment if the actor's scope covers it.
// Records outside the scope read as absent, not as forbidden.
func (s *Service) Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.AppointmentDetail, error) {
	scope, err := s.ScopeFor(actor)
	if err != nil {
		return nil, err
	}

	detail, err := s.repo.GetDetail(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("appointment")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	if !scope.Matches(&detail.Appointment) {
		return nil, apperrors.NotFound("appointment")
	}
	return detail, nil
}

// Book creates an appointment on behalf of the calling patient. Only a
// patient may book, and only for itself: a payload naming another
// patient is a forbidden action, not a filtered one. The stored status
// is always pending regardless of client input.
func (s *Service) Book(ctx context.Context, actor model.Actor, req *model.BookAppointmentRequest) (*model.AppointmentDetail, error) {
	if !actor.IsPatient() {
		return nil, apperrors.Forbidden("only patients can book appointments")
	}

	if req.DoctorID == "" || req.PatientID == "" || req.Date == "" || req.Time == "" || req.Reason == "" {
		return nil, apperrors.Validation("doctor_id, patient_id, date, time and reason are required")
	}

	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return nil, apperrors.Validation("invalid doctor id")
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, apperrors.Validation("invalid patient id")
	}

	if !actor.Is(patientID) {
		return nil, apperrors.Forbidden("patients can only book appointments for themselves")
	}

	if err := validateReason(req.Reason); err != nil {
		return nil, err
	}
	if err := validateNotes(req.Notes); err != nil {
		return nil, err
	}

	if _, err := s.doctorRepo.Get(ctx, doctorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("doctor")
		}
		return nil, fmt.Errorf("failed to look up doctor: %w", err)
	}
	if _, err := s.patientRepo.Get(ctx, patientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient")
		}
		return nil, fmt.Errorf("failed to look up patient: %w", err)
	}

	date, startsAt, err := s.parseSchedule(req.Date, req.Time)
	if err != nil {
		return nil, err
	}
	if startsAt.Before(s.now()) {
		return nil, apperrors.Validation("appointment cannot be scheduled in the past")
	}

	now := s.now()
	apt := &model.Appointment{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		PatientID: patientID,
		DoctorID:  doctorID,
		Date:      date,
		Time:      req.Time,
		Reason:    req.Reason,
		Status:    model.AppointmentStatusPending,
		Notes:     req.Notes,
	}

	// Overlapping bookings for the same doctor and slot are not
	// serialized or detected here; see DESIGN.md.
	if err := s.repo.Create(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	detail, err := s.repo.GetDetail(ctx, apt.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load created appointment: %w", err)
	}

	if err := s.emailSvc.SendBookingConfirmation(detail); err != nil {
		s.log.Warn(err, "booking confirmation email failed")
	}
	s.auditor.Log(ctx, actor, "create", "appointment", apt.ID, apt)

	return detail, nil
}

// Update replaces the appointment's core fields. Admin only; all six
// core fields are required even for partial intent, and PUT and PATCH
// behave identically. Any status may follow any other.
func (s *Service) Update(ctx context.Context, actor model.Actor, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.AppointmentDetail, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Forbidden("only admins can modify appointments")
	}

	if req.DoctorID == "" || req.PatientID == "" || req.Date == "" || req.Time == "" || req.Reason == "" || req.Status == "" {
		return nil, apperrors.Validation("patient_id, doctor_id, date, time, reason and status are required")
	}

	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return nil, apperrors.Validation("invalid doctor id")
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, apperrors.Validation("invalid patient id")
	}

	status := model.AppointmentStatus(req.Status)
	if !status.Valid() {
		return nil, apperrors.Validation("invalid status %q", req.Status)
	}

	if err := validateReason(req.Reason); err != nil {
		return nil, err
	}
	if err := validateNotes(req.Notes); err != nil {
		return nil, err
	}

	apt, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("appointment")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	// Referential integrity is re-checked on every mutation.
	if _, err := s.doctorRepo.Get(ctx, doctorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("doctor")
		}
		return nil, fmt.Errorf("failed to look up doctor: %w", err)
	}
	if _, err := s.patientRepo.Get(ctx, patientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient")
		}
		return nil, fmt.Errorf("failed to look up patient: %w", err)
	}

	date, _, err := s.parseSchedule(req.Date, req.Time)
	if err != nil {
		return nil, err
	}

	prevStatus := apt.Status
	apt.PatientID = patientID
	apt.DoctorID = doctorID
	apt.Date = date
	apt.Time = req.Time
	apt.Reason = req.Reason
	apt.Status = status
	apt.Notes = req.Notes
	apt.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, apt); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment")
		}
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}

	detail, err := s.repo.GetDetail(ctx, apt.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load updated appointment: %w", err)
	}

	if detail.Status != prevStatus {
		if err := s.emailSvc.SendStatusChange(detail); err != nil {
			s.log.Warn(err, "status change email failed")
		}
	}
	s.auditor.Log(ctx, actor, "update", "appointment", apt.ID, apt)

	return detail, nil
}

// Delete removes an appointment. Admin only, immediate and
// unconditional; nothing references an appointment, so no cascade.
func (s *Service) Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return apperrors.Forbidden("only admins can delete appointments")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("appointment")
		}
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	s.auditor.Log(ctx, actor, "delete", "appointment", id, nil)
	return nil
}

func (s *Service) parseSchedule(dateStr, timeStr string) (time.Time, time.Time, error) {
	date, err := time.ParseInLocation(model.DateLayout, dateStr, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.Validation("invalid date %q, expected YYYY-MM-DD", dateStr)
	}
	tod, err := time.ParseInLocation(model.TimeLayout, timeStr, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.Validation("invalid time %q, expected HH:MM", timeStr)
	}
	startsAt := time.Date(date.Year(), date.Month(), date.Day(), tod.Hour(), tod.Minute(), 0, 0, s.loc)
	return date, startsAt, nil
}

func validateReason(reason string) error {
	if len(reason) < model.MinReasonLen {
		return apperrors.Validation("reason must be at least %d characters", model.MinReasonLen)
	}
	if len(reason) > model.MaxReasonLen {
		return apperrors.Validation("reason must not exceed %d characters", model.MaxReasonLen)
	}
	return nil
}

func validateNotes(notes string) error {
	if len(notes) > model.MaxNotesLen {
		return apperrors.Validation("notes must not exceed %d characters", model.MaxNotesLen)
	}
	return nil
}
