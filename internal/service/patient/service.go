package patient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medhq/hospital-api/internal/model"
	"github.com/medhq/hospital-api/internal/repository"
	"github.com/medhq/hospital-api/internal/service/audit"
	apperrors "github.com/medhq/hospital-api/pkg/errors"
	"github.com/medhq/hospital-api/pkg/security"
)

type Service struct {
	repo            repository.PatientRepository
	appointmentRepo repository.AppointmentRepository
	hasher          security.PasswordHasher
	auditor         *audit.Service
}

func NewService(repo repository.PatientRepository, appointmentRepo repository.AppointmentRepository, hasher security.PasswordHasher, auditor *audit.Service) *Service {
	return &Service{
		repo:            repo,
		appointmentRepo: appointmentRepo,
		hasher:          hasher,
		auditor:         auditor,
	}
}

// Create persists a new patient account. Route-level authorization
// decides who may call this: admins through the patients resource,
// anyone through self-registration.
func (s *Service) Create(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	dob, err := time.Parse(model.DateLayout, req.DateOfBirth)
	if err != nil {
		return nil, apperrors.Validation("invalid date_of_birth %q, expected YYYY-MM-DD", req.DateOfBirth)
	}
	if !req.Gender.Valid() {
		return nil, apperrors.Validation("gender must be male or female")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Validation("invalid password: %v", err)
	}

	now := time.Now()
	patient := &model.Patient{
		Account: model.Account{
			Base: model.Base{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			Name:         req.Name,
			Surname:      req.Surname,
			Email:        req.Email,
			Phone:        req.Phone,
			Address:      req.Address,
			DateOfBirth:  dob,
			Gender:       req.Gender,
			PasswordHash: hash,
		},
		BloodGroup: req.BloodGroup,
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("email already registered")
		}
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}
	return patient, nil
}

func (s *Service) Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Patient, error) {
	if !actor.IsAdmin() && !actor.Is(id) {
		return nil, apperrors.Forbidden("patients can only view their own profile")
	}

	patient, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("patient")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return patient, nil
}

func (s *Service) List(ctx context.Context) ([]*model.Patient, error) {
	patients, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

// Update mutates profile fields. An admin may mutate any patient; a
// patient only its own record.
func (s *Service) Update(ctx context.Context, actor model.Actor, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	if !actor.IsAdmin() && !actor.Is(id) {
		return nil, apperrors.Forbidden("patients can only edit their own profile")
	}

	patient, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("patient")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	if err := req.Apply(&patient.Account); err != nil {
		return nil, err
	}
	if req.BloodGroup != nil {
		patient.BloodGroup = *req.BloodGroup
	}
	patient.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, patient); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("email already registered")
		}
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}

	s.auditor.Log(ctx, actor, "update", "patient", id, req)
	return patient, nil
}

// Delete removes a patient and, for referential hygiene, all of its
// appointments. Admin only.
func (s *Service) Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return apperrors.Forbidden("only admins can delete patients")
	}

	if err := s.appointmentRepo.DeleteByPatient(ctx, id); err != nil {
		return fmt.Errorf("failed to delete patient appointments: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("patient")
		}
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	s.auditor.Log(ctx, actor, "delete", "patient", id, nil)
	return nil
}
