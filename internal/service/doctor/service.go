package doctor

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
	repo            repository.DoctorRepository
	appointmentRepo repository.AppointmentRepository
	hasher          security.PasswordHasher
	auditor         *audit.Service
}

func NewService(repo repository.DoctorRepository, appointmentRepo repository.AppointmentRepository, hasher security.PasswordHasher, auditor *audit.Service) *Service {
	return &Service{
		repo:            repo,
		appointmentRepo: appointmentRepo,
		hasher:          hasher,
		auditor:         auditor,
	}
}

// Create persists a new doctor account. The route is admin-gated.
func (s *Service) Create(ctx context.Context, req *model.CreateDoctorRequest) (*model.Doctor, error) {
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
	doctor := &model.Doctor{
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
		Specialization: req.Specialization,
		Department:     req.Department,
	}

	if err := s.repo.Create(ctx, doctor); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("email already registered")
		}
		return nil, fmt.Errorf("failed to create doctor: %w", err)
	}
	return doctor, nil
}

// Get returns a doctor profile. The doctor directory is readable by
// any authenticated caller; patients pick a doctor when booking.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	doctor, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("doctor")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return doctor, nil
}

func (s *Service) List(ctx context.Context) ([]*model.Doctor, error) {
	doctors, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}

// Update mutates profile fields. An admin may mutate any doctor; a
// doctor only its own record.
func (s *Service) Update(ctx context.Context, actor model.Actor, id uuid.UUID, req *model.UpdateDoctorRequest) (*model.Doctor, error) {
	if !actor.IsAdmin() && !actor.Is(id) {
		return nil, apperrors.Forbidden("doctors can only edit their own profile")
	}

	doctor, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("doctor")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}

	if err := req.Apply(&doctor.Account); err != nil {
		return nil, err
	}
	if req.Specialization != nil {
		doctor.Specialization = *req.Specialization
	}
	if req.Department != nil {
		doctor.Department = *req.Department
	}
	doctor.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, doctor); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("email already registered")
		}
		return nil, fmt.Errorf("failed to update doctor: %w", err)
	}

	s.auditor.Log(ctx, actor, "update", "doctor", id, req)
	return doctor, nil
}

// Delete removes a doctor and all of its appointments. Admin only.
func (s *Service) Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return apperrors.Forbidden("only admins can delete doctors")
	}

	if err := s.appointmentRepo.DeleteByDoctor(ctx, id); err != nil {
		return fmt.Errorf("failed to delete doctor appointments: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("doctor")
		}
		return fmt.Errorf("failed to delete doctor: %w", err)
	}

	s.auditor.Log(ctx, actor, "delete", "doctor", id, nil)
	return nil
}
