package admin

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
	repo    repository.AdminRepository
	hasher  security.PasswordHasher
	auditor *audit.Service
}

func NewService(repo repository.AdminRepository, hasher security.PasswordHasher, auditor *audit.Service) *Service {
	return &Service{repo: repo, hasher: hasher, auditor: auditor}
}

func (s *Service) Create(ctx context.Context, actor model.Actor, req *model.CreateAdminRequest) (*model.Admin, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Forbidden("only admins can create admin accounts")
	}

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
	admin := &model.Admin{
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
	}

	if err := s.repo.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("email already registered")
		}
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	s.auditor.Log(ctx, actor, "create", "admin", admin.ID, req.CreateAccountRequest)
	return admin, nil
}

func (s *Service) Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Admin, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Forbidden("only admins can view admin accounts")
	}

	admin, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("admin")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return admin, nil
}

func (s *Service) List(ctx context.Context, actor model.Actor) ([]*model.Admin, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Forbidden("only admins can list admin accounts")
	}

	admins, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	return admins, nil
}

func (s *Service) Update(ctx context.Context, actor model.Actor, id uuid.UUID, req *model.UpdateAccountRequest) (*model.Admin, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Forbidden("only admins can edit admin accounts")
	}

	admin, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("admin")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}

	if err := req.Apply(&admin.Account); err != nil {
		return nil, err
	}
	admin.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("email already registered")
		}
		return nil, fmt.Errorf("failed to update admin: %w", err)
	}

	s.auditor.Log(ctx, actor, "update", "admin", id, req)
	return admin, nil
}

// Delete removes an admin account. An admin cannot delete itself; the
// guard compares resolved caller ids, not email strings.
func (s *Service) Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return apperrors.Forbidden("only admins can delete admin accounts")
	}
	if actor.Is(id) {
		return apperrors.Forbidden("admins cannot delete their own account")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("admin")
		}
		return fmt.Errorf("failed to delete admin: %w", err)
	}

	s.auditor.Log(ctx, actor, "delete", "admin", id, nil)
	return nil
}
