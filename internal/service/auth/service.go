package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/medhq/hospital-api/internal/model"
	"github.com/medhq/hospital-api/internal/repository"
	"github.com/medhq/hospital-api/internal/service/patient"
	"github.com/medhq/hospital-api/pkg/auth"
	apperrors "github.com/medhq/hospital-api/pkg/errors"
	"github.com/medhq/hospital-api/pkg/security"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Service authenticates callers against the role-specific account
// tables and manages the JWT session lifecycle.
type Service struct {
	patientRepo repository.PatientRepository
	doctorRepo  repository.DoctorRepository
	adminRepo   repository.AdminRepository
	tokenRepo   repository.TokenRepository
	patientSvc  *patient.Service
	jwtSvc      auth.JWTService
	hasher      security.PasswordHasher
}

func NewService(
	patientRepo repository.PatientRepository,
	doctorRepo repository.DoctorRepository,
	adminRepo repository.AdminRepository,
	tokenRepo repository.TokenRepository,
	patientSvc *patient.Service,
	jwtSvc auth.JWTService,
	hasher security.PasswordHasher,
) *Service {
	return &Service{
		patientRepo: patientRepo,
		doctorRepo:  doctorRepo,
		adminRepo:   adminRepo,
		tokenRepo:   tokenRepo,
		patientSvc:  patientSvc,
		jwtSvc:      jwtSvc,
		hasher:      hasher,
	}
}

// Login verifies credentials against the table for the requested role.
// The same email may exist independently in all three tables.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	account, err := s.lookupAccount(ctx, req.Role, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthorized("invalid credentials")
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if err := s.hasher.Compare(account.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthorized("invalid credentials")
	}

	return s.issueTokens(ctx, &model.TokenClaims{
		UserID: account.ID,
		Role:   req.Role,
		Email:  account.Email,
	})
}

// RegisterPatient is the self-service signup used by the booking flow.
func (s *Service) RegisterPatient(ctx context.Context, req *model.RegisterPatientRequest) (*model.Patient, error) {
	return s.patientSvc.Create(ctx, &req.CreatePatientRequest)
}

// Refresh rotates a refresh token: the presented token must both
// verify and still be present in the token store.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	claims, err := s.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid refresh token")
	}

	userID, err := s.tokenRepo.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthorized("refresh token revoked or expired")
		}
		return nil, fmt.Errorf("failed to validate refresh token: %w", err)
	}
	if userID != claims.UserID {
		return nil, apperrors.Unauthorized("invalid refresh token")
	}

	if err := s.tokenRepo.RevokeRefreshToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	return s.issueTokens(ctx, claims)
}

// Logout revokes the presented refresh token.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if err := s.tokenRepo.RevokeRefreshToken(ctx, refreshToken); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// ValidateToken resolves the Actor carried by an access token.
func (s *Service) ValidateToken(ctx context.Context, token string) (*model.TokenClaims, error) {
	claims, err := s.jwtSvc.ValidateAccessToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid token")
	}
	return claims, nil
}

func (s *Service) issueTokens(ctx context.Context, claims *model.TokenClaims) (*model.TokenResponse, error) {
	access, err := s.jwtSvc.GenerateAccessToken(claims)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refresh, expiresAt, err := s.jwtSvc.GenerateRefreshToken(claims)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	if err := s.tokenRepo.StoreRefreshToken(ctx, claims.UserID, refresh, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &model.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.jwtSvc.AccessTokenTTL().Seconds()),
	}, nil
}

func (s *Service) lookupAccount(ctx context.Context, role model.Role, email string) (*model.Account, error) {
	switch role {
	case model.RolePatient:
		p, err := s.patientRepo.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		return &p.Account, nil
	case model.RoleDoctor:
		d, err := s.doctorRepo.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		return &d.Account, nil
	case model.RoleAdmin:
		a, err := s.adminRepo.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		return &a.Account, nil
	default:
		return nil, apperrors.Validation("unknown role %q", role)
	}
}
