package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/medhq/hospital-api/internal/model"
)

// ErrNotFound is returned by all repositories when a record does not
// exist. Services translate it into the caller-facing taxonomy.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateEmail is returned when a unique email constraint is hit.
var ErrDuplicateEmail = errors.New("email already registered")

// All repository interfaces in one file
type (
	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		GetByEmail(ctx context.Context, email string) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Patient, error)
		Count(ctx context.Context) (int64, error)
	}

	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		GetByEmail(ctx context.Context, email string) (*model.Doctor, error)
		Update(ctx context.Context, doctor *model.Doctor) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Doctor, error)
		Count(ctx context.Context) (int64, error)
	}

	AdminRepository interface {
		Create(ctx context.Context, admin *model.Admin) error
		Get(ctx context.Context, id uuid.UUID) (*model.Admin, error)
		GetByEmail(ctx context.Context, email string) (*model.Admin, error)
		Update(ctx context.Context, admin *model.Admin) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Admin, error)
		Count(ctx context.Context) (int64, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		GetDetail(ctx context.Context, id uuid.UUID) (*model.AppointmentDetail, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, scope model.AppointmentScope) ([]*model.AppointmentDetail, error)
		ListBetween(ctx context.Context, scope model.AppointmentScope, from, to time.Time) ([]*model.AppointmentDetail, error)
		DeleteByPatient(ctx context.Context, patientID uuid.UUID) error
		DeleteByDoctor(ctx context.Context, doctorID uuid.UUID) error
		CountByStatus(ctx context.Context) (map[model.AppointmentStatus]int64, error)
	}

	AuditRepository interface {
		Create(ctx context.Context, log *model.AuditLog) error
		List(ctx context.Context, entityType string, entityID uuid.UUID) ([]*model.AuditLog, error)
		DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
	}

	// TokenRepository persists refresh tokens so logout can revoke a
	// session before its natural expiry.
	TokenRepository interface {
		StoreRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
		ValidateRefreshToken(ctx context.Context, token string) (uuid.UUID, error)
		RevokeRefreshToken(ctx context.Context, token string) error
		RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
	}
)
