package dashboard

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/medhq/hospital-api/internal/model"
	"github.com/medhq/hospital-api/internal/repository"
	apperrors "github.com/medhq/hospital-api/pkg/errors"
)

const (
	adminStatsKey  = "admin_stats"
	statsCacheTTL  = 30 * time.Second
	upcomingWindow = 30 * 24 * time.Hour
)

// Service assembles the role-shaped landing views. Admin counts are
// cached briefly since every admin page load requests them.
type Service struct {
	patientRepo     repository.PatientRepository
	doctorRepo      repository.DoctorRepository
	adminRepo       repository.AdminRepository
	appointmentRepo repository.AppointmentRepository
	cache           *gocache.Cache
	now             func() time.Time
}

func NewService(
	patientRepo repository.PatientRepository,
	doctorRepo repository.DoctorRepository,
	adminRepo repository.AdminRepository,
	appointmentRepo repository.AppointmentRepository,
) *Service {
	return &Service{
		patientRepo:     patientRepo,
		doctorRepo:      doctorRepo,
		adminRepo:       adminRepo,
		appointmentRepo: appointmentRepo,
		cache:           gocache.New(statsCacheTTL, 2*statsCacheTTL),
		now:             time.Now,
	}
}

// WithClock overrides the service clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ForActor returns the dashboard payload for the caller's role.
func (s *Service) ForActor(ctx context.Context, actor model.Actor) (interface{}, error) {
	switch actor.Role {
	case model.RoleAdmin:
		return s.adminDashboard(ctx)
	case model.RoleDoctor:
		return s.roleDashboard(ctx, model.AppointmentScope{DoctorID: actor.ID})
	case model.RolePatient:
		return s.roleDashboard(ctx, model.AppointmentScope{PatientID: actor.ID})
	default:
		return nil, apperrors.Forbidden("unknown role")
	}
}

func (s *Service) adminDashboard(ctx context.Context) (*model.AdminDashboard, error) {
	if cached, ok := s.cache.Get(adminStatsKey); ok {
		return cached.(*model.AdminDashboard), nil
	}

	patients, err := s.patientRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count patients: %w", err)
	}
	doctors, err := s.doctorRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count doctors: %w", err)
	}
	admins, err := s.adminRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count admins: %w", err)
	}
	byStatus, err := s.appointmentRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count appointments: %w", err)
	}

	var total int64
	for _, n := range byStatus {
		total += n
	}

	dash := &model.AdminDashboard{
		Patients:            patients,
		Doctors:             doctors,
		Admins:              admins,
		Appointments:        total,
		AppointmentsByState: byStatus,
	}
	s.cache.Set(adminStatsKey, dash, gocache.DefaultExpiration)
	return dash, nil
}

func (s *Service) roleDashboard(ctx context.Context, scope model.AppointmentScope) (*model.RoleDashboard, error) {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	today, err := s.appointmentRepo.ListBetween(ctx, scope, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list today's appointments: %w", err)
	}

	upcoming, err := s.appointmentRepo.ListBetween(ctx, scope, dayEnd, dayEnd.Add(upcomingWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming appointments: %w", err)
	}

	return &model.RoleDashboard{
		Today:    today,
		Upcoming: upcoming,
	}, nil
}
