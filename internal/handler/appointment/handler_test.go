package appointment_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medhq/hospital-api/internal/handler"
	appointmenthandler "github.com/medhq/hospital-api/internal/handler/appointment"
	authhandler "github.com/medhq/hospital-api/internal/handler/auth"
	"github.com/medhq/hospital-api/internal/middleware"
	"github.com/medhq/hospital-api/internal/model"
	"github.com/medhq/hospital-api/internal/repository/repotest"
	appointmentservice "github.com/medhq/hospital-api/internal/service/appointment"
	"github.com/medhq/hospital-api/internal/service/audit"
	authservice "github.com/medhq/hospital-api/internal/service/auth"
	"github.com/medhq/hospital-api/internal/service/patient"
	pkgauth "github.com/medhq/hospital-api/pkg/auth"
	"github.com/medhq/hospital-api/pkg/logger"
	"github.com/medhq/hospital-api/pkg/security"
)

type noopEmail struct{}

func (noopEmail) SendBookingConfirmation(*model.AppointmentDetail) error { return nil }
func (noopEmail) SendStatusChange(*model.AppointmentDetail) error        { return nil }

type server struct {
	engine   *gin.Engine
	patients *repotest.PatientRepo
	doctors  *repotest.DoctorRepo
	admins   *repotest.AdminRepo
	hasher   security.PasswordHasher
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	handler.RegisterValidators()

	patients := repotest.NewPatientRepo()
	doctors := repotest.NewDoctorRepo()
	admins := repotest.NewAdminRepo()
	appointments := repotest.NewAppointmentRepo(patients, doctors)
	hasher := security.NewBcryptHasher(4)
	log := logger.New(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	auditor := audit.NewService(repotest.NewAuditRepo(), log, nil)

	patientSvc := patient.NewService(patients, appointments, hasher, auditor)
	jwtSvc := pkgauth.NewJWTService(pkgauth.Config{
		Secret:        "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
	})
	authSvc := authservice.NewService(patients, doctors, admins, repotest.NewTokenRepo(), patientSvc, jwtSvc, hasher)
	appointmentSvc := appointmentservice.NewService(appointments, patients, doctors, noopEmail{}, auditor, log)

	engine := gin.New()
	api := engine.Group("/api/v1")
	authhandler.NewHandler(authSvc).RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(middleware.NewAuthMiddleware(authSvc).Authenticate())
	appointmenthandler.NewHandler(appointmentSvc).RegisterRoutes(protected)

	return &server{engine: engine, patients: patients, doctors: doctors, admins: admins, hasher: hasher}
}

func (s *server) do(t *testing.T, method, path string, body interface{}, token string) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec.Code, env
}

func (s *server) registerPatient(t *testing.T, email string) (uuid.UUID, string) {
	t.Helper()

	code, env := s.do(t, http.MethodPost, "/api/v1/auth/register", map[string]interface{}{
		"name":          "Jordan",
		"surname":       "Reyes",
		"email":         email,
		"password":      "s3cret-pass",
		"date_of_birth": "1990-06-15",
		"gender":        "female",
	}, "")
	require.Equal(t, http.StatusCreated, code, env.Message)

	var created model.Patient
	require.NoError(t, json.Unmarshal(env.Data, &created))
	return created.ID, s.login(t, email, "s3cret-pass", "patient")
}

func (s *server) seedDoctor(t *testing.T) *model.Doctor {
	t.Helper()
	hash, err := s.hasher.Hash("s3cret-pass")
	require.NoError(t, err)
	d := &model.Doctor{
		Account: model.Account{
			Base:         model.Base{ID: uuid.New()},
			Name:         "Asha",
			Surname:      "Patel",
			Email:        "doctor@example.com",
			PasswordHash: hash,
		},
		Specialization: "Cardiology",
	}
	require.NoError(t, s.doctors.Create(context.Background(), d))
	return d
}

func (s *server) seedAdmin(t *testing.T) string {
	t.Helper()
	hash, err := s.hasher.Hash("s3cret-pass")
	require.NoError(t, err)
	a := &model.Admin{
		Account: model.Account{
			Base:         model.Base{ID: uuid.New()},
			Name:         "Sam",
			Surname:      "Okafor",
			Email:        "admin@example.com",
			PasswordHash: hash,
		},
	}
	require.NoError(t, s.admins.Create(context.Background(), a))
	return s.login(t, a.Email, "s3cret-pass", "admin")
}

func (s *server) login(t *testing.T, email, password, role string) string {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": email, "password": password, "role": role,
	}, "")
	require.Equal(t, http.StatusOK, code, env.Message)

	var tokens model.TokenResponse
	require.NoError(t, json.Unmarshal(env.Data, &tokens))
	return tokens.AccessToken
}

func futureDate() string {
	return time.Now().AddDate(0, 0, 7).Format(model.DateLayout)
}

func TestAppointmentEndpointsRequireAuth(t *testing.T) {
	s := newServer(t)

	code, env := s.do(t, http.MethodGet, "/api/v1/appointments", nil, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "error", env.Status)

	code, _ = s.do(t, http.MethodGet, "/api/v1/appointments", nil, "garbage-token")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestBookAndFetchAppointmentOverHTTP(t *testing.T) {
	s := newServer(t)
	patientID, patientToken := s.registerPatient(t, "jordan@example.com")
	doctor := s.seedDoctor(t)

	code, env := s.do(t, http.MethodPost, "/api/v1/appointments", map[string]string{
		"doctor_id":  doctor.ID.String(),
		"patient_id": patientID.String(),
		"date":       futureDate(),
		"time":       "14:30",
		"reason":     "Recurring chest pain",
	}, patientToken)
	require.Equal(t, http.StatusCreated, code, env.Message)
	assert.Equal(t, "success", env.Status)

	var detail model.AppointmentDetail
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, model.AppointmentStatusPending, detail.Status)
	assert.Equal(t, "Asha", detail.DoctorName)

	code, env = s.do(t, http.MethodGet, "/api/v1/appointments/"+detail.ID.String(), nil, patientToken)
	require.Equal(t, http.StatusOK, code)

	code, env = s.do(t, http.MethodGet, "/api/v1/appointments", nil, patientToken)
	require.Equal(t, http.StatusOK, code)
	var list []model.AppointmentDetail
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)
}

func TestBookingValidationOverHTTP(t *testing.T) {
	s := newServer(t)
	patientID, patientToken := s.registerPatient(t, "jordan@example.com")
	doctor := s.seedDoctor(t)

	// Binding rejects a payload with missing required fields.
	code, env := s.do(t, http.MethodPost, "/api/v1/appointments", map[string]string{
		"doctor_id": doctor.ID.String(),
	}, patientToken)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "error", env.Status)

	// A short reason passes binding but fails domain validation.
	code, env = s.do(t, http.MethodPost, "/api/v1/appointments", map[string]string{
		"doctor_id":  doctor.ID.String(),
		"patient_id": patientID.String(),
		"date":       futureDate(),
		"time":       "14:30",
		"reason":     "too short",
	}, patientToken)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, env.Message)
}

func TestAppointmentLifecycleOverHTTP(t *testing.T) {
	s := newServer(t)
	patientID, patientToken := s.registerPatient(t, "jordan@example.com")
	doctor := s.seedDoctor(t)
	adminToken := s.seedAdmin(t)

	code, env := s.do(t, http.MethodPost, "/api/v1/appointments", map[string]string{
		"doctor_id":  doctor.ID.String(),
		"patient_id": patientID.String(),
		"date":       futureDate(),
		"time":       "14:30",
		"reason":     "Recurring chest pain",
	}, patientToken)
	require.Equal(t, http.StatusCreated, code, env.Message)
	var detail model.AppointmentDetail
	require.NoError(t, json.Unmarshal(env.Data, &detail))

	update := map[string]string{
		"doctor_id":  doctor.ID.String(),
		"patient_id": patientID.String(),
		"date":       futureDate(),
		"time":       "09:15",
		"reason":     "Recurring chest pain",
		"status":     "scheduled",
	}

	// Patients cannot reschedule, not even their own booking.
	code, _ = s.do(t, http.MethodPut, "/api/v1/appointments/"+detail.ID.String(), update, patientToken)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.do(t, http.MethodPut, "/api/v1/appointments/"+detail.ID.String(), update, adminToken)
	require.Equal(t, http.StatusOK, code, env.Message)
	var updated model.AppointmentDetail
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, model.AppointmentStatusScheduled, updated.Status)

	// PATCH takes the same payload and behaves like PUT.
	code, _ = s.do(t, http.MethodPatch, "/api/v1/appointments/"+detail.ID.String(), update, adminToken)
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodDelete, "/api/v1/appointments/"+detail.ID.String(), nil, patientToken)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(t, http.MethodDelete, "/api/v1/appointments/"+detail.ID.String(), nil, adminToken)
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodDelete, "/api/v1/appointments/"+detail.ID.String(), nil, adminToken)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRegisterRejectsUnknownBloodGroup(t *testing.T) {
	s := newServer(t)

	code, env := s.do(t, http.MethodPost, "/api/v1/auth/register", map[string]interface{}{
		"name":          "Jordan",
		"surname":       "Reyes",
		"email":         "jordan@example.com",
		"password":      "s3cret-pass",
		"date_of_birth": "1990-06-15",
		"gender":        "female",
		"blood_group":   "Q+",
	}, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "error", env.Status)
}

func TestGetAppointmentInvalidID(t *testing.T) {
	s := newServer(t)
	_, patientToken := s.registerPatient(t, "jordan@example.com")

	code, env := s.do(t, http.MethodGet, "/api/v1/appointments/not-a-uuid", nil, patientToken)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "error", env.Status)
}
