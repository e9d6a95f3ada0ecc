package appointment_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medhq/hospital-api/internal/model"
	"github.com/medhq/hospital-api/internal/repository/repotest"
	"github.com/medhq/hospital-api/internal/service/appointment"
	"github.com/medhq/hospital-api/internal/service/audit"
	apperrors "github.com/medhq/hospital-api/pkg/errors"
	"github.com/medhq/hospital-api/pkg/logger"
)

// testNow is the frozen clock for every test. Bookings on the 11th are
// in the future, anything on the 9th is in the past.
var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type captureEmail struct {
	bookings      []*model.AppointmentDetail
	statusChanges []*model.AppointmentDetail
}

func (c *captureEmail) SendBookingConfirmation(d *model.AppointmentDetail) error {
	c.bookings = append(c.bookings, d)
	return nil
}

func (c *captureEmail) SendStatusChange(d *model.AppointmentDetail) error {
	c.statusChanges = append(c.statusChanges, d)
	return nil
}

type fixture struct {
	svc          *appointment.Service
	appointments *repotest.AppointmentRepo
	patients     *repotest.PatientRepo
	doctors      *repotest.DoctorRepo
	audits       *repotest.AuditRepo
	emails       *captureEmail
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	patients := repotest.NewPatientRepo()
	doctors := repotest.NewDoctorRepo()
	appointments := repotest.NewAppointmentRepo(patients, doctors)
	audits := repotest.NewAuditRepo()
	emails := &captureEmail{}

	log := logger.New(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	svc := appointment.NewService(appointments, patients, doctors, emails, audit.NewService(audits, log, nil), log).
		WithClock(func() time.Time { return testNow }, time.UTC)

	return &fixture{
		svc:          svc,
		appointments: appointments,
		patients:     patients,
		doctors:      doctors,
		audits:       audits,
		emails:       emails,
	}
}

func (f *fixture) seedPatient(t *testing.T, email string) *model.Patient {
	t.Helper()
	p := &model.Patient{
		Account: model.Account{
			Base:    model.Base{ID: uuid.New(), CreatedAt: testNow, UpdatedAt: testNow},
			Name:    "Jordan",
			Surname: "Reyes",
			Email:   email,
			Gender:  model.GenderFemale,
		},
	}
	require.NoError(t, f.patients.Create(context.Background(), p))
	return p
}

func (f *fixture) seedDoctor(t *testing.T, email string) *model.Doctor {
	t.Helper()
	d := &model.Doctor{
		Account: model.Account{
			Base:    model.Base{ID: uuid.New(), CreatedAt: testNow, UpdatedAt: testNow},
			Name:    "Asha",
			Surname: "Patel",
			Email:   email,
			Gender:  model.GenderFemale,
		},
		Specialization: "Cardiology",
	}
	require.NoError(t, f.doctors.Create(context.Background(), d))
	return d
}

func (f *fixture) book(t *testing.T, actor model.Actor, req *model.BookAppointmentRequest) *model.AppointmentDetail {
	t.Helper()
	detail, err := f.svc.Book(context.Background(), actor, req)
	require.NoError(t, err)
	return detail
}

func bookRequest(patient *model.Patient, doctor *model.Doctor) *model.BookAppointmentRequest {
	return &model.BookAppointmentRequest{
		DoctorID:  doctor.ID.String(),
		PatientID: patient.ID.String(),
		Date:      "2025-03-11",
		Time:      "14:30",
		Reason:    "Recurring chest pain",
	}
}

func patientActor(p *model.Patient) model.Actor {
	return model.NewActor(p.ID, model.RolePatient, p.Email)
}

func doctorActor(d *model.Doctor) model.Actor {
	return model.NewActor(d.ID, model.RoleDoctor, d.Email)
}

func adminActor() model.Actor {
	return model.NewActor(uuid.New(), model.RoleAdmin, "admin@example.com")
}

func TestScopeFor(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()

	scope, err := f.svc.ScopeFor(model.NewActor(id, model.RoleAdmin, "a@example.com"))
	require.NoError(t, err)
	assert.True(t, scope.All)

	scope, err = f.svc.ScopeFor(model.NewActor(id, model.RoleDoctor, "d@example.com"))
	require.NoError(t, err)
	assert.False(t, scope.All)
	assert.Equal(t, id, scope.DoctorID)

	scope, err = f.svc.ScopeFor(model.NewActor(id, model.RolePatient, "p@example.com"))
	require.NoError(t, err)
	assert.False(t, scope.All)
	assert.Equal(t, id, scope.PatientID)

	_, err = f.svc.ScopeFor(model.NewActor(id, model.Role("receptionist"), "r@example.com"))
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
}

func TestBookAppointment(t *testing.T) {
	f := newFixture(t)
	patient := f.seedPatient(t, "patient@example.com")
	doctor := f.seedDoctor(t, "doctor@example.com")

	detail := f.book(t, patientActor(patient), bookRequest(patient, doctor))

	assert.Equal(t, model.AppointmentStatusPending, detail.Status)
	assert.Equal(t, patient.ID, detail.PatientID)
	assert.Equal(t, doctor.ID, detail.DoctorID)
	assert.Equal(t, "14:30", detail.Time)
	assert.Equal(t, "2025-03-11", detail.Date.Format(model.DateLayout))
	assert.Equal(t, doctor.Name, detail.DoctorName)
	assert.Equal(t, patient.Email, detail.PatientEmail)

	// Booking confirmation goes to the patient, and the creation is audited.
	require.Len(t, f.emails.bookings, 1)
	assert.Equal(t, patient.Email, f.emails.bookings[0].PatientEmail)

	entries, err := f.audits.List(context.Background(), "appointment", detail.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "create", entries[0].Action)
	assert.Equal(t, patient.ID, entries[0].ActorID)
}

func TestBookRequiresPatientRole(t *testing.T) {
	f := newFixture(t)
	patient := f.seedPatient(t, "patient@example.com")
	doctor := f.seedDoctor(t, "doctor@example.com")
	req := bookRequest(patient, doctor)

	_, err := f.svc.Book(context.Background(), adminActor(), req)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	_, err = f.svc.Book(context.Background(), doctorActor(doctor), req)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
}

func TestBookForAnotherPatientForbidden(t *testing.T) {
	f := newFixture(t)
	patient := f.seedPatient(t, "patient@example.com")
	other := f.seedPatient(t, "other@example.com")
	doctor := f.seedDoctor(t, "doctor@example.com")

	// The payload names another patient. This is an authorization
	// failure, not a validation failure.
	_, err := f.svc.Book(context.Background(), patientActor(other), bookRequest(patient, doctor))
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
}

func TestBookValidation(t *testing.T) {
	f := newFixture(t)
	patient := f.seedPatient(t, "patient@example.com")
	doctor := f.seedDoctor(t, "doctor@example.com")
	actor := patientActor(patient)

	t.Run("reason below minimum", func(t *testing.T) {
		req := bookRequest(patient, doctor)
		req.Reason = strings.Repeat("x", 9)
		_, err := f.svc.Book(context.Background(), actor, req)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})

	t.Run("reason at minimum", func(t *testing.T) {
		req := bookRequest(patient, doctor)
		req.Reason = strings.Repeat("x", 10)
		_, err := f.svc.Book(context.Background(), actor, req)
		assert.NoError(t, err)
	})

	t.Run("reason above maximum", func(t *testing.T) {
		req := bookRequest(patient, doctor)
		req.Reason = strings.Repeat("x", 501)
		_, err := f.svc.Book(context.Background(), actor, req)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})

	t.Run("notes above maximum", func(t *testing.T) {
		req := bookRequest(patient, doctor)
		req.Notes = strings.Repeat("x", 1001)
		_, err := f.svc.Book(context.Background(), actor, req)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})

	t.Run("malformed date", func(t *testing.T) {
		req := bookRequest(patient, doctor)
		req.Date = "11-03-2025"
		_, err := f.svc.Book(context.Background(), actor, req)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})

	t.Run("malformed time", func(t *testing.T) {
		req := bookRequest(patient, doctor)
		req.Time = "2pm"
		_, err := f.svc.Book(context.Background(), actor, req)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})

	t.Run("missing fields", func(t *testing.T) {
		req := bookRequest(patient, doctor)
		req.Reason = ""
		_, err := f.svc.Book(context.Background(), actor, req)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})

	t.Run("unknown doctor", func(t *testing.T) {
		req := bookRequest(patient, doctor)
		req.DoctorID = uuid.New().String()
		_, err := f.svc.Book(context.Background(), actor, req)
		assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	})
}

func TestBookInPastRejected(t *testing.T) {
	f := newFixture(t)
	patient := f.seedPatient(t, "patient@example.com")
	doctor := f.seedDoctor(t, "doctor@example.com")
	actor := patientActor(patient)

	// Earlier today, one hour before the frozen clock.
	req := bookRequest(patient, doctor)
	req.Date = "2025-03-10"
	req.Time = "08:00"
	_, err := f.svc.Book(context.Background(), actor, req)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	// Later today is fine.
	req.Time = "10:00"
	_, err = f.svc.Book(context.Background(), actor, req)
	assert.NoError(t, err)
}

func TestListScoping(t *testing.T) {
	f := newFixture(t)
	alice := f.seedPatient(t, "alice@example.com")
	bob := f.seedPatient(t, "bob@example.com")
	cardio := f.seedDoctor(t, "cardio@example.com")
	derma := f.seedDoctor(t, "derma@example.com")

	f.book(t, patientActor(alice), bookRequest(alice, cardio))
	f.book(t, patientActor(alice), bookRequest(alice, derma))
	f.book(t, patientActor(bob), bookRequest(bob, cardio))

	ctx := context.Background()

	admin, err := f.svc.List(ctx, adminActor())
	require.NoError(t, err)
	assert.Len(t, admin, 3)

	mine, err := f.svc.List(ctx, patientActor(alice))
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, d := range mine {
		assert.Equal(t, alice.ID, d.PatientID)
	}

	caseload, err := f.svc.List(ctx, doctorActor(cardio))
	require.NoError(t, err)
	require.Len(t, caseload, 2)
	for _, d := range caseload {
		assert.Equal(t, cardio.ID, d.DoctorID)
	}
}

func TestListForPatient(t *testing.T) {
	f := newFixture(t)
	alice := f.seedPatient(t, "alice@example.com")
	bob := f.seedPatient(t, "bob@example.com")
	doctor := f.seedDoctor(t, "doctor@example.com")

	f.book(t, patientActor(alice), bookRequest(alice, doctor))
	f.book(t, patientActor(alice), bookRequest(alice, doctor))
	f.book(t, patientActor(bob), bookRequest(bob, doctor))

	ctx := context.Background()

	history, err := f.svc.ListForPatient(ctx, adminActor(), alice.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	for _, d := range history {
		assert.Equal(t, alice.ID, d.PatientID)
	}

	own, err := f.svc.ListForPatient(ctx, patientActor(alice), alice.ID)
	require.NoError(t, err)
	assert.Len(t, own, 2)

	_, err = f.svc.ListForPatient(ctx, patientActor(bob), alice.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	_, err = f.svc.ListForPatient(ctx, adminActor(), uuid.New())
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestGetOutsideScopeReadsAsMissing(t *testing.T) {
	f := newFixture(t)
	alice := f.seedPatient(t, "alice@example.com")
	bob := f.seedPatient(t, "bob@example.com")
	doctor := f.seedDoctor(t, "doctor@example.com")

	detail := f.book(t, patientActor(alice), bookRequest(alice, doctor))
	ctx := context.Background()

	got, err := f.svc.Get(ctx, patientActor(alice), detail.ID)
	require.NoError(t, err)
	assert.Equal(t, detail.ID, got.ID)

	// Another patient's record is indistinguishable from a missing one.
	_, err = f.svc.Get(ctx, patientActor(bob), detail.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	_, err = f.svc.Get(ctx, adminActor(), uuid.New())
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestUpdateAdminOnly(t *testing.T) {
	f := newFixture(t)
	patient := f.seedPatient(t, "patient@example.com")
	doctor := f.seedDoctor(t, "doctor@example.com")
	detail := f.book(t, patientActor(patient), bookRequest(patient, doctor))

	req := &model.UpdateAppointmentRequest{
		DoctorID:  doctor.ID.String(),
		PatientID: patient.ID.String(),
		Date:      "2025-03-12",
		Time:      "09:15",
		Reason:    "Recurring chest pain",
		Status:    string(model.AppointmentStatusScheduled),
	}

	_, err := f.svc.Update(context.Background(), patientActor(patient), detail.ID, req)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	_, err = f.svc.Update(context.Background(), doctorActor(doctor), detail.ID, req)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	updated, err := f.svc.Update(context.Background(), adminActor(), detail.ID, req)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusScheduled, updated.Status)
	assert.Equal(t, "09:15", updated.Time)
	assert.Equal(t, "2025-03-12", updated.Date.Format(model.DateLayout))

	// The status changed, so the patient is notified.
	require.Len(t, f.emails.statusChanges, 1)
	assert.Equal(t, model.AppointmentStatusScheduled, f.emails.statusChanges[0].Status)
}

func TestUpdateValidation(t *testing.T) {
	f := newFixture(t)
	patient := f.seedPatient(t, "patient@example.com")
	doctor := f.seedDoctor(t, "doctor@example.com")
	detail := f.book(t, patientActor(patient), bookRequest(patient, doctor))
	ctx := context.Background()

	valid := func() *model.UpdateAppointmentRequest {
		return &model.UpdateAppointmentRequest{
			DoctorID:  doctor.ID.String(),
			PatientID: patient.ID.String(),
			Date:      "2025-03-12",
			Time:      "09:15",
			Reason:    "Recurring chest pain",
			Status:    string(model.AppointmentStatusScheduled),
		}
	}

	t.Run("all core fields required", func(t *testing.T) {
		req := valid()
		req.Status = ""
		_, err := f.svc.Update(ctx, adminActor(), detail.ID, req)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})

	t.Run("unknown status", func(t *testing.T) {
		req := valid()
		req.Status = "postponed"
		_, err := f.svc.Update(ctx, adminActor(), detail.ID, req)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})

	t.Run("unknown patient", func(t *testing.T) {
		req := valid()
		req.PatientID = uuid.New().String()
		_, err := f.svc.Update(ctx, adminActor(), detail.ID, req)
		assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	})

	t.Run("missing appointment", func(t *testing.T) {
		_, err := f.svc.Update(ctx, adminActor(), uuid.New(), valid())
		assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	})

	t.Run("no transition restrictions", func(t *testing.T) {
		req := valid()
		req.Status = string(model.AppointmentStatusCompleted)
		_, err := f.svc.Update(ctx, adminActor(), detail.ID, req)
		require.NoError(t, err)

		// Back to pending is also legal.
		req.Status = string(model.AppointmentStatusPending)
		updated, err := f.svc.Update(ctx, adminActor(), detail.ID, req)
		require.NoError(t, err)
		assert.Equal(t, model.AppointmentStatusPending, updated.Status)
	})
}

func TestDeleteAppointment(t *testing.T) {
	f := newFixture(t)
	patient := f.seedPatient(t, "patient@example.com")
	doctor := f.seedDoctor(t, "doctor@example.com")
	detail := f.book(t, patientActor(patient), bookRequest(patient, doctor))
	ctx := context.Background()

	err := f.svc.Delete(ctx, patientActor(patient), detail.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	require.NoError(t, f.svc.Delete(ctx, adminActor(), detail.ID))

	_, err = f.svc.Get(ctx, adminActor(), detail.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	// Deleting again reports the record as gone.
	err = f.svc.Delete(ctx, adminActor(), detail.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestBookScheduleDeleteFlow(t *testing.T) {
	f := newFixture(t)
	patient := f.seedPatient(t, "patient@example.com")
	doctor := f.seedDoctor(t, "doctor@example.com")
	ctx := context.Background()

	detail := f.book(t, patientActor(patient), bookRequest(patient, doctor))
	assert.Equal(t, model.AppointmentStatusPending, detail.Status)

	updated, err := f.svc.Update(ctx, adminActor(), detail.ID, &model.UpdateAppointmentRequest{
		DoctorID:  doctor.ID.String(),
		PatientID: patient.ID.String(),
		Date:      "2025-03-11",
		Time:      "14:30",
		Reason:    detail.Reason,
		Status:    string(model.AppointmentStatusScheduled),
	})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusScheduled, updated.Status)

	require.NoError(t, f.svc.Delete(ctx, adminActor(), detail.ID))

	all, err := f.svc.List(ctx, adminActor())
	require.NoError(t, err)
	assert.Empty(t, all)
}
