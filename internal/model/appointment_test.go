package model_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medhq/hospital-api/internal/model"
)

func TestAppointmentScopeMatches(t *testing.T) {
	doctorID := uuid.New()
	patientID := uuid.New()
	apt := &model.Appointment{DoctorID: doctorID, PatientID: patientID}

	assert.True(t, model.AppointmentScope{All: true}.Matches(apt))
	assert.True(t, model.AppointmentScope{DoctorID: doctorID}.Matches(apt))
	assert.True(t, model.AppointmentScope{PatientID: patientID}.Matches(apt))

	assert.False(t, model.AppointmentScope{DoctorID: uuid.New()}.Matches(apt))
	assert.False(t, model.AppointmentScope{PatientID: uuid.New()}.Matches(apt))

	// The zero scope matches nothing, it is not a wildcard.
	assert.False(t, model.AppointmentScope{}.Matches(apt))
}

func TestAppointmentStartsAt(t *testing.T) {
	apt := &model.Appointment{
		Date: time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
		Time: "14:30",
	}

	at, err := apt.StartsAt(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 11, 14, 30, 0, 0, time.UTC), at)

	apt.Time = "half past two"
	_, err = apt.StartsAt(time.UTC)
	assert.Error(t, err)
}

func TestAppointmentStatusValid(t *testing.T) {
	assert.True(t, model.AppointmentStatusPending.Valid())
	assert.True(t, model.AppointmentStatusScheduled.Valid())
	assert.True(t, model.AppointmentStatusCompleted.Valid())
	assert.True(t, model.AppointmentStatusCancelled.Valid())
	assert.False(t, model.AppointmentStatus("postponed").Valid())
	assert.False(t, model.AppointmentStatus("").Valid())
}

func TestActorIdentity(t *testing.T) {
	id := uuid.New()
	actor := model.NewActor(id, model.RoleAdmin, "admin@example.com")

	assert.True(t, actor.IsAdmin())
	assert.False(t, actor.IsDoctor())
	assert.True(t, actor.Is(id))
	assert.False(t, actor.Is(uuid.New()))
}
