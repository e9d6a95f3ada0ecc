package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medhq/hospital-api/internal/model"
	"github.com/medhq/hospital-api/internal/repository"
)

const appointmentDetailColumns = `
	a.id, a.patient_id, a.doctor_id, a.date, a.time_of_day AS time,
	a.reason, a.status, a.notes, a.created_at, a.updated_at,
	d.name AS doctor_name, d.surname AS doctor_surname,
	d.specialization AS doctor_specialization,
	p.name AS patient_name, p.surname AS patient_surname,
	p.email AS patient_email
`

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, doctor_id, date, time_of_day,
			reason, status, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.PatientID,
		appointment.DoctorID,
		appointment.Date,
		appointment.Time,
		appointment.Reason,
		appointment.Status,
		appointment.Notes,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", translate(err))
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, patient_id, doctor_id, date, time_of_day AS time,
			   reason, status, notes, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, id); err != nil {
		return nil, translate(err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.AppointmentDetail, error) {
	query := `
		SELECT ` + appointmentDetailColumns + `
		FROM appointments a
		JOIN doctors d ON d.id = a.doctor_id
		JOIN patients p ON p.id = a.patient_id
		WHERE a.id = $1
	`
	var detail model.AppointmentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, translate(err)
	}
	return &detail, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET patient_id = $1, doctor_id = $2, date = $3, time_of_day = $4,
			reason = $5, status = $6, notes = $7, updated_at = $8
		WHERE id = $9
	`
	result, err := r.db.ExecContext(ctx, query,
		appointment.PatientID,
		appointment.DoctorID,
		appointment.Date,
		appointment.Time,
		appointment.Reason,
		appointment.Status,
		appointment.Notes,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", translate(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", translate(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// scopeClause appends the scope restriction to query and args. The
// zero scope intentionally matches nothing.
func scopeClause(query string, args []interface{}, scope model.AppointmentScope) (string, []interface{}) {
	switch {
	case scope.All:
		return query, args
	case scope.DoctorID != uuid.Nil:
		args = append(args, scope.DoctorID)
		return fmt.Sprintf("%s AND a.doctor_id = $%d", query, len(args)), args
	case scope.PatientID != uuid.Nil:
		args = append(args, scope.PatientID)
		return fmt.Sprintf("%s AND a.patient_id = $%d", query, len(args)), args
	default:
		return query + " AND FALSE", args
	}
}

func (r *appointmentRepository) List(ctx context.Context, scope model.AppointmentScope) ([]*model.AppointmentDetail, error) {
	query := `
		SELECT ` + appointmentDetailColumns + `
		FROM appointments a
		JOIN doctors d ON d.id = a.doctor_id
		JOIN patients p ON p.id = a.patient_id
		WHERE TRUE
	`
	var args []interface{}
	query, args = scopeClause(query, args, scope)
	query += " ORDER BY a.date ASC, a.time_of_day ASC"

	appointments := []*model.AppointmentDetail{}
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListBetween(ctx context.Context, scope model.AppointmentScope, from, to time.Time) ([]*model.AppointmentDetail, error) {
	query := `
		SELECT ` + appointmentDetailColumns + `
		FROM appointments a
		JOIN doctors d ON d.id = a.doctor_id
		JOIN patients p ON p.id = a.patient_id
		WHERE a.date >= $1 AND a.date < $2
	`
	args := []interface{}{from, to}
	query, args = scopeClause(query, args, scope)
	query += " ORDER BY a.date ASC, a.time_of_day ASC"

	appointments := []*model.AppointmentDetail{}
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) DeleteByPatient(ctx context.Context, patientID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE patient_id = $1`, patientID); err != nil {
		return fmt.Errorf("failed to delete patient appointments: %w", err)
	}
	return nil
}

func (r *appointmentRepository) DeleteByDoctor(ctx context.Context, doctorID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE doctor_id = $1`, doctorID); err != nil {
		return fmt.Errorf("failed to delete doctor appointments: %w", err)
	}
	return nil
}

func (r *appointmentRepository) CountByStatus(ctx context.Context) (map[model.AppointmentStatus]int64, error) {
	rows := []struct {
		Status model.AppointmentStatus `db:"status"`
		Count  int64                   `db:"count"`
	}{}
	query := `SELECT status, COUNT(*) AS count FROM appointments GROUP BY status`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to count appointments: %w", err)
	}

	counts := make(map[model.AppointmentStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
