// Package repotest provides in-memory repository implementations for
// unit tests. Behavior mirrors the postgres repositories: ErrNotFound
// on missing rows, ErrDuplicateEmail on a duplicate email within one
// account kind, and the zero appointment scope matching nothing.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medhq/hospital-api/internal/model"
	"github.com/medhq/hospital-api/internal/repository"
)

type PatientRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*model.Patient
}

func NewPatientRepo() *PatientRepo {
	return &PatientRepo{items: make(map[uuid.UUID]*model.Patient)}
}

func (r *PatientRepo) Create(ctx context.Context, patient *model.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.items {
		if p.Email == patient.Email {
			return repository.ErrDuplicateEmail
		}
	}
	cp := *patient
	r.items[patient.ID] = &cp
	return nil
}

func (r *PatientRepo) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *PatientRepo) GetByEmail(ctx context.Context, email string) (*model.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.items {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *PatientRepo) Update(ctx context.Context, patient *model.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[patient.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, p := range r.items {
		if id != patient.ID && p.Email == patient.Email {
			return repository.ErrDuplicateEmail
		}
	}
	cp := *patient
	r.items[patient.ID] = &cp
	return nil
}

func (r *PatientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *PatientRepo) List(ctx context.Context) ([]*model.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Patient, 0, len(r.items))
	for _, p := range r.items {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *PatientRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.items)), nil
}

type DoctorRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*model.Doctor
}

func NewDoctorRepo() *DoctorRepo {
	return &DoctorRepo{items: make(map[uuid.UUID]*model.Doctor)}
}

func (r *DoctorRepo) Create(ctx context.Context, doctor *model.Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.items {
		if d.Email == doctor.Email {
			return repository.ErrDuplicateEmail
		}
	}
	cp := *doctor
	r.items[doctor.ID] = &cp
	return nil
}

func (r *DoctorRepo) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *DoctorRepo) GetByEmail(ctx context.Context, email string) (*model.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.items {
		if d.Email == email {
			cp := *d
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *DoctorRepo) Update(ctx context.Context, doctor *model.Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[doctor.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, d := range r.items {
		if id != doctor.ID && d.Email == doctor.Email {
			return repository.ErrDuplicateEmail
		}
	}
	cp := *doctor
	r.items[doctor.ID] = &cp
	return nil
}

func (r *DoctorRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *DoctorRepo) List(ctx context.Context) ([]*model.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Doctor, 0, len(r.items))
	for _, d := range r.items {
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *DoctorRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.items)), nil
}

type AdminRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*model.Admin
}

func NewAdminRepo() *AdminRepo {
	return &AdminRepo{items: make(map[uuid.UUID]*model.Admin)}
}

func (r *AdminRepo) Create(ctx context.Context, admin *model.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.items {
		if a.Email == admin.Email {
			return repository.ErrDuplicateEmail
		}
	}
	cp := *admin
	r.items[admin.ID] = &cp
	return nil
}

func (r *AdminRepo) Get(ctx context.Context, id uuid.UUID) (*model.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *AdminRepo) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.items {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *AdminRepo) Update(ctx context.Context, admin *model.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[admin.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, a := range r.items {
		if id != admin.ID && a.Email == admin.Email {
			return repository.ErrDuplicateEmail
		}
	}
	cp := *admin
	r.items[admin.ID] = &cp
	return nil
}

func (r *AdminRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *AdminRepo) List(ctx context.Context) ([]*model.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Admin, 0, len(r.items))
	for _, a := range r.items {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *AdminRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.items)), nil
}

// AppointmentRepo resolves detail rows against the linked patient and
// doctor repos, like the SQL join does.
type AppointmentRepo struct {
	mu       sync.Mutex
	items    map[uuid.UUID]*model.Appointment
	Patients *PatientRepo
	Doctors  *DoctorRepo
}

func NewAppointmentRepo(patients *PatientRepo, doctors *DoctorRepo) *AppointmentRepo {
	return &AppointmentRepo{
		items:    make(map[uuid.UUID]*model.Appointment),
		Patients: patients,
		Doctors:  doctors,
	}
}

func (r *AppointmentRepo) Create(ctx context.Context, appointment *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *appointment
	r.items[appointment.ID] = &cp
	return nil
}

func (r *AppointmentRepo) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *AppointmentRepo) GetDetail(ctx context.Context, id uuid.UUID) (*model.AppointmentDetail, error) {
	a, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.detail(ctx, a)
}

func (r *AppointmentRepo) detail(ctx context.Context, a *model.Appointment) (*model.AppointmentDetail, error) {
	doctor, err := r.Doctors.Get(ctx, a.DoctorID)
	if err != nil {
		return nil, err
	}
	patient, err := r.Patients.Get(ctx, a.PatientID)
	if err != nil {
		return nil, err
	}
	return &model.AppointmentDetail{
		Appointment:          *a,
		DoctorName:           doctor.Name,
		DoctorSurname:        doctor.Surname,
		DoctorSpecialization: doctor.Specialization,
		PatientName:          patient.Name,
		PatientSurname:       patient.Surname,
		PatientEmail:         patient.Email,
	}, nil
}

func (r *AppointmentRepo) Update(ctx context.Context, appointment *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[appointment.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *appointment
	r.items[appointment.ID] = &cp
	return nil
}

func (r *AppointmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *AppointmentRepo) List(ctx context.Context, scope model.AppointmentScope) ([]*model.AppointmentDetail, error) {
	return r.listWhere(ctx, scope, func(*model.Appointment) bool { return true })
}

func (r *AppointmentRepo) ListBetween(ctx context.Context, scope model.AppointmentScope, from, to time.Time) ([]*model.AppointmentDetail, error) {
	return r.listWhere(ctx, scope, func(a *model.Appointment) bool {
		return !a.Date.Before(from) && a.Date.Before(to)
	})
}

func (r *AppointmentRepo) listWhere(ctx context.Context, scope model.AppointmentScope, keep func(*model.Appointment) bool) ([]*model.AppointmentDetail, error) {
	r.mu.Lock()
	matched := []*model.Appointment{}
	for _, a := range r.items {
		if scope.Matches(a) && keep(a) {
			cp := *a
			matched = append(matched, &cp)
		}
	}
	r.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.Before(matched[j].Date)
		}
		return matched[i].Time < matched[j].Time
	})

	out := make([]*model.AppointmentDetail, 0, len(matched))
	for _, a := range matched {
		d, err := r.detail(ctx, a)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *AppointmentRepo) DeleteByPatient(ctx context.Context, patientID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, a := range r.items {
		if a.PatientID == patientID {
			delete(r.items, id)
		}
	}
	return nil
}

func (r *AppointmentRepo) DeleteByDoctor(ctx context.Context, doctorID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, a := range r.items {
		if a.DoctorID == doctorID {
			delete(r.items, id)
		}
	}
	return nil
}

func (r *AppointmentRepo) CountByStatus(ctx context.Context) (map[model.AppointmentStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[model.AppointmentStatus]int64)
	for _, a := range r.items {
		counts[a.Status]++
	}
	return counts, nil
}

type AuditRepo struct {
	mu      sync.Mutex
	Entries []*model.AuditLog
}

func NewAuditRepo() *AuditRepo {
	return &AuditRepo{}
}

func (r *AuditRepo) Create(ctx context.Context, log *model.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *log
	r.Entries = append(r.Entries, &cp)
	return nil
}

func (r *AuditRepo) List(ctx context.Context, entityType string, entityID uuid.UUID) ([]*model.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.AuditLog{}
	for _, e := range r.Entries {
		if e.EntityType == entityType && e.EntityID == entityID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *AuditRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.Entries[:0]
	var purged int64
	for _, e := range r.Entries {
		if e.CreatedAt.Before(cutoff) {
			purged++
			continue
		}
		kept = append(kept, e)
	}
	r.Entries = kept
	return purged, nil
}

type storedToken struct {
	userID    uuid.UUID
	expiresAt time.Time
}

type TokenRepo struct {
	mu     sync.Mutex
	tokens map[string]storedToken
	now    func() time.Time
}

func NewTokenRepo() *TokenRepo {
	return &TokenRepo{tokens: make(map[string]storedToken), now: time.Now}
}

func (r *TokenRepo) StoreRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = storedToken{userID: userID, expiresAt: expiresAt}
	return nil
}

func (r *TokenRepo) ValidateRefreshToken(ctx context.Context, token string) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.tokens[token]
	if !ok || st.expiresAt.Before(r.now()) {
		return uuid.Nil, repository.ErrNotFound
	}
	return st.userID, nil
}

func (r *TokenRepo) RevokeRefreshToken(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[token]; !ok {
		return repository.ErrNotFound
	}
	delete(r.tokens, token)
	return nil
}

func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for token, st := range r.tokens {
		if st.userID == userID {
			delete(r.tokens, token)
		}
	}
	return nil
}

var (
	_ repository.PatientRepository     = (*PatientRepo)(nil)
	_ repository.DoctorRepository      = (*DoctorRepo)(nil)
	_ repository.AdminRepository       = (*AdminRepo)(nil)
	_ repository.AppointmentRepository = (*AppointmentRepo)(nil)
	_ repository.AuditRepository       = (*AuditRepo)(nil)
	_ repository.TokenRepository       = (*TokenRepo)(nil)
)
