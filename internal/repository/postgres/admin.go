package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/medhq/hospital-api/internal/model"
	"github.com/medhq/hospital-api/internal/repository"
)

func (r *adminRepository) Create(ctx context.Context, admin *model.Admin) error {
	query := `
		INSERT INTO admins (
			id, name, surname, email, phone, address, date_of_birth,
			gender, password_hash, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		admin.ID,
		admin.Name,
		admin.Surname,
		admin.Email,
		admin.Phone,
		admin.Address,
		admin.DateOfBirth,
		admin.Gender,
		admin.PasswordHash,
		admin.CreatedAt,
		admin.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", translate(err))
	}
	return nil
}

func (r *adminRepository) Get(ctx context.Context, id uuid.UUID) (*model.Admin, error) {
	query := `
		SELECT id, name, surname, email, phone, address, date_of_birth,
			   gender, password_hash, created_at, updated_at
		FROM admins
		WHERE id = $1
	`
	var admin model.Admin
	if err := r.db.GetContext(ctx, &admin, query, id); err != nil {
		return nil, translate(err)
	}
	return &admin, nil
}

func (r *adminRepository) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	query := `
		SELECT id, name, surname, email, phone, address, date_of_birth,
			   gender, password_hash, created_at, updated_at
		FROM admins
		WHERE email = $1
	`
	var admin model.Admin
	if err := r.db.GetContext(ctx, &admin, query, email); err != nil {
		return nil, translate(err)
	}
	return &admin, nil
}

func (r *adminRepository) Update(ctx context.Context, admin *model.Admin) error {
	query := `
		UPDATE admins
		SET name = $1, surname = $2, email = $3, phone = $4, address = $5,
			date_of_birth = $6, gender = $7, updated_at = $8
		WHERE id = $9
	`
	result, err := r.db.ExecContext(ctx, query,
		admin.Name,
		admin.Surname,
		admin.Email,
		admin.Phone,
		admin.Address,
		admin.DateOfBirth,
		admin.Gender,
		admin.UpdatedAt,
		admin.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update admin: %w", translate(err))
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

func (r *adminRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM admins WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete admin: %w", translate(err))
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

func (r *adminRepository) List(ctx context.Context) ([]*model.Admin, error) {
	query := `
		SELECT id, name, surname, email, phone, address, date_of_birth,
			   gender, password_hash, created_at, updated_at
		FROM admins
		ORDER BY surname ASC, name ASC
	`
	admins := []*model.Admin{}
	if err := r.db.SelectContext(ctx, &admins, query); err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	return admins, nil
}

func (r *adminRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM admins`); err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return count, nil
}
