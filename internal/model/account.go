package model

import (
	"time"

	apperrors "github.com/medhq/hospital-api/pkg/errors"
)

// Account holds the identity fields shared by the three role tables.
// Email is unique per role table, not globally.
type Account struct {
	Base
	Name         string    `db:"name" json:"name"`
	Surname      string    `db:"surname" json:"surname"`
	Email        string    `db:"email" json:"email"`
	Phone        string    `db:"phone" json:"phone"`
	Address      string    `db:"address" json:"address"`
	DateOfBirth  time.Time `db:"date_of_birth" json:"date_of_birth"`
	Gender       Gender    `db:"gender" json:"gender"`
	PasswordHash string    `db:"password_hash" json:"-"`
}

type Patient struct {
	Account
	BloodGroup string `db:"blood_group" json:"blood_group,omitempty"`
}

type Doctor struct {
	Account
	Specialization string `db:"specialization" json:"specialization"`
	Department     string `db:"department" json:"department"`
}

type Admin struct {
	Account
}

// CreateAccountRequest is the shared payload for creating any of the
// three account kinds.
type CreateAccountRequest struct {
	Name        string `json:"name" binding:"required"`
	Surname     string `json:"surname" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	DateOfBirth string `json:"date_of_birth" binding:"required"`
	Gender      Gender `json:"gender" binding:"required,oneof=male female"`
}

type CreatePatientRequest struct {
	CreateAccountRequest
	BloodGroup string `json:"blood_group" binding:"omitempty,blood_group"`
}

type CreateDoctorRequest struct {
	CreateAccountRequest
	Specialization string `json:"specialization" binding:"required"`
	Department     string `json:"department"`
}

type CreateAdminRequest struct {
	CreateAccountRequest
}

// UpdateAccountRequest carries profile mutations. Nil fields are left
// untouched.
type UpdateAccountRequest struct {
	Name        *string `json:"name"`
	Surname     *string `json:"surname"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	DateOfBirth *string `json:"date_of_birth"`
	Gender      *Gender `json:"gender" binding:"omitempty,oneof=male female"`
}

// Apply copies non-nil profile fields onto the account.
func (r *UpdateAccountRequest) Apply(acc *Account) error {
	if r.Name != nil {
		acc.Name = *r.Name
	}
	if r.Surname != nil {
		acc.Surname = *r.Surname
	}
	if r.Email != nil {
		acc.Email = *r.Email
	}
	if r.Phone != nil {
		acc.Phone = *r.Phone
	}
	if r.Address != nil {
		acc.Address = *r.Address
	}
	if r.DateOfBirth != nil {
		dob, err := time.Parse(DateLayout, *r.DateOfBirth)
		if err != nil {
			return apperrors.Validation("invalid date_of_birth %q, expected YYYY-MM-DD", *r.DateOfBirth)
		}
		acc.DateOfBirth = dob
	}
	if r.Gender != nil {
		if !r.Gender.Valid() {
			return apperrors.Validation("gender must be male or female")
		}
		acc.Gender = *r.Gender
	}
	return nil
}

type UpdateDoctorRequest struct {
	UpdateAccountRequest
	Specialization *string `json:"specialization"`
	Department     *string `json:"department"`
}

type UpdatePatientRequest struct {
	UpdateAccountRequest
	BloodGroup *string `json:"blood_group" binding:"omitempty,blood_group"`
}
