package model

import "github.com/google/uuid"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleDoctor || r == RolePatient
}

// Actor is the authenticated caller resolved from a session token: a
// closed variant over admin, doctor and patient identities. All
// authorization decisions take an Actor instead of re-reading role
// strings out of the request context.
type Actor struct {
	ID    uuid.UUID `json:"id"`
	Role  Role      `json:"role"`
	Email string    `json:"email"`
}

func NewActor(id uuid.UUID, role Role, email string) Actor {
	return Actor{ID: id, Role: role, Email: email}
}

func (a Actor) IsAdmin() bool   { return a.Role == RoleAdmin }
func (a Actor) IsDoctor() bool  { return a.Role == RoleDoctor }
func (a Actor) IsPatient() bool { return a.Role == RolePatient }

// Is reports whether the actor is the same identity as the given
// record id. Guards like "an admin cannot delete itself" compare
// resolved ids, never email strings.
func (a Actor) Is(id uuid.UUID) bool {
	return a.ID == id
}
