package models

import "time"

type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleJudge      UserRole = "judge"
	RoleCompetitor UserRole = "competitor"
)

// Principal is the caller identity resolved once per request by the
// auth middleware. Services consult its capabilities instead of doing
// their own role checks.
type Principal struct {
	UserID int
	Role   UserRole
}

func (p Principal) IsAdmin() bool      { return p.Role == RoleAdmin }
func (p Principal) IsJudge() bool      { return p.Role == RoleJudge }
func (p Principal) IsCompetitor() bool { return p.Role == RoleCompetitor }

type User struct {
	ID           int       `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Role         UserRole  `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
