package models

import "time"

// Role is the staff role stored on a user and carried in the auth token.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleWaiter  Role = "mesero"
	RoleKitchen Role = "cocina"
	RoleCashier Role = "caja"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleWaiter, RoleKitchen, RoleCashier:
		return true
	}
	return false
}

// SelfRegisterable reports whether r may be chosen on the public register form.
func (r Role) SelfRegisterable() bool {
	return r == RoleWaiter || r == RoleKitchen || r == RoleCashier
}

type User struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Username  string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Password  string     `gorm:"type:varchar(255);not null" json:"-"`
	Role      Role       `gorm:"type:varchar(20);not null" json:"role"`
	IsActive  bool       `gorm:"not null;default:true" json:"is_active"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
