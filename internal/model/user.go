package model

import "time"

// UserRole determines a user's permissions.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleStaff   UserRole = "STAFF"
	RolePartner UserRole = "PARTNER"
	RoleClient  UserRole = "CLIENT"
)

// IsStaff reports whether the role carries back-office permissions.
func (r UserRole) IsStaff() bool {
	return r == RoleAdmin || r == RoleStaff
}

// User is a marketplace account. Registration and profile management are
// owned by an external accounts module; this table only carries what the
// booking core needs to resolve parties.
type User struct {
	ID        int64    `gorm:"primaryKey"`
	Name      string   `gorm:"size:150;not null"`
	Email     string   `gorm:"uniqueIndex;size:254;not null"`
	Role      UserRole `gorm:"size:20;not null;default:'CLIENT'"`
	Language  string   `gorm:"size:8;not null;default:'pt'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
