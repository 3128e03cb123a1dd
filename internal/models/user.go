package models

import (
	"time"
)

// Role enum
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleDoctor       Role = "doctor"
	RolePatient      Role = "patient"
	RoleRegistration Role = "registration"
	RoleDepartment   Role = "department"
)

// ValidRole reports whether r is one of the known application roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePatient, RoleRegistration, RoleDepartment:
		return true
	}
	return false
}

// User is the application profile row for a Principal. Its ID equals the
// Principal id. A profile must exist for every principal that is allowed
// to use the system.
type User struct {
	BaseModel
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Username     string `gorm:"size:100;not null" json:"username"`
	Role         Role   `gorm:"size:20;not null" json:"role"`
	DepartmentID string `gorm:"size:36;index;default:null" json:"departmentId,omitempty"`

	// Relations (not always preloaded)
	Department    *Department    `gorm:"foreignKey:DepartmentID" json:"-"`
	DoctorRecord  *DoctorRecord  `gorm:"foreignKey:UserID" json:"-"`
	Notifications []Notification `gorm:"foreignKey:UserID" json:"-"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	Role         Role      `json:"role"`
	DepartmentID string    `json:"departmentId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Sanitize creates a UserSanitized struct from a User model.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		Role:         u.Role,
		DepartmentID: u.DepartmentID,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
