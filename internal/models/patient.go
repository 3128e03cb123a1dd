package models

import (
	"time"
)

// Patient represents a registered patient. RegistrationNumber is the
// human-facing unique identifier assigned at the registration desk.
type Patient struct {
	BaseModel
	RegistrationNumber string     `gorm:"uniqueIndex;size:50;not null" json:"registrationNumber"`
	Name               string     `gorm:"size:100;not null" json:"name"`
	Gender             string     `gorm:"size:10" json:"gender,omitempty"`
	DateOfBirth        *time.Time `json:"dateOfBirth,omitempty"`
	Phone              string     `gorm:"size:30" json:"phone,omitempty"`
	Address            string     `gorm:"size:255" json:"address,omitempty"`
	DepartmentID       string     `gorm:"size:36;index;default:null" json:"departmentId,omitempty"`
	DoctorID           string     `gorm:"size:36;index;default:null" json:"doctorId,omitempty"`
	RegisteredByID     string     `gorm:"size:36;index" json:"registeredById"`

	Department   *Department   `gorm:"foreignKey:DepartmentID" json:"-"`
	Doctor       *DoctorRecord `gorm:"foreignKey:DoctorID" json:"-"`
	RegisteredBy *User         `gorm:"foreignKey:RegisteredByID" json:"-"`
}
