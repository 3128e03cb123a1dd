package models

// DoctorRecord is the dependent record for a doctor-role profile. Every
// doctor profile should eventually have exactly one DoctorRecord; it is
// created lazily by the ensure-doctor procedure on first doctor session.
type DoctorRecord struct {
	BaseModel
	UserID         string `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	Name           string `gorm:"size:100" json:"name"`
	DepartmentID   string `gorm:"size:36;index;default:null" json:"departmentId,omitempty"`
	Specialization string `gorm:"size:100" json:"specialization,omitempty"`
	Phone          string `gorm:"size:30" json:"phone,omitempty"`

	User       User        `gorm:"foreignKey:UserID" json:"-"`
	Department *Department `gorm:"foreignKey:DepartmentID" json:"-"`
}
