package models

// TestType is a category of laboratory or diagnostic test offered by a
// department (e.g. "Blood Work", "Radiology").
type TestType struct {
	BaseModel
	Name         string `gorm:"size:100;not null" json:"name"`
	DepartmentID string `gorm:"size:36;index;default:null" json:"departmentId,omitempty"`

	Department *Department   `gorm:"foreignKey:DepartmentID" json:"-"`
	Subtypes   []TestSubtype `gorm:"foreignKey:TestTypeID" json:"subtypes,omitempty"`
}

// TestSubtype is a concrete orderable test under a TestType.
type TestSubtype struct {
	BaseModel
	TestTypeID string  `gorm:"size:36;index;not null" json:"testTypeId"`
	Name       string  `gorm:"size:100;not null" json:"name"`
	Price      float64 `json:"price"`

	TestType TestType `gorm:"foreignKey:TestTypeID" json:"-"`
}

// PatientTestStatus enumerates the lifecycle of an ordered test.
type PatientTestStatus string

const (
	TestStatusOrdered         PatientTestStatus = "ordered"
	TestStatusSampleCollected PatientTestStatus = "sample_collected"
	TestStatusCompleted       PatientTestStatus = "completed"
	TestStatusCancelled       PatientTestStatus = "cancelled"
)

// PatientTest is a test ordered for a patient.
type PatientTest struct {
	BaseModel
	PatientID     string            `gorm:"size:36;index;not null" json:"patientId"`
	TestSubtypeID string            `gorm:"size:36;index;not null" json:"testSubtypeId"`
	Status        PatientTestStatus `gorm:"size:30;default:'ordered'" json:"status"`
	OrderedByID   string            `gorm:"size:36;index" json:"orderedById"`
	Notes         string            `gorm:"type:text" json:"notes,omitempty"`

	Patient     Patient     `gorm:"foreignKey:PatientID" json:"-"`
	TestSubtype TestSubtype `gorm:"foreignKey:TestSubtypeID" json:"-"`
	OrderedBy   *User       `gorm:"foreignKey:OrderedByID" json:"-"`
}
