package models

// Department groups doctors, staff and test catalog entries.
type Department struct {
	BaseModel
	Name        string `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description string `gorm:"size:255" json:"description,omitempty"`
}
