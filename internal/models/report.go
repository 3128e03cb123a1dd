package models

import (
	"time"
)

// ReportStatus enumerates the lifecycle of a patient report.
type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "pending"
	ReportStatusReady     ReportStatus = "ready"
	ReportStatusDelivered ReportStatus = "delivered"
)

// PatientReport is a result document for a patient, optionally tied to
// an ordered test. FilePath points into the "reports" storage bucket.
type PatientReport struct {
	BaseModel
	PatientID     string       `gorm:"size:36;index;not null" json:"patientId"`
	PatientTestID string       `gorm:"size:36;index;default:null" json:"patientTestId,omitempty"`
	Title         string       `gorm:"size:255;not null" json:"title"`
	Status        ReportStatus `gorm:"size:20;default:'pending'" json:"status"`
	ReportDate    time.Time    `json:"reportDate"`
	FilePath      string       `gorm:"size:255" json:"filePath,omitempty"`
	UploadedByID  string       `gorm:"size:36;index" json:"uploadedById"`

	Patient     Patient      `gorm:"foreignKey:PatientID" json:"-"`
	PatientTest *PatientTest `gorm:"foreignKey:PatientTestID" json:"-"`
	UploadedBy  *User        `gorm:"foreignKey:UploadedByID" json:"-"`
}

// ReportObject is a stored file inside a storage bucket. Content lives
// in the database the same way record attachments did in the legacy
// system (longblob for MySQL).
type ReportObject struct {
	BaseModel
	Bucket      string `gorm:"size:50;not null;uniqueIndex:idx_bucket_path" json:"bucket"`
	Path        string `gorm:"size:255;not null;uniqueIndex:idx_bucket_path" json:"path"`
	FileName    string `gorm:"size:255;not null" json:"fileName"`
	ContentType string `gorm:"size:100;not null" json:"contentType"`
	Size        int64  `json:"size"`
	Data        []byte `gorm:"type:longblob;not null" json:"-"`
}
