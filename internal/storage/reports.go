// Package storage implements the "reports" file bucket. Objects are
// addressed by path within a bucket and stored as database blobs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hospital-admin-server/internal/models"
)

// BucketReports is the single bucket used for report attachments.
const BucketReports = "reports"

// MaxFileSize is the maximum allowed object size in bytes (25 MB).
const MaxFileSize = 25 * 1024 * 1024

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrFileTooLarge   = errors.New("file exceeds maximum allowed size")
)

// Store provides upload, download, and remove by path within a bucket.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store over the given database handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Upload stores the file under a generated path in the bucket and
// returns the stored object.
func (s *Store) Upload(ctx context.Context, bucket, fileName, contentType string, data []byte) (*models.ReportObject, error) {
	if int64(len(data)) > MaxFileSize {
		return nil, ErrFileTooLarge
	}
	obj := models.ReportObject{
		Bucket:      bucket,
		Path:        fmt.Sprintf("%s/%s", uuid.New().String(), path.Base(fileName)),
		FileName:    fileName,
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        data,
	}
	if err := s.db.WithContext(ctx).Create(&obj).Error; err != nil {
		return nil, err
	}
	return &obj, nil
}

// Download fetches the object at the given path.
func (s *Store) Download(ctx context.Context, bucket, objectPath string) (*models.ReportObject, error) {
	var obj models.ReportObject
	err := s.db.WithContext(ctx).
		Where("bucket = ? AND path = ?", bucket, objectPath).
		First(&obj).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	return &obj, nil
}

// Remove deletes the object at the given path. Removing a missing
// object is a no-op success.
func (s *Store) Remove(ctx context.Context, bucket, objectPath string) error {
	return s.db.WithContext(ctx).
		Where("bucket = ? AND path = ?", bucket, objectPath).
		Delete(&models.ReportObject{}).Error
}
