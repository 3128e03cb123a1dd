package auth

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"hospital-admin-server/internal/config"
	"hospital-admin-server/internal/models"
	"hospital-admin-server/internal/utils"
)

// NewGormStores wires the production store implementations on top of a
// gorm database handle.
func NewGormStores(db *gorm.DB, cfg *config.Config) Stores {
	return Stores{
		Identities: &gormIdentityStore{db: db},
		Profiles:   &gormProfileStore{db: db},
		Sessions:   &gormSessionStore{db: db, cfg: cfg},
		Doctors:    &gormDoctorDirectory{db: db},
	}
}

type gormIdentityStore struct {
	db *gorm.DB
}

func (s *gormIdentityStore) Create(ctx context.Context, email, password, username string, role models.Role) (*models.Principal, error) {
	p := models.Principal{
		Email:    email,
		Username: username,
		Role:     role,
	}
	if err := p.SetPassword(password); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *gormIdentityStore) Authenticate(ctx context.Context, email, password string) (*models.Principal, error) {
	var p models.Principal
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !p.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return &p, nil
}

func (s *gormIdentityStore) UpdatePassword(ctx context.Context, id, newPassword string) error {
	var p models.Principal
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := p.SetPassword(newPassword); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Save(&p).Error
}

func (s *gormIdentityStore) Delete(ctx context.Context, id string) error {
	// Idempotent: deleting zero rows is still success.
	return s.db.WithContext(ctx).Delete(&models.Principal{}, "id = ?", id).Error
}

type gormProfileStore struct {
	db *gorm.DB
}

func (s *gormProfileStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *gormProfileStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *gormProfileStore) Create(ctx context.Context, profile *models.User) error {
	// Upsert semantics: a row with this id means a previous attempt
	// already landed, which counts as success for the retry loop.
	var existing models.User
	err := s.db.WithContext(ctx).First(&existing, "id = ?", profile.ID).Error
	if err == nil {
		*profile = existing
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return s.db.WithContext(ctx).Create(profile).Error
}

func (s *gormProfileStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id).Error
}

type gormSessionStore struct {
	db  *gorm.DB
	cfg *config.Config
}

func (s *gormSessionStore) Open(ctx context.Context, p *models.Principal) (*TokenPair, error) {
	accessToken, refreshToken, err := utils.GenerateTokens(p, s.cfg)
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().Add(time.Duration(s.cfg.JWTRefreshExpirationHours) * time.Hour)
	session := models.Session{
		PrincipalID: p.ID,
		Token:       refreshToken,
		ExpiresAt:   expiresAt,
	}
	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *gormSessionStore) Rotate(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := utils.ValidateToken(refreshToken, s.cfg.JWTRefreshSecret)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	var session models.Session
	err = s.db.WithContext(ctx).
		Where("token = ? AND principal_id = ? AND is_revoked = ? AND expires_at > ?",
			refreshToken, claims.PrincipalID, false, time.Now()).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	var p models.Principal
	if err := s.db.WithContext(ctx).First(&p, "id = ?", claims.PrincipalID).Error; err != nil {
		return nil, err
	}

	// Rotation: revoke the old session before issuing the new pair.
	session.IsRevoked = true
	if err := s.db.WithContext(ctx).Save(&session).Error; err != nil {
		return nil, err
	}

	return s.Open(ctx, &p)
}

func (s *gormSessionStore) Revoke(ctx context.Context, refreshToken string) error {
	return s.db.WithContext(ctx).Model(&models.Session{}).
		Where("token = ? AND is_revoked = ?", refreshToken, false).
		Update("is_revoked", true).Error
}

func (s *gormSessionStore) RevokeAll(ctx context.Context, principalID string) error {
	return s.db.WithContext(ctx).Model(&models.Session{}).
		Where("principal_id = ? AND is_revoked = ?", principalID, false).
		Update("is_revoked", true).Error
}

func (s *gormSessionStore) HasActive(ctx context.Context, principalID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Session{}).
		Where("principal_id = ? AND is_revoked = ? AND expires_at > ?", principalID, false, time.Now()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

type gormDoctorDirectory struct {
	db *gorm.DB
}

func (d *gormDoctorDirectory) EnsureDoctorRecord(ctx context.Context, profile *models.User) error {
	record := models.DoctorRecord{
		UserID:       profile.ID,
		Name:         profile.Username,
		DepartmentID: profile.DepartmentID,
	}
	return d.db.WithContext(ctx).
		Where("user_id = ?", profile.ID).
		FirstOrCreate(&record).Error
}

func (d *gormDoctorDirectory) DeleteByUser(ctx context.Context, userID string) error {
	return d.db.WithContext(ctx).Delete(&models.DoctorRecord{}, "user_id = ?", userID).Error
}
