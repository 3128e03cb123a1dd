package auth

import (
	"context"
	"errors"
	"time"

	"hospital-admin-server/internal/models"
)

// Sentinel errors shared by the store implementations. The flows branch
// on these rather than on driver-specific errors.
var (
	ErrNotFound           = errors.New("record not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// TokenPair is the credential material handed to a client when a
// session is opened or rotated.
type TokenPair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// IdentityStore holds principals: credentials plus the username/role
// metadata attached at sign-up.
type IdentityStore interface {
	// Create provisions a new principal with the given metadata.
	Create(ctx context.Context, email, password, username string, role models.Role) (*models.Principal, error)
	// Authenticate verifies credentials and returns the principal.
	// Returns ErrInvalidCredentials for an unknown email or wrong password.
	Authenticate(ctx context.Context, email, password string) (*models.Principal, error)
	// UpdatePassword replaces the principal's password (admin operation).
	UpdatePassword(ctx context.Context, id, newPassword string) error
	// Delete removes the principal (admin operation, also the
	// compensating action of the provisioning saga). Deleting a
	// principal that no longer exists is a no-op success so the undo
	// step can be retried safely.
	Delete(ctx context.Context, id string) error
}

// ProfileStore holds the application profile row for each principal.
type ProfileStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	// Create inserts the profile row. Inserting a profile whose id
	// already exists is treated as success, which makes the retry loop
	// of the provisioning flow idempotent.
	Create(ctx context.Context, profile *models.User) error
	Delete(ctx context.Context, id string) error
}

// SessionStore owns session lifetime. Revoking all sessions for a
// principal is the "sign out" side effect that every route guard and
// concurrently mounted view observes.
type SessionStore interface {
	Open(ctx context.Context, p *models.Principal) (*TokenPair, error)
	// Rotate exchanges a valid refresh token for a fresh pair, revoking
	// the old session row.
	Rotate(ctx context.Context, refreshToken string) (*TokenPair, error)
	Revoke(ctx context.Context, refreshToken string) error
	RevokeAll(ctx context.Context, principalID string) error
	// HasActive reports whether the principal still has at least one
	// live session (get-current-session).
	HasActive(ctx context.Context, principalID string) (bool, error)
}

// DoctorDirectory manages the dependent DoctorRecord rows for
// doctor-role profiles.
type DoctorDirectory interface {
	// EnsureDoctorRecord creates the doctor record for the profile if it
	// is missing. Calling it when the record already exists is a no-op
	// success.
	EnsureDoctorRecord(ctx context.Context, profile *models.User) error
	DeleteByUser(ctx context.Context, userID string) error
}

// Stores bundles the four collaborators of the auth flows.
type Stores struct {
	Identities IdentityStore
	Profiles   ProfileStore
	Sessions   SessionStore
	Doctors    DoctorDirectory
}
