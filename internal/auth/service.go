// Package auth implements the account provisioning and session
// resolution flows. Provisioning is a two-step saga: create the
// principal, then the profile row, with a compensating principal delete
// if the profile never lands. Resolution tolerates read-after-write lag
// with a bounded retry loop and lazily bootstraps the doctor record for
// doctor-role profiles.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"hospital-admin-server/internal/config"
	"hospital-admin-server/internal/models"
)

// Account is the minimal user record returned by both flows.
type Account struct {
	ID       string      `json:"id"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
	Username string      `json:"username"`
}

// Service orchestrates the flows over the store collaborators.
type Service struct {
	identities IdentityStore
	profiles   ProfileStore
	sessions   SessionStore
	doctors    DoctorDirectory
	log        *zap.Logger

	insertAttempts int
	lookupAttempts int
	retryDelay     time.Duration
}

// NewService creates a Service with the given stores and retry knobs.
func NewService(st Stores, pcfg config.ProvisioningConfig, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		identities:     st.Identities,
		profiles:       st.Profiles,
		sessions:       st.Sessions,
		doctors:        st.Doctors,
		log:            log,
		insertAttempts: pcfg.ProfileInsertAttempts,
		lookupAttempts: pcfg.ProfileLookupAttempts,
		retryDelay:     pcfg.RetryDelay,
	}
}

// SignUp runs the account provisioning flow: given a desired email,
// password, username and role, produce a principal and a matching
// profile, or guarantee that neither persists.
func (s *Service) SignUp(ctx context.Context, email, password, username string, role models.Role) (*Account, error) {
	// Pre-check: an existing profile with this email ends the flow
	// before anything is created.
	if _, err := s.profiles.FindByEmail(ctx, email); err == nil {
		return nil, flowErr(CodeAlreadyExists, "an account with this email already exists", nil)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, flowErr(CodeUnexpected, "failed to check for existing account", err)
	}

	principal, err := s.identities.Create(ctx, email, password, username, role)
	if err != nil {
		// Nothing to compensate: no principal was created.
		return nil, flowErr(CodeProvisioningFailed, "identity creation was rejected", err)
	}

	// Propagation barrier between the identity store and the profile
	// repository before the first insert attempt.
	if err := s.wait(ctx); err != nil {
		return nil, s.compensate(ctx, principal.ID, err)
	}

	profile := &models.User{
		BaseModel: models.BaseModel{ID: principal.ID},
		Email:     email,
		Username:  username,
		Role:      role,
	}

	var lastErr error
	for attempt := 1; attempt <= s.insertAttempts; attempt++ {
		if err := s.profiles.Create(ctx, profile); err == nil {
			lastErr = nil
			break
		} else {
			lastErr = err
			s.log.Warn("profile insert attempt failed",
				zap.String("principal_id", principal.ID),
				zap.Int("attempt", attempt),
				zap.Error(err))
		}
		if attempt == s.insertAttempts {
			break
		}
		if err := s.wait(ctx); err != nil {
			lastErr = err
			break
		}
	}

	if lastErr != nil {
		return nil, s.compensate(ctx, principal.ID, lastErr)
	}

	return &Account{
		ID:       principal.ID,
		Email:    email,
		Role:     role,
		Username: username,
	}, nil
}

// compensate undoes the principal created by SignUp after the profile
// insert was exhausted. The undo is retried once; if it still fails the
// orphaned principal is reported in the error chain instead of being
// silently dropped.
func (s *Service) compensate(ctx context.Context, principalID string, cause error) error {
	delErr := s.identities.Delete(ctx, principalID)
	if delErr != nil {
		delErr = s.identities.Delete(ctx, principalID)
	}
	if delErr != nil {
		s.log.Error("compensating principal delete failed, identity orphaned",
			zap.String("principal_id", principalID),
			zap.Error(delErr))
		cause = fmt.Errorf("%w (compensating delete failed: %v)", cause, delErr)
	}
	return flowErr(CodeProfileCreationFailed, "account could not be fully provisioned", cause)
}

// SignIn runs the session resolution flow for the credential path:
// authenticate, open a session, resolve the profile and bootstrap the
// doctor record when needed. On any resolution failure the principal is
// signed back out so no half-authenticated session remains.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Account, *TokenPair, error) {
	principal, err := s.identities.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return nil, nil, flowErr(CodeInvalidCredentials, "invalid email or password", nil)
		}
		return nil, nil, flowErr(CodeAuthProviderError, "authentication failed", err)
	}

	tokens, err := s.sessions.Open(ctx, principal)
	if err != nil {
		return nil, nil, flowErr(CodeAuthProviderError, "failed to open session", err)
	}

	account, err := s.Resolve(ctx, principal.ID)
	if err != nil {
		return nil, nil, err
	}

	return account, tokens, nil
}

// Resolve runs the session resolution flow for an already-authenticated
// principal (session restore and route guards). Safe to call
// repeatedly: re-running the doctor bootstrap for a fully provisioned
// doctor is a no-op.
func (s *Service) Resolve(ctx context.Context, principalID string) (*Account, error) {
	var profile *models.User
	var lastErr error
	for attempt := 1; attempt <= s.lookupAttempts; attempt++ {
		p, err := s.profiles.FindByID(ctx, principalID)
		if err == nil {
			profile = p
			break
		}
		lastErr = err
		if !errors.Is(err, ErrNotFound) {
			s.log.Warn("profile lookup attempt errored",
				zap.String("principal_id", principalID),
				zap.Int("attempt", attempt),
				zap.Error(err))
		}
		if attempt == s.lookupAttempts {
			break
		}
		if err := s.wait(ctx); err != nil {
			lastErr = err
			break
		}
	}

	if profile == nil {
		// Leave no half-authenticated session behind.
		if err := s.sessions.RevokeAll(ctx, principalID); err != nil {
			s.log.Error("failed to revoke sessions after resolution failure",
				zap.String("principal_id", principalID),
				zap.Error(err))
		}
		return nil, flowErr(CodeProfileNotFound, "no profile found for this account", lastErr)
	}

	if profile.Role == models.RoleDoctor {
		if err := s.doctors.EnsureDoctorRecord(ctx, profile); err != nil {
			if revErr := s.sessions.RevokeAll(ctx, principalID); revErr != nil {
				s.log.Error("failed to revoke sessions after doctor bootstrap failure",
					zap.String("principal_id", principalID),
					zap.Error(revErr))
			}
			return nil, flowErr(CodeDoctorProfileError, "failed to prepare doctor profile", err)
		}
	}

	return &Account{
		ID:       profile.ID,
		Email:    profile.Email,
		Role:     profile.Role,
		Username: profile.Username,
	}, nil
}

// Authorize resolves the principal and enforces a role allow-list. A
// role outside the allow-list revokes the principal's sessions and
// returns an access-denied error naming the role.
func (s *Service) Authorize(ctx context.Context, principalID string, allowed ...models.Role) (*Account, error) {
	account, err := s.Resolve(ctx, principalID)
	if err != nil {
		return nil, err
	}
	for _, role := range allowed {
		if account.Role == role {
			return account, nil
		}
	}
	if err := s.sessions.RevokeAll(ctx, principalID); err != nil {
		s.log.Error("failed to revoke sessions after access denial",
			zap.String("principal_id", principalID),
			zap.Error(err))
	}
	return nil, flowErr(CodeAccessDenied,
		fmt.Sprintf("access denied for role %q", account.Role), nil)
}

// Refresh exchanges a refresh token for a new token pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	tokens, err := s.sessions.Rotate(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return nil, flowErr(CodeInvalidCredentials, "refresh token is invalid, expired, or revoked", nil)
		}
		return nil, flowErr(CodeAuthProviderError, "failed to refresh session", err)
	}
	return tokens, nil
}

// SignOut revokes the session identified by the refresh token.
func (s *Service) SignOut(ctx context.Context, refreshToken string) error {
	if err := s.sessions.Revoke(ctx, refreshToken); err != nil {
		return flowErr(CodeAuthProviderError, "failed to sign out", err)
	}
	return nil
}

// SignOutAll revokes every active session for the principal.
func (s *Service) SignOutAll(ctx context.Context, principalID string) error {
	if err := s.sessions.RevokeAll(ctx, principalID); err != nil {
		return flowErr(CodeAuthProviderError, "failed to sign out", err)
	}
	return nil
}

// HasActiveSession reports whether the principal still holds a live
// session (get-current-session).
func (s *Service) HasActiveSession(ctx context.Context, principalID string) (bool, error) {
	return s.sessions.HasActive(ctx, principalID)
}

// UpdatePassword replaces a principal's password (admin operation).
func (s *Service) UpdatePassword(ctx context.Context, principalID, newPassword string) error {
	if err := s.identities.UpdatePassword(ctx, principalID, newPassword); err != nil {
		if errors.Is(err, ErrNotFound) {
			return flowErr(CodeProfileNotFound, "account not found", nil)
		}
		return flowErr(CodeUnexpected, "failed to update password", err)
	}
	return nil
}

// DeleteAccount is the privileged delete-user procedure: it revokes all
// sessions and removes the doctor record, profile, and principal.
func (s *Service) DeleteAccount(ctx context.Context, principalID string) error {
	if err := s.sessions.RevokeAll(ctx, principalID); err != nil {
		return flowErr(CodeUnexpected, "failed to revoke sessions", err)
	}
	if err := s.doctors.DeleteByUser(ctx, principalID); err != nil {
		return flowErr(CodeUnexpected, "failed to remove doctor record", err)
	}
	if err := s.profiles.Delete(ctx, principalID); err != nil {
		return flowErr(CodeUnexpected, "failed to remove profile", err)
	}
	if err := s.identities.Delete(ctx, principalID); err != nil {
		return flowErr(CodeUnexpected, "failed to remove identity", err)
	}
	return nil
}

// DashboardPathFor maps a resolved role to its post-login dashboard.
// Roles without a dashboard fall back to the sign-in route.
func DashboardPathFor(role models.Role) string {
	switch role {
	case models.RoleAdmin:
		return "/admin/dashboard"
	case models.RoleDoctor:
		return "/doctor/dashboard"
	case models.RoleDepartment:
		return "/department/dashboard"
	default:
		return "/login"
	}
}

// wait sleeps for the configured retry delay, aborting early if the
// request context is cancelled so a caller navigating away does not
// keep a stale retry loop alive.
func (s *Service) wait(ctx context.Context) error {
	t := time.NewTimer(s.retryDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
