package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-admin-server/internal/config"
	"hospital-admin-server/internal/models"
)

// ---------------------------------------------------------------------------
// In-memory fakes
// ---------------------------------------------------------------------------

type fakeIdentityStore struct {
	mu          sync.Mutex
	principals  map[string]*models.Principal
	passwords   map[string]string
	createErr   error
	deleteErr   error
	nextID      int
	createCalls int
	deleteCalls int
}

func newFakeIdentityStore() *fakeIdentityStore {
	return &fakeIdentityStore{
		principals: make(map[string]*models.Principal),
		passwords:  make(map[string]string),
	}
}

func (f *fakeIdentityStore) Create(_ context.Context, email, password, username string, role models.Role) (*models.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	p := &models.Principal{
		BaseModel: models.BaseModel{ID: fmt.Sprintf("principal-%d", f.nextID)},
		Email:     email,
		Username:  username,
		Role:      role,
	}
	f.principals[p.ID] = p
	f.passwords[email] = password
	return p, nil
}

func (f *fakeIdentityStore) Authenticate(_ context.Context, email, password string) (*models.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.passwords[email]
	if !ok || stored != password {
		return nil, ErrInvalidCredentials
	}
	for _, p := range f.principals {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, ErrInvalidCredentials
}

func (f *fakeIdentityStore) UpdatePassword(_ context.Context, id, newPassword string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.principals[id]
	if !ok {
		return ErrNotFound
	}
	f.passwords[p.Email] = newPassword
	return nil
}

func (f *fakeIdentityStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.principals, id)
	return nil
}

func (f *fakeIdentityStore) has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.principals[id]
	return ok
}

type fakeProfileStore struct {
	mu             sync.Mutex
	profiles       map[string]*models.User
	createFailures int // first N Create calls fail
	lagFinds       int // first N FindByID calls report not found
	createCalls    int
	findCalls      int
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{profiles: make(map[string]*models.User)}
}

func (f *fakeProfileStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.profiles {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeProfileStore) FindByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findCalls++
	if f.lagFinds > 0 {
		f.lagFinds--
		return nil, ErrNotFound
	}
	u, ok := f.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (f *fakeProfileStore) Create(_ context.Context, profile *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createFailures > 0 {
		f.createFailures--
		return errors.New("insert rejected")
	}
	if existing, ok := f.profiles[profile.ID]; ok {
		*profile = *existing
		return nil
	}
	cp := *profile
	f.profiles[profile.ID] = &cp
	return nil
}

func (f *fakeProfileStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.profiles, id)
	return nil
}

func (f *fakeProfileStore) seed(u *models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[u.ID] = u
}

type fakeSessionStore struct {
	mu     sync.Mutex
	active map[string]bool
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{active: make(map[string]bool)}
}

func (f *fakeSessionStore) Open(_ context.Context, p *models.Principal) (*TokenPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active[p.ID] = true
	return &TokenPair{
		AccessToken:  "access-" + p.ID,
		RefreshToken: "refresh-" + p.ID,
		ExpiresAt:    time.Now().Add(time.Hour),
	}, nil
}

func (f *fakeSessionStore) Rotate(_ context.Context, _ string) (*TokenPair, error) {
	return nil, ErrInvalidCredentials
}

func (f *fakeSessionStore) Revoke(_ context.Context, _ string) error { return nil }

func (f *fakeSessionStore) RevokeAll(_ context.Context, principalID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active[principalID] = false
	return nil
}

func (f *fakeSessionStore) HasActive(_ context.Context, principalID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active[principalID], nil
}

type fakeDoctorDirectory struct {
	mu          sync.Mutex
	records     map[string]bool
	ensureErr   error
	ensureCalls int
}

func newFakeDoctorDirectory() *fakeDoctorDirectory {
	return &fakeDoctorDirectory{records: make(map[string]bool)}
}

func (f *fakeDoctorDirectory) EnsureDoctorRecord(_ context.Context, profile *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensureCalls++
	if f.ensureErr != nil {
		return f.ensureErr
	}
	f.records[profile.ID] = true
	return nil
}

func (f *fakeDoctorDirectory) DeleteByUser(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, userID)
	return nil
}

func (f *fakeDoctorDirectory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

type fixture struct {
	identities *fakeIdentityStore
	profiles   *fakeProfileStore
	sessions   *fakeSessionStore
	doctors    *fakeDoctorDirectory
	svc        *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		identities: newFakeIdentityStore(),
		profiles:   newFakeProfileStore(),
		sessions:   newFakeSessionStore(),
		doctors:    newFakeDoctorDirectory(),
	}
	f.svc = NewService(Stores{
		Identities: f.identities,
		Profiles:   f.profiles,
		Sessions:   f.sessions,
		Doctors:    f.doctors,
	}, config.ProvisioningConfig{
		ProfileInsertAttempts: 3,
		ProfileLookupAttempts: 5,
		RetryDelay:            time.Millisecond,
	}, nil)
	return f
}

// provision creates a principal and matching profile directly in the fakes.
func (f *fixture) provision(id, email, username string, role models.Role) {
	f.identities.principals[id] = &models.Principal{
		BaseModel: models.BaseModel{ID: id},
		Email:     email,
		Username:  username,
		Role:      role,
	}
	f.identities.passwords[email] = "secret1"
	f.profiles.seed(&models.User{
		BaseModel: models.BaseModel{ID: id},
		Email:     email,
		Username:  username,
		Role:      role,
	})
}

// ---------------------------------------------------------------------------
// Account provisioning flow
// ---------------------------------------------------------------------------

func TestSignUpFailsWhenEmailAlreadyExists(t *testing.T) {
	f := newFixture(t)
	f.profiles.seed(&models.User{
		BaseModel: models.BaseModel{ID: "existing"},
		Email:     "taken@example.com",
		Username:  "first",
		Role:      models.RoleAdmin,
	})

	account, err := f.svc.SignUp(context.Background(), "taken@example.com", "secret1", "second", models.RoleAdmin)

	require.Error(t, err)
	assert.Nil(t, account)
	assert.Equal(t, CodeAlreadyExists, CodeOf(err))
	assert.Zero(t, f.identities.createCalls, "no principal may be created after the pre-check hit")
}

func TestSignUpReportsProvisioningFailedWhenIdentityRejected(t *testing.T) {
	f := newFixture(t)
	f.identities.createErr = errors.New("weak password")

	_, err := f.svc.SignUp(context.Background(), "new@example.com", "secret1", "alice", models.RoleAdmin)

	require.Error(t, err)
	assert.Equal(t, CodeProvisioningFailed, CodeOf(err))
	assert.Zero(t, f.identities.deleteCalls, "nothing to compensate when no principal was created")
}

func TestSignUpCompensatesWhenAllInsertAttemptsFail(t *testing.T) {
	f := newFixture(t)
	f.profiles.createFailures = 3

	_, err := f.svc.SignUp(context.Background(), "new@example.com", "secret1", "alice", models.RoleAdmin)

	require.Error(t, err)
	assert.Equal(t, CodeProfileCreationFailed, CodeOf(err))
	assert.Equal(t, 3, f.profiles.createCalls)
	assert.False(t, f.identities.has("principal-1"), "orphaned principal must be deleted")
	assert.GreaterOrEqual(t, f.identities.deleteCalls, 1)
}

func TestSignUpSucceedsOnEachAttempt(t *testing.T) {
	for k := 1; k <= 3; k++ {
		t.Run(fmt.Sprintf("attempt_%d", k), func(t *testing.T) {
			f := newFixture(t)
			f.profiles.createFailures = k - 1

			account, err := f.svc.SignUp(context.Background(), "new@example.com", "secret1", "alice", models.RoleDepartment)

			require.NoError(t, err)
			assert.Equal(t, k, f.profiles.createCalls, "no further attempts after success")
			assert.Equal(t, "new@example.com", account.Email)
			assert.True(t, f.identities.has(account.ID))
		})
	}
}

func TestSignUpReportsUndoFailureInErrorChain(t *testing.T) {
	f := newFixture(t)
	f.profiles.createFailures = 3
	f.identities.deleteErr = errors.New("identity service unavailable")

	_, err := f.svc.SignUp(context.Background(), "new@example.com", "secret1", "alice", models.RoleAdmin)

	require.Error(t, err)
	assert.Equal(t, CodeProfileCreationFailed, CodeOf(err))
	assert.Contains(t, err.Error(), "compensating delete failed")
	assert.Equal(t, 2, f.identities.deleteCalls, "undo is retried once")
}

func TestSignUpEndToEnd(t *testing.T) {
	f := newFixture(t)

	account, err := f.svc.SignUp(context.Background(), "a@x.com", "secret1", "alice", models.RoleAdmin)

	require.NoError(t, err)
	assert.NotEmpty(t, account.ID)
	assert.Equal(t, "a@x.com", account.Email)
	assert.Equal(t, models.RoleAdmin, account.Role)
	assert.Equal(t, "alice", account.Username)

	profile, err := f.profiles.FindByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.ID, profile.ID, "profile id equals principal id")
}

func TestSignUpAbortsWhenContextCancelled(t *testing.T) {
	f := newFixture(t)
	f.profiles.createFailures = 3
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.SignUp(ctx, "new@example.com", "secret1", "alice", models.RoleAdmin)

	require.Error(t, err)
	assert.Equal(t, CodeProfileCreationFailed, CodeOf(err))
	assert.False(t, f.identities.has("principal-1"), "cancelled provisioning must still compensate")
}

// ---------------------------------------------------------------------------
// Session resolution flow
// ---------------------------------------------------------------------------

func TestSignInInvalidCredentials(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.SignIn(context.Background(), "nobody@example.com", "wrong")

	require.Error(t, err)
	assert.Equal(t, CodeInvalidCredentials, CodeOf(err))
}

func TestSignInSignsOutWhenProfileNeverAppears(t *testing.T) {
	f := newFixture(t)
	f.identities.principals["p1"] = &models.Principal{
		BaseModel: models.BaseModel{ID: "p1"},
		Email:     "ghost@example.com",
	}
	f.identities.passwords["ghost@example.com"] = "secret1"

	_, _, err := f.svc.SignIn(context.Background(), "ghost@example.com", "secret1")

	require.Error(t, err)
	assert.Equal(t, CodeProfileNotFound, CodeOf(err))
	assert.Equal(t, 5, f.profiles.findCalls, "lookup is bounded to 5 attempts")

	active, err := f.sessions.HasActive(context.Background(), "p1")
	require.NoError(t, err)
	assert.False(t, active, "no half-authenticated session may remain")
}

func TestSignInToleratesReadAfterWriteLag(t *testing.T) {
	f := newFixture(t)
	f.provision("p1", "late@example.com", "late", models.RoleRegistration)
	f.profiles.lagFinds = 4 // row becomes visible on the final attempt

	account, tokens, err := f.svc.SignIn(context.Background(), "late@example.com", "secret1")

	require.NoError(t, err)
	assert.Equal(t, "late", account.Username)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.Equal(t, 5, f.profiles.findCalls)
}

func TestResolveDoctorIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.provision("doc1", "doc@example.com", "drwho", models.RoleDoctor)

	first, err := f.svc.Resolve(context.Background(), "doc1")
	require.NoError(t, err)
	second, err := f.svc.Resolve(context.Background(), "doc1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, models.RoleDoctor, first.Role)
	assert.Equal(t, 1, f.doctors.count(), "no duplicate doctor record")
	assert.Equal(t, 2, f.doctors.ensureCalls, "bootstrap is invoked unconditionally")
}

func TestResolveSignsOutWhenDoctorBootstrapFails(t *testing.T) {
	f := newFixture(t)
	f.provision("doc1", "doc@example.com", "drwho", models.RoleDoctor)
	f.sessions.active["doc1"] = true
	f.doctors.ensureErr = errors.New("procedure failed")

	_, err := f.svc.Resolve(context.Background(), "doc1")

	require.Error(t, err)
	assert.Equal(t, CodeDoctorProfileError, CodeOf(err))

	active, _ := f.sessions.HasActive(context.Background(), "doc1")
	assert.False(t, active)
}

// ---------------------------------------------------------------------------
// Route guard authorization
// ---------------------------------------------------------------------------

func TestAuthorizeDeniesAndSignsOutDisallowedRole(t *testing.T) {
	f := newFixture(t)
	f.provision("r1", "desk@example.com", "desk", models.RoleRegistration)
	f.sessions.active["r1"] = true

	_, err := f.svc.Authorize(context.Background(), "r1", models.RoleAdmin)

	require.Error(t, err)
	assert.Equal(t, CodeAccessDenied, CodeOf(err))
	assert.Contains(t, MessageOf(err), "registration", "denial must name the user's role")

	active, _ := f.sessions.HasActive(context.Background(), "r1")
	assert.False(t, active, "denied principal must be signed out")
}

func TestAuthorizeAllowsListedRole(t *testing.T) {
	f := newFixture(t)
	f.provision("a1", "admin@example.com", "root", models.RoleAdmin)
	f.sessions.active["a1"] = true

	account, err := f.svc.Authorize(context.Background(), "a1", models.RoleAdmin, models.RoleDepartment)

	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, account.Role)

	active, _ := f.sessions.HasActive(context.Background(), "a1")
	assert.True(t, active)
}

// ---------------------------------------------------------------------------
// Privileged account operations
// ---------------------------------------------------------------------------

func TestDeleteAccountRemovesEverything(t *testing.T) {
	f := newFixture(t)
	f.provision("doc1", "doc@example.com", "drwho", models.RoleDoctor)
	_, err := f.svc.Resolve(context.Background(), "doc1")
	require.NoError(t, err)
	require.Equal(t, 1, f.doctors.count())

	require.NoError(t, f.svc.DeleteAccount(context.Background(), "doc1"))

	assert.False(t, f.identities.has("doc1"))
	assert.Zero(t, f.doctors.count())
	_, err = f.profiles.FindByID(context.Background(), "doc1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdatePasswordUnknownAccount(t *testing.T) {
	f := newFixture(t)

	err := f.svc.UpdatePassword(context.Background(), "missing", "newsecret")

	require.Error(t, err)
	assert.Equal(t, CodeProfileNotFound, CodeOf(err))
}
