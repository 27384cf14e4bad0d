package flix_test

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"testing"

	flix "github.com/goliatone/go-flix"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// testConfig implements flix.Config
type testConfig struct {
	signingKey            string
	signingMethod         string
	contextKey            string
	tokenExpiration       int
	extendedTokenDuration int
	tokenLookup           string
	authScheme            string
	issuer                string
	audience              []string
	cookieSecure          bool
}

func newTestConfig() *testConfig {
	return &testConfig{
		signingKey:            "test-signing-key",
		signingMethod:         "HS256",
		contextKey:            "jwt",
		tokenExpiration:       24,
		extendedTokenDuration: 24 * 30,
		tokenLookup:           "cookie:jwt",
		authScheme:            "Bearer",
		issuer:                "test-issuer",
		audience:              []string{"test-audience"},
	}
}

func (c *testConfig) GetSigningKey() string         { return c.signingKey }
func (c *testConfig) GetSigningMethod() string      { return c.signingMethod }
func (c *testConfig) GetContextKey() string         { return c.contextKey }
func (c *testConfig) GetTokenExpiration() int       { return c.tokenExpiration }
func (c *testConfig) GetExtendedTokenDuration() int { return c.extendedTokenDuration }
func (c *testConfig) GetTokenLookup() string        { return c.tokenLookup }
func (c *testConfig) GetAuthScheme() string         { return c.authScheme }
func (c *testConfig) GetIssuer() string             { return c.issuer }
func (c *testConfig) GetAudience() []string         { return c.audience }
func (c *testConfig) GetCookieSecure() bool         { return c.cookieSecure }

// testIdentity implements flix.Identity
type testIdentity struct {
	id       string
	username string
	email    string
}

func (i testIdentity) ID() string       { return i.id }
func (i testIdentity) Username() string { return i.username }
func (i testIdentity) Email() string    { return i.email }

// MockIdentityProvider implements flix.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, identifier, password string) (flix.Identity, error) {
	args := m.Called(ctx, identifier, password)
	identity, _ := args.Get(0).(flix.Identity)
	return identity, args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (flix.Identity, error) {
	args := m.Called(ctx, identifier)
	identity, _ := args.Get(0).(flix.Identity)
	return identity, args.Error(1)
}

// MockUserStore implements flix.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByIdentifier(ctx context.Context, identifier string) (*flix.User, error) {
	args := m.Called(ctx, identifier)
	user, _ := args.Get(0).(*flix.User)
	return user, args.Error(1)
}

// MockLoginPayload implements flix.LoginPayload
type MockLoginPayload struct {
	Identifier      string
	Password        string
	ExtendedSession bool
}

func (m MockLoginPayload) GetIdentifier() string    { return m.Identifier }
func (m MockLoginPayload) GetPassword() string      { return m.Password }
func (m MockLoginPayload) GetExtendedSession() bool { return m.ExtendedSession }

// MockLogger implements flix.Logger
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	require.NoError(t, flix.RunMigrations(context.Background(), db))

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func setupRepoManager(t *testing.T) flix.RepositoryManager {
	t.Helper()

	repo := flix.NewRepositoryManager(setupTestDB(t))
	require.NoError(t, repo.Validate())
	return repo
}

// repoUserStore narrows the users repository to the identity provider lookup.
type repoUserStore struct {
	users flix.Users
}

func (s repoUserStore) GetByIdentifier(ctx context.Context, identifier string) (*flix.User, error) {
	return s.users.GetByIdentifier(ctx, identifier)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func seedUser(t *testing.T, repo flix.RepositoryManager, email, username, password string) *flix.User {
	t.Helper()

	hash, err := flix.HashPassword(password)
	require.NoError(t, err)

	user, err := repo.Users().Register(context.Background(), &flix.User{
		FirstName:    "Test",
		LastName:     "User",
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	})
	require.NoError(t, err)
	require.NotNil(t, user)

	return user
}
