package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edelguur/admin-backend/internal/users"
	pkgAuth "github.com/edelguur/admin-backend/pkg/auth"
	"github.com/edelguur/admin-backend/pkg/auth/session"
	"github.com/edelguur/admin-backend/pkg/config"
	"github.com/edelguur/admin-backend/pkg/db/dbtest"
	"github.com/edelguur/admin-backend/pkg/db/models"
	pkgerrors "github.com/edelguur/admin-backend/pkg/errors"
)

type fakeSessions struct {
	sessions map[string]fakeSession
	next     int
	failGen  error
}

type fakeSession struct {
	userID int64
	token  string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: map[string]fakeSession{}}
}

func (f *fakeSessions) Generate(_ context.Context, accessID string, userID int64) (string, error) {
	if f.failGen != nil {
		return "", f.failGen
	}
	f.next++
	token := "refresh-" + accessID
	f.sessions[accessID] = fakeSession{userID: userID, token: token}
	return token, nil
}

func (f *fakeSessions) Rotate(_ context.Context, oldAccessID string, userID int64, provided string) (string, string, error) {
	current, ok := f.sessions[oldAccessID]
	if !ok || current.userID != userID || current.token != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(f.sessions, oldAccessID)
	newID := session.NewAccessID()
	token := "refresh-" + newID
	f.sessions[newID] = fakeSession{userID: userID, token: token}
	return newID, token, nil
}

func (f *fakeSessions) Revoke(_ context.Context, accessID string) error {
	delete(f.sessions, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "secret",
		Issuer:                 "edelguur",
		ExpirationMinutes:      60,
		RefreshTokenTTLMinutes: 120,
	}
}

func fastPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{ArgonMemoryKB: 64, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}
}

func buildTestService(t *testing.T, now time.Time) (Service, *users.Repository, *fakeSessions) {
	t.Helper()
	client := dbtest.Open(t, &models.User{})
	repo := users.NewRepository(client.DB())
	sessions := newFakeSessions()
	svc, err := NewService(ServiceParams{
		DB:             client,
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
		PasswordConfig: fastPasswordConfig(),
		Now:            func() time.Time { return now },
	})
	require.NoError(t, err)
	return svc, repo, sessions
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	assert.Equal(t, code, typed.Code())
}

func TestRegisterIssuesTokens(t *testing.T) {
	svc, repo, sessions := buildTestService(t, time.Now())
	ctx := context.Background()

	resp, err := svc.Register(ctx, RegisterRequest{Name: "Bold", Email: " Bold@Shop.MN ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "User registered successfully", resp.Message)
	assert.Equal(t, "bold@shop.mn", resp.User.Email)
	assert.NotEmpty(t, resp.RefreshToken)

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "bold@shop.mn", claims.Email)
	assert.Contains(t, sessions.sessions, claims.ID)

	stored, err := repo.FindByEmail(ctx, "bold@shop.mn")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _, _ := buildTestService(t, time.Now())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Name: "A", Email: "a@shop.mn", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Name: "B", Email: "A@SHOP.MN", Password: "secret2"})
	requireCode(t, err, pkgerrors.CodeValidation)
	assert.Equal(t, userExistsMessage, pkgerrors.As(err).Message())
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc, _, _ := buildTestService(t, time.Now())

	_, err := svc.Register(context.Background(), RegisterRequest{Name: "A", Email: "a@shop.mn", Password: "12345"})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestLoginRecordsLastLogin(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc, repo, _ := buildTestService(t, now)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Name: "Saraa", Email: "saraa@shop.mn", Password: "secret1"})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, LoginRequest{Email: "SARAA@shop.mn", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Login successful", resp.Message)
	assert.NotEmpty(t, resp.Token)

	user, err := repo.FindByEmail(ctx, "saraa@shop.mn")
	require.NoError(t, err)
	require.NotNil(t, user.LastLoginAt)
	assert.True(t, user.LastLoginAt.Equal(now))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _, _ := buildTestService(t, time.Now())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Name: "Saraa", Email: "saraa@shop.mn", Password: "secret1"})
	require.NoError(t, err)

	for _, req := range []LoginRequest{
		{Email: "saraa@shop.mn", Password: "wrong-password"},
		{Email: "nobody@shop.mn", Password: "secret1"},
	} {
		_, err := svc.Login(ctx, req)
		requireCode(t, err, pkgerrors.CodeValidation)
		assert.Equal(t, invalidCredentialsMessage, pkgerrors.As(err).Message())
	}
}

func TestMe(t *testing.T) {
	svc, _, _ := buildTestService(t, time.Now())
	ctx := context.Background()

	resp, err := svc.Register(ctx, RegisterRequest{Name: "Saraa", Email: "saraa@shop.mn", Password: "secret1"})
	require.NoError(t, err)

	me, err := svc.Me(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Saraa", me.Name)

	_, err = svc.Me(ctx, resp.User.ID+1)
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestRefreshRotatesExpiredToken(t *testing.T) {
	issued := time.Now().Add(-2 * time.Hour)
	svc, _, sessions := buildTestService(t, issued)
	ctx := context.Background()

	resp, err := svc.Register(ctx, RegisterRequest{Name: "Saraa", Email: "saraa@shop.mn", Password: "secret1"})
	require.NoError(t, err)
	_, err = pkgAuth.ParseAccessToken(testJWTConfig(), resp.Token)
	require.True(t, pkgAuth.IsExpired(err))

	pair, err := svc.Refresh(ctx, resp.Token, RefreshRequest{RefreshToken: resp.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, resp.RefreshToken, pair.RefreshToken)
	assert.Len(t, sessions.sessions, 1)

	_, err = svc.Refresh(ctx, resp.Token, RefreshRequest{RefreshToken: resp.RefreshToken})
	requireCode(t, err, pkgerrors.CodeForbidden)
}

func TestRefreshRejectsForeignToken(t *testing.T) {
	svc, _, _ := buildTestService(t, time.Now())

	_, err := svc.Refresh(context.Background(), "not-a-jwt", RefreshRequest{RefreshToken: "x"})
	requireCode(t, err, pkgerrors.CodeForbidden)
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, _, sessions := buildTestService(t, time.Now())
	ctx := context.Background()

	resp, err := svc.Register(ctx, RegisterRequest{Name: "Saraa", Email: "saraa@shop.mn", Password: "secret1"})
	require.NoError(t, err)
	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims.ID))
	assert.NotContains(t, sessions.sessions, claims.ID)
}

func TestRegisterSurfacesSessionStoreFailure(t *testing.T) {
	svc, _, sessions := buildTestService(t, time.Now())
	sessions.failGen = errors.New("redis down")

	_, err := svc.Register(context.Background(), RegisterRequest{Name: "A", Email: "a@shop.mn", Password: "secret1"})
	requireCode(t, err, pkgerrors.CodeDependency)
}
