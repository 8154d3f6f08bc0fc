package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/edelguur/admin-backend/pkg/auth"
	"github.com/edelguur/admin-backend/pkg/config"
)

func testJWT() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "edelguur", ExpirationMinutes: 60, RefreshTokenTTLMinutes: 120}
}

func mintTestToken(t *testing.T, cfg config.JWTConfig, now time.Time, jti string) string {
	t.Helper()
	token, err := auth.MintAccessToken(cfg, now, auth.AccessTokenPayload{UserID: 7, Email: "admin@example.com", JTI: jti})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func serveAuth(verifier stubSessionVerifier, header string) (*httptest.ResponseRecorder, context.Context) {
	var captured context.Context
	handler := Auth(testJWT(), verifier, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Context()
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, captured
}

func TestAuthRejectsMissingToken(t *testing.T) {
	for _, header := range []string{"", "Bearer ", "Token abc"} {
		rec, _ := serveAuth(stubSessionVerifier{ok: true}, header)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401 got %d", header, rec.Code)
		}
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	rec, _ := serveAuth(stubSessionVerifier{ok: true}, "Bearer invalid")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	token := mintTestToken(t, testJWT(), time.Now().Add(-2*time.Hour), "jti-old")
	rec, _ := serveAuth(stubSessionVerifier{ok: true}, "Bearer "+token)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}

func TestAuthRejectsForeignIssuer(t *testing.T) {
	other := testJWT()
	other.Issuer = "someone-else"
	token := mintTestToken(t, other, time.Now(), "jti-1")
	rec, _ := serveAuth(stubSessionVerifier{ok: true}, "Bearer "+token)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}

func TestAuthRejectsRevokedSession(t *testing.T) {
	token := mintTestToken(t, testJWT(), time.Now(), "jti-1")
	rec, _ := serveAuth(stubSessionVerifier{ok: false}, "Bearer "+token)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}

func TestAuthSessionStoreFailure(t *testing.T) {
	token := mintTestToken(t, testJWT(), time.Now(), "jti-1")
	rec, _ := serveAuth(stubSessionVerifier{err: errors.New("redis down")}, "Bearer "+token)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
}

func TestAuthAllowsValidToken(t *testing.T) {
	token := mintTestToken(t, testJWT(), time.Now(), "jti-1")
	rec, ctx := serveAuth(stubSessionVerifier{ok: true}, "bearer "+token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	userID, ok := UserIDFromContext(ctx)
	if !ok || userID != 7 {
		t.Fatalf("expected user 7 in context, got %d", userID)
	}
	if EmailFromContext(ctx) != "admin@example.com" {
		t.Fatalf("unexpected email %q", EmailFromContext(ctx))
	}
	if AccessIDFromContext(ctx) != "jti-1" {
		t.Fatalf("unexpected access id %q", AccessIDFromContext(ctx))
	}
}

type stubSessionVerifier struct {
	ok  bool
	err error
}

func (s stubSessionVerifier) HasSession(context.Context, string) (bool, error) {
	return s.ok, s.err
}
