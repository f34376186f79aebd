package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hugh/teamboard/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWT() *auth.JWTService {
	return auth.NewJWTService("test-secret", 24*time.Hour)
}

func okHandler(t *testing.T, wantUserID uint, wantEmail string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, wantUserID, GetUserID(r.Context()))
		assert.Equal(t, wantEmail, GetUserEmail(r.Context()))
		require.NotNil(t, GetClaims(r.Context()))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func TestAuth_ValidToken_AuthorizationHeader(t *testing.T) {
	jwtService := newTestJWT()
	revoker := auth.NewTokenRevoker(nil)

	token, err := jwtService.GenerateToken(42, "test@example.com")
	require.NoError(t, err)

	handler := Auth(jwtService, revoker)(okHandler(t, 42, "test@example.com"))

	req := httptest.NewRequest("GET", "/api/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestAuth_ValidToken_Cookie(t *testing.T) {
	jwtService := newTestJWT()
	revoker := auth.NewTokenRevoker(nil)

	token, err := jwtService.GenerateToken(7, "cookie@example.com")
	require.NoError(t, err)

	handler := Auth(jwtService, revoker)(okHandler(t, 7, "cookie@example.com"))

	req := httptest.NewRequest("GET", "/api/test", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_MissingToken(t *testing.T) {
	handler := Auth(newTestJWT(), auth.NewTokenRevoker(nil))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest("GET", "/api/test", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Authentication required")
}

func TestAuth_InvalidToken(t *testing.T) {
	handler := Auth(newTestJWT(), auth.NewTokenRevoker(nil))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest("GET", "/api/test", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_ExpiredToken(t *testing.T) {
	expired := auth.NewJWTService("test-secret", time.Millisecond)
	token, err := expired.GenerateToken(1, "old@example.com")
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	handler := Auth(expired, auth.NewTokenRevoker(nil))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest("GET", "/api/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalAuth(t *testing.T) {
	jwtService := newTestJWT()
	revoker := auth.NewTokenRevoker(nil)

	t.Run("anonymous passes through without principal", func(t *testing.T) {
		handler := OptionalAuth(jwtService, revoker)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Zero(t, GetUserID(r.Context()))
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest("GET", "/api/v1/teams", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("invalid token treated as anonymous", func(t *testing.T) {
		handler := OptionalAuth(jwtService, revoker)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Zero(t, GetUserID(r.Context()))
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest("GET", "/api/v1/teams", nil)
		req.Header.Set("Authorization", "Bearer junk")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("valid token binds principal", func(t *testing.T) {
		token, err := jwtService.GenerateToken(9, "opt@example.com")
		require.NoError(t, err)

		handler := OptionalAuth(jwtService, revoker)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, uint(9), GetUserID(r.Context()))
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest("GET", "/api/v1/teams", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestGetUserID_EmptyContext(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	assert.Zero(t, GetUserID(req.Context()))
	assert.Empty(t, GetUserEmail(req.Context()))
	assert.Nil(t, GetClaims(req.Context()))
}
