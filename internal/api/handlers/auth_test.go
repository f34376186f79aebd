package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hugh/teamboard/internal/api/dto"
	"github.com/hugh/teamboard/internal/api/handlers"
	"github.com/hugh/teamboard/internal/api/middleware"
	"github.com/hugh/teamboard/internal/auth"
	"github.com/hugh/teamboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthTestRouter(t *testing.T) (*chi.Mux, *testutil.TestSetup) {
	tc := testutil.NewTestContext(t)

	authService := auth.NewService(tc.DB, tc.JWTService)
	revoker := auth.NewTokenRevoker(nil)
	handler := handlers.NewAuthHandler(authService, revoker)

	r := chi.NewRouter()
	r.Post("/api/v1/auth/register", handler.Register)
	r.Post("/api/v1/auth/login", handler.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(tc.JWTService, revoker))
		r.Post("/api/v1/auth/logout", handler.Logout)
		r.Get("/api/v1/auth/profile", handler.Profile)
		r.Put("/api/v1/auth/profile", handler.UpdateProfile)
		r.Put("/api/v1/auth/change-password", handler.ChangePassword)
		r.Delete("/api/v1/auth/delete-account", handler.DeleteAccount)
	})

	return r, tc
}

func TestAuthHandler_Register(t *testing.T) {
	router, tc := setupAuthTestRouter(t)
	defer tc.Cleanup()

	t.Run("successful registration", func(t *testing.T) {
		body := map[string]string{
			"email":      "newuser@example.com",
			"password":   "Password1!",
			"first_name": "New",
			"last_name":  "User",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		env := testutil.ParseEnvelope(t, rr)
		assert.True(t, env.Success)

		var resp dto.AuthResponse
		require.NoError(t, json.Unmarshal(env.Data, &resp))
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "newuser@example.com", resp.User.Email)
	})

	t.Run("duplicate email conflicts regardless of case", func(t *testing.T) {
		body := map[string]string{
			"email":      "NEWUSER@example.com",
			"password":   "Password1!",
			"first_name": "New",
			"last_name":  "Again",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		env := testutil.ParseEnvelope(t, rr)
		assert.False(t, env.Success)
	})

	t.Run("weak password fails validation with details", func(t *testing.T) {
		body := map[string]string{
			"email":      "weak@example.com",
			"password":   "short",
			"first_name": "Weak",
			"last_name":  "Password",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		env := testutil.ParseEnvelope(t, rr)
		assert.False(t, env.Success)
		assert.Contains(t, env.Details, "password")
	})
}

func TestAuthHandler_Login(t *testing.T) {
	router, tc := setupAuthTestRouter(t)
	defer tc.Cleanup()

	t.Run("valid credentials", func(t *testing.T) {
		body := map[string]string{
			"email":    tc.User.Email,
			"password": testutil.TestPassword,
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/login", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		env := testutil.ParseEnvelope(t, rr)
		assert.True(t, env.Success)
	})

	t.Run("wrong password", func(t *testing.T) {
		body := map[string]string{
			"email":    tc.User.Email,
			"password": "Wrongpass1!",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/login", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("unknown email gets the same error", func(t *testing.T) {
		body := map[string]string{
			"email":    "ghost@example.com",
			"password": "Wrongpass1!",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/login", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		env := testutil.ParseEnvelope(t, rr)
		assert.Equal(t, "Invalid email or password", env.Message)
	})
}

func TestAuthHandler_Profile(t *testing.T) {
	router, tc := setupAuthTestRouter(t)
	defer tc.Cleanup()

	t.Run("requires authentication", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "GET", "/api/v1/auth/profile", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("returns the principal's profile", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/auth/profile", nil, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		env := testutil.ParseEnvelope(t, rr)
		var user dto.UserResponse
		require.NoError(t, json.Unmarshal(env.Data, &user))
		assert.Equal(t, tc.User.Email, user.Email)
	})

	t.Run("updates bio only", func(t *testing.T) {
		body := map[string]string{"bio": "Building things"}

		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/auth/profile", body, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		env := testutil.ParseEnvelope(t, rr)
		var user dto.UserResponse
		require.NoError(t, json.Unmarshal(env.Data, &user))
		assert.Equal(t, "Building things", user.Bio)
		assert.Equal(t, tc.User.Email, user.Email)
	})
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	router, tc := setupAuthTestRouter(t)
	defer tc.Cleanup()

	t.Run("mismatched confirmation", func(t *testing.T) {
		body := map[string]string{
			"current_password": testutil.TestPassword,
			"new_password":     "Newpass1!",
			"confirm_password": "Different1!",
		}

		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/auth/change-password", body, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		env := testutil.ParseEnvelope(t, rr)
		assert.Contains(t, env.Details, "confirm_password")
	})

	t.Run("wrong current password", func(t *testing.T) {
		body := map[string]string{
			"current_password": "Wrong1!pass",
			"new_password":     "Newpass1!",
			"confirm_password": "Newpass1!",
		}

		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/auth/change-password", body, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("successful change", func(t *testing.T) {
		body := map[string]string{
			"current_password": testutil.TestPassword,
			"new_password":     "Newpass1!",
			"confirm_password": "Newpass1!",
		}

		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/auth/change-password", body, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestAuthHandler_DeleteAccount(t *testing.T) {
	router, tc := setupAuthTestRouter(t)
	defer tc.Cleanup()

	t.Run("wrong password", func(t *testing.T) {
		body := map[string]string{"password": "Wrong1!pass"}

		req := testutil.AuthenticatedRequest(t, "DELETE", "/api/v1/auth/delete-account", body, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("deletes with the right password", func(t *testing.T) {
		body := map[string]string{"password": testutil.TestPassword}

		req := testutil.AuthenticatedRequest(t, "DELETE", "/api/v1/auth/delete-account", body, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		// Profile is gone.
		req = testutil.AuthenticatedRequest(t, "GET", "/api/v1/auth/profile", nil, tc.Token)
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
