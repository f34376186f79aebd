package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/hugh/teamboard/internal/api/dto"
	"github.com/hugh/teamboard/internal/api/middleware"
	"github.com/hugh/teamboard/internal/auth"
)

type AuthHandler struct {
	authService *auth.Service
	revoker     *auth.TokenRevoker
}

func NewAuthHandler(authService *auth.Service, revoker *auth.TokenRevoker) *AuthHandler {
	return &AuthHandler{authService: authService, revoker: revoker}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if details := req.Validate(); len(details) > 0 {
		respondValidation(w, details)
		return
	}

	resp, err := h.authService.Register(r.Context(), auth.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			respondError(w, http.StatusConflict, "User with this email already exists")
		default:
			respondError(w, http.StatusInternalServerError, "Registration failed")
		}
		return
	}

	setTokenCookie(w, resp.Token)
	respondData(w, http.StatusCreated, "User registered successfully", dto.AuthResponse{
		Token: resp.Token,
		User:  dto.NewUserResponse(resp.User),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if details := req.Validate(); len(details) > 0 {
		respondValidation(w, details)
		return
	}

	resp, err := h.authService.Login(r.Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			respondError(w, http.StatusUnauthorized, "Invalid email or password")
		default:
			respondError(w, http.StatusInternalServerError, "Login failed")
		}
		return
	}

	setTokenCookie(w, resp.Token)
	respondData(w, http.StatusOK, "Login successful", dto.AuthResponse{
		Token: resp.Token,
		User:  dto.NewUserResponse(resp.User),
	})
}

// Logout revokes the presented token so it cannot be replayed before expiry.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if claims := middleware.GetClaims(r.Context()); claims != nil {
		if ttl := time.Until(claims.ExpiresAt.Time); ttl > 0 {
			_ = h.revoker.Revoke(r.Context(), claims.ID, ttl)
		}
	}

	clearTokenCookie(w)
	respondData(w, http.StatusOK, "Logged out successfully", nil)
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			respondError(w, http.StatusNotFound, "User not found")
		default:
			respondError(w, http.StatusInternalServerError, "Failed to load profile")
		}
		return
	}

	respondData(w, http.StatusOK, "Profile retrieved", dto.NewUserResponse(user))
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req dto.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if details := req.Validate(); len(details) > 0 {
		respondValidation(w, details)
		return
	}

	user, err := h.authService.UpdateProfile(r.Context(), userID, auth.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Email:     req.Email,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			respondError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, auth.ErrEmailTaken):
			respondError(w, http.StatusConflict, "User with this email already exists")
		default:
			respondError(w, http.StatusInternalServerError, "Failed to update profile")
		}
		return
	}

	respondData(w, http.StatusOK, "Profile updated successfully", dto.NewUserResponse(user))
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req dto.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if details := req.Validate(); len(details) > 0 {
		respondValidation(w, details)
		return
	}

	err := h.authService.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			respondError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, auth.ErrWrongPassword):
			respondError(w, http.StatusUnauthorized, "Current password is incorrect")
		default:
			respondError(w, http.StatusInternalServerError, "Failed to change password")
		}
		return
	}

	respondData(w, http.StatusOK, "Password changed successfully", nil)
}

// DeleteAccount requires re-authentication with the current password, then
// removes the user and everything they own. The presented token is revoked
// afterwards so it dies with the account.
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req dto.DeleteAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if details := req.Validate(); len(details) > 0 {
		respondValidation(w, details)
		return
	}

	err := h.authService.DeleteAccount(r.Context(), userID, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			respondError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, auth.ErrInvalidCredentials):
			respondError(w, http.StatusUnauthorized, "Password is incorrect")
		default:
			respondError(w, http.StatusInternalServerError, "Failed to delete account")
		}
		return
	}

	if claims := middleware.GetClaims(r.Context()); claims != nil {
		if ttl := time.Until(claims.ExpiresAt.Time); ttl > 0 {
			_ = h.revoker.Revoke(r.Context(), claims.ID, ttl)
		}
	}

	clearTokenCookie(w)
	respondData(w, http.StatusOK, "Account deleted successfully", nil)
}

func setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production with HTTPS
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400, // 24 hours
	})
}

func clearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
