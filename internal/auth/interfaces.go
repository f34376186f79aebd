package auth

import (
	"context"

	"github.com/hugh/teamboard/internal/database/models"
)

// Authenticator defines the interface for identity operations.
type Authenticator interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResponse, error)
	Login(ctx context.Context, input LoginInput) (*AuthResponse, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	UpdateProfile(ctx context.Context, id uint, input UpdateProfileInput) (*models.User, error)
	ChangePassword(ctx context.Context, id uint, currentPassword, newPassword string) error
	DeleteAccount(ctx context.Context, id uint, password string) error
}

// TokenService defines the interface for JWT token operations.
type TokenService interface {
	GenerateToken(userID uint, email string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Compile-time interface satisfaction checks
var (
	_ Authenticator = (*Service)(nil)
	_ TokenService  = (*JWTService)(nil)
)
