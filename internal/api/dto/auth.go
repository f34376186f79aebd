package dto

import (
	"github.com/hugh/teamboard/internal/api/validation"
	"github.com/hugh/teamboard/internal/database/models"
)

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio,omitempty"`
}

func (r RegisterRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Please provide a valid email address"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	} else if ok, msg := validation.IsValidPassword(r.Password); !ok {
		errors["password"] = msg
	}
	if r.FirstName == "" {
		errors["first_name"] = "First name is required"
	} else if !validation.IsValidName(r.FirstName) {
		errors["first_name"] = "First name must be between 2 and 50 characters"
	}
	if r.LastName == "" {
		errors["last_name"] = "Last name is required"
	} else if !validation.IsValidName(r.LastName) {
		errors["last_name"] = "Last name must be between 2 and 50 characters"
	}
	if len(r.Bio) > 500 {
		errors["bio"] = "Bio cannot exceed 500 characters"
	}

	return errors
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	Email     *string `json:"email,omitempty"`
}

func (r UpdateProfileRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.FirstName != nil && !validation.IsValidName(*r.FirstName) {
		errors["first_name"] = "First name must be between 2 and 50 characters"
	}
	if r.LastName != nil && !validation.IsValidName(*r.LastName) {
		errors["last_name"] = "Last name must be between 2 and 50 characters"
	}
	if r.Bio != nil && len(*r.Bio) > 500 {
		errors["bio"] = "Bio cannot exceed 500 characters"
	}
	if r.Email != nil && !validation.IsValidEmail(*r.Email) {
		errors["email"] = "Please provide a valid email address"
	}

	return errors
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (r ChangePasswordRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.CurrentPassword == "" {
		errors["current_password"] = "Current password is required"
	}
	if r.NewPassword == "" {
		errors["new_password"] = "New password is required"
	} else if ok, msg := validation.IsValidPassword(r.NewPassword); !ok {
		errors["new_password"] = msg
	}
	if r.ConfirmPassword != r.NewPassword {
		errors["confirm_password"] = "Password confirmation does not match"
	}

	return errors
}

type DeleteAccountRequest struct {
	Password string `json:"password"`
}

func (r DeleteAccountRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}

type UserResponse struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio,omitempty"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
	}
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
