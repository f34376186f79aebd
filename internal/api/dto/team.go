package dto

import (
	"github.com/hugh/teamboard/internal/api/validation"
	"github.com/hugh/teamboard/internal/database/models"
)

type CreateTeamRequest struct {
	Name string `json:"name"`
}

func (r CreateTeamRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Name == "" {
		errors["name"] = "Team name is required"
	} else if len(r.Name) < 2 || len(r.Name) > 100 {
		errors["name"] = "Team name must be between 2 and 100 characters"
	}

	return errors
}

type UpdateTeamRequest struct {
	Name *string `json:"name,omitempty"`
}

func (r UpdateTeamRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Name != nil && (len(*r.Name) < 2 || len(*r.Name) > 100) {
		errors["name"] = "Team name must be between 2 and 100 characters"
	}

	return errors
}

type AddMemberRequest struct {
	Email string      `json:"email"`
	Role  models.Role `json:"role,omitempty"`
}

func (r AddMemberRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Please provide a valid email address"
	}
	if r.Role != "" && !r.Role.Valid() {
		errors["role"] = "Role must be one of Admin, Member, Viewer"
	}

	return errors
}

type UpdateRoleRequest struct {
	Role models.Role `json:"role"`
}

func (r UpdateRoleRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Role == "" {
		errors["role"] = "Role is required"
	} else if !r.Role.Valid() {
		errors["role"] = "Role must be one of Admin, Member, Viewer"
	}

	return errors
}
