package dto

import (
	"time"

	"github.com/hugh/teamboard/internal/database/models"
)

type CreateTaskRequest struct {
	TeamID      uint              `json:"team_id"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	DueDate     string            `json:"due_date,omitempty"`
	AssignedTo  *uint             `json:"assigned_to,omitempty"`
	Status      models.TaskStatus `json:"status,omitempty"`
}

func (r CreateTaskRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.TeamID == 0 {
		errors["team_id"] = "Team ID is required"
	}
	if r.Title == "" {
		errors["title"] = "Title is required"
	} else if len(r.Title) < 2 || len(r.Title) > 255 {
		errors["title"] = "Title must be between 2 and 255 characters"
	}
	if len(r.Description) > 2000 {
		errors["description"] = "Description cannot exceed 2000 characters"
	}
	if r.DueDate != "" {
		if _, err := ParseDueDate(r.DueDate); err != nil {
			errors["due_date"] = "Due date must be RFC3339 or YYYY-MM-DD"
		}
	}
	if r.Status != "" && !r.Status.Valid() {
		errors["status"] = "Status must be one of Pending, In Progress, Completed, Cancelled"
	}

	return errors
}

type UpdateTaskRequest struct {
	Title       *string            `json:"title,omitempty"`
	Description *string            `json:"description,omitempty"`
	DueDate     *string            `json:"due_date,omitempty"`
	AssignedTo  *uint              `json:"assigned_to,omitempty"`
	Status      *models.TaskStatus `json:"status,omitempty"`
}

func (r UpdateTaskRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Title != nil && (len(*r.Title) < 2 || len(*r.Title) > 255) {
		errors["title"] = "Title must be between 2 and 255 characters"
	}
	if r.Description != nil && len(*r.Description) > 2000 {
		errors["description"] = "Description cannot exceed 2000 characters"
	}
	if r.DueDate != nil && *r.DueDate != "" {
		if _, err := ParseDueDate(*r.DueDate); err != nil {
			errors["due_date"] = "Due date must be RFC3339 or YYYY-MM-DD"
		}
	}
	if r.Status != nil && !r.Status.Valid() {
		errors["status"] = "Status must be one of Pending, In Progress, Completed, Cancelled"
	}

	return errors
}

type UpdateTaskStatusRequest struct {
	Status models.TaskStatus `json:"status"`
}

func (r UpdateTaskStatusRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Status == "" {
		errors["status"] = "Status is required"
	} else if !r.Status.Valid() {
		errors["status"] = "Status must be one of Pending, In Progress, Completed, Cancelled"
	}

	return errors
}

// ParseDueDate accepts either a full RFC3339 timestamp or a bare date.
func ParseDueDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
