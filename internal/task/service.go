package task

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hugh/teamboard/internal/database/models"
	"github.com/hugh/teamboard/internal/team"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrNotMember       = errors.New("you are not a member of this team")
	ErrStatusForbidden = errors.New("only assigned user or team admin can update status")
	ErrNoFields        = errors.New("no valid fields to update")
)

type Service struct {
	db   *gorm.DB
	gate *team.Gate
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, gate: team.NewGate(db)}
}

type CreateInput struct {
	TeamID      uint
	Title       string
	Description string
	DueDate     *time.Time
	AssignedTo  *uint
	Status      models.TaskStatus
}

// UpdateInput carries partial updates; nil fields keep their current value.
type UpdateInput struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Status      *models.TaskStatus
	AssignedTo  *uint
}

type ListFilter struct {
	TeamID     uint
	AssignedTo uint
	Status     models.TaskStatus
	Search     string
	Page       int
	Limit      int
}

// Create inserts a task. Any membership suffices, Viewer included. The
// assignee is not validated against the roster: tasks may be pre-assigned
// to someone about to be invited.
func (s *Service) Create(ctx context.Context, input CreateInput, callerID uint) (*models.Task, error) {
	if !s.gate.HasRole(ctx, callerID, input.TeamID) {
		return nil, ErrNotMember
	}

	status := input.Status
	if status == "" {
		status = models.TaskStatusPending
	}

	t := models.Task{
		TeamID:      input.TeamID,
		Title:       input.Title,
		Description: input.Description,
		DueDate:     input.DueDate,
		AssignedTo:  input.AssignedTo,
		Status:      status,
	}
	if err := s.db.WithContext(ctx).Create(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns tasks the caller can see: only teams they belong to, no
// matter what the filters say. Ordered by due date ascending with undated
// tasks last, newest id first as tiebreak.
func (s *Service) List(ctx context.Context, f ListFilter, callerID uint) ([]models.Task, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}
	if f.Limit > 100 {
		f.Limit = 100
	}

	q := s.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("team_id IN (SELECT team_id FROM memberships WHERE user_id = ?)", callerID)

	if f.TeamID != 0 {
		q = q.Where("team_id = ?", f.TeamID)
	}
	if f.AssignedTo != 0 {
		q = q.Where("assigned_to = ?", f.AssignedTo)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var tasks []models.Task
	err := q.Preload("Assignee").
		Order("(due_date IS NULL), due_date ASC, id DESC").
		Limit(f.Limit).
		Offset((f.Page - 1) * f.Limit).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetByID fetches a task. Existence is checked before membership so an
// absent task reads as 404, not 403.
func (s *Service) GetByID(ctx context.Context, id, callerID uint) (*models.Task, error) {
	var t models.Task
	err := s.db.WithContext(ctx).Preload("Assignee").First(&t, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	if !s.gate.HasRole(ctx, callerID, t.TeamID) {
		return nil, ErrNotMember
	}
	return &t, nil
}

// Update applies partial field updates. Any member may edit, but changing
// status additionally requires being the current assignee or a team Admin.
// An unassigned task's status can only be moved by an Admin.
func (s *Service) Update(ctx context.Context, id uint, input UpdateInput, callerID uint) (*models.Task, error) {
	t, err := s.GetByID(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	if input.Status != nil && *input.Status != t.Status {
		isAssignee := t.AssignedTo != nil && *t.AssignedTo == callerID
		if !isAssignee && !s.gate.HasRole(ctx, callerID, t.TeamID, models.RoleAdmin) {
			return nil, ErrStatusForbidden
		}
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.DueDate != nil {
		updates["due_date"] = *input.DueDate
	}
	if input.Status != nil {
		updates["status"] = *input.Status
	}
	if input.AssignedTo != nil {
		updates["assigned_to"] = *input.AssignedTo
	}
	if len(updates) == 0 {
		return nil, ErrNoFields
	}

	if err := s.db.WithContext(ctx).Model(t).Updates(updates).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateStatus is Update restricted to the status field.
func (s *Service) UpdateStatus(ctx context.Context, id uint, status models.TaskStatus, callerID uint) (*models.Task, error) {
	return s.Update(ctx, id, UpdateInput{Status: &status}, callerID)
}

// Delete removes a task. Any member of the owning team may delete it.
func (s *Service) Delete(ctx context.Context, id, callerID uint) error {
	t, err := s.GetByID(ctx, id, callerID)
	if err != nil {
		return err
	}

	res := s.db.WithContext(ctx).Delete(&models.Task{}, t.ID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
