package models

import "time"

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "Pending"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusCompleted  TaskStatus = "Completed"
	TaskStatusCancelled  TaskStatus = "Cancelled"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

// Terminal statuses are excluded from overdue accounting.
func (s TaskStatus) Terminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusCancelled:
		return true
	case TaskStatusPending, TaskStatusInProgress:
		return false
	}
	return false
}

type Task struct {
	Base
	TeamID      uint       `gorm:"index;not null" json:"team_id"` // owning team, immutable
	AssignedTo  *uint      `gorm:"index" json:"assigned_to,omitempty"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Status      TaskStatus `gorm:"not null;default:'Pending'" json:"status"`

	// Relationships
	Team     *Team `gorm:"foreignKey:TeamID" json:"-"`
	Assignee *User `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
}

func (Task) TableName() string {
	return "tasks"
}

// Overdue reports whether the task is past due and still open.
func (t *Task) Overdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && !t.Status.Terminal()
}
