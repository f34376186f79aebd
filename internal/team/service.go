package team

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hugh/teamboard/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrTeamNotFound            = errors.New("team not found")
	ErrUserNotFound            = errors.New("user not found")
	ErrNotMember               = errors.New("you are not a member of this team")
	ErrNotAdmin                = errors.New("insufficient permissions")
	ErrOnlyCreatorCanDelete    = errors.New("only team creator can delete the team")
	ErrCannotRemoveCreator     = errors.New("cannot remove team creator")
	ErrCannotChangeCreatorRole = errors.New("cannot change team creator role")
	ErrCreatorCannotLeave      = errors.New("team creator cannot leave the team")
	ErrAlreadyMember           = errors.New("user is already a member of this team")
	ErrMembershipNotFound      = errors.New("member not found in this team")
)

type Service struct {
	db   *gorm.DB
	gate *Gate
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, gate: NewGate(db)}
}

// Gate exposes the permission check for other domains (tasks).
func (s *Service) Gate() *Gate {
	return s.gate
}

// TaskStats is the per-team task aggregate embedded in team detail.
type TaskStats struct {
	Total      int64 `json:"total"`
	Completed  int64 `json:"completed"`
	InProgress int64 `gorm:"column:in_progress" json:"inProgress"`
	Pending    int64 `json:"pending"`
	Cancelled  int64 `json:"cancelled"`
	Overdue    int64 `json:"overdue"`
}

// MemberInfo is one roster row: membership joined with user identity.
type MemberInfo struct {
	UserID        uint        `json:"user_id"`
	Role          models.Role `json:"role"`
	FirstName     string      `json:"first_name"`
	LastName      string      `json:"last_name"`
	Email         string      `json:"email"`
	AssignedTasks int64       `json:"assigned_tasks"`
}

// TeamDetail is a team with its roster and task aggregate.
type TeamDetail struct {
	ID               uint         `json:"id"`
	Name             string       `json:"name"`
	CreatedBy        uint         `json:"created_by"`
	CreatorFirstName string       `json:"creator_first_name"`
	CreatorLastName  string       `json:"creator_last_name"`
	CreatorEmail     string       `json:"creator_email"`
	CreatedAt        time.Time    `json:"created_at"`
	Members          []MemberInfo `json:"members"`
	MemberCount      int          `json:"member_count"`
	TaskStats        TaskStats    `json:"task_stats"`
}

// TeamSummary is one list row with roster and task counts.
type TeamSummary struct {
	ID               uint   `json:"id"`
	Name             string `json:"name"`
	CreatedBy        uint   `json:"created_by"`
	CreatorFirstName string `json:"creator_first_name"`
	CreatorLastName  string `json:"creator_last_name"`
	MemberCount      int64  `json:"member_count"`
	TaskCount        int64  `json:"task_count"`
}

type ListParams struct {
	Page     int
	Limit    int
	Search   string
	MemberID uint // non-zero restricts to teams the user belongs to
}

// memberOrdering sorts rosters Admin first, Viewer last, then by first name.
const memberOrdering = "CASE memberships.role WHEN 'Admin' THEN 1 WHEN 'Member' THEN 2 ELSE 3 END, users.first_name ASC"

// CreateTeam inserts the team and the creator's Admin membership atomically.
func (s *Service) CreateTeam(ctx context.Context, name string, creatorID uint) (*TeamDetail, error) {
	t := models.Team{Name: name, CreatedBy: creatorID}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&t).Error; err != nil {
			return err
		}
		m := models.Membership{
			UserID: creatorID,
			TeamID: t.ID,
			Role:   models.RoleAdmin,
		}
		return tx.Create(&m).Error
	})
	if err != nil {
		return nil, err
	}

	return s.GetTeamByID(ctx, t.ID)
}

// GetTeamByID returns the team with creator identity, ordered roster and
// task statistics. Overdue counts tasks past due that are still open.
func (s *Service) GetTeamByID(ctx context.Context, teamID uint) (*TeamDetail, error) {
	var t models.Team
	err := s.db.WithContext(ctx).Preload("Creator").First(&t, teamID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	var members []MemberInfo
	if err := s.db.WithContext(ctx).
		Table("memberships").
		Select("memberships.user_id, memberships.role, users.first_name, users.last_name, users.email").
		Joins("JOIN users ON users.id = memberships.user_id").
		Where("memberships.team_id = ?", teamID).
		Order(memberOrdering).
		Scan(&members).Error; err != nil {
		return nil, err
	}

	var stats TaskStats
	if err := s.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("team_id = ?", teamID).
		Select(`COUNT(*) AS total,
			COUNT(CASE WHEN status = 'Completed' THEN 1 END) AS completed,
			COUNT(CASE WHEN status = 'In Progress' THEN 1 END) AS in_progress,
			COUNT(CASE WHEN status = 'Pending' THEN 1 END) AS pending,
			COUNT(CASE WHEN status = 'Cancelled' THEN 1 END) AS cancelled,
			COUNT(CASE WHEN due_date < ? AND status NOT IN ('Completed','Cancelled') THEN 1 END) AS overdue`,
			time.Now()).
		Scan(&stats).Error; err != nil {
		return nil, err
	}

	detail := &TeamDetail{
		ID:          t.ID,
		Name:        t.Name,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
		Members:     members,
		MemberCount: len(members),
		TaskStats:   stats,
	}
	if t.Creator != nil {
		detail.CreatorFirstName = t.Creator.FirstName
		detail.CreatorLastName = t.Creator.LastName
		detail.CreatorEmail = t.Creator.Email
	}
	return detail, nil
}

// UpdateTeam renames a team. Existence is checked before permission so an
// absent team reads as 404, not 403. A nil name is a no-op rename.
func (s *Service) UpdateTeam(ctx context.Context, teamID uint, name *string, callerID uint) (*TeamDetail, error) {
	var t models.Team
	if err := s.db.WithContext(ctx).First(&t, teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	if !s.gate.HasRole(ctx, callerID, teamID, models.RoleAdmin) {
		return nil, ErrNotAdmin
	}

	if name != nil {
		if err := s.db.WithContext(ctx).
			Model(&t).
			Update("name", *name).Error; err != nil {
			return nil, err
		}
	}

	return s.GetTeamByID(ctx, teamID)
}

// DeleteTeam removes the team and everything it owns. Creator only; the
// cascade (tasks, memberships, team) commits or rolls back as one unit.
func (s *Service) DeleteTeam(ctx context.Context, teamID, callerID uint) error {
	isCreator, err := s.gate.IsCreator(ctx, callerID, teamID)
	if err != nil {
		return err
	}
	if !isCreator {
		return ErrOnlyCreatorCanDelete
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", teamID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", teamID).Delete(&models.Membership{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Team{}, teamID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTeamNotFound
		}
		return nil
	})
}

// List returns a page of team summaries and the total match count.
// Search matches team name or creator full name, case-insensitive.
func (s *Service) List(ctx context.Context, p ListParams) ([]TeamSummary, int64, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}
	if p.Limit > 100 {
		p.Limit = 100
	}

	base := func() *gorm.DB {
		q := s.db.WithContext(ctx).
			Table("teams").
			Joins("JOIN users ON users.id = teams.created_by")
		if p.Search != "" {
			like := "%" + strings.ToLower(p.Search) + "%"
			q = q.Where(
				"LOWER(teams.name) LIKE ? OR LOWER(users.first_name || ' ' || users.last_name) LIKE ?",
				like, like,
			)
		}
		if p.MemberID != 0 {
			q = q.Where(
				"EXISTS (SELECT 1 FROM memberships WHERE memberships.team_id = teams.id AND memberships.user_id = ?)",
				p.MemberID,
			)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var teams []TeamSummary
	if err := base().
		Select(`teams.id, teams.name, teams.created_by,
			users.first_name AS creator_first_name,
			users.last_name AS creator_last_name,
			(SELECT COUNT(*) FROM memberships WHERE memberships.team_id = teams.id) AS member_count,
			(SELECT COUNT(*) FROM tasks WHERE tasks.team_id = teams.id) AS task_count`).
		Order("teams.id DESC").
		Limit(p.Limit).
		Offset((p.Page - 1) * p.Limit).
		Scan(&teams).Error; err != nil {
		return nil, 0, err
	}

	return teams, total, nil
}
