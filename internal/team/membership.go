package team

import (
	"context"
	"errors"

	"github.com/hugh/teamboard/internal/database/models"
	"gorm.io/gorm"
)

// UserTeam is one row of a user's team list: the team plus their role in it.
type UserTeam struct {
	TeamID    uint        `json:"team_id"`
	Name      string      `json:"name"`
	CreatedBy uint        `json:"created_by"`
	Role      models.Role `json:"role"`
}

// AddMember resolves the email to a user (case-insensitive) and adds them
// with the given role. Caller must be an Admin of the team.
func (s *Service) AddMember(ctx context.Context, teamID uint, email string, role models.Role, callerID uint) (*MemberInfo, error) {
	if !s.gate.HasRole(ctx, callerID, teamID, models.RoleAdmin) {
		return nil, ErrNotAdmin
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?)", email).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var existing models.Membership
	err = s.db.WithContext(ctx).
		Where("user_id = ? AND team_id = ?", user.ID, teamID).
		First(&existing).Error
	if err == nil {
		return nil, ErrAlreadyMember
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if role == "" {
		role = models.RoleMember
	}
	m := models.Membership{UserID: user.ID, TeamID: teamID, Role: role}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, err
	}

	return &MemberInfo{
		UserID:    user.ID,
		Role:      role,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
	}, nil
}

// RemoveMember deletes a membership. Admin only; the creator's row is
// untouchable regardless of who asks.
func (s *Service) RemoveMember(ctx context.Context, teamID, memberID, callerID uint) error {
	if !s.gate.HasRole(ctx, callerID, teamID, models.RoleAdmin) {
		return ErrNotAdmin
	}

	isCreator, err := s.gate.IsCreator(ctx, memberID, teamID)
	if err != nil {
		return err
	}
	if isCreator {
		return ErrCannotRemoveCreator
	}

	res := s.db.WithContext(ctx).
		Where("user_id = ? AND team_id = ?", memberID, teamID).
		Delete(&models.Membership{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMembershipNotFound
	}
	return nil
}

// UpdateMemberRole changes a member's role. Admin only; the creator's role
// is permanent.
func (s *Service) UpdateMemberRole(ctx context.Context, teamID, memberID uint, role models.Role, callerID uint) error {
	if !s.gate.HasRole(ctx, callerID, teamID, models.RoleAdmin) {
		return ErrNotAdmin
	}

	isCreator, err := s.gate.IsCreator(ctx, memberID, teamID)
	if err != nil {
		return err
	}
	if isCreator {
		return ErrCannotChangeCreatorRole
	}

	res := s.db.WithContext(ctx).
		Model(&models.Membership{}).
		Where("user_id = ? AND team_id = ?", memberID, teamID).
		Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMembershipNotFound
	}
	return nil
}

// LeaveTeam removes the caller's own membership. The creator cannot leave;
// their exit path is deleting the team.
func (s *Service) LeaveTeam(ctx context.Context, teamID, callerID uint) error {
	isCreator, err := s.gate.IsCreator(ctx, callerID, teamID)
	if err != nil {
		return err
	}
	if isCreator {
		return ErrCreatorCannotLeave
	}

	res := s.db.WithContext(ctx).
		Where("user_id = ? AND team_id = ?", callerID, teamID).
		Delete(&models.Membership{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMembershipNotFound
	}
	return nil
}

// ListMembers returns the roster with per-member assigned task counts.
// Any member of the team may view it.
func (s *Service) ListMembers(ctx context.Context, teamID, callerID uint) ([]MemberInfo, error) {
	if !s.gate.HasRole(ctx, callerID, teamID) {
		return nil, ErrNotMember
	}

	var members []MemberInfo
	err := s.db.WithContext(ctx).
		Table("memberships").
		Select(`memberships.user_id, memberships.role,
			users.first_name, users.last_name, users.email,
			(SELECT COUNT(*) FROM tasks
				WHERE tasks.assigned_to = memberships.user_id
				AND tasks.team_id = memberships.team_id) AS assigned_tasks`).
		Joins("JOIN users ON users.id = memberships.user_id").
		Where("memberships.team_id = ?", teamID).
		Order(memberOrdering).
		Scan(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// ListUserTeams returns every team the user belongs to, newest team first.
func (s *Service) ListUserTeams(ctx context.Context, userID uint) ([]UserTeam, error) {
	var teams []UserTeam
	err := s.db.WithContext(ctx).
		Table("memberships").
		Select("teams.id AS team_id, teams.name, teams.created_by, memberships.role").
		Joins("JOIN teams ON teams.id = memberships.team_id").
		Where("memberships.user_id = ?", userID).
		Order("teams.id DESC").
		Scan(&teams).Error
	if err != nil {
		return nil, err
	}
	return teams, nil
}
