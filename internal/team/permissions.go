package team

import (
	"context"
	"errors"

	"github.com/hugh/teamboard/internal/database/models"
	"gorm.io/gorm"
)

// Gate is the single capability check consulted before team and task
// mutations. Both tiers the API needs are expressed through it: "any
// membership" (read access, task creation) via an empty role list, and
// "Admin-only" via HasRole(..., RoleAdmin). Creator-specific rules are a
// stricter tier layered on top through IsCreator.
type Gate struct {
	db *gorm.DB
}

func NewGate(db *gorm.DB) *Gate {
	return &Gate{db: db}
}

// HasRole reports whether the user holds one of the given roles on the team.
// An empty role list accepts any membership. It never surfaces an error:
// a missing membership and a failed lookup both read as "no".
func (g *Gate) HasRole(ctx context.Context, userID, teamID uint, roles ...models.Role) bool {
	var m models.Membership
	err := g.db.WithContext(ctx).
		Where("user_id = ? AND team_id = ?", userID, teamID).
		First(&m).Error
	if err != nil {
		return false
	}

	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if m.Role == r {
			return true
		}
	}
	return false
}

// IsCreator reports whether the user created the team. Unlike HasRole it
// distinguishes "team missing" from "not the creator".
func (g *Gate) IsCreator(ctx context.Context, userID, teamID uint) (bool, error) {
	var t models.Team
	err := g.db.WithContext(ctx).Select("created_by").First(&t, teamID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrTeamNotFound
		}
		return false, err
	}
	return t.CreatedBy == userID, nil
}
