package models

import "time"

type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleMember Role = "Member"
	RoleViewer Role = "Viewer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMember, RoleViewer:
		return true
	}
	return false
}

// Rank orders roles by privilege for display: Admin first, Viewer last.
func (r Role) Rank() int {
	switch r {
	case RoleAdmin:
		return 1
	case RoleMember:
		return 2
	case RoleViewer:
		return 3
	}
	return 4
}

// Membership binds a user to a team with a role. One row per (user, team);
// the team creator's row is never removed or demoted while the team exists.
type Membership struct {
	UserID    uint      `gorm:"primaryKey" json:"user_id"`
	TeamID    uint      `gorm:"primaryKey" json:"team_id"`
	Role      Role      `gorm:"not null;default:'Member'" json:"role"`
	CreatedAt time.Time `json:"joined_at"`

	// Relationships
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Team *Team `gorm:"foreignKey:TeamID" json:"-"`
}

func (Membership) TableName() string {
	return "memberships"
}
