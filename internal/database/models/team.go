package models

type Team struct {
	Base
	Name      string `gorm:"not null" json:"name"`
	CreatedBy uint   `gorm:"index;not null" json:"created_by"` // immutable after creation

	// Relationships
	Creator     *User        `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Memberships []Membership `gorm:"foreignKey:TeamID" json:"-"`
	Tasks       []Task       `gorm:"foreignKey:TeamID" json:"-"`
}

func (Team) TableName() string {
	return "teams"
}
