package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MemberRole string

const (
	MemberRoleOwner  MemberRole = "owner"
	MemberRoleAdmin  MemberRole = "admin"
	MemberRoleMember MemberRole = "member"
)

type Company struct {
	ID        string         `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	Address     string `json:"address"`
	CreatedBy   string `gorm:"index;type:text;not null" json:"createdBy"`
	IsActive    bool   `gorm:"default:true" json:"isActive"`

	// Relations
	Members []CompanyMember `gorm:"foreignKey:CompanyID" json:"members,omitempty"`
}

func (c *Company) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// CompanyMember links a user to a company. Rows are deactivated rather
// than deleted so rejoining reuses the same row.
type CompanyMember struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	CompanyID string     `gorm:"index;type:text;not null;uniqueIndex:idx_company_user" json:"companyId"`
	UserID    string     `gorm:"index;type:text;not null;uniqueIndex:idx_company_user" json:"userId"`
	Role      MemberRole `gorm:"type:text;default:'member'" json:"role"`
	IsActive  bool       `gorm:"default:true" json:"isActive"`

	// Relations
	Company Company `gorm:"foreignKey:CompanyID" json:"-"`
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (m *CompanyMember) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}
