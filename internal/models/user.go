package models

import (
	"time"
)

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleMember  Role = "MEMBER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleMember:
		return true
	}
	return false
}

type User struct {
	ID         uint64    `gorm:"primarykey" json:"id"`
	Email      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name       string    `gorm:"type:varchar(255)" json:"name"`
	Role       Role      `gorm:"type:varchar(20);not null;default:'MEMBER'" json:"role"`
	IsVerified bool      `gorm:"not null;default:false" json:"is_verified"`
	TeamID     *uint64   `gorm:"index" json:"team_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relations
	Team       *Team       `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	Objectives []Objective `gorm:"foreignKey:UserID" json:"-"`
}
