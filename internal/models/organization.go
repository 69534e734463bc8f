package models

import (
	"time"
)

type Organization struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	OwnerID   uint64    `gorm:"uniqueIndex;not null" json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Owner       User         `gorm:"foreignKey:OwnerID" json:"-"`
	Departments []Department `gorm:"foreignKey:OrganizationID" json:"departments,omitempty"`
	Teams       []Team       `gorm:"foreignKey:OrganizationID" json:"teams,omitempty"`
}
