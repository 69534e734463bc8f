package models

import "time"

type Department struct {
	ID             uint64    `gorm:"primarykey" json:"id"`
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`
	OrganizationID uint64    `gorm:"index;not null" json:"organization_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"-"`
	Teams        []Team       `gorm:"foreignKey:DepartmentID" json:"teams,omitempty"`
}
