package models

import "time"

// Team belongs to an organization directly; the department is optional so a
// team can exist before it is grouped.
type Team struct {
	ID             uint64    `gorm:"primarykey" json:"id"`
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`
	OrganizationID uint64    `gorm:"index;not null" json:"organization_id"`
	DepartmentID   *uint64   `gorm:"index" json:"department_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	Department *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	Users      []User      `gorm:"foreignKey:TeamID" json:"users,omitempty"`
	Objectives []Objective `gorm:"foreignKey:TeamID" json:"objectives,omitempty"`
}
