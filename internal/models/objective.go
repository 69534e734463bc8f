package models

import "time"

type Objective struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	StartDate   time.Time `gorm:"not null" json:"start_date"`
	EndDate     time.Time `gorm:"not null" json:"end_date"`
	// Progress caches the mean of the key results; it is rewritten in the same
	// transaction as every key result change.
	Progress  int       `gorm:"not null;default:0" json:"progress"`
	TeamID    uint64    `gorm:"index;not null" json:"team_id"`
	UserID    *uint64   `gorm:"index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Team       Team        `gorm:"foreignKey:TeamID" json:"-"`
	AssignedTo *User       `gorm:"foreignKey:UserID" json:"assigned_to,omitempty"`
	KeyResults []KeyResult `gorm:"foreignKey:ObjectiveID" json:"key_results,omitempty"`
}
