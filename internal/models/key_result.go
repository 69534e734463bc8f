package models

import "time"

type KeyResultStatus string

const (
	KeyResultNotStarted KeyResultStatus = "NOT_STARTED"
	KeyResultInProgress KeyResultStatus = "IN_PROGRESS"
	KeyResultAtRisk     KeyResultStatus = "AT_RISK"
	KeyResultCompleted  KeyResultStatus = "COMPLETED"
)

// Valid reports whether s is a known status.
func (s KeyResultStatus) Valid() bool {
	switch s {
	case KeyResultNotStarted, KeyResultInProgress, KeyResultAtRisk, KeyResultCompleted:
		return true
	}
	return false
}

// KeyResult.Status is set by callers and is never derived from Progress.
type KeyResult struct {
	ID           uint64          `gorm:"primarykey" json:"id"`
	Title        string          `gorm:"type:varchar(255);not null" json:"title"`
	TargetValue  float64         `gorm:"not null" json:"target_value"`
	CurrentValue float64         `gorm:"not null;default:0" json:"current_value"`
	Progress     float64         `gorm:"not null;default:0" json:"progress"`
	Status       KeyResultStatus `gorm:"type:varchar(20);not null;default:'NOT_STARTED'" json:"status"`
	ObjectiveID  uint64          `gorm:"index;not null" json:"objective_id"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
