package dto

import (
	"time"

	"github.com/myokr/okr-api/internal/models"
	"github.com/myokr/okr-api/internal/okr"
	"github.com/myokr/okr-api/internal/utils"
)

// KeyResultDTO represents a key result in API responses
type KeyResultDTO struct {
	ID           uint64                 `json:"id"`
	ObjectiveID  uint64                 `json:"objectiveId"`
	Title        string                 `json:"title"`
	TargetValue  float64                `json:"targetValue"`
	CurrentValue float64                `json:"currentValue"`
	Progress     float64                `json:"progress"`
	Status       models.KeyResultStatus `json:"status"`
	UpdatedAt    time.Time              `json:"updatedAt"`
}

// ObjectiveDTO represents an objective with its key results
type ObjectiveDTO struct {
	ID          uint64         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	StartDate   time.Time      `json:"startDate"`
	EndDate     time.Time      `json:"endDate"`
	Progress    int            `json:"progress"`
	TeamID      uint64         `json:"teamId"`
	UserID      *uint64        `json:"userId"`
	AssignedTo  *UserDTO       `json:"assignedTo,omitempty"`
	KeyResults  []KeyResultDTO `json:"keyResults"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// ObjectiveListResponse represents a paginated list of objectives
type ObjectiveListResponse struct {
	Objectives []ObjectiveDTO            `json:"objectives"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToKeyResultDTO converts a KeyResult model. Progress is derived from the
// values rather than read from the stored column.
func ToKeyResultDTO(kr models.KeyResult) KeyResultDTO {
	return KeyResultDTO{
		ID:           kr.ID,
		ObjectiveID:  kr.ObjectiveID,
		Title:        kr.Title,
		TargetValue:  kr.TargetValue,
		CurrentValue: kr.CurrentValue,
		Progress:     okr.KeyResultProgress(kr.CurrentValue, kr.TargetValue),
		Status:       kr.Status,
		UpdatedAt:    kr.UpdatedAt,
	}
}

// ToObjectiveDTO converts an Objective model. When key results are loaded the
// objective progress is recomputed from them, so a stale cache never shows.
func ToObjectiveDTO(o models.Objective) ObjectiveDTO {
	out := ObjectiveDTO{
		ID:          o.ID,
		Title:       o.Title,
		Description: o.Description,
		StartDate:   o.StartDate,
		EndDate:     o.EndDate,
		Progress:    o.Progress,
		TeamID:      o.TeamID,
		UserID:      o.UserID,
		KeyResults:  make([]KeyResultDTO, len(o.KeyResults)),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
	if o.AssignedTo != nil {
		u := ToUserDTO(*o.AssignedTo)
		out.AssignedTo = &u
	}

	if len(o.KeyResults) > 0 {
		progresses := make([]float64, len(o.KeyResults))
		for i, kr := range o.KeyResults {
			out.KeyResults[i] = ToKeyResultDTO(kr)
			progresses[i] = out.KeyResults[i].Progress
		}
		out.Progress = okr.ObjectiveProgress(progresses)
	}
	return out
}

// ToObjectiveDTOs converts a slice of objectives.
func ToObjectiveDTOs(objectives []models.Objective) []ObjectiveDTO {
	out := make([]ObjectiveDTO, len(objectives))
	for i, o := range objectives {
		out[i] = ToObjectiveDTO(o)
	}
	return out
}
