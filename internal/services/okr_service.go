package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/myokr/okr-api/internal/models"
	"github.com/myokr/okr-api/internal/okr"
	"github.com/myokr/okr-api/internal/repository"
	"github.com/myokr/okr-api/internal/utils"
	"gorm.io/gorm"
)

// OKRService manages objectives and their key results. Every change to a
// key result rewrites the objective's cached progress in the same transaction.
type OKRService struct {
	store *repository.Store
}

// NewOKRService creates a new OKRService.
func NewOKRService(store *repository.Store) *OKRService {
	return &OKRService{store: store}
}

// KeyResultInput describes a new key result.
type KeyResultInput struct {
	Title        string
	TargetValue  float64
	CurrentValue float64
	Status       models.KeyResultStatus
}

// CreateObjectiveInput describes a new objective.
type CreateObjectiveInput struct {
	Title       string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	TeamID      uint64
	UserID      *uint64
	KeyResults  []KeyResultInput
}

// UpdateKeyResultInput is a partial key result update.
type UpdateKeyResultInput struct {
	Title        *string
	TargetValue  *float64
	CurrentValue *float64
	Status       *models.KeyResultStatus
}

// KeyResultUpsert updates the key result with ID, or creates one when ID is nil.
type KeyResultUpsert struct {
	ID *uint64
	UpdateKeyResultInput
}

// UpdateObjectiveInput is a partial objective update.
type UpdateObjectiveInput struct {
	Title       *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	KeyResults  []KeyResultUpsert
}

// CreateObjective creates an objective with at least one key result.
func (s *OKRService) CreateObjective(ctx context.Context, actor Actor, input CreateObjectiveInput) (*models.Objective, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, validationError("Title is required")
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return nil, validationError("Start and end dates are required")
	}
	if input.EndDate.Before(input.StartDate) {
		return nil, validationError("End date must not be before start date")
	}
	if len(input.KeyResults) == 0 {
		return nil, validationError("At least one key result is required")
	}

	keyResults := make([]models.KeyResult, len(input.KeyResults))
	for i, in := range input.KeyResults {
		kr, err := newKeyResult(in)
		if err != nil {
			return nil, err
		}
		keyResults[i] = kr
	}

	objective := &models.Objective{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		TeamID:      input.TeamID,
		UserID:      input.UserID,
		KeyResults:  keyResults,
		Progress:    objectiveProgress(keyResults),
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := authorizeTeam(ctx, tx, actor, input.TeamID); err != nil {
			return err
		}
		if input.UserID != nil {
			if err := checkAssignee(ctx, tx, *input.UserID, input.TeamID); err != nil {
				return err
			}
		}
		if err := tx.OKRs.CreateObjective(ctx, objective); err != nil {
			return internalError("failed to create objective", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.store.OKRs.FindObjective(ctx, objective.ID)
}

// ListTeamObjectives lists a team's objectives.
func (s *OKRService) ListTeamObjectives(ctx context.Context, actor Actor, teamID uint64, page utils.PaginationParams) ([]models.Objective, int64, error) {
	if _, err := authorizeTeam(ctx, s.store, actor, teamID); err != nil {
		return nil, 0, err
	}

	objectives, total, err := s.store.OKRs.ListByTeam(ctx, teamID, page)
	if err != nil {
		return nil, 0, internalError("failed to list objectives", err)
	}
	return objectives, total, nil
}

// GetObjective returns one objective with its key results.
func (s *OKRService) GetObjective(ctx context.Context, actor Actor, id uint64) (*models.Objective, error) {
	return loadObjective(ctx, s.store, actor, id)
}

// UpdateObjective applies a partial update and upserts key results.
func (s *OKRService) UpdateObjective(ctx context.Context, actor Actor, id uint64, input UpdateObjectiveInput) (*models.Objective, error) {
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		objective, err := loadObjective(ctx, tx, actor, id)
		if err != nil {
			return err
		}

		if input.Title != nil {
			title := strings.TrimSpace(*input.Title)
			if title == "" {
				return validationError("Title cannot be empty")
			}
			objective.Title = title
		}
		if input.Description != nil {
			objective.Description = strings.TrimSpace(*input.Description)
		}
		if input.StartDate != nil {
			objective.StartDate = *input.StartDate
		}
		if input.EndDate != nil {
			objective.EndDate = *input.EndDate
		}
		if objective.EndDate.Before(objective.StartDate) {
			return validationError("End date must not be before start date")
		}

		if err := tx.OKRs.UpdateObjective(ctx, objective); err != nil {
			return internalError("failed to update objective", err)
		}

		for _, upsert := range input.KeyResults {
			if upsert.ID == nil {
				kr, err := newKeyResult(upsert.asCreate())
				if err != nil {
					return err
				}
				kr.ObjectiveID = objective.ID
				if err := tx.OKRs.CreateKeyResult(ctx, &kr); err != nil {
					return internalError("failed to create key result", err)
				}
				continue
			}

			kr, err := tx.OKRs.FindKeyResult(ctx, *upsert.ID)
			if err != nil || kr.ObjectiveID != objective.ID {
				if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrKeyResultNotFound
				}
				return internalError("failed to find key result", err)
			}
			if err := applyKeyResultUpdate(kr, upsert.UpdateKeyResultInput); err != nil {
				return err
			}
			if err := tx.OKRs.UpdateKeyResult(ctx, kr); err != nil {
				return internalError("failed to update key result", err)
			}
		}

		return recomputeProgress(ctx, tx, objective.ID)
	})
	if err != nil {
		return nil, err
	}

	return s.store.OKRs.FindObjective(ctx, id)
}

// DeleteObjective deletes an objective and its key results.
func (s *OKRService) DeleteObjective(ctx context.Context, actor Actor, id uint64) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := loadObjective(ctx, tx, actor, id); err != nil {
			return err
		}
		if err := tx.OKRs.DeleteObjective(ctx, id); err != nil {
			return internalError("failed to delete objective", err)
		}
		return nil
	})
}

// AssignObjective assigns an objective to a member of its team.
func (s *OKRService) AssignObjective(ctx context.Context, actor Actor, id, userID uint64) (*models.Objective, error) {
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		objective, err := loadObjective(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		if err := checkAssignee(ctx, tx, userID, objective.TeamID); err != nil {
			return err
		}
		objective.UserID = &userID
		if err := tx.OKRs.UpdateObjective(ctx, objective); err != nil {
			return internalError("failed to assign objective", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.store.OKRs.FindObjective(ctx, id)
}

// AddKeyResult adds a key result to an objective.
func (s *OKRService) AddKeyResult(ctx context.Context, actor Actor, objectiveID uint64, input KeyResultInput) (*models.KeyResult, error) {
	kr, err := newKeyResult(input)
	if err != nil {
		return nil, err
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := loadObjective(ctx, tx, actor, objectiveID); err != nil {
			return err
		}
		kr.ObjectiveID = objectiveID
		if err := tx.OKRs.CreateKeyResult(ctx, &kr); err != nil {
			return internalError("failed to create key result", err)
		}
		return recomputeProgress(ctx, tx, objectiveID)
	})
	if err != nil {
		return nil, err
	}
	return &kr, nil
}

// UpdateKeyResult applies a partial update and recomputes progress.
func (s *OKRService) UpdateKeyResult(ctx context.Context, actor Actor, id uint64, input UpdateKeyResultInput) (*models.KeyResult, error) {
	var updated *models.KeyResult

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		kr, err := s.loadKeyResult(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		if err := applyKeyResultUpdate(kr, input); err != nil {
			return err
		}
		if err := tx.OKRs.UpdateKeyResult(ctx, kr); err != nil {
			return internalError("failed to update key result", err)
		}
		updated = kr
		return recomputeProgress(ctx, tx, kr.ObjectiveID)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteKeyResult removes a key result and recomputes progress.
func (s *OKRService) DeleteKeyResult(ctx context.Context, actor Actor, id uint64) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		kr, err := s.loadKeyResult(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		if err := tx.OKRs.DeleteKeyResult(ctx, id); err != nil {
			return internalError("failed to delete key result", err)
		}
		return recomputeProgress(ctx, tx, kr.ObjectiveID)
	})
}

func (s *OKRService) loadKeyResult(ctx context.Context, store *repository.Store, actor Actor, id uint64) (*models.KeyResult, error) {
	kr, err := store.OKRs.FindKeyResult(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKeyResultNotFound
		}
		return nil, internalError("failed to find key result", err)
	}
	if _, err := loadObjective(ctx, store, actor, kr.ObjectiveID); err != nil {
		return nil, err
	}
	return kr, nil
}

func (u KeyResultUpsert) asCreate() KeyResultInput {
	in := KeyResultInput{}
	if u.Title != nil {
		in.Title = *u.Title
	}
	if u.TargetValue != nil {
		in.TargetValue = *u.TargetValue
	}
	if u.CurrentValue != nil {
		in.CurrentValue = *u.CurrentValue
	}
	if u.Status != nil {
		in.Status = *u.Status
	}
	return in
}

func newKeyResult(in KeyResultInput) (models.KeyResult, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.KeyResult{}, validationError("Key result title is required")
	}
	if in.TargetValue <= 0 {
		return models.KeyResult{}, validationError("Target value must be positive")
	}
	if in.CurrentValue < 0 {
		return models.KeyResult{}, validationError("Current value cannot be negative")
	}
	status := in.Status
	if status == "" {
		status = models.KeyResultNotStarted
	}
	if !status.Valid() {
		return models.KeyResult{}, validationError("Invalid key result status %q", status)
	}

	return models.KeyResult{
		Title:        title,
		TargetValue:  in.TargetValue,
		CurrentValue: in.CurrentValue,
		Progress:     okr.KeyResultProgress(in.CurrentValue, in.TargetValue),
		Status:       status,
	}, nil
}

func applyKeyResultUpdate(kr *models.KeyResult, in UpdateKeyResultInput) error {
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return validationError("Key result title cannot be empty")
		}
		kr.Title = title
	}
	if in.TargetValue != nil {
		if *in.TargetValue <= 0 {
			return validationError("Target value must be positive")
		}
		kr.TargetValue = *in.TargetValue
	}
	if in.CurrentValue != nil {
		if *in.CurrentValue < 0 {
			return validationError("Current value cannot be negative")
		}
		kr.CurrentValue = *in.CurrentValue
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return validationError("Invalid key result status %q", *in.Status)
		}
		kr.Status = *in.Status
	}
	kr.Progress = okr.KeyResultProgress(kr.CurrentValue, kr.TargetValue)
	return nil
}

func objectiveProgress(krs []models.KeyResult) int {
	progresses := make([]float64, len(krs))
	for i, kr := range krs {
		progresses[i] = kr.Progress
	}
	return okr.ObjectiveProgress(progresses)
}

// recomputeProgress rewrites the cached objective progress from its key results.
func recomputeProgress(ctx context.Context, tx *repository.Store, objectiveID uint64) error {
	krs, err := tx.OKRs.ListKeyResults(ctx, objectiveID)
	if err != nil {
		return internalError("failed to load key results", err)
	}
	if err := tx.OKRs.SetProgress(ctx, objectiveID, objectiveProgress(krs)); err != nil {
		return internalError("failed to update objective progress", err)
	}
	return nil
}

func loadObjective(ctx context.Context, store *repository.Store, actor Actor, id uint64) (*models.Objective, error) {
	objective, err := store.OKRs.FindObjective(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrObjectiveNotFound
		}
		return nil, internalError("failed to find objective", err)
	}
	if _, err := authorizeTeam(ctx, store, actor, objective.TeamID); err != nil {
		if errors.Is(err, ErrTeamNotFound) {
			return nil, ErrObjectiveNotFound
		}
		return nil, err
	}
	return objective, nil
}

// authorizeTeam loads a team of the actor's organization. Admins reach every
// team of their organization; everyone else only their own team.
func authorizeTeam(ctx context.Context, store *repository.Store, actor Actor, teamID uint64) (*models.Team, error) {
	if actor.OrganizationID == nil {
		return nil, ErrTeamNotFound
	}

	team, err := store.Teams.FindByID(ctx, teamID, *actor.OrganizationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, internalError("failed to find team", err)
	}

	if !actor.IsAdmin() && (actor.TeamID == nil || *actor.TeamID != teamID) {
		return nil, ErrNoAccess
	}
	return team, nil
}

func checkAssignee(ctx context.Context, store *repository.Store, userID, teamID uint64) error {
	user, err := store.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return internalError("failed to find user", err)
	}
	if user.TeamID == nil || *user.TeamID != teamID {
		return validationError("Assignee must be a member of the team")
	}
	return nil
}
