package repository

import (
	"context"

	"github.com/myokr/okr-api/internal/database"
	"github.com/myokr/okr-api/internal/models"
	"github.com/myokr/okr-api/internal/utils"
	"gorm.io/gorm"
)

// GormOKRRepository is a GORM implementation of OKRRepository
type GormOKRRepository struct {
	db *gorm.DB
}

// NewOKRRepository creates a new OKRRepository
func NewOKRRepository(db *gorm.DB) OKRRepository {
	return &GormOKRRepository{db: db}
}

// CreateObjective inserts the objective and its key results
func (r *GormOKRRepository) CreateObjective(ctx context.Context, objective *models.Objective) error {
	return r.db.WithContext(ctx).Omit("Team", "AssignedTo").Create(objective).Error
}

// FindObjective finds an objective with its key results and assignee
func (r *GormOKRRepository) FindObjective(ctx context.Context, id uint64) (*models.Objective, error) {
	var objective models.Objective
	err := r.db.WithContext(ctx).
		Preload("KeyResults", func(db *gorm.DB) *gorm.DB { return db.Order("key_results.id") }).
		Preload("AssignedTo").
		First(&objective, id).Error
	if err != nil {
		return nil, err
	}
	return &objective, nil
}

// ListByTeam lists a team's objectives, newest first
func (r *GormOKRRepository) ListByTeam(ctx context.Context, teamID uint64, page utils.PaginationParams) ([]models.Objective, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Objective{}).Where("team_id = ?", teamID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var objectives []models.Objective
	if err := query.Scopes(database.Paginate(page)).
		Preload("KeyResults", func(db *gorm.DB) *gorm.DB { return db.Order("key_results.id") }).
		Preload("AssignedTo").
		Order("objectives.created_at DESC, objectives.id DESC").
		Find(&objectives).Error; err != nil {
		return nil, 0, err
	}
	return objectives, total, nil
}

// ListByUser lists objectives assigned to a user
func (r *GormOKRRepository) ListByUser(ctx context.Context, userID uint64) ([]models.Objective, error) {
	var objectives []models.Objective
	err := r.db.WithContext(ctx).
		Preload("KeyResults", func(db *gorm.DB) *gorm.DB { return db.Order("key_results.id") }).
		Where("user_id = ?", userID).
		Order("objectives.id").
		Find(&objectives).Error
	return objectives, err
}

// UpdateObjective saves the editable columns
func (r *GormOKRRepository) UpdateObjective(ctx context.Context, objective *models.Objective) error {
	return r.db.WithContext(ctx).Model(objective).
		Select("title", "description", "start_date", "end_date", "user_id", "updated_at").
		Updates(objective).Error
}

// SetProgress writes the cached progress
func (r *GormOKRRepository) SetProgress(ctx context.Context, objectiveID uint64, progress int) error {
	return r.db.WithContext(ctx).Model(&models.Objective{}).
		Where("id = ?", objectiveID).
		Update("progress", progress).Error
}

// DeleteObjective deletes the key results and then the objective
func (r *GormOKRRepository) DeleteObjective(ctx context.Context, id uint64) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("objective_id = ?", id).Delete(&models.KeyResult{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.Objective{}, id).Error
}

// CountByTeam counts a team's objectives
func (r *GormOKRRepository) CountByTeam(ctx context.Context, teamID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Objective{}).Where("team_id = ?", teamID).Count(&count).Error
	return count, err
}

// UnassignUser clears user_id on the user's objectives
func (r *GormOKRRepository) UnassignUser(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).Model(&models.Objective{}).
		Where("user_id = ?", userID).
		Update("user_id", nil).Error
}

func (r *GormOKRRepository) CreateKeyResult(ctx context.Context, kr *models.KeyResult) error {
	return r.db.WithContext(ctx).Create(kr).Error
}

func (r *GormOKRRepository) FindKeyResult(ctx context.Context, id uint64) (*models.KeyResult, error) {
	var kr models.KeyResult
	if err := r.db.WithContext(ctx).First(&kr, id).Error; err != nil {
		return nil, err
	}
	return &kr, nil
}

func (r *GormOKRRepository) ListKeyResults(ctx context.Context, objectiveID uint64) ([]models.KeyResult, error) {
	var krs []models.KeyResult
	err := r.db.WithContext(ctx).Where("objective_id = ?", objectiveID).Order("id").Find(&krs).Error
	return krs, err
}

func (r *GormOKRRepository) UpdateKeyResult(ctx context.Context, kr *models.KeyResult) error {
	return r.db.WithContext(ctx).Model(kr).
		Select("title", "target_value", "current_value", "progress", "status", "updated_at").
		Updates(kr).Error
}

func (r *GormOKRRepository) DeleteKeyResult(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&models.KeyResult{}, id).Error
}
