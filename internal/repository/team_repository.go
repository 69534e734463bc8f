package repository

import (
	"context"

	"github.com/myokr/okr-api/internal/database"
	"github.com/myokr/okr-api/internal/models"
	"github.com/myokr/okr-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTeamRepository is a GORM implementation of TeamRepository
type GormTeamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &GormTeamRepository{db: db}
}

func (r *GormTeamRepository) Create(ctx context.Context, team *models.Team) error {
	return r.db.WithContext(ctx).Omit("Department", "Users", "Objectives").Create(team).Error
}

func (r *GormTeamRepository) FindByID(ctx context.Context, id, organizationID uint64) (*models.Team, error) {
	var team models.Team
	err := r.db.WithContext(ctx).
		Preload("Department").
		Where("organization_id = ?", organizationID).
		First(&team, id).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *GormTeamRepository) LockForUpdate(ctx context.Context, id uint64) error {
	var team models.Team
	return r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&team, id).Error
}

func (r *GormTeamRepository) FindWithMembers(ctx context.Context, id, organizationID uint64) (*models.Team, error) {
	var team models.Team
	err := r.db.WithContext(ctx).
		Preload("Department").
		Preload("Users", func(db *gorm.DB) *gorm.DB { return db.Order("users.id") }).
		Preload("Objectives", func(db *gorm.DB) *gorm.DB { return db.Order("objectives.id") }).
		Preload("Objectives.KeyResults").
		Preload("Objectives.AssignedTo").
		Where("organization_id = ?", organizationID).
		First(&team, id).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *GormTeamRepository) List(ctx context.Context, organizationID uint64, page utils.PaginationParams) ([]models.Team, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Team{}).Where("organization_id = ?", organizationID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var teams []models.Team
	if err := query.Scopes(database.Paginate(page)).
		Preload("Department").
		Preload("Users").
		Order("teams.created_at DESC, teams.id DESC").
		Find(&teams).Error; err != nil {
		return nil, 0, err
	}
	return teams, total, nil
}

func (r *GormTeamRepository) Update(ctx context.Context, team *models.Team) error {
	return r.db.WithContext(ctx).Model(team).
		Select("name", "department_id", "updated_at").
		Updates(team).Error
}

func (r *GormTeamRepository) SetDepartment(ctx context.Context, teamIDs []uint64, departmentID uint64, organizationID uint64) (int64, error) {
	if len(teamIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Model(&models.Team{}).
		Where("id IN ? AND organization_id = ?", teamIDs, organizationID).
		Update("department_id", departmentID)
	return result.RowsAffected, result.Error
}

func (r *GormTeamRepository) DetachDepartment(ctx context.Context, departmentID uint64) error {
	return r.db.WithContext(ctx).Model(&models.Team{}).
		Where("department_id = ?", departmentID).
		Update("department_id", nil).Error
}

func (r *GormTeamRepository) CountByDepartment(ctx context.Context, departmentID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Team{}).Where("department_id = ?", departmentID).Count(&count).Error
	return count, err
}

func (r *GormTeamRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&models.Team{}, id).Error
}
