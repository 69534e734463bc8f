package repository

import (
	"context"

	"github.com/myokr/okr-api/internal/database"
	"github.com/myokr/okr-api/internal/models"
	"github.com/myokr/okr-api/internal/utils"
	"gorm.io/gorm"
)

// GormDepartmentRepository is a GORM implementation of DepartmentRepository
type GormDepartmentRepository struct {
	db *gorm.DB
}

// NewDepartmentRepository creates a new DepartmentRepository
func NewDepartmentRepository(db *gorm.DB) DepartmentRepository {
	return &GormDepartmentRepository{db: db}
}

func (r *GormDepartmentRepository) Create(ctx context.Context, dept *models.Department) error {
	return r.db.WithContext(ctx).Create(dept).Error
}

func (r *GormDepartmentRepository) FindByID(ctx context.Context, id, organizationID uint64) (*models.Department, error) {
	var dept models.Department
	err := r.db.WithContext(ctx).
		Preload("Teams").
		Where("organization_id = ?", organizationID).
		First(&dept, id).Error
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *GormDepartmentRepository) List(ctx context.Context, organizationID uint64, page utils.PaginationParams) ([]models.Department, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Department{}).Where("organization_id = ?", organizationID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var depts []models.Department
	if err := query.Scopes(database.Paginate(page)).
		Preload("Teams").
		Order("departments.created_at DESC, departments.id DESC").
		Find(&depts).Error; err != nil {
		return nil, 0, err
	}
	return depts, total, nil
}

func (r *GormDepartmentRepository) Update(ctx context.Context, dept *models.Department) error {
	return r.db.WithContext(ctx).Model(dept).Update("name", dept.Name).Error
}

func (r *GormDepartmentRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&models.Department{}, id).Error
}
