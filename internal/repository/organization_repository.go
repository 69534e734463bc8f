package repository

import (
	"context"

	"github.com/myokr/okr-api/internal/models"
	"gorm.io/gorm"
)

// GormOrganizationRepository is a GORM implementation of OrganizationRepository
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository creates a new OrganizationRepository
func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// Create creates a new organization
func (r *GormOrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	return r.db.WithContext(ctx).Create(org).Error
}

// FindByID finds an organization by ID
func (r *GormOrganizationRepository) FindByID(ctx context.Context, id uint64) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).First(&org, id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// FindByOwnerID finds the organization owned by an admin
func (r *GormOrganizationRepository) FindByOwnerID(ctx context.Context, ownerID uint64) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// ExistsByName reports whether the name is taken
func (r *GormOrganizationRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Organization{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

// LoadTree loads the whole organization hierarchy
func (r *GormOrganizationRepository) LoadTree(ctx context.Context, id uint64) (*models.Organization, error) {
	var org models.Organization
	err := r.db.WithContext(ctx).
		Preload("Departments", func(db *gorm.DB) *gorm.DB { return db.Order("departments.id") }).
		Preload("Teams", func(db *gorm.DB) *gorm.DB { return db.Order("teams.id") }).
		Preload("Teams.Department").
		Preload("Teams.Users").
		Preload("Teams.Objectives.KeyResults").
		Preload("Teams.Objectives.AssignedTo").
		First(&org, id).Error
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// Delete removes an organization row
func (r *GormOrganizationRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&models.Organization{}, id).Error
}
