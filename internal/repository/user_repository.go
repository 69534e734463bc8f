package repository

import (
	"context"

	"github.com/myokr/okr-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Team").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindExistingEmails returns the emails that already belong to a user
func (r *GormUserRepository) FindExistingEmails(ctx context.Context, emails []string) ([]string, error) {
	if len(emails) == 0 {
		return nil, nil
	}
	var existing []string
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("email IN ?", emails).
		Pluck("email", &existing).Error
	return existing, err
}

// ListByIDs loads users by ID
func (r *GormUserRepository) ListByIDs(ctx context.Context, ids []uint64) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Update saves the mutable user columns
func (r *GormUserRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Model(user).
		Select("name", "email", "role", "is_verified", "team_id", "updated_at").
		Updates(user).Error
}

// AssignTeam moves users onto a team
func (r *GormUserRepository) AssignTeam(ctx context.Context, userIDs []uint64, teamID uint64) error {
	if len(userIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id IN ?", userIDs).
		Update("team_id", teamID).Error
}

// CountByTeam counts the users on a team
func (r *GormUserRepository) CountByTeam(ctx context.Context, teamID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("team_id = ?", teamID).Count(&count).Error
	return count, err
}

// Delete removes a user
func (r *GormUserRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&models.User{}, id).Error
}
