package repository

import (
	"context"
	"time"

	"github.com/myokr/okr-api/internal/models"
	"gorm.io/gorm"
)

// GormInviteRepository is a GORM implementation of InviteRepository
type GormInviteRepository struct {
	db *gorm.DB
}

// NewInviteRepository creates a new InviteRepository
func NewInviteRepository(db *gorm.DB) InviteRepository {
	return &GormInviteRepository{db: db}
}

// CreateBatch inserts all invites in one statement
func (r *GormInviteRepository) CreateBatch(ctx context.Context, invites []models.Invite) error {
	if len(invites) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("Team").Create(&invites).Error
}

// FindByToken finds an invite by its token
func (r *GormInviteRepository) FindByToken(ctx context.Context, token string) (*models.Invite, error) {
	var invite models.Invite
	err := r.db.WithContext(ctx).
		Preload("Team.Department").
		Where("token = ?", token).
		First(&invite).Error
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

// FindPending returns invites for the team that are neither accepted nor expired
func (r *GormInviteRepository) FindPending(ctx context.Context, emails []string, teamID uint64, now time.Time) ([]models.Invite, error) {
	if len(emails) == 0 {
		return nil, nil
	}
	var invites []models.Invite
	err := r.db.WithContext(ctx).
		Where("email IN ? AND team_id = ?", emails, teamID).
		Where("accepted_at IS NULL AND expires_at >= ?", now).
		Find(&invites).Error
	return invites, err
}

// MarkAccepted stamps accepted_at once. A second caller gets ErrNoRowsAffected.
func (r *GormInviteRepository) MarkAccepted(ctx context.Context, id uint64, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.Invite{}).
		Where("id = ? AND accepted_at IS NULL", id).
		Update("accepted_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

// DeleteByTeam removes every invite of a team
func (r *GormInviteRepository) DeleteByTeam(ctx context.Context, teamID uint64) error {
	return r.db.WithContext(ctx).Where("team_id = ?", teamID).Delete(&models.Invite{}).Error
}
