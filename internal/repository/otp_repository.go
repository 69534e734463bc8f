package repository

import (
	"context"
	"time"

	"github.com/myokr/okr-api/internal/models"
	"gorm.io/gorm"
)

// GormOTPRepository is a GORM implementation of OTPRepository
type GormOTPRepository struct {
	db *gorm.DB
}

// NewOTPRepository creates a new OTPRepository
func NewOTPRepository(db *gorm.DB) OTPRepository {
	return &GormOTPRepository{db: db}
}

func (r *GormOTPRepository) Create(ctx context.Context, otp *models.OTP) error {
	return r.db.WithContext(ctx).Create(otp).Error
}

func (r *GormOTPRepository) FindActive(ctx context.Context, email string, now time.Time) ([]models.OTP, error) {
	var otps []models.OTP
	err := r.db.WithContext(ctx).
		Where("email = ? AND used = ? AND expires_at >= ?", email, false, now).
		Order("created_at DESC, id DESC").
		Find(&otps).Error
	return otps, err
}

func (r *GormOTPRepository) MarkUsed(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Model(&models.OTP{}).
		Where("id = ? AND used = ?", id, false).
		Update("used", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoRowsAffected
	}
	return nil
}
