package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AddIndexes adds the composite indexes the hot queries rely on. Single-column
// indexes come from the model tags.
func AddIndexes(db *gorm.DB, log *zap.Logger) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Team board: objectives of a team ordered by end date
		{"objectives", "idx_objectives_team_end_date", "team_id, end_date"},

		// OTP verification looks up unused codes for an email
		{"otps", "idx_otps_email_used_expires", "email, used, expires_at"},

		// Pending invite checks by (email, team, expiry)
		{"invites", "idx_invites_pending_lookup", "email, team_id, expires_at"},

		// Key results per objective filtered by status
		{"key_results", "idx_key_results_objective_status", "objective_id, status"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			log.Debug("index already exists, skipping", zap.String("index", idx.name))
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("created index",
			zap.String("index", idx.name),
			zap.String("table", idx.table),
			zap.String("columns", idx.columns))
	}

	return nil
}
