package logging

import (
	"log/slog"
	"time"

	"github.com/questchain/questchain-api/internal/models"
	"gorm.io/gorm"
)

const logRetentionDays = 30

// StartCleanup runs a daily goroutine that deletes system_logs older than the retention window.
func StartCleanup(db *gorm.DB, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				PurgeLogs(db, time.Now())
			case <-done:
				return
			}
		}
	}()
}

// PurgeLogs deletes system logs older than the retention window relative to now.
func PurgeLogs(db *gorm.DB, now time.Time) int64 {
	cutoff := now.AddDate(0, 0, -logRetentionDays)
	result := db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	if result.Error != nil {
		slog.Error("log cleanup failed", "action", "log_cleanup", "error", result.Error)
		return 0
	}
	if result.RowsAffected > 0 {
		slog.Info("log cleanup completed", "deleted", result.RowsAffected)
	}
	return result.RowsAffected
}
