package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/noah-isme/quiz-api/internal/models"
)

// Migrate creates or updates the catalog and submission tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Quiz{},
		&models.Question{},
		&models.Option{},
		&models.CanonicalAnswer{},
		&models.Submission{},
		&models.SubmissionAnswer{},
		&models.ActivityLog{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}
