package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/quiz-api/internal/database"
	"github.com/noah-isme/quiz-api/internal/models"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedGeoQuiz(t *testing.T, db *gorm.DB, active bool) models.Quiz {
	t.Helper()
	canonical := models.CanonicalAnswer{Text: "true"}
	quiz := models.Quiz{
		Title:    "Geo",
		Slug:     "geo",
		IsActive: true,
		Questions: []models.Question{
			{
				Text:   "Capital of France?",
				Type:   models.QuestionTypeMultipleChoice,
				Order:  1,
				Points: 2,
				Options: []models.Option{
					{Text: "Lyon", Order: 1},
					{Text: "Paris", Order: 2, IsCorrect: true},
				},
			},
			{
				Text:          "The Nile is in Africa",
				Type:          models.QuestionTypeTrueFalse,
				Order:         2,
				Points:        1,
				CorrectAnswer: &canonical,
			},
		},
	}
	require.NoError(t, NewQuizRepository(db).Create(t.Context(), &quiz))
	if !active {
		require.NoError(t, db.Model(&models.Quiz{}).Where("id = ?", quiz.ID).Update("is_active", false).Error)
		quiz.IsActive = false
	}
	return quiz
}
