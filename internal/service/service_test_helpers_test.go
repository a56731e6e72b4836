package service

import (
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/quiz-api/internal/database"
	"github.com/noah-isme/quiz-api/internal/models"
	"github.com/noah-isme/quiz-api/internal/repository"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return server, client
}

func newTestValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// geoFixture is a two question quiz worth three points: a multiple choice question (2 points,
// "Paris" correct) and a true/false question (1 point, canonical "true").
type geoFixture struct {
	quiz      models.Quiz
	capital   models.Question
	nile      models.Question
	paris     models.Option
	lyon      models.Option
	questions []models.Question
}

func seedGeoFixture(t *testing.T, db *gorm.DB, active bool) geoFixture {
	t.Helper()
	canonical := models.CanonicalAnswer{Text: "true"}
	quiz := models.Quiz{
		Title:    "Geo",
		Slug:     "geo",
		IsActive: active,
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
	require.NoError(t, repository.NewQuizRepository(db).Create(t.Context(), &quiz))

	return geoFixture{
		quiz:      quiz,
		capital:   quiz.Questions[0],
		nile:      quiz.Questions[1],
		lyon:      quiz.Questions[0].Options[0],
		paris:     quiz.Questions[0].Options[1],
		questions: quiz.Questions,
	}
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(model).Count(&count).Error)
	return count
}
