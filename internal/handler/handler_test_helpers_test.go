package handler_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/quiz-api/internal/database"
	"github.com/noah-isme/quiz-api/internal/handler"
	"github.com/noah-isme/quiz-api/internal/models"
	"github.com/noah-isme/quiz-api/internal/repository"
	"github.com/noah-isme/quiz-api/internal/service"
)

type testEnv struct {
	app     *fiber.App
	db      *gorm.DB
	quiz    models.Quiz
	capital models.Question
	nile    models.Question
	paris   models.Option
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

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
	quizRepo := repository.NewQuizRepository(db)
	require.NoError(t, quizRepo.Create(t.Context(), &quiz))

	logger := zerolog.Nop()
	validate := validator.New(validator.WithRequiredStructEnabled())
	activityService := service.NewActivityService(repository.NewActivityLogRepository(db), logger)
	gradingService := service.NewGradingService(quizRepo, repository.NewSubmissionRepository(db), nil, nil, validate, logger)
	quizService := service.NewQuizService(quizRepo, repository.NewQuestionRepository(db), nil, activityService, validate, logger)

	app := fiber.New()
	handler.NewQuizHandler(gradingService, logger).Register(app.Group("/api/v1/quizzes"))

	admin := app.Group("/api/admin", func(c *fiber.Ctx) error {
		c.Locals("user_id", "teacher-1")
		c.Locals("user_role", "teacher")
		return c.Next()
	})
	handler.NewAdminQuizHandler(quizService, logger).Register(admin)
	handler.NewAdminSubmissionHandler(gradingService, logger).Register(admin)
	handler.NewAdminActivityHandler(activityService, logger).Register(admin.Group("/audit"))

	return testEnv{
		app:     app,
		db:      db,
		quiz:    quiz,
		capital: quiz.Questions[0],
		nile:    quiz.Questions[1],
		paris:   quiz.Questions[0].Options[1],
	}
}

func (e testEnv) do(t *testing.T, method, target string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(v)
	default:
		payload, err := json.Marshal(v)
		require.NoError(t, err)
		reader = strings.NewReader(string(payload))
	}

	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(body, target))
}

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	schemaPath, err := filepath.Abs(filepath.Join("testdata", name))
	require.NoError(t, err)

	schema, err := jsonschema.NewCompiler().Compile("file://" + schemaPath)
	require.NoError(t, err)
	return schema
}
