package router_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/quiz-api/internal/config"
	"github.com/noah-isme/quiz-api/internal/database"
	"github.com/noah-isme/quiz-api/internal/handler"
	"github.com/noah-isme/quiz-api/internal/middleware"
	"github.com/noah-isme/quiz-api/internal/repository"
	"github.com/noah-isme/quiz-api/internal/router"
	"github.com/noah-isme/quiz-api/internal/service"
)

const testSecret = "router-secret"

func newRouterTestApp(t *testing.T, probes ...handler.HealthProbe) *fiber.App {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	logger := zerolog.Nop()
	validate := validator.New(validator.WithRequiredStructEnabled())
	quizRepo := repository.NewQuizRepository(db)
	activity := service.NewActivityService(repository.NewActivityLogRepository(db), logger)
	grading := service.NewGradingService(quizRepo, repository.NewSubmissionRepository(db), nil, nil, validate, logger)
	quizzes := service.NewQuizService(quizRepo, repository.NewQuestionRepository(db), nil, activity, validate, logger)

	cfg := config.Config{AppName: "Quiz API", AppEnv: "test"}
	app := fiber.New()
	router.Register(app, cfg, router.Dependencies{
		QuizHandler:            handler.NewQuizHandler(grading, logger),
		AdminQuizHandler:       handler.NewAdminQuizHandler(quizzes, logger),
		AdminSubmissionHandler: handler.NewAdminSubmissionHandler(grading, logger),
		AdminActivityHandler:   handler.NewAdminActivityHandler(activity, logger),
		HealthProbes:           probes,
		JWTMiddleware:          middleware.JWTProtected(testSecret),
	})
	return app
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "user-1",
		"role": role,
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAdminRoutesRequireTeacherOrAdmin(t *testing.T) {
	app := newRouterTestApp(t)

	cases := map[string]struct {
		authorization string
		status        int
	}{
		"missing token": {status: http.StatusUnauthorized},
		"student":       {authorization: bearer(t, "student"), status: http.StatusForbidden},
		"teacher":       {authorization: bearer(t, "teacher"), status: http.StatusOK},
		"admin":         {authorization: bearer(t, "Admin"), status: http.StatusOK},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/quizzes", nil)
			if tc.authorization != "" {
				req.Header.Set(fiber.HeaderAuthorization, tc.authorization)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestAdminRoutesRefuseWithoutVerifier(t *testing.T) {
	app := fiber.New()
	router.Register(app, config.Config{AppName: "Quiz API"}, router.Dependencies{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/admin/quizzes", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPublicRoutesAreOpen(t *testing.T) {
	app := newRouterTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/quizzes/missing", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "Quiz API", resp.Header.Get("X-Application"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/quizzes/missing/submit", strings.NewReader(`{"answers": []}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthReportsProbes(t *testing.T) {
	healthy := newRouterTestApp(t, handler.HealthProbe{
		Name:  "database",
		Check: func(context.Context) error { return nil },
	})
	resp, err := healthy.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	degraded := newRouterTestApp(t, handler.HealthProbe{
		Name:  "redis",
		Check: func(context.Context) error { return errors.New("connection refused") },
	})
	resp, err = degraded.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "connection refused")
}

func TestMetricsEndpoint(t *testing.T) {
	app := newRouterTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "quiz_submission_dropped_answers_total")
}
