package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/quiz-api/internal/dto"
	"github.com/noah-isme/quiz-api/internal/service"
	"github.com/noah-isme/quiz-api/internal/utils"
)

// AdminSubmissionHandler exposes graded submissions to quiz authors.
type AdminSubmissionHandler struct {
	service service.GradingService
	logger  zerolog.Logger
}

// NewAdminSubmissionHandler constructs the handler.
func NewAdminSubmissionHandler(service service.GradingService, logger zerolog.Logger) *AdminSubmissionHandler {
	return &AdminSubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_submission_handler").Logger(),
	}
}

// Register attaches submission review routes to the admin router group.
func (h *AdminSubmissionHandler) Register(router fiber.Router) {
	router.Get("/quizzes/:id/submissions", h.listByQuiz)
	router.Get("/submissions/:id", h.get)
}

func (h *AdminSubmissionHandler) listByQuiz(c *fiber.Ctx) error {
	quizID, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}
	page, pageSize, err := parsePaging(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.ListSubmissions(withRequestContext(c), quizID, dto.SubmissionListRequest{
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		if errors.Is(err, service.ErrQuizNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "quiz not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list submissions")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list submissions")
	}

	return utils.SendSuccess(c, "submissions retrieved", response)
}

func (h *AdminSubmissionHandler) get(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	submission, err := h.service.GetSubmission(withRequestContext(c), id)
	if err != nil {
		if errors.Is(err, service.ErrSubmissionNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "submission not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch submission")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch submission")
	}

	return utils.SendSuccess(c, "submission retrieved", submission)
}
