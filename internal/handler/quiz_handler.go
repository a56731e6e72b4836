package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/quiz-api/internal/dto"
	"github.com/noah-isme/quiz-api/internal/service"
	"github.com/noah-isme/quiz-api/internal/utils"
)

// QuizHandler serves quizzes to takers and accepts their submissions.
type QuizHandler struct {
	service service.GradingService
	logger  zerolog.Logger
}

// NewQuizHandler constructs the public quiz handler.
func NewQuizHandler(service service.GradingService, logger zerolog.Logger) *QuizHandler {
	return &QuizHandler{
		service: service,
		logger:  logger.With().Str("component", "quiz_handler").Logger(),
	}
}

// Register attaches the public quiz routes. submitGuards run before the submit endpoint,
// typically a rate limiter.
func (h *QuizHandler) Register(router fiber.Router, submitGuards ...fiber.Handler) {
	router.Get("/:slug", h.get)

	submit := append(append([]fiber.Handler{}, submitGuards...), h.submit)
	router.Post("/:slug/submit", submit...)
}

func (h *QuizHandler) get(c *fiber.Ctx) error {
	quiz, err := h.service.GetPublicQuiz(withRequestContext(c), c.Params("slug"))
	if err != nil {
		if errors.Is(err, service.ErrQuizNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "quiz not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Str("slug", c.Params("slug")).Msg("failed to load quiz")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load quiz")
	}

	return utils.SendSuccess(c, "quiz retrieved", quiz)
}

func (h *QuizHandler) submit(c *fiber.Ctx) error {
	var payload dto.SubmitQuizRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	submission, err := h.service.Submit(withRequestContext(c), c.Params("slug"), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptySubmission):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case isValidationError(err):
			return sendValidationError(c, err)
		case errors.Is(err, service.ErrQuizNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "quiz not found")
		case errors.Is(err, service.ErrSubmissionWriteFailed):
			requestLogger(h.logger, c).Error().Err(err).Str("slug", c.Params("slug")).Msg("submission was not recorded")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to record submission")
		default:
			requestLogger(h.logger, c).Error().Err(err).Str("slug", c.Params("slug")).Msg("failed to grade submission")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to grade submission")
		}
	}

	return utils.SendCreated(c, "submission created", submission)
}
