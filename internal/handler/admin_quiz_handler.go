package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/quiz-api/internal/dto"
	"github.com/noah-isme/quiz-api/internal/service"
	"github.com/noah-isme/quiz-api/internal/utils"
)

// AdminQuizHandler wires quiz and question authoring endpoints.
type AdminQuizHandler struct {
	service service.QuizService
	logger  zerolog.Logger
}

// NewAdminQuizHandler constructs the handler.
func NewAdminQuizHandler(service service.QuizService, logger zerolog.Logger) *AdminQuizHandler {
	return &AdminQuizHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_quiz_handler").Logger(),
	}
}

// Register attaches the authoring routes to the admin router group.
func (h *AdminQuizHandler) Register(router fiber.Router) {
	quizzes := router.Group("/quizzes")
	quizzes.Get("", h.list)
	quizzes.Post("", h.create)
	quizzes.Post("/import", h.importQuiz)
	quizzes.Get("/:id", h.get)
	quizzes.Patch("/:id", h.update)
	quizzes.Delete("/:id", h.delete)
	quizzes.Post("/:id/questions", h.addQuestion)

	questions := router.Group("/questions")
	questions.Patch("/:id", h.updateQuestion)
	questions.Delete("/:id", h.deleteQuestion)
}

func (h *AdminQuizHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := parsePaging(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	isActive, err := parseQueryBool(c, "is_active")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid is_active")
	}

	response, err := h.service.List(withRequestContext(c), dto.QuizListRequest{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("search")),
		IsActive: isActive,
	})
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list quizzes")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list quizzes")
	}

	return utils.SendSuccess(c, "quizzes retrieved", response)
}

func (h *AdminQuizHandler) create(c *fiber.Ctx) error {
	var payload dto.QuizCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	quiz, err := h.service.Create(withRequestContext(c), payload, activityActorFromContext(c))
	if err != nil {
		return h.handleError(c, err, "failed to create quiz")
	}

	return utils.SendCreated(c, "quiz created", quiz)
}

func (h *AdminQuizHandler) importQuiz(c *fiber.Ctx) error {
	body := c.Body()
	if len(body) == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	document := make([]byte, len(body))
	copy(document, body)

	quiz, err := h.service.Import(withRequestContext(c), document, activityActorFromContext(c))
	if err != nil {
		return h.handleError(c, err, "failed to import quiz")
	}

	return utils.SendCreated(c, "quiz imported", quiz)
}

func (h *AdminQuizHandler) get(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	quiz, err := h.service.Get(withRequestContext(c), id)
	if err != nil {
		return h.handleError(c, err, "failed to fetch quiz")
	}

	return utils.SendSuccess(c, "quiz retrieved", quiz)
}

func (h *AdminQuizHandler) update(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.QuizUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	quiz, err := h.service.Update(withRequestContext(c), id, payload, activityActorFromContext(c))
	if err != nil {
		return h.handleError(c, err, "failed to update quiz")
	}

	return utils.SendSuccess(c, "quiz updated", quiz)
}

func (h *AdminQuizHandler) delete(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	if err := h.service.Delete(withRequestContext(c), id, activityActorFromContext(c)); err != nil {
		return h.handleError(c, err, "failed to delete quiz")
	}

	return utils.SendSuccess(c, "quiz deleted", fiber.Map{"id": id})
}

func (h *AdminQuizHandler) addQuestion(c *fiber.Ctx) error {
	quizID, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.QuestionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	question, err := h.service.AddQuestion(withRequestContext(c), quizID, payload, activityActorFromContext(c))
	if err != nil {
		return h.handleError(c, err, "failed to add question")
	}

	return utils.SendCreated(c, "question created", question)
}

func (h *AdminQuizHandler) updateQuestion(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.QuestionUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	question, err := h.service.UpdateQuestion(withRequestContext(c), id, payload, activityActorFromContext(c))
	if err != nil {
		return h.handleError(c, err, "failed to update question")
	}

	return utils.SendSuccess(c, "question updated", question)
}

func (h *AdminQuizHandler) deleteQuestion(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	if err := h.service.DeleteQuestion(withRequestContext(c), id, activityActorFromContext(c)); err != nil {
		return h.handleError(c, err, "failed to delete question")
	}

	return utils.SendSuccess(c, "question deleted", fiber.Map{"id": id})
}

func (h *AdminQuizHandler) handleError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case isValidationError(err):
		return sendValidationError(c, err)
	case errors.Is(err, service.ErrQuizNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "quiz not found")
	case errors.Is(err, service.ErrQuestionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "question not found")
	case errors.Is(err, service.ErrSlugTaken):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidSlug),
		errors.Is(err, service.ErrInvalidQuiz),
		errors.Is(err, service.ErrInvalidQuestion),
		errors.Is(err, service.ErrInvalidQuizDocument):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
