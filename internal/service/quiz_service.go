package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/quiz-api/internal/dto"
	"github.com/noah-isme/quiz-api/internal/models"
	"github.com/noah-isme/quiz-api/internal/repository"
	"github.com/noah-isme/quiz-api/internal/utils"
)

var (
	// ErrQuestionNotFound indicates the question does not exist.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrSlugTaken indicates another quiz already owns the slug.
	ErrSlugTaken = errors.New("slug already in use")
	// ErrInvalidSlug indicates a supplied slug is not in slug form.
	ErrInvalidSlug = errors.New("slug may only contain lowercase letters, digits and single dashes")
	// ErrInvalidQuiz indicates quiz metadata that is empty once sanitized.
	ErrInvalidQuiz = errors.New("invalid quiz")
	// ErrInvalidQuestion indicates the answer key does not fit the question type.
	ErrInvalidQuestion = errors.New("invalid question")
	// ErrInvalidQuizDocument indicates an import document failed schema validation.
	ErrInvalidQuizDocument = errors.New("invalid quiz document")
)

const maxSlugAttempts = 50

// QuizService manages quiz authoring for administrators and teachers.
type QuizService interface {
	List(ctx context.Context, req dto.QuizListRequest) (dto.QuizListResponse, error)
	Get(ctx context.Context, id uuid.UUID) (dto.QuizResponse, error)
	Create(ctx context.Context, payload dto.QuizCreateRequest, actor ActivityActor) (dto.QuizResponse, error)
	Import(ctx context.Context, document []byte, actor ActivityActor) (dto.QuizResponse, error)
	Update(ctx context.Context, id uuid.UUID, payload dto.QuizUpdateRequest, actor ActivityActor) (dto.QuizResponse, error)
	Delete(ctx context.Context, id uuid.UUID, actor ActivityActor) error
	AddQuestion(ctx context.Context, quizID uuid.UUID, payload dto.QuestionCreateRequest, actor ActivityActor) (dto.QuestionResponse, error)
	UpdateQuestion(ctx context.Context, id uuid.UUID, payload dto.QuestionUpdateRequest, actor ActivityActor) (dto.QuestionResponse, error)
	DeleteQuestion(ctx context.Context, id uuid.UUID, actor ActivityActor) error
}

type quizService struct {
	quizzes   repository.QuizRepository
	questions repository.QuestionRepository
	cache     QuizCache
	activity  ActivityRecorder
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewQuizService constructs the authoring service. cache and activity may be nil.
func NewQuizService(quizRepo repository.QuizRepository, questionRepo repository.QuestionRepository, cache QuizCache, activity ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) QuizService {
	return &quizService{
		quizzes:   quizRepo,
		questions: questionRepo,
		cache:     cache,
		activity:  activity,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "quiz_service").Logger(),
	}
}

func (s *quizService) List(ctx context.Context, req dto.QuizListRequest) (dto.QuizListResponse, error) {
	page, pageSize := normalizePaging(req.Page, req.PageSize)
	quizzes, total, err := s.quizzes.List(ctx, repository.QuizFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(req.Search),
		IsActive: req.IsActive,
	})
	if err != nil {
		return dto.QuizListResponse{}, err
	}

	ids := make([]uuid.UUID, 0, len(quizzes))
	for _, quiz := range quizzes {
		ids = append(ids, quiz.ID)
	}
	counts, err := s.quizzes.CountQuestions(ctx, ids)
	if err != nil {
		return dto.QuizListResponse{}, err
	}

	items := make([]dto.QuizResponse, 0, len(quizzes))
	for _, quiz := range quizzes {
		item := dto.NewQuizResponse(quiz)
		item.QuestionCount = int(counts[quiz.ID])
		items = append(items, item)
	}

	return dto.QuizListResponse{
		Items:      items,
		Pagination: dto.NewPaginationMeta(page, pageSize, total),
	}, nil
}

func (s *quizService) Get(ctx context.Context, id uuid.UUID) (dto.QuizResponse, error) {
	quiz, err := s.loadQuiz(ctx, id)
	if err != nil {
		return dto.QuizResponse{}, err
	}

	return dto.NewQuizResponse(quiz), nil
}

func (s *quizService) Create(ctx context.Context, payload dto.QuizCreateRequest, actor ActivityActor) (dto.QuizResponse, error) {
	quiz, err := s.create(ctx, payload)
	if err != nil {
		return dto.QuizResponse{}, err
	}

	s.record(ctx, actor, "quiz.created", "quiz", quiz.ID, map[string]interface{}{
		"slug":      quiz.Slug,
		"questions": len(quiz.Questions),
	})

	return dto.NewQuizResponse(quiz), nil
}

// Import creates a complete quiz from a JSON document validated against the import schema.
func (s *quizService) Import(ctx context.Context, document []byte, actor ActivityActor) (dto.QuizResponse, error) {
	payload, err := decodeQuizDocument(document)
	if err != nil {
		return dto.QuizResponse{}, err
	}

	quiz, err := s.create(ctx, payload)
	if err != nil {
		return dto.QuizResponse{}, err
	}

	s.record(ctx, actor, "quiz.imported", "quiz", quiz.ID, map[string]interface{}{
		"slug":      quiz.Slug,
		"questions": len(quiz.Questions),
	})

	return dto.NewQuizResponse(quiz), nil
}

func (s *quizService) Update(ctx context.Context, id uuid.UUID, payload dto.QuizUpdateRequest, actor ActivityActor) (dto.QuizResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuizResponse{}, err
	}

	quiz, err := s.loadQuiz(ctx, id)
	if err != nil {
		return dto.QuizResponse{}, err
	}
	previousSlug := quiz.Slug

	changedFields := make([]string, 0, 4)
	if payload.Title != nil {
		quiz.Title = s.clean(*payload.Title)
		changedFields = append(changedFields, "title")
	}
	if payload.Description != nil {
		quiz.Description = s.clean(*payload.Description)
		changedFields = append(changedFields, "description")
	}
	if payload.IsActive != nil {
		quiz.IsActive = *payload.IsActive
		changedFields = append(changedFields, "is_active")
	}
	if payload.Slug != nil {
		slug := strings.TrimSpace(*payload.Slug)
		if slug != quiz.Slug {
			if !utils.IsSlug(slug) {
				return dto.QuizResponse{}, ErrInvalidSlug
			}
			exists, err := s.quizzes.SlugExists(ctx, slug)
			if err != nil {
				return dto.QuizResponse{}, err
			}
			if exists {
				return dto.QuizResponse{}, ErrSlugTaken
			}
			quiz.Slug = slug
			changedFields = append(changedFields, "slug")
		}
	}
	if strings.TrimSpace(quiz.Title) == "" {
		return dto.QuizResponse{}, fmt.Errorf("%w: title is empty after sanitizing", ErrInvalidQuiz)
	}

	if err := s.quizzes.Update(ctx, &quiz); err != nil {
		return dto.QuizResponse{}, err
	}
	s.invalidate(ctx, previousSlug, quiz.Slug)

	if len(changedFields) > 0 {
		s.record(ctx, actor, "quiz.updated", "quiz", quiz.ID, map[string]interface{}{
			"fields": changedFields,
		})
	}

	return dto.NewQuizResponse(quiz), nil
}

func (s *quizService) Delete(ctx context.Context, id uuid.UUID, actor ActivityActor) error {
	quiz, err := s.loadQuiz(ctx, id)
	if err != nil {
		return err
	}

	if err := s.quizzes.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuizNotFound
		}
		return err
	}
	s.invalidate(ctx, quiz.Slug)

	s.record(ctx, actor, "quiz.deleted", "quiz", id, map[string]interface{}{
		"slug": quiz.Slug,
	})

	return nil
}

func (s *quizService) AddQuestion(ctx context.Context, quizID uuid.UUID, payload dto.QuestionCreateRequest, actor ActivityActor) (dto.QuestionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuestionResponse{}, err
	}

	quiz, err := s.loadQuiz(ctx, quizID)
	if err != nil {
		return dto.QuestionResponse{}, err
	}

	question, err := s.buildQuestion(payload)
	if err != nil {
		return dto.QuestionResponse{}, err
	}
	question.QuizID = quiz.ID

	if err := s.questions.Create(ctx, &question); err != nil {
		return dto.QuestionResponse{}, err
	}
	s.invalidate(ctx, quiz.Slug)

	s.record(ctx, actor, "question.created", "question", question.ID, map[string]interface{}{
		"quiz_id": quiz.ID.String(),
		"type":    question.Type,
		"points":  question.Points,
	})

	return dto.NewQuestionResponse(question), nil
}

// UpdateQuestion patches a question. The resulting answer key must fit the resulting type:
// multiple choice questions carry options, the other kinds carry a canonical answer text.
func (s *quizService) UpdateQuestion(ctx context.Context, id uuid.UUID, payload dto.QuestionUpdateRequest, actor ActivityActor) (dto.QuestionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuestionResponse{}, err
	}

	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuestionResponse{}, ErrQuestionNotFound
		}
		return dto.QuestionResponse{}, err
	}
	wasMultipleChoice := question.UsesOptions()

	changedFields := make([]string, 0, 6)
	if payload.Text != nil {
		question.Text = s.clean(*payload.Text)
		changedFields = append(changedFields, "question_text")
	}
	if payload.Type != nil {
		question.Type = *payload.Type
		changedFields = append(changedFields, "question_type")
	}
	if payload.Order != nil {
		question.Order = *payload.Order
		changedFields = append(changedFields, "order")
	}
	if payload.Points != nil {
		question.Points = *payload.Points
		changedFields = append(changedFields, "points")
	}

	replaceOptions := payload.Options != nil
	var canonical *string
	if question.UsesOptions() {
		if payload.CorrectAnswerText != nil {
			return dto.QuestionResponse{}, fmt.Errorf("%w: multiple choice questions are graded by option, not by answer text", ErrInvalidQuestion)
		}
		if !wasMultipleChoice && !replaceOptions {
			return dto.QuestionResponse{}, fmt.Errorf("%w: options are required when switching to multiple choice", ErrInvalidQuestion)
		}
		if replaceOptions {
			if len(payload.Options) == 0 {
				return dto.QuestionResponse{}, fmt.Errorf("%w: multiple choice questions need at least one option", ErrInvalidQuestion)
			}
			question.Options = s.buildOptions(payload.Options)
			changedFields = append(changedFields, "options")
		}
	} else {
		if len(payload.Options) > 0 {
			return dto.QuestionResponse{}, fmt.Errorf("%w: only multiple choice questions take options", ErrInvalidQuestion)
		}
		if wasMultipleChoice {
			replaceOptions = true
			question.Options = nil
		}
		if payload.CorrectAnswerText != nil {
			text := strings.TrimSpace(*payload.CorrectAnswerText)
			canonical = &text
			changedFields = append(changedFields, "correct_answer")
		}
	}
	if strings.TrimSpace(question.Text) == "" {
		return dto.QuestionResponse{}, fmt.Errorf("%w: question text is empty after sanitizing", ErrInvalidQuestion)
	}

	if err := s.questions.Update(ctx, &question, replaceOptions, canonical); err != nil {
		return dto.QuestionResponse{}, err
	}

	updated, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return dto.QuestionResponse{}, err
	}
	s.invalidateQuiz(ctx, updated.QuizID)

	if len(changedFields) > 0 {
		s.record(ctx, actor, "question.updated", "question", updated.ID, map[string]interface{}{
			"quiz_id": updated.QuizID.String(),
			"fields":  changedFields,
		})
	}

	return dto.NewQuestionResponse(updated), nil
}

func (s *quizService) DeleteQuestion(ctx context.Context, id uuid.UUID, actor ActivityActor) error {
	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuestionNotFound
		}
		return err
	}

	if err := s.questions.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuestionNotFound
		}
		return err
	}
	s.invalidateQuiz(ctx, question.QuizID)

	s.record(ctx, actor, "question.deleted", "question", id, map[string]interface{}{
		"quiz_id": question.QuizID.String(),
	})

	return nil
}

func (s *quizService) create(ctx context.Context, payload dto.QuizCreateRequest) (models.Quiz, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.Quiz{}, err
	}

	title := s.clean(payload.Title)
	if title == "" {
		return models.Quiz{}, fmt.Errorf("%w: title is empty after sanitizing", ErrInvalidQuiz)
	}

	slug, err := s.resolveSlug(ctx, payload.Slug, title)
	if err != nil {
		return models.Quiz{}, err
	}

	quiz := models.Quiz{
		Title:       title,
		Slug:        slug,
		Description: s.clean(payload.Description),
		IsActive:    true,
		Questions:   make([]models.Question, 0, len(payload.Questions)),
	}
	if payload.IsActive != nil {
		quiz.IsActive = *payload.IsActive
	}

	for i, item := range payload.Questions {
		question, err := s.buildQuestion(item)
		if err != nil {
			return models.Quiz{}, fmt.Errorf("question %d: %w", i+1, err)
		}
		quiz.Questions = append(quiz.Questions, question)
	}

	if err := s.quizzes.Create(ctx, &quiz); err != nil {
		return models.Quiz{}, err
	}

	s.logger.Info().Str("quiz_id", quiz.ID.String()).Str("slug", quiz.Slug).Msg("quiz created")
	return quiz, nil
}

// resolveSlug accepts a supplied slug as-is or derives one from the title, appending a numeric
// suffix until it is free.
func (s *quizService) resolveSlug(ctx context.Context, requested, title string) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested != "" {
		if !utils.IsSlug(requested) {
			return "", ErrInvalidSlug
		}
		exists, err := s.quizzes.SlugExists(ctx, requested)
		if err != nil {
			return "", err
		}
		if exists {
			return "", ErrSlugTaken
		}
		return requested, nil
	}

	base := utils.Slugify(title)
	if base == "" {
		base = "quiz"
	}

	candidate := base
	for attempt := 2; attempt <= maxSlugAttempts+1; attempt++ {
		exists, err := s.quizzes.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, attempt)
	}

	return fmt.Sprintf("%s-%s", base, uuid.NewString()[:8]), nil
}

func (s *quizService) buildQuestion(payload dto.QuestionCreateRequest) (models.Question, error) {
	question := models.Question{
		Text:   s.clean(payload.Text),
		Type:   payload.Type,
		Order:  payload.Order,
		Points: 1,
	}
	if payload.Points != nil {
		question.Points = *payload.Points
	}
	if question.Text == "" {
		return models.Question{}, fmt.Errorf("%w: question text is empty after sanitizing", ErrInvalidQuestion)
	}

	if question.UsesOptions() {
		if payload.CorrectAnswerText != nil {
			return models.Question{}, fmt.Errorf("%w: multiple choice questions are graded by option, not by answer text", ErrInvalidQuestion)
		}
		if len(payload.Options) == 0 {
			return models.Question{}, fmt.Errorf("%w: multiple choice questions need at least one option", ErrInvalidQuestion)
		}
		question.Options = s.buildOptions(payload.Options)
		return question, nil
	}

	if len(payload.Options) > 0 {
		return models.Question{}, fmt.Errorf("%w: only multiple choice questions take options", ErrInvalidQuestion)
	}
	if payload.CorrectAnswerText != nil {
		question.CorrectAnswer = &models.CanonicalAnswer{Text: strings.TrimSpace(*payload.CorrectAnswerText)}
	}

	return question, nil
}

func (s *quizService) buildOptions(payload []dto.OptionRequest) []models.Option {
	options := make([]models.Option, 0, len(payload))
	for i, item := range payload {
		order := item.Order
		if order == 0 {
			order = i + 1
		}
		options = append(options, models.Option{
			Text:      s.clean(item.Text),
			IsCorrect: item.IsCorrect,
			Order:     order,
		})
	}
	return options
}

func (s *quizService) loadQuiz(ctx context.Context, id uuid.UUID) (models.Quiz, error) {
	quiz, err := s.quizzes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Quiz{}, ErrQuizNotFound
		}
		return models.Quiz{}, err
	}
	return quiz, nil
}

func (s *quizService) clean(value string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(value))
}

func (s *quizService) invalidate(ctx context.Context, slugs ...string) {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(ctx, slugs...)
}

func (s *quizService) invalidateQuiz(ctx context.Context, quizID uuid.UUID) {
	if s.cache == nil {
		return
	}
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		s.logger.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("failed to resolve quiz for cache invalidation")
		return
	}
	s.cache.Invalidate(ctx, quiz.Slug)
}

func (s *quizService) record(ctx context.Context, actor ActivityActor, action, entityType string, entityID uuid.UUID, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}
	if _, err := s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID.String(),
		Metadata:   metadata,
	}); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to record activity")
	}
}
