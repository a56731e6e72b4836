package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/quiz-api/internal/dto"
	"github.com/noah-isme/quiz-api/internal/grading"
	"github.com/noah-isme/quiz-api/internal/models"
	"github.com/noah-isme/quiz-api/internal/observability"
	"github.com/noah-isme/quiz-api/internal/repository"
)

var (
	// ErrQuizNotFound indicates the slug or id does not resolve to a servable quiz.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrEmptySubmission indicates a submission without answers.
	ErrEmptySubmission = errors.New("answers cannot be empty")
	// ErrSubmissionWriteFailed indicates the atomic submission write failed; nothing was committed.
	ErrSubmissionWriteFailed = errors.New("failed to record submission")
	// ErrSubmissionNotFound indicates a submission could not be found.
	ErrSubmissionNotFound = errors.New("submission not found")
)

// GradingService serves quizzes to takers and grades their submissions.
type GradingService interface {
	GetPublicQuiz(ctx context.Context, slug string) (dto.PublicQuizResponse, error)
	Submit(ctx context.Context, slug string, payload dto.SubmitQuizRequest) (dto.SubmissionResponse, error)
	GetSubmission(ctx context.Context, id uuid.UUID) (dto.SubmissionResponse, error)
	ListSubmissions(ctx context.Context, quizID uuid.UUID, req dto.SubmissionListRequest) (dto.SubmissionListResponse, error)
}

type gradingService struct {
	quizzes     repository.QuizRepository
	submissions repository.SubmissionRepository
	cache       QuizCache
	events      SubmissionEventPublisher
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewGradingService constructs the grading engine. cache and events may be nil.
func NewGradingService(quizRepo repository.QuizRepository, submissionRepo repository.SubmissionRepository, cache QuizCache, events SubmissionEventPublisher, validate *validator.Validate, logger zerolog.Logger) GradingService {
	return &gradingService{
		quizzes:     quizRepo,
		submissions: submissionRepo,
		cache:       cache,
		events:      events,
		validator:   validate,
		logger:      logger.With().Str("component", "grading_service").Logger(),
		tracer:      observability.Tracer("service/grading"),
		now:         time.Now,
	}
}

func (s *gradingService) GetPublicQuiz(ctx context.Context, slug string) (dto.PublicQuizResponse, error) {
	slug = strings.TrimSpace(slug)
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, slug); ok {
			return cached, nil
		}
	}

	quiz, err := s.activeQuiz(ctx, slug)
	if err != nil {
		return dto.PublicQuizResponse{}, err
	}

	questions, err := s.quizzes.ListQuestions(ctx, quiz.ID)
	if err != nil {
		return dto.PublicQuizResponse{}, err
	}

	response := dto.NewPublicQuizResponse(quiz, questions)
	if s.cache != nil {
		s.cache.Set(ctx, slug, response)
	}

	return response, nil
}

// Submit grades the answers against the active quiz behind slug and records the result atomically.
func (s *gradingService) Submit(ctx context.Context, slug string, payload dto.SubmitQuizRequest) (dto.SubmissionResponse, error) {
	slug = strings.TrimSpace(slug)
	ctx, span := s.tracer.Start(ctx, "grading.submit", trace.WithAttributes(
		attribute.String("quiz.slug", slug),
		attribute.Int("submission.answers", len(payload.Answers)),
	))
	defer span.End()

	if len(payload.Answers) == 0 {
		span.SetStatus(codes.Error, "empty_submission")
		observability.Submissions().WithLabelValues("rejected").Inc()
		return dto.SubmissionResponse{}, ErrEmptySubmission
	}
	if err := s.validator.Struct(payload); err != nil {
		span.SetStatus(codes.Error, "validation_failed")
		observability.Submissions().WithLabelValues("rejected").Inc()
		return dto.SubmissionResponse{}, err
	}

	quiz, err := s.activeQuiz(ctx, slug)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "quiz_lookup_failed")
		observability.Submissions().WithLabelValues(outcomeLabel(err)).Inc()
		return dto.SubmissionResponse{}, err
	}
	span.SetAttributes(attribute.String("quiz.id", quiz.ID.String()))

	questions, err := s.loadQuestions(ctx, quiz.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "question_lookup_failed")
		observability.Submissions().WithLabelValues("failed").Inc()
		return dto.SubmissionResponse{}, fmt.Errorf("load questions: %w", err)
	}

	keys, err := toGradingQuestions(questions)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "answer_key_invalid")
		observability.Submissions().WithLabelValues("failed").Inc()
		return dto.SubmissionResponse{}, fmt.Errorf("build answer keys for quiz %s: %w", quiz.ID, err)
	}

	outcome := grading.Aggregate(keys, toRawAnswers(payload.Answers))
	if len(outcome.Dropped) > 0 {
		observability.DroppedAnswers().Add(float64(len(outcome.Dropped)))
		s.logger.Debug().
			Str("quiz_id", quiz.ID.String()).
			Int("dropped", len(outcome.Dropped)).
			Msg("answers without a matching question were discarded")
	}

	submission := newSubmissionRecord(quiz, outcome, s.now().UTC())
	if err := s.persist(ctx, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_write_failed")
		observability.Submissions().WithLabelValues("failed").Inc()
		return dto.SubmissionResponse{}, fmt.Errorf("%w: %w", ErrSubmissionWriteFailed, err)
	}

	attachQuestions(&submission, quiz, questions)

	span.SetAttributes(
		attribute.String("submission.id", submission.ID.String()),
		attribute.Int("submission.score", outcome.Score),
		attribute.Int("submission.total_points", outcome.TotalPoints),
	)
	observability.Submissions().WithLabelValues("graded").Inc()
	if outcome.TotalPoints > 0 {
		observability.SubmissionScoreRatio().Observe(float64(outcome.Score) / float64(outcome.TotalPoints))
	}

	s.publishGraded(ctx, quiz, submission)

	s.logger.Info().
		Str("submission_id", submission.ID.String()).
		Str("quiz_id", quiz.ID.String()).
		Int("score", outcome.Score).
		Int("total_points", outcome.TotalPoints).
		Int("max_achievable", outcome.MaxAchievable(keys)).
		Msg("submission graded")

	return dto.NewSubmissionResponse(submission), nil
}

func (s *gradingService) loadQuestions(ctx context.Context, quizID uuid.UUID) ([]models.Question, error) {
	ctx, span := s.tracer.Start(ctx, "grading.load_questions")
	defer span.End()

	questions, err := s.quizzes.ListQuestions(ctx, quizID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("quiz.questions", len(questions)))
	return questions, nil
}

func (s *gradingService) persist(ctx context.Context, submission *models.Submission) error {
	ctx, span := s.tracer.Start(ctx, "grading.persist", trace.WithAttributes(
		attribute.Int("submission.answers", len(submission.Answers)),
	))
	defer span.End()

	if err := s.submissions.CreateWithAnswers(ctx, submission); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (s *gradingService) GetSubmission(ctx context.Context, id uuid.UUID) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *gradingService) ListSubmissions(ctx context.Context, quizID uuid.UUID, req dto.SubmissionListRequest) (dto.SubmissionListResponse, error) {
	if _, err := s.quizzes.GetByID(ctx, quizID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionListResponse{}, ErrQuizNotFound
		}
		return dto.SubmissionListResponse{}, err
	}

	page, pageSize := normalizePaging(req.Page, req.PageSize)
	items, total, err := s.submissions.ListByQuiz(ctx, repository.SubmissionFilter{
		QuizID:   quizID,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return dto.SubmissionListResponse{}, err
	}

	return dto.SubmissionListResponse{
		Items:      dto.NewSubmissionResponseSlice(items),
		Pagination: dto.NewPaginationMeta(page, pageSize, total),
	}, nil
}

func (s *gradingService) activeQuiz(ctx context.Context, slug string) (models.Quiz, error) {
	if slug == "" {
		return models.Quiz{}, ErrQuizNotFound
	}

	quiz, err := s.quizzes.FindActiveBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Quiz{}, ErrQuizNotFound
		}
		return models.Quiz{}, fmt.Errorf("load quiz %q: %w", slug, err)
	}

	return quiz, nil
}

func (s *gradingService) publishGraded(ctx context.Context, quiz models.Quiz, submission models.Submission) {
	if s.events == nil {
		return
	}

	score := 0
	if submission.Score != nil {
		score = *submission.Score
	}
	event := SubmissionGradedEvent{
		SubmissionID: submission.ID,
		QuizID:       quiz.ID,
		QuizSlug:     quiz.Slug,
		Score:        score,
		TotalPoints:  submission.TotalPoints,
		Answered:     len(submission.Answers),
		SubmittedAt:  submission.SubmittedAt,
	}
	if err := s.events.PublishGraded(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("submission_id", submission.ID.String()).Msg("failed to publish submission graded event")
	}
}

func toRawAnswers(answers []dto.SubmitAnswerRequest) []grading.RawAnswer {
	raw := make([]grading.RawAnswer, 0, len(answers))
	for _, answer := range answers {
		questionID, err := uuid.Parse(strings.TrimSpace(answer.QuestionID))
		if err != nil {
			questionID = uuid.Nil
		}
		raw = append(raw, grading.RawAnswer{QuestionID: questionID, Text: answer.AnswerText})
	}
	return raw
}

// newSubmissionRecord builds the graded submission. The score is set before the single write,
// so no ungraded submission is ever stored.
func newSubmissionRecord(quiz models.Quiz, outcome grading.Outcome, submittedAt time.Time) models.Submission {
	score := outcome.Score
	submission := models.Submission{
		QuizID:      quiz.ID,
		SubmittedAt: submittedAt,
		Score:       &score,
		TotalPoints: outcome.TotalPoints,
		Answers:     make([]models.SubmissionAnswer, 0, len(outcome.Answers)),
	}

	for _, answer := range outcome.Answers {
		correct := answer.Correct
		submission.Answers = append(submission.Answers, models.SubmissionAnswer{
			QuestionID:   answer.QuestionID,
			AnswerText:   answer.Text,
			IsCorrect:    &correct,
			PointsEarned: answer.PointsEarned,
		})
	}

	return submission
}

func attachQuestions(submission *models.Submission, quiz models.Quiz, questions []models.Question) {
	byID := make(map[uuid.UUID]models.Question, len(questions))
	for _, question := range questions {
		byID[question.ID] = question
	}

	submission.Quiz = quiz
	for i := range submission.Answers {
		submission.Answers[i].Question = byID[submission.Answers[i].QuestionID]
	}
}

func outcomeLabel(err error) string {
	if errors.Is(err, ErrQuizNotFound) {
		return "not_found"
	}
	return "failed"
}

func normalizePaging(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
