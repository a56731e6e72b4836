package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/quiz-api/internal/models"
)

// SubmissionFilter narrows submission listings.
type SubmissionFilter struct {
	QuizID   uuid.UUID
	Page     int
	PageSize int
}

// SubmissionRepository persists graded submissions. Submissions are never updated or deleted here.
type SubmissionRepository interface {
	CreateWithAnswers(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (models.Submission, error)
	ListByQuiz(ctx context.Context, filter SubmissionFilter) ([]models.Submission, int64, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Submission{}).
		Preload("Quiz").
		Preload("Answers").
		Preload("Answers.Question")
}

// CreateWithAnswers writes the submission and all of its answers in a single transaction.
// Either every row becomes visible or none does.
func (r *submissionRepository) CreateWithAnswers(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		answers := submission.Answers
		submission.Answers = nil

		if err := tx.Omit(clause.Associations).Create(submission).Error; err != nil {
			return err
		}

		for i := range answers {
			answers[i].SubmissionID = submission.ID
		}
		if len(answers) > 0 {
			if err := tx.Omit(clause.Associations).Create(&answers).Error; err != nil {
				return err
			}
		}

		submission.Answers = answers
		return nil
	})
}

func (r *submissionRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).First(&submission, "id = ?", id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) ListByQuiz(ctx context.Context, filter SubmissionFilter) ([]models.Submission, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Submission{}).Where("quiz_id = ?", filter.QuizID)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var submissions []models.Submission
	if err := query.
		Preload("Quiz").
		Preload("Answers").
		Preload("Answers.Question").
		Order("submitted_at DESC").
		Find(&submissions).Error; err != nil {
		return nil, 0, err
	}

	return submissions, total, nil
}
