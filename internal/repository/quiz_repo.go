package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/noah-isme/quiz-api/internal/models"
)

// QuizFilter narrows quiz listings.
type QuizFilter struct {
	Page     int
	PageSize int
	Search   string
	IsActive *bool
}

// QuizRepository is the read side of the quiz catalog plus quiz record maintenance.
type QuizRepository interface {
	FindActiveBySlug(ctx context.Context, slug string) (models.Quiz, error)
	ListQuestions(ctx context.Context, quizID uuid.UUID) ([]models.Question, error)
	List(ctx context.Context, filter QuizFilter) ([]models.Quiz, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.Quiz, error)
	CountQuestions(ctx context.Context, quizIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, quiz *models.Quiz) error
	Update(ctx context.Context, quiz *models.Quiz) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type quizRepository struct {
	db *gorm.DB
}

// NewQuizRepository instantiates the repository.
func NewQuizRepository(db *gorm.DB) QuizRepository {
	return &quizRepository{db: db}
}

func (r *quizRepository) FindActiveBySlug(ctx context.Context, slug string) (models.Quiz, error) {
	var quiz models.Quiz
	if err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		Where("is_active = ?", true).
		First(&quiz).Error; err != nil {
		return models.Quiz{}, err
	}

	return quiz, nil
}

// ListQuestions loads every question of the quiz together with its options and canonical answer.
func (r *quizRepository) ListQuestions(ctx context.Context, quizID uuid.UUID) ([]models.Question, error) {
	var questions []models.Question
	if err := r.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("\"order\" ASC")
		}).
		Preload("CorrectAnswer").
		Where("quiz_id = ?", quizID).
		Order("\"order\" ASC").
		Order("created_at ASC").
		Find(&questions).Error; err != nil {
		return nil, err
	}

	return questions, nil
}

func (r *quizRepository) List(ctx context.Context, filter QuizFilter) ([]models.Quiz, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Quiz{})

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR slug LIKE ?", like, like)
	}

	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var quizzes []models.Quiz
	if err := query.Order("created_at DESC").Find(&quizzes).Error; err != nil {
		return nil, 0, err
	}

	return quizzes, total, nil
}

func (r *quizRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Quiz, error) {
	var quiz models.Quiz
	if err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("\"order\" ASC").Order("created_at ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("\"order\" ASC")
		}).
		Preload("Questions.CorrectAnswer").
		First(&quiz, "id = ?", id).Error; err != nil {
		return models.Quiz{}, err
	}

	return quiz, nil
}

func (r *quizRepository) CountQuestions(ctx context.Context, quizIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(quizIDs))
	if len(quizIDs) == 0 {
		return counts, nil
	}

	type row struct {
		QuizID uuid.UUID
		Total  int64
	}

	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.Question{}).
		Select("quiz_id, COUNT(*) AS total").
		Where("quiz_id IN ?", quizIDs).
		Group("quiz_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, item := range rows {
		counts[item.QuizID] = item.Total
	}

	return counts, nil
}

func (r *quizRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Quiz{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

// Create persists the quiz and any questions attached to it in one transaction.
func (r *quizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		questions := quiz.Questions
		quiz.Questions = nil
		if err := tx.Create(quiz).Error; err != nil {
			return err
		}

		for i := range questions {
			questions[i].QuizID = quiz.ID
			if err := createQuestion(tx, &questions[i]); err != nil {
				return err
			}
		}
		quiz.Questions = questions

		return nil
	})
}

func (r *quizRepository) Update(ctx context.Context, quiz *models.Quiz) error {
	return r.db.WithContext(ctx).
		Model(&models.Quiz{ID: quiz.ID}).
		Updates(map[string]interface{}{
			"title":       quiz.Title,
			"slug":        quiz.Slug,
			"description": quiz.Description,
			"is_active":   quiz.IsActive,
		}).Error
}

// Delete removes the quiz with its questions, options, canonical answers and submissions.
func (r *quizRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var quiz models.Quiz
		if err := tx.First(&quiz, "id = ?", id).Error; err != nil {
			return err
		}

		questionIDs := tx.Model(&models.Question{}).Select("id").Where("quiz_id = ?", id)
		submissionIDs := tx.Model(&models.Submission{}).Select("id").Where("quiz_id = ?", id)

		if err := tx.Where("submission_id IN (?)", submissionIDs).Delete(&models.SubmissionAnswer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("quiz_id = ?", id).Delete(&models.Submission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id IN (?)", questionIDs).Delete(&models.Option{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id IN (?)", questionIDs).Delete(&models.CanonicalAnswer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("quiz_id = ?", id).Delete(&models.Question{}).Error; err != nil {
			return err
		}

		return tx.Delete(&quiz).Error
	})
}
