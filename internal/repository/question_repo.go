package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/quiz-api/internal/models"
)

// QuestionRepository maintains questions together with their answer keys.
type QuestionRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (models.Question, error)
	Create(ctx context.Context, question *models.Question) error
	Update(ctx context.Context, question *models.Question, replaceOptions bool, canonical *string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository instantiates the repository.
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Question, error) {
	var question models.Question
	if err := r.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("\"order\" ASC")
		}).
		Preload("CorrectAnswer").
		First(&question, "id = ?", id).Error; err != nil {
		return models.Question{}, err
	}

	return question, nil
}

func (r *questionRepository) Create(ctx context.Context, question *models.Question) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return createQuestion(tx, question)
	})
}

// Update saves the question fields. When replaceOptions is set the option set is swapped for
// question.Options; a non-nil canonical upserts the canonical answer. A multiple choice question
// never keeps a canonical answer.
func (r *questionRepository) Update(ctx context.Context, question *models.Question, replaceOptions bool, canonical *string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Question{ID: question.ID}).Updates(map[string]interface{}{
			"question_text": question.Text,
			"type":          question.Type,
			"order":         question.Order,
			"points":        question.Points,
		}).Error; err != nil {
			return err
		}

		if replaceOptions {
			if err := tx.Where("question_id = ?", question.ID).Delete(&models.Option{}).Error; err != nil {
				return err
			}
			for i := range question.Options {
				question.Options[i].ID = uuid.Nil
				question.Options[i].QuestionID = question.ID
			}
			if len(question.Options) > 0 {
				if err := tx.Create(&question.Options).Error; err != nil {
					return err
				}
			}
		}

		if question.UsesOptions() {
			if err := tx.Where("question_id = ?", question.ID).Delete(&models.CanonicalAnswer{}).Error; err != nil {
				return err
			}
			question.CorrectAnswer = nil
			canonical = nil
		}

		if canonical != nil {
			answer := models.CanonicalAnswer{QuestionID: question.ID, Text: *canonical}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "question_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"correct_answer"}),
			}).Create(&answer).Error; err != nil {
				return err
			}
			question.CorrectAnswer = &answer
		}

		return nil
	})
}

func (r *questionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var question models.Question
		if err := tx.First(&question, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", id).Delete(&models.SubmissionAnswer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", id).Delete(&models.Option{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", id).Delete(&models.CanonicalAnswer{}).Error; err != nil {
			return err
		}
		return tx.Delete(&question).Error
	})
}

// createQuestion inserts the question row, then its options or canonical answer, inside tx.
func createQuestion(tx *gorm.DB, question *models.Question) error {
	options := question.Options
	answer := question.CorrectAnswer
	question.Options = nil
	question.CorrectAnswer = nil

	if err := tx.Create(question).Error; err != nil {
		return err
	}

	if question.UsesOptions() && len(options) > 0 {
		for i := range options {
			options[i].QuestionID = question.ID
		}
		if err := tx.Create(&options).Error; err != nil {
			return err
		}
	}
	if question.UsesOptions() {
		question.Options = options
	}

	if question.UsesCanonicalAnswer() && answer != nil {
		answer.QuestionID = question.ID
		if err := tx.Create(answer).Error; err != nil {
			return err
		}
		question.CorrectAnswer = answer
	}

	return nil
}
