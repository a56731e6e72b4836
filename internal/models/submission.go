package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Submission is one graded attempt at a quiz. It is written once together with its answers.
type Submission struct {
	ID          uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID      uuid.UUID          `gorm:"type:uuid;not null;index" json:"quiz_id"`
	SubmittedAt time.Time          `gorm:"not null" json:"submitted_at"`
	Score       *int               `json:"score"`
	TotalPoints int                `gorm:"not null;default:0" json:"total_points"`
	Quiz        Quiz               `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"quiz"`
	Answers     []SubmissionAnswer `gorm:"foreignKey:SubmissionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"answers"`
}

// BeforeCreate assigns an identifier and submission timestamp when missing.
func (s *Submission) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.SubmittedAt.IsZero() {
		s.SubmittedAt = time.Now().UTC()
	}
	return nil
}

// SubmissionAnswer is the graded response to one question within a submission.
// IsCorrect is nil while the answer is ungraded.
type SubmissionAnswer struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SubmissionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_submission_question" json:"submission_id"`
	QuestionID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_submission_question" json:"question_id"`
	AnswerText   string    `gorm:"type:text;not null" json:"answer_text"`
	IsCorrect    *bool     `json:"is_correct"`
	PointsEarned int       `gorm:"not null;default:0" json:"points_earned"`
	Question     Question  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"question"`
}

// BeforeCreate assigns an identifier when the caller did not provide one.
func (a *SubmissionAnswer) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
