package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Question type tags as stored in the catalog.
const (
	QuestionTypeMultipleChoice = "MCQ"
	QuestionTypeTrueFalse      = "TRUE_FALSE"
	QuestionTypeText           = "TEXT"
)

// Quiz is a published collection of ordered questions reachable through its slug.
type Quiz struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Slug        string     `gorm:"size:200;not null;uniqueIndex" json:"slug"`
	Description string     `gorm:"type:text" json:"description"`
	IsActive    bool       `gorm:"not null" json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Questions   []Question `gorm:"foreignKey:QuizID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"questions,omitempty"`
}

// BeforeCreate assigns an identifier when the caller did not provide one.
func (q *Quiz) BeforeCreate(*gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// Question is a single gradable item of a quiz.
type Question struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID        uuid.UUID        `gorm:"type:uuid;not null;index" json:"quiz_id"`
	Text          string           `gorm:"column:question_text;type:text;not null" json:"question_text"`
	Type          string           `gorm:"size:20;not null" json:"question_type"`
	Order         int              `gorm:"not null" json:"order"`
	Points        int              `gorm:"not null" json:"points"`
	CreatedAt     time.Time        `json:"created_at"`
	Options       []Option         `gorm:"foreignKey:QuestionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"options,omitempty"`
	CorrectAnswer *CanonicalAnswer `gorm:"foreignKey:QuestionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"correct_answer,omitempty"`
}

// BeforeCreate assigns an identifier when the caller did not provide one.
func (q *Question) BeforeCreate(*gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// Option is one selectable choice of a multiple choice question.
type Option struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null;index" json:"question_id"`
	Text       string    `gorm:"column:option_text;size:500;not null" json:"option_text"`
	IsCorrect  bool      `gorm:"not null;default:false" json:"is_correct"`
	Order      int       `gorm:"not null" json:"order"`
}

// BeforeCreate assigns an identifier when the caller did not provide one.
func (o *Option) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// CanonicalAnswer holds the expected answer of a true/false or text question.
type CanonicalAnswer struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"question_id"`
	Text       string    `gorm:"column:correct_answer;type:text;not null" json:"correct_answer"`
	CreatedAt  time.Time `json:"created_at"`
}

// BeforeCreate assigns an identifier when the caller did not provide one.
func (a *CanonicalAnswer) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// UsesOptions reports whether the question is answered by picking an option.
func (q Question) UsesOptions() bool {
	return q.Type == QuestionTypeMultipleChoice
}

// UsesCanonicalAnswer reports whether the question is compared against a canonical answer.
func (q Question) UsesCanonicalAnswer() bool {
	return q.Type == QuestionTypeTrueFalse || q.Type == QuestionTypeText
}
