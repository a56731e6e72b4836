package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/quiz-api/internal/models"
)

// OptionRequest describes one option of a multiple choice question.
type OptionRequest struct {
	Text      string `json:"option_text" validate:"required,max=500"`
	IsCorrect bool   `json:"is_correct"`
	Order     int    `json:"order"`
}

// QuestionCreateRequest adds a question to a quiz.
type QuestionCreateRequest struct {
	Text              string          `json:"question_text" validate:"required,max=5000"`
	Type              string          `json:"question_type" validate:"required,oneof=MCQ TRUE_FALSE TEXT"`
	Order             int             `json:"order"`
	Points            *int            `json:"points" validate:"omitempty,gte=0"`
	Options           []OptionRequest `json:"options" validate:"omitempty,dive"`
	CorrectAnswerText *string         `json:"correct_answer_text" validate:"omitempty,max=5000"`
}

// QuestionUpdateRequest patches a question. A non-nil Options replaces the option set.
type QuestionUpdateRequest struct {
	Text              *string         `json:"question_text" validate:"omitempty,min=1,max=5000"`
	Type              *string         `json:"question_type" validate:"omitempty,oneof=MCQ TRUE_FALSE TEXT"`
	Order             *int            `json:"order"`
	Points            *int            `json:"points" validate:"omitempty,gte=0"`
	Options           []OptionRequest `json:"options" validate:"omitempty,dive"`
	CorrectAnswerText *string         `json:"correct_answer_text" validate:"omitempty,max=5000"`
}

// QuizCreateRequest creates a quiz, optionally with its questions.
type QuizCreateRequest struct {
	Title       string                  `json:"title" validate:"required,max=200"`
	Slug        string                  `json:"slug" validate:"omitempty,max=200"`
	Description string                  `json:"description" validate:"max=5000"`
	IsActive    *bool                   `json:"is_active"`
	Questions   []QuestionCreateRequest `json:"questions" validate:"omitempty,dive"`
}

// QuizUpdateRequest patches quiz metadata.
type QuizUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Slug        *string `json:"slug" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	IsActive    *bool   `json:"is_active"`
}

// QuizListRequest defines filters for listing quizzes.
type QuizListRequest struct {
	Page     int
	PageSize int
	Search   string
	IsActive *bool
}

// OptionResponse is the admin view of an option, including its correctness flag.
type OptionResponse struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"option_text"`
	IsCorrect bool      `json:"is_correct"`
	Order     int       `json:"order"`
}

// CanonicalAnswerResponse is the admin view of a canonical answer.
type CanonicalAnswerResponse struct {
	ID            uuid.UUID `json:"id"`
	CorrectAnswer string    `json:"correct_answer"`
}

// QuestionResponse is the admin view of a question, answer key included.
type QuestionResponse struct {
	ID            uuid.UUID                `json:"id"`
	Text          string                   `json:"question_text"`
	Type          string                   `json:"question_type"`
	Order         int                      `json:"order"`
	Points        int                      `json:"points"`
	Options       []OptionResponse         `json:"options"`
	CorrectAnswer *CanonicalAnswerResponse `json:"correct_answer"`
}

// QuizResponse is the admin view of a quiz.
type QuizResponse struct {
	ID            uuid.UUID          `json:"id"`
	Title         string             `json:"title"`
	Slug          string             `json:"slug"`
	Description   string             `json:"description"`
	IsActive      bool               `json:"is_active"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	QuestionCount int                `json:"question_count"`
	Questions     []QuestionResponse `json:"questions,omitempty"`
}

// QuizListResponse wraps paginated quizzes.
type QuizListResponse struct {
	Items      []QuizResponse `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}

// PublicOptionResponse exposes an option to quiz takers without its correctness flag.
type PublicOptionResponse struct {
	ID    uuid.UUID `json:"id"`
	Text  string    `json:"option_text"`
	Order int       `json:"order"`
}

// PublicQuestionResponse exposes a question to quiz takers without any answer key.
type PublicQuestionResponse struct {
	ID      uuid.UUID              `json:"id"`
	Text    string                 `json:"question_text"`
	Type    string                 `json:"question_type"`
	Order   int                    `json:"order"`
	Points  int                    `json:"points"`
	Options []PublicOptionResponse `json:"options"`
}

// PublicQuizResponse is served to anonymous quiz takers.
type PublicQuizResponse struct {
	ID            uuid.UUID                `json:"id"`
	Title         string                   `json:"title"`
	Slug          string                   `json:"slug"`
	Description   string                   `json:"description"`
	QuestionCount int                      `json:"question_count"`
	Questions     []PublicQuestionResponse `json:"questions"`
}

// NewQuestionResponse converts a question model into its admin DTO.
func NewQuestionResponse(model models.Question) QuestionResponse {
	response := QuestionResponse{
		ID:      model.ID,
		Text:    model.Text,
		Type:    model.Type,
		Order:   model.Order,
		Points:  model.Points,
		Options: make([]OptionResponse, 0, len(model.Options)),
	}

	for _, option := range model.Options {
		response.Options = append(response.Options, OptionResponse{
			ID:        option.ID,
			Text:      option.Text,
			IsCorrect: option.IsCorrect,
			Order:     option.Order,
		})
	}

	if model.CorrectAnswer != nil {
		response.CorrectAnswer = &CanonicalAnswerResponse{
			ID:            model.CorrectAnswer.ID,
			CorrectAnswer: model.CorrectAnswer.Text,
		}
	}

	return response
}

// NewQuizResponse converts a quiz model into its admin DTO.
func NewQuizResponse(model models.Quiz) QuizResponse {
	response := QuizResponse{
		ID:            model.ID,
		Title:         model.Title,
		Slug:          model.Slug,
		Description:   model.Description,
		IsActive:      model.IsActive,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
		QuestionCount: len(model.Questions),
	}

	if len(model.Questions) > 0 {
		response.Questions = make([]QuestionResponse, 0, len(model.Questions))
		for _, question := range model.Questions {
			response.Questions = append(response.Questions, NewQuestionResponse(question))
		}
	}

	return response
}

// NewPublicQuizResponse builds the answer-free quiz view.
func NewPublicQuizResponse(quiz models.Quiz, questions []models.Question) PublicQuizResponse {
	response := PublicQuizResponse{
		ID:            quiz.ID,
		Title:         quiz.Title,
		Slug:          quiz.Slug,
		Description:   quiz.Description,
		QuestionCount: len(questions),
		Questions:     make([]PublicQuestionResponse, 0, len(questions)),
	}

	for _, question := range questions {
		public := PublicQuestionResponse{
			ID:      question.ID,
			Text:    question.Text,
			Type:    question.Type,
			Order:   question.Order,
			Points:  question.Points,
			Options: make([]PublicOptionResponse, 0, len(question.Options)),
		}
		for _, option := range question.Options {
			public.Options = append(public.Options, PublicOptionResponse{
				ID:    option.ID,
				Text:  option.Text,
				Order: option.Order,
			})
		}
		response.Questions = append(response.Questions, public)
	}

	return response
}
