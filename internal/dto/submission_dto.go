package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/quiz-api/internal/models"
)

// SubmitAnswerRequest is one answer of a submission. For multiple choice questions AnswerText
// carries the chosen option id. QuestionID is not validated here; ids that do not resolve to a
// question of the quiz are dropped during grading.
type SubmitAnswerRequest struct {
	QuestionID string `json:"question_id"`
	AnswerText string `json:"answer_text" validate:"max=10000"`
}

// SubmitQuizRequest is the payload posted to grade a quiz attempt.
type SubmitQuizRequest struct {
	Answers []SubmitAnswerRequest `json:"answers" validate:"max=1000,dive"`
}

// SubmissionListRequest defines paging for submission listings.
type SubmissionListRequest struct {
	Page     int
	PageSize int
}

// SubmissionAnswerResponse is the per-question breakdown of a submission.
type SubmissionAnswerResponse struct {
	ID           uuid.UUID `json:"id"`
	QuestionID   uuid.UUID `json:"question"`
	QuestionText string    `json:"question_text"`
	QuestionType string    `json:"question_type"`
	AnswerText   string    `json:"answer_text"`
	IsCorrect    *bool     `json:"is_correct"`
	PointsEarned int       `json:"points_earned"`
}

// SubmissionResponse is returned after grading and when viewing a submission.
type SubmissionResponse struct {
	ID          uuid.UUID                  `json:"id"`
	QuizID      uuid.UUID                  `json:"quiz"`
	QuizTitle   string                     `json:"quiz_title"`
	SubmittedAt time.Time                  `json:"submitted_at"`
	Score       *int                       `json:"score"`
	TotalPoints int                        `json:"total_points"`
	Answers     []SubmissionAnswerResponse `json:"answers"`
}

// SubmissionListResponse wraps paginated submissions.
type SubmissionListResponse struct {
	Items      []SubmissionResponse `json:"items"`
	Pagination PaginationMeta       `json:"pagination"`
}

// NewSubmissionResponse converts a submission model into a DTO. Question details are taken from
// the preloaded association when present.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:          model.ID,
		QuizID:      model.QuizID,
		QuizTitle:   model.Quiz.Title,
		SubmittedAt: model.SubmittedAt,
		Score:       model.Score,
		TotalPoints: model.TotalPoints,
		Answers:     make([]SubmissionAnswerResponse, 0, len(model.Answers)),
	}

	for _, answer := range model.Answers {
		response.Answers = append(response.Answers, SubmissionAnswerResponse{
			ID:           answer.ID,
			QuestionID:   answer.QuestionID,
			QuestionText: answer.Question.Text,
			QuestionType: answer.Question.Type,
			AnswerText:   answer.AnswerText,
			IsCorrect:    answer.IsCorrect,
			PointsEarned: answer.PointsEarned,
		})
	}

	return response
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(items []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(items))
	for _, submission := range items {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
