package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/quiz-api/internal/dto"
	"github.com/noah-isme/quiz-api/internal/models"
)

func TestAdminQuizHandler_CreateGeneratesSlug(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/admin/quizzes", map[string]interface{}{
		"title":       "Geo",
		"description": "<b>world</b> capitals",
		"questions": []map[string]interface{}{
			{
				"question_text":       "Sky is blue",
				"question_type":       "TRUE_FALSE",
				"correct_answer_text": "true",
			},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body envelope[dto.QuizResponse]
	decodeResponse(t, resp, &body)
	require.Equal(t, "geo-2", body.Data.Slug)
	require.Equal(t, "world capitals", body.Data.Description)
	require.Equal(t, 1, body.Data.QuestionCount)

	var logs []models.ActivityLog
	require.NoError(t, env.db.Find(&logs).Error)
	require.Len(t, logs, 1)
	require.Equal(t, "quiz.created", logs[0].Action)
	require.Equal(t, "teacher-1", logs[0].ActorID)
	require.Equal(t, "teacher", logs[0].ActorRole)
}

func TestAdminQuizHandler_CreateRejectsTakenSlug(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/admin/quizzes", map[string]interface{}{
		"title": "Another",
		"slug":  "geo",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAdminQuizHandler_CreateReportsValidationDetails(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/admin/quizzes", map[string]interface{}{
		"description": "no title",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body envelope[any]
	decodeResponse(t, resp, &body)
	require.Equal(t, "validation failed", body.Message)
	require.Equal(t, "required", body.Errors["QuizCreateRequest.Title"])
}

func TestAdminQuizHandler_Import(t *testing.T) {
	env := newTestEnv(t)

	document := `{
		"title": "Imported",
		"questions": [
			{"question_text": "Pick one", "question_type": "MCQ", "points": 3,
			 "options": [{"option_text": "A", "is_correct": true}, {"option_text": "B"}]}
		]
	}`
	resp := env.do(t, http.MethodPost, "/api/admin/quizzes/import", document)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body envelope[dto.QuizResponse]
	decodeResponse(t, resp, &body)
	require.Equal(t, "imported", body.Data.Slug)
	require.Len(t, body.Data.Questions, 1)
	require.Equal(t, 3, body.Data.Questions[0].Points)
	require.Len(t, body.Data.Questions[0].Options, 2)
}

func TestAdminQuizHandler_ImportRejectsInvalidDocument(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/admin/quizzes/import", `{"title": "No questions", "questions": []}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/admin/quizzes/import", "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdminQuizHandler_GetShowsAnswerKey(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/admin/quizzes/"+env.quiz.ID.String(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body envelope[dto.QuizResponse]
	decodeResponse(t, resp, &body)
	require.Len(t, body.Data.Questions, 2)
	require.NotNil(t, body.Data.Questions[1].CorrectAnswer)
	require.Equal(t, "true", body.Data.Questions[1].CorrectAnswer.CorrectAnswer)
}

func TestAdminQuizHandler_NotFoundAndBadIdentifier(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/admin/quizzes/3f1c2b9e-8a34-4c1e-9d0e-2f6b7a8c9d01", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/admin/quizzes/not-a-uuid", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/admin/questions/3f1c2b9e-8a34-4c1e-9d0e-2f6b7a8c9d01", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminQuizHandler_DeactivateHidesPublicQuiz(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPatch, "/api/admin/quizzes/"+env.quiz.ID.String(), map[string]interface{}{
		"is_active": false,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/quizzes/geo", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminQuizHandler_AddQuestionChangesTotal(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/admin/quizzes/"+env.quiz.ID.String()+"/questions", map[string]interface{}{
		"question_text":       "Largest ocean",
		"question_type":       "TEXT",
		"points":              4,
		"correct_answer_text": "Pacific",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/v1/quizzes/geo/submit", dto.SubmitQuizRequest{
		Answers: []dto.SubmitAnswerRequest{{QuestionID: env.nile.ID.String(), AnswerText: "true"}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body envelope[dto.SubmissionResponse]
	decodeResponse(t, resp, &body)
	require.Equal(t, 7, body.Data.TotalPoints)
	require.Equal(t, 1, *body.Data.Score)
}

func TestAdminSubmissionHandler_ListAndGet(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/v1/quizzes/geo/submit", dto.SubmitQuizRequest{
		Answers: []dto.SubmitAnswerRequest{{QuestionID: env.capital.ID.String(), AnswerText: env.paris.ID.String()}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/admin/quizzes/"+env.quiz.ID.String()+"/submissions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list envelope[dto.SubmissionListResponse]
	decodeResponse(t, resp, &list)
	require.Len(t, list.Data.Items, 1)
	require.Equal(t, int64(1), list.Data.Pagination.TotalItems)

	resp = env.do(t, http.MethodGet, "/api/admin/submissions/"+list.Data.Items[0].ID.String(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var single envelope[dto.SubmissionResponse]
	decodeResponse(t, resp, &single)
	require.Equal(t, "Geo", single.Data.QuizTitle)
	require.Len(t, single.Data.Answers, 1)
	require.Equal(t, "Capital of France?", single.Data.Answers[0].QuestionText)
	require.Equal(t, "MCQ", single.Data.Answers[0].QuestionType)

	resp = env.do(t, http.MethodGet, "/api/admin/submissions/3f1c2b9e-8a34-4c1e-9d0e-2f6b7a8c9d01", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminActivityHandler_FiltersByAction(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/admin/quizzes", map[string]interface{}{"title": "History"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/admin/audit?action=quiz.created", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body envelope[dto.AdminActivityListResponse]
	decodeResponse(t, resp, &body)
	require.Len(t, body.Data.Items, 1)
	require.Equal(t, "quiz", body.Data.Items[0].EntityType)

	resp = env.do(t, http.MethodGet, "/api/admin/audit?action=quiz.deleted", nil)
	var empty envelope[dto.AdminActivityListResponse]
	decodeResponse(t, resp, &empty)
	require.Empty(t, empty.Data.Items)
}
