package service

import (
	"fmt"

	"github.com/noah-isme/quiz-api/internal/grading"
	"github.com/noah-isme/quiz-api/internal/models"
)

// toGradingQuestions builds the evaluator view of catalog questions. An unknown type tag fails
// the whole conversion instead of silently grading as incorrect.
func toGradingQuestions(questions []models.Question) ([]grading.Question, error) {
	result := make([]grading.Question, 0, len(questions))
	for _, question := range questions {
		key, err := answerKeyFor(question)
		if err != nil {
			return nil, fmt.Errorf("question %s: %w", question.ID, err)
		}
		result = append(result, grading.Question{
			ID:     question.ID,
			Points: question.Points,
			Key:    key,
		})
	}
	return result, nil
}

func answerKeyFor(question models.Question) (grading.AnswerKey, error) {
	kind, err := grading.ParseKind(question.Type)
	if err != nil {
		return nil, err
	}

	var canonical *string
	if question.CorrectAnswer != nil {
		text := question.CorrectAnswer.Text
		canonical = &text
	}

	switch kind {
	case grading.KindMultipleChoice:
		choices := make([]grading.Choice, 0, len(question.Options))
		for _, option := range question.Options {
			choices = append(choices, grading.Choice{ID: option.ID, Correct: option.IsCorrect})
		}
		return grading.ChoiceKey{Options: choices}, nil
	case grading.KindTrueFalse:
		return grading.NewTrueFalseKey(canonical), nil
	case grading.KindFreeText:
		return grading.NewFreeTextKey(canonical), nil
	default:
		return nil, fmt.Errorf("%w: %s", grading.ErrUnknownKind, kind)
	}
}
