package grading

import "github.com/google/uuid"

// RawAnswer is one answer as received from the caller.
type RawAnswer struct {
	QuestionID uuid.UUID
	Text       string
}

// GradedAnswer is a raw answer resolved to a question of the quiz and graded.
type GradedAnswer struct {
	QuestionID   uuid.UUID
	Text         string
	Correct      bool
	PointsEarned int
}

// Outcome is the aggregate result for one submission.
type Outcome struct {
	TotalPoints int
	Score       int
	Answers     []GradedAnswer
	// Dropped holds answers that did not resolve to a question of the quiz,
	// or repeated a question already answered in the same submission.
	Dropped []RawAnswer
}

// MaxAchievable is the sum of points of the answered questions.
func (o Outcome) MaxAchievable(questions []Question) int {
	answered := make(map[uuid.UUID]struct{}, len(o.Answers))
	for _, answer := range o.Answers {
		answered[answer.QuestionID] = struct{}{}
	}
	total := 0
	for _, q := range questions {
		if _, ok := answered[q.ID]; ok {
			total += q.Points
		}
	}
	return total
}

// Aggregate grades answers against the full question set of a quiz.
// TotalPoints covers every question, answered or not.
func Aggregate(questions []Question, answers []RawAnswer) Outcome {
	byID := make(map[uuid.UUID]Question, len(questions))
	outcome := Outcome{}
	for _, q := range questions {
		byID[q.ID] = q
		outcome.TotalPoints += q.Points
	}

	seen := make(map[uuid.UUID]struct{}, len(answers))
	outcome.Answers = make([]GradedAnswer, 0, len(answers))
	for _, raw := range answers {
		q, ok := byID[raw.QuestionID]
		if !ok {
			outcome.Dropped = append(outcome.Dropped, raw)
			continue
		}
		if _, dup := seen[q.ID]; dup {
			outcome.Dropped = append(outcome.Dropped, raw)
			continue
		}
		seen[q.ID] = struct{}{}

		verdict := Evaluate(q, raw.Text)
		outcome.Answers = append(outcome.Answers, GradedAnswer{
			QuestionID:   q.ID,
			Text:         raw.Text,
			Correct:      verdict.Correct,
			PointsEarned: verdict.PointsEarned,
		})
		if verdict.Correct {
			outcome.Score += verdict.PointsEarned
		}
	}

	return outcome
}
