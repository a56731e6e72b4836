package grading

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestParseKind(t *testing.T) {
	cases := map[string]Kind{
		"MCQ":        KindMultipleChoice,
		"TRUE_FALSE": KindTrueFalse,
		"TEXT":       KindFreeText,
	}
	for tag, want := range cases {
		got, err := ParseKind(tag)
		require.NoError(t, err, tag)
		require.Equal(t, want, got, tag)
	}

	for _, tag := range []string{"ESSAY", "mcq", "true_false", " TEXT ", ""} {
		_, err := ParseKind(tag)
		require.Error(t, err, tag)
		require.True(t, errors.Is(err, ErrUnknownKind), tag)
	}
}

func TestEvaluateMultipleChoice(t *testing.T) {
	wrong := uuid.New()
	right := uuid.New()
	q := Question{
		ID:     uuid.New(),
		Points: 2,
		Key:    ChoiceKey{Options: []Choice{{ID: wrong}, {ID: right, Correct: true}}},
	}

	require.Equal(t, Verdict{Correct: true, PointsEarned: 2}, Evaluate(q, right.String()))
	require.Equal(t, Verdict{}, Evaluate(q, wrong.String()))
	require.Equal(t, Verdict{}, Evaluate(q, uuid.NewString()), "foreign option id")
	require.Equal(t, Verdict{}, Evaluate(q, "B"), "malformed option id")
	require.Equal(t, Verdict{}, Evaluate(q, ""), "empty answer")
}

func TestEvaluateMultipleChoiceToleratesSurroundingWhitespace(t *testing.T) {
	right := uuid.New()
	q := Question{ID: uuid.New(), Points: 1, Key: ChoiceKey{Options: []Choice{{ID: right, Correct: true}}}}

	require.True(t, Evaluate(q, " "+right.String()+"\n").Correct)
}

func TestEvaluateTextIgnoresCaseAndSurroundingWhitespace(t *testing.T) {
	q := Question{ID: uuid.New(), Points: 3, Key: NewFreeTextKey(strPtr("paris"))}

	for _, answer := range []string{"Paris", " paris ", "PARIS", "\tparis\n"} {
		require.Equal(t, Verdict{Correct: true, PointsEarned: 3}, Evaluate(q, answer), answer)
	}
	for _, answer := range []string{"P aris", "paris.", "pariss", ""} {
		require.Equal(t, Verdict{}, Evaluate(q, answer), answer)
	}
}

func TestEvaluateTrueFalse(t *testing.T) {
	q := Question{ID: uuid.New(), Points: 1, Key: NewTrueFalseKey(strPtr(" True "))}

	require.True(t, Evaluate(q, "TRUE").Correct)
	require.False(t, Evaluate(q, "false").Correct)
	require.Equal(t, KindTrueFalse, q.Key.Kind())
}

func TestEvaluateWithoutCanonicalAnswerIsIncorrect(t *testing.T) {
	q := Question{ID: uuid.New(), Points: 5, Key: NewTrueFalseKey(nil)}
	require.Equal(t, Verdict{}, Evaluate(q, "true"))

	noKey := Question{ID: uuid.New(), Points: 5}
	require.Equal(t, Verdict{}, Evaluate(noKey, "anything"))
}

func TestEvaluateNeverAwardsNegativePoints(t *testing.T) {
	q := Question{ID: uuid.New(), Points: -4, Key: NewFreeTextKey(strPtr("x"))}

	verdict := Evaluate(q, "x")
	require.True(t, verdict.Correct)
	require.Zero(t, verdict.PointsEarned)
}
