// Package grading scores quiz answers. Everything in it is pure: no I/O, no shared state.
package grading

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrUnknownKind is returned when a stored question type tag has no evaluator.
var ErrUnknownKind = errors.New("unknown question kind")

// Kind enumerates the gradable question types.
type Kind int

const (
	KindMultipleChoice Kind = iota + 1
	KindTrueFalse
	KindFreeText
)

// ParseKind maps a catalog type tag to its Kind. Tags match exactly, as stored.
func ParseKind(tag string) (Kind, error) {
	switch tag {
	case "MCQ":
		return KindMultipleChoice, nil
	case "TRUE_FALSE":
		return KindTrueFalse, nil
	case "TEXT":
		return KindFreeText, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, tag)
	}
}

func (k Kind) String() string {
	switch k {
	case KindMultipleChoice:
		return "MCQ"
	case KindTrueFalse:
		return "TRUE_FALSE"
	case KindFreeText:
		return "TEXT"
	default:
		return "UNKNOWN"
	}
}

// AnswerKey is the answer key of a question. The only implementations are ChoiceKey and TextKey.
type AnswerKey interface {
	Kind() Kind
	matches(raw string) bool
}

// Choice is one option of a multiple choice question.
type Choice struct {
	ID      uuid.UUID
	Correct bool
}

// ChoiceKey grades multiple choice questions: the raw answer is the id of the chosen option.
type ChoiceKey struct {
	Options []Choice
}

// Kind implements AnswerKey.
func (ChoiceKey) Kind() Kind { return KindMultipleChoice }

func (k ChoiceKey) matches(raw string) bool {
	chosen, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	for _, option := range k.Options {
		if option.ID == chosen {
			return option.Correct
		}
	}
	return false
}

// TextKey grades true/false and free text questions against an optional canonical answer.
type TextKey struct {
	kind      Kind
	Canonical *string
}

// NewTrueFalseKey builds the key of a true/false question.
func NewTrueFalseKey(canonical *string) TextKey {
	return TextKey{kind: KindTrueFalse, Canonical: canonical}
}

// NewFreeTextKey builds the key of a free text question.
func NewFreeTextKey(canonical *string) TextKey {
	return TextKey{kind: KindFreeText, Canonical: canonical}
}

// Kind implements AnswerKey.
func (k TextKey) Kind() Kind { return k.kind }

func (k TextKey) matches(raw string) bool {
	if k.Canonical == nil {
		return false
	}
	return normalizeText(*k.Canonical) == normalizeText(raw)
}

// normalizeText trims surrounding whitespace and lower-cases. Inner whitespace and punctuation are kept.
func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Question is the grading view of a catalog question.
type Question struct {
	ID     uuid.UUID
	Points int
	Key    AnswerKey
}

// Verdict is the outcome of grading one answer.
type Verdict struct {
	Correct      bool
	PointsEarned int
}

// Evaluate grades a raw answer against the question's key.
// A question without a key, or with an answer the key does not recognise, is incorrect and earns nothing.
func Evaluate(q Question, raw string) Verdict {
	if q.Key == nil || !q.Key.matches(raw) {
		return Verdict{}
	}
	points := q.Points
	if points < 0 {
		points = 0
	}
	return Verdict{Correct: true, PointsEarned: points}
}
