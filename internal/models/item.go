package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ItemKind selects which payload of a StudyItem is populated.
type ItemKind string

const (
	KindPractice        ItemKind = "practice"
	KindGrammarExercise ItemKind = "grammar-exercise"
)

type ExerciseType string

const (
	ExerciseRegular   ExerciseType = "regular"
	ExerciseClozeTest ExerciseType = "cloze-test"
)

type Deck struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// StudyItem is a single card. Practice items carry a word pair; grammar
// exercises carry either a question/answer pair or a cloze text with one
// answer per numbered blank.
type StudyItem struct {
	ID     int64    `json:"id"`
	DeckID int64    `json:"deck_id"`
	Kind   ItemKind `json:"kind"`

	Word           string `json:"word,omitempty"`
	Translation    string `json:"translation,omitempty"`
	Language       string `json:"language,omitempty"`
	TargetLanguage string `json:"target_language,omitempty"`
	Comment        string `json:"comment,omitempty"`
	Image          string `json:"image,omitempty"`

	ExerciseType        ExerciseType `json:"exercise_type,omitempty"`
	Question            string       `json:"question,omitempty"`
	Answer              string       `json:"answer,omitempty"`
	ClozeText           string       `json:"cloze_text,omitempty"`
	ClozeAnswers        []string     `json:"cloze_answers,omitempty"`
	ExerciseDescription string       `json:"exercise_description,omitempty"`
	LinkedGrammarRules  []int64      `json:"linked_grammar_rules,omitempty"`

	Statistics Statistics `json:"statistics"`
	CreatedAt  time.Time  `json:"created_at"`
}

// IsCloze reports whether the item is a cloze-test grammar exercise.
func (i StudyItem) IsCloze() bool {
	return i.Kind == KindGrammarExercise && i.ExerciseType == ExerciseClozeTest
}

// Clone returns a copy that shares no slices with i.
func (i StudyItem) Clone() StudyItem {
	out := i
	if i.ClozeAnswers != nil {
		out.ClozeAnswers = append([]string(nil), i.ClozeAnswers...)
	}
	if i.LinkedGrammarRules != nil {
		out.LinkedGrammarRules = append([]int64(nil), i.LinkedGrammarRules...)
	}
	return out
}

type Statistics struct {
	Correct       int `json:"correct"`
	AlmostCorrect int `json:"almost_correct"`
	Incorrect     int `json:"incorrect"`
}

type ItemFilter struct {
	DeckID       int64
	Kind         ItemKind
	ExerciseType ExerciseType
	Limit        int
	Offset       int
}

// Validate checks that the fields required by the item's variant are set.
func (i StudyItem) Validate() error {
	switch i.Kind {
	case KindPractice:
		if strings.TrimSpace(i.Word) == "" || strings.TrimSpace(i.Translation) == "" {
			return errors.New("practice item needs a word and a translation")
		}
	case KindGrammarExercise:
		switch i.ExerciseType {
		case ExerciseRegular:
			if strings.TrimSpace(i.Question) == "" || strings.TrimSpace(i.Answer) == "" {
				return errors.New("regular exercise needs a question and an answer")
			}
		case ExerciseClozeTest:
			if strings.TrimSpace(i.ClozeText) == "" || len(i.ClozeAnswers) == 0 {
				return errors.New("cloze test needs text and at least one answer")
			}
		default:
			return fmt.Errorf("unknown exercise type %q", i.ExerciseType)
		}
	default:
		return fmt.Errorf("unknown item kind %q", i.Kind)
	}
	return nil
}
