package grading

import (
	"errors"
	"slices"
	"strings"

	"github.com/vytor/vocabflash/internal/models"
)

var (
	ErrIncompleteBlanks = errors.New("grading: every blank must be filled before grading")
	ErrNotCloze         = errors.New("grading: item is not a cloze test")
)

const (
	almostCorrectMaxDistance = 2
	almostCorrectMaxRatio    = 0.4
	// Answers this short or shorter are never considered near misses.
	almostCorrectMinLength = 2
)

// Recorder receives exactly one verdict per grading action.
type Recorder interface {
	RecordVerdict(itemID int64, verdict models.Verdict)
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(itemID int64, verdict models.Verdict)

func (f RecorderFunc) RecordVerdict(itemID int64, verdict models.Verdict) {
	f(itemID, verdict)
}

// Result carries everything the result screen needs about a graded answer.
type Result struct {
	Verdict models.Verdict `json:"verdict"`
	// Expected is the reference answer as stored on the card.
	Expected string `json:"expected,omitempty"`
	// Distance and ClosestAnswer are set when a near-miss check ran.
	Distance      int    `json:"distance,omitempty"`
	ClosestAnswer string `json:"closest_answer,omitempty"`

	Cloze         bool     `json:"cloze"`
	Blanks        []bool   `json:"blanks,omitempty"`
	ExpectedBlank []string `json:"expected_blanks,omitempty"`
	CorrectBlanks int      `json:"correct_blanks,omitempty"`
	TotalBlanks   int      `json:"total_blanks,omitempty"`
}

// ScoreDelta is the contribution of this result to a session score.
func (r Result) ScoreDelta() models.Score {
	if r.Cloze {
		return models.Score{Correct: r.CorrectBlanks, Total: r.TotalBlanks}
	}
	if r.Verdict == models.VerdictCorrect {
		return models.Score{Correct: 1, Total: 1}
	}
	return models.Score{Total: 1}
}

type Grader struct {
	recorder Recorder
}

// NewGrader returns a Grader that reports verdicts to rec. A nil rec
// discards them.
func NewGrader(rec Recorder) *Grader {
	if rec == nil {
		rec = RecorderFunc(func(int64, models.Verdict) {})
	}
	return &Grader{recorder: rec}
}

// ReferenceAnswer returns the answer expected for a non-cloze item.
func ReferenceAnswer(item models.StudyItem, dir models.Direction) string {
	if item.Kind == models.KindGrammarExercise {
		return item.Answer
	}
	if dir == models.DirectionReverse {
		return item.Word
	}
	return item.Translation
}

// Grade grades a typed answer for a practice item or a regular grammar
// exercise. Alternatives in both the reference and the input are separated
// by '/'.
func (g *Grader) Grade(item models.StudyItem, dir models.Direction, input string) Result {
	expected := ReferenceAnswer(item, dir)
	res := Evaluate(expected, input)
	g.recorder.RecordVerdict(item.ID, res.Verdict)
	return res
}

// Evaluate grades input against expected without recording anything.
func Evaluate(expected, input string) Result {
	refs := alternatives(expected)
	given := alternatives(input)
	res := Result{Expected: expected, Verdict: models.VerdictIncorrect}

	if len(given) > 0 && allMatch(given, refs) {
		res.Verdict = models.VerdictCorrect
		return res
	}

	if len(given) != 1 || len([]rune(given[0])) <= almostCorrectMinLength || len(refs) == 0 {
		return res
	}

	user := given[0]
	userLen := len([]rune(user))
	best, bestLen, closest := -1, 0, ""
	for _, ref := range refs {
		d := EditDistance(user, ref)
		if best < 0 || d < best {
			best = d
			bestLen = max(userLen, len([]rune(ref)))
			closest = ref
		}
	}
	res.Distance = best
	res.ClosestAnswer = closest

	ratio := float64(best) / float64(bestLen)
	// Equivalent to best <= 2; the ratio clause never decides the outcome.
	if best <= almostCorrectMaxDistance && (best <= almostCorrectMaxDistance || ratio <= almostCorrectMaxRatio) {
		res.Verdict = models.VerdictAlmostCorrect
	}
	return res
}

// GradeCloze grades one answer per blank. It refuses to grade, and records
// nothing, while any blank is empty.
func (g *Grader) GradeCloze(item models.StudyItem, answers []string) (Result, error) {
	if !item.IsCloze() {
		return Result{}, ErrNotCloze
	}
	total := len(item.ClozeAnswers)
	for i := 0; i < total; i++ {
		if i >= len(answers) || strings.TrimSpace(answers[i]) == "" {
			return Result{}, ErrIncompleteBlanks
		}
	}

	res := Result{
		Cloze:         true,
		Blanks:        make([]bool, total),
		ExpectedBlank: append([]string(nil), item.ClozeAnswers...),
		TotalBlanks:   total,
		Verdict:       models.VerdictIncorrect,
	}
	for i, want := range item.ClozeAnswers {
		if Normalize(answers[i]) == Normalize(want) {
			res.Blanks[i] = true
			res.CorrectBlanks++
		}
	}
	if res.CorrectBlanks == total {
		res.Verdict = models.VerdictCorrect
	}

	g.recorder.RecordVerdict(item.ID, res.Verdict)
	return res, nil
}

func alternatives(s string) []string {
	parts := strings.Split(s, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if n := Normalize(p); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func allMatch(given, refs []string) bool {
	for _, g := range given {
		if !slices.Contains(refs, g) {
			return false
		}
	}
	return true
}
