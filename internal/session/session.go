// Package session runs a single study session: it owns the shuffled card
// queue, grades answers, and re-queues missed cards within the configured
// repetition budgets.
package session

import (
	"errors"
	"math/rand"
	"slices"
	"time"

	"github.com/vytor/vocabflash/internal/cloze"
	"github.com/vytor/vocabflash/internal/grading"
	"github.com/vytor/vocabflash/internal/models"
)

var (
	ErrNotReady        = errors.New("session: no current card")
	ErrAlreadyAnswered = errors.New("session: current card already answered")
	ErrNoPendingResult = errors.New("session: no graded answer to advance past")
	ErrComplete        = errors.New("session: session is complete")
	ErrNotCloze        = errors.New("session: current card is not a cloze test")
	ErrClozeAnswer     = errors.New("session: cloze test expects one answer per blank")
)

type State int

const (
	StateActive State = iota
	StateShowingResult
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateShowingResult:
		return "showing_result"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// LedgerEntry counts how often a card has been re-queued this session.
type LedgerEntry struct {
	IncorrectCount     int `json:"incorrect_count"`
	AlmostCorrectCount int `json:"almost_correct_count"`
}

type clozeFields struct {
	text    string
	answers []string
}

type Option func(*Session)

// WithRand sets the random source used for queue order, re-insertion
// offsets and cloze shuffles.
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) {
		s.rng = rng
	}
}

// Session is not safe for concurrent use.
type Session struct {
	items     []models.StudyItem
	queue     []models.StudyItem
	index     int
	state     State
	ledger    map[int64]LedgerEntry
	score     models.Score
	last      *grading.Result
	settings  models.Settings
	direction models.Direction
	grader    *grading.Grader
	rng       *rand.Rand

	// Cloze fields of the current card before its first shuffle.
	unshuffled *clozeFields
}

// New starts a session over items. The caller's slice is copied and never
// modified.
func New(items []models.StudyItem, settings models.Settings, direction models.Direction, grader *grading.Grader, opts ...Option) *Session {
	s := &Session{
		settings:  settings,
		direction: direction,
		grader:    grader,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.grader == nil {
		s.grader = grading.NewGrader(nil)
	}

	s.items = make([]models.StudyItem, len(items))
	for i, item := range items {
		s.items[i] = item.Clone()
	}
	s.Reset()
	return s
}

// Reset restarts the session from the original items: fresh shuffle,
// empty ledger, zero score. Re-queued copies from the previous run are gone.
func (s *Session) Reset() {
	s.queue = make([]models.StudyItem, len(s.items))
	for i, item := range s.items {
		s.queue[i] = item.Clone()
	}
	s.rng.Shuffle(len(s.queue), func(i, j int) {
		s.queue[i], s.queue[j] = s.queue[j], s.queue[i]
	})
	s.index = 0
	s.state = StateActive
	s.ledger = make(map[int64]LedgerEntry)
	s.score = models.Score{}
	s.last = nil
	s.unshuffled = nil
}

// Current returns the card at the cursor. It reports false for an empty
// session or once the session is complete.
func (s *Session) Current() (models.StudyItem, bool) {
	if s.state == StateComplete || s.index >= len(s.queue) {
		return models.StudyItem{}, false
	}
	return s.queue[s.index], true
}

func (s *Session) State() State { return s.state }
func (s *Session) Index() int { return s.index }
func (s *Session) Len() int { return len(s.queue) }
func (s *Session) Score() models.Score { return s.score }
func (s *Session) Settings() models.Settings { return s.settings }
func (s *Session) Direction() models.Direction { return s.direction }
func (s *Session) Ledger(itemID int64) LedgerEntry { return s.ledger[itemID] }

// LastResult returns the pending result while the session shows one.
func (s *Session) LastResult() (grading.Result, bool) {
	if s.state != StateShowingResult || s.last == nil {
		return grading.Result{}, false
	}
	return *s.last, true
}

// Queue returns a copy of the queue, consumed positions included.
func (s *Session) Queue() []models.StudyItem {
	return slices.Clone(s.queue)
}

func (s *Session) current() (models.StudyItem, error) {
	if s.state == StateComplete {
		return models.StudyItem{}, ErrComplete
	}
	item, ok := s.Current()
	if !ok {
		return models.StudyItem{}, ErrNotReady
	}
	if s.state == StateShowingResult {
		return models.StudyItem{}, ErrAlreadyAnswered
	}
	return item, nil
}

// SubmitAnswer grades a typed answer for the current card.
func (s *Session) SubmitAnswer(input string) (grading.Result, error) {
	item, err := s.current()
	if err != nil {
		return grading.Result{}, err
	}
	if item.IsCloze() {
		return grading.Result{}, ErrClozeAnswer
	}
	res := s.grader.Grade(item, s.direction, input)
	s.showResult(res)
	return res, nil
}

// SubmitCloze grades the blanks of the current cloze card. While any blank
// is empty it returns grading.ErrIncompleteBlanks and nothing changes.
func (s *Session) SubmitCloze(answers []string) (grading.Result, error) {
	item, err := s.current()
	if err != nil {
		return grading.Result{}, err
	}
	if !item.IsCloze() {
		return grading.Result{}, ErrNotCloze
	}
	res, err := s.grader.GradeCloze(item, answers)
	if err != nil {
		return grading.Result{}, err
	}
	s.showResult(res)
	return res, nil
}

func (s *Session) showResult(res grading.Result) {
	s.last = &res
	s.score = s.score.Add(res.ScoreDelta())
	s.state = StateShowingResult
}

// Advance moves past the shown result. A missed non-cloze card is put back
// into the remaining queue while its budget for that verdict lasts.
func (s *Session) Advance() error {
	switch s.state {
	case StateComplete:
		return ErrComplete
	case StateActive:
		return ErrNoPendingResult
	}

	if !s.last.Cloze {
		s.requeue(s.queue[s.index], s.last.Verdict)
	}

	s.index++
	s.last = nil
	s.unshuffled = nil
	if s.index < len(s.queue) {
		s.state = StateActive
	} else {
		s.state = StateComplete
	}
	return nil
}

func (s *Session) requeue(item models.StudyItem, verdict models.Verdict) {
	entry := s.ledger[item.ID]
	switch {
	case verdict == models.VerdictAlmostCorrect && entry.AlmostCorrectCount < s.settings.AlmostCorrectRepetitions:
		entry.AlmostCorrectCount++
	case verdict == models.VerdictIncorrect && entry.IncorrectCount < s.settings.IncorrectRepetitions:
		entry.IncorrectCount++
	default:
		return
	}
	s.ledger[item.ID] = entry

	remaining := len(s.queue) - (s.index + 1)
	pos := s.index + 1 + s.rng.Intn(remaining+1)
	s.queue = slices.Insert(s.queue, pos, item.Clone())
}

// ShuffleQuestions reorders the questions of the current cloze card. The
// card's first pre-shuffle text and answers are kept for ResetQuestionOrder
// until the session moves on.
func (s *Session) ShuffleQuestions() (models.StudyItem, error) {
	item, err := s.current()
	if err != nil {
		return models.StudyItem{}, err
	}
	if !item.IsCloze() {
		return models.StudyItem{}, ErrNotCloze
	}
	if s.unshuffled == nil {
		s.unshuffled = &clozeFields{text: item.ClozeText, answers: slices.Clone(item.ClozeAnswers)}
	}
	text, answers := cloze.Shuffle(item.ClozeText, item.ClozeAnswers, s.rng)
	s.queue[s.index].ClozeText = text
	s.queue[s.index].ClozeAnswers = answers
	return s.queue[s.index], nil
}

// ResetQuestionOrder restores the current cloze card as it was before
// ShuffleQuestions. It is a no-op for a card that was never shuffled.
func (s *Session) ResetQuestionOrder() (models.StudyItem, error) {
	item, err := s.current()
	if err != nil {
		return models.StudyItem{}, err
	}
	if !item.IsCloze() {
		return models.StudyItem{}, ErrNotCloze
	}
	if s.unshuffled != nil {
		s.queue[s.index].ClozeText = s.unshuffled.text
		s.queue[s.index].ClozeAnswers = s.unshuffled.answers
		s.unshuffled = nil
	}
	return s.queue[s.index], nil
}
