package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/vocabflash/internal/errors"
	"github.com/vytor/vocabflash/internal/grading"
	"github.com/vytor/vocabflash/internal/jobs"
	"github.com/vytor/vocabflash/internal/logger"
	"github.com/vytor/vocabflash/internal/models"
	"github.com/vytor/vocabflash/internal/repository"
	"github.com/vytor/vocabflash/internal/session"
)

var errTooManySessions = stderrors.New("too many open study sessions")

// Card is the current card as shown to the learner. While the card awaits
// an answer the fields holding the reference answer are cleared.
type Card struct {
	Item   models.StudyItem `json:"item"`
	Prompt string           `json:"prompt"`
	Blanks int              `json:"blanks,omitempty"`
}

// SessionView is a snapshot of a study session.
type SessionView struct {
	ID         string           `json:"id"`
	DeckID     int64            `json:"deck_id"`
	Direction  models.Direction `json:"direction"`
	State      string           `json:"state"`
	Index      int              `json:"index"`
	Length     int              `json:"length"`
	Current    *Card            `json:"current,omitempty"`
	LastResult *grading.Result  `json:"last_result,omitempty"`
	Score      models.Score     `json:"score"`
	Settings   models.Settings  `json:"settings"`
}

// StudyService hosts the in-memory study sessions
type StudyService interface {
	StartSession(ctx context.Context, deckID int64, direction models.Direction) (*SessionView, error)
	GetSession(ctx context.Context, id string) (*SessionView, error)
	SubmitAnswer(ctx context.Context, id string, answer string) (*SessionView, error)
	SubmitCloze(ctx context.Context, id string, answers []string) (*SessionView, error)
	Advance(ctx context.Context, id string) (*SessionView, error)
	Reset(ctx context.Context, id string) (*SessionView, error)
	ShuffleQuestions(ctx context.Context, id string) (*SessionView, error)
	ResetQuestionOrder(ctx context.Context, id string) (*SessionView, error)
	EndSession(ctx context.Context, id string) error
}

type openSession struct {
	mu        sync.Mutex
	id        string
	deckID    int64
	sess      *session.Session
	persisted bool
	startedAt time.Time

	// Read by the registry without holding mu.
	complete atomic.Bool
	// Guarded by studyService.mu.
	lastUsed time.Time
}

type studyService struct {
	deckRepo     repository.DeckRepository
	itemRepo     repository.ItemRepository
	settingsRepo repository.SettingsRepository
	queue        jobs.StatsQueue
	grader       *grading.Grader
	defaults     models.Settings
	cfg          StudyConfig

	mu       sync.Mutex
	sessions map[string]*openSession
}

// NewStudyService creates a new StudyService. Every verdict and every
// completed session score is handed to queue.
func NewStudyService(
	deckRepo repository.DeckRepository,
	itemRepo repository.ItemRepository,
	settingsRepo repository.SettingsRepository,
	queue jobs.StatsQueue,
	defaults models.Settings,
	cfg StudyConfig,
) StudyService {
	s := &studyService{
		deckRepo:     deckRepo,
		itemRepo:     itemRepo,
		settingsRepo: settingsRepo,
		queue:        queue,
		defaults:     defaults,
		cfg:          cfg.withDefaults(),
		sessions:     make(map[string]*openSession),
	}
	s.grader = grading.NewGrader(grading.RecorderFunc(s.recordVerdict))
	return s
}

func (s *studyService) recordVerdict(itemID int64, verdict models.Verdict) {
	if err := s.queue.EnqueueVerdict(itemID, verdict); err != nil {
		logger.Default().WithPrefix("study").Warn("dropping verdict for item %d: %v", itemID, err)
	}
}

func (s *studyService) StartSession(ctx context.Context, deckID int64, direction models.Direction) (*SessionView, error) {
	log := logger.FromContext(ctx).WithField("deck_id", deckID)
	log.Debug("starting session: direction=%s", direction)

	if direction == "" {
		direction = models.DirectionForward
	}
	if !direction.Valid() {
		return nil, errors.NewValidationError("direction", fmt.Sprintf("must be %q or %q", models.DirectionForward, models.DirectionReverse))
	}

	deck, err := s.deckRepo.Get(ctx, deckID)
	if err != nil {
		log.Error("failed to get deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if deck == nil {
		return nil, errors.NewNotFoundError("deck", deckID)
	}

	items, err := s.itemRepo.List(ctx, models.ItemFilter{DeckID: deckID})
	if err != nil {
		log.Error("failed to load deck items: %v", err)
		return nil, errors.NewInternalError(err)
	}
	settings, err := loadSettings(ctx, s.settingsRepo, s.defaults)
	if err != nil {
		return nil, err
	}

	now := s.cfg.Now()
	open := &openSession{
		id:        uuid.NewString(),
		deckID:    deckID,
		sess:      session.New(items, settings, direction, s.grader, session.WithRand(s.cfg.NewRand())),
		startedAt: now,
		lastUsed:  now,
	}

	view := s.view(open)

	s.mu.Lock()
	if s.cfg.MaxSessions > 0 && len(s.sessions) >= s.cfg.MaxSessions {
		victim := s.evictionCandidate(now)
		if victim == nil {
			s.mu.Unlock()
			log.Warn("refusing session, %d already open", s.cfg.MaxSessions)
			return nil, errors.NewConflictError(errTooManySessions)
		}
		delete(s.sessions, victim.id)
		log.WithSession(victim.id).Info("evicted session: complete=%t, idle=%v", victim.complete.Load(), now.Sub(victim.lastUsed).Round(time.Second))
	}
	s.sessions[open.id] = open
	s.mu.Unlock()

	log.WithSession(open.id).Info("session started with %d items", len(items))
	return view, nil
}

func (s *studyService) lookup(id string) (*openSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	open, ok := s.sessions[id]
	if !ok {
		return nil, errors.NewNotFoundError("session", id)
	}
	open.lastUsed = s.cfg.Now()
	return open, nil
}

// evictionCandidate picks the least recently used completed session, or
// failing that the least recently used one idle past cfg.IdleTimeout.
// Must be called with s.mu held.
func (s *studyService) evictionCandidate(now time.Time) *openSession {
	var complete, idle *openSession
	for _, open := range s.sessions {
		if open.complete.Load() {
			if complete == nil || open.lastUsed.Before(complete.lastUsed) {
				complete = open
			}
			continue
		}
		if s.cfg.IdleTimeout > 0 && now.Sub(open.lastUsed) >= s.cfg.IdleTimeout {
			if idle == nil || open.lastUsed.Before(idle.lastUsed) {
				idle = open
			}
		}
	}
	if complete != nil {
		return complete
	}
	return idle
}

// do runs fn with exclusive access to the session and returns its view.
func (s *studyService) do(ctx context.Context, id, action string, fn func(*session.Session) error) (*SessionView, error) {
	log := logger.FromContext(ctx).WithSession(id)

	open, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	open.mu.Lock()
	defer open.mu.Unlock()

	if err := fn(open.sess); err != nil {
		log.Debug("%s rejected: %v", action, err)
		return nil, mapSessionError(err)
	}
	log.Debug("%s: state=%s, index=%d/%d", action, open.sess.State(), open.sess.Index(), open.sess.Len())

	s.persistIfComplete(ctx, open)
	return s.view(open), nil
}

func (s *studyService) persistIfComplete(ctx context.Context, open *openSession) {
	if open.sess.State() != session.StateComplete {
		// A reset session may complete, and be stored, again.
		open.persisted = false
		open.complete.Store(false)
		return
	}
	open.complete.Store(true)
	if open.persisted {
		return
	}
	open.persisted = true

	score := open.sess.Score()
	result := models.SessionResult{
		DeckID:     open.deckID,
		Direction:  open.sess.Direction(),
		Correct:    score.Correct,
		Total:      score.Total,
		FinishedAt: time.Now().UTC(),
	}
	log := logger.FromContext(ctx).WithSession(open.id)
	if err := s.queue.EnqueueSessionResult(result); err != nil {
		log.Warn("failed to queue session result: %v", err)
		return
	}
	log.Info("session complete: score=%d/%d in %v", score.Correct, score.Total, time.Since(open.startedAt).Round(time.Second))
}

func (s *studyService) GetSession(ctx context.Context, id string) (*SessionView, error) {
	return s.do(ctx, id, "get", func(*session.Session) error { return nil })
}

func (s *studyService) SubmitAnswer(ctx context.Context, id string, answer string) (*SessionView, error) {
	return s.do(ctx, id, "answer", func(sess *session.Session) error {
		_, err := sess.SubmitAnswer(answer)
		return err
	})
}

func (s *studyService) SubmitCloze(ctx context.Context, id string, answers []string) (*SessionView, error) {
	return s.do(ctx, id, "cloze answer", func(sess *session.Session) error {
		_, err := sess.SubmitCloze(answers)
		return err
	})
}

func (s *studyService) Advance(ctx context.Context, id string) (*SessionView, error) {
	return s.do(ctx, id, "advance", func(sess *session.Session) error {
		return sess.Advance()
	})
}

func (s *studyService) Reset(ctx context.Context, id string) (*SessionView, error) {
	return s.do(ctx, id, "reset", func(sess *session.Session) error {
		sess.Reset()
		return nil
	})
}

func (s *studyService) ShuffleQuestions(ctx context.Context, id string) (*SessionView, error) {
	return s.do(ctx, id, "shuffle", func(sess *session.Session) error {
		_, err := sess.ShuffleQuestions()
		return err
	})
}

func (s *studyService) ResetQuestionOrder(ctx context.Context, id string) (*SessionView, error) {
	return s.do(ctx, id, "reset order", func(sess *session.Session) error {
		_, err := sess.ResetQuestionOrder()
		return err
	})
}

func (s *studyService) EndSession(ctx context.Context, id string) error {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return errors.NewNotFoundError("session", id)
	}
	logger.FromContext(ctx).WithSession(id).Info("session ended")
	return nil
}

// view must be called with open.mu held.
func (s *studyService) view(open *openSession) *SessionView {
	sess := open.sess
	v := &SessionView{
		ID:        open.id,
		DeckID:    open.deckID,
		Direction: sess.Direction(),
		State:     sess.State().String(),
		Index:     sess.Index(),
		Length:    sess.Len(),
		Score:     sess.Score(),
		Settings:  sess.Settings(),
	}
	if item, ok := sess.Current(); ok {
		v.Current = card(item, sess.Direction(), sess.State() == session.StateActive)
	}
	if res, ok := sess.LastResult(); ok {
		v.LastResult = &res
	}
	return v
}

func card(item models.StudyItem, dir models.Direction, hideAnswer bool) *Card {
	c := &Card{Item: item}
	switch {
	case item.IsCloze():
		c.Prompt = item.ClozeText
		c.Blanks = len(item.ClozeAnswers)
		if hideAnswer {
			c.Item.ClozeAnswers = nil
		}
	case item.Kind == models.KindGrammarExercise:
		c.Prompt = item.Question
		if hideAnswer {
			c.Item.Answer = ""
		}
	case dir == models.DirectionReverse:
		c.Prompt = item.Translation
		if hideAnswer {
			c.Item.Word = ""
		}
	default:
		c.Prompt = item.Word
		if hideAnswer {
			c.Item.Translation = ""
		}
	}
	return c
}

func mapSessionError(err error) error {
	switch {
	case stderrors.Is(err, session.ErrNotReady),
		stderrors.Is(err, session.ErrAlreadyAnswered),
		stderrors.Is(err, session.ErrNoPendingResult),
		stderrors.Is(err, session.ErrComplete):
		return errors.NewConflictError(err)
	case stderrors.Is(err, session.ErrNotCloze),
		stderrors.Is(err, session.ErrClozeAnswer),
		stderrors.Is(err, grading.ErrIncompleteBlanks):
		return errors.NewBadRequestError(err.Error())
	}
	return errors.NewInternalError(err)
}
