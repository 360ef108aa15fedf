package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"isl-backend/internal/catalog"
	"isl-backend/internal/models"
	"isl-backend/internal/quiz"
	"isl-backend/internal/repository"
)

type quizSessionStore interface {
	Lock(ctx context.Context, id uuid.UUID) (func(), error)
	Save(ctx context.Context, sess *repository.StoredSession) error
	Get(ctx context.Context, id uuid.UUID) (*repository.StoredSession, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type progressStoreFactory interface {
	ForUser(userID uuid.UUID) quiz.ProgressStore
}

type eventPublisher interface {
	PublishUpdate(ctx context.Context, userID uuid.UUID, msg models.WSMessage) error
}

type quizEvents interface {
	eventPublisher
	EnqueueResult(ctx context.Context, attempt *models.QuizAttempt) error
}

// QuizService runs module quizzes for authenticated learners. Sessions live
// in the session store between requests; the auto-advance after a correct
// answer is applied lazily from the session deadline, and a timer only
// notifies connected clients.
type QuizService struct {
	catalog      *catalog.Catalog
	sessions     quizSessionStore
	progress     progressStoreFactory
	events       quizEvents
	advanceDelay time.Duration
	now          func() time.Time
	seed         func() uint64

	mu     sync.Mutex
	timers map[uuid.UUID]*time.Timer
}

func NewQuizService(cat *catalog.Catalog, sessions quizSessionStore, progress progressStoreFactory, events quizEvents, advanceDelay time.Duration) *QuizService {
	return &QuizService{
		catalog:      cat,
		sessions:     sessions,
		progress:     progress,
		events:       events,
		advanceDelay: advanceDelay,
		now:          time.Now,
		seed:         rand.Uint64,
		timers:       make(map[uuid.UUID]*time.Timer),
	}
}

func (s *QuizService) Start(ctx context.Context, userID uuid.UUID, moduleID string, seed *uint64) (*models.QuizSessionView, error) {
	module, ok := s.catalog.ModuleByID(moduleID)
	if !ok {
		return nil, &NotFoundError{Message: "Module not found"}
	}

	sd := s.seed()
	if seed != nil {
		sd = *seed
	}

	questions := quiz.Generate(module, s.catalog.AllItems(), quiz.NewSampler(sd))
	stored := &repository.StoredSession{
		ID:        uuid.New(),
		UserID:    userID,
		StartedAt: s.now(),
		Quiz:      quiz.NewSession(module.ID, questions, s.advanceDelay),
	}

	if err := s.sessions.Save(ctx, stored); err != nil {
		return nil, fmt.Errorf("failed to store quiz session: %w", err)
	}

	view := sessionView(stored)
	return &view, nil
}

func (s *QuizService) Get(ctx context.Context, userID, sessionID uuid.UUID) (*models.QuizSessionView, error) {
	unlock, err := s.lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	stored, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	if stored.Quiz.Sync(s.now()) {
		if err := s.sessions.Save(ctx, stored); err != nil {
			return nil, fmt.Errorf("failed to store quiz session: %w", err)
		}
	}

	view := sessionView(stored)
	return &view, nil
}

func (s *QuizService) Answer(ctx context.Context, userID, sessionID uuid.UUID, optionID string) (*models.AnswerResult, error) {
	if optionID == "" {
		return nil, &ValidationError{Fields: map[string]string{"option_id": "Option is required"}}
	}

	// Concurrent answers on one question must see each other's effect, or
	// a wrong guess could be overwritten by a credited one.
	unlock, err := s.lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	stored, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	out, err := stored.Quiz.Submit(optionID, s.now())
	if err != nil {
		return nil, engineError(err)
	}

	result := &models.AnswerResult{
		Correct:  out.Correct,
		Credited: out.Credited,
		Finished: out.Finished,
	}

	// The score must reach the progress store before the finished session
	// is saved; on failure the answer is not recorded and can be retried.
	if out.Finished {
		newBest, err := s.finish(ctx, stored)
		if err != nil {
			return nil, err
		}
		result.NewBest = newBest
	}

	if err := s.sessions.Save(ctx, stored); err != nil {
		return nil, fmt.Errorf("failed to store quiz session: %w", err)
	}

	if !out.AdvanceAt.IsZero() {
		advanceAt := out.AdvanceAt
		result.AdvanceAt = &advanceAt
		s.scheduleAdvance(stored.UserID, stored.ID, stored.Quiz.Current+1, advanceAt)
	}

	result.Session = sessionView(stored)
	return result, nil
}

// Exit abandons a session. A pending auto-advance is cancelled.
func (s *QuizService) Exit(ctx context.Context, userID, sessionID uuid.UUID) error {
	unlock, err := s.lock(ctx, sessionID)
	if err != nil {
		return err
	}
	defer unlock()

	if _, err := s.load(ctx, userID, sessionID); err != nil {
		return err
	}

	s.cancelAdvance(sessionID)
	return s.sessions.Delete(ctx, sessionID)
}

// Stop cancels every pending advance notification.
func (s *QuizService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

func (s *QuizService) lock(ctx context.Context, sessionID uuid.UUID) (func(), error) {
	unlock, err := s.sessions.Lock(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionBusy) {
			return nil, &ConflictError{Message: "Quiz session is busy, try again"}
		}
		return nil, fmt.Errorf("failed to lock quiz session: %w", err)
	}
	return unlock, nil
}

func (s *QuizService) load(ctx context.Context, userID, sessionID uuid.UUID) (*repository.StoredSession, error) {
	stored, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, &NotFoundError{Message: "Quiz session not found"}
		}
		return nil, err
	}
	if stored.UserID != userID {
		return nil, &ForbiddenError{Message: "Access denied"}
	}
	return stored, nil
}

func (s *QuizService) finish(ctx context.Context, stored *repository.StoredSession) (bool, error) {
	newBest, err := quiz.Report(ctx, s.progress.ForUser(stored.UserID), stored.Quiz)
	if err != nil {
		return false, fmt.Errorf("failed to save quiz score: %w", err)
	}

	attempt := &models.QuizAttempt{
		ID:            uuid.New(),
		UserID:        stored.UserID,
		SessionID:     stored.ID,
		ModuleID:      stored.Quiz.ModuleID,
		Score:         stored.Quiz.Score,
		QuestionCount: len(stored.Quiz.Questions),
		StartedAt:     stored.StartedAt,
		CompletedAt:   s.now(),
	}
	if err := s.events.EnqueueResult(ctx, attempt); err != nil {
		log.Printf("failed to enqueue quiz result for session %s: %v", stored.ID, err)
	}

	err = s.events.PublishUpdate(ctx, stored.UserID, models.WSMessage{
		Type: models.EventQuizFinished,
		Payload: models.QuizFinishedEvent{
			SessionID:     stored.ID,
			ModuleID:      stored.Quiz.ModuleID,
			Score:         stored.Quiz.Score,
			QuestionCount: len(stored.Quiz.Questions),
			NewBest:       newBest,
		},
	})
	if err != nil {
		log.Printf("failed to publish quiz.finished for session %s: %v", stored.ID, err)
	}

	return newBest, nil
}

func (s *QuizService) scheduleAdvance(userID, sessionID uuid.UUID, next int, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[sessionID]; ok {
		t.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(at.Sub(s.now()), func() {
		s.mu.Lock()
		if s.timers[sessionID] != timer {
			s.mu.Unlock()
			return
		}
		delete(s.timers, sessionID)
		s.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := s.events.PublishUpdate(ctx, userID, models.WSMessage{
			Type:    models.EventQuizAdvanced,
			Payload: models.QuizAdvancedEvent{SessionID: sessionID, QuestionIndex: next},
		})
		if err != nil {
			log.Printf("failed to publish quiz.advanced for session %s: %v", sessionID, err)
		}
	})
	s.timers[sessionID] = timer
}

func (s *QuizService) cancelAdvance(sessionID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[sessionID]; ok {
		t.Stop()
		delete(s.timers, sessionID)
	}
}

func (s *QuizService) pendingAdvances() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func engineError(err error) error {
	switch {
	case errors.Is(err, quiz.ErrUnknownOption):
		return &ValidationError{Fields: map[string]string{"option_id": "Option is not part of the current question"}}
	case errors.Is(err, quiz.ErrOptionDisabled):
		return &ConflictError{Message: "Option was already tried"}
	case errors.Is(err, quiz.ErrAdvancePending):
		return &ConflictError{Message: "Question already answered"}
	case errors.Is(err, quiz.ErrSessionFinished):
		return &ConflictError{Message: "Quiz is already finished"}
	default:
		return err
	}
}

func sessionView(stored *repository.StoredSession) models.QuizSessionView {
	q := stored.Quiz
	view := models.QuizSessionView{
		ID:            stored.ID,
		ModuleID:      q.ModuleID,
		QuestionCount: len(q.Questions),
		Score:         q.Score,
		Finished:      q.Finished,
	}

	if q.AdvancePending() {
		advanceAt := q.AdvanceAt
		view.AdvanceAt = &advanceAt
	}

	if question, state, ok := q.CurrentQuestion(); ok {
		qv := &models.QuizQuestionView{
			Index:       q.Current,
			PromptMedia: question.Target.MediaURL,
			PromptVideo: question.Target.VideoURL,
			ConfirmedID: state.Confirmed,
			Options:     make([]models.QuizOption, 0, len(question.Options)),
		}
		for _, o := range question.Options {
			qv.Options = append(qv.Options, models.QuizOption{
				ID:       o.ID,
				Label:    o.Label,
				Disabled: slices.Contains(state.Disabled, o.ID),
			})
		}
		view.Question = qv
	}

	return view
}
