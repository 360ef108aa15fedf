package quiz

import (
	"errors"
	"slices"
	"time"
)

var (
	ErrSessionFinished = errors.New("quiz session is finished")
	ErrAdvancePending  = errors.New("question already answered, waiting for next question")
	ErrUnknownOption   = errors.New("option is not part of the current question")
	ErrOptionDisabled  = errors.New("option was already tried")
)

// DefaultAdvanceDelay is how long a confirmed answer stays on screen before
// the next question is shown.
const DefaultAdvanceDelay = 1500 * time.Millisecond

// QuestionState tracks the learner's interaction with one question.
type QuestionState struct {
	Disabled     []string `json:"disabled,omitempty"`
	Confirmed    string   `json:"confirmed,omitempty"`
	GuessedWrong bool     `json:"guessed_wrong,omitempty"`
}

// Session is the state of one quiz run. It is owned by a single learner and
// serialized as JSON between requests.
type Session struct {
	ModuleID     string          `json:"module_id"`
	Questions    []Question      `json:"questions"`
	States       []QuestionState `json:"states"`
	Current      int             `json:"current"`
	Score        int             `json:"score"`
	Finished     bool            `json:"finished"`
	AdvanceAt    time.Time       `json:"advance_at,omitempty"`
	AdvanceDelay time.Duration   `json:"advance_delay"`
}

// Outcome describes the effect of one submitted answer.
type Outcome struct {
	Correct   bool
	Credited  bool
	Finished  bool
	AdvanceAt time.Time
}

func NewSession(moduleID string, questions []Question, advanceDelay time.Duration) *Session {
	return &Session{
		ModuleID:     moduleID,
		Questions:    questions,
		States:       make([]QuestionState, len(questions)),
		Finished:     len(questions) == 0,
		AdvanceDelay: advanceDelay,
	}
}

// CurrentQuestion returns the question on screen, or false once finished.
func (s *Session) CurrentQuestion() (Question, QuestionState, bool) {
	if s.Finished || s.Current >= len(s.Questions) {
		return Question{}, QuestionState{}, false
	}
	return s.Questions[s.Current], s.States[s.Current], true
}

func (s *Session) AdvancePending() bool {
	return !s.AdvanceAt.IsZero()
}

// Sync applies a pending advance whose deadline has passed. It reports
// whether the current question changed.
func (s *Session) Sync(now time.Time) bool {
	if !s.AdvancePending() || now.Before(s.AdvanceAt) {
		return false
	}
	s.Advance()
	return true
}

// Advance moves to the next question immediately, skipping any remaining
// delay. It is a no-op without a pending advance.
func (s *Session) Advance() {
	if !s.AdvancePending() {
		return
	}
	s.AdvanceAt = time.Time{}
	s.Current++
	if s.Current >= len(s.Questions) {
		s.Finished = true
	}
}

// Submit evaluates optionID against the current question.
func (s *Session) Submit(optionID string, now time.Time) (Outcome, error) {
	s.Sync(now)

	if s.Finished {
		return Outcome{}, ErrSessionFinished
	}
	if s.AdvancePending() {
		return Outcome{}, ErrAdvancePending
	}

	q := s.Questions[s.Current]
	st := &s.States[s.Current]

	if !q.hasOption(optionID) {
		return Outcome{}, ErrUnknownOption
	}
	if slices.Contains(st.Disabled, optionID) {
		return Outcome{}, ErrOptionDisabled
	}

	if !q.IsCorrect(optionID) {
		st.Disabled = append(st.Disabled, optionID)
		st.GuessedWrong = true
		return Outcome{}, nil
	}

	out := Outcome{Correct: true}
	st.Confirmed = optionID
	if !st.GuessedWrong {
		s.Score++
		out.Credited = true
	}

	if s.Current == len(s.Questions)-1 {
		s.Finished = true
		out.Finished = true
		return out, nil
	}

	s.AdvanceAt = now.Add(s.AdvanceDelay)
	out.AdvanceAt = s.AdvanceAt
	return out, nil
}
