package assessment

import "errors"

// Phase identifies the current state of an attempt session.
type Phase string

const (
	PhaseLoading    Phase = "loading"
	PhaseReady      Phase = "ready"
	PhaseSubmitting Phase = "submitting"
	PhaseResults    Phase = "results"
	PhaseFailed     Phase = "failed"
)

// Transition errors returned by Reduce.
var (
	ErrInvalidTransition = errors.New("event not valid in current phase")
	ErrAnswerRequired    = errors.New("an answer is required before advancing")
	ErrAnswerMismatch    = errors.New("answer does not match current question")
	ErrIncompleteAttempt = errors.New("every question needs an answer before submitting")
)

// Session is the in-memory state of one assessment attempt. It advances
// Loading -> Ready(0) .. Ready(N-1) -> Submitting -> Results, with Failed
// reachable from Loading. It is a plain value: Reduce returns a new Session
// and never mutates its input, so the machine is testable without any
// transport or UI attached.
type Session struct {
	Track     Track
	Phase     Phase
	Index     int
	Questions []Question
	Answers   []Answer
	Outcome   *Outcome
	Reason    string
}

// Outcome is what a finished attempt carries into the Results phase.
// Degraded and Saved let callers disclose partial failures without
// blocking the student from seeing a result.
type Outcome struct {
	Verified   VerifiedSet
	Level      Level
	Prediction Prediction
	Saved      bool
	Warnings   []string
}

// Event is one input to the session reducer.
type Event interface{ isEvent() }

// QuestionsLoaded carries a freshly generated question set into the session.
type QuestionsLoaded struct{ Questions []Question }

// LoadFailed records a terminal generation failure for this attempt.
type LoadFailed struct{ Reason string }

// AnswerRecorded captures the student's input for the current question and
// advances to the next one.
type AnswerRecorded struct{ Raw RawAnswer }

// SubmissionStarted begins grading once every question has an answer.
type SubmissionStarted struct{}

// SubmissionFinished carries the attempt outcome into Results. Partial
// failures ride along inside the Outcome rather than blocking the phase
// change: a failed submission is non-fatal to viewing a result.
type SubmissionFinished struct{ Outcome Outcome }

// TrackChanged abandons the attempt and restarts for a different track.
type TrackChanged struct{ Track Track }

func (QuestionsLoaded) isEvent()    {}
func (LoadFailed) isEvent()         {}
func (AnswerRecorded) isEvent()     {}
func (SubmissionStarted) isEvent()  {}
func (SubmissionFinished) isEvent() {}
func (TrackChanged) isEvent()       {}

// NewSession starts an attempt in the Loading phase for the given track.
func NewSession(track Track) Session {
	return Session{Track: track, Phase: PhaseLoading}
}

// Reduce applies one event to the session and returns the next state.
// A TrackChanged event is accepted in every phase; all other events are
// only valid in specific phases.
func Reduce(s Session, event Event) (Session, error) {
	if change, ok := event.(TrackChanged); ok {
		return NewSession(change.Track), nil
	}

	switch s.Phase {
	case PhaseLoading:
		switch e := event.(type) {
		case QuestionsLoaded:
			if len(e.Questions) == 0 {
				return s, ErrInvalidTransition
			}
			next := s
			next.Phase = PhaseReady
			next.Index = 0
			next.Questions = e.Questions
			next.Answers = make([]Answer, 0, len(e.Questions))
			return next, nil
		case LoadFailed:
			next := s
			next.Phase = PhaseFailed
			next.Reason = e.Reason
			return next, nil
		}

	case PhaseReady:
		switch e := event.(type) {
		case AnswerRecorded:
			if len(s.Answers) == len(s.Questions) {
				return s, ErrInvalidTransition
			}

			question := s.Questions[s.Index]
			if !e.Raw.Provided(question.Type) {
				return s, ErrAnswerRequired
			}
			if question.Type == QuestionMCQ {
				if idx := *e.Raw.OptionIndex; idx < 0 || idx >= len(question.Options) {
					return s, ErrAnswerMismatch
				}
			}

			next := s
			next.Answers = append(append([]Answer(nil), s.Answers...), Answer{
				QuestionID: question.ID,
				Raw:        e.Raw,
				Topic:      question.Topic,
				Difficulty: question.Difficulty,
			})
			if s.Index < len(s.Questions)-1 {
				next.Index = s.Index + 1
			}
			return next, nil

		case SubmissionStarted:
			if !s.Complete() {
				return s, ErrIncompleteAttempt
			}
			next := s
			next.Phase = PhaseSubmitting
			return next, nil
		}

	case PhaseSubmitting:
		if e, ok := event.(SubmissionFinished); ok {
			next := s
			next.Phase = PhaseResults
			outcome := e.Outcome
			next.Outcome = &outcome
			return next, nil
		}
	}

	return s, ErrInvalidTransition
}

// Complete reports whether every question has a recorded answer. It holds
// by construction whenever the session reaches Submitting.
func (s Session) Complete() bool {
	return len(s.Questions) > 0 && len(s.Answers) == len(s.Questions)
}
