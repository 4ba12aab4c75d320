package assessment

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func loadedQuestions(n int) []Question {
	questions := make([]Question, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, Question{
			ID:         string(rune('a' + i)),
			Type:       QuestionMCQ,
			Prompt:     "prompt",
			Options:    []string{"one", "two", "three", "four"},
			Topic:      "Arrays",
			Difficulty: DifficultyMedium,
		})
	}
	return questions
}

func TestNewSessionStartsLoading(t *testing.T) {
	s := NewSession(TrackProgramming)
	require.Equal(t, PhaseLoading, s.Phase)
	require.Equal(t, TrackProgramming, s.Track)
	require.Empty(t, s.Questions)
}

func TestQuestionsLoadedMovesToReady(t *testing.T) {
	s := NewSession(TrackProgramming)

	next, err := Reduce(s, QuestionsLoaded{Questions: loadedQuestions(3)})
	require.NoError(t, err)
	require.Equal(t, PhaseReady, next.Phase)
	require.Equal(t, 0, next.Index)
	require.Len(t, next.Questions, 3)
}

func TestQuestionsLoadedRejectsEmptySet(t *testing.T) {
	s := NewSession(TrackProgramming)

	_, err := Reduce(s, QuestionsLoaded{})
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestLoadFailedMovesToFailed(t *testing.T) {
	s := NewSession(TrackBackend)

	next, err := Reduce(s, LoadFailed{Reason: "gateway unreachable"})
	require.NoError(t, err)
	require.Equal(t, PhaseFailed, next.Phase)
	require.Equal(t, "gateway unreachable", next.Reason)
}

func TestAnswerRecordedAdvancesThroughQuestions(t *testing.T) {
	s := NewSession(TrackProgramming)
	s, err := Reduce(s, QuestionsLoaded{Questions: loadedQuestions(3)})
	require.NoError(t, err)

	s, err = Reduce(s, AnswerRecorded{Raw: RawAnswer{OptionIndex: intPtr(0)}})
	require.NoError(t, err)
	require.Equal(t, PhaseReady, s.Phase)
	require.Equal(t, 1, s.Index)

	s, err = Reduce(s, AnswerRecorded{Raw: RawAnswer{OptionIndex: intPtr(2)}})
	require.NoError(t, err)
	require.Equal(t, 2, s.Index)

	s, err = Reduce(s, AnswerRecorded{Raw: RawAnswer{OptionIndex: intPtr(1)}})
	require.NoError(t, err)
	require.Equal(t, PhaseReady, s.Phase)
	require.True(t, s.Complete())

	s, err = Reduce(s, SubmissionStarted{})
	require.NoError(t, err)
	require.Equal(t, PhaseSubmitting, s.Phase)
}

func TestSubmissionStartedRequiresAllAnswers(t *testing.T) {
	s := NewSession(TrackProgramming)
	s, err := Reduce(s, QuestionsLoaded{Questions: loadedQuestions(2)})
	require.NoError(t, err)

	_, err = Reduce(s, SubmissionStarted{})
	require.ErrorIs(t, err, ErrIncompleteAttempt)
}

func TestAnswerRecordedRequiresAnswer(t *testing.T) {
	s := NewSession(TrackProgramming)
	s, err := Reduce(s, QuestionsLoaded{Questions: loadedQuestions(2)})
	require.NoError(t, err)

	_, err = Reduce(s, AnswerRecorded{})
	require.ErrorIs(t, err, ErrAnswerRequired)
}

func TestAnswerRecordedRejectsOutOfRangeOption(t *testing.T) {
	s := NewSession(TrackProgramming)
	s, err := Reduce(s, QuestionsLoaded{Questions: loadedQuestions(2)})
	require.NoError(t, err)

	_, err = Reduce(s, AnswerRecorded{Raw: RawAnswer{OptionIndex: intPtr(9)}})
	require.ErrorIs(t, err, ErrAnswerMismatch)
}

func TestShortAnswerRequiresNonBlankText(t *testing.T) {
	s := NewSession(TrackDataScience)
	questions := loadedQuestions(1)
	questions[0].Type = QuestionShortAnswer
	questions[0].Options = nil
	s, err := Reduce(s, QuestionsLoaded{Questions: questions})
	require.NoError(t, err)

	_, err = Reduce(s, AnswerRecorded{Raw: RawAnswer{Text: "   "}})
	require.ErrorIs(t, err, ErrAnswerRequired)

	next, err := Reduce(s, AnswerRecorded{Raw: RawAnswer{Text: "gradient descent"}})
	require.NoError(t, err)
	require.True(t, next.Complete())
}

func TestSubmissionFinishedMovesToResults(t *testing.T) {
	s := NewSession(TrackProgramming)
	s, err := Reduce(s, QuestionsLoaded{Questions: loadedQuestions(1)})
	require.NoError(t, err)
	s, err = Reduce(s, AnswerRecorded{Raw: RawAnswer{OptionIndex: intPtr(0)}})
	require.NoError(t, err)
	s, err = Reduce(s, SubmissionStarted{})
	require.NoError(t, err)
	require.Equal(t, PhaseSubmitting, s.Phase)

	outcome := Outcome{Level: LevelReady, Saved: true}
	s, err = Reduce(s, SubmissionFinished{Outcome: outcome})
	require.NoError(t, err)
	require.Equal(t, PhaseResults, s.Phase)
	require.NotNil(t, s.Outcome)
	require.Equal(t, LevelReady, s.Outcome.Level)
}

func TestTrackChangedResetsFromAnyPhase(t *testing.T) {
	s := NewSession(TrackProgramming)
	s, err := Reduce(s, QuestionsLoaded{Questions: loadedQuestions(2)})
	require.NoError(t, err)
	s, err = Reduce(s, AnswerRecorded{Raw: RawAnswer{OptionIndex: intPtr(0)}})
	require.NoError(t, err)

	next, err := Reduce(s, TrackChanged{Track: TrackDatabases})
	require.NoError(t, err)
	require.Equal(t, PhaseLoading, next.Phase)
	require.Equal(t, TrackDatabases, next.Track)
	require.Empty(t, next.Questions)
	require.Empty(t, next.Answers)
}

func TestReduceRejectsEventsOutOfPhase(t *testing.T) {
	s := NewSession(TrackProgramming)

	_, err := Reduce(s, AnswerRecorded{Raw: RawAnswer{OptionIndex: intPtr(0)}})
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = Reduce(s, SubmissionFinished{})
	require.ErrorIs(t, err, ErrInvalidTransition)

	ready, err := Reduce(s, QuestionsLoaded{Questions: loadedQuestions(1)})
	require.NoError(t, err)
	_, err = Reduce(ready, QuestionsLoaded{Questions: loadedQuestions(1)})
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	s := NewSession(TrackProgramming)
	s, err := Reduce(s, QuestionsLoaded{Questions: loadedQuestions(2)})
	require.NoError(t, err)

	next, err := Reduce(s, AnswerRecorded{Raw: RawAnswer{OptionIndex: intPtr(0)}})
	require.NoError(t, err)

	require.Empty(t, s.Answers)
	require.Equal(t, 0, s.Index)
	require.Len(t, next.Answers, 1)
}

func TestDeriveLevelThresholds(t *testing.T) {
	cases := []struct {
		correct int
		total   int
		want    Level
	}{
		{0, 5, LevelBeginner},
		{1, 5, LevelBeginner},
		{2, 5, LevelIntermediate},
		{3, 5, LevelIntermediate},
		{4, 5, LevelReady},
		{5, 5, LevelReady},
		{2, 3, LevelIntermediate},
		{3, 3, LevelReady},
		{0, 0, LevelBeginner},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, DeriveLevel(tc.correct, tc.total),
			"correct=%d total=%d", tc.correct, tc.total)
	}
}

func TestDeriveLevelMonotonic(t *testing.T) {
	total := 5
	previous := DeriveLevel(0, total)
	for correct := 1; correct <= total; correct++ {
		current := DeriveLevel(correct, total)
		require.GreaterOrEqual(t, current.Rank(), previous.Rank())
		previous = current
	}
}

func TestDedupeGapsPreservesOrder(t *testing.T) {
	gaps := DedupeGaps([]string{"Arrays", "SQL Joins", "Arrays", "Recursion", "SQL Joins"})
	require.Equal(t, []string{"Arrays", "SQL Joins", "Recursion"}, gaps)
}
