package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/prepnexus/prepnexus-api/internal/assessment"
	"github.com/prepnexus/prepnexus-api/pkg/ai"
)

func verifiableQuestions() []assessment.Question {
	return []assessment.Question{
		{
			ID: "q-1", Type: assessment.QuestionMCQ,
			Prompt:  "2+2?",
			Options: []string{"3", "4", "5", "6"}, CorrectIndex: 1,
			Topic: "Arithmetic", Difficulty: assessment.DifficultyEasy,
			Explanation: "Basic addition.",
		},
		{
			ID: "q-2", Type: assessment.QuestionShortAnswer,
			Prompt:      "Name the SQL clause for filtering groups.",
			CorrectText: "HAVING",
			Topic:       "SQL Joins", Difficulty: assessment.DifficultyMedium,
			Explanation: "HAVING filters aggregated rows.",
		},
	}
}

func one() *int { v := 1; return &v }
func zero() *int { v := 0; return &v }

func TestVerifyUsesGatewayVerdicts(t *testing.T) {
	gateway := &stubGateway{response: `[
		{"isCorrect": true, "correctAnswer": "4", "explanation": "Two plus two."},
		{"isCorrect": false, "correctAnswer": "HAVING", "explanation": "GROUP BY filters need HAVING."}
	]`}
	svc := NewVerificationService(gateway, zerolog.Nop())

	answers := []assessment.RawAnswer{{OptionIndex: one()}, {Text: "WHERE"}}
	verified, err := svc.Verify(context.Background(), assessment.TrackDatabases, verifiableQuestions(), answers)
	require.NoError(t, err)

	require.False(t, verified.Degraded)
	require.Equal(t, 1, verified.CorrectCount)
	require.Equal(t, []string{"SQL Joins"}, verified.Gaps)
	// verifier explanation overrides the generated one
	require.Equal(t, "GROUP BY filters need HAVING.", verified.Results[1].Explanation)
}

func TestVerifyFallsBackOnGatewayError(t *testing.T) {
	gateway := &stubGateway{err: ai.ErrUnavailable}
	svc := NewVerificationService(gateway, zerolog.Nop())

	answers := []assessment.RawAnswer{{OptionIndex: one()}, {Text: "having"}}
	verified, err := svc.Verify(context.Background(), assessment.TrackDatabases, verifiableQuestions(), answers)
	require.NoError(t, err)

	require.True(t, verified.Degraded)
	require.Equal(t, 2, verified.CorrectCount)
	require.Empty(t, verified.Gaps)
}

func TestVerifyFallsBackOnVerdictCountMismatch(t *testing.T) {
	gateway := &stubGateway{response: `[{"isCorrect": true, "correctAnswer": "4", "explanation": ""}]`}
	svc := NewVerificationService(gateway, zerolog.Nop())

	answers := []assessment.RawAnswer{{OptionIndex: zero()}, {Text: "WHERE"}}
	verified, err := svc.Verify(context.Background(), assessment.TrackDatabases, verifiableQuestions(), answers)
	require.NoError(t, err)

	require.True(t, verified.Degraded)
	require.Equal(t, 0, verified.CorrectCount)
	require.Equal(t, []string{"Arithmetic", "SQL Joins"}, verified.Gaps)
}

func TestVerifyLocalComparatorIsCaseInsensitive(t *testing.T) {
	gateway := &stubGateway{err: ai.ErrUnavailable}
	svc := NewVerificationService(gateway, zerolog.Nop())

	answers := []assessment.RawAnswer{{OptionIndex: zero()}, {Text: "  HaViNg  "}}
	verified, err := svc.Verify(context.Background(), assessment.TrackDatabases, verifiableQuestions(), answers)
	require.NoError(t, err)

	require.True(t, verified.Results[1].IsCorrect)
	require.False(t, verified.Results[0].IsCorrect)
}

func TestVerifyDeduplicatesGapTopics(t *testing.T) {
	questions := verifiableQuestions()
	questions[0].Topic = "SQL Joins"
	gateway := &stubGateway{err: ai.ErrUnavailable}
	svc := NewVerificationService(gateway, zerolog.Nop())

	answers := []assessment.RawAnswer{{OptionIndex: zero()}, {Text: "WHERE"}}
	verified, err := svc.Verify(context.Background(), assessment.TrackDatabases, questions, answers)
	require.NoError(t, err)

	require.Equal(t, []string{"SQL Joins"}, verified.Gaps)
}

func TestVerifyRejectsLengthMismatch(t *testing.T) {
	gateway := &stubGateway{}
	svc := NewVerificationService(gateway, zerolog.Nop())

	_, err := svc.Verify(context.Background(), assessment.TrackDatabases, verifiableQuestions(), nil)
	require.Error(t, err)
}
