package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/prepnexus/prepnexus-api/internal/assessment"
	"github.com/prepnexus/prepnexus-api/pkg/ai"
)

// VerificationService grades a completed attempt. Grading never fails the
// submission: when the AI verifier is unusable, the local comparator takes
// over and the result is flagged Degraded.
type VerificationService interface {
	Verify(ctx context.Context, track assessment.Track, questions []assessment.Question, answers []assessment.RawAnswer) (assessment.VerifiedSet, error)
}

type verificationService struct {
	gateway ai.Gateway
	logger  zerolog.Logger
}

// NewVerificationService constructs a verification service.
func NewVerificationService(gateway ai.Gateway, logger zerolog.Logger) VerificationService {
	return &verificationService{
		gateway: gateway,
		logger:  logger.With().Str("component", "verification_service").Logger(),
	}
}

func (s *verificationService) Verify(ctx context.Context, track assessment.Track, questions []assessment.Question, answers []assessment.RawAnswer) (assessment.VerifiedSet, error) {
	if len(questions) != len(answers) {
		return assessment.VerifiedSet{}, fmt.Errorf("questions and answers differ in length: %d vs %d", len(questions), len(answers))
	}

	verdicts, err := s.verifyWithGateway(ctx, track, questions, answers)
	if err != nil {
		s.logger.Warn().Err(err).Msg("ai verification unusable, grading locally")
		return buildVerifiedSet(questions, answers, nil, true), nil
	}

	return buildVerifiedSet(questions, answers, verdicts, false), nil
}

type verifierVerdict struct {
	IsCorrect     bool   `json:"isCorrect"`
	CorrectAnswer string `json:"correctAnswer"`
	Explanation   string `json:"explanation"`
}

// verifyWithGateway grades the whole attempt in one batch call. The verifier
// may disagree with the generated answer key; its verdict wins.
func (s *verificationService) verifyWithGateway(ctx context.Context, track assessment.Track, questions []assessment.Question, answers []assessment.RawAnswer) ([]verifierVerdict, error) {
	content, err := s.gateway.Complete(ctx, ai.Request{
		Operation: "verify",
		System: "You are a strict exam grader. Re-derive the correct answer yourself; do not trust the provided key blindly. " +
			"Respond with a JSON array only, one element per question, each: {\"isCorrect\": bool, \"correctAnswer\": string, \"explanation\": string}.",
		User: buildVerifyPrompt(track, questions, answers),
	})
	if err != nil {
		return nil, err
	}

	payload, err := ai.FirstJSONArray(content)
	if err != nil {
		return nil, err
	}

	var verdicts []verifierVerdict
	if err := json.Unmarshal([]byte(payload), &verdicts); err != nil {
		return nil, fmt.Errorf("%w: %v", ai.ErrParse, err)
	}
	if len(verdicts) != len(questions) {
		return nil, fmt.Errorf("%w: expected %d verdicts, got %d", ai.ErrParse, len(questions), len(verdicts))
	}

	return verdicts, nil
}

func buildVerifyPrompt(track assessment.Track, questions []assessment.Question, answers []assessment.RawAnswer) string {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("Grade this %q assessment attempt.\n\n", track))
	for i, q := range questions {
		builder.WriteString(fmt.Sprintf("Question %d (%s, %s): %s\n", i+1, q.Type, q.Difficulty, q.Prompt))
		if q.Type == assessment.QuestionMCQ {
			for j, option := range q.Options {
				builder.WriteString(fmt.Sprintf("  [%d] %s\n", j, option))
			}
			builder.WriteString(fmt.Sprintf("Claimed correct option: %d\n", q.CorrectIndex))
			if answers[i].OptionIndex != nil {
				builder.WriteString(fmt.Sprintf("Student chose option: %d\n", *answers[i].OptionIndex))
			} else {
				builder.WriteString("Student chose option: none\n")
			}
		} else {
			builder.WriteString(fmt.Sprintf("Claimed correct answer: %s\n", q.CorrectText))
			builder.WriteString(fmt.Sprintf("Student answered: %s\n", answers[i].Text))
		}
		builder.WriteString("\n")
	}
	builder.WriteString("Return only the JSON array of verdicts, in question order.")
	return builder.String()
}

// buildVerifiedSet assembles the graded outcome. With nil verdicts the local
// comparator grades against the generated answer key.
func buildVerifiedSet(questions []assessment.Question, answers []assessment.RawAnswer, verdicts []verifierVerdict, degraded bool) assessment.VerifiedSet {
	set := assessment.VerifiedSet{
		Results:  make([]assessment.VerifiedAnswer, 0, len(questions)),
		Degraded: degraded,
	}

	var gapTopics []string
	for i, q := range questions {
		result := assessment.VerifiedAnswer{
			QuestionID:  q.ID,
			Topic:       q.Topic,
			Difficulty:  q.Difficulty,
			Explanation: q.Explanation,
		}

		if verdicts != nil {
			result.IsCorrect = verdicts[i].IsCorrect
			result.CorrectAnswer = strings.TrimSpace(verdicts[i].CorrectAnswer)
			if explanation := strings.TrimSpace(verdicts[i].Explanation); explanation != "" {
				result.Explanation = explanation
			}
		} else {
			result.IsCorrect = locallyCorrect(q, answers[i])
		}
		if result.CorrectAnswer == "" {
			result.CorrectAnswer = keyedCorrectAnswer(q)
		}

		if result.IsCorrect {
			set.CorrectCount++
		} else {
			gapTopics = append(gapTopics, q.Topic)
		}
		set.Results = append(set.Results, result)
	}

	set.Gaps = assessment.DedupeGaps(gapTopics)
	return set
}

func locallyCorrect(q assessment.Question, answer assessment.RawAnswer) bool {
	if q.Type == assessment.QuestionMCQ {
		return answer.OptionIndex != nil && *answer.OptionIndex == q.CorrectIndex
	}
	return strings.EqualFold(strings.TrimSpace(answer.Text), strings.TrimSpace(q.CorrectText))
}

func keyedCorrectAnswer(q assessment.Question) string {
	if q.Type == assessment.QuestionMCQ {
		if q.CorrectIndex >= 0 && q.CorrectIndex < len(q.Options) {
			return q.Options[q.CorrectIndex]
		}
		return ""
	}
	return q.CorrectText
}
