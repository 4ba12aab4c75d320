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

// Prediction sources reported to the client.
const (
	PredictionSourceAI       = "ai"
	PredictionSourceFallback = "fallback"
)

// Gap type and priority values carried in readiness predictions.
const (
	GapTypeConceptual = "Conceptual"
	GapTypePractical  = "Practical"
)

// PredictionService derives a readiness profile from a graded attempt.
// Predict never fails: the deterministic fallback substitutes whenever the
// AI predictor is unusable, with the source reported alongside. The returned
// error is the classified reason for the fallback, nil on the AI path.
type PredictionService interface {
	Predict(ctx context.Context, track assessment.Track, verified assessment.VerifiedSet, provisional assessment.Level) (assessment.Prediction, string, error)
}

type predictionService struct {
	gateway ai.Gateway
	logger  zerolog.Logger
}

// NewPredictionService constructs a prediction service.
func NewPredictionService(gateway ai.Gateway, logger zerolog.Logger) PredictionService {
	return &predictionService{
		gateway: gateway,
		logger:  logger.With().Str("component", "prediction_service").Logger(),
	}
}

func (s *predictionService) Predict(ctx context.Context, track assessment.Track, verified assessment.VerifiedSet, provisional assessment.Level) (assessment.Prediction, string, error) {
	prediction, err := s.predictWithGateway(ctx, track, verified, provisional)
	if err != nil {
		s.logger.Warn().Err(err).Str("track", string(track)).Msg("ai prediction unusable, using fallback")
		return FallbackPrediction(provisional, verified.Gaps), PredictionSourceFallback, err
	}

	return prediction, PredictionSourceAI, nil
}

type predictedPayload struct {
	Level                   string                `json:"level"`
	Confidence              float64               `json:"confidence"`
	SkillGaps               []assessment.SkillGap `json:"skillGaps"`
	Recommendations         []string              `json:"recommendations"`
	EstimatedReadinessWeeks float64               `json:"estimatedReadinessWeeks"`
}

func (s *predictionService) predictWithGateway(ctx context.Context, track assessment.Track, verified assessment.VerifiedSet, provisional assessment.Level) (assessment.Prediction, error) {
	content, err := s.gateway.Complete(ctx, ai.Request{
		Operation: "predict",
		System: "You are a placement readiness advisor. Respond with a JSON object only: " +
			"{\"level\", \"confidence\" (0-100), \"skillGaps\" [{\"skill\",\"gapType\",\"priority\"}], " +
			"\"recommendations\" (exactly 3 strings), \"estimatedReadinessWeeks\" (>= 0)}.",
		User: buildPredictPrompt(track, verified, provisional),
	})
	if err != nil {
		return assessment.Prediction{}, err
	}

	payload, err := ai.FirstJSONObject(content)
	if err != nil {
		return assessment.Prediction{}, err
	}
	if err := ai.ValidatePrediction([]byte(payload)); err != nil {
		return assessment.Prediction{}, err
	}

	var predicted predictedPayload
	if err := json.Unmarshal([]byte(payload), &predicted); err != nil {
		return assessment.Prediction{}, fmt.Errorf("%w: %v", ai.ErrParse, err)
	}

	return normalizePrediction(predicted, provisional, verified.Gaps), nil
}

// WeightedScorePercent is the difficulty-weighted score of an attempt:
// each correct answer contributes its difficulty weight.
func WeightedScorePercent(verified assessment.VerifiedSet) float64 {
	var earned, possible int
	for _, result := range verified.Results {
		weight := result.Difficulty.Weight()
		possible += weight
		if result.IsCorrect {
			earned += weight
		}
	}
	if possible == 0 {
		return 0
	}
	return float64(earned) * 100 / float64(possible)
}

func buildPredictPrompt(track assessment.Track, verified assessment.VerifiedSet, provisional assessment.Level) string {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("Track: %s\n", track))
	builder.WriteString(fmt.Sprintf("Score: %d of %d correct\n", verified.CorrectCount, len(verified.Results)))
	builder.WriteString(fmt.Sprintf("Difficulty-weighted score: %.0f%%\n", WeightedScorePercent(verified)))
	builder.WriteString(fmt.Sprintf("Provisional level: %s\n", provisional))
	if len(verified.Gaps) > 0 {
		builder.WriteString("Topics answered incorrectly: " + strings.Join(verified.Gaps, ", ") + "\n")
	} else {
		builder.WriteString("Topics answered incorrectly: none\n")
	}
	builder.WriteString("Assess placement readiness for this student. Return only the JSON object.")
	return builder.String()
}

func normalizePrediction(predicted predictedPayload, provisional assessment.Level, gaps []string) assessment.Prediction {
	prediction := assessment.Prediction{
		Level:                   provisional,
		Confidence:              clampConfidence(predicted.Confidence),
		SkillGaps:               normalizeSkillGaps(predicted.SkillGaps),
		Recommendations:         predicted.Recommendations,
		EstimatedReadinessWeeks: int(predicted.EstimatedReadinessWeeks),
	}

	switch assessment.Level(strings.TrimSpace(predicted.Level)) {
	case assessment.LevelBeginner:
		prediction.Level = assessment.LevelBeginner
	case assessment.LevelIntermediate:
		prediction.Level = assessment.LevelIntermediate
	case assessment.LevelReady:
		prediction.Level = assessment.LevelReady
	}

	if prediction.EstimatedReadinessWeeks < 0 {
		prediction.EstimatedReadinessWeeks = 0
	}
	if len(prediction.SkillGaps) == 0 {
		prediction.SkillGaps = fallbackSkillGaps(gaps)
	}
	if len(prediction.Recommendations) == 0 {
		prediction.Recommendations = fallbackRecommendations(prediction.Level)
	}

	return prediction
}

// FallbackPrediction builds the deterministic readiness profile used when
// the predictor is unreachable or returns garbage.
func FallbackPrediction(provisional assessment.Level, gaps []string) assessment.Prediction {
	return assessment.Prediction{
		Level:                   provisional,
		Confidence:              75,
		SkillGaps:               fallbackSkillGaps(gaps),
		Recommendations:         fallbackRecommendations(provisional),
		EstimatedReadinessWeeks: fallbackWeeks(provisional),
	}
}

func fallbackSkillGaps(topics []string) []assessment.SkillGap {
	gaps := make([]assessment.SkillGap, 0, len(topics))
	for _, topic := range topics {
		gaps = append(gaps, assessment.SkillGap{
			Skill:    topic,
			GapType:  classifyGapType(topic),
			Priority: "Medium",
		})
	}
	return gaps
}

// normalizeSkillGaps coerces predictor output onto the Conceptual/Practical
// and High/Medium/Low vocabularies; unrecognised gap types are reclassified
// from the skill name.
func normalizeSkillGaps(gaps []assessment.SkillGap) []assessment.SkillGap {
	normalized := make([]assessment.SkillGap, 0, len(gaps))
	for _, gap := range gaps {
		switch strings.ToLower(strings.TrimSpace(gap.GapType)) {
		case "conceptual":
			gap.GapType = GapTypeConceptual
		case "practical":
			gap.GapType = GapTypePractical
		default:
			gap.GapType = classifyGapType(gap.Skill)
		}

		switch strings.ToLower(strings.TrimSpace(gap.Priority)) {
		case "high":
			gap.Priority = "High"
		case "low":
			gap.Priority = "Low"
		default:
			gap.Priority = "Medium"
		}

		normalized = append(normalized, gap)
	}
	return normalized
}

var conceptualKeywords = []string{
	"theory", "complexity", "normalization", "statistics", "probability",
	"acid", "fundamentals", "modeling", "design",
}

func classifyGapType(topic string) string {
	lowered := strings.ToLower(topic)
	for _, keyword := range conceptualKeywords {
		if strings.Contains(lowered, keyword) {
			return GapTypeConceptual
		}
	}
	return GapTypePractical
}

func fallbackRecommendations(level assessment.Level) []string {
	switch level {
	case assessment.LevelReady:
		return []string{
			"Attempt timed mock interviews to keep your speed sharp.",
			"Revise the few topics you missed to close remaining gaps.",
			"Practice explaining your solutions out loud.",
		}
	case assessment.LevelIntermediate:
		return []string{
			"Drill your weak topics with focused practice sets.",
			"Solve medium-difficulty problems daily for the next month.",
			"Re-take the assessment after revising the listed gaps.",
		}
	default:
		return []string{
			"Start with the fundamentals of your track before attempting problems.",
			"Follow a structured beginner course covering the listed gaps.",
			"Practice easy problems until they feel routine, then step up.",
		}
	}
}

func fallbackWeeks(level assessment.Level) int {
	switch level {
	case assessment.LevelReady:
		return 0
	case assessment.LevelIntermediate:
		return 4
	default:
		return 8
	}
}

func clampConfidence(confidence float64) float64 {
	if confidence < 0 {
		return 0
	}
	if confidence > 100 {
		return 100
	}
	return confidence
}
