package dto

import (
	"time"

	"github.com/prepnexus/prepnexus-api/internal/assessment"
	"github.com/prepnexus/prepnexus-api/internal/models"
)

// GenerateAssessmentRequest asks for a fresh question set on a track.
type GenerateAssessmentRequest struct {
	Track string `json:"track" validate:"required"`
}

// QuestionView is the student-facing projection of a generated question;
// correct answers never leave the server.
type QuestionView struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	Question   string   `json:"question"`
	Options    []string `json:"options,omitempty"`
	Topic      string   `json:"topic"`
	Difficulty string   `json:"difficulty"`
}

// GenerateAssessmentResponse returns the attempt handle plus questions.
type GenerateAssessmentResponse struct {
	AttemptID string         `json:"attempt_id"`
	Track     string         `json:"track"`
	Questions []QuestionView `json:"questions"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// NewQuestionViews projects generated questions for the client.
func NewQuestionViews(questions []assessment.Question) []QuestionView {
	views := make([]QuestionView, 0, len(questions))
	for _, q := range questions {
		views = append(views, QuestionView{
			ID:         q.ID,
			Type:       string(q.Type),
			Question:   q.Prompt,
			Options:    q.Options,
			Topic:      q.Topic,
			Difficulty: string(q.Difficulty),
		})
	}
	return views
}

// SubmittedAnswer is one raw answer keyed by question ID.
type SubmittedAnswer struct {
	QuestionID  string `json:"question_id" validate:"required"`
	OptionIndex *int   `json:"option_index"`
	Text        string `json:"text"`
}

// SubmitAssessmentRequest finishes an attempt. Profile fields ride along so
// the student row can be created or refreshed on first submission.
type SubmitAssessmentRequest struct {
	AttemptID  string            `json:"attempt_id" validate:"required"`
	Answers    []SubmittedAnswer `json:"answers" validate:"required,min=1,dive"`
	Email      string            `json:"email" validate:"omitempty,email"`
	Department string            `json:"department" validate:"omitempty,max=120"`
	Year       *int              `json:"year" validate:"omitempty,min=1,max=6"`
}

// AnswerReview is the per-question grading detail shown after submission.
type AnswerReview struct {
	QuestionID    string `json:"question_id"`
	Topic         string `json:"topic"`
	Difficulty    string `json:"difficulty"`
	IsCorrect     bool   `json:"is_correct"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
}

// SkillGapView mirrors one predicted skill gap.
type SkillGapView struct {
	Skill    string `json:"skill"`
	GapType  string `json:"gapType"`
	Priority string `json:"priority"`
}

// PredictionView is the readiness profile included in submission results.
type PredictionView struct {
	Level                   string         `json:"level"`
	Confidence              float64        `json:"confidence"`
	SkillGaps               []SkillGapView `json:"skillGaps"`
	Recommendations         []string       `json:"recommendations"`
	EstimatedReadinessWeeks int            `json:"estimatedReadinessWeeks"`
}

// SubmitAssessmentResponse is the full attempt outcome. Degraded, Saved and
// PredictionSource let the client disclose partial failures without hiding
// the result itself.
type SubmitAssessmentResponse struct {
	Track            string         `json:"track"`
	CorrectAnswers   int            `json:"correct_answers"`
	TotalQuestions   int            `json:"total_questions"`
	Level            string         `json:"level"`
	Gaps             []string       `json:"gaps"`
	Review           []AnswerReview `json:"review"`
	Prediction       PredictionView `json:"prediction"`
	PredictionSource string         `json:"prediction_source"`
	Degraded         bool           `json:"degraded"`
	Saved            bool           `json:"saved"`
	Warnings         []string       `json:"warnings,omitempty"`
}

// NewPredictionView converts a domain prediction.
func NewPredictionView(p assessment.Prediction) PredictionView {
	gaps := make([]SkillGapView, 0, len(p.SkillGaps))
	for _, gap := range p.SkillGaps {
		gaps = append(gaps, SkillGapView(gap))
	}
	return PredictionView{
		Level:                   string(p.Level),
		Confidence:              p.Confidence,
		SkillGaps:               gaps,
		Recommendations:         p.Recommendations,
		EstimatedReadinessWeeks: p.EstimatedReadinessWeeks,
	}
}

// AssessmentResultView is a stored result as returned by history endpoints.
type AssessmentResultView struct {
	ID             uint      `json:"id"`
	Track          string    `json:"track"`
	CorrectAnswers int       `json:"correct_answers"`
	TotalQuestions int       `json:"total_questions"`
	Level          string    `json:"level"`
	Gaps           []string  `json:"gaps"`
	Confidence     *float64  `json:"confidence,omitempty"`
	Degraded       bool      `json:"degraded"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewAssessmentResultView converts a stored result row.
func NewAssessmentResultView(result models.AssessmentResult, gaps []string) AssessmentResultView {
	return AssessmentResultView{
		ID:             result.ID,
		Track:          result.Track,
		CorrectAnswers: result.CorrectAnswers,
		TotalQuestions: result.TotalQuestions,
		Level:          result.Level,
		Gaps:           gaps,
		Confidence:     result.ConfidenceScore,
		Degraded:       result.Degraded,
		CreatedAt:      result.CreatedAt,
	}
}
