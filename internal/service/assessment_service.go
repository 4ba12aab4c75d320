package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/prepnexus/prepnexus-api/internal/assessment"
	"github.com/prepnexus/prepnexus-api/internal/dto"
	"github.com/prepnexus/prepnexus-api/internal/models"
	"github.com/prepnexus/prepnexus-api/internal/observability"
	"github.com/prepnexus/prepnexus-api/internal/repository"
	"github.com/prepnexus/prepnexus-api/pkg/ai"
)

// Assessment service errors surfaced to handlers.
var (
	ErrInvalidTrack         = errors.New("unknown assessment track")
	ErrIncompleteSubmission = errors.New("every question needs an answer")
	ErrResultNotFound       = errors.New("no assessment result found")
)

// AssessmentService owns the assessment lifecycle: generation, submission
// orchestration and result reads.
type AssessmentService interface {
	Tracks() []string
	Start(ctx context.Context, username, track string) (dto.GenerateAssessmentResponse, error)
	Submit(ctx context.Context, username string, req dto.SubmitAssessmentRequest) (dto.SubmitAssessmentResponse, error)
	Latest(ctx context.Context, username string) (dto.AssessmentResultView, error)
	History(ctx context.Context, username string) ([]dto.AssessmentResultView, error)
}

type assessmentService struct {
	questions     QuestionService
	verifier      VerificationService
	predictor     PredictionService
	attempts      AttemptStore
	students      repository.StudentRepository
	results       repository.AssessmentRepository
	validate      *validator.Validate
	logger        zerolog.Logger
	now           func() time.Time
	questionCount int
	attemptTTL    time.Duration
}

// NewAssessmentService constructs the assessment orchestration service.
func NewAssessmentService(
	questions QuestionService,
	verifier VerificationService,
	predictor PredictionService,
	attempts AttemptStore,
	students repository.StudentRepository,
	results repository.AssessmentRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
	questionCount int,
	attemptTTL time.Duration,
) AssessmentService {
	if questionCount <= 0 {
		questionCount = 5
	}
	if attemptTTL <= 0 {
		attemptTTL = 30 * time.Minute
	}

	return &assessmentService{
		questions:     questions,
		verifier:      verifier,
		predictor:     predictor,
		attempts:      attempts,
		students:      students,
		results:       results,
		validate:      validate,
		logger:        logger.With().Str("component", "assessment_service").Logger(),
		now:           time.Now,
		questionCount: questionCount,
		attemptTTL:    attemptTTL,
	}
}

func (s *assessmentService) Tracks() []string {
	tracks := assessment.Tracks()
	out := make([]string, 0, len(tracks))
	for _, track := range tracks {
		out = append(out, string(track))
	}
	return out
}

func (s *assessmentService) Start(ctx context.Context, username, track string) (dto.GenerateAssessmentResponse, error) {
	if !assessment.ValidTrack(track) {
		return dto.GenerateAssessmentResponse{}, ErrInvalidTrack
	}

	questions, err := s.questions.Generate(ctx, assessment.Track(track), s.questionCount)
	if err != nil {
		return dto.GenerateAssessmentResponse{}, err
	}

	attempt := StoredAttempt{
		ID:        uuid.NewString(),
		Username:  username,
		Track:     assessment.Track(track),
		Questions: questions,
		ExpiresAt: s.now().Add(s.attemptTTL),
	}
	if err := s.attempts.Save(ctx, attempt); err != nil {
		return dto.GenerateAssessmentResponse{}, fmt.Errorf("save attempt: %w", err)
	}

	s.logger.Info().
		Str("username", username).
		Str("track", track).
		Str("attempt_id", attempt.ID).
		Msg("assessment started")

	return dto.GenerateAssessmentResponse{
		AttemptID: attempt.ID,
		Track:     track,
		Questions: dto.NewQuestionViews(questions),
		ExpiresAt: attempt.ExpiresAt,
	}, nil
}

// Submit runs the strictly sequential pipeline: verify, derive the
// provisional level, upsert the student, predict, persist. Prediction and
// persistence failures degrade the response instead of failing it.
func (s *assessmentService) Submit(ctx context.Context, username string, req dto.SubmitAssessmentRequest) (dto.SubmitAssessmentResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.SubmitAssessmentResponse{}, err
	}

	attempt, err := s.attempts.Get(ctx, req.AttemptID)
	if err != nil {
		return dto.SubmitAssessmentResponse{}, err
	}
	if attempt.Username != username {
		return dto.SubmitAssessmentResponse{}, ErrAttemptNotFound
	}

	rawAnswers, err := alignAnswers(attempt.Questions, req.Answers)
	if err != nil {
		return dto.SubmitAssessmentResponse{}, err
	}

	verified, err := s.verifier.Verify(ctx, attempt.Track, attempt.Questions, rawAnswers)
	if err != nil {
		return dto.SubmitAssessmentResponse{}, fmt.Errorf("verify attempt: %w", err)
	}

	provisional := assessment.DeriveLevel(verified.CorrectCount, len(attempt.Questions))

	var warnings []string
	if verified.Degraded {
		warnings = append(warnings, "answers were graded locally because automatic verification was unavailable")
	}

	persistable := true
	student := models.Student{
		Username:     username,
		Email:        req.Email,
		Department:   req.Department,
		Year:         req.Year,
		IsRegistered: true,
	}
	if _, err := s.students.Upsert(ctx, student); err != nil {
		s.logger.Error().Err(err).Str("username", username).Msg("student upsert failed")
		warnings = append(warnings, "your profile could not be updated; the result was not saved")
		persistable = false
	}

	prediction, source, predictErr := s.predictor.Predict(ctx, attempt.Track, verified, provisional)
	if source == PredictionSourceFallback {
		switch {
		case errors.Is(predictErr, ai.ErrQuotaExhausted):
			warnings = append(warnings, "readiness prediction is an estimate; AI credits are exhausted")
		case errors.Is(predictErr, ai.ErrRateLimited):
			warnings = append(warnings, "readiness prediction is an estimate; the predictor is rate limited")
		default:
			warnings = append(warnings, "readiness prediction is an estimate; the predictor was unavailable")
		}
	}

	saved := false
	if persistable {
		saved = s.persistResult(ctx, username, attempt, verified, prediction)
		if !saved {
			warnings = append(warnings, "the result could not be saved; it will not appear in your history")
		}
	}

	if err := s.attempts.Delete(ctx, attempt.ID); err != nil {
		s.logger.Warn().Err(err).Str("attempt_id", attempt.ID).Msg("attempt cleanup failed")
	}

	observability.AssessmentAttempts().
		WithLabelValues(string(attempt.Track), string(prediction.Level)).Inc()

	return dto.SubmitAssessmentResponse{
		Track:            string(attempt.Track),
		CorrectAnswers:   verified.CorrectCount,
		TotalQuestions:   len(attempt.Questions),
		Level:            string(prediction.Level),
		Gaps:             verified.Gaps,
		Review:           buildReview(verified),
		Prediction:       dto.NewPredictionView(prediction),
		PredictionSource: source,
		Degraded:         verified.Degraded,
		Saved:            saved,
		Warnings:         warnings,
	}, nil
}

// alignAnswers orders submitted answers by question and enforces that every
// question has a usable answer.
func alignAnswers(questions []assessment.Question, submitted []dto.SubmittedAnswer) ([]assessment.RawAnswer, error) {
	byID := make(map[string]dto.SubmittedAnswer, len(submitted))
	for _, answer := range submitted {
		byID[answer.QuestionID] = answer
	}

	aligned := make([]assessment.RawAnswer, 0, len(questions))
	for _, question := range questions {
		answer, ok := byID[question.ID]
		if !ok {
			return nil, fmt.Errorf("%w: missing answer for %s", ErrIncompleteSubmission, question.ID)
		}
		raw := assessment.RawAnswer{OptionIndex: answer.OptionIndex, Text: answer.Text}
		if !raw.Provided(question.Type) {
			return nil, fmt.Errorf("%w: empty answer for %s", ErrIncompleteSubmission, question.ID)
		}
		aligned = append(aligned, raw)
	}

	return aligned, nil
}

func buildReview(verified assessment.VerifiedSet) []dto.AnswerReview {
	review := make([]dto.AnswerReview, 0, len(verified.Results))
	for _, result := range verified.Results {
		review = append(review, dto.AnswerReview{
			QuestionID:    result.QuestionID,
			Topic:         result.Topic,
			Difficulty:    string(result.Difficulty),
			IsCorrect:     result.IsCorrect,
			CorrectAnswer: result.CorrectAnswer,
			Explanation:   result.Explanation,
		})
	}
	return review
}

func (s *assessmentService) persistResult(ctx context.Context, username string, attempt StoredAttempt, verified assessment.VerifiedSet, prediction assessment.Prediction) bool {
	gapsJSON, err := json.Marshal(verified.Gaps)
	if err != nil {
		s.logger.Error().Err(err).Msg("encode gaps failed")
		return false
	}
	responsesJSON, err := json.Marshal(verified.Results)
	if err != nil {
		s.logger.Error().Err(err).Msg("encode responses failed")
		return false
	}
	predictionJSON, err := json.Marshal(prediction)
	if err != nil {
		s.logger.Error().Err(err).Msg("encode prediction failed")
		return false
	}

	confidence := prediction.Confidence
	result := models.AssessmentResult{
		StudentUsername:   username,
		Track:             string(attempt.Track),
		CorrectAnswers:    verified.CorrectCount,
		TotalQuestions:    len(attempt.Questions),
		Level:             string(prediction.Level),
		Gaps:              datatypes.JSON(gapsJSON),
		QuestionResponses: datatypes.JSON(responsesJSON),
		AIPrediction:      datatypes.JSON(predictionJSON),
		ConfidenceScore:   &confidence,
		Degraded:          verified.Degraded,
	}
	if err := s.results.Create(ctx, &result); err != nil {
		s.logger.Error().Err(err).Str("username", username).Msg("result persistence failed")
		return false
	}

	return true
}

func (s *assessmentService) Latest(ctx context.Context, username string) (dto.AssessmentResultView, error) {
	result, err := s.results.LatestByUsername(ctx, username)
	if err != nil {
		return dto.AssessmentResultView{}, ErrResultNotFound
	}

	return dto.NewAssessmentResultView(result, decodeGaps(result.Gaps)), nil
}

func (s *assessmentService) History(ctx context.Context, username string) ([]dto.AssessmentResultView, error) {
	results, err := s.results.ListByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}

	views := make([]dto.AssessmentResultView, 0, len(results))
	for _, result := range results {
		views = append(views, dto.NewAssessmentResultView(result, decodeGaps(result.Gaps)))
	}

	return views, nil
}

func decodeGaps(raw datatypes.JSON) []string {
	var gaps []string
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &gaps)
	}
	return gaps
}
