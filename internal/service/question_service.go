package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prepnexus/prepnexus-api/internal/assessment"
	"github.com/prepnexus/prepnexus-api/pkg/ai"
)

// QuestionService generates assessment question sets for a track.
type QuestionService interface {
	Generate(ctx context.Context, track assessment.Track, count int) ([]assessment.Question, error)
}

type questionService struct {
	gateway ai.Gateway
	logger  zerolog.Logger
	now     func() time.Time
}

// NewQuestionService constructs a question generation service.
func NewQuestionService(gateway ai.Gateway, logger zerolog.Logger) QuestionService {
	return &questionService{
		gateway: gateway,
		logger:  logger.With().Str("component", "question_service").Logger(),
		now:     time.Now,
	}
}

var trackTopics = map[assessment.Track][]string{
	assessment.TrackProgramming: {
		"Arrays", "Strings", "Linked Lists", "Trees", "Graphs",
		"Dynamic Programming", "Recursion", "Sorting", "Searching", "Time Complexity",
	},
	assessment.TrackDataScience: {
		"Statistics", "Probability", "Regression", "Classification", "Clustering",
		"Feature Engineering", "Model Evaluation", "Neural Networks", "Pandas", "Data Visualization",
	},
	assessment.TrackDatabases: {
		"SQL Joins", "Normalization", "Indexing", "Transactions", "ACID Properties",
		"Subqueries", "Stored Procedures", "NoSQL", "Query Optimization", "ER Modeling",
	},
	assessment.TrackBackend: {
		"HTTP Fundamentals", "REST API Design", "Authentication", "Caching", "Middleware",
		"WebSockets", "Web Security", "Session Management", "Deployment", "Rate Limiting",
	},
}

func (s *questionService) Generate(ctx context.Context, track assessment.Track, count int) ([]assessment.Question, error) {
	if count <= 0 {
		count = 5
	}

	content, err := s.gateway.Complete(ctx, ai.Request{
		Operation:   "generate",
		System:      "You are an exam writer for campus placement preparation. Respond with a JSON array only, no prose.",
		User:        s.buildPrompt(track, count),
		Temperature: 0.9,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("track", string(track)).Msg("question generation failed")
		return nil, err
	}

	questions, err := parseGeneratedQuestions(content, count)
	if err != nil {
		s.logger.Warn().Err(err).Str("track", string(track)).Msg("generated payload rejected")
		return nil, err
	}

	return questions, nil
}

// buildPrompt embeds a per-request seed so repeated generations for the same
// track do not converge on identical question sets.
func (s *questionService) buildPrompt(track assessment.Track, count int) string {
	seed := fmt.Sprintf("%d-%s", s.now().UnixNano(), uuid.NewString()[:8])

	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("Generate %d placement assessment questions for the track %q.\n", count, track))
	builder.WriteString("Cover a mix of these topics: ")
	builder.WriteString(strings.Join(trackTopics[track], ", "))
	builder.WriteString(".\n")
	builder.WriteString("Mix difficulties (Easy, Medium, Hard) and include at least one short_answer question.\n")
	builder.WriteString("Each element must have: question, type (\"mcq\" or \"short_answer\"), ")
	builder.WriteString("options (exactly 4 strings, mcq only), correctAnswer (option index or exact text), ")
	builder.WriteString("topic, difficulty, explanation.\n")
	builder.WriteString(fmt.Sprintf("Freshness seed: %s. Vary questions across seeds.\n", seed))
	builder.WriteString("Return only the JSON array.")
	return builder.String()
}

type generatedQuestion struct {
	Question      string      `json:"question"`
	Type          string      `json:"type"`
	Options       []string    `json:"options"`
	CorrectAnswer interface{} `json:"correctAnswer"`
	Topic         string      `json:"topic"`
	Difficulty    string      `json:"difficulty"`
	Explanation   string      `json:"explanation"`
}

func parseGeneratedQuestions(content string, want int) ([]assessment.Question, error) {
	payload, err := ai.FirstJSONArray(content)
	if err != nil {
		return nil, err
	}
	if err := ai.ValidateQuestionArray([]byte(payload)); err != nil {
		return nil, err
	}

	var raw []generatedQuestion
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ai.ErrParse, err)
	}
	if len(raw) != want {
		return nil, fmt.Errorf("%w: expected %d questions, got %d", ai.ErrParse, want, len(raw))
	}

	questions := make([]assessment.Question, 0, len(raw))
	for i, item := range raw {
		question, err := normalizeQuestion(item, i)
		if err != nil {
			return nil, err
		}
		questions = append(questions, question)
	}

	return questions, nil
}

func normalizeQuestion(item generatedQuestion, index int) (assessment.Question, error) {
	question := assessment.Question{
		ID:          fmt.Sprintf("q-%d", index+1),
		Prompt:      strings.TrimSpace(item.Question),
		Topic:       strings.TrimSpace(item.Topic),
		Explanation: strings.TrimSpace(item.Explanation),
	}
	if question.Topic == "" {
		question.Topic = "General"
	}
	if question.Explanation == "" {
		question.Explanation = "No explanation provided."
	}

	switch strings.ToLower(strings.TrimSpace(item.Difficulty)) {
	case "easy":
		question.Difficulty = assessment.DifficultyEasy
	case "hard":
		question.Difficulty = assessment.DifficultyHard
	default:
		question.Difficulty = assessment.DifficultyMedium
	}

	qType := strings.ToLower(strings.TrimSpace(item.Type))
	if qType == "" {
		if len(item.Options) > 0 {
			qType = string(assessment.QuestionMCQ)
		} else {
			qType = string(assessment.QuestionShortAnswer)
		}
	}

	switch qType {
	case string(assessment.QuestionMCQ):
		if len(item.Options) != 4 {
			return assessment.Question{}, fmt.Errorf("%w: mcq question needs exactly 4 options, got %d", ai.ErrParse, len(item.Options))
		}
		question.Type = assessment.QuestionMCQ
		question.Options = item.Options
		correctIndex, err := resolveCorrectIndex(item.CorrectAnswer, item.Options)
		if err != nil {
			return assessment.Question{}, err
		}
		question.CorrectIndex = correctIndex
	case string(assessment.QuestionShortAnswer):
		question.Type = assessment.QuestionShortAnswer
		question.CorrectText = resolveCorrectText(item.CorrectAnswer)
		if question.CorrectText == "" {
			return assessment.Question{}, fmt.Errorf("%w: short answer question missing correct answer", ai.ErrParse)
		}
	default:
		return assessment.Question{}, fmt.Errorf("%w: unknown question type %q", ai.ErrParse, qType)
	}

	return question, nil
}

// resolveCorrectIndex accepts either a numeric index or the option text; a
// value matching neither makes the question ungradable, so the whole set is
// rejected as malformed.
func resolveCorrectIndex(answer interface{}, options []string) (int, error) {
	switch v := answer.(type) {
	case float64:
		idx := int(v)
		if idx >= 0 && idx < len(options) {
			return idx, nil
		}
	case string:
		if idx, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && idx >= 0 && idx < len(options) {
			return idx, nil
		}
		for i, option := range options {
			if strings.EqualFold(strings.TrimSpace(option), strings.TrimSpace(v)) {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: mcq correct answer %v matches no option", ai.ErrParse, answer)
}

func resolveCorrectText(answer interface{}) string {
	switch v := answer.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}
