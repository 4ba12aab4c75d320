package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/prepnexus/prepnexus-api/internal/dto"
	"github.com/prepnexus/prepnexus-api/pkg/ai"
)

const careerChatMaxHistory = 20

// CareerChatService streams career guidance replies. The latest assessment
// and resume analysis, when present, are folded into the system prompt so the
// assistant answers with the student's actual standing in mind.
type CareerChatService interface {
	Stream(ctx context.Context, username string, req dto.CareerChatRequest, onDelta func(string) error) error
}

type careerChatService struct {
	gateway     ai.Gateway
	assessments AssessmentService
	resumes     ResumeService
	validate    *validator.Validate
	logger      zerolog.Logger
}

// NewCareerChatService constructs the chat service. Assessments and resumes
// may be nil; the prompt then carries no personal context.
func NewCareerChatService(gateway ai.Gateway, assessments AssessmentService, resumes ResumeService, validate *validator.Validate, logger zerolog.Logger) CareerChatService {
	return &careerChatService{
		gateway:     gateway,
		assessments: assessments,
		resumes:     resumes,
		validate:    validate,
		logger:      logger.With().Str("component", "career_chat_service").Logger(),
	}
}

func (s *careerChatService) Stream(ctx context.Context, username string, req dto.CareerChatRequest, onDelta func(string) error) error {
	if err := s.validate.Struct(req); err != nil {
		return err
	}

	history := req.Messages
	if len(history) > careerChatMaxHistory {
		history = history[len(history)-careerChatMaxHistory:]
	}

	messages := make([]ai.ChatMessage, 0, len(history))
	for _, turn := range history {
		messages = append(messages, ai.ChatMessage{Role: turn.Role, Content: turn.Content})
	}

	system := s.buildSystemPrompt(ctx, username)
	if err := s.gateway.StreamChat(ctx, system, messages, onDelta); err != nil {
		s.logger.Error().Err(err).Str("username", username).Msg("career chat stream failed")
		return err
	}
	return nil
}

func (s *careerChatService) buildSystemPrompt(ctx context.Context, username string) string {
	var b strings.Builder
	b.WriteString("You are a career mentor for engineering students preparing for campus placements. ")
	b.WriteString("Give concrete, actionable advice about interviews, skills and preparation plans. ")
	b.WriteString("Keep answers focused and under 250 words unless asked for detail.")

	if s.assessments != nil {
		if latest, err := s.assessments.Latest(ctx, username); err == nil {
			fmt.Fprintf(&b, "\n\nStudent's latest assessment: track %q, scored %d/%d, readiness level %s.",
				latest.Track, latest.CorrectAnswers, latest.TotalQuestions, latest.Level)
			if len(latest.Gaps) > 0 {
				fmt.Fprintf(&b, " Known skill gaps: %s.", strings.Join(latest.Gaps, ", "))
			}
		}
	}

	if s.resumes != nil {
		if resume, err := s.resumes.Get(ctx, username); err == nil {
			fmt.Fprintf(&b, "\n\nResume score: %d/100.", resume.OverallScore)
			if len(resume.MissingSkills) > 0 {
				fmt.Fprintf(&b, " Skills missing from resume: %s.", strings.Join(resume.MissingSkills, ", "))
			}
			if len(resume.Recommendations) > 0 {
				fmt.Fprintf(&b, " Pending resume improvements: %s.", strings.Join(resume.Recommendations, "; "))
			}
		}
	}

	return b.String()
}
