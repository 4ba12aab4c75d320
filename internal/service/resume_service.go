package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/prepnexus/prepnexus-api/internal/assessment"
	"github.com/prepnexus/prepnexus-api/internal/dto"
	"github.com/prepnexus/prepnexus-api/internal/models"
	"github.com/prepnexus/prepnexus-api/internal/repository"
	"github.com/prepnexus/prepnexus-api/pkg/ai"
)

// Resume service errors surfaced to handlers.
var (
	ErrUnsupportedFileType = errors.New("only PDF or plain-text resumes are accepted")
	ErrEmptyResume         = errors.New("resume has no readable text")
	ErrResumeNotFound      = errors.New("no resume uploaded yet")
)

// FileUploader stores a raw file and returns its public URL.
type FileUploader interface {
	Upload(ctx context.Context, fileName string, data []byte) (string, error)
}

// ResumeService scores uploaded resumes and analyzes LinkedIn profiles.
type ResumeService interface {
	Analyze(ctx context.Context, username, track, fileName string, data []byte) (dto.ResumeAnalysisResponse, error)
	Get(ctx context.Context, username string) (dto.ResumeAnalysisResponse, error)
	AnalyzeLinkedIn(ctx context.Context, req dto.LinkedInAnalyzeRequest) (dto.LinkedInAnalysisResponse, error)
}

type resumeService struct {
	resumes  repository.ResumeRepository
	uploader FileUploader
	gateway  ai.Gateway
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewResumeService constructs the resume service. The uploader may be nil;
// scoring then still works and only the stored URL is skipped.
func NewResumeService(resumes repository.ResumeRepository, uploader FileUploader, gateway ai.Gateway, validate *validator.Validate, logger zerolog.Logger) ResumeService {
	return &resumeService{
		resumes:  resumes,
		uploader: uploader,
		gateway:  gateway,
		validate: validate,
		logger:   logger.With().Str("component", "resume_service").Logger(),
	}
}

type storedResumeAnalysis struct {
	Track           string                   `json:"track"`
	Breakdown       dto.ResumeScoreBreakdown `json:"breakdown"`
	MissingSkills   []string                 `json:"missing_skills"`
	Recommendations []string                 `json:"recommendations"`
}

func (s *resumeService) Analyze(ctx context.Context, username, track, fileName string, data []byte) (dto.ResumeAnalysisResponse, error) {
	if !assessment.ValidTrack(track) {
		return dto.ResumeAnalysisResponse{}, ErrInvalidTrack
	}

	detected := mimetype.Detect(data)
	text := ""
	switch {
	case detected.Is("text/plain"):
		text = string(data)
	case detected.Is("application/pdf"):
		text = printableRuns(data)
	default:
		return dto.ResumeAnalysisResponse{}, fmt.Errorf("%w: got %s", ErrUnsupportedFileType, detected.String())
	}
	if strings.TrimSpace(text) == "" {
		return dto.ResumeAnalysisResponse{}, ErrEmptyResume
	}

	fileURL := ""
	if s.uploader != nil {
		url, err := s.uploader.Upload(ctx, fileName, data)
		if err != nil {
			s.logger.Warn().Err(err).Str("username", username).Msg("resume upload failed, scoring anyway")
		} else {
			fileURL = url
		}
	}

	analysis := analyzeResumeText(text, assessment.Track(track))

	skillsJSON, err := json.Marshal(analysis.SkillsFound)
	if err != nil {
		return dto.ResumeAnalysisResponse{}, fmt.Errorf("encode skills: %w", err)
	}
	analysisJSON, err := json.Marshal(storedResumeAnalysis{
		Track:           track,
		Breakdown:       analysis.Breakdown,
		MissingSkills:   analysis.MissingSkills,
		Recommendations: analysis.Recommendations,
	})
	if err != nil {
		return dto.ResumeAnalysisResponse{}, fmt.Errorf("encode analysis: %w", err)
	}

	overall := analysis.OverallScore
	stored, err := s.resumes.Upsert(ctx, models.Resume{
		StudentUsername: username,
		FileName:        fileName,
		FileURL:         fileURL,
		ExtractedText:   text,
		OverallScore:    &overall,
		SkillsFound:     datatypes.JSON(skillsJSON),
		AnalysisJSON:    datatypes.JSON(analysisJSON),
	})
	if err != nil {
		return dto.ResumeAnalysisResponse{}, fmt.Errorf("store resume: %w", err)
	}

	s.logger.Info().Str("username", username).Int("score", overall).Msg("resume analyzed")
	return buildResumeResponse(stored, track, analysis.Breakdown, analysis.SkillsFound, analysis.MissingSkills, analysis.Recommendations), nil
}

func (s *resumeService) Get(ctx context.Context, username string) (dto.ResumeAnalysisResponse, error) {
	stored, err := s.resumes.GetByUsername(ctx, username)
	if err != nil {
		return dto.ResumeAnalysisResponse{}, ErrResumeNotFound
	}

	var skills []string
	if len(stored.SkillsFound) > 0 {
		_ = json.Unmarshal(stored.SkillsFound, &skills)
	}
	var analysis storedResumeAnalysis
	if len(stored.AnalysisJSON) > 0 {
		_ = json.Unmarshal(stored.AnalysisJSON, &analysis)
	}

	return buildResumeResponse(stored, analysis.Track, analysis.Breakdown, skills, analysis.MissingSkills, analysis.Recommendations), nil
}

func buildResumeResponse(stored models.Resume, track string, breakdown dto.ResumeScoreBreakdown, skills, missing, recommendations []string) dto.ResumeAnalysisResponse {
	overall := 0
	if stored.OverallScore != nil {
		overall = *stored.OverallScore
	}
	return dto.ResumeAnalysisResponse{
		FileName:        stored.FileName,
		FileURL:         stored.FileURL,
		Track:           track,
		OverallScore:    overall,
		Breakdown:       breakdown,
		SkillsFound:     skills,
		MissingSkills:   missing,
		Recommendations: recommendations,
		UpdatedAt:       stored.UpdatedAt,
	}
}

type linkedInPayload struct {
	OverallScore   float64  `json:"overallScore"`
	HeadlineScore  float64  `json:"headlineScore"`
	SummaryScore   float64  `json:"summaryScore"`
	MatchedSkills  []string `json:"matchedSkills"`
	MissingSkills  []string `json:"missingSkills"`
	Strengths      []string `json:"strengths"`
	Improvements   []string `json:"improvements"`
	ProfileSummary string   `json:"profileSummary"`
}

func (s *resumeService) AnalyzeLinkedIn(ctx context.Context, req dto.LinkedInAnalyzeRequest) (dto.LinkedInAnalysisResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.LinkedInAnalysisResponse{}, err
	}
	if !assessment.ValidTrack(req.Track) {
		return dto.LinkedInAnalysisResponse{}, ErrInvalidTrack
	}

	content, err := s.gateway.Complete(ctx, ai.Request{
		Operation: "linkedin",
		System: "You review LinkedIn profiles of students preparing for campus placements. Respond with a JSON object only: " +
			"{\"overallScore\",\"headlineScore\",\"summaryScore\" (0-100), \"matchedSkills\",\"missingSkills\",\"strengths\",\"improvements\" (string arrays), \"profileSummary\"}.",
		User: fmt.Sprintf("Target track: %s\n\nProfile text:\n%s\n\nReturn only the JSON object.", req.Track, req.ProfileText),
	})
	if err != nil {
		return dto.LinkedInAnalysisResponse{}, err
	}

	payload, err := ai.FirstJSONObject(content)
	if err != nil {
		return dto.LinkedInAnalysisResponse{}, err
	}
	var parsed linkedInPayload
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return dto.LinkedInAnalysisResponse{}, fmt.Errorf("%w: %v", ai.ErrParse, err)
	}

	return dto.LinkedInAnalysisResponse{
		OverallScore:   clampScore(parsed.OverallScore),
		HeadlineScore:  clampScore(parsed.HeadlineScore),
		SummaryScore:   clampScore(parsed.SummaryScore),
		MatchedSkills:  parsed.MatchedSkills,
		MissingSkills:  parsed.MissingSkills,
		Strengths:      parsed.Strengths,
		Improvements:   parsed.Improvements,
		ProfileSummary: parsed.ProfileSummary,
	}, nil
}

func clampScore(score float64) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return int(score)
}

// printableRuns pulls readable text out of a PDF byte stream. It is a crude
// extraction, enough for the keyword heuristics to work on text-based PDFs.
func printableRuns(data []byte) string {
	builder := strings.Builder{}
	run := strings.Builder{}
	for _, b := range data {
		if b == '\n' || b == '\t' || (b >= 0x20 && b < 0x7f) {
			run.WriteByte(b)
			continue
		}
		if run.Len() >= 4 {
			builder.WriteString(run.String())
			builder.WriteByte(' ')
		}
		run.Reset()
	}
	if run.Len() >= 4 {
		builder.WriteString(run.String())
	}
	return builder.String()
}
