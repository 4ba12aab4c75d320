package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/prepnexus/prepnexus-api/internal/assessment"
	"github.com/prepnexus/prepnexus-api/internal/dto"
	"github.com/prepnexus/prepnexus-api/internal/models"
	"github.com/prepnexus/prepnexus-api/internal/repository"
	"github.com/prepnexus/prepnexus-api/pkg/ai"
)

const maxPathItems = 8

// ErrNoAssessmentYet means a learning path was requested before any attempt.
var ErrNoAssessmentYet = errors.New("take an assessment before generating a learning path")

// LearningPathService turns a student's latest skill gaps into an ordered
// course plan. Ranking prefers the AI but degrades to a deterministic
// catalog ranking, so path generation never fails outright.
type LearningPathService interface {
	Generate(ctx context.Context, username string) ([]dto.LearningPathItemView, error)
	Get(ctx context.Context, username string) ([]dto.LearningPathItemView, error)
	MarkCompleted(ctx context.Context, username string, itemID uint) error
	Courses(ctx context.Context, track string) ([]dto.CourseView, error)
}

type learningPathService struct {
	paths   repository.LearningPathRepository
	courses repository.CourseRepository
	results repository.AssessmentRepository
	gateway ai.Gateway
	logger  zerolog.Logger
}

// NewLearningPathService constructs a learning path service.
func NewLearningPathService(
	paths repository.LearningPathRepository,
	courses repository.CourseRepository,
	results repository.AssessmentRepository,
	gateway ai.Gateway,
	logger zerolog.Logger,
) LearningPathService {
	return &learningPathService{
		paths:   paths,
		courses: courses,
		results: results,
		gateway: gateway,
		logger:  logger.With().Str("component", "learning_path_service").Logger(),
	}
}

func (s *learningPathService) Generate(ctx context.Context, username string) ([]dto.LearningPathItemView, error) {
	latest, err := s.results.LatestByUsername(ctx, username)
	if err != nil {
		return nil, ErrNoAssessmentYet
	}

	gaps := decodeGaps(latest.Gaps)
	candidates, err := s.courses.ListBySkills(ctx, latest.Track, gaps)
	if err != nil {
		return nil, fmt.Errorf("load courses: %w", err)
	}

	items, err := s.rankWithGateway(ctx, username, gaps, candidates)
	if err != nil {
		s.logger.Warn().Err(err).Str("username", username).Msg("ai ranking unusable, ranking deterministically")
		items = rankDeterministically(username, gaps, candidates)
	}

	if err := s.paths.ReplaceForStudent(ctx, username, items); err != nil {
		return nil, fmt.Errorf("store learning path: %w", err)
	}

	return s.Get(ctx, username)
}

func (s *learningPathService) Get(ctx context.Context, username string) ([]dto.LearningPathItemView, error) {
	items, err := s.paths.ListByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load learning path: %w", err)
	}
	return dto.NewLearningPathItemViews(items), nil
}

func (s *learningPathService) MarkCompleted(ctx context.Context, username string, itemID uint) error {
	return s.paths.MarkCompleted(ctx, username, itemID)
}

func (s *learningPathService) Courses(ctx context.Context, track string) ([]dto.CourseView, error) {
	if !assessment.ValidTrack(track) {
		return nil, ErrInvalidTrack
	}
	courses, err := s.courses.ListByTrack(ctx, track)
	if err != nil {
		return nil, fmt.Errorf("load courses: %w", err)
	}
	return dto.NewCourseViews(courses), nil
}

type rankedPick struct {
	CourseID float64 `json:"courseId"`
	SkillGap string  `json:"skillGap"`
	Reason   string  `json:"reason"`
	Priority string  `json:"priority"`
}

func (s *learningPathService) rankWithGateway(ctx context.Context, username string, gaps []string, candidates []models.Course) ([]models.LearningPathItem, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no catalog candidates to rank")
	}

	content, err := s.gateway.Complete(ctx, ai.Request{
		Operation: "learning_path",
		System: "You build study plans for placement preparation. Respond with a JSON array only, at most 8 elements, each: " +
			"{\"courseId\": number, \"skillGap\": string, \"reason\": string, \"priority\": \"High\"|\"Medium\"|\"Low\"}.",
		User: buildRankPrompt(gaps, candidates),
	})
	if err != nil {
		return nil, err
	}

	payload, err := ai.FirstJSONArray(content)
	if err != nil {
		return nil, err
	}
	var picks []rankedPick
	if err := json.Unmarshal([]byte(payload), &picks); err != nil {
		return nil, fmt.Errorf("%w: %v", ai.ErrParse, err)
	}

	valid := make(map[uint]models.Course, len(candidates))
	for _, course := range candidates {
		valid[course.ID] = course
	}

	items := make([]models.LearningPathItem, 0, maxPathItems)
	for _, pick := range picks {
		courseID := uint(pick.CourseID)
		if _, ok := valid[courseID]; !ok {
			continue
		}
		id := courseID
		items = append(items, models.LearningPathItem{
			StudentUsername: username,
			SkillGap:        strings.TrimSpace(pick.SkillGap),
			CourseID:        &id,
			Reason:          strings.TrimSpace(pick.Reason),
			Priority:        normalizePriority(pick.Priority),
		})
		if len(items) == maxPathItems {
			break
		}
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no valid picks", ai.ErrParse)
	}

	return items, nil
}

func buildRankPrompt(gaps []string, candidates []models.Course) string {
	builder := strings.Builder{}
	if len(gaps) > 0 {
		builder.WriteString("Skill gaps, most important first: " + strings.Join(gaps, ", ") + "\n\n")
	} else {
		builder.WriteString("No specific gaps; build a general improvement plan.\n\n")
	}
	builder.WriteString("Catalog courses:\n")
	for _, course := range candidates {
		rating := "unrated"
		if course.Rating != nil {
			rating = fmt.Sprintf("%.1f", *course.Rating)
		}
		builder.WriteString(fmt.Sprintf("- id=%d %q covers %q (%s, rating %s)\n",
			course.ID, course.Title, course.SkillCovered, course.DifficultyLevel, rating))
	}
	builder.WriteString("\nPick the best courses for these gaps. Return only the JSON array.")
	return builder.String()
}

// rankDeterministically matches each gap to its best-rated covering course,
// in gap order, then fills remaining slots with top-rated leftovers.
func rankDeterministically(username string, gaps []string, candidates []models.Course) []models.LearningPathItem {
	sorted := make([]models.Course, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return ratingOf(sorted[i]) > ratingOf(sorted[j])
	})

	used := make(map[uint]struct{})
	items := make([]models.LearningPathItem, 0, maxPathItems)

	appendItem := func(course models.Course, gap, priority string) {
		id := course.ID
		items = append(items, models.LearningPathItem{
			StudentUsername: username,
			SkillGap:        gap,
			CourseID:        &id,
			Reason:          fmt.Sprintf("Covers %s, which you answered incorrectly.", gap),
			Priority:        priority,
		})
		used[course.ID] = struct{}{}
	}

	for i, gap := range gaps {
		if len(items) == maxPathItems {
			break
		}
		priority := "Medium"
		if i < 2 {
			priority = "High"
		}
		for _, course := range sorted {
			if _, taken := used[course.ID]; taken {
				continue
			}
			if skillMatchesGap(course.SkillCovered, gap) {
				appendItem(course, gap, priority)
				break
			}
		}
	}

	for _, course := range sorted {
		if len(items) == maxPathItems {
			break
		}
		if _, taken := used[course.ID]; taken {
			continue
		}
		id := course.ID
		items = append(items, models.LearningPathItem{
			StudentUsername: username,
			SkillGap:        course.SkillCovered,
			CourseID:        &id,
			Reason:          "Highly rated course for your track.",
			Priority:        "Low",
		})
		used[course.ID] = struct{}{}
	}

	return items
}

func skillMatchesGap(skill, gap string) bool {
	s := strings.ToLower(strings.TrimSpace(skill))
	g := strings.ToLower(strings.TrimSpace(gap))
	return s != "" && g != "" && (strings.Contains(s, g) || strings.Contains(g, s))
}

func ratingOf(course models.Course) float64 {
	if course.Rating == nil {
		return 0
	}
	return *course.Rating
}

func normalizePriority(priority string) string {
	switch strings.ToLower(strings.TrimSpace(priority)) {
	case "high":
		return "High"
	case "low":
		return "Low"
	default:
		return "Medium"
	}
}
