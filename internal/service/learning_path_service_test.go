package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/prepnexus/prepnexus-api/internal/assessment"
	"github.com/prepnexus/prepnexus-api/internal/models"
	"github.com/prepnexus/prepnexus-api/pkg/ai"
)

type stubCourseRepo struct {
	courses     []models.Course
	bulkCreates int
}

func (r *stubCourseRepo) BulkCreate(_ context.Context, courses []models.Course) error {
	r.bulkCreates++
	for i := range courses {
		courses[i].ID = uint(len(r.courses) + i + 1)
	}
	r.courses = append(r.courses, courses...)
	return nil
}

func (r *stubCourseRepo) Count(context.Context) (int64, error) {
	return int64(len(r.courses)), nil
}

func (r *stubCourseRepo) ListByTrack(_ context.Context, track string) ([]models.Course, error) {
	var out []models.Course
	for _, course := range r.courses {
		if course.Track == track {
			out = append(out, course)
		}
	}
	return out, nil
}

func (r *stubCourseRepo) ListBySkills(_ context.Context, track string, skills []string) ([]models.Course, error) {
	var out []models.Course
	for _, course := range r.courses {
		if course.Track != track {
			continue
		}
		for _, skill := range skills {
			if skillMatchesGap(course.SkillCovered, skill) {
				out = append(out, course)
				break
			}
		}
	}
	return out, nil
}

func (r *stubCourseRepo) GetByID(_ context.Context, id uint) (models.Course, error) {
	for _, course := range r.courses {
		if course.ID == id {
			return course, nil
		}
	}
	return models.Course{}, gorm.ErrRecordNotFound
}

type stubPathRepo struct {
	items map[string][]models.LearningPathItem
}

func newStubPathRepo() *stubPathRepo {
	return &stubPathRepo{items: make(map[string][]models.LearningPathItem)}
}

func (r *stubPathRepo) ReplaceForStudent(_ context.Context, username string, items []models.LearningPathItem) error {
	stored := make([]models.LearningPathItem, len(items))
	copy(stored, items)
	for i := range stored {
		stored[i].ID = uint(i + 1)
	}
	r.items[username] = stored
	return nil
}

func (r *stubPathRepo) ListByUsername(_ context.Context, username string) ([]models.LearningPathItem, error) {
	return r.items[username], nil
}

func (r *stubPathRepo) MarkCompleted(_ context.Context, username string, itemID uint) error {
	for i, item := range r.items[username] {
		if item.ID == itemID {
			r.items[username][i].IsCompleted = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func dsaCatalog() []models.Course {
	track := string(assessment.TrackProgramming)
	rated := func(r float64) *float64 { return &r }
	return []models.Course{
		{ID: 1, Title: "Graph Theory", Track: track, SkillCovered: "Graphs", Rating: rated(4.7)},
		{ID: 2, Title: "Recursion Masterclass", Track: track, SkillCovered: "Recursion", Rating: rated(4.5)},
		{ID: 3, Title: "Sorting Deep Dive", Track: track, SkillCovered: "Sorting", Rating: rated(4.9)},
	}
}

func resultWithGaps(t *testing.T, username string, gaps []string) models.AssessmentResult {
	t.Helper()
	encoded, err := json.Marshal(gaps)
	require.NoError(t, err)
	return models.AssessmentResult{
		StudentUsername: username,
		Track:           string(assessment.TrackProgramming),
		CorrectAnswers:  2,
		TotalQuestions:  5,
		Level:           string(assessment.LevelBeginner),
		Gaps:            datatypes.JSON(encoded),
	}
}

func TestGenerateRequiresAssessment(t *testing.T) {
	svc := NewLearningPathService(newStubPathRepo(), &stubCourseRepo{}, &stubAssessmentRepo{}, &stubGateway{}, zerolog.Nop())

	_, err := svc.Generate(context.Background(), "priya")
	require.ErrorIs(t, err, ErrNoAssessmentYet)
}

func TestGenerateFallsBackToDeterministicRanking(t *testing.T) {
	results := &stubAssessmentRepo{}
	require.NoError(t, results.Create(context.Background(), ptrOf(resultWithGaps(t, "priya", []string{"Graphs", "Recursion"}))))

	paths := newStubPathRepo()
	svc := NewLearningPathService(paths, &stubCourseRepo{courses: dsaCatalog()}, results, &stubGateway{err: ai.ErrUnavailable}, zerolog.Nop())

	items, err := svc.Generate(context.Background(), "priya")
	require.NoError(t, err)
	require.Len(t, items, 3)

	// gap-matched picks first, in gap order, then top-rated filler
	require.Equal(t, "Graphs", items[0].SkillGap)
	require.Equal(t, "High", items[0].Priority)
	require.Equal(t, "Recursion", items[1].SkillGap)
	require.Equal(t, "High", items[1].Priority)
	require.Equal(t, "Sorting", items[2].SkillGap)
	require.Equal(t, "Low", items[2].Priority)
}

func TestGenerateUsesGatewayRanking(t *testing.T) {
	results := &stubAssessmentRepo{}
	require.NoError(t, results.Create(context.Background(), ptrOf(resultWithGaps(t, "priya", []string{"Graphs"}))))

	// pick for course 99 does not exist in the catalog and must be dropped
	gateway := &stubGateway{response: `[
		{"courseId":1,"skillGap":"Graphs","reason":"Directly covers your weakest topic.","priority":"high"},
		{"courseId":99,"skillGap":"Graphs","reason":"Hallucinated.","priority":"High"}
	]`}
	paths := newStubPathRepo()
	svc := NewLearningPathService(paths, &stubCourseRepo{courses: dsaCatalog()}, results, gateway, zerolog.Nop())

	items, err := svc.Generate(context.Background(), "priya")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "Graphs", items[0].SkillGap)
	require.Equal(t, "High", items[0].Priority)
	require.Equal(t, "Directly covers your weakest topic.", items[0].Reason)
}

func TestMarkCompleted(t *testing.T) {
	paths := newStubPathRepo()
	paths.items["priya"] = []models.LearningPathItem{{ID: 7, StudentUsername: "priya", SkillGap: "Graphs"}}
	svc := NewLearningPathService(paths, &stubCourseRepo{}, &stubAssessmentRepo{}, &stubGateway{}, zerolog.Nop())

	require.NoError(t, svc.MarkCompleted(context.Background(), "priya", 7))
	require.True(t, paths.items["priya"][0].IsCompleted)
}

func TestCoursesRejectsUnknownTrack(t *testing.T) {
	svc := NewLearningPathService(newStubPathRepo(), &stubCourseRepo{}, &stubAssessmentRepo{}, &stubGateway{}, zerolog.Nop())

	_, err := svc.Courses(context.Background(), "Quantum Computing")
	require.ErrorIs(t, err, ErrInvalidTrack)
}

func ptrOf[T any](value T) *T { return &value }
