package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/prepnexus/prepnexus-api/internal/assessment"
	"github.com/prepnexus/prepnexus-api/internal/models"
)

func TestSeedCoursesCoversEveryTrack(t *testing.T) {
	repo := &stubCourseRepo{}
	svc := NewSeedService(repo, zerolog.Nop())

	require.NoError(t, svc.SeedCourses(context.Background()))
	require.NotEmpty(t, repo.courses)

	perTrack := make(map[string]int)
	for _, course := range repo.courses {
		perTrack[course.Track]++
		require.NotEmpty(t, course.Title)
		require.NotEmpty(t, course.URL)
		require.NotEmpty(t, course.SkillCovered)
	}
	for _, track := range assessment.Tracks() {
		require.GreaterOrEqual(t, perTrack[string(track)], 3, "track %s underseeded", track)
	}
}

func TestSeedCoursesSkipsExistingCatalog(t *testing.T) {
	repo := &stubCourseRepo{courses: []models.Course{{ID: 1, Title: "Existing"}}}
	svc := NewSeedService(repo, zerolog.Nop())

	require.NoError(t, svc.SeedCourses(context.Background()))
	require.Zero(t, repo.bulkCreates)
	require.Len(t, repo.courses, 1)
}
