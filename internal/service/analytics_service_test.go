package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/prepnexus/prepnexus-api/internal/repository"
)

type countingResultsRepo struct {
	*stubAssessmentRepo
	countCalls int
}

func (r *countingResultsRepo) Count(ctx context.Context) (int64, error) {
	r.countCalls++
	return r.stubAssessmentRepo.Count(ctx)
}

func analyticsFixture(t *testing.T) (*countingResultsRepo, *redis.Client, AnalyticsService) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})

	results := &countingResultsRepo{stubAssessmentRepo: &stubAssessmentRepo{}}
	svc := NewAnalyticsService(newStubStudentRepo(), results, client, time.Minute, zerolog.Nop())
	return results, client, svc
}

func TestDashboardAggregatesTopGaps(t *testing.T) {
	results, _, svc := analyticsFixture(t)

	for _, gaps := range [][]string{
		{"Graphs", "Recursion"},
		{"Graphs"},
		{"Recursion", "Graphs"},
		{"Sorting"},
	} {
		require.NoError(t, results.Create(context.Background(), ptrOf(resultWithGaps(t, "someone", gaps))))
	}

	dashboard, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 4, dashboard.TotalAssessments)

	require.Len(t, dashboard.TopGaps, 3)
	require.Equal(t, "Graphs", dashboard.TopGaps[0].Skill)
	require.Equal(t, 3, dashboard.TopGaps[0].Count)
	require.Equal(t, "Recursion", dashboard.TopGaps[1].Skill)
	require.Equal(t, 2, dashboard.TopGaps[1].Count)
	require.Equal(t, "Sorting", dashboard.TopGaps[2].Skill)
}

func TestDashboardServedFromCache(t *testing.T) {
	results, client, svc := analyticsFixture(t)
	require.NoError(t, results.Create(context.Background(), ptrOf(resultWithGaps(t, "someone", []string{"Graphs"}))))

	_, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, results.countCalls)

	cached, err := client.Get(context.Background(), "analytics:dashboard").Result()
	require.NoError(t, err)
	require.True(t, json.Valid([]byte(cached)))

	_, err = svc.Dashboard(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, results.countCalls)
}

func TestReadyPercent(t *testing.T) {
	levels := []repository.LevelCount{
		{Level: "Ready", Count: 3},
		{Level: "Intermediate", Count: 5},
		{Level: "Beginner", Count: 2},
	}
	require.InDelta(t, 30.0, readyPercent(levels), 0.001)
	require.Zero(t, readyPercent(nil))
}
