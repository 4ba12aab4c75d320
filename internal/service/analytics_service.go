package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/prepnexus/prepnexus-api/internal/assessment"
	"github.com/prepnexus/prepnexus-api/internal/dto"
	"github.com/prepnexus/prepnexus-api/internal/models"
	"github.com/prepnexus/prepnexus-api/internal/repository"
)

const (
	analyticsCacheKey  = "analytics:dashboard"
	topGapLimit        = 10
	gapAggregateWindow = 200
)

// AnalyticsService builds the TPO dashboard snapshot, cached in redis so
// repeated dashboard loads do not hammer the aggregates.
type AnalyticsService interface {
	Dashboard(ctx context.Context) (dto.AnalyticsResponse, error)
}

type analyticsService struct {
	students repository.StudentRepository
	results  repository.AssessmentRepository
	redis    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewAnalyticsService constructs the analytics service. The redis client may
// be nil; caching is then skipped.
func NewAnalyticsService(students repository.StudentRepository, results repository.AssessmentRepository, redisClient *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) AnalyticsService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}

	return &analyticsService{
		students: students,
		results:  results,
		redis:    redisClient,
		cacheTTL: cacheTTL,
		logger:   logger.With().Str("component", "analytics_service").Logger(),
	}
}

func (s *analyticsService) Dashboard(ctx context.Context) (dto.AnalyticsResponse, error) {
	if cached, ok := s.fromCache(ctx); ok {
		return cached, nil
	}

	snapshot, err := s.buildSnapshot(ctx)
	if err != nil {
		return dto.AnalyticsResponse{}, err
	}

	s.toCache(ctx, snapshot)
	return snapshot, nil
}

func (s *analyticsService) buildSnapshot(ctx context.Context) (dto.AnalyticsResponse, error) {
	totalStudents, err := s.students.Count(ctx)
	if err != nil {
		return dto.AnalyticsResponse{}, fmt.Errorf("count students: %w", err)
	}
	totalAssessments, err := s.results.Count(ctx)
	if err != nil {
		return dto.AnalyticsResponse{}, fmt.Errorf("count assessments: %w", err)
	}
	average, err := s.results.AverageScorePercent(ctx)
	if err != nil {
		return dto.AnalyticsResponse{}, fmt.Errorf("average score: %w", err)
	}
	levels, err := s.results.LevelDistribution(ctx)
	if err != nil {
		return dto.AnalyticsResponse{}, fmt.Errorf("level distribution: %w", err)
	}
	tracks, err := s.results.TrackDistribution(ctx)
	if err != nil {
		return dto.AnalyticsResponse{}, fmt.Errorf("track distribution: %w", err)
	}
	recent, err := s.results.ListRecent(ctx, gapAggregateWindow)
	if err != nil {
		return dto.AnalyticsResponse{}, fmt.Errorf("recent results: %w", err)
	}

	return dto.AnalyticsResponse{
		TotalStudents:       totalStudents,
		TotalAssessments:    totalAssessments,
		AverageScorePercent: average,
		ReadyPercent:        readyPercent(levels),
		LevelDistribution:   levels,
		TrackDistribution:   tracks,
		TopGaps:             aggregateTopGaps(recent),
	}, nil
}

func readyPercent(levels []repository.LevelCount) float64 {
	var total, ready int64
	for _, bucket := range levels {
		total += bucket.Count
		if bucket.Level == string(assessment.LevelReady) {
			ready += bucket.Count
		}
	}
	if total == 0 {
		return 0
	}
	return float64(ready) * 100 / float64(total)
}

func aggregateTopGaps(recent []models.AssessmentResult) []dto.GapCount {
	counts := make(map[string]int)
	for _, result := range recent {
		for _, gap := range decodeGaps(result.Gaps) {
			counts[gap]++
		}
	}

	gaps := make([]dto.GapCount, 0, len(counts))
	for skill, count := range counts {
		gaps = append(gaps, dto.GapCount{Skill: skill, Count: count})
	}
	sort.Slice(gaps, func(i, j int) bool {
		if gaps[i].Count != gaps[j].Count {
			return gaps[i].Count > gaps[j].Count
		}
		return gaps[i].Skill < gaps[j].Skill
	})

	if len(gaps) > topGapLimit {
		gaps = gaps[:topGapLimit]
	}
	return gaps
}

func (s *analyticsService) fromCache(ctx context.Context) (dto.AnalyticsResponse, bool) {
	if s.redis == nil {
		return dto.AnalyticsResponse{}, false
	}

	cached, err := s.redis.Get(ctx, analyticsCacheKey).Result()
	if err != nil {
		return dto.AnalyticsResponse{}, false
	}

	var snapshot dto.AnalyticsResponse
	if err := json.Unmarshal([]byte(cached), &snapshot); err != nil {
		s.logger.Warn().Err(err).Msg("invalid cached analytics snapshot")
		return dto.AnalyticsResponse{}, false
	}
	return snapshot, true
}

func (s *analyticsService) toCache(ctx context.Context, snapshot dto.AnalyticsResponse) {
	if s.redis == nil {
		return
	}

	encoded, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode analytics snapshot")
		return
	}
	if err := s.redis.Set(ctx, analyticsCacheKey, encoded, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to cache analytics snapshot")
	}
}
