package dto

import "github.com/prepnexus/prepnexus-api/internal/repository"

// GapCount is one aggregated skill gap across recent assessments.
type GapCount struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

// AnalyticsResponse is the TPO dashboard snapshot.
type AnalyticsResponse struct {
	TotalStudents       int64                   `json:"total_students"`
	TotalAssessments    int64                   `json:"total_assessments"`
	AverageScorePercent float64                 `json:"average_score_percent"`
	ReadyPercent        float64                 `json:"ready_percent"`
	LevelDistribution   []repository.LevelCount `json:"level_distribution"`
	TrackDistribution   []repository.TrackCount `json:"track_distribution"`
	TopGaps             []GapCount              `json:"top_gaps"`
}
