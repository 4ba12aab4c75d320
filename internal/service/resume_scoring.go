package service

import (
	"regexp"
	"strings"

	"github.com/prepnexus/prepnexus-api/internal/assessment"
	"github.com/prepnexus/prepnexus-api/internal/dto"
)

// Resume scoring is a deterministic heuristic: the same text always yields
// the same score, so students can measure the effect of an edit.

// Component weights; they sum to 1.
const (
	weightSkillMatch     = 0.30
	weightProjectQuality = 0.25
	weightExperience     = 0.15
	weightStructure      = 0.10
	weightActionVerbs    = 0.10
	weightConsistency    = 0.10
)

var trackSkillKeywords = map[assessment.Track][]string{
	assessment.TrackProgramming: {
		"data structures", "algorithms", "java", "python", "c++", "leetcode",
		"problem solving", "recursion", "dynamic programming", "complexity",
	},
	assessment.TrackDataScience: {
		"python", "pandas", "numpy", "machine learning", "scikit", "tensorflow",
		"statistics", "sql", "visualization", "deep learning",
	},
	assessment.TrackDatabases: {
		"sql", "mysql", "postgresql", "mongodb", "indexing", "normalization",
		"stored procedures", "query optimization", "transactions", "database design",
	},
	assessment.TrackBackend: {
		"rest", "api", "node", "express", "django", "spring", "docker",
		"authentication", "microservices", "redis",
	},
}

var actionVerbs = []string{
	"built", "developed", "implemented", "designed", "led", "optimized",
	"automated", "deployed", "migrated", "improved", "created", "reduced",
}

var sectionHeadings = []string{"education", "skills", "projects", "experience", "contact"}

var (
	metricPattern = regexp.MustCompile(`\d+\s*(%|percent|users|ms|x\b)`)
	linkPattern   = regexp.MustCompile(`(github\.com|gitlab\.com|bitbucket\.org)/\S+`)
)

type resumeAnalysis struct {
	Breakdown       dto.ResumeScoreBreakdown
	OverallScore    int
	SkillsFound     []string
	MissingSkills   []string
	Recommendations []string
}

func analyzeResumeText(text string, track assessment.Track) resumeAnalysis {
	lowered := strings.ToLower(text)

	analysis := resumeAnalysis{}
	analysis.SkillsFound, analysis.MissingSkills = matchSkills(lowered, track)

	analysis.Breakdown = dto.ResumeScoreBreakdown{
		SkillMatch:     ratioScore(len(analysis.SkillsFound), len(trackSkillKeywords[track])),
		ProjectQuality: projectQualityScore(lowered),
		Experience:     experienceScore(lowered),
		Structure:      structureScore(lowered),
		ActionVerbs:    actionVerbScore(lowered),
		Consistency:    consistencyScore(text),
	}

	weighted := float64(analysis.Breakdown.SkillMatch)*weightSkillMatch +
		float64(analysis.Breakdown.ProjectQuality)*weightProjectQuality +
		float64(analysis.Breakdown.Experience)*weightExperience +
		float64(analysis.Breakdown.Structure)*weightStructure +
		float64(analysis.Breakdown.ActionVerbs)*weightActionVerbs +
		float64(analysis.Breakdown.Consistency)*weightConsistency
	analysis.OverallScore = int(weighted + 0.5)

	analysis.Recommendations = resumeRecommendations(analysis)
	return analysis
}

func matchSkills(lowered string, track assessment.Track) (found, missing []string) {
	for _, skill := range trackSkillKeywords[track] {
		if strings.Contains(lowered, skill) {
			found = append(found, skill)
		} else {
			missing = append(missing, skill)
		}
	}
	return found, missing
}

func ratioScore(have, total int) int {
	if total == 0 {
		return 0
	}
	return have * 100 / total
}

func projectQualityScore(lowered string) int {
	score := 0
	if strings.Contains(lowered, "project") {
		score += 30
	}
	score += 20 * min(len(linkPattern.FindAllString(lowered, -1)), 2)
	score += 15 * min(len(metricPattern.FindAllString(lowered, -1)), 2)
	return min(score, 100)
}

func experienceScore(lowered string) int {
	score := 0
	for _, keyword := range []string{"intern", "experience", "worked", "company"} {
		if strings.Contains(lowered, keyword) {
			score += 25
		}
	}
	return min(score, 100)
}

func structureScore(lowered string) int {
	present := 0
	for _, heading := range sectionHeadings {
		if strings.Contains(lowered, heading) {
			present++
		}
	}
	return ratioScore(present, len(sectionHeadings))
}

func actionVerbScore(lowered string) int {
	used := 0
	for _, verb := range actionVerbs {
		if strings.Contains(lowered, verb) {
			used++
		}
	}
	return min(used*20, 100)
}

// consistencyScore rewards resumes long enough to carry substance but short
// enough to stay readable.
func consistencyScore(text string) int {
	length := len(strings.TrimSpace(text))
	switch {
	case length < 300:
		return 20
	case length < 800:
		return 60
	case length <= 4000:
		return 100
	case length <= 8000:
		return 70
	default:
		return 40
	}
}

func resumeRecommendations(analysis resumeAnalysis) []string {
	var recommendations []string
	if analysis.Breakdown.SkillMatch < 50 && len(analysis.MissingSkills) > 0 {
		recommendations = append(recommendations,
			"Add the track skills you have practiced, such as: "+strings.Join(firstN(analysis.MissingSkills, 3), ", ")+".")
	}
	if analysis.Breakdown.ProjectQuality < 60 {
		recommendations = append(recommendations,
			"Describe projects with measurable outcomes and link their repositories.")
	}
	if analysis.Breakdown.Experience < 50 {
		recommendations = append(recommendations,
			"Include internships, freelance work or volunteering to show applied experience.")
	}
	if analysis.Breakdown.Structure < 80 {
		recommendations = append(recommendations,
			"Use clear sections: contact, education, skills, projects, experience.")
	}
	if analysis.Breakdown.ActionVerbs < 60 {
		recommendations = append(recommendations,
			"Start bullet points with action verbs like built, implemented or optimized.")
	}
	if len(recommendations) == 0 {
		recommendations = append(recommendations, "Strong resume. Keep it updated as you complete new projects.")
	}
	return recommendations
}

func firstN(values []string, n int) []string {
	if len(values) <= n {
		return values
	}
	return values[:n]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
