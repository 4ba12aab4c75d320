package dto

import "time"

// ResumeScoreBreakdown itemises the weighted scoring components (0-100 each).
type ResumeScoreBreakdown struct {
	SkillMatch     int `json:"skill_match"`
	ProjectQuality int `json:"project_quality"`
	Experience     int `json:"experience"`
	Structure      int `json:"structure"`
	ActionVerbs    int `json:"action_verbs"`
	Consistency    int `json:"consistency"`
}

// ResumeAnalysisResponse is the stored scoring outcome for a resume.
type ResumeAnalysisResponse struct {
	FileName        string               `json:"file_name"`
	FileURL         string               `json:"file_url,omitempty"`
	Track           string               `json:"track"`
	OverallScore    int                  `json:"overall_score"`
	Breakdown       ResumeScoreBreakdown `json:"breakdown"`
	SkillsFound     []string             `json:"skills_found"`
	MissingSkills   []string             `json:"missing_skills"`
	Recommendations []string             `json:"recommendations"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// LinkedInAnalyzeRequest submits raw profile text for analysis.
type LinkedInAnalyzeRequest struct {
	ProfileText string `json:"profile_text" validate:"required,min=30"`
	Track       string `json:"track" validate:"required"`
}

// LinkedInAnalysisResponse is the AI assessment of a LinkedIn profile.
type LinkedInAnalysisResponse struct {
	OverallScore    int      `json:"overall_score"`
	HeadlineScore   int      `json:"headline_score"`
	SummaryScore    int      `json:"summary_score"`
	MatchedSkills   []string `json:"matched_skills"`
	MissingSkills   []string `json:"missing_skills"`
	Strengths       []string `json:"strengths"`
	Improvements    []string `json:"improvements"`
	ProfileSummary  string   `json:"profile_summary"`
}
