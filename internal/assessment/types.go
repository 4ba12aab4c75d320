package assessment

import "strings"

// Track is a named subject domain a student can be assessed on.
type Track string

// Supported assessment tracks.
const (
	TrackProgramming Track = "Programming & DSA"
	TrackDataScience Track = "Data Science & ML"
	TrackDatabases   Track = "Database Management & SQL"
	TrackBackend     Track = "Backend / Web Dev"
)

// Tracks lists every supported track in display order.
func Tracks() []Track {
	return []Track{TrackProgramming, TrackDataScience, TrackDatabases, TrackBackend}
}

// ValidTrack reports whether the given value names a supported track.
func ValidTrack(value string) bool {
	for _, track := range Tracks() {
		if string(track) == value {
			return true
		}
	}
	return false
}

// QuestionType distinguishes multiple-choice from typed short answers.
type QuestionType string

const (
	QuestionMCQ         QuestionType = "mcq"
	QuestionShortAnswer QuestionType = "short_answer"
)

// Difficulty buckets questions for weighting and display.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Weight returns the scoring weight for this difficulty (Hard 3, Medium 2, Easy 1).
func (d Difficulty) Weight() int {
	switch d {
	case DifficultyHard:
		return 3
	case DifficultyMedium:
		return 2
	default:
		return 1
	}
}

// Level is the coarse readiness classification.
type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelReady        Level = "Ready"
)

// Rank orders levels so monotonicity can be asserted (Beginner < Intermediate < Ready).
func (l Level) Rank() int {
	switch l {
	case LevelReady:
		return 2
	case LevelIntermediate:
		return 1
	default:
		return 0
	}
}

// DeriveLevel maps a correct/total ratio onto a level. The cutoffs are
// scale-invariant so 3-question and 5-question assessments grade consistently:
// below 40% Beginner, below 70% Intermediate, otherwise Ready.
func DeriveLevel(correct, total int) Level {
	if total <= 0 {
		return LevelBeginner
	}

	ratio := float64(correct) / float64(total)
	switch {
	case ratio >= 0.7:
		return LevelReady
	case ratio >= 0.4:
		return LevelIntermediate
	default:
		return LevelBeginner
	}
}

// Question is one generated assessment item. It lives only for the duration
// of a single attempt; the verifier may later override CorrectAnswer and
// Explanation when the generated ones turn out to be wrong.
type Question struct {
	ID           string       `json:"id"`
	Type         QuestionType `json:"type"`
	Prompt       string       `json:"question"`
	Options      []string     `json:"options,omitempty"`
	CorrectIndex int          `json:"-"`
	CorrectText  string       `json:"-"`
	Topic        string       `json:"topic"`
	Explanation  string       `json:"explanation"`
	Difficulty   Difficulty   `json:"difficulty"`
}

// RawAnswer is the student's input for one question before verification.
type RawAnswer struct {
	OptionIndex *int   `json:"option_index,omitempty"`
	Text        string `json:"text,omitempty"`
}

// Provided reports whether the answer satisfies the advance guard for the
// given question type: a selected option for MCQ, non-empty trimmed text
// for short answers.
func (a RawAnswer) Provided(qt QuestionType) bool {
	if qt == QuestionMCQ {
		return a.OptionIndex != nil
	}
	return strings.TrimSpace(a.Text) != ""
}

// Answer pairs a question with the student's raw input.
type Answer struct {
	QuestionID string     `json:"question_id"`
	Raw        RawAnswer  `json:"raw"`
	Topic      string     `json:"topic"`
	Difficulty Difficulty `json:"difficulty"`
}

// VerifiedAnswer is the graded outcome for one question.
type VerifiedAnswer struct {
	QuestionID    string     `json:"question_id"`
	Topic         string     `json:"topic"`
	Difficulty    Difficulty `json:"difficulty"`
	IsCorrect     bool       `json:"is_correct"`
	CorrectAnswer string     `json:"correct_answer"`
	Explanation   string     `json:"explanation"`
}

// VerifiedSet is the complete grading outcome for an attempt. CorrectCount
// and Gaps are derived here exactly once; downstream consumers must not
// recompute them.
type VerifiedSet struct {
	Results      []VerifiedAnswer `json:"results"`
	CorrectCount int              `json:"correct_count"`
	Gaps         []string         `json:"gaps"`
	Degraded     bool             `json:"degraded"`
}

// SkillGap classifies one gap emitted by the skill predictor.
type SkillGap struct {
	Skill    string `json:"skill"`
	GapType  string `json:"gapType"`
	Priority string `json:"priority"`
}

// Prediction is the readiness profile produced by the skill predictor, or by
// the deterministic fallback when the predictor is unreachable.
type Prediction struct {
	Level                   Level      `json:"level"`
	Confidence              float64    `json:"confidence"`
	SkillGaps               []SkillGap `json:"skillGaps"`
	Recommendations         []string   `json:"recommendations"`
	EstimatedReadinessWeeks int        `json:"estimatedReadinessWeeks"`
}

// DedupeGaps preserves first-seen order while removing duplicate topics.
func DedupeGaps(topics []string) []string {
	seen := make(map[string]struct{}, len(topics))
	out := make([]string, 0, len(topics))
	for _, topic := range topics {
		if _, ok := seen[topic]; ok {
			continue
		}
		seen[topic] = struct{}{}
		out = append(out, topic)
	}
	return out
}
