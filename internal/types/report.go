package types

import (
	"time"

	"github.com/google/uuid"
)

// Weighted sub-score maxima. They sum to 100.
const (
	MaxKeywordScore    = 45.0
	MaxSkillsScore     = 25.0
	MaxExperienceScore = 15.0
	MaxEducationScore  = 10.0
	MaxFormatScore     = 5.0
)

// Visibility zones derived from the total match score
const (
	ZoneVeryHigh   = "Very High"
	ZoneGood       = "Good/Excellent"
	ZoneBorderline = "Borderline"
	ZoneLow        = "Low"
)

// Readiness quality levels
const (
	QualityExcellent = "Excellent"
	QualityGood      = "Good"
	QualityFair      = "Fair"
	QualityNeedsWork = "Needs Work"
)

// Keyword match types
const (
	MatchExact   = "exact"
	MatchSynonym = "synonym"
)

// MatchReport is the weighted fit assessment of one résumé against one job description.
// JDHash and ResumeHash identify the exact inputs that produced it.
type MatchReport struct {
	Score               float64              `json:"score"`
	ScoreBreakdown      ScoreBreakdown       `json:"scoreBreakdown"`
	StarRating          float64              `json:"starRating"`
	Visibility          Visibility           `json:"visibility"`
	MatchedKeywords     []KeywordMatch       `json:"matchedKeywords"`
	MissingKeywords     []string             `json:"missingKeywords"`
	RoboticFlag         bool                 `json:"roboticFlag"`
	RoboticAdvice       *string              `json:"roboticAdvice"`
	PhrasingSuggestions []PhrasingSuggestion `json:"phrasingSuggestions"`
	Strengths           []string             `json:"strengths"`
	Improvements        []string             `json:"improvements"`
	Reasoning           string               `json:"reasoning"`
	AnalyzedAt          time.Time            `json:"analyzedAt"`
	JDHash              string               `json:"jdHash"`
	ResumeHash          string               `json:"resumeHash"`
	ResumeVersionID     *uuid.UUID           `json:"resumeVersionId,omitempty"`
}

// ScoreBreakdown holds the five weighted sub-scores and the four star-rating pillars
type ScoreBreakdown struct {
	KeywordScore    float64 `json:"keywordScore"`
	SkillsScore     float64 `json:"skillsScore"`
	ExperienceScore float64 `json:"experienceScore"`
	EducationScore  float64 `json:"educationScore"`
	FormatScore     float64 `json:"formatScore"`

	Profile    float64 `json:"profile"`
	Education  float64 `json:"education"`
	Experience float64 `json:"experience"`
	Skills     float64 `json:"skills"`
}

// WeightedTotal sums the five weighted sub-scores.
func (b ScoreBreakdown) WeightedTotal() float64 {
	return b.KeywordScore + b.SkillsScore + b.ExperienceScore + b.EducationScore + b.FormatScore
}

// Visibility describes how likely a recruiter is to see the résumé
type Visibility struct {
	Zone        string `json:"zone"`
	Description string `json:"description"`
}

// KeywordMatch is a job-description keyword backed by a verbatim résumé quote
type KeywordMatch struct {
	Keyword    string `json:"keyword"`
	ProofQuote string `json:"proofQuote"`
	MatchType  string `json:"matchType"`
}

// PhrasingSuggestion proposes aligning résumé wording with the job description
type PhrasingSuggestion struct {
	Current   string `json:"current"`
	Suggested string `json:"suggested"`
	Reason    string `json:"reason"`
}

// ReadinessReport is a job-description-independent quality assessment
type ReadinessReport struct {
	OverallScore   float64            `json:"overallScore"`
	ScoreBreakdown ReadinessBreakdown `json:"scoreBreakdown"`
	QualityLevel   QualityLevel       `json:"qualityLevel"`
	SuggestedJobs  []string           `json:"suggestedJobs"`
	Strengths      []string           `json:"strengths"`
	Improvements   []string           `json:"improvements"`
	Summary        string             `json:"summary"`
	AssessedAt     time.Time          `json:"assessedAt"`
	ResumeHash     string             `json:"resumeHash"`
}

// ReadinessBreakdown holds the four 0-100 readiness sub-scores
type ReadinessBreakdown struct {
	Completeness    float64 `json:"completeness"`
	KeywordRichness float64 `json:"keywordRichness"`
	FormatQuality   float64 `json:"formatQuality"`
	ATSReadiness    float64 `json:"atsReadiness"`
}

// QualityLevel labels an overall readiness score
type QualityLevel struct {
	Level       string `json:"level"`
	Description string `json:"description"`
}
