package scoring

import (
	"math"

	"github.com/jonathan/knotic/internal/types"
)

// RoboticThreshold is the match score at or above which a résumé is flagged
// as likely keyword-stuffed.
const RoboticThreshold = 95.0

// DefaultRoboticAdvice is used when the delegate flags nothing useful.
const DefaultRoboticAdvice = "Your resume appears over-optimized. Consider making the language more natural to pass human review."

// starsPerPillar is the weight of each of the four 0-100 pillars in the 5-star rating.
const starsPerPillar = 1.25

type threshold struct {
	min         float64
	label       string
	description string
}

var visibilityZones = []threshold{
	{90, types.ZoneVeryHigh, "High likelihood of recruiter visibility"},
	{75, types.ZoneGood, "Ideal Zone - optimized but natural"},
	{60, types.ZoneBorderline, "Maybe zone - depends on candidate pool size"},
	{math.Inf(-1), types.ZoneLow, "High risk of automatic rejection"},
}

var qualityLevels = []threshold{
	{90, types.QualityExcellent, "Resume is well-optimized and ATS-ready"},
	{75, types.QualityGood, "Strong resume with minor improvements needed"},
	{60, types.QualityFair, "Resume needs some work to pass ATS filters"},
	{math.Inf(-1), types.QualityNeedsWork, "Significant improvements required for ATS compatibility"},
}

func lookup(levels []threshold, score float64) threshold {
	for _, t := range levels {
		if score >= t.min {
			return t
		}
	}
	return levels[len(levels)-1]
}

// VisibilityFor maps a 0-100 match score to its recruiter visibility zone.
func VisibilityFor(score float64) types.Visibility {
	t := lookup(visibilityZones, score)
	return types.Visibility{Zone: t.label, Description: t.description}
}

// QualityFor maps a 0-100 readiness score to its quality level.
func QualityFor(score float64) types.QualityLevel {
	t := lookup(qualityLevels, score)
	return types.QualityLevel{Level: t.label, Description: t.description}
}

// StarRating converts the four pillars into a 0-5 rating with one decimal.
func StarRating(b types.ScoreBreakdown) float64 {
	stars := b.Profile/100*starsPerPillar +
		b.Education/100*starsPerPillar +
		b.Experience/100*starsPerPillar +
		b.Skills/100*starsPerPillar
	return round1(clamp(stars, 0, 4*starsPerPillar))
}

// IsRobotic reports whether a match score is high enough to suggest keyword stuffing.
func IsRobotic(score float64) bool {
	return score >= RoboticThreshold
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
