package scoring

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jonathan/knotic/internal/fingerprint"
	"github.com/jonathan/knotic/internal/llm"
	"github.com/jonathan/knotic/internal/logging"
	"github.com/jonathan/knotic/internal/prompts"
	"github.com/jonathan/knotic/internal/schemas"
	"github.com/jonathan/knotic/internal/types"
	"go.uber.org/zap"
)

const opReadiness = "readiness assessment"

// ReadinessAssessor rates a résumé's general ATS readiness without a job description.
type ReadinessAssessor struct {
	client llm.Client
	logger *zap.Logger
	tier   llm.ModelTier
	now    func() time.Time
}

// NewReadinessAssessor creates a ReadinessAssessor.
func NewReadinessAssessor(client llm.Client, logger *zap.Logger) *ReadinessAssessor {
	return &ReadinessAssessor{
		client: client,
		logger: logging.OrNop(logger),
		tier:   llm.TierStandard,
		now:    time.Now,
	}
}

// Assess makes one delegate call. The delegate's overallScore is bounded but
// not recomputed from the sub-scores.
func (a *ReadinessAssessor) Assess(ctx context.Context, resume *types.StructuredResume) (*types.ReadinessReport, error) {
	if resume == nil {
		return nil, ErrMissingResume
	}
	if a == nil || a.client == nil {
		return nil, &llm.ConfigurationError{Message: "no scoring delegate configured"}
	}

	resumeJSON, err := json.MarshalIndent(resume, "", "  ")
	if err != nil {
		return nil, &ScoringError{Kind: types.ParseFailure, Operation: opReadiness, Message: "marshal résumé", Cause: err}
	}

	prompt := prompts.Format(prompts.MustGet("readiness.json", "assess-readiness"), map[string]string{
		"Resume": string(resumeJSON),
	})

	raw, err := callDelegate(ctx, a.client, a.tier, a.logger, opReadiness, prompt)
	if err != nil {
		return nil, err
	}

	report, err := parseReadinessResponse(raw)
	if err != nil {
		a.logger.Warn("readiness response rejected", zap.Error(err))
		return nil, err
	}

	report.AssessedAt = a.now().UTC()
	report.ResumeHash = fingerprint.Of(resume)
	return report, nil
}

func parseReadinessResponse(raw string) (*types.ReadinessReport, error) {
	doc, err := decodeResponse(opReadiness, schemas.ReadinessResponse, raw)
	if err != nil {
		return nil, err
	}

	overall, ok := llm.CoerceFloat(doc["overallScore"])
	if !ok {
		return nil, &ScoringError{Kind: types.ParseFailure, Operation: opReadiness, Message: "overallScore is missing or not numeric"}
	}
	overall = round1(clamp(overall, 0, 100))

	rawBreakdown := llm.CoerceObject(doc["scoreBreakdown"])
	var b types.ReadinessBreakdown
	for _, s := range []subScore{
		{"completeness", 100, &b.Completeness},
		{"keywordRichness", 100, &b.KeywordRichness},
		{"formatQuality", 100, &b.FormatQuality},
		{"atsReadiness", 100, &b.ATSReadiness},
	} {
		v, _ := llm.CoerceFloat(rawBreakdown[s.key])
		*s.dst = round1(clamp(v, 0, s.max))
	}

	return &types.ReadinessReport{
		OverallScore:   overall,
		ScoreBreakdown: b,
		QualityLevel:   QualityFor(overall),
		SuggestedJobs:  llm.CoerceStrings(doc["suggestedJobs"]),
		Strengths:      llm.CoerceStrings(doc["strengths"]),
		Improvements:   llm.CoerceStrings(doc["improvements"]),
		Summary:        llm.CoerceString(doc["summary"]),
	}, nil
}
