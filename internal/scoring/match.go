// Package scoring turns a résumé (and optionally a job description) into
// weighted fit and readiness reports through the scoring delegate. The
// delegate proposes numbers; this package owns bounds, totals, ratings and
// zones.
package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonathan/knotic/internal/fingerprint"
	"github.com/jonathan/knotic/internal/llm"
	"github.com/jonathan/knotic/internal/logging"
	"github.com/jonathan/knotic/internal/prompts"
	"github.com/jonathan/knotic/internal/schemas"
	"github.com/jonathan/knotic/internal/types"
	"go.uber.org/zap"
)

const opMatch = "match scoring"

// Matcher scores a structured résumé against a job description.
type Matcher struct {
	client llm.Client
	logger *zap.Logger
	tier   llm.ModelTier
	now    func() time.Time
}

// NewMatcher creates a Matcher. A nil client is allowed; Match then reports
// a configuration error.
func NewMatcher(client llm.Client, logger *zap.Logger) *Matcher {
	return &Matcher{
		client: client,
		logger: logging.OrNop(logger),
		tier:   llm.TierAdvanced,
		now:    time.Now,
	}
}

// Match makes one delegate call and builds a bounded MatchReport stamped
// with the input fingerprints. It never retries.
func (m *Matcher) Match(ctx context.Context, resume *types.StructuredResume, jobDescription string) (*types.MatchReport, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return nil, ErrEmptyJobDescription
	}
	if resume == nil {
		return nil, ErrMissingResume
	}
	if m == nil || m.client == nil {
		return nil, &llm.ConfigurationError{Message: "no scoring delegate configured"}
	}

	resumeJSON, err := json.MarshalIndent(resume, "", "  ")
	if err != nil {
		return nil, &ScoringError{Kind: types.ParseFailure, Operation: opMatch, Message: "marshal résumé", Cause: err}
	}

	prompt := prompts.Format(prompts.MustGet("match.json", "score-match"), map[string]string{
		"Resume":         string(resumeJSON),
		"JobDescription": jobDescription,
	})

	raw, err := callDelegate(ctx, m.client, m.tier, m.logger, opMatch, prompt)
	if err != nil {
		return nil, err
	}

	report, err := parseMatchResponse(raw)
	if err != nil {
		m.logger.Warn("match response rejected", zap.Error(err))
		return nil, err
	}

	report.AnalyzedAt = m.now().UTC()
	report.JDHash = fingerprint.Of(jobDescription)
	report.ResumeHash = fingerprint.Of(resume)
	return report, nil
}

// callDelegate runs one JSON-mode call with debug logging of sizes and previews.
func callDelegate(ctx context.Context, client llm.Client, tier llm.ModelTier, logger *zap.Logger, op, prompt string) (string, error) {
	logger = logging.WithDelegate(logger, "", client.GetModel(tier)).With(zap.String("operation", op))
	logger.Debug("delegate request", zap.Int("prompt_length", utf8.RuneCountInString(prompt)))

	raw, err := client.GenerateJSON(ctx, prompt, tier)
	if err != nil {
		var cfgErr *llm.ConfigurationError
		if errors.As(err, &cfgErr) {
			return "", cfgErr
		}
		logger.Warn("delegate call failed", zap.Error(err))
		return "", &ScoringError{Kind: types.UpstreamFailure, Operation: op, Message: "delegate call failed", Cause: err}
	}

	logger.Debug("delegate response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logging.TruncateForLog(raw, logging.PreviewLimit)),
	)
	return raw, nil
}

// decodeResponse decodes and schema-checks a delegate answer.
func decodeResponse(op, schema, raw string) (map[string]any, error) {
	doc, err := llm.DecodeObject(raw)
	if err != nil {
		return nil, &ScoringError{Kind: types.ParseFailure, Operation: op, Message: "response is not a JSON object", Cause: err}
	}
	if err := schemas.ValidateDocument(schema, doc); err != nil {
		return nil, &ScoringError{Kind: types.ParseFailure, Operation: op, Message: "response does not match schema", Cause: err}
	}
	return doc, nil
}

type subScore struct {
	key string
	max float64
	dst *float64
}

// parseMatchResponse decodes the delegate's breakdown. Keyword credit,
// including half credit for synonyms, is the delegate's judgment; the core
// only recomputes the total from the clamped sub-scores when all are present.
func parseMatchResponse(raw string) (*types.MatchReport, error) {
	doc, err := decodeResponse(opMatch, schemas.MatchResponse, raw)
	if err != nil {
		return nil, err
	}

	total, ok := llm.CoerceFloat(doc["totalScore"])
	if !ok {
		return nil, &ScoringError{Kind: types.ParseFailure, Operation: opMatch, Message: "totalScore is missing or not numeric"}
	}

	var b types.ScoreBreakdown
	rawBreakdown := llm.CoerceObject(doc["scoreBreakdown"])

	weighted := []subScore{
		{"keywordScore", types.MaxKeywordScore, &b.KeywordScore},
		{"skillsScore", types.MaxSkillsScore, &b.SkillsScore},
		{"experienceScore", types.MaxExperienceScore, &b.ExperienceScore},
		{"educationScore", types.MaxEducationScore, &b.EducationScore},
		{"formatScore", types.MaxFormatScore, &b.FormatScore},
	}
	allPresent := true
	for _, s := range weighted {
		v, ok := llm.CoerceFloat(rawBreakdown[s.key])
		if !ok {
			allPresent = false
		}
		*s.dst = round1(clamp(v, 0, s.max))
	}

	pillars := []subScore{
		{"profile", 100, &b.Profile},
		{"education", 100, &b.Education},
		{"experience", 100, &b.Experience},
		{"skills", 100, &b.Skills},
	}
	for _, s := range pillars {
		v, _ := llm.CoerceFloat(rawBreakdown[s.key])
		*s.dst = round1(clamp(v, 0, s.max))
	}

	score := total
	if allPresent {
		score = b.WeightedTotal()
	}
	score = round1(clamp(score, 0, 100))

	matched, missing := splitKeywords(doc["matchedKeywords"], llm.CoerceStrings(doc["missingKeywords"]))

	report := &types.MatchReport{
		Score:               score,
		ScoreBreakdown:      b,
		StarRating:          StarRating(b),
		Visibility:          VisibilityFor(score),
		MatchedKeywords:     matched,
		MissingKeywords:     missing,
		RoboticFlag:         IsRobotic(score),
		PhrasingSuggestions: phrasingSuggestions(doc["phrasingSuggestions"]),
		Strengths:           llm.CoerceStrings(doc["strengths"]),
		Improvements:        llm.CoerceStrings(doc["improvements"]),
		Reasoning:           llm.CoerceString(doc["reasoning"]),
	}
	if report.RoboticFlag {
		advice := llm.CoerceString(doc["roboticAdvice"])
		if advice == "" {
			advice = DefaultRoboticAdvice
		}
		report.RoboticAdvice = &advice
	}
	return report, nil
}

// splitKeywords keeps only matches backed by a proof quote; the rest join the
// missing set. Keywords are unique case-insensitively and a matched keyword
// is never also missing.
func splitKeywords(rawMatched any, rawMissing []string) ([]types.KeywordMatch, []string) {
	matched := []types.KeywordMatch{}
	missing := []string{}
	matchedKeys := map[string]bool{}
	missingKeys := map[string]bool{}

	addMissing := func(keyword string) {
		k := strings.ToLower(keyword)
		if keyword == "" || matchedKeys[k] || missingKeys[k] {
			return
		}
		missingKeys[k] = true
		missing = append(missing, keyword)
	}

	list, _ := rawMatched.([]any)
	var unproven []string
	for _, item := range list {
		var keyword, quote string
		synonym := false
		switch v := item.(type) {
		case map[string]any:
			keyword = llm.CoerceString(v["keyword"])
			quote = llm.CoerceString(v["proofQuote"])
			synonym = llm.CoerceBool(v["synonym"])
		case string:
			keyword = strings.TrimSpace(v)
		}
		if keyword == "" {
			continue
		}
		if quote == "" {
			unproven = append(unproven, keyword)
			continue
		}
		k := strings.ToLower(keyword)
		if matchedKeys[k] {
			continue
		}
		matchedKeys[k] = true
		matchType := types.MatchExact
		if synonym {
			matchType = types.MatchSynonym
		}
		matched = append(matched, types.KeywordMatch{Keyword: keyword, ProofQuote: quote, MatchType: matchType})
	}

	for _, keyword := range rawMissing {
		addMissing(keyword)
	}
	for _, keyword := range unproven {
		addMissing(keyword)
	}
	return matched, missing
}

func phrasingSuggestions(v any) []types.PhrasingSuggestion {
	out := []types.PhrasingSuggestion{}
	for _, s := range llm.CoerceObjects(v) {
		current, suggested := llm.CoerceString(s["current"]), llm.CoerceString(s["suggested"])
		if current == "" || suggested == "" {
			continue
		}
		out = append(out, types.PhrasingSuggestion{
			Current:   current,
			Suggested: suggested,
			Reason:    llm.CoerceString(s["reason"]),
		})
	}
	return out
}
