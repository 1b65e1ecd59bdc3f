package scoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonathan/knotic/internal/fingerprint"
	"github.com/jonathan/knotic/internal/llm"
	"github.com/jonathan/knotic/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	response string
	err      error
	calls    int
	prompts  []string
}

func (f *fakeClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return f.GenerateJSON(ctx, prompt, tier)
}

func (f *fakeClient) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func (f *fakeClient) GetModel(_ llm.ModelTier) string { return "fake-model" }
func (f *fakeClient) Close() error                    { return nil }

func sampleResume() *types.StructuredResume {
	return &types.StructuredResume{
		Candidate:  types.Candidate{Name: types.StringPtr("Ada Lovelace"), Email: types.StringPtr("ada@example.com"), Links: []string{}},
		Education:  []types.Education{{Institution: "University of London", Degree: "BSc"}},
		Experience: []types.Experience{{Company: "Analytical Engines", Role: "Engineer", Details: []string{"Wrote Go services"}}},
		Activities: []types.Activity{},
		Skills:     types.Skills{Technical: []string{"go", "sql"}, Domain: []string{}, Tools: []string{"docker"}, Soft: []string{}},
		Projects:   []types.Project{},
	}
}

func newTestMatcher(client llm.Client) *Matcher {
	m := NewMatcher(client, nil)
	m.now = func() time.Time { return time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC) }
	return m
}

const jd = "We need a Go engineer with SQL and Kubernetes experience."

func TestMatch_FullResponse(t *testing.T) {
	client := &fakeClient{response: `{
		"totalScore": 70,
		"scoreBreakdown": {"keywordScore": 30, "skillsScore": "20", "experienceScore": 12, "educationScore": 8, "formatScore": 5,
			"profile": 80, "education": 64, "experience": 70, "skills": 90},
		"matchedKeywords": [
			{"keyword": "Go", "proofQuote": "Wrote Go services"},
			{"keyword": "SQL", "proofQuote": "Skills: sql", "synonym": true},
			{"keyword": "Kubernetes", "proofQuote": ""}
		],
		"missingKeywords": ["Terraform", "terraform"],
		"roboticFlag": true,
		"phrasingSuggestions": [{"current": "Wrote", "suggested": "Built", "reason": "JD wording"}, {"current": "", "suggested": "x"}],
		"strengths": ["Go depth"],
		"improvements": ["Add Kubernetes"],
		"reasoning": "Solid backend match."
	}`}

	report, err := newTestMatcher(client).Match(context.Background(), sampleResume(), jd)
	require.NoError(t, err)

	assert.Equal(t, 75.0, report.Score, "total is the sum of the weighted sub-scores")
	assert.Equal(t, 20.0, report.ScoreBreakdown.SkillsScore)
	assert.Equal(t, 3.8, report.StarRating)
	assert.Equal(t, types.ZoneGood, report.Visibility.Zone)

	require.Len(t, report.MatchedKeywords, 2)
	assert.Equal(t, types.MatchExact, report.MatchedKeywords[0].MatchType)
	assert.Equal(t, types.MatchSynonym, report.MatchedKeywords[1].MatchType)
	assert.Equal(t, []string{"Terraform", "Kubernetes"}, report.MissingKeywords)

	assert.False(t, report.RoboticFlag, "delegate flag is ignored below the threshold")
	assert.Nil(t, report.RoboticAdvice)
	assert.Len(t, report.PhrasingSuggestions, 1)
	assert.Equal(t, "Solid backend match.", report.Reasoning)

	assert.Equal(t, fingerprint.Of(jd), report.JDHash)
	assert.Equal(t, fingerprint.Of(sampleResume()), report.ResumeHash)
	assert.Equal(t, time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC), report.AnalyzedAt)

	require.Equal(t, 1, client.calls)
	assert.Contains(t, client.prompts[0], jd)
	assert.Contains(t, client.prompts[0], "Analytical Engines")
}

func TestMatch_BoundsAndFallbackTotal(t *testing.T) {
	tests := []struct {
		name      string
		response  string
		wantScore float64
		check     func(t *testing.T, r *types.MatchReport)
	}{
		{
			name:      "sub-scores clamped to their maxima",
			response:  `{"totalScore": 100, "scoreBreakdown": {"keywordScore": 60, "skillsScore": 30, "experienceScore": -4, "educationScore": 10, "formatScore": 9, "profile": 140, "skills": -10}}`,
			wantScore: 85,
			check: func(t *testing.T, r *types.MatchReport) {
				assert.Equal(t, 45.0, r.ScoreBreakdown.KeywordScore)
				assert.Equal(t, 25.0, r.ScoreBreakdown.SkillsScore)
				assert.Equal(t, 0.0, r.ScoreBreakdown.ExperienceScore)
				assert.Equal(t, 5.0, r.ScoreBreakdown.FormatScore)
				assert.Equal(t, 100.0, r.ScoreBreakdown.Profile)
				assert.Equal(t, 0.0, r.ScoreBreakdown.Skills)
			},
		},
		{
			name:      "partial breakdown uses delegate total",
			response:  `{"totalScore": "64.44", "scoreBreakdown": {"keywordScore": 30}}`,
			wantScore: 64.4,
		},
		{
			name:      "total above range is clamped",
			response:  `{"totalScore": 130}`,
			wantScore: 100,
		},
		{
			name:      "negative total is clamped",
			response:  `{"totalScore": -3}`,
			wantScore: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := newTestMatcher(&fakeClient{response: tt.response}).Match(context.Background(), sampleResume(), jd)
			require.NoError(t, err)

			assert.Equal(t, tt.wantScore, report.Score)
			assert.GreaterOrEqual(t, report.StarRating, 0.0)
			assert.LessOrEqual(t, report.StarRating, 5.0)
			assert.NotNil(t, report.MatchedKeywords)
			assert.NotNil(t, report.MissingKeywords)
			assert.NotNil(t, report.Strengths)
			if tt.check != nil {
				tt.check(t, report)
			}
		})
	}
}

func TestMatch_RoboticFlag(t *testing.T) {
	tests := []struct {
		name       string
		response   string
		wantFlag   bool
		wantAdvice string
	}{
		{
			name:       "at threshold with fixed advice",
			response:   `{"totalScore": 95, "roboticFlag": false}`,
			wantFlag:   true,
			wantAdvice: DefaultRoboticAdvice,
		},
		{
			name:       "delegate advice kept",
			response:   `{"totalScore": 98, "roboticAdvice": "Vary your verbs."}`,
			wantFlag:   true,
			wantAdvice: "Vary your verbs.",
		},
		{
			name:     "just below threshold",
			response: `{"totalScore": 94.9, "roboticFlag": true, "roboticAdvice": "ignored"}`,
			wantFlag: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := newTestMatcher(&fakeClient{response: tt.response}).Match(context.Background(), sampleResume(), jd)
			require.NoError(t, err)

			assert.Equal(t, tt.wantFlag, report.RoboticFlag)
			if tt.wantFlag {
				require.NotNil(t, report.RoboticAdvice)
				assert.Equal(t, tt.wantAdvice, *report.RoboticAdvice)
			} else {
				assert.Nil(t, report.RoboticAdvice)
			}
		})
	}
}

func TestMatch_Errors(t *testing.T) {
	tests := []struct {
		name     string
		client   *fakeClient
		wantKind types.FailureKind
	}{
		{"missing totalScore", &fakeClient{response: `{"scoreBreakdown": {}}`}, types.ParseFailure},
		{"non-numeric totalScore", &fakeClient{response: `{"totalScore": "excellent"}`}, types.ParseFailure},
		{"not json", &fakeClient{response: "sorry"}, types.ParseFailure},
		{"call fails", &fakeClient{err: errors.New("503 from provider")}, types.UpstreamFailure},
		{"cancelled", &fakeClient{err: context.Canceled}, types.UpstreamFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := newTestMatcher(tt.client).Match(context.Background(), sampleResume(), jd)
			assert.Nil(t, report)

			var scoringErr *ScoringError
			require.ErrorAs(t, err, &scoringErr)
			assert.Equal(t, tt.wantKind, scoringErr.Kind)
		})
	}
}

func TestMatch_CallerErrors(t *testing.T) {
	client := &fakeClient{response: `{"totalScore": 50}`}
	m := newTestMatcher(client)

	_, err := m.Match(context.Background(), sampleResume(), "   ")
	assert.ErrorIs(t, err, ErrEmptyJobDescription)

	_, err = m.Match(context.Background(), nil, jd)
	assert.ErrorIs(t, err, ErrMissingResume)

	assert.Zero(t, client.calls)

	_, err = NewMatcher(nil, nil).Match(context.Background(), sampleResume(), jd)
	var cfgErr *llm.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestSplitKeywords(t *testing.T) {
	raw := []any{
		map[string]any{"keyword": "Go", "proofQuote": "Wrote Go"},
		map[string]any{"keyword": "go", "proofQuote": "again"},
		map[string]any{"keyword": "REST", "proofQuote": "  "},
		"GraphQL",
		map[string]any{"keyword": ""},
	}

	matched, missing := splitKeywords(raw, []string{"Rust", "GO"})

	require.Len(t, matched, 1)
	assert.Equal(t, "Go", matched[0].Keyword)
	assert.Equal(t, []string{"Rust", "REST", "GraphQL"}, missing, "matched keywords never appear as missing")
}
