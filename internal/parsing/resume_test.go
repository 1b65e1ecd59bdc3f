package parsing

import (
	"context"
	"errors"
	"testing"

	"github.com/jonathan/knotic/internal/ingestion"
	"github.com/jonathan/knotic/internal/llm"
	"github.com/jonathan/knotic/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient is a scripted llm.Client
type fakeClient struct {
	response string
	err      error
	calls    int
	prompts  []string
	tiers    []llm.ModelTier
}

func (f *fakeClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return f.GenerateJSON(ctx, prompt, tier)
}

func (f *fakeClient) GenerateJSON(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.tiers = append(f.tiers, tier)
	return f.response, f.err
}

func (f *fakeClient) GetModel(_ llm.ModelTier) string { return "fake-model" }
func (f *fakeClient) Close() error                    { return nil }

const internshipResume = "```json\n" + `{
  "candidate": {"name": "Sam Lee", "email": "sam@example.com", "phone": null, "links": []},
  "education": [{"institution": "Tech Institute", "degree": "BEng", "field": "Software", "gpa": null, "start": "2019", "end": "2023"}],
  "experience": [
    {"company": "Widgets Ltd", "role": "Software Engineer", "duration": "2023 - present", "details": ["Maintains the Go API"]},
    {"company": "Local Food Bank", "role": "Unpaid Internship", "duration": "2022", "details": ["Sorted donations"]}
  ],
  "activities": [],
  "skills": {"technical": ["Go", "SQL"], "domain": [], "tools": ["Git"], "soft": ["Communication"]},
  "projects": [],
  "certifications": []
}` + "\n```"

func TestNormalize_UnpaidInternshipLandsInActivities(t *testing.T) {
	client := &fakeClient{response: internshipResume}
	normalizer := NewNormalizer(client, nil)

	resume, err := normalizer.Normalize(context.Background(), "Sam Lee\nsam@example.com\nWidgets Ltd ...")
	require.NoError(t, err)

	require.Len(t, resume.Experience, 1)
	assert.Equal(t, "Widgets Ltd", resume.Experience[0].Company)

	require.Len(t, resume.Activities, 1)
	assert.Equal(t, "Local Food Bank", resume.Activities[0].Organization)
	assert.Equal(t, "Unpaid Internship", resume.Activities[0].Role)

	assert.Equal(t, []string{"go", "sql"}, resume.Skills.Technical)
	assert.Equal(t, 1, client.calls, "exactly one delegate call")
	assert.Equal(t, []llm.ModelTier{llm.TierStandard}, client.tiers)
	assert.Contains(t, client.prompts[0], "Widgets Ltd ...")
}

func TestNormalize_EmptyText(t *testing.T) {
	client := &fakeClient{}
	_, err := NewNormalizer(client, nil).Normalize(context.Background(), " \n\t ")

	assert.ErrorIs(t, err, ingestion.ErrScannedOrEmpty)
	assert.Zero(t, client.calls)
}

func TestNormalize_NoClient(t *testing.T) {
	_, err := NewNormalizer(nil, nil).Normalize(context.Background(), "some text")

	var cfgErr *llm.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestNormalize_Failures(t *testing.T) {
	tests := []struct {
		name     string
		client   *fakeClient
		wantKind types.FailureKind
	}{
		{
			name:     "upstream failure",
			client:   &fakeClient{err: errors.New("quota exceeded")},
			wantKind: types.UpstreamFailure,
		},
		{
			name:     "cancelled call",
			client:   &fakeClient{err: context.DeadlineExceeded},
			wantKind: types.UpstreamFailure,
		},
		{
			name:     "not json",
			client:   &fakeClient{response: "I could not read this resume."},
			wantKind: types.ParseFailure,
		},
		{
			name:     "wrong shape",
			client:   &fakeClient{response: `{"candidate": {}, "skills": {}, "experience": "ten years"}`},
			wantKind: types.ParseFailure,
		},
		{
			name:     "missing candidate",
			client:   &fakeClient{response: `{"skills": {}}`},
			wantKind: types.ParseFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resume, err := NewNormalizer(tt.client, nil).Normalize(context.Background(), "raw text")
			assert.Nil(t, resume)

			var structErr *StructuringError
			require.ErrorAs(t, err, &structErr)
			assert.Equal(t, tt.wantKind, structErr.Kind)
			assert.Equal(t, 1, tt.client.calls)
		})
	}
}

func TestNormalize_DelegateConfigurationErrorPassesThrough(t *testing.T) {
	client := &fakeClient{err: &llm.ConfigurationError{Message: "no model configured for tier standard"}}
	_, err := NewNormalizer(client, nil).Normalize(context.Background(), "raw text")

	var cfgErr *llm.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	var structErr *StructuringError
	assert.False(t, errors.As(err, &structErr))
}

func TestStructuringError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := upstreamError("call failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "upstream")
	assert.Contains(t, err.Error(), "boom")
}
