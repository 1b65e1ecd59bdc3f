package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_AllPromptsPresent(t *testing.T) {
	tests := []struct {
		file, key string
		vars      []string
	}{
		{"normalize.json", "structure-resume", []string{"{{.ResumeText}}"}},
		{"match.json", "score-match", []string{"{{.Resume}}", "{{.JobDescription}}"}},
		{"readiness.json", "assess-readiness", []string{"{{.Resume}}"}},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			prompt, err := Get(tt.file, tt.key)
			require.NoError(t, err)
			for _, v := range tt.vars {
				assert.Contains(t, prompt, v)
			}
		})
	}
}

func TestGet_Errors(t *testing.T) {
	_, err := Get("nonexistent.json", "some-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompt file nonexistent.json not found")

	_, err = Get("match.json", "nonexistent-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `prompt key "nonexistent-key" not found`)
}

func TestMustGet_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
	assert.NotPanics(t, func() {
		MustGet("normalize.json", "structure-resume")
	})
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     map[string]string
		want     string
	}{
		{
			name:     "all placeholders",
			template: "resume: {{.Resume}} / jd: {{.JobDescription}}",
			data:     map[string]string{"Resume": `{"skills":[]}`, "JobDescription": "Go developer"},
			want:     `resume: {"skills":[]} / jd: Go developer`,
		},
		{
			name:     "repeated placeholder",
			template: "{{.A}}-{{.A}}",
			data:     map[string]string{"A": "x"},
			want:     "x-x",
		},
		{
			name:     "value containing a placeholder is literal",
			template: "{{.Resume}} | {{.JobDescription}}",
			data:     map[string]string{"Resume": "see {{.JobDescription}}", "JobDescription": "Go"},
			want:     "see {{.JobDescription}} | Go",
		},
		{
			name:     "unknown placeholder kept",
			template: "{{.Missing}}",
			data:     map[string]string{"Other": "x"},
			want:     "{{.Missing}}",
		},
		{
			name:     "no data",
			template: "plain",
			want:     "plain",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.template, tt.data))
		})
	}
}

func TestKeys(t *testing.T) {
	keys, err := Keys("readiness.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"assess-readiness"}, keys)

	_, err = Keys("nope.json")
	assert.Error(t, err)
}
