package fingerprint

import (
	"regexp"
	"testing"

	"github.com/jonathan/knotic/internal/types"
	"github.com/stretchr/testify/assert"
)

var hexPattern = regexp.MustCompile(`^[0-9a-f]{8}$`)

func sampleResume() types.StructuredResume {
	name := "Ada Lovelace"
	return types.StructuredResume{
		Candidate: types.Candidate{Name: &name, Links: []string{"https://github.com/ada"}},
		Skills:    types.Skills{Technical: []string{"go", "sql"}, Domain: []string{}, Tools: []string{"docker"}, Soft: []string{}},
		Experience: []types.Experience{
			{Company: "Analytical Engines", Role: "Engineer", Details: []string{"Built the difference engine"}},
		},
	}
}

func TestOf_Absent(t *testing.T) {
	var nilResume *types.StructuredResume
	var nilString *string
	var nilMap map[string]any

	assert.Equal(t, "", Of(nil))
	assert.Equal(t, "", Of(""))
	assert.Equal(t, "", Of(nilResume))
	assert.Equal(t, "", Of(nilString))
	assert.Equal(t, "", Of(nilMap))
}

func TestOf_Format(t *testing.T) {
	assert.Regexp(t, hexPattern, Of("Senior Go Engineer"))
	assert.Regexp(t, hexPattern, Of(sampleResume()))
	assert.Len(t, Of(map[string]int{"a": 1}), Length)
}

func TestOf_Deterministic(t *testing.T) {
	r := sampleResume()
	first := Of(r)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Of(r))
		assert.Equal(t, first, Of(sampleResume()))
	}

	jd := "We need Go and Kubernetes"
	assert.Equal(t, Of(jd), Of(&jd))
}

func TestOf_MapKeyOrderIrrelevant(t *testing.T) {
	a := map[string]any{"b": 2, "a": 1, "c": []string{"x"}}
	b := map[string]any{"c": []string{"x"}, "a": 1, "b": 2}
	assert.Equal(t, Of(a), Of(b))
}

func TestOf_DistinctContent(t *testing.T) {
	base := sampleResume()
	seen := map[string]string{"base": Of(base)}

	email := "ada@example.com"
	variants := map[string]func(r *types.StructuredResume){
		"email":     func(r *types.StructuredResume) { r.Candidate.Email = &email },
		"skill":     func(r *types.StructuredResume) { r.Skills.Technical = append(r.Skills.Technical, "rust") },
		"detail":    func(r *types.StructuredResume) { r.Experience[0].Details[0] = "Built the analytical engine" },
		"cert":      func(r *types.StructuredResume) { r.Certifications = []string{"aws"} },
		"skillMove": func(r *types.StructuredResume) { r.Skills.Tools, r.Skills.Technical = r.Skills.Technical, r.Skills.Tools },
	}

	for name, mutate := range variants {
		r := sampleResume()
		r.Experience = []types.Experience{{
			Company: base.Experience[0].Company,
			Role:    base.Experience[0].Role,
			Details: append([]string(nil), base.Experience[0].Details...),
		}}
		mutate(&r)
		fp := Of(r)
		for other, otherFP := range seen {
			assert.NotEqual(t, otherFP, fp, "%s collides with %s", name, other)
		}
		seen[name] = fp
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal("deadbeef", "deadbeef"))
	assert.False(t, Equal("deadbeef", "deadbeee"))
	assert.False(t, Equal("", ""))
}
