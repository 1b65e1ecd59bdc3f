package parsing

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/jonathan/knotic/internal/llm"
	"github.com/jonathan/knotic/internal/types"
)

// unpaidMarker matches a role title that states outright that the position
// was unpaid or voluntary.
var unpaidMarker = regexp.MustCompile(`(?i)\b(volunteer(ing|ed)?|unpaid)\b`)

// IsUnpaidRole reports whether a role title explicitly marks unpaid work.
// The experience/activities split is otherwise the delegate's call; the
// employer name never reclassifies a role.
func IsUnpaidRole(role string) bool {
	return unpaidMarker.MatchString(role)
}

// buildResume constructs the typed record from a schema-valid document and
// applies the repair policy.
func buildResume(doc map[string]any) *types.StructuredResume {
	resume := &types.StructuredResume{
		Candidate:      buildCandidate(llm.CoerceObject(doc["candidate"])),
		Education:      []types.Education{},
		Experience:     []types.Experience{},
		Activities:     []types.Activity{},
		Projects:       []types.Project{},
		Certifications: dedupeFold(llm.CoerceStrings(doc["certifications"]), lowerKey),
	}

	for _, e := range llm.CoerceObjects(doc["education"]) {
		institution, degree := llm.CoerceString(e["institution"]), llm.CoerceString(e["degree"])
		if institution == "" || degree == "" {
			continue
		}
		resume.Education = append(resume.Education, types.Education{
			Institution: institution,
			Degree:      degree,
			Field:       optString(e["field"]),
			GPA:         optString(e["gpa"]),
			Start:       optString(e["start"]),
			End:         optString(e["end"]),
		})
	}

	for _, a := range llm.CoerceObjects(doc["activities"]) {
		org, role := llm.CoerceString(a["organization"]), llm.CoerceString(a["role"])
		if org == "" || role == "" {
			continue
		}
		resume.Activities = append(resume.Activities, types.Activity{
			Organization: org,
			Role:         role,
			Duration:     optString(a["duration"]),
			Details:      toBullets(llm.CoerceStrings(a["details"])),
		})
	}

	for _, e := range llm.CoerceObjects(doc["experience"]) {
		company, role := llm.CoerceString(e["company"]), llm.CoerceString(e["role"])
		if company == "" || role == "" {
			continue
		}
		details := toBullets(llm.CoerceStrings(e["details"]))
		if IsUnpaidRole(role) {
			resume.Activities = append(resume.Activities, types.Activity{
				Organization: company,
				Role:         role,
				Duration:     optString(e["duration"]),
				Details:      details,
			})
			continue
		}
		resume.Experience = append(resume.Experience, types.Experience{
			Company:  company,
			Role:     role,
			Duration: optString(e["duration"]),
			Details:  details,
		})
	}

	for _, p := range llm.CoerceObjects(doc["projects"]) {
		title := llm.CoerceString(p["title"])
		if title == "" {
			continue
		}
		resume.Projects = append(resume.Projects, types.Project{
			Title:       title,
			Tech:        normalizeSkillList(llm.CoerceStrings(p["tech"])),
			Description: toBullets(llm.CoerceStrings(p["description"])),
		})
	}

	skills := llm.CoerceObject(doc["skills"])
	resume.Skills = NormalizeSkills(types.Skills{
		Technical: llm.CoerceStrings(skills["technical"]),
		Domain:    llm.CoerceStrings(skills["domain"]),
		Tools:     llm.CoerceStrings(skills["tools"]),
		Soft:      llm.CoerceStrings(skills["soft"]),
	})

	return resume
}

func buildCandidate(c map[string]any) types.Candidate {
	return types.Candidate{
		Name:  optString(c["name"]),
		Email: optString(c["email"]),
		Phone: optString(c["phone"]),
		Links: dedupeFold(llm.CoerceStrings(c["links"]), linkKey),
	}
}

// optString trims a value and maps blank to nil.
func optString(v any) *string {
	return types.StringPtr(llm.CoerceString(v))
}

// toBullets splits a description delivered as a single prose paragraph into
// one bullet per line or sentence. Lists with several entries are kept as is.
func toBullets(items []string) []string {
	if len(items) != 1 {
		return items
	}
	bullets := SplitSentences(items[0])
	if len(bullets) == 0 {
		return items
	}
	return bullets
}

// SplitSentences breaks prose into trimmed sentences. Line breaks and bullet
// glyphs always split; a sentence ends at . ! or ? followed by whitespace and
// an uppercase letter or digit, so "e.g. docker" stays in one piece.
func SplitSentences(text string) []string {
	var out []string
	for _, line := range strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '•' || r == '●' || r == '▪'
	}) {
		out = append(out, splitLine(line)...)
	}
	return out
}

func splitLine(line string) []string {
	runes := []rune(line)
	var out []string
	start := 0
	for i := 0; i < len(runes); i++ {
		if runes[i] != '.' && runes[i] != '!' && runes[i] != '?' {
			continue
		}
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		if j == i+1 || j >= len(runes) {
			continue
		}
		if unicode.IsUpper(runes[j]) || unicode.IsDigit(runes[j]) {
			out = appendBullet(out, string(runes[start:i+1]))
			start = j
		}
	}
	return appendBullet(out, string(runes[start:]))
}

func appendBullet(out []string, s string) []string {
	s = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(s), "-*–"))
	if s == "" {
		return out
	}
	return append(out, s)
}
