package parsing

import (
	"strings"

	"github.com/jonathan/knotic/internal/types"
)

// skillAliases maps common skill name variants to canonical lowercase names
var skillAliases = map[string]string{
	"golang":          "go",
	"go lang":         "go",
	"js":              "javascript",
	"ts":              "typescript",
	"k8s":             "kubernetes",
	"react.js":        "react",
	"reactjs":         "react",
	"vue.js":          "vue",
	"vuejs":           "vue",
	"nodejs":          "node.js",
	"node":            "node.js",
	"postgres":        "postgresql",
	"ms excel":        "excel",
	"microsoft excel": "excel",
	"ms word":         "word",
	"microsoft word":  "word",
}

// NormalizeSkillName lowercases and trims a skill and maps known variants to
// their canonical name.
func NormalizeSkillName(skillName string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(skillName), " "))
	normalized = strings.TrimRight(normalized, ".,;:")
	if canonical, ok := skillAliases[normalized]; ok {
		return canonical
	}
	return normalized
}

// normalizeSkillList normalizes and deduplicates one category, keeping first-seen order.
func normalizeSkillList(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]bool, len(skills))
	for _, s := range skills {
		name := NormalizeSkillName(s)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// NormalizeSkills lowercases and deduplicates every category. A skill listed
// under more than one category is ambiguous and removed from all of them.
func NormalizeSkills(skills types.Skills) types.Skills {
	categories := []*[]string{&skills.Technical, &skills.Domain, &skills.Tools, &skills.Soft}

	counts := make(map[string]int)
	for _, cat := range categories {
		*cat = normalizeSkillList(*cat)
		for _, name := range *cat {
			counts[name]++
		}
	}

	for _, cat := range categories {
		kept := (*cat)[:0]
		for _, name := range *cat {
			if counts[name] == 1 {
				kept = append(kept, name)
			}
		}
		*cat = kept
	}
	return skills
}

// dedupeFold removes case-insensitive duplicates, keeping the first spelling.
func dedupeFold(items []string, key func(string) string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		k := key(item)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, item)
	}
	return out
}

func lowerKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// linkKey ignores scheme, leading www. and trailing slashes when comparing links.
func linkKey(s string) string {
	k := lowerKey(s)
	k = strings.TrimPrefix(k, "https://")
	k = strings.TrimPrefix(k, "http://")
	k = strings.TrimPrefix(k, "www.")
	return strings.TrimRight(k, "/")
}
