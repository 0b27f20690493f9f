package stats

import (
	"math"
	"sort"

	"github.com/Nethaiah/commitlens/models"
)

// OtherLanguage buckets repositories without a primary language.
const OtherLanguage = "Other"

// unknownLanguage is the placeholder the repository projection assigns
// when the platform reports no primary language. The distribution
// folds it into the Other bucket.
const unknownLanguage = "Unknown"

// topLanguages caps the distribution at the 7 largest groups.
const topLanguages = 7

// languageColors maps well-known language names to their display
// colors. Unmapped names get the neutral gray of the Other bucket.
var languageColors = map[string]string{
	"TypeScript": "#3178c6",
	"JavaScript": "#f1e05a",
	"Python":     "#3572A5",
	"Go":         "#00ADD8",
	"Java":       "#b07219",
	"Rust":       "#dea584",
	"Ruby":       "#701516",
	"PHP":        "#4F5D95",
	"C":          "#555555",
	"C++":        "#f34b7d",
	"C#":         "#178600",
	"Shell":      "#89e051",
	OtherLanguage: "#6b7280",
}

// LanguageColor returns the display color for a language name.
func LanguageColor(name string) string {
	if c, ok := languageColors[name]; ok {
		return c
	}
	return languageColors[OtherLanguage]
}

// RankLanguages aggregates default-branch commit counts by primary
// language and returns the top groups sorted by commit count.
//
// Percentages are rounded independently per language against the total
// and may not sum to exactly 100; consumers must tolerate the drift.
// Ties in commit count keep their first-encounter order. Repositories
// without a primary language, including the Unknown placeholder from
// the repository projection, count toward Other. When repo is
// anything other than the all-repositories sentinel, only that
// repository is counted.
func RankLanguages(repos []models.Repository, repo string) []models.LanguageStat {
	type group struct {
		name    string
		commits int
	}
	var groups []*group
	index := make(map[string]*group)

	for _, r := range repos {
		if repo != "" && repo != models.AllRepositories && r.Name != repo {
			continue
		}
		name := r.Language
		if name == "" || name == unknownLanguage {
			name = OtherLanguage
		}
		g, ok := index[name]
		if !ok {
			g = &group{name: name}
			index[name] = g
			groups = append(groups, g)
		}
		g.commits += r.TotalCommits
	}

	total := 0
	for _, g := range groups {
		total += g.commits
	}
	if total == 0 {
		total = 1
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].commits > groups[j].commits
	})
	if len(groups) > topLanguages {
		groups = groups[:topLanguages]
	}

	out := make([]models.LanguageStat, 0, len(groups))
	for _, g := range groups {
		out = append(out, models.LanguageStat{
			Name:       g.name,
			Commits:    g.commits,
			Percentage: int(math.Round(float64(g.commits) / float64(total) * 100)),
			Color:      LanguageColor(g.name),
		})
	}
	return out
}
