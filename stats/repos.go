package stats

import "github.com/Nethaiah/commitlens/models"

// ProjectOverview merges repository metadata into the counters shown
// above the repository list. Commit totals prefer the authoritative
// default-branch count and fall back to the sampled recent commits of
// each repository.
func ProjectOverview(repos []models.Repository) models.OverviewStats {
	stats := models.OverviewStats{
		TotalRepos: len(repos),
	}

	languages := make(map[string]struct{})
	mostActive := ""
	mostActiveCommits := -1

	for _, r := range repos {
		commits := r.BestCommitCount()
		stats.TotalCommits += commits
		stats.TotalStars += r.Stars
		if r.Language != "" {
			languages[r.Language] = struct{}{}
		}
		if r.Private {
			stats.PrivateRepos++
		}
		if commits > mostActiveCommits {
			mostActiveCommits = commits
			mostActive = r.Name
		}
	}

	stats.LanguagesUsed = len(languages)
	stats.PublicRepos = stats.TotalRepos - stats.PrivateRepos
	if stats.TotalRepos > 0 {
		// Integer rounding, half away from zero.
		stats.AvgCommitsPerRepo = (stats.TotalCommits + stats.TotalRepos/2) / stats.TotalRepos
		stats.MostActiveRepo = mostActive
	}
	return stats
}
