// Package models defines the core data structures used throughout the application.
package models

import "time"

// ContributionDay is a single day of the GitHub contribution calendar.
// Weekday follows the GitHub GraphQL schema (0-6).
type ContributionDay struct {
	Date    string `json:"date"`
	Count   int    `json:"count"`
	Weekday int    `json:"weekday"`
}

// ContributionWeek is a contiguous bucket of up to 7 contribution days,
// anchored to GitHub's week-start convention.
type ContributionWeek struct {
	FirstDay string            `json:"firstDay"`
	Days     []ContributionDay `json:"days"`
}

// Overview holds the derived activity statistics for a date range.
// It is recomputed on every fetch and never persisted on its own.
type Overview struct {
	TotalCommits     int     `json:"totalCommits"`
	ActiveDays       int     `json:"activeDays"`
	CurrentStreak    int     `json:"currentStreak"`
	LongestStreak    int     `json:"longestStreak"`
	AvgCommitsPerDay float64 `json:"avgCommitsPerDay"`
}

// LanguageStat is the commit share of a single primary language.
// Percentages are rounded independently per language and are not
// guaranteed to sum to exactly 100.
type LanguageStat struct {
	Name       string `json:"name"`
	Commits    int    `json:"commits"`
	Percentage int    `json:"percentage"`
	Color      string `json:"color,omitempty"`
}

// MostProductiveDay pairs a weekday label with its commit count.
type MostProductiveDay struct {
	Day     string `json:"day"`
	Commits int    `json:"commits"`
}

// Commit is a sampled commit attached to a projected repository.
type Commit struct {
	ID      string    `json:"id"`
	Hash    string    `json:"hash"`
	Message string    `json:"message"`
	Author  string    `json:"author"`
	Date    time.Time `json:"date"`
}

// OwnerType classifies a repository owner.
type OwnerType string

const (
	OwnerTypeUser         OwnerType = "User"
	OwnerTypeOrganization OwnerType = "Organization"
)

// Repository is the projected view of a GitHub repository used by the
// dashboard and the repositories page. It lives only for the duration
// of a request.
type Repository struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Language      string    `json:"language"`
	Stars         int       `json:"stars"`
	Commits       []Commit  `json:"commits"`
	TotalCommits  int       `json:"totalCommits"`
	Private       bool      `json:"private"`
	Fork          bool      `json:"fork"`
	Archived      bool      `json:"archived"`
	OwnerLogin    string    `json:"ownerLogin"`
	OwnerType     OwnerType `json:"ownerType"`
	DefaultBranch string    `json:"defaultBranch"`
	Forks         int       `json:"forks"`
	Branches      int       `json:"branches"`
}

// BestCommitCount returns the most reliable commit count available for
// the repository: the authoritative default-branch total when present,
// otherwise the number of sampled recent commits. The authoritative
// count is omitted by some queries for cost reasons, so the fallback
// must stay.
func (r Repository) BestCommitCount() int {
	if r.TotalCommits > 0 {
		return r.TotalCommits
	}
	return len(r.Commits)
}

// LastCommitDate returns the date of the most recent sampled commit,
// or the zero time when no commits were sampled.
func (r Repository) LastCommitDate() time.Time {
	if len(r.Commits) == 0 {
		return time.Time{}
	}
	return r.Commits[0].Date
}

// OverviewStats aggregates repository metadata into the counters shown
// on the repositories page.
type OverviewStats struct {
	TotalRepos        int    `json:"totalRepos"`
	TotalCommits      int    `json:"totalCommits"`
	TotalStars        int    `json:"totalStars"`
	LanguagesUsed     int    `json:"languagesUsed"`
	PrivateRepos      int    `json:"privateRepos"`
	PublicRepos       int    `json:"publicRepos"`
	AvgCommitsPerRepo int    `json:"avgCommitsPerRepo"`
	MostActiveRepo    string `json:"mostActiveRepo,omitempty"`
}

// DashboardData is the full response of the dashboard endpoint.
type DashboardData struct {
	Overview           Overview            `json:"overview"`
	Languages          []LanguageStat      `json:"languages"`
	MostProductiveDays []MostProductiveDay `json:"mostProductiveDays"`
	ContributionWeeks  []ContributionWeek  `json:"contributionWeeks"`
}

// StatsSnapshot is the request body of the insight write endpoint: the
// aggregates already computed for a given range and repo selection.
type StatsSnapshot struct {
	RangeKey          string             `json:"rangeKey"`
	Repo              string             `json:"repo"`
	CountMode         string             `json:"countMode,omitempty"`
	Overview          Overview           `json:"overview"`
	Languages         []LanguageStat     `json:"languages"`
	ContributionWeeks []ContributionWeek `json:"contributionWeeks"`
}

// AllRepositories is the sentinel repo selector meaning "not scoped to
// a single repository".
const AllRepositories = "All Repositories"

// User identifies the authenticated viewer.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
	Login string `json:"login,omitempty"`
}

// Session is the authenticated request context returned by the session
// provider.
type Session struct {
	User User `json:"user"`
}
