// Package service assembles dashboard and repository views from the
// GitHub API and the stats aggregators.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Nethaiah/commitlens/daterange"
	"github.com/Nethaiah/commitlens/github"
	"github.com/Nethaiah/commitlens/logger"
	"github.com/Nethaiah/commitlens/models"
	"github.com/Nethaiah/commitlens/stats"
)

// Language aggregation walks at most languagePages pages of
// languagePageSize repositories. This is a deliberate approximation
// over "all repositories ever created" to keep API cost predictable.
const (
	languagePages    = 2
	languagePageSize = 50
)

// repoPageSize is the single page fetched for the repositories view.
const repoPageSize = 30

// GitHubClientInterface abstracts the GitHub client operations needed by the service
// (for testability)
type GitHubClientInterface interface {
	FetchViewerLogin(ctx context.Context) (string, error)
	FetchContributionCalendar(ctx context.Context, from, to string) (int, []models.ContributionWeek, error)
	FetchViewerRepositories(ctx context.Context, first int, after string) (*github.RepositoryPage, error)
	FetchRecentCommits(ctx context.Context, owner, name string, perPage int) ([]github.CommitSummary, error)
}

// Service exposes the read operations behind the HTTP surface.
type Service struct {
	client GitHubClientInterface
}

// New creates a service instance around a GitHub client.
func New(client GitHubClientInterface) *Service {
	return &Service{client: client}
}

// GetDashboardData resolves the range key and assembles the dashboard
// aggregates. The calendar and the language walk are independent
// reads populating disjoint fields, so they run concurrently.
func (s *Service) GetDashboardData(ctx context.Context, rangeKey, repo string) (*models.DashboardData, error) {
	window := daterange.Resolve(rangeKey, time.Now())

	logger.Info("Assembling dashboard data",
		zap.String("range_key", rangeKey),
		zap.String("repo", repo),
		zap.String("from", window.From),
		zap.String("to", window.To))

	var (
		wg        sync.WaitGroup
		total     int
		weeks     []models.ContributionWeek
		languages []models.LanguageStat
	)
	errChan := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		var err error
		total, weeks, err = s.client.FetchContributionCalendar(ctx, window.From, window.To)
		if err != nil {
			errChan <- fmt.Errorf("failed to fetch contribution calendar: %w", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		repos, err := s.fetchLanguageRepos(ctx)
		if err != nil {
			errChan <- fmt.Errorf("failed to fetch repositories for languages: %w", err)
			return
		}
		languages = stats.RankLanguages(repos, repo)
	}()

	wg.Wait()
	close(errChan)
	for err := range errChan {
		return nil, err
	}

	days := stats.FlattenWeeks(weeks)
	data := &models.DashboardData{
		Overview:           stats.ComputeOverview(total, days),
		Languages:          languages,
		MostProductiveDays: stats.MostProductiveDays(weeks),
		ContributionWeeks:  weeks,
	}

	logger.Info("Dashboard data assembled",
		zap.Int("total_commits", data.Overview.TotalCommits),
		zap.Int("active_days", data.Overview.ActiveDays),
		zap.Int("languages", len(data.Languages)))

	return data, nil
}

// fetchLanguageRepos performs the bounded pagination walk used by the
// language distribution.
func (s *Service) fetchLanguageRepos(ctx context.Context) ([]models.Repository, error) {
	var repos []models.Repository
	after := ""
	for i := 0; i < languagePages; i++ {
		page, err := s.client.FetchViewerRepositories(ctx, languagePageSize, after)
		if err != nil {
			return nil, err
		}
		repos = append(repos, page.Repositories...)
		if !page.HasNextPage || page.EndCursor == "" {
			break
		}
		after = page.EndCursor
	}
	return repos, nil
}

// RepositoriesView is the repositories page response: the filtered and
// sorted list plus counters computed over the unfiltered set.
type RepositoriesView struct {
	Repositories []models.Repository  `json:"repositories"`
	Overview     models.OverviewStats `json:"overview"`
	Languages    []string             `json:"languages"`
}

// GetRepositories fetches the viewer's repositories, projects the
// overview counters, and applies the filter/sort pipeline. When the
// caller's session does not carry a login, the viewer identity query
// fills it so the owner scope can classify correctly.
func (s *Service) GetRepositories(ctx context.Context, opts stats.FilterOptions) (*RepositoriesView, error) {
	page, err := s.client.FetchViewerRepositories(ctx, repoPageSize, "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch repositories: %w", err)
	}

	if opts.ViewerLogin == "" && opts.Scope != "" && opts.Scope != stats.ScopeAll {
		login, err := s.client.FetchViewerLogin(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch viewer login: %w", err)
		}
		opts.ViewerLogin = login
	}

	repos := page.Repositories
	view := &RepositoriesView{
		Repositories: stats.FilterRepositories(repos, opts),
		Overview:     stats.ProjectOverview(repos),
		Languages:    distinctLanguages(repos),
	}

	logger.Info("Repositories assembled",
		zap.Int("fetched", len(repos)),
		zap.Int("after_filter", len(view.Repositories)))

	return view, nil
}

// distinctLanguages lists the languages present in the set, in
// encounter order, for the filter dropdown.
func distinctLanguages(repos []models.Repository) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range repos {
		if r.Language == "" {
			continue
		}
		if _, ok := seen[r.Language]; ok {
			continue
		}
		seen[r.Language] = struct{}{}
		out = append(out, r.Language)
	}
	return out
}

// GetRepositoryCommits returns the sampled recent commits of a single
// repository, projected onto the domain model.
func (s *Service) GetRepositoryCommits(ctx context.Context, owner, name string, perPage int) ([]models.Commit, error) {
	summaries, err := s.client.FetchRecentCommits(ctx, owner, name, perPage)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch commits for %s/%s: %w", owner, name, err)
	}

	commits := make([]models.Commit, 0, len(summaries))
	for _, sum := range summaries {
		commit := models.Commit{
			ID:      sum.SHA,
			Hash:    sum.SHA,
			Message: sum.Commit.Message,
			Author:  "unknown",
		}
		switch {
		case sum.Commit.Author != nil && sum.Commit.Author.Name != "":
			commit.Author = sum.Commit.Author.Name
			commit.Date = sum.Commit.Author.Date
		case sum.Commit.Committer != nil && sum.Commit.Committer.Name != "":
			commit.Author = sum.Commit.Committer.Name
			commit.Date = sum.Commit.Committer.Date
		case sum.Author != nil:
			commit.Author = sum.Author.Login
		}
		commits = append(commits, commit)
	}
	return commits, nil
}
