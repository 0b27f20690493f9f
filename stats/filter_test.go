package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Nethaiah/commitlens/models"
)

func filterFixture() []models.Repository {
	return []models.Repository{
		{
			Name:        "a",
			Description: "analytics toolkit",
			Language:    "Go",
			Stars:       5,
			OwnerLogin:  "alice",
			OwnerType:   models.OwnerTypeUser,
			Commits: []models.Commit{
				{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
			},
		},
		{
			Name:        "b",
			Description: "web dashboard",
			Language:    "TypeScript",
			Stars:       10,
			Private:     true,
			OwnerLogin:  "acme",
			OwnerType:   models.OwnerTypeOrganization,
			Commits: []models.Commit{
				{Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
			},
		},
		{
			Name:        "c",
			Description: "fork of something",
			Language:    "Go",
			Stars:       2,
			Fork:        true,
			OwnerLogin:  "bob",
			OwnerType:   models.OwnerTypeUser,
		},
		{
			Name:        "d",
			Description: "old experiment",
			Language:    "Python",
			Stars:       2,
			Archived:    true,
			OwnerLogin:  "alice",
			OwnerType:   models.OwnerTypeUser,
		},
	}
}

func names(repos []models.Repository) []string {
	out := make([]string, 0, len(repos))
	for _, r := range repos {
		out = append(out, r.Name)
	}
	return out
}

func TestFilterRepositories(t *testing.T) {
	testCases := []struct {
		name     string
		opts     FilterOptions
		expected []string
	}{
		{
			name:     "no constraints defaults to updated order",
			opts:     FilterOptions{},
			expected: []string{"b", "a", "c", "d"},
		},
		{
			name:     "query matches name or description",
			opts:     FilterOptions{Query: "DASH"},
			expected: []string{"b"},
		},
		{
			name:     "language filter",
			opts:     FilterOptions{Language: "Go", SortBy: SortByName},
			expected: []string{"a", "c"},
		},
		{
			name:     "language all disables the filter",
			opts:     FilterOptions{Language: "all", SortBy: SortByName},
			expected: []string{"a", "b", "c", "d"},
		},
		{
			name:     "private visibility",
			opts:     FilterOptions{Visibility: "private"},
			expected: []string{"b"},
		},
		{
			name:     "public visibility",
			opts:     FilterOptions{Visibility: "public", SortBy: SortByName},
			expected: []string{"a", "c", "d"},
		},
		{
			name:     "owner scope",
			opts:     FilterOptions{Scope: ScopeOwner, ViewerLogin: "alice", SortBy: SortByName},
			expected: []string{"a", "d"},
		},
		{
			name:     "collaborator scope",
			opts:     FilterOptions{Scope: ScopeCollaborator, ViewerLogin: "alice"},
			expected: []string{"c"},
		},
		{
			name:     "organization scope",
			opts:     FilterOptions{Scope: ScopeOrganization, ViewerLogin: "alice"},
			expected: []string{"b"},
		},
		{
			name:     "hide forks and archived",
			opts:     FilterOptions{HideForks: true, HideArchived: true, SortBy: SortByName},
			expected: []string{"a", "b"},
		},
		{
			name:     "sort by stars descending",
			opts:     FilterOptions{SortBy: SortByStars},
			expected: []string{"b", "a", "c", "d"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := FilterRepositories(filterFixture(), tc.opts)
			assert.Equal(t, tc.expected, names(out))
		})
	}
}

func TestFilterRepositoriesSortScenario(t *testing.T) {
	repos := []models.Repository{
		{Name: "a", Stars: 5, Commits: []models.Commit{{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}}},
		{Name: "b", Stars: 10, Commits: []models.Commit{{Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)}}},
	}

	assert.Equal(t, []string{"b", "a"}, names(FilterRepositories(repos, FilterOptions{SortBy: SortByStars})))
	assert.Equal(t, []string{"b", "a"}, names(FilterRepositories(repos, FilterOptions{SortBy: SortByUpdated})))
}

func TestFilterRepositoriesPure(t *testing.T) {
	repos := filterFixture()
	opts := FilterOptions{SortBy: SortByStars}

	first := FilterRepositories(repos, opts)
	second := FilterRepositories(repos, opts)

	// Idempotent and side-effect free: same output twice, input order
	// untouched.
	assert.Equal(t, names(first), names(second))
	assert.Equal(t, []string{"a", "b", "c", "d"}, names(repos))
}

func TestFilterRepositoriesStableForEqualKeys(t *testing.T) {
	repos := []models.Repository{
		{Name: "x", Stars: 3},
		{Name: "y", Stars: 3},
		{Name: "z", Stars: 3},
	}
	out := FilterRepositories(repos, FilterOptions{SortBy: SortByStars})
	assert.Equal(t, []string{"x", "y", "z"}, names(out))
}

func TestFilterRepositoriesMissingDatesSortOldest(t *testing.T) {
	repos := []models.Repository{
		{Name: "undated"},
		{Name: "dated", Commits: []models.Commit{{Date: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}}},
	}
	out := FilterRepositories(repos, FilterOptions{SortBy: SortByUpdated})
	assert.Equal(t, []string{"dated", "undated"}, names(out))
}
